package production

import (
	"fmt"
	"math/rand"
	"time"
)

const numberCharset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewOrderNumber generates a human-readable order number:
// ORD-YYYYMMDD-XXXXXX with a random base36 suffix. Uniqueness, not
// format, is the contract; the timestamp plus random suffix keeps
// numbers unique without a central counter.
func NewOrderNumber() string {
	suffix := make([]byte, 6)
	for i := range suffix {
		suffix[i] = numberCharset[rand.Intn(len(numberCharset))]
	}
	return fmt.Sprintf("ORD-%s-%s", time.Now().Format("20060102"), suffix)
}
