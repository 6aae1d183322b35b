package sales

import (
	"fmt"
	"math/rand"
	"time"
)

const numberCharset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewOrderNumber generates a human-readable order number:
// SO-YYYYMMDD-XXXXXX with a random base36 suffix. Uniqueness, not
// format, is the contract.
func NewOrderNumber() string {
	suffix := make([]byte, 6)
	for i := range suffix {
		suffix[i] = numberCharset[rand.Intn(len(numberCharset))]
	}
	return fmt.Sprintf("SO-%s-%s", time.Now().Format("20060102"), suffix)
}
