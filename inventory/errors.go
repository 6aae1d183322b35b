package inventory

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Sentinel errors. Use with errors.Is().
var (
	// ErrInsufficientStock is returned when a debit would drive a balance
	// negative. The structured form carries every deficient item.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrInvalidQuantity is returned for zero or negative quantities.
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrInvalidDirection is returned for an unknown movement direction.
	ErrInvalidDirection = errors.New("invalid movement direction")
)

// Deficit describes one raw material that cannot cover a requirement.
type Deficit struct {
	RawMaterialID int64
	Name          string
	Required      decimal.Decimal
	Available     decimal.Decimal
}

// Shortfall is the uncovered part of the requirement.
func (d Deficit) Shortfall() decimal.Decimal {
	return d.Required.Sub(d.Available)
}

func (d Deficit) String() string {
	return fmt.Sprintf("%s: required %s, available %s", d.Name, d.Required, d.Available)
}

// InsufficientStockError carries the FULL list of deficient materials,
// not just the first. Callers need the complete set to act on it.
type InsufficientStockError struct {
	Deficits []Deficit
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, len(e.Deficits))
	for i, d := range e.Deficits {
		parts[i] = d.String()
	}
	return "insufficient stock: " + strings.Join(parts, "; ")
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// InvalidQuantityError reports a non-positive movement quantity.
type InvalidQuantityError struct {
	Quantity decimal.Decimal
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("invalid quantity %s: must be strictly positive", e.Quantity)
}

func (e *InvalidQuantityError) Unwrap() error { return ErrInvalidQuantity }
