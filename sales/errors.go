package sales

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/warp/fulfillment-engine/inventory"
)

// Sentinel errors. Use with errors.Is().
var (
	// ErrInvalidTransition is returned for state-machine edges not in the
	// transition table.
	ErrInvalidTransition = errors.New("invalid sales order transition")

	// ErrNotEditable is returned when items are mutated outside PENDING.
	ErrNotEditable = errors.New("sales order not editable")

	// ErrEmptyOrder is returned when an order would have no items.
	ErrEmptyOrder = errors.New("sales order has no items")

	// ErrInvalidPrice is returned when a product's selling price cannot
	// be snapshotted onto an order item.
	ErrInvalidPrice = errors.New("invalid selling price")

	// ErrInvalidState is returned when an operation (deletion) is
	// attempted in a state that forbids it.
	ErrInvalidState = errors.New("invalid sales order state")

	// ErrDuplicateItem is returned when an order would carry two lines
	// for the same product. Lines are keyed by product id everywhere
	// (item diffing, stock checks), so one product means one line.
	ErrDuplicateItem = errors.New("duplicate order item")
)

// InvalidTransitionError names the current and requested status.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition sales order from %s to %s", e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

// NotEditableError reports an item mutation rejected by the current status.
type NotEditableError struct {
	Status Status
}

func (e *NotEditableError) Error() string {
	return fmt.Sprintf("cannot modify items of a sales order in status %s", e.Status)
}

func (e *NotEditableError) Unwrap() error { return ErrNotEditable }

// InvalidStateError reports an operation rejected by the current status.
type InvalidStateError struct {
	Status Status
	Action string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s a sales order in status %s", e.Action, e.Status)
}

func (e *InvalidStateError) Unwrap() error { return ErrInvalidState }

// DuplicateItemError names the product that appears on more than one line.
type DuplicateItemError struct {
	ProductID int64
}

func (e *DuplicateItemError) Error() string {
	return fmt.Sprintf("product %d appears on more than one order line", e.ProductID)
}

func (e *DuplicateItemError) Unwrap() error { return ErrDuplicateItem }

// InvalidPriceError reports a product whose selling price is unusable.
type InvalidPriceError struct {
	ProductID int64
	Price     decimal.Decimal
}

func (e *InvalidPriceError) Error() string {
	return fmt.Sprintf("product %d has invalid selling price %s", e.ProductID, e.Price)
}

func (e *InvalidPriceError) Unwrap() error { return ErrInvalidPrice }

// =============================================================================
// CONFIRMATION FAILURE REPORT
// =============================================================================

// ProductDeficit describes one order line that exceeds available
// finished-goods stock.
type ProductDeficit struct {
	ProductID int64
	Name      string
	Needed    int
	Available int
}

// Shortfall is the number of units production must cover.
func (d ProductDeficit) Shortfall() int {
	return d.Needed - d.Available
}

// CompensationFailure records a compensating production order that could
// not be created for a deficient product.
type CompensationFailure struct {
	ProductID int64
	Reason    string
}

// StockDeficitError is returned by a failed confirmation attempt. It
// carries the full deficiency set plus the outcome of automatic
// compensating-order creation: which production orders were created and
// which failed, so the caller can retry once production completes.
type StockDeficitError struct {
	Deficits []ProductDeficit

	// CreatedProductionOrders lists order numbers created during this
	// attempt. Empty when the idempotency guard found an earlier
	// compensating order already linked to the sales order.
	CreatedProductionOrders []string

	// Failures lists per-product creation errors. Deficit resolution is
	// not aborted on the first failure; callers need partial-success
	// visibility to decide whether to retry.
	Failures []CompensationFailure
}

func (e *StockDeficitError) Error() string {
	parts := make([]string, len(e.Deficits))
	for i, d := range e.Deficits {
		parts[i] = fmt.Sprintf("%s: needed %d, available %d", d.Name, d.Needed, d.Available)
	}
	msg := "insufficient stock to confirm: " + strings.Join(parts, "; ")
	if n := len(e.CreatedProductionOrders); n > 0 {
		msg += fmt.Sprintf(" (%d compensating production orders created)", n)
	}
	if n := len(e.Failures); n > 0 {
		msg += fmt.Sprintf(" (%d compensating orders failed)", n)
	}
	return msg
}

func (e *StockDeficitError) Unwrap() error { return inventory.ErrInsufficientStock }
