/*
Package production defines the production order aggregate and its state
machine.

LIFECYCLE:

	PENDING ──▶ IN_PROGRESS ──▶ COMPLETED
	   │
	   └──▶ CANCELLED

Raw-material consumption is computed once, at the PENDING→IN_PROGRESS
transition, from the product's composition snapshot at that moment. The
debit at start is the reservation: two orders can never both hold the
same stock optimistically.

Orders are deletable only in PENDING or CANCELLED. An order with
committed consumption or production must not disappear silently.
*/
package production

import (
	"time"
)

// Status is the production order state.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is defined from s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// transitions is the full set of legal edges. Anything absent here is an
// InvalidTransitionError, never a silent no-op.
var transitions = map[Status][]Status{
	StatusPending:    {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

// Order converts raw materials into finished-goods stock.
type Order struct {
	ID                int64
	OrderNumber       string
	ProductID         int64
	QuantityToProduce int
	Status            Status

	// SalesOrderID links a compensating order back to the sales order
	// whose deficit it covers. Nil for manually created orders.
	SalesOrderID *int64

	Notes       string
	CreatedAt   time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
}

// NewOrder creates a pending order with a generated order number.
func NewOrder(productID int64, quantity int, notes string, salesOrderID *int64) *Order {
	return &Order{
		OrderNumber:       NewOrderNumber(),
		ProductID:         productID,
		QuantityToProduce: quantity,
		Status:            StatusPending,
		SalesOrderID:      salesOrderID,
		Notes:             notes,
		CreatedAt:         time.Now(),
	}
}

// CanTransitionTo checks the transition table without mutating the order.
func (o *Order) CanTransitionTo(target Status) bool {
	for _, allowed := range transitions[o.Status] {
		if allowed == target {
			return true
		}
	}
	return false
}

// TransitionTo moves the order to target and stamps the transition time.
// Illegal edges fail with InvalidTransitionError naming both states.
func (o *Order) TransitionTo(target Status) error {
	if !o.CanTransitionTo(target) {
		return &InvalidTransitionError{From: o.Status, To: target}
	}
	now := time.Now()
	switch target {
	case StatusInProgress:
		o.StartedAt = &now
	case StatusCompleted:
		o.CompletedAt = &now
	}
	o.Status = target
	return nil
}

// Deletable reports whether the order may be removed.
func (o *Order) Deletable() bool {
	return o.Status == StatusPending || o.Status == StatusCancelled
}

// AppendCancellationNote records why the order was cancelled, preserving
// any existing notes.
func (o *Order) AppendCancellationNote(note string) {
	if note == "" {
		return
	}
	if o.Notes != "" {
		o.Notes += "\n"
	}
	o.Notes += "cancelled: " + note
}
