/*
Package sales defines the sales order aggregate and its state machine.

LIFECYCLE:

	PENDING ──▶ CONFIRMED ──▶ (PROCESSING) ──▶ SHIPPED ──▶ DELIVERED
	   │            │
	   └────────────┴──▶ CANCELLED

Confirmation, not shipment, is the stock-committing event: finished
goods are debited when the order is confirmed. This is the inverse of
production orders, where consumption happens at start. Cancelling a
CONFIRMED order does NOT restore the debited stock; that reversal is an
open product decision, deliberately not implemented here.

REFUNDED exists as a terminal status for data-model completeness but has
no inbound edges in the current logic.

Items carry the unit price snapshotted at order creation. They are
mutable only while the order is PENDING.
*/
package sales

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the sales order state.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusConfirmed  Status = "CONFIRMED"
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
	StatusRefunded   Status = "REFUNDED"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusShipped,
		StatusDelivered, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

// Terminal reports whether no further transition is defined from s.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled || s == StatusRefunded
}

// transitions is the full set of legal edges. REFUNDED has no inbound
// edge on purpose. Anything absent here fails with
// InvalidTransitionError, never a silent no-op.
var transitions = map[Status][]Status{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusProcessing, StatusShipped, StatusCancelled},
	StatusProcessing: {StatusShipped},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {},
	StatusCancelled:  {},
	StatusRefunded:   {},
}

// Item is one order line. UnitPrice is a snapshot taken when the line
// was created, not a live reference to the product's price.
type Item struct {
	ID        int64
	ProductID int64
	Quantity  int
	UnitPrice decimal.Decimal
}

// Subtotal is quantity × unit price.
func (i Item) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order consumes finished-goods stock on confirmation.
type Order struct {
	ID          int64
	OrderNumber string
	ClientID    int64
	Items       []Item
	Status      Status
	TotalAmount decimal.Decimal
	Notes       string

	CreatedAt   time.Time
	ConfirmedAt *time.Time
	ShippedAt   *time.Time
	DeliveredAt *time.Time
	CancelledAt *time.Time
}

// NewOrder creates a pending order with a generated order number and the
// total computed from the given items.
func NewOrder(clientID int64, items []Item, notes string) *Order {
	o := &Order{
		OrderNumber: NewOrderNumber(),
		ClientID:    clientID,
		Items:       items,
		Status:      StatusPending,
		Notes:       notes,
		CreatedAt:   time.Now(),
	}
	o.RecalculateTotal()
	return o
}

// RecalculateTotal sets TotalAmount to the sum of item subtotals. Must
// be called after any item mutation: the invariant is
// TotalAmount == Σ quantity × unitPrice over current items.
func (o *Order) RecalculateTotal() {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal())
	}
	o.TotalAmount = total
}

// Editable reports whether the item list may still be changed.
func (o *Order) Editable() bool {
	return o.Status == StatusPending
}

// Deletable reports whether the order may be removed.
func (o *Order) Deletable() bool {
	return o.Status == StatusPending || o.Status == StatusCancelled
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
	case StatusConfirmed:
		o.ConfirmedAt = &now
	case StatusShipped:
		o.ShippedAt = &now
	case StatusDelivered:
		o.DeliveredAt = &now
	case StatusCancelled:
		o.CancelledAt = &now
	}
	o.Status = target
	return nil
}
