/*
Package inventory defines the append-only stock movement ledger types.

CRITICAL INVARIANTS:
 1. APPEND-ONLY: movements are never updated or deleted. Corrections are
    new movements in the opposite direction.
 2. POSITIVE QUANTITIES: Quantity is always stored positive; Direction
    carries the sign.
 3. BALANCE SNAPSHOT: BalanceAfter records the cached balance at write
    time. It is a denormalized convenience and must always equal the
    running sum of signed movements up to that entry.
*/
package inventory

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction is the sign of a stock movement.
type Direction string

const (
	Credit Direction = "credit" // stock in
	Debit  Direction = "debit"  // stock out
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == Credit || d == Debit
}

// Signed applies the direction's sign to a positive quantity.
func (d Direction) Signed(qty decimal.Decimal) decimal.Decimal {
	if d == Debit {
		return qty.Neg()
	}
	return qty
}

// Movement is one immutable stock-affecting event for a raw material.
type Movement struct {
	ID            string // uuid
	RawMaterialID int64
	Direction     Direction
	Quantity      decimal.Decimal // always positive
	Notes         string
	BalanceAfter  decimal.Decimal
	CreatedAt     time.Time
}
