/*
ledger.go - Inventory ledger: the single write path for raw-material stock

PURPOSE:
  Every stock-affecting event on a raw material goes through
  Ledger.Record (or applyMovement, its inside-a-transaction form). The
  material's cached Stock is a derived value: it must always equal the
  signed sum of movements, and this file is the only code that writes
  it.

INVARIANTS:
 1. Raw-material stock never goes negative. A debit exceeding the
    current balance fails before any mutation.
 2. Quantities are strictly positive; direction carries the sign.
 3. Movement append and balance update happen in one transactional
    unit.
 4. Writes to the same material serialize on its key lock; reads and
    writes to unrelated materials are never blocked.
*/
package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/warp/fulfillment-engine/catalog"
	"github.com/warp/fulfillment-engine/inventory"
)

// Ledger owns raw-material stock. Balances are maintained as a rounded
// running total alongside the append-only movement log.
type Ledger struct {
	store TxStore
	locks *KeyLocks
	log   *logrus.Logger
}

func NewLedger(store TxStore, locks *KeyLocks, log *logrus.Logger) *Ledger {
	return &Ledger{store: store, locks: locks, log: log}
}

// Record applies a single stock movement atomically: it checks the
// balance, updates the cached stock and appends the movement in one
// transaction, holding the material's key lock for the whole
// check-and-write.
func (l *Ledger) Record(ctx context.Context, rawMaterialID int64, direction inventory.Direction, qty decimal.Decimal, notes string) (*inventory.Movement, error) {
	unlock := l.locks.Lock(MaterialKey(rawMaterialID))
	defer unlock()

	var mv *inventory.Movement
	err := l.store.WithTx(ctx, func(tx Store) error {
		var err error
		mv, err = applyMovement(ctx, tx, rawMaterialID, direction, qty, notes)
		return err
	})
	if err != nil {
		return nil, err
	}

	l.log.WithFields(logrus.Fields{
		"module":        "ledger",
		"rawMaterialId": rawMaterialID,
		"direction":     direction,
		"quantity":      qty.String(),
		"balance":       mv.BalanceAfter.String(),
	}).Info("stock movement recorded")
	return mv, nil
}

// BalanceOf returns the current balance of a raw material. The cached
// stock is authoritative because the ledger is its only write path.
func (l *Ledger) BalanceOf(ctx context.Context, rawMaterialID int64) (decimal.Decimal, error) {
	m, err := l.store.GetRawMaterial(ctx, rawMaterialID)
	if err != nil {
		return decimal.Zero, err
	}
	return m.Stock, nil
}

// Movements returns the movement history for a material, or all
// movements when rawMaterialID is zero.
func (l *Ledger) Movements(ctx context.Context, rawMaterialID int64) ([]inventory.Movement, error) {
	return l.store.ListMovements(ctx, rawMaterialID)
}

func intDecimal(n int) decimal.Decimal { return decimal.NewFromInt(int64(n)) }

// applyMovement is the inside-a-transaction form of Record. Workflows
// that bundle several movements with an order transition call this
// within their own WithTx, after acquiring the material key locks.
func applyMovement(ctx context.Context, s Store, rawMaterialID int64, direction inventory.Direction, qty decimal.Decimal, notes string) (*inventory.Movement, error) {
	if !direction.Valid() {
		return nil, inventory.ErrInvalidDirection
	}
	if qty.Sign() <= 0 {
		return nil, &inventory.InvalidQuantityError{Quantity: qty}
	}

	m, err := s.GetRawMaterial(ctx, rawMaterialID)
	if err != nil {
		return nil, err
	}

	if direction == inventory.Debit && qty.GreaterThan(m.Stock) {
		return nil, &inventory.InsufficientStockError{Deficits: []inventory.Deficit{{
			RawMaterialID: m.ID,
			Name:          m.Name,
			Required:      qty,
			Available:     m.Stock,
		}}}
	}

	newBalance := m.Stock.Add(direction.Signed(qty)).Round(catalog.StockScale)
	if err := s.UpdateRawMaterialStock(ctx, rawMaterialID, newBalance); err != nil {
		return nil, err
	}

	mv := inventory.Movement{
		ID:            uuid.NewString(),
		RawMaterialID: rawMaterialID,
		Direction:     direction,
		Quantity:      qty,
		Notes:         notes,
		BalanceAfter:  newBalance,
		CreatedAt:     time.Now(),
	}
	if err := s.AppendMovement(ctx, mv); err != nil {
		return nil, err
	}
	return &mv, nil
}
