/*
production.go - Production order workflow

PURPOSE:
  Drives the production order state machine over the inventory ledger.

  PENDING → IN_PROGRESS   resolve the BOM, check every requirement
                          against the ledger, then debit all raw
                          materials and flip the status in one
                          transaction. The debit at start IS the
                          reservation.
  IN_PROGRESS → COMPLETED credit the finished product's stock and flip
                          the status in one transaction.
  PENDING → CANCELLED     status only; nothing to reverse.

  A failed requirement check reports EVERY deficient material, not just
  the first: the caller needs the full deficiency set to act. A debit
  failure after partial debits rolls back every debit already applied,
  because the whole transition runs inside one WithTx.
*/
package engine

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/warp/fulfillment-engine/catalog"
	"github.com/warp/fulfillment-engine/inventory"
	"github.com/warp/fulfillment-engine/production"
)

// ProductionWorkflow converts raw materials into finished-goods stock.
type ProductionWorkflow struct {
	store TxStore
	locks *KeyLocks
	log   *logrus.Logger
}

func NewProductionWorkflow(store TxStore, locks *KeyLocks, log *logrus.Logger) *ProductionWorkflow {
	return &ProductionWorkflow{store: store, locks: locks, log: log}
}

// CreateProductionOrderInput carries validated input for Create.
type CreateProductionOrderInput struct {
	ProductID    int64
	Quantity     int
	Notes        string
	SalesOrderID *int64
}

// Create registers a new order in PENDING. The product must exist; the
// composition is not checked until the order starts.
func (w *ProductionWorkflow) Create(ctx context.Context, in CreateProductionOrderInput) (*production.Order, error) {
	if in.Quantity <= 0 {
		return nil, &inventory.InvalidQuantityError{Quantity: intDecimal(in.Quantity)}
	}
	if _, err := w.store.GetProduct(ctx, in.ProductID); err != nil {
		return nil, err
	}
	if in.SalesOrderID != nil {
		if _, err := w.store.GetSalesOrder(ctx, *in.SalesOrderID); err != nil {
			return nil, err
		}
	}

	order := production.NewOrder(in.ProductID, in.Quantity, in.Notes, in.SalesOrderID)
	if err := w.store.SaveProductionOrder(ctx, order); err != nil {
		return nil, err
	}

	w.log.WithFields(logrus.Fields{
		"module":      "production",
		"orderNumber": order.OrderNumber,
		"productId":   order.ProductID,
		"quantity":    order.QuantityToProduce,
	}).Info("production order created")
	return order, nil
}

// Get loads a single order.
func (w *ProductionWorkflow) Get(ctx context.Context, id int64) (*production.Order, error) {
	return w.store.GetProductionOrder(ctx, id)
}

// List returns all orders.
func (w *ProductionWorkflow) List(ctx context.Context) ([]production.Order, error) {
	return w.store.ListProductionOrders(ctx)
}

// Transition dispatches a requested status change.
func (w *ProductionWorkflow) Transition(ctx context.Context, id int64, target production.Status, notes string) (*production.Order, error) {
	switch target {
	case production.StatusInProgress:
		return w.Start(ctx, id)
	case production.StatusCompleted:
		return w.Complete(ctx, id)
	case production.StatusCancelled:
		return w.Cancel(ctx, id, notes)
	default:
		order, err := w.store.GetProductionOrder(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, &production.InvalidTransitionError{From: order.Status, To: target}
	}
}

// Start moves PENDING → IN_PROGRESS. The raw-material consumption is
// computed here, once, from the composition snapshot at this moment.
// All requirement checks and debits happen in one transaction while the
// involved material keys are held: all-or-nothing.
func (w *ProductionWorkflow) Start(ctx context.Context, id int64) (*production.Order, error) {
	// Resolve the lock set up front from the current composition. The
	// composition is re-read inside the transaction; the lock set can
	// only be stale if the BOM changes mid-flight, and the re-read keeps
	// the check itself consistent.
	order, err := w.store.GetProductionOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	product, err := w.store.GetProduct(ctx, order.ProductID)
	if err != nil {
		return nil, err
	}
	reqs, err := catalog.Requirements(product, order.QuantityToProduce)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(reqs))
	for _, r := range reqs {
		keys = append(keys, MaterialKey(r.RawMaterialID))
	}
	unlock := w.locks.LockAll(keys)
	defer unlock()

	var updated *production.Order
	err = w.store.WithTx(ctx, func(tx Store) error {
		o, err := tx.GetProductionOrder(ctx, id)
		if err != nil {
			return err
		}
		if !o.CanTransitionTo(production.StatusInProgress) {
			return &production.InvalidTransitionError{From: o.Status, To: production.StatusInProgress}
		}

		p, err := tx.GetProduct(ctx, o.ProductID)
		if err != nil {
			return err
		}
		reqs, err := catalog.Requirements(p, o.QuantityToProduce)
		if err != nil {
			return err
		}

		// First pass: collect every deficiency before touching anything.
		var deficits []inventory.Deficit
		for _, r := range reqs {
			m, err := tx.GetRawMaterial(ctx, r.RawMaterialID)
			if err != nil {
				return err
			}
			if r.Quantity.GreaterThan(m.Stock) {
				deficits = append(deficits, inventory.Deficit{
					RawMaterialID: m.ID,
					Name:          m.Name,
					Required:      r.Quantity,
					Available:     m.Stock,
				})
			}
		}
		if len(deficits) > 0 {
			return &inventory.InsufficientStockError{Deficits: deficits}
		}

		// Second pass: debit everything. Any failure rolls back the
		// debits already applied in this transition.
		for _, r := range reqs {
			if _, err := applyMovement(ctx, tx, r.RawMaterialID, inventory.Debit, r.Quantity,
				"consumption for production order "+o.OrderNumber); err != nil {
				return err
			}
		}

		if err := o.TransitionTo(production.StatusInProgress); err != nil {
			return err
		}
		if err := tx.SaveProductionOrder(ctx, o); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	w.log.WithFields(logrus.Fields{
		"module":      "production",
		"orderNumber": updated.OrderNumber,
		"materials":   len(reqs),
	}).Info("production order started")
	return updated, nil
}

// Complete moves IN_PROGRESS → COMPLETED, crediting the finished
// product's stock atomically with the status change.
func (w *ProductionWorkflow) Complete(ctx context.Context, id int64) (*production.Order, error) {
	order, err := w.store.GetProductionOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	unlock := w.locks.Lock(ProductKey(order.ProductID))
	defer unlock()

	var updated *production.Order
	err = w.store.WithTx(ctx, func(tx Store) error {
		o, err := tx.GetProductionOrder(ctx, id)
		if err != nil {
			return err
		}
		if !o.CanTransitionTo(production.StatusCompleted) {
			return &production.InvalidTransitionError{From: o.Status, To: production.StatusCompleted}
		}

		p, err := tx.GetProduct(ctx, o.ProductID)
		if err != nil {
			return err
		}
		if err := tx.UpdateProductStock(ctx, p.ID, p.Stock+o.QuantityToProduce); err != nil {
			return err
		}

		if err := o.TransitionTo(production.StatusCompleted); err != nil {
			return err
		}
		if err := tx.SaveProductionOrder(ctx, o); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	w.log.WithFields(logrus.Fields{
		"module":      "production",
		"orderNumber": updated.OrderNumber,
		"productId":   updated.ProductID,
		"quantity":    updated.QuantityToProduce,
	}).Info("production order completed")
	return updated, nil
}

// Cancel moves PENDING → CANCELLED. Nothing was consumed, so there is
// nothing to reverse. The optional note is appended to the order.
func (w *ProductionWorkflow) Cancel(ctx context.Context, id int64, notes string) (*production.Order, error) {
	var updated *production.Order
	err := w.store.WithTx(ctx, func(tx Store) error {
		o, err := tx.GetProductionOrder(ctx, id)
		if err != nil {
			return err
		}
		if err := o.TransitionTo(production.StatusCancelled); err != nil {
			return err
		}
		o.AppendCancellationNote(notes)
		if err := tx.SaveProductionOrder(ctx, o); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes an order. Allowed only in PENDING or CANCELLED: an
// order with committed consumption or production must not disappear.
func (w *ProductionWorkflow) Delete(ctx context.Context, id int64) error {
	order, err := w.store.GetProductionOrder(ctx, id)
	if err != nil {
		return err
	}
	if !order.Deletable() {
		return &production.InvalidStateError{Status: order.Status, Action: "delete"}
	}
	return w.store.DeleteProductionOrder(ctx, id)
}
