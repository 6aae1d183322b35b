/*
sales.go - Sales order workflow

PURPOSE:
  Drives the sales order state machine and orchestrates deficit
  resolution through the production workflow.

  PENDING → CONFIRMED     the stock-committing event. Every item is
                          checked against finished-goods stock; on
                          success all debits and the status flip commit
                          in one transaction. On deficit the order stays
                          PENDING, compensating production orders are
                          created (once per sales order, guarded), and
                          the attempt fails with the full report.
  CONFIRMED → SHIPPED     status only; stock was committed at
                          confirmation.
  SHIPPED → DELIVERED     status only.
  {PENDING,CONFIRMED} → CANCELLED
                          status only. Cancelling a CONFIRMED order does
                          NOT restore the debited stock. That reversal
                          is an open product decision and is
                          deliberately absent.

  Items are mutable only while PENDING; the update is a three-way diff
  keyed by product id so existing price snapshots survive quantity
  changes.
*/
package engine

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/warp/fulfillment-engine/inventory"
	"github.com/warp/fulfillment-engine/production"
	"github.com/warp/fulfillment-engine/sales"
)

// SalesWorkflow consumes finished-goods stock and spawns compensating
// production work on deficits.
type SalesWorkflow struct {
	store TxStore
	locks *KeyLocks
	log   *logrus.Logger
}

func NewSalesWorkflow(store TxStore, locks *KeyLocks, log *logrus.Logger) *SalesWorkflow {
	return &SalesWorkflow{store: store, locks: locks, log: log}
}

// ItemInput is one requested order line. The unit price is never taken
// from input; it is snapshotted from the product at creation time.
type ItemInput struct {
	ProductID int64
	Quantity  int
}

// CreateSalesOrderInput carries validated input for Create.
type CreateSalesOrderInput struct {
	ClientID int64
	Items    []ItemInput
	Notes    string
}

// Create registers a new PENDING order. Each item resolves the product's
// current selling price as its snapshot. A missing product or client
// aborts the whole operation; bad items are never silently skipped.
func (w *SalesWorkflow) Create(ctx context.Context, in CreateSalesOrderInput) (*sales.Order, error) {
	if len(in.Items) == 0 {
		return nil, sales.ErrEmptyOrder
	}
	if _, err := w.store.GetClient(ctx, in.ClientID); err != nil {
		return nil, err
	}

	items := make([]sales.Item, 0, len(in.Items))
	seen := make(map[int64]bool, len(in.Items))
	for _, it := range in.Items {
		if it.Quantity <= 0 {
			return nil, &inventory.InvalidQuantityError{Quantity: intDecimal(it.Quantity)}
		}
		if seen[it.ProductID] {
			return nil, &sales.DuplicateItemError{ProductID: it.ProductID}
		}
		seen[it.ProductID] = true
		p, err := w.store.GetProduct(ctx, it.ProductID)
		if err != nil {
			return nil, err
		}
		if p.SellingPrice.Sign() < 0 {
			return nil, &sales.InvalidPriceError{ProductID: p.ID, Price: p.SellingPrice}
		}
		items = append(items, sales.Item{
			ProductID: p.ID,
			Quantity:  it.Quantity,
			UnitPrice: p.SellingPrice,
		})
	}

	order := sales.NewOrder(in.ClientID, items, in.Notes)
	if err := w.store.SaveSalesOrder(ctx, order); err != nil {
		return nil, err
	}

	w.log.WithFields(logrus.Fields{
		"module":      "sales",
		"orderNumber": order.OrderNumber,
		"clientId":    order.ClientID,
		"items":       len(order.Items),
		"total":       order.TotalAmount.String(),
	}).Info("sales order created")
	return order, nil
}

// Get loads a single order.
func (w *SalesWorkflow) Get(ctx context.Context, id int64) (*sales.Order, error) {
	return w.store.GetSalesOrder(ctx, id)
}

// List returns all orders.
func (w *SalesWorkflow) List(ctx context.Context) ([]sales.Order, error) {
	return w.store.ListSalesOrders(ctx)
}

// UpdateItems replaces the item list of a PENDING order using a
// three-way diff keyed by product id: lines present in both are
// quantity-updated (keeping their price snapshot), new lines are
// inserted with a freshly resolved price, and lines absent from the new
// set are removed. The total is recomputed afterwards.
func (w *SalesWorkflow) UpdateItems(ctx context.Context, id int64, items []ItemInput) (*sales.Order, error) {
	if len(items) == 0 {
		return nil, sales.ErrEmptyOrder
	}

	var updated *sales.Order
	err := w.store.WithTx(ctx, func(tx Store) error {
		o, err := tx.GetSalesOrder(ctx, id)
		if err != nil {
			return err
		}
		if !o.Editable() {
			return &sales.NotEditableError{Status: o.Status}
		}

		existing := make(map[int64]sales.Item, len(o.Items))
		for _, it := range o.Items {
			existing[it.ProductID] = it
		}

		next := make([]sales.Item, 0, len(items))
		seen := make(map[int64]bool, len(items))
		for _, in := range items {
			if in.Quantity <= 0 {
				return &inventory.InvalidQuantityError{Quantity: intDecimal(in.Quantity)}
			}
			if seen[in.ProductID] {
				return &sales.DuplicateItemError{ProductID: in.ProductID}
			}
			seen[in.ProductID] = true
			if prev, ok := existing[in.ProductID]; ok {
				prev.Quantity = in.Quantity
				next = append(next, prev)
				continue
			}
			p, err := tx.GetProduct(ctx, in.ProductID)
			if err != nil {
				return err
			}
			if p.SellingPrice.Sign() < 0 {
				return &sales.InvalidPriceError{ProductID: p.ID, Price: p.SellingPrice}
			}
			next = append(next, sales.Item{
				ProductID: p.ID,
				Quantity:  in.Quantity,
				UnitPrice: p.SellingPrice,
			})
		}

		o.Items = next
		o.RecalculateTotal()
		if err := tx.SaveSalesOrder(ctx, o); err != nil {
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

// UpdateNotes replaces the free-text notes, any status.
func (w *SalesWorkflow) UpdateNotes(ctx context.Context, id int64, notes string) (*sales.Order, error) {
	var updated *sales.Order
	err := w.store.WithTx(ctx, func(tx Store) error {
		o, err := tx.GetSalesOrder(ctx, id)
		if err != nil {
			return err
		}
		o.Notes = notes
		if err := tx.SaveSalesOrder(ctx, o); err != nil {
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

// Transition dispatches a requested status change.
func (w *SalesWorkflow) Transition(ctx context.Context, id int64, target sales.Status) (*sales.Order, error) {
	switch target {
	case sales.StatusConfirmed:
		return w.Confirm(ctx, id)
	case sales.StatusProcessing, sales.StatusShipped, sales.StatusDelivered, sales.StatusCancelled:
		return w.statusOnly(ctx, id, target)
	default:
		order, err := w.store.GetSalesOrder(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, &sales.InvalidTransitionError{From: order.Status, To: target}
	}
}

// Confirm attempts PENDING → CONFIRMED. On success every item's product
// stock is debited atomically with the status flip. On deficit the
// transaction is rolled back untouched, exactly one compensating
// production order per deficient product is created (sized to the
// shortfall, linked to this sales order) unless one is already linked,
// and the attempt fails with the full deficiency and creation report.
func (w *SalesWorkflow) Confirm(ctx context.Context, id int64) (*sales.Order, error) {
	order, err := w.store.GetSalesOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(order.Items))
	for _, it := range order.Items {
		keys = append(keys, ProductKey(it.ProductID))
	}
	unlock := w.locks.LockAll(keys)
	defer unlock()

	var (
		updated  *sales.Order
		deficits []sales.ProductDeficit
	)
	err = w.store.WithTx(ctx, func(tx Store) error {
		o, err := tx.GetSalesOrder(ctx, id)
		if err != nil {
			return err
		}
		if !o.CanTransitionTo(sales.StatusConfirmed) {
			return &sales.InvalidTransitionError{From: o.Status, To: sales.StatusConfirmed}
		}

		// Quantities are summed per product before anything is checked.
		// Two lines for the same product must not each pass the check
		// independently and jointly overdraw the stock.
		productIDs := make([]int64, 0, len(o.Items))
		needed := make(map[int64]int, len(o.Items))
		for _, it := range o.Items {
			if _, ok := needed[it.ProductID]; !ok {
				productIDs = append(productIDs, it.ProductID)
			}
			needed[it.ProductID] += it.Quantity
		}

		// Full check first: the caller gets every deficiency, and a
		// deficit discovered on the third product must not leave the
		// first two debited. The rollback guarantees the latter, the
		// collection loop the former.
		for _, pid := range productIDs {
			p, err := tx.GetProduct(ctx, pid)
			if err != nil {
				return err
			}
			if p.Stock < needed[pid] {
				deficits = append(deficits, sales.ProductDeficit{
					ProductID: p.ID,
					Name:      p.Name,
					Needed:    needed[pid],
					Available: p.Stock,
				})
			}
		}
		if len(deficits) > 0 {
			return inventory.ErrInsufficientStock // rollback; report built below
		}

		for _, pid := range productIDs {
			p, err := tx.GetProduct(ctx, pid)
			if err != nil {
				return err
			}
			if err := tx.UpdateProductStock(ctx, pid, p.Stock-needed[pid]); err != nil {
				return err
			}
		}

		if err := o.TransitionTo(sales.StatusConfirmed); err != nil {
			return err
		}
		if err := tx.SaveSalesOrder(ctx, o); err != nil {
			return err
		}
		updated = o
		return nil
	})

	if len(deficits) > 0 {
		return nil, w.resolveDeficits(ctx, order, deficits)
	}
	if err != nil {
		return nil, err
	}

	w.log.WithFields(logrus.Fields{
		"module":      "sales",
		"orderNumber": updated.OrderNumber,
		"items":       len(updated.Items),
	}).Info("sales order confirmed")
	return updated, nil
}

// resolveDeficits creates the compensating production orders for a
// failed confirmation and builds the structured failure.
//
// The idempotency guard is per sales order: if ANY production order is
// already linked to it, nothing new is created. Repeated confirmation
// attempts on an under-stocked order therefore never duplicate
// compensating work. Creation failures are collected per product and
// reported alongside the successes; the pass is never aborted on the
// first failure.
func (w *SalesWorkflow) resolveDeficits(ctx context.Context, order *sales.Order, deficits []sales.ProductDeficit) error {
	failure := &sales.StockDeficitError{Deficits: deficits}

	already, err := w.store.HasProductionOrderForSalesOrder(ctx, order.ID)
	if err != nil {
		w.log.WithFields(logrus.Fields{
			"module":      "sales",
			"orderNumber": order.OrderNumber,
		}).WithError(err).Error("compensating order guard check failed")
		failure.Failures = append(failure.Failures, sales.CompensationFailure{Reason: err.Error()})
		return failure
	}
	if already {
		w.log.WithFields(logrus.Fields{
			"module":      "sales",
			"orderNumber": order.OrderNumber,
		}).Info("compensating production orders already exist, skipping creation")
		return failure
	}

	for _, d := range deficits {
		salesOrderID := order.ID
		po := production.NewOrder(d.ProductID, d.Shortfall(),
			"auto-generated to cover deficit of sales order "+order.OrderNumber, &salesOrderID)
		if err := w.store.SaveProductionOrder(ctx, po); err != nil {
			w.log.WithFields(logrus.Fields{
				"module":      "sales",
				"orderNumber": order.OrderNumber,
				"productId":   d.ProductID,
			}).WithError(err).Error("failed to create compensating production order")
			failure.Failures = append(failure.Failures, sales.CompensationFailure{
				ProductID: d.ProductID,
				Reason:    err.Error(),
			})
			continue
		}
		failure.CreatedProductionOrders = append(failure.CreatedProductionOrders, po.OrderNumber)
		w.log.WithFields(logrus.Fields{
			"module":        "sales",
			"orderNumber":   order.OrderNumber,
			"productionOrd": po.OrderNumber,
			"quantity":      po.QuantityToProduce,
		}).Info("compensating production order created")
	}
	return failure
}

// statusOnly performs a transition with no inventory effect.
func (w *SalesWorkflow) statusOnly(ctx context.Context, id int64, target sales.Status) (*sales.Order, error) {
	var updated *sales.Order
	err := w.store.WithTx(ctx, func(tx Store) error {
		o, err := tx.GetSalesOrder(ctx, id)
		if err != nil {
			return err
		}
		if err := o.TransitionTo(target); err != nil {
			return err
		}
		if err := tx.SaveSalesOrder(ctx, o); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	w.log.WithFields(logrus.Fields{
		"module":      "sales",
		"orderNumber": updated.OrderNumber,
		"status":      updated.Status,
	}).Info("sales order transitioned")
	return updated, nil
}

// Delete removes an order. Allowed only in PENDING or CANCELLED.
func (w *SalesWorkflow) Delete(ctx context.Context, id int64) error {
	order, err := w.store.GetSalesOrder(ctx, id)
	if err != nil {
		return err
	}
	if !order.Deletable() {
		return &sales.InvalidStateError{Status: order.Status, Action: "delete"}
	}
	return w.store.DeleteSalesOrder(ctx, id)
}
