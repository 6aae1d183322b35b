/*
store.go - Persistence interface for the fulfillment engine

PURPOSE:
  Defines the interface between the workflows and the database. Two
  implementations exist: store/memory (tests, dev) and store/sqlite
  (production).

TRANSACTION COORDINATOR:
  TxStore.WithTx is the cross-entity atomicity primitive. Every sequence
  that mutates more than one record (inventory movement + cached balance,
  stock debit + order status) runs inside a single WithTx call: both
  writes commit together or neither is observed.

APPEND-ONLY CONTRACT:
  AppendMovement is the only write on stock movements. No update or
  delete operation exists for them; corrections are new movements in the
  opposite direction.

SINGLE WRITE PATH:
  UpdateRawMaterialStock exists so the Ledger can maintain the cached
  balance. Nothing outside the Ledger may call it; the cache must always
  equal the signed sum of movements.
*/
package engine

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/warp/fulfillment-engine/catalog"
	"github.com/warp/fulfillment-engine/inventory"
	"github.com/warp/fulfillment-engine/production"
	"github.com/warp/fulfillment-engine/sales"
)

// Store is the persistence surface the workflows operate on. Get*
// methods return a catalog.NotFoundError when the record is absent.
// Save* methods assign IDs to new records (ID == 0).
type Store interface {
	// Raw materials. Stock is written only via UpdateRawMaterialStock,
	// and only by the Ledger.
	GetRawMaterial(ctx context.Context, id int64) (*catalog.RawMaterial, error)
	ListRawMaterials(ctx context.Context) ([]catalog.RawMaterial, error)
	SaveRawMaterial(ctx context.Context, m *catalog.RawMaterial) error
	UpdateRawMaterialStock(ctx context.Context, id int64, stock decimal.Decimal) error

	// Stock movements. Append-only.
	AppendMovement(ctx context.Context, mv inventory.Movement) error
	ListMovements(ctx context.Context, rawMaterialID int64) ([]inventory.Movement, error)

	// Products, with composition loaded.
	GetProduct(ctx context.Context, id int64) (*catalog.Product, error)
	ListProducts(ctx context.Context) ([]catalog.Product, error)
	SaveProduct(ctx context.Context, p *catalog.Product) error
	UpdateProductStock(ctx context.Context, id int64, stock int) error

	// Reference records.
	GetClient(ctx context.Context, id int64) (*catalog.Client, error)
	ListClients(ctx context.Context) ([]catalog.Client, error)
	SaveClient(ctx context.Context, c *catalog.Client) error
	DeleteClient(ctx context.Context, id int64) error
	GetSupplier(ctx context.Context, id int64) (*catalog.Supplier, error)
	ListSuppliers(ctx context.Context) ([]catalog.Supplier, error)
	SaveSupplier(ctx context.Context, s *catalog.Supplier) error
	DeleteSupplier(ctx context.Context, id int64) error

	// Production orders.
	GetProductionOrder(ctx context.Context, id int64) (*production.Order, error)
	ListProductionOrders(ctx context.Context) ([]production.Order, error)
	SaveProductionOrder(ctx context.Context, o *production.Order) error
	DeleteProductionOrder(ctx context.Context, id int64) error

	// HasProductionOrderForSalesOrder reports whether any production
	// order is linked to the given sales order. This is the idempotency
	// guard for compensating-order creation.
	HasProductionOrderForSalesOrder(ctx context.Context, salesOrderID int64) (bool, error)

	// Sales orders, with items loaded.
	GetSalesOrder(ctx context.Context, id int64) (*sales.Order, error)
	ListSalesOrders(ctx context.Context) ([]sales.Order, error)
	SaveSalesOrder(ctx context.Context, o *sales.Order) error
	DeleteSalesOrder(ctx context.Context, id int64) error
}

// TxStore wraps Store with transaction support. This is the engine's
// transaction coordinator.
type TxStore interface {
	Store

	// WithTx executes fn within a transaction.
	// If fn returns an error, every write made inside is rolled back.
	// If fn returns nil, all writes commit together.
	WithTx(ctx context.Context, fn func(Store) error) error
}
