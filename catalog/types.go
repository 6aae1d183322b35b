/*
Package catalog holds the reference entities the fulfillment engine
consumes: raw materials, finished products with their composition,
clients and suppliers.

OWNERSHIP RULES:
  - RawMaterial.Stock is a derived cache of the inventory ledger. The
    ledger is the only write path; nothing else may touch it.
  - Product.Stock is mutated only inside engine transactions (production
    completion credits it, sales confirmation debits it).
  - Composition is a snapshot read at the moment a production order
    starts. An empty composition means the product cannot be manufactured
    here, only stocked manually.

PRECISION:
  - Raw material stock: 2 decimal places.
  - Composition quantity per unit: 3 decimal places.
  - Arithmetic stays at full decimal precision; rounding happens only
    when a balance is written back.
*/
package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockScale is the scale raw-material balances are rounded to on write.
const StockScale = 2

// CompositionScale is the scale of per-unit composition quantities.
const CompositionScale = 3

// =============================================================================
// RAW MATERIAL
// =============================================================================

// RawMaterial is a purchasable input tracked by the inventory ledger.
type RawMaterial struct {
	ID        int64
	Code      string
	Name      string
	Unit      string // unit of measure, e.g. "m2", "kg", "l"
	Stock     decimal.Decimal
	CreatedAt time.Time
}

// =============================================================================
// PRODUCT + COMPOSITION
// =============================================================================

// CompositionItem is one line of a product's bill of materials:
// how much of a raw material one unit of the product consumes.
type CompositionItem struct {
	RawMaterialID int64
	Quantity      decimal.Decimal // per finished unit, 3dp
}

// Product is a finished good sold in whole units.
type Product struct {
	ID           int64
	Code         string
	Name         string
	SellingPrice decimal.Decimal
	Stock        int
	Composition  []CompositionItem
	CreatedAt    time.Time
}

// Manufacturable reports whether the product has a bill of materials.
func (p *Product) Manufacturable() bool {
	return len(p.Composition) > 0
}

// =============================================================================
// CLIENTS / SUPPLIERS
// =============================================================================

// Client is a sales counterparty. Reference record only.
type Client struct {
	ID        int64
	Name      string
	Email     string
	Phone     string
	Address   string
	CreatedAt time.Time
}

// Supplier is a purchasing counterparty. Reference record only.
type Supplier struct {
	ID        int64
	Name      string
	Email     string
	Phone     string
	Address   string
	CreatedAt time.Time
}
