package catalog

import (
	"github.com/shopspring/decimal"
)

// Requirement is the total quantity of one raw material needed to
// manufacture a given number of product units.
type Requirement struct {
	RawMaterialID int64
	Quantity      decimal.Decimal
}

// Requirements expands a product's bill of materials for the given
// quantity. Pure and read-only: quantities are perUnit × quantity at
// full decimal precision, with no rounding. Rounding is deferred to the
// final comparison against a ledger balance.
//
// Returns ErrNoComposition when the product has no bill of materials.
func Requirements(p *Product, quantity int) ([]Requirement, error) {
	if !p.Manufacturable() {
		return nil, &NoCompositionError{ProductID: p.ID, Name: p.Name}
	}

	qty := decimal.NewFromInt(int64(quantity))
	reqs := make([]Requirement, 0, len(p.Composition))
	for _, item := range p.Composition {
		reqs = append(reqs, Requirement{
			RawMaterialID: item.RawMaterialID,
			Quantity:      item.Quantity.Mul(qty),
		})
	}
	return reqs, nil
}
