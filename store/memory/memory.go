// Package memory provides an in-memory engine.TxStore for tests and
// development. WithTx is simulated with a snapshot of the whole state
// restored on error, the same all-or-nothing behavior the sqlite store
// gets from database transactions.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/fulfillment-engine/catalog"
	"github.com/warp/fulfillment-engine/engine"
	"github.com/warp/fulfillment-engine/inventory"
	"github.com/warp/fulfillment-engine/production"
	"github.com/warp/fulfillment-engine/sales"
)

// Store implements engine.TxStore with plain maps. All entities are
// stored and returned by value so callers can never alias internal
// state.
type Store struct {
	mu   sync.RWMutex
	data *data
}

type data struct {
	materials        map[int64]catalog.RawMaterial
	movements        []inventory.Movement
	products         map[int64]catalog.Product
	clients          map[int64]catalog.Client
	suppliers        map[int64]catalog.Supplier
	productionOrders map[int64]production.Order
	salesOrders      map[int64]sales.Order
	nextID           int64
}

func New() *Store {
	return &Store{data: &data{
		materials:        make(map[int64]catalog.RawMaterial),
		products:         make(map[int64]catalog.Product),
		clients:          make(map[int64]catalog.Client),
		suppliers:        make(map[int64]catalog.Supplier),
		productionOrders: make(map[int64]production.Order),
		salesOrders:      make(map[int64]sales.Order),
	}}
}

func (d *data) id() int64 {
	d.nextID++
	return d.nextID
}

// =============================================================================
// SNAPSHOT / RESTORE (transaction simulation)
// =============================================================================

func (d *data) clone() *data {
	c := &data{
		materials:        make(map[int64]catalog.RawMaterial, len(d.materials)),
		movements:        append([]inventory.Movement(nil), d.movements...),
		products:         make(map[int64]catalog.Product, len(d.products)),
		clients:          make(map[int64]catalog.Client, len(d.clients)),
		suppliers:        make(map[int64]catalog.Supplier, len(d.suppliers)),
		productionOrders: make(map[int64]production.Order, len(d.productionOrders)),
		salesOrders:      make(map[int64]sales.Order, len(d.salesOrders)),
		nextID:           d.nextID,
	}
	for k, v := range d.materials {
		c.materials[k] = v
	}
	for k, v := range d.products {
		v.Composition = append([]catalog.CompositionItem(nil), v.Composition...)
		c.products[k] = v
	}
	for k, v := range d.clients {
		c.clients[k] = v
	}
	for k, v := range d.suppliers {
		c.suppliers[k] = v
	}
	for k, v := range d.productionOrders {
		c.productionOrders[k] = v
	}
	for k, v := range d.salesOrders {
		v.Items = append([]sales.Item(nil), v.Items...)
		c.salesOrders[k] = v
	}
	return c
}

// WithTx executes fn against the live state while holding the write
// lock. On error the pre-transaction snapshot is restored, so partial
// writes are never observed.
func (s *Store) WithTx(ctx context.Context, fn func(engine.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	if err := fn(&txView{data: s.data}); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

// txView runs store operations against already-locked data.
type txView struct {
	data *data
}

// =============================================================================
// LOCKED OPERATIONS (shared by Store and txView)
// =============================================================================

func copyProduct(p catalog.Product) catalog.Product {
	p.Composition = append([]catalog.CompositionItem(nil), p.Composition...)
	return p
}

func copySalesOrder(o sales.Order) sales.Order {
	o.Items = append([]sales.Item(nil), o.Items...)
	return o
}

func (d *data) getRawMaterial(id int64) (*catalog.RawMaterial, error) {
	m, ok := d.materials[id]
	if !ok {
		return nil, &catalog.NotFoundError{Kind: "raw material", ID: id}
	}
	return &m, nil
}

func (d *data) listRawMaterials() []catalog.RawMaterial {
	out := make([]catalog.RawMaterial, 0, len(d.materials))
	for _, m := range d.materials {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (d *data) saveRawMaterial(m *catalog.RawMaterial) error {
	if m.ID == 0 {
		m.ID = d.id()
		if m.CreatedAt.IsZero() {
			m.CreatedAt = time.Now()
		}
	}
	d.materials[m.ID] = *m
	return nil
}

func (d *data) updateRawMaterialStock(id int64, stock decimal.Decimal) error {
	m, ok := d.materials[id]
	if !ok {
		return &catalog.NotFoundError{Kind: "raw material", ID: id}
	}
	m.Stock = stock
	d.materials[id] = m
	return nil
}

func (d *data) appendMovement(mv inventory.Movement) error {
	d.movements = append(d.movements, mv)
	return nil
}

func (d *data) listMovements(rawMaterialID int64) []inventory.Movement {
	var out []inventory.Movement
	for _, mv := range d.movements {
		if rawMaterialID == 0 || mv.RawMaterialID == rawMaterialID {
			out = append(out, mv)
		}
	}
	// Newest first.
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (d *data) getProduct(id int64) (*catalog.Product, error) {
	p, ok := d.products[id]
	if !ok {
		return nil, &catalog.NotFoundError{Kind: "product", ID: id}
	}
	p = copyProduct(p)
	return &p, nil
}

func (d *data) listProducts() []catalog.Product {
	out := make([]catalog.Product, 0, len(d.products))
	for _, p := range d.products {
		out = append(out, copyProduct(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (d *data) saveProduct(p *catalog.Product) error {
	if p.ID == 0 {
		p.ID = d.id()
		if p.CreatedAt.IsZero() {
			p.CreatedAt = time.Now()
		}
	}
	d.products[p.ID] = copyProduct(*p)
	return nil
}

func (d *data) updateProductStock(id int64, stock int) error {
	p, ok := d.products[id]
	if !ok {
		return &catalog.NotFoundError{Kind: "product", ID: id}
	}
	p.Stock = stock
	d.products[id] = p
	return nil
}

func (d *data) getClient(id int64) (*catalog.Client, error) {
	c, ok := d.clients[id]
	if !ok {
		return nil, &catalog.NotFoundError{Kind: "client", ID: id}
	}
	return &c, nil
}

func (d *data) listClients() []catalog.Client {
	out := make([]catalog.Client, 0, len(d.clients))
	for _, c := range d.clients {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (d *data) saveClient(c *catalog.Client) error {
	if c.ID == 0 {
		c.ID = d.id()
		if c.CreatedAt.IsZero() {
			c.CreatedAt = time.Now()
		}
	}
	d.clients[c.ID] = *c
	return nil
}

func (d *data) deleteClient(id int64) error {
	if _, ok := d.clients[id]; !ok {
		return &catalog.NotFoundError{Kind: "client", ID: id}
	}
	delete(d.clients, id)
	return nil
}

func (d *data) getSupplier(id int64) (*catalog.Supplier, error) {
	sp, ok := d.suppliers[id]
	if !ok {
		return nil, &catalog.NotFoundError{Kind: "supplier", ID: id}
	}
	return &sp, nil
}

func (d *data) listSuppliers() []catalog.Supplier {
	out := make([]catalog.Supplier, 0, len(d.suppliers))
	for _, sp := range d.suppliers {
		out = append(out, sp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (d *data) saveSupplier(sp *catalog.Supplier) error {
	if sp.ID == 0 {
		sp.ID = d.id()
		if sp.CreatedAt.IsZero() {
			sp.CreatedAt = time.Now()
		}
	}
	d.suppliers[sp.ID] = *sp
	return nil
}

func (d *data) deleteSupplier(id int64) error {
	if _, ok := d.suppliers[id]; !ok {
		return &catalog.NotFoundError{Kind: "supplier", ID: id}
	}
	delete(d.suppliers, id)
	return nil
}

func (d *data) getProductionOrder(id int64) (*production.Order, error) {
	o, ok := d.productionOrders[id]
	if !ok {
		return nil, &catalog.NotFoundError{Kind: "production order", ID: id}
	}
	return &o, nil
}

func (d *data) listProductionOrders() []production.Order {
	out := make([]production.Order, 0, len(d.productionOrders))
	for _, o := range d.productionOrders {
		out = append(out, o)
	}
	// Newest first.
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (d *data) saveProductionOrder(o *production.Order) error {
	if o.ID == 0 {
		o.ID = d.id()
	}
	d.productionOrders[o.ID] = *o
	return nil
}

func (d *data) deleteProductionOrder(id int64) error {
	if _, ok := d.productionOrders[id]; !ok {
		return &catalog.NotFoundError{Kind: "production order", ID: id}
	}
	delete(d.productionOrders, id)
	return nil
}

func (d *data) hasProductionOrderForSalesOrder(salesOrderID int64) bool {
	for _, o := range d.productionOrders {
		if o.SalesOrderID != nil && *o.SalesOrderID == salesOrderID {
			return true
		}
	}
	return false
}

func (d *data) getSalesOrder(id int64) (*sales.Order, error) {
	o, ok := d.salesOrders[id]
	if !ok {
		return nil, &catalog.NotFoundError{Kind: "sales order", ID: id}
	}
	o = copySalesOrder(o)
	return &o, nil
}

func (d *data) listSalesOrders() []sales.Order {
	out := make([]sales.Order, 0, len(d.salesOrders))
	for _, o := range d.salesOrders {
		out = append(out, copySalesOrder(o))
	}
	// Newest first.
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (d *data) saveSalesOrder(o *sales.Order) error {
	if o.ID == 0 {
		o.ID = d.id()
	}
	for i := range o.Items {
		if o.Items[i].ID == 0 {
			o.Items[i].ID = d.id()
		}
	}
	d.salesOrders[o.ID] = copySalesOrder(*o)
	return nil
}

func (d *data) deleteSalesOrder(id int64) error {
	if _, ok := d.salesOrders[id]; !ok {
		return &catalog.NotFoundError{Kind: "sales order", ID: id}
	}
	delete(d.salesOrders, id)
	return nil
}
