package memory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/warp/fulfillment-engine/catalog"
	"github.com/warp/fulfillment-engine/inventory"
	"github.com/warp/fulfillment-engine/production"
	"github.com/warp/fulfillment-engine/sales"
)

// =============================================================================
// Store: engine.Store with locking
// =============================================================================

func (s *Store) GetRawMaterial(ctx context.Context, id int64) (*catalog.RawMaterial, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.getRawMaterial(id)
}

func (s *Store) ListRawMaterials(ctx context.Context) ([]catalog.RawMaterial, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.listRawMaterials(), nil
}

func (s *Store) SaveRawMaterial(ctx context.Context, m *catalog.RawMaterial) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.saveRawMaterial(m)
}

func (s *Store) UpdateRawMaterialStock(ctx context.Context, id int64, stock decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.updateRawMaterialStock(id, stock)
}

func (s *Store) AppendMovement(ctx context.Context, mv inventory.Movement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.appendMovement(mv)
}

func (s *Store) ListMovements(ctx context.Context, rawMaterialID int64) ([]inventory.Movement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.listMovements(rawMaterialID), nil
}

func (s *Store) GetProduct(ctx context.Context, id int64) (*catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.getProduct(id)
}

func (s *Store) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.listProducts(), nil
}

func (s *Store) SaveProduct(ctx context.Context, p *catalog.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.saveProduct(p)
}

func (s *Store) UpdateProductStock(ctx context.Context, id int64, stock int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.updateProductStock(id, stock)
}

func (s *Store) GetClient(ctx context.Context, id int64) (*catalog.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.getClient(id)
}

func (s *Store) ListClients(ctx context.Context) ([]catalog.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.listClients(), nil
}

func (s *Store) SaveClient(ctx context.Context, c *catalog.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.saveClient(c)
}

func (s *Store) DeleteClient(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.deleteClient(id)
}

func (s *Store) GetSupplier(ctx context.Context, id int64) (*catalog.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.getSupplier(id)
}

func (s *Store) ListSuppliers(ctx context.Context) ([]catalog.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.listSuppliers(), nil
}

func (s *Store) SaveSupplier(ctx context.Context, sp *catalog.Supplier) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.saveSupplier(sp)
}

func (s *Store) DeleteSupplier(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.deleteSupplier(id)
}

func (s *Store) GetProductionOrder(ctx context.Context, id int64) (*production.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.getProductionOrder(id)
}

func (s *Store) ListProductionOrders(ctx context.Context) ([]production.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.listProductionOrders(), nil
}

func (s *Store) SaveProductionOrder(ctx context.Context, o *production.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.saveProductionOrder(o)
}

func (s *Store) DeleteProductionOrder(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.deleteProductionOrder(id)
}

func (s *Store) HasProductionOrderForSalesOrder(ctx context.Context, salesOrderID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.hasProductionOrderForSalesOrder(salesOrderID), nil
}

func (s *Store) GetSalesOrder(ctx context.Context, id int64) (*sales.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.getSalesOrder(id)
}

func (s *Store) ListSalesOrders(ctx context.Context) ([]sales.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.listSalesOrders(), nil
}

func (s *Store) SaveSalesOrder(ctx context.Context, o *sales.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.saveSalesOrder(o)
}

func (s *Store) DeleteSalesOrder(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.deleteSalesOrder(id)
}

// =============================================================================
// txView: engine.Store inside WithTx (lock already held)
// =============================================================================

func (t *txView) GetRawMaterial(ctx context.Context, id int64) (*catalog.RawMaterial, error) {
	return t.data.getRawMaterial(id)
}

func (t *txView) ListRawMaterials(ctx context.Context) ([]catalog.RawMaterial, error) {
	return t.data.listRawMaterials(), nil
}

func (t *txView) SaveRawMaterial(ctx context.Context, m *catalog.RawMaterial) error {
	return t.data.saveRawMaterial(m)
}

func (t *txView) UpdateRawMaterialStock(ctx context.Context, id int64, stock decimal.Decimal) error {
	return t.data.updateRawMaterialStock(id, stock)
}

func (t *txView) AppendMovement(ctx context.Context, mv inventory.Movement) error {
	return t.data.appendMovement(mv)
}

func (t *txView) ListMovements(ctx context.Context, rawMaterialID int64) ([]inventory.Movement, error) {
	return t.data.listMovements(rawMaterialID), nil
}

func (t *txView) GetProduct(ctx context.Context, id int64) (*catalog.Product, error) {
	return t.data.getProduct(id)
}

func (t *txView) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	return t.data.listProducts(), nil
}

func (t *txView) SaveProduct(ctx context.Context, p *catalog.Product) error {
	return t.data.saveProduct(p)
}

func (t *txView) UpdateProductStock(ctx context.Context, id int64, stock int) error {
	return t.data.updateProductStock(id, stock)
}

func (t *txView) GetClient(ctx context.Context, id int64) (*catalog.Client, error) {
	return t.data.getClient(id)
}

func (t *txView) ListClients(ctx context.Context) ([]catalog.Client, error) {
	return t.data.listClients(), nil
}

func (t *txView) SaveClient(ctx context.Context, c *catalog.Client) error {
	return t.data.saveClient(c)
}

func (t *txView) DeleteClient(ctx context.Context, id int64) error {
	return t.data.deleteClient(id)
}

func (t *txView) GetSupplier(ctx context.Context, id int64) (*catalog.Supplier, error) {
	return t.data.getSupplier(id)
}

func (t *txView) ListSuppliers(ctx context.Context) ([]catalog.Supplier, error) {
	return t.data.listSuppliers(), nil
}

func (t *txView) SaveSupplier(ctx context.Context, sp *catalog.Supplier) error {
	return t.data.saveSupplier(sp)
}

func (t *txView) DeleteSupplier(ctx context.Context, id int64) error {
	return t.data.deleteSupplier(id)
}

func (t *txView) GetProductionOrder(ctx context.Context, id int64) (*production.Order, error) {
	return t.data.getProductionOrder(id)
}

func (t *txView) ListProductionOrders(ctx context.Context) ([]production.Order, error) {
	return t.data.listProductionOrders(), nil
}

func (t *txView) SaveProductionOrder(ctx context.Context, o *production.Order) error {
	return t.data.saveProductionOrder(o)
}

func (t *txView) DeleteProductionOrder(ctx context.Context, id int64) error {
	return t.data.deleteProductionOrder(id)
}

func (t *txView) HasProductionOrderForSalesOrder(ctx context.Context, salesOrderID int64) (bool, error) {
	return t.data.hasProductionOrderForSalesOrder(salesOrderID), nil
}

func (t *txView) GetSalesOrder(ctx context.Context, id int64) (*sales.Order, error) {
	return t.data.getSalesOrder(id)
}

func (t *txView) ListSalesOrders(ctx context.Context) ([]sales.Order, error) {
	return t.data.listSalesOrders(), nil
}

func (t *txView) SaveSalesOrder(ctx context.Context, o *sales.Order) error {
	return t.data.saveSalesOrder(o)
}

func (t *txView) DeleteSalesOrder(ctx context.Context, id int64) error {
	return t.data.deleteSalesOrder(id)
}
