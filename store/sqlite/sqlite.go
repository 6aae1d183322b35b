/*
Package sqlite provides the SQLite-backed implementation of engine.TxStore.

PURPOSE:
  Durable persistence for the fulfillment engine. In production the same
  patterns apply to PostgreSQL - only minor SQL dialect differences.

APPEND-ONLY ENFORCEMENT:
  The stock_movements table has no UPDATE and no DELETE statements
  anywhere in this package. Corrections are new movements in the
  opposite direction.

KEY TABLES:
  raw_materials:      Material records with the cached stock balance
  stock_movements:    Immutable ledger of all raw-material stock changes
  products:           Finished goods with cached unit stock
  composition_items:  Bill of materials (product -> raw material lines)
  clients, suppliers: Reference records
  production_orders:  Production workflow state
  sales_orders:       Sales workflow state
  sales_order_items:  Order lines with price snapshots

DECIMALS:
  Stock, quantities and prices are stored as TEXT and parsed with
  shopspring/decimal. REAL would lose exactness.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - engine/store.go: Interface definitions
  - store/memory: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/fulfillment-engine/catalog"
	"github.com/warp/fulfillment-engine/engine"
	"github.com/warp/fulfillment-engine/inventory"
	"github.com/warp/fulfillment-engine/production"
	"github.com/warp/fulfillment-engine/sales"
)

// Store implements engine.TxStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS raw_materials (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		code TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		unit TEXT NOT NULL,
		stock TEXT NOT NULL DEFAULT '0',
		created_at TEXT NOT NULL
	);

	-- Append-only ledger. No UPDATE or DELETE is ever issued here.
	CREATE TABLE IF NOT EXISTS stock_movements (
		id TEXT PRIMARY KEY,
		raw_material_id INTEGER NOT NULL REFERENCES raw_materials(id),
		direction TEXT NOT NULL,
		quantity TEXT NOT NULL,
		notes TEXT,
		balance_after TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_movements_material
		ON stock_movements(raw_material_id, created_at DESC);

	CREATE TABLE IF NOT EXISTS products (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		code TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		selling_price TEXT NOT NULL DEFAULT '0',
		stock INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS composition_items (
		product_id INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		raw_material_id INTEGER NOT NULL REFERENCES raw_materials(id),
		quantity TEXT NOT NULL,
		PRIMARY KEY (product_id, raw_material_id)
	);

	CREATE TABLE IF NOT EXISTS clients (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT,
		phone TEXT,
		address TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS suppliers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT,
		phone TEXT,
		address TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS production_orders (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		order_number TEXT NOT NULL UNIQUE,
		product_id INTEGER NOT NULL REFERENCES products(id),
		quantity INTEGER NOT NULL,
		status TEXT NOT NULL,
		sales_order_id INTEGER,
		notes TEXT,
		created_at TEXT NOT NULL,
		started_at TEXT,
		completed_at TEXT
	);

	-- Idempotency guard lookups for compensating orders.
	CREATE INDEX IF NOT EXISTS idx_production_orders_sales_order
		ON production_orders(sales_order_id) WHERE sales_order_id IS NOT NULL;
	CREATE INDEX IF NOT EXISTS idx_production_orders_status
		ON production_orders(status);

	CREATE TABLE IF NOT EXISTS sales_orders (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		order_number TEXT NOT NULL UNIQUE,
		client_id INTEGER NOT NULL REFERENCES clients(id),
		status TEXT NOT NULL,
		total_amount TEXT NOT NULL DEFAULT '0',
		notes TEXT,
		created_at TEXT NOT NULL,
		confirmed_at TEXT,
		shipped_at TEXT,
		delivered_at TEXT,
		cancelled_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_sales_orders_status
		ON sales_orders(status);

	CREATE TABLE IF NOT EXISTS sales_order_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sales_order_id INTEGER NOT NULL REFERENCES sales_orders(id) ON DELETE CASCADE,
		product_id INTEGER NOT NULL REFERENCES products(id),
		quantity INTEGER NOT NULL,
		unit_price TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sales_order_items_order
		ON sales_order_items(sales_order_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// querier is satisfied by both *sql.DB and *sql.Tx, so every read and
// write helper works inside and outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// =============================================================================
// TRANSACTIONS (engine.TxStore)
// =============================================================================

// WithTx executes fn within a database transaction. The store mutex is
// held for the duration so the in-process view and the database agree.
func (s *Store) WithTx(ctx context.Context, fn func(engine.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{q: sqlTx}); err != nil {
		return err
	}

	return sqlTx.Commit()
}

// txStore runs every operation against the open transaction. The parent
// already holds the mutex.
type txStore struct {
	q *sql.Tx
}

// =============================================================================
// RAW MATERIALS
// =============================================================================

func (s *Store) GetRawMaterial(ctx context.Context, id int64) (*catalog.RawMaterial, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getRawMaterial(ctx, s.db, id)
}

func (t *txStore) GetRawMaterial(ctx context.Context, id int64) (*catalog.RawMaterial, error) {
	return getRawMaterial(ctx, t.q, id)
}

func getRawMaterial(ctx context.Context, q querier, id int64) (*catalog.RawMaterial, error) {
	var (
		m         catalog.RawMaterial
		stock     string
		createdAt string
	)
	err := q.QueryRowContext(ctx,
		"SELECT id, code, name, unit, stock, created_at FROM raw_materials WHERE id = ?", id,
	).Scan(&m.ID, &m.Code, &m.Name, &m.Unit, &stock, &createdAt)
	if err == sql.ErrNoRows {
		return nil, &catalog.NotFoundError{Kind: "raw material", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load raw material: %w", err)
	}
	m.Stock = parseDecimal(stock)
	m.CreatedAt = parseTime(createdAt)
	return &m, nil
}

func (s *Store) ListRawMaterials(ctx context.Context) ([]catalog.RawMaterial, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listRawMaterials(ctx, s.db)
}

func (t *txStore) ListRawMaterials(ctx context.Context) ([]catalog.RawMaterial, error) {
	return listRawMaterials(ctx, t.q)
}

func listRawMaterials(ctx context.Context, q querier) ([]catalog.RawMaterial, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT id, code, name, unit, stock, created_at FROM raw_materials ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var materials []catalog.RawMaterial
	for rows.Next() {
		var (
			m         catalog.RawMaterial
			stock     string
			createdAt string
		)
		if err := rows.Scan(&m.ID, &m.Code, &m.Name, &m.Unit, &stock, &createdAt); err != nil {
			return nil, err
		}
		m.Stock = parseDecimal(stock)
		m.CreatedAt = parseTime(createdAt)
		materials = append(materials, m)
	}
	return materials, rows.Err()
}

func (s *Store) SaveRawMaterial(ctx context.Context, m *catalog.RawMaterial) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveRawMaterial(ctx, s.db, m)
}

func (t *txStore) SaveRawMaterial(ctx context.Context, m *catalog.RawMaterial) error {
	return saveRawMaterial(ctx, t.q, m)
}

func saveRawMaterial(ctx context.Context, q querier, m *catalog.RawMaterial) error {
	if m.ID == 0 {
		if m.CreatedAt.IsZero() {
			m.CreatedAt = time.Now()
		}
		res, err := q.ExecContext(ctx,
			"INSERT INTO raw_materials (code, name, unit, stock, created_at) VALUES (?, ?, ?, ?, ?)",
			m.Code, m.Name, m.Unit, m.Stock.String(), formatTime(m.CreatedAt))
		if err != nil {
			return fmt.Errorf("failed to insert raw material: %w", err)
		}
		m.ID, err = res.LastInsertId()
		return err
	}

	_, err := q.ExecContext(ctx,
		"UPDATE raw_materials SET code = ?, name = ?, unit = ? WHERE id = ?",
		m.Code, m.Name, m.Unit, m.ID)
	return err
}

func (s *Store) UpdateRawMaterialStock(ctx context.Context, id int64, stock decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return updateRawMaterialStock(ctx, s.db, id, stock)
}

func (t *txStore) UpdateRawMaterialStock(ctx context.Context, id int64, stock decimal.Decimal) error {
	return updateRawMaterialStock(ctx, t.q, id, stock)
}

func updateRawMaterialStock(ctx context.Context, q querier, id int64, stock decimal.Decimal) error {
	res, err := q.ExecContext(ctx,
		"UPDATE raw_materials SET stock = ? WHERE id = ?", stock.String(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &catalog.NotFoundError{Kind: "raw material", ID: id}
	}
	return nil
}

// =============================================================================
// STOCK MOVEMENTS (append-only)
// =============================================================================

func (s *Store) AppendMovement(ctx context.Context, mv inventory.Movement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return appendMovement(ctx, s.db, mv)
}

func (t *txStore) AppendMovement(ctx context.Context, mv inventory.Movement) error {
	return appendMovement(ctx, t.q, mv)
}

func appendMovement(ctx context.Context, q querier, mv inventory.Movement) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO stock_movements (id, raw_material_id, direction, quantity, notes, balance_after, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		mv.ID, mv.RawMaterialID, string(mv.Direction), mv.Quantity.String(),
		mv.Notes, mv.BalanceAfter.String(), formatTime(mv.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to append movement: %w", err)
	}
	return nil
}

func (s *Store) ListMovements(ctx context.Context, rawMaterialID int64) ([]inventory.Movement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listMovements(ctx, s.db, rawMaterialID)
}

func (t *txStore) ListMovements(ctx context.Context, rawMaterialID int64) ([]inventory.Movement, error) {
	return listMovements(ctx, t.q, rawMaterialID)
}

func listMovements(ctx context.Context, q querier, rawMaterialID int64) ([]inventory.Movement, error) {
	query := `
		SELECT id, raw_material_id, direction, quantity, notes, balance_after, created_at
		FROM stock_movements`
	var args []any
	if rawMaterialID != 0 {
		query += " WHERE raw_material_id = ?"
		args = append(args, rawMaterialID)
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var movements []inventory.Movement
	for rows.Next() {
		var (
			mv                             inventory.Movement
			direction, qty, bal, createdAt string
			notes                          sql.NullString
		)
		if err := rows.Scan(&mv.ID, &mv.RawMaterialID, &direction, &qty, &notes, &bal, &createdAt); err != nil {
			return nil, err
		}
		mv.Direction = inventory.Direction(direction)
		mv.Quantity = parseDecimal(qty)
		mv.Notes = notes.String
		mv.BalanceAfter = parseDecimal(bal)
		mv.CreatedAt = parseTime(createdAt)
		movements = append(movements, mv)
	}
	return movements, rows.Err()
}

// =============================================================================
// PRODUCTS
// =============================================================================

func (s *Store) GetProduct(ctx context.Context, id int64) (*catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getProduct(ctx, s.db, id)
}

func (t *txStore) GetProduct(ctx context.Context, id int64) (*catalog.Product, error) {
	return getProduct(ctx, t.q, id)
}

func getProduct(ctx context.Context, q querier, id int64) (*catalog.Product, error) {
	var (
		p                 catalog.Product
		price, createdAt string
	)
	err := q.QueryRowContext(ctx,
		"SELECT id, code, name, selling_price, stock, created_at FROM products WHERE id = ?", id,
	).Scan(&p.ID, &p.Code, &p.Name, &price, &p.Stock, &createdAt)
	if err == sql.ErrNoRows {
		return nil, &catalog.NotFoundError{Kind: "product", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	p.SellingPrice = parseDecimal(price)
	p.CreatedAt = parseTime(createdAt)

	p.Composition, err = loadComposition(ctx, q, id)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func loadComposition(ctx context.Context, q querier, productID int64) ([]catalog.CompositionItem, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT raw_material_id, quantity FROM composition_items WHERE product_id = ? ORDER BY raw_material_id",
		productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []catalog.CompositionItem
	for rows.Next() {
		var (
			item catalog.CompositionItem
			qty  string
		)
		if err := rows.Scan(&item.RawMaterialID, &qty); err != nil {
			return nil, err
		}
		item.Quantity = parseDecimal(qty)
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *Store) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listProducts(ctx, s.db)
}

func (t *txStore) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	return listProducts(ctx, t.q)
}

func listProducts(ctx context.Context, q querier) ([]catalog.Product, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT id, code, name, selling_price, stock, created_at FROM products ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []catalog.Product
	for rows.Next() {
		var (
			p                catalog.Product
			price, createdAt string
		)
		if err := rows.Scan(&p.ID, &p.Code, &p.Name, &price, &p.Stock, &createdAt); err != nil {
			return nil, err
		}
		p.SellingPrice = parseDecimal(price)
		p.CreatedAt = parseTime(createdAt)
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range products {
		products[i].Composition, err = loadComposition(ctx, q, products[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return products, nil
}

func (s *Store) SaveProduct(ctx context.Context, p *catalog.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveProduct(ctx, s.db, p)
}

func (t *txStore) SaveProduct(ctx context.Context, p *catalog.Product) error {
	return saveProduct(ctx, t.q, p)
}

func saveProduct(ctx context.Context, q querier, p *catalog.Product) error {
	if p.ID == 0 {
		if p.CreatedAt.IsZero() {
			p.CreatedAt = time.Now()
		}
		res, err := q.ExecContext(ctx,
			"INSERT INTO products (code, name, selling_price, stock, created_at) VALUES (?, ?, ?, ?, ?)",
			p.Code, p.Name, p.SellingPrice.String(), p.Stock, formatTime(p.CreatedAt))
		if err != nil {
			return fmt.Errorf("failed to insert product: %w", err)
		}
		p.ID, err = res.LastInsertId()
		if err != nil {
			return err
		}
	} else {
		_, err := q.ExecContext(ctx,
			"UPDATE products SET code = ?, name = ?, selling_price = ? WHERE id = ?",
			p.Code, p.Name, p.SellingPrice.String(), p.ID)
		if err != nil {
			return err
		}
	}

	// Replace the composition wholesale. Lines are few per product.
	if _, err := q.ExecContext(ctx,
		"DELETE FROM composition_items WHERE product_id = ?", p.ID); err != nil {
		return err
	}
	for _, item := range p.Composition {
		if _, err := q.ExecContext(ctx,
			"INSERT INTO composition_items (product_id, raw_material_id, quantity) VALUES (?, ?, ?)",
			p.ID, item.RawMaterialID, item.Quantity.String()); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) UpdateProductStock(ctx context.Context, id int64, stock int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return updateProductStock(ctx, s.db, id, stock)
}

func (t *txStore) UpdateProductStock(ctx context.Context, id int64, stock int) error {
	return updateProductStock(ctx, t.q, id, stock)
}

func updateProductStock(ctx context.Context, q querier, id int64, stock int) error {
	res, err := q.ExecContext(ctx, "UPDATE products SET stock = ? WHERE id = ?", stock, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &catalog.NotFoundError{Kind: "product", ID: id}
	}
	return nil
}

// =============================================================================
// CLIENTS AND SUPPLIERS
// =============================================================================

func (s *Store) GetClient(ctx context.Context, id int64) (*catalog.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getClient(ctx, s.db, id)
}

func (t *txStore) GetClient(ctx context.Context, id int64) (*catalog.Client, error) {
	return getClient(ctx, t.q, id)
}

func getClient(ctx context.Context, q querier, id int64) (*catalog.Client, error) {
	var (
		c                            catalog.Client
		email, phone, address        sql.NullString
		createdAt                    string
	)
	err := q.QueryRowContext(ctx,
		"SELECT id, name, email, phone, address, created_at FROM clients WHERE id = ?", id,
	).Scan(&c.ID, &c.Name, &email, &phone, &address, &createdAt)
	if err == sql.ErrNoRows {
		return nil, &catalog.NotFoundError{Kind: "client", ID: id}
	}
	if err != nil {
		return nil, err
	}
	c.Email, c.Phone, c.Address = email.String, phone.String, address.String
	c.CreatedAt = parseTime(createdAt)
	return &c, nil
}

func (s *Store) ListClients(ctx context.Context) ([]catalog.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listClients(ctx, s.db)
}

func (t *txStore) ListClients(ctx context.Context) ([]catalog.Client, error) {
	return listClients(ctx, t.q)
}

func listClients(ctx context.Context, q querier) ([]catalog.Client, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT id, name, email, phone, address, created_at FROM clients ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []catalog.Client
	for rows.Next() {
		var (
			c                     catalog.Client
			email, phone, address sql.NullString
			createdAt             string
		)
		if err := rows.Scan(&c.ID, &c.Name, &email, &phone, &address, &createdAt); err != nil {
			return nil, err
		}
		c.Email, c.Phone, c.Address = email.String, phone.String, address.String
		c.CreatedAt = parseTime(createdAt)
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func (s *Store) SaveClient(ctx context.Context, c *catalog.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveClient(ctx, s.db, c)
}

func (t *txStore) SaveClient(ctx context.Context, c *catalog.Client) error {
	return saveClient(ctx, t.q, c)
}

func saveClient(ctx context.Context, q querier, c *catalog.Client) error {
	if c.ID == 0 {
		if c.CreatedAt.IsZero() {
			c.CreatedAt = time.Now()
		}
		res, err := q.ExecContext(ctx,
			"INSERT INTO clients (name, email, phone, address, created_at) VALUES (?, ?, ?, ?, ?)",
			c.Name, c.Email, c.Phone, c.Address, formatTime(c.CreatedAt))
		if err != nil {
			return err
		}
		c.ID, err = res.LastInsertId()
		return err
	}
	_, err := q.ExecContext(ctx,
		"UPDATE clients SET name = ?, email = ?, phone = ?, address = ? WHERE id = ?",
		c.Name, c.Email, c.Phone, c.Address, c.ID)
	return err
}

func (s *Store) DeleteClient(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteRow(ctx, s.db, "clients", "client", id)
}

func (t *txStore) DeleteClient(ctx context.Context, id int64) error {
	return deleteRow(ctx, t.q, "clients", "client", id)
}

func (s *Store) GetSupplier(ctx context.Context, id int64) (*catalog.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getSupplier(ctx, s.db, id)
}

func (t *txStore) GetSupplier(ctx context.Context, id int64) (*catalog.Supplier, error) {
	return getSupplier(ctx, t.q, id)
}

func getSupplier(ctx context.Context, q querier, id int64) (*catalog.Supplier, error) {
	var (
		sp                    catalog.Supplier
		email, phone, address sql.NullString
		createdAt             string
	)
	err := q.QueryRowContext(ctx,
		"SELECT id, name, email, phone, address, created_at FROM suppliers WHERE id = ?", id,
	).Scan(&sp.ID, &sp.Name, &email, &phone, &address, &createdAt)
	if err == sql.ErrNoRows {
		return nil, &catalog.NotFoundError{Kind: "supplier", ID: id}
	}
	if err != nil {
		return nil, err
	}
	sp.Email, sp.Phone, sp.Address = email.String, phone.String, address.String
	sp.CreatedAt = parseTime(createdAt)
	return &sp, nil
}

func (s *Store) ListSuppliers(ctx context.Context) ([]catalog.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listSuppliers(ctx, s.db)
}

func (t *txStore) ListSuppliers(ctx context.Context) ([]catalog.Supplier, error) {
	return listSuppliers(ctx, t.q)
}

func listSuppliers(ctx context.Context, q querier) ([]catalog.Supplier, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT id, name, email, phone, address, created_at FROM suppliers ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var suppliers []catalog.Supplier
	for rows.Next() {
		var (
			sp                    catalog.Supplier
			email, phone, address sql.NullString
			createdAt             string
		)
		if err := rows.Scan(&sp.ID, &sp.Name, &email, &phone, &address, &createdAt); err != nil {
			return nil, err
		}
		sp.Email, sp.Phone, sp.Address = email.String, phone.String, address.String
		sp.CreatedAt = parseTime(createdAt)
		suppliers = append(suppliers, sp)
	}
	return suppliers, rows.Err()
}

func (s *Store) SaveSupplier(ctx context.Context, sp *catalog.Supplier) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveSupplier(ctx, s.db, sp)
}

func (t *txStore) SaveSupplier(ctx context.Context, sp *catalog.Supplier) error {
	return saveSupplier(ctx, t.q, sp)
}

func saveSupplier(ctx context.Context, q querier, sp *catalog.Supplier) error {
	if sp.ID == 0 {
		if sp.CreatedAt.IsZero() {
			sp.CreatedAt = time.Now()
		}
		res, err := q.ExecContext(ctx,
			"INSERT INTO suppliers (name, email, phone, address, created_at) VALUES (?, ?, ?, ?, ?)",
			sp.Name, sp.Email, sp.Phone, sp.Address, formatTime(sp.CreatedAt))
		if err != nil {
			return err
		}
		sp.ID, err = res.LastInsertId()
		return err
	}
	_, err := q.ExecContext(ctx,
		"UPDATE suppliers SET name = ?, email = ?, phone = ?, address = ? WHERE id = ?",
		sp.Name, sp.Email, sp.Phone, sp.Address, sp.ID)
	return err
}

func (s *Store) DeleteSupplier(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteRow(ctx, s.db, "suppliers", "supplier", id)
}

func (t *txStore) DeleteSupplier(ctx context.Context, id int64) error {
	return deleteRow(ctx, t.q, "suppliers", "supplier", id)
}

// =============================================================================
// PRODUCTION ORDERS
// =============================================================================

func (s *Store) GetProductionOrder(ctx context.Context, id int64) (*production.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getProductionOrder(ctx, s.db, id)
}

func (t *txStore) GetProductionOrder(ctx context.Context, id int64) (*production.Order, error) {
	return getProductionOrder(ctx, t.q, id)
}

func getProductionOrder(ctx context.Context, q querier, id int64) (*production.Order, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, order_number, product_id, quantity, status, sales_order_id, notes, created_at, started_at, completed_at
		FROM production_orders WHERE id = ?`, id)

	o, err := scanProductionOrder(row.Scan)
	if err == sql.ErrNoRows {
		return nil, &catalog.NotFoundError{Kind: "production order", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

func scanProductionOrder(scan func(...any) error) (*production.Order, error) {
	var (
		o                      production.Order
		status, createdAt      string
		salesOrderID           sql.NullInt64
		notes                  sql.NullString
		startedAt, completedAt sql.NullString
	)
	err := scan(&o.ID, &o.OrderNumber, &o.ProductID, &o.QuantityToProduce,
		&status, &salesOrderID, &notes, &createdAt, &startedAt, &completedAt)
	if err != nil {
		return nil, err
	}
	o.Status = production.Status(status)
	if salesOrderID.Valid {
		o.SalesOrderID = &salesOrderID.Int64
	}
	o.Notes = notes.String
	o.CreatedAt = parseTime(createdAt)
	o.StartedAt = parseNullTime(startedAt)
	o.CompletedAt = parseNullTime(completedAt)
	return &o, nil
}

func (s *Store) ListProductionOrders(ctx context.Context) ([]production.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listProductionOrders(ctx, s.db)
}

func (t *txStore) ListProductionOrders(ctx context.Context) ([]production.Order, error) {
	return listProductionOrders(ctx, t.q)
}

func listProductionOrders(ctx context.Context, q querier) ([]production.Order, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, order_number, product_id, quantity, status, sales_order_id, notes, created_at, started_at, completed_at
		FROM production_orders ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []production.Order
	for rows.Next() {
		o, err := scanProductionOrder(rows.Scan)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func (s *Store) SaveProductionOrder(ctx context.Context, o *production.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveProductionOrder(ctx, s.db, o)
}

func (t *txStore) SaveProductionOrder(ctx context.Context, o *production.Order) error {
	return saveProductionOrder(ctx, t.q, o)
}

func saveProductionOrder(ctx context.Context, q querier, o *production.Order) error {
	var salesOrderID any
	if o.SalesOrderID != nil {
		salesOrderID = *o.SalesOrderID
	}

	if o.ID == 0 {
		res, err := q.ExecContext(ctx, `
			INSERT INTO production_orders
			(order_number, product_id, quantity, status, sales_order_id, notes, created_at, started_at, completed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			o.OrderNumber, o.ProductID, o.QuantityToProduce, string(o.Status),
			salesOrderID, o.Notes, formatTime(o.CreatedAt),
			formatNullTime(o.StartedAt), formatNullTime(o.CompletedAt))
		if err != nil {
			return fmt.Errorf("failed to insert production order: %w", err)
		}
		o.ID, err = res.LastInsertId()
		return err
	}

	_, err := q.ExecContext(ctx, `
		UPDATE production_orders
		SET status = ?, notes = ?, started_at = ?, completed_at = ?
		WHERE id = ?`,
		string(o.Status), o.Notes, formatNullTime(o.StartedAt), formatNullTime(o.CompletedAt), o.ID)
	return err
}

func (s *Store) DeleteProductionOrder(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteRow(ctx, s.db, "production_orders", "production order", id)
}

func (t *txStore) DeleteProductionOrder(ctx context.Context, id int64) error {
	return deleteRow(ctx, t.q, "production_orders", "production order", id)
}

func (s *Store) HasProductionOrderForSalesOrder(ctx context.Context, salesOrderID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return hasProductionOrderForSalesOrder(ctx, s.db, salesOrderID)
}

func (t *txStore) HasProductionOrderForSalesOrder(ctx context.Context, salesOrderID int64) (bool, error) {
	return hasProductionOrderForSalesOrder(ctx, t.q, salesOrderID)
}

func hasProductionOrderForSalesOrder(ctx context.Context, q querier, salesOrderID int64) (bool, error) {
	var count int
	err := q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM production_orders WHERE sales_order_id = ?", salesOrderID,
	).Scan(&count)
	return count > 0, err
}

// =============================================================================
// SALES ORDERS
// =============================================================================

func (s *Store) GetSalesOrder(ctx context.Context, id int64) (*sales.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getSalesOrder(ctx, s.db, id)
}

func (t *txStore) GetSalesOrder(ctx context.Context, id int64) (*sales.Order, error) {
	return getSalesOrder(ctx, t.q, id)
}

func getSalesOrder(ctx context.Context, q querier, id int64) (*sales.Order, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, order_number, client_id, status, total_amount, notes,
		       created_at, confirmed_at, shipped_at, delivered_at, cancelled_at
		FROM sales_orders WHERE id = ?`, id)

	o, err := scanSalesOrder(row.Scan)
	if err == sql.ErrNoRows {
		return nil, &catalog.NotFoundError{Kind: "sales order", ID: id}
	}
	if err != nil {
		return nil, err
	}

	o.Items, err = loadSalesOrderItems(ctx, q, o.ID)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func scanSalesOrder(scan func(...any) error) (*sales.Order, error) {
	var (
		o                 sales.Order
		status, createdAt string
		total             string
		notes             sql.NullString
		confirmedAt       sql.NullString
		shippedAt         sql.NullString
		deliveredAt       sql.NullString
		cancelledAt       sql.NullString
	)
	err := scan(&o.ID, &o.OrderNumber, &o.ClientID, &status, &total, &notes,
		&createdAt, &confirmedAt, &shippedAt, &deliveredAt, &cancelledAt)
	if err != nil {
		return nil, err
	}
	o.Status = sales.Status(status)
	o.TotalAmount = parseDecimal(total)
	o.Notes = notes.String
	o.CreatedAt = parseTime(createdAt)
	o.ConfirmedAt = parseNullTime(confirmedAt)
	o.ShippedAt = parseNullTime(shippedAt)
	o.DeliveredAt = parseNullTime(deliveredAt)
	o.CancelledAt = parseNullTime(cancelledAt)
	return &o, nil
}

func loadSalesOrderItems(ctx context.Context, q querier, orderID int64) ([]sales.Item, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT id, product_id, quantity, unit_price FROM sales_order_items WHERE sales_order_id = ? ORDER BY id",
		orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []sales.Item
	for rows.Next() {
		var (
			item  sales.Item
			price string
		)
		if err := rows.Scan(&item.ID, &item.ProductID, &item.Quantity, &price); err != nil {
			return nil, err
		}
		item.UnitPrice = parseDecimal(price)
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *Store) ListSalesOrders(ctx context.Context) ([]sales.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listSalesOrders(ctx, s.db)
}

func (t *txStore) ListSalesOrders(ctx context.Context) ([]sales.Order, error) {
	return listSalesOrders(ctx, t.q)
}

func listSalesOrders(ctx context.Context, q querier) ([]sales.Order, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, order_number, client_id, status, total_amount, notes,
		       created_at, confirmed_at, shipped_at, delivered_at, cancelled_at
		FROM sales_orders ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []sales.Order
	for rows.Next() {
		o, err := scanSalesOrder(rows.Scan)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		orders[i].Items, err = loadSalesOrderItems(ctx, q, orders[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (s *Store) SaveSalesOrder(ctx context.Context, o *sales.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveSalesOrder(ctx, s.db, o)
}

func (t *txStore) SaveSalesOrder(ctx context.Context, o *sales.Order) error {
	return saveSalesOrder(ctx, t.q, o)
}

func saveSalesOrder(ctx context.Context, q querier, o *sales.Order) error {
	if o.ID == 0 {
		res, err := q.ExecContext(ctx, `
			INSERT INTO sales_orders
			(order_number, client_id, status, total_amount, notes, created_at, confirmed_at, shipped_at, delivered_at, cancelled_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			o.OrderNumber, o.ClientID, string(o.Status), o.TotalAmount.String(), o.Notes,
			formatTime(o.CreatedAt), formatNullTime(o.ConfirmedAt), formatNullTime(o.ShippedAt),
			formatNullTime(o.DeliveredAt), formatNullTime(o.CancelledAt))
		if err != nil {
			return fmt.Errorf("failed to insert sales order: %w", err)
		}
		o.ID, err = res.LastInsertId()
		if err != nil {
			return err
		}
	} else {
		_, err := q.ExecContext(ctx, `
			UPDATE sales_orders
			SET status = ?, total_amount = ?, notes = ?, confirmed_at = ?, shipped_at = ?, delivered_at = ?, cancelled_at = ?
			WHERE id = ?`,
			string(o.Status), o.TotalAmount.String(), o.Notes,
			formatNullTime(o.ConfirmedAt), formatNullTime(o.ShippedAt),
			formatNullTime(o.DeliveredAt), formatNullTime(o.CancelledAt), o.ID)
		if err != nil {
			return err
		}
	}

	// Replace item lines wholesale, same as the product composition.
	if _, err := q.ExecContext(ctx,
		"DELETE FROM sales_order_items WHERE sales_order_id = ?", o.ID); err != nil {
		return err
	}
	for i := range o.Items {
		res, err := q.ExecContext(ctx,
			"INSERT INTO sales_order_items (sales_order_id, product_id, quantity, unit_price) VALUES (?, ?, ?, ?)",
			o.ID, o.Items[i].ProductID, o.Items[i].Quantity, o.Items[i].UnitPrice.String())
		if err != nil {
			return err
		}
		o.Items[i].ID, err = res.LastInsertId()
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) DeleteSalesOrder(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteRow(ctx, s.db, "sales_orders", "sales order", id)
}

func (t *txStore) DeleteSalesOrder(ctx context.Context, id int64) error {
	return deleteRow(ctx, t.q, "sales_orders", "sales order", id)
}

// =============================================================================
// HELPERS
// =============================================================================

func deleteRow(ctx context.Context, q querier, table, kind string, id int64) error {
	res, err := q.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &catalog.NotFoundError{Kind: kind, ID: id}
	}
	return nil
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

func formatNullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseNullTime(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t := parseTime(s.String)
	return &t
}
