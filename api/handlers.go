/*
handlers.go - HTTP API handlers for the fulfillment engine

PURPOSE:
  Exposes the fulfillment engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to the workflows.

ENDPOINTS:
  Raw materials:
    GET    /api/raw-materials             List all raw materials
    POST   /api/raw-materials             Create raw material
    GET    /api/raw-materials/{id}        Get raw material
    GET    /api/raw-materials/{id}/movements  Movement history

  Stock movements:
    GET    /api/stock-movements           List all movements
    POST   /api/stock-movements           Record a movement

  Products:
    GET    /api/products                  List all products
    POST   /api/products                  Create product with composition
    GET    /api/products/{id}             Get product

  Clients / Suppliers:
    Full CRUD under /api/clients and /api/suppliers

  Production orders:
    GET    /api/production-orders         List
    POST   /api/production-orders         Create (PENDING)
    GET    /api/production-orders/{id}    Get
    POST   /api/production-orders/{id}/transition  Move status
    DELETE /api/production-orders/{id}    Delete (PENDING/CANCELLED only)

  Sales orders:
    GET    /api/sales-orders              List
    POST   /api/sales-orders              Create (PENDING)
    GET    /api/sales-orders/{id}         Get
    POST   /api/sales-orders/{id}/transition  Move status
    PUT    /api/sales-orders/{id}/items   Replace items (PENDING only)
    PUT    /api/sales-orders/{id}/notes   Replace notes
    DELETE /api/sales-orders/{id}         Delete (PENDING/CANCELLED only)

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid transitions, non-editable orders
  - 404: Resource not found
  - 409: Insufficient stock (with the full deficiency list)
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/warp/fulfillment-engine/catalog"
	"github.com/warp/fulfillment-engine/engine"
	"github.com/warp/fulfillment-engine/inventory"
	"github.com/warp/fulfillment-engine/production"
	"github.com/warp/fulfillment-engine/sales"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store      engine.TxStore
	Ledger     *engine.Ledger
	Production *engine.ProductionWorkflow
	Sales      *engine.SalesWorkflow
	Log        *logrus.Logger
}

// NewHandler wires the workflows over a shared store and lock table.
func NewHandler(store engine.TxStore, log *logrus.Logger) *Handler {
	locks := engine.NewKeyLocks()
	return &Handler{
		Store:      store,
		Ledger:     engine.NewLedger(store, locks, log),
		Production: engine.NewProductionWorkflow(store, locks, log),
		Sales:      engine.NewSalesWorkflow(store, locks, log),
		Log:        log,
	}
}

// =============================================================================
// RAW MATERIAL HANDLERS
// =============================================================================

// ListRawMaterials returns all raw materials.
func (h *Handler) ListRawMaterials(w http.ResponseWriter, r *http.Request) {
	materials, err := h.Store.ListRawMaterials(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list raw materials", err)
		return
	}

	dtos := make([]RawMaterialDTO, len(materials))
	for i := range materials {
		dtos[i] = toRawMaterialDTO(&materials[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetRawMaterial returns a single raw material.
func (h *Handler) GetRawMaterial(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	m, err := h.Store.GetRawMaterial(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRawMaterialDTO(m))
}

// CreateRawMaterial creates a raw material. Any initial stock is
// recorded through the ledger, never written directly.
func (h *Handler) CreateRawMaterial(w http.ResponseWriter, r *http.Request) {
	var req CreateRawMaterialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Code == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "code and name are required", nil)
		return
	}

	m := &catalog.RawMaterial{
		Code:  req.Code,
		Name:  req.Name,
		Unit:  req.Unit,
		Stock: decimal.Zero,
	}
	if err := h.Store.SaveRawMaterial(r.Context(), m); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create raw material", err)
		return
	}

	if req.InitialStock != "" {
		qty, err := decimal.NewFromString(req.InitialStock)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid initial_stock", err)
			return
		}
		mv, err := h.Ledger.Record(r.Context(), m.ID, inventory.Credit, qty, "initial stock")
		if err != nil {
			writeDomainError(w, err)
			return
		}
		m.Stock = mv.BalanceAfter
	}

	writeJSON(w, http.StatusCreated, toRawMaterialDTO(m))
}

// ListMaterialMovements returns the movement history for one material.
func (h *Handler) ListMaterialMovements(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if _, err := h.Store.GetRawMaterial(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	h.writeMovements(w, r, id)
}

// =============================================================================
// STOCK MOVEMENT HANDLERS
// =============================================================================

// ListMovements returns all movements, optionally filtered by material.
func (h *Handler) ListMovements(w http.ResponseWriter, r *http.Request) {
	var materialID int64
	if raw := r.URL.Query().Get("raw_material_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid raw_material_id", err)
			return
		}
		materialID = parsed
	}
	h.writeMovements(w, r, materialID)
}

func (h *Handler) writeMovements(w http.ResponseWriter, r *http.Request, materialID int64) {
	movements, err := h.Ledger.Movements(r.Context(), materialID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list movements", err)
		return
	}
	dtos := make([]MovementDTO, len(movements))
	for i, mv := range movements {
		dtos[i] = toMovementDTO(mv)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateMovement records a manual stock movement through the ledger.
func (h *Handler) CreateMovement(w http.ResponseWriter, r *http.Request) {
	var req CreateMovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	qty, err := decimal.NewFromString(req.Quantity)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid quantity", err)
		return
	}

	mv, err := h.Ledger.Record(r.Context(), req.RawMaterialID,
		inventory.Direction(req.Direction), qty, req.Notes)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMovementDTO(*mv))
}

// =============================================================================
// PRODUCT HANDLERS
// =============================================================================

// ListProducts returns all products with their compositions.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.Store.ListProducts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list products", err)
		return
	}
	dtos := make([]ProductDTO, len(products))
	for i := range products {
		dtos[i] = toProductDTO(&products[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetProduct returns a single product.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := h.Store.GetProduct(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductDTO(p))
}

// CreateProduct creates a product and its bill of materials.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Code == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "code and name are required", nil)
		return
	}

	price := decimal.Zero
	if req.SellingPrice != "" {
		parsed, err := decimal.NewFromString(req.SellingPrice)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid selling_price", err)
			return
		}
		price = parsed
	}
	if price.Sign() < 0 {
		writeError(w, http.StatusBadRequest, "selling_price must not be negative", nil)
		return
	}

	composition := make([]catalog.CompositionItem, 0, len(req.Composition))
	for _, item := range req.Composition {
		qty, err := decimal.NewFromString(item.Quantity)
		if err != nil || qty.Sign() <= 0 {
			writeError(w, http.StatusBadRequest, "Composition quantities must be positive", err)
			return
		}
		if _, err := h.Store.GetRawMaterial(r.Context(), item.RawMaterialID); err != nil {
			writeDomainError(w, err)
			return
		}
		composition = append(composition, catalog.CompositionItem{
			RawMaterialID: item.RawMaterialID,
			Quantity:      qty,
		})
	}

	p := &catalog.Product{
		Code:         req.Code,
		Name:         req.Name,
		SellingPrice: price,
		Composition:  composition,
	}
	if err := h.Store.SaveProduct(r.Context(), p); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create product", err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductDTO(p))
}

// =============================================================================
// CLIENT HANDLERS
// =============================================================================

func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.Store.ListClients(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list clients", err)
		return
	}
	dtos := make([]PartyDTO, len(clients))
	for i := range clients {
		dtos[i] = toClientDTO(&clients[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	c, err := h.Store.GetClient(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toClientDTO(c))
}

func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeParty(w, r)
	if !ok {
		return
	}
	c := &catalog.Client{Name: req.Name, Email: req.Email, Phone: req.Phone, Address: req.Address}
	if err := h.Store.SaveClient(r.Context(), c); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create client", err)
		return
	}
	writeJSON(w, http.StatusCreated, toClientDTO(c))
}

func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	req, ok := decodeParty(w, r)
	if !ok {
		return
	}
	c, err := h.Store.GetClient(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	c.Name, c.Email, c.Phone, c.Address = req.Name, req.Email, req.Phone, req.Address
	if err := h.Store.SaveClient(r.Context(), c); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update client", err)
		return
	}
	writeJSON(w, http.StatusOK, toClientDTO(c))
}

func (h *Handler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Store.DeleteClient(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// SUPPLIER HANDLERS
// =============================================================================

func (h *Handler) ListSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.Store.ListSuppliers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list suppliers", err)
		return
	}
	dtos := make([]PartyDTO, len(suppliers))
	for i := range suppliers {
		dtos[i] = toSupplierDTO(&suppliers[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetSupplier(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s, err := h.Store.GetSupplier(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSupplierDTO(s))
}

func (h *Handler) CreateSupplier(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeParty(w, r)
	if !ok {
		return
	}
	s := &catalog.Supplier{Name: req.Name, Email: req.Email, Phone: req.Phone, Address: req.Address}
	if err := h.Store.SaveSupplier(r.Context(), s); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create supplier", err)
		return
	}
	writeJSON(w, http.StatusCreated, toSupplierDTO(s))
}

func (h *Handler) UpdateSupplier(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	req, ok := decodeParty(w, r)
	if !ok {
		return
	}
	s, err := h.Store.GetSupplier(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.Name, s.Email, s.Phone, s.Address = req.Name, req.Email, req.Phone, req.Address
	if err := h.Store.SaveSupplier(r.Context(), s); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update supplier", err)
		return
	}
	writeJSON(w, http.StatusOK, toSupplierDTO(s))
}

func (h *Handler) DeleteSupplier(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Store.DeleteSupplier(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// PRODUCTION ORDER HANDLERS
// =============================================================================

func (h *Handler) ListProductionOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Production.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list production orders", err)
		return
	}
	dtos := make([]ProductionOrderDTO, len(orders))
	for i := range orders {
		dtos[i] = toProductionOrderDTO(&orders[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetProductionOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	order, err := h.Production.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductionOrderDTO(order))
}

func (h *Handler) CreateProductionOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateProductionOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	order, err := h.Production.Create(r.Context(), engine.CreateProductionOrderInput{
		ProductID:    req.ProductID,
		Quantity:     req.Quantity,
		Notes:        req.Notes,
		SalesOrderID: req.SalesOrderID,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductionOrderDTO(order))
}

func (h *Handler) TransitionProductionOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	order, err := h.Production.Transition(r.Context(), id, production.Status(req.Status), req.Notes)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductionOrderDTO(order))
}

func (h *Handler) DeleteProductionOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Production.Delete(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// SALES ORDER HANDLERS
// =============================================================================

func (h *Handler) ListSalesOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Sales.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sales orders", err)
		return
	}
	dtos := make([]SalesOrderDTO, len(orders))
	for i := range orders {
		dtos[i] = toSalesOrderDTO(&orders[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetSalesOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	order, err := h.Sales.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSalesOrderDTO(order))
}

func (h *Handler) CreateSalesOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateSalesOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	order, err := h.Sales.Create(r.Context(), engine.CreateSalesOrderInput{
		ClientID: req.ClientID,
		Items:    toItemInputs(req.Items),
		Notes:    req.Notes,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSalesOrderDTO(order))
}

func (h *Handler) TransitionSalesOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	order, err := h.Sales.Transition(r.Context(), id, sales.Status(req.Status))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSalesOrderDTO(order))
}

func (h *Handler) UpdateSalesOrderItems(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req UpdateItemsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	order, err := h.Sales.UpdateItems(r.Context(), id, toItemInputs(req.Items))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSalesOrderDTO(order))
}

func (h *Handler) UpdateSalesOrderNotes(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req UpdateNotesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	order, err := h.Sales.UpdateNotes(r.Context(), id, req.Notes)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSalesOrderDTO(order))
}

func (h *Handler) DeleteSalesOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Sales.Delete(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// HELPERS
// =============================================================================

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id", err)
		return 0, false
	}
	return id, true
}

func decodeParty(w http.ResponseWriter, r *http.Request) (SavePartyRequest, bool) {
	var req SavePartyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return req, false
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return req, false
	}
	return req, true
}

func toItemInputs(items []OrderItemRequest) []engine.ItemInput {
	inputs := make([]engine.ItemInput, len(items))
	for i, item := range items {
		inputs[i] = engine.ItemInput{ProductID: item.ProductID, Quantity: item.Quantity}
	}
	return inputs
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps workflow errors to HTTP statuses. Insufficient
// stock is a conflict and carries the full deficiency list; the caller
// needs every short resource, not just the first.
func writeDomainError(w http.ResponseWriter, err error) {
	var stockErr *sales.StockDeficitError
	if errors.As(err, &stockErr) {
		resp := ErrorResponse{
			Error:                   "Insufficient product stock",
			Details:                 stockErr.Error(),
			CreatedProductionOrders: stockErr.CreatedProductionOrders,
		}
		for _, d := range stockErr.Deficits {
			resp.Deficits = append(resp.Deficits, DeficitDTO{
				ProductID: d.ProductID,
				Name:      d.Name,
				Required:  strconv.Itoa(d.Needed),
				Available: strconv.Itoa(d.Available),
				Shortfall: strconv.Itoa(d.Shortfall()),
			})
		}
		for _, f := range stockErr.Failures {
			resp.CompensationFailures = append(resp.CompensationFailures, CompensationFailureDTO{
				ProductID: f.ProductID,
				Reason:    f.Reason,
			})
		}
		writeJSON(w, http.StatusConflict, resp)
		return
	}

	var insufficientErr *inventory.InsufficientStockError
	if errors.As(err, &insufficientErr) {
		resp := ErrorResponse{
			Error:   "Insufficient raw material stock",
			Details: insufficientErr.Error(),
		}
		for _, d := range insufficientErr.Deficits {
			resp.Deficits = append(resp.Deficits, DeficitDTO{
				RawMaterialID: d.RawMaterialID,
				Name:          d.Name,
				Required:      d.Required.String(),
				Available:     d.Available.String(),
				Shortfall:     d.Shortfall().String(),
			})
		}
		writeJSON(w, http.StatusConflict, resp)
		return
	}

	switch {
	case errors.Is(err, catalog.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found", err)
	case errors.Is(err, production.ErrInvalidTransition),
		errors.Is(err, sales.ErrInvalidTransition),
		errors.Is(err, production.ErrInvalidState),
		errors.Is(err, sales.ErrInvalidState),
		errors.Is(err, sales.ErrNotEditable),
		errors.Is(err, sales.ErrEmptyOrder),
		errors.Is(err, sales.ErrDuplicateItem),
		errors.Is(err, sales.ErrInvalidPrice),
		errors.Is(err, catalog.ErrNoComposition),
		errors.Is(err, inventory.ErrInvalidQuantity),
		errors.Is(err, inventory.ErrInvalidDirection):
		writeError(w, http.StatusBadRequest, "Invalid request", err)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}
