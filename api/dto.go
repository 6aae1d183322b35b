/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

DECIMALS:
  Quantities, stock levels and prices are serialized as strings to
  preserve exactness. Clients must not parse them as floats.

VALIDATION:
  Validation is done in handlers and workflows, not in DTOs. DTOs are
  pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/warp/fulfillment-engine/catalog"
	"github.com/warp/fulfillment-engine/inventory"
	"github.com/warp/fulfillment-engine/production"
	"github.com/warp/fulfillment-engine/sales"
)

// =============================================================================
// RAW MATERIALS
// =============================================================================

// RawMaterialDTO represents a raw material in API responses.
type RawMaterialDTO struct {
	ID        int64  `json:"id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	Unit      string `json:"unit"`
	Stock     string `json:"stock"`
	CreatedAt string `json:"created_at,omitempty"`
}

// CreateRawMaterialRequest is the request to create a raw material.
// InitialStock, when set, is recorded as a credit movement so the
// ledger stays the single write path for stock.
type CreateRawMaterialRequest struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	Unit         string `json:"unit"`
	InitialStock string `json:"initial_stock,omitempty"`
}

func toRawMaterialDTO(m *catalog.RawMaterial) RawMaterialDTO {
	return RawMaterialDTO{
		ID:        m.ID,
		Code:      m.Code,
		Name:      m.Name,
		Unit:      m.Unit,
		Stock:     m.Stock.String(),
		CreatedAt: m.CreatedAt.Format(time.RFC3339),
	}
}

// =============================================================================
// STOCK MOVEMENTS
// =============================================================================

// MovementDTO represents a ledger entry in API responses.
type MovementDTO struct {
	ID            string `json:"id"`
	RawMaterialID int64  `json:"raw_material_id"`
	Direction     string `json:"direction"`
	Quantity      string `json:"quantity"`
	Notes         string `json:"notes,omitempty"`
	BalanceAfter  string `json:"balance_after"`
	CreatedAt     string `json:"created_at"`
}

// CreateMovementRequest is the request to record a stock movement.
type CreateMovementRequest struct {
	RawMaterialID int64  `json:"raw_material_id"`
	Direction     string `json:"direction"`
	Quantity      string `json:"quantity"`
	Notes         string `json:"notes,omitempty"`
}

func toMovementDTO(mv inventory.Movement) MovementDTO {
	return MovementDTO{
		ID:            mv.ID,
		RawMaterialID: mv.RawMaterialID,
		Direction:     string(mv.Direction),
		Quantity:      mv.Quantity.String(),
		Notes:         mv.Notes,
		BalanceAfter:  mv.BalanceAfter.String(),
		CreatedAt:     mv.CreatedAt.Format(time.RFC3339),
	}
}

// =============================================================================
// PRODUCTS
// =============================================================================

// CompositionItemDTO is one bill-of-materials line.
type CompositionItemDTO struct {
	RawMaterialID int64  `json:"raw_material_id"`
	Quantity      string `json:"quantity"`
}

// ProductDTO represents a finished product in API responses.
type ProductDTO struct {
	ID           int64                `json:"id"`
	Code         string               `json:"code"`
	Name         string               `json:"name"`
	SellingPrice string               `json:"selling_price"`
	Stock        int                  `json:"stock"`
	Composition  []CompositionItemDTO `json:"composition"`
	CreatedAt    string               `json:"created_at,omitempty"`
}

// CreateProductRequest is the request to create a product.
type CreateProductRequest struct {
	Code         string               `json:"code"`
	Name         string               `json:"name"`
	SellingPrice string               `json:"selling_price"`
	Composition  []CompositionItemDTO `json:"composition"`
}

func toProductDTO(p *catalog.Product) ProductDTO {
	composition := make([]CompositionItemDTO, len(p.Composition))
	for i, item := range p.Composition {
		composition[i] = CompositionItemDTO{
			RawMaterialID: item.RawMaterialID,
			Quantity:      item.Quantity.String(),
		}
	}
	return ProductDTO{
		ID:           p.ID,
		Code:         p.Code,
		Name:         p.Name,
		SellingPrice: p.SellingPrice.String(),
		Stock:        p.Stock,
		Composition:  composition,
		CreatedAt:    p.CreatedAt.Format(time.RFC3339),
	}
}

// =============================================================================
// CLIENTS AND SUPPLIERS
// =============================================================================

// PartyDTO represents a client or supplier in API responses.
type PartyDTO struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// SavePartyRequest is the request to create or update a client/supplier.
type SavePartyRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

func toClientDTO(c *catalog.Client) PartyDTO {
	return PartyDTO{
		ID: c.ID, Name: c.Name, Email: c.Email, Phone: c.Phone, Address: c.Address,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
}

func toSupplierDTO(s *catalog.Supplier) PartyDTO {
	return PartyDTO{
		ID: s.ID, Name: s.Name, Email: s.Email, Phone: s.Phone, Address: s.Address,
		CreatedAt: s.CreatedAt.Format(time.RFC3339),
	}
}

// =============================================================================
// PRODUCTION ORDERS
// =============================================================================

// ProductionOrderDTO represents a production order in API responses.
type ProductionOrderDTO struct {
	ID                int64  `json:"id"`
	OrderNumber       string `json:"order_number"`
	ProductID         int64  `json:"product_id"`
	QuantityToProduce int    `json:"quantity_to_produce"`
	Status            string `json:"status"`
	SalesOrderID      *int64 `json:"sales_order_id,omitempty"`
	Notes             string `json:"notes,omitempty"`
	CreatedAt         string `json:"created_at"`
	StartedAt         string `json:"started_at,omitempty"`
	CompletedAt       string `json:"completed_at,omitempty"`
}

// CreateProductionOrderRequest is the request to create a production order.
type CreateProductionOrderRequest struct {
	ProductID    int64  `json:"product_id"`
	Quantity     int    `json:"quantity"`
	Notes        string `json:"notes,omitempty"`
	SalesOrderID *int64 `json:"sales_order_id,omitempty"`
}

// TransitionRequest is the request to move an order to a new status.
type TransitionRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes,omitempty"`
}

func toProductionOrderDTO(o *production.Order) ProductionOrderDTO {
	dto := ProductionOrderDTO{
		ID:                o.ID,
		OrderNumber:       o.OrderNumber,
		ProductID:         o.ProductID,
		QuantityToProduce: o.QuantityToProduce,
		Status:            string(o.Status),
		SalesOrderID:      o.SalesOrderID,
		Notes:             o.Notes,
		CreatedAt:         o.CreatedAt.Format(time.RFC3339),
	}
	if o.StartedAt != nil {
		dto.StartedAt = o.StartedAt.Format(time.RFC3339)
	}
	if o.CompletedAt != nil {
		dto.CompletedAt = o.CompletedAt.Format(time.RFC3339)
	}
	return dto
}

// =============================================================================
// SALES ORDERS
// =============================================================================

// SalesOrderItemDTO is one order line with its price snapshot.
type SalesOrderItemDTO struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Subtotal  string `json:"subtotal"`
}

// SalesOrderDTO represents a sales order in API responses.
type SalesOrderDTO struct {
	ID          int64               `json:"id"`
	OrderNumber string              `json:"order_number"`
	ClientID    int64               `json:"client_id"`
	Status      string              `json:"status"`
	Items       []SalesOrderItemDTO `json:"items"`
	TotalAmount string              `json:"total_amount"`
	Notes       string              `json:"notes,omitempty"`
	CreatedAt   string              `json:"created_at"`
	ConfirmedAt string              `json:"confirmed_at,omitempty"`
	ShippedAt   string              `json:"shipped_at,omitempty"`
	DeliveredAt string              `json:"delivered_at,omitempty"`
	CancelledAt string              `json:"cancelled_at,omitempty"`
}

// OrderItemRequest is one order line in a create/update request.
type OrderItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// CreateSalesOrderRequest is the request to create a sales order.
type CreateSalesOrderRequest struct {
	ClientID int64              `json:"client_id"`
	Items    []OrderItemRequest `json:"items"`
	Notes    string             `json:"notes,omitempty"`
}

// UpdateItemsRequest replaces the full item list of an editable order.
type UpdateItemsRequest struct {
	Items []OrderItemRequest `json:"items"`
}

// UpdateNotesRequest replaces the order notes.
type UpdateNotesRequest struct {
	Notes string `json:"notes"`
}

func toSalesOrderDTO(o *sales.Order) SalesOrderDTO {
	items := make([]SalesOrderItemDTO, len(o.Items))
	for i, item := range o.Items {
		items[i] = SalesOrderItemDTO{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.String(),
			Subtotal:  item.Subtotal().String(),
		}
	}
	dto := SalesOrderDTO{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		ClientID:    o.ClientID,
		Status:      string(o.Status),
		Items:       items,
		TotalAmount: o.TotalAmount.String(),
		Notes:       o.Notes,
		CreatedAt:   o.CreatedAt.Format(time.RFC3339),
	}
	if o.ConfirmedAt != nil {
		dto.ConfirmedAt = o.ConfirmedAt.Format(time.RFC3339)
	}
	if o.ShippedAt != nil {
		dto.ShippedAt = o.ShippedAt.Format(time.RFC3339)
	}
	if o.DeliveredAt != nil {
		dto.DeliveredAt = o.DeliveredAt.Format(time.RFC3339)
	}
	if o.CancelledAt != nil {
		dto.CancelledAt = o.CancelledAt.Format(time.RFC3339)
	}
	return dto
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the JSON body for all error statuses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`

	// Populated for insufficient-stock conflicts.
	Deficits                []DeficitDTO             `json:"deficits,omitempty"`
	CreatedProductionOrders []string                 `json:"created_production_orders,omitempty"`
	CompensationFailures    []CompensationFailureDTO `json:"compensation_failures,omitempty"`
}

// DeficitDTO names one resource that blocked an operation.
type DeficitDTO struct {
	RawMaterialID int64  `json:"raw_material_id,omitempty"`
	ProductID     int64  `json:"product_id,omitempty"`
	Name          string `json:"name"`
	Required      string `json:"required"`
	Available     string `json:"available"`
	Shortfall     string `json:"shortfall"`
}

// CompensationFailureDTO reports a compensating order that could not be
// created.
type CompensationFailureDTO struct {
	ProductID int64  `json:"product_id"`
	Reason    string `json:"reason"`
}
