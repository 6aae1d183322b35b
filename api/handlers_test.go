package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/fulfillment-engine/api"
	"github.com/warp/fulfillment-engine/store/memory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	handler := api.NewHandler(memory.New(), log)
	srv := httptest.NewServer(api.NewRouter(handler))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), "body: %s", data)
	return v
}

func createMaterial(t *testing.T, srv *httptest.Server, code, name, stock string) api.RawMaterialDTO {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/raw-materials", api.CreateRawMaterialRequest{
		Code: code, Name: name, Unit: "kg", InitialStock: stock,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %s", body)
	return decode[api.RawMaterialDTO](t, body)
}

func createProduct(t *testing.T, srv *httptest.Server, req api.CreateProductRequest) api.ProductDTO {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/products", req)
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %s", body)
	return decode[api.ProductDTO](t, body)
}

func createClient(t *testing.T, srv *httptest.Server, name string) api.PartyDTO {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/clients", api.SavePartyRequest{Name: name})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %s", body)
	return decode[api.PartyDTO](t, body)
}

// =============================================================================
// RAW MATERIALS AND MOVEMENTS
// =============================================================================

func TestAPI_CreateRawMaterial_WithInitialStock(t *testing.T) {
	srv := newTestServer(t)

	m := createMaterial(t, srv, "WOOD", "Oak Wood", "25.5")
	assert.Equal(t, "25.5", m.Stock)

	// The initial stock arrived as a ledger movement, not a raw write.
	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/stock-movements", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	movements := decode[[]api.MovementDTO](t, body)
	require.Len(t, movements, 1)
	assert.Equal(t, "credit", movements[0].Direction)
	assert.Equal(t, "25.5", movements[0].BalanceAfter)
}

func TestAPI_CreateMovement_DebitBeyondBalance_Conflict(t *testing.T) {
	srv := newTestServer(t)
	m := createMaterial(t, srv, "GLUE", "Wood Glue", "2")

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/stock-movements", api.CreateMovementRequest{
		RawMaterialID: m.ID, Direction: "debit", Quantity: "5",
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode, "body: %s", body)

	errResp := decode[api.ErrorResponse](t, body)
	require.Len(t, errResp.Deficits, 1)
	assert.Equal(t, "Wood Glue", errResp.Deficits[0].Name)
	assert.Equal(t, "5", errResp.Deficits[0].Required)
	assert.Equal(t, "2", errResp.Deficits[0].Available)
}

func TestAPI_GetRawMaterial_NotFound(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/api/raw-materials/99", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_CreateMovement_InvalidDirection(t *testing.T) {
	srv := newTestServer(t)
	m := createMaterial(t, srv, "WOOD", "Oak Wood", "5")

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/stock-movements", api.CreateMovementRequest{
		RawMaterialID: m.ID, Direction: "sideways", Quantity: "1",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// =============================================================================
// PRODUCTS
// =============================================================================

func TestAPI_CreateProduct_WithComposition(t *testing.T) {
	srv := newTestServer(t)
	wood := createMaterial(t, srv, "WOOD", "Oak Wood", "100")

	p := createProduct(t, srv, api.CreateProductRequest{
		Code: "TBL", Name: "Table", SellingPrice: "150.00",
		Composition: []api.CompositionItemDTO{{RawMaterialID: wood.ID, Quantity: "2.5"}},
	})
	assert.Equal(t, 0, p.Stock)
	require.Len(t, p.Composition, 1)
	assert.Equal(t, "2.5", p.Composition[0].Quantity)
}

func TestAPI_CreateProduct_UnknownMaterial(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/products", api.CreateProductRequest{
		Code: "TBL", Name: "Table", SellingPrice: "1",
		Composition: []api.CompositionItemDTO{{RawMaterialID: 99, Quantity: "2"}},
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// =============================================================================
// PRODUCTION ORDERS OVER HTTP
// =============================================================================

func TestAPI_ProductionOrderLifecycle(t *testing.T) {
	srv := newTestServer(t)
	wood := createMaterial(t, srv, "WOOD", "Oak Wood", "100")
	p := createProduct(t, srv, api.CreateProductRequest{
		Code: "TBL", Name: "Table", SellingPrice: "150.00",
		Composition: []api.CompositionItemDTO{{RawMaterialID: wood.ID, Quantity: "2.5"}},
	})

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/production-orders", api.CreateProductionOrderRequest{
		ProductID: p.ID, Quantity: 4,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %s", body)
	order := decode[api.ProductionOrderDTO](t, body)
	assert.Equal(t, "PENDING", order.Status)

	base := srv.URL + "/api/production-orders/" + itoa(order.ID)

	resp, body = doJSON(t, http.MethodPost, base+"/transition", api.TransitionRequest{Status: "IN_PROGRESS"})
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", body)
	order = decode[api.ProductionOrderDTO](t, body)
	assert.Equal(t, "IN_PROGRESS", order.Status)
	assert.NotEmpty(t, order.StartedAt)

	// Materials were consumed.
	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/raw-materials/"+itoa(wood.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "90", decode[api.RawMaterialDTO](t, body).Stock)

	resp, body = doJSON(t, http.MethodPost, base+"/transition", api.TransitionRequest{Status: "COMPLETED"})
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", body)

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/products/"+itoa(p.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 4, decode[api.ProductDTO](t, body).Stock)

	// Deleting a completed order is rejected.
	resp, _ = doJSON(t, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_ProductionOrder_StartWithoutStock_Conflict(t *testing.T) {
	srv := newTestServer(t)
	wood := createMaterial(t, srv, "WOOD", "Oak Wood", "1")
	p := createProduct(t, srv, api.CreateProductRequest{
		Code: "TBL", Name: "Table", SellingPrice: "150.00",
		Composition: []api.CompositionItemDTO{{RawMaterialID: wood.ID, Quantity: "2.5"}},
	})

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/production-orders", api.CreateProductionOrderRequest{
		ProductID: p.ID, Quantity: 1,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	order := decode[api.ProductionOrderDTO](t, body)

	resp, body = doJSON(t, http.MethodPost,
		srv.URL+"/api/production-orders/"+itoa(order.ID)+"/transition",
		api.TransitionRequest{Status: "IN_PROGRESS"})
	require.Equal(t, http.StatusConflict, resp.StatusCode, "body: %s", body)

	errResp := decode[api.ErrorResponse](t, body)
	require.Len(t, errResp.Deficits, 1)
	assert.Equal(t, "Oak Wood", errResp.Deficits[0].Name)
}

// =============================================================================
// SALES ORDERS OVER HTTP
// =============================================================================

func TestAPI_SalesOrder_DeficitReport(t *testing.T) {
	srv := newTestServer(t)
	client := createClient(t, srv, "Acme")
	p := createProduct(t, srv, api.CreateProductRequest{Code: "CHR", Name: "Chair", SellingPrice: "50.00"})

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/sales-orders", api.CreateSalesOrderRequest{
		ClientID: client.ID,
		Items:    []api.OrderItemRequest{{ProductID: p.ID, Quantity: 2}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %s", body)
	order := decode[api.SalesOrderDTO](t, body)
	assert.Equal(t, "100.00", order.TotalAmount)

	resp, body = doJSON(t, http.MethodPost,
		srv.URL+"/api/sales-orders/"+itoa(order.ID)+"/transition",
		api.TransitionRequest{Status: "CONFIRMED"})
	require.Equal(t, http.StatusConflict, resp.StatusCode, "body: %s", body)

	errResp := decode[api.ErrorResponse](t, body)
	require.Len(t, errResp.Deficits, 1)
	assert.Equal(t, "Chair", errResp.Deficits[0].Name)
	assert.Equal(t, "2", errResp.Deficits[0].Shortfall)
	assert.Len(t, errResp.CreatedProductionOrders, 1)

	// The order is still PENDING.
	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/sales-orders/"+itoa(order.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "PENDING", decode[api.SalesOrderDTO](t, body).Status)
}

func TestAPI_SalesOrder_UpdateItemsAndNotes(t *testing.T) {
	srv := newTestServer(t)
	client := createClient(t, srv, "Acme")
	chair := createProduct(t, srv, api.CreateProductRequest{Code: "CHR", Name: "Chair", SellingPrice: "50.00"})
	stool := createProduct(t, srv, api.CreateProductRequest{Code: "STL", Name: "Stool", SellingPrice: "60.00"})

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/sales-orders", api.CreateSalesOrderRequest{
		ClientID: client.ID,
		Items:    []api.OrderItemRequest{{ProductID: chair.ID, Quantity: 2}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	order := decode[api.SalesOrderDTO](t, body)

	resp, body = doJSON(t, http.MethodPut,
		srv.URL+"/api/sales-orders/"+itoa(order.ID)+"/items",
		api.UpdateItemsRequest{Items: []api.OrderItemRequest{
			{ProductID: chair.ID, Quantity: 2},
			{ProductID: stool.ID, Quantity: 1},
		}})
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", body)
	updated := decode[api.SalesOrderDTO](t, body)
	assert.Equal(t, "160.00", updated.TotalAmount)
	assert.Len(t, updated.Items, 2)

	resp, body = doJSON(t, http.MethodPut,
		srv.URL+"/api/sales-orders/"+itoa(order.ID)+"/notes",
		api.UpdateNotesRequest{Notes: "rush delivery"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "rush delivery", decode[api.SalesOrderDTO](t, body).Notes)
}

// =============================================================================
// CLIENTS
// =============================================================================

func TestAPI_ClientCRUD(t *testing.T) {
	srv := newTestServer(t)

	c := createClient(t, srv, "Acme")

	resp, body := doJSON(t, http.MethodPut, srv.URL+"/api/clients/"+itoa(c.ID),
		api.SavePartyRequest{Name: "Acme Corp", Email: "hello@acme.test"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[api.PartyDTO](t, body)
	assert.Equal(t, "Acme Corp", updated.Name)
	assert.Equal(t, "hello@acme.test", updated.Email)

	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/clients/"+itoa(c.ID), nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/clients/"+itoa(c.ID), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
