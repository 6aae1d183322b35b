package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/fulfillment-engine/catalog"
	"github.com/warp/fulfillment-engine/engine"
	"github.com/warp/fulfillment-engine/inventory"
	"github.com/warp/fulfillment-engine/production"
	"github.com/warp/fulfillment-engine/sales"
)

func (te *testEngine) seedClient(t *testing.T, name string) *catalog.Client {
	t.Helper()
	c := &catalog.Client{Name: name}
	require.NoError(t, te.store.SaveClient(context.Background(), c))
	return c
}

func TestSales_Create_SnapshotsPrices(t *testing.T) {
	// GIVEN: A chair selling at 50
	// WHEN: Ordering 2 chairs and then raising the catalog price
	// THEN: The order keeps the 50 snapshot and its 100 total

	te := newTestEngine(t)
	ctx := context.Background()
	client := te.seedClient(t, "Acme")
	chair := te.seedProduct(t, "Chair", "50.00", 10)

	order, err := te.sales.Create(ctx, engine.CreateSalesOrderInput{
		ClientID: client.ID,
		Items:    []engine.ItemInput{{ProductID: chair.ID, Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, sales.StatusPending, order.Status)
	assert.NotEmpty(t, order.OrderNumber)
	require.Len(t, order.Items, 1)
	assert.True(t, order.Items[0].UnitPrice.Equal(dec("50.00")))
	assert.True(t, order.TotalAmount.Equal(dec("100.00")))

	// Raise the catalog price; the snapshot must not move.
	chair.SellingPrice = dec("80.00")
	require.NoError(t, te.store.SaveProduct(ctx, chair))

	reloaded, err := te.sales.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.Items[0].UnitPrice.Equal(dec("50.00")))
	assert.True(t, reloaded.TotalAmount.Equal(dec("100.00")))
}

func TestSales_Create_Invalid(t *testing.T) {
	te := newTestEngine(t)
	ctx := context.Background()
	client := te.seedClient(t, "Acme")
	chair := te.seedProduct(t, "Chair", "50.00", 10)

	_, err := te.sales.Create(ctx, engine.CreateSalesOrderInput{ClientID: client.ID})
	assert.ErrorIs(t, err, sales.ErrEmptyOrder)

	_, err = te.sales.Create(ctx, engine.CreateSalesOrderInput{
		ClientID: 999,
		Items:    []engine.ItemInput{{ProductID: chair.ID, Quantity: 1}},
	})
	assert.ErrorIs(t, err, catalog.ErrNotFound, "unknown client")

	_, err = te.sales.Create(ctx, engine.CreateSalesOrderInput{
		ClientID: client.ID,
		Items:    []engine.ItemInput{{ProductID: 999, Quantity: 1}},
	})
	assert.ErrorIs(t, err, catalog.ErrNotFound, "unknown product")

	_, err = te.sales.Create(ctx, engine.CreateSalesOrderInput{
		ClientID: client.ID,
		Items:    []engine.ItemInput{{ProductID: chair.ID, Quantity: 0}},
	})
	assert.ErrorIs(t, err, inventory.ErrInvalidQuantity)
}

func TestSales_Create_DuplicateProductLines_Rejected(t *testing.T) {
	// Lines are keyed by product id; two lines for one product would let
	// each pass the stock check alone while jointly overdrawing.

	te := newTestEngine(t)
	ctx := context.Background()
	client := te.seedClient(t, "Acme")
	chair := te.seedProduct(t, "Chair", "50.00", 10)

	_, err := te.sales.Create(ctx, engine.CreateSalesOrderInput{
		ClientID: client.ID,
		Items: []engine.ItemInput{
			{ProductID: chair.ID, Quantity: 3},
			{ProductID: chair.ID, Quantity: 3},
		},
	})
	require.ErrorIs(t, err, sales.ErrDuplicateItem)

	var dupErr *sales.DuplicateItemError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, chair.ID, dupErr.ProductID)
}

func TestSales_UpdateItems_DuplicateProductLines_Rejected(t *testing.T) {
	te := newTestEngine(t)
	ctx := context.Background()
	client := te.seedClient(t, "Acme")
	chair := te.seedProduct(t, "Chair", "50.00", 10)

	order, err := te.sales.Create(ctx, engine.CreateSalesOrderInput{
		ClientID: client.ID,
		Items:    []engine.ItemInput{{ProductID: chair.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = te.sales.UpdateItems(ctx, order.ID, []engine.ItemInput{
		{ProductID: chair.ID, Quantity: 2},
		{ProductID: chair.ID, Quantity: 2},
	})
	require.ErrorIs(t, err, sales.ErrDuplicateItem)
}

func TestSales_Confirm_SumsLinesPerProduct(t *testing.T) {
	// GIVEN: 5 chairs in stock and a stored order carrying two 3-chair
	//        lines (predating the duplicate-line validation)
	// WHEN: Confirming
	// THEN: The lines are summed before the check; the confirmation fails
	//       with needed 6 against 5 and stock never goes negative

	te := newTestEngine(t)
	ctx := context.Background()
	client := te.seedClient(t, "Acme")
	chair := te.seedProduct(t, "Chair", "50.00", 5)

	order := sales.NewOrder(client.ID, []sales.Item{
		{ProductID: chair.ID, Quantity: 3, UnitPrice: dec("50.00")},
		{ProductID: chair.ID, Quantity: 3, UnitPrice: dec("50.00")},
	}, "")
	require.NoError(t, te.store.SaveSalesOrder(ctx, order))

	_, err := te.sales.Confirm(ctx, order.ID)
	require.Error(t, err)
	require.ErrorIs(t, err, inventory.ErrInsufficientStock)

	var deficitErr *sales.StockDeficitError
	require.ErrorAs(t, err, &deficitErr)
	require.Len(t, deficitErr.Deficits, 1)
	assert.Equal(t, 6, deficitErr.Deficits[0].Needed)
	assert.Equal(t, 5, deficitErr.Deficits[0].Available)

	reloaded, err := te.store.GetProduct(ctx, chair.ID)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, reloaded.Stock, 0, "stock must never go negative")
	assert.Equal(t, 5, reloaded.Stock)

	reloadedOrder, err := te.sales.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, sales.StatusPending, reloadedOrder.Status)
}

func TestSales_UpdateItems_DiffKeepsSnapshots(t *testing.T) {
	// GIVEN: A pending order of 2 chairs at the old price of 50 (total 100)
	// WHEN: The catalog price rises to 80, the quantity changes to 2 and
	//       a 60-stool line is added
	// THEN: The chair keeps its 50 snapshot, the stool gets the current
	//       price, and the total recomputes to 160

	te := newTestEngine(t)
	ctx := context.Background()
	client := te.seedClient(t, "Acme")
	chair := te.seedProduct(t, "Chair", "50.00", 10)
	stool := te.seedProduct(t, "Stool", "60.00", 10)

	order, err := te.sales.Create(ctx, engine.CreateSalesOrderInput{
		ClientID: client.ID,
		Items:    []engine.ItemInput{{ProductID: chair.ID, Quantity: 2}},
	})
	require.NoError(t, err)
	require.True(t, order.TotalAmount.Equal(dec("100.00")))

	chair.SellingPrice = dec("80.00")
	require.NoError(t, te.store.SaveProduct(ctx, chair))

	updated, err := te.sales.UpdateItems(ctx, order.ID, []engine.ItemInput{
		{ProductID: chair.ID, Quantity: 2},
		{ProductID: stool.ID, Quantity: 1},
	})
	require.NoError(t, err)
	require.Len(t, updated.Items, 2)

	byProduct := map[int64]sales.Item{}
	for _, it := range updated.Items {
		byProduct[it.ProductID] = it
	}
	assert.True(t, byProduct[chair.ID].UnitPrice.Equal(dec("50.00")), "existing line keeps its snapshot")
	assert.True(t, byProduct[stool.ID].UnitPrice.Equal(dec("60.00")), "new line resolves the current price")
	assert.True(t, updated.TotalAmount.Equal(dec("160.00")), "total = %s", updated.TotalAmount)
}

func TestSales_UpdateItems_RemovesAbsentLines(t *testing.T) {
	te := newTestEngine(t)
	ctx := context.Background()
	client := te.seedClient(t, "Acme")
	chair := te.seedProduct(t, "Chair", "50.00", 10)
	stool := te.seedProduct(t, "Stool", "60.00", 10)

	order, err := te.sales.Create(ctx, engine.CreateSalesOrderInput{
		ClientID: client.ID,
		Items: []engine.ItemInput{
			{ProductID: chair.ID, Quantity: 1},
			{ProductID: stool.ID, Quantity: 1},
		},
	})
	require.NoError(t, err)

	updated, err := te.sales.UpdateItems(ctx, order.ID, []engine.ItemInput{
		{ProductID: stool.ID, Quantity: 2},
	})
	require.NoError(t, err)
	require.Len(t, updated.Items, 1)
	assert.Equal(t, stool.ID, updated.Items[0].ProductID)
	assert.True(t, updated.TotalAmount.Equal(dec("120.00")))
}

func TestSales_UpdateItems_OnlyWhilePending(t *testing.T) {
	te := newTestEngine(t)
	ctx := context.Background()
	client := te.seedClient(t, "Acme")
	chair := te.seedProduct(t, "Chair", "50.00", 10)

	order, err := te.sales.Create(ctx, engine.CreateSalesOrderInput{
		ClientID: client.ID,
		Items:    []engine.ItemInput{{ProductID: chair.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	_, err = te.sales.Confirm(ctx, order.ID)
	require.NoError(t, err)

	_, err = te.sales.UpdateItems(ctx, order.ID, []engine.ItemInput{{ProductID: chair.ID, Quantity: 3}})
	require.ErrorIs(t, err, sales.ErrNotEditable)
}

func TestSales_Confirm_DebitsProductStock(t *testing.T) {
	// GIVEN: 10 chairs in stock and a pending order for 4
	// WHEN: Confirming
	// THEN: Stock drops to 6 atomically with the status flip

	te := newTestEngine(t)
	ctx := context.Background()
	client := te.seedClient(t, "Acme")
	chair := te.seedProduct(t, "Chair", "50.00", 10)

	order, err := te.sales.Create(ctx, engine.CreateSalesOrderInput{
		ClientID: client.ID,
		Items:    []engine.ItemInput{{ProductID: chair.ID, Quantity: 4}},
	})
	require.NoError(t, err)

	confirmed, err := te.sales.Confirm(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, sales.StatusConfirmed, confirmed.Status)
	require.NotNil(t, confirmed.ConfirmedAt)

	reloaded, err := te.store.GetProduct(ctx, chair.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, reloaded.Stock)
}

func TestSales_Confirm_Deficit_CreatesCompensatingOrders(t *testing.T) {
	// GIVEN: 3 chairs in stock and a pending order for 5
	// WHEN: Confirming
	// THEN: The attempt fails with the deficit, the order stays PENDING,
	//       stock is untouched, and one compensating production order for
	//       the shortfall of 2 is created and linked

	te := newTestEngine(t)
	ctx := context.Background()
	client := te.seedClient(t, "Acme")
	chair := te.seedProduct(t, "Chair", "50.00", 3,
		catalog.CompositionItem{RawMaterialID: te.seedMaterial(t, "WOOD", "Oak Wood", "100").ID, Quantity: dec("2.5")})

	order, err := te.sales.Create(ctx, engine.CreateSalesOrderInput{
		ClientID: client.ID,
		Items:    []engine.ItemInput{{ProductID: chair.ID, Quantity: 5}},
	})
	require.NoError(t, err)

	_, err = te.sales.Confirm(ctx, order.ID)
	require.Error(t, err)
	require.ErrorIs(t, err, inventory.ErrInsufficientStock)

	var deficitErr *sales.StockDeficitError
	require.ErrorAs(t, err, &deficitErr)
	require.Len(t, deficitErr.Deficits, 1)
	assert.Equal(t, chair.ID, deficitErr.Deficits[0].ProductID)
	assert.Equal(t, 5, deficitErr.Deficits[0].Needed)
	assert.Equal(t, 3, deficitErr.Deficits[0].Available)
	require.Len(t, deficitErr.CreatedProductionOrders, 1)
	assert.Empty(t, deficitErr.Failures)

	// The order is untouched and stock was not debited.
	reloadedOrder, err := te.sales.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, sales.StatusPending, reloadedOrder.Status)
	reloadedProduct, err := te.store.GetProduct(ctx, chair.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, reloadedProduct.Stock)

	// The compensating order is sized to the shortfall and linked back.
	orders, err := te.production.List(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	po := orders[0]
	assert.Equal(t, chair.ID, po.ProductID)
	assert.Equal(t, 2, po.QuantityToProduce)
	assert.Equal(t, production.StatusPending, po.Status)
	require.NotNil(t, po.SalesOrderID)
	assert.Equal(t, order.ID, *po.SalesOrderID)
	assert.Contains(t, po.Notes, order.OrderNumber)
}

func TestSales_Confirm_Deficit_Idempotent(t *testing.T) {
	// A second confirmation attempt on the same under-stocked order must
	// not create a second wave of compensating orders.

	te := newTestEngine(t)
	ctx := context.Background()
	client := te.seedClient(t, "Acme")
	chair := te.seedProduct(t, "Chair", "50.00", 1)

	order, err := te.sales.Create(ctx, engine.CreateSalesOrderInput{
		ClientID: client.ID,
		Items:    []engine.ItemInput{{ProductID: chair.ID, Quantity: 3}},
	})
	require.NoError(t, err)

	_, err = te.sales.Confirm(ctx, order.ID)
	require.Error(t, err)
	_, err = te.sales.Confirm(ctx, order.ID)
	require.Error(t, err)

	var deficitErr *sales.StockDeficitError
	require.ErrorAs(t, err, &deficitErr)
	assert.Empty(t, deficitErr.CreatedProductionOrders, "second attempt creates nothing")

	orders, err := te.production.List(ctx)
	require.NoError(t, err)
	assert.Len(t, orders, 1, "exactly one compensating order per sales order")
}

func TestSales_CompensatingOrderResolvesDeficit(t *testing.T) {
	// End to end: deficit -> compensating production -> complete -> confirm.

	te := newTestEngine(t)
	ctx := context.Background()
	client := te.seedClient(t, "Acme")
	wood := te.seedMaterial(t, "WOOD", "Oak Wood", "100")
	chair := te.seedProduct(t, "Chair", "50.00", 1,
		catalog.CompositionItem{RawMaterialID: wood.ID, Quantity: dec("2.5")})

	order, err := te.sales.Create(ctx, engine.CreateSalesOrderInput{
		ClientID: client.ID,
		Items:    []engine.ItemInput{{ProductID: chair.ID, Quantity: 3}},
	})
	require.NoError(t, err)

	_, err = te.sales.Confirm(ctx, order.ID)
	require.Error(t, err)

	pos, err := te.production.List(ctx)
	require.NoError(t, err)
	require.Len(t, pos, 1)
	_, err = te.production.Start(ctx, pos[0].ID)
	require.NoError(t, err)
	_, err = te.production.Complete(ctx, pos[0].ID)
	require.NoError(t, err)

	confirmed, err := te.sales.Confirm(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, sales.StatusConfirmed, confirmed.Status)

	reloaded, err := te.store.GetProduct(ctx, chair.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, reloaded.Stock, "1 + 2 produced - 3 sold")
}

func TestSales_Cancel_AfterConfirmation_DoesNotRestoreStock(t *testing.T) {
	// Cancelling a CONFIRMED order does not credit the debited stock
	// back; that reversal is a separate, unbuilt decision.

	te := newTestEngine(t)
	ctx := context.Background()
	client := te.seedClient(t, "Acme")
	chair := te.seedProduct(t, "Chair", "50.00", 10)

	order, err := te.sales.Create(ctx, engine.CreateSalesOrderInput{
		ClientID: client.ID,
		Items:    []engine.ItemInput{{ProductID: chair.ID, Quantity: 4}},
	})
	require.NoError(t, err)
	_, err = te.sales.Confirm(ctx, order.ID)
	require.NoError(t, err)

	cancelled, err := te.sales.Transition(ctx, order.ID, sales.StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, sales.StatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)

	reloaded, err := te.store.GetProduct(ctx, chair.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, reloaded.Stock, "stock stays debited after cancellation")
}

func TestSales_Transition_ShippedToConfirmed_Rejected(t *testing.T) {
	te := newTestEngine(t)
	ctx := context.Background()
	client := te.seedClient(t, "Acme")
	chair := te.seedProduct(t, "Chair", "50.00", 10)

	order, err := te.sales.Create(ctx, engine.CreateSalesOrderInput{
		ClientID: client.ID,
		Items:    []engine.ItemInput{{ProductID: chair.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	_, err = te.sales.Confirm(ctx, order.ID)
	require.NoError(t, err)
	_, err = te.sales.Transition(ctx, order.ID, sales.StatusShipped)
	require.NoError(t, err)

	_, err = te.sales.Transition(ctx, order.ID, sales.StatusConfirmed)
	require.ErrorIs(t, err, sales.ErrInvalidTransition)
}

func TestSales_UpdateNotes_AnyStatus(t *testing.T) {
	te := newTestEngine(t)
	ctx := context.Background()
	client := te.seedClient(t, "Acme")
	chair := te.seedProduct(t, "Chair", "50.00", 10)

	order, err := te.sales.Create(ctx, engine.CreateSalesOrderInput{
		ClientID: client.ID,
		Items:    []engine.ItemInput{{ProductID: chair.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	_, err = te.sales.Confirm(ctx, order.ID)
	require.NoError(t, err)

	updated, err := te.sales.UpdateNotes(ctx, order.ID, "deliver to the loading dock")
	require.NoError(t, err)
	assert.Equal(t, "deliver to the loading dock", updated.Notes)
}

func TestSales_Delete_Rules(t *testing.T) {
	te := newTestEngine(t)
	ctx := context.Background()
	client := te.seedClient(t, "Acme")
	chair := te.seedProduct(t, "Chair", "50.00", 10)

	pending, err := te.sales.Create(ctx, engine.CreateSalesOrderInput{
		ClientID: client.ID,
		Items:    []engine.ItemInput{{ProductID: chair.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	require.NoError(t, te.sales.Delete(ctx, pending.ID))

	confirmed, err := te.sales.Create(ctx, engine.CreateSalesOrderInput{
		ClientID: client.ID,
		Items:    []engine.ItemInput{{ProductID: chair.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	_, err = te.sales.Confirm(ctx, confirmed.ID)
	require.NoError(t, err)

	err = te.sales.Delete(ctx, confirmed.ID)
	require.ErrorIs(t, err, sales.ErrInvalidState)
}
