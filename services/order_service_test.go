package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/restaurant-floor/models"
)

func itemStatuses(order *models.Order) []models.OrderItemStatus {
	return order.ItemStatuses()
}

func TestCreateOrder(t *testing.T) {
	f := newFixture(t)
	table := f.table(t, "A1", 4)
	session := f.walkIn(t, table.ID, 2)
	soup := f.menu(t, "Soto Ayam", 3.50)

	order := f.order(t, session.ID, OrderItemInput{MenuID: soup.ID, Quantity: 2, SpecialRequest: "no onion"})
	assert.Equal(t, models.OrderPending, order.Status)
	assert.Equal(t, f.staff.ID, order.TakenByID)
	require.Len(t, order.OrderItems, 1)
	assert.Equal(t, models.ItemPending, order.OrderItems[0].Status)
	assert.Equal(t, 3.50, order.OrderItems[0].Price)
	assert.Equal(t, "no onion", order.OrderItems[0].SpecialRequest)
}

func TestCreateOrderRejections(t *testing.T) {
	f := newFixture(t)
	table := f.table(t, "A1", 4)
	session := f.walkIn(t, table.ID, 2)
	soup := f.menu(t, "Soto Ayam", 3.50)

	_, err := f.orders.CreateOrder(f.ctx, CreateOrderInput{SessionID: session.ID}, f.staff)
	assert.True(t, IsKind(err, KindValidation), "no items")

	_, err = f.orders.CreateOrder(f.ctx, CreateOrderInput{SessionID: session.ID,
		Items: []OrderItemInput{{MenuID: soup.ID, Quantity: 0}}}, f.staff)
	assert.True(t, IsKind(err, KindValidation), "zero quantity")

	_, err = f.orders.CreateOrder(f.ctx, CreateOrderInput{SessionID: session.ID,
		Items: []OrderItemInput{{MenuID: 999, Quantity: 1}}}, f.staff)
	assert.True(t, IsKind(err, KindNotFound), "unknown menu")

	_, _, err = f.orders.SetMenuAvailability(f.ctx, soup.ID, false)
	require.NoError(t, err)
	_, err = f.orders.CreateOrder(f.ctx, CreateOrderInput{SessionID: session.ID,
		Items: []OrderItemInput{{MenuID: soup.ID, Quantity: 1}}}, f.staff)
	assert.True(t, IsKind(err, KindInvalidState), "unavailable menu")

	_, err = f.billing.GenerateOrFetch(f.ctx, session.ID, f.staff)
	require.NoError(t, err)
	_, _, err = f.orders.SetMenuAvailability(f.ctx, soup.ID, true)
	require.NoError(t, err)
	_, err = f.orders.CreateOrder(f.ctx, CreateOrderInput{SessionID: session.ID,
		Items: []OrderItemInput{{MenuID: soup.ID, Quantity: 1}}}, f.staff)
	assert.True(t, IsKind(err, KindInvalidState), "billed session")

	var count int64
	require.NoError(t, f.db.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestOrderPriceIsCapturedAtOrderTime(t *testing.T) {
	f := newFixture(t)
	table := f.table(t, "A1", 4)
	session := f.walkIn(t, table.ID, 2)
	tea := f.menu(t, "Es Teh", 1.00)

	order := f.order(t, session.ID, OrderItemInput{MenuID: tea.ID, Quantity: 1})
	require.NoError(t, f.db.Model(&models.Menu{}).Where("id = ?", tea.ID).Update("price", 2.50).Error)

	got, err := f.orders.Get(f.ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 1.00, got.OrderItems[0].Price)
}

func TestItemProgressionSyncsOrder(t *testing.T) {
	f := newFixture(t)
	table := f.table(t, "A1", 4)
	session := f.walkIn(t, table.ID, 2)
	rice := f.menu(t, "Nasi Goreng", 3.00)
	tea := f.menu(t, "Es Teh", 1.00)

	order := f.order(t, session.ID,
		OrderItemInput{MenuID: rice.ID, Quantity: 1},
		OrderItemInput{MenuID: tea.ID, Quantity: 1})
	riceID, teaID := order.OrderItems[0].ID, order.OrderItems[1].ID

	got := f.advanceItem(t, riceID, models.ItemPreparing)
	assert.Equal(t, models.OrderPreparing, got.Status)

	got = f.advanceItem(t, riceID, models.ItemReady)
	assert.Equal(t, models.OrderPreparing, got.Status)

	got = f.advanceItem(t, teaID, models.ItemPreparing, models.ItemReady)
	assert.Equal(t, models.OrderReady, got.Status)

	got = f.advanceItem(t, riceID, models.ItemServed)
	assert.Equal(t, models.OrderReady, got.Status)

	got = f.advanceItem(t, teaID, models.ItemServed)
	assert.Equal(t, models.OrderServed, got.Status)

	_, err := f.orders.UpdateItemStatus(f.ctx, teaID, models.ItemCancelled, f.staff)
	assert.True(t, IsKind(err, KindInvalidState), "terminal order")
}

func TestItemInvalidTransitions(t *testing.T) {
	f := newFixture(t)
	table := f.table(t, "A1", 4)
	session := f.walkIn(t, table.ID, 2)
	rice := f.menu(t, "Nasi Goreng", 3.00)
	order := f.order(t, session.ID, OrderItemInput{MenuID: rice.ID, Quantity: 1})
	itemID := order.OrderItems[0].ID

	_, err := f.orders.UpdateItemStatus(f.ctx, itemID, models.ItemServed, f.staff)
	assert.True(t, IsKind(err, KindInvalidTransition))

	_, err = f.orders.UpdateItemStatus(f.ctx, itemID, "BURNT", f.staff)
	assert.True(t, IsKind(err, KindValidation))

	_, err = f.orders.UpdateItemStatus(f.ctx, 999, models.ItemReady, f.staff)
	assert.True(t, IsKind(err, KindNotFound))

	// same status is a no-op
	got, err := f.orders.UpdateItemStatus(f.ctx, itemID, models.ItemPending, f.staff)
	require.NoError(t, err)
	assert.Equal(t, models.OrderPending, got.Status)

	got = f.advanceItem(t, itemID, models.ItemCancelled)
	assert.Equal(t, models.OrderCancelled, got.Status)
}

func TestSoldOutCascadeAndResolve(t *testing.T) {
	f := newFixture(t)
	table := f.table(t, "A1", 4)
	session := f.walkIn(t, table.ID, 2)
	fish := f.menu(t, "Ikan Bakar", 6.00)
	rice := f.menu(t, "Nasi Putih", 1.00)
	chicken := f.menu(t, "Ayam Goreng", 4.00)

	order := f.order(t, session.ID,
		OrderItemInput{MenuID: fish.ID, Quantity: 1},
		OrderItemInput{MenuID: rice.ID, Quantity: 1})
	fishID := order.OrderItems[0].ID

	menu, result, err := f.orders.SetMenuAvailability(f.ctx, fish.ID, false)
	require.NoError(t, err)
	assert.False(t, menu.Available)
	assert.Equal(t, 1, result.AffectedItems)
	assert.Equal(t, []uint{order.ID}, result.OrderIDs)

	blocked, err := f.orders.Get(f.ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderActionRequired, blocked.Status)
	assert.Equal(t, []models.OrderItemStatus{models.ItemSoldOut, models.ItemPending}, itemStatuses(blocked))

	// kitchen work is blocked until staff decide
	_, err = f.orders.UpdateItemStatus(f.ctx, order.OrderItems[1].ID, models.ItemPreparing, f.staff)
	assert.True(t, IsKind(err, KindPrecondition))
	_, err = f.orders.UpdateOrderStatus(f.ctx, order.ID, models.OrderPreparing, f.staff)
	assert.True(t, IsKind(err, KindPrecondition))

	// leaving the sold-out item in place is refused and writes nothing
	_, err = f.orders.ResolveActionRequired(f.ctx, order.ID, Resolution{
		AddItems: []OrderItemInput{{MenuID: chicken.ID, Quantity: 1}},
	}, f.staff)
	assert.True(t, IsKind(err, KindPrecondition))
	unchanged, err := f.orders.Get(f.ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, unchanged.OrderItems, 2)

	resolved, err := f.orders.ResolveActionRequired(f.ctx, order.ID, Resolution{
		CancelItemIDs: []uint{fishID},
		AddItems:      []OrderItemInput{{MenuID: chicken.ID, Quantity: 1}},
	}, f.staff)
	require.NoError(t, err)
	assert.Equal(t, models.OrderPending, resolved.Status)
	assert.Equal(t, []models.OrderItemStatus{models.ItemCancelled, models.ItemPending, models.ItemPending},
		itemStatuses(resolved))
	assert.Equal(t, 4.00, resolved.OrderItems[2].Price)

	_, err = f.orders.ResolveActionRequired(f.ctx, order.ID, Resolution{}, f.staff)
	assert.True(t, IsKind(err, KindInvalidState), "already resolved")
}

func TestResolveKeepsPreparingWork(t *testing.T) {
	f := newFixture(t)
	table := f.table(t, "A1", 4)
	session := f.walkIn(t, table.ID, 2)
	fish := f.menu(t, "Ikan Bakar", 6.00)
	rice := f.menu(t, "Nasi Putih", 1.00)

	order := f.order(t, session.ID,
		OrderItemInput{MenuID: fish.ID, Quantity: 1},
		OrderItemInput{MenuID: rice.ID, Quantity: 1})
	f.advanceItem(t, order.OrderItems[1].ID, models.ItemPreparing)

	_, err := f.orders.MarkMenuUnavailable(f.ctx, fish.ID)
	require.NoError(t, err)

	quantity := 2
	resolved, err := f.orders.ResolveActionRequired(f.ctx, order.ID, Resolution{
		CancelItemIDs: []uint{order.OrderItems[0].ID},
		UpdateItems:   []ItemUpdate{{ItemID: order.OrderItems[1].ID, Quantity: &quantity}},
	}, f.staff)
	require.NoError(t, err)
	assert.Equal(t, models.OrderPreparing, resolved.Status)
	assert.Equal(t, 2, resolved.OrderItems[1].Quantity)
}

func TestCascadeLeavesFinishedWorkAlone(t *testing.T) {
	f := newFixture(t)
	table := f.table(t, "A1", 4)
	session := f.walkIn(t, table.ID, 2)
	fish := f.menu(t, "Ikan Bakar", 6.00)

	ready := f.order(t, session.ID, OrderItemInput{MenuID: fish.ID, Quantity: 1})
	f.advanceItem(t, ready.OrderItems[0].ID, models.ItemPreparing, models.ItemReady)

	result, err := f.orders.MarkMenuUnavailable(f.ctx, fish.ID)
	require.NoError(t, err)
	assert.Zero(t, result.AffectedItems)
	assert.Empty(t, result.OrderIDs)

	got, err := f.orders.Get(f.ctx, ready.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderReady, got.Status)
	assert.Equal(t, models.ItemReady, got.OrderItems[0].Status)

	// running it again on an already unavailable menu changes nothing
	result, err = f.orders.MarkMenuUnavailable(f.ctx, fish.ID)
	require.NoError(t, err)
	assert.Zero(t, result.AffectedItems)
}

func TestUpdateOrderStatusForcesItems(t *testing.T) {
	f := newFixture(t)
	table := f.table(t, "A1", 4)
	session := f.walkIn(t, table.ID, 2)
	rice := f.menu(t, "Nasi Goreng", 3.00)
	tea := f.menu(t, "Es Teh", 1.00)

	order := f.order(t, session.ID,
		OrderItemInput{MenuID: rice.ID, Quantity: 1},
		OrderItemInput{MenuID: tea.ID, Quantity: 1})

	got, err := f.orders.UpdateOrderStatus(f.ctx, order.ID, models.OrderPreparing, f.staff)
	require.NoError(t, err)
	assert.Equal(t, []models.OrderItemStatus{models.ItemPreparing, models.ItemPreparing}, itemStatuses(got))

	got, err = f.orders.UpdateOrderStatus(f.ctx, order.ID, models.OrderReady, f.staff)
	require.NoError(t, err)
	assert.Equal(t, models.OrderReady, got.Status)
	assert.Equal(t, []models.OrderItemStatus{models.ItemReady, models.ItemReady}, itemStatuses(got))

	_, err = f.orders.UpdateOrderStatus(f.ctx, order.ID, models.OrderPending, f.staff)
	assert.True(t, IsKind(err, KindInvalidTransition))

	got, err = f.orders.UpdateOrderStatus(f.ctx, order.ID, models.OrderServed, f.staff)
	require.NoError(t, err)
	assert.Equal(t, []models.OrderItemStatus{models.ItemServed, models.ItemServed}, itemStatuses(got))

	_, err = f.orders.UpdateOrderStatus(f.ctx, order.ID, models.OrderCancelled, f.staff)
	assert.True(t, IsKind(err, KindInvalidTransition), "served is terminal")
}

func TestCancelOrderCancelsSoldOutItems(t *testing.T) {
	f := newFixture(t)
	table := f.table(t, "A1", 4)
	session := f.walkIn(t, table.ID, 2)
	fish := f.menu(t, "Ikan Bakar", 6.00)
	rice := f.menu(t, "Nasi Putih", 1.00)

	order := f.order(t, session.ID,
		OrderItemInput{MenuID: fish.ID, Quantity: 1},
		OrderItemInput{MenuID: rice.ID, Quantity: 1})
	_, err := f.orders.MarkMenuUnavailable(f.ctx, fish.ID)
	require.NoError(t, err)

	got, err := f.orders.UpdateOrderStatus(f.ctx, order.ID, models.OrderCancelled, f.staff)
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, got.Status)
	assert.Equal(t, []models.OrderItemStatus{models.ItemCancelled, models.ItemCancelled}, itemStatuses(got))
}

func TestOrderChangesRejectedAfterClose(t *testing.T) {
	f := newFixture(t)
	table := f.table(t, "A1", 4)
	session := f.walkIn(t, table.ID, 2)
	rice := f.menu(t, "Nasi Goreng", 3.00)
	order := f.order(t, session.ID, OrderItemInput{MenuID: rice.ID, Quantity: 1})

	bill, err := f.billing.GenerateOrFetch(f.ctx, session.ID, f.staff)
	require.NoError(t, err)
	_, err = f.billing.ConfirmPayment(f.ctx, bill.ID, PaymentDetails{Method: "cash"}, f.staff)
	require.NoError(t, err)

	_, err = f.orders.UpdateItemStatus(f.ctx, order.OrderItems[0].ID, models.ItemPreparing, f.staff)
	assert.True(t, IsKind(err, KindPrecondition))
	_, err = f.orders.UpdateOrderStatus(f.ctx, order.ID, models.OrderPreparing, f.staff)
	assert.True(t, IsKind(err, KindPrecondition))
}

func TestListOrdersAndMenus(t *testing.T) {
	f := newFixture(t)
	table := f.table(t, "A1", 4)
	session := f.walkIn(t, table.ID, 2)
	rice := f.menu(t, "Nasi Goreng", 3.00)
	tea := f.menu(t, "Es Teh", 1.00)

	first := f.order(t, session.ID, OrderItemInput{MenuID: rice.ID, Quantity: 1})
	f.order(t, session.ID, OrderItemInput{MenuID: tea.ID, Quantity: 2})
	f.advanceItem(t, first.OrderItems[0].ID, models.ItemPreparing)

	all, err := f.orders.List(f.ctx, OrderFilter{SessionID: session.ID})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	preparing, err := f.orders.List(f.ctx, OrderFilter{Status: models.OrderPreparing})
	require.NoError(t, err)
	require.Len(t, preparing, 1)
	assert.Equal(t, first.ID, preparing[0].ID)

	_, err = f.orders.MarkMenuUnavailable(f.ctx, tea.ID)
	require.NoError(t, err)
	menus, err := f.orders.ListMenus(f.ctx, true)
	require.NoError(t, err)
	require.Len(t, menus, 1)
	assert.Equal(t, rice.ID, menus[0].ID)
}
