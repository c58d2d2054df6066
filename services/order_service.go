package services

import (
	"context"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yeremiapane/restaurant-floor/models"
	"github.com/yeremiapane/restaurant-floor/utils"
)

// OrderService mengelola order dan item-nya di dalam sesi, termasuk jalur
// sold-out dari dapur.
type OrderService struct {
	db *gorm.DB
}

func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{db: db}
}

type OrderItemInput struct {
	MenuID         uint   `json:"menu_id"`
	Quantity       int    `json:"quantity"`
	SpecialRequest string `json:"special_request"`
}

type CreateOrderInput struct {
	SessionID uint             `json:"session_id"`
	Items     []OrderItemInput `json:"items"`
	Notes     string           `json:"notes"`
}

type ItemUpdate struct {
	ItemID         uint    `json:"item_id"`
	Quantity       *int    `json:"quantity"`
	SpecialRequest *string `json:"special_request"`
}

// Resolution is what staff decide for an ACTION_REQUIRED order.
type Resolution struct {
	CancelItemIDs []uint           `json:"cancel_item_ids"`
	UpdateItems   []ItemUpdate     `json:"update_items"`
	AddItems      []OrderItemInput `json:"add_items"`
}

type OrderFilter struct {
	SessionID uint
	Status    models.OrderStatus
}

// CascadeResult reports what a sold-out cascade touched.
type CascadeResult struct {
	MenuID        uint   `json:"menu_id"`
	AffectedItems int    `json:"affected_items"`
	OrderIDs      []uint `json:"order_ids"`
}

func validateItemInputs(inputs []OrderItemInput) error {
	for i, in := range inputs {
		if in.MenuID == 0 {
			return validation("order_item", "item %d: menu_id is required", i)
		}
		if in.Quantity <= 0 {
			return validation("order_item", "item %d: quantity must be positive", i)
		}
	}
	return nil
}

func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput, staff Staff) (*models.Order, error) {
	if err := staff.validate(); err != nil {
		return nil, err
	}
	if in.SessionID == 0 {
		return nil, validation("order", "session_id is required")
	}
	if len(in.Items) == 0 {
		return nil, validation("order", "an order needs at least one item")
	}
	if err := validateItemInputs(in.Items); err != nil {
		return nil, err
	}

	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var session models.DiningSession
		if err := forUpdate(tx).First(&session, in.SessionID).Error; err != nil {
			return lookupErr(err, "dining_session", in.SessionID)
		}
		if session.Status != models.SessionActive {
			return newError(KindInvalidState, "dining_session", session.ID,
				"session %d is %s, orders need an ACTIVE session", session.ID, session.Status)
		}

		items, err := priceItems(tx, in.Items)
		if err != nil {
			return err
		}

		order = models.Order{
			SessionID: session.ID,
			TakenByID: staff.ID,
			Status:    models.OrderPending,
			Notes:     in.Notes,
		}
		if err := tx.Omit(clause.Associations).Create(&order).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := tx.Omit(clause.Associations).Create(&items).Error; err != nil {
			return err
		}

		utils.InfoLogger.WithFields(logrus.Fields{
			"order_id": order.ID, "session_id": session.ID, "items": len(items), "staff_id": staff.ID,
		}).Info("order created")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, order.ID)
}

// priceItems checks every menu item and captures its current price.
func priceItems(tx *gorm.DB, inputs []OrderItemInput) ([]models.OrderItem, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	ids := make([]uint, 0, len(inputs))
	for _, in := range inputs {
		ids = append(ids, in.MenuID)
	}

	var menus []models.Menu
	if err := tx.Where("id IN ?", ids).Find(&menus).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Menu, len(menus))
	for _, m := range menus {
		byID[m.ID] = m
	}

	items := make([]models.OrderItem, 0, len(inputs))
	for _, in := range inputs {
		menu, ok := byID[in.MenuID]
		if !ok {
			return nil, notFound("menu", in.MenuID)
		}
		if !menu.Available {
			return nil, newError(KindInvalidState, "menu", menu.ID, "menu item %q is unavailable", menu.Name)
		}
		items = append(items, models.OrderItem{
			MenuID:         menu.ID,
			Quantity:       in.Quantity,
			Price:          menu.Price,
			SpecialRequest: in.SpecialRequest,
			Status:         models.ItemPending,
		})
	}
	return items, nil
}

// UpdateItemStatus is a staff-requested item transition followed by one
// status-sync pass over the parent order.
func (s *OrderService) UpdateItemStatus(ctx context.Context, itemID uint, status models.OrderItemStatus, staff Staff) (*models.Order, error) {
	if err := staff.validate(); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, validation("order_item", "unknown order item status %q", status)
	}

	var orderID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.OrderItem
		if err := forUpdate(tx).First(&item, itemID).Error; err != nil {
			return lookupErr(err, "order_item", itemID)
		}
		orderID = item.OrderID

		order, err := lockOpenOrder(tx, item.OrderID)
		if err != nil {
			return err
		}
		if order.Status.Terminal() {
			return newError(KindInvalidState, "order", order.ID,
				"order %d is %s, its items can no longer change", order.ID, order.Status)
		}
		if item.Status == status {
			return nil
		}
		if !CanTransitionItem(item.Status, status) {
			return newError(KindInvalidTransition, "order_item", itemID,
				"order item %d cannot go from %s to %s", itemID, item.Status, status)
		}
		if order.Status == models.OrderActionRequired && status != models.ItemCancelled && status != models.ItemSoldOut {
			return newError(KindPrecondition, "order", order.ID,
				"order %d needs its sold-out items resolved first", order.ID)
		}

		err = tx.Model(&models.OrderItem{}).
			Where("id = ? AND status = ?", itemID, item.Status).
			Update("status", status).Error
		if err != nil {
			return err
		}

		utils.InfoLogger.WithFields(logrus.Fields{
			"order_item_id": itemID, "from": item.Status, "to": status, "staff_id": staff.ID,
		}).Info("order item status updated")
		return syncOrderStatus(tx, order)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, orderID)
}

// lockOpenOrder locks an order whose session has not been closed.
func lockOpenOrder(tx *gorm.DB, orderID uint) (*models.Order, error) {
	var order models.Order
	if err := forUpdate(tx).First(&order, orderID).Error; err != nil {
		return nil, lookupErr(err, "order", orderID)
	}
	var session models.DiningSession
	if err := tx.Select("id", "status").First(&session, order.SessionID).Error; err != nil {
		return nil, lookupErr(err, "dining_session", order.SessionID)
	}
	if session.Status == models.SessionClosed {
		return nil, newError(KindPrecondition, "dining_session", session.ID,
			"session %d is already closed", session.ID)
	}
	return &order, nil
}

// syncOrderStatus re-reads the item statuses and stores the derived order
// status when it differs.
func syncOrderStatus(tx *gorm.DB, order *models.Order) error {
	var statuses []models.OrderItemStatus
	err := tx.Model(&models.OrderItem{}).
		Where("order_id = ?", order.ID).
		Order("id ASC").
		Pluck("status", &statuses).Error
	if err != nil {
		return err
	}

	next := DeriveOrderStatus(order.Status, statuses)
	if next == order.Status {
		return nil
	}
	if err := tx.Model(&models.Order{}).Where("id = ?", order.ID).Update("status", next).Error; err != nil {
		return err
	}
	utils.InfoLogger.WithFields(logrus.Fields{
		"order_id": order.ID, "from": order.Status, "to": next,
	}).Info("order status synced")
	order.Status = next
	return nil
}

// UpdateOrderStatus is the staff-requested order transition. The order is
// written directly; its non-terminal items are then force-moved so they
// agree with the new order status.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID uint, status models.OrderStatus, staff Staff) (*models.Order, error) {
	if err := staff.validate(); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, validation("order", "unknown order status %q", status)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := lockOpenOrder(tx, orderID)
		if err != nil {
			return err
		}
		if order.Status == status {
			return nil
		}
		if !CanTransitionOrder(order.Status, status) {
			return newError(KindInvalidTransition, "order", orderID,
				"order %d cannot go from %s to %s", orderID, order.Status, status)
		}

		var items []models.OrderItem
		if err := tx.Where("order_id = ?", orderID).Find(&items).Error; err != nil {
			return err
		}
		if order.Status == models.OrderActionRequired && status != models.OrderCancelled {
			for _, item := range items {
				if item.Status == models.ItemSoldOut {
					return newError(KindPrecondition, "order_item", item.ID,
						"order item %d is SOLD_OUT and must be resolved first", item.ID)
				}
			}
		}

		ok, err := compareAndSet(tx, &models.Order{}, orderID,
			[]models.OrderStatus{order.Status},
			map[string]interface{}{"status": status})
		if err != nil {
			return err
		}
		if !ok {
			return newError(KindConflict, "order", orderID, "order %d was changed concurrently", orderID)
		}

		if err := forceItemsToOrder(tx, items, status); err != nil {
			return err
		}

		utils.InfoLogger.WithFields(logrus.Fields{
			"order_id": orderID, "from": order.Status, "to": status, "staff_id": staff.ID,
		}).Info("order status updated")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, orderID)
}

// forceItemsToOrder is a system-forced transition: it skips the item table.
func forceItemsToOrder(tx *gorm.DB, items []models.OrderItem, target models.OrderStatus) error {
	groups := map[models.OrderItemStatus][]uint{}
	for _, item := range items {
		if next, ok := forcedItemTarget(item.Status, target); ok {
			groups[next] = append(groups[next], item.ID)
		}
	}
	for next, ids := range groups {
		if err := forceItemStatus(tx, ids, next); err != nil {
			return err
		}
	}
	return nil
}

func forceItemStatus(tx *gorm.DB, ids []uint, status models.OrderItemStatus) error {
	return tx.Model(&models.OrderItem{}).Where("id IN ?", ids).Update("status", status).Error
}

func forceOrderStatus(tx *gorm.DB, ids []uint, status models.OrderStatus) error {
	return tx.Model(&models.Order{}).Where("id IN ?", ids).Update("status", status).Error
}

// ResolveActionRequired applies the staff decision for an order blocked by
// sold-out items, then re-derives the order status once. Every SOLD_OUT
// item has to be cancelled.
func (s *OrderService) ResolveActionRequired(ctx context.Context, orderID uint, res Resolution, staff Staff) (*models.Order, error) {
	if err := staff.validate(); err != nil {
		return nil, err
	}
	for _, u := range res.UpdateItems {
		if u.Quantity != nil && *u.Quantity <= 0 {
			return nil, validation("order_item", "item %d: quantity must be positive", u.ItemID)
		}
	}
	if err := validateItemInputs(res.AddItems); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := lockOpenOrder(tx, orderID)
		if err != nil {
			return err
		}
		if order.Status != models.OrderActionRequired {
			return newError(KindInvalidState, "order", orderID,
				"order %d is %s, only ACTION_REQUIRED can be resolved", orderID, order.Status)
		}

		var items []models.OrderItem
		if err := tx.Where("order_id = ?", orderID).Order("id ASC").Find(&items).Error; err != nil {
			return err
		}
		byID := make(map[uint]*models.OrderItem, len(items))
		for i := range items {
			byID[items[i].ID] = &items[i]
		}

		cancel := make(map[uint]bool, len(res.CancelItemIDs))
		for _, id := range res.CancelItemIDs {
			item, ok := byID[id]
			if !ok {
				return newError(KindNotFound, "order_item", id, "order item %d is not part of order %d", id, orderID)
			}
			if !CanTransitionItem(item.Status, models.ItemCancelled) {
				return newError(KindInvalidTransition, "order_item", id,
					"order item %d cannot go from %s to CANCELLED", id, item.Status)
			}
			cancel[id] = true
		}

		for _, u := range res.UpdateItems {
			item, ok := byID[u.ItemID]
			if !ok {
				return newError(KindNotFound, "order_item", u.ItemID, "order item %d is not part of order %d", u.ItemID, orderID)
			}
			if cancel[u.ItemID] {
				return validation("order_item", "order item %d cannot be both cancelled and updated", u.ItemID)
			}
			if item.Status.Terminal() {
				return newError(KindInvalidState, "order_item", u.ItemID,
					"order item %d is %s and cannot be edited", u.ItemID, item.Status)
			}
		}

		final := make([]models.OrderItemStatus, 0, len(items)+len(res.AddItems))
		for _, item := range items {
			status := item.Status
			if cancel[item.ID] {
				status = models.ItemCancelled
			}
			if status == models.ItemSoldOut {
				return newError(KindPrecondition, "order_item", item.ID,
					"order item %d is SOLD_OUT and must be cancelled", item.ID)
			}
			final = append(final, status)
		}

		added, err := priceItems(tx, res.AddItems)
		if err != nil {
			return err
		}
		for range added {
			final = append(final, models.ItemPending)
		}

		if len(cancel) > 0 {
			ids := make([]uint, 0, len(cancel))
			for id := range cancel {
				ids = append(ids, id)
			}
			if err := tx.Model(&models.OrderItem{}).Where("id IN ?", ids).
				Update("status", models.ItemCancelled).Error; err != nil {
				return err
			}
		}

		for _, u := range res.UpdateItems {
			changes := map[string]interface{}{}
			if u.Quantity != nil {
				changes["quantity"] = *u.Quantity
			}
			if u.SpecialRequest != nil {
				changes["special_request"] = *u.SpecialRequest
			}
			if len(changes) == 0 {
				continue
			}
			if err := tx.Model(&models.OrderItem{}).Where("id = ?", u.ItemID).Updates(changes).Error; err != nil {
				return err
			}
		}

		if len(added) > 0 {
			for i := range added {
				added[i].OrderID = orderID
			}
			if err := tx.Omit(clause.Associations).Create(&added).Error; err != nil {
				return err
			}
		}

		next := DeriveOrderStatus(order.Status, final)
		if err := tx.Model(&models.Order{}).Where("id = ?", orderID).Update("status", next).Error; err != nil {
			return err
		}

		utils.InfoLogger.WithFields(logrus.Fields{
			"order_id": orderID, "cancelled": len(cancel), "updated": len(res.UpdateItems),
			"added": len(added), "status": next, "staff_id": staff.ID,
		}).Info("action required order resolved")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, orderID)
}

// SetMenuAvailability toggles a menu item. Turning it off runs the
// sold-out cascade in the same transaction.
func (s *OrderService) SetMenuAvailability(ctx context.Context, menuID uint, available bool) (*models.Menu, *CascadeResult, error) {
	var menu models.Menu
	result := &CascadeResult{MenuID: menuID, OrderIDs: []uint{}}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&menu, menuID).Error; err != nil {
			return lookupErr(err, "menu", menuID)
		}
		if menu.Available != available {
			if err := tx.Model(&models.Menu{}).Where("id = ?", menuID).Update("available", available).Error; err != nil {
				return err
			}
			menu.Available = available
		}
		if available {
			return nil
		}
		return cascadeSoldOut(tx, menuID, result)
	})
	if err != nil {
		return nil, nil, err
	}
	return &menu, result, nil
}

// MarkMenuUnavailable is SetMenuAvailability(false) for callers that only
// care about the cascade.
func (s *OrderService) MarkMenuUnavailable(ctx context.Context, menuID uint) (*CascadeResult, error) {
	_, result, err := s.SetMenuAvailability(ctx, menuID, false)
	return result, err
}

// cascadeSoldOut is a system-forced transition: in-flight items of the menu
// go straight to SOLD_OUT and their orders to ACTION_REQUIRED, without the
// transition tables or status-sync.
func cascadeSoldOut(tx *gorm.DB, menuID uint, result *CascadeResult) error {
	inFlightOrders := tx.Model(&models.Order{}).
		Select("id").
		Where("status IN ?", []models.OrderStatus{
			models.OrderPending, models.OrderPreparing, models.OrderActionRequired,
		})

	var items []models.OrderItem
	err := tx.Select("id", "order_id").
		Where("menu_id = ? AND status IN ?", menuID, []models.OrderItemStatus{
			models.ItemPending, models.ItemPreparing,
		}).
		Where("order_id IN (?)", inFlightOrders).
		Find(&items).Error
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}

	itemIDs := make([]uint, 0, len(items))
	seen := map[uint]bool{}
	for _, item := range items {
		itemIDs = append(itemIDs, item.ID)
		if !seen[item.OrderID] {
			seen[item.OrderID] = true
			result.OrderIDs = append(result.OrderIDs, item.OrderID)
		}
	}

	if err := forceItemStatus(tx, itemIDs, models.ItemSoldOut); err != nil {
		return err
	}
	if err := forceOrderStatus(tx, result.OrderIDs, models.OrderActionRequired); err != nil {
		return err
	}
	result.AffectedItems = len(itemIDs)

	utils.InfoLogger.WithFields(logrus.Fields{
		"menu_id": menuID, "items": len(itemIDs), "orders": len(result.OrderIDs),
	}).Info("sold-out cascade applied")
	return nil
}

func (s *OrderService) Get(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("OrderItems", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("OrderItems.Menu").
		Preload("TakenBy").
		Preload("Session.Table").
		First(&order, id).Error
	if err != nil {
		return nil, lookupErr(err, "order", id)
	}
	return &order, nil
}

func (s *OrderService) List(ctx context.Context, filter OrderFilter) ([]models.Order, error) {
	query := s.db.WithContext(ctx).
		Preload("OrderItems", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("OrderItems.Menu")
	if filter.SessionID != 0 {
		query = query.Where("session_id = ?", filter.SessionID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var orders []models.Order
	if err := query.Order("created_at ASC, id ASC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// ListMenus is the read side of the menu catalog used by staff screens.
func (s *OrderService) ListMenus(ctx context.Context, onlyAvailable bool) ([]models.Menu, error) {
	query := s.db.WithContext(ctx).Model(&models.Menu{})
	if onlyAvailable {
		query = query.Where("available = ?", true)
	}
	var menus []models.Menu
	if err := query.Order("name ASC").Find(&menus).Error; err != nil {
		return nil, err
	}
	return menus, nil
}
