package services

import (
	"github.com/yeremiapane/restaurant-floor/models"
)

// Staff-requested transitions must follow these tables. System-forced
// transitions (sold-out cascade, order-level cascade onto items) are
// written through the forced* helpers and skip them.

var orderTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderPending:        {models.OrderPreparing, models.OrderCancelled, models.OrderActionRequired},
	models.OrderPreparing:      {models.OrderReady, models.OrderCancelled, models.OrderActionRequired},
	models.OrderActionRequired: {models.OrderPreparing, models.OrderCancelled},
	models.OrderReady:          {models.OrderServed, models.OrderCancelled},
	models.OrderServed:         {},
	models.OrderCancelled:      {},
}

var itemTransitions = map[models.OrderItemStatus][]models.OrderItemStatus{
	models.ItemPending:   {models.ItemPreparing, models.ItemCancelled, models.ItemSoldOut},
	models.ItemPreparing: {models.ItemReady, models.ItemCancelled, models.ItemSoldOut},
	models.ItemSoldOut:   {models.ItemCancelled},
	models.ItemReady:     {models.ItemServed, models.ItemCancelled},
	models.ItemServed:    {},
	models.ItemCancelled: {},
}

// CanTransitionOrder reports whether staff may move an order from one
// status to another. Same-status is allowed and treated as a no-op.
func CanTransitionOrder(from, to models.OrderStatus) bool {
	if from == to {
		return true
	}
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func CanTransitionItem(from, to models.OrderItemStatus) bool {
	if from == to {
		return true
	}
	for _, next := range itemTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// forcedItemTarget returns the status an item is pushed to when staff move
// the whole order to target, and false when the item stays as it is.
func forcedItemTarget(current models.OrderItemStatus, target models.OrderStatus) (models.OrderItemStatus, bool) {
	if current.Terminal() {
		return current, false
	}
	switch target {
	case models.OrderPreparing:
		if current == models.ItemPending {
			return models.ItemPreparing, true
		}
	case models.OrderReady:
		if current == models.ItemPending || current == models.ItemPreparing {
			return models.ItemReady, true
		}
	case models.OrderServed:
		if current == models.ItemPending || current == models.ItemPreparing || current == models.ItemReady {
			return models.ItemServed, true
		}
	case models.OrderCancelled:
		return models.ItemCancelled, true
	}
	return current, false
}
