package services

import "github.com/yeremiapane/restaurant-floor/models"

// DeriveOrderStatus computes an order's status from the statuses of its
// items and the order's current status. It has no side effects and is a
// fixpoint: feeding its result back in with the same items returns the
// same status.
func DeriveOrderStatus(current models.OrderStatus, items []models.OrderItemStatus) models.OrderStatus {
	if len(items) == 0 {
		return current
	}

	var cancelled, soldOut, served, ready, started, waiting int
	for _, s := range items {
		switch s {
		case models.ItemCancelled:
			cancelled++
		case models.ItemSoldOut:
			soldOut++
		case models.ItemServed:
			served++
		case models.ItemReady:
			ready++
		case models.ItemPreparing:
			started++
		case models.ItemPending:
			waiting++
		}
	}
	total := len(items)

	switch {
	case cancelled == total:
		return models.OrderCancelled
	case soldOut > 0:
		return models.OrderActionRequired
	case served+cancelled == total:
		return models.OrderServed
	case ready+served+cancelled == total:
		return models.OrderReady
	case started+ready+served > 0 && current == models.OrderPending:
		return models.OrderPreparing
	case current == models.OrderActionRequired:
		if waiting+cancelled == total {
			return models.OrderPending
		}
		return models.OrderPreparing
	}
	return current
}
