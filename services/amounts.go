package services

import (
	"github.com/shopspring/decimal"
	"github.com/yeremiapane/restaurant-floor/models"
)

const DefaultTaxRate = 0.10

// BillAmounts are rounded to two decimals, half away from zero.
type BillAmounts struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Discount float64 `json:"discount"`
	Total    float64 `json:"total"`
}

// ComputeBillAmounts sums SERVED and READY items of every order that is
// not CANCELLED.
func ComputeBillAmounts(orders []models.Order, taxRate float64) BillAmounts {
	subtotal := decimal.Zero
	for _, order := range orders {
		if order.Status == models.OrderCancelled {
			continue
		}
		for _, item := range order.OrderItems {
			if !item.Status.Billable() {
				continue
			}
			line := decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
			subtotal = subtotal.Add(line)
		}
	}

	subtotal = subtotal.Round(2)
	tax := subtotal.Mul(decimal.NewFromFloat(taxRate)).Round(2)
	discount := decimal.Zero
	total := subtotal.Add(tax).Sub(discount).Round(2)

	return BillAmounts{
		Subtotal: subtotal.InexactFloat64(),
		Tax:      tax.InexactFloat64(),
		Discount: discount.InexactFloat64(),
		Total:    total.InexactFloat64(),
	}
}

func roundAmount(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
