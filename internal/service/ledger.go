package service

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/rcastellan/brokerage-api/internal/models"
)

// ReplayOrders folds a user's settled orders into a cash balance and
// per-instrument cost-basis holdings. The fold is pure: replaying the same
// sequence always yields the same result.
//
// Orders are applied in ascending datetime order with id as the tiebreak.
// Only FILLED orders contribute; any other status is skipped.
func ReplayOrders(orders []*models.Order) (decimal.Decimal, map[int]*models.Holding) {
	sorted := make([]*models.Order, len(orders))
	copy(sorted, orders)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Datetime.Equal(sorted[j].Datetime) {
			return sorted[i].ID < sorted[j].ID
		}
		return sorted[i].Datetime.Before(sorted[j].Datetime)
	})

	cash := decimal.Zero
	holdings := make(map[int]*models.Holding)

	for _, o := range sorted {
		if !o.IsFilled() {
			continue
		}

		amount := o.TotalValue()
		switch o.Side {
		case models.OrderSideCashIn:
			cash = cash.Add(amount)
		case models.OrderSideCashOut:
			cash = cash.Sub(amount)
		case models.OrderSideBuy:
			cash = cash.Sub(amount)
			addToHolding(holdings, o.InstrumentID, o.Size, amount)
		case models.OrderSideSell:
			cash = cash.Add(amount)
			subtractFromHolding(holdings, o.InstrumentID, o.Size)
		}
	}

	return cash, holdings
}

func addToHolding(holdings map[int]*models.Holding, instrumentID int, quantity int64, cost decimal.Decimal) {
	h, ok := holdings[instrumentID]
	if !ok {
		h = &models.Holding{TotalCost: decimal.Zero}
		holdings[instrumentID] = h
	}
	h.Quantity += quantity
	h.TotalCost = h.TotalCost.Add(cost)
}

// subtractFromHolding reduces a holding by the sold quantity, recomputing its
// cost basis proportionally at the pre-sale average price. A sell that drives
// the quantity to zero or below removes the holding entirely.
func subtractFromHolding(holdings map[int]*models.Holding, instrumentID int, quantity int64) {
	h, ok := holdings[instrumentID]
	if !ok {
		return
	}

	newQuantity := h.Quantity - quantity
	if newQuantity <= 0 {
		delete(holdings, instrumentID)
		return
	}

	avgPrice := h.TotalCost.Div(decimal.NewFromInt(h.Quantity))
	h.Quantity = newQuantity
	h.TotalCost = avgPrice.Mul(decimal.NewFromInt(newQuantity))
}
