package models

import "github.com/shopspring/decimal"

// Holding is the per-instrument accumulator produced by ledger replay:
// quantity held and the total cost paid for it. Holdings are never persisted;
// they are recomputed from the FILLED order history on every portfolio query.
type Holding struct {
	Quantity  int64
	TotalCost decimal.Decimal
}

// AveragePrice returns the weighted-average cost per share, or zero for an
// empty holding.
func (h *Holding) AveragePrice() decimal.Decimal {
	if h.Quantity <= 0 {
		return decimal.Zero
	}
	return h.TotalCost.Div(decimal.NewFromInt(h.Quantity))
}

// Position is a holding enriched with current market prices.
type Position struct {
	Instrument    *Instrument     `json:"instrument"`
	Quantity      int64           `json:"quantity"`
	AveragePrice  decimal.Decimal `json:"average_price"`
	CurrentPrice  decimal.Decimal `json:"current_price"`
	PreviousClose decimal.Decimal `json:"previous_close"`
}

// TotalValue returns quantity x current price.
func (p *Position) TotalValue() decimal.Decimal {
	return p.CurrentPrice.Mul(decimal.NewFromInt(p.Quantity))
}

// TotalCost returns quantity x average price.
func (p *Position) TotalCost() decimal.Decimal {
	return p.AveragePrice.Mul(decimal.NewFromInt(p.Quantity))
}

// UnrealizedPnL returns total value minus total cost.
func (p *Position) UnrealizedPnL() decimal.Decimal {
	return p.TotalValue().Sub(p.TotalCost())
}

// UnrealizedPnLPercent returns the unrealized gain as a percentage of cost.
// Returns zero when total cost is zero.
func (p *Position) UnrealizedPnLPercent() decimal.Decimal {
	cost := p.TotalCost()
	if cost.IsZero() {
		return decimal.Zero
	}
	return p.UnrealizedPnL().Div(cost).Mul(decimal.NewFromInt(100))
}

// DailyPnL returns (current price - previous close) x quantity.
func (p *Position) DailyPnL() decimal.Decimal {
	return p.CurrentPrice.Sub(p.PreviousClose).Mul(decimal.NewFromInt(p.Quantity))
}

// DailyPnLPercent returns the daily move as a percentage of previous close.
// Returns zero when previous close is zero.
func (p *Position) DailyPnLPercent() decimal.Decimal {
	if p.PreviousClose.IsZero() {
		return decimal.Zero
	}
	return p.CurrentPrice.Sub(p.PreviousClose).Div(p.PreviousClose).Mul(decimal.NewFromInt(100))
}

// PositionView is the JSON shape returned for a position, with the derived
// metrics flattened alongside the raw fields.
type PositionView struct {
	Instrument           *Instrument     `json:"instrument"`
	Quantity             int64           `json:"quantity"`
	AveragePrice         decimal.Decimal `json:"average_price"`
	CurrentPrice         decimal.Decimal `json:"current_price"`
	TotalValue           decimal.Decimal `json:"total_value"`
	TotalCost            decimal.Decimal `json:"total_cost"`
	UnrealizedPnl        decimal.Decimal `json:"unrealized_pnl"`
	UnrealizedPnlPercent decimal.Decimal `json:"unrealized_pnl_percent"`
	DailyPnl             decimal.Decimal `json:"daily_pnl"`
	DailyPnlPercent      decimal.Decimal `json:"daily_pnl_percent"`
}

// View flattens the position and its derived metrics for API responses.
func (p *Position) View() *PositionView {
	return &PositionView{
		Instrument:           p.Instrument,
		Quantity:             p.Quantity,
		AveragePrice:         p.AveragePrice,
		CurrentPrice:         p.CurrentPrice,
		TotalValue:           p.TotalValue(),
		TotalCost:            p.TotalCost(),
		UnrealizedPnl:        p.UnrealizedPnL(),
		UnrealizedPnlPercent: p.UnrealizedPnLPercent(),
		DailyPnl:             p.DailyPnL(),
		DailyPnlPercent:      p.DailyPnLPercent(),
	}
}

// Portfolio is the point-in-time snapshot of an account: cash plus positions
// derived by replaying the user's FILLED orders.
type Portfolio struct {
	UserID            int             `json:"user_id"`
	AvailableCash     decimal.Decimal `json:"available_cash"`
	TotalAccountValue decimal.Decimal `json:"total_account_value"`
	Positions         []*Position     `json:"positions"`
}
