package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order side constants
const (
	OrderSideBuy     = "BUY"
	OrderSideSell    = "SELL"
	OrderSideCashIn  = "CASH_IN"
	OrderSideCashOut = "CASH_OUT"
)

// Order type constants
const (
	OrderTypeMarket = "MARKET"
	OrderTypeLimit  = "LIMIT"
)

// Order status constants
const (
	OrderStatusNew       = "NEW"
	OrderStatusFilled    = "FILLED"
	OrderStatusRejected  = "REJECTED"
	OrderStatusCancelled = "CANCELLED"
)

// Order represents a settled or resting instruction against an instrument.
// Orders are immutable once created except for the NEW -> CANCELLED
// transition. Only FILLED orders contribute to ledger replay.
type Order struct {
	ID           int             `json:"id"`
	InstrumentID int             `json:"instrument_id"`
	UserID       int             `json:"user_id"`
	Side         string          `json:"side"`
	Size         int64           `json:"size"`
	Price        decimal.Decimal `json:"price"`
	Type         string          `json:"type"`
	Status       string          `json:"status"`
	Datetime     time.Time       `json:"datetime"`
}

// IsCashOperation reports whether the order moves cash rather than shares.
func (o *Order) IsCashOperation() bool {
	return o.Side == OrderSideCashIn || o.Side == OrderSideCashOut
}

// IsFilled reports whether the order has settled.
func (o *Order) IsFilled() bool {
	return o.Status == OrderStatusFilled
}

// CanBeCancelled reports whether the order may transition to CANCELLED.
// Only resting NEW orders are cancellable; every other status is terminal.
func (o *Order) CanBeCancelled() bool {
	return o.Status == OrderStatusNew
}

// TotalValue returns the monetary value of the order (size x price).
func (o *Order) TotalValue() decimal.Decimal {
	return o.Price.Mul(decimal.NewFromInt(o.Size))
}

// OrderEvent represents a Kafka event emitted when an order is created or
// changes status.
type OrderEvent struct {
	EventType string    `json:"event_type"`
	Order     *Order    `json:"order,omitempty"`
	UserID    int       `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}
