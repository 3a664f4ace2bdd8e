package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MarketData represents the latest daily quote for an instrument. Close is
// the execution price for MARKET orders and the live price for valuation;
// PreviousClose feeds daily P&L.
type MarketData struct {
	ID            int             `json:"id"`
	InstrumentID  int             `json:"instrument_id"`
	High          decimal.Decimal `json:"high"`
	Low           decimal.Decimal `json:"low"`
	Open          decimal.Decimal `json:"open"`
	Close         decimal.Decimal `json:"close"`
	PreviousClose decimal.Decimal `json:"previous_close"`
	Date          time.Time       `json:"date"`
}

// DailyChange returns the absolute change between close and previous close.
func (m *MarketData) DailyChange() decimal.Decimal {
	return m.Close.Sub(m.PreviousClose)
}

// DailyReturn returns the percentage change between close and previous close.
// Returns zero when previous close is zero.
func (m *MarketData) DailyReturn() decimal.Decimal {
	if m.PreviousClose.IsZero() {
		return decimal.Zero
	}
	return m.Close.Sub(m.PreviousClose).Div(m.PreviousClose).Mul(decimal.NewFromInt(100))
}

// QuoteEvent represents a Kafka market-data event consumed from the quote
// feed and upserted into the marketdata table.
type QuoteEvent struct {
	EventType string    `json:"event_type"`
	Ticker    string    `json:"ticker"`
	High      string    `json:"high"`
	Low       string    `json:"low"`
	Open      string    `json:"open"`
	Close     string    `json:"close"`
	PrevClose string    `json:"previous_close"`
	Date      string    `json:"date"`
	Timestamp time.Time `json:"timestamp"`
}
