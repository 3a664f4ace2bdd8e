package models

// Instrument kind constants
const (
	InstrumentKindStock    = "STOCK"
	InstrumentKindCurrency = "CURRENCY"
)

// Instrument represents tradeable reference data. Instruments are immutable;
// the kind decides which order sides are legal against them.
type Instrument struct {
	ID     int    `json:"id"`
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
	Kind   string `json:"kind"`
}

// IsCurrency reports whether the instrument is a cash/currency instrument.
func (i *Instrument) IsCurrency() bool {
	return i.Kind == InstrumentKindCurrency
}

// IsStock reports whether the instrument is a stock.
func (i *Instrument) IsStock() bool {
	return i.Kind == InstrumentKindStock
}
