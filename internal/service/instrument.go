package service

import (
	"strings"

	"github.com/rcastellan/brokerage-api/internal/models"
)

// InstrumentQuote pairs an instrument with its latest quote, if any.
type InstrumentQuote struct {
	Instrument *models.Instrument `json:"instrument"`
	MarketData *models.MarketData `json:"market_data"`
}

// InstrumentService handles instrument search.
type InstrumentService struct {
	instruments InstrumentRepository
	marketData  MarketDataRepository
}

// NewInstrumentService creates a new InstrumentService
func NewInstrumentService(instruments InstrumentRepository, marketData MarketDataRepository) *InstrumentService {
	return &InstrumentService{
		instruments: instruments,
		marketData:  marketData,
	}
}

// Search finds instruments matching the query by ticker or name,
// case-insensitively, and pairs each with its latest quote. An empty or
// blank query returns no results.
func (s *InstrumentService) Search(query string) ([]*InstrumentQuote, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*InstrumentQuote{}, nil
	}

	instruments, err := s.instruments.SearchInstruments(query)
	if err != nil {
		return nil, err
	}
	if len(instruments) == 0 {
		return []*InstrumentQuote{}, nil
	}

	ids := make([]int, len(instruments))
	for i, instrument := range instruments {
		ids[i] = instrument.ID
	}

	quotes, err := s.marketData.GetLatestMarketDataBatch(ids)
	if err != nil {
		return nil, err
	}
	quoteByInstrument := make(map[int]*models.MarketData, len(quotes))
	for _, q := range quotes {
		quoteByInstrument[q.InstrumentID] = q
	}

	results := make([]*InstrumentQuote, len(instruments))
	for i, instrument := range instruments {
		results[i] = &InstrumentQuote{
			Instrument: instrument,
			MarketData: quoteByInstrument[instrument.ID],
		}
	}
	return results, nil
}
