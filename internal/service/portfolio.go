package service

import (
	"errors"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/rcastellan/brokerage-api/internal/models"
)

// PortfolioService derives point-in-time portfolio snapshots by replaying a
// user's FILLED orders and valuing the resulting holdings at the latest
// quotes. No materialized balance exists anywhere; the order history is the
// only source of truth.
type PortfolioService struct {
	users       UserRepository
	orders      OrderRepository
	instruments InstrumentRepository
	marketData  MarketDataRepository
}

// NewPortfolioService creates a new PortfolioService
func NewPortfolioService(
	users UserRepository,
	orders OrderRepository,
	instruments InstrumentRepository,
	marketData MarketDataRepository,
) *PortfolioService {
	return &PortfolioService{
		users:       users,
		orders:      orders,
		instruments: instruments,
		marketData:  marketData,
	}
}

// GetPortfolio computes the user's current cash balance, positions, and total
// account value from their FILLED order history.
func (s *PortfolioService) GetPortfolio(userID int) (*models.Portfolio, error) {
	if _, err := s.users.GetUserByID(userID); err != nil {
		return nil, err
	}

	filled, err := s.orders.GetOrdersByUserIDAndStatus(userID, models.OrderStatusFilled)
	if err != nil {
		return nil, err
	}

	cash, holdings := ReplayOrders(filled)

	positions, err := s.buildPositions(holdings)
	if err != nil {
		return nil, err
	}

	total := cash
	for _, p := range positions {
		total = total.Add(p.TotalValue())
	}

	return &models.Portfolio{
		UserID:            userID,
		AvailableCash:     cash,
		TotalAccountValue: total,
		Positions:         positions,
	}, nil
}

// buildPositions values each holding at its latest quote. Currency
// instruments never become positions. A holding with no quote prices at zero;
// a missing previous close falls back to the current price so daily P&L reads
// zero instead of a misleading swing.
func (s *PortfolioService) buildPositions(holdings map[int]*models.Holding) ([]*models.Position, error) {
	if len(holdings) == 0 {
		return nil, nil
	}

	instrumentIDs := make([]int, 0, len(holdings))
	for id := range holdings {
		instrumentIDs = append(instrumentIDs, id)
	}
	sort.Ints(instrumentIDs)

	quotes, err := s.marketData.GetLatestMarketDataBatch(instrumentIDs)
	if err != nil {
		return nil, err
	}
	quoteByInstrument := make(map[int]*models.MarketData, len(quotes))
	for _, q := range quotes {
		quoteByInstrument[q.InstrumentID] = q
	}

	var positions []*models.Position
	for _, id := range instrumentIDs {
		instrument, err := s.instruments.GetInstrumentByID(id)
		if err != nil {
			var nf *models.NotFoundError
			if errors.As(err, &nf) {
				continue
			}
			return nil, err
		}
		if instrument.IsCurrency() {
			continue
		}

		h := holdings[id]
		currentPrice := decimal.Zero
		previousClose := decimal.Zero
		if q, ok := quoteByInstrument[id]; ok {
			currentPrice = q.Close
			previousClose = q.PreviousClose
		}
		if previousClose.IsZero() {
			previousClose = currentPrice
		}

		positions = append(positions, &models.Position{
			Instrument:    instrument,
			Quantity:      h.Quantity,
			AveragePrice:  h.AveragePrice(),
			CurrentPrice:  currentPrice,
			PreviousClose: previousClose,
		})
	}

	return positions, nil
}
