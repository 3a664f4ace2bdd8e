package service

import "github.com/rcastellan/brokerage-api/internal/models"

// UserRepository defines the user lookups the services need
type UserRepository interface {
	GetUserByID(id int) (*models.User, error)
}

// InstrumentRepository defines the instrument lookups the services need
type InstrumentRepository interface {
	GetInstrumentByID(id int) (*models.Instrument, error)
	SearchInstruments(q string) ([]*models.Instrument, error)
}

// MarketDataRepository defines quote lookups. Implementations return at most
// one quote per instrument, the most recent by date, and (nil, nil) when an
// instrument has no quotes.
type MarketDataRepository interface {
	GetLatestMarketData(instrumentID int) (*models.MarketData, error)
	GetLatestMarketDataBatch(instrumentIDs []int) ([]*models.MarketData, error)
}

// OrderRepository defines order persistence. GetOrdersByUserIDAndStatus must
// return rows in ascending settlement-time order with id as the tiebreak.
type OrderRepository interface {
	CreateOrder(o *models.Order) error
	GetOrderByID(id int) (*models.Order, error)
	GetOrdersByUserID(userID int) ([]*models.Order, error)
	GetOrdersByUserIDAndStatus(userID int, status string) ([]*models.Order, error)
	UpdateOrderStatus(id int, status string) (*models.Order, error)
}
