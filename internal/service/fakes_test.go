package service

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rcastellan/brokerage-api/internal/models"
)

// fakeRepo is an in-memory implementation of the repository interfaces used
// by the service unit tests. It mirrors the database contracts: typed
// not-found errors, (nil, nil) for missing quotes, and the ordering
// guarantees of the order queries.
type fakeRepo struct {
	mu          sync.Mutex
	users       map[int]*models.User
	instruments map[int]*models.Instrument
	quotes      map[int]*models.MarketData
	orders      map[int]*models.Order
	nextOrderID int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:       make(map[int]*models.User),
		instruments: make(map[int]*models.Instrument),
		quotes:      make(map[int]*models.MarketData),
		orders:      make(map[int]*models.Order),
		nextOrderID: 1,
	}
}

func (f *fakeRepo) GetUserByID(id int) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, &models.NotFoundError{Entity: "User", ID: id}
	}
	return u, nil
}

func (f *fakeRepo) GetInstrumentByID(id int) (*models.Instrument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i, ok := f.instruments[id]
	if !ok {
		return nil, &models.NotFoundError{Entity: "Instrument", ID: id}
	}
	return i, nil
}

func (f *fakeRepo) SearchInstruments(q string) ([]*models.Instrument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var results []*models.Instrument
	for _, i := range f.instruments {
		if containsFold(i.Ticker, q) || containsFold(i.Name, q) {
			results = append(results, i)
		}
	}
	sort.Slice(results, func(a, b int) bool { return results[a].Ticker < results[b].Ticker })
	return results, nil
}

func (f *fakeRepo) GetLatestMarketData(instrumentID int) (*models.MarketData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.quotes[instrumentID], nil
}

func (f *fakeRepo) GetLatestMarketDataBatch(instrumentIDs []int) ([]*models.MarketData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var quotes []*models.MarketData
	for _, id := range instrumentIDs {
		if q, ok := f.quotes[id]; ok {
			quotes = append(quotes, q)
		}
	}
	return quotes, nil
}

func (f *fakeRepo) CreateOrder(o *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o.ID = f.nextOrderID
	f.nextOrderID++
	if o.Datetime.IsZero() {
		o.Datetime = time.Now()
	}
	stored := *o
	f.orders[o.ID] = &stored
	return nil
}

func (f *fakeRepo) GetOrderByID(id int) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, &models.NotFoundError{Entity: "Order", ID: id}
	}
	copied := *o
	return &copied, nil
}

func (f *fakeRepo) GetOrdersByUserID(userID int) ([]*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var orders []*models.Order
	for _, o := range f.orders {
		if o.UserID == userID {
			copied := *o
			orders = append(orders, &copied)
		}
	}
	sort.Slice(orders, func(a, b int) bool { return orders[a].Datetime.After(orders[b].Datetime) })
	return orders, nil
}

func (f *fakeRepo) GetOrdersByUserIDAndStatus(userID int, status string) ([]*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var orders []*models.Order
	for _, o := range f.orders {
		if o.UserID == userID && o.Status == status {
			copied := *o
			orders = append(orders, &copied)
		}
	}
	sort.Slice(orders, func(a, b int) bool {
		if orders[a].Datetime.Equal(orders[b].Datetime) {
			return orders[a].ID < orders[b].ID
		}
		return orders[a].Datetime.Before(orders[b].Datetime)
	})
	return orders, nil
}

func (f *fakeRepo) UpdateOrderStatus(id int, status string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, &models.NotFoundError{Entity: "Order", ID: id}
	}
	o.Status = status
	copied := *o
	return &copied, nil
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToUpper(s), strings.ToUpper(substr))
}
