package service

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/rcastellan/brokerage-api/internal/models"
)

// EventPublisher publishes order lifecycle events. A nil publisher disables
// publishing.
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, order *models.Order) error
	PublishOrderCancelled(ctx context.Context, order *models.Order) error
}

// CreateOrderRequest is the input for order submission. Exactly one of
// Quantity or TotalAmount must be set; Price is required for LIMIT trade
// orders only.
type CreateOrderRequest struct {
	UserID       int
	InstrumentID int
	Side         string
	Type         string
	Quantity     *int64
	TotalAmount  *decimal.Decimal
	Price        *decimal.Decimal
}

// OrderService runs the admission pipeline for new orders and the
// cancellation transition for resting ones.
type OrderService struct {
	users       UserRepository
	instruments InstrumentRepository
	marketData  MarketDataRepository
	orders      OrderRepository
	portfolio   *PortfolioService
	publisher   EventPublisher

	// userLocks serializes check-then-persist per user so two concurrent
	// submissions cannot both pass the balance check and overdraw the ledger.
	userLocks sync.Map
}

// NewOrderService creates a new OrderService. publisher may be nil.
func NewOrderService(
	users UserRepository,
	instruments InstrumentRepository,
	marketData MarketDataRepository,
	orders OrderRepository,
	portfolio *PortfolioService,
	publisher EventPublisher,
) *OrderService {
	return &OrderService{
		users:       users,
		instruments: instruments,
		marketData:  marketData,
		orders:      orders,
		portfolio:   portfolio,
		publisher:   publisher,
	}
}

// CreateOrder validates the request, resolves the execution price, derives
// the quantity, checks it against a freshly replayed portfolio snapshot, and
// persists exactly one order. An order that fails the funds/shares check is
// still persisted with status REJECTED; that is a recorded outcome, not an
// error to the caller.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*models.Order, error) {
	if _, err := s.users.GetUserByID(req.UserID); err != nil {
		return nil, err
	}

	instrument, err := s.instruments.GetInstrumentByID(req.InstrumentID)
	if err != nil {
		return nil, err
	}

	if err := validateSideForInstrument(req.Side, instrument); err != nil {
		return nil, err
	}

	if req.Type != models.OrderTypeMarket && req.Type != models.OrderTypeLimit {
		return nil, &models.InvalidOrderError{Reason: fmt.Sprintf("unknown order type: %s", req.Type)}
	}

	if req.Quantity == nil && req.TotalAmount == nil {
		return nil, &models.InvalidOrderError{Reason: "either quantity or totalAmount must be provided"}
	}
	if req.Quantity != nil && req.TotalAmount != nil {
		return nil, &models.InvalidOrderError{Reason: "cannot specify both quantity and totalAmount"}
	}

	price, err := s.resolvePrice(req)
	if err != nil {
		return nil, err
	}

	quantity := deriveQuantity(req, price)
	if quantity <= 0 {
		return nil, &models.InvalidOrderError{Reason: "order quantity must be greater than 0"}
	}

	// The balance check and the write must not interleave with another
	// submission by the same user.
	mu := s.userLock(req.UserID)
	mu.Lock()
	defer mu.Unlock()

	rejectionReason, err := s.checkBalance(req.UserID, req.Side, req.InstrumentID, quantity, price)
	if err != nil {
		return nil, err
	}

	status := classifyStatus(req.Side, req.Type, rejectionReason)

	order := &models.Order{
		InstrumentID: req.InstrumentID,
		UserID:       req.UserID,
		Side:         req.Side,
		Size:         quantity,
		Price:        price,
		Type:         req.Type,
		Status:       status,
	}
	if err := s.orders.CreateOrder(order); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		if err := s.publisher.PublishOrderCreated(ctx, order); err != nil {
			log.Printf("failed to publish order created event: %v", err)
		}
	}

	return order, nil
}

// CancelOrder transitions a resting NEW order to CANCELLED. An order that
// does not exist and an order owned by someone else are reported identically.
func (s *OrderService) CancelOrder(ctx context.Context, orderID, userID int) (*models.Order, error) {
	order, err := s.orders.GetOrderByID(orderID)
	if err != nil {
		return nil, err
	}

	if order.UserID != userID {
		return nil, &models.NotFoundError{Entity: "Order", ID: orderID}
	}

	if !order.CanBeCancelled() {
		return nil, &models.OrderCannotBeCancelledError{OrderID: orderID, Status: order.Status}
	}

	updated, err := s.orders.UpdateOrderStatus(orderID, models.OrderStatusCancelled)
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		if err := s.publisher.PublishOrderCancelled(ctx, updated); err != nil {
			log.Printf("failed to publish order cancelled event: %v", err)
		}
	}

	return updated, nil
}

// ListOrders returns all of a user's orders, most recent first.
func (s *OrderService) ListOrders(userID int) ([]*models.Order, error) {
	if _, err := s.users.GetUserByID(userID); err != nil {
		return nil, err
	}
	return s.orders.GetOrdersByUserID(userID)
}

func (s *OrderService) userLock(userID int) *sync.Mutex {
	mu, _ := s.userLocks.LoadOrStore(userID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// resolvePrice fixes cash operations at 1, takes the caller's price for LIMIT
// orders, and uses the latest close for MARKET orders.
func (s *OrderService) resolvePrice(req CreateOrderRequest) (decimal.Decimal, error) {
	if req.Side == models.OrderSideCashIn || req.Side == models.OrderSideCashOut {
		return decimal.NewFromInt(1), nil
	}

	if req.Type == models.OrderTypeLimit {
		if req.Price == nil || !req.Price.IsPositive() {
			return decimal.Zero, &models.InvalidOrderError{Reason: "LIMIT orders require a valid price"}
		}
		return *req.Price, nil
	}

	quote, err := s.marketData.GetLatestMarketData(req.InstrumentID)
	if err != nil {
		return decimal.Zero, err
	}
	// A quote row with a null or zero close cannot price an order; treat it
	// the same as no quote at all. A zero close would also make the
	// totalAmount division panic.
	if quote == nil || !quote.Close.IsPositive() {
		return decimal.Zero, &models.InvalidOrderError{Reason: "no market data available for this instrument"}
	}
	return quote.Close, nil
}

// deriveQuantity uses the caller's quantity when given, otherwise the whole
// number of shares the total amount buys at the resolved price. Fractional
// proceeds are truncated, not tracked.
func deriveQuantity(req CreateOrderRequest, price decimal.Decimal) int64 {
	if req.Quantity != nil {
		return *req.Quantity
	}
	return req.TotalAmount.Div(price).Floor().IntPart()
}

// checkBalance verifies the order against a freshly replayed portfolio
// snapshot. A non-empty reason means the order will be persisted as REJECTED.
func (s *OrderService) checkBalance(userID int, side string, instrumentID int, quantity int64, price decimal.Decimal) (string, error) {
	portfolio, err := s.portfolio.GetPortfolio(userID)
	if err != nil {
		return "", err
	}

	switch side {
	case models.OrderSideBuy, models.OrderSideCashOut:
		required := price.Mul(decimal.NewFromInt(quantity))
		if portfolio.AvailableCash.LessThan(required) {
			return fmt.Sprintf("insufficient funds: available %s, required %s",
				portfolio.AvailableCash, required), nil
		}
	case models.OrderSideSell:
		var available int64
		for _, p := range portfolio.Positions {
			if p.Instrument.ID == instrumentID {
				available = p.Quantity
				break
			}
		}
		if available < quantity {
			return fmt.Sprintf("insufficient shares: available %d, required %d",
				available, quantity), nil
		}
	}

	return "", nil
}

// classifyStatus maps the admission outcome to the persisted order status:
// failed balance check -> REJECTED, cash or MARKET -> FILLED (immediate
// settlement), passing LIMIT trade -> NEW (resting).
func classifyStatus(side, orderType, rejectionReason string) string {
	if rejectionReason != "" {
		return models.OrderStatusRejected
	}
	if side == models.OrderSideCashIn || side == models.OrderSideCashOut || orderType == models.OrderTypeMarket {
		return models.OrderStatusFilled
	}
	return models.OrderStatusNew
}

func validateSideForInstrument(side string, instrument *models.Instrument) error {
	switch side {
	case models.OrderSideCashIn, models.OrderSideCashOut:
		if !instrument.IsCurrency() {
			return &models.InvalidOrderError{
				Reason: fmt.Sprintf("CASH_IN/CASH_OUT operations are only allowed for currency instruments; %s is %s",
					instrument.Ticker, instrument.Kind),
			}
		}
	case models.OrderSideBuy, models.OrderSideSell:
		if !instrument.IsStock() {
			return &models.InvalidOrderError{
				Reason: fmt.Sprintf("BUY/SELL operations are only allowed for stock instruments; %s is %s",
					instrument.Ticker, instrument.Kind),
			}
		}
	default:
		return &models.InvalidOrderError{Reason: fmt.Sprintf("unknown order side: %s", side)}
	}
	return nil
}
