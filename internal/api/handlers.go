package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/rcastellan/brokerage-api/internal/models"
	"github.com/rcastellan/brokerage-api/internal/service"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	orders      *service.OrderService
	portfolio   *service.PortfolioService
	instruments *service.InstrumentService
}

// NewHandler creates a new Handler
func NewHandler(
	orders *service.OrderService,
	portfolio *service.PortfolioService,
	instruments *service.InstrumentService,
) *Handler {
	return &Handler{
		orders:      orders,
		portfolio:   portfolio,
		instruments: instruments,
	}
}

// createOrderRequest is the JSON body for POST /orders
type createOrderRequest struct {
	UserID       int              `json:"user_id"`
	InstrumentID int              `json:"instrument_id"`
	Side         string           `json:"side"`
	Type         string           `json:"type"`
	Quantity     *int64           `json:"quantity,omitempty"`
	TotalAmount  *decimal.Decimal `json:"total_amount,omitempty"`
	Price        *decimal.Decimal `json:"price,omitempty"`
}

// CreateOrder handles POST /orders
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	order, err := h.orders.CreateOrder(r.Context(), service.CreateOrderRequest{
		UserID:       req.UserID,
		InstrumentID: req.InstrumentID,
		Side:         req.Side,
		Type:         req.Type,
		Quantity:     req.Quantity,
		TotalAmount:  req.TotalAmount,
		Price:        req.Price,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, order)
}

// CancelOrder handles DELETE /orders/{id}
func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	orderID, err := strconv.Atoi(vars["id"])
	if err != nil {
		http.Error(w, "invalid order id", http.StatusBadRequest)
		return
	}

	userID, err := strconv.Atoi(r.URL.Query().Get("user_id"))
	if err != nil {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}

	order, err := h.orders.CancelOrder(r.Context(), orderID, userID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, order)
}

// ListOrders handles GET /orders
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.Atoi(r.URL.Query().Get("user_id"))
	if err != nil {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}

	orders, err := h.orders.ListOrders(userID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, orders)
}

// portfolioResponse is the JSON shape for GET /portfolio/{userId}
type portfolioResponse struct {
	UserID            int                    `json:"user_id"`
	AvailableCash     decimal.Decimal        `json:"available_cash"`
	TotalAccountValue decimal.Decimal        `json:"total_account_value"`
	Positions         []*models.PositionView `json:"positions"`
}

// GetPortfolio handles GET /portfolio/{userId}
func (h *Handler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID, err := strconv.Atoi(vars["userId"])
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	portfolio, err := h.portfolio.GetPortfolio(userID)
	if err != nil {
		respondError(w, err)
		return
	}

	positions := make([]*models.PositionView, len(portfolio.Positions))
	for i, p := range portfolio.Positions {
		positions[i] = p.View()
	}

	respondJSON(w, http.StatusOK, portfolioResponse{
		UserID:            portfolio.UserID,
		AvailableCash:     portfolio.AvailableCash,
		TotalAccountValue: portfolio.TotalAccountValue,
		Positions:         positions,
	})
}

// SearchInstruments handles GET /instruments/search
func (h *Handler) SearchInstruments(w http.ResponseWriter, r *http.Request) {
	results, err := h.instruments.Search(r.URL.Query().Get("q"))
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, results)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// respondError maps domain errors to HTTP status codes
func respondError(w http.ResponseWriter, err error) {
	var notFound *models.NotFoundError
	var invalid *models.InvalidOrderError
	var notCancellable *models.OrderCannotBeCancelledError

	switch {
	case errors.As(err, &notFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &invalid):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &notCancellable):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
