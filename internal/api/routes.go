package api

import (
	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes
func SetupRoutes(handler *Handler) *mux.Router {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// API routes
	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/orders", handler.CreateOrder).Methods("POST")
	api.HandleFunc("/orders", handler.ListOrders).Methods("GET")
	api.HandleFunc("/orders/{id}", handler.CancelOrder).Methods("DELETE")
	api.HandleFunc("/portfolio/{userId}", handler.GetPortfolio).Methods("GET")
	api.HandleFunc("/instruments/search", handler.SearchInstruments).Methods("GET")

	return r
}
