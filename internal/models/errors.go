package models

import "fmt"

// NotFoundError indicates that a referenced user, instrument or order does
// not exist. Cancellation of another user's order reports this same error so
// order existence is not revealed to non-owners. Lookups by ticker set Ticker
// instead of ID.
type NotFoundError struct {
	Entity string
	ID     int
	Ticker string
}

func (e *NotFoundError) Error() string {
	if e.Ticker != "" {
		return fmt.Sprintf("%s %s not found", e.Entity, e.Ticker)
	}
	return fmt.Sprintf("%s with identifier %d not found", e.Entity, e.ID)
}

// InvalidOrderError indicates a malformed or contradictory order request.
type InvalidOrderError struct {
	Reason string
}

func (e *InvalidOrderError) Error() string {
	return fmt.Sprintf("invalid order: %s", e.Reason)
}

// OrderCannotBeCancelledError indicates a cancellation attempt on an order
// that is not in NEW status. Carries the current status for diagnostics.
type OrderCannotBeCancelledError struct {
	OrderID int
	Status  string
}

func (e *OrderCannotBeCancelledError) Error() string {
	return fmt.Sprintf("order %d cannot be cancelled: current status %s", e.OrderID, e.Status)
}
