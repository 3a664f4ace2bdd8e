package models

// User represents an account holder.
type User struct {
	ID            int    `json:"id"`
	Email         string `json:"email"`
	AccountNumber string `json:"account_number"`
}
