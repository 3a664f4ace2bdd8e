package database

import (
	"database/sql"
	"fmt"

	"github.com/rcastellan/brokerage-api/internal/models"
)

// GetUserByID retrieves a user by id. Returns a NotFoundError when no user
// exists with that id.
func (db *DB) GetUserByID(id int) (*models.User, error) {
	query := `
		SELECT id, email, accountnumber
		FROM users
		WHERE id = $1
	`
	var u models.User
	err := db.conn.QueryRow(query, id).Scan(&u.ID, &u.Email, &u.AccountNumber)

	if err == sql.ErrNoRows {
		return nil, &models.NotFoundError{Entity: "User", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}
