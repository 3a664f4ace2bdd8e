package database

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/rcastellan/brokerage-api/internal/models"
)

// GetInstrumentByID retrieves an instrument by id
func (db *DB) GetInstrumentByID(id int) (*models.Instrument, error) {
	query := `
		SELECT id, ticker, name, kind
		FROM instruments
		WHERE id = $1
	`
	var i models.Instrument
	err := db.conn.QueryRow(query, id).Scan(&i.ID, &i.Ticker, &i.Name, &i.Kind)

	if err == sql.ErrNoRows {
		return nil, &models.NotFoundError{Entity: "Instrument", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get instrument: %w", err)
	}
	return &i, nil
}

// GetInstrumentByTicker retrieves an instrument by its case-normalized ticker
func (db *DB) GetInstrumentByTicker(ticker string) (*models.Instrument, error) {
	query := `
		SELECT id, ticker, name, kind
		FROM instruments
		WHERE ticker = $1
	`
	var i models.Instrument
	err := db.conn.QueryRow(query, strings.ToUpper(ticker)).Scan(&i.ID, &i.Ticker, &i.Name, &i.Kind)

	if err == sql.ErrNoRows {
		return nil, &models.NotFoundError{Entity: "Instrument", Ticker: ticker}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get instrument: %w", err)
	}
	return &i, nil
}

// SearchInstruments finds instruments whose ticker or name contains the
// query, case-insensitively, ordered by ticker
func (db *DB) SearchInstruments(q string) ([]*models.Instrument, error) {
	query := `
		SELECT id, ticker, name, kind
		FROM instruments
		WHERE ticker ILIKE $1 OR name ILIKE $1
		ORDER BY ticker ASC
	`
	rows, err := db.conn.Query(query, "%"+q+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to search instruments: %w", err)
	}
	defer rows.Close()

	var instruments []*models.Instrument
	for rows.Next() {
		var i models.Instrument
		if err := rows.Scan(&i.ID, &i.Ticker, &i.Name, &i.Kind); err != nil {
			return nil, fmt.Errorf("failed to scan instrument: %w", err)
		}
		instruments = append(instruments, &i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate instruments: %w", err)
	}

	return instruments, nil
}
