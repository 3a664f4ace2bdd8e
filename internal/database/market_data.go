package database

import (
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/rcastellan/brokerage-api/internal/models"
)

// GetLatestMarketData retrieves the most recent quote for an instrument.
// Returns (nil, nil) when the instrument has no quotes.
func (db *DB) GetLatestMarketData(instrumentID int) (*models.MarketData, error) {
	query := `
		SELECT id, instrumentid, high, low, open, close, previousclose, date
		FROM marketdata
		WHERE instrumentid = $1
		ORDER BY date DESC
		LIMIT 1
	`
	md, err := scanMarketData(db.conn.QueryRow(query, instrumentID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get market data: %w", err)
	}
	return md, nil
}

// GetLatestMarketDataBatch retrieves the most recent quote per instrument for
// a batch of instrument ids. At most one row per id is returned.
func (db *DB) GetLatestMarketDataBatch(instrumentIDs []int) ([]*models.MarketData, error) {
	if len(instrumentIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT md.id, md.instrumentid, md.high, md.low, md.open, md.close, md.previousclose, md.date
		FROM marketdata md
		WHERE md.instrumentid = ANY($1)
		  AND md.date = (
			SELECT MAX(md2.date)
			FROM marketdata md2
			WHERE md2.instrumentid = md.instrumentid
		  )
	`
	ids := make([]int64, len(instrumentIDs))
	for i, id := range instrumentIDs {
		ids[i] = int64(id)
	}

	rows, err := db.conn.Query(query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to query market data: %w", err)
	}
	defer rows.Close()

	var quotes []*models.MarketData
	for rows.Next() {
		md, err := scanMarketDataRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan market data: %w", err)
		}
		quotes = append(quotes, md)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate market data: %w", err)
	}

	return quotes, nil
}

// UpsertMarketData inserts or replaces the quote for an instrument and date
func (db *DB) UpsertMarketData(md *models.MarketData) error {
	query := `
		INSERT INTO marketdata (instrumentid, high, low, open, close, previousclose, date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (instrumentid, date) DO UPDATE SET
			high = EXCLUDED.high,
			low = EXCLUDED.low,
			open = EXCLUDED.open,
			close = EXCLUDED.close,
			previousclose = EXCLUDED.previousclose
		RETURNING id
	`
	err := db.conn.QueryRow(query,
		md.InstrumentID, md.High, md.Low, md.Open, md.Close, md.PreviousClose, md.Date,
	).Scan(&md.ID)

	if err != nil {
		return fmt.Errorf("failed to upsert market data: %w", err)
	}
	return nil
}

func scanMarketData(row *sql.Row) (*models.MarketData, error) {
	var md models.MarketData
	var high, low, open, close, previousClose sql.NullString

	err := row.Scan(&md.ID, &md.InstrumentID, &high, &low, &open, &close, &previousClose, &md.Date)
	if err != nil {
		return nil, err
	}

	assignNullDecimal(&md.High, high)
	assignNullDecimal(&md.Low, low)
	assignNullDecimal(&md.Open, open)
	assignNullDecimal(&md.Close, close)
	assignNullDecimal(&md.PreviousClose, previousClose)
	return &md, nil
}

func scanMarketDataRows(rows *sql.Rows) (*models.MarketData, error) {
	var md models.MarketData
	var high, low, open, close, previousClose sql.NullString

	err := rows.Scan(&md.ID, &md.InstrumentID, &high, &low, &open, &close, &previousClose, &md.Date)
	if err != nil {
		return nil, err
	}

	assignNullDecimal(&md.High, high)
	assignNullDecimal(&md.Low, low)
	assignNullDecimal(&md.Open, open)
	assignNullDecimal(&md.Close, close)
	assignNullDecimal(&md.PreviousClose, previousClose)
	return &md, nil
}

func assignNullDecimal(dst *decimal.Decimal, src sql.NullString) {
	if src.Valid {
		*dst, _ = decimal.NewFromString(src.String)
	}
}
