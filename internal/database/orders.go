package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rcastellan/brokerage-api/internal/models"
)

// CreateOrder inserts a new order record
func (db *DB) CreateOrder(o *models.Order) error {
	query := `
		INSERT INTO orders (instrumentid, userid, side, size, price, type, status, datetime)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	datetime := o.Datetime
	if datetime.IsZero() {
		datetime = time.Now()
	}

	err := db.conn.QueryRow(query,
		o.InstrumentID, o.UserID, o.Side, o.Size, o.Price, o.Type, o.Status, datetime,
	).Scan(&o.ID)

	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	o.Datetime = datetime
	return nil
}

// GetOrderByID retrieves an order by id
func (db *DB) GetOrderByID(id int) (*models.Order, error) {
	query := `
		SELECT id, instrumentid, userid, side, size, price, type, status, datetime
		FROM orders
		WHERE id = $1
	`
	var o models.Order
	err := db.conn.QueryRow(query, id).Scan(
		&o.ID, &o.InstrumentID, &o.UserID, &o.Side, &o.Size, &o.Price, &o.Type, &o.Status, &o.Datetime,
	)

	if err == sql.ErrNoRows {
		return nil, &models.NotFoundError{Entity: "Order", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &o, nil
}

// GetOrdersByUserID retrieves all orders for a user, most recent first
func (db *DB) GetOrdersByUserID(userID int) ([]*models.Order, error) {
	query := `
		SELECT id, instrumentid, userid, side, size, price, type, status, datetime
		FROM orders
		WHERE userid = $1
		ORDER BY datetime DESC
	`
	return db.scanOrders(db.conn.Query(query, userID))
}

// GetOrdersByUserIDAndStatus retrieves a user's orders with the given status
// in ascending settlement-time order (id ascending on ties), the contract
// ledger replay depends on.
func (db *DB) GetOrdersByUserIDAndStatus(userID int, status string) ([]*models.Order, error) {
	query := `
		SELECT id, instrumentid, userid, side, size, price, type, status, datetime
		FROM orders
		WHERE userid = $1 AND status = $2
		ORDER BY datetime ASC, id ASC
	`
	return db.scanOrders(db.conn.Query(query, userID, status))
}

// UpdateOrderStatus updates an order's status and returns the updated record
func (db *DB) UpdateOrderStatus(id int, status string) (*models.Order, error) {
	query := `
		UPDATE orders
		SET status = $2
		WHERE id = $1
		RETURNING id, instrumentid, userid, side, size, price, type, status, datetime
	`
	var o models.Order
	err := db.conn.QueryRow(query, id, status).Scan(
		&o.ID, &o.InstrumentID, &o.UserID, &o.Side, &o.Size, &o.Price, &o.Type, &o.Status, &o.Datetime,
	)

	if err == sql.ErrNoRows {
		return nil, &models.NotFoundError{Entity: "Order", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	return &o, nil
}

func (db *DB) scanOrders(rows *sql.Rows, err error) ([]*models.Order, error) {
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		var o models.Order
		err := rows.Scan(
			&o.ID, &o.InstrumentID, &o.UserID, &o.Side, &o.Size, &o.Price, &o.Type, &o.Status, &o.Datetime,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate orders: %w", err)
	}

	return orders, nil
}
