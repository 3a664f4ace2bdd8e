package database

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/rcastellan/brokerage-api/internal/models"
)

// TestDB wraps a test database connection with cleanup
type TestDB struct {
	*DB
	container testcontainers.Container
	connStr   string
}

// SetupTestDB creates a new PostgreSQL container and returns a connected DB
// with all migrations applied
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:15-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("testuser"),
		tcpostgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	db, err := New(connStr)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	testDB := &TestDB{
		DB:        db,
		container: pgContainer,
		connStr:   connStr,
	}

	// Migrations live relative to this file
	_, filename, _, _ := runtime.Caller(0)
	migrationsPath := filepath.Join(filepath.Dir(filename), "..", "..", "db", "migrations")
	if err := db.Migrate(migrationsPath); err != nil {
		testDB.Cleanup(t)
		t.Fatalf("failed to run migrations: %v", err)
	}

	return testDB
}

// Cleanup closes the database connection and terminates the container
func (tdb *TestDB) Cleanup(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	if tdb.DB != nil {
		tdb.DB.Close()
	}

	if tdb.container != nil {
		if err := tdb.container.Terminate(ctx); err != nil {
			t.Errorf("failed to terminate container: %v", err)
		}
	}
}

// TruncateAll truncates all tables for test isolation
func (tdb *TestDB) TruncateAll(t *testing.T) {
	t.Helper()

	tables := []string{
		"orders",
		"marketdata",
		"instruments",
		"users",
	}

	for _, table := range tables {
		_, err := tdb.conn.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		if err != nil {
			t.Fatalf("failed to truncate table %s: %v", table, err)
		}
	}
}

// GetRawConn returns the underlying sql.DB for direct queries in tests
func (tdb *TestDB) GetRawConn() *sql.DB {
	return tdb.conn
}

// CreateTestUser inserts a user and returns its id
func (tdb *TestDB) CreateTestUser(t *testing.T, email, accountNumber string) int {
	t.Helper()

	var id int
	err := tdb.conn.QueryRow(`
		INSERT INTO users (email, accountnumber) VALUES ($1, $2) RETURNING id
	`, email, accountNumber).Scan(&id)
	if err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return id
}

// CreateTestInstrument inserts an instrument and returns its id
func (tdb *TestDB) CreateTestInstrument(t *testing.T, ticker, name, kind string) int {
	t.Helper()

	var id int
	err := tdb.conn.QueryRow(`
		INSERT INTO instruments (ticker, name, kind) VALUES ($1, $2, $3) RETURNING id
	`, ticker, name, kind).Scan(&id)
	if err != nil {
		t.Fatalf("failed to create test instrument: %v", err)
	}
	return id
}

// CreateTestQuote inserts a marketdata row for an instrument and date
func (tdb *TestDB) CreateTestQuote(t *testing.T, instrumentID int, close, previousClose float64, date time.Time) {
	t.Helper()

	md := &models.MarketData{
		InstrumentID:  instrumentID,
		High:          decimal.NewFromFloat(close + 5),
		Low:           decimal.NewFromFloat(close - 5),
		Open:          decimal.NewFromFloat(previousClose),
		Close:         decimal.NewFromFloat(close),
		PreviousClose: decimal.NewFromFloat(previousClose),
		Date:          date,
	}
	if err := tdb.UpsertMarketData(md); err != nil {
		t.Fatalf("failed to create test quote: %v", err)
	}
}
