package database

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcastellan/brokerage-api/internal/models"
)

func TestMarketDataRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	day := func(d int) time.Time {
		return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
	}

	t.Run("GetLatestMarketData returns the most recent quote", func(t *testing.T) {
		testDB.TruncateAll(t)
		id := testDB.CreateTestInstrument(t, "PAMP", "Pampa Holding S.A.", "STOCK")

		testDB.CreateTestQuote(t, id, 100, 98, day(1))
		testDB.CreateTestQuote(t, id, 105, 100, day(2))
		testDB.CreateTestQuote(t, id, 103, 105, day(3))

		quote, err := testDB.GetLatestMarketData(id)
		require.NoError(t, err)
		require.NotNil(t, quote)
		assert.True(t, decimal.NewFromInt(103).Equal(quote.Close), "close = %s", quote.Close)
		assert.True(t, decimal.NewFromInt(105).Equal(quote.PreviousClose))
	})

	t.Run("GetLatestMarketData returns nil without error when absent", func(t *testing.T) {
		testDB.TruncateAll(t)
		id := testDB.CreateTestInstrument(t, "PAMP", "Pampa Holding S.A.", "STOCK")

		quote, err := testDB.GetLatestMarketData(id)
		require.NoError(t, err)
		assert.Nil(t, quote)
	})

	t.Run("GetLatestMarketDataBatch returns one row per instrument", func(t *testing.T) {
		testDB.TruncateAll(t)
		pamp := testDB.CreateTestInstrument(t, "PAMP", "Pampa Holding S.A.", "STOCK")
		ypfd := testDB.CreateTestInstrument(t, "YPFD", "Y.P.F. S.A.", "STOCK")
		noQuotes := testDB.CreateTestInstrument(t, "ALUA", "Aluar Aluminio Argentino S.A.I.C.", "STOCK")

		testDB.CreateTestQuote(t, pamp, 100, 98, day(1))
		testDB.CreateTestQuote(t, pamp, 105, 100, day(2))
		testDB.CreateTestQuote(t, ypfd, 2000, 1990, day(2))

		quotes, err := testDB.GetLatestMarketDataBatch([]int{pamp, ypfd, noQuotes})
		require.NoError(t, err)

		require.Len(t, quotes, 2)
		byInstrument := map[int]*models.MarketData{}
		for _, q := range quotes {
			byInstrument[q.InstrumentID] = q
		}
		assert.True(t, decimal.NewFromInt(105).Equal(byInstrument[pamp].Close))
		assert.True(t, decimal.NewFromInt(2000).Equal(byInstrument[ypfd].Close))
	})

	t.Run("GetLatestMarketDataBatch with no ids returns nothing", func(t *testing.T) {
		testDB.TruncateAll(t)

		quotes, err := testDB.GetLatestMarketDataBatch(nil)
		require.NoError(t, err)
		assert.Empty(t, quotes)
	})

	t.Run("UpsertMarketData replaces the quote for the same day", func(t *testing.T) {
		testDB.TruncateAll(t)
		id := testDB.CreateTestInstrument(t, "PAMP", "Pampa Holding S.A.", "STOCK")

		testDB.CreateTestQuote(t, id, 100, 98, day(1))
		testDB.CreateTestQuote(t, id, 102, 98, day(1))

		var count int
		err := testDB.GetRawConn().QueryRow(`SELECT COUNT(*) FROM marketdata WHERE instrumentid = $1`, id).Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		quote, err := testDB.GetLatestMarketData(id)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(102).Equal(quote.Close))
	})
}
