package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	instentity "stockdash/internal/feature/instruments/domain/entity"
	"stockdash/internal/feature/marketdata/domain/entity"
)

// setupTestDB prepares an in-memory SQLite database for tests. The instrument
// tables come first: the market-data tables declare foreign keys into them.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to initialize test database")

	err = db.AutoMigrate(
		&instentity.Stock{}, &instentity.Index{},
		&entity.Candle{}, &entity.IndexCandle{}, &entity.Quote{}, &entity.IndexQuote{},
	)
	require.NoError(t, err, "failed to migrate tables")

	return db
}

func candleAt(stockID uint, ts time.Time, interval int, close float64) entity.Candle {
	return entity.Candle{
		StockID:   stockID,
		Timestamp: ts,
		Interval:  interval,
		Open:      close - 1,
		High:      close + 1,
		Low:       close - 2,
		Close:     close,
		Volume:    1000,
	}
}

func TestCandleGorm_GetOrCreate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("creates on first insert", func(t *testing.T) {
		repo := NewCandleRepository(setupTestDB(t))

		c := candleAt(1, time.Date(2025, 1, 15, 9, 15, 0, 0, time.Local), 5, 100.5)
		created, err := repo.GetOrCreate(ctx, &c)
		require.NoError(t, err)
		assert.True(t, created)
		assert.NotZero(t, c.ID)
	})

	t.Run("re-ingesting an overlapping range is idempotent", func(t *testing.T) {
		repo := NewCandleRepository(setupTestDB(t))
		ts := time.Date(2025, 1, 15, 9, 15, 0, 0, time.Local)

		first := candleAt(1, ts, 5, 100.5)
		created, err := repo.GetOrCreate(ctx, &first)
		require.NoError(t, err)
		require.True(t, created)

		// Same key with different prices: the stored row wins.
		second := candleAt(1, ts, 5, 999)
		created, err = repo.GetOrCreate(ctx, &second)
		require.NoError(t, err)
		assert.False(t, created, "existing key must not create")
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, 100.5, second.Close, "stored values win over refetched ones")

		n, err := repo.CountAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("same timestamp different interval creates a new row", func(t *testing.T) {
		repo := NewCandleRepository(setupTestDB(t))
		ts := time.Date(2025, 1, 15, 9, 15, 0, 0, time.Local)

		five := candleAt(1, ts, 5, 100)
		_, err := repo.GetOrCreate(ctx, &five)
		require.NoError(t, err)

		fifteen := candleAt(1, ts, 15, 101)
		created, err := repo.GetOrCreate(ctx, &fifteen)
		require.NoError(t, err)
		assert.True(t, created)

		n, err := repo.CountAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})
}

func TestCandleGorm_OwnershipCascade(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("schema declares the owning foreign keys", func(t *testing.T) {
		db := setupTestDB(t)

		assert.True(t, db.Migrator().HasConstraint(&entity.Candle{}, "Stock"))
		assert.True(t, db.Migrator().HasConstraint(&entity.Quote{}, "Stock"))
		assert.True(t, db.Migrator().HasConstraint(&entity.IndexCandle{}, "Index"))
		assert.True(t, db.Migrator().HasConstraint(&entity.IndexQuote{}, "Index"))
	})

	t.Run("deleting a stock removes its market data", func(t *testing.T) {
		// SQLite only enforces foreign keys when asked to.
		db, err := gorm.Open(sqlite.Open(":memory:?_foreign_keys=on"), &gorm.Config{})
		require.NoError(t, err)
		require.NoError(t, db.AutoMigrate(
			&instentity.Stock{}, &instentity.Index{},
			&entity.Candle{}, &entity.IndexCandle{}, &entity.Quote{}, &entity.IndexQuote{},
		))

		stock := instentity.Stock{Symbol: "TCS-EQ", Token: "11536", Exchange: "NSE"}
		require.NoError(t, db.Create(&stock).Error)

		repo := NewCandleRepository(db)
		c := candleAt(stock.ID, time.Date(2025, 1, 15, 9, 15, 0, 0, time.Local), 5, 100)
		_, err = repo.GetOrCreate(ctx, &c)
		require.NoError(t, err)
		require.NoError(t, db.Create(&entity.Quote{StockID: stock.ID, LTP: 100}).Error)

		require.NoError(t, db.Delete(&instentity.Stock{}, stock.ID).Error)

		n, err := repo.Count(ctx, stock.ID, 5)
		require.NoError(t, err)
		assert.Zero(t, n, "candles go with their stock")

		var quotes int64
		require.NoError(t, db.Model(&entity.Quote{}).Count(&quotes).Error)
		assert.Zero(t, quotes, "quotes go with their stock")
	})
}

func TestCandleGorm_LatestCreatedAt(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := NewCandleRepository(setupTestDB(t))

	latest, err := repo.LatestCreatedAt(ctx, 1, 5)
	require.NoError(t, err)
	assert.True(t, latest.IsZero(), "no rows means zero time, not an error")

	c := candleAt(1, time.Date(2025, 1, 15, 9, 15, 0, 0, time.Local), 5, 100)
	_, err = repo.GetOrCreate(ctx, &c)
	require.NoError(t, err)

	latest, err = repo.LatestCreatedAt(ctx, 1, 5)
	require.NoError(t, err)
	assert.False(t, latest.IsZero())

	// A different interval still has nothing.
	latest, err = repo.LatestCreatedAt(ctx, 1, 15)
	require.NoError(t, err)
	assert.True(t, latest.IsZero())
}

func TestCandleGorm_FindPagination(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := NewCandleRepository(setupTestDB(t))
	base := time.Date(2025, 1, 15, 9, 0, 0, 0, time.Local)
	for i := 0; i < 7; i++ {
		c := candleAt(1, base.Add(time.Duration(i)*5*time.Minute), 5, float64(100+i))
		_, err := repo.GetOrCreate(ctx, &c)
		require.NoError(t, err)
	}

	page1, err := repo.Find(ctx, 1, 5, 3, 0)
	require.NoError(t, err)
	require.Len(t, page1, 3)
	assert.Equal(t, 106.0, page1[0].Close, "newest first")

	page2, err := repo.Find(ctx, 1, 5, 3, 3)
	require.NoError(t, err)
	require.Len(t, page2, 3)
	assert.Equal(t, 103.0, page2[0].Close)

	n, err := repo.Count(ctx, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)

	other, err := repo.Find(ctx, 2, 5, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, other, "other stocks see nothing")
}

func TestCandleGorm_IndexCandles(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := NewCandleRepository(setupTestDB(t))
	ts := time.Date(2025, 1, 15, 9, 15, 0, 0, time.Local)

	ic := entity.IndexCandle{IndexID: 1, Timestamp: ts, Interval: 5, Open: 22000, High: 22100, Low: 21950, Close: 22050}
	created, err := repo.GetOrCreateIndexCandle(ctx, &ic)
	require.NoError(t, err)
	assert.True(t, created)

	dup := entity.IndexCandle{IndexID: 1, Timestamp: ts, Interval: 5, Open: 1, High: 1, Low: 1, Close: 1}
	created, err = repo.GetOrCreateIndexCandle(ctx, &dup)
	require.NoError(t, err)
	assert.False(t, created)

	rows, err := repo.FindIndexCandles(ctx, 1, 5, 10, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 22050.0, rows[0].Close)

	latest, err := repo.LatestIndexCreatedAt(ctx, 1, 5)
	require.NoError(t, err)
	assert.False(t, latest.IsZero())
}
