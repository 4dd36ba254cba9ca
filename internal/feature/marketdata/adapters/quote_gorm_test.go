package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockdash/internal/feature/marketdata/domain/entity"
)

func TestQuoteGorm_AppendOnly(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := NewQuoteRepository(setupTestDB(t))

	// Two snapshots for the same stock both survive.
	old := &entity.Quote{StockID: 1, LTP: 100, CreatedAt: time.Now().Add(-time.Hour)}
	require.NoError(t, repo.Create(ctx, old))
	fresh := &entity.Quote{StockID: 1, LTP: 101.5}
	require.NoError(t, repo.Create(ctx, fresh))

	n, err := repo.CountAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n, "quotes are a log, not an upsert")

	latest, err := repo.Latest(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 101.5, latest.LTP, "newest snapshot wins")
}

func TestQuoteGorm_Latest_NoRows(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := NewQuoteRepository(setupTestDB(t))

	latest, err := repo.Latest(ctx, 42)
	require.NoError(t, err, "missing snapshot is not an error")
	assert.Nil(t, latest)

	ilatest, err := repo.LatestIndexQuote(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, ilatest)
}

func TestQuoteGorm_IndexQuotes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := NewQuoteRepository(setupTestDB(t))

	require.NoError(t, repo.CreateIndexQuote(ctx, &entity.IndexQuote{IndexID: 1, LTP: 22050}))

	latest, err := repo.LatestIndexQuote(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 22050.0, latest.LTP)
}

func TestQuoteGorm_Recent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := NewQuoteRepository(setupTestDB(t))
	for i := 0; i < 5; i++ {
		q := &entity.Quote{StockID: uint(i + 1), LTP: float64(100 + i), CreatedAt: time.Now().Add(time.Duration(i) * time.Second)}
		require.NoError(t, repo.Create(ctx, q))
	}

	rows, err := repo.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, 104.0, rows[0].LTP, "newest first")
}
