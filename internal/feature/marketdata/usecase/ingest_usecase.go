// Package usecase implements market-data ingestion: fetching quotes and
// candles from the vendor and persisting them idempotently.
package usecase

import (
	"context"
	"log/slog"
	"time"

	instentity "stockdash/internal/feature/instruments/domain/entity"
	"stockdash/internal/feature/marketdata/domain/entity"
	"stockdash/internal/shared/ratelimiter"
)

const (
	// DefaultInterval is the candle interval in minutes used when a request
	// carries no valid interval.
	DefaultInterval = 5

	// FreshnessWindow is how recent persisted data must be for a request to
	// skip the vendor entirely. This bounds the vendor call rate; the vendor
	// enforces informal limits.
	FreshnessWindow = 5 * time.Minute

	// vendorTimeLayout is the vendor's candle timestamp format
	// ("DD-MM-YYYY HH:MM:SS"), interpreted in local time.
	vendorTimeLayout = "02-01-2006 15:04:05"
)

// Intervals is the fixed set of candle intervals, in minutes, the vendor
// serves, in display order.
var Intervals = []int{1, 3, 5, 15, 30, 60}

var allowedIntervals = map[int]struct{}{
	1: {}, 3: {}, 5: {}, 15: {}, 30: {}, 60: {},
}

// NormalizeInterval coerces any value outside the allowed set to the
// default. Invalid input is never rejected, only corrected.
func NormalizeInterval(interval int) int {
	if _, ok := allowedIntervals[interval]; ok {
		return interval
	}
	return DefaultInterval
}

// MarketDataClient abstracts the vendor's quote and time-series operations.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (platform).
type MarketDataClient interface {
	GetQuote(ctx context.Context, exchange, token string) (*entity.VendorQuote, error)
	GetTimePriceSeries(ctx context.Context, exchange, token string, start time.Time, interval int) ([]entity.VendorCandle, error)
}

// CandleRepository abstracts candle persistence for both instrument variants.
type CandleRepository interface {
	// GetOrCreate persists the candle unless a row already exists for its
	// (stock, timestamp, interval) key; created reports which happened.
	GetOrCreate(ctx context.Context, candle *entity.Candle) (created bool, err error)
	GetOrCreateIndexCandle(ctx context.Context, candle *entity.IndexCandle) (created bool, err error)

	// LatestCreatedAt returns the insertion time of the newest candle for
	// the key, or the zero time when none exists.
	LatestCreatedAt(ctx context.Context, stockID uint, interval int) (time.Time, error)
	LatestIndexCreatedAt(ctx context.Context, indexID uint, interval int) (time.Time, error)
}

// QuoteRepository abstracts quote-snapshot persistence. Quotes are an
// append-only log.
type QuoteRepository interface {
	Create(ctx context.Context, quote *entity.Quote) error
	CreateIndexQuote(ctx context.Context, quote *entity.IndexQuote) error
	Latest(ctx context.Context, stockID uint) (*entity.Quote, error)
	LatestIndexQuote(ctx context.Context, indexID uint) (*entity.IndexQuote, error)
}

// IngestUsecase fetches market data from the vendor and upserts it into
// storage. Nothing here retries and nothing is fatal: failures log, return,
// and leave the caller with whatever data is already stored.
type IngestUsecase struct {
	market      MarketDataClient
	candles     CandleRepository
	quotes      QuoteRepository
	rateLimiter ratelimiter.RateLimiterInterface
}

// NewIngestUsecase creates a new IngestUsecase.
func NewIngestUsecase(market MarketDataClient, candles CandleRepository, quotes QuoteRepository, rateLimiter ratelimiter.RateLimiterInterface) *IngestUsecase {
	return &IngestUsecase{market: market, candles: candles, quotes: quotes, rateLimiter: rateLimiter}
}

// FetchQuote fetches and persists one quote snapshot for a stock. If a
// snapshot from the last five minutes exists it is returned as-is and the
// vendor is not called.
func (iu *IngestUsecase) FetchQuote(ctx context.Context, stock instentity.Stock) (*entity.Quote, error) {
	if latest, err := iu.quotes.Latest(ctx, stock.ID); err == nil && latest != nil &&
		time.Since(latest.CreatedAt) < FreshnessWindow {
		slog.Debug("quote still fresh, skipping vendor call", "symbol", stock.Symbol)
		return latest, nil
	}

	vq, err := iu.market.GetQuote(ctx, stock.Exchange, stock.Token)
	if err != nil {
		slog.Error("failed to fetch quote", "symbol", stock.Symbol, "error", err)
		return nil, err
	}

	quote := &entity.Quote{
		StockID:       stock.ID,
		LTP:           vq.LTP,
		Open:          vq.Open,
		High:          vq.High,
		Low:           vq.Low,
		Volume:        vq.Volume,
		Change:        vq.Change,
		ChangePercent: vq.ChangePercent,
	}
	if err := iu.quotes.Create(ctx, quote); err != nil {
		slog.Error("failed to persist quote", "symbol", stock.Symbol, "error", err)
		return nil, err
	}
	return quote, nil
}

// FetchIndexQuote is the index variant of FetchQuote. Indices carry no
// volume.
func (iu *IngestUsecase) FetchIndexQuote(ctx context.Context, index instentity.Index) (*entity.IndexQuote, error) {
	if latest, err := iu.quotes.LatestIndexQuote(ctx, index.ID); err == nil && latest != nil &&
		time.Since(latest.CreatedAt) < FreshnessWindow {
		slog.Debug("index quote still fresh, skipping vendor call", "symbol", index.Symbol)
		return latest, nil
	}

	vq, err := iu.market.GetQuote(ctx, index.Exchange, index.Token)
	if err != nil {
		slog.Error("failed to fetch index quote", "symbol", index.Symbol, "error", err)
		return nil, err
	}

	quote := &entity.IndexQuote{
		IndexID:       index.ID,
		LTP:           vq.LTP,
		Open:          vq.Open,
		High:          vq.High,
		Low:           vq.Low,
		Change:        vq.Change,
		ChangePercent: vq.ChangePercent,
	}
	if err := iu.quotes.CreateIndexQuote(ctx, quote); err != nil {
		slog.Error("failed to persist index quote", "symbol", index.Symbol, "error", err)
		return nil, err
	}
	return quote, nil
}

// FetchCandles fetches candles for a stock covering days back from now at
// the given interval and persists the ones not yet stored. Only newly
// created rows are returned, so the result length is the count of genuinely
// new candles. Candles with unparseable timestamps are skipped and counted,
// never fatal.
func (iu *IngestUsecase) FetchCandles(ctx context.Context, stock instentity.Stock, interval, days int) ([]entity.Candle, error) {
	interval = NormalizeInterval(interval)

	if last, err := iu.candles.LatestCreatedAt(ctx, stock.ID, interval); err == nil && !last.IsZero() &&
		time.Since(last) < FreshnessWindow {
		slog.Debug("candles still fresh, skipping vendor call", "symbol", stock.Symbol, "interval", interval)
		return nil, nil
	}

	vcs, err := iu.market.GetTimePriceSeries(ctx, stock.Exchange, stock.Token, rangeStart(days), interval)
	if err != nil {
		slog.Error("failed to fetch candles", "symbol", stock.Symbol, "interval", interval, "error", err)
		return nil, err
	}

	var created []entity.Candle
	var skipped int
	for _, vc := range vcs {
		ts, err := time.ParseInLocation(vendorTimeLayout, vc.Time, time.Local)
		if err != nil {
			slog.Warn("skipping candle with invalid timestamp", "symbol", stock.Symbol, "time", vc.Time)
			skipped++
			continue
		}
		candle := entity.Candle{
			StockID:   stock.ID,
			Timestamp: ts,
			Interval:  interval,
			Open:      vc.Open,
			High:      vc.High,
			Low:       vc.Low,
			Close:     vc.Close,
			Volume:    vc.Volume,
		}
		isNew, err := iu.candles.GetOrCreate(ctx, &candle)
		if err != nil {
			slog.Error("failed to persist candle", "symbol", stock.Symbol, "timestamp", ts, "error", err)
			continue
		}
		if isNew {
			created = append(created, candle)
		}
	}

	slog.Info("candle ingestion finished",
		"symbol", stock.Symbol, "interval", interval,
		"fetched", len(vcs), "new", len(created), "skipped", skipped)
	return created, nil
}

// FetchIndexCandles is the index variant of FetchCandles.
func (iu *IngestUsecase) FetchIndexCandles(ctx context.Context, index instentity.Index, interval, days int) ([]entity.IndexCandle, error) {
	interval = NormalizeInterval(interval)

	if last, err := iu.candles.LatestIndexCreatedAt(ctx, index.ID, interval); err == nil && !last.IsZero() &&
		time.Since(last) < FreshnessWindow {
		slog.Debug("index candles still fresh, skipping vendor call", "symbol", index.Symbol, "interval", interval)
		return nil, nil
	}

	vcs, err := iu.market.GetTimePriceSeries(ctx, index.Exchange, index.Token, rangeStart(days), interval)
	if err != nil {
		slog.Error("failed to fetch index candles", "symbol", index.Symbol, "interval", interval, "error", err)
		return nil, err
	}

	var created []entity.IndexCandle
	var skipped int
	for _, vc := range vcs {
		ts, err := time.ParseInLocation(vendorTimeLayout, vc.Time, time.Local)
		if err != nil {
			slog.Warn("skipping index candle with invalid timestamp", "symbol", index.Symbol, "time", vc.Time)
			skipped++
			continue
		}
		candle := entity.IndexCandle{
			IndexID:   index.ID,
			Timestamp: ts,
			Interval:  interval,
			Open:      vc.Open,
			High:      vc.High,
			Low:       vc.Low,
			Close:     vc.Close,
		}
		isNew, err := iu.candles.GetOrCreateIndexCandle(ctx, &candle)
		if err != nil {
			slog.Error("failed to persist index candle", "symbol", index.Symbol, "timestamp", ts, "error", err)
			continue
		}
		if isNew {
			created = append(created, candle)
		}
	}

	slog.Info("index candle ingestion finished",
		"symbol", index.Symbol, "interval", interval,
		"fetched", len(vcs), "new", len(created), "skipped", skipped)
	return created, nil
}

// IngestAll fetches quotes and candles for the given stocks sequentially,
// pacing vendor calls through the rate limiter. One failing symbol never
// stops the rest.
func (iu *IngestUsecase) IngestAll(ctx context.Context, stocks []instentity.Stock, interval, days int) {
	for _, s := range stocks {
		iu.rateLimiter.WaitIfNeeded()
		if _, err := iu.FetchQuote(ctx, s); err != nil {
			slog.Error("failed to ingest quote", "symbol", s.Symbol, "error", err)
		}

		iu.rateLimiter.WaitIfNeeded()
		if _, err := iu.FetchCandles(ctx, s, interval, days); err != nil {
			slog.Error("failed to ingest candles", "symbol", s.Symbol, "error", err)
		}
	}
}

// rangeStart computes the fetch window start: (days-1) full days before
// today, truncated to local midnight, so days=1 means "from today's
// midnight".
func rangeStart(days int) time.Time {
	if days < 1 {
		days = 1
	}
	now := time.Now()
	start := now.AddDate(0, 0, -(days - 1))
	return time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.Local)
}
