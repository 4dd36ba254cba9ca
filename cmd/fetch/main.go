// Command fetch performs one ingestion run: it logs in to the vendor, seeds
// the popular-stock set if needed, and pulls a quote plus today's candles for
// every stored stock. Intended for cron.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"stockdash/internal/app/di"
	instadapters "stockdash/internal/feature/instruments/adapters"
	instusecase "stockdash/internal/feature/instruments/usecase"
	mdadapters "stockdash/internal/feature/marketdata/adapters"
	mdusecase "stockdash/internal/feature/marketdata/usecase"
	sessusecase "stockdash/internal/feature/session/usecase"
	"stockdash/internal/platform/config"
	infradb "stockdash/internal/platform/db"
	infraredis "stockdash/internal/platform/redis"
	"stockdash/internal/shared/ratelimiter"
)

func main() {
	interval := flag.Int("interval", mdusecase.DefaultInterval, "candle interval in minutes")
	days := flag.Int("days", 1, "how many days back to fetch")
	flag.Parse()

	config.Load()
	db := infradb.OpenDB()

	rdb, err := infraredis.NewRedisClient()
	if err != nil {
		rdb = nil
	}

	vendor := di.NewVendorClient()

	instrumentRepo := instadapters.NewInstrumentRepository(db)
	candleRepo := mdadapters.NewCandleRepository(db)
	quoteRepo := mdadapters.NewQuoteRepository(db)
	sessionRepo := di.NewSessionRepository(rdb, db)

	sessionUC := sessusecase.NewSessionUsecase(vendor, sessionRepo, vendor.UserID(), vendor.Token())
	resolveUC := instusecase.NewResolveUsecase(vendor, instrumentRepo)
	limiter := ratelimiter.NewRateLimiter(10, time.Second)
	ingestUC := mdusecase.NewIngestUsecase(vendor, candleRepo, quoteRepo, limiter)

	ctx := context.Background()
	if ok, err := sessionUC.Connect(ctx); err != nil || !ok {
		log.Fatalf("vendor login failed: %v", err)
	}

	if _, err := resolveUC.SeedPopular(ctx); err != nil {
		log.Printf("[WARN] failed to seed popular stocks: %v", err)
	}

	stocks, err := instrumentRepo.ListStocks(ctx, 0)
	if err != nil {
		log.Fatalf("failed to list stocks: %v", err)
	}

	ingestUC.IngestAll(ctx, stocks, *interval, *days)
}
