package main

import (
	"context"
	"log"
	"log/slog"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"stockdash/internal/app/di"
	"stockdash/internal/app/router"
	pageshandler "stockdash/internal/feature/dashboard/transport/handler"
	instadapters "stockdash/internal/feature/instruments/adapters"
	searchhandler "stockdash/internal/feature/instruments/transport/handler"
	instusecase "stockdash/internal/feature/instruments/usecase"
	mdadapters "stockdash/internal/feature/marketdata/adapters"
	mdhandler "stockdash/internal/feature/marketdata/transport/handler"
	mdusecase "stockdash/internal/feature/marketdata/usecase"
	sessusecase "stockdash/internal/feature/session/usecase"
	"stockdash/internal/platform/cache"
	"stockdash/internal/platform/config"
	infradb "stockdash/internal/platform/db"
	infraredis "stockdash/internal/platform/redis"
	"stockdash/internal/shared/ratelimiter"
)

func main() {
	config.Load()

	// db
	db := infradb.OpenDB()

	// Redis
	var rdb *redisv9.Client
	if tmp, err := infraredis.NewRedisClient(); err != nil {
		log.Println("[WARN] Redis unavailable. Running without cache.")
		rdb = nil
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Println("[ERROR] Failed to close Redis client:", err)
			}
		}()
	}

	// Vendor client
	vendor := di.NewVendorClient()

	// Repository
	instrumentRepo := instadapters.NewInstrumentRepository(db)
	candleRepo := mdadapters.NewCandleRepository(db)
	quoteRepo := mdadapters.NewQuoteRepository(db)
	sessionRepo := di.NewSessionRepository(rdb, db)

	// Usecase
	sessionUC := sessusecase.NewSessionUsecase(vendor, sessionRepo, vendor.UserID(), vendor.Token())
	resolveUC := instusecase.NewResolveUsecase(vendor, instrumentRepo)
	limiter := ratelimiter.NewRateLimiter(10, time.Second)
	ingestUC := mdusecase.NewIngestUsecase(vendor, candleRepo, quoteRepo, limiter)

	// Establish the vendor session up front. A failed login is not fatal:
	// the dashboard still serves stored data.
	ctx := context.Background()
	if ok, err := sessionUC.Connect(ctx); err != nil || !ok {
		slog.Warn("vendor session not established, serving stored data only", "error", err)
	} else if _, err := resolveUC.SeedPopular(ctx); err != nil {
		slog.Warn("failed to seed popular stocks", "error", err)
	}

	// Redis cache around search
	cachedSearch := cache.NewCachingSearch(rdb, cache.DefaultSearchTTL, resolveUC, "search")

	// Handler
	searchH := searchhandler.NewSearchHandler(cachedSearch)
	refreshH := mdhandler.NewRefreshHandler(ingestUC, instrumentRepo)
	pagesH := pageshandler.NewPagesHandler(instrumentRepo, candleRepo, quoteRepo, ingestUC, cachedSearch)

	r := router.NewRouter(pagesH, refreshH, searchH)

	if err := r.Run(":8080"); err != nil {
		log.Fatal(err)
	}
}
