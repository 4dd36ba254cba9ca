package db

import (
	"fmt"
	"log"
	"os"
	"time"

	gpostgres "gorm.io/driver/postgres"
	gsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"

	instentity "stockdash/internal/feature/instruments/domain/entity"
	mdentity "stockdash/internal/feature/marketdata/domain/entity"
	sessadapters "stockdash/internal/feature/session/adapters"
)

// OpenDB opens the database configured through the environment. With
// DB_HOST set it connects to Postgres, retrying for up to a minute so the
// server can start before its database container; otherwise it falls back to
// a local SQLite file, which is enough for single-operator use.
func OpenDB() *gorm.DB {
	var (
		db  *gorm.DB
		err error
	)

	if host := os.Getenv("DB_HOST"); host != "" {
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			host,
			os.Getenv("DB_PORT"),
			os.Getenv("DB_USER"),
			os.Getenv("DB_PASSWORD"),
			os.Getenv("DB_NAME"),
		)

		deadline := time.Now().Add(60 * time.Second)
		for {
			db, err = gorm.Open(gpostgres.Open(dsn), &gorm.Config{})
			if err == nil {
				break
			}
			if time.Now().After(deadline) {
				log.Fatalf("DB connect failed after 60s: %v", err)
			}
			log.Printf("DB connect failed, retrying...: %v", err)
			time.Sleep(3 * time.Second)
		}
	} else {
		path := os.Getenv("DB_PATH")
		if path == "" {
			path = "stockdash.db"
		}
		db, err = gorm.Open(gsqlite.Open(path), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to open sqlite db %s: %v", path, err)
		}
	}

	if os.Getenv("RUN_MIGRATIONS") == "true" {
		if err := Migrate(db); err != nil {
			log.Fatalf("failed to migrate: %v", err)
		}
	}

	return db
}

// Migrate creates or updates the full relational schema. The uniqueness
// constraints declared on the models are load-bearing: get-or-create
// ingestion relies on them for idempotency.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&instentity.Stock{},
		&instentity.Index{},
		&mdentity.Candle{},
		&mdentity.IndexCandle{},
		&mdentity.Quote{},
		&mdentity.IndexQuote{},
		&sessadapters.SessionModel{},
	)
}
