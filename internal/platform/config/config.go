// Package config bootstraps process configuration from the environment.
package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// Load reads an optional .env file and makes its values available through
// os.Getenv. A missing file is fine; real environment variables always win.
func Load() {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("failed to load .env file", "error", err)
		}
		return
	}
	slog.Info("loaded configuration from .env")
}
