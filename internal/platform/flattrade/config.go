// Package flattrade provides a client for the Flattrade (Noren) trading API.
package flattrade

import (
	"os"
	"time"
)

// Config holds configuration for the Flattrade API client.
type Config struct {
	UserID  string        // Vendor user id
	Token   string        // Daily session token, rotated out-of-band by the operator
	BaseURL string        // Base URL for the API (e.g., "https://piconnect.flattrade.in/PiConnectTP")
	Timeout time.Duration // HTTP request timeout
}

// LoadConfig loads Flattrade configuration from environment variables.
func LoadConfig() Config {
	base := os.Getenv("FLATTRADE_BASE_URL")
	if base == "" {
		base = "https://piconnect.flattrade.in/PiConnectTP"
	}
	return Config{
		UserID:  os.Getenv("FLATTRADE_USER_ID"),
		Token:   os.Getenv("FLATTRADE_TOKEN"),
		BaseURL: base,
		Timeout: 10 * time.Second,
	}
}
