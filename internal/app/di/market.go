// Package di provides dependency injection factories for creating application components.
package di

import (
	"stockdash/internal/platform/flattrade"
	infrahttp "stockdash/internal/platform/http"
)

// NewVendorClient creates a fully configured Flattrade client with HTTP client.
func NewVendorClient() *flattrade.Client {
	cfg := flattrade.LoadConfig()
	httpClient := infrahttp.NewHTTPClient(cfg.Timeout)
	return flattrade.NewClient(cfg, httpClient)
}
