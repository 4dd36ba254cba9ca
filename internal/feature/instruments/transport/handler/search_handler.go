// Package handler provides the HTTP handlers for instrument search.
package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"stockdash/internal/feature/instruments/domain/entity"
	"stockdash/internal/feature/instruments/transport/http/dto"
)

// SearchUsecase combines stored and live instrument search.
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type SearchUsecase interface {
	Search(ctx context.Context, query string) ([]entity.Instrument, error)
}

// SearchHandler serves the JSON search endpoint.
type SearchHandler struct {
	uc SearchUsecase
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(uc SearchUsecase) *SearchHandler {
	return &SearchHandler{uc: uc}
}

// Search handles GET /api/search?q=text. A vendor-side failure still
// returns whatever the database had; only an empty query is a client error.
func (h *SearchHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, dto.SearchResponse{Success: false, Error: "missing query parameter q"})
		return
	}

	results, err := h.uc.Search(c.Request.Context(), query)
	if err != nil && len(results) == 0 {
		c.JSON(http.StatusOK, dto.SearchResponse{Success: false, Query: query, Error: "search failed"})
		return
	}

	out := make([]dto.InstrumentItem, 0, len(results))
	for _, inst := range results {
		out = append(out, dto.InstrumentItem{
			Kind:     string(inst.Kind),
			ID:       inst.ID,
			Symbol:   inst.Symbol,
			Token:    inst.Token,
			Exchange: inst.Exchange,
			Name:     inst.Name,
		})
	}
	c.JSON(http.StatusOK, dto.SearchResponse{Success: true, Query: query, Results: out})
}
