// Package handler provides the AJAX refresh endpoints for market data.
package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	instentity "stockdash/internal/feature/instruments/domain/entity"
	"stockdash/internal/feature/marketdata/domain/entity"
	"stockdash/internal/feature/marketdata/transport/http/dto"
	"stockdash/internal/feature/marketdata/usecase"
)

// refreshDays is the candle range fetched by the refresh endpoints.
const refreshDays = 1

// IngestUsecase defines the ingestion operations the handler invokes.
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type IngestUsecase interface {
	FetchQuote(ctx context.Context, stock instentity.Stock) (*entity.Quote, error)
	FetchCandles(ctx context.Context, stock instentity.Stock, interval, days int) ([]entity.Candle, error)
	FetchIndexQuote(ctx context.Context, index instentity.Index) (*entity.IndexQuote, error)
	FetchIndexCandles(ctx context.Context, index instentity.Index, interval, days int) ([]entity.IndexCandle, error)
}

// InstrumentFinder resolves path ids into stored instruments.
type InstrumentFinder interface {
	FindStockByID(ctx context.Context, id uint) (instentity.Stock, error)
	FindIndexByID(ctx context.Context, id uint) (instentity.Index, error)
}

// RefreshHandler serves the synchronous JSON refresh endpoints.
type RefreshHandler struct {
	ingest      IngestUsecase
	instruments InstrumentFinder
}

// NewRefreshHandler creates a new RefreshHandler.
func NewRefreshHandler(ingest IngestUsecase, instruments InstrumentFinder) *RefreshHandler {
	return &RefreshHandler{ingest: ingest, instruments: instruments}
}

// GetQuote handles GET /api/stocks/:id/quote: it triggers a (freshness
// guarded) quote fetch and reports the resulting snapshot.
func (h *RefreshHandler) GetQuote(c *gin.Context) {
	stock, ok := h.stockFromPath(c)
	if !ok {
		return
	}

	quote, err := h.ingest.FetchQuote(c.Request.Context(), stock)
	if err != nil || quote == nil {
		c.JSON(http.StatusOK, dto.QuoteResponse{Success: false, Error: "Failed to fetch live quote"})
		return
	}
	c.JSON(http.StatusOK, dto.QuoteResponse{Success: true, Quote: quoteData(quote)})
}

// GetCandles handles GET /api/stocks/:id/ohlc?interval=N: it triggers a
// candle fetch and reports only the newly persisted bars. Any interval
// outside {1,3,5,15,30,60} is coerced to 5, never rejected.
func (h *RefreshHandler) GetCandles(c *gin.Context) {
	stock, ok := h.stockFromPath(c)
	if !ok {
		return
	}
	interval := intervalParam(c)

	candles, err := h.ingest.FetchCandles(c.Request.Context(), stock, interval, refreshDays)
	if err != nil {
		c.JSON(http.StatusOK, dto.CandlesResponse{Success: false, Error: "Failed to fetch OHLC data"})
		return
	}

	out := make([]dto.CandleData, 0, len(candles))
	for _, cd := range candles {
		out = append(out, dto.CandleData{
			Timestamp: cd.Timestamp.Format(time.RFC3339),
			Open:      cd.Open,
			High:      cd.High,
			Low:       cd.Low,
			Close:     cd.Close,
			Volume:    cd.Volume,
		})
	}
	c.JSON(http.StatusOK, dto.CandlesResponse{Success: true, Data: out})
}

// RefreshStock handles POST /api/stocks/:id/refresh?interval=N: candles and
// quote in one call for the detail page's refresh button.
func (h *RefreshHandler) RefreshStock(c *gin.Context) {
	stock, ok := h.stockFromPath(c)
	if !ok {
		return
	}
	interval := intervalParam(c)
	ctx := c.Request.Context()

	candles, candlesErr := h.ingest.FetchCandles(ctx, stock, interval, refreshDays)
	quote, quoteErr := h.ingest.FetchQuote(ctx, stock)

	if candlesErr != nil && quoteErr != nil {
		c.JSON(http.StatusOK, dto.RefreshResponse{Success: false, Error: "Failed to refresh data"})
		return
	}

	res := dto.RefreshResponse{Success: true, NewCandles: len(candles)}
	if quote != nil {
		res.Quote = quoteData(quote)
	}
	c.JSON(http.StatusOK, res)
}

// RefreshIndex handles POST /api/indices/:id/refresh?interval=N, the index
// variant of RefreshStock. Index data carries no volume.
func (h *RefreshHandler) RefreshIndex(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusNotFound, dto.RefreshResponse{Success: false, Error: "index not found"})
		return
	}
	index, err := h.instruments.FindIndexByID(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, dto.RefreshResponse{Success: false, Error: "index not found"})
		return
	}
	interval := intervalParam(c)
	ctx := c.Request.Context()

	candles, candlesErr := h.ingest.FetchIndexCandles(ctx, index, interval, refreshDays)
	quote, quoteErr := h.ingest.FetchIndexQuote(ctx, index)

	if candlesErr != nil && quoteErr != nil {
		c.JSON(http.StatusOK, dto.RefreshResponse{Success: false, Error: "Failed to refresh data"})
		return
	}

	res := dto.RefreshResponse{Success: true, NewCandles: len(candles)}
	if quote != nil {
		res.Quote = &dto.QuoteData{
			LTP:           quote.LTP,
			Open:          quote.Open,
			High:          quote.High,
			Low:           quote.Low,
			Change:        quote.Change,
			ChangePercent: quote.ChangePercent,
			Timestamp:     quote.CreatedAt.Format(time.RFC3339),
		}
	}
	c.JSON(http.StatusOK, res)
}

func (h *RefreshHandler) stockFromPath(c *gin.Context) (instentity.Stock, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusNotFound, dto.QuoteResponse{Success: false, Error: "stock not found"})
		return instentity.Stock{}, false
	}
	stock, err := h.instruments.FindStockByID(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, dto.QuoteResponse{Success: false, Error: "stock not found"})
		return instentity.Stock{}, false
	}
	return stock, true
}

// intervalParam reads and coerces the interval query parameter.
func intervalParam(c *gin.Context) int {
	v, _ := strconv.Atoi(c.DefaultQuery("interval", strconv.Itoa(usecase.DefaultInterval)))
	return usecase.NormalizeInterval(v)
}

func quoteData(q *entity.Quote) *dto.QuoteData {
	return &dto.QuoteData{
		LTP:           q.LTP,
		Open:          q.Open,
		High:          q.High,
		Low:           q.Low,
		Change:        q.Change,
		ChangePercent: q.ChangePercent,
		Volume:        q.Volume,
		Timestamp:     q.CreatedAt.Format(time.RFC3339),
	}
}
