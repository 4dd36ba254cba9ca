// Package handler renders the HTML pages: dashboard, instrument detail and
// search. Pages render from persisted data; the only vendor calls on the
// page path are the freshness-guarded detail refreshes.
package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	instentity "stockdash/internal/feature/instruments/domain/entity"
	mdentity "stockdash/internal/feature/marketdata/domain/entity"
	mdusecase "stockdash/internal/feature/marketdata/usecase"
)

const (
	dashboardRows  = 10
	candlePageSize = 50
)

// InstrumentReader provides read access to stored instruments.
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (adapters).
type InstrumentReader interface {
	FindStockByID(ctx context.Context, id uint) (instentity.Stock, error)
	FindIndexByID(ctx context.Context, id uint) (instentity.Index, error)
	ListStocks(ctx context.Context, limit int) ([]instentity.Stock, error)
	ListIndices(ctx context.Context, limit int) ([]instentity.Index, error)
	CountStocks(ctx context.Context) (int64, error)
}

// CandleReader provides read access to stored candles.
type CandleReader interface {
	Find(ctx context.Context, stockID uint, interval, limit, offset int) ([]mdentity.Candle, error)
	FindIndexCandles(ctx context.Context, indexID uint, interval, limit, offset int) ([]mdentity.IndexCandle, error)
	Count(ctx context.Context, stockID uint, interval int) (int64, error)
	CountIndexCandles(ctx context.Context, indexID uint, interval int) (int64, error)
	Recent(ctx context.Context, limit int) ([]mdentity.Candle, error)
	CountAll(ctx context.Context) (int64, error)
}

// QuoteReader provides read access to stored quote snapshots.
type QuoteReader interface {
	Latest(ctx context.Context, stockID uint) (*mdentity.Quote, error)
	LatestIndexQuote(ctx context.Context, indexID uint) (*mdentity.IndexQuote, error)
	Recent(ctx context.Context, limit int) ([]mdentity.Quote, error)
	CountAll(ctx context.Context) (int64, error)
}

// Ingestor triggers freshness-guarded ingestion before detail renders.
type Ingestor interface {
	FetchQuote(ctx context.Context, stock instentity.Stock) (*mdentity.Quote, error)
	FetchCandles(ctx context.Context, stock instentity.Stock, interval, days int) ([]mdentity.Candle, error)
	FetchIndexQuote(ctx context.Context, index instentity.Index) (*mdentity.IndexQuote, error)
	FetchIndexCandles(ctx context.Context, index instentity.Index, interval, days int) ([]mdentity.IndexCandle, error)
}

// Searcher is the (possibly cache-decorated) combined instrument search.
type Searcher interface {
	Search(ctx context.Context, query string) ([]instentity.Instrument, error)
}

// PagesHandler renders the HTML surface.
type PagesHandler struct {
	instruments InstrumentReader
	candles     CandleReader
	quotes      QuoteReader
	ingest      Ingestor
	search      Searcher
}

// NewPagesHandler creates a new PagesHandler.
func NewPagesHandler(instruments InstrumentReader, candles CandleReader, quotes QuoteReader, ingest Ingestor, search Searcher) *PagesHandler {
	return &PagesHandler{
		instruments: instruments,
		candles:     candles,
		quotes:      quotes,
		ingest:      ingest,
		search:      search,
	}
}

// Dashboard handles GET /: stored instruments, recent rows and totals. No
// vendor call happens here.
func (h *PagesHandler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()

	stocks, _ := h.instruments.ListStocks(ctx, dashboardRows)
	indices, _ := h.instruments.ListIndices(ctx, dashboardRows)
	recentCandles, _ := h.candles.Recent(ctx, dashboardRows)
	recentQuotes, _ := h.quotes.Recent(ctx, dashboardRows)

	totalStocks, _ := h.instruments.CountStocks(ctx)
	totalCandles, _ := h.candles.CountAll(ctx)
	totalQuotes, _ := h.quotes.CountAll(ctx)

	// The recent panels key on stock ids; resolve them to symbols once.
	symbols := make(map[uint]string)
	if all, err := h.instruments.ListStocks(ctx, 0); err == nil {
		for _, s := range all {
			symbols[s.ID] = s.Symbol
		}
	}

	c.HTML(http.StatusOK, "dashboard.html", gin.H{
		"Stocks":        stocks,
		"Indices":       indices,
		"RecentCandles": recentCandles,
		"RecentQuotes":  recentQuotes,
		"TotalStocks":   totalStocks,
		"TotalCandles":  totalCandles,
		"TotalQuotes":   totalQuotes,
		"Symbols":       symbols,
	})
}

// StockDetail handles GET /stocks/:id. It refreshes data first (the
// freshness guard inside ingestion bounds the vendor rate), then renders a
// paginated candle listing with the latest quote.
func (h *PagesHandler) StockDetail(c *gin.Context) {
	ctx := c.Request.Context()

	stock, ok := h.findStock(c)
	if !ok {
		return
	}
	interval := intervalParam(c)

	// Refresh before render; failures degrade to stored data.
	_, _ = h.ingest.FetchCandles(ctx, stock, interval, 1)
	_, _ = h.ingest.FetchQuote(ctx, stock)

	page := pageParam(c)
	candles, _ := h.candles.Find(ctx, stock.ID, interval, candlePageSize, (page-1)*candlePageSize)
	total, _ := h.candles.Count(ctx, stock.ID, interval)
	quote, _ := h.quotes.Latest(ctx, stock.ID)

	c.HTML(http.StatusOK, "stock_detail.html", gin.H{
		"Stock":       stock,
		"Candles":     candles,
		"LatestQuote": quote,
		"Interval":    interval,
		"Intervals":   mdusecase.Intervals,
		"Page":        page,
		"HasNext":     int64(page*candlePageSize) < total,
		"HasPrev":     page > 1,
		"NextPage":    page + 1,
		"PrevPage":    page - 1,
	})
}

// IndexDetail handles GET /indices/:id, the index variant of StockDetail.
func (h *PagesHandler) IndexDetail(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.String(http.StatusNotFound, "index not found")
		return
	}
	index, err := h.instruments.FindIndexByID(ctx, uint(id))
	if err != nil {
		c.String(http.StatusNotFound, "index not found")
		return
	}
	interval := intervalParam(c)

	_, _ = h.ingest.FetchIndexCandles(ctx, index, interval, 1)
	_, _ = h.ingest.FetchIndexQuote(ctx, index)

	page := pageParam(c)
	candles, _ := h.candles.FindIndexCandles(ctx, index.ID, interval, candlePageSize, (page-1)*candlePageSize)
	total, _ := h.candles.CountIndexCandles(ctx, index.ID, interval)
	quote, _ := h.quotes.LatestIndexQuote(ctx, index.ID)

	c.HTML(http.StatusOK, "index_detail.html", gin.H{
		"Index":       index,
		"Candles":     candles,
		"LatestQuote": quote,
		"Interval":    interval,
		"Intervals":   mdusecase.Intervals,
		"Page":        page,
		"HasNext":     int64(page*candlePageSize) < total,
		"HasPrev":     page > 1,
		"NextPage":    page + 1,
		"PrevPage":    page - 1,
	})
}

// SearchPage handles GET /search?q=text. A vendor failure still renders
// whatever matched locally.
func (h *PagesHandler) SearchPage(c *gin.Context) {
	query := c.Query("q")

	var results []instentity.Instrument
	if query != "" {
		results, _ = h.search.Search(c.Request.Context(), query)
	}

	c.HTML(http.StatusOK, "search.html", gin.H{
		"Query":   query,
		"Results": results,
	})
}

func (h *PagesHandler) findStock(c *gin.Context) (instentity.Stock, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.String(http.StatusNotFound, "stock not found")
		return instentity.Stock{}, false
	}
	stock, err := h.instruments.FindStockByID(c.Request.Context(), uint(id))
	if err != nil {
		c.String(http.StatusNotFound, "stock not found")
		return instentity.Stock{}, false
	}
	return stock, true
}

func intervalParam(c *gin.Context) int {
	v, _ := strconv.Atoi(c.DefaultQuery("interval", strconv.Itoa(mdusecase.DefaultInterval)))
	return mdusecase.NormalizeInterval(v)
}

func pageParam(c *gin.Context) int {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	return page
}
