package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"stockdash/internal/app/web"
	instentity "stockdash/internal/feature/instruments/domain/entity"
	mdentity "stockdash/internal/feature/marketdata/domain/entity"
)

// mockInstrumentReader is a mock implementation of the InstrumentReader interface.
type mockInstrumentReader struct {
	stocks  []instentity.Stock
	indices []instentity.Index
}

func (m *mockInstrumentReader) FindStockByID(ctx context.Context, id uint) (instentity.Stock, error) {
	for _, s := range m.stocks {
		if s.ID == id {
			return s, nil
		}
	}
	return instentity.Stock{}, gormNotFound
}

func (m *mockInstrumentReader) FindIndexByID(ctx context.Context, id uint) (instentity.Index, error) {
	for _, ix := range m.indices {
		if ix.ID == id {
			return ix, nil
		}
	}
	return instentity.Index{}, gormNotFound
}

func (m *mockInstrumentReader) ListStocks(ctx context.Context, limit int) ([]instentity.Stock, error) {
	return m.stocks, nil
}

func (m *mockInstrumentReader) ListIndices(ctx context.Context, limit int) ([]instentity.Index, error) {
	return m.indices, nil
}

func (m *mockInstrumentReader) CountStocks(ctx context.Context) (int64, error) {
	return int64(len(m.stocks)), nil
}

var gormNotFound = assert.AnError

// mockCandleReader is a mock implementation of the CandleReader interface.
type mockCandleReader struct {
	candles      []mdentity.Candle
	indexCandles []mdentity.IndexCandle
}

func (m *mockCandleReader) Find(ctx context.Context, stockID uint, interval, limit, offset int) ([]mdentity.Candle, error) {
	return m.candles, nil
}

func (m *mockCandleReader) FindIndexCandles(ctx context.Context, indexID uint, interval, limit, offset int) ([]mdentity.IndexCandle, error) {
	return m.indexCandles, nil
}

func (m *mockCandleReader) Count(ctx context.Context, stockID uint, interval int) (int64, error) {
	return int64(len(m.candles)), nil
}

func (m *mockCandleReader) CountIndexCandles(ctx context.Context, indexID uint, interval int) (int64, error) {
	return int64(len(m.indexCandles)), nil
}

func (m *mockCandleReader) Recent(ctx context.Context, limit int) ([]mdentity.Candle, error) {
	return m.candles, nil
}

func (m *mockCandleReader) CountAll(ctx context.Context) (int64, error) {
	return int64(len(m.candles)), nil
}

// mockQuoteReader is a mock implementation of the QuoteReader interface.
type mockQuoteReader struct {
	quote *mdentity.Quote
}

func (m *mockQuoteReader) Latest(ctx context.Context, stockID uint) (*mdentity.Quote, error) {
	return m.quote, nil
}

func (m *mockQuoteReader) LatestIndexQuote(ctx context.Context, indexID uint) (*mdentity.IndexQuote, error) {
	return nil, nil
}

func (m *mockQuoteReader) Recent(ctx context.Context, limit int) ([]mdentity.Quote, error) {
	if m.quote == nil {
		return nil, nil
	}
	return []mdentity.Quote{*m.quote}, nil
}

func (m *mockQuoteReader) CountAll(ctx context.Context) (int64, error) {
	if m.quote == nil {
		return 0, nil
	}
	return 1, nil
}

// mockIngestor is a mock implementation of the Ingestor interface.
type mockIngestor struct {
	quoteCalls  int
	candleCalls int
}

func (m *mockIngestor) FetchQuote(ctx context.Context, stock instentity.Stock) (*mdentity.Quote, error) {
	m.quoteCalls++
	return nil, nil
}

func (m *mockIngestor) FetchCandles(ctx context.Context, stock instentity.Stock, interval, days int) ([]mdentity.Candle, error) {
	m.candleCalls++
	return nil, nil
}

func (m *mockIngestor) FetchIndexQuote(ctx context.Context, index instentity.Index) (*mdentity.IndexQuote, error) {
	return nil, nil
}

func (m *mockIngestor) FetchIndexCandles(ctx context.Context, index instentity.Index, interval, days int) ([]mdentity.IndexCandle, error) {
	return nil, nil
}

// mockSearcher is a mock implementation of the Searcher interface.
type mockSearcher struct {
	results []instentity.Instrument
}

func (m *mockSearcher) Search(ctx context.Context, query string) ([]instentity.Instrument, error) {
	return m.results, nil
}

func setupPagesRouter(h *PagesHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.SetHTMLTemplate(web.Templates())
	r.GET("/", h.Dashboard)
	r.GET("/stocks/:id", h.StockDetail)
	r.GET("/indices/:id", h.IndexDetail)
	r.GET("/search", h.SearchPage)
	return r
}

func testFixtures() (*mockInstrumentReader, *mockCandleReader, *mockQuoteReader, *mockIngestor, *mockSearcher) {
	instruments := &mockInstrumentReader{
		stocks: []instentity.Stock{
			{ID: 1, Symbol: "RELIANCE-EQ", Token: "2885", Exchange: "NSE", CompanyName: "Reliance"},
		},
		indices: []instentity.Index{
			{ID: 2, Symbol: "NIFTY", Token: "26000", Exchange: "NSE", Name: "Nifty 50"},
		},
	}
	candles := &mockCandleReader{
		candles: []mdentity.Candle{
			{ID: 1, StockID: 1, Timestamp: time.Now(), Interval: 5, Open: 100, High: 101, Low: 99, Close: 100.5, Volume: 5000},
		},
	}
	quotes := &mockQuoteReader{
		quote: &mdentity.Quote{ID: 1, StockID: 1, LTP: 100.5, Open: 99, High: 101, Low: 98, CreatedAt: time.Now()},
	}
	return instruments, candles, quotes, &mockIngestor{}, &mockSearcher{}
}

func TestPagesHandler_Dashboard(t *testing.T) {
	instruments, candles, quotes, ingest, search := testFixtures()
	r := setupPagesRouter(NewPagesHandler(instruments, candles, quotes, ingest, search))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "RELIANCE-EQ")
	assert.Contains(t, body, "NIFTY")
	assert.Contains(t, body, "100.50")
	assert.Zero(t, ingest.quoteCalls, "dashboard must not call the vendor")
}

func TestPagesHandler_StockDetail(t *testing.T) {
	t.Run("renders candles and triggers guarded ingestion", func(t *testing.T) {
		instruments, candles, quotes, ingest, search := testFixtures()
		r := setupPagesRouter(NewPagesHandler(instruments, candles, quotes, ingest, search))

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/stocks/1?interval=15", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "RELIANCE-EQ")
		assert.Equal(t, 1, ingest.quoteCalls)
		assert.Equal(t, 1, ingest.candleCalls)
	})

	t.Run("unknown stock is a 404", func(t *testing.T) {
		instruments, candles, quotes, ingest, search := testFixtures()
		r := setupPagesRouter(NewPagesHandler(instruments, candles, quotes, ingest, search))

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/stocks/99", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestPagesHandler_IndexDetail(t *testing.T) {
	t.Run("renders the index page", func(t *testing.T) {
		instruments, candles, quotes, ingest, search := testFixtures()
		r := setupPagesRouter(NewPagesHandler(instruments, candles, quotes, ingest, search))

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/indices/2", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Nifty 50")
	})

	t.Run("full final page has no next link", func(t *testing.T) {
		instruments, candles, quotes, ingest, search := testFixtures()
		for i := 0; i < 50; i++ {
			candles.indexCandles = append(candles.indexCandles, mdentity.IndexCandle{
				ID: uint(i + 1), IndexID: 2,
				Timestamp: time.Now().Add(-time.Duration(i) * 5 * time.Minute),
				Interval:  5, Open: 22000, High: 22100, Low: 21950, Close: 22050,
			})
		}
		r := setupPagesRouter(NewPagesHandler(instruments, candles, quotes, ingest, search))

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/indices/2", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), "Next &raquo;",
			"exactly one full page must not offer a next page")
	})
}

func TestPagesHandler_SearchPage(t *testing.T) {
	t.Run("renders results for a query", func(t *testing.T) {
		instruments, candles, quotes, ingest, _ := testFixtures()
		search := &mockSearcher{
			results: []instentity.Instrument{
				{Kind: instentity.KindStock, ID: 1, Symbol: "TCS-EQ", Token: "11536", Exchange: "NSE", Name: "TCS"},
			},
		}
		r := setupPagesRouter(NewPagesHandler(instruments, candles, quotes, ingest, search))

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/search?q=tcs", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "TCS-EQ")
	})

	t.Run("empty query renders the bare form", func(t *testing.T) {
		instruments, candles, quotes, ingest, search := testFixtures()
		r := setupPagesRouter(NewPagesHandler(instruments, candles, quotes, ingest, search))

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/search", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.False(t, strings.Contains(w.Body.String(), "matched"), "no results table without a query")
	})
}
