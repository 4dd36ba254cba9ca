package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockdash/internal/feature/instruments/domain/entity"
	"stockdash/internal/feature/instruments/transport/http/dto"
)

// mockSearchUsecase is a mock implementation of the SearchUsecase interface.
type mockSearchUsecase struct {
	SearchFunc func(ctx context.Context, query string) ([]entity.Instrument, error)
}

func (m *mockSearchUsecase) Search(ctx context.Context, query string) ([]entity.Instrument, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, query)
	}
	return nil, nil
}

func setupRouter(uc *mockSearchUsecase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/search", NewSearchHandler(uc).Search)
	return r
}

func TestSearchHandler_Search(t *testing.T) {
	t.Run("returns resolved instruments", func(t *testing.T) {
		uc := &mockSearchUsecase{
			SearchFunc: func(ctx context.Context, query string) ([]entity.Instrument, error) {
				assert.Equal(t, "reliance", query)
				return []entity.Instrument{
					{Kind: entity.KindStock, ID: 1, Symbol: "RELIANCE-EQ", Token: "2885", Exchange: "NSE", Name: "Reliance"},
				}, nil
			},
		}
		r := setupRouter(uc)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/api/search?q=reliance", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var res dto.SearchResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.True(t, res.Success)
		require.Len(t, res.Results, 1)
		assert.Equal(t, "stock", res.Results[0].Kind)
		assert.Equal(t, "2885", res.Results[0].Token)
	})

	t.Run("missing query is a 400", func(t *testing.T) {
		r := setupRouter(&mockSearchUsecase{})

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/api/search", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("failure with no results reports success false", func(t *testing.T) {
		uc := &mockSearchUsecase{
			SearchFunc: func(ctx context.Context, query string) ([]entity.Instrument, error) {
				return nil, errors.New("vendor offline")
			},
		}
		r := setupRouter(uc)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/api/search?q=tcs", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var res dto.SearchResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.False(t, res.Success)
	})

	t.Run("partial failure with stored results still succeeds", func(t *testing.T) {
		uc := &mockSearchUsecase{
			SearchFunc: func(ctx context.Context, query string) ([]entity.Instrument, error) {
				return []entity.Instrument{
					{Kind: entity.KindIndex, ID: 2, Symbol: "NIFTY", Token: "26000", Exchange: "NSE", Name: "Nifty 50"},
				}, errors.New("live search failed")
			},
		}
		r := setupRouter(uc)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/api/search?q=nifty", nil)
		r.ServeHTTP(w, req)

		var res dto.SearchResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.True(t, res.Success, "stored matches survive a vendor failure")
		require.Len(t, res.Results, 1)
		assert.Equal(t, "index", res.Results[0].Kind)
	})
}
