package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stockdash/internal/app/web"
	pageshandler "stockdash/internal/feature/dashboard/transport/handler"
	searchhandler "stockdash/internal/feature/instruments/transport/handler"
	mdhandler "stockdash/internal/feature/marketdata/transport/handler"
)

func NewRouter(pages *pageshandler.PagesHandler, refresh *mdhandler.RefreshHandler,
	search *searchhandler.SearchHandler) *gin.Engine {
	r := gin.Default()
	r.SetHTMLTemplate(web.Templates())

	// Liveness probe
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// HTML pages
	r.GET("/", pages.Dashboard)
	r.GET("/stocks/:id", pages.StockDetail)
	r.GET("/indices/:id", pages.IndexDetail)
	r.GET("/search", pages.SearchPage)

	// JSON endpoints backing the in-page refresh
	api := r.Group("/api")
	{
		api.GET("/search", search.Search)
		api.GET("/stocks/:id/quote", refresh.GetQuote)
		api.GET("/stocks/:id/ohlc", refresh.GetCandles)
		api.POST("/stocks/:id/refresh", refresh.RefreshStock)
		api.POST("/indices/:id/refresh", refresh.RefreshIndex)
	}

	return r
}
