package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"equity-sentry/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// ListSignals godoc
// @Summary      List stored trading signals
// @Description  Returns stored signals newest-first, optionally filtered by ticker, type, and age
// @Tags         signals
// @Produce      json
// @Param        ticker  query  string  false  "Ticker filter (e.g., VNM)"
// @Param        type    query  string  false  "Signal type filter (buy, sell, risk_warning)"
// @Param        hours   query  int     false  "Only signals from the last N hours"
// @Param        limit   query  int     false  "Number of signals (default 50, max 200)"  default(50)
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /api/signals [get]
func (h *Handler) ListSignals(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.list-signals")
	defer span.End()

	filter := domain.SignalFilter{Limit: 50}

	if ticker := strings.ToUpper(c.Query("ticker")); ticker != "" {
		if !domain.IsWatched(ticker) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     "unsupported ticker: " + ticker,
				"watchlist": domain.Watchlist,
			})
			return
		}
		filter.Ticker = ticker
	}
	if rawType := c.Query("type"); rawType != "" {
		sigType := domain.SignalType(rawType)
		if !sigType.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported signal type: " + rawType})
			return
		}
		filter.Type = sigType
	}
	if raw := c.Query("hours"); raw != "" {
		if hours, err := strconv.Atoi(raw); err == nil && hours > 0 {
			filter.Since = time.Now().Add(-time.Duration(hours) * time.Hour)
		}
	}
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 200 {
			filter.Limit = n
		}
	}

	signals, err := h.signalService.GetSignals(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"signals": signals, "count": len(signals)})
}

// GetTickerSignals godoc
// @Summary      Get a ticker's latest signals
// @Description  Returns the ticker's most recent scan output, served from cache when warm
// @Tags         signals
// @Produce      json
// @Param        ticker  path  string  true  "Ticker (e.g., VNM)"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /api/signals/{ticker} [get]
func (h *Handler) GetTickerSignals(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-ticker-signals")
	defer span.End()

	ticker := strings.ToUpper(c.Param("ticker"))
	span.SetAttributes(attribute.String("ticker", ticker))

	if !domain.IsWatched(ticker) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "unsupported ticker: " + ticker,
			"watchlist": domain.Watchlist,
		})
		return
	}

	signals, err := h.signalService.LatestSignals(ctx, ticker)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticker": ticker, "signals": signals})
}

// GetBars godoc
// @Summary      Get historical OHLCV bars
// @Description  Returns the ticker's stored bars in ascending time order
// @Tags         bars
// @Produce      json
// @Param        ticker  path   string  true   "Ticker (e.g., VNM)"
// @Param        limit   query  int     false  "Number of bars (default 100, max 500)"  default(100)
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /api/bars/{ticker} [get]
func (h *Handler) GetBars(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-bars")
	defer span.End()

	ticker := strings.ToUpper(c.Param("ticker"))
	span.SetAttributes(attribute.String("ticker", ticker))

	if !domain.IsWatched(ticker) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "unsupported ticker: " + ticker,
			"watchlist": domain.Watchlist,
		})
		return
	}

	limit := 100
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	bars, err := h.signalService.GetBars(ctx, ticker, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticker": ticker, "bars": bars})
}
