package handler

import (
	"net/http"
	"strings"
	"time"

	"equity-sentry/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// GetPositions godoc
// @Summary      Get per-ticker strategy states
// @Description  Returns the live position lifecycle record for every tracked ticker
// @Tags         positions
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/positions [get]
func (h *Handler) GetPositions(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.get-positions")
	defer span.End()

	c.JSON(http.StatusOK, gin.H{"positions": h.signalService.Positions()})
}

type setPositionRequest struct {
	Status     string    `json:"status" binding:"required"`
	EntryPrice float64   `json:"entry_price"`
	EntryTime  time.Time `json:"entry_time"`
}

// SetPosition godoc
// @Summary      Record an execution acknowledgement
// @Description  Transitions the ticker's position state after an order was actually executed
// @Tags         positions
// @Accept       json
// @Produce      json
// @Param        ticker  path  string              true  "Ticker (e.g., VNM)"
// @Param        body    body  setPositionRequest  true  "New position state"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /api/positions/{ticker} [post]
func (h *Handler) SetPosition(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.set-position")
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

	var req setPositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	at := req.EntryTime
	if at.IsZero() {
		at = time.Now().UTC()
	}
	if err := h.signalService.SetPosition(c.Request.Context(), ticker, domain.PositionStatus(req.Status), req.EntryPrice, at); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticker": ticker, "status": req.Status})
}

// GetRisk godoc
// @Summary      Get the portfolio risk snapshot
// @Description  Returns derived risk metrics and any active warnings
// @Tags         risk
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/risk [get]
func (h *Handler) GetRisk(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.get-risk")
	defer span.End()

	metrics, warnings := h.signalService.RiskReport()
	c.JSON(http.StatusOK, gin.H{"metrics": metrics, "warnings": warnings})
}
