package handler

import (
	"equity-sentry/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

type Handler struct {
	tracer        trace.Tracer
	signalService *service.SignalService
}

func New(tracer trace.Tracer, signalService *service.SignalService) *Handler {
	return &Handler{
		tracer:        tracer,
		signalService: signalService,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.GET("/api/signals", h.ListSignals)
	r.GET("/api/signals/:ticker", h.GetTickerSignals)
	r.GET("/api/bars/:ticker", h.GetBars)
	r.GET("/api/positions", h.GetPositions)
	r.POST("/api/positions/:ticker", h.SetPosition)
	r.GET("/api/risk", h.GetRisk)
}
