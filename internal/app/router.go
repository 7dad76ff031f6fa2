package app

import (
	"github.com/gin-gonic/gin"

	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/http"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/observability"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/platform/logger"
)

func wireRouter(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers) *gin.Engine {
	otelService := ""
	if observability.TracingEnabled() {
		otelService = cfg.ServiceName
	}
	return http.NewRouter(http.RouterConfig{
		Log:                log,
		Metrics:            metrics,
		OtelServiceName:    otelService,
		HealthHandler:      handlers.Health,
		DictionaryHandler:  handlers.Dictionary,
		ExplanationHandler: handlers.Explanation,
		OverrideHandler:    handlers.Override,
	})
}
