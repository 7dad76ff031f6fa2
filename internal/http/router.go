package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/alcmdbackup/explainanythingbackup-sub001/internal/http/handlers"
	httpMW "github.com/alcmdbackup/explainanythingbackup-sub001/internal/http/middleware"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/observability"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/platform/logger"
)

type RouterConfig struct {
	Log     *logger.Logger
	Metrics *observability.Metrics

	// OtelServiceName mounts the otelgin middleware when non-empty.
	OtelServiceName string

	DictionaryHandler  *httpH.DictionaryHandler
	ExplanationHandler *httpH.ExplanationHandler
	OverrideHandler    *httpH.OverrideHandler
	HealthHandler      *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.CORS())
	if cfg.OtelServiceName != "" {
		r.Use(otelgin.Middleware(cfg.OtelServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	if cfg.Log != nil {
		r.Use(httpMW.RequestLogger(cfg.Log))
	}
	if cfg.Metrics != nil {
		r.Use(httpMW.Metrics(cfg.Metrics))
	}

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Dictionary administration
		if cfg.DictionaryHandler != nil {
			api.POST("/terms", cfg.DictionaryHandler.CreateTerm)
			api.GET("/terms", cfg.DictionaryHandler.ListTerms)
			api.GET("/terms/:id", cfg.DictionaryHandler.GetTerm)
			api.PATCH("/terms/:id", cfg.DictionaryHandler.UpdateTerm)
			api.DELETE("/terms/:id", cfg.DictionaryHandler.DeleteTerm)
			api.POST("/terms/:id/aliases", cfg.DictionaryHandler.AddAlias)
			api.DELETE("/aliases/:id", cfg.DictionaryHandler.DeleteAlias)
			api.GET("/dictionary/snapshot", cfg.DictionaryHandler.GetSnapshot)
			api.POST("/dictionary/rebuild", cfg.DictionaryHandler.RebuildSnapshot)
		}

		// Explanations
		if cfg.ExplanationHandler != nil {
			api.POST("/explanations", cfg.ExplanationHandler.Create)
			api.GET("/explanations", cfg.ExplanationHandler.List)
			api.GET("/explanations/:id", cfg.ExplanationHandler.Get)
			api.PATCH("/explanations/:id", cfg.ExplanationHandler.Update)
			api.PUT("/explanations/:id/content", cfg.ExplanationHandler.UpdateContent)
			api.DELETE("/explanations/:id", cfg.ExplanationHandler.Delete)
			api.GET("/explanations/:id/rendered", cfg.ExplanationHandler.Render)
			api.GET("/explanations/:id/links", cfg.ExplanationHandler.Links)
			api.POST("/explanations/:id/heading-links/rebuild", cfg.ExplanationHandler.RebuildHeadingLinks)
		}

		// Overrides
		if cfg.OverrideHandler != nil {
			api.PUT("/explanations/:id/overrides", cfg.OverrideHandler.Put)
			api.GET("/explanations/:id/overrides", cfg.OverrideHandler.List)
			api.DELETE("/explanations/:id/overrides/:term", cfg.OverrideHandler.Delete)
		}
	}

	return r
}
