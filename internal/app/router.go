package app

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/lo-analysis-backend/internal/http"
	"github.com/yungbote/lo-analysis-backend/internal/observability"
	"github.com/yungbote/lo-analysis-backend/internal/platform/logger"
)

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers, metrics *observability.Metrics) *gin.Engine {
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.ServiceName
	}
	return http.NewRouter(http.RouterConfig{
		Log:               log,
		Metrics:           metrics,
		ServiceName:       serviceName,
		CORSOrigins:       cfg.CORSOrigins,
		HealthHandler:     handlers.Health,
		CurriculumHandler: handlers.Curriculum,
		TaxonomyHandler:   handlers.Taxonomy,
		AnalysisHandler:   handlers.Analysis,
		JobHandler:        handlers.Job,
	})
}
