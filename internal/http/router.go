package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/lo-analysis-backend/internal/http/handlers"
	httpMW "github.com/yungbote/lo-analysis-backend/internal/http/middleware"
	"github.com/yungbote/lo-analysis-backend/internal/observability"
	"github.com/yungbote/lo-analysis-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	CORSOrigins []string

	CurriculumHandler *httpH.CurriculumHandler
	TaxonomyHandler   *httpH.TaxonomyHandler
	AnalysisHandler   *httpH.AnalysisHandler
	JobHandler        *httpH.JobHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api")
	{
		// Curricula
		if cfg.CurriculumHandler != nil {
			api.POST("/curricula", cfg.CurriculumHandler.CreateCurriculum)
			api.GET("/curricula", cfg.CurriculumHandler.ListCurricula)
			api.GET("/curricula/:id", cfg.CurriculumHandler.GetCurriculum)
			api.DELETE("/curricula/:id", cfg.CurriculumHandler.DeleteCurriculum)
			api.POST("/curricula/:id/strands", cfg.CurriculumHandler.CreateStrand)
			api.GET("/curricula/:id/strands", cfg.CurriculumHandler.ListStrands)
			api.PUT("/strands/:id/text", cfg.CurriculumHandler.SetStrandText)
			api.GET("/strands/:id/learning-outcomes", cfg.CurriculumHandler.ListLearningOutcomes)
		}

		// Taxonomies
		if cfg.TaxonomyHandler != nil {
			api.POST("/taxonomies", cfg.TaxonomyHandler.CreateTaxonomy)
			api.GET("/taxonomies", cfg.TaxonomyHandler.ListTaxonomies)
			api.GET("/taxonomies/:id", cfg.TaxonomyHandler.GetTaxonomy)
			api.POST("/taxonomies/:id/public", cfg.TaxonomyHandler.TogglePublic)
			api.POST("/taxonomies/:id/categories", cfg.TaxonomyHandler.CreateCategory)
			api.GET("/taxonomies/:id/overlap", cfg.TaxonomyHandler.GetOverlap)
			api.GET("/taxonomies/:id/element-counts", cfg.TaxonomyHandler.GetElementCounts)
			api.PUT("/categories/:id", cfg.TaxonomyHandler.UpdateCategory)
			api.DELETE("/categories/:id", cfg.TaxonomyHandler.DeleteCategory)
		}

		// Analyses
		if cfg.AnalysisHandler != nil {
			api.POST("/curricula/:id/analyses", cfg.AnalysisHandler.CreateAnalysis)
			api.POST("/analyses/:id/run", cfg.AnalysisHandler.RunAnalysis)
			api.GET("/analyses/:id/report", cfg.AnalysisHandler.GetReport)
			api.GET("/analyses/:id/non-categorised-verbs", cfg.AnalysisHandler.ListNonCatVerbs)
		}

		// Job
		if cfg.JobHandler != nil {
			api.GET("/jobs/:id", cfg.JobHandler.GetJob)
		}
	}

	return r
}
