package app

import (
	"gorm.io/gorm"

	httpH "github.com/yungbote/lo-analysis-backend/internal/http/handlers"
	"github.com/yungbote/lo-analysis-backend/internal/platform/logger"
)

type Handlers struct {
	Health     *httpH.HealthHandler
	Curriculum *httpH.CurriculumHandler
	Taxonomy   *httpH.TaxonomyHandler
	Analysis   *httpH.AnalysisHandler
	Job        *httpH.JobHandler
}

func wireHandlers(log *logger.Logger, theDB *gorm.DB, services Services) Handlers {
	log.Info("Wiring handlers...")
	var pinger httpH.Pinger
	if sqlDB, err := theDB.DB(); err == nil {
		pinger = sqlDB
	}
	return Handlers{
		Health:     httpH.NewHealthHandler(pinger),
		Curriculum: httpH.NewCurriculumHandler(log, services.Curricula),
		Taxonomy:   httpH.NewTaxonomyHandler(log, services.Taxonomies),
		Analysis:   httpH.NewAnalysisHandler(log, services.Analyses, services.Jobs),
		Job:        httpH.NewJobHandler(services.Jobs),
	}
}
