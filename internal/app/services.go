package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/lo-analysis-backend/internal/analysis"
	"github.com/yungbote/lo-analysis-backend/internal/data/db"
	"github.com/yungbote/lo-analysis-backend/internal/data/repos"
	"github.com/yungbote/lo-analysis-backend/internal/jobs/orchestrator"
	"github.com/yungbote/lo-analysis-backend/internal/jobs/pipeline/curriculum_analysis"
	"github.com/yungbote/lo-analysis-backend/internal/jobs/pipeline/strand_analysis"
	jobruntime "github.com/yungbote/lo-analysis-backend/internal/jobs/runtime"
	"github.com/yungbote/lo-analysis-backend/internal/jobs/worker"
	"github.com/yungbote/lo-analysis-backend/internal/lexicon"
	"github.com/yungbote/lo-analysis-backend/internal/platform/logger"
	"github.com/yungbote/lo-analysis-backend/internal/services"
)

type Services struct {
	Taxonomies services.TaxonomyService
	Curricula  services.CurriculumService
	Analyses   services.AnalysisService
	Jobs       services.JobService
	Notifier   services.JobNotifier

	JobRegistry *jobruntime.Registry
	JobWorker   *worker.Worker
}

func wireServices(theDB *gorm.DB, log *logger.Logger, cfg Config, set repos.Set, clients Clients) (Services, error) {
	log.Info("Wiring services...")
	tx := db.NewTxRunner(theDB)

	taxonomies := services.NewTaxonomyService(log, tx, set, lexicon.ParseMalformedPolicy(cfg.Analysis.MalformedTokenPolicy))
	curricula := services.NewCurriculumService(log, tx, set)
	analyses := services.NewAnalysisService(log, tx, set, taxonomies, analysis.NewAnalyzer(clients.Tokenizer), services.AnalysisConfig{
		StrandConcurrency: cfg.Analysis.StrandConcurrency,
		EmptyStrandPolicy: analysis.ParseEmptyStrandPolicy(cfg.Analysis.EmptyStrandPolicy),
	})
	notifier := services.NewJobNotifier(log, set.JobRunEvents, clients.JobBus)
	jobs := services.NewJobService(log, set, notifier, services.JobConfig{
		MaxAttempts: cfg.Worker.MaxAttempts,
		Fanout:      cfg.Analysis.Fanout,
	})

	// Job registry
	fan := &orchestrator.FanOut{
		Children:     jobs,
		Tx:           tx,
		MaxAttempts:  cfg.Worker.MaxAttempts,
		PollInterval: cfg.Worker.PollInterval,
	}
	jobRegistry, err := jobruntime.NewRegistry(
		curriculum_analysis.New(log, analyses, fan, cfg.Analysis.Fanout),
		strand_analysis.New(log, analyses),
	)
	if err != nil {
		return Services{}, fmt.Errorf("register job handlers: %w", err)
	}

	jobWorker := worker.NewWorker(log, set.JobRuns, jobRegistry, notifier, worker.Config{
		Concurrency:  cfg.Worker.Concurrency,
		PollInterval: cfg.Worker.PollInterval,
		MaxAttempts:  cfg.Worker.MaxAttempts,
		RetryDelay:   cfg.Worker.RetryDelay,
		StaleRunning: cfg.Worker.StaleRunning,
	})

	return Services{
		Taxonomies:  taxonomies,
		Curricula:   curricula,
		Analyses:    analyses,
		Jobs:        jobs,
		Notifier:    notifier,
		JobRegistry: jobRegistry,
		JobWorker:   jobWorker,
	}, nil
}
