package services

import (
	"context"
	"time"

	"github.com/yungbote/lo-analysis-backend/internal/clients/redis"
	"github.com/yungbote/lo-analysis-backend/internal/data/repos"
	types "github.com/yungbote/lo-analysis-backend/internal/domain"
	"github.com/yungbote/lo-analysis-backend/internal/platform/dbctx"
	"github.com/yungbote/lo-analysis-backend/internal/platform/logger"
)

type JobNotifier interface {
	JobCreated(job *types.JobRun)
	JobProgress(job *types.JobRun, stage string, progress int, message string)
	JobFailed(job *types.JobRun, stage string, errorMessage string)
	JobDone(job *types.JobRun)
}

// jobNotifier records every lifecycle event in job_run_event and, when a
// bus is configured, publishes it. Notification failures are logged and
// never fail the job.
type jobNotifier struct {
	log    *logger.Logger
	events repos.JobRunEventRepo
	bus    redis.JobBus
}

// NewJobNotifier accepts a nil events repo or bus.
func NewJobNotifier(baseLog *logger.Logger, events repos.JobRunEventRepo, bus redis.JobBus) JobNotifier {
	return &jobNotifier{
		log:    baseLog.With("component", "JobNotifier"),
		events: events,
		bus:    bus,
	}
}

func (n *jobNotifier) JobCreated(job *types.JobRun) {
	n.emit(types.JobEventCreated, job, "")
}

func (n *jobNotifier) JobProgress(job *types.JobRun, stage string, progress int, message string) {
	n.emit(types.JobEventProgress, job, message)
}

func (n *jobNotifier) JobFailed(job *types.JobRun, stage string, errorMessage string) {
	n.emit(types.JobEventFailed, job, errorMessage)
}

func (n *jobNotifier) JobDone(job *types.JobRun) {
	n.emit(types.JobEventSucceeded, job, "")
}

func (n *jobNotifier) emit(kind types.JobEventKind, job *types.JobRun, message string) {
	if job == nil {
		return
	}
	ev := types.NewJobEvent(kind, job, message)
	n.log.Debug("Job event",
		"kind", kind,
		"job_id", job.ID,
		"job_type", job.JobType,
		"status", job.Status,
		"stage", job.Stage,
		"progress", job.Progress,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if n.events != nil {
		if err := n.events.Create(dbctx.Context{Ctx: ctx}, ev); err != nil {
			n.log.Warn("Job event write failed", "job_id", job.ID, "kind", kind, "error", err)
		}
	}
	if n.bus != nil {
		if err := n.bus.Publish(ctx, ev); err != nil {
			n.log.Warn("Job event publish failed", "job_id", job.ID, "kind", kind, "error", err)
		}
	}
}
