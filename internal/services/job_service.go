package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/lo-analysis-backend/internal/data/repos"
	types "github.com/yungbote/lo-analysis-backend/internal/domain"
	jobstatus "github.com/yungbote/lo-analysis-backend/internal/domain/jobs"
	"github.com/yungbote/lo-analysis-backend/internal/platform/ctxutil"
	"github.com/yungbote/lo-analysis-backend/internal/platform/dbctx"
	"github.com/yungbote/lo-analysis-backend/internal/platform/logger"
)

// Fan-out modes of a curriculum_analysis job.
const (
	FanoutInline = "inline"
	FanoutChild  = "child"
)

func ParseFanout(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", FanoutInline:
		return FanoutInline, nil
	case FanoutChild:
		return FanoutChild, nil
	default:
		return "", types.Validation("config.fanout", fmt.Sprintf("unknown fan-out mode %q", s))
	}
}

type JobConfig struct {
	MaxAttempts int
	Fanout      string
}

type ChildSummary struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Running   int `json:"running"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// JobView is a job run as reported to callers: Status is one of
// pending|running|succeeded|failed.
type JobView struct {
	ID         uuid.UUID      `json:"id"`
	JobType    string         `json:"job_type"`
	EntityType string         `json:"entity_type,omitempty"`
	EntityID   *uuid.UUID     `json:"entity_id,omitempty"`
	Status     string         `json:"status"`
	Stage      string         `json:"stage"`
	Progress   int            `json:"progress"`
	Attempts   int            `json:"attempts"`
	Message    string         `json:"message,omitempty"`
	Error      string         `json:"error,omitempty"`
	Result     datatypes.JSON `json:"result,omitempty"`
	Children   *ChildSummary  `json:"children,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

type JobService interface {
	Enqueue(dbc dbctx.Context, parentID *uuid.UUID, jobType string, entityType string, entityID *uuid.UUID, payload map[string]any) (*types.JobRun, error)
	// EnqueueAnalysis queues a curriculum_analysis run. When one is already
	// queued or running for the analysis it is returned with created=false.
	EnqueueAnalysis(dbc dbctx.Context, analysisID uuid.UUID) (job *types.JobRun, created bool, err error)
	GetStatus(dbc dbctx.Context, jobID uuid.UUID) (*JobView, error)
	GetLatestForAnalysis(dbc dbctx.Context, analysisID uuid.UUID) (*JobView, error)
	Events(dbc dbctx.Context, jobID uuid.UUID, limit int) ([]*types.JobRunEvent, error)
}

type jobService struct {
	log    *logger.Logger
	repos  repos.Set
	notify JobNotifier
	cfg    JobConfig
}

func NewJobService(baseLog *logger.Logger, set repos.Set, notify JobNotifier, cfg JobConfig) JobService {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.Fanout == "" {
		cfg.Fanout = FanoutInline
	}
	return &jobService{
		log:    baseLog.With("service", "JobService"),
		repos:  set,
		notify: notify,
		cfg:    cfg,
	}
}

func (s *jobService) Enqueue(dbc dbctx.Context, parentID *uuid.UUID, jobType string, entityType string, entityID *uuid.UUID, payload map[string]any) (*types.JobRun, error) {
	if jobType == "" {
		return nil, types.Validation("job.enqueue", "missing job_type")
	}
	if payload == nil {
		payload = map[string]any{}
	}
	if td := ctxutil.GetTraceData(dbc.Ctx); td != nil {
		if _, ok := payload["trace_id"]; !ok && td.TraceID != "" {
			payload["trace_id"] = td.TraceID
		}
		if _, ok := payload["request_id"]; !ok && td.RequestID != "" {
			payload["request_id"] = td.RequestID
		}
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode job payload: %w", err)
	}
	now := time.Now().UTC()
	job := &types.JobRun{
		ID:          uuid.New(),
		ParentJobID: parentID,
		JobType:     jobType,
		EntityType:  entityType,
		EntityID:    entityID,
		Status:      jobstatus.StatusQueued,
		Stage:       jobstatus.StageQueued,
		Message:     "Queued",
		AvailableAt: &now,
		Payload:     datatypes.JSON(b),
		Result:      datatypes.JSON([]byte(`{}`)),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.repos.JobRuns.Create(dbc, []*types.JobRun{job}); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	// Inside a caller's transaction the row is not visible yet; the event
	// would reference an uncommitted job.
	if isDBTransaction(dbc.Tx) {
		s.log.Debug("Job enqueued inside transaction; skipping created event", "job_id", job.ID, "job_type", job.JobType)
		return job, nil
	}
	s.notify.JobCreated(job)
	return job, nil
}

type txCommitter interface {
	Commit() error
	Rollback() error
}

// gorm.DB handles are cloned freely, so pointer comparison does not tell a
// transaction apart from the root handle; the conn pool type does.
func isDBTransaction(db *gorm.DB) bool {
	if db == nil || db.Statement == nil || db.Statement.ConnPool == nil {
		return false
	}
	_, ok := db.Statement.ConnPool.(txCommitter)
	return ok
}

func (s *jobService) EnqueueAnalysis(dbc dbctx.Context, analysisID uuid.UUID) (*types.JobRun, bool, error) {
	if _, err := s.repos.Analyses.GetByID(dbc, analysisID); err != nil {
		return nil, false, err
	}
	busy, err := s.repos.JobRuns.HasRunnableForEntity(dbc, types.EntityCurriculumAnalysis, analysisID, types.JobTypeCurriculumAnalysis)
	if err != nil {
		return nil, false, err
	}
	if busy {
		job, err := s.repos.JobRuns.GetLatestByEntity(dbc, types.EntityCurriculumAnalysis, analysisID, types.JobTypeCurriculumAnalysis)
		if err != nil {
			return nil, false, err
		}
		if job != nil {
			return job, false, nil
		}
	}
	entityID := analysisID
	job, err := s.Enqueue(dbc, nil, types.JobTypeCurriculumAnalysis, types.EntityCurriculumAnalysis, &entityID, map[string]any{
		"analysis_id": analysisID.String(),
		"fanout":      s.cfg.Fanout,
	})
	if err != nil {
		return nil, false, err
	}
	s.log.Info("Analysis run enqueued", "analysis_id", analysisID, "job_id", job.ID, "fanout", s.cfg.Fanout)
	return job, true, nil
}

func (s *jobService) GetStatus(dbc dbctx.Context, jobID uuid.UUID) (*JobView, error) {
	if jobID == uuid.Nil {
		return nil, types.Validation("job.get", "missing job id")
	}
	job, err := s.repos.JobRuns.GetByID(dbc, jobID)
	if err != nil {
		return nil, err
	}
	return s.view(dbc, job)
}

func (s *jobService) GetLatestForAnalysis(dbc dbctx.Context, analysisID uuid.UUID) (*JobView, error) {
	if _, err := s.repos.Analyses.GetByID(dbc, analysisID); err != nil {
		return nil, err
	}
	job, err := s.repos.JobRuns.GetLatestByEntity(dbc, types.EntityCurriculumAnalysis, analysisID, types.JobTypeCurriculumAnalysis)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, types.NotFound("job.latest", "job for analysis "+analysisID.String())
	}
	return s.view(dbc, job)
}

func (s *jobService) Events(dbc dbctx.Context, jobID uuid.UUID, limit int) ([]*types.JobRunEvent, error) {
	if _, err := s.repos.JobRuns.GetByID(dbc, jobID); err != nil {
		return nil, err
	}
	return s.repos.JobRunEvents.ListByJob(dbc, jobID, limit)
}

func (s *jobService) view(dbc dbctx.Context, job *types.JobRun) (*JobView, error) {
	v := &JobView{
		ID:         job.ID,
		JobType:    job.JobType,
		EntityType: job.EntityType,
		EntityID:   job.EntityID,
		Status:     jobstatus.PublicStatus(job, s.cfg.MaxAttempts),
		Stage:      job.Stage,
		Progress:   job.Progress,
		Attempts:   job.Attempts,
		Message:    job.Message,
		Error:      job.Error,
		Result:     job.Result,
		CreatedAt:  job.CreatedAt,
		UpdatedAt:  job.UpdatedAt,
	}
	children, err := s.repos.JobRuns.ListByParent(dbc, job.ID)
	if err != nil {
		return nil, err
	}
	if len(children) > 0 {
		sum := SummarizeChildren(children, s.cfg.MaxAttempts)
		v.Children = &sum
	}
	return v, nil
}

// SummarizeChildren buckets child runs by their reported status.
func SummarizeChildren(children []*types.JobRun, maxAttempts int) ChildSummary {
	sum := ChildSummary{Total: len(children)}
	for _, c := range children {
		switch jobstatus.PublicStatus(c, maxAttempts) {
		case jobstatus.StatusPending:
			sum.Pending++
		case jobstatus.StatusRunning:
			sum.Running++
		case jobstatus.StatusSucceeded:
			sum.Succeeded++
		case jobstatus.StatusFailed:
			sum.Failed++
		}
	}
	return sum
}
