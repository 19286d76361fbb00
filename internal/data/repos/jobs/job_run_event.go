package jobs

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/lo-analysis-backend/internal/data/db"
	types "github.com/yungbote/lo-analysis-backend/internal/domain"
	"github.com/yungbote/lo-analysis-backend/internal/platform/dbctx"
	"github.com/yungbote/lo-analysis-backend/internal/platform/logger"
)

type JobRunEventRepo interface {
	Create(dbc dbctx.Context, ev *types.JobRunEvent) error
	ListByJob(dbc dbctx.Context, jobID uuid.UUID, limit int) ([]*types.JobRunEvent, error)
}

type jobRunEventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewJobRunEventRepo(db *gorm.DB, baseLog *logger.Logger) JobRunEventRepo {
	return &jobRunEventRepo{
		db:  db,
		log: baseLog.With("repo", "JobRunEventRepo"),
	}
}

func (r *jobRunEventRepo) Create(dbc dbctx.Context, ev *types.JobRunEvent) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if ev == nil {
		return nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(ev).Error; err != nil {
		return db.MapError("job_run_event.create", err)
	}
	return nil
}

func (r *jobRunEventRepo) ListByJob(dbc dbctx.Context, jobID uuid.UUID, limit int) ([]*types.JobRunEvent, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 {
		limit = 100
	}
	var out []*types.JobRunEvent
	if err := transaction.WithContext(dbc.Ctx).
		Where("job_id = ?", jobID).
		Order("created_at ASC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, db.MapError("job_run_event.list", err)
	}
	return out, nil
}
