package curricula

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/lo-analysis-backend/internal/data/db"
	types "github.com/yungbote/lo-analysis-backend/internal/domain"
	"github.com/yungbote/lo-analysis-backend/internal/domain/curriculum"
	"github.com/yungbote/lo-analysis-backend/internal/platform/dbctx"
	"github.com/yungbote/lo-analysis-backend/internal/platform/logger"
)

type LearningOutcomeRepo interface {
	ListByStrand(dbc dbctx.Context, strandID uuid.UUID) ([]*types.LearningOutcome, error)
	CountByStrand(dbc dbctx.Context, strandID uuid.UUID) (int64, error)
	CountByStrands(dbc dbctx.Context, strandIDs []uuid.UUID) (int64, error)
	// ApplyPlan writes a reconciliation produced by curriculum.PlanOutcomes.
	ApplyPlan(dbc dbctx.Context, plan curriculum.OutcomePlan) error
	DeleteByStrands(dbc dbctx.Context, strandIDs []uuid.UUID) error
}

type learningOutcomeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLearningOutcomeRepo(db *gorm.DB, baseLog *logger.Logger) LearningOutcomeRepo {
	return &learningOutcomeRepo{
		db:  db,
		log: baseLog.With("repo", "LearningOutcomeRepo"),
	}
}

func (r *learningOutcomeRepo) ListByStrand(dbc dbctx.Context, strandID uuid.UUID) ([]*types.LearningOutcome, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.LearningOutcome
	if err := transaction.WithContext(dbc.Ctx).
		Where("strand_id = ?", strandID).
		Order("lo_index ASC").
		Find(&out).Error; err != nil {
		return nil, db.MapError("learning_outcome.list", err)
	}
	return out, nil
}

func (r *learningOutcomeRepo) CountByStrand(dbc dbctx.Context, strandID uuid.UUID) (int64, error) {
	return r.CountByStrands(dbc, []uuid.UUID{strandID})
}

func (r *learningOutcomeRepo) CountByStrands(dbc dbctx.Context, strandIDs []uuid.UUID) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(strandIDs) == 0 {
		return 0, nil
	}
	var n int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.LearningOutcome{}).
		Where("strand_id IN ?", strandIDs).
		Count(&n).Error; err != nil {
		return 0, db.MapError("learning_outcome.count", err)
	}
	return n, nil
}

func (r *learningOutcomeRepo) ApplyPlan(dbc dbctx.Context, plan curriculum.OutcomePlan) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(dbc.Ctx)
	if len(plan.Remove) > 0 {
		ids := make([]uuid.UUID, 0, len(plan.Remove))
		for _, lo := range plan.Remove {
			ids = append(ids, lo.ID)
		}
		if err := q.Where("id IN ?", ids).Delete(&types.LearningOutcome{}).Error; err != nil {
			return db.MapError("learning_outcome.apply_plan", err)
		}
	}
	for _, lo := range plan.Keep {
		if err := q.Model(&types.LearningOutcome{}).
			Where("id = ?", lo.ID).
			Update("lo_index", lo.Index).Error; err != nil {
			return db.MapError("learning_outcome.apply_plan", err)
		}
	}
	if len(plan.Create) > 0 {
		if err := q.Create(&plan.Create).Error; err != nil {
			return db.MapError("learning_outcome.apply_plan", err)
		}
	}
	return nil
}

func (r *learningOutcomeRepo) DeleteByStrands(dbc dbctx.Context, strandIDs []uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(strandIDs) == 0 {
		return nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("strand_id IN ?", strandIDs).
		Delete(&types.LearningOutcome{}).Error; err != nil {
		return db.MapError("learning_outcome.delete", err)
	}
	return nil
}
