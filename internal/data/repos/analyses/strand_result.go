package analyses

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/lo-analysis-backend/internal/data/db"
	types "github.com/yungbote/lo-analysis-backend/internal/domain"
	"github.com/yungbote/lo-analysis-backend/internal/platform/dbctx"
	"github.com/yungbote/lo-analysis-backend/internal/platform/logger"
)

// StrandResultRepo stores the strand-level aggregates. Each Replace call
// deletes the previous rows of that kind for the strand analysis first.
type StrandResultRepo interface {
	ReplaceHitCounts(dbc dbctx.Context, strandAnalysisID uuid.UUID, rows []*types.StrandCategoryHitCount) error
	ReplaceDiversities(dbc dbctx.Context, strandAnalysisID uuid.UUID, rows []*types.StrandCategoryDiversity) error
	ReplaceAverage(dbc dbctx.Context, strandAnalysisID uuid.UUID, row *types.StrandAverage) error
	DeleteAverage(dbc dbctx.Context, strandAnalysisID uuid.UUID) error

	HitCounts(dbc dbctx.Context, strandAnalysisIDs []uuid.UUID) ([]*types.StrandCategoryHitCount, error)
	Diversities(dbc dbctx.Context, strandAnalysisIDs []uuid.UUID) ([]*types.StrandCategoryDiversity, error)
	Averages(dbc dbctx.Context, strandAnalysisIDs []uuid.UUID) ([]*types.StrandAverage, error)

	DeleteByStrandAnalyses(dbc dbctx.Context, strandAnalysisIDs []uuid.UUID) error
}

type strandResultRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStrandResultRepo(db *gorm.DB, baseLog *logger.Logger) StrandResultRepo {
	return &strandResultRepo{
		db:  db,
		log: baseLog.With("repo", "StrandResultRepo"),
	}
}

func (r *strandResultRepo) ReplaceHitCounts(dbc dbctx.Context, strandAnalysisID uuid.UUID, rows []*types.StrandCategoryHitCount) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(dbc.Ctx)
	if err := q.Where("strand_analysis_id = ?", strandAnalysisID).Delete(&types.StrandCategoryHitCount{}).Error; err != nil {
		return db.MapError("strand_hit_count.replace", err)
	}
	if len(rows) == 0 {
		return nil
	}
	for _, row := range rows {
		row.StrandAnalysisID = strandAnalysisID
	}
	if err := q.Create(&rows).Error; err != nil {
		return db.MapError("strand_hit_count.replace", err)
	}
	return nil
}

func (r *strandResultRepo) ReplaceDiversities(dbc dbctx.Context, strandAnalysisID uuid.UUID, rows []*types.StrandCategoryDiversity) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(dbc.Ctx)
	if err := q.Where("strand_analysis_id = ?", strandAnalysisID).Delete(&types.StrandCategoryDiversity{}).Error; err != nil {
		return db.MapError("strand_diversity.replace", err)
	}
	if len(rows) == 0 {
		return nil
	}
	for _, row := range rows {
		row.StrandAnalysisID = strandAnalysisID
	}
	if err := q.Create(&rows).Error; err != nil {
		return db.MapError("strand_diversity.replace", err)
	}
	return nil
}

func (r *strandResultRepo) ReplaceAverage(dbc dbctx.Context, strandAnalysisID uuid.UUID, row *types.StrandAverage) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if err := r.DeleteAverage(dbc, strandAnalysisID); err != nil {
		return err
	}
	row.StrandAnalysisID = strandAnalysisID
	if err := transaction.WithContext(dbc.Ctx).Create(row).Error; err != nil {
		return db.MapError("strand_average.replace", err)
	}
	return nil
}

func (r *strandResultRepo) DeleteAverage(dbc dbctx.Context, strandAnalysisID uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("strand_analysis_id = ?", strandAnalysisID).
		Delete(&types.StrandAverage{}).Error; err != nil {
		return db.MapError("strand_average.delete", err)
	}
	return nil
}

func (r *strandResultRepo) HitCounts(dbc dbctx.Context, strandAnalysisIDs []uuid.UUID) ([]*types.StrandCategoryHitCount, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.StrandCategoryHitCount
	if len(strandAnalysisIDs) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("strand_analysis_id IN ?", strandAnalysisIDs).
		Find(&out).Error; err != nil {
		return nil, db.MapError("strand_hit_count.list", err)
	}
	return out, nil
}

func (r *strandResultRepo) Diversities(dbc dbctx.Context, strandAnalysisIDs []uuid.UUID) ([]*types.StrandCategoryDiversity, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.StrandCategoryDiversity
	if len(strandAnalysisIDs) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("strand_analysis_id IN ?", strandAnalysisIDs).
		Order("num_categories ASC").
		Find(&out).Error; err != nil {
		return nil, db.MapError("strand_diversity.list", err)
	}
	return out, nil
}

func (r *strandResultRepo) Averages(dbc dbctx.Context, strandAnalysisIDs []uuid.UUID) ([]*types.StrandAverage, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.StrandAverage
	if len(strandAnalysisIDs) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("strand_analysis_id IN ?", strandAnalysisIDs).
		Find(&out).Error; err != nil {
		return nil, db.MapError("strand_average.list", err)
	}
	return out, nil
}

func (r *strandResultRepo) DeleteByStrandAnalyses(dbc dbctx.Context, strandAnalysisIDs []uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(strandAnalysisIDs) == 0 {
		return nil
	}
	q := transaction.WithContext(dbc.Ctx)
	for _, model := range []interface{}{
		&types.StrandCategoryHitCount{},
		&types.StrandCategoryDiversity{},
		&types.StrandAverage{},
	} {
		if err := q.Where("strand_analysis_id IN ?", strandAnalysisIDs).Delete(model).Error; err != nil {
			return db.MapError("strand_result.delete", err)
		}
	}
	return nil
}
