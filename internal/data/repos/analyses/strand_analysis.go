package analyses

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/lo-analysis-backend/internal/data/db"
	types "github.com/yungbote/lo-analysis-backend/internal/domain"
	"github.com/yungbote/lo-analysis-backend/internal/platform/dbctx"
	"github.com/yungbote/lo-analysis-backend/internal/platform/logger"
)

type StrandAnalysisRepo interface {
	Create(dbc dbctx.Context, rows []*types.StrandAnalysis) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.StrandAnalysis, error)
	// ListByAnalysis orders by the strand's position in its curriculum.
	ListByAnalysis(dbc dbctx.Context, curriculumAnalysisID uuid.UUID) ([]*types.StrandAnalysis, error)
	IDsByAnalyses(dbc dbctx.Context, curriculumAnalysisIDs []uuid.UUID) ([]uuid.UUID, error)
	IDsByStrands(dbc dbctx.Context, strandIDs []uuid.UUID) ([]uuid.UUID, error)
	DeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error
}

type strandAnalysisRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStrandAnalysisRepo(db *gorm.DB, baseLog *logger.Logger) StrandAnalysisRepo {
	return &strandAnalysisRepo{
		db:  db,
		log: baseLog.With("repo", "StrandAnalysisRepo"),
	}
}

func (r *strandAnalysisRepo) Create(dbc dbctx.Context, rows []*types.StrandAnalysis) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return db.MapError("strand_analysis.create", err)
	}
	return nil
}

func (r *strandAnalysisRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.StrandAnalysis, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out types.StrandAnalysis
	if err := transaction.WithContext(dbc.Ctx).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, db.MapError("strand_analysis.get", err)
	}
	if out.ID == uuid.Nil {
		return nil, types.NotFound("strand_analysis.get", "strand analysis "+id.String())
	}
	return &out, nil
}

func (r *strandAnalysisRepo) ListByAnalysis(dbc dbctx.Context, curriculumAnalysisID uuid.UUID) ([]*types.StrandAnalysis, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.StrandAnalysis
	if err := transaction.WithContext(dbc.Ctx).
		Table("strand_analysis").
		Select("strand_analysis.*").
		Joins("JOIN strand ON strand.id = strand_analysis.strand_id").
		Where("strand_analysis.curriculum_analysis_id = ?", curriculumAnalysisID).
		Order("strand.position ASC").
		Find(&out).Error; err != nil {
		return nil, db.MapError("strand_analysis.list", err)
	}
	return out, nil
}

func (r *strandAnalysisRepo) IDsByAnalyses(dbc dbctx.Context, curriculumAnalysisIDs []uuid.UUID) ([]uuid.UUID, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(curriculumAnalysisIDs) == 0 {
		return nil, nil
	}
	var ids []uuid.UUID
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.StrandAnalysis{}).
		Where("curriculum_analysis_id IN ?", curriculumAnalysisIDs).
		Pluck("id", &ids).Error; err != nil {
		return nil, db.MapError("strand_analysis.ids", err)
	}
	return ids, nil
}

func (r *strandAnalysisRepo) IDsByStrands(dbc dbctx.Context, strandIDs []uuid.UUID) ([]uuid.UUID, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(strandIDs) == 0 {
		return nil, nil
	}
	var ids []uuid.UUID
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.StrandAnalysis{}).
		Where("strand_id IN ?", strandIDs).
		Pluck("id", &ids).Error; err != nil {
		return nil, db.MapError("strand_analysis.ids", err)
	}
	return ids, nil
}

func (r *strandAnalysisRepo) DeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	if err := transaction.WithContext(dbc.Ctx).Where("id IN ?", ids).Delete(&types.StrandAnalysis{}).Error; err != nil {
		return db.MapError("strand_analysis.delete", err)
	}
	return nil
}
