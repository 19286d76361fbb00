package analyses

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/lo-analysis-backend/internal/data/db"
	types "github.com/yungbote/lo-analysis-backend/internal/domain"
	"github.com/yungbote/lo-analysis-backend/internal/platform/dbctx"
	"github.com/yungbote/lo-analysis-backend/internal/platform/logger"
)

type CurriculumAnalysisRepo interface {
	Create(dbc dbctx.Context, a *types.CurriculumAnalysis) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.CurriculumAnalysis, error)
	ListByCurriculum(dbc dbctx.Context, curriculumID uuid.UUID) ([]*types.CurriculumAnalysis, error)
	IDsByTaxonomy(dbc dbctx.Context, taxonomyID uuid.UUID) ([]uuid.UUID, error)
	CountByCurriculum(dbc dbctx.Context, curriculumID uuid.UUID) (int64, error)
	Touch(dbc dbctx.Context, id uuid.UUID) error
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type curriculumAnalysisRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCurriculumAnalysisRepo(db *gorm.DB, baseLog *logger.Logger) CurriculumAnalysisRepo {
	return &curriculumAnalysisRepo{
		db:  db,
		log: baseLog.With("repo", "CurriculumAnalysisRepo"),
	}
}

func (r *curriculumAnalysisRepo) Create(dbc dbctx.Context, a *types.CurriculumAnalysis) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(dbc.Ctx).Create(a).Error; err != nil {
		return db.MapError("curriculum_analysis.create", err)
	}
	return nil
}

func (r *curriculumAnalysisRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.CurriculumAnalysis, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out types.CurriculumAnalysis
	if err := transaction.WithContext(dbc.Ctx).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, db.MapError("curriculum_analysis.get", err)
	}
	if out.ID == uuid.Nil {
		return nil, types.NotFound("curriculum_analysis.get", "analysis "+id.String())
	}
	return &out, nil
}

func (r *curriculumAnalysisRepo) ListByCurriculum(dbc dbctx.Context, curriculumID uuid.UUID) ([]*types.CurriculumAnalysis, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.CurriculumAnalysis
	if err := transaction.WithContext(dbc.Ctx).
		Where("curriculum_id = ?", curriculumID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, db.MapError("curriculum_analysis.list", err)
	}
	return out, nil
}

func (r *curriculumAnalysisRepo) IDsByTaxonomy(dbc dbctx.Context, taxonomyID uuid.UUID) ([]uuid.UUID, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var ids []uuid.UUID
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.CurriculumAnalysis{}).
		Where("taxonomy_id = ?", taxonomyID).
		Pluck("id", &ids).Error; err != nil {
		return nil, db.MapError("curriculum_analysis.by_taxonomy", err)
	}
	return ids, nil
}

func (r *curriculumAnalysisRepo) CountByCurriculum(dbc dbctx.Context, curriculumID uuid.UUID) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.CurriculumAnalysis{}).
		Where("curriculum_id = ?", curriculumID).
		Count(&n).Error; err != nil {
		return 0, db.MapError("curriculum_analysis.count", err)
	}
	return n, nil
}

func (r *curriculumAnalysisRepo) Touch(dbc dbctx.Context, id uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.CurriculumAnalysis{}).
		Where("id = ?", id).
		Update("updated_at", gorm.Expr("CURRENT_TIMESTAMP")).Error; err != nil {
		return db.MapError("curriculum_analysis.touch", err)
	}
	return nil
}

func (r *curriculumAnalysisRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).Where("id = ?", id).Delete(&types.CurriculumAnalysis{})
	if res.Error != nil {
		return db.MapError("curriculum_analysis.delete", res.Error)
	}
	if res.RowsAffected == 0 {
		return types.NotFound("curriculum_analysis.delete", "analysis "+id.String())
	}
	return nil
}
