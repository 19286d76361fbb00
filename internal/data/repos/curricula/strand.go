package curricula

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/lo-analysis-backend/internal/data/db"
	types "github.com/yungbote/lo-analysis-backend/internal/domain"
	"github.com/yungbote/lo-analysis-backend/internal/platform/dbctx"
	"github.com/yungbote/lo-analysis-backend/internal/platform/logger"
)

type StrandRepo interface {
	// Create appends s after the curriculum's last strand.
	Create(dbc dbctx.Context, s *types.Strand) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Strand, error)
	ListByCurriculum(dbc dbctx.Context, curriculumID uuid.UUID) ([]*types.Strand, error)
	CountByCurriculum(dbc dbctx.Context, curriculumID uuid.UUID) (int64, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	DeleteByCurriculum(dbc dbctx.Context, curriculumID uuid.UUID) ([]uuid.UUID, error)
}

type strandRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStrandRepo(db *gorm.DB, baseLog *logger.Logger) StrandRepo {
	return &strandRepo{
		db:  db,
		log: baseLog.With("repo", "StrandRepo"),
	}
}

func (r *strandRepo) Create(dbc dbctx.Context, s *types.Strand) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var maxPos int
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.Strand{}).
		Where("curriculum_id = ?", s.CurriculumID).
		Select("COALESCE(MAX(position), 0)").
		Scan(&maxPos).Error; err != nil {
		return db.MapError("strand.create", err)
	}
	s.Position = maxPos + 1
	if err := transaction.WithContext(dbc.Ctx).Create(s).Error; err != nil {
		return db.MapError("strand.create", err)
	}
	return nil
}

func (r *strandRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Strand, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out types.Strand
	if err := transaction.WithContext(dbc.Ctx).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, db.MapError("strand.get", err)
	}
	if out.ID == uuid.Nil {
		return nil, types.NotFound("strand.get", "strand "+id.String())
	}
	return &out, nil
}

func (r *strandRepo) ListByCurriculum(dbc dbctx.Context, curriculumID uuid.UUID) ([]*types.Strand, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Strand
	if err := transaction.WithContext(dbc.Ctx).
		Where("curriculum_id = ?", curriculumID).
		Order("position ASC").
		Find(&out).Error; err != nil {
		return nil, db.MapError("strand.list", err)
	}
	return out, nil
}

func (r *strandRepo) CountByCurriculum(dbc dbctx.Context, curriculumID uuid.UUID) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.Strand{}).
		Where("curriculum_id = ?", curriculumID).
		Count(&n).Error; err != nil {
		return 0, db.MapError("strand.count", err)
	}
	return n, nil
}

func (r *strandRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).Model(&types.Strand{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return db.MapError("strand.update", res.Error)
	}
	if res.RowsAffected == 0 {
		return types.NotFound("strand.update", "strand "+id.String())
	}
	return nil
}

// DeleteByCurriculum removes every strand of the curriculum and returns
// their IDs so callers can clear dependent rows.
func (r *strandRepo) DeleteByCurriculum(dbc dbctx.Context, curriculumID uuid.UUID) ([]uuid.UUID, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var ids []uuid.UUID
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.Strand{}).
		Where("curriculum_id = ?", curriculumID).
		Pluck("id", &ids).Error; err != nil {
		return nil, db.MapError("strand.delete", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Where("id IN ?", ids).Delete(&types.Strand{}).Error; err != nil {
		return nil, db.MapError("strand.delete", err)
	}
	return ids, nil
}
