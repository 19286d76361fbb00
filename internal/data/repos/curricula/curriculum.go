package curricula

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/lo-analysis-backend/internal/data/db"
	types "github.com/yungbote/lo-analysis-backend/internal/domain"
	"github.com/yungbote/lo-analysis-backend/internal/platform/dbctx"
	"github.com/yungbote/lo-analysis-backend/internal/platform/logger"
)

type ListFilter struct {
	AuthorID   *uuid.UUID
	PublicOnly bool
}

type CurriculumRepo interface {
	Create(dbc dbctx.Context, c *types.Curriculum) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Curriculum, error)
	List(dbc dbctx.Context, f ListFilter) ([]*types.Curriculum, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type curriculumRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCurriculumRepo(db *gorm.DB, baseLog *logger.Logger) CurriculumRepo {
	return &curriculumRepo{
		db:  db,
		log: baseLog.With("repo", "CurriculumRepo"),
	}
}

func (r *curriculumRepo) Create(dbc dbctx.Context, c *types.Curriculum) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(dbc.Ctx).Create(c).Error; err != nil {
		return db.MapError("curriculum.create", err)
	}
	return nil
}

func (r *curriculumRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Curriculum, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out types.Curriculum
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&out).Error
	if err != nil {
		return nil, db.MapError("curriculum.get", err)
	}
	if out.ID == uuid.Nil {
		return nil, types.NotFound("curriculum.get", "curriculum "+id.String())
	}
	return &out, nil
}

func (r *curriculumRepo) List(dbc dbctx.Context, f ListFilter) ([]*types.Curriculum, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(dbc.Ctx).Model(&types.Curriculum{})
	if f.AuthorID != nil && *f.AuthorID != uuid.Nil {
		q = q.Where("author_id = ?", *f.AuthorID)
	}
	if f.PublicOnly {
		q = q.Where("public = ?", true)
	}
	var out []*types.Curriculum
	if err := q.Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, db.MapError("curriculum.list", err)
	}
	return out, nil
}

func (r *curriculumRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.Curriculum{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return db.MapError("curriculum.update", res.Error)
	}
	if res.RowsAffected == 0 {
		return types.NotFound("curriculum.update", "curriculum "+id.String())
	}
	return nil
}

func (r *curriculumRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).Where("id = ?", id).Delete(&types.Curriculum{})
	if res.Error != nil {
		return db.MapError("curriculum.delete", res.Error)
	}
	if res.RowsAffected == 0 {
		return types.NotFound("curriculum.delete", "curriculum "+id.String())
	}
	return nil
}
