package taxonomies

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/lo-analysis-backend/internal/data/db"
	types "github.com/yungbote/lo-analysis-backend/internal/domain"
	"github.com/yungbote/lo-analysis-backend/internal/platform/dbctx"
	"github.com/yungbote/lo-analysis-backend/internal/platform/logger"
)

type VerbCategoryRepo interface {
	Create(dbc dbctx.Context, c *types.VerbCategory) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.VerbCategory, error)
	ListByTaxonomy(dbc dbctx.Context, taxonomyID uuid.UUID) ([]*types.VerbCategory, error)
	// LevelTaken reports whether another category of the taxonomy already
	// uses level. exceptID may be uuid.Nil.
	LevelTaken(dbc dbctx.Context, taxonomyID uuid.UUID, level int, exceptID uuid.UUID) (bool, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(dbc dbctx.Context, id uuid.UUID) error
	DeleteByTaxonomy(dbc dbctx.Context, taxonomyID uuid.UUID) ([]uuid.UUID, error)
}

type verbCategoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVerbCategoryRepo(db *gorm.DB, baseLog *logger.Logger) VerbCategoryRepo {
	return &verbCategoryRepo{
		db:  db,
		log: baseLog.With("repo", "VerbCategoryRepo"),
	}
}

func (r *verbCategoryRepo) Create(dbc dbctx.Context, c *types.VerbCategory) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(dbc.Ctx).Create(c).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return types.NewError(types.CodeDuplicateLevel, "verb_category.create", "level already used in taxonomy", err)
		}
		return db.MapError("verb_category.create", err)
	}
	return nil
}

func (r *verbCategoryRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.VerbCategory, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out types.VerbCategory
	if err := transaction.WithContext(dbc.Ctx).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, db.MapError("verb_category.get", err)
	}
	if out.ID == uuid.Nil {
		return nil, types.NotFound("verb_category.get", "verb category "+id.String())
	}
	return &out, nil
}

func (r *verbCategoryRepo) ListByTaxonomy(dbc dbctx.Context, taxonomyID uuid.UUID) ([]*types.VerbCategory, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.VerbCategory
	if err := transaction.WithContext(dbc.Ctx).
		Where("taxonomy_id = ?", taxonomyID).
		Order("level ASC").
		Order("title ASC").
		Find(&out).Error; err != nil {
		return nil, db.MapError("verb_category.list", err)
	}
	return out, nil
}

func (r *verbCategoryRepo) LevelTaken(dbc dbctx.Context, taxonomyID uuid.UUID, level int, exceptID uuid.UUID) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(dbc.Ctx).
		Model(&types.VerbCategory{}).
		Where("taxonomy_id = ? AND level = ?", taxonomyID, level)
	if exceptID != uuid.Nil {
		q = q.Where("id <> ?", exceptID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, db.MapError("verb_category.level_taken", err)
	}
	return n > 0, nil
}

func (r *verbCategoryRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).Model(&types.VerbCategory{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		if db.IsUniqueViolation(res.Error) {
			return types.NewError(types.CodeDuplicateLevel, "verb_category.update", "level already used in taxonomy", res.Error)
		}
		return db.MapError("verb_category.update", res.Error)
	}
	if res.RowsAffected == 0 {
		return types.NotFound("verb_category.update", "verb category "+id.String())
	}
	return nil
}

func (r *verbCategoryRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).Where("id = ?", id).Delete(&types.VerbCategory{})
	if res.Error != nil {
		return db.MapError("verb_category.delete", res.Error)
	}
	if res.RowsAffected == 0 {
		return types.NotFound("verb_category.delete", "verb category "+id.String())
	}
	return nil
}

func (r *verbCategoryRepo) DeleteByTaxonomy(dbc dbctx.Context, taxonomyID uuid.UUID) ([]uuid.UUID, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var ids []uuid.UUID
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.VerbCategory{}).
		Where("taxonomy_id = ?", taxonomyID).
		Pluck("id", &ids).Error; err != nil {
		return nil, db.MapError("verb_category.delete", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Where("id IN ?", ids).Delete(&types.VerbCategory{}).Error; err != nil {
		return nil, db.MapError("verb_category.delete", err)
	}
	return ids, nil
}
