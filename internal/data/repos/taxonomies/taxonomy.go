package taxonomies

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

type TaxonomyRepo interface {
	Create(dbc dbctx.Context, t *types.Taxonomy) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Taxonomy, error)
	List(dbc dbctx.Context, f ListFilter) ([]*types.Taxonomy, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type taxonomyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTaxonomyRepo(db *gorm.DB, baseLog *logger.Logger) TaxonomyRepo {
	return &taxonomyRepo{
		db:  db,
		log: baseLog.With("repo", "TaxonomyRepo"),
	}
}

func (r *taxonomyRepo) Create(dbc dbctx.Context, t *types.Taxonomy) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(dbc.Ctx).Create(t).Error; err != nil {
		return db.MapError("taxonomy.create", err)
	}
	return nil
}

func (r *taxonomyRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Taxonomy, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out types.Taxonomy
	if err := transaction.WithContext(dbc.Ctx).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, db.MapError("taxonomy.get", err)
	}
	if out.ID == uuid.Nil {
		return nil, types.NotFound("taxonomy.get", "taxonomy "+id.String())
	}
	return &out, nil
}

func (r *taxonomyRepo) List(dbc dbctx.Context, f ListFilter) ([]*types.Taxonomy, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(dbc.Ctx).Model(&types.Taxonomy{})
	if f.AuthorID != nil && *f.AuthorID != uuid.Nil {
		q = q.Where("author_id = ?", *f.AuthorID)
	}
	if f.PublicOnly {
		q = q.Where("public = ?", true)
	}
	var out []*types.Taxonomy
	if err := q.Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, db.MapError("taxonomy.list", err)
	}
	return out, nil
}

func (r *taxonomyRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).Model(&types.Taxonomy{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return db.MapError("taxonomy.update", res.Error)
	}
	if res.RowsAffected == 0 {
		return types.NotFound("taxonomy.update", "taxonomy "+id.String())
	}
	return nil
}

func (r *taxonomyRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).Where("id = ?", id).Delete(&types.Taxonomy{})
	if res.Error != nil {
		return db.MapError("taxonomy.delete", res.Error)
	}
	if res.RowsAffected == 0 {
		return types.NotFound("taxonomy.delete", "taxonomy "+id.String())
	}
	return nil
}
