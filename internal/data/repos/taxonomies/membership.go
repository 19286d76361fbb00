package taxonomies

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/lo-analysis-backend/internal/data/db"
	types "github.com/yungbote/lo-analysis-backend/internal/domain"
	"github.com/yungbote/lo-analysis-backend/internal/platform/dbctx"
	"github.com/yungbote/lo-analysis-backend/internal/platform/logger"
)

// MemberRow is one (category, title) membership edge.
type MemberRow struct {
	VerbCategoryID uuid.UUID
	Title          string
}

// MembershipRepo owns the shared Verb/NonVerb registries and their links
// to categories.
type MembershipRepo interface {
	// EnsureVerbs upserts titles and returns the stored rows.
	EnsureVerbs(dbc dbctx.Context, titles []string) ([]*types.Verb, error)
	EnsureNonVerbs(dbc dbctx.Context, titles []string) ([]*types.NonVerb, error)
	// ReplaceCategoryMembers drops every link of the category and links the
	// given verbs and non-verbs instead.
	ReplaceCategoryMembers(dbc dbctx.Context, categoryID uuid.UUID, verbIDs, nonVerbIDs []uuid.UUID) error
	DeleteCategoryLinks(dbc dbctx.Context, categoryIDs []uuid.UUID) error
	// CollectOrphans deletes verbs and non-verbs no category links to.
	CollectOrphans(dbc dbctx.Context) (verbs int64, nonVerbs int64, err error)
	VerbsByTaxonomy(dbc dbctx.Context, taxonomyID uuid.UUID) ([]MemberRow, error)
	NonVerbsByTaxonomy(dbc dbctx.Context, taxonomyID uuid.UUID) ([]MemberRow, error)
}

type membershipRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMembershipRepo(db *gorm.DB, baseLog *logger.Logger) MembershipRepo {
	return &membershipRepo{
		db:  db,
		log: baseLog.With("repo", "MembershipRepo"),
	}
}

func (r *membershipRepo) EnsureVerbs(dbc dbctx.Context, titles []string) ([]*types.Verb, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(titles) == 0 {
		return []*types.Verb{}, nil
	}
	rows := make([]*types.Verb, 0, len(titles))
	for _, t := range titles {
		rows = append(rows, &types.Verb{ID: uuid.New(), Title: t})
	}
	if err := transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "title"}}, DoNothing: true}).
		Create(&rows).Error; err != nil {
		return nil, db.MapError("verb.ensure", err)
	}
	var out []*types.Verb
	if err := transaction.WithContext(dbc.Ctx).Where("title IN ?", titles).Find(&out).Error; err != nil {
		return nil, db.MapError("verb.ensure", err)
	}
	return out, nil
}

func (r *membershipRepo) EnsureNonVerbs(dbc dbctx.Context, titles []string) ([]*types.NonVerb, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(titles) == 0 {
		return []*types.NonVerb{}, nil
	}
	rows := make([]*types.NonVerb, 0, len(titles))
	for _, t := range titles {
		rows = append(rows, &types.NonVerb{ID: uuid.New(), Title: t})
	}
	if err := transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "title"}}, DoNothing: true}).
		Create(&rows).Error; err != nil {
		return nil, db.MapError("non_verb.ensure", err)
	}
	var out []*types.NonVerb
	if err := transaction.WithContext(dbc.Ctx).Where("title IN ?", titles).Find(&out).Error; err != nil {
		return nil, db.MapError("non_verb.ensure", err)
	}
	return out, nil
}

func (r *membershipRepo) ReplaceCategoryMembers(dbc dbctx.Context, categoryID uuid.UUID, verbIDs, nonVerbIDs []uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(dbc.Ctx)
	if err := r.DeleteCategoryLinks(dbc, []uuid.UUID{categoryID}); err != nil {
		return err
	}
	if len(verbIDs) > 0 {
		links := make([]types.VerbCategoryVerb, 0, len(verbIDs))
		for _, id := range verbIDs {
			links = append(links, types.VerbCategoryVerb{VerbCategoryID: categoryID, VerbID: id})
		}
		if err := q.Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error; err != nil {
			return db.MapError("verb_category.link_verbs", err)
		}
	}
	if len(nonVerbIDs) > 0 {
		links := make([]types.VerbCategoryNonVerb, 0, len(nonVerbIDs))
		for _, id := range nonVerbIDs {
			links = append(links, types.VerbCategoryNonVerb{VerbCategoryID: categoryID, NonVerbID: id})
		}
		if err := q.Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error; err != nil {
			return db.MapError("verb_category.link_non_verbs", err)
		}
	}
	return nil
}

func (r *membershipRepo) DeleteCategoryLinks(dbc dbctx.Context, categoryIDs []uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(categoryIDs) == 0 {
		return nil
	}
	q := transaction.WithContext(dbc.Ctx)
	if err := q.Where("verb_category_id IN ?", categoryIDs).Delete(&types.VerbCategoryVerb{}).Error; err != nil {
		return db.MapError("verb_category.unlink", err)
	}
	if err := q.Where("verb_category_id IN ?", categoryIDs).Delete(&types.VerbCategoryNonVerb{}).Error; err != nil {
		return db.MapError("verb_category.unlink", err)
	}
	return nil
}

func (r *membershipRepo) CollectOrphans(dbc dbctx.Context) (int64, int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(dbc.Ctx)
	verbs := q.Where("id NOT IN (?)", q.Model(&types.VerbCategoryVerb{}).Select("verb_id")).
		Delete(&types.Verb{})
	if verbs.Error != nil {
		return 0, 0, db.MapError("verb.collect_orphans", verbs.Error)
	}
	nonVerbs := q.Where("id NOT IN (?)", q.Model(&types.VerbCategoryNonVerb{}).Select("non_verb_id")).
		Delete(&types.NonVerb{})
	if nonVerbs.Error != nil {
		return 0, 0, db.MapError("non_verb.collect_orphans", nonVerbs.Error)
	}
	return verbs.RowsAffected, nonVerbs.RowsAffected, nil
}

func (r *membershipRepo) VerbsByTaxonomy(dbc dbctx.Context, taxonomyID uuid.UUID) ([]MemberRow, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []MemberRow
	err := transaction.WithContext(dbc.Ctx).
		Table("verb_category_verb AS l").
		Select("l.verb_category_id AS verb_category_id, v.title AS title").
		Joins("JOIN verb AS v ON v.id = l.verb_id").
		Joins("JOIN verb_category AS c ON c.id = l.verb_category_id").
		Where("c.taxonomy_id = ?", taxonomyID).
		Order("v.title ASC").
		Scan(&out).Error
	if err != nil {
		return nil, db.MapError("verb.by_taxonomy", err)
	}
	return out, nil
}

func (r *membershipRepo) NonVerbsByTaxonomy(dbc dbctx.Context, taxonomyID uuid.UUID) ([]MemberRow, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []MemberRow
	err := transaction.WithContext(dbc.Ctx).
		Table("verb_category_non_verb AS l").
		Select("l.verb_category_id AS verb_category_id, n.title AS title").
		Joins("JOIN non_verb AS n ON n.id = l.non_verb_id").
		Joins("JOIN verb_category AS c ON c.id = l.verb_category_id").
		Where("c.taxonomy_id = ?", taxonomyID).
		Order("n.title ASC").
		Scan(&out).Error
	if err != nil {
		return nil, db.MapError("non_verb.by_taxonomy", err)
	}
	return out, nil
}
