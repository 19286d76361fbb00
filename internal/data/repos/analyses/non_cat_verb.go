package analyses

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/lo-analysis-backend/internal/data/db"
	types "github.com/yungbote/lo-analysis-backend/internal/domain"
	"github.com/yungbote/lo-analysis-backend/internal/platform/dbctx"
	"github.com/yungbote/lo-analysis-backend/internal/platform/logger"
)

// NonCatVerbRepo maintains the shared non-categorised verb set. Writers
// from concurrent strands race on title, so inserts are upserts against
// the unique title index.
type NonCatVerbRepo interface {
	Ensure(dbc dbctx.Context, titles []string) ([]*types.NonCatVerb, error)
	Link(dbc dbctx.Context, curriculumAnalysisID uuid.UUID, ids []uuid.UUID) error
	UnlinkAnalysis(dbc dbctx.Context, curriculumAnalysisID uuid.UUID) error
	ListByAnalysis(dbc dbctx.Context, curriculumAnalysisID uuid.UUID) ([]*types.NonCatVerb, error)
	// CollectOrphans deletes rows no curriculum analysis links to.
	CollectOrphans(dbc dbctx.Context) (int64, error)
}

type nonCatVerbRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewNonCatVerbRepo(db *gorm.DB, baseLog *logger.Logger) NonCatVerbRepo {
	return &nonCatVerbRepo{
		db:  db,
		log: baseLog.With("repo", "NonCatVerbRepo"),
	}
}

func (r *nonCatVerbRepo) Ensure(dbc dbctx.Context, titles []string) ([]*types.NonCatVerb, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(titles) == 0 {
		return []*types.NonCatVerb{}, nil
	}
	rows := make([]*types.NonCatVerb, 0, len(titles))
	for _, t := range titles {
		rows = append(rows, &types.NonCatVerb{ID: uuid.New(), Title: t})
	}
	q := transaction.WithContext(dbc.Ctx)
	if err := q.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "title"}}, DoNothing: true}).
		Create(&rows).Error; err != nil {
		return nil, db.MapError("non_cat_verb.ensure", err)
	}
	var out []*types.NonCatVerb
	if err := q.Where("title IN ?", titles).Order("title ASC").Find(&out).Error; err != nil {
		return nil, db.MapError("non_cat_verb.ensure", err)
	}
	return out, nil
}

func (r *nonCatVerbRepo) Link(dbc dbctx.Context, curriculumAnalysisID uuid.UUID, ids []uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	links := make([]types.CurriculumAnalysisNonCatVerb, 0, len(ids))
	for _, id := range ids {
		links = append(links, types.CurriculumAnalysisNonCatVerb{CurriculumAnalysisID: curriculumAnalysisID, NonCatVerbID: id})
	}
	if err := transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&links).Error; err != nil {
		return db.MapError("non_cat_verb.link", err)
	}
	return nil
}

func (r *nonCatVerbRepo) UnlinkAnalysis(dbc dbctx.Context, curriculumAnalysisID uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("curriculum_analysis_id = ?", curriculumAnalysisID).
		Delete(&types.CurriculumAnalysisNonCatVerb{}).Error; err != nil {
		return db.MapError("non_cat_verb.unlink", err)
	}
	return nil
}

func (r *nonCatVerbRepo) ListByAnalysis(dbc dbctx.Context, curriculumAnalysisID uuid.UUID) ([]*types.NonCatVerb, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.NonCatVerb
	if err := transaction.WithContext(dbc.Ctx).
		Table("non_cat_verb").
		Select("non_cat_verb.*").
		Joins("JOIN curriculum_analysis_non_cat_verb AS l ON l.non_cat_verb_id = non_cat_verb.id").
		Where("l.curriculum_analysis_id = ?", curriculumAnalysisID).
		Order("non_cat_verb.title ASC").
		Find(&out).Error; err != nil {
		return nil, db.MapError("non_cat_verb.list", err)
	}
	return out, nil
}

func (r *nonCatVerbRepo) CollectOrphans(dbc dbctx.Context) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(dbc.Ctx)
	res := q.Where("id NOT IN (?)", q.Model(&types.CurriculumAnalysisNonCatVerb{}).Select("non_cat_verb_id")).
		Delete(&types.NonCatVerb{})
	if res.Error != nil {
		return 0, db.MapError("non_cat_verb.collect_orphans", res.Error)
	}
	return res.RowsAffected, nil
}
