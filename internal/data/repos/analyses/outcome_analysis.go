package analyses

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/lo-analysis-backend/internal/data/db"
	types "github.com/yungbote/lo-analysis-backend/internal/domain"
	"github.com/yungbote/lo-analysis-backend/internal/platform/dbctx"
	"github.com/yungbote/lo-analysis-backend/internal/platform/logger"
)

// OutcomeRecord is one learning outcome analysis with its per-category
// hit counts.
type OutcomeRecord struct {
	Analysis *types.LearningOutcomeAnalysis
	Hits     []*types.LearningOutcomeCategoryHitCount
}

// OutcomeHitRow flattens a hit count with its outcome index.
type OutcomeHitRow struct {
	LearningOutcomeAnalysisID uuid.UUID
	LearningOutcomeIndex      int
	VerbCategoryID            uuid.UUID
	HitCount                  int
}

type OutcomeAnalysisRepo interface {
	// Replace deletes the strand analysis' outcome rows and writes records.
	Replace(dbc dbctx.Context, strandAnalysisID uuid.UUID, records []OutcomeRecord) error
	CountByStrandAnalysis(dbc dbctx.Context, strandAnalysisID uuid.UUID) (int64, error)
	// HitsByStrandAnalysis orders by outcome index.
	HitsByStrandAnalysis(dbc dbctx.Context, strandAnalysisID uuid.UUID) ([]OutcomeHitRow, error)
	DeleteByStrandAnalyses(dbc dbctx.Context, strandAnalysisIDs []uuid.UUID) error
}

type outcomeAnalysisRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOutcomeAnalysisRepo(db *gorm.DB, baseLog *logger.Logger) OutcomeAnalysisRepo {
	return &outcomeAnalysisRepo{
		db:  db,
		log: baseLog.With("repo", "OutcomeAnalysisRepo"),
	}
}

func (r *outcomeAnalysisRepo) Replace(dbc dbctx.Context, strandAnalysisID uuid.UUID, records []OutcomeRecord) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if err := r.DeleteByStrandAnalyses(dbc, []uuid.UUID{strandAnalysisID}); err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}
	loas := make([]*types.LearningOutcomeAnalysis, 0, len(records))
	var hits []*types.LearningOutcomeCategoryHitCount
	for _, rec := range records {
		if rec.Analysis.ID == uuid.Nil {
			rec.Analysis.ID = uuid.New()
		}
		rec.Analysis.StrandAnalysisID = strandAnalysisID
		loas = append(loas, rec.Analysis)
		for _, h := range rec.Hits {
			h.LearningOutcomeAnalysisID = rec.Analysis.ID
			hits = append(hits, h)
		}
	}
	q := transaction.WithContext(dbc.Ctx)
	if err := q.CreateInBatches(&loas, 200).Error; err != nil {
		return db.MapError("outcome_analysis.replace", err)
	}
	if len(hits) > 0 {
		if err := q.CreateInBatches(&hits, 500).Error; err != nil {
			return db.MapError("outcome_analysis.replace", err)
		}
	}
	return nil
}

func (r *outcomeAnalysisRepo) CountByStrandAnalysis(dbc dbctx.Context, strandAnalysisID uuid.UUID) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.LearningOutcomeAnalysis{}).
		Where("strand_analysis_id = ?", strandAnalysisID).
		Count(&n).Error; err != nil {
		return 0, db.MapError("outcome_analysis.count", err)
	}
	return n, nil
}

func (r *outcomeAnalysisRepo) HitsByStrandAnalysis(dbc dbctx.Context, strandAnalysisID uuid.UUID) ([]OutcomeHitRow, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []OutcomeHitRow
	err := transaction.WithContext(dbc.Ctx).
		Table("learning_outcome_analysis AS a").
		Select("a.id AS learning_outcome_analysis_id, a.learning_outcome_index AS learning_outcome_index, h.verb_category_id AS verb_category_id, h.hit_count AS hit_count").
		Joins("JOIN learning_outcome_category_hit_count AS h ON h.learning_outcome_analysis_id = a.id").
		Where("a.strand_analysis_id = ?", strandAnalysisID).
		Order("a.learning_outcome_index ASC").
		Scan(&out).Error
	if err != nil {
		return nil, db.MapError("outcome_analysis.hits", err)
	}
	return out, nil
}

func (r *outcomeAnalysisRepo) DeleteByStrandAnalyses(dbc dbctx.Context, strandAnalysisIDs []uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(strandAnalysisIDs) == 0 {
		return nil
	}
	q := transaction.WithContext(dbc.Ctx)
	loaIDs := q.Model(&types.LearningOutcomeAnalysis{}).
		Select("id").
		Where("strand_analysis_id IN ?", strandAnalysisIDs)
	if err := q.Where("learning_outcome_analysis_id IN (?)", loaIDs).
		Delete(&types.LearningOutcomeCategoryHitCount{}).Error; err != nil {
		return db.MapError("outcome_analysis.delete", err)
	}
	if err := q.Where("strand_analysis_id IN ?", strandAnalysisIDs).
		Delete(&types.LearningOutcomeAnalysis{}).Error; err != nil {
		return db.MapError("outcome_analysis.delete", err)
	}
	return nil
}
