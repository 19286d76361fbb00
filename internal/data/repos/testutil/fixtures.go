package testutil

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/lo-analysis-backend/internal/domain"
)

func SeedCurriculum(tb testing.TB, tx *gorm.DB, title string) *types.Curriculum {
	tb.Helper()
	c := &types.Curriculum{ID: uuid.New(), Title: title}
	if err := tx.WithContext(tb.Context()).Create(c).Error; err != nil {
		tb.Fatalf("seed curriculum: %v", err)
	}
	return c
}

func SeedStrand(tb testing.TB, tx *gorm.DB, curriculumID uuid.UUID, position int, title string) *types.Strand {
	tb.Helper()
	s := &types.Strand{ID: uuid.New(), CurriculumID: curriculumID, Position: position, Title: title}
	if err := tx.WithContext(tb.Context()).Create(s).Error; err != nil {
		tb.Fatalf("seed strand: %v", err)
	}
	return s
}

func SeedOutcomes(tb testing.TB, tx *gorm.DB, strandID uuid.UUID, texts ...string) []*types.LearningOutcome {
	tb.Helper()
	out := make([]*types.LearningOutcome, 0, len(texts))
	for i, text := range texts {
		lo := &types.LearningOutcome{ID: uuid.New(), StrandID: strandID, Index: i + 1, Text: text}
		if err := tx.WithContext(tb.Context()).Create(lo).Error; err != nil {
			tb.Fatalf("seed learning outcome: %v", err)
		}
		out = append(out, lo)
	}
	return out
}

func SeedTaxonomy(tb testing.TB, tx *gorm.DB, title string) *types.Taxonomy {
	tb.Helper()
	t := &types.Taxonomy{ID: uuid.New(), Title: title}
	if err := tx.WithContext(tb.Context()).Create(t).Error; err != nil {
		tb.Fatalf("seed taxonomy: %v", err)
	}
	return t
}

func SeedCategory(tb testing.TB, tx *gorm.DB, taxonomyID uuid.UUID, level int, title string) *types.VerbCategory {
	tb.Helper()
	c := &types.VerbCategory{ID: uuid.New(), TaxonomyID: taxonomyID, Level: level, Title: title}
	if err := tx.WithContext(tb.Context()).Create(c).Error; err != nil {
		tb.Fatalf("seed verb category: %v", err)
	}
	return c
}

func SeedAnalysis(tb testing.TB, tx *gorm.DB, curriculumID, taxonomyID uuid.UUID) *types.CurriculumAnalysis {
	tb.Helper()
	a := &types.CurriculumAnalysis{ID: uuid.New(), CurriculumID: curriculumID, TaxonomyID: taxonomyID, Title: "analysis"}
	if err := tx.WithContext(tb.Context()).Create(a).Error; err != nil {
		tb.Fatalf("seed analysis: %v", err)
	}
	return a
}

func PtrUUID(v uuid.UUID) *uuid.UUID { return &v }
func PtrTime(v time.Time) *time.Time { return &v }
