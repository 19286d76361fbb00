package analyses

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/yungbote/lo-analysis-backend/internal/data/repos/testutil"
	types "github.com/yungbote/lo-analysis-backend/internal/domain"
)

func TestStrandAnalysisAndOutcomes(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := testutil.Ctx(t, tx)
	log := testutil.Logger(t)
	strandAnalyses := NewStrandAnalysisRepo(db, log)
	outcomes := NewOutcomeAnalysisRepo(db, log)
	results := NewStrandResultRepo(db, log)

	c := testutil.SeedCurriculum(t, tx, "Science")
	second := testutil.SeedStrand(t, tx, c.ID, 2, "Life")
	first := testutil.SeedStrand(t, tx, c.ID, 1, "Earth")
	tax := testutil.SeedTaxonomy(t, tx, "Blooms")
	k := testutil.SeedCategory(t, tx, tax.ID, 1, "Knowledge")
	a := testutil.SeedAnalysis(t, tx, c.ID, tax.ID)

	rows := []*types.StrandAnalysis{
		{CurriculumAnalysisID: a.ID, StrandID: second.ID},
		{CurriculumAnalysisID: a.ID, StrandID: first.ID},
	}
	if err := strandAnalyses.Create(dbc, rows); err != nil {
		t.Fatalf("Create: %v", err)
	}
	listed, err := strandAnalyses.ListByAnalysis(dbc, a.ID)
	if err != nil || len(listed) != 2 {
		t.Fatalf("ListByAnalysis: %v err=%v", listed, err)
	}
	if listed[0].StrandID != first.ID {
		t.Fatalf("ListByAnalysis should follow strand position, got %v first", listed[0].StrandID)
	}
	sa := listed[0]

	los := testutil.SeedOutcomes(t, tx, first.ID, "Define rocks", "List minerals")
	records := []OutcomeRecord{
		{
			Analysis: &types.LearningOutcomeAnalysis{LearningOutcomeID: los[1].ID, LearningOutcomeIndex: 2},
			Hits:     []*types.LearningOutcomeCategoryHitCount{{VerbCategoryID: k.ID, HitCount: 1}},
		},
		{
			Analysis: &types.LearningOutcomeAnalysis{LearningOutcomeID: los[0].ID, LearningOutcomeIndex: 1},
			Hits:     []*types.LearningOutcomeCategoryHitCount{{VerbCategoryID: k.ID, HitCount: 2}},
		},
	}
	if err := outcomes.Replace(dbc, sa.ID, records); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	// A second run replaces rather than accumulates.
	if err := outcomes.Replace(dbc, sa.ID, records); err != nil {
		t.Fatalf("Replace #2: %v", err)
	}
	n, err := outcomes.CountByStrandAnalysis(dbc, sa.ID)
	if err != nil || n != 2 {
		t.Fatalf("CountByStrandAnalysis: n=%d err=%v", n, err)
	}
	hits, err := outcomes.HitsByStrandAnalysis(dbc, sa.ID)
	if err != nil {
		t.Fatalf("HitsByStrandAnalysis: %v", err)
	}
	var counts []int
	for _, h := range hits {
		counts = append(counts, h.HitCount)
	}
	if diff := cmp.Diff([]int{2, 1}, counts); diff != "" {
		t.Fatalf("hits by outcome index mismatch (-want +got):\n%s", diff)
	}

	if err := results.ReplaceHitCounts(dbc, sa.ID, []*types.StrandCategoryHitCount{{VerbCategoryID: k.ID, HitCount: 2}}); err != nil {
		t.Fatalf("ReplaceHitCounts: %v", err)
	}
	if err := results.ReplaceDiversities(dbc, sa.ID, []*types.StrandCategoryDiversity{
		{NumCategories: 1, NumLearningOutcomes: 2},
		{NumCategories: 0, NumLearningOutcomes: 0},
	}); err != nil {
		t.Fatalf("ReplaceDiversities: %v", err)
	}
	if err := results.ReplaceAverage(dbc, sa.ID, &types.StrandAverage{Verbs: 1.5, Categories: 1}); err != nil {
		t.Fatalf("ReplaceAverage: %v", err)
	}
	if err := results.ReplaceAverage(dbc, sa.ID, &types.StrandAverage{Verbs: 2, Categories: 1}); err != nil {
		t.Fatalf("ReplaceAverage #2: %v", err)
	}

	div, err := results.Diversities(dbc, []uuid.UUID{sa.ID})
	if err != nil || len(div) != 2 || div[0].NumCategories != 0 {
		t.Fatalf("Diversities: %v err=%v", div, err)
	}
	avg, err := results.Averages(dbc, []uuid.UUID{sa.ID})
	if err != nil || len(avg) != 1 || avg[0].Verbs != 2 {
		t.Fatalf("Averages: %v err=%v", avg, err)
	}

	if err := results.DeleteByStrandAnalyses(dbc, []uuid.UUID{sa.ID}); err != nil {
		t.Fatalf("DeleteByStrandAnalyses: %v", err)
	}
	if err := outcomes.DeleteByStrandAnalyses(dbc, []uuid.UUID{sa.ID}); err != nil {
		t.Fatalf("outcomes.DeleteByStrandAnalyses: %v", err)
	}
	if hc, _ := results.HitCounts(dbc, []uuid.UUID{sa.ID}); len(hc) != 0 {
		t.Fatalf("hit counts survived delete: %v", hc)
	}
	if n, _ := outcomes.CountByStrandAnalysis(dbc, sa.ID); n != 0 {
		t.Fatalf("outcome analyses survived delete: %d", n)
	}
}

func TestNonCatVerbRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := testutil.Ctx(t, tx)
	repo := NewNonCatVerbRepo(db, testutil.Logger(t))

	c := testutil.SeedCurriculum(t, tx, "Science")
	tax := testutil.SeedTaxonomy(t, tx, "Blooms")
	first := testutil.SeedAnalysis(t, tx, c.ID, tax.ID)
	second := testutil.SeedAnalysis(t, tx, c.ID, tax.ID)

	rows, err := repo.Ensure(dbc, []string{"write", "enjoy"})
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	again, err := repo.Ensure(dbc, []string{"enjoy"})
	if err != nil || len(again) != 1 || again[0].ID != rows[0].ID {
		t.Fatalf("Ensure should reuse the enjoy row: rows=%v again=%v err=%v", rows, again, err)
	}

	ids := []uuid.UUID{rows[0].ID, rows[1].ID}
	if err := repo.Link(dbc, first.ID, ids); err != nil {
		t.Fatalf("Link: %v", err)
	}
	if err := repo.Link(dbc, first.ID, ids); err != nil {
		t.Fatalf("Link twice: %v", err)
	}
	if err := repo.Link(dbc, second.ID, ids[:1]); err != nil {
		t.Fatalf("Link second: %v", err)
	}

	listed, err := repo.ListByAnalysis(dbc, first.ID)
	if err != nil {
		t.Fatalf("ListByAnalysis: %v", err)
	}
	var titles []string
	for _, v := range listed {
		titles = append(titles, v.Title)
	}
	if diff := cmp.Diff([]string{"enjoy", "write"}, titles); diff != "" {
		t.Fatalf("ListByAnalysis mismatch (-want +got):\n%s", diff)
	}

	if err := repo.UnlinkAnalysis(dbc, first.ID); err != nil {
		t.Fatalf("UnlinkAnalysis: %v", err)
	}
	removed, err := repo.CollectOrphans(dbc)
	if err != nil || removed != 1 {
		t.Fatalf("CollectOrphans: removed=%d err=%v", removed, err)
	}
	still, err := repo.ListByAnalysis(dbc, second.ID)
	if err != nil || len(still) != 1 || still[0].Title != "enjoy" {
		t.Fatalf("second analysis lost its link: %v err=%v", still, err)
	}
}
