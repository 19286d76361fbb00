package services_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"

	"github.com/yungbote/lo-analysis-backend/internal/analysis"
	types "github.com/yungbote/lo-analysis-backend/internal/domain"
	"github.com/yungbote/lo-analysis-backend/internal/services"
)

func TestRunFullAnalysisBloomsFixture(t *testing.T) {
	h := newHarness(t)
	_, ca := h.importFixture(t)

	report, err := h.analyses.RunFullAnalysis(t.Context(), ca.ID)
	if err != nil {
		t.Fatalf("RunFullAnalysis: %v", err)
	}
	if diff := cmp.Diff([]string{"knowledge", "comprehension", "application", "analysis", "synthesis", "evaluation"}, report.Labels); diff != "" {
		t.Fatalf("labels (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1, 2, 3, 4, 5, 6}, report.Levels); diff != "" {
		t.Fatalf("levels (-want +got):\n%s", diff)
	}
	if len(report.Strands) != 1 {
		t.Fatalf("strands=%d want 1", len(report.Strands))
	}
	st := report.Strands[0]
	want := services.StrandReport{
		StrandAnalysisID:    st.StrandAnalysisID,
		StrandID:            st.StrandID,
		Title:               "Fixture Strand",
		Colour:              "#1f77b4",
		NumLearningOutcomes: 23,
		HitCounts:           []int{11, 9, 13, 7, 3, 6},
		Diversity:           []int{0, 6, 11, 3, 3, 0, 0},
		Average:             &analysis.Average{Verbs: 2.65, Categories: 2.13},
	}
	if diff := cmp.Diff(want, st); diff != "" {
		t.Fatalf("strand report (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"enjoy", "write"}, report.NonCatVerbs); diff != "" {
		t.Fatalf("non-categorised verbs (-want +got):\n%s", diff)
	}

	div, err := h.analyses.CategoryDiversities(h.dbc(t), ca.ID)
	if err != nil {
		t.Fatalf("CategoryDiversities: %v", err)
	}
	if diff := cmp.Diff([]string{"0", "1", "2", "3", "4", "5", "6"}, div.Labels); diff != "" {
		t.Fatalf("diversity labels (-want +got):\n%s", diff)
	}
	avg, err := h.analyses.CategoryAverages(h.dbc(t), ca.ID)
	if err != nil {
		t.Fatalf("CategoryAverages: %v", err)
	}
	if diff := cmp.Diff([]float64{2.13}, avg.Series[0].Values); diff != "" {
		t.Fatalf("category averages (-want +got):\n%s", diff)
	}
}

func TestRunFullAnalysisIsRepeatable(t *testing.T) {
	h := newHarness(t)
	_, ca := h.importFixture(t)

	first, err := h.analyses.RunFullAnalysis(t.Context(), ca.ID)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := h.analyses.RunFullAnalysis(t.Context(), ca.ID)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if diff := cmp.Diff(first, second, cmpopts.IgnoreFields(services.StrandReport{}, "StrandAnalysisID")); diff != "" {
		t.Fatalf("reports differ (-first +second):\n%s", diff)
	}
	ids, err := h.set.StrandAnalyses.IDsByAnalyses(h.dbc(t), []uuid.UUID{ca.ID})
	if err != nil {
		t.Fatalf("IDsByAnalyses: %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("strand analyses=%d want 1 after re-run", len(ids))
	}
}

func TestEmptyStrandPolicy(t *testing.T) {
	tests := []struct {
		name    string
		policy  analysis.EmptyStrandPolicy
		wantErr bool
	}{
		{name: "error", policy: analysis.EmptyStrandError, wantErr: true},
		{name: "zero", policy: analysis.EmptyStrandZero},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, func(o *harnessOptions) { o.emptyStrand = tt.policy })
			imp, _ := h.importFixture(t)
			ca := h.addCurriculum(t, imp.Taxonomies[0].ID, map[string]string{"Empty": ""}, "Empty")

			report, err := h.analyses.RunFullAnalysis(t.Context(), ca.ID)
			if report == nil {
				t.Fatalf("report is nil: %v", err)
			}
			st := report.Strands[0]
			if st.NumLearningOutcomes != 0 {
				t.Fatalf("outcomes=%d want 0", st.NumLearningOutcomes)
			}
			if diff := cmp.Diff(make([]int, 7), st.Diversity); diff != "" {
				t.Fatalf("diversity (-want +got):\n%s", diff)
			}
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("RunFullAnalysis: %v", err)
				}
				if diff := cmp.Diff(&analysis.Average{}, st.Average); diff != "" {
					t.Fatalf("average (-want +got):\n%s", diff)
				}
				return
			}
			if !errors.Is(err, types.ErrEmptyStrand) {
				t.Fatalf("err=%v want empty strand", err)
			}
			var se *services.StrandError
			if !errors.As(err, &se) || se.StrandTitle != "Empty" {
				t.Fatalf("err=%v want StrandError for Empty", err)
			}
			if st.Average != nil {
				t.Fatalf("average written for failed strand: %+v", st.Average)
			}
		})
	}
}

func TestStrandFailureDoesNotStopSiblings(t *testing.T) {
	h := newHarness(t)
	imp, _ := h.importFixture(t)
	h.tok.FailOn = "boom"
	ca := h.addCurriculum(t, imp.Taxonomies[0].ID, map[string]string{
		"Good": "Define the terms.\nApply the rule and solve it.",
		"Bad":  "Explain the boom.",
	}, "Good", "Bad")

	report, err := h.analyses.RunFullAnalysis(t.Context(), ca.ID)
	if err == nil {
		t.Fatalf("expected strand failure")
	}
	var se *services.StrandError
	if !errors.As(err, &se) || se.StrandTitle != "Bad" {
		t.Fatalf("err=%v want StrandError for Bad", err)
	}
	if !types.IsCode(err, types.CodeRetryable) {
		t.Fatalf("tokenizer failure should be retryable: %v", err)
	}
	if len(report.Strands) != 2 {
		t.Fatalf("strands=%d want 2", len(report.Strands))
	}
	good, bad := report.Strands[0], report.Strands[1]
	if diff := cmp.Diff([]int{1, 0, 1, 0, 0, 0}, good.HitCounts); diff != "" {
		t.Fatalf("good hit counts (-want +got):\n%s", diff)
	}
	if good.Average == nil {
		t.Fatalf("good strand has no average")
	}
	sum := 0
	for _, n := range good.Diversity {
		sum += n
	}
	if sum != good.NumLearningOutcomes {
		t.Fatalf("good diversity sums to %d, want %d", sum, good.NumLearningOutcomes)
	}
	if bad.NumLearningOutcomes != 1 {
		t.Fatalf("bad outcomes=%d want 1", bad.NumLearningOutcomes)
	}
	if bad.Average != nil || bad.HitCounts != nil || bad.Diversity != nil {
		t.Fatalf("failed strand reported as computed: %+v", bad)
	}

	div, err := h.analyses.CategoryDiversities(h.dbc(t), ca.ID)
	if err != nil {
		t.Fatalf("CategoryDiversities: %v", err)
	}
	if len(div.Series) != 2 || len(div.Series[0].Values) != 7 || len(div.Series[1].Values) != 0 {
		t.Fatalf("diversity series=%+v want values only for the good strand", div.Series)
	}
}

func TestStagesRequireTheirInputs(t *testing.T) {
	h := newHarness(t)
	_, ca := h.importFixture(t)
	rows, err := h.analyses.Initialise(t.Context(), ca.ID)
	if err != nil {
		t.Fatalf("Initialise: %v", err)
	}
	saID := rows[0].ID

	if err := h.analyses.RunDiversityStage(t.Context(), saID); !types.IsCode(err, types.CodeInvariantViolation) {
		t.Fatalf("diversity before hit count: err=%v want invariant violation", err)
	}
	if err := h.analyses.RunHitCountStage(t.Context(), saID); err != nil {
		t.Fatalf("RunHitCountStage: %v", err)
	}
	if err := h.analyses.RunAverageStage(t.Context(), saID); !types.IsCode(err, types.CodeInvariantViolation) {
		t.Fatalf("average before diversity: err=%v want invariant violation", err)
	}
	for _, run := range []func() error{
		func() error { return h.analyses.RunCategoryOccurrenceStage(t.Context(), saID) },
		func() error { return h.analyses.RunDiversityStage(t.Context(), saID) },
		func() error { return h.analyses.RunAverageStage(t.Context(), saID) },
	} {
		if err := run(); err != nil {
			t.Fatalf("stage: %v", err)
		}
	}
}

func TestOutcomeEditAfterHitCount(t *testing.T) {
	h := newHarness(t)
	imp, ca := h.importFixture(t)
	strand := imp.Strands[imp.Curricula[0].ID][0]

	rows, err := h.analyses.Initialise(t.Context(), ca.ID)
	if err != nil {
		t.Fatalf("Initialise: %v", err)
	}
	if err := h.analyses.RunHitCountStage(t.Context(), rows[0].ID); err != nil {
		t.Fatalf("RunHitCountStage: %v", err)
	}
	if err := h.curricula.SetStrandSourceText(h.dbc(t), strand.ID, strand.SourceText+"\nCompare two poems."); err != nil {
		t.Fatalf("SetStrandSourceText: %v", err)
	}
	if _, err := h.curricula.RebuildLearningOutcomes(h.dbc(t), strand.ID); err != nil {
		t.Fatalf("RebuildLearningOutcomes: %v", err)
	}
	if err := h.analyses.RunCategoryOccurrenceStage(t.Context(), rows[0].ID); !types.IsCode(err, types.CodeInvariantViolation) {
		t.Fatalf("err=%v want invariant violation", err)
	}
}

func TestDeleteAnalysisRemovesDerivedRows(t *testing.T) {
	h := newHarness(t)
	_, ca := h.importFixture(t)
	if _, err := h.analyses.RunFullAnalysis(t.Context(), ca.ID); err != nil {
		t.Fatalf("RunFullAnalysis: %v", err)
	}
	if err := h.analyses.DeleteAnalysis(h.dbc(t), ca.ID); err != nil {
		t.Fatalf("DeleteAnalysis: %v", err)
	}
	if _, err := h.analyses.GetAnalysis(h.dbc(t), ca.ID); !errors.Is(err, types.ErrNotFound) {
		t.Fatalf("GetAnalysis err=%v want not found", err)
	}
	var n int64
	if err := h.db.Model(&types.NonCatVerb{}).Count(&n).Error; err != nil {
		t.Fatalf("count non-categorised verbs: %v", err)
	}
	if n != 0 {
		t.Fatalf("orphan non-categorised verbs left: %d", n)
	}
	for _, model := range []any{&types.StrandAnalysis{}, &types.LearningOutcomeAnalysis{}, &types.StrandAverage{}} {
		if err := h.db.Model(model).Count(&n).Error; err != nil {
			t.Fatalf("count %T: %v", model, err)
		}
		if n != 0 {
			t.Fatalf("%T rows left: %d", model, n)
		}
	}
}

func TestCreateAnalysisValidates(t *testing.T) {
	h := newHarness(t)
	if _, err := h.analyses.CreateAnalysis(h.dbc(t), services.CreateAnalysisInput{}); !types.IsCode(err, types.CodeValidation) {
		t.Fatalf("err=%v want validation", err)
	}
	imp, _ := h.importFixture(t)
	_, err := h.analyses.CreateAnalysis(h.dbc(t), services.CreateAnalysisInput{
		CurriculumID: imp.Curricula[0].ID,
		TaxonomyID:   imp.Curricula[0].ID,
	})
	if !errors.Is(err, types.ErrNotFound) {
		t.Fatalf("err=%v want not found", err)
	}
}

func TestRunStrandFeedsReadViews(t *testing.T) {
	h := newHarness(t)
	_, ca := h.importFixture(t)
	rows, err := h.analyses.Initialise(t.Context(), ca.ID)
	if err != nil {
		t.Fatalf("Initialise: %v", err)
	}
	if err := h.analyses.RunStrand(t.Context(), rows[0].ID); err != nil {
		t.Fatalf("RunStrand: %v", err)
	}

	hits, err := h.analyses.CategoryHitCounts(h.dbc(t), ca.ID)
	if err != nil {
		t.Fatalf("CategoryHitCounts: %v", err)
	}
	if diff := cmp.Diff([]string{"knowledge", "comprehension", "application", "analysis", "synthesis", "evaluation"}, hits.Labels); diff != "" {
		t.Fatalf("hit labels (-want +got):\n%s", diff)
	}
	if len(hits.Series) != 1 || hits.Series[0].Title != "Fixture Strand" || hits.Series[0].NumLearningOutcomes != 23 {
		t.Fatalf("hit series=%+v", hits.Series)
	}
	if diff := cmp.Diff([]float64{11, 9, 13, 7, 3, 6}, hits.Series[0].Values); diff != "" {
		t.Fatalf("hit counts (-want +got):\n%s", diff)
	}

	verbs, err := h.analyses.VerbAverages(h.dbc(t), ca.ID)
	if err != nil {
		t.Fatalf("VerbAverages: %v", err)
	}
	if diff := cmp.Diff([]string{"verbs"}, verbs.Labels); diff != "" {
		t.Fatalf("verb average labels (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{2.65}, verbs.Series[0].Values); diff != "" {
		t.Fatalf("verb averages (-want +got):\n%s", diff)
	}

	nonCat, err := h.analyses.NonCatVerbs(h.dbc(t), ca.ID)
	if err != nil {
		t.Fatalf("NonCatVerbs: %v", err)
	}
	if diff := cmp.Diff([]string{"enjoy", "write"}, nonCat); diff != "" {
		t.Fatalf("non-categorised verbs (-want +got):\n%s", diff)
	}
	if _, err := h.analyses.NonCatVerbs(h.dbc(t), uuid.New()); !errors.Is(err, types.ErrNotFound) {
		t.Fatalf("unknown analysis: err=%v want not found", err)
	}
}

func TestFailedFullRerunClearsStrandResults(t *testing.T) {
	h := newHarness(t)
	imp, _ := h.importFixture(t)
	ca := h.addCurriculum(t, imp.Taxonomies[0].ID, map[string]string{
		"Flaky": "Explain the boom.",
	}, "Flaky")

	first, err := h.analyses.RunFullAnalysis(t.Context(), ca.ID)
	if err != nil {
		t.Fatalf("first RunFullAnalysis: %v", err)
	}
	if first.Strands[0].HitCounts == nil || first.Strands[0].Average == nil {
		t.Fatalf("first run left no results: %+v", first.Strands[0])
	}

	h.tok.FailOn = "boom"
	second, err := h.analyses.RunFullAnalysis(t.Context(), ca.ID)
	if err == nil {
		t.Fatalf("expected strand failure on re-run")
	}
	st := second.Strands[0]
	if st.HitCounts != nil || st.Diversity != nil || st.Average != nil {
		t.Fatalf("re-run kept results from the earlier run: %+v", st)
	}
}
