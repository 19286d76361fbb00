package services_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/yungbote/lo-analysis-backend/internal/data/repos/taxonomies"
	types "github.com/yungbote/lo-analysis-backend/internal/domain"
	"github.com/yungbote/lo-analysis-backend/internal/lexicon"
	"github.com/yungbote/lo-analysis-backend/internal/services"
)

func newTwoLevelTaxonomy(t *testing.T, h *harness) *types.Taxonomy {
	t.Helper()
	tax, err := h.taxonomies.CreateTaxonomy(h.dbc(t), services.CreateTaxonomyInput{Title: "Two level"})
	if err != nil {
		t.Fatalf("CreateTaxonomy: %v", err)
	}
	// Created out of level order on purpose.
	for _, in := range []services.CategoryInput{
		{Title: "high", Level: 2, VerbList: "Identify, justify"},
		{Title: "low", Level: 1, VerbList: "identify, list, (why)"},
	} {
		if _, err := h.taxonomies.CreateCategory(h.dbc(t), tax.ID, in); err != nil {
			t.Fatalf("CreateCategory(%s): %v", in.Title, err)
		}
	}
	return tax
}

func TestTaxonomyReadModels(t *testing.T) {
	h := newHarness(t)
	tax := newTwoLevelTaxonomy(t, h)

	lex, err := h.taxonomies.Lexicon(h.dbc(t), tax.ID)
	if err != nil {
		t.Fatalf("Lexicon: %v", err)
	}
	if lex.Categories()[0].Title != "low" || lex.Categories()[1].Title != "high" {
		t.Fatalf("categories not in level order: %+v", lex.Categories())
	}
	if !lex.IsAllowedNonVerb("why") || !lex.IsCategorizedVerb("identify") {
		t.Fatalf("membership not loaded")
	}

	stats, err := h.taxonomies.Stats(h.dbc(t), tax.ID)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	wantStats := lexicon.Stats{NumCategories: 2, NumVerbs: 3, NumNonVerbs: 1, NumElements: 5, NumUniqueElements: 4}
	if diff := cmp.Diff(wantStats, stats); diff != "" {
		t.Fatalf("stats (-want +got):\n%s", diff)
	}

	m, err := h.taxonomies.OverlapMatrix(h.dbc(t), tax.ID)
	if err != nil {
		t.Fatalf("OverlapMatrix: %v", err)
	}
	want := lexicon.Matrix{
		Labels:       []string{"low", "high"},
		Levels:       []int{1, 2},
		Sizes:        []int{2, 2},
		Cells:        [][]int{{1, 1}, {1, 1}},
		TotalOverlap: 1,

		LegacyDiagonal: []int{-1, -1},
	}
	if diff := cmp.Diff(want, m); diff != "" {
		t.Fatalf("matrix (-want +got):\n%s", diff)
	}
}

func TestDuplicateLevelWritesNothing(t *testing.T) {
	h := newHarness(t)
	tax := newTwoLevelTaxonomy(t, h)

	_, err := h.taxonomies.CreateCategory(h.dbc(t), tax.ID, services.CategoryInput{Title: "again", Level: 1, VerbList: "recall, brandnew"})
	if !errors.Is(err, types.ErrDuplicateLevel) {
		t.Fatalf("err=%v want duplicate level", err)
	}
	cats, err := h.taxonomies.ListCategories(h.dbc(t), tax.ID)
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if len(cats) != 2 {
		t.Fatalf("categories=%d want 2", len(cats))
	}
	var n int64
	if err := h.db.Model(&types.Verb{}).Where("title = ?", "brandnew").Count(&n).Error; err != nil {
		t.Fatalf("count verbs: %v", err)
	}
	if n != 0 {
		t.Fatalf("verb written by rejected category")
	}

	// Moving a category onto a taken level is rejected the same way.
	if _, err := h.taxonomies.UpdateCategory(h.dbc(t), cats[1].ID, services.CategoryInput{Title: "high", Level: 1, VerbList: "justify"}); !errors.Is(err, types.ErrDuplicateLevel) {
		t.Fatalf("update err=%v want duplicate level", err)
	}
	stored, err := h.taxonomies.ListCategories(h.dbc(t), tax.ID)
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	var levels []int
	var titles []string
	for _, c := range stored {
		levels = append(levels, c.Level)
		titles = append(titles, c.Title)
	}
	if diff := cmp.Diff([]int{1, 2}, levels); diff != "" {
		t.Fatalf("levels after rejected update (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"low", "high"}, titles); diff != "" {
		t.Fatalf("titles after rejected update (-want +got):\n%s", diff)
	}
	// Keeping its own level is fine.
	if _, err := h.taxonomies.UpdateCategory(h.dbc(t), cats[1].ID, services.CategoryInput{Title: "higher", Level: 2, VerbList: "justify"}); err != nil {
		t.Fatalf("UpdateCategory: %v", err)
	}
}

func TestMalformedVerbListPolicy(t *testing.T) {
	tests := []struct {
		name   string
		policy lexicon.MalformedPolicy
		want   []string
	}{
		{name: "reject", policy: lexicon.MalformedReject},
		{name: "literal", policy: lexicon.MalformedLiteral, want: []string{"list", "name(s"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, func(o *harnessOptions) { o.malformed = tt.policy })
			tax, err := h.taxonomies.CreateTaxonomy(h.dbc(t), services.CreateTaxonomyInput{Title: "t"})
			if err != nil {
				t.Fatalf("CreateTaxonomy: %v", err)
			}
			_, err = h.taxonomies.CreateCategory(h.dbc(t), tax.ID, services.CategoryInput{Title: "c", Level: 1, VerbList: "list, name(s"})
			if tt.want == nil {
				if !errors.Is(err, types.ErrMalformedToken) {
					t.Fatalf("err=%v want malformed token", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateCategory: %v", err)
			}
			lex, err := h.taxonomies.Lexicon(h.dbc(t), tax.ID)
			if err != nil {
				t.Fatalf("Lexicon: %v", err)
			}
			if diff := cmp.Diff(tt.want, lex.Categories()[0].Verbs); diff != "" {
				t.Fatalf("verbs (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRebuildMembershipCollectsOrphans(t *testing.T) {
	h := newHarness(t)
	tax := newTwoLevelTaxonomy(t, h)
	cats, err := h.taxonomies.ListCategories(h.dbc(t), tax.ID)
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	low := cats[0]

	if err := h.taxonomies.SetCategoryVerbList(h.dbc(t), low.ID, "identify"); err != nil {
		t.Fatalf("SetCategoryVerbList: %v", err)
	}
	if !h.verbExists(t, "list") {
		t.Fatalf("membership changed before rebuild")
	}
	vl, err := h.taxonomies.RebuildCategoryMembership(h.dbc(t), low.ID)
	if err != nil {
		t.Fatalf("RebuildCategoryMembership: %v", err)
	}
	if diff := cmp.Diff([]string{"identify"}, vl.Verbs); diff != "" {
		t.Fatalf("verbs (-want +got):\n%s", diff)
	}
	if h.verbExists(t, "list") {
		t.Fatalf("orphaned verb not collected")
	}
	if !h.verbExists(t, "identify") {
		t.Fatalf("shared verb removed")
	}
}

func TestDeleteTaxonomyPurgesAnalyses(t *testing.T) {
	h := newHarness(t)
	imp, ca := h.importFixture(t)
	if _, err := h.analyses.RunFullAnalysis(t.Context(), ca.ID); err != nil {
		t.Fatalf("RunFullAnalysis: %v", err)
	}
	if err := h.taxonomies.DeleteTaxonomy(h.dbc(t), imp.Taxonomies[0].ID); err != nil {
		t.Fatalf("DeleteTaxonomy: %v", err)
	}
	if _, err := h.analyses.GetAnalysis(h.dbc(t), ca.ID); !errors.Is(err, types.ErrNotFound) {
		t.Fatalf("GetAnalysis err=%v want not found", err)
	}
	if h.verbExists(t, "define") {
		t.Fatalf("verbs survived their taxonomy")
	}
	if _, err := h.curricula.GetCurriculum(h.dbc(t), imp.Curricula[0].ID); err != nil {
		t.Fatalf("curriculum should survive: %v", err)
	}
}

func TestTogglePublic(t *testing.T) {
	h := newHarness(t)
	tax := newTwoLevelTaxonomy(t, h)
	got, err := h.taxonomies.TogglePublic(h.dbc(t), tax.ID)
	if err != nil {
		t.Fatalf("TogglePublic: %v", err)
	}
	if !got.Public {
		t.Fatalf("taxonomy still private")
	}
	stored, err := h.taxonomies.GetTaxonomy(h.dbc(t), tax.ID)
	if err != nil {
		t.Fatalf("GetTaxonomy: %v", err)
	}
	if !stored.Public {
		t.Fatalf("toggle not persisted")
	}
}

func TestDeleteCategoryCollectsOrphans(t *testing.T) {
	h := newHarness(t)
	tax := newTwoLevelTaxonomy(t, h)
	cats, err := h.taxonomies.ListCategories(h.dbc(t), tax.ID)
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if err := h.taxonomies.DeleteCategory(h.dbc(t), cats[0].ID); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}
	if h.verbExists(t, "list") {
		t.Fatalf("verb only in the deleted category survived")
	}
	if !h.verbExists(t, "identify") {
		t.Fatalf("verb shared with another category removed")
	}
	var n int64
	if err := h.db.Model(&types.NonVerb{}).Where("title = ?", "why").Count(&n).Error; err != nil {
		t.Fatalf("count non-verbs: %v", err)
	}
	if n != 0 {
		t.Fatalf("orphaned non-verb survived")
	}
	stats, err := h.taxonomies.Stats(h.dbc(t), tax.ID)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.NumCategories != 1 || stats.NumVerbs != 2 {
		t.Fatalf("stats=%+v want one category with two verbs", stats)
	}
}

func TestListTaxonomiesPublicOnly(t *testing.T) {
	h := newHarness(t)
	private := newTwoLevelTaxonomy(t, h)
	public, err := h.taxonomies.CreateTaxonomy(h.dbc(t), services.CreateTaxonomyInput{Title: "Shared", Public: true})
	if err != nil {
		t.Fatalf("CreateTaxonomy: %v", err)
	}
	all, err := h.taxonomies.ListTaxonomies(h.dbc(t), taxonomies.ListFilter{})
	if err != nil {
		t.Fatalf("ListTaxonomies: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("taxonomies=%d want 2", len(all))
	}
	pub, err := h.taxonomies.ListTaxonomies(h.dbc(t), taxonomies.ListFilter{PublicOnly: true})
	if err != nil {
		t.Fatalf("ListTaxonomies(public): %v", err)
	}
	if len(pub) != 1 || pub[0].ID != public.ID || pub[0].ID == private.ID {
		t.Fatalf("public taxonomies=%+v want only %s", pub, public.ID)
	}
}

func (h *harness) verbExists(t *testing.T, title string) bool {
	t.Helper()
	var n int64
	if err := h.db.Model(&types.Verb{}).Where("title = ?", title).Count(&n).Error; err != nil {
		t.Fatalf("count verbs: %v", err)
	}
	return n > 0
}
