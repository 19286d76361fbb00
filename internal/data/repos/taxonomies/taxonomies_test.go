package taxonomies

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/yungbote/lo-analysis-backend/internal/data/repos/testutil"
	types "github.com/yungbote/lo-analysis-backend/internal/domain"
)

func titlesOf(rows []MemberRow) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Title)
	}
	return out
}

func TestMembershipRepoSharedVerbs(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := testutil.Ctx(t, tx)
	members := NewMembershipRepo(db, testutil.Logger(t))

	tax := testutil.SeedTaxonomy(t, tx, "Blooms")
	knowledge := testutil.SeedCategory(t, tx, tax.ID, 1, "Knowledge")
	analysis := testutil.SeedCategory(t, tx, tax.ID, 4, "Analysis")

	kv, err := members.EnsureVerbs(dbc, []string{"define", "identify", "list"})
	if err != nil {
		t.Fatalf("EnsureVerbs: %v", err)
	}
	av, err := members.EnsureVerbs(dbc, []string{"compare", "identify"})
	if err != nil {
		t.Fatalf("EnsureVerbs #2: %v", err)
	}
	identify := map[string]uuid.UUID{}
	for _, v := range append(kv, av...) {
		if prev, ok := identify[v.Title]; ok && prev != v.ID {
			t.Fatalf("verb %q stored twice: %v and %v", v.Title, prev, v.ID)
		}
		identify[v.Title] = v.ID
	}
	if len(identify) != 4 {
		t.Fatalf("expected 4 distinct verbs, got %d", len(identify))
	}

	nv, err := members.EnsureNonVerbs(dbc, []string{"who"})
	if err != nil {
		t.Fatalf("EnsureNonVerbs: %v", err)
	}

	if err := members.ReplaceCategoryMembers(dbc, knowledge.ID, idsOfVerbs(kv), []uuid.UUID{nv[0].ID}); err != nil {
		t.Fatalf("ReplaceCategoryMembers knowledge: %v", err)
	}
	if err := members.ReplaceCategoryMembers(dbc, analysis.ID, idsOfVerbs(av), nil); err != nil {
		t.Fatalf("ReplaceCategoryMembers analysis: %v", err)
	}

	rows, err := members.VerbsByTaxonomy(dbc, tax.ID)
	if err != nil {
		t.Fatalf("VerbsByTaxonomy: %v", err)
	}
	if diff := cmp.Diff([]string{"compare", "define", "identify", "identify", "list"}, titlesOf(rows)); diff != "" {
		t.Fatalf("verb rows mismatch (-want +got):\n%s", diff)
	}
	nonVerbs, err := members.NonVerbsByTaxonomy(dbc, tax.ID)
	if err != nil || len(nonVerbs) != 1 || nonVerbs[0].VerbCategoryID != knowledge.ID {
		t.Fatalf("NonVerbsByTaxonomy: %v err=%v", nonVerbs, err)
	}

	// Dropping the analysis links orphans "compare" only; "identify" is
	// still linked from knowledge.
	if err := members.DeleteCategoryLinks(dbc, []uuid.UUID{analysis.ID}); err != nil {
		t.Fatalf("DeleteCategoryLinks: %v", err)
	}
	verbs, nonVerbCount, err := members.CollectOrphans(dbc)
	if err != nil {
		t.Fatalf("CollectOrphans: %v", err)
	}
	if verbs != 1 || nonVerbCount != 0 {
		t.Fatalf("CollectOrphans removed verbs=%d nonVerbs=%d, want 1 and 0", verbs, nonVerbCount)
	}

	if err := members.ReplaceCategoryMembers(dbc, knowledge.ID, nil, nil); err != nil {
		t.Fatalf("ReplaceCategoryMembers(empty): %v", err)
	}
	verbs, nonVerbCount, err = members.CollectOrphans(dbc)
	if err != nil || verbs != 3 || nonVerbCount != 1 {
		t.Fatalf("CollectOrphans #2: verbs=%d nonVerbs=%d err=%v", verbs, nonVerbCount, err)
	}
}

func idsOfVerbs(rows []*types.Verb) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(rows))
	for _, v := range rows {
		out = append(out, v.ID)
	}
	return out
}

func TestVerbCategoryRepoLevels(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := testutil.Ctx(t, tx)
	repo := NewVerbCategoryRepo(db, testutil.Logger(t))

	tax := testutil.SeedTaxonomy(t, tx, "Blooms")
	other := testutil.SeedTaxonomy(t, tx, "SOLO")

	comprehension := &types.VerbCategory{TaxonomyID: tax.ID, Level: 2, Title: "Comprehension"}
	knowledge := &types.VerbCategory{TaxonomyID: tax.ID, Level: 1, Title: "Knowledge"}
	for _, c := range []*types.VerbCategory{comprehension, knowledge} {
		if err := repo.Create(dbc, c); err != nil {
			t.Fatalf("Create %s: %v", c.Title, err)
		}
	}
	if err := repo.Create(dbc, &types.VerbCategory{TaxonomyID: other.ID, Level: 1, Title: "Prestructural"}); err != nil {
		t.Fatalf("same level in another taxonomy: %v", err)
	}

	list, err := repo.ListByTaxonomy(dbc, tax.ID)
	if err != nil || len(list) != 2 || list[0].ID != knowledge.ID {
		t.Fatalf("ListByTaxonomy: %v err=%v", list, err)
	}

	taken, err := repo.LevelTaken(dbc, tax.ID, 2, uuid.Nil)
	if err != nil || !taken {
		t.Fatalf("LevelTaken(2): taken=%v err=%v", taken, err)
	}
	taken, err = repo.LevelTaken(dbc, tax.ID, 2, comprehension.ID)
	if err != nil || taken {
		t.Fatalf("LevelTaken(2, except self): taken=%v err=%v", taken, err)
	}

	if err := repo.UpdateFields(dbc, knowledge.ID, map[string]interface{}{"title": "Remember"}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	if got, err := repo.GetByID(dbc, knowledge.ID); err != nil || got.Title != "Remember" {
		t.Fatalf("GetByID after update: %+v err=%v", got, err)
	}

	err = repo.Create(dbc, &types.VerbCategory{TaxonomyID: tax.ID, Level: 1, Title: "Duplicate"})
	if !types.IsCode(err, types.CodeDuplicateLevel) {
		t.Fatalf("duplicate level: expected duplicate_level, got %v", err)
	}
}

func TestTaxonomyRepoDeleteByTaxonomy(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := testutil.Ctx(t, tx)
	taxonomies := NewTaxonomyRepo(db, testutil.Logger(t))
	categories := NewVerbCategoryRepo(db, testutil.Logger(t))

	tax := &types.Taxonomy{Title: "Blooms", Public: true}
	if err := taxonomies.Create(dbc, tax); err != nil {
		t.Fatalf("Create: %v", err)
	}
	testutil.SeedCategory(t, tx, tax.ID, 1, "Knowledge")
	testutil.SeedCategory(t, tx, tax.ID, 2, "Comprehension")

	public, err := taxonomies.List(dbc, ListFilter{PublicOnly: true})
	if err != nil || len(public) != 1 {
		t.Fatalf("List(public): %v err=%v", public, err)
	}

	ids, err := categories.DeleteByTaxonomy(dbc, tax.ID)
	if err != nil || len(ids) != 2 {
		t.Fatalf("DeleteByTaxonomy: ids=%v err=%v", ids, err)
	}
	if err := taxonomies.Delete(dbc, tax.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := taxonomies.GetByID(dbc, tax.ID); !types.IsCode(err, types.CodeNotFound) {
		t.Fatalf("GetByID after delete: %v", err)
	}
}
