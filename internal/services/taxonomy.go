package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/lo-analysis-backend/internal/data/db"
	"github.com/yungbote/lo-analysis-backend/internal/data/repos"
	"github.com/yungbote/lo-analysis-backend/internal/data/repos/taxonomies"
	types "github.com/yungbote/lo-analysis-backend/internal/domain"
	"github.com/yungbote/lo-analysis-backend/internal/lexicon"
	"github.com/yungbote/lo-analysis-backend/internal/platform/dbctx"
	"github.com/yungbote/lo-analysis-backend/internal/platform/logger"
)

type CreateTaxonomyInput struct {
	Title    string     `json:"title"`
	AuthorID *uuid.UUID `json:"author_id,omitempty"`
	Public   bool       `json:"public"`
}

type CategoryInput struct {
	Title    string `json:"title"`
	Level    int    `json:"level"`
	VerbList string `json:"verb_list"`
}

// LexiconSource loads the lookup view of a taxonomy.
type LexiconSource interface {
	Lexicon(dbc dbctx.Context, taxonomyID uuid.UUID) (*lexicon.Lexicon, error)
}

type TaxonomyService interface {
	LexiconSource

	CreateTaxonomy(dbc dbctx.Context, in CreateTaxonomyInput) (*types.Taxonomy, error)
	GetTaxonomy(dbc dbctx.Context, id uuid.UUID) (*types.Taxonomy, error)
	ListTaxonomies(dbc dbctx.Context, f taxonomies.ListFilter) ([]*types.Taxonomy, error)
	TogglePublic(dbc dbctx.Context, id uuid.UUID) (*types.Taxonomy, error)
	// DeleteTaxonomy removes the taxonomy, its categories and memberships,
	// and every analysis that used it.
	DeleteTaxonomy(dbc dbctx.Context, id uuid.UUID) error

	// CreateCategory and UpdateCategory reject a level already used by
	// another category of the taxonomy with CodeDuplicateLevel; nothing is
	// written in that case.
	CreateCategory(dbc dbctx.Context, taxonomyID uuid.UUID, in CategoryInput) (*types.VerbCategory, error)
	UpdateCategory(dbc dbctx.Context, id uuid.UUID, in CategoryInput) (*types.VerbCategory, error)
	// SetCategoryVerbList stores text after checking it parses. Membership
	// is unchanged until RebuildCategoryMembership.
	SetCategoryVerbList(dbc dbctx.Context, id uuid.UUID, text string) error
	RebuildCategoryMembership(dbc dbctx.Context, id uuid.UUID) (lexicon.VerbList, error)
	DeleteCategory(dbc dbctx.Context, id uuid.UUID) error
	ListCategories(dbc dbctx.Context, taxonomyID uuid.UUID) ([]*types.VerbCategory, error)

	Stats(dbc dbctx.Context, taxonomyID uuid.UUID) (lexicon.Stats, error)
	ElementCounts(dbc dbctx.Context, taxonomyID uuid.UUID) ([]lexicon.ElementCount, error)
	OverlapMatrix(dbc dbctx.Context, taxonomyID uuid.UUID) (lexicon.Matrix, error)
}

type taxonomyService struct {
	log      *logger.Logger
	tx       db.TxRunner
	repos    repos.Set
	analyses *analysisPurger
	policy   lexicon.MalformedPolicy
}

func NewTaxonomyService(baseLog *logger.Logger, tx db.TxRunner, set repos.Set, policy lexicon.MalformedPolicy) TaxonomyService {
	return &taxonomyService{
		log:      baseLog.With("service", "TaxonomyService"),
		tx:       tx,
		repos:    set,
		analyses: newAnalysisPurger(set),
		policy:   policy,
	}
}

func (s *taxonomyService) CreateTaxonomy(dbc dbctx.Context, in CreateTaxonomyInput) (*types.Taxonomy, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, types.Validation("taxonomy.create", "title is required")
	}
	t := &types.Taxonomy{ID: uuid.New(), AuthorID: in.AuthorID, Title: title, Public: in.Public}
	if err := s.repos.Taxonomies.Create(dbc, t); err != nil {
		return nil, fmt.Errorf("create taxonomy: %w", err)
	}
	s.log.Info("Taxonomy created", "taxonomy_id", t.ID, "author_id", in.AuthorID)
	return t, nil
}

func (s *taxonomyService) GetTaxonomy(dbc dbctx.Context, id uuid.UUID) (*types.Taxonomy, error) {
	return s.repos.Taxonomies.GetByID(dbc, id)
}

func (s *taxonomyService) ListTaxonomies(dbc dbctx.Context, f taxonomies.ListFilter) ([]*types.Taxonomy, error) {
	return s.repos.Taxonomies.List(dbc, f)
}

func (s *taxonomyService) TogglePublic(dbc dbctx.Context, id uuid.UUID) (*types.Taxonomy, error) {
	var out *types.Taxonomy
	err := inTx(s.tx, dbc, func(dbc dbctx.Context) error {
		t, err := s.repos.Taxonomies.GetByID(dbc, id)
		if err != nil {
			return err
		}
		if err := s.repos.Taxonomies.UpdateFields(dbc, id, map[string]interface{}{"public": !t.Public}); err != nil {
			return err
		}
		t.Public = !t.Public
		out = t
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("toggle taxonomy public: %w", err)
	}
	return out, nil
}

func (s *taxonomyService) DeleteTaxonomy(dbc dbctx.Context, id uuid.UUID) error {
	err := inTx(s.tx, dbc, func(dbc dbctx.Context) error {
		if _, err := s.repos.Taxonomies.GetByID(dbc, id); err != nil {
			return err
		}
		analysisIDs, err := s.repos.Analyses.IDsByTaxonomy(dbc, id)
		if err != nil {
			return err
		}
		if err := s.analyses.purge(dbc, analysisIDs); err != nil {
			return err
		}
		catIDs, err := s.repos.VerbCategories.DeleteByTaxonomy(dbc, id)
		if err != nil {
			return err
		}
		if err := s.repos.Membership.DeleteCategoryLinks(dbc, catIDs); err != nil {
			return err
		}
		if _, _, err := s.repos.Membership.CollectOrphans(dbc); err != nil {
			return err
		}
		return s.repos.Taxonomies.Delete(dbc, id)
	})
	if err != nil {
		return fmt.Errorf("delete taxonomy: %w", err)
	}
	s.log.Info("Taxonomy deleted", "taxonomy_id", id)
	return nil
}

func (s *taxonomyService) validateCategory(op string, in CategoryInput) (string, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return "", types.Validation(op, "title is required")
	}
	if in.Level < 1 {
		return "", types.Validation(op, "level must be at least 1")
	}
	if _, err := lexicon.ParseVerbList(in.VerbList, s.policy); err != nil {
		return "", err
	}
	return title, nil
}

func (s *taxonomyService) CreateCategory(dbc dbctx.Context, taxonomyID uuid.UUID, in CategoryInput) (*types.VerbCategory, error) {
	title, err := s.validateCategory("verb_category.create", in)
	if err != nil {
		return nil, err
	}
	cat := &types.VerbCategory{
		ID:           uuid.New(),
		TaxonomyID:   taxonomyID,
		Level:        in.Level,
		Title:        title,
		VerbListText: in.VerbList,
	}
	err = inTx(s.tx, dbc, func(dbc dbctx.Context) error {
		if _, err := s.repos.Taxonomies.GetByID(dbc, taxonomyID); err != nil {
			return err
		}
		if err := s.checkLevel(dbc, "verb_category.create", taxonomyID, in.Level, uuid.Nil); err != nil {
			return err
		}
		if err := s.repos.VerbCategories.Create(dbc, cat); err != nil {
			return err
		}
		_, err := s.rebuildMembership(dbc, cat)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	s.log.Info("Verb category created", "taxonomy_id", taxonomyID, "category_id", cat.ID, "level", cat.Level)
	return cat, nil
}

func (s *taxonomyService) UpdateCategory(dbc dbctx.Context, id uuid.UUID, in CategoryInput) (*types.VerbCategory, error) {
	title, err := s.validateCategory("verb_category.update", in)
	if err != nil {
		return nil, err
	}
	var out *types.VerbCategory
	err = inTx(s.tx, dbc, func(dbc dbctx.Context) error {
		cat, err := s.repos.VerbCategories.GetByID(dbc, id)
		if err != nil {
			return err
		}
		if err := s.checkLevel(dbc, "verb_category.update", cat.TaxonomyID, in.Level, cat.ID); err != nil {
			return err
		}
		if err := s.repos.VerbCategories.UpdateFields(dbc, id, map[string]interface{}{
			"title":          title,
			"level":          in.Level,
			"verb_list_text": in.VerbList,
		}); err != nil {
			return err
		}
		cat.Title, cat.Level, cat.VerbListText = title, in.Level, in.VerbList
		if _, err := s.rebuildMembership(dbc, cat); err != nil {
			return err
		}
		out = cat
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return out, nil
}

func (s *taxonomyService) checkLevel(dbc dbctx.Context, op string, taxonomyID uuid.UUID, level int, exceptID uuid.UUID) error {
	taken, err := s.repos.VerbCategories.LevelTaken(dbc, taxonomyID, level, exceptID)
	if err != nil {
		return err
	}
	if taken {
		return types.NewError(types.CodeDuplicateLevel, op,
			fmt.Sprintf("level %d is already used in this taxonomy", level), nil)
	}
	return nil
}

func (s *taxonomyService) SetCategoryVerbList(dbc dbctx.Context, id uuid.UUID, text string) error {
	if _, err := lexicon.ParseVerbList(text, s.policy); err != nil {
		return err
	}
	if err := s.repos.VerbCategories.UpdateFields(dbc, id, map[string]interface{}{"verb_list_text": text}); err != nil {
		return fmt.Errorf("set verb list: %w", err)
	}
	return nil
}

func (s *taxonomyService) RebuildCategoryMembership(dbc dbctx.Context, id uuid.UUID) (lexicon.VerbList, error) {
	var out lexicon.VerbList
	err := inTx(s.tx, dbc, func(dbc dbctx.Context) error {
		cat, err := s.repos.VerbCategories.GetByID(dbc, id)
		if err != nil {
			return err
		}
		out, err = s.rebuildMembership(dbc, cat)
		return err
	})
	if err != nil {
		return lexicon.VerbList{}, fmt.Errorf("rebuild category membership: %w", err)
	}
	return out, nil
}

// rebuildMembership replaces the category's links with the parse of its
// verb-list text and drops verbs and non-verbs nothing links to any more.
func (s *taxonomyService) rebuildMembership(dbc dbctx.Context, cat *types.VerbCategory) (lexicon.VerbList, error) {
	vl, err := lexicon.ParseVerbList(cat.VerbListText, s.policy)
	if err != nil {
		return lexicon.VerbList{}, err
	}
	verbs, err := s.repos.Membership.EnsureVerbs(dbc, vl.Verbs)
	if err != nil {
		return lexicon.VerbList{}, err
	}
	nonVerbs, err := s.repos.Membership.EnsureNonVerbs(dbc, vl.NonVerbs)
	if err != nil {
		return lexicon.VerbList{}, err
	}
	verbIDs := make([]uuid.UUID, 0, len(verbs))
	for _, v := range verbs {
		verbIDs = append(verbIDs, v.ID)
	}
	nonVerbIDs := make([]uuid.UUID, 0, len(nonVerbs))
	for _, nv := range nonVerbs {
		nonVerbIDs = append(nonVerbIDs, nv.ID)
	}
	if err := s.repos.Membership.ReplaceCategoryMembers(dbc, cat.ID, verbIDs, nonVerbIDs); err != nil {
		return lexicon.VerbList{}, err
	}
	removedVerbs, removedNonVerbs, err := s.repos.Membership.CollectOrphans(dbc)
	if err != nil {
		return lexicon.VerbList{}, err
	}
	s.log.Debug("Category membership rebuilt",
		"category_id", cat.ID,
		"verbs", len(vl.Verbs),
		"non_verbs", len(vl.NonVerbs),
		"orphans_removed", removedVerbs+removedNonVerbs,
	)
	return vl, nil
}

func (s *taxonomyService) DeleteCategory(dbc dbctx.Context, id uuid.UUID) error {
	err := inTx(s.tx, dbc, func(dbc dbctx.Context) error {
		if err := s.repos.Membership.DeleteCategoryLinks(dbc, []uuid.UUID{id}); err != nil {
			return err
		}
		if err := s.repos.VerbCategories.Delete(dbc, id); err != nil {
			return err
		}
		_, _, err := s.repos.Membership.CollectOrphans(dbc)
		return err
	})
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

func (s *taxonomyService) ListCategories(dbc dbctx.Context, taxonomyID uuid.UUID) ([]*types.VerbCategory, error) {
	if _, err := s.repos.Taxonomies.GetByID(dbc, taxonomyID); err != nil {
		return nil, err
	}
	return s.repos.VerbCategories.ListByTaxonomy(dbc, taxonomyID)
}

func (s *taxonomyService) Lexicon(dbc dbctx.Context, taxonomyID uuid.UUID) (*lexicon.Lexicon, error) {
	if _, err := s.repos.Taxonomies.GetByID(dbc, taxonomyID); err != nil {
		return nil, err
	}
	cats, err := s.repos.VerbCategories.ListByTaxonomy(dbc, taxonomyID)
	if err != nil {
		return nil, err
	}
	verbRows, err := s.repos.Membership.VerbsByTaxonomy(dbc, taxonomyID)
	if err != nil {
		return nil, err
	}
	nonVerbRows, err := s.repos.Membership.NonVerbsByTaxonomy(dbc, taxonomyID)
	if err != nil {
		return nil, err
	}
	verbs := map[uuid.UUID][]string{}
	for _, r := range verbRows {
		verbs[r.VerbCategoryID] = append(verbs[r.VerbCategoryID], r.Title)
	}
	nonVerbs := map[uuid.UUID][]string{}
	for _, r := range nonVerbRows {
		nonVerbs[r.VerbCategoryID] = append(nonVerbs[r.VerbCategoryID], r.Title)
	}
	out := make([]lexicon.Category, 0, len(cats))
	for _, c := range cats {
		out = append(out, lexicon.Category{
			ID:       c.ID,
			Title:    c.Title,
			Level:    c.Level,
			Verbs:    verbs[c.ID],
			NonVerbs: nonVerbs[c.ID],
		})
	}
	return lexicon.New(taxonomyID, out), nil
}

func (s *taxonomyService) Stats(dbc dbctx.Context, taxonomyID uuid.UUID) (lexicon.Stats, error) {
	lex, err := s.Lexicon(dbc, taxonomyID)
	if err != nil {
		return lexicon.Stats{}, err
	}
	return lex.Stats(), nil
}

func (s *taxonomyService) ElementCounts(dbc dbctx.Context, taxonomyID uuid.UUID) ([]lexicon.ElementCount, error) {
	lex, err := s.Lexicon(dbc, taxonomyID)
	if err != nil {
		return nil, err
	}
	return lex.ElementCounts(), nil
}

func (s *taxonomyService) OverlapMatrix(dbc dbctx.Context, taxonomyID uuid.UUID) (lexicon.Matrix, error) {
	lex, err := s.Lexicon(dbc, taxonomyID)
	if err != nil {
		return lexicon.Matrix{}, err
	}
	return lex.OverlapMatrix(), nil
}
