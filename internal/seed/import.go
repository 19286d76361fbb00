package seed

import (
	"fmt"

	"github.com/google/uuid"

	types "github.com/yungbote/lo-analysis-backend/internal/domain"
	"github.com/yungbote/lo-analysis-backend/internal/platform/dbctx"
	"github.com/yungbote/lo-analysis-backend/internal/services"
)

type Imported struct {
	Taxonomies []*types.Taxonomy
	Curricula  []*types.Curriculum
	// Strands holds the strands of each imported curriculum, keyed by its ID.
	Strands map[uuid.UUID][]*types.Strand
}

// Import creates everything in f through the authoring services. Each
// taxonomy and curriculum is its own write; a failure stops the import and
// leaves earlier items in place.
func Import(dbc dbctx.Context, taxonomies services.TaxonomyService, curricula services.CurriculumService, f *File) (*Imported, error) {
	out := &Imported{Strands: map[uuid.UUID][]*types.Strand{}}
	for _, t := range f.Taxonomies {
		tax, err := taxonomies.CreateTaxonomy(dbc, services.CreateTaxonomyInput{Title: t.Title, Public: t.Public})
		if err != nil {
			return out, fmt.Errorf("taxonomy %q: %w", t.Title, err)
		}
		for _, c := range t.Categories {
			if _, err := taxonomies.CreateCategory(dbc, tax.ID, services.CategoryInput{
				Title:    c.Title,
				Level:    c.Level,
				VerbList: c.Verbs,
			}); err != nil {
				return out, fmt.Errorf("taxonomy %q category %q: %w", t.Title, c.Title, err)
			}
		}
		out.Taxonomies = append(out.Taxonomies, tax)
	}
	for _, c := range f.Curricula {
		cur, err := curricula.CreateCurriculum(dbc, services.CreateCurriculumInput{
			Title:      c.Title,
			Public:     c.Public,
			Country:    c.Country,
			ISCEDLevel: c.ISCEDLevel,
		})
		if err != nil {
			return out, fmt.Errorf("curriculum %q: %w", c.Title, err)
		}
		for _, s := range c.Strands {
			st, err := curricula.CreateStrand(dbc, cur.ID, services.CreateStrandInput{
				Title:  s.Title,
				Colour: s.Colour,
				Text:   s.Text,
			})
			if err != nil {
				return out, fmt.Errorf("curriculum %q strand %q: %w", c.Title, s.Title, err)
			}
			out.Strands[cur.ID] = append(out.Strands[cur.ID], st)
		}
		out.Curricula = append(out.Curricula, cur)
	}
	return out, nil
}
