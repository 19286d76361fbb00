package lexicon

import (
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Category is a read-only snapshot of one verb category and its members.
type Category struct {
	ID       uuid.UUID `json:"id"`
	Title    string    `json:"title"`
	Level    int       `json:"level"`
	Verbs    []string  `json:"verbs"`
	NonVerbs []string  `json:"non_verbs"`
}

// Lexicon is the lookup view of one taxonomy. Categories are ordered by
// level and every result slice indexes into that order.
type Lexicon struct {
	TaxonomyID uuid.UUID

	categories []Category
	byVerb     map[string][]int
	byNonVerb  map[string][]int
}

func New(taxonomyID uuid.UUID, categories []Category) *Lexicon {
	cats := make([]Category, len(categories))
	copy(cats, categories)
	sort.SliceStable(cats, func(i, j int) bool {
		if cats[i].Level != cats[j].Level {
			return cats[i].Level < cats[j].Level
		}
		return cats[i].Title < cats[j].Title
	})

	l := &Lexicon{
		TaxonomyID: taxonomyID,
		categories: cats,
		byVerb:     map[string][]int{},
		byNonVerb:  map[string][]int{},
	}
	for i, c := range cats {
		for _, v := range uniqueLower(c.Verbs) {
			l.byVerb[v] = append(l.byVerb[v], i)
		}
		for _, nv := range uniqueLower(c.NonVerbs) {
			l.byNonVerb[nv] = append(l.byNonVerb[nv], i)
		}
	}
	return l
}

func (l *Lexicon) Categories() []Category { return l.categories }
func (l *Lexicon) Len() int               { return len(l.categories) }

// CategoriesForVerb returns the positions of every category containing
// lemma. Matching is exact after lower-casing.
func (l *Lexicon) CategoriesForVerb(lemma string) []int {
	return l.byVerb[normalize(lemma)]
}

// CategoriesForNonVerb returns the positions of every category that allows
// token as a non-verb signal.
func (l *Lexicon) CategoriesForNonVerb(token string) []int {
	return l.byNonVerb[normalize(token)]
}

func (l *Lexicon) IsAllowedNonVerb(token string) bool {
	return len(l.byNonVerb[normalize(token)]) > 0
}

func (l *Lexicon) IsCategorizedVerb(lemma string) bool {
	return len(l.byVerb[normalize(lemma)]) > 0
}

func normalize(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func uniqueLower(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = normalize(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
