package analysis

import (
	"context"
	"fmt"

	"github.com/yungbote/lo-analysis-backend/internal/lexicon"
	"github.com/yungbote/lo-analysis-backend/internal/nlp"
)

// OutcomeResult is the analysis of one learning outcome. Hits is indexed
// by the lexicon's category order and always has one entry per category.
type OutcomeResult struct {
	Hits []int `json:"hits"`
	// NonCatVerbs are verb lemmas found in no category, first-seen order.
	NonCatVerbs []string `json:"non_cat_verbs"`
}

// Diversity is the number of categories with at least one hit.
func (r OutcomeResult) Diversity() int { return Diversity(r.Hits) }

// Total is the number of verb and non-verb hits across all categories.
func (r OutcomeResult) Total() int {
	n := 0
	for _, h := range r.Hits {
		n += h
	}
	return n
}

type Analyzer struct {
	tok nlp.Tokenizer
}

func NewAnalyzer(tok nlp.Tokenizer) *Analyzer {
	return &Analyzer{tok: tok}
}

// AnalyzeText tokenizes text and counts category hits. A verb lemma adds
// one hit to every category containing it; an allowed non-verb adds one
// hit to every category allowing it. Non-verbs never become
// non-categorised verbs.
func (a *Analyzer) AnalyzeText(ctx context.Context, lex *lexicon.Lexicon, text string) (OutcomeResult, error) {
	res := OutcomeResult{Hits: make([]int, lex.Len())}
	tokens, err := a.tok.Tokenize(ctx, text)
	if err != nil {
		return OutcomeResult{}, fmt.Errorf("tokenize: %w", err)
	}
	cls := nlp.Classify(tokens, lex)

	seen := map[string]bool{}
	for _, lemma := range cls.Verbs {
		cats := lex.CategoriesForVerb(lemma)
		if len(cats) == 0 {
			if !seen[lemma] {
				seen[lemma] = true
				res.NonCatVerbs = append(res.NonCatVerbs, lemma)
			}
			continue
		}
		for _, i := range cats {
			res.Hits[i]++
		}
	}
	for _, tok := range cls.NonVerbs {
		for _, i := range lex.CategoriesForNonVerb(tok) {
			res.Hits[i]++
		}
	}
	return res, nil
}
