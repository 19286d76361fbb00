package nlp

import (
	"context"
	"strings"
)

// Universal part-of-speech tags. Only VERB is consulted by the classifier;
// the rest exist so tokenizers agree on one vocabulary.
const (
	POSVerb  = "VERB"
	POSAux   = "AUX"
	POSNoun  = "NOUN"
	POSPropn = "PROPN"
	POSPron  = "PRON"
	POSAdj   = "ADJ"
	POSAdv   = "ADV"
	POSAdp   = "ADP"
	POSDet   = "DET"
	POSConj  = "CCONJ"
	POSNum   = "NUM"
	POSPart  = "PART"
	POSIntj  = "INTJ"
	POSPunct = "PUNCT"
	POSSym   = "SYM"
	POSOther = "X"
)

// Token is one tagged unit of learning-outcome text. Lemma is only
// guaranteed for VERB tokens.
type Token struct {
	Text  string `json:"text"`
	POS   string `json:"pos"`
	Lemma string `json:"lemma"`
}

type Tokenizer interface {
	Tokenize(ctx context.Context, text string) ([]Token, error)
}

// NonVerbSet answers whether a surface word counts as a category signal.
// *lexicon.Lexicon satisfies it.
type NonVerbSet interface {
	IsAllowedNonVerb(token string) bool
}

// Classification keeps token order. Verbs holds lower-cased lemmas and
// NonVerbs lower-cased surface text.
type Classification struct {
	Verbs    []string `json:"verbs"`
	NonVerbs []string `json:"non_verbs"`
}

// Classify splits tokens into verb lemmas and allowed non-verbs. A VERB
// with no lemma falls back to its surface text. Tokens that are neither
// are dropped.
func Classify(tokens []Token, allowed NonVerbSet) Classification {
	var out Classification
	for _, tok := range tokens {
		surface := strings.ToLower(strings.TrimSpace(tok.Text))
		if strings.EqualFold(tok.POS, POSVerb) {
			lemma := strings.ToLower(strings.TrimSpace(tok.Lemma))
			if lemma == "" {
				lemma = surface
			}
			if lemma != "" {
				out.Verbs = append(out.Verbs, lemma)
			}
			continue
		}
		if surface != "" && allowed != nil && allowed.IsAllowedNonVerb(surface) {
			out.NonVerbs = append(out.NonVerbs, surface)
		}
	}
	return out
}
