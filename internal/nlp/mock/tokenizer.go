// Package mock provides a deterministic dictionary-driven tokenizer for
// tests that must not depend on a statistical tagger.
package mock

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"unicode"

	"github.com/yungbote/lo-analysis-backend/internal/nlp"
)

type Entry struct {
	POS   string
	Lemma string
}

// Tokenizer splits on anything that is not a letter and lower-cases the
// words. Words missing from Dict are tagged NOUN.
type Tokenizer struct {
	Dict map[string]Entry
	// FailOn makes Tokenize return ErrInjected for text containing it.
	FailOn string

	calls atomic.Int64
}

var ErrInjected = errors.New("mock tokenizer: injected failure")

func New(dict map[string]Entry) *Tokenizer {
	return &Tokenizer{Dict: dict}
}

func (t *Tokenizer) Calls() int64 { return t.calls.Load() }

func (t *Tokenizer) Tokenize(ctx context.Context, text string) ([]nlp.Token, error) {
	t.calls.Add(1)
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	if t.FailOn != "" && strings.Contains(text, t.FailOn) {
		return nil, ErrInjected
	}
	words := strings.FieldsFunc(text, func(r rune) bool { return !unicode.IsLetter(r) })
	out := make([]nlp.Token, 0, len(words))
	for _, w := range words {
		lw := strings.ToLower(w)
		e, ok := t.Dict[lw]
		if !ok {
			out = append(out, nlp.Token{Text: w, POS: nlp.POSNoun, Lemma: lw})
			continue
		}
		lemma := e.Lemma
		if lemma == "" {
			lemma = lw
		}
		out = append(out, nlp.Token{Text: w, POS: e.POS, Lemma: lemma})
	}
	return out, nil
}

// Verbs builds dictionary entries tagging each surface form as a VERB
// with the given lemma.
func Verbs(surfaceToLemma map[string]string) map[string]Entry {
	out := make(map[string]Entry, len(surfaceToLemma))
	for s, l := range surfaceToLemma {
		out[s] = Entry{POS: nlp.POSVerb, Lemma: l}
	}
	return out
}

// BloomsDictionary covers the verbs used by the Bloom's strand fixture,
// plus the interrogatives and a verb no category claims.
func BloomsDictionary() map[string]Entry {
	d := Verbs(map[string]string{
		"define": "define", "list": "list", "recall": "recall",
		"explain": "explain", "summarise": "summarise", "describe": "describe",
		"apply": "apply", "use": "use", "demonstrate": "demonstrate", "solve": "solve",
		"analyse": "analyse", "compare": "compare", "examine": "examine",
		"design": "design", "create": "create", "compose": "compose",
		"evaluate": "evaluate", "justify": "justify", "assess": "assess",
		"enjoy": "enjoy", "wrote": "write",
	})
	for _, w := range []string{"who", "what", "where", "when", "why"} {
		d[w] = Entry{POS: nlp.POSPron, Lemma: w}
	}
	return d
}
