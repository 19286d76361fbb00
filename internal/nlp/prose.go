package nlp

import (
	"context"
	"fmt"
	"strings"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
	"github.com/jdkato/prose/v2"

	"github.com/yungbote/lo-analysis-backend/internal/platform/ctxutil"
)

// ProseTokenizer tags text with prose's averaged-perceptron tagger and
// lemmatizes verbs with golem's English dictionary. Both are in-process
// and safe for concurrent use.
type ProseTokenizer struct {
	lemmatizer *golem.Lemmatizer
}

func NewProseTokenizer() (*ProseTokenizer, error) {
	lem, err := golem.New(en.New())
	if err != nil {
		return nil, fmt.Errorf("load english lemma dictionary: %w", err)
	}
	return &ProseTokenizer{lemmatizer: lem}, nil
}

func (p *ProseTokenizer) Tokenize(ctx context.Context, text string) ([]Token, error) {
	if err := ctxutil.Default(ctx).Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	doc, err := prose.NewDocument(text,
		prose.WithSegmentation(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return nil, fmt.Errorf("prose tokenize: %w", err)
	}
	raw := doc.Tokens()
	out := make([]Token, 0, len(raw))
	for _, t := range raw {
		pos := UniversalTag(t.Tag)
		tok := Token{Text: t.Text, POS: pos}
		if pos == POSVerb {
			tok.Lemma = p.lemmatizer.Lemma(strings.ToLower(t.Text))
		}
		out = append(out, tok)
	}
	return out, nil
}

// UniversalTag maps a Penn Treebank tag onto the universal tag set.
func UniversalTag(penn string) string {
	switch {
	case strings.HasPrefix(penn, "VB"):
		return POSVerb
	case penn == "MD":
		return POSAux
	case penn == "NNP" || penn == "NNPS":
		return POSPropn
	case strings.HasPrefix(penn, "NN"):
		return POSNoun
	case penn == "PRP" || penn == "PRP$" || penn == "WP" || penn == "WP$" || penn == "EX":
		return POSPron
	case strings.HasPrefix(penn, "JJ"):
		return POSAdj
	case strings.HasPrefix(penn, "RB") || penn == "WRB":
		return POSAdv
	case penn == "IN":
		return POSAdp
	case penn == "DT" || penn == "WDT" || penn == "PDT":
		return POSDet
	case penn == "CC":
		return POSConj
	case penn == "CD":
		return POSNum
	case penn == "TO" || penn == "RP" || penn == "POS":
		return POSPart
	case penn == "UH":
		return POSIntj
	case penn == "SYM" || penn == "$" || penn == "#":
		return POSSym
	case penn == "FW" || penn == "LS" || penn == "":
		return POSOther
	default:
		return POSPunct
	}
}
