package lexicon

import (
	"strings"
	"unicode"

	"github.com/yungbote/lo-analysis-backend/internal/domain"
)

// MalformedPolicy decides what happens to a verb-list token with unmatched
// parentheses such as "(who" or "rec)ite".
type MalformedPolicy string

const (
	// MalformedReject fails the parse with domain.ErrMalformedToken.
	MalformedReject MalformedPolicy = "reject"
	// MalformedLiteral keeps the token as a verb, parentheses included.
	MalformedLiteral MalformedPolicy = "literal"
)

func ParseMalformedPolicy(s string) MalformedPolicy {
	if strings.EqualFold(strings.TrimSpace(s), string(MalformedLiteral)) {
		return MalformedLiteral
	}
	return MalformedReject
}

// VerbList is the parsed form of a category's verb-list text.
type VerbList struct {
	Verbs    []string `json:"verbs"`
	NonVerbs []string `json:"non_verbs"`
}

// ParseVerbList lower-cases text, strips all whitespace and splits on
// commas. "(x)" marks x as an allowed non-verb; everything else is a verb.
// Empty tokens are skipped and duplicates collapse to their first position.
func ParseVerbList(text string, policy MalformedPolicy) (VerbList, error) {
	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, text)

	var out VerbList
	seenVerb := map[string]bool{}
	seenNonVerb := map[string]bool{}
	for _, tok := range strings.Split(compact, ",") {
		if tok == "" {
			continue
		}
		if inner, ok := enclosed(tok); ok {
			if inner == "" {
				continue
			}
			if !seenNonVerb[inner] {
				seenNonVerb[inner] = true
				out.NonVerbs = append(out.NonVerbs, inner)
			}
			continue
		}
		if strings.ContainsAny(tok, "()") && policy != MalformedLiteral {
			return VerbList{}, domain.NewError(domain.CodeMalformedToken, "lexicon.parse_verb_list",
				"unmatched parenthesis in token "+quote(tok), nil)
		}
		if !seenVerb[tok] {
			seenVerb[tok] = true
			out.Verbs = append(out.Verbs, tok)
		}
	}
	return out, nil
}

// enclosed reports whether tok is exactly "(" inner ")" with no other
// parentheses inside.
func enclosed(tok string) (string, bool) {
	if len(tok) < 2 || tok[0] != '(' || tok[len(tok)-1] != ')' {
		return "", false
	}
	inner := tok[1 : len(tok)-1]
	if strings.ContainsAny(inner, "()") {
		return "", false
	}
	return inner, true
}

func quote(s string) string { return "\"" + s + "\"" }
