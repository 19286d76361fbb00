package nlp

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

type allowSet map[string]bool

func (s allowSet) IsAllowedNonVerb(t string) bool { return s[t] }

func TestClassify(t *testing.T) {
	tokens := []Token{
		{Text: "Recall", POS: POSVerb, Lemma: "recall"},
		{Text: "who", POS: POSPron, Lemma: "who"},
		{Text: "Wrote", POS: POSVerb, Lemma: "write"},
		{Text: "the", POS: POSDet},
		{Text: "Why", POS: POSAdv},
		{Text: "Ran", POS: "verb"},
		{Text: "text", POS: POSNoun, Lemma: "text"},
	}
	got := Classify(tokens, allowSet{"who": true, "why": true})
	want := Classification{
		Verbs:    []string{"recall", "write", "ran"},
		NonVerbs: []string{"who", "why"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Classify mismatch (-want +got):\n%s", diff)
	}
}

func TestClassifyNilAllowSet(t *testing.T) {
	got := Classify([]Token{{Text: "who", POS: POSPron}}, nil)
	if len(got.Verbs) != 0 || len(got.NonVerbs) != 0 {
		t.Fatalf("expected empty classification, got %+v", got)
	}
}

func TestUniversalTag(t *testing.T) {
	cases := map[string]string{
		"VB": POSVerb, "VBD": POSVerb, "VBZ": POSVerb, "VBG": POSVerb,
		"MD": POSAux, "NN": POSNoun, "NNS": POSNoun, "NNP": POSPropn,
		"WP": POSPron, "PRP": POSPron, "WRB": POSAdv, "RB": POSAdv,
		"JJ": POSAdj, "IN": POSAdp, "DT": POSDet, "CC": POSConj,
		"CD": POSNum, "TO": POSPart, ".": POSPunct, ",": POSPunct,
	}
	for in, want := range cases {
		if got := UniversalTag(in); got != want {
			t.Errorf("UniversalTag(%q)=%q want %q", in, got, want)
		}
	}
}
