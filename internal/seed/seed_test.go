package seed

import (
	"testing"

	"github.com/yungbote/lo-analysis-backend/internal/domain/curriculum"
	"github.com/yungbote/lo-analysis-backend/internal/lexicon"
)

func TestEmbeddedFixtures(t *testing.T) {
	f := StrandFixture()
	if len(f.Taxonomies) != 1 || len(f.Taxonomies[0].Categories) != 6 {
		t.Fatalf("unexpected taxonomy shape: %+v", f.Taxonomies)
	}
	if len(f.Curricula) != 1 || len(f.Curricula[0].Strands) != 1 {
		t.Fatalf("unexpected curriculum shape: %+v", f.Curricula)
	}
	if n := len(curriculum.OutcomeLines(f.Curricula[0].Strands[0].Text)); n != 23 {
		t.Fatalf("fixture strand has %d outcomes, want 23", n)
	}

	lex, err := f.Taxonomies[0].Lexicon(lexicon.MalformedReject)
	if err != nil {
		t.Fatalf("Lexicon: %v", err)
	}
	if !lex.IsAllowedNonVerb("who") {
		t.Fatalf("who should be an allowed non-verb")
	}
	if got := lex.Stats().NumVerbs; got != 19 {
		t.Fatalf("NumVerbs=%d want 19", got)
	}
}

func TestParseRejectsDuplicateLevels(t *testing.T) {
	_, err := Parse([]byte(`
taxonomies:
  - title: t
    categories:
      - {title: a, level: 1, verbs: "x"}
      - {title: b, level: 1, verbs: "y"}
`))
	if err == nil {
		t.Fatalf("expected duplicate level error")
	}
}

func TestParseRequiresTitles(t *testing.T) {
	if _, err := Parse([]byte("curricula:\n  - strands: []\n")); err == nil {
		t.Fatalf("expected missing title error")
	}
	if _, err := Parse([]byte("taxonomies: [")); err == nil {
		t.Fatalf("expected yaml error")
	}
}
