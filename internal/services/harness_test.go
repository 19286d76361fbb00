package services_test

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/lo-analysis-backend/internal/analysis"
	"github.com/yungbote/lo-analysis-backend/internal/data/db"
	"github.com/yungbote/lo-analysis-backend/internal/data/repos"
	"github.com/yungbote/lo-analysis-backend/internal/data/repos/testutil"
	types "github.com/yungbote/lo-analysis-backend/internal/domain"
	"github.com/yungbote/lo-analysis-backend/internal/lexicon"
	"github.com/yungbote/lo-analysis-backend/internal/nlp/mock"
	"github.com/yungbote/lo-analysis-backend/internal/platform/dbctx"
	"github.com/yungbote/lo-analysis-backend/internal/seed"
	"github.com/yungbote/lo-analysis-backend/internal/services"
)

type harnessOptions struct {
	emptyStrand analysis.EmptyStrandPolicy
	malformed   lexicon.MalformedPolicy
	fanout      string
}

type harness struct {
	db  *gorm.DB
	set repos.Set
	tok *mock.Tokenizer

	taxonomies services.TaxonomyService
	curricula  services.CurriculumService
	analyses   services.AnalysisService
	jobs       services.JobService
}

// newHarness wires the services over a private database. Services open
// their own transactions, so tests call them without an outer Tx.
func newHarness(t *testing.T, opts ...func(*harnessOptions)) *harness {
	t.Helper()
	o := harnessOptions{
		emptyStrand: analysis.EmptyStrandError,
		malformed:   lexicon.MalformedReject,
	}
	for _, fn := range opts {
		fn(&o)
	}
	log := testutil.Logger(t)
	gdb := testutil.DB(t)
	set := repos.NewSet(gdb, log)
	tx := db.NewTxRunner(gdb)
	tok := mock.New(mock.BloomsDictionary())

	h := &harness{db: gdb, set: set, tok: tok}
	h.taxonomies = services.NewTaxonomyService(log, tx, set, o.malformed)
	h.curricula = services.NewCurriculumService(log, tx, set)
	h.analyses = services.NewAnalysisService(log, tx, set, h.taxonomies, analysis.NewAnalyzer(tok), services.AnalysisConfig{
		StrandConcurrency: 2,
		EmptyStrandPolicy: o.emptyStrand,
	})
	notify := services.NewJobNotifier(log, set.JobRunEvents, nil)
	h.jobs = services.NewJobService(log, set, notify, services.JobConfig{MaxAttempts: 3, Fanout: o.fanout})
	return h
}

func (h *harness) dbc(t *testing.T) dbctx.Context {
	t.Helper()
	return dbctx.Context{Ctx: t.Context()}
}

// importFixture loads Bloom's taxonomy and the 23-outcome fixture strand
// and creates an analysis binding them.
func (h *harness) importFixture(t *testing.T) (*seed.Imported, *types.CurriculumAnalysis) {
	t.Helper()
	imp, err := seed.Import(h.dbc(t), h.taxonomies, h.curricula, seed.StrandFixture())
	if err != nil {
		t.Fatalf("import fixture: %v", err)
	}
	ca, err := h.analyses.CreateAnalysis(h.dbc(t), services.CreateAnalysisInput{
		CurriculumID: imp.Curricula[0].ID,
		TaxonomyID:   imp.Taxonomies[0].ID,
	})
	if err != nil {
		t.Fatalf("CreateAnalysis: %v", err)
	}
	return imp, ca
}

// addCurriculum creates a curriculum with one strand per text, analysed
// against taxonomyID.
func (h *harness) addCurriculum(t *testing.T, taxonomyID uuid.UUID, texts map[string]string, order ...string) *types.CurriculumAnalysis {
	t.Helper()
	c, err := h.curricula.CreateCurriculum(h.dbc(t), services.CreateCurriculumInput{Title: "Extra"})
	if err != nil {
		t.Fatalf("CreateCurriculum: %v", err)
	}
	for _, title := range order {
		if _, err := h.curricula.CreateStrand(h.dbc(t), c.ID, services.CreateStrandInput{Title: title, Text: texts[title]}); err != nil {
			t.Fatalf("CreateStrand(%q): %v", title, err)
		}
	}
	ca, err := h.analyses.CreateAnalysis(h.dbc(t), services.CreateAnalysisInput{CurriculumID: c.ID, TaxonomyID: taxonomyID})
	if err != nil {
		t.Fatalf("CreateAnalysis: %v", err)
	}
	return ca
}
