package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/lo-analysis-backend/internal/analysis"
	"github.com/yungbote/lo-analysis-backend/internal/data/db"
	"github.com/yungbote/lo-analysis-backend/internal/data/repos"
	"github.com/yungbote/lo-analysis-backend/internal/data/repos/analyses"
	types "github.com/yungbote/lo-analysis-backend/internal/domain"
	"github.com/yungbote/lo-analysis-backend/internal/lexicon"
	"github.com/yungbote/lo-analysis-backend/internal/observability"
	"github.com/yungbote/lo-analysis-backend/internal/platform/dbctx"
	"github.com/yungbote/lo-analysis-backend/internal/platform/logger"
)

type AnalysisConfig struct {
	// StrandConcurrency bounds the inline per-strand fan-out. <= 0 means 4.
	StrandConcurrency int
	EmptyStrandPolicy analysis.EmptyStrandPolicy
}

type CreateAnalysisInput struct {
	CurriculumID uuid.UUID `json:"curriculum_id"`
	TaxonomyID   uuid.UUID `json:"taxonomy_id"`
	Title        string    `json:"title"`
}

// StrandError is the failure of one strand during a full run.
type StrandError struct {
	StrandAnalysisID uuid.UUID
	StrandTitle      string
	Err              error
}

func (e *StrandError) Error() string {
	return fmt.Sprintf("strand %q: %v", e.StrandTitle, e.Err)
}

func (e *StrandError) Unwrap() error { return e.Err }

type StrandReport struct {
	StrandAnalysisID    uuid.UUID         `json:"strand_analysis_id"`
	StrandID            uuid.UUID         `json:"strand_id"`
	Title               string            `json:"title"`
	Colour              string            `json:"colour"`
	NumLearningOutcomes int               `json:"num_learning_outcomes"`
	HitCounts           []int             `json:"hit_counts,omitempty"`
	Diversity           []int             `json:"diversity,omitempty"`
	Average             *analysis.Average `json:"average,omitempty"`
}

// Report is the full read model of one analysis. Labels and Levels follow
// the taxonomy's level order; Strands follow creation order.
type Report struct {
	AnalysisID   uuid.UUID      `json:"analysis_id"`
	CurriculumID uuid.UUID      `json:"curriculum_id"`
	TaxonomyID   uuid.UUID      `json:"taxonomy_id"`
	Title        string         `json:"title"`
	Labels       []string       `json:"labels"`
	Levels       []int          `json:"levels"`
	Strands      []StrandReport `json:"strands"`
	NonCatVerbs  []string       `json:"non_categorised_verbs"`
}

type StrandSeries struct {
	StrandID            uuid.UUID `json:"strand_id"`
	Title               string    `json:"title"`
	Colour              string    `json:"colour"`
	NumLearningOutcomes int       `json:"num_learning_outcomes"`
	Values              []float64 `json:"values"`
}

// SeriesView is one chart-shaped projection of a Report.
type SeriesView struct {
	Labels []string       `json:"labels"`
	Series []StrandSeries `json:"series"`
}

type AnalysisService interface {
	CreateAnalysis(dbc dbctx.Context, in CreateAnalysisInput) (*types.CurriculumAnalysis, error)
	GetAnalysis(dbc dbctx.Context, id uuid.UUID) (*types.CurriculumAnalysis, error)
	ListAnalyses(dbc dbctx.Context, curriculumID uuid.UUID) ([]*types.CurriculumAnalysis, error)
	DeleteAnalysis(dbc dbctx.Context, id uuid.UUID) error

	// Initialise drops every derived row of the analysis and creates one
	// empty strand analysis per strand, in one transaction.
	Initialise(ctx context.Context, analysisID uuid.UUID) ([]*types.StrandAnalysis, error)

	RunHitCountStage(ctx context.Context, strandAnalysisID uuid.UUID) error
	RunCategoryOccurrenceStage(ctx context.Context, strandAnalysisID uuid.UUID) error
	RunDiversityStage(ctx context.Context, strandAnalysisID uuid.UUID) error
	RunAverageStage(ctx context.Context, strandAnalysisID uuid.UUID) error
	// RunStrand runs the four stages in order and stops at the first error.
	RunStrand(ctx context.Context, strandAnalysisID uuid.UUID) error
	// RunFullAnalysis initialises and runs every strand. A failing strand
	// does not stop the others; failures are joined as *StrandError values
	// and the report still reflects the strands that committed.
	RunFullAnalysis(ctx context.Context, analysisID uuid.UUID) (*Report, error)
	// Finish marks a run driven strand by strand as complete and returns
	// the report.
	Finish(ctx context.Context, analysisID uuid.UUID) (*Report, error)

	Report(dbc dbctx.Context, analysisID uuid.UUID) (*Report, error)
	CategoryHitCounts(dbc dbctx.Context, analysisID uuid.UUID) (SeriesView, error)
	CategoryDiversities(dbc dbctx.Context, analysisID uuid.UUID) (SeriesView, error)
	VerbAverages(dbc dbctx.Context, analysisID uuid.UUID) (SeriesView, error)
	CategoryAverages(dbc dbctx.Context, analysisID uuid.UUID) (SeriesView, error)
	NonCatVerbs(dbc dbctx.Context, analysisID uuid.UUID) ([]string, error)
}

type analysisService struct {
	log      *logger.Logger
	tx       db.TxRunner
	repos    repos.Set
	lexicons LexiconSource
	analyzer *analysis.Analyzer
	purger   *analysisPurger
	cfg      AnalysisConfig
}

func NewAnalysisService(
	baseLog *logger.Logger,
	tx db.TxRunner,
	set repos.Set,
	lexicons LexiconSource,
	analyzer *analysis.Analyzer,
	cfg AnalysisConfig,
) AnalysisService {
	if cfg.StrandConcurrency <= 0 {
		cfg.StrandConcurrency = 4
	}
	if cfg.EmptyStrandPolicy == "" {
		cfg.EmptyStrandPolicy = analysis.EmptyStrandError
	}
	return &analysisService{
		log:      baseLog.With("service", "AnalysisService"),
		tx:       tx,
		repos:    set,
		lexicons: lexicons,
		analyzer: analyzer,
		purger:   newAnalysisPurger(set),
		cfg:      cfg,
	}
}

func (s *analysisService) CreateAnalysis(dbc dbctx.Context, in CreateAnalysisInput) (*types.CurriculumAnalysis, error) {
	if in.CurriculumID == uuid.Nil || in.TaxonomyID == uuid.Nil {
		return nil, types.Validation("analysis.create", "curriculum_id and taxonomy_id are required")
	}
	var out *types.CurriculumAnalysis
	err := inTx(s.tx, dbc, func(dbc dbctx.Context) error {
		c, err := s.repos.Curricula.GetByID(dbc, in.CurriculumID)
		if err != nil {
			return err
		}
		t, err := s.repos.Taxonomies.GetByID(dbc, in.TaxonomyID)
		if err != nil {
			return err
		}
		title := strings.TrimSpace(in.Title)
		if title == "" {
			title = c.Title + " / " + t.Title
		}
		out = &types.CurriculumAnalysis{
			ID:           uuid.New(),
			CurriculumID: c.ID,
			TaxonomyID:   t.ID,
			Title:        title,
		}
		return s.repos.Analyses.Create(dbc, out)
	})
	if err != nil {
		return nil, fmt.Errorf("create analysis: %w", err)
	}
	s.log.Info("Analysis created", "analysis_id", out.ID, "curriculum_id", out.CurriculumID, "taxonomy_id", out.TaxonomyID)
	return out, nil
}

func (s *analysisService) GetAnalysis(dbc dbctx.Context, id uuid.UUID) (*types.CurriculumAnalysis, error) {
	return s.repos.Analyses.GetByID(dbc, id)
}

func (s *analysisService) ListAnalyses(dbc dbctx.Context, curriculumID uuid.UUID) ([]*types.CurriculumAnalysis, error) {
	if _, err := s.repos.Curricula.GetByID(dbc, curriculumID); err != nil {
		return nil, err
	}
	return s.repos.Analyses.ListByCurriculum(dbc, curriculumID)
}

func (s *analysisService) DeleteAnalysis(dbc dbctx.Context, id uuid.UUID) error {
	err := inTx(s.tx, dbc, func(dbc dbctx.Context) error {
		if _, err := s.repos.Analyses.GetByID(dbc, id); err != nil {
			return err
		}
		return s.purger.purge(dbc, []uuid.UUID{id})
	})
	if err != nil {
		return fmt.Errorf("delete analysis: %w", err)
	}
	s.log.Info("Analysis deleted", "analysis_id", id)
	return nil
}

func (s *analysisService) Initialise(ctx context.Context, analysisID uuid.UUID) ([]*types.StrandAnalysis, error) {
	ctx, span := observability.StartSpan(ctx, "analysis.initialise", attribute.String("analysis_id", analysisID.String()))
	defer span.End()

	var rows []*types.StrandAnalysis
	err := s.tx.InTx(ctx, func(dbc dbctx.Context) error {
		a, err := s.repos.Analyses.GetByID(dbc, analysisID)
		if err != nil {
			return err
		}
		oldIDs, err := s.repos.StrandAnalyses.IDsByAnalyses(dbc, []uuid.UUID{analysisID})
		if err != nil {
			return err
		}
		if err := s.purger.purgeStrandAnalyses(dbc, oldIDs); err != nil {
			return err
		}
		if err := s.repos.NonCatVerbs.UnlinkAnalysis(dbc, analysisID); err != nil {
			return err
		}
		if _, err := s.repos.NonCatVerbs.CollectOrphans(dbc); err != nil {
			return err
		}
		strands, err := s.repos.Strands.ListByCurriculum(dbc, a.CurriculumID)
		if err != nil {
			return err
		}
		rows = make([]*types.StrandAnalysis, 0, len(strands))
		for _, st := range strands {
			rows = append(rows, &types.StrandAnalysis{
				ID:                   uuid.New(),
				CurriculumAnalysisID: analysisID,
				StrandID:             st.ID,
			})
		}
		return s.repos.StrandAnalyses.Create(dbc, rows)
	})
	if err != nil {
		observability.RecordError(span, err)
		return nil, fmt.Errorf("initialise analysis: %w", err)
	}
	s.log.Info("Analysis initialised", "analysis_id", analysisID, "strands", len(rows))
	return rows, nil
}

// strandScope is everything a stage needs to know about one strand
// analysis. Loaded outside any transaction.
type strandScope struct {
	sa     *types.StrandAnalysis
	strand *types.Strand
	ca     *types.CurriculumAnalysis
	lex    *lexicon.Lexicon
}

func (s *analysisService) loadScope(ctx context.Context, strandAnalysisID uuid.UUID, lex *lexicon.Lexicon) (*strandScope, error) {
	dbc := dbctx.Context{Ctx: ctx}
	sa, err := s.repos.StrandAnalyses.GetByID(dbc, strandAnalysisID)
	if err != nil {
		return nil, err
	}
	ca, err := s.repos.Analyses.GetByID(dbc, sa.CurriculumAnalysisID)
	if err != nil {
		return nil, err
	}
	strand, err := s.repos.Strands.GetByID(dbc, sa.StrandID)
	if err != nil {
		return nil, err
	}
	if lex == nil {
		if lex, err = s.lexicons.Lexicon(dbc, ca.TaxonomyID); err != nil {
			return nil, err
		}
	}
	return &strandScope{sa: sa, strand: strand, ca: ca, lex: lex}, nil
}

func (s *analysisService) stage(ctx context.Context, name string, strandAnalysisID uuid.UUID, lex *lexicon.Lexicon, fn func(ctx context.Context, sc *strandScope) error) error {
	ctx, span := observability.StartSpan(ctx, "analysis.strand."+name,
		attribute.String("strand_analysis_id", strandAnalysisID.String()))
	defer span.End()
	start := time.Now()
	sc, err := s.loadScope(ctx, strandAnalysisID, lex)
	if err == nil {
		err = fn(ctx, sc)
	}
	if err != nil {
		observability.Current().ObserveStage(name, types.JobStatusFailed, time.Since(start))
		observability.RecordError(span, err)
		s.log.Warn("Strand stage failed", "stage", name, "strand_analysis_id", strandAnalysisID, "error", err)
		return fmt.Errorf("%s stage: %w", name, err)
	}
	observability.Current().ObserveStage(name, types.JobStatusSucceeded, time.Since(start))
	return nil
}

func (s *analysisService) RunHitCountStage(ctx context.Context, strandAnalysisID uuid.UUID) error {
	return s.stage(ctx, "hit_count", strandAnalysisID, nil, s.hitCount)
}

func (s *analysisService) RunCategoryOccurrenceStage(ctx context.Context, strandAnalysisID uuid.UUID) error {
	return s.stage(ctx, "category_occurrence", strandAnalysisID, nil, s.categoryOccurrence)
}

func (s *analysisService) RunDiversityStage(ctx context.Context, strandAnalysisID uuid.UUID) error {
	return s.stage(ctx, "diversity", strandAnalysisID, nil, s.diversity)
}

func (s *analysisService) RunAverageStage(ctx context.Context, strandAnalysisID uuid.UUID) error {
	return s.stage(ctx, "average", strandAnalysisID, nil, s.average)
}

func (s *analysisService) RunStrand(ctx context.Context, strandAnalysisID uuid.UUID) error {
	return s.runStrand(ctx, strandAnalysisID, nil)
}

func (s *analysisService) runStrand(ctx context.Context, strandAnalysisID uuid.UUID, lex *lexicon.Lexicon) error {
	stages := []struct {
		name string
		fn   func(ctx context.Context, sc *strandScope) error
	}{
		{"hit_count", s.hitCount},
		{"category_occurrence", s.categoryOccurrence},
		{"diversity", s.diversity},
		{"average", s.average},
	}
	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.stage(ctx, st.name, strandAnalysisID, lex, st.fn); err != nil {
			return err
		}
	}
	return nil
}

func (s *analysisService) hitCount(ctx context.Context, sc *strandScope) error {
	dbc := dbctx.Context{Ctx: ctx}
	los, err := s.repos.LearningOutcomes.ListByStrand(dbc, sc.strand.ID)
	if err != nil {
		return err
	}
	cats := sc.lex.Categories()

	records := make([]analyses.OutcomeRecord, 0, len(los))
	var nonCat []string
	seen := map[string]bool{}
	for _, lo := range los {
		res, err := s.analyzer.AnalyzeText(ctx, sc.lex, lo.Text)
		if err != nil {
			return types.Wrap(types.CodeRetryable, "analysis.hit_count", err)
		}
		rec := analyses.OutcomeRecord{
			Analysis: &types.LearningOutcomeAnalysis{
				ID:                   uuid.New(),
				LearningOutcomeID:    lo.ID,
				LearningOutcomeIndex: lo.Index,
			},
			Hits: make([]*types.LearningOutcomeCategoryHitCount, 0, len(cats)),
		}
		for i, c := range cats {
			rec.Hits = append(rec.Hits, &types.LearningOutcomeCategoryHitCount{
				ID:             uuid.New(),
				VerbCategoryID: c.ID,
				HitCount:       res.Hits[i],
			})
		}
		records = append(records, rec)
		for _, v := range res.NonCatVerbs {
			if !seen[v] {
				seen[v] = true
				nonCat = append(nonCat, v)
			}
		}
	}

	observability.Current().AddNonCatVerbs("hit_count", len(nonCat))
	return s.tx.InTx(ctx, func(dbc dbctx.Context) error {
		if err := s.repos.OutcomeAnalyses.Replace(dbc, sc.sa.ID, records); err != nil {
			return err
		}
		rows, err := s.repos.NonCatVerbs.Ensure(dbc, nonCat)
		if err != nil {
			return err
		}
		ids := make([]uuid.UUID, 0, len(rows))
		for _, r := range rows {
			ids = append(ids, r.ID)
		}
		return s.repos.NonCatVerbs.Link(dbc, sc.ca.ID, ids)
	})
}

// outcomeHits reads the stored per-outcome hit vectors aligned to the
// lexicon's category order and checks they still cover every outcome of
// the strand.
func (s *analysisService) outcomeHits(dbc dbctx.Context, sc *strandScope) ([][]int, error) {
	numLOs, err := s.repos.LearningOutcomes.CountByStrand(dbc, sc.strand.ID)
	if err != nil {
		return nil, err
	}
	numAnalysed, err := s.repos.OutcomeAnalyses.CountByStrandAnalysis(dbc, sc.sa.ID)
	if err != nil {
		return nil, err
	}
	if numLOs != numAnalysed {
		return nil, types.NewError(types.CodeInvariantViolation, "analysis.outcome_hits",
			fmt.Sprintf("strand has %d learning outcomes but %d were analysed", numLOs, numAnalysed), nil)
	}
	rows, err := s.repos.OutcomeAnalyses.HitsByStrandAnalysis(dbc, sc.sa.ID)
	if err != nil {
		return nil, err
	}
	col := map[uuid.UUID]int{}
	for i, c := range sc.lex.Categories() {
		col[c.ID] = i
	}
	n := sc.lex.Len()
	byOutcome := map[uuid.UUID][]int{}
	order := []uuid.UUID{}
	for _, r := range rows {
		i, ok := col[r.VerbCategoryID]
		if !ok {
			return nil, types.NewError(types.CodeInvariantViolation, "analysis.outcome_hits",
				"hit count references a category outside the taxonomy", nil)
		}
		hits, ok := byOutcome[r.LearningOutcomeAnalysisID]
		if !ok {
			hits = make([]int, n)
			byOutcome[r.LearningOutcomeAnalysisID] = hits
			order = append(order, r.LearningOutcomeAnalysisID)
		}
		hits[i] = r.HitCount
	}
	out := make([][]int, 0, numAnalysed)
	for _, id := range order {
		out = append(out, byOutcome[id])
	}
	// Outcomes analysed against an empty taxonomy have no hit rows.
	for int64(len(out)) < numAnalysed {
		out = append(out, make([]int, n))
	}
	return out, nil
}

func (s *analysisService) categoryOccurrence(ctx context.Context, sc *strandScope) error {
	return s.tx.InTx(ctx, func(dbc dbctx.Context) error {
		hits, err := s.outcomeHits(dbc, sc)
		if err != nil {
			return err
		}
		occ := analysis.CategoryOccurrence(hits, sc.lex.Len())
		rows := make([]*types.StrandCategoryHitCount, 0, len(occ))
		for i, c := range sc.lex.Categories() {
			rows = append(rows, &types.StrandCategoryHitCount{
				ID:               uuid.New(),
				StrandAnalysisID: sc.sa.ID,
				VerbCategoryID:   c.ID,
				HitCount:         occ[i],
			})
		}
		return s.repos.StrandResults.ReplaceHitCounts(dbc, sc.sa.ID, rows)
	})
}

func (s *analysisService) diversity(ctx context.Context, sc *strandScope) error {
	return s.tx.InTx(ctx, func(dbc dbctx.Context) error {
		hits, err := s.outcomeHits(dbc, sc)
		if err != nil {
			return err
		}
		hist := analysis.DiversityHistogram(hits, sc.lex.Len())
		rows := make([]*types.StrandCategoryDiversity, 0, len(hist))
		for k, n := range hist {
			rows = append(rows, &types.StrandCategoryDiversity{
				ID:                  uuid.New(),
				StrandAnalysisID:    sc.sa.ID,
				NumCategories:       k,
				NumLearningOutcomes: n,
			})
		}
		return s.repos.StrandResults.ReplaceDiversities(dbc, sc.sa.ID, rows)
	})
}

func (s *analysisService) average(ctx context.Context, sc *strandScope) error {
	return s.tx.InTx(ctx, func(dbc dbctx.Context) error {
		hits, err := s.outcomeHits(dbc, sc)
		if err != nil {
			return err
		}
		total := 0
		for _, h := range hits {
			for _, n := range h {
				total += n
			}
		}
		stored, err := s.repos.StrandResults.Diversities(dbc, []uuid.UUID{sc.sa.ID})
		if err != nil {
			return err
		}
		if len(stored) != sc.lex.Len()+1 {
			return types.NewError(types.CodeInvariantViolation, "analysis.average",
				fmt.Sprintf("expected %d diversity rows, found %d", sc.lex.Len()+1, len(stored)), nil)
		}
		hist := make([]int, len(stored))
		for _, d := range stored {
			if d.NumCategories < 0 || d.NumCategories >= len(hist) {
				return types.NewError(types.CodeInvariantViolation, "analysis.average",
					"diversity row outside 0..N", nil)
			}
			hist[d.NumCategories] = d.NumLearningOutcomes
		}
		avg, err := analysis.Averages(total, hist, len(hits), s.cfg.EmptyStrandPolicy)
		if err != nil {
			return err
		}
		return s.repos.StrandResults.ReplaceAverage(dbc, sc.sa.ID, &types.StrandAverage{
			ID:               uuid.New(),
			StrandAnalysisID: sc.sa.ID,
			Verbs:            avg.Verbs,
			Categories:       avg.Categories,
		})
	})
}

func (s *analysisService) RunFullAnalysis(ctx context.Context, analysisID uuid.UUID) (*Report, error) {
	ctx, span := observability.StartSpan(ctx, "analysis.run", attribute.String("analysis_id", analysisID.String()))
	defer span.End()

	rows, err := s.Initialise(ctx, analysisID)
	if err != nil {
		return nil, err
	}
	ca, err := s.repos.Analyses.GetByID(dbctx.Context{Ctx: ctx}, analysisID)
	if err != nil {
		return nil, err
	}
	lex, err := s.lexicons.Lexicon(dbctx.Context{Ctx: ctx}, ca.TaxonomyID)
	if err != nil {
		return nil, err
	}

	var (
		mu       sync.Mutex
		failures []error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.StrandConcurrency)
	for _, sa := range rows {
		g.Go(func() error {
			if err := s.runStrand(gctx, sa.ID, lex); err != nil {
				title := sa.StrandID.String()
				if st, gerr := s.repos.Strands.GetByID(dbctx.Context{Ctx: gctx}, sa.StrandID); gerr == nil {
					title = st.Title
				}
				mu.Lock()
				failures = append(failures, &StrandError{StrandAnalysisID: sa.ID, StrandTitle: title, Err: err})
				mu.Unlock()
			}
			// Strand failures are collected, not propagated, so siblings keep
			// running. Only cancellation of ctx stops the group.
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := s.repos.Analyses.Touch(dbctx.Context{Ctx: ctx}, analysisID); err != nil {
		return nil, err
	}
	report, err := s.Report(dbctx.Context{Ctx: ctx}, analysisID)
	if err != nil {
		return nil, err
	}
	runErr := errors.Join(failures...)
	if runErr != nil {
		observability.RecordError(span, runErr)
		s.log.Warn("Analysis finished with strand failures", "analysis_id", analysisID, "failed", len(failures), "strands", len(rows))
	} else {
		s.log.Info("Analysis finished", "analysis_id", analysisID, "strands", len(rows))
	}
	return report, runErr
}

func (s *analysisService) Finish(ctx context.Context, analysisID uuid.UUID) (*Report, error) {
	dbc := dbctx.Context{Ctx: ctx}
	if err := s.repos.Analyses.Touch(dbc, analysisID); err != nil {
		return nil, err
	}
	return s.Report(dbc, analysisID)
}

func (s *analysisService) Report(dbc dbctx.Context, analysisID uuid.UUID) (*Report, error) {
	ca, err := s.repos.Analyses.GetByID(dbc, analysisID)
	if err != nil {
		return nil, err
	}
	lex, err := s.lexicons.Lexicon(dbc, ca.TaxonomyID)
	if err != nil {
		return nil, err
	}
	sas, err := s.repos.StrandAnalyses.ListByAnalysis(dbc, analysisID)
	if err != nil {
		return nil, err
	}
	saIDs := make([]uuid.UUID, 0, len(sas))
	for _, sa := range sas {
		saIDs = append(saIDs, sa.ID)
	}
	hitRows, err := s.repos.StrandResults.HitCounts(dbc, saIDs)
	if err != nil {
		return nil, err
	}
	divRows, err := s.repos.StrandResults.Diversities(dbc, saIDs)
	if err != nil {
		return nil, err
	}
	avgRows, err := s.repos.StrandResults.Averages(dbc, saIDs)
	if err != nil {
		return nil, err
	}
	strands, err := s.repos.Strands.ListByCurriculum(dbc, ca.CurriculumID)
	if err != nil {
		return nil, err
	}
	strandByID := make(map[uuid.UUID]*types.Strand, len(strands))
	for _, st := range strands {
		strandByID[st.ID] = st
	}

	cats := lex.Categories()
	col := make(map[uuid.UUID]int, len(cats))
	report := &Report{
		AnalysisID:   ca.ID,
		CurriculumID: ca.CurriculumID,
		TaxonomyID:   ca.TaxonomyID,
		Title:        ca.Title,
		Labels:       make([]string, 0, len(cats)),
		Levels:       make([]int, 0, len(cats)),
		Strands:      make([]StrandReport, 0, len(sas)),
		NonCatVerbs:  []string{},
	}
	for i, c := range cats {
		col[c.ID] = i
		report.Labels = append(report.Labels, c.Title)
		report.Levels = append(report.Levels, c.Level)
	}

	idx := make(map[uuid.UUID]int, len(sas))
	for _, sa := range sas {
		st := strandByID[sa.StrandID]
		if st == nil {
			continue
		}
		n, err := s.repos.LearningOutcomes.CountByStrand(dbc, st.ID)
		if err != nil {
			return nil, err
		}
		idx[sa.ID] = len(report.Strands)
		report.Strands = append(report.Strands, StrandReport{
			StrandAnalysisID:    sa.ID,
			StrandID:            st.ID,
			Title:               st.Title,
			Colour:              st.Colour,
			NumLearningOutcomes: int(n),
		})
	}
	for _, h := range hitRows {
		i, ok := idx[h.StrandAnalysisID]
		c, cok := col[h.VerbCategoryID]
		if !ok || !cok {
			continue
		}
		// Nil until the stage has written rows for the strand.
		if report.Strands[i].HitCounts == nil {
			report.Strands[i].HitCounts = make([]int, len(cats))
		}
		report.Strands[i].HitCounts[c] = h.HitCount
	}
	for _, d := range divRows {
		i, ok := idx[d.StrandAnalysisID]
		if !ok || d.NumCategories < 0 || d.NumCategories > len(cats) {
			continue
		}
		if report.Strands[i].Diversity == nil {
			report.Strands[i].Diversity = make([]int, len(cats)+1)
		}
		report.Strands[i].Diversity[d.NumCategories] = d.NumLearningOutcomes
	}
	for _, a := range avgRows {
		if i, ok := idx[a.StrandAnalysisID]; ok {
			report.Strands[i].Average = &analysis.Average{Verbs: a.Verbs, Categories: a.Categories}
		}
	}

	ncv, err := s.repos.NonCatVerbs.ListByAnalysis(dbc, analysisID)
	if err != nil {
		return nil, err
	}
	for _, v := range ncv {
		report.NonCatVerbs = append(report.NonCatVerbs, v.Title)
	}
	return report, nil
}

func (s *analysisService) series(dbc dbctx.Context, analysisID uuid.UUID, labels func(r *Report) []string, values func(st StrandReport) []float64) (SeriesView, error) {
	r, err := s.Report(dbc, analysisID)
	if err != nil {
		return SeriesView{}, err
	}
	out := SeriesView{Labels: labels(r), Series: make([]StrandSeries, 0, len(r.Strands))}
	for _, st := range r.Strands {
		out.Series = append(out.Series, StrandSeries{
			StrandID:            st.StrandID,
			Title:               st.Title,
			Colour:              st.Colour,
			NumLearningOutcomes: st.NumLearningOutcomes,
			Values:              values(st),
		})
	}
	return out, nil
}

func reportLabels(r *Report) []string { return r.Labels }

func ints(in []int) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}

func (s *analysisService) CategoryHitCounts(dbc dbctx.Context, analysisID uuid.UUID) (SeriesView, error) {
	return s.series(dbc, analysisID, reportLabels, func(st StrandReport) []float64 { return ints(st.HitCounts) })
}

// CategoryDiversities labels buckets "0".."N" categories hit.
func (s *analysisService) CategoryDiversities(dbc dbctx.Context, analysisID uuid.UUID) (SeriesView, error) {
	labels := func(r *Report) []string {
		out := make([]string, 0, len(r.Labels)+1)
		for k := 0; k <= len(r.Labels); k++ {
			out = append(out, fmt.Sprint(k))
		}
		return out
	}
	return s.series(dbc, analysisID, labels, func(st StrandReport) []float64 { return ints(st.Diversity) })
}

func (s *analysisService) VerbAverages(dbc dbctx.Context, analysisID uuid.UUID) (SeriesView, error) {
	return s.series(dbc, analysisID, averageLabel("verbs"), func(st StrandReport) []float64 {
		if st.Average == nil {
			return []float64{}
		}
		return []float64{st.Average.Verbs}
	})
}

func (s *analysisService) CategoryAverages(dbc dbctx.Context, analysisID uuid.UUID) (SeriesView, error) {
	return s.series(dbc, analysisID, averageLabel("categories"), func(st StrandReport) []float64 {
		if st.Average == nil {
			return []float64{}
		}
		return []float64{st.Average.Categories}
	})
}

func averageLabel(name string) func(*Report) []string {
	return func(*Report) []string { return []string{name} }
}

func (s *analysisService) NonCatVerbs(dbc dbctx.Context, analysisID uuid.UUID) ([]string, error) {
	if _, err := s.repos.Analyses.GetByID(dbc, analysisID); err != nil {
		return nil, err
	}
	rows, err := s.repos.NonCatVerbs.ListByAnalysis(dbc, analysisID)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Title)
	}
	return out, nil
}
