package worker_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"

	"github.com/yungbote/lo-analysis-backend/internal/analysis"
	"github.com/yungbote/lo-analysis-backend/internal/data/db"
	"github.com/yungbote/lo-analysis-backend/internal/data/repos"
	"github.com/yungbote/lo-analysis-backend/internal/data/repos/testutil"
	types "github.com/yungbote/lo-analysis-backend/internal/domain"
	jobstatus "github.com/yungbote/lo-analysis-backend/internal/domain/jobs"
	"github.com/yungbote/lo-analysis-backend/internal/jobs/orchestrator"
	"github.com/yungbote/lo-analysis-backend/internal/jobs/pipeline/curriculum_analysis"
	"github.com/yungbote/lo-analysis-backend/internal/jobs/pipeline/strand_analysis"
	jobrt "github.com/yungbote/lo-analysis-backend/internal/jobs/runtime"
	"github.com/yungbote/lo-analysis-backend/internal/jobs/worker"
	"github.com/yungbote/lo-analysis-backend/internal/lexicon"
	"github.com/yungbote/lo-analysis-backend/internal/nlp/mock"
	"github.com/yungbote/lo-analysis-backend/internal/platform/dbctx"
	"github.com/yungbote/lo-analysis-backend/internal/seed"
	"github.com/yungbote/lo-analysis-backend/internal/services"
)

type env struct {
	set         repos.Set
	tok         *mock.Tokenizer
	registry    *jobrt.Registry
	worker      *worker.Worker
	analyses    services.AnalysisService
	curricula   services.CurriculumService
	jobs        services.JobService
	maxAttempts int

	taxonomyID uuid.UUID
	analysisID uuid.UUID
}

func newEnv(t *testing.T, fanout string, maxAttempts int) *env {
	t.Helper()
	log := testutil.Logger(t)
	gdb := testutil.DB(t)
	set := repos.NewSet(gdb, log)
	tx := db.NewTxRunner(gdb)
	tok := mock.New(mock.BloomsDictionary())

	taxonomies := services.NewTaxonomyService(log, tx, set, lexicon.MalformedReject)
	curricula := services.NewCurriculumService(log, tx, set)
	analyses := services.NewAnalysisService(log, tx, set, taxonomies, analysis.NewAnalyzer(tok), services.AnalysisConfig{})
	notify := services.NewJobNotifier(log, set.JobRunEvents, nil)
	jobs := services.NewJobService(log, set, notify, services.JobConfig{MaxAttempts: maxAttempts, Fanout: fanout})

	fan := &orchestrator.FanOut{Children: jobs, Tx: tx, MaxAttempts: maxAttempts, PollInterval: 10 * time.Millisecond}
	registry, err := jobrt.NewRegistry(
		curriculum_analysis.New(log, analyses, fan, fanout),
		strand_analysis.New(log, analyses),
	)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	w := worker.NewWorker(log, set.JobRuns, registry, notify, worker.Config{
		MaxAttempts:  maxAttempts,
		RetryDelay:   time.Millisecond,
		PollInterval: 5 * time.Millisecond,
	})

	e := &env{
		set:         set,
		tok:         tok,
		registry:    registry,
		worker:      w,
		analyses:    analyses,
		curricula:   curricula,
		jobs:        jobs,
		maxAttempts: maxAttempts,
	}
	imp, err := seed.Import(dbctx.Context{Ctx: t.Context()}, taxonomies, curricula, seed.StrandFixture())
	if err != nil {
		t.Fatalf("import fixture: %v", err)
	}
	e.taxonomyID = imp.Taxonomies[0].ID
	ca, err := analyses.CreateAnalysis(dbctx.Context{Ctx: t.Context()}, services.CreateAnalysisInput{
		CurriculumID: imp.Curricula[0].ID,
		TaxonomyID:   e.taxonomyID,
	})
	if err != nil {
		t.Fatalf("CreateAnalysis: %v", err)
	}
	e.analysisID = ca.ID
	return e
}

// drain runs the worker until jobID is terminal.
func (e *env) drain(t *testing.T, jobID uuid.UUID) *types.JobRun {
	t.Helper()
	deadline := time.Now().Add(15 * time.Second)
	for time.Now().Before(deadline) {
		ran, err := e.worker.RunOnce(t.Context())
		if err != nil {
			t.Fatalf("RunOnce: %v", err)
		}
		if ran {
			continue
		}
		job, err := e.set.JobRuns.GetByID(dbctx.Context{Ctx: t.Context()}, jobID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if job.Terminal(e.maxAttempts) {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s did not finish", jobID)
	return nil
}

func (e *env) enqueue(t *testing.T) *types.JobRun {
	t.Helper()
	job, created, err := e.jobs.EnqueueAnalysis(dbctx.Context{Ctx: t.Context()}, e.analysisID)
	if err != nil || !created {
		t.Fatalf("EnqueueAnalysis: created=%v err=%v", created, err)
	}
	return job
}

func fixtureStrand() services.StrandReport {
	return services.StrandReport{
		Title:               "Fixture Strand",
		Colour:              "#1f77b4",
		NumLearningOutcomes: 23,
		HitCounts:           []int{11, 9, 13, 7, 3, 6},
		Diversity:           []int{0, 6, 11, 3, 3, 0, 0},
		Average:             &analysis.Average{Verbs: 2.65, Categories: 2.13},
	}
}

var ignoreIDs = cmpopts.IgnoreFields(services.StrandReport{}, "StrandAnalysisID", "StrandID")

func TestInlineAnalysisJob(t *testing.T) {
	e := newEnv(t, services.FanoutInline, 3)
	job := e.enqueue(t)

	done := e.drain(t, job.ID)
	if done.Status != jobstatus.StatusSucceeded || done.Progress != 100 {
		t.Fatalf("job=%+v want succeeded", done)
	}
	var result map[string]any
	if err := json.Unmarshal(done.Result, &result); err != nil {
		t.Fatalf("result: %v", err)
	}
	want := map[string]any{
		"analysis_id":           e.analysisID.String(),
		"strands":               float64(1),
		"categories":            float64(6),
		"non_categorised_verbs": float64(2),
	}
	if diff := cmp.Diff(want, result); diff != "" {
		t.Fatalf("result (-want +got):\n%s", diff)
	}

	report, err := e.analyses.Report(dbctx.Context{Ctx: t.Context()}, e.analysisID)
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if diff := cmp.Diff([]services.StrandReport{fixtureStrand()}, report.Strands, ignoreIDs); diff != "" {
		t.Fatalf("strands (-want +got):\n%s", diff)
	}

	events, err := e.jobs.Events(dbctx.Context{Ctx: t.Context()}, job.ID, 50)
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(events) < 3 || events[0].Kind != types.JobEventCreated || events[len(events)-1].Kind != types.JobEventSucceeded {
		t.Fatalf("unexpected event ledger: %+v", events)
	}
}

func TestChildFanoutAnalysisJob(t *testing.T) {
	e := newEnv(t, services.FanoutChild, 3)
	job := e.enqueue(t)

	done := e.drain(t, job.ID)
	if done.Status != jobstatus.StatusSucceeded {
		t.Fatalf("job=%+v want succeeded", done)
	}
	children, err := e.set.JobRuns.ListByParent(dbctx.Context{Ctx: t.Context()}, job.ID)
	if err != nil {
		t.Fatalf("ListByParent: %v", err)
	}
	if len(children) != 1 || children[0].JobType != types.JobTypeStrandAnalysis || children[0].Status != jobstatus.StatusSucceeded {
		t.Fatalf("children=%+v", children)
	}

	view, err := e.jobs.GetStatus(dbctx.Context{Ctx: t.Context()}, job.ID)
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if diff := cmp.Diff(&services.ChildSummary{Total: 1, Succeeded: 1}, view.Children); diff != "" {
		t.Fatalf("children summary (-want +got):\n%s", diff)
	}
	// Waiting gives the claim back, so the parent never burns its attempts.
	if done.Attempts != 1 {
		t.Fatalf("parent attempts=%d want 1", done.Attempts)
	}

	report, err := e.analyses.Report(dbctx.Context{Ctx: t.Context()}, e.analysisID)
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if diff := cmp.Diff([]services.StrandReport{fixtureStrand()}, report.Strands, ignoreIDs); diff != "" {
		t.Fatalf("strands (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"enjoy", "write"}, report.NonCatVerbs); diff != "" {
		t.Fatalf("non-categorised verbs (-want +got):\n%s", diff)
	}
}

func TestChildFailureFailsParent(t *testing.T) {
	e := newEnv(t, services.FanoutChild, 1)
	strand, err := e.curricula.CreateStrand(dbctx.Context{Ctx: t.Context()}, e.analysisCurriculum(t), services.CreateStrandInput{
		Title: "Broken",
		Text:  "Explain the boom.",
	})
	if err != nil {
		t.Fatalf("CreateStrand: %v", err)
	}
	e.tok.FailOn = "boom"
	job := e.enqueue(t)

	done := e.drain(t, job.ID)
	if done.Status != jobstatus.StatusFailed || done.Stage != "join" {
		t.Fatalf("job=%+v want failed at join", done)
	}
	if !strings.Contains(done.Error, "1 of 2 children failed") || !strings.Contains(done.Error, strand.Title) {
		t.Fatalf("error=%q does not list the failed strand", done.Error)
	}

	// The healthy strand still committed its results.
	report, err := e.analyses.Report(dbctx.Context{Ctx: t.Context()}, e.analysisID)
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if len(report.Strands) != 2 || report.Strands[0].Average == nil || report.Strands[1].Average != nil {
		t.Fatalf("unexpected report: %+v", report.Strands)
	}
}

func TestInlineStrandFailureFailsJob(t *testing.T) {
	e := newEnv(t, services.FanoutInline, 1)
	if _, err := e.curricula.CreateStrand(dbctx.Context{Ctx: t.Context()}, e.analysisCurriculum(t), services.CreateStrandInput{
		Title: "Broken",
		Text:  "Explain the boom.",
	}); err != nil {
		t.Fatalf("CreateStrand: %v", err)
	}
	e.tok.FailOn = "boom"
	job := e.enqueue(t)

	done := e.drain(t, job.ID)
	if done.Status != jobstatus.StatusFailed || done.Stage != "analyse" {
		t.Fatalf("job=%+v want failed at analyse", done)
	}
	if !strings.Contains(done.Error, "1 of 2 strands failed") {
		t.Fatalf("error=%q", done.Error)
	}
}

func (e *env) analysisCurriculum(t *testing.T) uuid.UUID {
	t.Helper()
	ca, err := e.analyses.GetAnalysis(dbctx.Context{Ctx: t.Context()}, e.analysisID)
	if err != nil {
		t.Fatalf("GetAnalysis: %v", err)
	}
	return ca.CurriculumID
}

type funcHandler struct {
	jobType string
	run     func(jc *jobrt.Context) error
}

func (h funcHandler) Type() string                  { return h.jobType }
func (h funcHandler) Run(jc *jobrt.Context) error { return h.run(jc) }

func TestWorkerHandlerOutcomes(t *testing.T) {
	tests := []struct {
		name      string
		run       func(jc *jobrt.Context) error
		wantState string
		wantStage string
	}{
		{name: "implicit success", run: func(*jobrt.Context) error { return nil }, wantState: jobstatus.StatusSucceeded, wantStage: "done"},
		{name: "returned error", run: func(*jobrt.Context) error { return errors.New("bad input") }, wantState: jobstatus.StatusFailed, wantStage: "run"},
		{name: "panic", run: func(*jobrt.Context) error { panic("boom") }, wantState: jobstatus.StatusFailed, wantStage: "panic"},
		{name: "explicit fail", run: func(jc *jobrt.Context) error {
			jc.Fail("custom", errors.New("nope"))
			return nil
		}, wantState: jobstatus.StatusFailed, wantStage: "custom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t, services.FanoutInline, 1)
			if err := e.registry.Register(funcHandler{jobType: "probe", run: tt.run}); err != nil {
				t.Fatalf("Register: %v", err)
			}
			job, err := e.jobs.Enqueue(dbctx.Context{Ctx: t.Context()}, nil, "probe", "", nil, nil)
			if err != nil {
				t.Fatalf("Enqueue: %v", err)
			}
			done := e.drain(t, job.ID)
			if done.Status != tt.wantState || done.Stage != tt.wantStage {
				t.Fatalf("status=%s stage=%s want %s/%s", done.Status, done.Stage, tt.wantState, tt.wantStage)
			}
		})
	}
}

func TestWorkerUnknownJobType(t *testing.T) {
	e := newEnv(t, services.FanoutInline, 1)
	job, err := e.jobs.Enqueue(dbctx.Context{Ctx: t.Context()}, nil, "nobody_handles_this", "", nil, nil)
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	done := e.drain(t, job.ID)
	if done.Status != jobstatus.StatusFailed || done.Stage != "dispatch" {
		t.Fatalf("status=%s stage=%s want failed/dispatch", done.Status, done.Stage)
	}
	if ran, err := e.worker.RunOnce(t.Context()); err != nil || ran {
		t.Fatalf("RunOnce on empty queue: ran=%v err=%v", ran, err)
	}
}

func TestRetryableFailureIsRetried(t *testing.T) {
	e := newEnv(t, services.FanoutInline, 3)
	calls := 0
	if err := e.registry.Register(funcHandler{jobType: "flaky", run: func(jc *jobrt.Context) error {
		calls++
		if calls < 3 {
			jc.Fail("call", types.NewError(types.CodeRetryable, "probe", "try again", nil))
		}
		return nil
	}}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	job, err := e.jobs.Enqueue(dbctx.Context{Ctx: t.Context()}, nil, "flaky", "", nil, nil)
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	done := e.drain(t, job.ID)
	if done.Status != jobstatus.StatusSucceeded || calls != 3 || done.Attempts != 3 {
		t.Fatalf("status=%s calls=%d attempts=%d", done.Status, calls, done.Attempts)
	}
}
