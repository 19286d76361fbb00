package services_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	types "github.com/yungbote/lo-analysis-backend/internal/domain"
	jobstatus "github.com/yungbote/lo-analysis-backend/internal/domain/jobs"
	"github.com/yungbote/lo-analysis-backend/internal/services"
)

func TestEnqueueAnalysisDeduplicates(t *testing.T) {
	h := newHarness(t, func(o *harnessOptions) { o.fanout = services.FanoutChild })
	_, ca := h.importFixture(t)

	if _, err := h.jobs.GetLatestForAnalysis(h.dbc(t), ca.ID); !errors.Is(err, types.ErrNotFound) {
		t.Fatalf("latest before enqueue: err=%v want not found", err)
	}

	first, created, err := h.jobs.EnqueueAnalysis(h.dbc(t), ca.ID)
	if err != nil {
		t.Fatalf("EnqueueAnalysis: %v", err)
	}
	if !created {
		t.Fatalf("first enqueue reported existing job")
	}
	second, created, err := h.jobs.EnqueueAnalysis(h.dbc(t), ca.ID)
	if err != nil {
		t.Fatalf("EnqueueAnalysis again: %v", err)
	}
	if created || second.ID != first.ID {
		t.Fatalf("second enqueue created a new job: %s vs %s", second.ID, first.ID)
	}

	view, err := h.jobs.GetStatus(h.dbc(t), first.ID)
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if view.Status != jobstatus.StatusPending || view.Stage != jobstatus.StageQueued || view.Children != nil {
		t.Fatalf("unexpected view: %+v", view)
	}
	if view.EntityID == nil || *view.EntityID != ca.ID {
		t.Fatalf("view entity=%v want %s", view.EntityID, ca.ID)
	}
	latest, err := h.jobs.GetLatestForAnalysis(h.dbc(t), ca.ID)
	if err != nil {
		t.Fatalf("GetLatestForAnalysis: %v", err)
	}
	if latest.ID != first.ID {
		t.Fatalf("latest=%s want %s", latest.ID, first.ID)
	}

	events, err := h.jobs.Events(h.dbc(t), first.ID, 10)
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(events) != 1 || events[0].Kind != types.JobEventCreated {
		t.Fatalf("events=%+v want one created event", events)
	}

	c := jobPayload(t, first)
	if c["fanout"] != services.FanoutChild || c["analysis_id"] != ca.ID.String() {
		t.Fatalf("payload=%v", c)
	}
}

func TestEnqueueAnalysisUnknown(t *testing.T) {
	h := newHarness(t)
	if _, _, err := h.jobs.EnqueueAnalysis(h.dbc(t), uuid.New()); !errors.Is(err, types.ErrNotFound) {
		t.Fatalf("err=%v want not found", err)
	}
	if _, err := h.jobs.GetStatus(h.dbc(t), uuid.Nil); !types.IsCode(err, types.CodeValidation) {
		t.Fatalf("err=%v want validation", err)
	}
	if _, err := h.jobs.Enqueue(h.dbc(t), nil, "", "", nil, nil); !types.IsCode(err, types.CodeValidation) {
		t.Fatalf("err=%v want validation", err)
	}
}

func TestParseFanout(t *testing.T) {
	for in, want := range map[string]string{"": services.FanoutInline, " Child ": services.FanoutChild, "inline": services.FanoutInline} {
		got, err := services.ParseFanout(in)
		if err != nil || got != want {
			t.Fatalf("ParseFanout(%q)=%q,%v want %q", in, got, err, want)
		}
	}
	if _, err := services.ParseFanout("sideways"); !types.IsCode(err, types.CodeValidation) {
		t.Fatalf("err=%v want validation", err)
	}
}

func TestSummarizeChildren(t *testing.T) {
	children := []*types.JobRun{
		{Status: jobstatus.StatusQueued, Stage: jobstatus.StageQueued},
		{Status: jobstatus.StatusRunning},
		{Status: jobstatus.StatusSucceeded},
		{Status: jobstatus.StatusFailed, Retryable: true, Attempts: 1},
		{Status: jobstatus.StatusFailed, Retryable: true, Attempts: 3},
		{Status: jobstatus.StatusFailed},
	}
	got := services.SummarizeChildren(children, 3)
	want := services.ChildSummary{Total: 6, Pending: 1, Running: 2, Succeeded: 1, Failed: 2}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("summary (-want +got):\n%s", diff)
	}
}

func jobPayload(t *testing.T, job *types.JobRun) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(job.Payload, &m); err != nil {
		t.Fatalf("payload: %v", err)
	}
	return m
}
