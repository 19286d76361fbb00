package runtime

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/lo-analysis-backend/internal/data/repos"
	"github.com/yungbote/lo-analysis-backend/internal/data/repos/testutil"
	types "github.com/yungbote/lo-analysis-backend/internal/domain"
	jobstatus "github.com/yungbote/lo-analysis-backend/internal/domain/jobs"
	"github.com/yungbote/lo-analysis-backend/internal/platform/ctxutil"
	"github.com/yungbote/lo-analysis-backend/internal/platform/dbctx"
)

func TestPayloadHelpers(t *testing.T) {
	id := uuid.New()
	job := &types.JobRun{Payload: datatypes.JSON(`{"analysis_id":"` + id.String() + `","n":3,"bad":"x","trace_id":"t-1"}`)}
	c := NewContext(context.Background(), job, nil, nil)

	if got, ok := c.PayloadUUID("analysis_id"); !ok || got != id {
		t.Fatalf("PayloadUUID=%v,%v", got, ok)
	}
	if _, ok := c.PayloadUUID("bad"); ok {
		t.Fatalf("PayloadUUID accepted a non-uuid")
	}
	if got := c.PayloadString("n"); got != "3" {
		t.Fatalf("PayloadString(n)=%q", got)
	}
	if td := ctxutil.GetTraceData(c.Ctx); td == nil || td.TraceID != "t-1" {
		t.Fatalf("trace data not applied: %+v", td)
	}

	empty := NewContext(nil, &types.JobRun{Payload: datatypes.JSON(`not json`)}, nil, nil)
	if empty.Payload() == nil || empty.PayloadString("x") != "" {
		t.Fatalf("bad payload should decode as empty")
	}
}

func TestYieldGivesBackTheAttempt(t *testing.T) {
	gdb := testutil.DB(t)
	repo := repos.NewJobRunRepo(gdb, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: t.Context()}
	now := time.Now().UTC()
	job := &types.JobRun{
		ID:          uuid.New(),
		JobType:     "probe",
		Status:      jobstatus.StatusQueued,
		Stage:       jobstatus.StageQueued,
		AvailableAt: &now,
		Payload:     datatypes.JSON(`{}`),
		Result:      datatypes.JSON(`{}`),
	}
	if _, err := repo.Create(dbc, []*types.JobRun{job}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	claimed, err := repo.ClaimNextRunnable(dbc, 3, time.Second, time.Hour)
	if err != nil || claimed == nil {
		t.Fatalf("ClaimNextRunnable: %v %v", claimed, err)
	}

	c := NewContext(t.Context(), claimed, repo, nil)
	c.Yield("waiting", "later", time.Hour)
	if !c.Finished() {
		t.Fatalf("yield should finish the run")
	}
	stored, err := repo.GetByID(dbc, job.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Status != jobstatus.StatusQueued || stored.Attempts != 0 || stored.Stage != "waiting" {
		t.Fatalf("stored=%+v", stored)
	}
	if got := jobstatus.PublicStatus(stored, 3); got != jobstatus.StatusRunning {
		t.Fatalf("PublicStatus=%s want running", got)
	}
	if next, err := repo.ClaimNextRunnable(dbc, 3, time.Second, time.Hour); err != nil || next != nil {
		t.Fatalf("yielded job claimed before it was due: %v %v", next, err)
	}

	c.Succeed("done", map[string]int{"n": 1})
	c.Fail("late", nil)
	stored, err = repo.GetByID(dbc, job.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Status != jobstatus.StatusSucceeded {
		t.Fatalf("succeeded run was reopened: %+v", stored)
	}
}
