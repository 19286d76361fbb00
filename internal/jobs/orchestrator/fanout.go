package orchestrator

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/lo-analysis-backend/internal/data/db"
	types "github.com/yungbote/lo-analysis-backend/internal/domain"
	jobrt "github.com/yungbote/lo-analysis-backend/internal/jobs/runtime"
	"github.com/yungbote/lo-analysis-backend/internal/platform/dbctx"
)

// LabelKey is the child payload field naming the child in join results.
const LabelKey = "label"

type ChildEnqueuer interface {
	Enqueue(dbc dbctx.Context, parentID *uuid.UUID, jobType string, entityType string, entityID *uuid.UUID, payload map[string]any) (*types.JobRun, error)
}

type ChildSpec struct {
	JobType    string
	EntityType string
	EntityID   *uuid.UUID
	Label      string
	Payload    map[string]any
}

type FailedChild struct {
	JobID uuid.UUID `json:"job_id"`
	Label string    `json:"label"`
	Error string    `json:"error"`
}

type JoinResult struct {
	Total     int           `json:"total"`
	Succeeded int           `json:"succeeded"`
	Failed    []FailedChild `json:"failed,omitempty"`
}

// Err summarises failed children, nil when all succeeded.
func (r JoinResult) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	labels := make([]string, 0, len(r.Failed))
	for _, f := range r.Failed {
		labels = append(labels, fmt.Sprintf("%s (%s)", f.Label, f.Error))
	}
	return types.NewError(types.CodeInternal, "orchestrator.join",
		fmt.Sprintf("%d of %d children failed: %s", len(r.Failed), r.Total, strings.Join(labels, "; ")), nil)
}

/*
FanOut runs a parent job as a completion-counting join over child jobs.
Spawn enqueues every child in one transaction and yields the parent back to
the queue. Each time the parent is claimed again Poll counts terminal
children; the join completes once none can run again. Children are found
through parent_job_id, so the parent keeps no state of its own.
*/
type FanOut struct {
	Children     ChildEnqueuer
	Tx           db.TxRunner
	MaxAttempts  int
	PollInterval time.Duration
}

func (f *FanOut) poll() time.Duration {
	if f.PollInterval <= 0 {
		return 2 * time.Second
	}
	return f.PollInterval
}

// Spawned reports whether children already exist for the running parent.
func (f *FanOut) Spawned(ctx *jobrt.Context) (bool, error) {
	children, err := ctx.Repo.ListByParent(dbctx.Context{Ctx: ctx.Ctx}, ctx.Job.ID)
	if err != nil {
		return false, err
	}
	return len(children) > 0, nil
}

func (f *FanOut) Spawn(ctx *jobrt.Context, waitStage string, specs []ChildSpec) error {
	if f.Children == nil || f.Tx == nil {
		return fmt.Errorf("fan-out is not configured")
	}
	parentID := ctx.Job.ID
	var created []*types.JobRun
	err := f.Tx.InTx(ctx.Ctx, func(dbc dbctx.Context) error {
		created = created[:0]
		for _, s := range specs {
			payload := map[string]any{LabelKey: s.Label}
			for k, v := range s.Payload {
				payload[k] = v
			}
			j, err := f.Children.Enqueue(dbc, &parentID, s.JobType, s.EntityType, s.EntityID, payload)
			if err != nil {
				return err
			}
			created = append(created, j)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("spawn children: %w", err)
	}
	if ctx.Notify != nil {
		for _, j := range created {
			ctx.Notify.JobCreated(j)
		}
	}
	ctx.Yield(waitStage, fmt.Sprintf("Waiting for %d children", len(created)), f.poll())
	return nil
}

// Poll returns done=false after yielding the parent when some child can
// still run. Progress is scaled into [fromPct, toPct].
func (f *FanOut) Poll(ctx *jobrt.Context, waitStage string, fromPct, toPct int) (JoinResult, bool, error) {
	children, err := ctx.Repo.ListByParent(dbctx.Context{Ctx: ctx.Ctx}, ctx.Job.ID)
	if err != nil {
		return JoinResult{}, false, err
	}
	res := JoinResult{Total: len(children)}
	terminal := 0
	for _, c := range children {
		if !c.Terminal(f.MaxAttempts) {
			continue
		}
		terminal++
		if c.Status == types.JobStatusSucceeded {
			res.Succeeded++
			continue
		}
		res.Failed = append(res.Failed, FailedChild{JobID: c.ID, Label: childLabel(c), Error: c.Error})
	}
	sort.Slice(res.Failed, func(i, j int) bool { return res.Failed[i].Label < res.Failed[j].Label })

	if terminal < len(children) {
		pct := fromPct
		if len(children) > 0 {
			pct = fromPct + (toPct-fromPct)*terminal/len(children)
		}
		msg := fmt.Sprintf("%d of %d children finished", terminal, len(children))
		ctx.Progress(waitStage, pct, msg)
		ctx.Yield(waitStage, msg, f.poll())
		return res, false, nil
	}
	return res, true, nil
}

func childLabel(j *types.JobRun) string {
	c := jobrt.NewContext(nil, j, nil, nil)
	if l := c.PayloadString(LabelKey); l != "" {
		return l
	}
	return j.ID.String()
}
