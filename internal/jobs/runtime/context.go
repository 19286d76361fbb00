package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/lo-analysis-backend/internal/data/repos"
	types "github.com/yungbote/lo-analysis-backend/internal/domain"
	jobstatus "github.com/yungbote/lo-analysis-backend/internal/domain/jobs"
	"github.com/yungbote/lo-analysis-backend/internal/platform/ctxutil"
	"github.com/yungbote/lo-analysis-backend/internal/platform/dbctx"
	"github.com/yungbote/lo-analysis-backend/internal/services"
)

/*
Context is the execution handle for a single claimed job run. Handlers never
write job_run directly; every lifecycle transition goes through Progress,
Yield, Fail or Succeed so the row, the in-memory copy and the notifier stay
in step.
*/
type Context struct {
	Ctx    context.Context
	Job    *types.JobRun
	Repo   repos.JobRunRepo
	Notify services.JobNotifier

	payload map[string]any
	done    bool
}

// A succeeded run is final. Late writes from a worker whose lease was
// reclaimed must not reopen it.
var finalStatuses = []string{jobstatus.StatusSucceeded}

func NewContext(ctx context.Context, job *types.JobRun, repo repos.JobRunRepo, notify services.JobNotifier) *Context {
	c := &Context{
		Ctx:    ctx,
		Job:    job,
		Repo:   repo,
		Notify: notify,
	}
	_ = c.decodePayload()
	c.applyTraceData()
	return c
}

func (c *Context) decodePayload() error {
	if c.Job == nil || len(c.Job.Payload) == 0 {
		c.payload = map[string]any{}
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(c.Job.Payload, &m); err != nil {
		c.payload = map[string]any{}
		return err
	}
	c.payload = m
	return nil
}

func (c *Context) applyTraceData() {
	if c.Ctx == nil {
		return
	}
	traceID := c.PayloadString("trace_id")
	reqID := c.PayloadString("request_id")
	if traceID == "" && reqID == "" {
		return
	}
	c.Ctx = ctxutil.WithTraceData(c.Ctx, &ctxutil.TraceData{
		TraceID:   traceID,
		RequestID: reqID,
	})
}

// Payload never returns nil.
func (c *Context) Payload() map[string]any {
	if c.payload == nil {
		c.payload = map[string]any{}
	}
	return c.payload
}

func (c *Context) PayloadString(key string) string {
	v, ok := c.Payload()[key]
	if !ok || v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

func (c *Context) PayloadUUID(key string) (uuid.UUID, bool) {
	s := c.PayloadString(key)
	if s == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(s)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

// Finished reports whether a terminal transition or a yield was recorded.
func (c *Context) Finished() bool { return c.done }

func (c *Context) dbc() dbctx.Context {
	ctx := c.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	return dbctx.Context{Ctx: ctx}
}

func (c *Context) write(updates map[string]interface{}) bool {
	if c.Repo == nil || c.Job == nil || c.Job.ID == uuid.Nil {
		return true
	}
	ok, err := c.Repo.UpdateFieldsUnlessStatus(c.dbc(), c.Job.ID, finalStatuses, updates)
	return err == nil && ok
}

// Progress records a non-terminal stage and refreshes the heartbeat.
func (c *Context) Progress(stage string, pct int, msg string) {
	if c == nil {
		return
	}
	now := time.Now().UTC()
	if !c.write(map[string]interface{}{
		"stage":        stage,
		"progress":     pct,
		"message":      msg,
		"heartbeat_at": now,
		"updated_at":   now,
	}) {
		return
	}
	if c.Job != nil {
		c.Job.Stage = stage
		c.Job.Progress = pct
		c.Job.Message = msg
		c.Job.HeartbeatAt = &now
		c.Job.UpdatedAt = now
	}
	if c.Notify != nil && c.Job != nil {
		c.Notify.JobProgress(c.Job, stage, pct, msg)
	}
}

/*
Yield hands the run back to the queue without finishing it: status returns
to queued, available after delay, and the claim's attempt is given back so
waiting never exhausts the retry budget. The stage is kept, which is how
callers tell a yielded run from one that never started.
*/
func (c *Context) Yield(stage string, msg string, delay time.Duration) {
	if c == nil {
		return
	}
	now := time.Now().UTC()
	at := now.Add(delay)
	attempts := 0
	if c.Job != nil && c.Job.Attempts > 0 {
		attempts = c.Job.Attempts - 1
	}
	if !c.write(map[string]interface{}{
		"status":       jobstatus.StatusQueued,
		"stage":        stage,
		"message":      msg,
		"attempts":     attempts,
		"available_at": at,
		"locked_at":    nil,
		"heartbeat_at": now,
		"updated_at":   now,
	}) {
		return
	}
	c.done = true
	if c.Job != nil {
		c.Job.Status = jobstatus.StatusQueued
		c.Job.Stage = stage
		c.Job.Message = msg
		c.Job.Attempts = attempts
		c.Job.AvailableAt = &at
		c.Job.LockedAt = nil
		c.Job.UpdatedAt = now
	}
}

// Fail marks the run failed. Errors coded retryable leave it eligible for
// another attempt after the worker's retry delay.
func (c *Context) Fail(stage string, err error) {
	if c == nil {
		return
	}
	now := time.Now().UTC()
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	retryable := types.IsCode(err, types.CodeRetryable)
	if !c.write(map[string]interface{}{
		"status":        jobstatus.StatusFailed,
		"stage":         stage,
		"message":       "",
		"error":         msg,
		"retryable":     retryable,
		"last_error_at": now,
		"locked_at":     nil,
		"updated_at":    now,
	}) {
		return
	}
	c.done = true
	if c.Job != nil {
		c.Job.Status = jobstatus.StatusFailed
		c.Job.Stage = stage
		c.Job.Message = ""
		c.Job.Error = msg
		c.Job.Retryable = retryable
		c.Job.LastErrorAt = &now
		c.Job.LockedAt = nil
		c.Job.UpdatedAt = now
	}
	if c.Notify != nil && c.Job != nil {
		c.Notify.JobFailed(c.Job, stage, msg)
	}
}

// Succeed marks the run succeeded and stores result as JSON.
func (c *Context) Succeed(finalStage string, result any) {
	if c == nil {
		return
	}
	now := time.Now().UTC()
	res := datatypes.JSON([]byte(`{}`))
	if result != nil {
		if b, err := json.Marshal(result); err == nil {
			res = datatypes.JSON(b)
		}
	}
	if !c.write(map[string]interface{}{
		"status":       jobstatus.StatusSucceeded,
		"stage":        finalStage,
		"progress":     100,
		"message":      "",
		"error":        "",
		"result":       res,
		"locked_at":    nil,
		"heartbeat_at": now,
		"updated_at":   now,
	}) {
		return
	}
	c.done = true
	if c.Job != nil {
		c.Job.Status = jobstatus.StatusSucceeded
		c.Job.Stage = finalStage
		c.Job.Progress = 100
		c.Job.Message = ""
		c.Job.Error = ""
		c.Job.Result = res
		c.Job.LockedAt = nil
		c.Job.HeartbeatAt = &now
		c.Job.UpdatedAt = now
	}
	if c.Notify != nil && c.Job != nil {
		c.Notify.JobDone(c.Job)
	}
}
