package curriculum_analysis

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	types "github.com/yungbote/lo-analysis-backend/internal/domain"
	"github.com/yungbote/lo-analysis-backend/internal/jobs/orchestrator"
	jobrt "github.com/yungbote/lo-analysis-backend/internal/jobs/runtime"
	"github.com/yungbote/lo-analysis-backend/internal/platform/dbctx"
	"github.com/yungbote/lo-analysis-backend/internal/services"
)

const waitStage = "waiting_strands"

func (p *Pipeline) Run(jc *jobrt.Context) error {
	if jc == nil || jc.Job == nil {
		return nil
	}
	analysisID, ok := jc.PayloadUUID("analysis_id")
	if !ok {
		jc.Fail("validate", fmt.Errorf("missing analysis_id"))
		return nil
	}
	mode := p.mode
	if raw := jc.PayloadString("fanout"); raw != "" {
		m, err := services.ParseFanout(raw)
		if err != nil {
			jc.Fail("validate", err)
			return nil
		}
		mode = m
	}
	if mode == services.FanoutChild {
		return p.runChildren(jc, analysisID)
	}
	return p.runInline(jc, analysisID)
}

func (p *Pipeline) runInline(jc *jobrt.Context, analysisID uuid.UUID) error {
	jc.Progress("analyse", 5, "Analysing strands")
	report, err := p.analyses.RunFullAnalysis(jc.Ctx, analysisID)
	if err != nil {
		if report != nil {
			jc.Fail("analyse", strandFailures(err, len(report.Strands)))
		} else {
			jc.Fail("analyse", err)
		}
		return nil
	}
	jc.Succeed("done", summary(report))
	return nil
}

func (p *Pipeline) runChildren(jc *jobrt.Context, analysisID uuid.UUID) error {
	if p.fanout == nil {
		jc.Fail("validate", fmt.Errorf("child fan-out is not configured"))
		return nil
	}
	spawned, err := p.fanout.Spawned(jc)
	if err != nil {
		jc.Fail("join", types.Wrap(types.CodeRetryable, "curriculum_analysis.join", err))
		return nil
	}
	if !spawned {
		return p.spawn(jc, analysisID)
	}

	res, done, err := p.fanout.Poll(jc, waitStage, 10, 95)
	if err != nil {
		jc.Fail("join", types.Wrap(types.CodeRetryable, "curriculum_analysis.join", err))
		return nil
	}
	if !done {
		return nil
	}
	report, err := p.analyses.Finish(jc.Ctx, analysisID)
	if err != nil {
		jc.Fail("finish", err)
		return nil
	}
	if jerr := res.Err(); jerr != nil {
		p.log.Warn("Analysis finished with strand failures", "analysis_id", analysisID, "failed", len(res.Failed), "strands", res.Total)
		jc.Fail("join", jerr)
		return nil
	}
	jc.Succeed("done", summary(report))
	return nil
}

func (p *Pipeline) spawn(jc *jobrt.Context, analysisID uuid.UUID) error {
	jc.Progress("initialise", 5, "Initialising analysis")
	if _, err := p.analyses.Initialise(jc.Ctx, analysisID); err != nil {
		jc.Fail("initialise", err)
		return nil
	}
	report, err := p.analyses.Report(dbctx.Context{Ctx: jc.Ctx}, analysisID)
	if err != nil {
		jc.Fail("initialise", err)
		return nil
	}
	if len(report.Strands) == 0 {
		if report, err = p.analyses.Finish(jc.Ctx, analysisID); err != nil {
			jc.Fail("finish", err)
			return nil
		}
		jc.Succeed("done", summary(report))
		return nil
	}
	specs := make([]orchestrator.ChildSpec, 0, len(report.Strands))
	for _, st := range report.Strands {
		saID := st.StrandAnalysisID
		specs = append(specs, orchestrator.ChildSpec{
			JobType:    types.JobTypeStrandAnalysis,
			EntityType: types.EntityStrandAnalysis,
			EntityID:   &saID,
			Label:      st.Title,
			Payload: map[string]any{
				"analysis_id":        analysisID.String(),
				"strand_analysis_id": saID.String(),
			},
		})
	}
	if err := p.fanout.Spawn(jc, waitStage, specs); err != nil {
		jc.Fail("spawn", types.Wrap(types.CodeRetryable, "curriculum_analysis.spawn", err))
	}
	return nil
}

func strandFailures(err error, total int) error {
	failed := 0
	for _, e := range unwrapAll(err) {
		var se *services.StrandError
		if errors.As(e, &se) {
			failed++
		}
	}
	if failed == 0 {
		return err
	}
	return fmt.Errorf("%d of %d strands failed: %w", failed, total, err)
}

func unwrapAll(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}

func summary(r *services.Report) map[string]any {
	if r == nil {
		return nil
	}
	return map[string]any{
		"analysis_id":           r.AnalysisID.String(),
		"strands":               len(r.Strands),
		"categories":            len(r.Labels),
		"non_categorised_verbs": len(r.NonCatVerbs),
	}
}
