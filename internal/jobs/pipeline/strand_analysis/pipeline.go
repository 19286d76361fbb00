package strand_analysis

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	jobrt "github.com/yungbote/lo-analysis-backend/internal/jobs/runtime"
)

// Run executes the four stages of one strand analysis in order. A stage
// failure fails the job at that stage; stages already committed keep their
// rows.
func (p *Pipeline) Run(jc *jobrt.Context) error {
	if jc == nil || jc.Job == nil {
		return nil
	}
	saID, ok := jc.PayloadUUID("strand_analysis_id")
	if !ok {
		jc.Fail("validate", fmt.Errorf("missing strand_analysis_id"))
		return nil
	}

	stages := []struct {
		name string
		pct  int
		msg  string
		run  func(ctx context.Context, id uuid.UUID) error
	}{
		{"hit_count", 10, "Counting category hits", p.analyses.RunHitCountStage},
		{"category_occurrence", 40, "Counting category occurrences", p.analyses.RunCategoryOccurrenceStage},
		{"diversity", 60, "Computing category diversity", p.analyses.RunDiversityStage},
		{"average", 80, "Computing averages", p.analyses.RunAverageStage},
	}
	for _, st := range stages {
		jc.Progress(st.name, st.pct, st.msg)
		if err := st.run(jc.Ctx, saID); err != nil {
			p.log.Warn("Strand analysis stage failed", "strand_analysis_id", saID, "stage", st.name, "error", err)
			jc.Fail(st.name, err)
			return nil
		}
	}

	jc.Succeed("done", map[string]any{
		"strand_analysis_id": saID.String(),
	})
	return nil
}
