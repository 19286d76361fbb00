package curriculum_analysis

import (
	types "github.com/yungbote/lo-analysis-backend/internal/domain"
	"github.com/yungbote/lo-analysis-backend/internal/jobs/orchestrator"
	"github.com/yungbote/lo-analysis-backend/internal/platform/logger"
	"github.com/yungbote/lo-analysis-backend/internal/services"
)

type Pipeline struct {
	log      *logger.Logger
	analyses services.AnalysisService
	fanout   *orchestrator.FanOut
	mode     string
}

// New builds the parent analysis job. mode is the default fan-out used when
// a job's payload does not name one.
func New(baseLog *logger.Logger, analyses services.AnalysisService, fanout *orchestrator.FanOut, mode string) *Pipeline {
	if mode == "" {
		mode = services.FanoutInline
	}
	return &Pipeline{
		log:      baseLog.With("job", types.JobTypeCurriculumAnalysis),
		analyses: analyses,
		fanout:   fanout,
		mode:     mode,
	}
}

func (p *Pipeline) Type() string { return types.JobTypeCurriculumAnalysis }
