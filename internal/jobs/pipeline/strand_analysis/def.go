package strand_analysis

import (
	types "github.com/yungbote/lo-analysis-backend/internal/domain"
	"github.com/yungbote/lo-analysis-backend/internal/platform/logger"
	"github.com/yungbote/lo-analysis-backend/internal/services"
)

type Pipeline struct {
	log      *logger.Logger
	analyses services.AnalysisService
}

func New(baseLog *logger.Logger, analyses services.AnalysisService) *Pipeline {
	return &Pipeline{
		log:      baseLog.With("job", types.JobTypeStrandAnalysis),
		analyses: analyses,
	}
}

func (p *Pipeline) Type() string { return types.JobTypeStrandAnalysis }
