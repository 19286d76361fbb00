package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/lo-analysis-backend/internal/data/repos/analyses"
	"github.com/yungbote/lo-analysis-backend/internal/data/repos/curricula"
	"github.com/yungbote/lo-analysis-backend/internal/data/repos/jobs"
	"github.com/yungbote/lo-analysis-backend/internal/data/repos/taxonomies"
	"github.com/yungbote/lo-analysis-backend/internal/platform/logger"
)

type CurriculumRepo = curricula.CurriculumRepo
type StrandRepo = curricula.StrandRepo
type LearningOutcomeRepo = curricula.LearningOutcomeRepo

type TaxonomyRepo = taxonomies.TaxonomyRepo
type VerbCategoryRepo = taxonomies.VerbCategoryRepo
type MembershipRepo = taxonomies.MembershipRepo

type CurriculumAnalysisRepo = analyses.CurriculumAnalysisRepo
type StrandAnalysisRepo = analyses.StrandAnalysisRepo
type OutcomeAnalysisRepo = analyses.OutcomeAnalysisRepo
type StrandResultRepo = analyses.StrandResultRepo
type NonCatVerbRepo = analyses.NonCatVerbRepo

type JobRunRepo = jobs.JobRunRepo
type JobRunEventRepo = jobs.JobRunEventRepo

func NewCurriculumRepo(db *gorm.DB, baseLog *logger.Logger) CurriculumRepo {
	return curricula.NewCurriculumRepo(db, baseLog)
}
func NewStrandRepo(db *gorm.DB, baseLog *logger.Logger) StrandRepo {
	return curricula.NewStrandRepo(db, baseLog)
}
func NewLearningOutcomeRepo(db *gorm.DB, baseLog *logger.Logger) LearningOutcomeRepo {
	return curricula.NewLearningOutcomeRepo(db, baseLog)
}

func NewTaxonomyRepo(db *gorm.DB, baseLog *logger.Logger) TaxonomyRepo {
	return taxonomies.NewTaxonomyRepo(db, baseLog)
}
func NewVerbCategoryRepo(db *gorm.DB, baseLog *logger.Logger) VerbCategoryRepo {
	return taxonomies.NewVerbCategoryRepo(db, baseLog)
}
func NewMembershipRepo(db *gorm.DB, baseLog *logger.Logger) MembershipRepo {
	return taxonomies.NewMembershipRepo(db, baseLog)
}

func NewCurriculumAnalysisRepo(db *gorm.DB, baseLog *logger.Logger) CurriculumAnalysisRepo {
	return analyses.NewCurriculumAnalysisRepo(db, baseLog)
}
func NewStrandAnalysisRepo(db *gorm.DB, baseLog *logger.Logger) StrandAnalysisRepo {
	return analyses.NewStrandAnalysisRepo(db, baseLog)
}
func NewOutcomeAnalysisRepo(db *gorm.DB, baseLog *logger.Logger) OutcomeAnalysisRepo {
	return analyses.NewOutcomeAnalysisRepo(db, baseLog)
}
func NewStrandResultRepo(db *gorm.DB, baseLog *logger.Logger) StrandResultRepo {
	return analyses.NewStrandResultRepo(db, baseLog)
}
func NewNonCatVerbRepo(db *gorm.DB, baseLog *logger.Logger) NonCatVerbRepo {
	return analyses.NewNonCatVerbRepo(db, baseLog)
}

func NewJobRunRepo(db *gorm.DB, baseLog *logger.Logger) JobRunRepo {
	return jobs.NewJobRunRepo(db, baseLog)
}
func NewJobRunEventRepo(db *gorm.DB, baseLog *logger.Logger) JobRunEventRepo {
	return jobs.NewJobRunEventRepo(db, baseLog)
}

// Set bundles every repo over one database handle.
type Set struct {
	Curricula        CurriculumRepo
	Strands          StrandRepo
	LearningOutcomes LearningOutcomeRepo

	Taxonomies     TaxonomyRepo
	VerbCategories VerbCategoryRepo
	Membership     MembershipRepo

	Analyses        CurriculumAnalysisRepo
	StrandAnalyses  StrandAnalysisRepo
	OutcomeAnalyses OutcomeAnalysisRepo
	StrandResults   StrandResultRepo
	NonCatVerbs     NonCatVerbRepo

	JobRuns      JobRunRepo
	JobRunEvents JobRunEventRepo
}

func NewSet(db *gorm.DB, baseLog *logger.Logger) Set {
	return Set{
		Curricula:        NewCurriculumRepo(db, baseLog),
		Strands:          NewStrandRepo(db, baseLog),
		LearningOutcomes: NewLearningOutcomeRepo(db, baseLog),

		Taxonomies:     NewTaxonomyRepo(db, baseLog),
		VerbCategories: NewVerbCategoryRepo(db, baseLog),
		Membership:     NewMembershipRepo(db, baseLog),

		Analyses:        NewCurriculumAnalysisRepo(db, baseLog),
		StrandAnalyses:  NewStrandAnalysisRepo(db, baseLog),
		OutcomeAnalyses: NewOutcomeAnalysisRepo(db, baseLog),
		StrandResults:   NewStrandResultRepo(db, baseLog),
		NonCatVerbs:     NewNonCatVerbRepo(db, baseLog),

		JobRuns:      NewJobRunRepo(db, baseLog),
		JobRunEvents: NewJobRunEventRepo(db, baseLog),
	}
}
