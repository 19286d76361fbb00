package domain

import (
	"github.com/yungbote/lo-analysis-backend/internal/domain/analysis"
	"github.com/yungbote/lo-analysis-backend/internal/domain/curriculum"
	"github.com/yungbote/lo-analysis-backend/internal/domain/jobs"
	"github.com/yungbote/lo-analysis-backend/internal/domain/taxonomy"
)

type (
	Curriculum      = curriculum.Curriculum
	Strand          = curriculum.Strand
	LearningOutcome = curriculum.LearningOutcome

	Taxonomy            = taxonomy.Taxonomy
	VerbCategory        = taxonomy.VerbCategory
	Verb                = taxonomy.Verb
	NonVerb             = taxonomy.NonVerb
	VerbCategoryVerb    = taxonomy.VerbCategoryVerb
	VerbCategoryNonVerb = taxonomy.VerbCategoryNonVerb

	CurriculumAnalysis              = analysis.CurriculumAnalysis
	StrandAnalysis                  = analysis.StrandAnalysis
	LearningOutcomeAnalysis         = analysis.LearningOutcomeAnalysis
	LearningOutcomeCategoryHitCount = analysis.LearningOutcomeCategoryHitCount
	StrandCategoryHitCount          = analysis.StrandCategoryHitCount
	StrandCategoryDiversity         = analysis.StrandCategoryDiversity
	StrandAverage                   = analysis.StrandAverage
	NonCatVerb                      = analysis.NonCatVerb
	CurriculumAnalysisNonCatVerb    = analysis.CurriculumAnalysisNonCatVerb

	JobRun       = jobs.JobRun
	JobRunEvent  = jobs.JobRunEvent
	JobEventKind = jobs.JobEventKind
)

const DefaultStrandColour = curriculum.DefaultStrandColour

const (
	JobStatusQueued    = jobs.StatusQueued
	JobStatusRunning   = jobs.StatusRunning
	JobStatusSucceeded = jobs.StatusSucceeded
	JobStatusFailed    = jobs.StatusFailed

	JobEventCreated   = jobs.JobEventCreated
	JobEventProgress  = jobs.JobEventProgress
	JobEventFailed    = jobs.JobEventFailed
	JobEventSucceeded = jobs.JobEventSucceeded

	JobTypeCurriculumAnalysis = jobs.TypeCurriculumAnalysis
	JobTypeStrandAnalysis     = jobs.TypeStrandAnalysis

	EntityCurriculumAnalysis = jobs.EntityCurriculumAnalysis
	EntityStrandAnalysis     = jobs.EntityStrandAnalysis
)

var NewJobEvent = jobs.NewEvent

// Models lists every persisted entity in migration order.
func Models() []any {
	return []any{
		&Curriculum{},
		&Strand{},
		&LearningOutcome{},
		&Taxonomy{},
		&VerbCategory{},
		&Verb{},
		&NonVerb{},
		&VerbCategoryVerb{},
		&VerbCategoryNonVerb{},
		&CurriculumAnalysis{},
		&StrandAnalysis{},
		&LearningOutcomeAnalysis{},
		&LearningOutcomeCategoryHitCount{},
		&StrandCategoryHitCount{},
		&StrandCategoryDiversity{},
		&StrandAverage{},
		&NonCatVerb{},
		&CurriculumAnalysisNonCatVerb{},
		&JobRun{},
		&JobRunEvent{},
	}
}
