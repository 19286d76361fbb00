package analysis

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LearningOutcomeAnalysis struct {
	ID                   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	StrandAnalysisID     uuid.UUID `gorm:"type:uuid;column:strand_analysis_id;not null;index" json:"strand_analysis_id"`
	LearningOutcomeID    uuid.UUID `gorm:"type:uuid;column:learning_outcome_id;not null;index" json:"learning_outcome_id"`
	LearningOutcomeIndex int       `gorm:"column:learning_outcome_index;not null" json:"learning_outcome_index"`
}

func (LearningOutcomeAnalysis) TableName() string { return "learning_outcome_analysis" }

func (a *LearningOutcomeAnalysis) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// LearningOutcomeCategoryHitCount is the number of verb and allowed
// non-verb tokens of one outcome that matched one category.
type LearningOutcomeCategoryHitCount struct {
	ID                        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LearningOutcomeAnalysisID uuid.UUID `gorm:"type:uuid;column:learning_outcome_analysis_id;not null;index" json:"learning_outcome_analysis_id"`
	VerbCategoryID            uuid.UUID `gorm:"type:uuid;column:verb_category_id;not null;index" json:"verb_category_id"`
	HitCount                  int       `gorm:"column:hit_count;not null" json:"hit_count"`
}

func (LearningOutcomeCategoryHitCount) TableName() string { return "learning_outcome_category_hit_count" }

func (h *LearningOutcomeCategoryHitCount) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}
