package analysis

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StrandAnalysis struct {
	ID                   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CurriculumAnalysisID uuid.UUID `gorm:"type:uuid;column:curriculum_analysis_id;not null;index" json:"curriculum_analysis_id"`
	StrandID             uuid.UUID `gorm:"type:uuid;column:strand_id;not null;index" json:"strand_id"`
	CreatedAt            time.Time `gorm:"not null" json:"created_at"`
}

func (StrandAnalysis) TableName() string { return "strand_analysis" }

func (s *StrandAnalysis) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// StrandCategoryHitCount counts learning outcomes (not tokens) in the strand
// with a non-zero hit count for the category.
type StrandCategoryHitCount struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	StrandAnalysisID uuid.UUID `gorm:"type:uuid;column:strand_analysis_id;not null;index" json:"strand_analysis_id"`
	VerbCategoryID   uuid.UUID `gorm:"type:uuid;column:verb_category_id;not null;index" json:"verb_category_id"`
	HitCount         int       `gorm:"column:hit_count;not null" json:"hit_count"`
}

func (StrandCategoryHitCount) TableName() string { return "strand_category_hit_count" }

func (s *StrandCategoryHitCount) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// StrandCategoryDiversity is one bucket of the strand's diversity
// histogram: how many outcomes hit exactly NumCategories categories.
type StrandCategoryDiversity struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	StrandAnalysisID    uuid.UUID `gorm:"type:uuid;column:strand_analysis_id;not null;index" json:"strand_analysis_id"`
	NumCategories       int       `gorm:"column:num_categories;not null" json:"num_categories"`
	NumLearningOutcomes int       `gorm:"column:num_learning_outcomes;not null" json:"num_learning_outcomes"`
}

func (StrandCategoryDiversity) TableName() string { return "strand_category_diversity" }

func (s *StrandCategoryDiversity) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type StrandAverage struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	StrandAnalysisID uuid.UUID `gorm:"type:uuid;column:strand_analysis_id;not null;uniqueIndex:idx_strand_average_strand_analysis" json:"strand_analysis_id"`
	Verbs            float64   `gorm:"column:verbs;not null" json:"verbs"`
	Categories       float64   `gorm:"column:categories;not null" json:"categories"`
}

func (StrandAverage) TableName() string { return "strand_average" }

func (s *StrandAverage) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
