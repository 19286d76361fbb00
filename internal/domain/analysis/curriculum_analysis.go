package analysis

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CurriculumAnalysis binds a curriculum to a taxonomy. Everything below it
// is derived data, rebuilt wholesale on every run.
type CurriculumAnalysis struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CurriculumID uuid.UUID `gorm:"type:uuid;column:curriculum_id;not null;index" json:"curriculum_id"`
	TaxonomyID   uuid.UUID `gorm:"type:uuid;column:taxonomy_id;not null;index" json:"taxonomy_id"`
	Title        string    `gorm:"column:title;not null" json:"title"`
	CreatedAt    time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}

func (CurriculumAnalysis) TableName() string { return "curriculum_analysis" }

func (a *CurriculumAnalysis) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// NonCatVerb is a detected verb lemma that no category of the analysed
// taxonomy contains. Rows are shared across analyses by title.
type NonCatVerb struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title string    `gorm:"column:title;not null;uniqueIndex:idx_non_cat_verb_title" json:"title"`
}

func (NonCatVerb) TableName() string { return "non_cat_verb" }

func (v *NonCatVerb) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

type CurriculumAnalysisNonCatVerb struct {
	CurriculumAnalysisID uuid.UUID `gorm:"type:uuid;column:curriculum_analysis_id;primaryKey" json:"curriculum_analysis_id"`
	NonCatVerbID         uuid.UUID `gorm:"type:uuid;column:non_cat_verb_id;primaryKey;index" json:"non_cat_verb_id"`
}

func (CurriculumAnalysisNonCatVerb) TableName() string { return "curriculum_analysis_non_cat_verb" }
