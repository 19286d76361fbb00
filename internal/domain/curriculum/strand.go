package curriculum

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Strand is a named section of a curriculum. Position is assigned on
// creation and is the canonical "creation order" used by read views.
type Strand struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CurriculumID uuid.UUID `gorm:"type:uuid;column:curriculum_id;not null;index" json:"curriculum_id"`
	Position     int       `gorm:"column:position;not null;index" json:"position"`
	Title        string    `gorm:"column:title;not null" json:"title"`
	Colour       string    `gorm:"column:colour;not null;default:'#444444'" json:"colour"`
	SourceText   string    `gorm:"column:source_text;type:text" json:"source_text"`
	CreatedAt    time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}

func (Strand) TableName() string { return "strand" }

func (s *Strand) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Colour == "" {
		s.Colour = DefaultStrandColour
	}
	return nil
}
