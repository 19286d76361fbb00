package taxonomy

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VerbCategory is one bucket of a taxonomy. Level is unique per taxonomy
// (1 = lowest abstraction). VerbListText is the authored source that the
// Verb/NonVerb links are rebuilt from.
type VerbCategory struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TaxonomyID   uuid.UUID `gorm:"type:uuid;column:taxonomy_id;not null;uniqueIndex:idx_verb_category_taxonomy_level" json:"taxonomy_id"`
	Level        int       `gorm:"column:level;not null;uniqueIndex:idx_verb_category_taxonomy_level" json:"level"`
	Title        string    `gorm:"column:title;not null" json:"title"`
	VerbListText string    `gorm:"column:verb_list_text;type:text" json:"verb_list_text"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}

func (VerbCategory) TableName() string { return "verb_category" }

func (c *VerbCategory) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
