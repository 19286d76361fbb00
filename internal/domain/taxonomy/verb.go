package taxonomy

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Verb and NonVerb rows are shared by title across categories and are only
// removed once no category links to them.
type Verb struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title string    `gorm:"column:title;not null;uniqueIndex:idx_verb_title" json:"title"`
}

func (Verb) TableName() string { return "verb" }

func (v *Verb) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

type NonVerb struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title string    `gorm:"column:title;not null;uniqueIndex:idx_non_verb_title" json:"title"`
}

func (NonVerb) TableName() string { return "non_verb" }

func (v *NonVerb) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

type VerbCategoryVerb struct {
	VerbCategoryID uuid.UUID `gorm:"type:uuid;column:verb_category_id;primaryKey" json:"verb_category_id"`
	VerbID         uuid.UUID `gorm:"type:uuid;column:verb_id;primaryKey;index" json:"verb_id"`
}

func (VerbCategoryVerb) TableName() string { return "verb_category_verb" }

type VerbCategoryNonVerb struct {
	VerbCategoryID uuid.UUID `gorm:"type:uuid;column:verb_category_id;primaryKey" json:"verb_category_id"`
	NonVerbID      uuid.UUID `gorm:"type:uuid;column:non_verb_id;primaryKey;index" json:"non_verb_id"`
}

func (VerbCategoryNonVerb) TableName() string { return "verb_category_non_verb" }
