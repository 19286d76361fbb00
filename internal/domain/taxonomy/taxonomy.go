package taxonomy

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Taxonomy struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	AuthorID  *uuid.UUID `gorm:"type:uuid;column:author_id;index" json:"author_id,omitempty"`
	Title     string     `gorm:"column:title;not null" json:"title"`
	Public    bool       `gorm:"column:public;not null;default:false" json:"public"`
	CreatedAt time.Time  `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null" json:"updated_at"`
}

func (Taxonomy) TableName() string { return "taxonomy" }

func (t *Taxonomy) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
