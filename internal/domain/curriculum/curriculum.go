package curriculum

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const DefaultStrandColour = "#444444"

type Curriculum struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	AuthorID   *uuid.UUID `gorm:"type:uuid;column:author_id;index" json:"author_id,omitempty"`
	Title      string     `gorm:"column:title;not null" json:"title"`
	Public     bool       `gorm:"column:public;not null;default:false" json:"public"`
	Country    string     `gorm:"column:country" json:"country,omitempty"`
	ISCEDLevel string     `gorm:"column:isced_level" json:"isced_level,omitempty"`
	CreatedAt  time.Time  `gorm:"not null;index" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"not null" json:"updated_at"`
}

func (Curriculum) TableName() string { return "curriculum" }

func (c *Curriculum) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
