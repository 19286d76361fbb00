package curriculum

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LearningOutcome struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	StrandID  uuid.UUID `gorm:"type:uuid;column:strand_id;not null;index" json:"strand_id"`
	Index     int       `gorm:"column:lo_index;not null;index" json:"index"`
	Text      string    `gorm:"column:text;type:text;not null" json:"text"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (LearningOutcome) TableName() string { return "learning_outcome" }

func (lo *LearningOutcome) BeforeCreate(tx *gorm.DB) error {
	if lo.ID == uuid.Nil {
		lo.ID = uuid.New()
	}
	return nil
}

// OutcomeLines splits a strand's source text into its learning outcome
// statements: one per line, trimmed, blank lines skipped, first occurrence
// of an exact duplicate kept.
func OutcomeLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	seen := map[string]bool{}
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || seen[line] {
			continue
		}
		seen[line] = true
		out = append(out, line)
	}
	return out
}

// OutcomePlan is the reconciliation of existing outcomes against new text.
type OutcomePlan struct {
	// Keep lists surviving outcomes with their new Index already applied.
	Keep []*LearningOutcome
	// Create lists new outcomes, indexes assigned, IDs unset.
	Create []*LearningOutcome
	// Remove lists outcomes whose text no longer appears.
	Remove []*LearningOutcome
}

// PlanOutcomes derives the outcome set for text. Outcomes whose text is
// already stored keep their identity; the final indexes follow line order.
func PlanOutcomes(strandID uuid.UUID, existing []*LearningOutcome, text string) OutcomePlan {
	byText := make(map[string]*LearningOutcome, len(existing))
	for _, lo := range existing {
		if lo == nil {
			continue
		}
		if _, dup := byText[lo.Text]; !dup {
			byText[lo.Text] = lo
		}
	}
	var plan OutcomePlan
	used := map[uuid.UUID]bool{}
	for i, line := range OutcomeLines(text) {
		idx := i + 1
		if lo, ok := byText[line]; ok {
			lo.Index = idx
			used[lo.ID] = true
			plan.Keep = append(plan.Keep, lo)
			continue
		}
		plan.Create = append(plan.Create, &LearningOutcome{StrandID: strandID, Index: idx, Text: line})
	}
	for _, lo := range existing {
		if lo != nil && !used[lo.ID] {
			plan.Remove = append(plan.Remove, lo)
		}
	}
	return plan
}
