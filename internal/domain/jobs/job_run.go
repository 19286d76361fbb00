package jobs

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	StatusQueued    = "queued"
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"

	// StatusPending is how a queued run is reported to callers.
	StatusPending = "pending"

	// StageQueued is the stage of a run nobody has picked up yet. A queued
	// run in any other stage has yielded and is still in progress.
	StageQueued = "queued"
)

const (
	TypeCurriculumAnalysis = "curriculum_analysis"
	TypeStrandAnalysis     = "strand_analysis"

	EntityCurriculumAnalysis = "curriculum_analysis"
	EntityStrandAnalysis     = "strand_analysis"
)

// PublicStatus maps a stored status onto pending|running|succeeded|failed.
// A failed run that will be retried still reads as running.
func PublicStatus(j *JobRun, maxAttempts int) string {
	if j == nil {
		return ""
	}
	switch j.Status {
	case StatusQueued:
		if j.Stage != "" && j.Stage != StageQueued {
			return StatusRunning
		}
		return StatusPending
	case StatusFailed:
		if !j.Terminal(maxAttempts) {
			return StatusRunning
		}
		return StatusFailed
	default:
		return j.Status
	}
}

type JobRun struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ParentJobID *uuid.UUID     `gorm:"type:uuid;column:parent_job_id;index" json:"parent_job_id,omitempty"`
	JobType     string         `gorm:"column:job_type;not null;index" json:"job_type"`
	EntityType  string         `gorm:"column:entity_type;index" json:"entity_type,omitempty"`
	EntityID    *uuid.UUID     `gorm:"type:uuid;column:entity_id;index" json:"entity_id,omitempty"`
	Status      string         `gorm:"column:status;not null;index" json:"status"`
	Stage       string         `gorm:"column:stage;not null;index" json:"stage"`
	Progress    int            `gorm:"column:progress;not null;default:0" json:"progress"`
	Attempts    int            `gorm:"column:attempts;not null;default:0" json:"attempts"`
	Retryable   bool           `gorm:"column:retryable;not null;default:false" json:"retryable"`
	Message     string         `gorm:"column:message" json:"message,omitempty"`
	Error       string         `gorm:"column:error" json:"error,omitempty"`
	AvailableAt *time.Time     `gorm:"column:available_at;index" json:"available_at,omitempty"`
	LockedAt    *time.Time     `gorm:"column:locked_at;index" json:"locked_at,omitempty"`
	HeartbeatAt *time.Time     `gorm:"column:heartbeat_at;index" json:"heartbeat_at,omitempty"`
	LastErrorAt *time.Time     `gorm:"column:last_error_at;index" json:"last_error_at,omitempty"`
	Payload     datatypes.JSON `gorm:"column:payload;type:jsonb" json:"payload"`
	Result      datatypes.JSON `gorm:"column:result;type:jsonb" json:"result"`
	CreatedAt   time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;index" json:"updated_at"`
}

func (JobRun) TableName() string { return "job_run" }

func (j *JobRun) BeforeCreate(tx *gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return nil
}

// Terminal reports whether the run will not be picked up again. A failed
// run is retried while it is retryable and has attempts left.
func (j *JobRun) Terminal(maxAttempts int) bool {
	if j == nil {
		return false
	}
	switch j.Status {
	case StatusSucceeded:
		return true
	case StatusFailed:
		return !j.Retryable || (maxAttempts > 0 && j.Attempts >= maxAttempts)
	default:
		return false
	}
}
