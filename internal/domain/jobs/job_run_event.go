package jobs

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type JobEventKind string

const (
	JobEventCreated   JobEventKind = "created"
	JobEventProgress  JobEventKind = "progress"
	JobEventFailed    JobEventKind = "failed"
	JobEventSucceeded JobEventKind = "succeeded"
)

// JobRunEvent is an append-only ledger of job status/progress messages.
// The same shape is published on the event bus.
type JobRunEvent struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	JobID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"job_id"`
	JobType    string         `gorm:"column:job_type;not null;index" json:"job_type"`
	EntityType string         `gorm:"column:entity_type;index" json:"entity_type,omitempty"`
	EntityID   *uuid.UUID     `gorm:"type:uuid;column:entity_id;index" json:"entity_id,omitempty"`
	Kind       JobEventKind   `gorm:"column:kind;not null;index" json:"kind"`
	Status     string         `gorm:"column:status;not null;index" json:"status"`
	Stage      string         `gorm:"column:stage;not null" json:"stage"`
	Progress   int            `gorm:"column:progress;not null" json:"progress"`
	Message    string         `gorm:"column:message;type:text" json:"message,omitempty"`
	Data       datatypes.JSON `gorm:"type:jsonb;column:data" json:"data,omitempty"`
	CreatedAt  time.Time      `gorm:"not null;index" json:"created_at"`
}

func (JobRunEvent) TableName() string { return "job_run_event" }

func (e *JobRunEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// NewEvent snapshots job into an event of the given kind.
func NewEvent(kind JobEventKind, job *JobRun, message string) *JobRunEvent {
	ev := &JobRunEvent{
		ID:        uuid.New(),
		Kind:      kind,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
	if job != nil {
		ev.JobID = job.ID
		ev.JobType = job.JobType
		ev.EntityType = job.EntityType
		ev.EntityID = job.EntityID
		ev.Status = job.Status
		ev.Stage = job.Stage
		ev.Progress = job.Progress
	}
	return ev
}
