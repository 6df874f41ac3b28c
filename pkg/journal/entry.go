package journal

import "time"

// Status is the recorded outcome of a work item.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusDiscarded Status = "discarded"
)

// Entry is one journaled work item.
type Entry struct {
	ID         string    `gorm:"primaryKey;size:36"`
	ExecutorID string    `gorm:"index;size:36;not null"`
	InvokerID  string    `gorm:"index;size:36"`
	Seq        uint64    `gorm:"index"`
	Submitter  string    `gorm:"size:128"`
	Status     Status    `gorm:"index;size:20;not null"`
	Error      string    `gorm:"type:text"`
	EnqueuedAt time.Time
	DurationMs int64
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

// TableName returns the table entries are stored in.
func (Entry) TableName() string {
	return "dispatch_journal"
}
