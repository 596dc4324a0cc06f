package models

import (
	"time"

	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusTodo    TaskStatus = "todo"
	TaskStatusWorking TaskStatus = "working"
	TaskStatusStuck   TaskStatus = "stuck"
	TaskStatusReview  TaskStatus = "review"
	TaskStatusDone    TaskStatus = "done"
)

type Task struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	ProjectID   *uint64        `gorm:"index" json:"project_id"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	CreatorID   uint64         `gorm:"not null" json:"creator_id"`
	IsPrivate   bool           `gorm:"not null;default:false" json:"is_private"`
	Status      TaskStatus     `gorm:"type:varchar(20);not null;default:'todo'" json:"status"`
	Priority    Priority       `gorm:"type:varchar(20);not null;default:'medium'" json:"priority"`
	Progress    int            `gorm:"not null;default:0" json:"progress"`
	StartDate   *time.Time     `json:"start_date"`
	DueDate     *time.Time     `json:"due_date"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Project     *Project         `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Creator     User             `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Assignments []TaskAssignment `gorm:"foreignKey:TaskID" json:"assignments,omitempty"`
	Labels      []TaskLabel      `gorm:"foreignKey:TaskID" json:"labels,omitempty"`
	Subtasks    []Subtask        `gorm:"foreignKey:TaskID" json:"subtasks,omitempty"`
}

// LabelNames returns the label strings. Labels must be preloaded.
func (t *Task) LabelNames() []string {
	names := make([]string, 0, len(t.Labels))
	for _, l := range t.Labels {
		names = append(names, l.Label)
	}
	return names
}

// AssigneeIDs returns the IDs of every assigned user. Assignments must be preloaded.
func (t *Task) AssigneeIDs() []uint64 {
	ids := make([]uint64, 0, len(t.Assignments))
	for _, a := range t.Assignments {
		ids = append(ids, a.UserID)
	}
	return ids
}
