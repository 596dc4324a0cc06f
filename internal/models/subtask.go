package models

import (
	"time"

	"gorm.io/gorm"
)

// Subtask is a checklist item under a task. Subtasks have no visibility
// rules of their own; they ride on the parent task's access checks.
type Subtask struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	TaskID      uint64         `gorm:"not null;index" json:"task_id"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	IsCompleted bool           `gorm:"not null;default:false" json:"is_completed"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
