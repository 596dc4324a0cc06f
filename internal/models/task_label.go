package models

import (
	"time"
)

// TaskLabel is one label attached to a task. The label set is replaced as a
// whole on update, one row per label.
type TaskLabel struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	TaskID    uint64    `gorm:"not null;uniqueIndex:idx_task_label" json:"task_id"`
	Label     string    `gorm:"not null;uniqueIndex:idx_task_label" json:"label"`
	CreatedAt time.Time `json:"created_at"`
}
