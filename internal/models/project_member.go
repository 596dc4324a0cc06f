package models

import "time"

// ProjectMember links a user to a project. The owner is inserted as a
// member at project creation and can never be removed.
type ProjectMember struct {
	ProjectID uint64    `gorm:"primarykey" json:"project_id"`
	UserID    uint64    `gorm:"primarykey" json:"user_id"`
	AddedAt   time.Time `json:"added_at"`

	// Relations
	Project Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	User    User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
