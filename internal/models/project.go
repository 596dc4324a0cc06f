package models

import (
	"time"

	"gorm.io/gorm"
)

type ProjectStatus string

const (
	ProjectStatusPlanning   ProjectStatus = "planning"
	ProjectStatusInProgress ProjectStatus = "in_progress"
	ProjectStatusOnHold     ProjectStatus = "on_hold"
	ProjectStatusCompleted  ProjectStatus = "completed"
	ProjectStatusCancelled  ProjectStatus = "cancelled"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

type Project struct {
	ID           uint64         `gorm:"primarykey" json:"id"`
	Name         string         `gorm:"type:varchar(255);not null" json:"name"`
	Description  string         `gorm:"type:text" json:"description"`
	Icon         string         `gorm:"type:varchar(50)" json:"icon,omitempty"`
	Color        string         `gorm:"type:varchar(20)" json:"color,omitempty"`
	OwnerID      uint64         `gorm:"not null" json:"owner_id"`
	DepartmentID *uint64        `gorm:"index" json:"department_id"`
	IsPrivate    bool           `gorm:"not null;default:false" json:"is_private"`
	Status       ProjectStatus  `gorm:"type:varchar(20);not null;default:'planning'" json:"status"`
	Priority     Priority       `gorm:"type:varchar(20);not null;default:'medium'" json:"priority"`
	Favorite     bool           `gorm:"not null;default:false" json:"favorite"`
	StartDate    *time.Time     `json:"start_date"`
	EndDate      *time.Time     `json:"end_date"`
	Budget       *float64       `json:"budget,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Owner      User            `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Department *Department     `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
	Members    []ProjectMember `gorm:"foreignKey:ProjectID" json:"members,omitempty"`
	Tasks      []Task          `gorm:"foreignKey:ProjectID" json:"tasks,omitempty"`
}

// MemberIDs returns the IDs of every project member. Members must be preloaded.
func (p *Project) MemberIDs() []uint64 {
	ids := make([]uint64, 0, len(p.Members))
	for _, m := range p.Members {
		ids = append(ids, m.UserID)
	}
	return ids
}
