package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleManager UserRole = "manager"
	RoleMember  UserRole = "member"
	RoleGuest   UserRole = "guest"
)

type User struct {
	ID           uint64         `gorm:"primarykey" json:"id"`
	Email        string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Username     string         `gorm:"type:varchar(100)" json:"username,omitempty"`
	FullName     string         `gorm:"type:varchar(255);not null" json:"full_name"`
	PasswordHash string         `gorm:"type:varchar(255);not null" json:"-"`
	Role         UserRole       `gorm:"type:varchar(20);not null;default:'member'" json:"role"`
	ManagerID    *uint64        `json:"manager_id,omitempty"`
	Color        string         `gorm:"type:varchar(20)" json:"color,omitempty"`
	IsActive     bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Departments   []UserDepartment `gorm:"foreignKey:UserID" json:"departments,omitempty"`
	OwnedProjects []Project        `gorm:"foreignKey:OwnerID" json:"-"`
	Memberships   []ProjectMember  `gorm:"foreignKey:UserID" json:"-"`
	CreatedTasks  []Task           `gorm:"foreignKey:CreatorID" json:"-"`
	Assignments   []TaskAssignment `gorm:"foreignKey:UserID" json:"-"`
}

// DepartmentIDs returns the IDs of every department the user belongs to.
// Departments must be preloaded.
func (u *User) DepartmentIDs() []uint64 {
	ids := make([]uint64, 0, len(u.Departments))
	for _, d := range u.Departments {
		ids = append(ids, d.DepartmentID)
	}
	return ids
}
