package models

import "time"

// UserDepartment links a user to a department. A user may belong to
// several departments; the legacy single-department form is normalized
// into rows of this table at the API boundary.
type UserDepartment struct {
	UserID       uint64    `gorm:"primarykey" json:"user_id"`
	DepartmentID uint64    `gorm:"primarykey" json:"department_id"`
	CreatedAt    time.Time `json:"created_at"`

	// Relations
	User       User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Department Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
}
