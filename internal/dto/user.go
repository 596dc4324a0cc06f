package dto

import (
	"time"

	"github.com/workboard/workboard-api/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID          uint64          `json:"id"`
	Email       string          `json:"email"`
	FullName    string          `json:"full_name"`
	Role        models.UserRole `json:"role"`
	Color       string          `json:"color,omitempty"`
	IsActive    bool            `json:"is_active"`
	ManagerID   *uint64         `json:"manager_id,omitempty"`
	Departments []string        `json:"departments"`
	CreatedAt   time.Time       `json:"created_at"`
}

// UserListResponse represents a paginated list of users
type UserListResponse struct {
	Users      []UserDTO `json:"users"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalCount int64     `json:"total_count"`
}

// ToUserDTO converts a User model to UserDTO. Department names are included
// when the memberships were preloaded with their departments.
func ToUserDTO(user models.User) UserDTO {
	departments := make([]string, 0, len(user.Departments))
	for _, d := range user.Departments {
		if d.Department.ID != 0 {
			departments = append(departments, d.Department.Name)
		}
	}

	return UserDTO{
		ID:          user.ID,
		Email:       user.Email,
		FullName:    user.FullName,
		Role:        user.Role,
		Color:       user.Color,
		IsActive:    user.IsActive,
		ManagerID:   user.ManagerID,
		Departments: departments,
		CreatedAt:   user.CreatedAt,
	}
}

// ToUserListResponse converts a slice of users to UserListResponse
func ToUserListResponse(users []models.User, page, pageSize int, totalCount int64) UserListResponse {
	items := make([]UserDTO, len(users))
	for i, user := range users {
		items[i] = ToUserDTO(user)
	}

	return UserListResponse{
		Users:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
	}
}
