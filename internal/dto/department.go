package dto

import (
	"github.com/workboard/workboard-api/internal/models"
)

// DepartmentDTO represents a department in API responses
type DepartmentDTO struct {
	ID     uint64  `json:"id"`
	Name   string  `json:"name"`
	HeadID *uint64 `json:"head_id,omitempty"`
}

// ToDepartmentDTO converts a Department model to DepartmentDTO
func ToDepartmentDTO(department models.Department) DepartmentDTO {
	return DepartmentDTO{
		ID:     department.ID,
		Name:   department.Name,
		HeadID: department.HeadID,
	}
}

// ToDepartmentDTOs converts a slice of departments
func ToDepartmentDTOs(departments []models.Department) []DepartmentDTO {
	items := make([]DepartmentDTO, len(departments))
	for i, department := range departments {
		items[i] = ToDepartmentDTO(department)
	}
	return items
}
