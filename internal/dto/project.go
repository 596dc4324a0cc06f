package dto

import (
	"time"

	"github.com/workboard/workboard-api/internal/models"
)

// ProjectMemberDTO represents a project member in API responses
type ProjectMemberDTO struct {
	User UserDTO `json:"user"`
}

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	ID          uint64               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Icon        string               `json:"icon,omitempty"`
	Color       string               `json:"color,omitempty"`
	OwnerID     uint64               `json:"owner_id"`
	Department  *string              `json:"department"`
	IsPrivate   bool                 `json:"is_private"`
	Status      models.ProjectStatus `json:"status"`
	Priority    models.Priority      `json:"priority"`
	Favorite    bool                 `json:"favorite"`
	StartDate   *time.Time           `json:"start_date"`
	EndDate     *time.Time           `json:"end_date"`
	Budget      *float64             `json:"budget,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
	Owner       *UserDTO             `json:"owner,omitempty"`
	Members     []ProjectMemberDTO   `json:"members,omitempty"`
}

// ProjectListResponse represents a paginated list of projects
type ProjectListResponse struct {
	Projects   []ProjectDTO `json:"projects"`
	Page       int          `json:"page"`
	PageSize   int          `json:"page_size"`
	TotalCount int64        `json:"total_count"`
}

// ToProjectDTO converts a Project model to ProjectDTO
func ToProjectDTO(project models.Project) ProjectDTO {
	dto := ProjectDTO{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		Icon:        project.Icon,
		Color:       project.Color,
		OwnerID:     project.OwnerID,
		IsPrivate:   project.IsPrivate,
		Status:      project.Status,
		Priority:    project.Priority,
		Favorite:    project.Favorite,
		StartDate:   project.StartDate,
		EndDate:     project.EndDate,
		Budget:      project.Budget,
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
	}

	// Include department name if preloaded
	if project.Department != nil {
		name := project.Department.Name
		dto.Department = &name
	}

	// Include owner if preloaded
	if project.Owner.ID != 0 {
		owner := ToUserDTO(project.Owner)
		dto.Owner = &owner
	}

	// Include members if preloaded
	if len(project.Members) > 0 {
		dto.Members = make([]ProjectMemberDTO, len(project.Members))
		for i, member := range project.Members {
			dto.Members[i] = ProjectMemberDTO{
				User: ToUserDTO(member.User),
			}
		}
	}

	return dto
}

// ToProjectListResponse converts a slice of projects to ProjectListResponse
func ToProjectListResponse(projects []models.Project, page, pageSize int, totalCount int64) ProjectListResponse {
	items := make([]ProjectDTO, len(projects))
	for i, project := range projects {
		items[i] = ToProjectDTO(project)
	}

	return ProjectListResponse{
		Projects:   items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
	}
}
