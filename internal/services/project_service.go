package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/workboard/workboard-api/internal/models"
	"github.com/workboard/workboard-api/internal/policy"
	"github.com/workboard/workboard-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrProjectNotFound     = errors.New("project not found")
	ErrProjectNameRequired = errors.New("project name is required")
	ErrDepartmentNotFound  = errors.New("department not found")
	ErrAlreadyMember       = errors.New("user is already a project member")
	ErrNotProjectMember    = errors.New("user is not a project member")
)

// projectPreloads are the relations loaded for single-project responses.
var projectPreloads = []string{"Owner", "Department", "Members", "Members.User"}

// ProjectService handles project business logic. Every operation loads a
// fresh principal snapshot and runs it through the policy package before
// touching the store.
type ProjectService struct {
	projectRepo    repository.ProjectRepository
	userRepo       repository.UserRepository
	departmentRepo repository.DepartmentRepository
}

// NewProjectService creates a new ProjectService
func NewProjectService(projectRepo repository.ProjectRepository, userRepo repository.UserRepository, departmentRepo repository.DepartmentRepository) *ProjectService {
	return &ProjectService{
		projectRepo:    projectRepo,
		userRepo:       userRepo,
		departmentRepo: departmentRepo,
	}
}

// ListProjectsInput represents filters for listing projects
type ListProjectsInput struct {
	ActorID      uint64
	Department   *string
	Status       *models.ProjectStatus
	FavoriteOnly bool
	Page         int
	PageSize     int
}

// ListProjects returns the projects visible to the actor
func (s *ProjectService) ListProjects(input ListProjectsInput) ([]models.Project, int64, error) {
	p, err := loadPrincipal(s.userRepo, input.ActorID)
	if err != nil {
		return nil, 0, err
	}
	if !p.Active {
		return nil, 0, policy.ErrInactiveAccount
	}

	filter := repository.ProjectFilter{
		Status:       input.Status,
		FavoriteOnly: input.FavoriteOnly,
		Page:         input.Page,
		PageSize:     input.PageSize,
	}

	if input.Department != nil {
		department, err := s.departmentRepo.FindByName(*input.Department)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, 0, ErrDepartmentNotFound
			}
			return nil, 0, fmt.Errorf("failed to find department: %w", err)
		}
		filter.DepartmentID = &department.ID
	}

	projects, total, err := s.projectRepo.ListVisible(p, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}

	return projects, total, nil
}

// GetProject returns a project if the actor may see it
func (s *ProjectService) GetProject(actorID, projectID uint64) (*models.Project, error) {
	p, err := loadPrincipal(s.userRepo, actorID)
	if err != nil {
		return nil, err
	}

	project, err := s.findProject(projectID)
	if err != nil {
		return nil, err
	}

	if err := policy.CheckProject(p, policy.ProjectRecord(project), policy.OpRead); err != nil {
		return nil, err
	}

	return project, nil
}

// CreateProjectInput represents input for creating a project
type CreateProjectInput struct {
	ActorID     uint64
	Name        string
	Description string
	Icon        string
	Color       string
	Department  *string
	IsPrivate   bool
	Status      models.ProjectStatus
	Priority    models.Priority
	StartDate   *time.Time
	EndDate     *time.Time
	Budget      *float64
}

// CreateProject creates a project owned by the actor. The department is
// resolved by the creation rules: explicit departments must be ones the
// creator belongs to (admins excepted); with none given the creator's sole
// department is auto-assigned, none leaves the project global, and several
// make the request ambiguous.
func (s *ProjectService) CreateProject(input CreateProjectInput) (*models.Project, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrProjectNameRequired
	}

	p, err := loadPrincipal(s.userRepo, input.ActorID)
	if err != nil {
		return nil, err
	}

	var requestedDepartment *uint64
	if input.Department != nil && *input.Department != "" {
		department, err := s.departmentRepo.FindByName(*input.Department)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrDepartmentNotFound
			}
			return nil, fmt.Errorf("failed to find department: %w", err)
		}
		requestedDepartment = &department.ID
	}

	departmentID, err := policy.ResolveDepartment(p, requestedDepartment)
	if err != nil {
		return nil, err
	}

	if input.Status == "" {
		input.Status = models.ProjectStatusPlanning
	}
	if input.Priority == "" {
		input.Priority = models.PriorityMedium
	}

	project := &models.Project{
		Name:         strings.TrimSpace(input.Name),
		Description:  input.Description,
		Icon:         input.Icon,
		Color:        input.Color,
		OwnerID:      input.ActorID,
		DepartmentID: departmentID,
		IsPrivate:    input.IsPrivate,
		Status:       input.Status,
		Priority:     input.Priority,
		StartDate:    input.StartDate,
		EndDate:      input.EndDate,
		Budget:       input.Budget,
	}

	if err := s.projectRepo.Create(project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return s.projectRepo.FindByID(project.ID, projectPreloads...)
}

// UpdateProjectInput represents input for updating a project
type UpdateProjectInput struct {
	Name        *string
	Description *string
	Icon        *string
	Color       *string
	Department  *string
	IsPrivate   *bool
	Status      *models.ProjectStatus
	Priority    *models.Priority
	StartDate   *time.Time
	EndDate     *time.Time
	Budget      *float64
}

// UpdateProject updates a project. The owner never changes through updates,
// so the owner-in-members invariant cannot be broken here.
func (s *ProjectService) UpdateProject(actorID, projectID uint64, input UpdateProjectInput) (*models.Project, error) {
	p, err := loadPrincipal(s.userRepo, actorID)
	if err != nil {
		return nil, err
	}

	project, err := s.findProject(projectID)
	if err != nil {
		return nil, err
	}

	if err := policy.CheckProject(p, policy.ProjectRecord(project), policy.OpUpdate); err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, ErrProjectNameRequired
		}
		project.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		project.Description = *input.Description
	}
	if input.Icon != nil {
		project.Icon = *input.Icon
	}
	if input.Color != nil {
		project.Color = *input.Color
	}
	if input.Department != nil {
		if *input.Department == "" {
			project.DepartmentID = nil
		} else {
			department, err := s.departmentRepo.FindByName(*input.Department)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, ErrDepartmentNotFound
				}
				return nil, fmt.Errorf("failed to find department: %w", err)
			}
			if !p.IsAdmin() && !p.InDepartment(department.ID) {
				return nil, policy.ErrDepartmentNotAllowed
			}
			project.DepartmentID = &department.ID
		}
	}
	if input.IsPrivate != nil {
		project.IsPrivate = *input.IsPrivate
	}
	if input.Status != nil {
		project.Status = *input.Status
	}
	if input.Priority != nil {
		project.Priority = *input.Priority
	}
	if input.StartDate != nil {
		project.StartDate = input.StartDate
	}
	if input.EndDate != nil {
		project.EndDate = input.EndDate
	}
	if input.Budget != nil {
		project.Budget = input.Budget
	}

	if err := s.projectRepo.Update(project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return s.projectRepo.FindByID(project.ID, projectPreloads...)
}

// DeleteProject deletes a project and cascades to its tasks
func (s *ProjectService) DeleteProject(actorID, projectID uint64) error {
	p, err := loadPrincipal(s.userRepo, actorID)
	if err != nil {
		return err
	}

	project, err := s.findProject(projectID)
	if err != nil {
		return err
	}

	if err := policy.CheckProject(p, policy.ProjectRecord(project), policy.OpDelete); err != nil {
		return err
	}

	if err := s.projectRepo.Delete(projectID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	return nil
}

// AddMember adds a user to the project's member set
func (s *ProjectService) AddMember(actorID, projectID, userID uint64) (*models.Project, error) {
	p, err := loadPrincipal(s.userRepo, actorID)
	if err != nil {
		return nil, err
	}

	project, err := s.findProject(projectID)
	if err != nil {
		return nil, err
	}

	if err := policy.CheckProject(p, policy.ProjectRecord(project), policy.OpManageMembers); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.FindByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := s.projectRepo.AddMember(projectID, userID); err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	return s.projectRepo.FindByID(projectID, projectPreloads...)
}

// RemoveMember removes a user from the project's member set. Removing the
// owner is rejected for every caller, admins included.
func (s *ProjectService) RemoveMember(actorID, projectID, userID uint64) (*models.Project, error) {
	p, err := loadPrincipal(s.userRepo, actorID)
	if err != nil {
		return nil, err
	}

	project, err := s.findProject(projectID)
	if err != nil {
		return nil, err
	}

	if err := policy.CheckMemberRemoval(p, policy.ProjectRecord(project), userID); err != nil {
		return nil, err
	}

	if _, err := s.projectRepo.FindMember(projectID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotProjectMember
		}
		return nil, fmt.Errorf("failed to find member: %w", err)
	}

	if err := s.projectRepo.RemoveMember(projectID, userID); err != nil {
		return nil, fmt.Errorf("failed to remove member: %w", err)
	}

	return s.projectRepo.FindByID(projectID, projectPreloads...)
}

// ToggleFavorite flips the project's favorite flag. Owner or member only;
// it is a personal preference, not a shared mutation.
func (s *ProjectService) ToggleFavorite(actorID, projectID uint64) (*models.Project, error) {
	p, err := loadPrincipal(s.userRepo, actorID)
	if err != nil {
		return nil, err
	}

	project, err := s.findProject(projectID)
	if err != nil {
		return nil, err
	}

	if err := policy.CheckProject(p, policy.ProjectRecord(project), policy.OpFavorite); err != nil {
		return nil, err
	}

	project.Favorite = !project.Favorite

	if err := s.projectRepo.Update(project); err != nil {
		return nil, fmt.Errorf("failed to toggle favorite: %w", err)
	}

	return project, nil
}

func (s *ProjectService) findProject(projectID uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(projectID, projectPreloads...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}
