package repository

import (
	"time"

	"github.com/workboard/workboard-api/internal/models"
	"github.com/workboard/workboard-api/internal/policy"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID with department memberships preloaded
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email with department memberships preloaded
	FindByEmail(email string) (*models.User, error)

	// List retrieves users with pagination
	List(page, pageSize int) ([]models.User, int64, error)

	// Update updates a user
	Update(user *models.User) error

	// Delete soft deletes a user
	Delete(id uint64) error

	// SetDepartments replaces the user's department memberships
	SetDepartments(userID uint64, departmentIDs []uint64) error
}

// DepartmentRepository defines the interface for department data access
type DepartmentRepository interface {
	// Create creates a new department
	Create(department *models.Department) error

	// FindByID finds a department by ID
	FindByID(id uint64) (*models.Department, error)

	// FindByName finds a department by name
	FindByName(name string) (*models.Department, error)

	// List retrieves all departments
	List() ([]models.Department, error)

	// Update updates a department
	Update(department *models.Department) error

	// Delete deletes a department
	Delete(id uint64) error
}

// ProjectFilter holds filtering options for listing projects
type ProjectFilter struct {
	DepartmentID *uint64
	Status       *models.ProjectStatus
	FavoriteOnly bool
	Page         int
	PageSize     int
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// Create creates a project and its owner membership atomically
	Create(project *models.Project) error

	// FindByID finds a project by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Project, error)

	// ListVisible retrieves the projects visible to the principal. The SQL
	// filter must admit exactly the projects policy.CheckProject admits
	// for OpRead.
	ListVisible(p policy.Principal, filter ProjectFilter) ([]models.Project, int64, error)

	// Update updates a project
	Update(project *models.Project) error

	// Delete deletes a project, its tasks and memberships
	Delete(id uint64) error

	// AddMember adds a member to a project
	AddMember(projectID, userID uint64) error

	// RemoveMember removes a member from a project
	RemoveMember(projectID, userID uint64) error

	// FindMember finds a specific project member
	FindMember(projectID, userID uint64) (*models.ProjectMember, error)
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	ProjectID      *uint64
	Status         *models.TaskStatus
	CreatorID      *uint64
	AssignedUserID *uint64
	DueDateFrom    *time.Time
	DueDateTo      *time.Time
	SortByDueDate  bool
	Page           int
	PageSize       int
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// ListVisible retrieves the tasks visible to the principal: tasks of
	// visible projects minus private tasks the principal is not involved
	// in, plus standalone tasks the principal created or is assigned to.
	ListVisible(p policy.Principal, filter TaskFilter) ([]models.Task, int64, error)

	// Update updates a task
	Update(task *models.Task) error

	// Delete soft deletes a task along with its assignments, labels and
	// subtasks
	Delete(id uint64) error

	// SetLabels replaces the task's label set with the given labels
	SetLabels(taskID uint64, labels []string) error

	// CreateSubtask creates a subtask under a task
	CreateSubtask(subtask *models.Subtask) error

	// FindSubtask finds a subtask scoped to its parent task
	FindSubtask(taskID, subtaskID uint64) (*models.Subtask, error)

	// UpdateSubtask updates a subtask
	UpdateSubtask(subtask *models.Subtask) error

	// DeleteSubtask soft deletes a subtask scoped to its parent task
	DeleteSubtask(taskID, subtaskID uint64) error

	// AssignUsers assigns multiple users to a task
	AssignUsers(taskID uint64, userIDs []uint64) error

	// UnassignUsers removes user assignments from a task
	UnassignUsers(taskID uint64, userIDs []uint64) error

	// CountProjectMembers counts how many of the given user IDs are
	// members of the project
	CountProjectMembers(userIDs []uint64, projectID uint64) (int64, error)

	// CountUsersByIDs counts how many of the given user IDs exist
	CountUsersByIDs(userIDs []uint64) (int64, error)
}
