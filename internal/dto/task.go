package dto

import (
	"time"

	"github.com/workboard/workboard-api/internal/models"
)

// TaskAssignmentDTO represents a task assignment in API responses
type TaskAssignmentDTO struct {
	User UserDTO `json:"user"`
}

// SubtaskDTO represents a subtask in API responses
type SubtaskDTO struct {
	ID          uint64    `json:"id"`
	TaskID      uint64    `json:"task_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	IsCompleted bool      `json:"is_completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          uint64              `json:"id"`
	ProjectID   *uint64             `json:"project_id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	CreatorID   uint64              `json:"creator_id"`
	IsPrivate   bool                `json:"is_private"`
	Status      models.TaskStatus   `json:"status"`
	Priority    models.Priority     `json:"priority"`
	Progress    int                 `json:"progress"`
	StartDate   *time.Time          `json:"start_date"`
	DueDate     *time.Time          `json:"due_date"`
	Labels      []string            `json:"labels"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	Creator     *UserDTO            `json:"creator,omitempty"`
	Assignments []TaskAssignmentDTO `json:"assignments,omitempty"`
	Subtasks    []SubtaskDTO        `json:"subtasks,omitempty"`
}

// TaskListItemDTO represents a task in list responses (minimal data)
type TaskListItemDTO struct {
	ID        uint64            `json:"id"`
	ProjectID *uint64           `json:"project_id"`
	Title     string            `json:"title"`
	Status    models.TaskStatus `json:"status"`
	Priority  models.Priority   `json:"priority"`
	Progress  int               `json:"progress"`
	DueDate   *time.Time        `json:"due_date"`
	CreatorID uint64            `json:"creator_id"`
	Creator   *UserDTO          `json:"creator,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskListItemDTO `json:"tasks"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalCount int64             `json:"total_count"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:          task.ID,
		ProjectID:   task.ProjectID,
		Title:       task.Title,
		Description: task.Description,
		CreatorID:   task.CreatorID,
		IsPrivate:   task.IsPrivate,
		Status:      task.Status,
		Priority:    task.Priority,
		Progress:    task.Progress,
		StartDate:   task.StartDate,
		DueDate:     task.DueDate,
		Labels:      task.LabelNames(),
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}

	// Include creator if preloaded
	if task.Creator.ID != 0 {
		creator := ToUserDTO(task.Creator)
		dto.Creator = &creator
	}

	// Include assignments if preloaded
	if len(task.Assignments) > 0 {
		dto.Assignments = make([]TaskAssignmentDTO, len(task.Assignments))
		for i, assignment := range task.Assignments {
			dto.Assignments[i] = TaskAssignmentDTO{
				User: ToUserDTO(assignment.User),
			}
		}
	}

	if len(task.Subtasks) > 0 {
		dto.Subtasks = make([]SubtaskDTO, len(task.Subtasks))
		for i, subtask := range task.Subtasks {
			dto.Subtasks[i] = ToSubtaskDTO(subtask)
		}
	}

	return dto
}

// ToSubtaskDTO converts a Subtask model to SubtaskDTO
func ToSubtaskDTO(subtask models.Subtask) SubtaskDTO {
	return SubtaskDTO{
		ID:          subtask.ID,
		TaskID:      subtask.TaskID,
		Title:       subtask.Title,
		Description: subtask.Description,
		IsCompleted: subtask.IsCompleted,
		CreatedAt:   subtask.CreatedAt,
		UpdatedAt:   subtask.UpdatedAt,
	}
}

// ToTaskListItemDTO converts a Task model to TaskListItemDTO
func ToTaskListItemDTO(task models.Task) TaskListItemDTO {
	dto := TaskListItemDTO{
		ID:        task.ID,
		ProjectID: task.ProjectID,
		Title:     task.Title,
		Status:    task.Status,
		Priority:  task.Priority,
		Progress:  task.Progress,
		DueDate:   task.DueDate,
		CreatorID: task.CreatorID,
		CreatedAt: task.CreatedAt,
	}

	// Include creator if preloaded
	if task.Creator.ID != 0 {
		creator := ToUserDTO(task.Creator)
		dto.Creator = &creator
	}

	return dto
}

// ToTaskListResponse converts a slice of tasks to TaskListResponse
func ToTaskListResponse(tasks []models.Task, page, pageSize int, totalCount int64) TaskListResponse {
	items := make([]TaskListItemDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskListItemDTO(task)
	}

	return TaskListResponse{
		Tasks:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
	}
}
