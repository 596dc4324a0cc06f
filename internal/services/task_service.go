package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/workboard/workboard-api/internal/constants"
	"github.com/workboard/workboard-api/internal/models"
	"github.com/workboard/workboard-api/internal/policy"
	"github.com/workboard/workboard-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound        = errors.New("task not found")
	ErrSubtaskNotFound     = errors.New("subtask not found")
	ErrTitleRequired       = errors.New("title is required")
	ErrTitleEmpty          = errors.New("title cannot be empty")
	ErrNoUserIDsProvided   = errors.New("at least one user ID is required")
	ErrInvalidTaskAssignee = errors.New("one or more users do not exist or are not project members")
	ErrInvalidProgress     = errors.New("progress must be between 0 and 100")
)

// taskPreloads are the relations loaded for single-task responses. The
// parent project's members ride along because the policy check needs them.
var taskPreloads = []string{"Creator", "Assignments", "Assignments.User", "Labels", "Subtasks", "Project", "Project.Members"}

// TaskService handles task business logic
type TaskService struct {
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, projectRepo repository.ProjectRepository, userRepo repository.UserRepository) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		userRepo:    userRepo,
	}
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	ActorID       uint64
	ProjectID     *uint64
	AssignedToMe  bool
	DueToday      bool
	Status        *models.TaskStatus
	SortByDueDate bool
	Page          int
	PageSize      int
}

// ListTasks returns the tasks visible to the actor
func (s *TaskService) ListTasks(input ListTasksInput) ([]models.Task, int64, error) {
	p, err := loadPrincipal(s.userRepo, input.ActorID)
	if err != nil {
		return nil, 0, err
	}
	if !p.Active {
		return nil, 0, policy.ErrInactiveAccount
	}

	if input.ProjectID != nil {
		project, err := s.findProject(*input.ProjectID)
		if err != nil {
			return nil, 0, err
		}
		if err := policy.CheckProject(p, policy.ProjectRecord(project), policy.OpRead); err != nil {
			return nil, 0, err
		}
	}

	filter := repository.TaskFilter{
		ProjectID:     input.ProjectID,
		Status:        input.Status,
		SortByDueDate: input.SortByDueDate,
		Page:          input.Page,
		PageSize:      input.PageSize,
	}

	if input.AssignedToMe {
		filter.AssignedUserID = &input.ActorID
	}
	if input.DueToday {
		now := time.Now()
		startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		endOfDay := startOfDay.Add(24 * time.Hour)
		filter.DueDateFrom = &startOfDay
		filter.DueDateTo = &endOfDay
	}

	tasks, total, err := s.taskRepo.ListVisible(p, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// GetTask returns a task if the actor may see it
func (s *TaskService) GetTask(actorID, taskID uint64) (*models.Task, error) {
	p, err := loadPrincipal(s.userRepo, actorID)
	if err != nil {
		return nil, err
	}

	task, err := s.findTask(taskID)
	if err != nil {
		return nil, err
	}

	if err := policy.CheckTask(p, policy.TaskRecord(task), parentRecord(task), policy.OpRead); err != nil {
		return nil, err
	}

	return task, nil
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	ActorID     uint64
	ProjectID   *uint64
	Title       string
	Description string
	IsPrivate   bool
	Status      models.TaskStatus
	Priority    models.Priority
	Progress    int
	StartDate   *time.Time
	DueDate     *time.Time
	Assignees   []uint64
	Labels      []string
}

// CreateTask creates a task. Tasks inside a project require read access to
// the project and project-member assignees; standalone tasks only require
// the assignees to exist.
func (s *TaskService) CreateTask(input CreateTaskInput) (*models.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrTitleRequired
	}
	if input.Progress < 0 || input.Progress > constants.MaxTaskProgress {
		return nil, ErrInvalidProgress
	}

	p, err := loadPrincipal(s.userRepo, input.ActorID)
	if err != nil {
		return nil, err
	}
	if !p.Active {
		return nil, policy.ErrInactiveAccount
	}

	if input.ProjectID != nil {
		project, err := s.findProject(*input.ProjectID)
		if err != nil {
			return nil, err
		}
		if err := policy.CheckProject(p, policy.ProjectRecord(project), policy.OpRead); err != nil {
			return nil, err
		}
	}

	assignees := uniqueUint64(input.Assignees)
	if len(assignees) > 0 {
		if err := s.verifyAssignees(assignees, input.ProjectID); err != nil {
			return nil, err
		}
	}

	if input.Status == "" {
		input.Status = models.TaskStatusTodo
	}
	if input.Priority == "" {
		input.Priority = models.PriorityMedium
	}

	task := &models.Task{
		ProjectID:   input.ProjectID,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		CreatorID:   input.ActorID,
		IsPrivate:   input.IsPrivate,
		Status:      input.Status,
		Priority:    input.Priority,
		Progress:    input.Progress,
		StartDate:   input.StartDate,
		DueDate:     input.DueDate,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	if len(assignees) > 0 {
		if err := s.taskRepo.AssignUsers(task.ID, assignees); err != nil {
			return nil, fmt.Errorf("failed to assign users: %w", err)
		}
	}

	if labels := normalizeLabels(input.Labels); len(labels) > 0 {
		if err := s.taskRepo.SetLabels(task.ID, labels); err != nil {
			return nil, fmt.Errorf("failed to set labels: %w", err)
		}
	}

	return s.taskRepo.FindByID(task.ID, taskPreloads...)
}

// UpdateTaskInput represents input for updating a task
type UpdateTaskInput struct {
	Title        *string
	Description  *string
	IsPrivate    *bool
	Status       *models.TaskStatus
	Priority     *models.Priority
	Progress     *int
	StartDate    *time.Time
	DueDate      *time.Time
	ClearDueDate bool
	Labels       *[]string
}

// UpdateTask updates an existing task
func (s *TaskService) UpdateTask(actorID, taskID uint64, input UpdateTaskInput) (*models.Task, error) {
	p, err := loadPrincipal(s.userRepo, actorID)
	if err != nil {
		return nil, err
	}

	task, err := s.findTask(taskID)
	if err != nil {
		return nil, err
	}

	if err := policy.CheckTask(p, policy.TaskRecord(task), parentRecord(task), policy.OpUpdate); err != nil {
		return nil, err
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, ErrTitleEmpty
		}
		task.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.IsPrivate != nil {
		task.IsPrivate = *input.IsPrivate
	}
	if input.Status != nil {
		task.Status = *input.Status
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.Progress != nil {
		if *input.Progress < 0 || *input.Progress > constants.MaxTaskProgress {
			return nil, ErrInvalidProgress
		}
		task.Progress = *input.Progress
	}
	if input.StartDate != nil {
		task.StartDate = input.StartDate
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		task.DueDate = input.DueDate
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	// The label set is replaced as a whole, matching the list-valued field
	// semantics of the task record.
	if input.Labels != nil {
		if err := s.taskRepo.SetLabels(task.ID, normalizeLabels(*input.Labels)); err != nil {
			return nil, fmt.Errorf("failed to set labels: %w", err)
		}
	}

	return s.taskRepo.FindByID(task.ID, taskPreloads...)
}

// UpdateStatus sets the task status
func (s *TaskService) UpdateStatus(actorID, taskID uint64, status models.TaskStatus) (*models.Task, error) {
	return s.UpdateTask(actorID, taskID, UpdateTaskInput{Status: &status})
}

// UpdateProgress sets the task progress percentage
func (s *TaskService) UpdateProgress(actorID, taskID uint64, progress int) (*models.Task, error) {
	return s.UpdateTask(actorID, taskID, UpdateTaskInput{Progress: &progress})
}

// DeleteTask deletes a task
func (s *TaskService) DeleteTask(actorID, taskID uint64) error {
	p, err := loadPrincipal(s.userRepo, actorID)
	if err != nil {
		return err
	}

	task, err := s.findTask(taskID)
	if err != nil {
		return err
	}

	if err := policy.CheckTask(p, policy.TaskRecord(task), parentRecord(task), policy.OpDelete); err != nil {
		return err
	}

	if err := s.taskRepo.Delete(taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// AssignUsers assigns multiple users to a task with validation
func (s *TaskService) AssignUsers(actorID, taskID uint64, userIDs []uint64) (*models.Task, error) {
	if len(userIDs) == 0 {
		return nil, ErrNoUserIDsProvided
	}

	p, err := loadPrincipal(s.userRepo, actorID)
	if err != nil {
		return nil, err
	}

	task, err := s.findTask(taskID)
	if err != nil {
		return nil, err
	}

	if err := policy.CheckTask(p, policy.TaskRecord(task), parentRecord(task), policy.OpUpdate); err != nil {
		return nil, err
	}

	assignees := uniqueUint64(userIDs)
	if err := s.verifyAssignees(assignees, task.ProjectID); err != nil {
		return nil, err
	}

	if err := s.taskRepo.AssignUsers(task.ID, assignees); err != nil {
		return nil, fmt.Errorf("failed to assign users: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, taskPreloads...)
}

// UnassignUsers removes user assignments from a task
func (s *TaskService) UnassignUsers(actorID, taskID uint64, userIDs []uint64) (*models.Task, error) {
	if len(userIDs) == 0 {
		return nil, ErrNoUserIDsProvided
	}

	p, err := loadPrincipal(s.userRepo, actorID)
	if err != nil {
		return nil, err
	}

	task, err := s.findTask(taskID)
	if err != nil {
		return nil, err
	}

	if err := policy.CheckTask(p, policy.TaskRecord(task), parentRecord(task), policy.OpUpdate); err != nil {
		return nil, err
	}

	if err := s.taskRepo.UnassignUsers(taskID, uniqueUint64(userIDs)); err != nil {
		return nil, fmt.Errorf("failed to unassign users: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, taskPreloads...)
}

// SubtaskInput represents input for creating or updating a subtask
type SubtaskInput struct {
	Title       *string
	Description *string
	IsCompleted *bool
}

// AddSubtask adds a checklist item to a task. Anyone with write access to
// the task may manage its subtasks.
func (s *TaskService) AddSubtask(actorID, taskID uint64, input SubtaskInput) (*models.Subtask, error) {
	if input.Title == nil || strings.TrimSpace(*input.Title) == "" {
		return nil, ErrTitleRequired
	}

	if _, err := s.writableTask(actorID, taskID); err != nil {
		return nil, err
	}

	subtask := &models.Subtask{
		TaskID: taskID,
		Title:  strings.TrimSpace(*input.Title),
	}
	if input.Description != nil {
		subtask.Description = *input.Description
	}
	if input.IsCompleted != nil {
		subtask.IsCompleted = *input.IsCompleted
	}

	if err := s.taskRepo.CreateSubtask(subtask); err != nil {
		return nil, fmt.Errorf("failed to create subtask: %w", err)
	}

	return subtask, nil
}

// UpdateSubtask updates a checklist item
func (s *TaskService) UpdateSubtask(actorID, taskID, subtaskID uint64, input SubtaskInput) (*models.Subtask, error) {
	if _, err := s.writableTask(actorID, taskID); err != nil {
		return nil, err
	}

	subtask, err := s.findSubtask(taskID, subtaskID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, ErrTitleEmpty
		}
		subtask.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		subtask.Description = *input.Description
	}
	if input.IsCompleted != nil {
		subtask.IsCompleted = *input.IsCompleted
	}

	if err := s.taskRepo.UpdateSubtask(subtask); err != nil {
		return nil, fmt.Errorf("failed to update subtask: %w", err)
	}

	return subtask, nil
}

// DeleteSubtask removes a checklist item
func (s *TaskService) DeleteSubtask(actorID, taskID, subtaskID uint64) error {
	if _, err := s.writableTask(actorID, taskID); err != nil {
		return err
	}

	if _, err := s.findSubtask(taskID, subtaskID); err != nil {
		return err
	}

	if err := s.taskRepo.DeleteSubtask(taskID, subtaskID); err != nil {
		return fmt.Errorf("failed to delete subtask: %w", err)
	}

	return nil
}

// writableTask loads a task and checks the actor's write access to it.
func (s *TaskService) writableTask(actorID, taskID uint64) (*models.Task, error) {
	p, err := loadPrincipal(s.userRepo, actorID)
	if err != nil {
		return nil, err
	}

	task, err := s.findTask(taskID)
	if err != nil {
		return nil, err
	}

	if err := policy.CheckTask(p, policy.TaskRecord(task), parentRecord(task), policy.OpUpdate); err != nil {
		return nil, err
	}

	return task, nil
}

func (s *TaskService) findSubtask(taskID, subtaskID uint64) (*models.Subtask, error) {
	subtask, err := s.taskRepo.FindSubtask(taskID, subtaskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubtaskNotFound
		}
		return nil, fmt.Errorf("failed to find subtask: %w", err)
	}
	return subtask, nil
}

// normalizeLabels trims labels, drops empties and removes duplicates while
// keeping the original order.
func normalizeLabels(labels []string) []string {
	seen := make(map[string]struct{}, len(labels))
	result := make([]string, 0, len(labels))

	for _, label := range labels {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		if _, exists := seen[label]; exists {
			continue
		}
		seen[label] = struct{}{}
		result = append(result, label)
	}

	return result
}

// verifyAssignees checks that every assignee may be assigned: project tasks
// require project membership, standalone tasks only require the user to exist.
func (s *TaskService) verifyAssignees(userIDs []uint64, projectID *uint64) error {
	var (
		count int64
		err   error
	)

	if projectID != nil {
		count, err = s.taskRepo.CountProjectMembers(userIDs, *projectID)
	} else {
		count, err = s.taskRepo.CountUsersByIDs(userIDs)
	}
	if err != nil {
		return fmt.Errorf("failed to verify users: %w", err)
	}
	if int(count) != len(userIDs) {
		return ErrInvalidTaskAssignee
	}

	return nil
}

func (s *TaskService) findTask(taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, taskPreloads...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

func (s *TaskService) findProject(projectID uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(projectID, "Members")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}

// parentRecord builds the parent project snapshot for a task, or nil for
// standalone tasks.
func parentRecord(task *models.Task) *policy.Project {
	if task.Project == nil {
		return nil
	}
	record := policy.ProjectRecord(task.Project)
	return &record
}

// uniqueUint64 removes duplicate values from a slice of uint64
func uniqueUint64(values []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(values))
	result := make([]uint64, 0, len(values))

	for _, v := range values {
		if _, exists := seen[v]; exists {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}

	return result
}
