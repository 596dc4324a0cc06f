package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/workboard/workboard-api/internal/dto"
	apierrors "github.com/workboard/workboard-api/internal/errors"
	"github.com/workboard/workboard-api/internal/middleware"
	"github.com/workboard/workboard-api/internal/models"
	"github.com/workboard/workboard-api/internal/services"
	"github.com/workboard/workboard-api/internal/utils"
)

// TaskHandler coordinates task HTTP handlers.
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns the tasks visible to the current user
func (h *TaskHandler) ListTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	params := utils.GetPaginationParams(c)

	input := services.ListTasksInput{
		ActorID:       userID,
		AssignedToMe:  c.Query("assigned_to_me") == "true",
		DueToday:      c.Query("due_today") == "true",
		SortByDueDate: c.Query("sort") == "due_date",
		Page:          params.Page,
		PageSize:      params.Limit,
	}

	if projectIDStr := c.Query("project_id"); projectIDStr != "" {
		projectID, err := strconv.ParseUint(projectIDStr, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid project_id")
			return
		}
		input.ProjectID = &projectID
	}
	if status := c.Query("status"); status != "" {
		taskStatus := models.TaskStatus(status)
		input.Status = &taskStatus
	}

	tasks, total, err := h.taskService.ListTasks(input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, params.Page, params.Limit, total))
}

// GetTask returns a single task
func (h *TaskHandler) GetTask(c *gin.Context) {
	userID, taskID, ok := taskRequestIDs(c)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(userID, taskID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// CreateTask creates a new task
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateTaskRequest struct {
		ProjectID   *uint64    `json:"project_id"`
		Title       string     `json:"title" binding:"required"`
		Description string     `json:"description"`
		IsPrivate   bool       `json:"is_private"`
		Status      string     `json:"status"`
		Priority    string     `json:"priority"`
		Progress    int        `json:"progress"`
		StartDate   *time.Time `json:"start_date"`
		DueDate     *time.Time `json:"due_date"`
		Assignees   []uint64   `json:"assignees"`
		Labels      []string   `json:"labels"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.CreateTask(services.CreateTaskInput{
		ActorID:     userID,
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		IsPrivate:   req.IsPrivate,
		Status:      models.TaskStatus(req.Status),
		Priority:    models.Priority(req.Priority),
		Progress:    req.Progress,
		StartDate:   req.StartDate,
		DueDate:     req.DueDate,
		Assignees:   req.Assignees,
		Labels:      req.Labels,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// UpdateTask updates an existing task
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, taskID, ok := taskRequestIDs(c)
	if !ok {
		return
	}

	type UpdateTaskRequest struct {
		Title        *string            `json:"title"`
		Description  *string            `json:"description"`
		IsPrivate    *bool              `json:"is_private"`
		Status       *models.TaskStatus `json:"status"`
		Priority     *models.Priority   `json:"priority"`
		Progress     *int               `json:"progress"`
		StartDate    *time.Time         `json:"start_date"`
		DueDate      *time.Time         `json:"due_date"`
		ClearDueDate bool               `json:"clear_due_date"`
		Labels       *[]string          `json:"labels"`
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.UpdateTask(userID, taskID, services.UpdateTaskInput{
		Title:        req.Title,
		Description:  req.Description,
		IsPrivate:    req.IsPrivate,
		Status:       req.Status,
		Priority:     req.Priority,
		Progress:     req.Progress,
		StartDate:    req.StartDate,
		DueDate:      req.DueDate,
		ClearDueDate: req.ClearDueDate,
		Labels:       req.Labels,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// UpdateStatus sets a task's status
func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	userID, taskID, ok := taskRequestIDs(c)
	if !ok {
		return
	}

	type UpdateStatusRequest struct {
		Status models.TaskStatus `json:"status" binding:"required"`
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.UpdateStatus(userID, taskID, req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// UpdateProgress sets a task's progress percentage
func (h *TaskHandler) UpdateProgress(c *gin.Context) {
	userID, taskID, ok := taskRequestIDs(c)
	if !ok {
		return
	}

	type UpdateProgressRequest struct {
		Progress *int `json:"progress" binding:"required"`
	}

	var req UpdateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Progress == nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.UpdateProgress(userID, taskID, *req.Progress)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask deletes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, taskID, ok := taskRequestIDs(c)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(userID, taskID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
	})
}

// AssignTask assigns users to a task
func (h *TaskHandler) AssignTask(c *gin.Context) {
	userID, taskID, ok := taskRequestIDs(c)
	if !ok {
		return
	}

	type AssignRequest struct {
		UserIDs []uint64 `json:"user_ids" binding:"required"`
	}

	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.AssignUsers(userID, taskID, req.UserIDs)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// UnassignTask removes user assignments from a task
func (h *TaskHandler) UnassignTask(c *gin.Context) {
	userID, taskID, ok := taskRequestIDs(c)
	if !ok {
		return
	}

	type UnassignRequest struct {
		UserIDs []uint64 `json:"user_ids" binding:"required"`
	}

	var req UnassignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.UnassignUsers(userID, taskID, req.UserIDs)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// AddSubtask adds a checklist item to a task
func (h *TaskHandler) AddSubtask(c *gin.Context) {
	userID, taskID, ok := taskRequestIDs(c)
	if !ok {
		return
	}

	type SubtaskRequest struct {
		Title       string `json:"title" binding:"required"`
		Description string `json:"description"`
		IsCompleted bool   `json:"is_completed"`
	}

	var req SubtaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	subtask, err := h.taskService.AddSubtask(userID, taskID, services.SubtaskInput{
		Title:       &req.Title,
		Description: &req.Description,
		IsCompleted: &req.IsCompleted,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToSubtaskDTO(*subtask))
}

// UpdateSubtask updates a checklist item
func (h *TaskHandler) UpdateSubtask(c *gin.Context) {
	userID, taskID, ok := taskRequestIDs(c)
	if !ok {
		return
	}

	subtaskID, err := strconv.ParseUint(c.Param("subtask_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid subtask ID")
		return
	}

	type SubtaskUpdateRequest struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		IsCompleted *bool   `json:"is_completed"`
	}

	var req SubtaskUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	subtask, err := h.taskService.UpdateSubtask(userID, taskID, subtaskID, services.SubtaskInput{
		Title:       req.Title,
		Description: req.Description,
		IsCompleted: req.IsCompleted,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSubtaskDTO(*subtask))
}

// DeleteSubtask removes a checklist item from a task
func (h *TaskHandler) DeleteSubtask(c *gin.Context) {
	userID, taskID, ok := taskRequestIDs(c)
	if !ok {
		return
	}

	subtaskID, err := strconv.ParseUint(c.Param("subtask_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid subtask ID")
		return
	}

	if err := h.taskService.DeleteSubtask(userID, taskID, subtaskID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Subtask deleted successfully",
	})
}

// taskRequestIDs extracts the authenticated user ID and the task ID path
// parameter.
func taskRequestIDs(c *gin.Context) (userID, taskID uint64, ok bool) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return 0, 0, false
	}

	taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return 0, 0, false
	}

	return userID, taskID, true
}
