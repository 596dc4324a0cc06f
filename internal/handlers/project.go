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

// ProjectHandler coordinates project HTTP handlers.
type ProjectHandler struct {
	projectService *services.ProjectService
}

// NewProjectHandler creates a new ProjectHandler
func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
	}
}

// ListProjects returns the projects visible to the current user
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	params := utils.GetPaginationParams(c)

	input := services.ListProjectsInput{
		ActorID:      userID,
		FavoriteOnly: c.Query("favorite") == "true",
		Page:         params.Page,
		PageSize:     params.Limit,
	}

	if department := c.Query("department"); department != "" {
		input.Department = &department
	}
	if status := c.Query("status"); status != "" {
		projectStatus := models.ProjectStatus(status)
		input.Status = &projectStatus
	}

	projects, total, err := h.projectService.ListProjects(input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectListResponse(projects, params.Page, params.Limit, total))
}

// GetProject returns a single project
func (h *ProjectHandler) GetProject(c *gin.Context) {
	userID, projectID, ok := projectRequestIDs(c)
	if !ok {
		return
	}

	project, err := h.projectService.GetProject(userID, projectID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// CreateProject creates a new project owned by the current user
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateProjectRequest struct {
		Name        string     `json:"name" binding:"required"`
		Description string     `json:"description"`
		Icon        string     `json:"icon"`
		Color       string     `json:"color"`
		Department  *string    `json:"department"`
		IsPrivate   bool       `json:"is_private"`
		Status      string     `json:"status"`
		Priority    string     `json:"priority"`
		StartDate   *time.Time `json:"start_date"`
		EndDate     *time.Time `json:"end_date"`
		Budget      *float64   `json:"budget"`
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.CreateProject(services.CreateProjectInput{
		ActorID:     userID,
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
		Color:       req.Color,
		Department:  req.Department,
		IsPrivate:   req.IsPrivate,
		Status:      models.ProjectStatus(req.Status),
		Priority:    models.Priority(req.Priority),
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Budget:      req.Budget,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProjectDTO(*project))
}

// UpdateProject updates an existing project
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	userID, projectID, ok := projectRequestIDs(c)
	if !ok {
		return
	}

	type UpdateProjectRequest struct {
		Name        *string               `json:"name"`
		Description *string               `json:"description"`
		Icon        *string               `json:"icon"`
		Color       *string               `json:"color"`
		Department  *string               `json:"department"`
		IsPrivate   *bool                 `json:"is_private"`
		Status      *models.ProjectStatus `json:"status"`
		Priority    *models.Priority      `json:"priority"`
		StartDate   *time.Time            `json:"start_date"`
		EndDate     *time.Time            `json:"end_date"`
		Budget      *float64              `json:"budget"`
	}

	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.UpdateProject(userID, projectID, services.UpdateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
		Color:       req.Color,
		Department:  req.Department,
		IsPrivate:   req.IsPrivate,
		Status:      req.Status,
		Priority:    req.Priority,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Budget:      req.Budget,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// DeleteProject deletes a project and its tasks
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	userID, projectID, ok := projectRequestIDs(c)
	if !ok {
		return
	}

	if err := h.projectService.DeleteProject(userID, projectID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Project deleted successfully",
	})
}

// AddMember adds a user to the project
func (h *ProjectHandler) AddMember(c *gin.Context) {
	userID, projectID, ok := projectRequestIDs(c)
	if !ok {
		return
	}

	type AddMemberRequest struct {
		UserID uint64 `json:"user_id" binding:"required"`
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.AddMember(userID, projectID, req.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// RemoveMember removes a user from the project
func (h *ProjectHandler) RemoveMember(c *gin.Context) {
	userID, projectID, ok := projectRequestIDs(c)
	if !ok {
		return
	}

	memberID, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	project, err := h.projectService.RemoveMember(userID, projectID, memberID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// ToggleFavorite flips the project's favorite flag
func (h *ProjectHandler) ToggleFavorite(c *gin.Context) {
	userID, projectID, ok := projectRequestIDs(c)
	if !ok {
		return
	}

	project, err := h.projectService.ToggleFavorite(userID, projectID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// projectRequestIDs extracts the authenticated user ID and the project ID
// path parameter, responding with the appropriate error when either is
// missing.
func projectRequestIDs(c *gin.Context) (userID, projectID uint64, ok bool) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return 0, 0, false
	}

	projectID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid project ID")
		return 0, 0, false
	}

	return userID, projectID, true
}
