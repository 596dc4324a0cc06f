package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/workboard/workboard-api/internal/dto"
	apierrors "github.com/workboard/workboard-api/internal/errors"
	"github.com/workboard/workboard-api/internal/middleware"
	"github.com/workboard/workboard-api/internal/services"
)

// DepartmentHandler coordinates department HTTP handlers.
type DepartmentHandler struct {
	departmentService *services.DepartmentService
}

// NewDepartmentHandler creates a new DepartmentHandler
func NewDepartmentHandler(departmentService *services.DepartmentService) *DepartmentHandler {
	return &DepartmentHandler{
		departmentService: departmentService,
	}
}

// ListDepartments returns all departments
func (h *DepartmentHandler) ListDepartments(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	departments, err := h.departmentService.ListDepartments(userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToDepartmentDTOs(departments))
}

// CreateDepartment creates a department (admin only)
func (h *DepartmentHandler) CreateDepartment(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateDepartmentRequest struct {
		Name   string  `json:"name" binding:"required"`
		HeadID *uint64 `json:"head_id"`
	}

	var req CreateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	department, err := h.departmentService.CreateDepartment(userID, req.Name, req.HeadID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToDepartmentDTO(*department))
}

// UpdateDepartment updates a department (admin only)
func (h *DepartmentHandler) UpdateDepartment(c *gin.Context) {
	userID, departmentID, ok := departmentRequestIDs(c)
	if !ok {
		return
	}

	type UpdateDepartmentRequest struct {
		Name   *string `json:"name"`
		HeadID *uint64 `json:"head_id"`
	}

	var req UpdateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	department, err := h.departmentService.UpdateDepartment(userID, departmentID, services.UpdateDepartmentInput{
		Name:   req.Name,
		HeadID: req.HeadID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToDepartmentDTO(*department))
}

// DeleteDepartment deletes a department (admin only)
func (h *DepartmentHandler) DeleteDepartment(c *gin.Context) {
	userID, departmentID, ok := departmentRequestIDs(c)
	if !ok {
		return
	}

	if err := h.departmentService.DeleteDepartment(userID, departmentID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Department deleted successfully",
	})
}

func departmentRequestIDs(c *gin.Context) (userID, departmentID uint64, ok bool) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return 0, 0, false
	}

	departmentID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid department ID")
		return 0, 0, false
	}

	return userID, departmentID, true
}
