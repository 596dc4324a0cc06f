package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/workboard/workboard-api/internal/dto"
	apierrors "github.com/workboard/workboard-api/internal/errors"
	"github.com/workboard/workboard-api/internal/middleware"
	"github.com/workboard/workboard-api/internal/models"
	"github.com/workboard/workboard-api/internal/services"
	"github.com/workboard/workboard-api/internal/utils"
)

// UserHandler coordinates user-directory HTTP handlers.
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// ListUsers returns all users
func (h *UserHandler) ListUsers(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	params := utils.GetPaginationParams(c)

	users, total, err := h.userService.ListUsers(userID, params.Page, params.Limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserListResponse(users, params.Page, params.Limit, total))
}

// GetUser returns a single user
func (h *UserHandler) GetUser(c *gin.Context) {
	userID, targetID, ok := userRequestIDs(c)
	if !ok {
		return
	}

	user, err := h.userService.GetUser(userID, targetID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// CreateUser creates a user (admin only). The request accepts both the
// legacy single department field and the departments list.
func (h *UserHandler) CreateUser(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateUserRequest struct {
		Email       string   `json:"email" binding:"required,email"`
		FullName    string   `json:"full_name" binding:"required"`
		Password    string   `json:"password" binding:"required"`
		Role        string   `json:"role"`
		Department  string   `json:"department"`
		Departments []string `json:"departments"`
		ManagerID   *uint64  `json:"manager_id"`
	}

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.userService.CreateUser(services.CreateUserInput{
		ActorID:     userID,
		Email:       req.Email,
		FullName:    req.FullName,
		Password:    req.Password,
		Role:        models.UserRole(req.Role),
		Department:  req.Department,
		Departments: req.Departments,
		ManagerID:   req.ManagerID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToUserDTO(*user))
}

// UpdateUser updates a user (admin only)
func (h *UserHandler) UpdateUser(c *gin.Context) {
	userID, targetID, ok := userRequestIDs(c)
	if !ok {
		return
	}

	type UpdateUserRequest struct {
		FullName    *string          `json:"full_name"`
		Role        *models.UserRole `json:"role"`
		IsActive    *bool            `json:"is_active"`
		ManagerID   *uint64          `json:"manager_id"`
		Department  *string          `json:"department"`
		Departments *[]string        `json:"departments"`
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.userService.UpdateUser(userID, targetID, services.UpdateUserInput{
		FullName:    req.FullName,
		Role:        req.Role,
		IsActive:    req.IsActive,
		ManagerID:   req.ManagerID,
		Department:  req.Department,
		Departments: req.Departments,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// DeleteUser soft deletes a user (admin only)
func (h *UserHandler) DeleteUser(c *gin.Context) {
	userID, targetID, ok := userRequestIDs(c)
	if !ok {
		return
	}

	if err := h.userService.DeleteUser(userID, targetID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User deleted successfully",
	})
}

func userRequestIDs(c *gin.Context) (userID, targetID uint64, ok bool) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return 0, 0, false
	}

	targetID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid user ID")
		return 0, 0, false
	}

	return userID, targetID, true
}
