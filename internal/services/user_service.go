package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/workboard/workboard-api/internal/constants"
	"github.com/workboard/workboard-api/internal/models"
	"github.com/workboard/workboard-api/internal/policy"
	"github.com/workboard/workboard-api/internal/repository"
	"github.com/workboard/workboard-api/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidRole = errors.New("invalid role")
)

// UserService handles user management. Listing and reading are open to any
// active user; create, update and delete are admin-only, matching the
// admin-managed directory the system exposes.
type UserService struct {
	userRepo       repository.UserRepository
	departmentRepo repository.DepartmentRepository
}

// NewUserService creates a new UserService
func NewUserService(userRepo repository.UserRepository, departmentRepo repository.DepartmentRepository) *UserService {
	return &UserService{
		userRepo:       userRepo,
		departmentRepo: departmentRepo,
	}
}

// ListUsers returns all users
func (s *UserService) ListUsers(actorID uint64, page, pageSize int) ([]models.User, int64, error) {
	p, err := loadPrincipal(s.userRepo, actorID)
	if err != nil {
		return nil, 0, err
	}
	if !p.Active {
		return nil, 0, policy.ErrInactiveAccount
	}

	users, total, err := s.userRepo.List(page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	return users, total, nil
}

// GetUser returns a user by ID
func (s *UserService) GetUser(actorID, userID uint64) (*models.User, error) {
	p, err := loadPrincipal(s.userRepo, actorID)
	if err != nil {
		return nil, err
	}
	if !p.Active {
		return nil, policy.ErrInactiveAccount
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// CreateUserInput represents input for creating a user. Department and
// Departments are both accepted; the union of the two is the user's
// department set.
type CreateUserInput struct {
	ActorID     uint64
	Email       string
	FullName    string
	Password    string
	Role        models.UserRole
	Department  string
	Departments []string
	ManagerID   *uint64
}

// CreateUser creates a user (admin only)
func (s *UserService) CreateUser(input CreateUserInput) (*models.User, error) {
	if err := s.requireAdmin(input.ActorID); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if strings.TrimSpace(input.FullName) == "" {
		return nil, ErrFullNameRequired
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	role := input.Role
	if role == "" {
		role = models.RoleMember
	}
	if !validRole(role) {
		return nil, ErrInvalidRole
	}

	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	departmentIDs, err := s.resolveDepartmentNames(input.Department, input.Departments)
	if err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	color, err := utils.RandomColor()
	if err != nil {
		return nil, fmt.Errorf("failed to pick color: %w", err)
	}

	user := &models.User{
		Email:        email,
		FullName:     strings.TrimSpace(input.FullName),
		PasswordHash: string(hashedPassword),
		Role:         role,
		Color:        color,
		ManagerID:    input.ManagerID,
		IsActive:     true,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if len(departmentIDs) > 0 {
		if err := s.userRepo.SetDepartments(user.ID, departmentIDs); err != nil {
			return nil, fmt.Errorf("failed to set departments: %w", err)
		}
	}

	return s.userRepo.FindByID(user.ID)
}

// UpdateUserInput represents input for updating a user
type UpdateUserInput struct {
	FullName    *string
	Role        *models.UserRole
	IsActive    *bool
	ManagerID   *uint64
	Department  *string
	Departments *[]string
}

// UpdateUser updates a user (admin only)
func (s *UserService) UpdateUser(actorID, userID uint64, input UpdateUserInput) (*models.User, error) {
	if err := s.requireAdmin(actorID); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if input.FullName != nil {
		if strings.TrimSpace(*input.FullName) == "" {
			return nil, ErrFullNameRequired
		}
		user.FullName = strings.TrimSpace(*input.FullName)
	}
	if input.Role != nil {
		if !validRole(*input.Role) {
			return nil, ErrInvalidRole
		}
		user.Role = *input.Role
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}
	if input.ManagerID != nil {
		user.ManagerID = input.ManagerID
	}

	// Clear preloaded memberships so Save does not write join rows; the
	// membership table is only touched through SetDepartments.
	user.Departments = nil

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	if input.Department != nil || input.Departments != nil {
		var single string
		if input.Department != nil {
			single = *input.Department
		}
		var plural []string
		if input.Departments != nil {
			plural = *input.Departments
		}

		departmentIDs, err := s.resolveDepartmentNames(single, plural)
		if err != nil {
			return nil, err
		}
		if err := s.userRepo.SetDepartments(userID, departmentIDs); err != nil {
			return nil, fmt.Errorf("failed to set departments: %w", err)
		}
	}

	return s.userRepo.FindByID(userID)
}

// DeleteUser soft deletes a user (admin only)
func (s *UserService) DeleteUser(actorID, userID uint64) error {
	if err := s.requireAdmin(actorID); err != nil {
		return err
	}

	if _, err := s.userRepo.FindByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	if err := s.userRepo.Delete(userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	return nil
}

// resolveDepartmentNames normalizes the legacy single department field and
// the departments list into one set of department IDs. Policy logic never
// learns which form arrived.
func (s *UserService) resolveDepartmentNames(single string, plural []string) ([]uint64, error) {
	names := make([]string, 0, len(plural)+1)
	if strings.TrimSpace(single) != "" {
		names = append(names, strings.TrimSpace(single))
	}
	for _, name := range plural {
		if strings.TrimSpace(name) != "" {
			names = append(names, strings.TrimSpace(name))
		}
	}

	seen := make(map[uint64]struct{}, len(names))
	ids := make([]uint64, 0, len(names))
	for _, name := range names {
		department, err := s.departmentRepo.FindByName(name)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrDepartmentNotFound
			}
			return nil, fmt.Errorf("failed to find department: %w", err)
		}
		if _, exists := seen[department.ID]; exists {
			continue
		}
		seen[department.ID] = struct{}{}
		ids = append(ids, department.ID)
	}

	return ids, nil
}

func (s *UserService) requireAdmin(actorID uint64) error {
	p, err := loadPrincipal(s.userRepo, actorID)
	if err != nil {
		return err
	}
	if !p.Active {
		return policy.ErrInactiveAccount
	}
	if !p.IsAdmin() {
		return policy.ErrForbidden
	}
	return nil
}

func validRole(role models.UserRole) bool {
	switch role {
	case models.RoleAdmin, models.RoleManager, models.RoleMember, models.RoleGuest:
		return true
	}
	return false
}
