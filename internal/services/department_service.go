package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/workboard/workboard-api/internal/models"
	"github.com/workboard/workboard-api/internal/policy"
	"github.com/workboard/workboard-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrDepartmentNameRequired = errors.New("department name is required")
	ErrDepartmentNameTaken    = errors.New("department name already exists")
)

// DepartmentService handles department management. Departments are a
// grouping key for users and projects; creating, renaming and deleting
// them is admin-only.
type DepartmentService struct {
	departmentRepo repository.DepartmentRepository
	userRepo       repository.UserRepository
}

// NewDepartmentService creates a new DepartmentService
func NewDepartmentService(departmentRepo repository.DepartmentRepository, userRepo repository.UserRepository) *DepartmentService {
	return &DepartmentService{
		departmentRepo: departmentRepo,
		userRepo:       userRepo,
	}
}

// ListDepartments returns all departments
func (s *DepartmentService) ListDepartments(actorID uint64) ([]models.Department, error) {
	p, err := loadPrincipal(s.userRepo, actorID)
	if err != nil {
		return nil, err
	}
	if !p.Active {
		return nil, policy.ErrInactiveAccount
	}

	departments, err := s.departmentRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}

	return departments, nil
}

// CreateDepartment creates a department (admin only)
func (s *DepartmentService) CreateDepartment(actorID uint64, name string, headID *uint64) (*models.Department, error) {
	if err := s.requireAdmin(actorID); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrDepartmentNameRequired
	}

	if _, err := s.departmentRepo.FindByName(name); err == nil {
		return nil, ErrDepartmentNameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check department name: %w", err)
	}

	department := &models.Department{
		Name:   name,
		HeadID: headID,
	}

	if err := s.departmentRepo.Create(department); err != nil {
		return nil, fmt.Errorf("failed to create department: %w", err)
	}

	return department, nil
}

// UpdateDepartmentInput represents input for updating a department
type UpdateDepartmentInput struct {
	Name   *string
	HeadID *uint64
}

// UpdateDepartment updates a department (admin only)
func (s *DepartmentService) UpdateDepartment(actorID, departmentID uint64, input UpdateDepartmentInput) (*models.Department, error) {
	if err := s.requireAdmin(actorID); err != nil {
		return nil, err
	}

	department, err := s.findDepartment(departmentID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrDepartmentNameRequired
		}
		department.Name = name
	}
	if input.HeadID != nil {
		department.HeadID = input.HeadID
	}

	if err := s.departmentRepo.Update(department); err != nil {
		return nil, fmt.Errorf("failed to update department: %w", err)
	}

	return department, nil
}

// DeleteDepartment deletes a department (admin only)
func (s *DepartmentService) DeleteDepartment(actorID, departmentID uint64) error {
	if err := s.requireAdmin(actorID); err != nil {
		return err
	}

	if _, err := s.findDepartment(departmentID); err != nil {
		return err
	}

	if err := s.departmentRepo.Delete(departmentID); err != nil {
		return fmt.Errorf("failed to delete department: %w", err)
	}

	return nil
}

func (s *DepartmentService) requireAdmin(actorID uint64) error {
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

func (s *DepartmentService) findDepartment(departmentID uint64) (*models.Department, error) {
	department, err := s.departmentRepo.FindByID(departmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDepartmentNotFound
		}
		return nil, fmt.Errorf("failed to find department: %w", err)
	}
	return department, nil
}
