package repository

import (
	"github.com/workboard/workboard-api/internal/database"
	"github.com/workboard/workboard-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// FindByID finds a user by ID with department memberships preloaded
func (r *GormUserRepository) FindByID(id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.Preload("Departments.Department").First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email with department memberships preloaded
func (r *GormUserRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Preload("Departments.Department").
		Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// List retrieves users with pagination
func (r *GormUserRepository) List(page, pageSize int) ([]models.User, int64, error) {
	var users []models.User

	query := r.db.Model(&models.User{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Scopes(database.Paginate(page, pageSize))

	if err := query.Preload("Departments.Department").Order("users.created_at ASC").Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// Update updates a user
func (r *GormUserRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// Delete soft deletes a user
func (r *GormUserRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.UserDepartment{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.User{}, id).Error
	})
}

// SetDepartments replaces the user's department memberships. Rows are
// inserted and deleted individually so concurrent updates cannot clobber
// each other's memberships.
func (r *GormUserRepository) SetDepartments(userID uint64, departmentIDs []uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if len(departmentIDs) == 0 {
			return tx.Where("user_id = ?", userID).Delete(&models.UserDepartment{}).Error
		}

		if err := tx.Where("user_id = ? AND department_id NOT IN ?", userID, departmentIDs).
			Delete(&models.UserDepartment{}).Error; err != nil {
			return err
		}

		memberships := make([]models.UserDepartment, len(departmentIDs))
		for i, departmentID := range departmentIDs {
			memberships[i] = models.UserDepartment{
				UserID:       userID,
				DepartmentID: departmentID,
			}
		}

		return tx.
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&memberships).Error
	})
}
