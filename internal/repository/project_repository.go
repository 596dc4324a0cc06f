package repository

import (
	"github.com/workboard/workboard-api/internal/database"
	"github.com/workboard/workboard-api/internal/models"
	"github.com/workboard/workboard-api/internal/policy"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// Create creates a project and its owner membership atomically
func (r *GormProjectRepository) Create(project *models.Project) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(project).Error; err != nil {
			return err
		}

		member := models.ProjectMember{
			ProjectID: project.ID,
			UserID:    project.OwnerID,
		}
		return tx.Create(&member).Error
	})
}

// FindByID finds a project by ID with optional preloading
func (r *GormProjectRepository) FindByID(id uint64, preload ...string) (*models.Project, error) {
	var project models.Project
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&project, id).Error; err != nil {
		return nil, err
	}

	return &project, nil
}

// visibilityCondition builds the SQL form of the project read predicate:
// owner, or member, or public with a department the principal belongs to.
// Admins bypass the filter entirely.
func (r *GormProjectRepository) visibilityCondition(query *gorm.DB, p policy.Principal) *gorm.DB {
	if p.IsAdmin() {
		return query
	}

	memberSubQuery := r.db.Model(&models.ProjectMember{}).
		Select("1").
		Where("project_members.project_id = projects.id").
		Where("project_members.user_id = ?", p.ID)

	departmentIDs := p.DepartmentIDs()
	if len(departmentIDs) > 0 {
		return query.Where(
			"projects.owner_id = ? OR EXISTS (?) OR (projects.is_private = ? AND projects.department_id IN ?)",
			p.ID, memberSubQuery, false, departmentIDs,
		)
	}

	return query.Where("projects.owner_id = ? OR EXISTS (?)", p.ID, memberSubQuery)
}

// ListVisible retrieves the projects visible to the principal
func (r *GormProjectRepository) ListVisible(p policy.Principal, filter ProjectFilter) ([]models.Project, int64, error) {
	var projects []models.Project

	query := r.visibilityCondition(r.db.Model(&models.Project{}), p)

	if filter.DepartmentID != nil {
		query = query.Where("projects.department_id = ?", *filter.DepartmentID)
	}
	if filter.Status != nil {
		query = query.Where("projects.status = ?", *filter.Status)
	}
	if filter.FavoriteOnly {
		query = query.Where("projects.favorite = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("projects.created_at DESC").
		Scopes(database.Paginate(filter.Page, filter.PageSize))

	if err := listQuery.Preload("Owner").Preload("Members").Preload("Department").
		Find(&projects).Error; err != nil {
		return nil, 0, err
	}

	return projects, total, nil
}

// Update updates a project
func (r *GormProjectRepository) Update(project *models.Project) error {
	// The project arrives with its associations preloaded. Saving them back
	// would re-fill a cleared department_id from the stale Department struct,
	// so only the project columns are written; membership changes go through
	// AddMember/RemoveMember.
	return r.db.Omit(clause.Associations).Save(project).Error
}

// Delete deletes a project, its tasks (with their assignments, labels and
// subtasks) and its memberships in a transaction
func (r *GormProjectRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		taskIDs := func() *gorm.DB {
			return tx.Model(&models.Task{}).Select("id").Where("project_id = ?", id)
		}

		if err := tx.Where("task_id IN (?)", taskIDs()).
			Delete(&models.TaskAssignment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id IN (?)", taskIDs()).
			Delete(&models.TaskLabel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id IN (?)", taskIDs()).
			Delete(&models.Subtask{}).Error; err != nil {
			return err
		}

		if err := tx.Where("project_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return err
		}

		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectMember{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Project{}, id).Error
	})
}

// AddMember adds a member to a project. The insert is a single row keyed by
// (project_id, user_id), so concurrent adds never overwrite the member set.
func (r *GormProjectRepository) AddMember(projectID, userID uint64) error {
	member := models.ProjectMember{
		ProjectID: projectID,
		UserID:    userID,
	}

	return r.db.
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&member).Error
}

// RemoveMember removes a member from a project
func (r *GormProjectRepository) RemoveMember(projectID, userID uint64) error {
	return r.db.Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&models.ProjectMember{}).Error
}

// FindMember finds a specific project member
func (r *GormProjectRepository) FindMember(projectID, userID uint64) (*models.ProjectMember, error) {
	var member models.ProjectMember
	if err := r.db.Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}
