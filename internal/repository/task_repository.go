package repository

import (
	"github.com/workboard/workboard-api/internal/database"
	"github.com/workboard/workboard-api/internal/models"
	"github.com/workboard/workboard-api/internal/policy"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// assignmentSubQuery matches live assignments of the principal on the
// current task row.
func (r *GormTaskRepository) assignmentSubQuery(userID uint64) *gorm.DB {
	return r.db.Model(&models.TaskAssignment{}).
		Select("1").
		Where("task_assignments.task_id = tasks.id").
		Where("task_assignments.user_id = ?", userID).
		Where("task_assignments.deleted_at IS NULL")
}

// visibleProjectSubQuery matches the task's parent project when the
// principal can read it, mirroring the project visibility predicate.
func (r *GormTaskRepository) visibleProjectSubQuery(p policy.Principal) *gorm.DB {
	memberSubQuery := r.db.Model(&models.ProjectMember{}).
		Select("1").
		Where("project_members.project_id = projects.id").
		Where("project_members.user_id = ?", p.ID)

	subQuery := r.db.Model(&models.Project{}).
		Select("1").
		Where("projects.id = tasks.project_id")

	departmentIDs := p.DepartmentIDs()
	if len(departmentIDs) > 0 {
		return subQuery.Where(
			"projects.owner_id = ? OR EXISTS (?) OR (projects.is_private = ? AND projects.department_id IN ?)",
			p.ID, memberSubQuery, false, departmentIDs,
		)
	}

	return subQuery.Where("projects.owner_id = ? OR EXISTS (?)", p.ID, memberSubQuery)
}

// ListVisible retrieves the tasks visible to the principal
func (r *GormTaskRepository) ListVisible(p policy.Principal, filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	query := r.db.Model(&models.Task{})

	if !p.IsAdmin() {
		// Standalone tasks require direct involvement; project tasks
		// require a visible project and, when private, involvement.
		query = query.Where(
			r.db.Where(
				"tasks.project_id IS NULL AND (tasks.creator_id = ? OR EXISTS (?))",
				p.ID, r.assignmentSubQuery(p.ID),
			).Or(
				"tasks.project_id IS NOT NULL AND EXISTS (?) AND (tasks.is_private = ? OR tasks.creator_id = ? OR EXISTS (?))",
				r.visibleProjectSubQuery(p), false, p.ID, r.assignmentSubQuery(p.ID),
			),
		)
	}

	if filter.ProjectID != nil {
		query = query.Where("tasks.project_id = ?", *filter.ProjectID)
	}
	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.CreatorID != nil {
		query = query.Where("tasks.creator_id = ?", *filter.CreatorID)
	}
	if filter.AssignedUserID != nil {
		query = query.Where("EXISTS (?)", r.assignmentSubQuery(*filter.AssignedUserID))
	}
	if filter.DueDateFrom != nil {
		query = query.Where("tasks.due_date >= ?", *filter.DueDateFrom)
	}
	if filter.DueDateTo != nil {
		query = query.Where("tasks.due_date < ?", *filter.DueDateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query
	if filter.SortByDueDate {
		listQuery = listQuery.Order("CASE WHEN tasks.due_date IS NULL THEN 1 ELSE 0 END, tasks.due_date ASC")
	} else {
		listQuery = listQuery.Order("tasks.created_at DESC")
	}

	listQuery = listQuery.Scopes(database.Paginate(filter.Page, filter.PageSize))

	if err := listQuery.Preload("Creator").Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Update updates a task
func (r *GormTaskRepository) Update(task *models.Task) error {
	// Associations are preloaded on the incoming task; writing them back
	// would resurrect cleared foreign keys. Assignment changes go through
	// AssignUsers/UnassignUsers.
	return r.db.Omit(clause.Associations).Save(task).Error
}

// Delete soft deletes a task along with its assignments, labels and subtasks
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&models.TaskAssignment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", id).Delete(&models.TaskLabel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", id).Delete(&models.Subtask{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Task{}, id).Error
	})
}

// SetLabels replaces the task's label set with the given labels.
func (r *GormTaskRepository) SetLabels(taskID uint64, labels []string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", taskID).Delete(&models.TaskLabel{}).Error; err != nil {
			return err
		}
		if len(labels) == 0 {
			return nil
		}

		rows := make([]models.TaskLabel, len(labels))
		for i, label := range labels {
			rows[i] = models.TaskLabel{TaskID: taskID, Label: label}
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
	})
}

// CreateSubtask creates a subtask under a task
func (r *GormTaskRepository) CreateSubtask(subtask *models.Subtask) error {
	return r.db.Create(subtask).Error
}

// FindSubtask finds a subtask scoped to its parent task
func (r *GormTaskRepository) FindSubtask(taskID, subtaskID uint64) (*models.Subtask, error) {
	var subtask models.Subtask
	if err := r.db.Where("task_id = ?", taskID).First(&subtask, subtaskID).Error; err != nil {
		return nil, err
	}
	return &subtask, nil
}

// UpdateSubtask updates a subtask
func (r *GormTaskRepository) UpdateSubtask(subtask *models.Subtask) error {
	return r.db.Save(subtask).Error
}

// DeleteSubtask soft deletes a subtask scoped to its parent task
func (r *GormTaskRepository) DeleteSubtask(taskID, subtaskID uint64) error {
	return r.db.Where("task_id = ?", taskID).Delete(&models.Subtask{}, subtaskID).Error
}

// AssignUsers assigns multiple users to a task. Each assignment is its own
// row, revived on conflict, so concurrent assigns cannot lose each other.
func (r *GormTaskRepository) AssignUsers(taskID uint64, userIDs []uint64) error {
	assignments := make([]models.TaskAssignment, len(userIDs))

	for i, userID := range userIDs {
		assignments[i] = models.TaskAssignment{
			TaskID: taskID,
			UserID: userID,
		}
	}

	return r.db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "task_id"}, {Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"deleted_at": gorm.Expr("NULL")}),
		}).
		Create(&assignments).Error
}

// UnassignUsers removes user assignments from a task
func (r *GormTaskRepository) UnassignUsers(taskID uint64, userIDs []uint64) error {
	return r.db.Where("task_id = ? AND user_id IN ?", taskID, userIDs).
		Delete(&models.TaskAssignment{}).Error
}

// CountProjectMembers counts how many of the given user IDs are members of the project
func (r *GormTaskRepository) CountProjectMembers(userIDs []uint64, projectID uint64) (int64, error) {
	var count int64

	err := r.db.Model(&models.ProjectMember{}).
		Where("project_id = ? AND user_id IN ?", projectID, userIDs).
		Count(&count).Error

	return count, err
}

// CountUsersByIDs counts how many of the given user IDs exist
func (r *GormTaskRepository) CountUsersByIDs(userIDs []uint64) (int64, error) {
	var count int64

	err := r.db.Model(&models.User{}).
		Where("id IN ?", userIDs).
		Count(&count).Error

	return count, err
}
