package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/workboard/workboard-api/internal/models"
	"github.com/workboard/workboard-api/internal/policy"
	"github.com/workboard/workboard-api/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// TaskServiceTestSuite defines the test suite for TaskService
type TaskServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *TaskService
}

// SetupTest runs before each test
func (suite *TaskServiceTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Department{},
		&models.UserDepartment{},
		&models.Project{},
		&models.ProjectMember{},
		&models.Task{},
		&models.TaskAssignment{},
		&models.TaskLabel{},
		&models.Subtask{},
	)
	suite.Require().NoError(err)

	taskRepo := repository.NewTaskRepository(suite.db)
	projectRepo := repository.NewProjectRepository(suite.db)
	userRepo := repository.NewUserRepository(suite.db)

	suite.service = NewTaskService(taskRepo, projectRepo, userRepo)
}

// TearDownTest runs after each test
func (suite *TaskServiceTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *TaskServiceTestSuite) createTestUser(email string, role models.UserRole, departmentIDs ...uint64) *models.User {
	user := &models.User{
		Email:        email,
		FullName:     email,
		PasswordHash: "hashedpassword",
		Role:         role,
		IsActive:     true,
	}
	suite.Require().NoError(suite.db.Create(user).Error)

	for _, departmentID := range departmentIDs {
		suite.Require().NoError(suite.db.Create(&models.UserDepartment{
			UserID:       user.ID,
			DepartmentID: departmentID,
		}).Error)
	}
	return user
}

func (suite *TaskServiceTestSuite) createTestDepartment(name string) *models.Department {
	department := &models.Department{Name: name}
	suite.Require().NoError(suite.db.Create(department).Error)
	return department
}

func (suite *TaskServiceTestSuite) createProjectFor(owner *models.User, name string, departmentID *uint64, private bool) *models.Project {
	project := &models.Project{
		Name:         name,
		OwnerID:      owner.ID,
		DepartmentID: departmentID,
		IsPrivate:    private,
	}
	suite.Require().NoError(suite.db.Create(project).Error)
	suite.Require().NoError(suite.db.Create(&models.ProjectMember{
		ProjectID: project.ID,
		UserID:    owner.ID,
	}).Error)
	return project
}

func (suite *TaskServiceTestSuite) addMember(project *models.Project, user *models.User) {
	suite.Require().NoError(suite.db.Create(&models.ProjectMember{
		ProjectID: project.ID,
		UserID:    user.ID,
	}).Error)
}

// TestCreateTask_RequiresProjectVisibility verifies creating inside a
// project demands read access to it, and answers with a denial rather
// than not-found.
func (suite *TaskServiceTestSuite) TestCreateTask_RequiresProjectVisibility() {
	owner := suite.createTestUser("owner@example.com", models.RoleMember)
	outsider := suite.createTestUser("outsider@example.com", models.RoleMember)
	project := suite.createProjectFor(owner, "Hidden", nil, true)

	_, err := suite.service.CreateTask(CreateTaskInput{
		ActorID:   outsider.ID,
		ProjectID: &project.ID,
		Title:     "Sneaky task",
	})
	assert.ErrorIs(suite.T(), err, policy.ErrForbidden)

	task, err := suite.service.CreateTask(CreateTaskInput{
		ActorID:   owner.ID,
		ProjectID: &project.ID,
		Title:     "Real task",
	})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), owner.ID, task.CreatorID)
	assert.Equal(suite.T(), models.TaskStatusTodo, task.Status)
}

// TestCreateTask_AssigneesMustBeProjectMembers verifies assignment
// validation for project tasks.
func (suite *TaskServiceTestSuite) TestCreateTask_AssigneesMustBeProjectMembers() {
	owner := suite.createTestUser("owner@example.com", models.RoleMember)
	helper := suite.createTestUser("helper@example.com", models.RoleMember)
	outsider := suite.createTestUser("outsider@example.com", models.RoleMember)
	project := suite.createProjectFor(owner, "Rollout", nil, false)
	suite.addMember(project, helper)

	_, err := suite.service.CreateTask(CreateTaskInput{
		ActorID:   owner.ID,
		ProjectID: &project.ID,
		Title:     "Shared task",
		Assignees: []uint64{helper.ID, outsider.ID},
	})
	assert.ErrorIs(suite.T(), err, ErrInvalidTaskAssignee)

	task, err := suite.service.CreateTask(CreateTaskInput{
		ActorID:   owner.ID,
		ProjectID: &project.ID,
		Title:     "Shared task",
		Assignees: []uint64{helper.ID},
	})
	suite.Require().NoError(err)
	assert.Contains(suite.T(), task.AssigneeIDs(), helper.ID)
}

// TestCreateTask_StandaloneAssignees verifies standalone tasks only need
// the assignees to exist.
func (suite *TaskServiceTestSuite) TestCreateTask_StandaloneAssignees() {
	creator := suite.createTestUser("creator@example.com", models.RoleMember)
	helper := suite.createTestUser("helper@example.com", models.RoleMember)

	task, err := suite.service.CreateTask(CreateTaskInput{
		ActorID:   creator.ID,
		Title:     "Personal errand",
		Assignees: []uint64{helper.ID},
	})
	suite.Require().NoError(err)
	assert.Nil(suite.T(), task.ProjectID)
	assert.Contains(suite.T(), task.AssigneeIDs(), helper.ID)

	_, err = suite.service.CreateTask(CreateTaskInput{
		ActorID:   creator.ID,
		Title:     "Personal errand",
		Assignees: []uint64{helper.ID + 1000},
	})
	assert.ErrorIs(suite.T(), err, ErrInvalidTaskAssignee)
}

// TestCreateTask_Validation verifies title and progress validation.
func (suite *TaskServiceTestSuite) TestCreateTask_Validation() {
	creator := suite.createTestUser("creator@example.com", models.RoleMember)

	_, err := suite.service.CreateTask(CreateTaskInput{
		ActorID: creator.ID,
		Title:   "   ",
	})
	assert.ErrorIs(suite.T(), err, ErrTitleRequired)

	_, err = suite.service.CreateTask(CreateTaskInput{
		ActorID:  creator.ID,
		Title:    "Overachiever",
		Progress: 120,
	})
	assert.ErrorIs(suite.T(), err, ErrInvalidProgress)
}

// TestGetTask_PrivateTask verifies private task visibility inside a
// readable project.
func (suite *TaskServiceTestSuite) TestGetTask_PrivateTask() {
	sales := suite.createTestDepartment("Sales")
	owner := suite.createTestUser("owner@example.com", models.RoleMember, sales.ID)
	colleague := suite.createTestUser("colleague@example.com", models.RoleMember, sales.ID)
	admin := suite.createTestUser("admin@example.com", models.RoleAdmin)
	project := suite.createProjectFor(owner, "Public Sales", &sales.ID, false)

	task, err := suite.service.CreateTask(CreateTaskInput{
		ActorID:   owner.ID,
		ProjectID: &project.ID,
		Title:     "Salary review",
		IsPrivate: true,
	})
	suite.Require().NoError(err)

	// The colleague sees the project but not the private task.
	_, err = suite.service.GetTask(colleague.ID, task.ID)
	assert.ErrorIs(suite.T(), err, policy.ErrForbidden)

	got, err := suite.service.GetTask(owner.ID, task.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), task.ID, got.ID)

	got, err = suite.service.GetTask(admin.ID, task.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), task.ID, got.ID)
}

// TestGetTask_MissingVersusHidden verifies not-found and denial stay apart.
func (suite *TaskServiceTestSuite) TestGetTask_MissingVersusHidden() {
	owner := suite.createTestUser("owner@example.com", models.RoleMember)
	outsider := suite.createTestUser("outsider@example.com", models.RoleMember)

	task, err := suite.service.CreateTask(CreateTaskInput{
		ActorID: owner.ID,
		Title:   "Standalone",
	})
	suite.Require().NoError(err)

	_, err = suite.service.GetTask(outsider.ID, task.ID)
	assert.ErrorIs(suite.T(), err, policy.ErrForbidden)

	_, err = suite.service.GetTask(outsider.ID, task.ID+1000)
	assert.ErrorIs(suite.T(), err, ErrTaskNotFound)
}

// TestUpdateTask_Rights verifies who may update: creator, assignee,
// project owner; uninvolved members may not.
func (suite *TaskServiceTestSuite) TestUpdateTask_Rights() {
	owner := suite.createTestUser("owner@example.com", models.RoleMember)
	creator := suite.createTestUser("creator@example.com", models.RoleMember)
	helper := suite.createTestUser("helper@example.com", models.RoleMember)
	bystander := suite.createTestUser("bystander@example.com", models.RoleMember)
	project := suite.createProjectFor(owner, "Rollout", nil, false)
	suite.addMember(project, creator)
	suite.addMember(project, helper)
	suite.addMember(project, bystander)

	task, err := suite.service.CreateTask(CreateTaskInput{
		ActorID:   creator.ID,
		ProjectID: &project.ID,
		Title:     "Spec the feature",
		Assignees: []uint64{helper.ID},
	})
	suite.Require().NoError(err)

	title := "Spec the feature properly"
	_, err = suite.service.UpdateTask(bystander.ID, task.ID, UpdateTaskInput{Title: &title})
	assert.ErrorIs(suite.T(), err, policy.ErrForbidden)

	for _, actor := range []*models.User{creator, helper, owner} {
		updated, err := suite.service.UpdateTask(actor.ID, task.ID, UpdateTaskInput{Title: &title})
		suite.Require().NoError(err)
		assert.Equal(suite.T(), title, updated.Title)
	}
}

// TestUpdateStatusAndProgress verifies the focused setters and their
// validation.
func (suite *TaskServiceTestSuite) TestUpdateStatusAndProgress() {
	creator := suite.createTestUser("creator@example.com", models.RoleMember)

	task, err := suite.service.CreateTask(CreateTaskInput{
		ActorID: creator.ID,
		Title:   "Grind",
	})
	suite.Require().NoError(err)

	updated, err := suite.service.UpdateStatus(creator.ID, task.ID, models.TaskStatusWorking)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.TaskStatusWorking, updated.Status)

	updated, err = suite.service.UpdateProgress(creator.ID, task.ID, 60)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), 60, updated.Progress)

	_, err = suite.service.UpdateProgress(creator.ID, task.ID, -10)
	assert.ErrorIs(suite.T(), err, ErrInvalidProgress)
}

// TestDeleteTask_Rights verifies delete rights: creator and project owner
// yes, assignee no.
func (suite *TaskServiceTestSuite) TestDeleteTask_Rights() {
	owner := suite.createTestUser("owner@example.com", models.RoleMember)
	creator := suite.createTestUser("creator@example.com", models.RoleMember)
	helper := suite.createTestUser("helper@example.com", models.RoleMember)
	project := suite.createProjectFor(owner, "Rollout", nil, false)
	suite.addMember(project, creator)
	suite.addMember(project, helper)

	task, err := suite.service.CreateTask(CreateTaskInput{
		ActorID:   creator.ID,
		ProjectID: &project.ID,
		Title:     "Disposable",
		Assignees: []uint64{helper.ID},
	})
	suite.Require().NoError(err)

	err = suite.service.DeleteTask(helper.ID, task.ID)
	assert.ErrorIs(suite.T(), err, policy.ErrForbidden)

	suite.Require().NoError(suite.service.DeleteTask(creator.ID, task.ID))
}

// TestAssignUsers verifies assignment mutation rights and validation.
func (suite *TaskServiceTestSuite) TestAssignUsers() {
	owner := suite.createTestUser("owner@example.com", models.RoleMember)
	helper := suite.createTestUser("helper@example.com", models.RoleMember)
	outsider := suite.createTestUser("outsider@example.com", models.RoleMember)
	project := suite.createProjectFor(owner, "Rollout", nil, false)
	suite.addMember(project, helper)

	task, err := suite.service.CreateTask(CreateTaskInput{
		ActorID:   owner.ID,
		ProjectID: &project.ID,
		Title:     "Team task",
	})
	suite.Require().NoError(err)

	_, err = suite.service.AssignUsers(owner.ID, task.ID, nil)
	assert.ErrorIs(suite.T(), err, ErrNoUserIDsProvided)

	_, err = suite.service.AssignUsers(owner.ID, task.ID, []uint64{outsider.ID})
	assert.ErrorIs(suite.T(), err, ErrInvalidTaskAssignee)

	updated, err := suite.service.AssignUsers(owner.ID, task.ID, []uint64{helper.ID, helper.ID})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), []uint64{helper.ID}, updated.AssigneeIDs())

	// Unassigning works even for users no longer in the project.
	suite.Require().NoError(suite.db.Where("project_id = ? AND user_id = ?", project.ID, helper.ID).
		Delete(&models.ProjectMember{}).Error)

	updated, err = suite.service.UnassignUsers(owner.ID, task.ID, []uint64{helper.ID})
	suite.Require().NoError(err)
	assert.Empty(suite.T(), updated.AssigneeIDs())
}

// TestListTasks_HiddenProjectScope verifies scoping the listing to a
// project the actor cannot see is a denial, not an empty list.
func (suite *TaskServiceTestSuite) TestListTasks_HiddenProjectScope() {
	owner := suite.createTestUser("owner@example.com", models.RoleMember)
	outsider := suite.createTestUser("outsider@example.com", models.RoleMember)
	project := suite.createProjectFor(owner, "Hidden", nil, true)

	_, _, err := suite.service.ListTasks(ListTasksInput{
		ActorID:   outsider.ID,
		ProjectID: &project.ID,
	})
	assert.ErrorIs(suite.T(), err, policy.ErrForbidden)
}

// TestCreateTask_Labels verifies labels are normalized on ingestion:
// trimmed, empties dropped, duplicates collapsed.
func (suite *TaskServiceTestSuite) TestCreateTask_Labels() {
	creator := suite.createTestUser("creator@example.com", models.RoleMember)

	task, err := suite.service.CreateTask(CreateTaskInput{
		ActorID: creator.ID,
		Title:   "Tagged",
		Labels:  []string{" backend ", "backend", "", "urgent"},
	})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), []string{"backend", "urgent"}, task.LabelNames())
}

// TestUpdateTask_ReplacesLabels verifies the label set is replaced as a
// whole, and that omitting the field leaves labels untouched.
func (suite *TaskServiceTestSuite) TestUpdateTask_ReplacesLabels() {
	creator := suite.createTestUser("creator@example.com", models.RoleMember)

	task, err := suite.service.CreateTask(CreateTaskInput{
		ActorID: creator.ID,
		Title:   "Tagged",
		Labels:  []string{"backend", "urgent"},
	})
	suite.Require().NoError(err)

	newTitle := "Tagged v2"
	updated, err := suite.service.UpdateTask(creator.ID, task.ID, UpdateTaskInput{Title: &newTitle})
	suite.Require().NoError(err)
	assert.ElementsMatch(suite.T(), []string{"backend", "urgent"}, updated.LabelNames())

	labels := []string{"frontend"}
	updated, err = suite.service.UpdateTask(creator.ID, task.ID, UpdateTaskInput{Labels: &labels})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), []string{"frontend"}, updated.LabelNames())

	empty := []string{}
	updated, err = suite.service.UpdateTask(creator.ID, task.ID, UpdateTaskInput{Labels: &empty})
	suite.Require().NoError(err)
	assert.Empty(suite.T(), updated.LabelNames())
}

// TestSubtasks_Rights verifies subtasks follow the parent task's write
// rules: assignees and creators manage them, bystanders do not.
func (suite *TaskServiceTestSuite) TestSubtasks_Rights() {
	owner := suite.createTestUser("owner@example.com", models.RoleMember)
	helper := suite.createTestUser("helper@example.com", models.RoleMember)
	bystander := suite.createTestUser("bystander@example.com", models.RoleMember)
	project := suite.createProjectFor(owner, "Rollout", nil, false)
	suite.addMember(project, helper)
	suite.addMember(project, bystander)

	task, err := suite.service.CreateTask(CreateTaskInput{
		ActorID:   owner.ID,
		ProjectID: &project.ID,
		Title:     "Parent",
		Assignees: []uint64{helper.ID},
	})
	suite.Require().NoError(err)

	title := "Draft outline"
	_, err = suite.service.AddSubtask(bystander.ID, task.ID, SubtaskInput{Title: &title})
	assert.ErrorIs(suite.T(), err, policy.ErrForbidden)

	subtask, err := suite.service.AddSubtask(helper.ID, task.ID, SubtaskInput{Title: &title})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), "Draft outline", subtask.Title)
	assert.False(suite.T(), subtask.IsCompleted)

	done := true
	updated, err := suite.service.UpdateSubtask(helper.ID, task.ID, subtask.ID, SubtaskInput{IsCompleted: &done})
	suite.Require().NoError(err)
	assert.True(suite.T(), updated.IsCompleted)

	// Subtasks surface on the parent task.
	loaded, err := suite.service.GetTask(owner.ID, task.ID)
	suite.Require().NoError(err)
	suite.Require().Len(loaded.Subtasks, 1)
	assert.True(suite.T(), loaded.Subtasks[0].IsCompleted)

	err = suite.service.DeleteSubtask(bystander.ID, task.ID, subtask.ID)
	assert.ErrorIs(suite.T(), err, policy.ErrForbidden)

	suite.Require().NoError(suite.service.DeleteSubtask(owner.ID, task.ID, subtask.ID))

	_, err = suite.service.UpdateSubtask(owner.ID, task.ID, subtask.ID, SubtaskInput{IsCompleted: &done})
	assert.ErrorIs(suite.T(), err, ErrSubtaskNotFound)
}

// TestSubtasks_ScopedToTask verifies a subtask cannot be reached through a
// different parent task's route.
func (suite *TaskServiceTestSuite) TestSubtasks_ScopedToTask() {
	creator := suite.createTestUser("creator@example.com", models.RoleMember)

	first, err := suite.service.CreateTask(CreateTaskInput{ActorID: creator.ID, Title: "First"})
	suite.Require().NoError(err)
	second, err := suite.service.CreateTask(CreateTaskInput{ActorID: creator.ID, Title: "Second"})
	suite.Require().NoError(err)

	title := "Step one"
	subtask, err := suite.service.AddSubtask(creator.ID, first.ID, SubtaskInput{Title: &title})
	suite.Require().NoError(err)

	_, err = suite.service.UpdateSubtask(creator.ID, second.ID, subtask.ID, SubtaskInput{Title: &title})
	assert.ErrorIs(suite.T(), err, ErrSubtaskNotFound)
}

// TestDeleteTask_RemovesSubtasksAndLabels verifies the task delete cascade
// covers the checklist and label rows.
func (suite *TaskServiceTestSuite) TestDeleteTask_RemovesSubtasksAndLabels() {
	creator := suite.createTestUser("creator@example.com", models.RoleMember)

	task, err := suite.service.CreateTask(CreateTaskInput{
		ActorID: creator.ID,
		Title:   "Doomed",
		Labels:  []string{"backend"},
	})
	suite.Require().NoError(err)

	title := "Step one"
	_, err = suite.service.AddSubtask(creator.ID, task.ID, SubtaskInput{Title: &title})
	suite.Require().NoError(err)

	suite.Require().NoError(suite.service.DeleteTask(creator.ID, task.ID))

	var labels int64
	suite.db.Model(&models.TaskLabel{}).Where("task_id = ?", task.ID).Count(&labels)
	assert.Equal(suite.T(), int64(0), labels)

	var subtasks int64
	suite.db.Model(&models.Subtask{}).Where("task_id = ?", task.ID).Count(&subtasks)
	assert.Equal(suite.T(), int64(0), subtasks)
}

// TestSuite runs the test suite
func TestTaskServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TaskServiceTestSuite))
}
