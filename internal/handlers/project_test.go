package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/workboard/workboard-api/internal/models"
	"github.com/workboard/workboard-api/internal/repository"
	"github.com/workboard/workboard-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// ProjectHandlerTestSuite defines the test suite for ProjectHandler
type ProjectHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	handler *ProjectHandler
}

// SetupTest runs before each test
func (suite *ProjectHandlerTestSuite) SetupTest() {
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

	projectRepo := repository.NewProjectRepository(suite.db)
	userRepo := repository.NewUserRepository(suite.db)
	departmentRepo := repository.NewDepartmentRepository(suite.db)

	suite.handler = NewProjectHandler(services.NewProjectService(projectRepo, userRepo, departmentRepo))

	gin.SetMode(gin.TestMode)
}

// TearDownTest runs after each test
func (suite *ProjectHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

// Helper functions to create test data

func (suite *ProjectHandlerTestSuite) createTestUser(email string, role models.UserRole, departmentIDs ...uint64) *models.User {
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

func (suite *ProjectHandlerTestSuite) createTestDepartment(name string) *models.Department {
	department := &models.Department{Name: name}
	suite.Require().NoError(suite.db.Create(department).Error)
	return department
}

func (suite *ProjectHandlerTestSuite) createTestProject(name string, ownerID uint64, departmentID *uint64, private bool) *models.Project {
	project := &models.Project{
		Name:         name,
		OwnerID:      ownerID,
		DepartmentID: departmentID,
		IsPrivate:    private,
	}
	suite.Require().NoError(suite.db.Create(project).Error)
	suite.Require().NoError(suite.db.Create(&models.ProjectMember{
		ProjectID: project.ID,
		UserID:    ownerID,
	}).Error)
	return project
}

// Helper function to create authenticated context
func (suite *ProjectHandlerTestSuite) createAuthContext(method, url string, body []byte, userID uint64) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set("user_id", userID)

	return c, w
}

func (suite *ProjectHandlerTestSuite) setProjectParam(c *gin.Context, projectID uint64) {
	c.Params = gin.Params{{Key: "id", Value: strconv.FormatUint(projectID, 10)}}
}

// TestListProjects_Visibility tests that the listing is scoped to what the
// caller may see.
func (suite *ProjectHandlerTestSuite) TestListProjects_Visibility() {
	sales := suite.createTestDepartment("Sales")
	owner := suite.createTestUser("owner@example.com", models.RoleMember, sales.ID)
	colleague := suite.createTestUser("colleague@example.com", models.RoleMember, sales.ID)

	suite.createTestProject("Public Sales", owner.ID, &sales.ID, false)
	suite.createTestProject("Private Sales", owner.ID, &sales.ID, true)

	c, w := suite.createAuthContext("GET", "/api/projects", nil, colleague.ID)

	suite.handler.ListProjects(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)

	projects := response["projects"].([]interface{})
	assert.Len(suite.T(), projects, 1)

	first := projects[0].(map[string]interface{})
	assert.Equal(suite.T(), "Public Sales", first["name"])
}

// TestListProjects_Unauthorized tests listing without authentication
func (suite *ProjectHandlerTestSuite) TestListProjects_Unauthorized() {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/projects", nil)
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	suite.handler.ListProjects(c)

	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

// TestGetProject_ForbiddenVersusNotFound tests that hidden and missing
// projects answer with different statuses.
func (suite *ProjectHandlerTestSuite) TestGetProject_ForbiddenVersusNotFound() {
	owner := suite.createTestUser("owner@example.com", models.RoleMember)
	outsider := suite.createTestUser("outsider@example.com", models.RoleMember)
	project := suite.createTestProject("Hidden", owner.ID, nil, true)

	c, w := suite.createAuthContext("GET", "/api/projects/1", nil, outsider.ID)
	suite.setProjectParam(c, project.ID)
	suite.handler.GetProject(c)
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)

	c, w = suite.createAuthContext("GET", "/api/projects/999", nil, outsider.ID)
	suite.setProjectParam(c, project.ID+999)
	suite.handler.GetProject(c)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

// TestGetProject_Member tests member access to a private project
func (suite *ProjectHandlerTestSuite) TestGetProject_Member() {
	owner := suite.createTestUser("owner@example.com", models.RoleMember)
	member := suite.createTestUser("member@example.com", models.RoleMember)
	project := suite.createTestProject("Hidden", owner.ID, nil, true)
	suite.Require().NoError(suite.db.Create(&models.ProjectMember{
		ProjectID: project.ID,
		UserID:    member.ID,
	}).Error)

	c, w := suite.createAuthContext("GET", "/api/projects/1", nil, member.ID)
	suite.setProjectParam(c, project.ID)

	suite.handler.GetProject(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Hidden", response["name"])
	assert.Equal(suite.T(), true, response["is_private"])
}

// TestCreateProject_Success tests successful creation with department
// auto-assignment.
func (suite *ProjectHandlerTestSuite) TestCreateProject_Success() {
	sales := suite.createTestDepartment("Sales")
	creator := suite.createTestUser("creator@example.com", models.RoleMember, sales.ID)

	body, _ := json.Marshal(map[string]interface{}{
		"name":        "New Project",
		"description": "Fresh start",
	})

	c, w := suite.createAuthContext("POST", "/api/projects", body, creator.ID)

	suite.handler.CreateProject(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "New Project", response["name"])
	assert.Equal(suite.T(), "Sales", response["department"])
	assert.Equal(suite.T(), float64(creator.ID), response["owner_id"])
}

// TestCreateProject_AmbiguousDepartment tests creation by a user in two
// departments without naming one.
func (suite *ProjectHandlerTestSuite) TestCreateProject_AmbiguousDepartment() {
	sales := suite.createTestDepartment("Sales")
	marketing := suite.createTestDepartment("Marketing")
	creator := suite.createTestUser("creator@example.com", models.RoleMember, sales.ID, marketing.ID)

	body, _ := json.Marshal(map[string]interface{}{
		"name": "New Project",
	})

	c, w := suite.createAuthContext("POST", "/api/projects", body, creator.ID)

	suite.handler.CreateProject(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestCreateProject_MissingName tests request validation
func (suite *ProjectHandlerTestSuite) TestCreateProject_MissingName() {
	creator := suite.createTestUser("creator@example.com", models.RoleMember)

	body, _ := json.Marshal(map[string]interface{}{
		"description": "No name",
	})

	c, w := suite.createAuthContext("POST", "/api/projects", body, creator.ID)

	suite.handler.CreateProject(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestUpdateProject_NotOwner tests update by a plain member
func (suite *ProjectHandlerTestSuite) TestUpdateProject_NotOwner() {
	owner := suite.createTestUser("owner@example.com", models.RoleMember)
	member := suite.createTestUser("member@example.com", models.RoleMember)
	project := suite.createTestProject("Rollout", owner.ID, nil, false)
	suite.Require().NoError(suite.db.Create(&models.ProjectMember{
		ProjectID: project.ID,
		UserID:    member.ID,
	}).Error)

	body, _ := json.Marshal(map[string]interface{}{
		"name": "Takeover",
	})

	c, w := suite.createAuthContext("PUT", "/api/projects/1", body, member.ID)
	suite.setProjectParam(c, project.ID)

	suite.handler.UpdateProject(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

// TestDeleteProject_Roles tests delete rights across roles
func (suite *ProjectHandlerTestSuite) TestDeleteProject_Roles() {
	owner := suite.createTestUser("owner@example.com", models.RoleMember)
	manager := suite.createTestUser("manager@example.com", models.RoleManager)
	member := suite.createTestUser("member@example.com", models.RoleMember)
	project := suite.createTestProject("Rollout", owner.ID, nil, false)

	c, w := suite.createAuthContext("DELETE", "/api/projects/1", nil, member.ID)
	suite.setProjectParam(c, project.ID)
	suite.handler.DeleteProject(c)
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)

	c, w = suite.createAuthContext("DELETE", "/api/projects/1", nil, manager.ID)
	suite.setProjectParam(c, project.ID)
	suite.handler.DeleteProject(c)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
}

// TestAddMember_Success tests adding a member as the owner
func (suite *ProjectHandlerTestSuite) TestAddMember_Success() {
	owner := suite.createTestUser("owner@example.com", models.RoleMember)
	invitee := suite.createTestUser("invitee@example.com", models.RoleMember)
	project := suite.createTestProject("Rollout", owner.ID, nil, true)

	body, _ := json.Marshal(map[string]interface{}{
		"user_id": invitee.ID,
	})

	c, w := suite.createAuthContext("POST", "/api/projects/1/members", body, owner.ID)
	suite.setProjectParam(c, project.ID)

	suite.handler.AddMember(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var member models.ProjectMember
	err := suite.db.Where("project_id = ? AND user_id = ?", project.ID, invitee.ID).First(&member).Error
	assert.NoError(suite.T(), err)
}

// TestRemoveMember_OwnerGuard tests that removing the owner is rejected
// even for admins.
func (suite *ProjectHandlerTestSuite) TestRemoveMember_OwnerGuard() {
	admin := suite.createTestUser("admin@example.com", models.RoleAdmin)
	owner := suite.createTestUser("owner@example.com", models.RoleMember)
	project := suite.createTestProject("Rollout", owner.ID, nil, false)

	c, w := suite.createAuthContext("DELETE", "/api/projects/1/members/2", nil, admin.ID)
	c.Params = gin.Params{
		{Key: "id", Value: strconv.FormatUint(project.ID, 10)},
		{Key: "user_id", Value: strconv.FormatUint(owner.ID, 10)},
	}

	suite.handler.RemoveMember(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	// The owner's membership row survives.
	var member models.ProjectMember
	err := suite.db.Where("project_id = ? AND user_id = ?", project.ID, owner.ID).First(&member).Error
	assert.NoError(suite.T(), err)
}

// TestToggleFavorite tests the favorite flag flip and its access bar
func (suite *ProjectHandlerTestSuite) TestToggleFavorite() {
	owner := suite.createTestUser("owner@example.com", models.RoleMember)
	admin := suite.createTestUser("admin@example.com", models.RoleAdmin)
	project := suite.createTestProject("Rollout", owner.ID, nil, false)

	c, w := suite.createAuthContext("POST", "/api/projects/1/favorite", nil, owner.ID)
	suite.setProjectParam(c, project.ID)
	suite.handler.ToggleFavorite(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), true, response["favorite"])

	// An uninvolved admin has no favorite to flip.
	c, w = suite.createAuthContext("POST", "/api/projects/1/favorite", nil, admin.ID)
	suite.setProjectParam(c, project.ID)
	suite.handler.ToggleFavorite(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

// TestSuite runs the test suite
func TestProjectHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(ProjectHandlerTestSuite))
}
