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

// DepartmentHandlerTestSuite defines the test suite for DepartmentHandler
type DepartmentHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	handler *DepartmentHandler
}

// SetupTest runs before each test
func (suite *DepartmentHandlerTestSuite) SetupTest() {
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

	departmentRepo := repository.NewDepartmentRepository(suite.db)
	userRepo := repository.NewUserRepository(suite.db)

	suite.handler = NewDepartmentHandler(services.NewDepartmentService(departmentRepo, userRepo))

	gin.SetMode(gin.TestMode)
}

// TearDownTest runs after each test
func (suite *DepartmentHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *DepartmentHandlerTestSuite) createTestUser(email string, role models.UserRole) *models.User {
	user := &models.User{
		Email:        email,
		FullName:     email,
		PasswordHash: "hashedpassword",
		Role:         role,
		IsActive:     true,
	}
	suite.Require().NoError(suite.db.Create(user).Error)
	return user
}

func (suite *DepartmentHandlerTestSuite) createTestDepartment(name string) *models.Department {
	department := &models.Department{Name: name}
	suite.Require().NoError(suite.db.Create(department).Error)
	return department
}

func (suite *DepartmentHandlerTestSuite) createAuthContext(method, url string, body []byte, userID uint64) (*gin.Context, *httptest.ResponseRecorder) {
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

// TestListDepartments_Success tests listing departments as any signed-in user
func (suite *DepartmentHandlerTestSuite) TestListDepartments_Success() {
	member := suite.createTestUser("member@example.com", models.RoleMember)
	suite.createTestDepartment("Sales")
	suite.createTestDepartment("Marketing")

	c, w := suite.createAuthContext("GET", "/api/departments", nil, member.ID)

	suite.handler.ListDepartments(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response []map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), response, 2)
}

// TestCreateDepartment_AdminOnly tests the admin gate on creation
func (suite *DepartmentHandlerTestSuite) TestCreateDepartment_AdminOnly() {
	manager := suite.createTestUser("manager@example.com", models.RoleManager)
	admin := suite.createTestUser("admin@example.com", models.RoleAdmin)

	body, _ := json.Marshal(map[string]interface{}{
		"name": "Engineering",
	})

	c, w := suite.createAuthContext("POST", "/api/departments", body, manager.ID)
	suite.handler.CreateDepartment(c)
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)

	c, w = suite.createAuthContext("POST", "/api/departments", body, admin.ID)
	suite.handler.CreateDepartment(c)
	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Engineering", response["name"])
}

// TestCreateDepartment_DuplicateName tests the unique name constraint
func (suite *DepartmentHandlerTestSuite) TestCreateDepartment_DuplicateName() {
	admin := suite.createTestUser("admin@example.com", models.RoleAdmin)
	suite.createTestDepartment("Sales")

	body, _ := json.Marshal(map[string]interface{}{
		"name": "Sales",
	})

	c, w := suite.createAuthContext("POST", "/api/departments", body, admin.ID)

	suite.handler.CreateDepartment(c)

	assert.Equal(suite.T(), http.StatusConflict, w.Code)
}

// TestUpdateDepartment_Rename tests renaming and assigning a head
func (suite *DepartmentHandlerTestSuite) TestUpdateDepartment_Rename() {
	admin := suite.createTestUser("admin@example.com", models.RoleAdmin)
	head := suite.createTestUser("head@example.com", models.RoleManager)
	department := suite.createTestDepartment("Sales")

	body, _ := json.Marshal(map[string]interface{}{
		"name":    "Field Sales",
		"head_id": head.ID,
	})

	c, w := suite.createAuthContext("PUT", "/api/departments/1", body, admin.ID)
	c.Params = gin.Params{{Key: "id", Value: strconv.FormatUint(department.ID, 10)}}

	suite.handler.UpdateDepartment(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Field Sales", response["name"])
	assert.Equal(suite.T(), float64(head.ID), response["head_id"])
}

// TestDeleteDepartment_DetachesUsers tests that memberships do not block deletion
func (suite *DepartmentHandlerTestSuite) TestDeleteDepartment_DetachesUsers() {
	admin := suite.createTestUser("admin@example.com", models.RoleAdmin)
	member := suite.createTestUser("member@example.com", models.RoleMember)
	department := suite.createTestDepartment("Sales")

	err := suite.db.Create(&models.UserDepartment{UserID: member.ID, DepartmentID: department.ID}).Error
	suite.Require().NoError(err)

	c, w := suite.createAuthContext("DELETE", "/api/departments/1", nil, admin.ID)
	c.Params = gin.Params{{Key: "id", Value: strconv.FormatUint(department.ID, 10)}}

	suite.handler.DeleteDepartment(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var memberships int64
	suite.db.Model(&models.UserDepartment{}).Where("department_id = ?", department.ID).Count(&memberships)
	assert.Equal(suite.T(), int64(0), memberships)
}

// TestDeleteDepartment_NotFound tests deleting an unknown department
func (suite *DepartmentHandlerTestSuite) TestDeleteDepartment_NotFound() {
	admin := suite.createTestUser("admin@example.com", models.RoleAdmin)

	c, w := suite.createAuthContext("DELETE", "/api/departments/999", nil, admin.ID)
	c.Params = gin.Params{{Key: "id", Value: "999"}}

	suite.handler.DeleteDepartment(c)

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

// TestSuite runs the test suite
func TestDepartmentHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(DepartmentHandlerTestSuite))
}
