package handlers

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"github.com/gescourrier/mail-registry-api/internal/constants"
	"github.com/gescourrier/mail-registry-api/internal/database"
	"github.com/gescourrier/mail-registry-api/internal/dto"
	"github.com/gescourrier/mail-registry-api/internal/models"
	"github.com/gescourrier/mail-registry-api/internal/repository"
	"github.com/gescourrier/mail-registry-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// AssignmentHandlerTestSuite defines the test suite for AssignmentHandler
type AssignmentHandlerTestSuite struct {
	suite.Suite
	db            *gorm.DB
	handler       *AssignmentHandler
	router        *gin.Engine
	currentUserID uint64
}

// SetupTest runs before each test
func (suite *AssignmentHandlerTestSuite) SetupTest() {
	var err error

	// Create in-memory SQLite database
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	suite.Require().NoError(err)

	// Run migrations
	err = suite.db.AutoMigrate(
		&models.User{},
		&models.IncomingMail{},
		&models.Assignment{},
		&models.AssignmentAssignee{},
	)
	suite.Require().NoError(err)

	// Set the test DB as the default database
	database.SetDB(suite.db)

	userRepo := repository.NewUserRepository(suite.db)
	incomingRepo := repository.NewIncomingMailRepository(suite.db)
	assignmentRepo := repository.NewAssignmentRepository(suite.db)
	assignmentService := services.NewAssignmentService(assignmentRepo, incomingRepo, userRepo)
	suite.handler = NewAssignmentHandler(assignmentService)

	// Set Gin to test mode
	gin.SetMode(gin.TestMode)

	// Create router, simulating RequireAuth with the suite's current user
	suite.router = gin.New()
	suite.router.Use(func(c *gin.Context) {
		c.Set(constants.ContextKeyUserID, suite.currentUserID)
		c.Next()
	})
	suite.router.POST("/api/assignments", suite.handler.CreateAssignment)
	suite.router.GET("/api/assignments", suite.handler.ListAssignments)
	suite.router.GET("/api/assignments/unassigned", suite.handler.ListUnassignedMail)
	suite.router.GET("/api/assignments/:id", suite.handler.GetAssignment)
	suite.router.GET("/api/assignments/:id/response-file", suite.handler.GetResponseFile)
	suite.router.PUT("/api/assignments/:id", suite.handler.ProcessAssignment)
	suite.router.PUT("/api/assignments/:id/reassign", suite.handler.ReassignAssignment)
}

// TearDownTest runs after each test
func (suite *AssignmentHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

// Helper function to create test data
func (suite *AssignmentHandlerTestSuite) createTestUser(email string, role models.UserRole) *models.User {
	user := &models.User{
		FirstName:    "Test",
		LastName:     "User",
		Email:        email,
		Role:         role,
		PasswordHash: "hashedpassword",
		IsActive:     true,
	}
	suite.Require().NoError(suite.db.Create(user).Error)
	return user
}

func (suite *AssignmentHandlerTestSuite) createTestMail(number string, arrival time.Time) *models.IncomingMail {
	mail := &models.IncomingMail{
		ArrivalDate:   arrival,
		ArrivalNumber: number,
		ArrivalYear:   arrival.Year(),
		Source:        "DRH",
		Type:          "Lettre",
		Subject:       "Objet " + number,
	}
	suite.Require().NoError(suite.db.Create(mail).Error)
	return mail
}

func (suite *AssignmentHandlerTestSuite) doRequest(method, url string, payload interface{}) *httptest.ResponseRecorder {
	var req *http.Request
	if payload != nil {
		body, err := json.Marshal(payload)
		suite.Require().NoError(err)
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *AssignmentHandlerTestSuite) TestCreateAssignment_Success() {
	secretary := suite.createTestUser("secretariat@ministere.test", models.RoleSecretariat)
	assignee := suite.createTestUser("dfs@ministere.test", models.RoleDFS)
	mail := suite.createTestMail("A-001", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))

	suite.currentUserID = secretary.ID
	w := suite.doRequest(http.MethodPost, "/api/assignments", map[string]interface{}{
		"mailId":  mail.ID,
		"userIds": []uint64{assignee.ID},
		"comment": "Pour traitement",
	})

	suite.Require().Equal(http.StatusCreated, w.Code)

	var response dto.AssignmentDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Equal(models.StatusPending, response.Status)
	suite.Equal(secretary.ID, response.AssignedBy)
	suite.Require().Len(response.Assignees, 1)
	suite.Equal(assignee.ID, response.Assignees[0].User.ID)
}

func (suite *AssignmentHandlerTestSuite) TestCreateAssignment_MailAlreadyAssigned() {
	secretary := suite.createTestUser("secretariat@ministere.test", models.RoleSecretariat)
	assignee := suite.createTestUser("dfs@ministere.test", models.RoleDFS)
	mail := suite.createTestMail("A-001", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))

	suite.currentUserID = secretary.ID
	w := suite.doRequest(http.MethodPost, "/api/assignments", map[string]interface{}{
		"mailId":  mail.ID,
		"userIds": []uint64{assignee.ID},
	})
	suite.Require().Equal(http.StatusCreated, w.Code)

	w = suite.doRequest(http.MethodPost, "/api/assignments", map[string]interface{}{
		"mailId":  mail.ID,
		"userIds": []uint64{assignee.ID},
	})
	suite.Equal(http.StatusConflict, w.Code)
	suite.Contains(w.Body.String(), "ALREADY_ASSIGNED")
}

func (suite *AssignmentHandlerTestSuite) TestCreateAssignment_EmptyAssigneeSet() {
	secretary := suite.createTestUser("secretariat@ministere.test", models.RoleSecretariat)
	mail := suite.createTestMail("A-001", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))

	suite.currentUserID = secretary.ID
	w := suite.doRequest(http.MethodPost, "/api/assignments", map[string]interface{}{
		"mailId":  mail.ID,
		"userIds": []uint64{},
	})

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *AssignmentHandlerTestSuite) TestCreateAssignment_UnknownAssignee() {
	secretary := suite.createTestUser("secretariat@ministere.test", models.RoleSecretariat)
	mail := suite.createTestMail("A-001", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))

	suite.currentUserID = secretary.ID
	w := suite.doRequest(http.MethodPost, "/api/assignments", map[string]interface{}{
		"mailId":  mail.ID,
		"userIds": []uint64{999},
	})

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *AssignmentHandlerTestSuite) createAssignment(mailID uint64, assignedBy uint64, assigneeIDs ...uint64) uint64 {
	suite.currentUserID = assignedBy
	w := suite.doRequest(http.MethodPost, "/api/assignments", map[string]interface{}{
		"mailId":  mailID,
		"userIds": assigneeIDs,
	})
	suite.Require().Equal(http.StatusCreated, w.Code)

	var response dto.AssignmentDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	return response.ID
}

func (suite *AssignmentHandlerTestSuite) TestProcessAssignment_Success() {
	secretary := suite.createTestUser("secretariat@ministere.test", models.RoleSecretariat)
	assignee := suite.createTestUser("dfs@ministere.test", models.RoleDFS)
	mail := suite.createTestMail("A-001", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
	id := suite.createAssignment(mail.ID, secretary.ID, assignee.ID)

	suite.currentUserID = assignee.ID
	w := suite.doRequest(http.MethodPut, fmt.Sprintf("/api/assignments/%d", id), map[string]interface{}{
		"comment": "Traité, réponse transmise",
	})

	suite.Require().Equal(http.StatusOK, w.Code)

	var response dto.AssignmentDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Equal(models.StatusProcessed, response.Status)
	suite.Require().NotNil(response.ProcessedBy)
	suite.Equal(assignee.ID, *response.ProcessedBy)
	suite.NotNil(response.ProcessedAt)
}

func (suite *AssignmentHandlerTestSuite) TestProcessAssignment_NotAssignee() {
	secretary := suite.createTestUser("secretariat@ministere.test", models.RoleSecretariat)
	assignee := suite.createTestUser("dfs@ministere.test", models.RoleDFS)
	other := suite.createTestUser("dms@ministere.test", models.RoleDMS)
	mail := suite.createTestMail("A-001", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
	id := suite.createAssignment(mail.ID, secretary.ID, assignee.ID)

	suite.currentUserID = other.ID
	w := suite.doRequest(http.MethodPut, fmt.Sprintf("/api/assignments/%d", id), map[string]interface{}{
		"comment": "Je ne suis pas concerné",
	})

	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *AssignmentHandlerTestSuite) TestProcessAssignment_Twice() {
	secretary := suite.createTestUser("secretariat@ministere.test", models.RoleSecretariat)
	assignee := suite.createTestUser("dfs@ministere.test", models.RoleDFS)
	mail := suite.createTestMail("A-001", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
	id := suite.createAssignment(mail.ID, secretary.ID, assignee.ID)

	suite.currentUserID = assignee.ID
	w := suite.doRequest(http.MethodPut, fmt.Sprintf("/api/assignments/%d", id), map[string]interface{}{
		"comment": "Premier traitement",
	})
	suite.Require().Equal(http.StatusOK, w.Code)

	w = suite.doRequest(http.MethodPut, fmt.Sprintf("/api/assignments/%d", id), map[string]interface{}{
		"comment": "Second traitement",
	})
	suite.Equal(http.StatusConflict, w.Code)
	suite.Contains(w.Body.String(), "ALREADY_PROCESSED")
}

func (suite *AssignmentHandlerTestSuite) TestProcessAssignment_BlankComment() {
	secretary := suite.createTestUser("secretariat@ministere.test", models.RoleSecretariat)
	assignee := suite.createTestUser("dfs@ministere.test", models.RoleDFS)
	mail := suite.createTestMail("A-001", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
	id := suite.createAssignment(mail.ID, secretary.ID, assignee.ID)

	suite.currentUserID = assignee.ID
	w := suite.doRequest(http.MethodPut, fmt.Sprintf("/api/assignments/%d", id), map[string]interface{}{
		"comment": "   ",
	})

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *AssignmentHandlerTestSuite) TestReassign_ResetsProcessingState() {
	secretary := suite.createTestUser("secretariat@ministere.test", models.RoleSecretariat)
	assignee := suite.createTestUser("dfs@ministere.test", models.RoleDFS)
	next := suite.createTestUser("dms@ministere.test", models.RoleDMS)
	mail := suite.createTestMail("A-001", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
	id := suite.createAssignment(mail.ID, secretary.ID, assignee.ID)

	suite.currentUserID = assignee.ID
	w := suite.doRequest(http.MethodPut, fmt.Sprintf("/api/assignments/%d", id), map[string]interface{}{
		"comment": "Traité une première fois",
	})
	suite.Require().Equal(http.StatusOK, w.Code)

	suite.currentUserID = secretary.ID
	w = suite.doRequest(http.MethodPut, fmt.Sprintf("/api/assignments/%d/reassign", id), map[string]interface{}{
		"userIds": []uint64{next.ID},
		"comment": "À reprendre",
	})
	suite.Require().Equal(http.StatusOK, w.Code)

	var response dto.AssignmentDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Equal(models.StatusPending, response.Status)
	suite.Nil(response.ProcessedAt)
	suite.Nil(response.ProcessedBy)
	suite.Empty(response.ProcessingComment)
	suite.Equal("À reprendre", response.Comment)
	suite.Require().Len(response.Assignees, 1)
	suite.Equal(next.ID, response.Assignees[0].User.ID)

	// The superseded assignee can no longer process
	suite.currentUserID = assignee.ID
	w = suite.doRequest(http.MethodPut, fmt.Sprintf("/api/assignments/%d", id), map[string]interface{}{
		"comment": "Tentative après réaffectation",
	})
	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *AssignmentHandlerTestSuite) TestListAssignments_MineFilter() {
	secretary := suite.createTestUser("secretariat@ministere.test", models.RoleSecretariat)
	assignee := suite.createTestUser("dfs@ministere.test", models.RoleDFS)
	other := suite.createTestUser("dms@ministere.test", models.RoleDMS)
	mailA := suite.createTestMail("A-001", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
	mailB := suite.createTestMail("A-002", time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC))
	suite.createAssignment(mailA.ID, secretary.ID, assignee.ID)
	suite.createAssignment(mailB.ID, secretary.ID, other.ID)

	suite.currentUserID = assignee.ID
	w := suite.doRequest(http.MethodGet, "/api/assignments?mine=true", nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	var response struct {
		Assignments []dto.AssignmentDTO `json:"assignments"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Require().Len(response.Assignments, 1)
	suite.Equal(mailA.ID, response.Assignments[0].MailID)
}

func (suite *AssignmentHandlerTestSuite) TestListUnassignedMail() {
	secretary := suite.createTestUser("secretariat@ministere.test", models.RoleSecretariat)
	assignee := suite.createTestUser("dfs@ministere.test", models.RoleDFS)
	assigned := suite.createTestMail("A-001", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
	unassigned := suite.createTestMail("A-002", time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC))
	suite.createAssignment(assigned.ID, secretary.ID, assignee.ID)

	w := suite.doRequest(http.MethodGet, "/api/assignments/unassigned", nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	var response struct {
		Mails []dto.IncomingMailDTO `json:"mails"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Require().Len(response.Mails, 1)
	suite.Equal(unassigned.ID, response.Mails[0].ID)
}

func (suite *AssignmentHandlerTestSuite) TestListArchive_ProcessedOnly() {
	secretary := suite.createTestUser("secretariat@ministere.test", models.RoleSecretariat)
	assignee := suite.createTestUser("dfs@ministere.test", models.RoleDFS)
	mailA := suite.createTestMail("A-001", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
	mailB := suite.createTestMail("A-002", time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC))
	idA := suite.createAssignment(mailA.ID, secretary.ID, assignee.ID)
	suite.createAssignment(mailB.ID, secretary.ID, assignee.ID)

	suite.currentUserID = assignee.ID
	w := suite.doRequest(http.MethodPut, fmt.Sprintf("/api/assignments/%d", idA), map[string]interface{}{
		"comment": "Traité",
	})
	suite.Require().Equal(http.StatusOK, w.Code)

	w = suite.doRequest(http.MethodGet, "/api/assignments?view=archive", nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	var response struct {
		Assignments []dto.AssignmentDTO `json:"assignments"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Require().Len(response.Assignments, 1)
	suite.Equal(mailA.ID, response.Assignments[0].MailID)
}

func (suite *AssignmentHandlerTestSuite) TestListArchive_NewestArrivalFirst() {
	secretary := suite.createTestUser("secretariat@ministere.test", models.RoleSecretariat)
	assignee := suite.createTestUser("dfs@ministere.test", models.RoleDFS)
	mailOld := suite.createTestMail("A-001", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
	mailNew := suite.createTestMail("A-002", time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC))

	// The newer arrival gets the older assignment so an id-based sort
	// would put it last.
	idNew := suite.createAssignment(mailNew.ID, secretary.ID, assignee.ID)
	idOld := suite.createAssignment(mailOld.ID, secretary.ID, assignee.ID)

	suite.currentUserID = assignee.ID
	for _, id := range []uint64{idOld, idNew} {
		w := suite.doRequest(http.MethodPut, fmt.Sprintf("/api/assignments/%d", id), map[string]interface{}{
			"comment": "Traité",
		})
		suite.Require().Equal(http.StatusOK, w.Code)
	}

	w := suite.doRequest(http.MethodGet, "/api/assignments?view=archive", nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	var response struct {
		Assignments []dto.AssignmentDTO `json:"assignments"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Require().Len(response.Assignments, 2)
	suite.Equal(mailNew.ID, response.Assignments[0].MailID)
	suite.Equal(mailOld.ID, response.Assignments[1].MailID)
}

func (suite *AssignmentHandlerTestSuite) TestProcessAssignment_WithResponseFile() {
	secretary := suite.createTestUser("secretariat@ministere.test", models.RoleSecretariat)
	assignee := suite.createTestUser("dfs@ministere.test", models.RoleDFS)
	mail := suite.createTestMail("A-001", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
	id := suite.createAssignment(mail.ID, secretary.ID, assignee.ID)

	content := []byte("reponse officielle")
	dataURI := "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(content)

	suite.currentUserID = assignee.ID
	w := suite.doRequest(http.MethodPut, fmt.Sprintf("/api/assignments/%d", id), map[string]interface{}{
		"comment":          "Traité avec réponse jointe",
		"responseFile":     dataURI,
		"responseFileName": "reponse.pdf",
	})
	suite.Require().Equal(http.StatusOK, w.Code)

	var response dto.AssignmentDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.True(response.HasResponseFile)
	suite.Equal("reponse.pdf", response.ResponseFileName)

	w = suite.doRequest(http.MethodGet, fmt.Sprintf("/api/assignments/%d/response-file", id), nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Equal(content, w.Body.Bytes())
	suite.Contains(w.Header().Get("Content-Disposition"), "reponse.pdf")
}

// TestAssignmentHandlerTestSuite runs the test suite
func TestAssignmentHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(AssignmentHandlerTestSuite))
}
