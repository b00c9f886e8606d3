package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/amercier/taskdeck-api/internal/middleware"
	"github.com/amercier/taskdeck-api/internal/models"
	"github.com/amercier/taskdeck-api/internal/services"
	"github.com/amercier/taskdeck-api/pkg/dto"
	"github.com/amercier/taskdeck-api/tests/testutil"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	driftmw "github.com/m1z23r/drift/pkg/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func teamUser(companyID uuid.UUID, team string) *models.User {
	return &models.User{
		ID:        uuid.New(),
		Username:  "member1",
		Role:      models.RoleTeam,
		CompanyID: &companyID,
		TeamName:  &team,
	}
}

func newUserApp(t *testing.T, mockUserService *testutil.MockUserService, user *models.User, method, path string, fn drift.HandlerFunc) (http.Handler, string) {
	t.Helper()
	jwtSvc := newTestJWTService()
	mockUserService.On("CheckActive", mock.Anything, user.ID).Return(user, nil)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.Auth(jwtSvc, mockUserService))

	switch method {
	case http.MethodGet:
		app.Get(path, fn)
	case http.MethodPost:
		app.Post(path, fn)
	case http.MethodPatch:
		app.Patch(path, fn)
	case http.MethodDelete:
		app.Delete(path, fn)
	default:
		t.Fatalf("unsupported method %s", method)
	}

	return app, generateTestToken(t, jwtSvc, user)
}

func TestTaskHandler_List_TeamScope(t *testing.T) {
	mockUserService := new(testutil.MockUserService)
	mockTaskService := new(testutil.MockTaskService)
	handler := NewTaskHandler(mockTaskService)

	companyID := uuid.New()
	user := teamUser(companyID, "backend")

	tasks := []models.Task{
		{ID: uuid.New(), Title: "Deploy", Priority: "high", Status: models.StatusPending, CompanyID: companyID},
	}
	mockTaskService.On("ListForScope", mock.Anything, user.Scope()).Return(tasks, nil)

	app, token := newUserApp(t, mockUserService, user, http.MethodGet, "/tasks", handler.List)

	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response []dto.TaskResponse
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)
	require.Len(t, response, 1)
	assert.Equal(t, "Deploy", response[0].Title)

	mockTaskService.AssertExpectations(t)
}

func TestTaskHandler_Create_Manager(t *testing.T) {
	mockUserService := new(testutil.MockUserService)
	mockTaskService := new(testutil.MockTaskService)
	handler := NewTaskHandler(mockTaskService)

	user := managerUser()
	companyID := *user.CompanyID
	team := "backend"

	created := &models.Task{
		ID:        uuid.New(),
		Title:     "Deploy",
		Priority:  "high",
		Status:    models.StatusPending,
		CompanyID: companyID,
		TeamName:  &team,
	}
	mockTaskService.On("Create", mock.Anything, mock.MatchedBy(func(p services.CreateTaskParams) bool {
		return p.Title == "Deploy" && p.CompanyID == companyID
	})).Return(created, nil)

	app, token := newUserApp(t, mockUserService, user, http.MethodPost, "/tasks", handler.Create)

	body, _ := json.Marshal(dto.CreateTaskRequest{Title: "Deploy", Priority: "high", TeamName: &team})
	req := httptest.NewRequest(http.MethodPost, "/tasks", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var response dto.TaskResponse
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, "pending", response.Status)

	mockTaskService.AssertExpectations(t)
}

func TestTaskHandler_Create_ManagerOtherCompanyForbidden(t *testing.T) {
	mockUserService := new(testutil.MockUserService)
	mockTaskService := new(testutil.MockTaskService)
	handler := NewTaskHandler(mockTaskService)

	user := managerUser()
	otherCompany := uuid.New()

	app, token := newUserApp(t, mockUserService, user, http.MethodPost, "/tasks", handler.Create)

	body, _ := json.Marshal(dto.CreateTaskRequest{Title: "Deploy", Priority: "high", CompanyID: &otherCompany})
	req := httptest.NewRequest(http.MethodPost, "/tasks", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "cannot create tasks for another company")
}

func TestTaskHandler_Create_TeamMemberForbidden(t *testing.T) {
	mockUserService := new(testutil.MockUserService)
	mockTaskService := new(testutil.MockTaskService)
	handler := NewTaskHandler(mockTaskService)

	user := teamUser(uuid.New(), "backend")

	app, token := newUserApp(t, mockUserService, user, http.MethodPost, "/tasks", handler.Create)

	body, _ := json.Marshal(dto.CreateTaskRequest{Title: "Deploy", Priority: "high"})
	req := httptest.NewRequest(http.MethodPost, "/tasks", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestTaskHandler_Create_MissingFields(t *testing.T) {
	mockUserService := new(testutil.MockUserService)
	mockTaskService := new(testutil.MockTaskService)
	handler := NewTaskHandler(mockTaskService)

	user := managerUser()

	app, token := newUserApp(t, mockUserService, user, http.MethodPost, "/tasks", handler.Create)

	body, _ := json.Marshal(dto.CreateTaskRequest{Title: "Deploy"})
	req := httptest.NewRequest(http.MethodPost, "/tasks", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "title and priority are required")
}

func TestTaskHandler_UpdateStatus_InvalidStatus(t *testing.T) {
	mockUserService := new(testutil.MockUserService)
	mockTaskService := new(testutil.MockTaskService)
	handler := NewTaskHandler(mockTaskService)

	user := managerUser()
	taskID := uuid.New()

	app, token := newUserApp(t, mockUserService, user, http.MethodPatch, "/tasks/:id/status", handler.UpdateStatus)

	body, _ := json.Marshal(dto.UpdateTaskStatusRequest{Status: "exploded"})
	req := httptest.NewRequest(http.MethodPatch, "/tasks/"+taskID.String()+"/status", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid task status")
}

func TestTaskHandler_UpdateStatus_ReportsIncidentWithReporterTeam(t *testing.T) {
	mockUserService := new(testutil.MockUserService)
	mockTaskService := new(testutil.MockTaskService)
	handler := NewTaskHandler(mockTaskService)

	companyID := uuid.New()
	user := teamUser(companyID, "backend")
	taskID := uuid.New()

	task := &models.Task{ID: taskID, Title: "Deploy", Priority: "high", Status: models.StatusPending, CompanyID: companyID}
	updated := &models.Task{ID: taskID, Title: "Deploy", Priority: "high", Status: models.StatusIncident, CompanyID: companyID}

	mockTaskService.On("GetByID", mock.Anything, taskID).Return(task, nil)
	mockTaskService.On("UpdateStatus", mock.Anything, taskID, models.StatusIncident, "server down", user.TeamName).
		Return(updated, nil)

	app, token := newUserApp(t, mockUserService, user, http.MethodPatch, "/tasks/:id/status", handler.UpdateStatus)

	body, _ := json.Marshal(dto.UpdateTaskStatusRequest{Status: "incident", Note: "server down"})
	req := httptest.NewRequest(http.MethodPatch, "/tasks/"+taskID.String()+"/status", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response dto.TaskResponse
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, "incident", response.Status)

	mockTaskService.AssertExpectations(t)
}

func TestTaskHandler_UpdateStatus_OtherCompanyForbidden(t *testing.T) {
	mockUserService := new(testutil.MockUserService)
	mockTaskService := new(testutil.MockTaskService)
	handler := NewTaskHandler(mockTaskService)

	user := teamUser(uuid.New(), "backend")
	taskID := uuid.New()

	task := &models.Task{ID: taskID, Title: "Deploy", Status: models.StatusPending, CompanyID: uuid.New()}
	mockTaskService.On("GetByID", mock.Anything, taskID).Return(task, nil)

	app, token := newUserApp(t, mockUserService, user, http.MethodPatch, "/tasks/:id/status", handler.UpdateStatus)

	body, _ := json.Marshal(dto.UpdateTaskStatusRequest{Status: "done"})
	req := httptest.NewRequest(http.MethodPatch, "/tasks/"+taskID.String()+"/status", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)

	mockTaskService.AssertExpectations(t)
}

func TestTaskHandler_UpdateStatus_NotFound(t *testing.T) {
	mockUserService := new(testutil.MockUserService)
	mockTaskService := new(testutil.MockTaskService)
	handler := NewTaskHandler(mockTaskService)

	user := managerUser()
	taskID := uuid.New()

	mockTaskService.On("GetByID", mock.Anything, taskID).Return(nil, services.ErrTaskNotFound)

	app, token := newUserApp(t, mockUserService, user, http.MethodPatch, "/tasks/:id/status", handler.UpdateStatus)

	body, _ := json.Marshal(dto.UpdateTaskStatusRequest{Status: "done"})
	req := httptest.NewRequest(http.MethodPatch, "/tasks/"+taskID.String()+"/status", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "task not found")

	mockTaskService.AssertExpectations(t)
}

func TestTaskHandler_Delete_TeamMemberForbidden(t *testing.T) {
	mockUserService := new(testutil.MockUserService)
	mockTaskService := new(testutil.MockTaskService)
	handler := NewTaskHandler(mockTaskService)

	companyID := uuid.New()
	user := teamUser(companyID, "backend")
	taskID := uuid.New()

	task := &models.Task{ID: taskID, Title: "Deploy", Status: models.StatusPending, CompanyID: companyID}
	mockTaskService.On("GetByID", mock.Anything, taskID).Return(task, nil)

	app, token := newUserApp(t, mockUserService, user, http.MethodDelete, "/tasks/:id", handler.Delete)

	req := httptest.NewRequest(http.MethodDelete, "/tasks/"+taskID.String(), nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)

	mockTaskService.AssertExpectations(t)
}
