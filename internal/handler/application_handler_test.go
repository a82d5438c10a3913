package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ta-hiring-api/internal/dto"
	"github.com/noah-isme/ta-hiring-api/internal/middleware"
	"github.com/noah-isme/ta-hiring-api/internal/models"
	appErrors "github.com/noah-isme/ta-hiring-api/pkg/errors"
)

type applicationServiceMock struct {
	app        *models.Application
	apps       []models.Application
	err        error
	lastCreate dto.CreateApplicationRequest
	lastCourse string
	lastUser   string
	called     string
}

func (m *applicationServiceMock) Create(ctx context.Context, req dto.CreateApplicationRequest) (*models.Application, error) {
	m.called = "create"
	m.lastCreate = req
	return m.app, m.err
}

func (m *applicationServiceMock) Get(ctx context.Context, courseCode, username string) (*models.Application, error) {
	m.called, m.lastCourse, m.lastUser = "get", courseCode, username
	return m.app, m.err
}

func (m *applicationServiceMock) ListOpen(ctx context.Context, courseCode string) ([]models.Application, error) {
	m.called, m.lastCourse = "list", courseCode
	return m.apps, m.err
}

func (m *applicationServiceMock) Select(ctx context.Context, courseCode, username string) (*models.Application, error) {
	m.called, m.lastCourse, m.lastUser = "select", courseCode, username
	return m.app, m.err
}

func (m *applicationServiceMock) Reject(ctx context.Context, courseCode, username string) (*models.Application, error) {
	m.called, m.lastCourse, m.lastUser = "reject", courseCode, username
	return m.app, m.err
}

func (m *applicationServiceMock) Withdraw(ctx context.Context, courseCode, username string) (*models.Application, error) {
	m.called, m.lastCourse, m.lastUser = "withdraw", courseCode, username
	return m.app, m.err
}

func studentContext(w *httptest.ResponseRecorder, method, target string, body []byte) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{Username: "alice", Role: models.RoleStudent})
	return c
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) *appErrors.Error {
	t.Helper()
	var envelope struct {
		Error *appErrors.Error `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	return envelope.Error
}

func TestApplicationHandlerCreateUsesTokenUsername(t *testing.T) {
	mockSvc := &applicationServiceMock{app: &models.Application{ID: "app-1", Username: "alice", CourseCode: "CSE2115", Status: models.ApplicationStatusPending}}
	handler := NewApplicationHandler(mockSvc)

	w := httptest.NewRecorder()
	c := studentContext(w, http.MethodPost, "/applications", []byte(`{"courseCode":"CSE2115","username":"mallory"}`))
	handler.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "alice", mockSvc.lastCreate.Username)
	assert.Equal(t, "CSE2115", mockSvc.lastCreate.CourseCode)
}

func TestApplicationHandlerCreateInvalidBody(t *testing.T) {
	mockSvc := &applicationServiceMock{}
	handler := NewApplicationHandler(mockSvc)

	w := httptest.NewRecorder()
	handler.Create(studentContext(w, http.MethodPost, "/applications", []byte(`{"courseCode":`)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, appErrors.ErrValidation.Code, decodeError(t, w).Code)
	assert.Empty(t, mockSvc.called)
}

func TestApplicationHandlerCreateRequiresClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewApplicationHandler(&applicationServiceMock{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/applications", bytes.NewBufferString(`{"courseCode":"CSE2115"}`))

	handler.Create(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestApplicationHandlerMapsBusinessErrors(t *testing.T) {
	cases := []struct {
		err    *appErrors.Error
		status int
	}{
		{appErrors.ErrTooManyApplications, http.StatusForbidden},
		{appErrors.ErrApplicationExists, http.StatusConflict},
		{appErrors.ErrInsufficientGrade, http.StatusForbidden},
		{appErrors.ErrCommunication, http.StatusBadGateway},
	}
	for _, tc := range cases {
		t.Run(tc.err.Code, func(t *testing.T) {
			handler := NewApplicationHandler(&applicationServiceMock{err: tc.err})
			w := httptest.NewRecorder()
			handler.Create(studentContext(w, http.MethodPost, "/applications", []byte(`{"courseCode":"CSE2115"}`)))
			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.err.Code, decodeError(t, w).Code)
		})
	}
}

func TestApplicationHandlerWithdraw(t *testing.T) {
	mockSvc := &applicationServiceMock{app: &models.Application{Status: models.ApplicationStatusRevoked}}
	handler := NewApplicationHandler(mockSvc)

	w := httptest.NewRecorder()
	c := studentContext(w, http.MethodPost, "/applications/CSE2115/withdraw", nil)
	c.Params = gin.Params{{Key: "courseCode", Value: "CSE2115"}}
	handler.Withdraw(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "withdraw", mockSvc.called)
	assert.Equal(t, "CSE2115", mockSvc.lastCourse)
	assert.Equal(t, "alice", mockSvc.lastUser)
}

func TestApplicationHandlerWithdrawApproved(t *testing.T) {
	handler := NewApplicationHandler(&applicationServiceMock{err: appErrors.ErrApplicationApproved})
	w := httptest.NewRecorder()
	c := studentContext(w, http.MethodPost, "/applications/CSE2115/withdraw", nil)
	c.Params = gin.Params{{Key: "courseCode", Value: "CSE2115"}}
	handler.Withdraw(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, appErrors.ErrApplicationApproved.Code, decodeError(t, w).Code)
}

func TestApplicationHandlerSelectUsesPathParams(t *testing.T) {
	mockSvc := &applicationServiceMock{app: &models.Application{Status: models.ApplicationStatusApproved}}
	handler := NewApplicationHandler(mockSvc)

	w := httptest.NewRecorder()
	c := studentContext(w, http.MethodPost, "/courses/CSE2115/applications/bob/select", nil)
	c.Params = gin.Params{{Key: "courseCode", Value: "CSE2115"}, {Key: "username", Value: "bob"}}
	handler.Select(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "select", mockSvc.called)
	assert.Equal(t, "bob", mockSvc.lastUser)
}

func TestApplicationHandlerRejectNotificationFailure(t *testing.T) {
	handler := NewApplicationHandler(&applicationServiceMock{err: appErrors.ErrNotificationFailed})
	w := httptest.NewRecorder()
	c := studentContext(w, http.MethodPost, "/courses/CSE2115/applications/bob/reject", nil)
	c.Params = gin.Params{{Key: "courseCode", Value: "CSE2115"}, {Key: "username", Value: "bob"}}
	handler.Reject(c)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestApplicationHandlerListOpen(t *testing.T) {
	mockSvc := &applicationServiceMock{apps: []models.Application{{Username: "alice"}, {Username: "bob"}}}
	handler := NewApplicationHandler(mockSvc)

	w := httptest.NewRecorder()
	c := studentContext(w, http.MethodGet, "/courses/CSE2115/applications", nil)
	c.Params = gin.Params{{Key: "courseCode", Value: "CSE2115"}}
	handler.ListOpen(c)

	require.Equal(t, http.StatusOK, w.Code)
	var envelope struct {
		Data []models.Application   `json:"data"`
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Data, 2)
	assert.Equal(t, float64(2), envelope.Meta["total"])
}

func TestApplicationHandlerGetNotFound(t *testing.T) {
	handler := NewApplicationHandler(&applicationServiceMock{err: appErrors.Clone(appErrors.ErrNotFound, "application not found")})
	w := httptest.NewRecorder()
	c := studentContext(w, http.MethodGet, "/applications/CSE2115", nil)
	c.Params = gin.Params{{Key: "courseCode", Value: "CSE2115"}}
	handler.Get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
