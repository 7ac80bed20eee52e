package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"careerbridge-service/internal/middleware"
	"careerbridge-service/internal/mocks"
	"careerbridge-service/internal/models"
	"careerbridge-service/internal/repositories"
	"careerbridge-service/internal/telemetry"
	"careerbridge-service/internal/ws"
)

func setupRequestRouter(handler *RequestHandler, self models.Participant) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextParticipantIDKey, self.ID)
		c.Set(middleware.ContextParticipantKey, self)
		c.Next()
	})
	r.GET("/interview-requests", handler.ListRequests)
	r.POST("/interview-requests", handler.CreateRequest)
	r.PATCH("/interview-requests/:request_id", handler.TransitionRequest)
	return r
}

var (
	testJobGiver = models.Participant{ID: 9, DisplayName: "Acme HR", Role: models.RoleJobGiver}
	testStudent2 = models.Participant{ID: 2, DisplayName: "Bo", Role: models.RoleStudent}
)

func TestCreateRequestSuccess(t *testing.T) {
	requestRepo := new(mocks.InterviewRequestRepositoryMock)
	participantRepo := new(mocks.ParticipantRepositoryMock)
	handler := NewRequestHandler(requestRepo, participantRepo, ws.NewHub(), nil)
	router := setupRequestRouter(handler, testJobGiver)

	participantRepo.On("Get", mock.Anything, 2).Return(testStudent2, nil).Once()
	requestRepo.On("Create", mock.Anything, 9, 2, "come interview with us").
		Return(models.InterviewRequest{ID: 1, JobGiverID: 9, StudentID: 2, Message: "come interview with us", Status: models.StatusPending}, nil).Once()

	body := bytes.NewBufferString(`{"student_id":2,"message":"come interview with us"}`)
	req := httptest.NewRequest(http.MethodPost, "/interview-requests", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var created models.InterviewRequest
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	assert.Equal(t, models.StatusPending, created.Status)

	participantRepo.AssertExpectations(t)
	requestRepo.AssertExpectations(t)
}

func TestCreateRequestForbiddenForStudents(t *testing.T) {
	handler := NewRequestHandler(new(mocks.InterviewRequestRepositoryMock), new(mocks.ParticipantRepositoryMock), ws.NewHub(), nil)
	router := setupRequestRouter(handler, testStudent2)

	body := bytes.NewBufferString(`{"student_id":3,"message":"hi"}`)
	req := httptest.NewRequest(http.MethodPost, "/interview-requests", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreateRequestTargetMustBeStudent(t *testing.T) {
	participantRepo := new(mocks.ParticipantRepositoryMock)
	handler := NewRequestHandler(new(mocks.InterviewRequestRepositoryMock), participantRepo, ws.NewHub(), nil)
	router := setupRequestRouter(handler, testJobGiver)

	participantRepo.On("Get", mock.Anything, 7).Return(models.Participant{ID: 7, Role: models.RoleMentor}, nil).Once()

	body := bytes.NewBufferString(`{"student_id":7,"message":"hi"}`)
	req := httptest.NewRequest(http.MethodPost, "/interview-requests", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	participantRepo.AssertExpectations(t)
}

func TestCreateRequestDuplicatePending(t *testing.T) {
	requestRepo := new(mocks.InterviewRequestRepositoryMock)
	participantRepo := new(mocks.ParticipantRepositoryMock)
	handler := NewRequestHandler(requestRepo, participantRepo, ws.NewHub(), nil)
	router := setupRequestRouter(handler, testJobGiver)

	participantRepo.On("Get", mock.Anything, 2).Return(testStudent2, nil).Once()
	requestRepo.On("Create", mock.Anything, 9, 2, "again").
		Return(models.InterviewRequest{}, repositories.ErrDuplicatePending).Once()

	body := bytes.NewBufferString(`{"student_id":2,"message":"again"}`)
	req := httptest.NewRequest(http.MethodPost, "/interview-requests", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	requestRepo.AssertExpectations(t)
}

func TestCreateRequestEmitsAudit(t *testing.T) {
	requestRepo := new(mocks.InterviewRequestRepositoryMock)
	participantRepo := new(mocks.ParticipantRepositoryMock)
	publisher := new(mocks.PublisherMock)
	emitter := telemetry.NewAuditEmitter(publisher, "audit.careerbridge", "careerbridge-service", "test")
	handler := NewRequestHandler(requestRepo, participantRepo, ws.NewHub(), emitter)
	router := setupRequestRouter(handler, testJobGiver)

	participantRepo.On("Get", mock.Anything, 2).Return(testStudent2, nil).Once()
	requestRepo.On("Create", mock.Anything, 9, 2, "hi").
		Return(models.InterviewRequest{ID: 1, JobGiverID: 9, StudentID: 2, Status: models.StatusPending}, nil).Once()
	publisher.On("Publish", mock.Anything, "audit.careerbridge", mock.MatchedBy(func(event any) bool {
		envelope, ok := event.(telemetry.AuditEnvelope)
		return ok && envelope.EventType == "audit_log" && envelope.Payload.Text == "Interview request created"
	})).Return(nil).Once()

	body := bytes.NewBufferString(`{"student_id":2,"message":"hi"}`)
	req := httptest.NewRequest(http.MethodPost, "/interview-requests", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	publisher.AssertExpectations(t)
}

func TestTransitionRequestAccepted(t *testing.T) {
	requestRepo := new(mocks.InterviewRequestRepositoryMock)
	handler := NewRequestHandler(requestRepo, nil, ws.NewHub(), nil)
	router := setupRequestRouter(handler, testStudent2)

	requestRepo.On("UpdateStatus", mock.Anything, 4, models.StatusAccepted, 2).
		Return(models.InterviewRequest{ID: 4, JobGiverID: 9, StudentID: 2, Status: models.StatusAccepted}, nil).Once()

	body := bytes.NewBufferString(`{"status":"accepted"}`)
	req := httptest.NewRequest(http.MethodPatch, "/interview-requests/4", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var updated models.InterviewRequest
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&updated))
	assert.Equal(t, models.StatusAccepted, updated.Status)

	requestRepo.AssertExpectations(t)
}

func TestTransitionRequestAlreadyDecided(t *testing.T) {
	requestRepo := new(mocks.InterviewRequestRepositoryMock)
	handler := NewRequestHandler(requestRepo, nil, ws.NewHub(), nil)
	router := setupRequestRouter(handler, testStudent2)

	requestRepo.On("UpdateStatus", mock.Anything, 4, models.StatusRejected, 2).
		Return(models.InterviewRequest{}, fmt.Errorf("%w: status is accepted", repositories.ErrIllegalTransition)).Once()

	body := bytes.NewBufferString(`{"status":"rejected"}`)
	req := httptest.NewRequest(http.MethodPatch, "/interview-requests/4", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "accepted")
	requestRepo.AssertExpectations(t)
}

func TestTransitionRequestWrongCaller(t *testing.T) {
	requestRepo := new(mocks.InterviewRequestRepositoryMock)
	handler := NewRequestHandler(requestRepo, nil, ws.NewHub(), nil)
	router := setupRequestRouter(handler, testJobGiver)

	requestRepo.On("UpdateStatus", mock.Anything, 4, models.StatusAccepted, 9).
		Return(models.InterviewRequest{}, repositories.ErrNotRequestStudent).Once()

	body := bytes.NewBufferString(`{"status":"accepted"}`)
	req := httptest.NewRequest(http.MethodPatch, "/interview-requests/4", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	requestRepo.AssertExpectations(t)
}

func TestTransitionRequestUnknownHiddenAsForbidden(t *testing.T) {
	requestRepo := new(mocks.InterviewRequestRepositoryMock)
	handler := NewRequestHandler(requestRepo, nil, ws.NewHub(), nil)
	router := setupRequestRouter(handler, testStudent2)

	requestRepo.On("UpdateStatus", mock.Anything, 999, models.StatusAccepted, 2).
		Return(models.InterviewRequest{}, repositories.ErrRequestNotFound).Once()

	body := bytes.NewBufferString(`{"status":"accepted"}`)
	req := httptest.NewRequest(http.MethodPatch, "/interview-requests/999", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	requestRepo.AssertExpectations(t)
}

func TestTransitionRequestInvalidTarget(t *testing.T) {
	handler := NewRequestHandler(new(mocks.InterviewRequestRepositoryMock), nil, ws.NewHub(), nil)
	router := setupRequestRouter(handler, testStudent2)

	body := bytes.NewBufferString(`{"status":"pending"}`)
	req := httptest.NewRequest(http.MethodPatch, "/interview-requests/4", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListRequestsStudentFilter(t *testing.T) {
	requestRepo := new(mocks.InterviewRequestRepositoryMock)
	handler := NewRequestHandler(requestRepo, nil, ws.NewHub(), nil)
	router := setupRequestRouter(handler, testStudent2)

	company := "Acme"
	requestRepo.On("ListForParticipant", mock.Anything, 2, models.RoleStudent).Return([]models.EnrichedRequest{
		{
			InterviewRequest: models.InterviewRequest{ID: 1, JobGiverID: 9, StudentID: 2, Status: models.StatusPending},
			JobGiverName:     "Acme HR",
			JobGiverCompany:  &company,
			StudentName:      "Bo",
		},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/interview-requests", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Acme")
	requestRepo.AssertExpectations(t)
}
