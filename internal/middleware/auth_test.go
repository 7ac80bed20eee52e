package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"careerbridge-service/internal/mocks"
	"careerbridge-service/internal/models"
	"careerbridge-service/internal/repositories"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, sub interface{}) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func setupAuthRouter(participants repositories.ParticipantRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(AuthMiddleware(testSecret, participants))
	router.GET("/me", func(c *gin.Context) {
		participant, _ := ParticipantFromContext(c)
		c.JSON(http.StatusOK, participant)
	})
	return router
}

func TestAuthMiddlewareAcceptsValidToken(t *testing.T) {
	participants := new(mocks.ParticipantRepositoryMock)
	participants.On("Get", mock.Anything, 42).
		Return(models.Participant{ID: 42, DisplayName: "Dana", Role: models.RoleStudent}, nil)

	router := setupAuthRouter(participants)
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "42"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"display_name":"Dana"`)
	participants.AssertExpectations(t)
}

func TestAuthMiddlewareAcceptsNumericSubject(t *testing.T) {
	participants := new(mocks.ParticipantRepositoryMock)
	participants.On("Get", mock.Anything, 7).
		Return(models.Participant{ID: 7, DisplayName: "Robin", Role: models.RoleJobGiver}, nil)

	router := setupAuthRouter(participants)
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, 7))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	participants.AssertExpectations(t)
}

func TestAuthMiddlewareMissingHeader(t *testing.T) {
	router := setupAuthRouter(new(mocks.ParticipantRepositoryMock))
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareRejectsWrongSecret(t *testing.T) {
	router := setupAuthRouter(new(mocks.ParticipantRepositoryMock))
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "other-secret", "42"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareRejectsMalformedHeader(t *testing.T) {
	router := setupAuthRouter(new(mocks.ParticipantRepositoryMock))
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Token abc")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareRejectsUnknownParticipant(t *testing.T) {
	participants := new(mocks.ParticipantRepositoryMock)
	participants.On("Get", mock.Anything, 42).
		Return(models.Participant{}, repositories.ErrParticipantNotFound)

	router := setupAuthRouter(participants)
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "42"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	participants.AssertExpectations(t)
}

func TestParseSubjectRejectsZeroAndGarbage(t *testing.T) {
	_, err := ParseSubject(signToken(t, testSecret, "0"), testSecret)
	assert.Error(t, err)

	_, err = ParseSubject(signToken(t, testSecret, "not-a-number"), testSecret)
	assert.Error(t, err)

	_, err = ParseSubject("not.a.jwt", testSecret)
	assert.Error(t, err)
}
