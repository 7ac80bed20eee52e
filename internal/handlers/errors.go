package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"careerbridge-service/internal/repositories"
)

// respondRepoError maps repository sentinel errors to HTTP responses.
// Not-found on conversations and interview requests is reported as forbidden
// so callers cannot probe for the existence of entities they have no access
// to. Participants stay 404: they are browsable through the candidate list.
func respondRepoError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, repositories.ErrParticipantNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "participant not found"})
	case errors.Is(err, repositories.ErrSelfConversation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, repositories.ErrConversationNotFound),
		errors.Is(err, repositories.ErrRequestNotFound),
		errors.Is(err, repositories.ErrNotRequestStudent):
		c.JSON(http.StatusForbidden, gin.H{"error": "not allowed"})
	case errors.Is(err, repositories.ErrIllegalTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, repositories.ErrDuplicatePending):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
