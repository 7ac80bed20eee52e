package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"careerbridge-service/internal/middleware"
	"careerbridge-service/internal/models"
	"careerbridge-service/internal/observability"
	"careerbridge-service/internal/repositories"
	"careerbridge-service/internal/telemetry"
	"careerbridge-service/internal/ws"
)

// RequestHandler manages the interview request workflow endpoints.
type RequestHandler struct {
	requestRepo     repositories.InterviewRequestRepository
	participantRepo repositories.ParticipantRepository
	hub             *ws.Hub
	audit           *telemetry.AuditEmitter
}

// NewRequestHandler builds a RequestHandler.
func NewRequestHandler(requestRepo repositories.InterviewRequestRepository, participantRepo repositories.ParticipantRepository, hub *ws.Hub, audit *telemetry.AuditEmitter) *RequestHandler {
	return &RequestHandler{requestRepo: requestRepo, participantRepo: participantRepo, hub: hub, audit: audit}
}

func (h *RequestHandler) emitAudit(c *gin.Context, level, text string) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), participantIDFromContext(c))
}

// ListRequests returns the caller's interview requests, enriched with
// counterpart display fields: students see requests addressed to them, job
// givers the ones they sent.
func (h *RequestHandler) ListRequests(c *gin.Context) {
	self, ok := middleware.ParticipantFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}

	requests, err := h.requestRepo.ListForParticipant(c.Request.Context(), self.ID, self.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load interview requests"})
		return
	}
	if requests == nil {
		requests = []models.EnrichedRequest{}
	}

	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

// CreateRequest lets a job giver send an interview request to a student. The
// new request starts pending and is pushed to both inbox topics.
func (h *RequestHandler) CreateRequest(c *gin.Context) {
	self, ok := middleware.ParticipantFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}
	if self.Role != models.RoleJobGiver {
		c.JSON(http.StatusForbidden, gin.H{"error": "only job givers can send interview requests"})
		return
	}

	var req struct {
		StudentID int    `json:"student_id" binding:"required"`
		Message   string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request message must not be empty"})
		return
	}

	student, err := h.participantRepo.Get(c.Request.Context(), req.StudentID)
	if err != nil {
		respondRepoError(c, err, "failed to load student")
		return
	}
	if student.Role != models.RoleStudent {
		c.JSON(http.StatusBadRequest, gin.H{"error": "interview requests can only target students"})
		return
	}

	created, err := h.requestRepo.Create(c.Request.Context(), self.ID, req.StudentID, message)
	if err != nil {
		respondRepoError(c, err, "could not create interview request")
		return
	}

	h.hub.BroadcastRequestEvent(created.JobGiverID, "request_created", created)
	h.hub.BroadcastRequestEvent(created.StudentID, "request_created", created)
	h.emitAudit(c, "INFO", "Interview request created")
	c.JSON(http.StatusCreated, created)
}

// TransitionRequest moves a pending request to accepted or rejected. Only the
// referenced student may decide, and decided requests stay decided.
func (h *RequestHandler) TransitionRequest(c *gin.Context) {
	requestID, err := strconv.Atoi(c.Param("request_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	var req struct {
		Status models.RequestStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.StatusPending.CanTransitionTo(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be accepted or rejected"})
		return
	}

	selfID := c.GetInt(middleware.ContextParticipantIDKey)
	updated, err := h.requestRepo.UpdateStatus(c.Request.Context(), requestID, req.Status, selfID)
	if err != nil {
		respondRepoError(c, err, "could not update interview request")
		return
	}

	observability.IncRequestTransition(string(updated.Status))
	h.hub.BroadcastRequestEvent(updated.JobGiverID, "request_updated", updated)
	h.hub.BroadcastRequestEvent(updated.StudentID, "request_updated", updated)
	h.emitAudit(c, "INFO", "Interview request "+string(updated.Status))
	c.JSON(http.StatusOK, updated)
}
