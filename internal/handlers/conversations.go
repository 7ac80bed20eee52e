package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"careerbridge-service/internal/middleware"
	"careerbridge-service/internal/models"
	"careerbridge-service/internal/repositories"
	"careerbridge-service/internal/ws"
)

// ConversationHandler manages the conversation directory and message log
// endpoints.
type ConversationHandler struct {
	conversationRepo repositories.ConversationRepository
	messageRepo      repositories.MessageRepository
	participantRepo  repositories.ParticipantRepository
	hub              *ws.Hub
}

// NewConversationHandler builds a ConversationHandler.
func NewConversationHandler(conversationRepo repositories.ConversationRepository, messageRepo repositories.MessageRepository, participantRepo repositories.ParticipantRepository, hub *ws.Hub) *ConversationHandler {
	return &ConversationHandler{
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
		participantRepo:  participantRepo,
		hub:              hub,
	}
}

// ListConversations returns the caller's conversations with last-message
// summaries, most recent activity first.
func (h *ConversationHandler) ListConversations(c *gin.Context) {
	selfID := c.GetInt(middleware.ContextParticipantIDKey)

	summaries, err := h.conversationRepo.ListSummaries(c.Request.Context(), selfID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load conversations"})
		return
	}
	if summaries == nil {
		summaries = []models.ConversationSummary{}
	}

	c.JSON(http.StatusOK, gin.H{"conversations": summaries})
}

// StartConversation finds or creates the single conversation between the
// caller and the other participant.
func (h *ConversationHandler) StartConversation(c *gin.Context) {
	var req struct {
		OtherID int `json:"other_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	selfID := c.GetInt(middleware.ContextParticipantIDKey)
	if selfID == req.OtherID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot start a conversation with yourself"})
		return
	}

	if _, err := h.participantRepo.Get(c.Request.Context(), req.OtherID); err != nil {
		respondRepoError(c, err, "participant not found")
		return
	}

	conv, err := h.conversationRepo.FindOrCreate(c.Request.Context(), selfID, req.OtherID)
	if err != nil {
		respondRepoError(c, err, "could not start conversation")
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversation_id": conv.ID})
}

// ListCandidates returns the participants the caller may start a new
// conversation with, filtered by role compatibility and existing
// conversations.
func (h *ConversationHandler) ListCandidates(c *gin.Context) {
	self, ok := middleware.ParticipantFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}

	candidates, err := h.conversationRepo.ListCandidates(c.Request.Context(), self.ID, self.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load candidates"})
		return
	}
	if candidates == nil {
		candidates = []models.Participant{}
	}

	c.JSON(http.StatusOK, gin.H{"candidates": candidates})
}

// GetMessages hydrates the full message history of a conversation, in log
// order, enriched with sender display names.
func (h *ConversationHandler) GetMessages(c *gin.Context) {
	conversationID, err := strconv.Atoi(c.Param("conversation_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}

	selfID := c.GetInt(middleware.ContextParticipantIDKey)
	member, err := h.conversationRepo.IsParticipant(c.Request.Context(), conversationID, selfID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify membership"})
		return
	}
	if !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a conversation member"})
		return
	}

	msgs, err := h.messageRepo.ListForConversation(c.Request.Context(), conversationID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	senderIDs := lo.Uniq(lo.Map(msgs, func(m models.Message, _ int) int { return m.SenderID }))
	senders, err := h.participantRepo.Bulk(c.Request.Context(), senderIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load senders"})
		return
	}
	nameByID := lo.SliceToMap(senders, func(p models.Participant) (int, string) { return p.ID, p.DisplayName })

	type messageResponse struct {
		models.Message
		SenderName string `json:"sender_name,omitempty"`
	}

	resp := make([]messageResponse, 0, len(msgs))
	for _, m := range msgs {
		resp = append(resp, messageResponse{Message: m, SenderName: nameByID[m.SenderID]})
	}

	c.JSON(http.StatusOK, gin.H{"messages": resp})
}

// PostMessage appends a message to the conversation log and fans it out to
// live subscribers.
func (h *ConversationHandler) PostMessage(c *gin.Context) {
	conversationID, err := strconv.Atoi(c.Param("conversation_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}

	selfID := c.GetInt(middleware.ContextParticipantIDKey)
	conv, err := h.conversationRepo.Get(c.Request.Context(), conversationID)
	if err != nil {
		respondRepoError(c, err, "conversation not found")
		return
	}
	if !conv.HasParticipant(selfID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a conversation member"})
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message content must not be empty"})
		return
	}

	msg, err := h.messageRepo.Create(c.Request.Context(), conversationID, selfID, content)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store message"})
		return
	}

	h.hub.BroadcastMessage(conversationID, msg)
	c.JSON(http.StatusCreated, msg)
}
