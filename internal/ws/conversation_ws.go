package ws

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"careerbridge-service/internal/middleware"
	"careerbridge-service/internal/observability"
	"careerbridge-service/internal/repositories"
)

// ConversationWebSocketHandler subscribes viewers to a conversation topic.
type ConversationWebSocketHandler struct {
	hub              *Hub
	conversationRepo repositories.ConversationRepository
	participantRepo  repositories.ParticipantRepository
	jwtSecret        string
}

// NewConversationWebSocketHandler constructs a ConversationWebSocketHandler.
func NewConversationWebSocketHandler(hub *Hub, conversationRepo repositories.ConversationRepository, participantRepo repositories.ParticipantRepository, jwtSecret string) *ConversationWebSocketHandler {
	return &ConversationWebSocketHandler{
		hub:              hub,
		conversationRepo: conversationRepo,
		participantRepo:  participantRepo,
		jwtSecret:        jwtSecret,
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle authenticates, checks membership, upgrades the connection and parks
// it on the conversation topic until the client goes away.
func (h *ConversationWebSocketHandler) Handle(c *gin.Context) {
	conversationID, err := strconv.Atoi(c.Param("conversation_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}

	ctx, span := otel.Tracer("careerbridge-service/ws").Start(c.Request.Context(), "ws.handshake",
		trace.WithAttributes(attribute.Int("conversation.id", conversationID)))
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	participant, err := middleware.ResolveParticipant(ctx, tokenFromRequest(c), h.jwtSecret, h.participantRepo)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	member, err := h.conversationRepo.IsParticipant(ctx, conversationID, participant.ID)
	if err != nil || !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized for conversation"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	info := ConnInfo{
		ConnID:        newConnID(),
		ParticipantID: participant.ID,
		DeviceID:      observability.DeviceIDFromRequest(c.Request),
		IP:            observability.IPFromRequest(c.Request),
		RequestID:     observability.RequestIDFromRequest(c.Request),
		TraceID:       span.SpanContext().TraceID().String(),
		ConnectedAt:   time.Now(),
	}
	h.hub.AddConversationClient(conversationID, conn, info)
	announceConnect(ctx, KindConversation, conversationID, info)

	go func() {
		var closeReason string
		defer func() {
			h.hub.RemoveConversationClient(conversationID, conn)
			announceDisconnect(ctx, KindConversation, conversationID, info, closeReason)
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				closeReason = err.Error()
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					announceError(ctx, KindConversation, conversationID, info, closeReason)
				}
				return
			}
		}
	}()
}

func tokenFromRequest(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		return bearerToken(header)
	}
	return c.Query("token")
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && header[:len(prefix)] == prefix {
		return header[len(prefix):]
	}
	return ""
}
