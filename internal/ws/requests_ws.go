package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"careerbridge-service/internal/middleware"
	"careerbridge-service/internal/observability"
	"careerbridge-service/internal/repositories"
)

// RequestsWebSocketHandler subscribes a participant to their own interview
// request inbox topic. There is no resource id in the route: the topic is the
// authenticated identity.
type RequestsWebSocketHandler struct {
	hub             *Hub
	participantRepo repositories.ParticipantRepository
	jwtSecret       string
}

// NewRequestsWebSocketHandler constructs a RequestsWebSocketHandler.
func NewRequestsWebSocketHandler(hub *Hub, participantRepo repositories.ParticipantRepository, jwtSecret string) *RequestsWebSocketHandler {
	return &RequestsWebSocketHandler{hub: hub, participantRepo: participantRepo, jwtSecret: jwtSecret}
}

// Handle authenticates, upgrades and parks the connection on the caller's
// inbox topic.
func (h *RequestsWebSocketHandler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("careerbridge-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	participant, err := middleware.ResolveParticipant(ctx, tokenFromRequest(c), h.jwtSecret, h.participantRepo)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
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
	h.hub.AddRequestClient(participant.ID, conn, info)
	announceConnect(ctx, KindRequests, participant.ID, info)

	go func() {
		var closeReason string
		defer func() {
			h.hub.RemoveRequestClient(participant.ID, conn)
			announceDisconnect(ctx, KindRequests, participant.ID, info, closeReason)
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				closeReason = err.Error()
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					announceError(ctx, KindRequests, participant.ID, info, closeReason)
				}
				return
			}
		}
	}()
}

func announceConnect(ctx context.Context, kind string, topicID int, info ConnInfo) {
	observability.IncWSActive(kind)
	observability.IncWSEvent(kind, "ws_connect")
	_ = observability.PublishEvent(ctx, wsRoutingKey(kind), observability.EventEnvelope{
		EventType: "ws_events",
		EventName: "ws_connect",
		Payload:   wsEventPayload(kind, topicID, "ws_connect", info, 0, ""),
	}, observability.BuildHeaders(info.RequestID, info.TraceID))
}

func announceDisconnect(ctx context.Context, kind string, topicID int, info ConnInfo, reason string) {
	observability.DecWSActive(kind)
	observability.IncWSEvent(kind, "ws_disconnect")
	_ = observability.PublishEvent(ctx, wsRoutingKey(kind), observability.EventEnvelope{
		EventType: "ws_events",
		EventName: "ws_disconnect",
		Payload:   wsEventPayload(kind, topicID, "ws_disconnect", info, time.Since(info.ConnectedAt), reason),
	}, observability.BuildHeaders(info.RequestID, info.TraceID))
}

func announceError(ctx context.Context, kind string, topicID int, info ConnInfo, reason string) {
	observability.IncWSEvent(kind, "ws_error")
	_ = observability.PublishEvent(ctx, wsRoutingKey(kind), observability.EventEnvelope{
		EventType: "ws_events",
		EventName: "ws_error",
		Payload:   wsEventPayload(kind, topicID, "ws_error", info, time.Since(info.ConnectedAt), reason),
	}, observability.BuildHeaders(info.RequestID, info.TraceID))
}
