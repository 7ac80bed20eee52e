package ws

import (
	"time"

	"github.com/google/uuid"
)

// Topic kinds, used for metrics labels and event routing keys.
const (
	KindConversation = "conversation"
	KindRequests     = "interview_requests"
)

// ConnInfo carries per-connection identity and trace metadata so the hub can
// attribute write failures after the handshake span is gone.
type ConnInfo struct {
	ConnID        string
	ParticipantID int
	DeviceID      string
	IP            string
	RequestID     string
	TraceID       string
	ConnectedAt   time.Time
}

func newConnID() string {
	return uuid.NewString()
}

func wsEventPayload(kind string, topicID int, event string, info ConnInfo, duration time.Duration, reason string) map[string]interface{} {
	return map[string]interface{}{
		"ws": map[string]interface{}{
			"kind":        kind,
			"topic_id":    topicID,
			"event":       event,
			"conn_id":     info.ConnID,
			"duration_ms": duration.Milliseconds(),
			"reason":      reason,
		},
		"identity": map[string]interface{}{
			"participant_id": info.ParticipantID,
			"device_id":      info.DeviceID,
			"ip":             info.IP,
		},
	}
}
