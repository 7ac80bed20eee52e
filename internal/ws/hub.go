package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"careerbridge-service/internal/models"
	"careerbridge-service/internal/observability"
)

// Hub maintains the live subscriber registry for two topic families:
// conversation topics, keyed by conversation id, and interview-request inbox
// topics, keyed by participant id. Add/remove run concurrently with
// broadcasts; events for the same topic go out in commit order because
// handlers broadcast synchronously after the store write.
type Hub struct {
	conversationRooms map[int]map[*websocket.Conn]bool
	requestInboxes    map[int]map[*websocket.Conn]bool
	convConnInfo      map[int]map[*websocket.Conn]ConnInfo
	inboxConnInfo     map[int]map[*websocket.Conn]ConnInfo
	// One writer at a time per connection; concurrent broadcasts for the
	// same topic serialize here instead of racing the gorilla conn.
	writeLocks map[*websocket.Conn]*sync.Mutex
	mu         sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		conversationRooms: make(map[int]map[*websocket.Conn]bool),
		requestInboxes:    make(map[int]map[*websocket.Conn]bool),
		convConnInfo:      make(map[int]map[*websocket.Conn]ConnInfo),
		inboxConnInfo:     make(map[int]map[*websocket.Conn]ConnInfo),
		writeLocks:        make(map[*websocket.Conn]*sync.Mutex),
	}
}

// AddConversationClient subscribes a connection to a conversation topic.
func (h *Hub) AddConversationClient(conversationID int, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conversationRooms[conversationID]; !ok {
		h.conversationRooms[conversationID] = make(map[*websocket.Conn]bool)
	}
	h.conversationRooms[conversationID][conn] = true
	if _, ok := h.convConnInfo[conversationID]; !ok {
		h.convConnInfo[conversationID] = make(map[*websocket.Conn]ConnInfo)
	}
	h.convConnInfo[conversationID][conn] = info
	if _, ok := h.writeLocks[conn]; !ok {
		h.writeLocks[conn] = &sync.Mutex{}
	}
}

// RemoveConversationClient unsubscribes a connection. No events are delivered
// to it after this returns.
func (h *Hub) RemoveConversationClient(conversationID int, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeConn(h.conversationRooms, h.convConnInfo, conversationID, conn)
}

// AddRequestClient subscribes a connection to a participant's interview
// request inbox.
func (h *Hub) AddRequestClient(participantID int, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.requestInboxes[participantID]; !ok {
		h.requestInboxes[participantID] = make(map[*websocket.Conn]bool)
	}
	h.requestInboxes[participantID][conn] = true
	if _, ok := h.inboxConnInfo[participantID]; !ok {
		h.inboxConnInfo[participantID] = make(map[*websocket.Conn]ConnInfo)
	}
	h.inboxConnInfo[participantID][conn] = info
	if _, ok := h.writeLocks[conn]; !ok {
		h.writeLocks[conn] = &sync.Mutex{}
	}
}

// RemoveRequestClient unsubscribes a connection from the inbox topic.
func (h *Hub) RemoveRequestClient(participantID int, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeConn(h.requestInboxes, h.inboxConnInfo, participantID, conn)
}

func (h *Hub) removeConn(rooms map[int]map[*websocket.Conn]bool, infos map[int]map[*websocket.Conn]ConnInfo, key int, conn *websocket.Conn) {
	if conns, ok := rooms[key]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(rooms, key)
		}
	}
	if connInfos, ok := infos[key]; ok {
		delete(connInfos, conn)
		if len(connInfos) == 0 {
			delete(infos, key)
		}
	}
	delete(h.writeLocks, conn)
}

// BroadcastMessage delivers a newly appended message to every subscriber of
// the conversation topic. A failed write closes and removes that connection
// only; the remaining subscribers still get the event.
func (h *Hub) BroadcastMessage(conversationID int, msg models.Message) {
	targets := h.snapshot(h.conversationRooms, conversationID)

	event := models.ConversationEvent{Type: "message", Message: &msg}
	payload, _ := json.Marshal(event)
	for _, t := range targets {
		if err := t.write(payload); err != nil {
			log.Printf("websocket write error: %v", err)
			h.publishWSError(KindConversation, conversationID, t.conn, err)
			t.conn.Close()
			h.RemoveConversationClient(conversationID, t.conn)
		}
	}
}

// BroadcastRequestEvent delivers a request created/updated event to every
// subscriber of the participant's inbox topic.
func (h *Hub) BroadcastRequestEvent(participantID int, eventType string, req models.InterviewRequest) {
	targets := h.snapshot(h.requestInboxes, participantID)

	event := models.RequestEvent{Type: eventType, Request: &req}
	payload, _ := json.Marshal(event)
	for _, t := range targets {
		if err := t.write(payload); err != nil {
			log.Printf("websocket write error: %v", err)
			h.publishWSError(KindRequests, participantID, t.conn, err)
			t.conn.Close()
			h.RemoveRequestClient(participantID, t.conn)
		}
	}
}

type writeTarget struct {
	conn *websocket.Conn
	lock *sync.Mutex
}

func (t writeTarget) write(payload []byte) error {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.conn.WriteMessage(websocket.TextMessage, payload)
}

func (h *Hub) snapshot(rooms map[int]map[*websocket.Conn]bool, key int) []writeTarget {
	h.mu.RLock()
	defer h.mu.RUnlock()
	targets := make([]writeTarget, 0, len(rooms[key]))
	for conn := range rooms[key] {
		lock, ok := h.writeLocks[conn]
		if !ok {
			continue
		}
		targets = append(targets, writeTarget{conn: conn, lock: lock})
	}
	return targets
}

func (h *Hub) publishWSError(kind string, topicID int, conn *websocket.Conn, err error) {
	info, ok := h.getConnInfo(kind, topicID, conn)
	if !ok {
		return
	}

	headers := observability.BuildHeaders(info.RequestID, info.TraceID)
	_ = observability.PublishEvent(context.Background(), wsRoutingKey(kind), observability.EventEnvelope{
		EventType: "ws_events",
		EventName: "ws_error",
		Payload:   wsEventPayload(kind, topicID, "ws_error", info, time.Since(info.ConnectedAt), err.Error()),
	}, headers)
	observability.IncWSEvent(kind, "ws_error")
}

func (h *Hub) getConnInfo(kind string, topicID int, conn *websocket.Conn) (ConnInfo, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	infos := h.inboxConnInfo[topicID]
	if kind == KindConversation {
		infos = h.convConnInfo[topicID]
	}
	info, exists := infos[conn]
	return info, exists
}

func wsRoutingKey(kind string) string {
	if kind == KindRequests {
		return "ws_events.interview_requests"
	}
	return "ws_events.conversations"
}
