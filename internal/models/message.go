package models

import "time"

// Message is an append-only entry in a conversation's log. Messages are never
// edited or deleted; the total order within a conversation is
// (created_at, id) with the serial id breaking timestamp ties.
type Message struct {
	ID             int       `db:"id" json:"id"`
	ConversationID int       `db:"conversation_id" json:"conversation_id"`
	SenderID       int       `db:"sender_id" json:"sender_id"`
	Content        string    `db:"content" json:"content"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// ConversationEvent is broadcast through the websocket hub to subscribers of
// a conversation topic.
type ConversationEvent struct {
	Type    string   `json:"type"`
	Message *Message `json:"message,omitempty"`
}
