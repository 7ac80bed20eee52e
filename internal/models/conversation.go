package models

import "time"

// Conversation is the single durable chat between an unordered pair of
// participants. User1ID/User2ID are stored in ascending order so the
// UNIQUE(user1_id, user2_id) constraint covers both orientations.
type Conversation struct {
	ID        int       `db:"id" json:"id"`
	User1ID   int       `db:"user1_id" json:"user1_id"`
	User2ID   int       `db:"user2_id" json:"user2_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// HasParticipant reports whether the participant belongs to the conversation.
func (c Conversation) HasParticipant(participantID int) bool {
	return c.User1ID == participantID || c.User2ID == participantID
}

// OtherParticipant returns the counterpart of the given participant.
func (c Conversation) OtherParticipant(participantID int) int {
	if c.User1ID == participantID {
		return c.User2ID
	}
	return c.User1ID
}

// ConversationSummary is the read-model row for a participant's conversation
// list: the counterpart's profile fields plus the current tail of the message
// log, resolved at read time.
type ConversationSummary struct {
	ConversationID int       `db:"id" json:"conversation_id"`
	OtherID        int       `db:"other_id" json:"other_id"`
	OtherName      string    `db:"other_name" json:"other_name"`
	OtherRole      Role      `db:"other_role" json:"other_role"`
	LastMessage    *string   `db:"last_message" json:"last_message,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	LastActivityAt time.Time `db:"last_activity_at" json:"last_activity_at"`
}
