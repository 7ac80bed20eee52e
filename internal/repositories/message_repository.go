package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"careerbridge-service/internal/models"
)

// MessageRepository is the append-only message log. There is no update or
// delete path: messages are immutable once written.
type MessageRepository interface {
	Create(ctx context.Context, conversationID int, senderID int, content string) (models.Message, error)
	ListForConversation(ctx context.Context, conversationID int) ([]models.Message, error)
}

// MessageRepo is a sqlx implementation of MessageRepository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs a MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// Create appends a message with a server-assigned timestamp. The serial id
// breaks timestamp ties, giving the log a stable total order.
func (r *MessageRepo) Create(ctx context.Context, conversationID int, senderID int, content string) (models.Message, error) {
	var msg models.Message
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO messages (conversation_id, sender_id, content) VALUES ($1, $2, $3)
         RETURNING id, conversation_id, sender_id, content, created_at`,
		conversationID, senderID, content).StructScan(&msg)
	return msg, err
}

// ListForConversation returns the full log in (created_at, id) order. Callers
// hydrate once from here and follow the live tail over the websocket hub.
func (r *MessageRepo) ListForConversation(ctx context.Context, conversationID int) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs,
		`SELECT id, conversation_id, sender_id, content, created_at
         FROM messages
         WHERE conversation_id=$1
         ORDER BY created_at ASC, id ASC`,
		conversationID)
	return msgs, err
}
