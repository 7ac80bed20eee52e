package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"careerbridge-service/internal/models"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrSelfConversation     = errors.New("cannot start a conversation with yourself")
)

// ConversationRepository is the conversation directory: exactly one durable
// conversation per unordered participant pair.
type ConversationRepository interface {
	FindOrCreate(ctx context.Context, selfID int, otherID int) (models.Conversation, error)
	Get(ctx context.Context, conversationID int) (models.Conversation, error)
	IsParticipant(ctx context.Context, conversationID int, participantID int) (bool, error)
	ListSummaries(ctx context.Context, selfID int) ([]models.ConversationSummary, error)
	ListCandidates(ctx context.Context, selfID int, selfRole models.Role) ([]models.Participant, error)
}

// ConversationRepo is a sqlx implementation of ConversationRepository.
type ConversationRepo struct {
	db *sqlx.DB
}

// NewConversationRepo constructs a ConversationRepo.
func NewConversationRepo(db *sqlx.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

// FindOrCreate returns the conversation for the pair, creating it on first
// contact. The pair is normalized to ascending order so both orientations hit
// the same row, and the insert goes through ON CONFLICT DO NOTHING so two
// concurrent callers cannot create duplicates: the loser of the race gets no
// row back and re-reads the winner's.
func (r *ConversationRepo) FindOrCreate(ctx context.Context, selfID int, otherID int) (models.Conversation, error) {
	if selfID == otherID {
		return models.Conversation{}, ErrSelfConversation
	}
	user1, user2 := selfID, otherID
	if user1 > user2 {
		user1, user2 = user2, user1
	}

	var conv models.Conversation
	const selectQuery = `SELECT id, user1_id, user2_id, created_at FROM conversations WHERE user1_id=$1 AND user2_id=$2`
	err := r.db.GetContext(ctx, &conv, selectQuery, user1, user2)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.Conversation{}, err
	}

	err = r.db.QueryRowxContext(ctx,
		`INSERT INTO conversations (user1_id, user2_id) VALUES ($1, $2)
         ON CONFLICT (user1_id, user2_id) DO NOTHING
         RETURNING id, user1_id, user2_id, created_at`,
		user1, user2).StructScan(&conv)
	if errors.Is(err, sql.ErrNoRows) {
		// Lost the race; the winner's row exists now.
		err = r.db.GetContext(ctx, &conv, selectQuery, user1, user2)
	}
	if err != nil {
		return models.Conversation{}, err
	}
	return conv, nil
}

// Get fetches a conversation by id.
func (r *ConversationRepo) Get(ctx context.Context, conversationID int) (models.Conversation, error) {
	var conv models.Conversation
	err := r.db.GetContext(ctx, &conv, `SELECT id, user1_id, user2_id, created_at FROM conversations WHERE id=$1`, conversationID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Conversation{}, ErrConversationNotFound
	}
	return conv, err
}

// IsParticipant checks whether a participant belongs to the conversation.
func (r *ConversationRepo) IsParticipant(ctx context.Context, conversationID int, participantID int) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM conversations WHERE id=$1 AND (user1_id=$2 OR user2_id=$2))`,
		conversationID, participantID)
	return exists, err
}

// ListSummaries returns the participant's conversations, most recent activity
// first. The counterpart's profile and the log tail are joined at read time,
// never stored on the conversation.
func (r *ConversationRepo) ListSummaries(ctx context.Context, selfID int) ([]models.ConversationSummary, error) {
	const query = `
        SELECT c.id,
               CASE WHEN c.user1_id=$1 THEN c.user2_id ELSE c.user1_id END AS other_id,
               p.display_name AS other_name,
               p.role AS other_role,
               lm.content AS last_message,
               c.created_at,
               COALESCE(lm.created_at, c.created_at) AS last_activity_at
        FROM conversations c
        JOIN participants p ON p.id = CASE WHEN c.user1_id=$1 THEN c.user2_id ELSE c.user1_id END
        LEFT JOIN LATERAL (
            SELECT m.content, m.created_at
            FROM messages m
            WHERE m.conversation_id = c.id
            ORDER BY m.created_at DESC, m.id DESC
            LIMIT 1
        ) lm ON TRUE
        WHERE c.user1_id=$1 OR c.user2_id=$1
        ORDER BY last_activity_at DESC`
	var out []models.ConversationSummary
	err := r.db.SelectContext(ctx, &out, query, selfID)
	return out, err
}

// ListCandidates returns the participants the caller may start a new
// conversation with: role-compatible counterparts not already sharing a
// conversation with the caller.
func (r *ConversationRepo) ListCandidates(ctx context.Context, selfID int, selfRole models.Role) ([]models.Participant, error) {
	candidateRoles := selfRole.CandidateRoles()
	if len(candidateRoles) == 0 {
		return []models.Participant{}, nil
	}
	roles := make([]string, 0, len(candidateRoles))
	for _, role := range candidateRoles {
		roles = append(roles, string(role))
	}

	const query = `
        SELECT p.id, p.display_name, p.role, p.created_at
        FROM participants p
        WHERE p.role = ANY($2)
          AND p.id <> $1
          AND NOT EXISTS (
              SELECT 1 FROM conversations c
              WHERE c.user1_id = LEAST($1, p.id) AND c.user2_id = GREATEST($1, p.id)
          )
        ORDER BY p.display_name, p.id`
	var out []models.Participant
	err := r.db.SelectContext(ctx, &out, query, selfID, pq.Array(roles))
	return out, err
}
