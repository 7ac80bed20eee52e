package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"careerbridge-service/internal/models"
)

var ErrParticipantNotFound = errors.New("participant not found")

// ParticipantRepository is the read-only surface of the participant store:
// stable identities plus the display fields the read models join against.
type ParticipantRepository interface {
	Get(ctx context.Context, participantID int) (models.Participant, error)
	Bulk(ctx context.Context, participantIDs []int) ([]models.Participant, error)
}

// ParticipantRepo is a sqlx implementation of ParticipantRepository.
type ParticipantRepo struct {
	db *sqlx.DB
}

// NewParticipantRepo constructs a ParticipantRepo.
func NewParticipantRepo(db *sqlx.DB) *ParticipantRepo {
	return &ParticipantRepo{db: db}
}

// Get fetches a participant by id.
func (r *ParticipantRepo) Get(ctx context.Context, participantID int) (models.Participant, error) {
	var p models.Participant
	err := r.db.GetContext(ctx, &p, `SELECT id, display_name, role, created_at FROM participants WHERE id=$1`, participantID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Participant{}, ErrParticipantNotFound
	}
	return p, err
}

// Bulk fetches multiple participants in one query.
func (r *ParticipantRepo) Bulk(ctx context.Context, participantIDs []int) ([]models.Participant, error) {
	if len(participantIDs) == 0 {
		return []models.Participant{}, nil
	}
	var out []models.Participant
	err := r.db.SelectContext(ctx, &out,
		`SELECT id, display_name, role, created_at FROM participants WHERE id = ANY($1)`,
		pq.Array(participantIDs))
	return out, err
}
