package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"careerbridge-service/internal/models"
)

var (
	ErrRequestNotFound   = errors.New("interview request not found")
	ErrNotRequestStudent = errors.New("only the requested student may change the status")
	ErrIllegalTransition = errors.New("request is no longer pending")
	ErrDuplicatePending  = errors.New("a pending request for this student already exists")
)

const uniqueViolation = "23505"

// InterviewRequestRepository owns the request state machine:
// pending -> accepted | rejected, moved only by the referenced student.
type InterviewRequestRepository interface {
	Create(ctx context.Context, jobGiverID int, studentID int, message string) (models.InterviewRequest, error)
	Get(ctx context.Context, requestID int) (models.InterviewRequest, error)
	UpdateStatus(ctx context.Context, requestID int, newStatus models.RequestStatus, callerID int) (models.InterviewRequest, error)
	ListForParticipant(ctx context.Context, participantID int, role models.Role) ([]models.EnrichedRequest, error)
}

// InterviewRequestRepo is a sqlx implementation of InterviewRequestRepository.
type InterviewRequestRepo struct {
	db *sqlx.DB
}

// NewInterviewRequestRepo constructs an InterviewRequestRepo.
func NewInterviewRequestRepo(db *sqlx.DB) *InterviewRequestRepo {
	return &InterviewRequestRepo{db: db}
}

// Create inserts a new pending request. The partial unique index on
// (job_giver_id, student_id) WHERE status='pending' rejects a second pending
// request for the same pair.
func (r *InterviewRequestRepo) Create(ctx context.Context, jobGiverID int, studentID int, message string) (models.InterviewRequest, error) {
	var req models.InterviewRequest
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO interview_requests (job_giver_id, student_id, message) VALUES ($1, $2, $3)
         RETURNING id, job_giver_id, student_id, message, status, created_at`,
		jobGiverID, studentID, message).StructScan(&req)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return models.InterviewRequest{}, ErrDuplicatePending
	}
	if err != nil {
		return models.InterviewRequest{}, err
	}
	return req, nil
}

// Get fetches a request by id.
func (r *InterviewRequestRepo) Get(ctx context.Context, requestID int) (models.InterviewRequest, error) {
	var req models.InterviewRequest
	err := r.db.GetContext(ctx, &req,
		`SELECT id, job_giver_id, student_id, message, status, created_at FROM interview_requests WHERE id=$1`,
		requestID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.InterviewRequest{}, ErrRequestNotFound
	}
	return req, err
}

// UpdateStatus moves a pending request to accepted or rejected in a single
// conditional UPDATE, so concurrent transitions cannot both win. When the
// update matches no row, the current row is re-read to tell not-found,
// wrong-caller and already-decided apart.
func (r *InterviewRequestRepo) UpdateStatus(ctx context.Context, requestID int, newStatus models.RequestStatus, callerID int) (models.InterviewRequest, error) {
	if !models.StatusPending.CanTransitionTo(newStatus) {
		return models.InterviewRequest{}, ErrIllegalTransition
	}

	var req models.InterviewRequest
	err := r.db.QueryRowxContext(ctx,
		`UPDATE interview_requests SET status=$1
         WHERE id=$2 AND student_id=$3 AND status='pending'
         RETURNING id, job_giver_id, student_id, message, status, created_at`,
		newStatus, requestID, callerID).StructScan(&req)
	if err == nil {
		return req, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.InterviewRequest{}, err
	}

	current, getErr := r.Get(ctx, requestID)
	if getErr != nil {
		return models.InterviewRequest{}, getErr
	}
	if current.StudentID != callerID {
		return models.InterviewRequest{}, ErrNotRequestStudent
	}
	return models.InterviewRequest{}, fmt.Errorf("%w: status is %s", ErrIllegalTransition, current.Status)
}

// ListForParticipant returns the participant's requests enriched with the
// counterpart display fields, newest first. Students see requests addressed
// to them, job givers the ones they authored.
func (r *InterviewRequestRepo) ListForParticipant(ctx context.Context, participantID int, role models.Role) ([]models.EnrichedRequest, error) {
	filter := `r.student_id=$1`
	if role == models.RoleJobGiver {
		filter = `r.job_giver_id=$1`
	}

	query := `
        SELECT r.id, r.job_giver_id, r.student_id, r.message, r.status, r.created_at,
               jg.display_name AS job_giver_name,
               jgp.company_name AS job_giver_company,
               st.display_name AS student_name
        FROM interview_requests r
        JOIN participants jg ON jg.id = r.job_giver_id
        JOIN participants st ON st.id = r.student_id
        LEFT JOIN job_giver_profiles jgp ON jgp.participant_id = r.job_giver_id
        WHERE ` + filter + `
        ORDER BY r.created_at DESC, r.id DESC`
	var out []models.EnrichedRequest
	err := r.db.SelectContext(ctx, &out, query, participantID)
	return out, err
}
