package models

import "time"

// RequestStatus is the state of an interview request.
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusAccepted RequestStatus = "accepted"
	StatusRejected RequestStatus = "rejected"
)

// TerminalStatus reports whether the status admits no further transitions.
func (s RequestStatus) TerminalStatus() bool {
	return s == StatusAccepted || s == StatusRejected
}

// CanTransitionTo reports whether the state machine allows moving from s to
// target. Only pending requests move, and only to accepted or rejected.
func (s RequestStatus) CanTransitionTo(target RequestStatus) bool {
	return s == StatusPending && (target == StatusAccepted || target == StatusRejected)
}

// InterviewRequest is sent by a job giver to a student. Unlike conversations
// there is no uniqueness across the pair, except that at most one request may
// be pending between the same pair at a time.
type InterviewRequest struct {
	ID         int           `db:"id" json:"id"`
	JobGiverID int           `db:"job_giver_id" json:"job_giver_id"`
	StudentID  int           `db:"student_id" json:"student_id"`
	Message    string        `db:"message" json:"message"`
	Status     RequestStatus `db:"status" json:"status"`
	CreatedAt  time.Time     `db:"created_at" json:"created_at"`
}

// EnrichedRequest joins an interview request with the display fields both
// roles need to render it.
type EnrichedRequest struct {
	InterviewRequest
	JobGiverName    string  `db:"job_giver_name" json:"job_giver_name"`
	JobGiverCompany *string `db:"job_giver_company" json:"job_giver_company,omitempty"`
	StudentName     string  `db:"student_name" json:"student_name"`
}

// RequestEvent is broadcast to a participant's interview-request inbox topic.
type RequestEvent struct {
	Type    string            `json:"type"`
	Request *InterviewRequest `json:"request,omitempty"`
}
