package models

import "time"

// Role classifies a participant on the platform.
type Role string

const (
	RoleStudent  Role = "student"
	RoleJobGiver Role = "job_giver"
	RoleMentor   Role = "mentor"
)

// Valid reports whether the role is one of the known platform roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleJobGiver, RoleMentor:
		return true
	}
	return false
}

// CandidateRoles returns the roles a participant with this role may start a
// conversation with. Students reach out to job givers and mentors; job givers
// and mentors reach out to students.
func (r Role) CandidateRoles() []Role {
	switch r {
	case RoleStudent:
		return []Role{RoleJobGiver, RoleMentor}
	case RoleJobGiver, RoleMentor:
		return []Role{RoleStudent}
	}
	return nil
}

// Participant is the stable identity every core operation works against.
// Immutable once created; owned by the participants store.
type Participant struct {
	ID          int       `db:"id" json:"id"`
	DisplayName string    `db:"display_name" json:"display_name"`
	Role        Role      `db:"role" json:"role"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
