package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionTo(t *testing.T) {
	cases := []struct {
		name    string
		from    RequestStatus
		to      RequestStatus
		allowed bool
	}{
		{"pending to accepted", StatusPending, StatusAccepted, true},
		{"pending to rejected", StatusPending, StatusRejected, true},
		{"pending to pending", StatusPending, StatusPending, false},
		{"accepted to rejected", StatusAccepted, StatusRejected, false},
		{"accepted to accepted", StatusAccepted, StatusAccepted, false},
		{"rejected to accepted", StatusRejected, StatusAccepted, false},
		{"rejected to pending", StatusRejected, StatusPending, false},
		{"unknown to accepted", RequestStatus("archived"), StatusAccepted, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to))
		})
	}
}

func TestTerminalStatus(t *testing.T) {
	assert.False(t, StatusPending.TerminalStatus())
	assert.True(t, StatusAccepted.TerminalStatus())
	assert.True(t, StatusRejected.TerminalStatus())
	assert.False(t, RequestStatus("archived").TerminalStatus())
}

func TestCandidateRoles(t *testing.T) {
	assert.ElementsMatch(t, []Role{RoleJobGiver, RoleMentor}, RoleStudent.CandidateRoles())
	assert.ElementsMatch(t, []Role{RoleStudent}, RoleJobGiver.CandidateRoles())
	assert.ElementsMatch(t, []Role{RoleStudent}, RoleMentor.CandidateRoles())
}

func TestConversationHasParticipant(t *testing.T) {
	conv := Conversation{ID: 1, User1ID: 3, User2ID: 8}
	assert.True(t, conv.HasParticipant(3))
	assert.True(t, conv.HasParticipant(8))
	assert.False(t, conv.HasParticipant(5))
	assert.Equal(t, 8, conv.OtherParticipant(3))
	assert.Equal(t, 3, conv.OtherParticipant(8))
}
