package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"careerbridge-service/internal/models"
	"careerbridge-service/internal/repositories"
)

type ParticipantRepositoryMock struct {
	mock.Mock
}

func (m *ParticipantRepositoryMock) Get(ctx context.Context, participantID int) (models.Participant, error) {
	args := m.Called(ctx, participantID)
	var p models.Participant
	if val := args.Get(0); val != nil {
		p = val.(models.Participant)
	}
	return p, args.Error(1)
}

func (m *ParticipantRepositoryMock) Bulk(ctx context.Context, participantIDs []int) ([]models.Participant, error) {
	args := m.Called(ctx, participantIDs)
	var out []models.Participant
	if val := args.Get(0); val != nil {
		out = val.([]models.Participant)
	}
	return out, args.Error(1)
}

type ConversationRepositoryMock struct {
	mock.Mock
}

func (m *ConversationRepositoryMock) FindOrCreate(ctx context.Context, selfID int, otherID int) (models.Conversation, error) {
	args := m.Called(ctx, selfID, otherID)
	var conv models.Conversation
	if val := args.Get(0); val != nil {
		conv = val.(models.Conversation)
	}
	return conv, args.Error(1)
}

func (m *ConversationRepositoryMock) Get(ctx context.Context, conversationID int) (models.Conversation, error) {
	args := m.Called(ctx, conversationID)
	var conv models.Conversation
	if val := args.Get(0); val != nil {
		conv = val.(models.Conversation)
	}
	return conv, args.Error(1)
}

func (m *ConversationRepositoryMock) IsParticipant(ctx context.Context, conversationID int, participantID int) (bool, error) {
	args := m.Called(ctx, conversationID, participantID)
	return args.Bool(0), args.Error(1)
}

func (m *ConversationRepositoryMock) ListSummaries(ctx context.Context, selfID int) ([]models.ConversationSummary, error) {
	args := m.Called(ctx, selfID)
	var out []models.ConversationSummary
	if val := args.Get(0); val != nil {
		out = val.([]models.ConversationSummary)
	}
	return out, args.Error(1)
}

func (m *ConversationRepositoryMock) ListCandidates(ctx context.Context, selfID int, selfRole models.Role) ([]models.Participant, error) {
	args := m.Called(ctx, selfID, selfRole)
	var out []models.Participant
	if val := args.Get(0); val != nil {
		out = val.([]models.Participant)
	}
	return out, args.Error(1)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) Create(ctx context.Context, conversationID int, senderID int, content string) (models.Message, error) {
	args := m.Called(ctx, conversationID, senderID, content)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) ListForConversation(ctx context.Context, conversationID int) ([]models.Message, error) {
	args := m.Called(ctx, conversationID)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

type InterviewRequestRepositoryMock struct {
	mock.Mock
}

func (m *InterviewRequestRepositoryMock) Create(ctx context.Context, jobGiverID int, studentID int, message string) (models.InterviewRequest, error) {
	args := m.Called(ctx, jobGiverID, studentID, message)
	var req models.InterviewRequest
	if val := args.Get(0); val != nil {
		req = val.(models.InterviewRequest)
	}
	return req, args.Error(1)
}

func (m *InterviewRequestRepositoryMock) Get(ctx context.Context, requestID int) (models.InterviewRequest, error) {
	args := m.Called(ctx, requestID)
	var req models.InterviewRequest
	if val := args.Get(0); val != nil {
		req = val.(models.InterviewRequest)
	}
	return req, args.Error(1)
}

func (m *InterviewRequestRepositoryMock) UpdateStatus(ctx context.Context, requestID int, newStatus models.RequestStatus, callerID int) (models.InterviewRequest, error) {
	args := m.Called(ctx, requestID, newStatus, callerID)
	var req models.InterviewRequest
	if val := args.Get(0); val != nil {
		req = val.(models.InterviewRequest)
	}
	return req, args.Error(1)
}

func (m *InterviewRequestRepositoryMock) ListForParticipant(ctx context.Context, participantID int, role models.Role) ([]models.EnrichedRequest, error) {
	args := m.Called(ctx, participantID, role)
	var out []models.EnrichedRequest
	if val := args.Get(0); val != nil {
		out = val.([]models.EnrichedRequest)
	}
	return out, args.Error(1)
}

var _ repositories.ParticipantRepository = (*ParticipantRepositoryMock)(nil)
var _ repositories.ConversationRepository = (*ConversationRepositoryMock)(nil)
var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ repositories.InterviewRequestRepository = (*InterviewRequestRepositoryMock)(nil)
