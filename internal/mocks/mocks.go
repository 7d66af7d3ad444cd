package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"afribase-messaging/internal/models"
	"afribase-messaging/internal/presence"
	"afribase-messaging/internal/repositories"
)

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) Append(ctx context.Context, conversationKey, senderID, kind string, payload models.Payload) (models.Message, error) {
	args := m.Called(ctx, conversationKey, senderID, kind, payload)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) Get(ctx context.Context, conversationKey string, messageID int64) (models.Message, error) {
	args := m.Called(ctx, conversationKey, messageID)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) MarkSeen(ctx context.Context, conversationKey string, messageID int64, readerID string) (bool, error) {
	args := m.Called(ctx, conversationKey, messageID, readerID)
	return args.Bool(0), args.Error(1)
}

func (m *MessageRepositoryMock) MarkAllSeen(ctx context.Context, conversationKey, readerID string) ([]models.Message, error) {
	args := m.Called(ctx, conversationKey, readerID)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) Delete(ctx context.Context, conversationKey string, messageID int64, requesterID string) error {
	args := m.Called(ctx, conversationKey, messageID, requesterID)
	return args.Error(0)
}

func (m *MessageRepositoryMock) List(ctx context.Context, conversationKey string) ([]models.Message, error) {
	args := m.Called(ctx, conversationKey)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

type InboxRepositoryMock struct {
	mock.Mock
}

func (m *InboxRepositoryMock) Recompute(ctx context.Context, userID, conversationKey string) (*models.InboxEntry, error) {
	args := m.Called(ctx, userID, conversationKey)
	var entry *models.InboxEntry
	if val := args.Get(0); val != nil {
		entry = val.(*models.InboxEntry)
	}
	return entry, args.Error(1)
}

func (m *InboxRepositoryMock) List(ctx context.Context, userID string) ([]models.InboxEntry, error) {
	args := m.Called(ctx, userID)
	var entries []models.InboxEntry
	if val := args.Get(0); val != nil {
		entries = val.([]models.InboxEntry)
	}
	return entries, args.Error(1)
}

type TrackerMock struct {
	mock.Mock
}

func (m *TrackerMock) SetTyping(ctx context.Context, conversationKey, userID string, isTyping bool) error {
	args := m.Called(ctx, conversationKey, userID, isTyping)
	return args.Error(0)
}

func (m *TrackerMock) IsTyping(ctx context.Context, conversationKey, userID string) (bool, error) {
	args := m.Called(ctx, conversationKey, userID)
	return args.Bool(0), args.Error(1)
}

func (m *TrackerMock) Close() error {
	args := m.Called()
	return args.Error(0)
}

type BroadcasterMock struct {
	mock.Mock
}

func (m *BroadcasterMock) BroadcastConversation(conversationKey string, event models.ConversationEvent) {
	m.Called(conversationKey, event)
}

func (m *BroadcasterMock) BroadcastInbox(userID string, event models.InboxEvent) {
	m.Called(userID, event)
}

var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ repositories.InboxRepository = (*InboxRepositoryMock)(nil)
var _ presence.Tracker = (*TrackerMock)(nil)
