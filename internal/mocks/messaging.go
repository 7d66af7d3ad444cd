package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"afribase-messaging/internal/models"
)

// MessagingMock mocks the service facade for handler tests.
type MessagingMock struct {
	mock.Mock
}

func (m *MessagingMock) Send(ctx context.Context, senderID, recipientID, kind string, payload models.Payload) (models.Message, error) {
	args := m.Called(ctx, senderID, recipientID, kind, payload)
	return args.Get(0).(models.Message), args.Error(1)
}

func (m *MessagingMock) MarkRead(ctx context.Context, readerID, conversationKey string) ([]models.Message, error) {
	args := m.Called(ctx, readerID, conversationKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}

func (m *MessagingMock) MarkMessageSeen(ctx context.Context, readerID, conversationKey string, messageID int64) (bool, error) {
	args := m.Called(ctx, readerID, conversationKey, messageID)
	return args.Bool(0), args.Error(1)
}

func (m *MessagingMock) DeleteMessage(ctx context.Context, requesterID, conversationKey string, messageID int64) error {
	args := m.Called(ctx, requesterID, conversationKey, messageID)
	return args.Error(0)
}

func (m *MessagingMock) History(ctx context.Context, userID, conversationKey string) ([]models.Message, error) {
	args := m.Called(ctx, userID, conversationKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}

func (m *MessagingMock) SetTyping(ctx context.Context, userID, conversationKey string, isTyping bool) error {
	args := m.Called(ctx, userID, conversationKey, isTyping)
	return args.Error(0)
}

func (m *MessagingMock) PeerTyping(ctx context.Context, userID, conversationKey string) (bool, error) {
	args := m.Called(ctx, userID, conversationKey)
	return args.Bool(0), args.Error(1)
}

func (m *MessagingMock) Inbox(ctx context.Context, userID string) ([]models.InboxEntry, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.InboxEntry), args.Error(1)
}

// UploaderMock mocks the object storage client.
type UploaderMock struct {
	mock.Mock
}

func (m *UploaderMock) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	args := m.Called(ctx, key, contentType, body)
	return args.String(0), args.Error(1)
}
