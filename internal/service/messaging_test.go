package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"afribase-messaging/internal/identity"
	"afribase-messaging/internal/mocks"
	"afribase-messaging/internal/models"
	"afribase-messaging/internal/repositories"
)

func newTestService() (*MessagingService, *mocks.MessageRepositoryMock, *mocks.InboxRepositoryMock, *mocks.TrackerMock, *mocks.BroadcasterMock) {
	messages := new(mocks.MessageRepositoryMock)
	inbox := new(mocks.InboxRepositoryMock)
	tracker := new(mocks.TrackerMock)
	hub := new(mocks.BroadcasterMock)
	return New(messages, inbox, tracker, hub), messages, inbox, tracker, hub
}

func TestSendAppendsClearsTypingAndNotifies(t *testing.T) {
	svc, messages, inbox, tracker, hub := newTestService()
	ctx := context.Background()

	payload := models.Payload{Text: "hi"}
	stored := models.Message{ID: 1, ConversationKey: "alice:bob", Seq: 1, SenderID: "alice", Kind: models.KindText, Body: "hi", State: models.StateSent}

	messages.On("Append", mock.Anything, "alice:bob", "alice", models.KindText, payload).Return(stored, nil).Once()
	tracker.On("SetTyping", mock.Anything, "alice:bob", "alice", false).Return(nil).Once()
	inbox.On("Recompute", mock.Anything, "alice", "alice:bob").Return(&models.InboxEntry{UserID: "alice"}, nil).Once()
	inbox.On("Recompute", mock.Anything, "bob", "alice:bob").Return(&models.InboxEntry{UserID: "bob", UnreadCount: 1}, nil).Once()
	hub.On("BroadcastInbox", "alice", mock.Anything).Once()
	hub.On("BroadcastInbox", "bob", mock.Anything).Once()
	hub.On("BroadcastConversation", "alice:bob", mock.MatchedBy(func(e models.ConversationEvent) bool {
		return e.Type == models.EventMessage && e.Message != nil && e.Message.ID == 1
	})).Once()

	msg, err := svc.Send(ctx, "alice", "bob", models.KindText, payload)
	require.NoError(t, err)
	assert.Equal(t, stored, msg)

	messages.AssertExpectations(t)
	inbox.AssertExpectations(t)
	tracker.AssertExpectations(t)
	hub.AssertExpectations(t)
}

func TestSendRejectsSelfConversation(t *testing.T) {
	svc, messages, _, _, _ := newTestService()

	_, err := svc.Send(context.Background(), "alice", "alice", models.KindText, models.Payload{Text: "hi"})
	require.ErrorIs(t, err, identity.ErrInvalidParticipant)
	messages.AssertNotCalled(t, "Append", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSendPropagatesEmptyPayload(t *testing.T) {
	svc, messages, _, _, _ := newTestService()

	messages.On("Append", mock.Anything, "alice:bob", "alice", models.KindText, models.Payload{}).
		Return(models.Message{}, repositories.ErrEmptyPayload).Once()

	_, err := svc.Send(context.Background(), "alice", "bob", models.KindText, models.Payload{})
	require.ErrorIs(t, err, repositories.ErrEmptyPayload)
	messages.AssertExpectations(t)
}

func TestMarkReadRequiresParticipant(t *testing.T) {
	svc, messages, _, _, _ := newTestService()

	_, err := svc.MarkRead(context.Background(), "carol", "alice:bob")
	require.ErrorIs(t, err, repositories.ErrNotAuthorized)
	messages.AssertNotCalled(t, "MarkAllSeen", mock.Anything, mock.Anything, mock.Anything)
}

func TestMarkReadTransitionsAndNotifies(t *testing.T) {
	svc, messages, inbox, _, hub := newTestService()

	seen := []models.Message{
		{ID: 1, ConversationKey: "alice:bob", SenderID: "alice", State: models.StateSeen},
		{ID: 2, ConversationKey: "alice:bob", SenderID: "alice", State: models.StateSeen},
	}
	messages.On("MarkAllSeen", mock.Anything, "alice:bob", "bob").Return(seen, nil).Once()
	inbox.On("Recompute", mock.Anything, "alice", "alice:bob").Return(&models.InboxEntry{}, nil).Once()
	inbox.On("Recompute", mock.Anything, "bob", "alice:bob").Return(&models.InboxEntry{}, nil).Once()
	hub.On("BroadcastInbox", "alice", mock.Anything).Once()
	hub.On("BroadcastInbox", "bob", mock.Anything).Once()
	hub.On("BroadcastConversation", "alice:bob", mock.MatchedBy(func(e models.ConversationEvent) bool {
		return e.Type == models.EventSeen && len(e.MessageIDs) == 2 && e.UserID == "bob"
	})).Once()

	result, err := svc.MarkRead(context.Background(), "bob", "alice:bob")
	require.NoError(t, err)
	require.Len(t, result, 2)

	messages.AssertExpectations(t)
	inbox.AssertExpectations(t)
	hub.AssertExpectations(t)
}

func TestMarkReadWithNothingToSeeIsQuiet(t *testing.T) {
	svc, messages, inbox, _, hub := newTestService()

	messages.On("MarkAllSeen", mock.Anything, "alice:bob", "bob").Return(([]models.Message)(nil), nil).Once()

	result, err := svc.MarkRead(context.Background(), "bob", "alice:bob")
	require.NoError(t, err)
	require.Empty(t, result)

	inbox.AssertNotCalled(t, "Recompute", mock.Anything, mock.Anything, mock.Anything)
	hub.AssertNotCalled(t, "BroadcastConversation", mock.Anything, mock.Anything)
	messages.AssertExpectations(t)
}

func TestMarkReadMissingConversation(t *testing.T) {
	svc, messages, _, _, _ := newTestService()

	messages.On("MarkAllSeen", mock.Anything, "alice:bob", "bob").
		Return(([]models.Message)(nil), repositories.ErrConversationNotFound).Once()

	_, err := svc.MarkRead(context.Background(), "bob", "alice:bob")
	require.ErrorIs(t, err, repositories.ErrConversationNotFound)
}

func TestMarkMessageSeenTransitionsAndNotifies(t *testing.T) {
	svc, messages, inbox, _, hub := newTestService()

	messages.On("MarkSeen", mock.Anything, "alice:bob", int64(4), "bob").Return(true, nil).Once()
	inbox.On("Recompute", mock.Anything, "alice", "alice:bob").Return(&models.InboxEntry{}, nil).Once()
	inbox.On("Recompute", mock.Anything, "bob", "alice:bob").Return(&models.InboxEntry{}, nil).Once()
	hub.On("BroadcastInbox", "alice", mock.Anything).Once()
	hub.On("BroadcastInbox", "bob", mock.Anything).Once()
	hub.On("BroadcastConversation", "alice:bob", mock.MatchedBy(func(e models.ConversationEvent) bool {
		return e.Type == models.EventSeen && len(e.MessageIDs) == 1 && e.MessageIDs[0] == 4 && e.UserID == "bob"
	})).Once()

	changed, err := svc.MarkMessageSeen(context.Background(), "bob", "alice:bob", 4)
	require.NoError(t, err)
	assert.True(t, changed)

	messages.AssertExpectations(t)
	inbox.AssertExpectations(t)
	hub.AssertExpectations(t)
}

func TestMarkMessageSeenSecondCallIsQuiet(t *testing.T) {
	svc, messages, inbox, _, hub := newTestService()

	messages.On("MarkSeen", mock.Anything, "alice:bob", int64(4), "bob").Return(false, nil).Once()

	changed, err := svc.MarkMessageSeen(context.Background(), "bob", "alice:bob", 4)
	require.NoError(t, err)
	assert.False(t, changed)

	inbox.AssertNotCalled(t, "Recompute", mock.Anything, mock.Anything, mock.Anything)
	hub.AssertNotCalled(t, "BroadcastConversation", mock.Anything, mock.Anything)
	messages.AssertExpectations(t)
}

func TestMarkMessageSeenRejectsSender(t *testing.T) {
	svc, messages, _, _, hub := newTestService()

	messages.On("MarkSeen", mock.Anything, "alice:bob", int64(4), "alice").
		Return(false, repositories.ErrNotRecipient).Once()

	_, err := svc.MarkMessageSeen(context.Background(), "alice", "alice:bob", 4)
	require.ErrorIs(t, err, repositories.ErrNotRecipient)
	hub.AssertNotCalled(t, "BroadcastConversation", mock.Anything, mock.Anything)
}

func TestMarkMessageSeenRejectsOutsider(t *testing.T) {
	svc, messages, _, _, _ := newTestService()

	_, err := svc.MarkMessageSeen(context.Background(), "carol", "alice:bob", 4)
	require.ErrorIs(t, err, repositories.ErrNotAuthorized)
	messages.AssertNotCalled(t, "MarkSeen", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteMessageBySenderNotifiesBothSides(t *testing.T) {
	svc, messages, inbox, _, hub := newTestService()

	messages.On("Delete", mock.Anything, "alice:bob", int64(9), "alice").Return(nil).Once()
	inbox.On("Recompute", mock.Anything, "alice", "alice:bob").Return(nil, nil).Once()
	inbox.On("Recompute", mock.Anything, "bob", "alice:bob").Return(nil, nil).Once()
	hub.On("BroadcastInbox", "alice", mock.MatchedBy(func(e models.InboxEvent) bool {
		return e.Entry == nil && e.ConversationKey == "alice:bob"
	})).Once()
	hub.On("BroadcastInbox", "bob", mock.Anything).Once()
	hub.On("BroadcastConversation", "alice:bob", mock.MatchedBy(func(e models.ConversationEvent) bool {
		return e.Type == models.EventDeleted && e.MessageID == 9
	})).Once()

	require.NoError(t, svc.DeleteMessage(context.Background(), "alice", "alice:bob", 9))

	messages.AssertExpectations(t)
	inbox.AssertExpectations(t)
	hub.AssertExpectations(t)
}

func TestDeleteMessageByNonSenderFails(t *testing.T) {
	svc, messages, inbox, _, hub := newTestService()

	messages.On("Delete", mock.Anything, "alice:bob", int64(9), "bob").
		Return(repositories.ErrNotAuthorized).Once()

	err := svc.DeleteMessage(context.Background(), "bob", "alice:bob", 9)
	require.ErrorIs(t, err, repositories.ErrNotAuthorized)

	inbox.AssertNotCalled(t, "Recompute", mock.Anything, mock.Anything, mock.Anything)
	hub.AssertNotCalled(t, "BroadcastConversation", mock.Anything, mock.Anything)
}

func TestHistoryRequiresParticipant(t *testing.T) {
	svc, messages, _, _, _ := newTestService()

	_, err := svc.History(context.Background(), "carol", "alice:bob")
	require.ErrorIs(t, err, repositories.ErrNotAuthorized)
	messages.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestSetTypingBroadcastsSignal(t *testing.T) {
	svc, _, _, tracker, hub := newTestService()

	tracker.On("SetTyping", mock.Anything, "alice:bob", "alice", true).Return(nil).Once()
	hub.On("BroadcastConversation", "alice:bob", mock.MatchedBy(func(e models.ConversationEvent) bool {
		return e.Type == models.EventTyping && e.UserID == "alice" && e.IsTyping
	})).Once()

	require.NoError(t, svc.SetTyping(context.Background(), "alice", "alice:bob", true))
	tracker.AssertExpectations(t)
	hub.AssertExpectations(t)
}

func TestSetTypingRejectsOutsider(t *testing.T) {
	svc, _, _, tracker, _ := newTestService()

	err := svc.SetTyping(context.Background(), "carol", "alice:bob", true)
	require.ErrorIs(t, err, repositories.ErrNotAuthorized)
	tracker.AssertNotCalled(t, "SetTyping", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPeerTypingReadsTheOtherParticipant(t *testing.T) {
	svc, _, _, tracker, _ := newTestService()

	tracker.On("IsTyping", mock.Anything, "alice:bob", "bob").Return(true, nil).Once()

	typing, err := svc.PeerTyping(context.Background(), "alice", "alice:bob")
	require.NoError(t, err)
	assert.True(t, typing)
	tracker.AssertExpectations(t)
}
