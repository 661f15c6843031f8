package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auxchat_backend/internal/dto"
	"auxchat_backend/pkg/apperrors"
)

func TestSubscriptions(t *testing.T) {
	env := newTestEnv(t)
	svc := NewSocialService(env.repos, env.cfg)
	alice := env.createUser(t, "alice", 100)
	bob := env.createUser(t, "bob", 100)

	_, err := svc.Subscribe(env.db, alice.ID, alice.ID)
	assert.ErrorIs(t, err, apperrors.ErrSelfSubscription)

	_, err = svc.Subscribe(env.db, alice.ID, uuid.NewString())
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)

	status, err := svc.Subscribe(env.db, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, status.Subscribed)

	// повторная подписка не создает дубликат
	_, err = svc.Subscribe(env.db, alice.ID, bob.ID)
	require.NoError(t, err)

	following, err := svc.ListSubscriptions(env.db, alice.ID)
	require.NoError(t, err)
	require.Len(t, following.Users, 1)
	assert.Equal(t, bob.ID, following.Users[0].ID)

	followers, err := svc.ListSubscribers(env.db, bob.ID)
	require.NoError(t, err)
	require.Len(t, followers.Users, 1)
	assert.Equal(t, alice.ID, followers.Users[0].ID)

	status, err = svc.Unsubscribe(env.db, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, status.Subscribed)

	following, err = svc.ListSubscriptions(env.db, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, following.Users)
}

func TestBlacklist(t *testing.T) {
	env := newTestEnv(t)
	svc := NewSocialService(env.repos, env.cfg)
	alice := env.createUser(t, "alice", 100)
	mallory := env.createUser(t, "mallory", 100)

	_, err := svc.Block(env.db, alice.ID, alice.ID)
	assert.ErrorIs(t, err, apperrors.ErrSelfBlock)

	status, err := svc.Block(env.db, alice.ID, mallory.ID)
	require.NoError(t, err)
	assert.True(t, status.Blocked)

	_, err = svc.Block(env.db, alice.ID, mallory.ID)
	require.NoError(t, err)

	blocked, err := svc.ListBlocked(env.db, alice.ID)
	require.NoError(t, err)
	require.Len(t, blocked.Users, 1)
	assert.Equal(t, "mallory", blocked.Users[0].Username)

	status, err = svc.Unblock(env.db, alice.ID, mallory.ID)
	require.NoError(t, err)
	assert.False(t, status.Blocked)

	blocked, err = svc.ListBlocked(env.db, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, blocked.Users)
}

func TestPrivateMessages(t *testing.T) {
	env := newTestEnv(t)
	svc := NewPrivateMessageService(env.repos, env.notifier, env.cfg)
	alice := env.createUser(t, "alice", 0)
	bob := env.createUser(t, "bob", 0)

	_, err := svc.Send(env.db, alice.ID, &dto.SendPrivateMessageRequest{ReceiverID: alice.ID, Text: "me"})
	assert.ErrorIs(t, err, apperrors.ErrSelfMessage)

	_, err = svc.Send(env.db, alice.ID, &dto.SendPrivateMessageRequest{ReceiverID: uuid.NewString(), Text: "hi"})
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)

	_, err = svc.Send(env.db, alice.ID, &dto.SendPrivateMessageRequest{ReceiverID: bob.ID, Text: " "})
	assert.ErrorIs(t, err, apperrors.ErrEmptyMessage)

	// личные сообщения бесплатны
	for _, text := range []string{"first", "second"} {
		_, err := svc.Send(env.db, alice.ID, &dto.SendPrivateMessageRequest{ReceiverID: bob.ID, Text: text})
		require.NoError(t, err)
	}
	_, err = svc.Send(env.db, bob.ID, &dto.SendPrivateMessageRequest{ReceiverID: alice.ID, Text: "reply"})
	require.NoError(t, err)
	assert.Equal(t, 3, env.notifier.count(eventPrivateNew))

	unread, err := svc.UnreadCount(env.db, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread.UnreadCount)

	list, err := svc.Conversations(env.db, bob.ID)
	require.NoError(t, err)
	require.Len(t, list.Conversations, 1)
	assert.Equal(t, alice.ID, list.Conversations[0].Peer.ID)
	assert.Equal(t, int64(2), list.Conversations[0].UnreadCount)
	require.NotNil(t, list.Conversations[0].LastMessage)
	assert.Equal(t, "reply", list.Conversations[0].LastMessage.Text)

	conv, err := svc.Conversation(env.db, bob.ID, alice.ID, &dto.ConversationQuery{})
	require.NoError(t, err)
	require.Len(t, conv.Messages, 3)
	assert.Equal(t, "first", conv.Messages[0].Text)
	assert.Equal(t, "reply", conv.Messages[2].Text)
	assert.Equal(t, defaultConversationLimit, conv.Limit)

	// чтение переписки сбрасывает непрочитанные
	unread, err = svc.UnreadCount(env.db, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), unread.UnreadCount)

	_, err = svc.Conversation(env.db, bob.ID, uuid.NewString(), &dto.ConversationQuery{})
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestPrivateMessages_BlockedByReceiver(t *testing.T) {
	env := newTestEnv(t)
	svc := NewPrivateMessageService(env.repos, env.notifier, env.cfg)
	social := NewSocialService(env.repos, env.cfg)
	alice := env.createUser(t, "alice", 0)
	mallory := env.createUser(t, "mallory", 0)

	_, err := social.Block(env.db, alice.ID, mallory.ID)
	require.NoError(t, err)

	_, err = svc.Send(env.db, mallory.ID, &dto.SendPrivateMessageRequest{ReceiverID: alice.ID, Text: "hey"})
	assert.ErrorIs(t, err, apperrors.ErrBlockedByReceiver)

	// блокирующий может писать сам
	_, err = svc.Send(env.db, alice.ID, &dto.SendPrivateMessageRequest{ReceiverID: mallory.ID, Text: "go away"})
	assert.NoError(t, err)
}
