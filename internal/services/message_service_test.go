package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auxchat_backend/internal/dto"
	"auxchat_backend/pkg/apperrors"
)

func TestSendMessage_SpendsEnergy(t *testing.T) {
	env := newTestEnv(t)
	svc := NewMessageService(env.repos, env.notifier, env.cfg)
	user := env.createUser(t, "sender", 10)

	// Act
	resp, err := svc.SendMessage(env.db, user.ID, &dto.SendMessageRequest{Text: "привет"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Energy)
	assert.Equal(t, "привет", resp.Message.Text)
	assert.Equal(t, "sender", resp.Message.Author.Username)
	assert.Equal(t, 1, env.notifier.count(eventMessageNew))
	assert.Equal(t, 1, env.notifier.count(eventEnergyUpdated))

	stored, err := env.repos.Users.FindByID(env.db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Energy)
}

func TestSendMessage_InsufficientEnergy(t *testing.T) {
	env := newTestEnv(t)
	svc := NewMessageService(env.repos, env.notifier, env.cfg)
	user := env.createUser(t, "poor", 5)

	_, err := svc.SendMessage(env.db, user.ID, &dto.SendMessageRequest{Text: "hello"})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientEnergy)
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 402, appErr.HTTPCode)

	// ни сообщения, ни списания
	stored, err := env.repos.Users.FindByID(env.db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.Energy)

	list, err := svc.ListMessages(env.db, "", &dto.ListMessagesQuery{})
	require.NoError(t, err)
	assert.Empty(t, list.Messages)
	assert.Equal(t, 0, env.notifier.count(eventMessageNew))
}

func TestSendMessage_Validation(t *testing.T) {
	env := newTestEnv(t)
	svc := NewMessageService(env.repos, env.notifier, env.cfg)
	user := env.createUser(t, "writer", 100)

	_, err := svc.SendMessage(env.db, user.ID, &dto.SendMessageRequest{Text: "   "})
	assert.ErrorIs(t, err, apperrors.ErrEmptyMessage)

	_, err = svc.SendMessage(env.db, user.ID, &dto.SendMessageRequest{Text: strings.Repeat("я", 141)})
	assert.ErrorIs(t, err, apperrors.ErrMessageTooLong)

	resp, err := svc.SendMessage(env.db, user.ID, &dto.SendMessageRequest{Text: strings.Repeat("я", 140)})
	require.NoError(t, err)
	assert.Equal(t, 90, resp.Energy)

	voice := "https://cdn.example.com/voice/1.webm"
	resp, err = svc.SendMessage(env.db, user.ID, &dto.SendMessageRequest{VoiceURL: &voice})
	require.NoError(t, err)
	require.NotNil(t, resp.Message.VoiceURL)
	assert.Equal(t, voice, *resp.Message.VoiceURL)
}

func TestListMessages_ChronologicalPage(t *testing.T) {
	env := newTestEnv(t)
	svc := NewMessageService(env.repos, env.notifier, env.cfg)
	user := env.createUser(t, "author", 100)

	for _, text := range []string{"one", "two", "three"} {
		_, err := svc.SendMessage(env.db, user.ID, &dto.SendMessageRequest{Text: text})
		require.NoError(t, err)
	}

	list, err := svc.ListMessages(env.db, "", &dto.ListMessagesQuery{Limit: 2})
	require.NoError(t, err)
	require.Len(t, list.Messages, 2)
	assert.Equal(t, "two", list.Messages[0].Text)
	assert.Equal(t, "three", list.Messages[1].Text)
	assert.Nil(t, list.RadiusKm)
}

func TestListMessages_Radius(t *testing.T) {
	env := newTestEnv(t)
	svc := NewMessageService(env.repos, env.notifier, env.cfg)

	viewer := env.createUser(t, "viewer", 100)
	near := env.createUser(t, "near", 100)
	far := env.createUser(t, "far", 100)
	nowhere := env.createUser(t, "nowhere", 100)

	// Москва, ~2 км и Санкт-Петербург
	env.setLocation(t, viewer.ID, 55.7558, 37.6173)
	env.setLocation(t, near.ID, 55.7700, 37.6400)
	env.setLocation(t, far.ID, 59.9343, 30.3351)

	for _, u := range []string{near.ID, far.ID, nowhere.ID} {
		_, err := svc.SendMessage(env.db, u, &dto.SendMessageRequest{Text: "hi"})
		require.NoError(t, err)
	}

	radius := 10.0
	list, err := svc.ListMessages(env.db, viewer.ID, &dto.ListMessagesQuery{RadiusKm: &radius})
	require.NoError(t, err)
	require.Len(t, list.Messages, 1)
	assert.Equal(t, near.ID, list.Messages[0].UserID)
	require.NotNil(t, list.Messages[0].DistanceKm)
	assert.InDelta(t, 2.0, *list.Messages[0].DistanceKm, 0.5)

	// nearby без radius_km берет радиус по умолчанию
	list, err = svc.ListMessages(env.db, viewer.ID, &dto.ListMessagesQuery{Nearby: true})
	require.NoError(t, err)
	require.NotNil(t, list.RadiusKm)
	assert.Equal(t, env.cfg.Geo.DefaultRadiusKm, *list.RadiusKm)
	assert.Len(t, list.Messages, 1)

	// нулевой радиус: только авторы в той же точке
	zero := 0.0
	list, err = svc.ListMessages(env.db, viewer.ID, &dto.ListMessagesQuery{RadiusKm: &zero})
	require.NoError(t, err)
	assert.Empty(t, list.Messages)

	// без фильтра видны все
	list, err = svc.ListMessages(env.db, viewer.ID, &dto.ListMessagesQuery{})
	require.NoError(t, err)
	assert.Len(t, list.Messages, 3)
}

func TestListMessages_RadiusRequiresLocation(t *testing.T) {
	env := newTestEnv(t)
	svc := NewMessageService(env.repos, env.notifier, env.cfg)
	viewer := env.createUser(t, "lost", 100)

	_, err := svc.ListMessages(env.db, viewer.ID, &dto.ListMessagesQuery{Nearby: true})
	assert.ErrorIs(t, err, apperrors.ErrLocationRequired)

	_, err = svc.ListMessages(env.db, "", &dto.ListMessagesQuery{Nearby: true})
	assert.ErrorIs(t, err, apperrors.ErrMissingIdentity)
}

func TestListMessages_ExcludesBlockedAuthors(t *testing.T) {
	env := newTestEnv(t)
	svc := NewMessageService(env.repos, env.notifier, env.cfg)
	viewer := env.createUser(t, "viewer", 100)
	troll := env.createUser(t, "troll", 100)
	friend := env.createUser(t, "friend", 100)

	_, err := svc.SendMessage(env.db, troll.ID, &dto.SendMessageRequest{Text: "spam"})
	require.NoError(t, err)
	_, err = svc.SendMessage(env.db, friend.ID, &dto.SendMessageRequest{Text: "hello"})
	require.NoError(t, err)

	_, err = env.repos.Blacklist.Create(env.db, viewer.ID, troll.ID)
	require.NoError(t, err)

	list, err := svc.ListMessages(env.db, viewer.ID, &dto.ListMessagesQuery{})
	require.NoError(t, err)
	require.Len(t, list.Messages, 1)
	assert.Equal(t, friend.ID, list.Messages[0].UserID)

	// анонимный зритель видит все
	list, err = svc.ListMessages(env.db, "", &dto.ListMessagesQuery{})
	require.NoError(t, err)
	assert.Len(t, list.Messages, 2)
}

func TestToggleReaction(t *testing.T) {
	env := newTestEnv(t)
	svc := NewMessageService(env.repos, env.notifier, env.cfg)
	author := env.createUser(t, "author", 100)
	fan := env.createUser(t, "fan", 100)

	sent, err := svc.SendMessage(env.db, author.ID, &dto.SendMessageRequest{Text: "react to me"})
	require.NoError(t, err)
	messageID := sent.Message.ID

	resp, err := svc.ToggleReaction(env.db, fan.ID, messageID, &dto.ToggleReactionRequest{Emoji: "👍"})
	require.NoError(t, err)
	assert.Equal(t, dto.ReactionAdded, resp.Action)
	require.Len(t, resp.Reactions, 1)
	assert.Equal(t, int64(1), resp.Reactions[0].Count)

	_, err = svc.ToggleReaction(env.db, author.ID, messageID, &dto.ToggleReactionRequest{Emoji: "👍"})
	require.NoError(t, err)

	counts, err := svc.ListReactions(env.db, messageID)
	require.NoError(t, err)
	require.Len(t, counts, 1)
	assert.Equal(t, int64(2), counts[0].Count)

	// повторное нажатие снимает реакцию
	resp, err = svc.ToggleReaction(env.db, fan.ID, messageID, &dto.ToggleReactionRequest{Emoji: "👍"})
	require.NoError(t, err)
	assert.Equal(t, dto.ReactionRemoved, resp.Action)
	require.Len(t, resp.Reactions, 1)
	assert.Equal(t, int64(1), resp.Reactions[0].Count)

	_, err = svc.ToggleReaction(env.db, fan.ID, "00000000-0000-0000-0000-000000000000", &dto.ToggleReactionRequest{Emoji: "👍"})
	assert.ErrorIs(t, err, apperrors.ErrMessageNotFound)

	_, err = svc.ListReactions(env.db, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, apperrors.ErrMessageNotFound)
}
