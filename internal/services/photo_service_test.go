package services

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auxchat_backend/internal/dto"
	"auxchat_backend/pkg/apperrors"
)

func TestAddPhoto_Limit(t *testing.T) {
	env := newTestEnv(t)
	svc := NewPhotoService(env.repos, env.cfg)
	user := env.createUser(t, "model", 100)

	for i := 0; i < 6; i++ {
		photo, err := svc.AddPhoto(env.db, user.ID, &dto.AddPhotoRequest{PhotoURL: fmt.Sprintf("https://cdn.example.com/%d.jpg", i)})
		require.NoError(t, err)
		assert.Equal(t, i, photo.DisplayOrder)
	}

	_, err := svc.AddPhoto(env.db, user.ID, &dto.AddPhotoRequest{PhotoURL: "https://cdn.example.com/7.jpg"})
	assert.ErrorIs(t, err, apperrors.ErrPhotoLimitReached)

	list, err := svc.ListPhotos(env.db, user.ID)
	require.NoError(t, err)
	assert.Len(t, list.Photos, 6)
	assert.Equal(t, "https://cdn.example.com/0.jpg", list.Photos[0].PhotoURL)
}

func TestAddPhoto_ConcurrentStaysWithinLimit(t *testing.T) {
	env := newTestEnv(t)
	svc := NewPhotoService(env.repos, env.cfg)
	user := env.createUser(t, "model", 100)

	var wg sync.WaitGroup
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = svc.AddPhoto(env.db, user.ID, &dto.AddPhotoRequest{PhotoURL: fmt.Sprintf("https://cdn.example.com/c%d.jpg", i)})
		}(i)
	}
	wg.Wait()

	count, err := env.repos.Photos.CountByUser(env.db, user.ID)
	require.NoError(t, err)
	assert.LessOrEqual(t, count, int64(6))
}

func TestAddPhoto_UnknownUser(t *testing.T) {
	env := newTestEnv(t)
	svc := NewPhotoService(env.repos, env.cfg)

	_, err := svc.AddPhoto(env.db, uuid.NewString(), &dto.AddPhotoRequest{PhotoURL: "https://cdn.example.com/x.jpg"})
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestSetMainAndDeletePhoto(t *testing.T) {
	env := newTestEnv(t)
	svc := NewPhotoService(env.repos, env.cfg)
	owner := env.createUser(t, "owner", 100)
	other := env.createUser(t, "other", 100)

	first, err := svc.AddPhoto(env.db, owner.ID, &dto.AddPhotoRequest{PhotoURL: "https://cdn.example.com/a.jpg"})
	require.NoError(t, err)
	second, err := svc.AddPhoto(env.db, owner.ID, &dto.AddPhotoRequest{PhotoURL: "https://cdn.example.com/b.jpg"})
	require.NoError(t, err)

	list, err := svc.SetMainPhoto(env.db, owner.ID, second.ID)
	require.NoError(t, err)
	require.Len(t, list.Photos, 2)
	assert.Equal(t, second.ID, list.Photos[0].ID)
	assert.Equal(t, 0, list.Photos[0].DisplayOrder)

	// чужое фото не найти
	_, err = svc.SetMainPhoto(env.db, other.ID, first.ID)
	assert.ErrorIs(t, err, apperrors.ErrPhotoNotFound)
	err = svc.DeletePhoto(env.db, other.ID, first.ID)
	assert.ErrorIs(t, err, apperrors.ErrPhotoNotFound)

	require.NoError(t, svc.DeletePhoto(env.db, owner.ID, first.ID))
	list, err = svc.ListPhotos(env.db, owner.ID)
	require.NoError(t, err)
	require.Len(t, list.Photos, 1)
	assert.Equal(t, second.ID, list.Photos[0].ID)

	_, err = svc.ListPhotos(env.db, uuid.NewString())
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestAvatarPrefersFirstPhoto(t *testing.T) {
	env := newTestEnv(t)
	photos := NewPhotoService(env.repos, env.cfg)
	messages := NewMessageService(env.repos, env.notifier, env.cfg)
	user := env.createUser(t, "pretty", 100)

	sent, err := messages.SendMessage(env.db, user.ID, &dto.SendMessageRequest{Text: "no photo yet"})
	require.NoError(t, err)
	assert.Equal(t, DefaultAvatar("pretty"), sent.Message.Author.Avatar)

	_, err = photos.AddPhoto(env.db, user.ID, &dto.AddPhotoRequest{PhotoURL: "https://cdn.example.com/me.jpg"})
	require.NoError(t, err)

	sent, err = messages.SendMessage(env.db, user.ID, &dto.SendMessageRequest{Text: "with photo"})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/me.jpg", sent.Message.Author.Avatar)
}
