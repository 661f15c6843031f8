package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_SaveExistsDelete(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(Config{BasePath: t.TempDir(), BaseURL: "/files/"})
	require.NoError(t, err)

	require.NoError(t, s.Save(ctx, "photos/a.jpg", strings.NewReader("data"), 4, "image/jpeg"))

	ok, err := s.Exists(ctx, "photos/a.jpg")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "/files/photos/a.jpg", s.GetURL("photos/a.jpg"))

	require.NoError(t, s.Delete(ctx, "photos/a.jpg"))
	ok, err = s.Exists(ctx, "photos/a.jpg")
	require.NoError(t, err)
	assert.False(t, ok)

	// повторное удаление не ошибка
	assert.NoError(t, s.Delete(ctx, "photos/a.jpg"))
}

func TestLocalStorage_RejectsTraversal(t *testing.T) {
	s, err := NewLocalStorage(Config{BasePath: t.TempDir()})
	require.NoError(t, err)

	err = s.Save(context.Background(), "../escape.txt", strings.NewReader("x"), 1, "text/plain")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestLocalStorage_PresignUnsupported(t *testing.T) {
	s, err := NewLocalStorage(Config{BasePath: t.TempDir()})
	require.NoError(t, err)

	_, err = s.GetSignedUploadURL(context.Background(), "photos/a.jpg", "image/jpeg", time.Minute)
	assert.ErrorIs(t, err, ErrPresignUnsupported)
}

func TestS3Storage_PresignPut(t *testing.T) {
	s, err := NewS3Storage(Config{
		Bucket:    "auxchat",
		Region:    "ru-1",
		AccessKey: "AKIA",
		SecretKey: "secret",
		Endpoint:  "https://s3.example.com",
	})
	require.NoError(t, err)

	url, err := s.GetSignedUploadURL(context.Background(), "photos/x.jpg", "image/jpeg", 10*time.Minute)
	require.NoError(t, err)
	assert.Contains(t, url, "https://s3.example.com/auxchat/photos/x.jpg")
	assert.Contains(t, url, "X-Amz-Signature=")
	assert.Contains(t, url, "X-Amz-Expires=600")

	assert.Equal(t, "https://s3.example.com/auxchat/photos/x.jpg", s.GetURL("photos/x.jpg"))
}

func TestValidateKey(t *testing.T) {
	assert.NoError(t, ValidateKey("voice/1.webm"))
	assert.Error(t, ValidateKey(""))
	assert.Error(t, ValidateKey("/etc/passwd"))
	assert.Error(t, ValidateKey("a/../../b"))
}
