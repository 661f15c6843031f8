package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPassword(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)

	ok, rehash := CheckPassword("secret123", hash)
	assert.True(t, ok)
	assert.False(t, rehash)

	ok, _ = CheckPassword("wrong", hash)
	assert.False(t, ok)
}

func TestPassword_LegacySHA256(t *testing.T) {
	sum := sha256.Sum256([]byte("old-pass"))
	legacy := hex.EncodeToString(sum[:])

	ok, rehash := CheckPassword("old-pass", legacy)
	assert.True(t, ok)
	assert.True(t, rehash)

	ok, rehash = CheckPassword("other", legacy)
	assert.False(t, ok)
	assert.True(t, rehash)
}

func TestValidatePassword(t *testing.T) {
	assert.False(t, ValidatePassword("12345", 6))
	assert.True(t, ValidatePassword("123456", 6))
	// длина считается в символах
	assert.True(t, ValidatePassword("пароль", 6))
	assert.False(t, ValidatePassword("abc", 0))
}

func TestTokenIssuer(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)

	token, err := issuer.GenerateToken("user-1")
	require.NoError(t, err)

	claims, err := issuer.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)

	_, err = NewTokenIssuer("other", time.Hour).ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := NewTokenIssuer("secret", -time.Minute).GenerateToken("user-1")
	require.NoError(t, err)
	_, err = issuer.ParseToken(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTelegramHash(t *testing.T) {
	fields := map[string]string{
		"id":         "12345",
		"first_name": "Ivan",
		"username":   "",
		"auth_date":  "1700000000",
		"hash":       "ignored",
	}
	assert.Equal(t, "auth_date=1700000000\nfirst_name=Ivan\nid=12345", TelegramDataCheckString(fields))

	hash := TelegramHash("bot-token", TelegramDataCheckString(fields))
	assert.True(t, VerifyTelegramHash("bot-token", fields, hash))
	assert.False(t, VerifyTelegramHash("another-bot", fields, hash))

	fields["first_name"] = "Petr"
	assert.False(t, VerifyTelegramHash("bot-token", fields, hash))
}

func TestSecretsEqual(t *testing.T) {
	assert.True(t, SecretsEqual("s3cret", "s3cret"))
	assert.False(t, SecretsEqual("s3cret", "S3cret"))
	assert.False(t, SecretsEqual("", ""))
	assert.False(t, SecretsEqual("s3cret", ""))
}
