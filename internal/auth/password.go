package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const MinPasswordLength = 6

// HashPassword создает bcrypt хеш пароля
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword сверяет пароль с хешем.
// Второй результат true, если хеш старого формата (sha256 hex) и его нужно перевыпустить.
func CheckPassword(password, hash string) (ok bool, needsRehash bool) {
	if isLegacyHash(hash) {
		sum := sha256.Sum256([]byte(password))
		expected := hex.EncodeToString(sum[:])
		return subtle.ConstantTimeCompare([]byte(expected), []byte(strings.ToLower(hash))) == 1, true
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil, false
}

// ValidatePassword проверяет минимальную длину пароля
func ValidatePassword(password string, minLength int) bool {
	if minLength <= 0 {
		minLength = MinPasswordLength
	}
	return len([]rune(password)) >= minLength
}

// старые записи хранят 64 hex символа без соли
func isLegacyHash(hash string) bool {
	if len(hash) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(hash)
	return err == nil
}
