package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// TelegramDataCheckString собирает строку проверки виджета:
// пары key=value, отсортированные по ключу, без hash, через \n.
func TelegramDataCheckString(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k, v := range fields {
		if k == "hash" || v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, k+"="+fields[k])
	}
	return strings.Join(lines, "\n")
}

// TelegramHash считает HMAC-SHA256 с ключом sha256(bot_token)
func TelegramHash(botToken, dataCheckString string) string {
	secret := sha256.Sum256([]byte(botToken))
	mac := hmac.New(sha256.New, secret[:])
	mac.Write([]byte(dataCheckString))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyTelegramHash сравнивает подпись за постоянное время
func VerifyTelegramHash(botToken string, fields map[string]string, hash string) bool {
	expected := TelegramHash(botToken, TelegramDataCheckString(fields))
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(hash)))
}
