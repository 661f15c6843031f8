package auth

import "crypto/subtle"

// SecretsEqual - сравнение общего секрета за постоянное время.
// Пустой ожидаемый секрет никогда не совпадает.
func SecretsEqual(expected, given string) bool {
	if expected == "" || given == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(given)) == 1
}
