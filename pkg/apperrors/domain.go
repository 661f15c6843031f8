package apperrors

import (
	"net/http"
)

// ErrNotFound - фабрика для ошибки "не найдено" (404)
func ErrNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "resource", "Resource not found", http.StatusNotFound)
}

// ErrInvalidOperation - фабрика для невалидных операций (400)
func ErrInvalidOperation(domain, message string) *AppError {
	return New(CodeInvalidOperation, domain, message, http.StatusBadRequest)
}

// --- Auth ---

var ErrInvalidCredentials = New(CodeInvalidCredentials, "auth", "Invalid phone or password", http.StatusUnauthorized)

var ErrMissingIdentity = New(CodeUnauthorized, "auth", "Authorization required", http.StatusUnauthorized)

var ErrInvalidToken = New(CodeInvalidToken, "auth", "Invalid or expired token", http.StatusUnauthorized)

var ErrUserBanned = New(CodeUserBanned, "auth", "User is banned", http.StatusForbidden)

var ErrPhoneAlreadyRegistered = New(CodeAlreadyExists, "auth", "Phone already registered", http.StatusBadRequest)

var ErrWeakPassword = New(CodeValidationFailed, "auth", "Password must be at least 6 characters", http.StatusBadRequest)

var ErrInvalidTelegramHash = New(CodeForbidden, "telegram", "Invalid Telegram authorization", http.StatusForbidden)

var ErrTelegramAuthExpired = New(CodeForbidden, "telegram", "Telegram authorization expired", http.StatusForbidden)

var ErrTelegramNotConfigured = New(CodeInternalError, "telegram", "Telegram login is not configured", http.StatusInternalServerError)

// --- SMS ---

var ErrSmsCodeNotFound = New(CodeSmsCodeNotFound, "sms", "Code not found", http.StatusNotFound)

var ErrSmsCodeUsed = New(CodeSmsCodeUsed, "sms", "Code already used", http.StatusBadRequest)

var ErrSmsCodeExpired = New(CodeSmsCodeExpired, "sms", "Code expired", http.StatusBadRequest)

var ErrSmsCodeInvalid = New(CodeSmsCodeInvalid, "sms", "Invalid code", http.StatusBadRequest)

var ErrSmsNotVerified = New(CodeForbidden, "sms", "Phone is not verified", http.StatusForbidden)

var ErrSmsThrottled = New(CodeTooManyRequests, "sms", "Code was sent recently, try again later", http.StatusTooManyRequests)

// --- Users ---

var ErrUserNotFound = New(CodeNotFound, "user", "User not found", http.StatusNotFound)

var ErrLocationRequired = New(CodeInvalidOperation, "user", "Location is not set", http.StatusBadRequest)

// --- Messages & energy ---

var ErrInsufficientEnergy = New(CodeInsufficientEnergy, "energy", "Insufficient energy", http.StatusPaymentRequired)

var ErrMessageNotFound = New(CodeNotFound, "message", "Message not found", http.StatusNotFound)

var ErrEmptyMessage = New(CodeValidationFailed, "message", "Message text is required", http.StatusBadRequest)

var ErrMessageTooLong = New(CodeValidationFailed, "message", "Message is too long", http.StatusBadRequest)

var ErrSelfMessage = New(CodeInvalidOperation, "private_message", "Cannot send a message to yourself", http.StatusBadRequest)

var ErrBlockedByReceiver = New(CodeForbidden, "private_message", "You are blocked by this user", http.StatusForbidden)

// --- Social ---

var ErrSelfSubscription = New(CodeInvalidOperation, "subscription", "Cannot subscribe to yourself", http.StatusBadRequest)

var ErrSelfBlock = New(CodeInvalidOperation, "blacklist", "Cannot block yourself", http.StatusBadRequest)

// --- Photos & uploads ---

var ErrPhotoLimitReached = New(CodeLimitExceeded, "photo", "Maximum 6 photos allowed", http.StatusBadRequest)

var ErrPhotoNotFound = New(CodeNotFound, "photo", "Photo not found", http.StatusNotFound)

var ErrUnsupportedFileType = New(CodeValidationFailed, "upload", "Unsupported file type", http.StatusBadRequest)

var ErrFileTooLarge = New(CodeLimitExceeded, "upload", "File too large", http.StatusBadRequest)

var ErrInvalidImage = New(CodeValidationFailed, "upload", "Invalid image", http.StatusBadRequest)

// --- Payments ---

var ErrInvalidPaymentAmount = New(CodeInvalidAmount, "payment", "Payment amount is out of range", http.StatusBadRequest)

var ErrPaymentNotConfigured = New(CodeInternalError, "payment", "Internal server error", http.StatusInternalServerError)

var ErrPaymentNotFound = New(CodeNotFound, "payment", "Payment not found", http.StatusNotFound)

// ErrPaymentNotConfirmed - уведомление не совпадает с платежом у провайдера
var ErrPaymentNotConfirmed = New(CodePaymentUnconfirmed, "payment", "Payment is not confirmed by provider", http.StatusBadRequest)

// --- Admin ---

var ErrInvalidAdminSecret = New(CodeForbidden, "admin", "Invalid admin secret", http.StatusForbidden)

var ErrInvalidAdminAction = New(CodeInvalidOperation, "admin", "Invalid action", http.StatusBadRequest)

// --- Transport ---

var ErrMethodNotAllowed = New(CodeMethodNotAllowed, "request", "Method not allowed", http.StatusMethodNotAllowed)

var ErrRouteNotFound = New(CodeNotFound, "request", "Route not found", http.StatusNotFound)
