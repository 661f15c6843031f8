package apperrors

// ErrorCode - тип для кодов ошибок
type ErrorCode string

const (
	// Системные
	CodeInternalError        ErrorCode = "INTERNAL_ERROR"
	CodeDatabaseError        ErrorCode = "DATABASE_ERROR"
	CodeExternalServiceError ErrorCode = "EXTERNAL_SERVICE_ERROR"

	// Общие ошибки бизнес-логики
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeAlreadyExists    ErrorCode = "ALREADY_EXISTS"
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeBadRequest       ErrorCode = "BAD_REQUEST"
	CodeLimitExceeded    ErrorCode = "LIMIT_EXCEEDED"
	CodeInvalidOperation ErrorCode = "INVALID_OPERATION"
	CodeMethodNotAllowed ErrorCode = "METHOD_NOT_ALLOWED"
	CodeTooManyRequests  ErrorCode = "TOO_MANY_REQUESTS"

	// Аутентификация и авторизация
	CodeUnauthorized       ErrorCode = "UNAUTHORIZED"
	CodeForbidden          ErrorCode = "FORBIDDEN"
	CodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	CodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	CodeUserBanned         ErrorCode = "USER_BANNED"

	// Энергия и платежи
	CodeInsufficientEnergy ErrorCode = "INSUFFICIENT_ENERGY"
	CodeInvalidAmount      ErrorCode = "INVALID_AMOUNT"
	CodePaymentGateway     ErrorCode = "PAYMENT_GATEWAY_ERROR"
	CodePaymentUnconfirmed ErrorCode = "PAYMENT_NOT_CONFIRMED"

	// SMS
	CodeSmsCodeNotFound ErrorCode = "SMS_CODE_NOT_FOUND"
	CodeSmsCodeUsed     ErrorCode = "SMS_CODE_USED"
	CodeSmsCodeExpired  ErrorCode = "SMS_CODE_EXPIRED"
	CodeSmsCodeInvalid  ErrorCode = "SMS_CODE_INVALID"
)
