package contextkeys

// Используем кастомный тип, чтобы избежать коллизий
type contextKey string

// DBContextKey - это ключ, по которому мы будем хранить *gorm.DB в context
const DBContextKey = contextKey("db")

// UserIDKey - ключ gin.Context с ID аутентифицированного пользователя
const UserIDKey = "userID"

// AuthMethodKey - как был установлен пользователь: token или header
const AuthMethodKey = "authMethod"
