package dto

// RegisterRequest - регистрация по телефону и паролю
type RegisterRequest struct {
	Phone    string `json:"phone" validate:"required,phone"`
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// LoginRequest - запрос входа
type LoginRequest struct {
	Phone    string `json:"phone" validate:"required,phone"`
	Password string `json:"password" validate:"required"`
}

type SendSMSRequest struct {
	Phone string `json:"phone" validate:"required,phone"`
}

type SendSMSResponse struct {
	Sent      bool `json:"sent"`
	ExpiresIn int  `json:"expires_in"` // секунды
}

type VerifySMSRequest struct {
	Phone string `json:"phone" validate:"required,phone"`
	Code  string `json:"code" validate:"required,len=4,numeric"`
}

type VerifySMSResponse struct {
	Verified bool          `json:"verified"`
	IsNew    bool          `json:"is_new"`
	UserID   *string       `json:"user_id,omitempty"`
	Token    string        `json:"token,omitempty"`
	User     *UserResponse `json:"user,omitempty"`
}

// CompleteSignupRequest - завершение регистрации после проверки кода
type CompleteSignupRequest struct {
	Phone    string `json:"phone" validate:"required,phone"`
	Code     string `json:"code" validate:"required,len=4,numeric"`
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type ResetPasswordRequest struct {
	Phone       string `json:"phone" validate:"required,phone"`
	Code        string `json:"code" validate:"required,len=4,numeric"`
	NewPassword string `json:"new_password" validate:"required,min=6,max=72"`
}

// TelegramAuthRequest - данные Telegram Login Widget
type TelegramAuthRequest struct {
	ID        int64  `json:"id" validate:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	PhotoURL  string `json:"photo_url"`
	AuthDate  int64  `json:"auth_date" validate:"required"`
	Hash      string `json:"hash" validate:"required,hexadecimal"`
}

// AuthResponse - пользователь и токен
type AuthResponse struct {
	User  *UserResponse `json:"user"`
	Token string        `json:"token"`
	IsNew bool          `json:"is_new,omitempty"`
}
