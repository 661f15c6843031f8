package dto

import (
	"encoding/json"
	"time"
)

// UserResponse - полный профиль владельца
type UserResponse struct {
	ID           string     `json:"id"`
	Phone        string     `json:"phone,omitempty"`
	Username     string     `json:"username"`
	Avatar       string     `json:"avatar"`
	AvatarURL    string     `json:"avatar_url,omitempty"`
	Bio          string     `json:"bio,omitempty"`
	City         string     `json:"city,omitempty"`
	Energy       int        `json:"energy"`
	Latitude     *float64   `json:"latitude,omitempty"`
	Longitude    *float64   `json:"longitude,omitempty"`
	IsAdmin      bool       `json:"is_admin"`
	IsBanned     bool       `json:"is_banned"`
	TelegramID   *int64     `json:"telegram_id,omitempty"`
	LastActivity *time.Time `json:"last_activity,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// PublicUserResponse - профиль для других пользователей
type PublicUserResponse struct {
	ID           string          `json:"id"`
	Username     string          `json:"username"`
	Avatar       string          `json:"avatar"`
	Bio          string          `json:"bio,omitempty"`
	City         string          `json:"city,omitempty"`
	Energy       int             `json:"energy"`
	IsOnline     bool            `json:"is_online"`
	LastActivity *time.Time      `json:"last_activity,omitempty"`
	Photos       []PhotoResponse `json:"photos"`
	IsSubscribed *bool           `json:"is_subscribed,omitempty"`
	IsBlocked    *bool           `json:"is_blocked,omitempty"`
}

// UserSummary - автор сообщения, собеседник, элемент списков
type UserSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
	City     string `json:"city,omitempty"`
	IsOnline bool   `json:"is_online"`
}

type UpdateProfileRequest struct {
	Username  *string `json:"username" validate:"omitempty,min=3,max=50"`
	Bio       *string `json:"bio" validate:"omitempty,max=500"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,max=1024"`
}

type UpdateLocationRequest struct {
	Latitude  *float64 `json:"latitude" validate:"required,latitude"`
	Longitude *float64 `json:"longitude" validate:"required,longitude"`
	City      string   `json:"city" validate:"max=120"`
}

type LocationResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	City      string  `json:"city"`
}

type GeocodeQuery struct {
	Lat *float64 `form:"lat" validate:"required,latitude"`
	Lon *float64 `form:"lon" validate:"required,longitude"`
}

type GeocodeResponse struct {
	Latitude    float64         `json:"latitude"`
	Longitude   float64         `json:"longitude"`
	City        string          `json:"city"`
	DisplayName string          `json:"display_name,omitempty"`
	Address     json.RawMessage `json:"address,omitempty"`
}

type ActivityResponse struct {
	LastActivity time.Time `json:"last_activity"`
}
