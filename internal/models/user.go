package models

import "time"

type User struct {
	BaseModel
	Phone        *string    `gorm:"uniqueIndex;size:20" json:"phone,omitempty"`
	Username     string     `gorm:"size:50;not null" json:"username"`
	PasswordHash string     `gorm:"not null" json:"-"`
	Energy       int        `gorm:"not null" json:"energy"`
	IsBanned     bool       `gorm:"not null;default:false" json:"is_banned"`
	IsAdmin      bool       `gorm:"not null;default:false" json:"is_admin"`
	Latitude     *float64   `json:"latitude,omitempty"`
	Longitude    *float64   `json:"longitude,omitempty"`
	City         string     `gorm:"size:120" json:"city,omitempty"`
	Bio          string     `gorm:"type:text" json:"bio,omitempty"`
	AvatarURL    string     `json:"avatar_url,omitempty"`
	TelegramID   *int64     `gorm:"uniqueIndex" json:"telegram_id,omitempty"`
	LastActivity *time.Time `gorm:"index" json:"last_activity,omitempty"`
}

// HasLocation - заданы ли координаты пользователя
func (u *User) HasLocation() bool {
	return u.Latitude != nil && u.Longitude != nil
}

// IsOnline - активность в пределах окна
func (u *User) IsOnline(now time.Time, window time.Duration) bool {
	if u.LastActivity == nil {
		return false
	}
	return now.Sub(*u.LastActivity) < window
}

func (u *User) PhoneValue() string {
	if u.Phone == nil {
		return ""
	}
	return *u.Phone
}
