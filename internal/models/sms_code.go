package models

import "time"

type SmsCode struct {
	CreatedOnly
	Phone     string    `gorm:"size:20;not null;index"`
	Code      string    `gorm:"size:8;not null"`
	ExpiresAt time.Time `gorm:"not null"`
	IsUsed    bool      `gorm:"not null;default:false"`
}

func (s *SmsCode) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
