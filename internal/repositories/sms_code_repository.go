package repositories

import (
	"errors"
	"time"

	"auxchat_backend/internal/models"

	"gorm.io/gorm"
)

var ErrSmsCodeNotFound = errors.New("sms code not found")

type SmsCodeRepository interface {
	Create(db *gorm.DB, code *models.SmsCode) error
	FindLatest(db *gorm.DB, phone string) (*models.SmsCode, error)
	MarkUsed(db *gorm.DB, id string) (bool, error)
	DeleteStale(db *gorm.DB, now time.Time, usedBefore time.Time) (int64, error)
}

type SmsCodeRepositoryImpl struct{}

func NewSmsCodeRepository() SmsCodeRepository {
	return &SmsCodeRepositoryImpl{}
}

func (r *SmsCodeRepositoryImpl) Create(db *gorm.DB, code *models.SmsCode) error {
	return db.Create(code).Error
}

// FindLatest - последний выданный код для номера
func (r *SmsCodeRepositoryImpl) FindLatest(db *gorm.DB, phone string) (*models.SmsCode, error) {
	var codes []models.SmsCode
	err := db.Where("phone = ?", phone).
		Order("created_at DESC").
		Limit(1).
		Find(&codes).Error
	if err != nil {
		return nil, err
	}
	if len(codes) == 0 {
		return nil, ErrSmsCodeNotFound
	}
	return &codes[0], nil
}

// MarkUsed - условное обновление, второй вызов вернет false
func (r *SmsCodeRepositoryImpl) MarkUsed(db *gorm.DB, id string) (bool, error) {
	result := db.Model(&models.SmsCode{}).
		Where("id = ? AND is_used = ?", id, false).
		UpdateColumn("is_used", true)
	return result.RowsAffected > 0, result.Error
}

// DeleteStale удаляет истекшие коды и использованные до usedBefore
func (r *SmsCodeRepositoryImpl) DeleteStale(db *gorm.DB, now time.Time, usedBefore time.Time) (int64, error) {
	result := db.Where("expires_at < ? OR (is_used = ? AND created_at < ?)", now, true, usedBefore).
		Delete(&models.SmsCode{})
	return result.RowsAffected, result.Error
}
