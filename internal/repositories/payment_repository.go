package repositories

import (
	"errors"
	"time"

	"auxchat_backend/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrPaymentNotFound = errors.New("payment not found")

type PaymentRepository interface {
	Create(db *gorm.DB, payment *models.Payment) error
	FindByID(db *gorm.DB, id string) (*models.Payment, error)
	FindByExternalID(db *gorm.DB, externalID string) (*models.Payment, error)
	FindByUser(db *gorm.DB, userID string) ([]models.Payment, error)
	AttachGatewayData(db *gorm.DB, id, externalID, confirmationURL string, payload datatypes.JSON) error
	MarkSucceeded(db *gorm.DB, id string, payload datatypes.JSON) (bool, error)
	CancelStale(db *gorm.DB, createdBefore time.Time) (int64, error)
	DeleteByUser(db *gorm.DB, userID string) error
}

type PaymentRepositoryImpl struct{}

func NewPaymentRepository() PaymentRepository {
	return &PaymentRepositoryImpl{}
}

func (r *PaymentRepositoryImpl) Create(db *gorm.DB, payment *models.Payment) error {
	return db.Create(payment).Error
}

func (r *PaymentRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Payment, error) {
	var payment models.Payment
	if err := db.First(&payment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepositoryImpl) FindByExternalID(db *gorm.DB, externalID string) (*models.Payment, error) {
	var payment models.Payment
	if err := db.First(&payment, "external_id = ?", externalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepositoryImpl) FindByUser(db *gorm.DB, userID string) ([]models.Payment, error) {
	var payments []models.Payment
	err := db.Where("user_id = ?", userID).Order("created_at DESC").Find(&payments).Error
	return payments, err
}

func (r *PaymentRepositoryImpl) AttachGatewayData(db *gorm.DB, id, externalID, confirmationURL string, payload datatypes.JSON) error {
	return db.Model(&models.Payment{}).Where("id = ?", id).Updates(map[string]interface{}{
		"external_id":      externalID,
		"confirmation_url": confirmationURL,
		"gateway_payload":  payload,
	}).Error
}

// MarkSucceeded переводит платеж в succeeded только из pending.
// false означает, что платеж уже был обработан.
func (r *PaymentRepositoryImpl) MarkSucceeded(db *gorm.DB, id string, payload datatypes.JSON) (bool, error) {
	result := db.Model(&models.Payment{}).
		Where("id = ? AND status = ?", id, models.PaymentStatusPending).
		Updates(map[string]interface{}{
			"status":          models.PaymentStatusSucceeded,
			"gateway_payload": payload,
		})
	return result.RowsAffected > 0, result.Error
}

func (r *PaymentRepositoryImpl) CancelStale(db *gorm.DB, createdBefore time.Time) (int64, error) {
	result := db.Model(&models.Payment{}).
		Where("status = ? AND created_at < ?", models.PaymentStatusPending, createdBefore).
		Update("status", models.PaymentStatusCanceled)
	return result.RowsAffected, result.Error
}

func (r *PaymentRepositoryImpl) DeleteByUser(db *gorm.DB, userID string) error {
	return db.Where("user_id = ?", userID).Delete(&models.Payment{}).Error
}
