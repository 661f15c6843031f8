package repositories

import (
	"auxchat_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SubscriptionRepository interface {
	Create(db *gorm.DB, subscriberID, targetID string) (bool, error)
	Delete(db *gorm.DB, subscriberID, targetID string) error
	Exists(db *gorm.DB, subscriberID, targetID string) (bool, error)
	FindFollowing(db *gorm.DB, userID string) ([]models.User, error)
	FindFollowers(db *gorm.DB, userID string) ([]models.User, error)
	DeleteByUser(db *gorm.DB, userID string) error
}

type SubscriptionRepositoryImpl struct{}

func NewSubscriptionRepository() SubscriptionRepository {
	return &SubscriptionRepositoryImpl{}
}

// Create - повторная подписка ничего не делает (ON CONFLICT DO NOTHING).
// Возвращает true, если строка была вставлена.
func (r *SubscriptionRepositoryImpl) Create(db *gorm.DB, subscriberID, targetID string) (bool, error) {
	sub := &models.Subscription{
		SubscriberID:   subscriberID,
		SubscribedToID: targetID,
	}
	result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(sub)
	return result.RowsAffected > 0, result.Error
}

func (r *SubscriptionRepositoryImpl) Delete(db *gorm.DB, subscriberID, targetID string) error {
	return db.Where("subscriber_id = ? AND subscribed_to_id = ?", subscriberID, targetID).
		Delete(&models.Subscription{}).Error
}

func (r *SubscriptionRepositoryImpl) Exists(db *gorm.DB, subscriberID, targetID string) (bool, error) {
	var count int64
	err := db.Model(&models.Subscription{}).
		Where("subscriber_id = ? AND subscribed_to_id = ?", subscriberID, targetID).
		Count(&count).Error
	return count > 0, err
}

// FindFollowing - на кого подписан пользователь
func (r *SubscriptionRepositoryImpl) FindFollowing(db *gorm.DB, userID string) ([]models.User, error) {
	var users []models.User
	err := db.Model(&models.User{}).
		Joins("JOIN subscriptions ON subscriptions.subscribed_to_id = users.id").
		Where("subscriptions.subscriber_id = ?", userID).
		Order("subscriptions.created_at DESC").
		Find(&users).Error
	return users, err
}

// FindFollowers - кто подписан на пользователя
func (r *SubscriptionRepositoryImpl) FindFollowers(db *gorm.DB, userID string) ([]models.User, error) {
	var users []models.User
	err := db.Model(&models.User{}).
		Joins("JOIN subscriptions ON subscriptions.subscriber_id = users.id").
		Where("subscriptions.subscribed_to_id = ?", userID).
		Order("subscriptions.created_at DESC").
		Find(&users).Error
	return users, err
}

func (r *SubscriptionRepositoryImpl) DeleteByUser(db *gorm.DB, userID string) error {
	return db.Where("subscriber_id = ? OR subscribed_to_id = ?", userID, userID).
		Delete(&models.Subscription{}).Error
}
