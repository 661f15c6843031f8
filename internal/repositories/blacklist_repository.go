package repositories

import (
	"auxchat_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BlacklistRepository interface {
	Create(db *gorm.DB, userID, blockedID string) (bool, error)
	Delete(db *gorm.DB, userID, blockedID string) error
	Exists(db *gorm.DB, userID, blockedID string) (bool, error)
	FindBlockedUsers(db *gorm.DB, userID string) ([]models.User, error)
	FindBlockedIDs(db *gorm.DB, userID string) ([]string, error)
	DeleteByUser(db *gorm.DB, userID string) error
}

type BlacklistRepositoryImpl struct{}

func NewBlacklistRepository() BlacklistRepository {
	return &BlacklistRepositoryImpl{}
}

func (r *BlacklistRepositoryImpl) Create(db *gorm.DB, userID, blockedID string) (bool, error) {
	entry := &models.Blacklist{
		UserID:        userID,
		BlockedUserID: blockedID,
	}
	result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(entry)
	return result.RowsAffected > 0, result.Error
}

func (r *BlacklistRepositoryImpl) Delete(db *gorm.DB, userID, blockedID string) error {
	return db.Where("user_id = ? AND blocked_user_id = ?", userID, blockedID).
		Delete(&models.Blacklist{}).Error
}

func (r *BlacklistRepositoryImpl) Exists(db *gorm.DB, userID, blockedID string) (bool, error) {
	var count int64
	err := db.Model(&models.Blacklist{}).
		Where("user_id = ? AND blocked_user_id = ?", userID, blockedID).
		Count(&count).Error
	return count > 0, err
}

func (r *BlacklistRepositoryImpl) FindBlockedUsers(db *gorm.DB, userID string) ([]models.User, error) {
	var users []models.User
	err := db.Model(&models.User{}).
		Joins("JOIN blacklist ON blacklist.blocked_user_id = users.id").
		Where("blacklist.user_id = ?", userID).
		Order("blacklist.created_at DESC").
		Find(&users).Error
	return users, err
}

func (r *BlacklistRepositoryImpl) FindBlockedIDs(db *gorm.DB, userID string) ([]string, error) {
	var ids []string
	err := db.Model(&models.Blacklist{}).
		Where("user_id = ?", userID).
		Pluck("blocked_user_id", &ids).Error
	return ids, err
}

func (r *BlacklistRepositoryImpl) DeleteByUser(db *gorm.DB, userID string) error {
	return db.Where("user_id = ? OR blocked_user_id = ?", userID, userID).
		Delete(&models.Blacklist{}).Error
}
