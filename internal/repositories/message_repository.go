package repositories

import (
	"auxchat_backend/internal/models"

	"gorm.io/gorm"
)

// MessageCriteria - параметры выборки ленты
type MessageCriteria struct {
	Limit          int
	Offset         int
	AuthorIDs      []string // nil - без фильтра, пустой срез - пустой результат
	ExcludeUserIDs []string
}

type MessageRepository interface {
	Create(db *gorm.DB, message *models.Message) error
	Exists(db *gorm.DB, id string) (bool, error)
	FindRecent(db *gorm.DB, criteria MessageCriteria) ([]models.Message, error)
	DeleteByUser(db *gorm.DB, userID string) error
}

type MessageRepositoryImpl struct{}

func NewMessageRepository() MessageRepository {
	return &MessageRepositoryImpl{}
}

func (r *MessageRepositoryImpl) Create(db *gorm.DB, message *models.Message) error {
	return db.Create(message).Error
}

func (r *MessageRepositoryImpl) Exists(db *gorm.DB, id string) (bool, error) {
	var count int64
	err := db.Model(&models.Message{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// FindRecent возвращает страницу сообщений, новые первыми
func (r *MessageRepositoryImpl) FindRecent(db *gorm.DB, criteria MessageCriteria) ([]models.Message, error) {
	var messages []models.Message

	if criteria.AuthorIDs != nil && len(criteria.AuthorIDs) == 0 {
		return messages, nil
	}

	query := db.Model(&models.Message{})
	if criteria.AuthorIDs != nil {
		query = query.Where("user_id IN ?", criteria.AuthorIDs)
	}
	if len(criteria.ExcludeUserIDs) > 0 {
		query = query.Where("user_id NOT IN ?", criteria.ExcludeUserIDs)
	}

	err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(criteria.Limit).
		Offset(criteria.Offset).
		Find(&messages).Error
	return messages, err
}

func (r *MessageRepositoryImpl) DeleteByUser(db *gorm.DB, userID string) error {
	return db.Where("user_id = ?", userID).Delete(&models.Message{}).Error
}
