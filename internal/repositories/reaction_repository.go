package repositories

import (
	"errors"

	"auxchat_backend/internal/models"

	"gorm.io/gorm"
)

// ReactionCount - количество одинаковых эмодзи на сообщении
type ReactionCount struct {
	MessageID string `json:"-"`
	Emoji     string `json:"emoji"`
	Count     int64  `json:"count"`
}

type ReactionRepository interface {
	Add(db *gorm.DB, reaction *models.Reaction) error
	Remove(db *gorm.DB, messageID, userID, emoji string) (bool, error)
	Toggle(db *gorm.DB, messageID, userID, emoji string) (added bool, err error)
	CountsByMessages(db *gorm.DB, messageIDs []string) (map[string][]ReactionCount, error)
	DeleteByUser(db *gorm.DB, userID string) error
	DeleteByMessagesOfUser(db *gorm.DB, userID string) error
}

type ReactionRepositoryImpl struct{}

func NewReactionRepository() ReactionRepository {
	return &ReactionRepositoryImpl{}
}

func (r *ReactionRepositoryImpl) Add(db *gorm.DB, reaction *models.Reaction) error {
	return db.Create(reaction).Error
}

func (r *ReactionRepositoryImpl) Remove(db *gorm.DB, messageID, userID, emoji string) (bool, error) {
	result := db.Where("message_id = ? AND user_id = ? AND emoji = ?", messageID, userID, emoji).
		Delete(&models.Reaction{})
	return result.RowsAffected > 0, result.Error
}

// Toggle удаляет реакцию, если она есть, иначе добавляет.
// Гонку двух одновременных вставок закрывает уникальный индекс.
func (r *ReactionRepositoryImpl) Toggle(db *gorm.DB, messageID, userID, emoji string) (bool, error) {
	removed, err := r.Remove(db, messageID, userID, emoji)
	if err != nil {
		return false, err
	}
	if removed {
		return false, nil
	}

	reaction := &models.Reaction{
		MessageID: messageID,
		UserID:    userID,
		Emoji:     emoji,
	}
	if err := r.Add(db, reaction); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return true, nil
		}
		return false, err
	}
	return true, nil
}

// CountsByMessages группирует реакции по сообщению и эмодзи
func (r *ReactionRepositoryImpl) CountsByMessages(db *gorm.DB, messageIDs []string) (map[string][]ReactionCount, error) {
	result := make(map[string][]ReactionCount, len(messageIDs))
	if len(messageIDs) == 0 {
		return result, nil
	}

	var rows []ReactionCount
	err := db.Model(&models.Reaction{}).
		Select("message_id, emoji, COUNT(*) AS count").
		Where("message_id IN ?", messageIDs).
		Group("message_id, emoji").
		Order("count DESC, emoji ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		result[row.MessageID] = append(result[row.MessageID], row)
	}
	return result, nil
}

func (r *ReactionRepositoryImpl) DeleteByUser(db *gorm.DB, userID string) error {
	return db.Where("user_id = ?", userID).Delete(&models.Reaction{}).Error
}

// DeleteByMessagesOfUser удаляет чужие реакции на сообщения пользователя
func (r *ReactionRepositoryImpl) DeleteByMessagesOfUser(db *gorm.DB, userID string) error {
	sub := db.Model(&models.Message{}).Select("id").Where("user_id = ?", userID)
	return db.Where("message_id IN (?)", sub).Delete(&models.Reaction{}).Error
}
