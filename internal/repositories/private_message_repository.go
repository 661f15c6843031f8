package repositories

import (
	"auxchat_backend/internal/models"

	"gorm.io/gorm"
)

// ConversationPeer - собеседник и число непрочитанных от него
type ConversationPeer struct {
	PeerID      string
	UnreadCount int64
}

type PrivateMessageRepository interface {
	Create(db *gorm.DB, message *models.PrivateMessage) error
	FindConversation(db *gorm.DB, userID, peerID string, limit, offset int) ([]models.PrivateMessage, error)
	FindLastBetween(db *gorm.DB, userID, peerID string) (*models.PrivateMessage, error)
	FindPeers(db *gorm.DB, userID string) ([]ConversationPeer, error)
	MarkRead(db *gorm.DB, receiverID, senderID string) (int64, error)
	CountUnread(db *gorm.DB, userID string) (int64, error)
	DeleteByUser(db *gorm.DB, userID string) error
}

type PrivateMessageRepositoryImpl struct{}

func NewPrivateMessageRepository() PrivateMessageRepository {
	return &PrivateMessageRepositoryImpl{}
}

func (r *PrivateMessageRepositoryImpl) Create(db *gorm.DB, message *models.PrivateMessage) error {
	return db.Create(message).Error
}

func betweenUsers(db *gorm.DB, userID, peerID string) *gorm.DB {
	return db.Model(&models.PrivateMessage{}).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userID, peerID, peerID, userID)
}

// FindConversation возвращает страницу переписки, новые первыми
func (r *PrivateMessageRepositoryImpl) FindConversation(db *gorm.DB, userID, peerID string, limit, offset int) ([]models.PrivateMessage, error) {
	var messages []models.PrivateMessage
	err := betweenUsers(db, userID, peerID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error
	return messages, err
}

func (r *PrivateMessageRepositoryImpl) FindLastBetween(db *gorm.DB, userID, peerID string) (*models.PrivateMessage, error) {
	var messages []models.PrivateMessage
	err := betweenUsers(db, userID, peerID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(1).
		Find(&messages).Error
	if err != nil || len(messages) == 0 {
		return nil, err
	}
	return &messages[0], nil
}

// FindPeers возвращает всех собеседников пользователя
func (r *PrivateMessageRepositoryImpl) FindPeers(db *gorm.DB, userID string) ([]ConversationPeer, error) {
	var peers []ConversationPeer
	err := db.Model(&models.PrivateMessage{}).
		Select(`CASE WHEN sender_id = ? THEN receiver_id ELSE sender_id END AS peer_id,
			SUM(CASE WHEN receiver_id = ? AND is_read = ? THEN 1 ELSE 0 END) AS unread_count`,
			userID, userID, false).
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Group("peer_id").
		Scan(&peers).Error
	return peers, err
}

// MarkRead отмечает прочитанными входящие от sender
func (r *PrivateMessageRepositoryImpl) MarkRead(db *gorm.DB, receiverID, senderID string) (int64, error) {
	result := db.Model(&models.PrivateMessage{}).
		Where("receiver_id = ? AND sender_id = ? AND is_read = ?", receiverID, senderID, false).
		UpdateColumn("is_read", true)
	return result.RowsAffected, result.Error
}

func (r *PrivateMessageRepositoryImpl) CountUnread(db *gorm.DB, userID string) (int64, error) {
	var count int64
	err := db.Model(&models.PrivateMessage{}).
		Where("receiver_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (r *PrivateMessageRepositoryImpl) DeleteByUser(db *gorm.DB, userID string) error {
	return db.Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Delete(&models.PrivateMessage{}).Error
}
