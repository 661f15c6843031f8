package models

// Message - публичное сообщение в ленте
type Message struct {
	CreatedOnly
	UserID        string  `gorm:"type:uuid;not null;index" json:"user_id"`
	Text          string  `gorm:"type:text" json:"text"`
	VoiceURL      *string `json:"voice_url,omitempty"`
	VoiceDuration *int    `json:"voice_duration,omitempty"`
}

// Reaction - не больше одной на (сообщение, пользователь, эмодзи)
type Reaction struct {
	CreatedOnly
	MessageID string `gorm:"type:uuid;not null;uniqueIndex:idx_reaction_unique,priority:1" json:"message_id"`
	UserID    string `gorm:"type:uuid;not null;uniqueIndex:idx_reaction_unique,priority:2;index" json:"user_id"`
	Emoji     string `gorm:"size:32;not null;uniqueIndex:idx_reaction_unique,priority:3" json:"emoji"`
}

// PrivateMessage - личное сообщение, диалог определяется парой sender/receiver
type PrivateMessage struct {
	CreatedOnly
	SenderID      string  `gorm:"type:uuid;not null;index:idx_pm_pair,priority:1" json:"sender_id"`
	ReceiverID    string  `gorm:"type:uuid;not null;index:idx_pm_pair,priority:2;index" json:"receiver_id"`
	Text          string  `gorm:"type:text" json:"text"`
	VoiceURL      *string `json:"voice_url,omitempty"`
	VoiceDuration *int    `json:"voice_duration,omitempty"`
	IsRead        bool    `gorm:"not null;default:false" json:"is_read"`
}
