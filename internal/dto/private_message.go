package dto

import "time"

type SendPrivateMessageRequest struct {
	ReceiverID    string  `json:"receiver_id" validate:"required,uuid"`
	Text          string  `json:"text" validate:"max=4000"`
	VoiceURL      *string `json:"voice_url" validate:"omitempty,max=1024"`
	VoiceDuration *int    `json:"voice_duration" validate:"omitempty,gte=0,lte=3600"`
}

type ConversationQuery struct {
	Limit  int `form:"limit" validate:"omitempty,min=1,max=200"`
	Offset int `form:"offset" validate:"gte=0"`
}

type PrivateMessageResponse struct {
	ID            string    `json:"id"`
	SenderID      string    `json:"sender_id"`
	ReceiverID    string    `json:"receiver_id"`
	Text          string    `json:"text"`
	VoiceURL      *string   `json:"voice_url,omitempty"`
	VoiceDuration *int      `json:"voice_duration,omitempty"`
	IsRead        bool      `json:"is_read"`
	CreatedAt     time.Time `json:"created_at"`
}

type ConversationResponse struct {
	Peer     UserSummary              `json:"peer"`
	Messages []PrivateMessageResponse `json:"messages"`
	Limit    int                      `json:"limit"`
	Offset   int                      `json:"offset"`
}

type ConversationSummary struct {
	Peer        UserSummary             `json:"peer"`
	LastMessage *PrivateMessageResponse `json:"last_message,omitempty"`
	UnreadCount int64                   `json:"unread_count"`
}

type ConversationListResponse struct {
	Conversations []ConversationSummary `json:"conversations"`
}

type UnreadCountResponse struct {
	UnreadCount int64 `json:"unread_count"`
}
