package dto

import "time"

type SendMessageRequest struct {
	Text          string  `json:"text" validate:"max=4000"`
	VoiceURL      *string `json:"voice_url" validate:"omitempty,max=1024"`
	VoiceDuration *int    `json:"voice_duration" validate:"omitempty,gte=0,lte=3600"`
}

type ListMessagesQuery struct {
	Limit    int      `form:"limit" validate:"omitempty,min=1,max=100"`
	Offset   int      `form:"offset" validate:"gte=0"`
	RadiusKm *float64 `form:"radius_km" validate:"omitempty,gte=0,lte=20038"`
	Nearby   bool     `form:"nearby"`
}

type ReactionCount struct {
	Emoji string `json:"emoji"`
	Count int64  `json:"count"`
}

type MessageResponse struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	Text          string          `json:"text"`
	VoiceURL      *string         `json:"voice_url,omitempty"`
	VoiceDuration *int            `json:"voice_duration,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	Author        UserSummary     `json:"author"`
	Reactions     []ReactionCount `json:"reactions"`
	DistanceKm    *float64        `json:"distance_km,omitempty"`
}

type SendMessageResponse struct {
	Message MessageResponse `json:"message"`
	Energy  int             `json:"energy"`
}

type MessageListResponse struct {
	Messages []MessageResponse `json:"messages"`
	Limit    int               `json:"limit"`
	Offset   int               `json:"offset"`
	RadiusKm *float64          `json:"radius_km,omitempty"`
}

type ToggleReactionRequest struct {
	Emoji string `json:"emoji" validate:"required,emoji"`
}

type ToggleReactionResponse struct {
	Action    string          `json:"action"`
	Reactions []ReactionCount `json:"reactions"`
}

const (
	ReactionAdded   = "added"
	ReactionRemoved = "removed"
)
