package services

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"auxchat_backend/internal/dto"
	"auxchat_backend/internal/models"
	"auxchat_backend/internal/repositories"
	"auxchat_backend/pkg/apperrors"
)

// Notifier доставляет события в реальном времени (ws хаб)
type Notifier interface {
	Broadcast(eventType string, payload any)
	SendToUser(userID, eventType string, payload any)
}

type nopNotifier struct{}

func (nopNotifier) Broadcast(string, any)          {}
func (nopNotifier) SendToUser(string, string, any) {}

// NewNopNotifier - заглушка, когда хаб не нужен (тесты, CLI)
func NewNopNotifier() Notifier {
	return nopNotifier{}
}

const (
	eventMessageNew    = "message.new"
	eventPrivateNew    = "private.new"
	eventEnergyUpdated = "energy.updated"
)

type energyPayload struct {
	Energy int    `json:"energy"`
	Delta  int    `json:"delta"`
	Reason string `json:"reason"`
}

// DefaultAvatar - сгенерированная картинка по имени
func DefaultAvatar(seed string) string {
	return "https://api.dicebear.com/7.x/avataaars/svg?seed=" + url.QueryEscape(seed)
}

// avatarOf: первое фото галереи, затем avatar_url, затем сгенерированный
func avatarOf(user *models.User, firstPhoto string) string {
	if firstPhoto != "" {
		return firstPhoto
	}
	if user.AvatarURL != "" {
		return user.AvatarURL
	}
	return DefaultAvatar(user.Username)
}

func toUserResponse(user *models.User, firstPhoto string) *dto.UserResponse {
	return &dto.UserResponse{
		ID:           user.ID,
		Phone:        user.PhoneValue(),
		Username:     user.Username,
		Avatar:       avatarOf(user, firstPhoto),
		AvatarURL:    user.AvatarURL,
		Bio:          user.Bio,
		City:         user.City,
		Energy:       user.Energy,
		Latitude:     user.Latitude,
		Longitude:    user.Longitude,
		IsAdmin:      user.IsAdmin,
		IsBanned:     user.IsBanned,
		TelegramID:   user.TelegramID,
		LastActivity: user.LastActivity,
		CreatedAt:    user.CreatedAt,
	}
}

func toUserSummary(user *models.User, firstPhoto string, now time.Time, onlineWindow time.Duration) dto.UserSummary {
	return dto.UserSummary{
		ID:       user.ID,
		Username: user.Username,
		Avatar:   avatarOf(user, firstPhoto),
		City:     user.City,
		IsOnline: user.IsOnline(now, onlineWindow),
	}
}

func toReactionCounts(rows []repositories.ReactionCount) []dto.ReactionCount {
	out := make([]dto.ReactionCount, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.ReactionCount{Emoji: r.Emoji, Count: r.Count})
	}
	return out
}

func toPhotoResponses(photos []models.UserPhoto) []dto.PhotoResponse {
	out := make([]dto.PhotoResponse, 0, len(photos))
	for _, p := range photos {
		out = append(out, dto.PhotoResponse{
			ID:           p.ID,
			PhotoURL:     p.PhotoURL,
			DisplayOrder: p.DisplayOrder,
			CreatedAt:    p.CreatedAt,
		})
	}
	return out
}

func toPrivateMessageResponse(m *models.PrivateMessage) dto.PrivateMessageResponse {
	return dto.PrivateMessageResponse{
		ID:            m.ID,
		SenderID:      m.SenderID,
		ReceiverID:    m.ReceiverID,
		Text:          m.Text,
		VoiceURL:      m.VoiceURL,
		VoiceDuration: m.VoiceDuration,
		IsRead:        m.IsRead,
		CreatedAt:     m.CreatedAt,
	}
}

// mapUserError переводит ошибки репозитория пользователей в ошибки API
func mapUserError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrUserNotFound):
		return apperrors.ErrUserNotFound
	case errors.Is(err, repositories.ErrUserBanned):
		return apperrors.ErrUserBanned
	default:
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		return apperrors.DatabaseError(err)
	}
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// trimmedOrNil - пустая строка превращается в nil
func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
