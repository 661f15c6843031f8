package services

import (
	"errors"
	"math"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"auxchat_backend/internal/config"
	"auxchat_backend/internal/dto"
	"auxchat_backend/internal/geo"
	"auxchat_backend/internal/logger"
	"auxchat_backend/internal/metrics"
	"auxchat_backend/internal/models"
	"auxchat_backend/internal/repositories"
	"auxchat_backend/internal/sanitize"
	"auxchat_backend/pkg/apperrors"
)

const (
	maxMessageRunes  = 140
	defaultPageLimit = 20
)

type MessageService interface {
	SendMessage(db *gorm.DB, userID string, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error)
	ListMessages(db *gorm.DB, viewerID string, query *dto.ListMessagesQuery) (*dto.MessageListResponse, error)
	ToggleReaction(db *gorm.DB, userID, messageID string, req *dto.ToggleReactionRequest) (*dto.ToggleReactionResponse, error)
	ListReactions(db *gorm.DB, messageID string) ([]dto.ReactionCount, error)
}

type MessageServiceImpl struct {
	repos    *repositories.Repositories
	notifier Notifier
	cfg      *config.Config
}

func NewMessageService(repos *repositories.Repositories, notifier Notifier, cfg *config.Config) MessageService {
	if notifier == nil {
		notifier = NewNopNotifier()
	}
	return &MessageServiceImpl{repos: repos, notifier: notifier, cfg: cfg}
}

// SendMessage списывает энергию и создает сообщение в одной транзакции
func (s *MessageServiceImpl) SendMessage(db *gorm.DB, userID string, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error) {
	text := sanitize.Text(req.Text)
	voiceURL := trimmedOrNil(req.VoiceURL)
	if text == "" && voiceURL == nil {
		return nil, apperrors.ErrEmptyMessage
	}
	if utf8.RuneCountInString(text) > maxMessageRunes {
		return nil, apperrors.ErrMessageTooLong.WithDetails(map[string]int{"max_length": maxMessageRunes})
	}

	cost := s.cfg.Energy.MessageCost
	message := &models.Message{
		UserID:        userID,
		Text:          text,
		VoiceURL:      voiceURL,
		VoiceDuration: req.VoiceDuration,
	}

	var balance int
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		balance, err = s.repos.Users.SpendEnergy(tx, userID, cost)
		if err != nil {
			if errors.Is(err, repositories.ErrInsufficientEnergy) {
				return apperrors.ErrInsufficientEnergy.WithDetails(map[string]int{
					"energy":   balance,
					"required": cost,
				})
			}
			return mapUserError(err)
		}
		if err := s.repos.Messages.Create(tx, message); err != nil {
			return apperrors.DatabaseError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.MessagesSent.WithLabelValues("public").Inc()
	metrics.EnergySpent.Add(float64(cost))
	logger.EnergyLog(userID, -cost, "message")

	authors, err := s.authorSummaries(db, []string{userID})
	if err != nil {
		return nil, err
	}
	resp := dto.MessageResponse{
		ID:            message.ID,
		UserID:        message.UserID,
		Text:          message.Text,
		VoiceURL:      message.VoiceURL,
		VoiceDuration: message.VoiceDuration,
		CreatedAt:     message.CreatedAt,
		Author:        authors[userID],
		Reactions:     []dto.ReactionCount{},
	}

	s.notifier.Broadcast(eventMessageNew, resp)
	s.notifier.SendToUser(userID, eventEnergyUpdated, energyPayload{Energy: balance, Delta: -cost, Reason: "message"})

	return &dto.SendMessageResponse{Message: resp, Energy: balance}, nil
}

// ListMessages - лента. В режиме радиуса оставляет авторов в пределах радиуса от зрителя.
func (s *MessageServiceImpl) ListMessages(db *gorm.DB, viewerID string, query *dto.ListMessagesQuery) (*dto.MessageListResponse, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}

	radius := query.RadiusKm
	if radius == nil && query.Nearby {
		r := s.cfg.Geo.DefaultRadiusKm
		radius = &r
	}

	var viewer *models.User
	if viewerID != "" {
		u, err := s.repos.Users.FindByID(db, viewerID)
		if err != nil {
			return nil, mapUserError(err)
		}
		viewer = u
	}

	criteria := repositories.MessageCriteria{Limit: limit, Offset: query.Offset}
	var distances map[string]float64

	if radius != nil {
		if viewer == nil {
			return nil, apperrors.ErrMissingIdentity
		}
		if !viewer.HasLocation() {
			return nil, apperrors.ErrLocationRequired
		}
		center := geo.Point{Lat: *viewer.Latitude, Lon: *viewer.Longitude}
		nearby, err := s.authorsWithin(db, center, *radius)
		if err != nil {
			return nil, err
		}
		distances = nearby
		criteria.AuthorIDs = make([]string, 0, len(nearby))
		for id := range nearby {
			criteria.AuthorIDs = append(criteria.AuthorIDs, id)
		}
	}

	if viewer != nil {
		blocked, err := s.repos.Blacklist.FindBlockedIDs(db, viewer.ID)
		if err != nil {
			return nil, apperrors.DatabaseError(err)
		}
		criteria.ExcludeUserIDs = blocked
	}

	messages, err := s.repos.Messages.FindRecent(db, criteria)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	// страница выбрана от новых к старым, клиенту отдается хронологически
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	items, err := s.buildResponses(db, messages, distances)
	if err != nil {
		return nil, err
	}

	return &dto.MessageListResponse{
		Messages: items,
		Limit:    limit,
		Offset:   query.Offset,
		RadiusKm: radius,
	}, nil
}

func (s *MessageServiceImpl) ToggleReaction(db *gorm.DB, userID, messageID string, req *dto.ToggleReactionRequest) (*dto.ToggleReactionResponse, error) {
	exists, err := s.repos.Messages.Exists(db, messageID)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	if !exists {
		return nil, apperrors.ErrMessageNotFound
	}

	added, err := s.repos.Reactions.Toggle(db, messageID, userID, req.Emoji)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	counts, err := s.reactionsOf(db, messageID)
	if err != nil {
		return nil, err
	}

	action := dto.ReactionRemoved
	if added {
		action = dto.ReactionAdded
	}
	return &dto.ToggleReactionResponse{Action: action, Reactions: counts}, nil
}

func (s *MessageServiceImpl) ListReactions(db *gorm.DB, messageID string) ([]dto.ReactionCount, error) {
	exists, err := s.repos.Messages.Exists(db, messageID)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	if !exists {
		return nil, apperrors.ErrMessageNotFound
	}
	return s.reactionsOf(db, messageID)
}

func (s *MessageServiceImpl) reactionsOf(db *gorm.DB, messageID string) ([]dto.ReactionCount, error) {
	counts, err := s.repos.Reactions.CountsByMessages(db, []string{messageID})
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	return toReactionCounts(counts[messageID]), nil
}

// authorsWithin: прямоугольник в БД, затем точная проверка haversine
func (s *MessageServiceImpl) authorsWithin(db *gorm.DB, center geo.Point, radiusKm float64) (map[string]float64, error) {
	box := geo.BoundingBox(center, radiusKm)
	candidates, err := s.repos.Users.FindWithinBox(db, repositories.BoundingBox{
		MinLat: box.MinLat,
		MaxLat: box.MaxLat,
		MinLon: box.MinLon,
		MaxLon: box.MaxLon,
	})
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	result := make(map[string]float64, len(candidates))
	for _, u := range candidates {
		if !u.HasLocation() {
			continue
		}
		d := geo.HaversineKm(center, geo.Point{Lat: *u.Latitude, Lon: *u.Longitude})
		if d <= radiusKm {
			result[u.ID] = d
		}
	}
	return result, nil
}

func (s *MessageServiceImpl) buildResponses(db *gorm.DB, messages []models.Message, distances map[string]float64) ([]dto.MessageResponse, error) {
	out := make([]dto.MessageResponse, 0, len(messages))
	if len(messages) == 0 {
		return out, nil
	}

	authorIDs := make([]string, 0, len(messages))
	messageIDs := make([]string, 0, len(messages))
	for _, m := range messages {
		authorIDs = append(authorIDs, m.UserID)
		messageIDs = append(messageIDs, m.ID)
	}

	authors, err := s.authorSummaries(db, uniqueStrings(authorIDs))
	if err != nil {
		return nil, err
	}
	reactions, err := s.repos.Reactions.CountsByMessages(db, messageIDs)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	for _, m := range messages {
		item := dto.MessageResponse{
			ID:            m.ID,
			UserID:        m.UserID,
			Text:          m.Text,
			VoiceURL:      m.VoiceURL,
			VoiceDuration: m.VoiceDuration,
			CreatedAt:     m.CreatedAt,
			Author:        authors[m.UserID],
			Reactions:     toReactionCounts(reactions[m.ID]),
		}
		if d, ok := distances[m.UserID]; ok {
			rounded := math.Round(d*100) / 100
			item.DistanceKm = &rounded
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *MessageServiceImpl) authorSummaries(db *gorm.DB, ids []string) (map[string]dto.UserSummary, error) {
	users, err := s.repos.Users.FindByIDs(db, ids)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	photos, err := s.repos.Photos.FirstPhotoURLs(db, ids)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	now := time.Now().UTC()
	window := onlineWindow(s.cfg)
	out := make(map[string]dto.UserSummary, len(users))
	for id, u := range users {
		user := u
		out[id] = toUserSummary(&user, photos[id], now, window)
	}
	// удаленный автор
	for _, id := range ids {
		if _, ok := out[id]; !ok {
			out[id] = dto.UserSummary{ID: id, Username: "deleted", Avatar: DefaultAvatar(id)}
		}
	}
	return out, nil
}
