package services

import (
	"sort"
	"time"

	"gorm.io/gorm"

	"auxchat_backend/internal/config"
	"auxchat_backend/internal/dto"
	"auxchat_backend/internal/metrics"
	"auxchat_backend/internal/models"
	"auxchat_backend/internal/repositories"
	"auxchat_backend/internal/sanitize"
	"auxchat_backend/pkg/apperrors"
)

const defaultConversationLimit = 50

type PrivateMessageService interface {
	Send(db *gorm.DB, senderID string, req *dto.SendPrivateMessageRequest) (*dto.PrivateMessageResponse, error)
	Conversation(db *gorm.DB, userID, peerID string, query *dto.ConversationQuery) (*dto.ConversationResponse, error)
	Conversations(db *gorm.DB, userID string) (*dto.ConversationListResponse, error)
	UnreadCount(db *gorm.DB, userID string) (*dto.UnreadCountResponse, error)
}

type PrivateMessageServiceImpl struct {
	repos    *repositories.Repositories
	notifier Notifier
	cfg      *config.Config
}

func NewPrivateMessageService(repos *repositories.Repositories, notifier Notifier, cfg *config.Config) PrivateMessageService {
	if notifier == nil {
		notifier = NewNopNotifier()
	}
	return &PrivateMessageServiceImpl{repos: repos, notifier: notifier, cfg: cfg}
}

func (s *PrivateMessageServiceImpl) Send(db *gorm.DB, senderID string, req *dto.SendPrivateMessageRequest) (*dto.PrivateMessageResponse, error) {
	if senderID == req.ReceiverID {
		return nil, apperrors.ErrSelfMessage
	}

	text := sanitize.Text(req.Text)
	voiceURL := trimmedOrNil(req.VoiceURL)
	if text == "" && voiceURL == nil {
		return nil, apperrors.ErrEmptyMessage
	}

	exists, err := s.repos.Users.Exists(db, req.ReceiverID)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	if !exists {
		return nil, apperrors.ErrUserNotFound
	}

	blocked, err := s.repos.Blacklist.Exists(db, req.ReceiverID, senderID)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	if blocked {
		return nil, apperrors.ErrBlockedByReceiver
	}

	message := &models.PrivateMessage{
		SenderID:      senderID,
		ReceiverID:    req.ReceiverID,
		Text:          text,
		VoiceURL:      voiceURL,
		VoiceDuration: req.VoiceDuration,
	}
	if err := s.repos.PrivateMessages.Create(db, message); err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	metrics.MessagesSent.WithLabelValues("private").Inc()

	resp := toPrivateMessageResponse(message)
	s.notifier.SendToUser(req.ReceiverID, eventPrivateNew, resp)
	return &resp, nil
}

// Conversation - переписка со старыми сообщениями первыми; входящие помечаются прочитанными
func (s *PrivateMessageServiceImpl) Conversation(db *gorm.DB, userID, peerID string, query *dto.ConversationQuery) (*dto.ConversationResponse, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = defaultConversationLimit
	}

	peer, err := s.repos.Users.FindByID(db, peerID)
	if err != nil {
		return nil, mapUserError(err)
	}

	messages, err := s.repos.PrivateMessages.FindConversation(db, userID, peerID, limit, query.Offset)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	if _, err := s.repos.PrivateMessages.MarkRead(db, userID, peerID); err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	// страница выбрана от новых к старым
	items := make([]dto.PrivateMessageResponse, 0, len(messages))
	for i := len(messages) - 1; i >= 0; i-- {
		items = append(items, toPrivateMessageResponse(&messages[i]))
	}

	peers, err := summaries(db, s.repos, []models.User{*peer}, onlineWindow(s.cfg))
	if err != nil {
		return nil, err
	}

	return &dto.ConversationResponse{
		Peer:     peers[0],
		Messages: items,
		Limit:    limit,
		Offset:   query.Offset,
	}, nil
}

// Conversations - по одной записи на собеседника, свежие диалоги первыми
func (s *PrivateMessageServiceImpl) Conversations(db *gorm.DB, userID string) (*dto.ConversationListResponse, error) {
	peers, err := s.repos.PrivateMessages.FindPeers(db, userID)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	ids := make([]string, 0, len(peers))
	for _, p := range peers {
		ids = append(ids, p.PeerID)
	}
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
	out := make([]dto.ConversationSummary, 0, len(peers))
	for _, p := range peers {
		user, ok := users[p.PeerID]
		if !ok {
			continue
		}
		item := dto.ConversationSummary{
			Peer:        toUserSummary(&user, photos[p.PeerID], now, window),
			UnreadCount: p.UnreadCount,
		}
		last, err := s.repos.PrivateMessages.FindLastBetween(db, userID, p.PeerID)
		if err != nil {
			return nil, apperrors.DatabaseError(err)
		}
		if last != nil {
			resp := toPrivateMessageResponse(last)
			item.LastMessage = &resp
		}
		out = append(out, item)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return lastMessageTime(out[i]).After(lastMessageTime(out[j]))
	})

	return &dto.ConversationListResponse{Conversations: out}, nil
}

func (s *PrivateMessageServiceImpl) UnreadCount(db *gorm.DB, userID string) (*dto.UnreadCountResponse, error) {
	count, err := s.repos.PrivateMessages.CountUnread(db, userID)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	return &dto.UnreadCountResponse{UnreadCount: count}, nil
}

func lastMessageTime(c dto.ConversationSummary) time.Time {
	if c.LastMessage == nil {
		return time.Time{}
	}
	return c.LastMessage.CreatedAt
}
