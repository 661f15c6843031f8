package services

import (
	"gorm.io/gorm"

	"auxchat_backend/internal/config"
	"auxchat_backend/internal/dto"
	"auxchat_backend/internal/logger"
	"auxchat_backend/internal/repositories"
	"auxchat_backend/pkg/apperrors"
)

// SocialService - подписки и черный список
type SocialService interface {
	Subscribe(db *gorm.DB, userID, targetID string) (*dto.SubscriptionStatus, error)
	Unsubscribe(db *gorm.DB, userID, targetID string) (*dto.SubscriptionStatus, error)
	ListSubscriptions(db *gorm.DB, userID string) (*dto.UserListResponse, error)
	ListSubscribers(db *gorm.DB, userID string) (*dto.UserListResponse, error)

	Block(db *gorm.DB, userID, blockedID string) (*dto.BlockStatus, error)
	Unblock(db *gorm.DB, userID, blockedID string) (*dto.BlockStatus, error)
	ListBlocked(db *gorm.DB, userID string) (*dto.UserListResponse, error)
}

type SocialServiceImpl struct {
	repos *repositories.Repositories
	cfg   *config.Config
}

func NewSocialService(repos *repositories.Repositories, cfg *config.Config) SocialService {
	return &SocialServiceImpl{repos: repos, cfg: cfg}
}

func (s *SocialServiceImpl) Subscribe(db *gorm.DB, userID, targetID string) (*dto.SubscriptionStatus, error) {
	if userID == targetID {
		return nil, apperrors.ErrSelfSubscription
	}
	if err := s.ensureUser(db, targetID); err != nil {
		return nil, err
	}

	created, err := s.repos.Subscriptions.Create(db, userID, targetID)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	if created {
		logger.Debug("Subscription created", "subscriber_id", userID, "target_id", targetID)
	}
	return &dto.SubscriptionStatus{Subscribed: true}, nil
}

func (s *SocialServiceImpl) Unsubscribe(db *gorm.DB, userID, targetID string) (*dto.SubscriptionStatus, error) {
	if err := s.repos.Subscriptions.Delete(db, userID, targetID); err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	return &dto.SubscriptionStatus{Subscribed: false}, nil
}

func (s *SocialServiceImpl) ListSubscriptions(db *gorm.DB, userID string) (*dto.UserListResponse, error) {
	users, err := s.repos.Subscriptions.FindFollowing(db, userID)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	items, err := summaries(db, s.repos, users, onlineWindow(s.cfg))
	if err != nil {
		return nil, err
	}
	return &dto.UserListResponse{Users: items}, nil
}

func (s *SocialServiceImpl) ListSubscribers(db *gorm.DB, userID string) (*dto.UserListResponse, error) {
	users, err := s.repos.Subscriptions.FindFollowers(db, userID)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	items, err := summaries(db, s.repos, users, onlineWindow(s.cfg))
	if err != nil {
		return nil, err
	}
	return &dto.UserListResponse{Users: items}, nil
}

func (s *SocialServiceImpl) Block(db *gorm.DB, userID, blockedID string) (*dto.BlockStatus, error) {
	if userID == blockedID {
		return nil, apperrors.ErrSelfBlock
	}
	if err := s.ensureUser(db, blockedID); err != nil {
		return nil, err
	}

	if _, err := s.repos.Blacklist.Create(db, userID, blockedID); err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	return &dto.BlockStatus{Blocked: true}, nil
}

func (s *SocialServiceImpl) Unblock(db *gorm.DB, userID, blockedID string) (*dto.BlockStatus, error) {
	if err := s.repos.Blacklist.Delete(db, userID, blockedID); err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	return &dto.BlockStatus{Blocked: false}, nil
}

func (s *SocialServiceImpl) ListBlocked(db *gorm.DB, userID string) (*dto.UserListResponse, error) {
	users, err := s.repos.Blacklist.FindBlockedUsers(db, userID)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	items, err := summaries(db, s.repos, users, onlineWindow(s.cfg))
	if err != nil {
		return nil, err
	}
	return &dto.UserListResponse{Users: items}, nil
}

func (s *SocialServiceImpl) ensureUser(db *gorm.DB, id string) error {
	exists, err := s.repos.Users.Exists(db, id)
	if err != nil {
		return apperrors.DatabaseError(err)
	}
	if !exists {
		return apperrors.ErrUserNotFound
	}
	return nil
}
