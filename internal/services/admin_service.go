package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"auxchat_backend/internal/dto"
	"auxchat_backend/internal/logger"
	"auxchat_backend/internal/metrics"
	"auxchat_backend/internal/models"
	"auxchat_backend/internal/repositories"
	"auxchat_backend/internal/storage"
	"auxchat_backend/pkg/apperrors"
)

type AdminService interface {
	ListUsers(db *gorm.DB) (*dto.AdminUserListResponse, error)
	Action(ctx context.Context, db *gorm.DB, req *dto.AdminActionRequest) (*dto.AdminActionResponse, error)
}

type AdminServiceImpl struct {
	repos    *repositories.Repositories
	storage  storage.Storage
	notifier Notifier
}

func NewAdminService(repos *repositories.Repositories, store storage.Storage, notifier Notifier) AdminService {
	if notifier == nil {
		notifier = NewNopNotifier()
	}
	return &AdminServiceImpl{repos: repos, storage: store, notifier: notifier}
}

func (s *AdminServiceImpl) ListUsers(db *gorm.DB) (*dto.AdminUserListResponse, error) {
	users, err := s.repos.Users.FindAll(db)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	photos, err := s.repos.Photos.FirstPhotoURLs(db, ids)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	out := make([]dto.AdminUserResponse, 0, len(users))
	for i := range users {
		u := &users[i]
		out = append(out, dto.AdminUserResponse{
			ID:        u.ID,
			Phone:     u.PhoneValue(),
			Username:  u.Username,
			Avatar:    avatarOf(u, photos[u.ID]),
			Energy:    u.Energy,
			IsAdmin:   u.IsAdmin,
			IsBanned:  u.IsBanned,
			CreatedAt: u.CreatedAt,
		})
	}
	return &dto.AdminUserListResponse{Users: out}, nil
}

func (s *AdminServiceImpl) Action(ctx context.Context, db *gorm.DB, req *dto.AdminActionRequest) (*dto.AdminActionResponse, error) {
	target := req.TargetUserID

	switch models.AdminAction(req.Action) {
	case models.AdminActionAddEnergy:
		if req.Amount <= 0 {
			return nil, apperrors.ValidationError(map[string]string{"amount": "Must be greater than 0"})
		}
		balance, err := s.repos.Users.AddEnergy(db, target, req.Amount)
		if err != nil {
			return nil, mapUserError(err)
		}
		metrics.EnergyCredited.WithLabelValues("admin").Add(float64(req.Amount))
		logger.EnergyLog(target, req.Amount, "admin")
		s.notifier.SendToUser(target, eventEnergyUpdated, energyPayload{Energy: balance, Delta: req.Amount, Reason: "admin"})
		return energyResult(fmt.Sprintf("Added %d energy", req.Amount), balance), nil

	case models.AdminActionRemoveEnergy:
		if req.Amount <= 0 {
			return nil, apperrors.ValidationError(map[string]string{"amount": "Must be greater than 0"})
		}
		balance, err := s.repos.Users.RemoveEnergy(db, target, req.Amount)
		if err != nil {
			return nil, mapUserError(err)
		}
		logger.EnergyLog(target, -req.Amount, "admin")
		s.notifier.SendToUser(target, eventEnergyUpdated, energyPayload{Energy: balance, Delta: -req.Amount, Reason: "admin"})
		return energyResult(fmt.Sprintf("Removed %d energy", req.Amount), balance), nil

	case models.AdminActionBan:
		return s.setFlag(db, target, "is_banned", true, "User banned")
	case models.AdminActionUnban:
		return s.setFlag(db, target, "is_banned", false, "User unbanned")
	case models.AdminActionSetAdmin:
		return s.setFlag(db, target, "is_admin", true, "Admin rights granted")
	case models.AdminActionUnsetAdmin:
		return s.setFlag(db, target, "is_admin", false, "Admin rights revoked")

	case models.AdminActionDelete:
		if err := s.deleteUser(ctx, db, target); err != nil {
			return nil, err
		}
		return &dto.AdminActionResponse{Success: true, Message: "User deleted"}, nil

	default:
		return nil, apperrors.ErrInvalidAdminAction
	}
}

func (s *AdminServiceImpl) setFlag(db *gorm.DB, userID, column string, value bool, message string) (*dto.AdminActionResponse, error) {
	if err := s.repos.Users.UpdateFields(db, userID, map[string]interface{}{column: value}); err != nil {
		return nil, mapUserError(err)
	}
	logger.Info("Admin action applied", "user_id", userID, column, value)
	return &dto.AdminActionResponse{Success: true, Message: message}, nil
}

// deleteUser удаляет пользователя со всеми данными в одной транзакции.
// Файлы в хранилище удаляются после коммита.
func (s *AdminServiceImpl) deleteUser(ctx context.Context, db *gorm.DB, userID string) error {
	var keys []string
	err := db.Transaction(func(tx *gorm.DB) error {
		exists, err := s.repos.Users.Exists(tx, userID)
		if err != nil {
			return apperrors.DatabaseError(err)
		}
		if !exists {
			return apperrors.ErrUserNotFound
		}

		steps := []func(*gorm.DB, string) error{
			s.repos.Reactions.DeleteByMessagesOfUser,
			s.repos.Reactions.DeleteByUser,
			s.repos.Messages.DeleteByUser,
			s.repos.PrivateMessages.DeleteByUser,
			s.repos.Subscriptions.DeleteByUser,
			s.repos.Blacklist.DeleteByUser,
			s.repos.Photos.DeleteByUser,
			s.repos.Payments.DeleteByUser,
		}
		for _, step := range steps {
			if err := step(tx, userID); err != nil {
				return apperrors.DatabaseError(err)
			}
		}

		keys, err = s.repos.Uploads.DeleteByUser(tx, userID)
		if err != nil {
			return apperrors.DatabaseError(err)
		}

		if err := s.repos.Users.Delete(tx, userID); err != nil {
			if errors.Is(err, repositories.ErrUserNotFound) {
				return apperrors.ErrUserNotFound
			}
			return apperrors.DatabaseError(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.storage != nil {
		for _, key := range keys {
			if err := s.storage.Delete(ctx, key); err != nil {
				logger.CtxWithError(ctx, "Failed to delete stored object", err, "key", key)
			}
		}
	}
	logger.CtxInfo(ctx, "User deleted by admin", "user_id", userID, "objects", len(keys))
	return nil
}

func energyResult(message string, balance int) *dto.AdminActionResponse {
	return &dto.AdminActionResponse{Success: true, Message: message, Energy: &balance}
}
