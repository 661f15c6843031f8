package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"auxchat_backend/internal/config"
	"auxchat_backend/internal/dto"
	"auxchat_backend/internal/models"
	"auxchat_backend/internal/repositories"
	"auxchat_backend/pkg/apperrors"
)

type PhotoService interface {
	ListPhotos(db *gorm.DB, userID string) (*dto.PhotoListResponse, error)
	AddPhoto(db *gorm.DB, userID string, req *dto.AddPhotoRequest) (*dto.PhotoResponse, error)
	SetMainPhoto(db *gorm.DB, userID, photoID string) (*dto.PhotoListResponse, error)
	DeletePhoto(db *gorm.DB, userID, photoID string) error
}

type PhotoServiceImpl struct {
	repos *repositories.Repositories
	cfg   *config.Config
}

func NewPhotoService(repos *repositories.Repositories, cfg *config.Config) PhotoService {
	return &PhotoServiceImpl{repos: repos, cfg: cfg}
}

func (s *PhotoServiceImpl) maxPhotos() int {
	if s.cfg.Upload.MaxPhotos <= 0 {
		return 6
	}
	return s.cfg.Upload.MaxPhotos
}

func (s *PhotoServiceImpl) ListPhotos(db *gorm.DB, userID string) (*dto.PhotoListResponse, error) {
	exists, err := s.repos.Users.Exists(db, userID)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	if !exists {
		return nil, apperrors.ErrUserNotFound
	}

	photos, err := s.repos.Photos.FindByUser(db, userID, s.maxPhotos())
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	return &dto.PhotoListResponse{Photos: toPhotoResponses(photos)}, nil
}

// AddPhoto добавляет фото в конец галереи. Строка пользователя блокируется
// до подсчета, чтобы параллельные вставки не обошли лимит.
func (s *PhotoServiceImpl) AddPhoto(db *gorm.DB, userID string, req *dto.AddPhotoRequest) (*dto.PhotoResponse, error) {
	url := strings.TrimSpace(req.PhotoURL)
	if url == "" {
		return nil, apperrors.ValidationError(map[string]string{"photo_url": "This field is required"})
	}

	photo := &models.UserPhoto{UserID: userID, PhotoURL: url}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := s.repos.Users.LockForUpdate(tx, userID); err != nil {
			return mapUserError(err)
		}
		count, err := s.repos.Photos.CountByUser(tx, userID)
		if err != nil {
			return apperrors.DatabaseError(err)
		}
		if count >= int64(s.maxPhotos()) {
			return apperrors.ErrPhotoLimitReached
		}
		photo.DisplayOrder = int(count)
		if err := s.repos.Photos.Create(tx, photo); err != nil {
			return apperrors.DatabaseError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := toPhotoResponses([]models.UserPhoto{*photo})[0]
	return &resp, nil
}

func (s *PhotoServiceImpl) SetMainPhoto(db *gorm.DB, userID, photoID string) (*dto.PhotoListResponse, error) {
	err := db.Transaction(func(tx *gorm.DB) error {
		return s.repos.Photos.SetMain(tx, photoID, userID)
	})
	if err != nil {
		return nil, mapPhotoError(err)
	}

	photos, err := s.repos.Photos.FindByUser(db, userID, s.maxPhotos())
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	return &dto.PhotoListResponse{Photos: toPhotoResponses(photos)}, nil
}

func (s *PhotoServiceImpl) DeletePhoto(db *gorm.DB, userID, photoID string) error {
	if err := s.repos.Photos.Delete(db, photoID, userID); err != nil {
		return mapPhotoError(err)
	}
	return nil
}

func mapPhotoError(err error) error {
	if errors.Is(err, repositories.ErrPhotoNotFound) {
		return apperrors.ErrPhotoNotFound
	}
	return apperrors.DatabaseError(err)
}
