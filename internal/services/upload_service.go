package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"auxchat_backend/internal/config"
	"auxchat_backend/internal/dto"
	"auxchat_backend/internal/imageprocessor"
	"auxchat_backend/internal/logger"
	"auxchat_backend/internal/models"
	"auxchat_backend/internal/repositories"
	"auxchat_backend/internal/storage"
	"auxchat_backend/pkg/apperrors"
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// расширение файла по типу голосового сообщения
var voiceExtensions = map[string]string{
	"audio/webm":      "webm",
	"video/webm":      "webm",
	"audio/ogg":       "ogg",
	"application/ogg": "ogg",
	"audio/mp4":       "m4a",
	"audio/mpeg":      "mp3",
	"audio/wav":       "wav",
	"audio/x-wav":     "wav",
	"audio/wave":      "wav",
}

type UploadService interface {
	UploadPhoto(ctx context.Context, db *gorm.DB, userID string, data []byte, contentType string) (*dto.UploadResponse, error)
	UploadBase64Photo(ctx context.Context, db *gorm.DB, userID string, req *dto.Base64UploadRequest) (*dto.UploadResponse, error)
	UploadVoice(ctx context.Context, db *gorm.DB, userID string, data []byte, contentType string) (*dto.UploadResponse, error)
	UploadProfilePhoto(ctx context.Context, db *gorm.DB, userID string, data []byte, contentType string) (*dto.PhotoResponse, error)
	Presign(ctx context.Context, userID string, req *dto.PresignRequest) (*dto.PresignResponse, error)
	MaxImageSize() int64
	MaxVoiceSize() int64
}

type UploadServiceImpl struct {
	repos     *repositories.Repositories
	storage   storage.Storage
	processor *imageprocessor.Processor
	photos    PhotoService
	cfg       *config.Config
}

func NewUploadService(
	repos *repositories.Repositories,
	store storage.Storage,
	processor *imageprocessor.Processor,
	photos PhotoService,
	cfg *config.Config,
) UploadService {
	return &UploadServiceImpl{
		repos:     repos,
		storage:   store,
		processor: processor,
		photos:    photos,
		cfg:       cfg,
	}
}

func (s *UploadServiceImpl) MaxImageSize() int64 { return s.cfg.Upload.MaxImageSize }
func (s *UploadServiceImpl) MaxVoiceSize() int64 { return s.cfg.Upload.MaxVoiceSize }

// UploadPhoto проверяет тип по содержимому, нормализует картинку в JPEG и сохраняет под photos/<uuid>.jpg
func (s *UploadServiceImpl) UploadPhoto(ctx context.Context, db *gorm.DB, userID string, data []byte, contentType string) (*dto.UploadResponse, error) {
	return s.storePhoto(ctx, db, userID, data, models.UploadKindPhoto)
}

func (s *UploadServiceImpl) UploadBase64Photo(ctx context.Context, db *gorm.DB, userID string, req *dto.Base64UploadRequest) (*dto.UploadResponse, error) {
	data, err := decodeBase64Image(req.Image)
	if err != nil {
		return nil, apperrors.ErrInvalidImage.WithError(err)
	}
	return s.storePhoto(ctx, db, userID, data, models.UploadKindPhoto)
}

func (s *UploadServiceImpl) UploadVoice(ctx context.Context, db *gorm.DB, userID string, data []byte, contentType string) (*dto.UploadResponse, error) {
	if len(data) == 0 {
		return nil, apperrors.ValidationError(map[string]string{"file": "This field is required"})
	}
	if int64(len(data)) > s.cfg.Upload.MaxVoiceSize {
		return nil, apperrors.ErrFileTooLarge
	}

	mimeType := baseMediaType(contentType)
	ext, ok := voiceExtensions[mimeType]
	if !ok {
		mimeType = baseMediaType(http.DetectContentType(data))
		ext, ok = voiceExtensions[mimeType]
	}
	if !ok {
		return nil, apperrors.ErrUnsupportedFileType.WithDetails(map[string]string{"content_type": contentType})
	}

	key := "voice/" + uuid.NewString() + "." + ext
	return s.save(ctx, db, userID, models.UploadKindVoice, key, data, mimeType)
}

// UploadProfilePhoto - загрузка фото с добавлением в галерею
func (s *UploadServiceImpl) UploadProfilePhoto(ctx context.Context, db *gorm.DB, userID string, data []byte, contentType string) (*dto.PhotoResponse, error) {
	count, err := s.repos.Photos.CountByUser(db, userID)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	if count >= int64(s.cfg.Upload.MaxPhotos) {
		return nil, apperrors.ErrPhotoLimitReached
	}

	uploaded, err := s.storePhoto(ctx, db, userID, data, models.UploadKindProfilePhoto)
	if err != nil {
		return nil, err
	}
	return s.photos.AddPhoto(db, userID, &dto.AddPhotoRequest{PhotoURL: uploaded.URL})
}

// Presign выдает ссылку для прямой загрузки в хранилище
func (s *UploadServiceImpl) Presign(ctx context.Context, userID string, req *dto.PresignRequest) (*dto.PresignResponse, error) {
	mimeType := baseMediaType(req.ContentType)

	var key string
	switch req.Kind {
	case string(models.UploadKindPhoto):
		if !allowedImageTypes[mimeType] {
			return nil, apperrors.ErrUnsupportedFileType
		}
		ext := strings.TrimPrefix(mimeType, "image/")
		if ext == "jpeg" {
			ext = "jpg"
		}
		key = "photos/" + uuid.NewString() + "." + ext
	case string(models.UploadKindVoice):
		ext, ok := voiceExtensions[mimeType]
		if !ok {
			return nil, apperrors.ErrUnsupportedFileType
		}
		key = "voice/" + uuid.NewString() + "." + ext
	default:
		return nil, apperrors.ValidationError(map[string]string{"kind": "Must be one of: photo voice"})
	}

	expiry := time.Duration(s.cfg.Upload.PresignMinutes) * time.Minute
	uploadURL, err := s.storage.GetSignedUploadURL(ctx, key, mimeType, expiry)
	if err != nil {
		if errors.Is(err, storage.ErrPresignUnsupported) {
			return nil, apperrors.NewBadRequestError("Direct uploads are not supported by this storage")
		}
		return nil, apperrors.ExternalServiceError(err, "upload", "Storage unavailable")
	}

	logger.CtxDebug(ctx, "Presigned upload issued", "user_id", userID, "key", key)
	return &dto.PresignResponse{
		UploadURL: uploadURL,
		FileURL:   s.storage.GetURL(key),
		Key:       key,
		ExpiresAt: time.Now().UTC().Add(expiry),
	}, nil
}

func (s *UploadServiceImpl) storePhoto(ctx context.Context, db *gorm.DB, userID string, data []byte, kind models.UploadKind) (*dto.UploadResponse, error) {
	if len(data) == 0 {
		return nil, apperrors.ValidationError(map[string]string{"file": "This field is required"})
	}
	if int64(len(data)) > s.cfg.Upload.MaxImageSize {
		return nil, apperrors.ErrFileTooLarge
	}

	detected := baseMediaType(http.DetectContentType(data))
	if !allowedImageTypes[detected] {
		return nil, apperrors.ErrUnsupportedFileType.WithDetails(map[string]string{"content_type": detected})
	}

	result, err := s.processor.Normalize(data)
	if err != nil {
		return nil, apperrors.ErrInvalidImage.WithError(err)
	}

	key := "photos/" + uuid.NewString() + ".jpg"
	return s.save(ctx, db, userID, kind, key, result.Data, result.ContentType)
}

func (s *UploadServiceImpl) save(ctx context.Context, db *gorm.DB, userID string, kind models.UploadKind, key string, data []byte, mimeType string) (*dto.UploadResponse, error) {
	if err := s.storage.Save(ctx, key, bytes.NewReader(data), int64(len(data)), mimeType); err != nil {
		return nil, apperrors.ExternalServiceError(err, "upload", "Storage unavailable")
	}

	upload := &models.Upload{
		UserID:   userID,
		Kind:     kind,
		Key:      key,
		URL:      s.storage.GetURL(key),
		MimeType: mimeType,
		Size:     int64(len(data)),
	}
	if err := s.repos.Uploads.Create(db, upload); err != nil {
		// объект без записи в БД не нужен
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			logger.CtxWithError(ctx, "Failed to remove orphaned object", delErr, "key", key)
		}
		return nil, apperrors.DatabaseError(err)
	}

	return &dto.UploadResponse{
		ID:       upload.ID,
		URL:      upload.URL,
		Key:      upload.Key,
		MimeType: upload.MimeType,
		Size:     upload.Size,
	}, nil
}

// decodeBase64Image принимает как чистый base64, так и data URL
func decodeBase64Image(value string) ([]byte, error) {
	value = strings.TrimSpace(value)
	if strings.HasPrefix(value, "data:") {
		if i := strings.Index(value, ","); i >= 0 {
			value = value[i+1:]
		}
	}
	data, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return base64.RawStdEncoding.DecodeString(strings.TrimRight(value, "="))
	}
	return data, nil
}

func baseMediaType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.ToLower(mediaType)
}
