package services

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"auxchat_backend/internal/config"
	"auxchat_backend/internal/dto"
	"auxchat_backend/internal/geo"
	"auxchat_backend/internal/logger"
	"auxchat_backend/internal/models"
	"auxchat_backend/internal/repositories"
	"auxchat_backend/internal/sanitize"
	"auxchat_backend/pkg/apperrors"
)

type UserService interface {
	Me(db *gorm.DB, userID string) (*dto.UserResponse, error)
	GetUser(db *gorm.DB, viewerID, userID string) (*dto.PublicUserResponse, error)
	UpdateProfile(db *gorm.DB, userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
	UpdateLocation(ctx context.Context, db *gorm.DB, userID string, req *dto.UpdateLocationRequest) (*dto.LocationResponse, error)
	UpdateActivity(db *gorm.DB, userID string) (*dto.ActivityResponse, error)
}

type UserServiceImpl struct {
	repos    *repositories.Repositories
	geocoder geo.Geocoder
	cfg      *config.Config
}

func NewUserService(repos *repositories.Repositories, geocoder geo.Geocoder, cfg *config.Config) UserService {
	return &UserServiceImpl{repos: repos, geocoder: geocoder, cfg: cfg}
}

func (s *UserServiceImpl) Me(db *gorm.DB, userID string) (*dto.UserResponse, error) {
	user, err := s.repos.Users.FindByID(db, userID)
	if err != nil {
		return nil, mapUserError(err)
	}
	photos, err := s.repos.Photos.FirstPhotoURLs(db, []string{userID})
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	return toUserResponse(user, photos[userID]), nil
}

// GetUser - публичный профиль с галереей; для чужого профиля еще флаги подписки и блокировки
func (s *UserServiceImpl) GetUser(db *gorm.DB, viewerID, userID string) (*dto.PublicUserResponse, error) {
	user, err := s.repos.Users.FindByID(db, userID)
	if err != nil {
		return nil, mapUserError(err)
	}

	photos, err := s.repos.Photos.FindByUser(db, userID, s.cfg.Upload.MaxPhotos)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	firstPhoto := ""
	if len(photos) > 0 {
		firstPhoto = photos[0].PhotoURL
	}

	resp := &dto.PublicUserResponse{
		ID:           user.ID,
		Username:     user.Username,
		Avatar:       avatarOf(user, firstPhoto),
		Bio:          user.Bio,
		City:         user.City,
		Energy:       user.Energy,
		IsOnline:     user.IsOnline(time.Now().UTC(), s.onlineWindow()),
		LastActivity: user.LastActivity,
		Photos:       toPhotoResponses(photos),
	}

	if viewerID != "" && viewerID != userID {
		subscribed, err := s.repos.Subscriptions.Exists(db, viewerID, userID)
		if err != nil {
			return nil, apperrors.DatabaseError(err)
		}
		blocked, err := s.repos.Blacklist.Exists(db, viewerID, userID)
		if err != nil {
			return nil, apperrors.DatabaseError(err)
		}
		resp.IsSubscribed = &subscribed
		resp.IsBlocked = &blocked
	}

	return resp, nil
}

func (s *UserServiceImpl) UpdateProfile(db *gorm.DB, userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	fields := map[string]interface{}{}

	if req.Username != nil {
		username := sanitize.Text(*req.Username)
		if n := utf8.RuneCountInString(username); n < 3 || n > 50 {
			return nil, apperrors.ValidationError(map[string]string{"username": "Must be between 3 and 50 characters"})
		}
		fields["username"] = username
	}
	if req.Bio != nil {
		fields["bio"] = sanitize.Text(*req.Bio)
	}
	if req.AvatarURL != nil {
		fields["avatar_url"] = strings.TrimSpace(*req.AvatarURL)
	}

	if len(fields) > 0 {
		if err := s.repos.Users.UpdateFields(db, userID, fields); err != nil {
			return nil, mapUserError(err)
		}
	}
	return s.Me(db, userID)
}

// UpdateLocation сохраняет координаты. Город без явного значения определяется геокодером,
// недоступность геокодера не мешает сохранить координаты.
func (s *UserServiceImpl) UpdateLocation(ctx context.Context, db *gorm.DB, userID string, req *dto.UpdateLocationRequest) (*dto.LocationResponse, error) {
	lat, lon := *req.Latitude, *req.Longitude
	if !geo.ValidCoordinates(lat, lon) {
		return nil, apperrors.ValidationError(map[string]string{"latitude": "Coordinates are out of range"})
	}

	city := sanitize.Text(req.City)
	if city == "" && s.geocoder != nil {
		place, err := s.geocoder.Reverse(ctx, lat, lon)
		if err != nil {
			logger.CtxWarn(ctx, "Reverse geocoding failed, city left unchanged", "error", err)
		} else {
			city = place.City
		}
	}

	fields := map[string]interface{}{
		"latitude":  lat,
		"longitude": lon,
	}
	if city != "" {
		fields["city"] = city
	}
	if err := s.repos.Users.UpdateFields(db, userID, fields); err != nil {
		return nil, mapUserError(err)
	}

	if city == "" {
		user, err := s.repos.Users.FindByID(db, userID)
		if err != nil {
			return nil, mapUserError(err)
		}
		city = user.City
	}

	return &dto.LocationResponse{Latitude: lat, Longitude: lon, City: city}, nil
}

func (s *UserServiceImpl) UpdateActivity(db *gorm.DB, userID string) (*dto.ActivityResponse, error) {
	now := time.Now().UTC()
	if err := s.repos.Users.UpdateLastActivity(db, userID, now); err != nil {
		return nil, mapUserError(err)
	}
	return &dto.ActivityResponse{LastActivity: now}, nil
}

func (s *UserServiceImpl) onlineWindow() time.Duration {
	return onlineWindow(s.cfg)
}

func onlineWindow(cfg *config.Config) time.Duration {
	if w := cfg.OnlineWindow(); w > 0 {
		return w
	}
	return 5 * time.Minute
}

// summaries строит карточки пользователей с аватарами из галереи
func summaries(db *gorm.DB, repos *repositories.Repositories, users []models.User, window time.Duration) ([]dto.UserSummary, error) {
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	photos, err := repos.Photos.FirstPhotoURLs(db, ids)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	now := time.Now().UTC()
	out := make([]dto.UserSummary, 0, len(users))
	for i := range users {
		out = append(out, toUserSummary(&users[i], photos[users[i].ID], now, window))
	}
	return out, nil
}
