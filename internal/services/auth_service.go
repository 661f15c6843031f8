package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"auxchat_backend/internal/auth"
	"auxchat_backend/internal/cache"
	"auxchat_backend/internal/config"
	"auxchat_backend/internal/dto"
	"auxchat_backend/internal/logger"
	"auxchat_backend/internal/metrics"
	"auxchat_backend/internal/models"
	"auxchat_backend/internal/repositories"
	"auxchat_backend/internal/sanitize"
	"auxchat_backend/internal/sms"
	"auxchat_backend/internal/validator"
	"auxchat_backend/pkg/apperrors"
)

// Подтвержденный код годится для завершения регистрации не дольше этого окна
const signupCodeWindow = 30 * time.Minute

// Допустимое расхождение часов для auth_date из будущего
const telegramClockSkew = 5 * time.Minute

type AuthService interface {
	Register(db *gorm.DB, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(db *gorm.DB, req *dto.LoginRequest) (*dto.AuthResponse, error)
	SendSMS(ctx context.Context, db *gorm.DB, req *dto.SendSMSRequest) (*dto.SendSMSResponse, error)
	VerifySMS(db *gorm.DB, req *dto.VerifySMSRequest) (*dto.VerifySMSResponse, error)
	CompleteSignup(db *gorm.DB, req *dto.CompleteSignupRequest) (*dto.AuthResponse, error)
	ResetPassword(db *gorm.DB, req *dto.ResetPasswordRequest) error
	TelegramAuth(db *gorm.DB, req *dto.TelegramAuthRequest) (*dto.AuthResponse, error)
}

type AuthServiceImpl struct {
	repos  *repositories.Repositories
	tokens *auth.TokenIssuer
	sms    sms.Provider
	cache  cache.Cache
	cfg    *config.Config
}

func NewAuthService(
	repos *repositories.Repositories,
	tokens *auth.TokenIssuer,
	smsProvider sms.Provider,
	c cache.Cache,
	cfg *config.Config,
) AuthService {
	return &AuthServiceImpl{
		repos:  repos,
		tokens: tokens,
		sms:    smsProvider,
		cache:  c,
		cfg:    cfg,
	}
}

// Register - регистрация по телефону и паролю
func (s *AuthServiceImpl) Register(db *gorm.DB, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	user, err := s.createPasswordUser(db, req.Phone, req.Username, req.Password)
	if err != nil {
		return nil, err
	}
	return s.authResponse(user, "", true)
}

// Login - вход по телефону и паролю
func (s *AuthServiceImpl) Login(db *gorm.DB, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	phone := validator.NormalizePhone(req.Phone)

	user, err := s.repos.Users.FindByPhone(db, phone)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.DatabaseError(err)
	}

	ok, needsRehash := auth.CheckPassword(req.Password, user.PasswordHash)
	if !ok {
		return nil, apperrors.ErrInvalidCredentials
	}
	if user.IsBanned {
		return nil, apperrors.ErrUserBanned
	}

	now := time.Now().UTC()
	fields := map[string]interface{}{"last_activity": now}
	if needsRehash {
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		fields["password_hash"] = hash
		logger.Info("Legacy password hash upgraded", "user_id", user.ID)
	}
	if err := s.repos.Users.UpdateFields(db, user.ID, fields); err != nil {
		return nil, mapUserError(err)
	}
	user.LastActivity = &now

	firstPhoto, err := s.firstPhoto(db, user.ID)
	if err != nil {
		return nil, err
	}
	return s.authResponse(user, firstPhoto, false)
}

// SendSMS генерирует код, сохраняет и отправляет через провайдера.
// Не чаще одного раза в ResendInterval на номер.
func (s *AuthServiceImpl) SendSMS(ctx context.Context, db *gorm.DB, req *dto.SendSMSRequest) (*dto.SendSMSResponse, error) {
	phone := validator.NormalizePhone(req.Phone)
	throttleKey := "sms:throttle:" + phone

	if s.cache != nil {
		resend := time.Duration(s.cfg.SMS.ResendInterval) * time.Second
		acquired, err := s.cache.SetNX(ctx, throttleKey, "1", resend)
		if err != nil {
			logger.CtxWithError(ctx, "SMS throttle check failed", err, "phone", phone)
		} else if !acquired {
			return nil, apperrors.ErrSmsThrottled
		}
	}

	code, err := generateCode(4)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	ttl := time.Duration(s.cfg.SMS.CodeTTL) * time.Minute
	record := &models.SmsCode{
		Phone:     phone,
		Code:      code,
		ExpiresAt: time.Now().UTC().Add(ttl),
	}
	if err := s.repos.SmsCodes.Create(db, record); err != nil {
		s.releaseThrottle(ctx, throttleKey)
		return nil, apperrors.DatabaseError(err)
	}

	if err := s.sms.Send(ctx, phone, sms.CodeText(code)); err != nil {
		metrics.SmsSent.WithLabelValues("error").Inc()
		s.releaseThrottle(ctx, throttleKey)
		return nil, apperrors.ExternalServiceError(err, "sms", "Failed to send SMS")
	}
	metrics.SmsSent.WithLabelValues("ok").Inc()

	return &dto.SendSMSResponse{Sent: true, ExpiresIn: int(ttl.Seconds())}, nil
}

// releaseThrottle снимает блокировку номера, если SMS так и не ушло
func (s *AuthServiceImpl) releaseThrottle(ctx context.Context, key string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, key); err != nil {
		logger.CtxWithError(ctx, "Failed to release SMS throttle", err, "key", key)
	}
}

// VerifySMS проверяет последний код для номера и помечает его использованным
func (s *AuthServiceImpl) VerifySMS(db *gorm.DB, req *dto.VerifySMSRequest) (*dto.VerifySMSResponse, error) {
	phone := validator.NormalizePhone(req.Phone)
	if _, err := s.consumeCode(db, phone, req.Code); err != nil {
		return nil, err
	}

	user, err := s.repos.Users.FindByPhone(db, phone)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return &dto.VerifySMSResponse{Verified: true, IsNew: true}, nil
		}
		return nil, apperrors.DatabaseError(err)
	}

	if user.IsBanned {
		return nil, apperrors.ErrUserBanned
	}

	firstPhoto, err := s.firstPhoto(db, user.ID)
	if err != nil {
		return nil, err
	}
	resp, err := s.authResponse(user, firstPhoto, false)
	if err != nil {
		return nil, err
	}
	return &dto.VerifySMSResponse{
		Verified: true,
		IsNew:    false,
		UserID:   &user.ID,
		Token:    resp.Token,
		User:     resp.User,
	}, nil
}

// CompleteSignup создает пользователя после подтверждения телефона.
// Код либо уже подтвержден (не старше signupCodeWindow), либо подтверждается здесь.
func (s *AuthServiceImpl) CompleteSignup(db *gorm.DB, req *dto.CompleteSignupRequest) (*dto.AuthResponse, error) {
	phone := validator.NormalizePhone(req.Phone)

	latest, err := s.repos.SmsCodes.FindLatest(db, phone)
	if err != nil {
		if errors.Is(err, repositories.ErrSmsCodeNotFound) {
			return nil, apperrors.ErrSmsCodeNotFound
		}
		return nil, apperrors.DatabaseError(err)
	}

	if latest.IsUsed {
		if !auth.SecretsEqual(latest.Code, req.Code) || time.Since(latest.CreatedAt) > signupCodeWindow {
			return nil, apperrors.ErrSmsNotVerified
		}
	} else if _, err := s.consumeCode(db, phone, req.Code); err != nil {
		return nil, err
	}

	var user *models.User
	err = db.Transaction(func(tx *gorm.DB) error {
		var err error
		user, err = s.createPasswordUser(tx, phone, req.Username, req.Password)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.authResponse(user, "", true)
}

// ResetPassword меняет пароль по коду из SMS
func (s *AuthServiceImpl) ResetPassword(db *gorm.DB, req *dto.ResetPasswordRequest) error {
	phone := validator.NormalizePhone(req.Phone)

	if !auth.ValidatePassword(req.NewPassword, s.cfg.Auth.PasswordMinLength) {
		return apperrors.ErrWeakPassword
	}

	user, err := s.repos.Users.FindByPhone(db, phone)
	if err != nil {
		return mapUserError(err)
	}

	if _, err := s.consumeCode(db, phone, req.Code); err != nil {
		return err
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return apperrors.InternalError(err)
	}
	if err := s.repos.Users.UpdateFields(db, user.ID, map[string]interface{}{"password_hash": hash}); err != nil {
		return mapUserError(err)
	}
	logger.Info("Password reset", "user_id", user.ID)
	return nil
}

// TelegramAuth проверяет подпись Telegram Login Widget и создает или обновляет пользователя
func (s *AuthServiceImpl) TelegramAuth(db *gorm.DB, req *dto.TelegramAuthRequest) (*dto.AuthResponse, error) {
	botToken := s.cfg.Telegram.BotToken
	if botToken == "" {
		return nil, apperrors.ErrTelegramNotConfigured
	}

	fields := map[string]string{
		"id":         strconv.FormatInt(req.ID, 10),
		"first_name": req.FirstName,
		"last_name":  req.LastName,
		"username":   req.Username,
		"photo_url":  req.PhotoURL,
		"auth_date":  strconv.FormatInt(req.AuthDate, 10),
	}
	if !auth.VerifyTelegramHash(botToken, fields, req.Hash) {
		return nil, apperrors.ErrInvalidTelegramHash
	}

	maxAge := time.Duration(s.cfg.Telegram.MaxAuthAge) * time.Second
	age := time.Since(time.Unix(req.AuthDate, 0))
	if age > maxAge || age < -telegramClockSkew {
		return nil, apperrors.ErrTelegramAuthExpired
	}

	name := telegramDisplayName(req)
	now := time.Now().UTC()

	existing, err := s.repos.Users.FindByTelegramID(db, req.ID)
	switch {
	case err == nil:
		if existing.IsBanned {
			return nil, apperrors.ErrUserBanned
		}
		updates := map[string]interface{}{
			"username":      name,
			"last_activity": now,
		}
		if req.PhotoURL != "" {
			updates["avatar_url"] = req.PhotoURL
			existing.AvatarURL = req.PhotoURL
		}
		if err := s.repos.Users.UpdateFields(db, existing.ID, updates); err != nil {
			return nil, mapUserError(err)
		}
		existing.Username = name
		existing.LastActivity = &now

		firstPhoto, err := s.firstPhoto(db, existing.ID)
		if err != nil {
			return nil, err
		}
		return s.authResponse(existing, firstPhoto, false)

	case errors.Is(err, repositories.ErrUserNotFound):
		telegramID := req.ID
		user := &models.User{
			Username:     name,
			AvatarURL:    req.PhotoURL,
			Energy:       s.cfg.Energy.Initial,
			TelegramID:   &telegramID,
			LastActivity: &now,
		}
		if err := s.repos.Users.Create(db, user); err != nil {
			return nil, apperrors.DatabaseError(err)
		}
		logger.Info("User created via Telegram", "user_id", user.ID)
		return s.authResponse(user, "", true)

	default:
		return nil, apperrors.DatabaseError(err)
	}
}

func (s *AuthServiceImpl) createPasswordUser(db *gorm.DB, rawPhone, rawUsername, password string) (*models.User, error) {
	phone := validator.NormalizePhone(rawPhone)
	if !validator.IsValidPhone(phone) {
		return nil, apperrors.ValidationError(map[string]string{"phone": "Must be a valid phone number"})
	}

	username := sanitize.Text(rawUsername)
	if n := utf8.RuneCountInString(username); n < 3 || n > 50 {
		return nil, apperrors.ValidationError(map[string]string{"username": "Must be between 3 and 50 characters"})
	}

	if !auth.ValidatePassword(password, s.cfg.Auth.PasswordMinLength) {
		return nil, apperrors.ErrWeakPassword
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	now := time.Now().UTC()
	user := &models.User{
		Phone:        &phone,
		Username:     username,
		PasswordHash: hash,
		Energy:       s.cfg.Energy.Initial,
		LastActivity: &now,
	}
	if err := s.repos.Users.Create(db, user); err != nil {
		if errors.Is(err, repositories.ErrUserAlreadyExists) {
			return nil, apperrors.ErrPhoneAlreadyRegistered
		}
		return nil, apperrors.DatabaseError(err)
	}

	logger.Info("User registered", "user_id", user.ID)
	return user, nil
}

// consumeCode: последний код номера, не использован, не истек, совпадает
func (s *AuthServiceImpl) consumeCode(db *gorm.DB, phone, code string) (*models.SmsCode, error) {
	latest, err := s.repos.SmsCodes.FindLatest(db, phone)
	if err != nil {
		if errors.Is(err, repositories.ErrSmsCodeNotFound) {
			return nil, apperrors.ErrSmsCodeNotFound
		}
		return nil, apperrors.DatabaseError(err)
	}

	if latest.IsUsed {
		return nil, apperrors.ErrSmsCodeUsed
	}
	if latest.IsExpired(time.Now().UTC()) {
		return nil, apperrors.ErrSmsCodeExpired
	}
	if !auth.SecretsEqual(latest.Code, strings.TrimSpace(code)) {
		return nil, apperrors.ErrSmsCodeInvalid
	}

	marked, err := s.repos.SmsCodes.MarkUsed(db, latest.ID)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	if !marked {
		// параллельный запрос успел раньше
		return nil, apperrors.ErrSmsCodeUsed
	}
	latest.IsUsed = true
	return latest, nil
}

func (s *AuthServiceImpl) firstPhoto(db *gorm.DB, userID string) (string, error) {
	photos, err := s.repos.Photos.FirstPhotoURLs(db, []string{userID})
	if err != nil {
		return "", apperrors.DatabaseError(err)
	}
	return photos[userID], nil
}

func (s *AuthServiceImpl) authResponse(user *models.User, firstPhoto string, isNew bool) (*dto.AuthResponse, error) {
	token, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return &dto.AuthResponse{
		User:  toUserResponse(user, firstPhoto),
		Token: token,
		IsNew: isNew,
	}, nil
}

// telegramDisplayName: username, затем "имя фамилия", затем tg_<id>
func telegramDisplayName(req *dto.TelegramAuthRequest) string {
	name := sanitize.Text(req.Username)
	if name == "" {
		name = sanitize.Text(strings.TrimSpace(req.FirstName + " " + req.LastName))
	}
	if name == "" {
		name = fmt.Sprintf("tg_%d", req.ID)
	}
	if utf8.RuneCountInString(name) > 50 {
		name = string([]rune(name)[:50])
	}
	return name
}

func generateCode(digits int) (string, error) {
	limit := big.NewInt(1)
	for i := 0; i < digits; i++ {
		limit.Mul(limit, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", digits, n.Int64()), nil
}
