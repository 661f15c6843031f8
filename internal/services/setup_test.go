package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"auxchat_backend/database"
	"auxchat_backend/internal/auth"
	"auxchat_backend/internal/cache"
	"auxchat_backend/internal/config"
	"auxchat_backend/internal/models"
	"auxchat_backend/internal/repositories"
)

type testEnv struct {
	db       *gorm.DB
	repos    *repositories.Repositories
	cfg      *config.Config
	tokens   *auth.TokenIssuer
	cache    cache.Cache
	notifier *recordingNotifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()) + "_" + uuid.NewString()[:8]
	db, err := database.OpenInMemory(name)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	cfg := &config.Config{}
	cfg.Database.DSN = "memory"
	cfg.Auth.JWTSecret = "test-secret"
	config.ApplyDefaults(cfg)

	c := cache.NewMemoryCache()
	t.Cleanup(func() { _ = c.Close() })

	return &testEnv{
		db:       db,
		repos:    repositories.NewRepositories(),
		cfg:      cfg,
		tokens:   auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.TokenTTL()),
		cache:    c,
		notifier: &recordingNotifier{},
	}
}

// createUser создает пользователя напрямую в БД
func (e *testEnv) createUser(t *testing.T, username string, energy int) *models.User {
	t.Helper()
	phone := "+7900" + digitsOnly(uuid.NewString(), 7)
	hash, err := auth.HashPassword("secret123")
	require.NoError(t, err)

	user := &models.User{
		Phone:        &phone,
		Username:     username,
		PasswordHash: hash,
		Energy:       energy,
	}
	require.NoError(t, e.repos.Users.Create(e.db, user))
	return user
}

func (e *testEnv) setLocation(t *testing.T, userID string, lat, lon float64) {
	t.Helper()
	require.NoError(t, e.repos.Users.UpdateFields(e.db, userID, map[string]interface{}{
		"latitude":  lat,
		"longitude": lon,
	}))
}

func digitsOnly(s string, n int) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	out := b.String() + "0000000000"
	return out[:n]
}

type sentEvent struct {
	userID    string
	eventType string
	payload   any
}

// recordingNotifier запоминает отправленные события
type recordingNotifier struct {
	mu     sync.Mutex
	events []sentEvent
}

func (n *recordingNotifier) Broadcast(eventType string, payload any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, sentEvent{eventType: eventType, payload: payload})
}

func (n *recordingNotifier) SendToUser(userID, eventType string, payload any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, sentEvent{userID: userID, eventType: eventType, payload: payload})
}

func (n *recordingNotifier) count(eventType string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, e := range n.events {
		if e.eventType == eventType {
			c++
		}
	}
	return c
}

// stubSMS запоминает последнее сообщение
type stubSMS struct {
	mu   sync.Mutex
	last string
	err  error
}

func (s *stubSMS) Send(_ context.Context, _ string, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.last = text
	return nil
}

func (s *stubSMS) Validate() error { return nil }

func hoursAgo(h int) time.Time {
	return time.Now().UTC().Add(-time.Duration(h) * time.Hour)
}
