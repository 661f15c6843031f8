package workers

import (
	"context"
	"time"

	"gorm.io/gorm"

	"auxchat_backend/internal/logger"
	"auxchat_backend/internal/repositories"
)

const smsCleanupWorker = "sms_cleanup"

// использованные коды храним сутки для разбора инцидентов
const usedCodeRetention = 24 * time.Hour

type SmsCleanupWorker struct {
	db       *gorm.DB
	repos    *repositories.Repositories
	interval time.Duration
	now      func() time.Time
}

func NewSmsCleanupWorker(db *gorm.DB, repos *repositories.Repositories, interval time.Duration) *SmsCleanupWorker {
	return &SmsCleanupWorker{db: db, repos: repos, interval: interval, now: time.Now}
}

// Start запускает периодическую очистку SMS кодов
func (w *SmsCleanupWorker) Start(ctx context.Context) {
	go runEvery(ctx, smsCleanupWorker, w.interval, w.RunOnce)
}

// RunOnce удаляет истекшие коды и давно использованные
func (w *SmsCleanupWorker) RunOnce(ctx context.Context) (int64, error) {
	now := w.now().UTC()
	affected, err := w.repos.SmsCodes.DeleteStale(w.db.WithContext(ctx), now, now.Add(-usedCodeRetention))
	logger.WorkerLog(smsCleanupWorker, "delete_stale", affected, err)
	return affected, err
}
