package workers

import (
	"context"
	"time"

	"gorm.io/gorm"

	"auxchat_backend/internal/logger"
	"auxchat_backend/internal/repositories"
)

const paymentExpiryWorker = "payment_expiry"

type PaymentExpiryWorker struct {
	db       *gorm.DB
	repos    *repositories.Repositories
	interval time.Duration
	lifetime time.Duration
	now      func() time.Time
}

func NewPaymentExpiryWorker(db *gorm.DB, repos *repositories.Repositories, interval, lifetime time.Duration) *PaymentExpiryWorker {
	return &PaymentExpiryWorker{db: db, repos: repos, interval: interval, lifetime: lifetime, now: time.Now}
}

// Start запускает отмену зависших pending платежей
func (w *PaymentExpiryWorker) Start(ctx context.Context) {
	go runEvery(ctx, paymentExpiryWorker, w.interval, w.RunOnce)
}

// RunOnce переводит в canceled платежи, созданные раньше now-lifetime.
// Энергия за них не начисляется, поздний webhook такой платеж уже не найдет в pending.
func (w *PaymentExpiryWorker) RunOnce(ctx context.Context) (int64, error) {
	before := w.now().UTC().Add(-w.lifetime)
	affected, err := w.repos.Payments.CancelStale(w.db.WithContext(ctx), before)
	logger.WorkerLog(paymentExpiryWorker, "cancel_stale", affected, err)
	return affected, err
}
