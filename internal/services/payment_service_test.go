package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auxchat_backend/internal/dto"
	"auxchat_backend/internal/models"
	"auxchat_backend/internal/payment"
	"auxchat_backend/pkg/apperrors"
)

// fakeGateway выдает платежи с предсказуемыми id и помнит их состояние
type fakeGateway struct {
	mu       sync.Mutex
	requests []payment.CreateRequest
	payments map[string]*payment.PaymentInfo
	lookups  int
	err      error
}

func (g *fakeGateway) CreatePayment(_ context.Context, req payment.CreateRequest) (*payment.CreatedPayment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	g.requests = append(g.requests, req)
	id := "yk-" + req.Metadata["payment_id"]
	g.put(&payment.PaymentInfo{
		ID:       id,
		Status:   "pending",
		Amount:   req.Amount,
		Metadata: req.Metadata,
	})
	return &payment.CreatedPayment{
		ID:              id,
		Status:          "pending",
		ConfirmationURL: "https://pay.example.com/" + id,
		Raw:             []byte(`{"id":"` + id + `","status":"pending"}`),
	}, nil
}

func (g *fakeGateway) GetPayment(_ context.Context, id string) (*payment.PaymentInfo, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lookups++
	if g.err != nil {
		return nil, g.err
	}
	info, ok := g.payments[id]
	if !ok {
		return nil, payment.ErrGatewayFailed
	}
	copied := *info
	return &copied, nil
}

func (g *fakeGateway) put(info *payment.PaymentInfo) {
	if g.payments == nil {
		g.payments = map[string]*payment.PaymentInfo{}
	}
	g.payments[info.ID] = info
}

// pay отмечает платеж оплаченным, как после оплаты пользователем
func (g *fakeGateway) pay(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	info := g.payments[id]
	info.Status = payment.StatusSucceeded
	info.Paid = true
	info.Raw = []byte(`{"id":"` + id + `","status":"succeeded","paid":true}`)
}

func succeeded(externalID string, meta map[string]any) *payment.WebhookNotification {
	return &payment.WebhookNotification{
		Type:   "notification",
		Event:  payment.EventPaymentSucceeded,
		Object: payment.WebhookObject{ID: externalID, Status: "succeeded", Paid: true, Metadata: meta},
	}
}

func TestQuote(t *testing.T) {
	env := newTestEnv(t)
	svc := NewPaymentService(env.repos, &fakeGateway{}, env.notifier, env.cfg)

	q, err := svc.Quote(decimal.NewFromInt(10000))
	require.NoError(t, err)
	assert.Equal(t, 13000, q.EnergyAmount)

	_, err = svc.Quote(decimal.NewFromInt(499))
	assert.ErrorIs(t, err, apperrors.ErrInvalidPaymentAmount)

	_, err = svc.Quote(decimal.NewFromInt(10001))
	assert.ErrorIs(t, err, apperrors.ErrInvalidPaymentAmount)
}

func TestCreatePaymentAndWebhook(t *testing.T) {
	env := newTestEnv(t)
	gateway := &fakeGateway{}
	svc := NewPaymentService(env.repos, gateway, env.notifier, env.cfg)
	user := env.createUser(t, "buyer", 0)
	ctx := context.Background()

	// Act
	created, err := svc.CreatePayment(ctx, env.db, user.ID, &dto.CreatePaymentRequest{Amount: decimal.NewFromInt(500)})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 500, created.EnergyAmount)
	assert.Contains(t, created.PaymentURL, "https://pay.example.com/")
	require.Len(t, gateway.requests, 1)
	assert.Equal(t, user.ID, gateway.requests[0].Metadata["user_id"])
	assert.Equal(t, "RUB", gateway.requests[0].Currency)

	list, err := svc.ListPayments(env.db, user.ID)
	require.NoError(t, err)
	require.Len(t, list.Payments, 1)
	assert.Equal(t, "pending", list.Payments[0].Status)

	gateway.pay("yk-" + created.PaymentID)
	note := succeeded("yk-"+created.PaymentID, map[string]any{"user_id": user.ID})
	resp, err := svc.HandleWebhook(ctx, env.db, note, []byte(`{"event":"payment.succeeded"}`))
	require.NoError(t, err)
	assert.Equal(t, dto.WebhookStatusOK, resp.Status)

	stored, err := env.repos.Users.FindByID(env.db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 500, stored.Energy)
	assert.Equal(t, 1, env.notifier.count(eventEnergyUpdated))

	// повтор уведомления не начисляет энергию второй раз
	resp, err = svc.HandleWebhook(ctx, env.db, note, nil)
	require.NoError(t, err)
	assert.Equal(t, dto.WebhookStatusDuplicate, resp.Status)

	stored, err = env.repos.Users.FindByID(env.db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 500, stored.Energy)

	list, err = svc.ListPayments(env.db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "succeeded", list.Payments[0].Status)
}

func TestWebhook_ResolvesByMetadata(t *testing.T) {
	env := newTestEnv(t)
	gateway := &fakeGateway{}
	svc := NewPaymentService(env.repos, gateway, env.notifier, env.cfg)
	user := env.createUser(t, "buyer", 10)
	ctx := context.Background()

	// платеж без external_id: ответ провайдера при создании не сохранился
	record := &models.Payment{
		UserID:       user.ID,
		Amount:       decimal.NewFromInt(10000),
		BonusPercent: decimal.NewFromInt(30),
		EnergyAmount: 13000,
		Status:       models.PaymentStatusPending,
	}
	require.NoError(t, env.repos.Payments.Create(env.db, record))
	gateway.put(&payment.PaymentInfo{
		ID:       "ext-9",
		Status:   payment.StatusSucceeded,
		Paid:     true,
		Amount:   decimal.NewFromInt(10000),
		Metadata: map[string]string{"payment_id": record.ID, "user_id": user.ID},
	})

	note := succeeded("ext-9", map[string]any{"payment_id": record.ID})
	resp, err := svc.HandleWebhook(ctx, env.db, note, nil)
	require.NoError(t, err)
	assert.Equal(t, dto.WebhookStatusOK, resp.Status)

	stored, err := env.repos.Users.FindByID(env.db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 13010, stored.Energy)
}

func TestWebhook_ForgedNotificationDoesNotCredit(t *testing.T) {
	env := newTestEnv(t)
	gateway := &fakeGateway{}
	svc := NewPaymentService(env.repos, gateway, env.notifier, env.cfg)
	user := env.createUser(t, "buyer", 10)
	ctx := context.Background()

	created, err := svc.CreatePayment(ctx, env.db, user.ID, &dto.CreatePaymentRequest{Amount: decimal.NewFromInt(10000)})
	require.NoError(t, err)

	// чужой id объекта при известном external_id
	_, err = svc.HandleWebhook(ctx, env.db, succeeded("forged-id", map[string]any{"payment_id": created.PaymentID}), nil)
	assert.ErrorIs(t, err, apperrors.ErrPaymentNotConfirmed)

	// верный id, но провайдер видит платеж неоплаченным
	_, err = svc.HandleWebhook(ctx, env.db, succeeded("yk-"+created.PaymentID, map[string]any{"user_id": user.ID}), nil)
	assert.ErrorIs(t, err, apperrors.ErrPaymentNotConfirmed)

	// оплаченный дешевый платеж нельзя выдать за дорогой
	cheap := &models.Payment{
		UserID:       user.ID,
		Amount:       decimal.NewFromInt(10000),
		BonusPercent: decimal.NewFromInt(30),
		EnergyAmount: 13000,
		Status:       models.PaymentStatusPending,
	}
	require.NoError(t, env.repos.Payments.Create(env.db, cheap))
	gateway.put(&payment.PaymentInfo{
		ID:       "paid-500",
		Status:   payment.StatusSucceeded,
		Paid:     true,
		Amount:   decimal.NewFromInt(500),
		Metadata: map[string]string{"payment_id": cheap.ID},
	})
	_, err = svc.HandleWebhook(ctx, env.db, succeeded("paid-500", map[string]any{"payment_id": cheap.ID}), nil)
	assert.ErrorIs(t, err, apperrors.ErrPaymentNotConfirmed)

	stored, err := env.repos.Users.FindByID(env.db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, stored.Energy)
	assert.Zero(t, env.notifier.count(eventEnergyUpdated))

	list, err := svc.ListPayments(env.db, user.ID)
	require.NoError(t, err)
	for _, p := range list.Payments {
		assert.Equal(t, "pending", p.Status)
	}
}

func TestWebhook_GatewayUnavailable(t *testing.T) {
	env := newTestEnv(t)
	gateway := &fakeGateway{}
	svc := NewPaymentService(env.repos, gateway, env.notifier, env.cfg)
	user := env.createUser(t, "buyer", 0)
	ctx := context.Background()

	created, err := svc.CreatePayment(ctx, env.db, user.ID, &dto.CreatePaymentRequest{Amount: decimal.NewFromInt(500)})
	require.NoError(t, err)
	gateway.pay("yk-" + created.PaymentID)
	gateway.err = payment.ErrGatewayFailed

	_, err = svc.HandleWebhook(ctx, env.db, succeeded("yk-"+created.PaymentID, nil), nil)
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 502, appErr.HTTPCode)

	stored, err := env.repos.Users.FindByID(env.db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Energy)
}

func TestWebhook_Rejects(t *testing.T) {
	env := newTestEnv(t)
	svc := NewPaymentService(env.repos, &fakeGateway{}, env.notifier, env.cfg)
	user := env.createUser(t, "buyer", 0)
	other := env.createUser(t, "other", 0)
	ctx := context.Background()

	created, err := svc.CreatePayment(ctx, env.db, user.ID, &dto.CreatePaymentRequest{Amount: decimal.NewFromInt(600)})
	require.NoError(t, err)

	// другие события игнорируются
	resp, err := svc.HandleWebhook(ctx, env.db, &payment.WebhookNotification{Event: "payment.canceled"}, nil)
	require.NoError(t, err)
	assert.Equal(t, dto.WebhookStatusIgnored, resp.Status)

	_, err = svc.HandleWebhook(ctx, env.db, succeeded("nope", map[string]any{"payment_id": "not-a-uuid"}), nil)
	assert.ErrorIs(t, err, apperrors.ErrPaymentNotFound)

	_, err = svc.HandleWebhook(ctx, env.db, succeeded("yk-"+created.PaymentID, map[string]any{"user_id": other.ID}), nil)
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 400, appErr.HTTPCode)

	stored, err := env.repos.Users.FindByID(env.db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Energy)
}

func TestCreatePayment_GatewayNotConfigured(t *testing.T) {
	env := newTestEnv(t)
	gateway := &fakeGateway{err: payment.ErrGatewayNotConfigured}
	svc := NewPaymentService(env.repos, gateway, env.notifier, env.cfg)
	user := env.createUser(t, "buyer", 0)

	_, err := svc.CreatePayment(context.Background(), env.db, user.ID, &dto.CreatePaymentRequest{Amount: decimal.NewFromInt(500)})
	assert.ErrorIs(t, err, apperrors.ErrPaymentNotConfigured)
}
