package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"auxchat_backend/internal/config"
	"auxchat_backend/internal/dto"
	"auxchat_backend/internal/logger"
	"auxchat_backend/internal/metrics"
	"auxchat_backend/internal/models"
	"auxchat_backend/internal/payment"
	"auxchat_backend/internal/repositories"
	"auxchat_backend/pkg/apperrors"
)

type PaymentService interface {
	Quote(amount decimal.Decimal) (*dto.PaymentQuoteResponse, error)
	CreatePayment(ctx context.Context, db *gorm.DB, userID string, req *dto.CreatePaymentRequest) (*dto.CreatePaymentResponse, error)
	HandleWebhook(ctx context.Context, db *gorm.DB, notification *payment.WebhookNotification, raw []byte) (*dto.WebhookResponse, error)
	ListPayments(db *gorm.DB, userID string) (*dto.PaymentListResponse, error)
}

type PaymentServiceImpl struct {
	repos    *repositories.Repositories
	gateway  payment.Gateway
	policy   payment.BonusPolicy
	notifier Notifier
	cfg      *config.Config
}

func NewPaymentService(repos *repositories.Repositories, gateway payment.Gateway, notifier Notifier, cfg *config.Config) PaymentService {
	if notifier == nil {
		notifier = NewNopNotifier()
	}
	return &PaymentServiceImpl{
		repos:    repos,
		gateway:  gateway,
		policy:   payment.NewBonusPolicy(cfg.Payment.MinAmount, cfg.Payment.MaxAmount, cfg.Payment.MaxBonusPercent),
		notifier: notifier,
		cfg:      cfg,
	}
}

func (s *PaymentServiceImpl) Quote(amount decimal.Decimal) (*dto.PaymentQuoteResponse, error) {
	quote, err := s.calculate(amount)
	if err != nil {
		return nil, err
	}
	return &dto.PaymentQuoteResponse{
		Amount:       quote.Amount,
		BonusPercent: quote.BonusPercent,
		EnergyAmount: quote.Energy,
	}, nil
}

// CreatePayment сохраняет pending-платеж и создает его у провайдера
func (s *PaymentServiceImpl) CreatePayment(ctx context.Context, db *gorm.DB, userID string, req *dto.CreatePaymentRequest) (*dto.CreatePaymentResponse, error) {
	quote, err := s.calculate(req.Amount)
	if err != nil {
		return nil, err
	}

	record := &models.Payment{
		UserID:       userID,
		Amount:       quote.Amount,
		BonusPercent: quote.BonusPercent,
		EnergyAmount: quote.Energy,
		Status:       models.PaymentStatusPending,
	}
	if err := s.repos.Payments.Create(db, record); err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	created, err := s.gateway.CreatePayment(ctx, payment.CreateRequest{
		Amount:      quote.Amount,
		Currency:    s.cfg.Payment.Currency,
		Description: fmt.Sprintf("Пополнение энергии: %d", quote.Energy),
		ReturnURL:   s.cfg.Payment.ReturnURL,
		Metadata: map[string]string{
			"user_id":       userID,
			"energy_amount": strconv.Itoa(quote.Energy),
			"payment_id":    record.ID,
		},
	})
	if err != nil {
		if errors.Is(err, payment.ErrGatewayNotConfigured) {
			logger.CtxError(ctx, "Payment gateway is not configured")
			return nil, apperrors.ErrPaymentNotConfigured.WithError(err)
		}
		return nil, apperrors.ExternalServiceError(err, "payment", "Payment gateway error")
	}

	if err := s.repos.Payments.AttachGatewayData(db, record.ID, created.ID, created.ConfirmationURL, datatypes.JSON(created.Raw)); err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	metrics.PaymentsCreated.Inc()
	logger.CtxInfo(ctx, "Payment created", "payment_id", record.ID, "external_id", created.ID, "amount", quote.Amount.String())

	return &dto.CreatePaymentResponse{
		PaymentID:    record.ID,
		PaymentURL:   created.ConfirmationURL,
		Amount:       quote.Amount,
		BonusPercent: quote.BonusPercent,
		EnergyAmount: quote.Energy,
	}, nil
}

// HandleWebhook зачисляет энергию за успешный платеж ровно один раз
func (s *PaymentServiceImpl) HandleWebhook(ctx context.Context, db *gorm.DB, notification *payment.WebhookNotification, raw []byte) (*dto.WebhookResponse, error) {
	if notification.Event != payment.EventPaymentSucceeded {
		metrics.WebhooksProcessed.WithLabelValues("ignored").Inc()
		return &dto.WebhookResponse{Status: dto.WebhookStatusIgnored}, nil
	}

	record, err := s.resolvePayment(db, notification)
	if err != nil {
		return nil, err
	}

	// пользователь из метаданных должен совпадать с владельцем платежа
	if metaUser := notification.Object.MetaString("user_id"); metaUser != "" && metaUser != record.UserID {
		logger.CtxWarn(ctx, "Webhook user mismatch", "payment_id", record.ID, "metadata_user_id", metaUser)
		return nil, apperrors.NewBadRequestError("Payment metadata does not match")
	}

	if record.ExternalID != nil && *record.ExternalID != "" && *record.ExternalID != notification.Object.ID {
		logger.CtxWarn(ctx, "Webhook external id mismatch", "payment_id", record.ID, "object_id", notification.Object.ID)
		metrics.WebhooksProcessed.WithLabelValues("rejected").Inc()
		return nil, apperrors.ErrPaymentNotConfirmed
	}

	if record.Status != models.PaymentStatusPending {
		metrics.WebhooksProcessed.WithLabelValues("duplicate").Inc()
		logger.CtxInfo(ctx, "Webhook for already processed payment", "payment_id", record.ID, "status", record.Status)
		return &dto.WebhookResponse{Status: dto.WebhookStatusDuplicate}, nil
	}

	confirmed, err := s.confirm(ctx, record, notification.Object.ID)
	if err != nil {
		return nil, err
	}

	payload := datatypes.JSON(confirmed.Raw)
	if !json.Valid(confirmed.Raw) {
		payload = datatypes.JSON(raw)
		if !json.Valid(raw) {
			payload = nil
		}
	}

	var (
		duplicate bool
		balance   int
	)
	err = db.Transaction(func(tx *gorm.DB) error {
		marked, err := s.repos.Payments.MarkSucceeded(tx, record.ID, payload)
		if err != nil {
			return apperrors.DatabaseError(err)
		}
		if !marked {
			duplicate = true
			return nil
		}
		balance, err = s.repos.Users.AddEnergy(tx, record.UserID, record.EnergyAmount)
		if err != nil {
			return mapUserError(err)
		}
		return nil
	})
	if err != nil {
		metrics.WebhooksProcessed.WithLabelValues("error").Inc()
		return nil, err
	}

	if duplicate {
		metrics.WebhooksProcessed.WithLabelValues("duplicate").Inc()
		logger.CtxInfo(ctx, "Webhook for already processed payment", "payment_id", record.ID)
		return &dto.WebhookResponse{Status: dto.WebhookStatusDuplicate}, nil
	}

	metrics.WebhooksProcessed.WithLabelValues("ok").Inc()
	metrics.EnergyCredited.WithLabelValues("payment").Add(float64(record.EnergyAmount))
	logger.EnergyLog(record.UserID, record.EnergyAmount, "payment")
	s.notifier.SendToUser(record.UserID, eventEnergyUpdated, energyPayload{
		Energy: balance,
		Delta:  record.EnergyAmount,
		Reason: "payment",
	})

	return &dto.WebhookResponse{Status: dto.WebhookStatusOK}, nil
}

func (s *PaymentServiceImpl) ListPayments(db *gorm.DB, userID string) (*dto.PaymentListResponse, error) {
	payments, err := s.repos.Payments.FindByUser(db, userID)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	out := make([]dto.PaymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, dto.PaymentResponse{
			ID:           p.ID,
			Amount:       p.Amount,
			BonusPercent: p.BonusPercent,
			EnergyAmount: p.EnergyAmount,
			Status:       string(p.Status),
			CreatedAt:    p.CreatedAt,
		})
	}
	return &dto.PaymentListResponse{Payments: out}, nil
}

func (s *PaymentServiceImpl) calculate(amount decimal.Decimal) (payment.Quote, error) {
	quote, err := s.policy.Calculate(amount)
	if err != nil {
		if errors.Is(err, payment.ErrAmountOutOfRange) {
			return quote, apperrors.ErrInvalidPaymentAmount.WithDetails(map[string]int64{
				"min": s.cfg.Payment.MinAmount,
				"max": s.cfg.Payment.MaxAmount,
			})
		}
		return quote, apperrors.InternalError(err)
	}
	return quote, nil
}

// confirm перечитывает платеж у провайдера. Зачисляется только платеж,
// который провайдер сам отдает как оплаченный, с тем же payment_id и суммой.
func (s *PaymentServiceImpl) confirm(ctx context.Context, record *models.Payment, objectID string) (*payment.PaymentInfo, error) {
	externalID := objectID
	if record.ExternalID != nil && *record.ExternalID != "" {
		externalID = *record.ExternalID
	}

	info, err := s.gateway.GetPayment(ctx, externalID)
	if err != nil {
		metrics.WebhooksProcessed.WithLabelValues("error").Inc()
		if errors.Is(err, payment.ErrGatewayNotConfigured) {
			logger.CtxError(ctx, "Payment gateway is not configured")
			return nil, apperrors.ErrPaymentNotConfigured.WithError(err)
		}
		return nil, apperrors.ExternalServiceError(err, "payment", "Payment gateway error")
	}

	metaPayment := info.Metadata["payment_id"]
	switch {
	case !info.Succeeded():
		logger.CtxWarn(ctx, "Webhook for unpaid payment", "payment_id", record.ID, "gateway_status", info.Status)
	case metaPayment != "" && metaPayment != record.ID:
		logger.CtxWarn(ctx, "Webhook payment id mismatch", "payment_id", record.ID, "gateway_payment_id", metaPayment)
	case !info.Amount.Equal(record.Amount):
		logger.CtxWarn(ctx, "Webhook amount mismatch", "payment_id", record.ID, "gateway_amount", info.Amount.String())
	default:
		return info, nil
	}
	metrics.WebhooksProcessed.WithLabelValues("rejected").Inc()
	return nil, apperrors.ErrPaymentNotConfirmed
}

// resolvePayment: сначала по id провайдера, затем по payment_id из метаданных
func (s *PaymentServiceImpl) resolvePayment(db *gorm.DB, notification *payment.WebhookNotification) (*models.Payment, error) {
	if notification.Object.ID != "" {
		record, err := s.repos.Payments.FindByExternalID(db, notification.Object.ID)
		if err == nil {
			return record, nil
		}
		if !errors.Is(err, repositories.ErrPaymentNotFound) {
			return nil, apperrors.DatabaseError(err)
		}
	}

	paymentID := notification.Object.MetaString("payment_id")
	if _, err := uuid.Parse(paymentID); err != nil {
		return nil, apperrors.ErrPaymentNotFound
	}
	record, err := s.repos.Payments.FindByID(db, paymentID)
	if err != nil {
		if errors.Is(err, repositories.ErrPaymentNotFound) {
			return nil, apperrors.ErrPaymentNotFound
		}
		return nil, apperrors.DatabaseError(err)
	}
	return record, nil
}
