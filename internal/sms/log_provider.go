package sms

import (
	"context"

	"auxchat_backend/internal/logger"
)

// LogProvider пишет SMS в лог вместо отправки (dev окружение)
type LogProvider struct{}

func NewLogProvider() *LogProvider {
	return &LogProvider{}
}

func (p *LogProvider) Send(ctx context.Context, phone, text string) error {
	logger.CtxInfo(ctx, "📱 SMS (log provider)", "phone", maskPhone(phone), "text", text)
	return nil
}

func (p *LogProvider) Validate() error {
	return nil
}

func maskPhone(phone string) string {
	if len(phone) <= 4 {
		return "****"
	}
	return phone[:len(phone)-4] + "****"
}
