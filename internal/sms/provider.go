package sms

import (
	"context"
	"fmt"
	"strings"
)

// Provider определяет интерфейс отправки SMS
type Provider interface {
	// Send отправляет текст на номер
	Send(ctx context.Context, phone, text string) error

	// Validate проверяет конфигурацию провайдера
	Validate() error
}

// Config - параметры HTTP провайдера
type Config struct {
	Provider string
	APIURL   string
	APIKey   string
	Sender   string
}

// NewProvider выбирает реализацию по имени из конфига
func NewProvider(cfg Config) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "log":
		return NewLogProvider(), nil
	case "http":
		p := NewHTTPProvider(cfg)
		if err := p.Validate(); err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unsupported sms provider: %s", cfg.Provider)
	}
}

// CodeText - текст сообщения с кодом подтверждения
func CodeText(code string) string {
	return fmt.Sprintf("AuxChat: ваш код подтверждения %s", code)
}
