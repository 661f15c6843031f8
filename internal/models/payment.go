package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Payment struct {
	BaseModel
	UserID          string          `gorm:"type:uuid;not null;index" json:"user_id"`
	ExternalID      *string         `gorm:"uniqueIndex;size:64" json:"external_id,omitempty"`
	Amount          decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	BonusPercent    decimal.Decimal `gorm:"type:numeric(5,2);not null" json:"bonus_percent"`
	EnergyAmount    int             `gorm:"not null" json:"energy_amount"`
	Status          PaymentStatus   `gorm:"type:varchar(20);not null;index" json:"status"`
	ConfirmationURL string          `json:"payment_url,omitempty"`
	GatewayPayload  datatypes.JSON  `json:"-"`
}
