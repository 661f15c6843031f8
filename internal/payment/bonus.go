package payment

import (
	"errors"

	"github.com/shopspring/decimal"
)

var ErrAmountOutOfRange = errors.New("payment amount is out of range")

// BonusPolicy - прогрессивный бонус: 0% на Min, MaxPercent на Max, линейно между ними
type BonusPolicy struct {
	Min        decimal.Decimal
	Max        decimal.Decimal
	MaxPercent decimal.Decimal
}

func NewBonusPolicy(min, max int64, maxPercent float64) BonusPolicy {
	return BonusPolicy{
		Min:        decimal.NewFromInt(min),
		Max:        decimal.NewFromInt(max),
		MaxPercent: decimal.NewFromFloat(maxPercent),
	}
}

// Quote - рассчитанное пополнение
type Quote struct {
	Amount       decimal.Decimal
	BonusPercent decimal.Decimal
	Energy       int
}

// Calculate считает процент бонуса и итоговую энергию (1 единица валюты = 1 энергия)
func (p BonusPolicy) Calculate(amount decimal.Decimal) (Quote, error) {
	if amount.LessThan(p.Min) || amount.GreaterThan(p.Max) {
		return Quote{}, ErrAmountOutOfRange
	}

	percent := decimal.Zero
	span := p.Max.Sub(p.Min)
	if span.IsPositive() {
		percent = p.MaxPercent.Mul(amount.Sub(p.Min)).Div(span).Round(2)
	}

	bonus := amount.Mul(percent).Div(decimal.NewFromInt(100))
	energy := amount.Add(bonus).Floor().IntPart()

	return Quote{
		Amount:       amount.Round(2),
		BonusPercent: percent,
		Energy:       int(energy),
	}, nil
}
