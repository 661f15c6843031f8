package payment

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBonusPolicy_Bounds(t *testing.T) {
	policy := NewBonusPolicy(500, 10000, 30)

	q, err := policy.Calculate(decimal.NewFromInt(500))
	require.NoError(t, err)
	assert.True(t, q.BonusPercent.IsZero(), "минимальная сумма без бонуса")
	assert.Equal(t, 500, q.Energy)

	q, err = policy.Calculate(decimal.NewFromInt(10000))
	require.NoError(t, err)
	assert.True(t, q.BonusPercent.Equal(decimal.NewFromInt(30)), "максимальная сумма дает 30%%, получено %s", q.BonusPercent)
	assert.Equal(t, 13000, q.Energy)
}

func TestBonusPolicy_Linear(t *testing.T) {
	policy := NewBonusPolicy(500, 10000, 30)

	// середина диапазона - половина максимального бонуса
	q, err := policy.Calculate(decimal.NewFromInt(5250))
	require.NoError(t, err)
	assert.True(t, q.BonusPercent.Equal(decimal.NewFromInt(15)), "got %s", q.BonusPercent)
	assert.Equal(t, 6037, q.Energy) // 5250 * 1.15 = 6037.5
}

func TestBonusPolicy_OutOfRange(t *testing.T) {
	policy := NewBonusPolicy(500, 10000, 30)

	_, err := policy.Calculate(decimal.NewFromInt(499))
	assert.ErrorIs(t, err, ErrAmountOutOfRange)

	_, err = policy.Calculate(decimal.NewFromInt(10001))
	assert.ErrorIs(t, err, ErrAmountOutOfRange)
}
