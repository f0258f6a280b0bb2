package valueobject

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSafePercent(t *testing.T) {
	t.Run("computes percentage for positive denominator", func(t *testing.T) {
		got := SafePercent(decimal.NewFromInt(25), decimal.NewFromInt(200))
		assert.True(t, got.Equal(decimal.NewFromFloat(12.5)))
	})

	t.Run("zero denominator yields zero", func(t *testing.T) {
		got := SafePercent(decimal.NewFromInt(-500), decimal.Zero)
		assert.True(t, got.IsZero())
	})

	t.Run("negative denominator yields zero", func(t *testing.T) {
		got := SafePercent(decimal.NewFromInt(10), decimal.NewFromInt(-10))
		assert.True(t, got.IsZero())
	})
}

func TestSafeRatio(t *testing.T) {
	assert.True(t, SafeRatio(decimal.NewFromInt(1), decimal.NewFromInt(4)).Equal(decimal.NewFromFloat(0.25)))
	assert.True(t, SafeRatio(decimal.NewFromInt(1), decimal.Zero).IsZero())
}

func TestLenientDecimal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain number", "12.50", "12.5"},
		{"surrounding whitespace", "  7 ", "7"},
		{"thousands separator", "1,250.75", "1250.75"},
		{"blank input", "", "0"},
		{"garbage input", "abc", "0"},
		{"negative number", "-3", "-3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LenientDecimal(tt.input).String())
		})
	}
}

func TestRounding(t *testing.T) {
	v := decimal.RequireFromString("2.4857142857")
	assert.Equal(t, "2.49", RoundMoney(v).String())
	assert.Equal(t, "2.485714", RoundShare(v).String())
	assert.Nil(t, RoundMoneyPtr(nil))
	assert.Equal(t, "2.49", RoundMoneyPtr(&v).String())
}

func TestClonePtr(t *testing.T) {
	assert.Nil(t, ClonePtr(nil))

	orig := decimal.NewFromInt(5)
	cp := ClonePtr(&orig)
	assert.NotSame(t, &orig, cp)
	assert.True(t, cp.Equal(orig))
}

func TestPercentOfAndFraction(t *testing.T) {
	assert.True(t, PercentOf(decimal.NewFromInt(1000), decimal.NewFromInt(5)).Equal(decimal.NewFromInt(50)))
	assert.True(t, Fraction(decimal.NewFromInt(13)).Equal(decimal.NewFromFloat(0.13)))
}
