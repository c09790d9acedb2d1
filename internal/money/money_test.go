package money

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRound(t *testing.T) {
	for _, tt := range []struct {
		in   float64
		want string
	}{
		{11.25, "11.25"},
		{1.005, "1.01"},
		{2.675, "2.68"},
		{0.004, "0"},
		{-1.005, "-1.01"},
		{256.25, "256.25"},
	} {
		assert.Equal(t, tt.want, Round(tt.in).String(), "Round(%v)", tt.in)
	}
}

func TestRoundNonFinite(t *testing.T) {
	for _, v := range []float64{math.Inf(1), math.Inf(-1), math.NaN()} {
		assert.NotPanics(t, func() { Round(v) })
		assert.True(t, Round(v).IsZero(), "Round(%v)", v)
	}

	us, err := NewFormatter("en-US", "USD")
	require.NoError(t, err)
	assert.Equal(t, "0.00", us.Number(math.Inf(1)))
	assert.Equal(t, "$0.00", us.Amount(math.NaN()))
}

func TestNumber(t *testing.T) {
	us, err := NewFormatter("en-US", "USD")
	require.NoError(t, err)

	assert.Equal(t, "0.00", us.Number(0))
	assert.Equal(t, "11.25", us.Number(11.25))
	assert.Equal(t, "1,234.50", us.Number(1234.5))
	assert.Equal(t, "1,234,567.89", us.Number(1234567.891))
}

func TestAmount(t *testing.T) {
	us, err := NewFormatter("en-US", "USD")
	require.NoError(t, err)

	assert.Equal(t, "$", us.Symbol())
	assert.Equal(t, "$256.25", us.Amount(256.25))
	assert.Equal(t, "$", us.PDFSymbol())
	assert.Equal(t, "USD", us.Currency())
}

func TestPDFSymbolFallsBackToCode(t *testing.T) {
	in, err := NewFormatter("en-IN", "INR")
	require.NoError(t, err)

	assert.Equal(t, "₹", in.Symbol())
	assert.Equal(t, "INR ", in.PDFSymbol())
	assert.Equal(t, "250.00", in.Number(250))
}

func TestNewFormatterErrors(t *testing.T) {
	_, err := NewFormatter("not a locale!", "USD")
	assert.Error(t, err)

	_, err = NewFormatter("en-US", "XXXX")
	assert.Error(t, err)
}

func TestDate(t *testing.T) {
	d := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)

	for _, tt := range []struct {
		locale string
		want   string
	}{
		{"en-IN", "5/1/2026"},
		{"en-GB", "5/1/2026"},
		{"en-US", "1/5/2026"},
		{"ja-JP", "2026-01-05"},
	} {
		f, err := NewFormatter(tt.locale, "USD")
		require.NoError(t, err)
		assert.Equal(t, tt.want, f.Date(d), tt.locale)
	}
}
