package extraction_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gasdoc/internal/extraction"
)

func TestParseNumber(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"52,417,002.59", "52417002.59"},
		{"$52,417,002.59", "52417002.59"},
		{"52,417,002.59 USD", "52417002.59"},
		{"฿ 2,587,457,630.82", "2587457630.82"},
		{"THB 1,000", "1000"},
		{"9,197,256.21 MMBTU", "9197256.21"},
		{" 3552567 ", "3552567"},
		{"(1,200.50)", "-1200.5"},
		{"-42.10", "-42.1"},
		{"1 234 567", "1234567"},
	}
	for _, tc := range cases {
		got, err := extraction.ParseNumber(tc.in)
		require.NoError(t, err, tc.in)
		assert.True(t, got.Equal(decimal.RequireFromString(tc.want)), "%s => %s", tc.in, got)
	}
}

func TestParseNumber_Exact(t *testing.T) {
	got, err := extraction.ParseNumber("52,417,002.59")
	require.NoError(t, err)

	assert.Equal(t, "52417002.59", got.String())
}

func TestParseNumber_Rejects(t *testing.T) {
	for _, in := range []string{"", "USD", "n/a", "12.3.4", "1,2a"} {
		_, err := extraction.ParseNumber(in)
		assert.Error(t, err, in)
	}
}
