package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundUpAmount(t *testing.T) {
	cases := map[float64]int64{
		500.4:  501,
		500:    500,
		500.01: 501,
		0.1:    1,
		0:      0,
		-3:     0,
	}
	for in, want := range cases {
		assert.Equal(t, want, RoundUpAmount(in), "amount %v", in)
	}
}

func TestRoundUpAmountIgnoresFloatNoise(t *testing.T) {
	assert.Equal(t, int64(30), RoundUpAmount(0.1*3*100))
}

func TestFormatKES(t *testing.T) {
	assert.Equal(t, "KES 1,250.00", FormatKES(1250))
	assert.Equal(t, "KES 501.40", FormatKES(501.4))
	assert.Equal(t, "KES 0.00", FormatKES(0))
	assert.Equal(t, "-KES 12,000.50", FormatKES(-12000.5))
}

func TestDigitsOnly(t *testing.T) {
	assert.Equal(t, "254712345678", DigitsOnly("+254 712-345 678"))
	assert.Equal(t, "", DigitsOnly("abc"))
}
