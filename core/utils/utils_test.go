package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCleanAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"50000", "50000"},
		{"$ 50000", "50000"},
		{"$ -   ", "0"},
		{"", "0"},
		{"1.234,56", "1234.56"},
		{"1,234.56", "1234.56"},
		{"1.234.567", "1234567"},
		{"1,234,567", "1234567"},
		{"-20000", "-20000"},
		{"garbage", "0"},
		{"12,5", "12.5"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanAmount(tt.in).String())
		})
	}
}

func TestDateKey(t *testing.T) {
	assert.Equal(t, 20251128, DateKey(time.Date(2025, 11, 28, 13, 45, 0, 0, time.UTC)))
	assert.Equal(t, 20260101, DateKey(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestParseDateKey(t *testing.T) {
	for _, in := range []string{"2025-11-28", "28/11/2025", "20251128", "2025-11-28 00:00:00"} {
		key, err := ParseDateKey(in)
		assert.NoError(t, err, in)
		assert.Equal(t, 20251128, key, in)
	}

	_, err := ParseDateKey("not-a-date")
	assert.Error(t, err)
	_, err = ParseDateKey("")
	assert.Error(t, err)
}

func TestPreviousBusinessDay(t *testing.T) {
	// Monday 2025-12-01 -> Friday 2025-11-28.
	monday := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 11, 28, 0, 0, 0, 0, time.UTC), PreviousBusinessDay(monday))

	// Friday -> Thursday.
	friday := time.Date(2025, 11, 28, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 11, 27, 0, 0, 0, 0, time.UTC), PreviousBusinessDay(friday))
}
