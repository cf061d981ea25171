package refdata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextTuesday(t *testing.T) {
	tests := []struct {
		name string
		from string
		want string
	}{
		{"from monday", "2026-08-24", "2026-08-25"},
		{"from tuesday skips to next week", "2026-08-25", "2026-09-01"},
		{"from wednesday", "2026-08-26", "2026-09-01"},
		{"from sunday", "2026-08-30", "2026-09-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, _ := time.Parse("2006-01-02", tt.from)
			got := NextTuesday(from)
			assert.Equal(t, tt.want, got.Format("2006-01-02"))
			assert.Equal(t, time.Tuesday, got.Weekday())
		})
	}
}

func TestTapeDate(t *testing.T) {
	asOf, _ := time.Parse("2006-01-02", "2026-03-01")
	assert.Equal(t, "02-28-2026", TapeDate(asOf))
}

func TestLastMonthEnd(t *testing.T) {
	tests := []struct {
		asOf string
		want string
	}{
		{"2025-02-15", "2025_001_31"},
		{"2025-11-03", "2025_010_31"},
		{"2026-01-10", "2025_012_31"},
	}
	for _, tt := range tests {
		asOf, _ := time.Parse("2006-01-02", tt.asOf)
		assert.Equal(t, tt.want, LastMonthEnd(asOf))
	}
}

func TestParseDateLenient(t *testing.T) {
	assert.Equal(t, 2025, ParseDateLenient("2025-10-24").Year())
	assert.Equal(t, time.October, ParseDateLenient("10/24/2025").Month())
	assert.True(t, ParseDateLenient("").IsZero())
	assert.True(t, ParseDateLenient("not a date").IsZero())
}
