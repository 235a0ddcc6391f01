package uiutil

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "0,00 €"},
		{"12.5", "12,50 €"},
		{"1234.567", "1 234,57 €"},
		{"-3", "-3,00 €"},
		{"1000000", "1 000 000,00 €"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatPrice(decimal.RequireFromString(tt.in)))
		})
	}
}

func TestFormatDates(t *testing.T) {
	assert.Empty(t, FormatFriendlyDateTime(time.Time{}))
	assert.Empty(t, FormatLongDate(time.Time{}))

	ts := time.Date(2025, time.March, 1, 10, 15, 0, 0, time.Local)
	assert.Equal(t, "01/03/2025 10:15", FormatFriendlyDateTime(ts))
	assert.Equal(t, "1 mars 2025", FormatLongDate(ts))
}

func TestTruncateWithEllipsis(t *testing.T) {
	assert.Equal(t, "crème", TruncateWithEllipsis("crème", 5))
	assert.Equal(t, "crè…", TruncateWithEllipsis("crème solaire", 4))
	assert.Equal(t, "…", TruncateWithEllipsis("crème", 1))
}
