package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSpokenDate(t *testing.T) {
	when := time.Date(2025, time.June, 15, 14, 0, 0, 0, time.UTC)
	assert.Equal(t, "Sunday, June 15", spokenDate(when))
}

func TestTimeToken(t *testing.T) {
	tests := []struct {
		hour, minute int
		want         string
	}{
		{14, 0, "2:00pm"},
		{9, 5, "9:05am"},
		{0, 30, "12:30am"},
		{12, 0, "12:00pm"},
	}

	for _, tt := range tests {
		when := time.Date(2025, time.June, 15, tt.hour, tt.minute, 0, 0, time.UTC)
		assert.Equal(t, tt.want, timeToken(when))
	}
}

func TestSlotSelectors(t *testing.T) {
	when := time.Date(2025, time.June, 15, 14, 0, 0, 0, time.UTC)

	assert.Equal(t,
		`button[aria-label*="Sunday, June 15"]:not([disabled])`,
		daySelector(when))
	assert.Equal(t,
		`button[data-container="time-button"][data-start-time="2:00pm"]`,
		timeSlotSelector(when))
}

func TestMonthScopedURL(t *testing.T) {
	token := MonthToken{Year: 2025, Month: 6}

	assert.Equal(t,
		"https://calendar.example.com/team/30min?month=2025-06",
		monthScopedURL("https://calendar.example.com/team/30min", token))
	assert.Equal(t,
		"https://calendar.example.com/team/30min?utm=x&month=2025-06",
		monthScopedURL("https://calendar.example.com/team/30min?utm=x", token))
}
