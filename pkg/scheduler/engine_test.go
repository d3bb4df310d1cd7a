package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() func() time.Time {
	return func() time.Time {
		return time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC)
	}
}

func TestNewValidatesConfig(t *testing.T) {
	logger := newTestLogger(t)

	_, err := New(Config{}, &routedFactory{}, logger)
	assert.ErrorContains(t, err, "booking URL")

	_, err = New(Config{BookingURL: testBookingURL}, nil, logger)
	assert.ErrorContains(t, err, "session factory")

	_, err = New(Config{BookingURL: testBookingURL}, &routedFactory{}, nil)
	assert.ErrorContains(t, err, "logger")
}

func TestDiscoverSlotsDefaultWindow(t *testing.T) {
	slotButtons := func(times ...string) string {
		var b []byte
		for _, tok := range times {
			b = append(b, []byte(`<button data-container="time-button" data-start-time="`+tok+`"></button>`)...)
		}
		return "<div>" + string(b) + "</div>"
	}

	factory := &routedFactory{pages: map[string]*monthPage{
		testBookingURL + "?month=2025-06": {days: map[string]string{
			"Sunday, June 15 - Times available": slotButtons("2:00pm", "2:30pm"),
			"Monday, June 16 - Times available": slotButtons("9:00am"),
			// Adjacent-month spillover must be ignored.
			"Tuesday, July 1 - Times available": slotButtons("1:00pm"),
		}},
		testBookingURL + "?month=2025-07": {openErr: errors.New("navigation refused")},
		// 2025-08 is unscripted: an empty month, not a failure.
	}}

	engine, err := New(Config{BookingURL: testBookingURL}, factory, newTestLogger(t),
		WithClock(fixedClock()))
	require.NoError(t, err)

	result := engine.DiscoverSlots(context.Background(), nil)

	require.True(t, result.Success)
	assert.Empty(t, result.Rejected)

	assert.Equal(t, SlotMap{
		"2025-06-15": {"2:00pm", "2:30pm"},
		"2025-06-16": {"9:00am"},
	}, result.Slots)

	require.Len(t, result.Failures, 1)
	assert.Equal(t, "2025-07", result.Failures[0].Month)
	assert.Contains(t, result.Failures[0].Error, "navigation refused")

	assert.Equal(t, 3, factory.created, "one session per month")
	assert.Equal(t, 3, factory.closed, "every session must be released")
}

func TestDiscoverSlotsRequestedSubset(t *testing.T) {
	factory := &routedFactory{pages: map[string]*monthPage{}}
	engine, err := New(Config{BookingURL: testBookingURL}, factory, newTestLogger(t),
		WithClock(fixedClock()))
	require.NoError(t, err)

	result := engine.DiscoverSlots(context.Background(), []string{"2025-07"})

	require.True(t, result.Success)
	assert.Empty(t, result.Slots)
	assert.Empty(t, result.Failures)
	assert.Equal(t, 1, factory.created, "only the requested month is scanned")
}

func TestDiscoverSlotsNoValidMonths(t *testing.T) {
	factory := &routedFactory{}
	engine, err := New(Config{BookingURL: testBookingURL}, factory, newTestLogger(t),
		WithClock(fixedClock()))
	require.NoError(t, err)

	result := engine.DiscoverSlots(context.Background(), []string{"2024-01", "garbage"})

	assert.False(t, result.Success)
	assert.Equal(t, CodeNoValidMonths, result.Code)
	assert.Len(t, result.Rejected, 2)
	assert.Zero(t, factory.created, "no session is opened when nothing survives filtering")
}

func TestDiscoverSlotsCancelledContext(t *testing.T) {
	factory := &routedFactory{}
	engine, err := New(Config{BookingURL: testBookingURL}, factory, newTestLogger(t),
		WithClock(fixedClock()))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := engine.DiscoverSlots(ctx, nil)

	assert.False(t, result.Success)
	assert.Equal(t, CodeUnexpectedError, result.Code)
	assert.Zero(t, factory.created)
}

func TestDiscoverSlotsSessionFactoryFailure(t *testing.T) {
	factory := &routedFactory{err: errors.New("browser not running")}
	engine, err := New(Config{BookingURL: testBookingURL}, factory, newTestLogger(t),
		WithClock(fixedClock()))
	require.NoError(t, err)

	result := engine.DiscoverSlots(context.Background(), []string{"2025-06"})

	require.True(t, result.Success, "a month failure is partial, not fatal")
	assert.Empty(t, result.Slots)
	require.Len(t, result.Failures, 1)
	assert.Contains(t, result.Failures[0].Error, "failed to open session")
}
