package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBookingURL = "https://calendar.example.com/team/30min"

func newBookingEngine(t *testing.T, factory SessionFactory) *Engine {
	t.Helper()
	engine, err := New(Config{BookingURL: testBookingURL}, factory, newTestLogger(t))
	require.NoError(t, err)
	return engine
}

func bookingWhen() time.Time {
	return time.Date(2025, time.June, 15, 14, 0, 0, 0, time.UTC)
}

func validRequest() BookingRequest {
	return BookingRequest{
		Name:  "Jordan Smith",
		Email: "jordan@example.com",
		When:  bookingWhen(),
	}
}

func TestBookRejectsIncompleteRequests(t *testing.T) {
	factory := &singleFactory{driver: newFakeDriver()}
	engine := newBookingEngine(t, factory)

	tests := []struct {
		name string
		req  BookingRequest
	}{
		{"missing name", BookingRequest{Email: "a@b.com", When: bookingWhen()}},
		{"missing email", BookingRequest{Name: "A", When: bookingWhen()}},
		{"missing datetime", BookingRequest{Name: "A", Email: "a@b.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := engine.Book(context.Background(), tt.req)
			assert.Equal(t, StatusFatal, outcome.Status)
			assert.Equal(t, CodeUnexpectedError, outcome.Code)
		})
	}

	assert.Zero(t, factory.created, "validation failures must not open sessions")
}

func TestBookSessionOpenFailure(t *testing.T) {
	engine := newBookingEngine(t, &singleFactory{err: errors.New("browser gone")})

	outcome := engine.Book(context.Background(), validRequest())

	assert.Equal(t, StatusFatal, outcome.Status)
	assert.Equal(t, CodeUnexpectedError, outcome.Code)
	assert.Contains(t, outcome.Detail, "failed to open session")
}

func TestBookDayNotAvailable(t *testing.T) {
	driver := newFakeDriver()
	engine := newBookingEngine(t, &singleFactory{driver: driver})

	outcome := engine.Book(context.Background(), validRequest())

	assert.Equal(t, StatusFatal, outcome.Status)
	assert.Equal(t, CodeInvalidDate, outcome.Code)
	assert.True(t, driver.closed, "session must be released on failure")
	require.Len(t, driver.opened, 1)
	assert.Equal(t, testBookingURL+"?month=2025-06", driver.opened[0])
}

func TestBookRepeatedFailureIsStable(t *testing.T) {
	driver := newFakeDriver()
	factory := &singleFactory{driver: driver}
	engine := newBookingEngine(t, factory)

	first := engine.Book(context.Background(), validRequest())
	second := engine.Book(context.Background(), validRequest())

	assert.Equal(t, CodeInvalidDate, first.Code)
	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.Code, second.Code)
	assert.Equal(t, 2, factory.created, "each attempt must run in a fresh session")
}

func TestBookTimeNotAvailable(t *testing.T) {
	when := bookingWhen()
	driver := newFakeDriver()
	driver.visible[daySelector(when)] = true
	engine := newBookingEngine(t, &singleFactory{driver: driver})

	outcome := engine.Book(context.Background(), validRequest())

	assert.Equal(t, CodeInvalidTime, outcome.Code)
	assert.Contains(t, driver.clicks, daySelector(when))
	assert.True(t, driver.closed)
}

func TestBookNextButtonMissing(t *testing.T) {
	when := bookingWhen()
	driver := newFakeDriver()
	driver.visible[daySelector(when)] = true
	driver.visible[timeSlotSelector(when)] = true
	engine := newBookingEngine(t, &singleFactory{driver: driver})

	outcome := engine.Book(context.Background(), validRequest())

	assert.Equal(t, CodeNextButtonNotFound, outcome.Code)
}

func TestBookFormNeverRenders(t *testing.T) {
	when := bookingWhen()
	driver := newFakeDriver()
	driver.visible[daySelector(when)] = true
	driver.visible[timeSlotSelector(when)] = true
	driver.visible[nextButtonSelector] = true
	engine := newBookingEngine(t, &singleFactory{driver: driver})

	outcome := engine.Book(context.Background(), validRequest())

	assert.Equal(t, CodeUnexpectedError, outcome.Code)
}

func TestBookPausesForUnansweredQuestions(t *testing.T) {
	question := &fakeElement{tag: "input", attrs: map[string]string{
		"name": "question_0", "type": "text", "aria-required": "true",
	}}
	driver := bookingPageDriver(bookingWhen(), question)
	engine := newBookingEngine(t, &singleFactory{driver: driver})

	outcome := engine.Book(context.Background(), validRequest())

	assert.Equal(t, StatusRecoverable, outcome.Status)
	assert.Equal(t, CodeAdditionalQuestionsRequired, outcome.Code)
	require.Len(t, outcome.Questions, 1)
	assert.Equal(t, "question_0", outcome.Questions[0].Key)
	assert.True(t, outcome.Questions[0].Required)

	assert.Equal(t, "Jordan Smith", driver.fills[nameInputSelector])
	assert.Equal(t, "jordan@example.com", driver.fills[emailInputSelector])
	assert.NotContains(t, driver.clicks, submitButtonSelector,
		"form must not be submitted while questions are unanswered")
	assert.True(t, driver.closed)
}

func TestBookSucceedsWithAnswers(t *testing.T) {
	question := &fakeElement{tag: "input", attrs: map[string]string{
		"name": "question_0", "type": "text",
	}}
	driver := bookingPageDriver(bookingWhen(), question).withConfirmation()
	engine := newBookingEngine(t, &singleFactory{driver: driver})

	req := validRequest()
	req.Answers = map[string]string{"question_0": "Intro chat"}
	outcome := engine.Book(context.Background(), req)

	require.True(t, outcome.IsSuccess(), "outcome: %+v", outcome)
	assert.Equal(t, "Intro chat", question.filledWith)
	assert.Contains(t, driver.clicks, submitButtonSelector)

	c := outcome.Confirmation
	require.NotNil(t, c)
	assert.Equal(t, "30 Minute Meeting", c.Title)
	assert.Equal(t, "Avery Host", c.HostName)
	assert.Equal(t, "2:00pm - 2:30pm, Sunday, June 15, 2025", c.TimeRangeText)
	assert.Equal(t, "Eastern Time - US & Canada", c.TimeZoneText)
	assert.Equal(t, "https://calendar.example.com/invite/abc123", c.InvitationLink)
	assert.True(t, driver.closed)
}

func TestBookNoQuestionsGoesStraightThrough(t *testing.T) {
	driver := bookingPageDriver(bookingWhen()).withConfirmation()
	engine := newBookingEngine(t, &singleFactory{driver: driver})

	outcome := engine.Book(context.Background(), validRequest())

	assert.True(t, outcome.IsSuccess(), "outcome: %+v", outcome)
}

func TestBookSubmitClickFails(t *testing.T) {
	driver := bookingPageDriver(bookingWhen())
	driver.clickErrs[submitButtonSelector] = errors.New("element detached")
	engine := newBookingEngine(t, &singleFactory{driver: driver})

	outcome := engine.Book(context.Background(), validRequest())

	assert.Equal(t, CodeFormSubmissionFailed, outcome.Code)
}

func TestBookConfirmationNeverAppears(t *testing.T) {
	driver := bookingPageDriver(bookingWhen())
	engine := newBookingEngine(t, &singleFactory{driver: driver})

	outcome := engine.Book(context.Background(), validRequest())

	assert.Equal(t, CodeConfirmationNotFound, outcome.Code)
}

func TestBookExtractionFailureAfterCommit(t *testing.T) {
	driver := bookingPageDriver(bookingWhen())
	// Heading appears but the details panel is unreadable: the remote
	// booking is committed, so this must not look like a booking failure.
	driver.visible[confirmationHeading] = true

	engine := newBookingEngine(t, &singleFactory{driver: driver})
	outcome := engine.Book(context.Background(), validRequest())

	assert.Equal(t, StatusFatal, outcome.Status)
	assert.Equal(t, CodeUnexpectedError, outcome.Code)
	assert.Contains(t, outcome.Detail, "booking was submitted")
}

func TestBookCancelledContext(t *testing.T) {
	factory := &singleFactory{driver: newFakeDriver()}
	engine := newBookingEngine(t, factory)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome := engine.Book(ctx, validRequest())

	assert.Equal(t, CodeUnexpectedError, outcome.Code)
	assert.Zero(t, factory.created)
}
