package scheduler

import (
	"fmt"
	"time"

	"github.com/entrhq/chrono/pkg/logging"
)

// BookingRequest describes one booking attempt. Answers starts empty on a
// first attempt and is populated from a recoverable outcome's question keys
// before re-invoking.
type BookingRequest struct {
	Name    string
	Email   string
	When    time.Time
	Answers map[string]string
}

// validate checks the request before any session is opened.
func (r BookingRequest) validate() error {
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	if r.Email == "" {
		return fmt.Errorf("email is required")
	}
	if r.When.IsZero() {
		return fmt.Errorf("booking date and time are required")
	}
	return nil
}

// transaction drives one booking attempt over one owned session. A
// transaction reaches exactly one terminal outcome and is not reused.
type transaction struct {
	driver Driver
	cfg    Config
	logger *logging.Logger
	state  State
}

// run executes the booking state machine. Every step failure is caught at
// the state boundary and classified; nothing propagates as a fault.
func (t *transaction) run(req BookingRequest) Outcome {
	t.state = StateStart
	month := MonthToken{Year: req.When.Year(), Month: req.When.Month()}
	if err := t.driver.Open(monthScopedURL(t.cfg.BookingURL, month)); err != nil {
		return t.fail(err)
	}

	t.state = StateDateSelect
	daySel := daySelector(req.When)
	if !t.driver.WaitVisible(daySel, t.cfg.SelectorTimeout) {
		return t.fail(fmt.Errorf("no enabled day control for %s", spokenDate(req.When)))
	}
	if err := t.driver.Click(daySel); err != nil {
		return t.fail(err)
	}

	t.state = StateTimeSelect
	timeSel := timeSlotSelector(req.When)
	if !t.driver.WaitVisible(timeSel, t.cfg.SelectorTimeout) {
		return t.fail(fmt.Errorf("no slot control for %s on %s", timeToken(req.When), spokenDate(req.When)))
	}
	if err := t.driver.Click(timeSel); err != nil {
		return t.fail(err)
	}

	t.state = StateAdvance
	if !t.driver.WaitVisible(nextButtonSelector, t.cfg.SelectorTimeout) {
		return t.fail(fmt.Errorf("proceed control not found after slot selection"))
	}
	if err := t.driver.Click(nextButtonSelector); err != nil {
		return t.fail(err)
	}

	t.state = StateNameEmailFill
	if !t.driver.WaitVisible(nameInputSelector, t.cfg.SelectorTimeout) {
		return t.fail(fmt.Errorf("booking form did not render"))
	}
	if err := t.driver.Fill(nameInputSelector, req.Name); err != nil {
		return t.fail(err)
	}
	if err := t.driver.Fill(emailInputSelector, req.Email); err != nil {
		return t.fail(err)
	}

	t.state = StateQuestionDiscovery
	fields, controls, err := discoverQuestions(t.driver)
	if err != nil {
		return t.fail(err)
	}

	var missing []QuestionField
	for i, field := range fields {
		answer, ok := req.Answers[field.Key]
		if !ok {
			missing = append(missing, field)
			continue
		}
		if err := writeAnswer(controls[i], field, answer); err != nil {
			return t.fail(err)
		}
	}
	if len(missing) > 0 {
		// Expected protocol pause, not a failure: the caller gathers
		// answers for these keys and re-invokes the booking.
		t.logger.Infof("booking paused: %d questions need answers", len(missing))
		return Outcome{
			Status:    StatusRecoverable,
			Code:      CodeAdditionalQuestionsRequired,
			Questions: missing,
		}
	}

	t.state = StateSubmit
	if err := t.driver.Click(submitButtonSelector); err != nil {
		return t.fail(err)
	}

	t.state = StateConfirm
	if !t.driver.WaitVisible(confirmationHeading, t.cfg.NavigationTimeout) {
		return t.fail(fmt.Errorf("confirmation heading did not appear after submission"))
	}

	// Submission is committed remotely from here on; extraction failures
	// must stay distinguishable from booking failures.
	t.state = StateExtract
	confirmation, err := extractConfirmation(t.driver, t.cfg.SelectorTimeout)
	if err != nil {
		return t.fail(fmt.Errorf("booking was submitted but confirmation details could not be read: %w", err))
	}

	t.state = StateDone
	return Outcome{Status: StatusSuccess, Confirmation: confirmation}
}

// fail classifies an error against the current state and terminates the
// transaction.
func (t *transaction) fail(err error) Outcome {
	code := Classify(t.state, err)
	t.logger.Warnf("booking failed in state %s: %v (code=%s)", t.state, err, code)
	t.state = StateFailed
	return Outcome{Status: StatusFatal, Code: code, Detail: err.Error()}
}
