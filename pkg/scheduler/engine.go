// Package scheduler implements the slot discovery and booking automation
// engine for a third-party scheduling site that exposes no API.
//
// The engine drives a headless browser through the site's calendar and
// booking UI: it enumerates open slots across a bounded month window,
// executes a multi-step booking transaction with runtime-discovered form
// fields, classifies every failure into a stable code, and extracts a
// structured confirmation. It is stateless per call and holds no booking
// history; retry policy belongs to the orchestrator.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/entrhq/chrono/pkg/logging"
)

// Config carries the engine's target and timing settings, injected once at
// construction.
type Config struct {
	// BookingURL is the event booking page the engine drives.
	BookingURL string

	// NavigationTimeout bounds page loads and the post-submission
	// confirmation wait, in milliseconds.
	NavigationTimeout float64

	// SelectorTimeout bounds waits for required elements, in milliseconds.
	SelectorTimeout float64

	// SlotListTimeout bounds the wait for a day's time-slot list during
	// discovery, in milliseconds.
	SlotListTimeout float64
}

func (c *Config) applyDefaults() {
	if c.NavigationTimeout <= 0 {
		c.NavigationTimeout = 30000
	}
	if c.SelectorTimeout <= 0 {
		c.SelectorTimeout = 10000
	}
	if c.SlotListTimeout <= 0 {
		c.SlotListTimeout = 5000
	}
}

// Engine is the automation facade: discovery fans out read-only sessions in
// parallel, bookings are serialized to at most one in-flight transaction.
type Engine struct {
	cfg      Config
	sessions SessionFactory
	logger   *logging.Logger
	clock    func() time.Time

	// bookingMu serializes booking transactions: two concurrent attempts
	// against the same calendar risk racing the remote system into a
	// double submission.
	bookingMu sync.Mutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the engine's time source.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		e.clock = clock
	}
}

// New creates an engine over the given session factory.
func New(cfg Config, sessions SessionFactory, logger *logging.Logger, opts ...Option) (*Engine, error) {
	if cfg.BookingURL == "" {
		return nil, fmt.Errorf("booking URL is required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session factory is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	cfg.applyDefaults()

	e := &Engine{
		cfg:      cfg,
		sessions: sessions,
		logger:   logger,
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// MonthFailure records one month whose discovery session failed.
type MonthFailure struct {
	Month string
	Error string
}

// DiscoveryResult is the aggregate of one discovery call. Success with a
// non-empty Failures list means a partial aggregate: the listed months are
// absent from Slots but the others are present.
type DiscoveryResult struct {
	Success  bool
	Code     Code
	Error    string
	Slots    SlotMap
	Rejected []RejectedMonth
	Failures []MonthFailure
}

// DiscoverSlots enumerates open slots for the requested months. Months
// outside the window (or malformed) are reported in Rejected; if nothing
// survives filtering the call fails fast with no_valid_months before any
// session is created.
func (e *Engine) DiscoverSlots(ctx context.Context, months []string) DiscoveryResult {
	accepted, rejected := ResolveMonths(e.clock(), months)
	if len(accepted) == 0 {
		return DiscoveryResult{
			Code:     CodeNoValidMonths,
			Error:    "no requested month falls inside the bookable window",
			Rejected: rejected,
		}
	}

	if err := ctx.Err(); err != nil {
		return DiscoveryResult{
			Code:     CodeUnexpectedError,
			Error:    err.Error(),
			Rejected: rejected,
		}
	}

	// Fan out one owned session per month; join only after all settle.
	// One month's failure must not cancel its siblings, so this is a
	// plain WaitGroup rather than a shared-cancellation group.
	type monthResult struct {
		slots SlotMap
		err   error
	}
	results := make([]monthResult, len(accepted))

	var wg sync.WaitGroup
	for i, token := range accepted {
		wg.Add(1)
		go func(i int, token MonthToken) {
			defer wg.Done()
			slots, err := e.discoverMonth(token)
			results[i] = monthResult{slots: slots, err: err}
		}(i, token)
	}
	wg.Wait()

	combined := make(SlotMap)
	var failures []MonthFailure
	for i, r := range results {
		if r.err != nil {
			e.logger.Warnf("discovery failed for %s: %v", accepted[i], r.err)
			failures = append(failures, MonthFailure{
				Month: accepted[i].String(),
				Error: r.err.Error(),
			})
			continue
		}
		// Dates are disjoint across months, so merging cannot collide.
		for date, times := range r.slots {
			combined[date] = times
		}
	}

	return DiscoveryResult{
		Success:  true,
		Slots:    combined,
		Rejected: rejected,
		Failures: failures,
	}
}

// discoverMonth enumerates one month's slots in its own session.
func (e *Engine) discoverMonth(token MonthToken) (SlotMap, error) {
	driver, err := e.sessions.NewSession()
	if err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}
	defer driver.Close()

	if err := driver.Open(monthScopedURL(e.cfg.BookingURL, token)); err != nil {
		return nil, err
	}

	slots := make(SlotMap)

	// A month with no available day buttons is empty, not an error.
	if !driver.WaitVisible(availableDaySelector, e.cfg.SelectorTimeout) {
		return slots, nil
	}

	days, err := driver.List(availableDaySelector)
	if err != nil {
		return nil, err
	}

	// Resolve labels before clicking anything: selecting a day re-renders
	// the calendar and can detach the remaining handles.
	type dayEntry struct {
		label string
		date  string
	}
	var entries []dayEntry
	for _, day := range days {
		label, ok := day.Attribute("aria-label")
		if !ok {
			continue
		}
		date, ok := dateFromDayLabel(label, token)
		if !ok {
			continue
		}
		entries = append(entries, dayEntry{label: label, date: date})
	}

	for _, entry := range entries {
		if err := driver.Click(fmt.Sprintf(`button[aria-label=%q]`, entry.label)); err != nil {
			e.logger.Debugf("skipping %s: day click failed: %v", entry.date, err)
			continue
		}

		// Days whose slot list never renders are skipped, non-fatally.
		if !driver.WaitVisible(timeButtonSelector, e.cfg.SlotListTimeout) {
			e.logger.Debugf("skipping %s: slot list did not render", entry.date)
			continue
		}

		fragment, err := driver.HTML("body")
		if err != nil {
			e.logger.Debugf("skipping %s: %v", entry.date, err)
			continue
		}
		times, err := extractStartTimes(fragment)
		if err != nil || len(times) == 0 {
			continue
		}
		slots[entry.date] = times
	}

	return slots, nil
}

// Book executes one booking transaction. At most one booking is in flight
// per engine; discovery calls remain parallel since they are read-only.
func (e *Engine) Book(ctx context.Context, req BookingRequest) Outcome {
	if err := req.validate(); err != nil {
		return Outcome{Status: StatusFatal, Code: CodeUnexpectedError, Detail: err.Error()}
	}

	e.bookingMu.Lock()
	defer e.bookingMu.Unlock()

	if err := ctx.Err(); err != nil {
		return Outcome{Status: StatusFatal, Code: CodeUnexpectedError, Detail: err.Error()}
	}

	driver, err := e.sessions.NewSession()
	if err != nil {
		return Outcome{
			Status: StatusFatal,
			Code:   CodeUnexpectedError,
			Detail: fmt.Sprintf("failed to open session: %v", err),
		}
	}
	defer driver.Close()

	t := &transaction{driver: driver, cfg: e.cfg, logger: e.logger}
	outcome := t.run(req)

	if outcome.IsSuccess() {
		e.logger.Infof("booked %s at %s for %s", req.When.Format("2006-01-02"), timeToken(req.When), req.Email)
	}
	return outcome
}
