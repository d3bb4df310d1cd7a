package scheduler

import (
	"fmt"
	"time"
)

// WindowMonths is the size of the bookable window: the current calendar
// month plus the next two.
const WindowMonths = 3

// monthTokenLayout is the wire format for month tokens (e.g. "2026-09").
const monthTokenLayout = "2006-01"

// MonthToken identifies one calendar month.
type MonthToken struct {
	Year  int
	Month time.Month
}

// ParseMonthToken parses a YYYY-MM token.
func ParseMonthToken(s string) (MonthToken, error) {
	t, err := time.Parse(monthTokenLayout, s)
	if err != nil {
		return MonthToken{}, fmt.Errorf("invalid month token %q: %w", s, err)
	}
	return MonthToken{Year: t.Year(), Month: t.Month()}, nil
}

// String returns the YYYY-MM form of the token.
func (t MonthToken) String() string {
	return fmt.Sprintf("%04d-%02d", t.Year, int(t.Month))
}

// Add returns the token n months later.
func (t MonthToken) Add(n int) MonthToken {
	total := t.Year*12 + int(t.Month) - 1 + n
	return MonthToken{Year: total / 12, Month: time.Month(total%12 + 1)}
}

// diff returns the signed whole-month distance from other to t.
func (t MonthToken) diff(other MonthToken) int {
	return (t.Year-other.Year)*12 + int(t.Month) - int(other.Month)
}

// RejectReason explains why a requested month was dropped.
type RejectReason string

const (
	// RejectMalformed marks tokens that do not parse as YYYY-MM.
	RejectMalformed RejectReason = "malformed"

	// RejectOutOfWindow marks tokens outside the bookable window.
	RejectOutOfWindow RejectReason = "out_of_window"
)

// RejectedMonth pairs a dropped request token with its reason.
type RejectedMonth struct {
	Token  string
	Reason RejectReason
}

// ResolveMonths applies the window policy to a list of requested tokens.
//
// An empty request resolves to exactly the three months of the window in
// ascending order. Otherwise each token is validated for syntax and window
// membership; bad tokens are returned in rejected with a reason, never as an
// error. Order of accepted tokens follows the request.
func ResolveMonths(now time.Time, requested []string) (accepted []MonthToken, rejected []RejectedMonth) {
	current := MonthToken{Year: now.Year(), Month: now.Month()}

	if len(requested) == 0 {
		for i := 0; i < WindowMonths; i++ {
			accepted = append(accepted, current.Add(i))
		}
		return accepted, nil
	}

	for _, raw := range requested {
		token, err := ParseMonthToken(raw)
		if err != nil {
			rejected = append(rejected, RejectedMonth{Token: raw, Reason: RejectMalformed})
			continue
		}

		if d := token.diff(current); d < 0 || d >= WindowMonths {
			rejected = append(rejected, RejectedMonth{Token: raw, Reason: RejectOutOfWindow})
			continue
		}

		accepted = append(accepted, token)
	}

	return accepted, rejected
}
