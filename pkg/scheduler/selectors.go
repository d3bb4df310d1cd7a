package scheduler

import (
	"fmt"
	"strings"
	"time"
)

// Locator contract for the target scheduling UI. These attribute-based
// selectors are external and versionless: the site can silently break them,
// which the engine only observes as bounded waits expiring.
const (
	availableDaySelector   = `button[aria-label*="Times available"]:not([disabled])`
	timeButtonSelector     = `button[data-container="time-button"]`
	nextButtonSelector     = `button[aria-label^="Next"]`
	nameInputSelector      = `input[name="full_name"]`
	emailInputSelector     = `input[name="email"]`
	submitButtonSelector   = `button:has-text("Schedule Event")`
	confirmationHeading    = `h1:has-text("You are scheduled")`
	detailsPanelSelector   = `[data-container="details"]`
	openInvitationSelector = `text=Open Invitation`
	formFieldSelector      = `form input, form select, form textarea`

	// Class fragments inside the details panel are hashed by the site's
	// build; the substring match survives hash churn within one version.
	hostNameSelector = detailsPanelSelector + ` span[class*="_t4Cl8Q2S5qLJhygL_f0"]`
	timeZoneSelector = detailsPanelSelector + ` span[class*="q_L_u3RPhr9wdVLh3MdY"]`
	detailsTitle     = detailsPanelSelector + ` h2`
)

// spokenDate renders a date the way the calendar labels its day buttons,
// e.g. "Sunday, June 15".
func spokenDate(t time.Time) string {
	return t.Format("Monday, January 2")
}

// daySelector matches the enabled day button for the given date.
func daySelector(t time.Time) string {
	return fmt.Sprintf(`button[aria-label*="%s"]:not([disabled])`, spokenDate(t))
}

// timeToken renders a time-of-day the way the UI keys its slot buttons:
// lowercase h:mma, e.g. "2:00pm".
func timeToken(t time.Time) string {
	return strings.ToLower(t.Format("3:04PM"))
}

// timeSlotSelector matches the slot button for the given time-of-day.
func timeSlotSelector(t time.Time) string {
	return fmt.Sprintf(`%s[data-start-time="%s"]`, timeButtonSelector, timeToken(t))
}

// monthScopedURL appends the month query parameter that scopes the calendar
// view to one month.
func monthScopedURL(base string, token MonthToken) string {
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + "month=" + token.String()
}
