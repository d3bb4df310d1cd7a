package scheduler

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// SlotMap maps an ISO calendar date (2006-01-02) to its ordered time-of-day
// tokens. Insertion order follows UI discovery order, not a sort. A SlotMap
// is built fresh per discovery call and never merged across calls.
type SlotMap map[string][]string

// extractStartTimes parses a rendered page fragment and returns the
// data-start-time tokens of its time-slot buttons in document order.
func extractStartTimes(fragment string) ([]string, error) {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return nil, fmt.Errorf("failed to parse slot list HTML: %w", err)
	}

	var times []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "button" {
			var container, start string
			for _, attr := range n.Attr {
				switch attr.Key {
				case "data-container":
					container = attr.Val
				case "data-start-time":
					start = attr.Val
				}
			}
			if container == "time-button" && start != "" {
				times = append(times, start)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return times, nil
}

// dayLabelLayout parses the leading date portion of a day button's
// aria-label, e.g. "Sunday, June 15 - Times available".
const dayLabelLayout = "Monday, January 2"

// dateFromDayLabel resolves a day button label to an ISO date within the
// given month. Labels for days that belong to an adjacent month spilling
// into the calendar view are rejected.
func dateFromDayLabel(label string, month MonthToken) (string, bool) {
	datePart := label
	if i := strings.Index(label, " - "); i >= 0 {
		datePart = label[:i]
	}

	parsed, err := time.Parse(dayLabelLayout, strings.TrimSpace(datePart))
	if err != nil {
		return "", false
	}
	if parsed.Month() != month.Month {
		return "", false
	}

	date := time.Date(month.Year, parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
	return date.Format("2006-01-02"), true
}
