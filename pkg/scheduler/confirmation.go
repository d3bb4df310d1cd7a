package scheduler

import (
	"fmt"
	"regexp"
)

// Confirmation is the structured record read from the post-submission
// confirmation surface. Immutable once produced.
type Confirmation struct {
	Title          string
	HostName       string
	TimeRangeText  string
	TimeZoneText   string
	InvitationLink string
}

// timeRangePattern recognizes the scheduled time block inside the details
// panel, e.g. "2:00pm - 2:30pm, Sunday, June 15, 2025".
var timeRangePattern = regexp.MustCompile(`(?i)\d{1,2}:\d{2}\s*[ap]m`)

// extractConfirmation reads the confirmation details panel. Only called
// after the confirmation heading appeared; any failure here happens with the
// booking already committed remotely.
func extractConfirmation(d Driver, timeout float64) (*Confirmation, error) {
	title, err := d.ReadText(detailsTitle)
	if err != nil {
		return nil, fmt.Errorf("event title: %w", err)
	}

	host, err := d.ReadText(hostNameSelector)
	if err != nil {
		return nil, fmt.Errorf("host name: %w", err)
	}

	timeRange, err := findTimeRange(d)
	if err != nil {
		return nil, err
	}

	zone, err := d.ReadText(timeZoneSelector)
	if err != nil {
		return nil, fmt.Errorf("time zone: %w", err)
	}

	link, err := d.ExpectNewPage(func() error {
		return d.Click(openInvitationSelector)
	}, timeout)
	if err != nil {
		return nil, fmt.Errorf("invitation link: %w", err)
	}

	return &Confirmation{
		Title:          title,
		HostName:       host,
		TimeRangeText:  timeRange,
		TimeZoneText:   zone,
		InvitationLink: link,
	}, nil
}

// findTimeRange scans the details panel for the first block that reads like
// a scheduled time. The panel carries no stable attribute for it.
func findTimeRange(d Driver) (string, error) {
	blocks, err := d.List(detailsPanelSelector + " div")
	if err != nil {
		return "", fmt.Errorf("details panel: %w", err)
	}

	for _, block := range blocks {
		text, err := block.Text()
		if err != nil {
			continue
		}
		if timeRangePattern.MatchString(text) {
			return text, nil
		}
	}

	return "", fmt.Errorf("no time range text found in details panel")
}
