// Package booking exposes the scheduling engine's operations as agent tools.
package booking

import (
	"context"
	"encoding/xml"
	"fmt"
	"sort"
	"strings"

	"github.com/entrhq/chrono/pkg/agent/tools"
	"github.com/entrhq/chrono/pkg/scheduler"
)

// DiscoverSlotsTool lists open appointment slots in the bookable window.
type DiscoverSlotsTool struct {
	engine *scheduler.Engine
}

// NewDiscoverSlotsTool creates the discovery tool over the given engine.
func NewDiscoverSlotsTool(engine *scheduler.Engine) *DiscoverSlotsTool {
	return &DiscoverSlotsTool{engine: engine}
}

type discoverSlotsInput struct {
	XMLName xml.Name `xml:"arguments"`
	Months  []string `xml:"months"`
}

// Name returns the tool identifier.
func (t *DiscoverSlotsTool) Name() string {
	return "discover_slots"
}

// Description returns the tool description shown to the model.
func (t *DiscoverSlotsTool) Description() string {
	return "List open appointment slots. Only the current month and the next two can be queried; " +
		"omit months to scan the whole window. Returns dates with their available start times."
}

// Schema returns the JSON schema for the tool's parameters.
func (t *DiscoverSlotsTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(map[string]interface{}{
		"months": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type":    "string",
				"pattern": `^\d{4}-\d{2}$`,
			},
			"description": "Months to query in YYYY-MM form. Omit for the full bookable window.",
		},
	}, nil)
}

// IsLoopBreaking returns false; results feed back into the conversation.
func (t *DiscoverSlotsTool) IsLoopBreaking() bool {
	return false
}

// Execute runs slot discovery and formats the aggregate for the model.
func (t *DiscoverSlotsTool) Execute(ctx context.Context, argumentsXML []byte) (string, map[string]interface{}, error) {
	var input discoverSlotsInput
	if err := tools.UnmarshalXMLWithFallback(argumentsXML, &input); err != nil {
		return "", nil, fmt.Errorf("invalid arguments: %w", err)
	}

	result := t.engine.DiscoverSlots(ctx, splitMonths(input.Months))

	if !result.Success {
		var b strings.Builder
		fmt.Fprintf(&b, "Slot discovery failed: %s (%s).\n", result.Error, result.Code)
		writeRejected(&b, result.Rejected)
		return b.String(), map[string]interface{}{"code": string(result.Code)}, nil
	}

	var b strings.Builder
	if len(result.Slots) == 0 {
		b.WriteString("No open slots were found in the requested months.\n")
	} else {
		b.WriteString("Open slots:\n")
		dates := make([]string, 0, len(result.Slots))
		for date := range result.Slots {
			dates = append(dates, date)
		}
		sort.Strings(dates)
		for _, date := range dates {
			fmt.Fprintf(&b, "  %s: %s\n", date, strings.Join(result.Slots[date], ", "))
		}
	}

	writeRejected(&b, result.Rejected)
	for _, failure := range result.Failures {
		fmt.Fprintf(&b, "Note: discovery for %s failed (%s); its slots are missing from this list.\n",
			failure.Month, failure.Error)
	}

	return b.String(), map[string]interface{}{"dates": len(result.Slots)}, nil
}

// splitMonths normalizes month arguments: repeated elements and
// comma-separated lists are both accepted.
func splitMonths(raw []string) []string {
	var months []string
	for _, entry := range raw {
		for _, part := range strings.Split(entry, ",") {
			if part = strings.TrimSpace(part); part != "" {
				months = append(months, part)
			}
		}
	}
	return months
}

func writeRejected(b *strings.Builder, rejected []scheduler.RejectedMonth) {
	for _, r := range rejected {
		fmt.Fprintf(b, "Note: month %q was ignored (%s).\n", r.Token, r.Reason)
	}
}
