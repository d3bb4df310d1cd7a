package booking

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/entrhq/chrono/pkg/agent/tools"
	"github.com/entrhq/chrono/pkg/scheduler"
)

// InvalidDatetimeError reports a datetime argument that is not a parseable
// ISO 8601 date-time. It is returned to the model as a tool error, never
// raised.
type InvalidDatetimeError struct {
	Value string
}

func (e *InvalidDatetimeError) Error() string {
	return fmt.Sprintf("datetime %q is not a valid ISO 8601 date-time (expected e.g. 2025-06-15T14:00:00)", e.Value)
}

// datetimeLayouts are the accepted ISO 8601 shapes, most specific first.
var datetimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// BookSlotTool books one appointment slot.
type BookSlotTool struct {
	engine *scheduler.Engine
}

// NewBookSlotTool creates the booking tool over the given engine.
func NewBookSlotTool(engine *scheduler.Engine) *BookSlotTool {
	return &BookSlotTool{engine: engine}
}

type bookSlotInput struct {
	XMLName             xml.Name    `xml:"arguments"`
	Name                string      `xml:"name"`
	Email               string      `xml:"email"`
	Datetime            string      `xml:"datetime"`
	AdditionalQuestions answerBlock `xml:"additionalQuestions"`
}

type answerBlock struct {
	InnerXML []byte `xml:",innerxml"`
}

// Name returns the tool identifier.
func (t *BookSlotTool) Name() string {
	return "book_slot"
}

// Description returns the tool description shown to the model.
func (t *BookSlotTool) Description() string {
	return "Book an appointment slot. If the form has extra required questions, the result lists them " +
		"with their keys; collect answers from the user and call again with additionalQuestions filled in. " +
		"Only book date/times that appeared in a discover_slots result."
}

// Schema returns the JSON schema for the tool's parameters.
func (t *BookSlotTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(map[string]interface{}{
		"name": map[string]interface{}{
			"type":        "string",
			"description": "Invitee full name.",
		},
		"email": map[string]interface{}{
			"type":        "string",
			"description": "Invitee email address.",
		},
		"datetime": map[string]interface{}{
			"type":        "string",
			"format":      "date-time",
			"description": "Slot start as an ISO 8601 date-time, e.g. 2025-06-15T14:00:00.",
		},
		"additionalQuestions": map[string]interface{}{
			"type":                 "object",
			"additionalProperties": map[string]interface{}{"type": "string"},
			"description": "Answers keyed by the question keys returned from a previous attempt. " +
				"Empty on the first attempt.",
		},
	}, []string{"name", "email", "datetime"})
}

// IsLoopBreaking returns false; results feed back into the conversation.
func (t *BookSlotTool) IsLoopBreaking() bool {
	return false
}

// Execute runs one booking transaction and formats the outcome.
func (t *BookSlotTool) Execute(ctx context.Context, argumentsXML []byte) (string, map[string]interface{}, error) {
	var input bookSlotInput
	if err := tools.UnmarshalXMLWithFallback(argumentsXML, &input); err != nil {
		return "", nil, fmt.Errorf("invalid arguments: %w", err)
	}

	when, err := parseDatetime(input.Datetime)
	if err != nil {
		return "", nil, err
	}

	answers, err := parseAnswerMap(input.AdditionalQuestions.InnerXML)
	if err != nil {
		return "", nil, fmt.Errorf("invalid additionalQuestions: %w", err)
	}

	outcome := t.engine.Book(ctx, scheduler.BookingRequest{
		Name:    input.Name,
		Email:   input.Email,
		When:    when,
		Answers: answers,
	})

	metadata := map[string]interface{}{"code": string(outcome.Code)}

	switch {
	case outcome.IsSuccess():
		return formatConfirmation(outcome.Confirmation), metadata, nil
	case outcome.NeedsAnswers():
		return formatQuestions(outcome.Questions), metadata, nil
	default:
		msg := fmt.Sprintf("Booking failed: %s", outcome.Code)
		if outcome.Detail != "" {
			msg += " - " + outcome.Detail
		}
		return msg, metadata, nil
	}
}

// parseDatetime accepts the ISO 8601 shapes the tool contract allows.
func parseDatetime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, &InvalidDatetimeError{Value: value}
	}
	for _, layout := range datetimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &InvalidDatetimeError{Value: value}
}

// parseAnswerMap decodes the free-form additionalQuestions element into a
// key/value map: each child element name is a question key, its character
// data the answer.
func parseAnswerMap(inner []byte) (map[string]string, error) {
	answers := make(map[string]string)
	if len(inner) == 0 {
		return answers, nil
	}

	decoder := xml.NewDecoder(strings.NewReader("<answers>" + string(inner) + "</answers>"))
	var key string
	var text strings.Builder
	depth := 0

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := token.(type) {
		case xml.StartElement:
			depth++
			if depth == 2 {
				key = t.Name.Local
				text.Reset()
			}
		case xml.EndElement:
			if depth == 2 && key != "" {
				answers[key] = strings.TrimSpace(text.String())
				key = ""
			}
			depth--
		case xml.CharData:
			if depth == 2 {
				text.Write(t)
			}
		}
	}

	return answers, nil
}

func formatConfirmation(c *scheduler.Confirmation) string {
	var b strings.Builder
	b.WriteString("Booking confirmed.\n")
	fmt.Fprintf(&b, "  Event: %s\n", c.Title)
	fmt.Fprintf(&b, "  Host: %s\n", c.HostName)
	fmt.Fprintf(&b, "  When: %s (%s)\n", c.TimeRangeText, c.TimeZoneText)
	if c.InvitationLink != "" {
		fmt.Fprintf(&b, "  Invitation: %s\n", c.InvitationLink)
	}
	return b.String()
}

func formatQuestions(questions []scheduler.QuestionField) string {
	var b strings.Builder
	b.WriteString("The booking form needs answers to additional questions before it can be submitted.\n")
	b.WriteString("Ask the user for all of them at once, then call book_slot again with these exact keys in additionalQuestions:\n")
	for _, q := range questions {
		requirement := "optional"
		if q.Required {
			requirement = "required"
		}
		fmt.Fprintf(&b, "  %s (%s, %s): %s", q.Key, q.Kind, requirement, q.Label)
		if q.Placeholder != "" {
			fmt.Fprintf(&b, " [placeholder: %s]", q.Placeholder)
		}
		b.WriteString("\n")
	}
	return b.String()
}
