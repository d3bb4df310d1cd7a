package scheduler

import (
	"fmt"
	"strings"
)

// QuestionKind classifies a dynamically discovered form field.
type QuestionKind string

const (
	QuestionText      QuestionKind = "text"
	QuestionChoice    QuestionKind = "choice"
	QuestionMultiline QuestionKind = "multiline"
)

// QuestionField describes one booking-form control discovered at runtime.
// Keys are UI-assigned and opaque (commonly "question_0" style); they are
// never known before a booking attempt reaches the form.
type QuestionField struct {
	Key         string
	Label       string
	Kind        QuestionKind
	Required    bool
	Placeholder string
}

// discoverQuestions enumerates booking-form controls other than the
// name/email inputs, returning the field descriptions and the matching
// control handles in the same order.
func discoverQuestions(d Driver) (fields []QuestionField, controls []Element, err error) {
	elements, err := d.List(formFieldSelector)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to enumerate form fields: %w", err)
	}

	index := 0
	for _, el := range elements {
		name, _ := el.Attribute("name")
		if name == "full_name" || name == "email" {
			continue
		}
		if inputType, ok := el.Attribute("type"); ok {
			switch inputType {
			case "hidden", "submit", "button":
				continue
			}
		}

		tag, tagErr := el.Tag()
		if tagErr != nil {
			continue
		}

		key := name
		if key == "" {
			if id, ok := el.Attribute("id"); ok {
				key = id
			}
		}
		if key == "" {
			key = fmt.Sprintf("question_%d", index)
		}

		kind := QuestionText
		switch tag {
		case "select":
			kind = QuestionChoice
		case "textarea":
			kind = QuestionMultiline
		}

		required := false
		if _, ok := el.Attribute("required"); ok {
			required = true
		}
		if v, ok := el.Attribute("aria-required"); ok && v == "true" {
			required = true
		}

		placeholder, _ := el.Attribute("placeholder")

		fields = append(fields, QuestionField{
			Key:         key,
			Label:       questionLabel(d, el, index),
			Kind:        kind,
			Required:    required,
			Placeholder: placeholder,
		})
		controls = append(controls, el)
		index++
	}

	return fields, controls, nil
}

// maxLabelLength caps container-derived labels so a whole form section's text
// cannot masquerade as one.
const maxLabelLength = 120

// questionLabel resolves a field's label: the text of an associated
// label[for] element, then the field's own aria-label, then the leading text
// of its enclosing container, then a generated "Question N".
func questionLabel(d Driver, el Element, index int) string {
	if id, ok := el.Attribute("id"); ok {
		if text, err := d.ReadText(fmt.Sprintf(`label[for=%q]`, id)); err == nil && text != "" {
			return text
		}
	}
	if label, ok := el.Attribute("aria-label"); ok {
		return label
	}
	if text, err := el.ContainerText(); err == nil {
		if label := firstLine(text); label != "" {
			return label
		}
	}
	return fmt.Sprintf("Question %d", index+1)
}

// firstLine returns the first non-empty line of text, trimmed. Overlong lines
// are discarded rather than truncated.
func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if len(line) > maxLabelLength {
			return ""
		}
		return line
	}
	return ""
}

// writeAnswer fills one discovered control with the caller's answer.
func writeAnswer(control Element, field QuestionField, answer string) error {
	if field.Kind == QuestionChoice {
		if err := control.SelectOption(answer); err != nil {
			return fmt.Errorf("failed to select %q for %s: %w", answer, field.Key, err)
		}
		return nil
	}
	if err := control.Fill(answer); err != nil {
		return fmt.Errorf("failed to fill %s: %w", field.Key, err)
	}
	return nil
}
