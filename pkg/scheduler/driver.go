package scheduler

// Driver is the capability surface the engine needs from one automation
// session. Higher components depend only on this interface, never on a
// concrete browser, so the state machine and discovery logic are testable
// against an in-memory implementation.
//
// Timeouts are in milliseconds, matching the underlying browser tooling.
// Bounded waits report expiry through their return values; drivers never leak
// raw timeout errors into business logic.
type Driver interface {
	// Open navigates the session to the given URL.
	Open(url string) error

	// WaitVisible waits up to timeout for a visible element matching the
	// selector. Expiry is reported as false, not an error.
	WaitVisible(selector string, timeout float64) bool

	// Click clicks the first element matching the selector.
	Click(selector string) error

	// Fill replaces the value of the input matching the selector.
	Fill(selector, text string) error

	// ReadText returns the trimmed text content of the first match.
	ReadText(selector string) (string, error)

	// ReadAttribute returns an attribute of the first match. The boolean
	// is false when the element or attribute is absent. Page-level
	// counterpart of Element.Attribute for callers without a handle.
	ReadAttribute(selector, name string) (string, bool)

	// List returns handles for every element matching the selector, in
	// document order. No matches is an empty slice, not an error.
	List(selector string) ([]Element, error)

	// HTML returns the inner HTML of the first element matching the
	// selector.
	HTML(selector string) (string, error)

	// ExpectNewPage runs trigger and captures the URL of the page it
	// opens, waiting up to timeout for the page to appear.
	ExpectNewPage(trigger func() error, timeout float64) (string, error)

	// Close releases the session's underlying resources. Safe to call on
	// every exit path.
	Close() error
}

// Element is an opaque handle to one UI control returned by Driver.List.
type Element interface {
	Click() error
	Fill(text string) error
	SelectOption(value string) error
	Text() (string, error)
	Attribute(name string) (string, bool)
	Tag() (string, error)

	// ContainerText returns the text of the element's nearest block
	// container, used to recover a label for unlabeled form fields.
	ContainerText() (string, error)
}

// SessionFactory opens isolated automation sessions. Each discovery month and
// each booking attempt acquires its own session and releases it when done.
type SessionFactory interface {
	NewSession() (Driver, error)
}
