package scheduler

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/entrhq/chrono/pkg/logging"
)

func newTestLogger(t *testing.T) *logging.Logger {
	t.Helper()
	logger, _ := logging.NewLogger("test")
	t.Cleanup(func() { logger.Close() })
	return logger
}

// fakeElement implements Element for form and panel scripting.
type fakeElement struct {
	tag           string
	text          string
	containerText string
	attrs         map[string]string
	clickErr      error
	fillErr       error
	selectErr     error

	clicked      bool
	filledWith   string
	selectedWith string
}

func (e *fakeElement) Click() error {
	e.clicked = true
	return e.clickErr
}

func (e *fakeElement) Fill(text string) error {
	if e.fillErr != nil {
		return e.fillErr
	}
	e.filledWith = text
	return nil
}

func (e *fakeElement) SelectOption(value string) error {
	if e.selectErr != nil {
		return e.selectErr
	}
	e.selectedWith = value
	return nil
}

func (e *fakeElement) Text() (string, error) { return e.text, nil }

func (e *fakeElement) Attribute(name string) (string, bool) {
	v, ok := e.attrs[name]
	return v, ok
}

func (e *fakeElement) Tag() (string, error) { return e.tag, nil }

func (e *fakeElement) ContainerText() (string, error) { return e.containerText, nil }

// fakeDriver is a selector-scripted Driver for booking-transaction tests.
// Visibility, click failures, texts, and lists are keyed by exact selector.
type fakeDriver struct {
	visible    map[string]bool
	clickErrs  map[string]error
	fillErrs   map[string]error
	texts      map[string]string
	textErrs   map[string]error
	lists      map[string][]Element
	htmls      map[string]string
	newPage    string
	newPageErr error
	openErr    error

	opened []string
	clicks []string
	fills  map[string]string
	closed bool
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		visible:   map[string]bool{},
		clickErrs: map[string]error{},
		fillErrs:  map[string]error{},
		texts:     map[string]string{},
		textErrs:  map[string]error{},
		lists:     map[string][]Element{},
		htmls:     map[string]string{},
		fills:     map[string]string{},
	}
}

func (d *fakeDriver) Open(url string) error {
	d.opened = append(d.opened, url)
	return d.openErr
}

func (d *fakeDriver) WaitVisible(selector string, _ float64) bool {
	return d.visible[selector]
}

func (d *fakeDriver) Click(selector string) error {
	d.clicks = append(d.clicks, selector)
	return d.clickErrs[selector]
}

func (d *fakeDriver) Fill(selector, text string) error {
	if err := d.fillErrs[selector]; err != nil {
		return err
	}
	d.fills[selector] = text
	return nil
}

func (d *fakeDriver) ReadText(selector string) (string, error) {
	if err := d.textErrs[selector]; err != nil {
		return "", err
	}
	text, ok := d.texts[selector]
	if !ok {
		return "", fmt.Errorf("no element matching %s", selector)
	}
	return text, nil
}

func (d *fakeDriver) ReadAttribute(selector, name string) (string, bool) {
	return "", false
}

func (d *fakeDriver) List(selector string) ([]Element, error) {
	return d.lists[selector], nil
}

func (d *fakeDriver) HTML(selector string) (string, error) {
	fragment, ok := d.htmls[selector]
	if !ok {
		return "", fmt.Errorf("no element matching %s", selector)
	}
	return fragment, nil
}

func (d *fakeDriver) ExpectNewPage(trigger func() error, _ float64) (string, error) {
	if err := trigger(); err != nil {
		return "", err
	}
	if d.newPageErr != nil {
		return "", d.newPageErr
	}
	return d.newPage, nil
}

func (d *fakeDriver) Close() error {
	d.closed = true
	return nil
}

// bookingPageDriver scripts a driver that renders the booking flow for the
// given slot all the way to the form, with extra form fields appended after
// the name/email inputs.
func bookingPageDriver(when time.Time, extra ...Element) *fakeDriver {
	d := newFakeDriver()
	d.visible[daySelector(when)] = true
	d.visible[timeSlotSelector(when)] = true
	d.visible[nextButtonSelector] = true
	d.visible[nameInputSelector] = true

	fields := []Element{
		&fakeElement{tag: "input", attrs: map[string]string{"name": "full_name", "type": "text"}},
		&fakeElement{tag: "input", attrs: map[string]string{"name": "email", "type": "email"}},
	}
	fields = append(fields, extra...)
	d.lists[formFieldSelector] = fields
	return d
}

// withConfirmation scripts the post-submission confirmation surface.
func (d *fakeDriver) withConfirmation() *fakeDriver {
	d.visible[confirmationHeading] = true
	d.texts[detailsTitle] = "30 Minute Meeting"
	d.texts[hostNameSelector] = "Avery Host"
	d.texts[timeZoneSelector] = "Eastern Time - US & Canada"
	d.lists[detailsPanelSelector+" div"] = []Element{
		&fakeElement{text: "30 Minute Meeting"},
		&fakeElement{text: "2:00pm - 2:30pm, Sunday, June 15, 2025"},
	}
	d.newPage = "https://calendar.example.com/invite/abc123"
	return d
}

// singleFactory hands out one scripted driver and counts sessions.
type singleFactory struct {
	driver  Driver
	err     error
	created int
}

func (f *singleFactory) NewSession() (Driver, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created++
	return f.driver, nil
}

// routedFactory hands out sessions that resolve their scripted month page
// from the URL they open, so concurrent discovery stays deterministic.
type routedFactory struct {
	mu      sync.Mutex
	pages   map[string]*monthPage
	err     error
	created int
	closed  int
}

// monthPage scripts one month-scoped calendar view: day button labels mapped
// to the body HTML rendered after clicking that day.
type monthPage struct {
	openErr error
	days    map[string]string
}

func (f *routedFactory) NewSession() (Driver, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.created++
	return &routedDriver{factory: f}, nil
}

type routedDriver struct {
	factory *routedFactory
	page    *monthPage
	current string
}

func (d *routedDriver) Open(url string) error {
	d.factory.mu.Lock()
	page := d.factory.pages[url]
	d.factory.mu.Unlock()

	if page == nil {
		d.page = &monthPage{}
		return nil
	}
	if page.openErr != nil {
		return page.openErr
	}
	d.page = page
	return nil
}

func (d *routedDriver) WaitVisible(selector string, _ float64) bool {
	switch selector {
	case availableDaySelector:
		return len(d.page.days) > 0
	case timeButtonSelector:
		return d.page.days[d.current] != ""
	}
	return false
}

func (d *routedDriver) Click(selector string) error {
	const prefix = `button[aria-label="`
	const suffix = `"]`
	if !strings.HasPrefix(selector, prefix) || !strings.HasSuffix(selector, suffix) {
		return fmt.Errorf("unexpected click selector %s", selector)
	}
	d.current = selector[len(prefix) : len(selector)-len(suffix)]
	return nil
}

func (d *routedDriver) Fill(string, string) error { return nil }

func (d *routedDriver) ReadText(string) (string, error) {
	return "", fmt.Errorf("not scripted")
}

func (d *routedDriver) ReadAttribute(string, string) (string, bool) { return "", false }

func (d *routedDriver) List(selector string) ([]Element, error) {
	if selector != availableDaySelector {
		return nil, nil
	}
	labels := make([]string, 0, len(d.page.days))
	for label := range d.page.days {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	elements := make([]Element, 0, len(labels))
	for _, label := range labels {
		elements = append(elements, &fakeElement{
			tag:   "button",
			attrs: map[string]string{"aria-label": label},
		})
	}
	return elements, nil
}

func (d *routedDriver) HTML(string) (string, error) {
	return d.page.days[d.current], nil
}

func (d *routedDriver) ExpectNewPage(func() error, float64) (string, error) {
	return "", fmt.Errorf("not scripted")
}

func (d *routedDriver) Close() error {
	d.factory.mu.Lock()
	d.factory.closed++
	d.factory.mu.Unlock()
	return nil
}
