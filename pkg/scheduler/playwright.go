package scheduler

import (
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/gobwas/glob"
	"github.com/playwright-community/playwright-go"
)

// Default viewport for automation sessions.
const (
	defaultViewportWidth  = 1280
	defaultViewportHeight = 720
)

// SessionOptions configures the browser sessions a manager hands out.
type SessionOptions struct {
	// Headless controls whether Chromium runs without a visible window.
	Headless bool

	// NavigationTimeout bounds page loads, in milliseconds.
	NavigationTimeout float64

	// SelectorTimeout is the default bound for element operations, in
	// milliseconds.
	SelectorTimeout float64

	// AllowedHosts are glob patterns for hosts sessions may navigate to.
	AllowedHosts []string
}

// SessionManager owns the Playwright runtime and one shared Chromium
// process. Each NewSession call returns an isolated browser context wrapped
// in a Driver. It implements SessionFactory.
type SessionManager struct {
	mu          sync.Mutex
	pw          *playwright.Playwright
	browser     playwright.Browser
	opts        SessionOptions
	allowed     []glob.Glob
	initialized bool
}

// NewSessionManager creates a manager with the given options. Allowed-host
// patterns are compiled once here.
func NewSessionManager(opts SessionOptions) (*SessionManager, error) {
	m := &SessionManager{opts: opts}
	for _, pattern := range opts.AllowedHosts {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid allowed host pattern %q: %w", pattern, err)
		}
		m.allowed = append(m.allowed, g)
	}
	return m, nil
}

// Initialize installs and starts Playwright and launches the shared browser.
// Must be called before NewSession.
func (m *SessionManager) Initialize() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}

	// Discard driver output so it cannot interleave with the REPL.
	runOpts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}

	if err := playwright.Install(runOpts); err != nil {
		return fmt.Errorf("failed to install playwright: %w", err)
	}

	pw, err := playwright.Run(runOpts)
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: &m.opts.Headless,
	})
	if err != nil {
		_ = pw.Stop()
		return fmt.Errorf("failed to launch browser: %w", err)
	}

	m.pw = pw
	m.browser = browser
	m.initialized = true
	return nil
}

// NewSession creates an isolated browser context and page wrapped in a
// Driver. The caller owns the session and must Close it on every exit path.
func (m *SessionManager) NewSession() (Driver, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return nil, fmt.Errorf("session manager not initialized")
	}

	context, err := m.browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  defaultViewportWidth,
			Height: defaultViewportHeight,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}

	page, err := context.NewPage()
	if err != nil {
		_ = context.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	page.SetDefaultTimeout(m.opts.SelectorTimeout)

	return &playwrightDriver{
		context: context,
		page:    page,
		opts:    m.opts,
		allowed: m.allowed,
	}, nil
}

// Shutdown closes the shared browser and stops Playwright.
func (m *SessionManager) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return nil
	}

	if m.browser != nil {
		_ = m.browser.Close()
	}
	if err := m.pw.Stop(); err != nil {
		return fmt.Errorf("failed to stop playwright: %w", err)
	}
	m.initialized = false
	return nil
}

// playwrightDriver implements Driver over one Playwright browser context.
type playwrightDriver struct {
	context playwright.BrowserContext
	page    playwright.Page
	opts    SessionOptions
	allowed []glob.Glob
}

// Open navigates after checking the target host against the allow-list.
// The allow-list defends against navigation targets invented upstream (the
// model chooses when to call the engine, not where it goes).
func (d *playwrightDriver) Open(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	if !d.hostAllowed(parsed.Host, parsed.Hostname()) {
		return fmt.Errorf("host %q is not in the allowed host list", parsed.Host)
	}

	waitUntil := playwright.WaitUntilStateDomcontentloaded
	_, err = d.page.Goto(rawURL, playwright.PageGotoOptions{
		Timeout:   &d.opts.NavigationTimeout,
		WaitUntil: waitUntil,
	})
	if err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

// hostAllowed checks the URL host against the allow-list, both with the port
// (as configured hosts may carry one) and without (url.Hostname form, which
// also unbrackets IPv6 literals).
func (d *playwrightDriver) hostAllowed(host, bare string) bool {
	for _, g := range d.allowed {
		if g.Match(host) || g.Match(bare) {
			return true
		}
	}
	return false
}

func (d *playwrightDriver) WaitVisible(selector string, timeout float64) bool {
	state := playwright.WaitForSelectorStateVisible
	_, err := d.page.WaitForSelector(selector, playwright.PageWaitForSelectorOptions{
		State:   state,
		Timeout: &timeout,
	})
	return err == nil
}

func (d *playwrightDriver) Click(selector string) error {
	if err := d.page.Click(selector, playwright.PageClickOptions{
		Timeout: &d.opts.SelectorTimeout,
	}); err != nil {
		return fmt.Errorf("click %s failed: %w", selector, err)
	}
	return nil
}

func (d *playwrightDriver) Fill(selector, text string) error {
	if err := d.page.Fill(selector, text, playwright.PageFillOptions{
		Timeout: &d.opts.SelectorTimeout,
	}); err != nil {
		return fmt.Errorf("fill %s failed: %w", selector, err)
	}
	return nil
}

func (d *playwrightDriver) ReadText(selector string) (string, error) {
	handle, err := d.page.QuerySelector(selector)
	if err != nil {
		return "", fmt.Errorf("query %s failed: %w", selector, err)
	}
	if handle == nil {
		return "", fmt.Errorf("no element matches %s", selector)
	}
	text, err := handle.TextContent()
	if err != nil {
		return "", fmt.Errorf("read text of %s failed: %w", selector, err)
	}
	return strings.TrimSpace(text), nil
}

func (d *playwrightDriver) ReadAttribute(selector, name string) (string, bool) {
	handle, err := d.page.QuerySelector(selector)
	if err != nil || handle == nil {
		return "", false
	}
	value, err := handle.GetAttribute(name)
	if err != nil || value == "" {
		return "", false
	}
	return value, true
}

func (d *playwrightDriver) List(selector string) ([]Element, error) {
	handles, err := d.page.QuerySelectorAll(selector)
	if err != nil {
		return nil, fmt.Errorf("query all %s failed: %w", selector, err)
	}

	elements := make([]Element, 0, len(handles))
	for _, handle := range handles {
		elements = append(elements, &playwrightElement{handle: handle})
	}
	return elements, nil
}

func (d *playwrightDriver) HTML(selector string) (string, error) {
	handle, err := d.page.QuerySelector(selector)
	if err != nil {
		return "", fmt.Errorf("query %s failed: %w", selector, err)
	}
	if handle == nil {
		return "", fmt.Errorf("no element matches %s", selector)
	}
	html, err := handle.InnerHTML()
	if err != nil {
		return "", fmt.Errorf("read HTML of %s failed: %w", selector, err)
	}
	return html, nil
}

func (d *playwrightDriver) ExpectNewPage(trigger func() error, timeout float64) (string, error) {
	newPage, err := d.context.ExpectPage(trigger, playwright.BrowserContextExpectPageOptions{
		Timeout: &timeout,
	})
	if err != nil {
		return "", fmt.Errorf("no new page opened: %w", err)
	}

	// Best effort: the URL may still be about:blank until the load settles.
	_ = newPage.WaitForLoadState()
	pageURL := newPage.URL()
	_ = newPage.Close()
	return pageURL, nil
}

func (d *playwrightDriver) Close() error {
	_ = d.page.Close()
	if err := d.context.Close(); err != nil {
		return fmt.Errorf("failed to close browser context: %w", err)
	}
	return nil
}

// playwrightElement implements Element over a Playwright element handle.
type playwrightElement struct {
	handle playwright.ElementHandle
}

func (e *playwrightElement) Click() error {
	return e.handle.Click()
}

func (e *playwrightElement) Fill(text string) error {
	return e.handle.Fill(text)
}

func (e *playwrightElement) SelectOption(value string) error {
	_, err := e.handle.SelectOption(playwright.SelectOptionValues{
		Values: &[]string{value},
	})
	return err
}

func (e *playwrightElement) Text() (string, error) {
	text, err := e.handle.TextContent()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (e *playwrightElement) Attribute(name string) (string, bool) {
	value, err := e.handle.GetAttribute(name)
	if err != nil || value == "" {
		return "", false
	}
	return value, true
}

func (e *playwrightElement) ContainerText() (string, error) {
	result, err := e.handle.Evaluate(`el => {
		const container = el.closest("div, fieldset, section");
		return container ? container.textContent : "";
	}`)
	if err != nil {
		return "", fmt.Errorf("failed to read container text: %w", err)
	}
	text, ok := result.(string)
	if !ok {
		return "", fmt.Errorf("unexpected container text type %T", result)
	}
	return strings.TrimSpace(text), nil
}

func (e *playwrightElement) Tag() (string, error) {
	result, err := e.handle.Evaluate("el => el.tagName.toLowerCase()")
	if err != nil {
		return "", fmt.Errorf("failed to read tag name: %w", err)
	}
	tag, ok := result.(string)
	if !ok {
		return "", fmt.Errorf("unexpected tag name type %T", result)
	}
	return tag, nil
}
