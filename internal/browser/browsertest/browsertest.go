// Package browsertest provides in-memory fakes of the browser interfaces so
// login, consent and scraping logic can be tested without Chromium.
package browsertest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Bangnus/Check-Unfollows-IG/internal/browser"
)

var (
	_ browser.PageHandle = (*Page)(nil)
	_ browser.Browser    = (*Browser)(nil)
)

// ScreenshotPNG is the fixed payload returned by Page.Screenshot.
var ScreenshotPNG = []byte{0x89, 'P', 'N', 'G'}

// Page is a scripted browser.Page. Zero value is an empty page.
// Exported fields may be set before use; hooks run without the lock held.
type Page struct {
	mu sync.Mutex

	// Visible selectors satisfy WaitVisible, Exists and Click.
	Visible map[string]bool
	// Buttons maps a selector to the texts ClickText can match on it.
	Buttons map[string][]string
	// HTMLs is returned by successive HTML calls; the last one repeats.
	HTMLs []string
	// PageTitle is returned by Title.
	PageTitle string
	// NavigateErrs is consumed by successive Navigate calls.
	NavigateErrs []error
	// SubmitErr is returned by ClickAndWaitNavigation.
	SubmitErr error
	// EvalFunc answers Eval; its result is round-tripped through JSON into out.
	EvalFunc func(js string, args []any) (any, error)
	// OnClick runs after every successful click with the selector (and text for ClickText).
	OnClick func(p *Page, selector, text string)
	// OnWaitVisible runs before WaitVisible checks selector.
	OnWaitVisible func(p *Page, selector string)

	Width, Height int

	calls    []string
	typed    map[string]string
	htmlPos  int
	closed   bool
	navCount int
}

// NewPage returns a page with the given selectors visible.
func NewPage(visible ...string) *Page {
	p := &Page{Width: 1920, Height: 1080}
	for _, s := range visible {
		p.Show(s)
	}
	return p
}

// Show marks selector visible.
func (p *Page) Show(selector string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Visible == nil {
		p.Visible = map[string]bool{}
	}
	p.Visible[selector] = true
}

// Hide marks selector absent.
func (p *Page) Hide(selector string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.Visible, selector)
}

// SetHTML replaces the scripted document.
func (p *Page) SetHTML(html ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.HTMLs = html
	p.htmlPos = 0
}

// Calls returns the recorded call log, e.g. "waitVisible input[name=\"username\"]".
func (p *Page) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

// CallsWithPrefix filters Calls by prefix.
func (p *Page) CallsWithPrefix(prefix string) []string {
	var out []string
	for _, c := range p.Calls() {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}

// Typed returns what was typed into selector.
func (p *Page) Typed(selector string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.typed[selector]
}

func (p *Page) record(format string, args ...any) {
	p.mu.Lock()
	p.calls = append(p.calls, fmt.Sprintf(format, args...))
	p.mu.Unlock()
}

func (p *Page) isVisible(selector string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Visible[selector]
}

func (p *Page) Navigate(ctx context.Context, url string, _ time.Duration) error {
	p.record("navigate %s", url)
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.navCount < len(p.NavigateErrs) {
		err := p.NavigateErrs[p.navCount]
		p.navCount++
		return err
	}
	p.navCount++
	return nil
}

func (p *Page) Reload(ctx context.Context, _ time.Duration) error {
	p.record("reload")
	return ctx.Err()
}

func (p *Page) WaitVisible(ctx context.Context, selector string, _ time.Duration) bool {
	p.record("waitVisible %s", selector)
	if hook := p.OnWaitVisible; hook != nil {
		hook(p, selector)
	}
	if ctx.Err() != nil {
		return false
	}
	return p.isVisible(selector)
}

func (p *Page) Exists(_ context.Context, selector string) bool {
	p.record("exists %s", selector)
	return p.isVisible(selector)
}

func (p *Page) Click(ctx context.Context, selector string, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !p.isVisible(selector) {
		p.record("click-miss %s", selector)
		return fmt.Errorf("%w: %s", browser.ErrElementNotFound, selector)
	}
	p.record("click %s", selector)
	if hook := p.OnClick; hook != nil {
		hook(p, selector, "")
	}
	return nil
}

func (p *Page) ClickText(ctx context.Context, selector, text string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	p.mu.Lock()
	found := false
	for _, t := range p.Buttons[selector] {
		if strings.Contains(t, text) {
			found = true
			break
		}
	}
	p.mu.Unlock()
	if !found {
		return false, nil
	}
	p.record("clickText %s %s", selector, text)
	if hook := p.OnClick; hook != nil {
		hook(p, selector, text)
	}
	return true, nil
}

func (p *Page) Type(ctx context.Context, selector, text string, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !p.isVisible(selector) {
		return fmt.Errorf("%w: %s", browser.ErrElementNotFound, selector)
	}
	p.record("type %s", selector)
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.typed == nil {
		p.typed = map[string]string{}
	}
	p.typed[selector] += text
	return nil
}

func (p *Page) ClickAndWaitNavigation(ctx context.Context, selector string, timeout time.Duration) error {
	if err := p.Click(ctx, selector, timeout); err != nil {
		return err
	}
	p.record("submitted %s", selector)
	return p.SubmitErr
}

func (p *Page) HTML(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.HTMLs) == 0 {
		return "<html></html>", nil
	}
	html := p.HTMLs[p.htmlPos]
	if p.htmlPos < len(p.HTMLs)-1 {
		p.htmlPos++
	}
	return html, nil
}

func (p *Page) Title(context.Context) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.PageTitle
}

func (p *Page) MoveMouse(_ context.Context, x, y float64, _ int) error {
	p.record("mouse %.0f,%.0f", x, y)
	return nil
}

func (p *Page) Wheel(_ context.Context, x, y, dy float64) error {
	p.record("wheel %.0f,%.0f %.0f", x, y, dy)
	return nil
}

func (p *Page) Eval(ctx context.Context, js string, out any, args ...any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.EvalFunc == nil {
		return errors.New("browsertest: no EvalFunc")
	}
	res, err := p.EvalFunc(js, args)
	if err != nil || out == nil {
		return err
	}
	data, err := json.Marshal(res)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func (p *Page) Screenshot(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ScreenshotPNG, nil
}

func (p *Page) Viewport() (int, int) {
	if p.Width == 0 {
		return 1920, 1080
	}
	return p.Width, p.Height
}

func (p *Page) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *Page) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// Browser is a fake browser process handing out Pages.
type Browser struct {
	mu       sync.Mutex
	id       string
	dead     bool
	closed   bool
	pages    []*Page
	cleared  int
	NewPageF func() *Page
}

// ID implements browser.Browser.
func (b *Browser) ID() string { return b.id }

// Alive is false once Kill or Close was called.
func (b *Browser) Alive() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.dead && !b.closed
}

// Kill simulates a crashed browser process.
func (b *Browser) Kill() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dead = true
}

func (b *Browser) NewPage(context.Context) (browser.PageHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p := NewPage()
	if b.NewPageF != nil {
		p = b.NewPageF()
	}
	b.pages = append(b.pages, p)
	return p, nil
}

// Pages returns every page created on this browser.
func (b *Browser) Pages() []*Page {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*Page(nil), b.pages...)
}

func (b *Browser) ClearCookies() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cleared++
	return nil
}

// CookieClears counts ClearCookies calls.
func (b *Browser) CookieClears() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cleared
}

func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

// IsClosed reports whether Close was called.
func (b *Browser) IsClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// Launcher records every launch and returns fresh Browsers.
type Launcher struct {
	mu       sync.Mutex
	browsers []*Browser
	Err      error
}

// Launch implements browser.Launcher.
func (l *Launcher) Launch(context.Context) (browser.Browser, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Err != nil {
		return nil, l.Err
	}
	b := &Browser{id: fmt.Sprintf("fake-%d", len(l.browsers)+1)}
	l.browsers = append(l.browsers, b)
	return b, nil
}

// Browsers returns every launched browser in order.
func (l *Launcher) Browsers() []*Browser {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*Browser(nil), l.browsers...)
}
