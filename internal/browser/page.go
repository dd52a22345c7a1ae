package browser

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrManagerClosed is returned when leasing from a closed manager.
	ErrManagerClosed = errors.New("browser manager is closed")
	// ErrLeaseExpired is returned by lease operations after the handle was recycled.
	ErrLeaseExpired = errors.New("browser lease expired")
	// ErrNavigationTimeout is returned when a page does not settle in time.
	ErrNavigationTimeout = errors.New("navigation timed out")
	// ErrElementNotFound is returned when a selector does not match in time.
	ErrElementNotFound = errors.New("element not found")
)

// Page is the subset of page automation used by the login flow and the scraper.
// Every call is bounded by ctx; timeouts bound individual waits.
type Page interface {
	// Navigate loads url and waits for the network to go almost idle.
	Navigate(ctx context.Context, url string, timeout time.Duration) error
	// Reload reloads the current document with the same settle rule as Navigate.
	Reload(ctx context.Context, timeout time.Duration) error
	// WaitVisible reports whether selector became visible within timeout.
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) bool
	// Exists reports whether selector currently matches, without waiting.
	Exists(ctx context.Context, selector string) bool
	// Click waits up to timeout for selector and clicks it.
	Click(ctx context.Context, selector string, timeout time.Duration) error
	// ClickText clicks the first element matching selector whose text contains text.
	ClickText(ctx context.Context, selector, text string) (bool, error)
	// Type focuses selector and enters text one character at a time.
	Type(ctx context.Context, selector, text string, perChar time.Duration) error
	// ClickAndWaitNavigation clicks selector and waits for the resulting navigation to settle.
	ClickAndWaitNavigation(ctx context.Context, selector string, timeout time.Duration) error
	// HTML returns the rendered document.
	HTML(ctx context.Context) (string, error)
	// Title returns the document title, empty on error.
	Title(ctx context.Context) string
	// MoveMouse moves the pointer to (x, y) in steps.
	MoveMouse(ctx context.Context, x, y float64, steps int) error
	// Wheel moves the pointer to (x, y) and scrolls vertically by dy.
	Wheel(ctx context.Context, x, y, dy float64) error
	// Eval runs a JS function expression with args and decodes its JSON-able result into out.
	Eval(ctx context.Context, js string, out any, args ...any) error
	// Screenshot captures a full-page PNG.
	Screenshot(ctx context.Context) ([]byte, error)
	// Viewport returns the emulated viewport size.
	Viewport() (width, height int)
}

// PageHandle is a Page owned by the manager.
type PageHandle interface {
	Page
	Closed() bool
	Close() error
}

// Browser is a launched browser process.
type Browser interface {
	ID() string
	Alive() bool
	NewPage(ctx context.Context) (PageHandle, error)
	ClearCookies() error
	Close() error
}

// Launcher starts a browser process.
type Launcher func(ctx context.Context) (Browser, error)
