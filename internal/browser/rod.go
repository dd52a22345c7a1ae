package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/oklog/ulid/v2"

	"github.com/Bangnus/Check-Unfollows-IG/internal/config"
)

// LaunchOptions is the fixed, environment-dependent launch configuration.
type LaunchOptions struct {
	Headless    bool
	ChromePath  string
	ProxyServer string
	UserAgent   string
	Width       int
	Height      int
}

// LaunchOptionsFromConfig derives launch options from the service config.
func LaunchOptionsFromConfig(cfg *config.Config) LaunchOptions {
	return LaunchOptions{
		Headless:    cfg.Headless,
		ChromePath:  cfg.ChromePath,
		ProxyServer: cfg.ProxyServer,
		UserAgent:   cfg.UserAgent,
		Width:       cfg.WindowWidth,
		Height:      cfg.WindowHeight,
	}
}

// NewRodLauncher returns a Launcher backed by a local Chromium.
func NewRodLauncher(opts LaunchOptions, logger *slog.Logger) Launcher {
	return func(ctx context.Context) (Browser, error) {
		l := launcher.New().Context(ctx)

		if opts.ChromePath != "" {
			l = l.Bin(opts.ChromePath)
		}

		l = l.
			Headless(opts.Headless).
			Set("disable-blink-features", "AutomationControlled").
			Set("disable-dev-shm-usage").
			Set("no-sandbox").
			Set("disable-setuid-sandbox").
			Set("disable-infobars").
			Set("window-size", fmt.Sprintf("%d,%d", opts.Width, opts.Height)).
			Set("lang", "en-US,en")

		if opts.UserAgent != "" {
			l = l.Set("user-agent", opts.UserAgent)
		}
		if opts.ProxyServer != "" {
			l = l.Proxy(opts.ProxyServer)
		}

		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("launch browser: %w", err)
		}

		b := rod.New().ControlURL(u)
		if err := b.Connect(); err != nil {
			l.Kill()
			return nil, fmt.Errorf("connect browser: %w", err)
		}

		id := ulid.Make().String()
		logger.Info("browser launched", "id", id, "headless", opts.Headless, "proxy", opts.ProxyServer != "")

		return &rodBrowser{id: id, browser: b, opts: opts}, nil
	}
}

type rodBrowser struct {
	id      string
	browser *rod.Browser
	opts    LaunchOptions
}

func (b *rodBrowser) ID() string { return b.id }

func (b *rodBrowser) Alive() bool {
	_, err := b.browser.Timeout(5 * time.Second).Version()
	return err == nil
}

func (b *rodBrowser) NewPage(ctx context.Context) (PageHandle, error) {
	page, err := CreateStealthPage(b.browser)
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	if err := configurePage(page, b.opts); err != nil {
		_ = page.Close()
		return nil, err
	}
	return &RodPage{page: page, width: b.opts.Width, height: b.opts.Height}, nil
}

func (b *rodBrowser) ClearCookies() error {
	return b.browser.SetCookies(nil)
}

func (b *rodBrowser) Close() error {
	return b.browser.Close()
}

// RodPage adapts a *rod.Page to Page.
type RodPage struct {
	page   *rod.Page
	width  int
	height int
}

// NewRodPage wraps an existing rod page.
func NewRodPage(page *rod.Page, width, height int) *RodPage {
	return &RodPage{page: page, width: width, height: height}
}

// bounded returns the page bound to ctx with an additional timeout.
func (p *RodPage) bounded(ctx context.Context, timeout time.Duration) (*rod.Page, context.Context, context.CancelFunc) {
	tctx, cancel := context.WithTimeout(ctx, timeout)
	return p.page.Context(tctx), tctx, cancel
}

func (p *RodPage) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	page, tctx, cancel := p.bounded(ctx, timeout)
	defer cancel()

	wait := page.WaitNavigation(proto.PageLifecycleEventNameNetworkAlmostIdle)
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	wait()
	return settleErr(ctx, tctx)
}

func (p *RodPage) Reload(ctx context.Context, timeout time.Duration) error {
	page, tctx, cancel := p.bounded(ctx, timeout)
	defer cancel()

	wait := page.WaitNavigation(proto.PageLifecycleEventNameNetworkAlmostIdle)
	if err := page.Reload(); err != nil {
		return fmt.Errorf("reload: %w", err)
	}
	wait()
	return settleErr(ctx, tctx)
}

// settleErr distinguishes the caller's cancellation from our own wait timeout.
func settleErr(parent, bounded context.Context) error {
	if err := parent.Err(); err != nil {
		return err
	}
	if bounded.Err() != nil {
		return ErrNavigationTimeout
	}
	return nil
}

func (p *RodPage) WaitVisible(ctx context.Context, selector string, timeout time.Duration) bool {
	page, _, cancel := p.bounded(ctx, timeout)
	defer cancel()

	el, err := page.Element(selector)
	if err != nil {
		return false
	}
	return el.WaitVisible() == nil
}

func (p *RodPage) Exists(ctx context.Context, selector string) bool {
	has, _, err := p.page.Context(ctx).Has(selector)
	return err == nil && has
}

func (p *RodPage) Click(ctx context.Context, selector string, timeout time.Duration) error {
	page, _, cancel := p.bounded(ctx, timeout)
	defer cancel()

	el, err := page.Element(selector)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrElementNotFound, selector)
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}

func (p *RodPage) ClickText(ctx context.Context, selector, text string) (bool, error) {
	has, el, err := p.page.Context(ctx).HasR(selector, regexp.QuoteMeta(text))
	if err != nil || !has {
		return false, err
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return false, err
	}
	return true, nil
}

func (p *RodPage) Type(ctx context.Context, selector, text string, perChar time.Duration) error {
	page := p.page.Context(ctx)

	el, err := page.Element(selector)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrElementNotFound, selector)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return err
	}
	for _, r := range text {
		if err := page.InsertText(string(r)); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(perChar):
		}
	}
	return nil
}

func (p *RodPage) ClickAndWaitNavigation(ctx context.Context, selector string, timeout time.Duration) error {
	page, tctx, cancel := p.bounded(ctx, timeout)
	defer cancel()

	el, err := page.Element(selector)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrElementNotFound, selector)
	}
	wait := page.WaitNavigation(proto.PageLifecycleEventNameNetworkAlmostIdle)
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return err
	}
	wait()
	return settleErr(ctx, tctx)
}

func (p *RodPage) HTML(ctx context.Context) (string, error) {
	return p.page.Context(ctx).HTML()
}

func (p *RodPage) Title(ctx context.Context) string {
	info, err := p.page.Context(ctx).Info()
	if err != nil {
		return ""
	}
	return info.Title
}

func (p *RodPage) MoveMouse(ctx context.Context, x, y float64, steps int) error {
	return p.page.Context(ctx).Mouse.MoveLinear(proto.Point{X: x, Y: y}, steps)
}

func (p *RodPage) Wheel(ctx context.Context, x, y, dy float64) error {
	mouse := p.page.Context(ctx).Mouse
	if err := mouse.MoveTo(proto.Point{X: x, Y: y}); err != nil {
		return err
	}
	return mouse.Scroll(0, dy, 5)
}

// Eval wraps js so the result crosses the protocol as a JSON string.
func (p *RodPage) Eval(ctx context.Context, js string, out any, args ...any) error {
	res, err := p.page.Context(ctx).Eval(wrapEval(js), args...)
	if err != nil {
		return err
	}
	return decodeEval(res.Value.Str(), out)
}

// wrapEval makes the page serialise the function's (awaited) result so it
// crosses CDP as a single JSON string.
func wrapEval(js string) string {
	return "async (...args) => JSON.stringify(await (" + js + ")(...args))"
}

// decodeEval unmarshals a wrapEval result into out. JSON.stringify of
// undefined yields no string, which decodes as null.
func decodeEval(raw string, out any) error {
	if out == nil {
		return nil
	}
	if raw == "" {
		raw = "null"
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("decode eval result: %w", err)
	}
	return nil
}

func (p *RodPage) Screenshot(ctx context.Context) ([]byte, error) {
	return p.page.Context(ctx).Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
}

func (p *RodPage) Viewport() (int, int) { return p.width, p.height }

func (p *RodPage) Closed() bool {
	_, err := p.page.Timeout(5 * time.Second).Info()
	return err != nil
}

func (p *RodPage) Close() error {
	return p.page.Close()
}

// configurePage applies the desktop viewport and user agent.
func configurePage(page *rod.Page, opts LaunchOptions) error {
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             opts.Width,
		Height:            opts.Height,
		DeviceScaleFactor: 1,
		Mobile:            false,
	}); err != nil {
		return fmt.Errorf("set viewport: %w", err)
	}
	if err := (proto.EmulationSetTouchEmulationEnabled{Enabled: false}).Call(page); err != nil {
		return fmt.Errorf("disable touch: %w", err)
	}
	if opts.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
			UserAgent:      opts.UserAgent,
			AcceptLanguage: "en-US,en;q=0.9",
		}); err != nil {
			return fmt.Errorf("set user agent: %w", err)
		}
	}
	return nil
}

// String is used in log attributes.
func (o LaunchOptions) String() string {
	return "headless=" + strconv.FormatBool(o.Headless) + " size=" + strconv.Itoa(o.Width) + "x" + strconv.Itoa(o.Height)
}
