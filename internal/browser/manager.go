// Package browser owns the single long-lived browser process and page used by
// every check, and hands it out one request at a time.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Bangnus/Check-Unfollows-IG/internal/config"
	"github.com/Bangnus/Check-Unfollows-IG/internal/models"
)

// ManagerOptions controls the idle policy and lease queueing.
type ManagerOptions struct {
	MaxIdle          time.Duration // force recycle on acquire
	IdleRecycleAfter time.Duration // recycle from the sweep
	SweepInterval    time.Duration
	LeaseWait        time.Duration // 0 waits as long as ctx allows
	Now              func() time.Time
}

// ManagerOptionsFromConfig derives manager options from the service config.
func ManagerOptionsFromConfig(cfg *config.Config) ManagerOptions {
	return ManagerOptions{
		MaxIdle:          cfg.BrowserMaxIdle,
		IdleRecycleAfter: cfg.BrowserIdleRecycle,
		SweepInterval:    cfg.BrowserSweepInterval,
		LeaseWait:        cfg.LeaseWaitTimeout,
	}
}

// Manager owns at most one browser and one page.
type Manager struct {
	mu           sync.Mutex
	launch       Launcher
	opts         ManagerOptions
	logger       *slog.Logger
	browser      Browser
	page         PageHandle
	generation   uint64
	lastActivity time.Time
	leased       bool
	launching    bool
	closed       bool

	// single-slot semaphore serialising leases
	slot chan struct{}

	sweepStop chan struct{}
	sweepDone chan struct{}
}

// NewManager creates a manager. Nothing is launched until the first lease.
func NewManager(launch Launcher, opts ManagerOptions, logger *slog.Logger) *Manager {
	return &Manager{
		launch: launch,
		opts:   opts,
		logger: logger,
		slot:   make(chan struct{}, 1),
	}
}

func (m *Manager) now() time.Time {
	if m.opts.Now != nil {
		return m.opts.Now()
	}
	return time.Now()
}

// AcquireBrowser returns a live browser, launching or recycling as needed.
func (m *Manager) AcquireBrowser(ctx context.Context) (Browser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.acquireBrowserLocked(ctx)
}

// acquireBrowserLocked is called with m.mu held. The mutex is released while
// the browser launches so Stats and the sweep never wait on Chromium.
func (m *Manager) acquireBrowserLocked(ctx context.Context) (Browser, error) {
	if m.closed {
		return nil, ErrManagerClosed
	}

	if m.browser != nil {
		idle := m.now().Sub(m.lastActivity)
		switch {
		case m.opts.MaxIdle > 0 && idle > m.opts.MaxIdle:
			m.logger.Info("recycling browser", "id", m.browser.ID(), "reason", "max_idle", "idle", idle)
			m.teardownLocked()
		case !m.browser.Alive():
			m.logger.Warn("browser disconnected, relaunching", "id", m.browser.ID())
			m.teardownLocked()
		}
	}

	if m.browser == nil {
		m.launching = true
		m.mu.Unlock()
		b, err := m.launch(ctx)
		m.mu.Lock()
		m.launching = false
		if err != nil {
			return nil, err
		}
		switch {
		case m.closed:
			m.discardBrowser(b)
			return nil, ErrManagerClosed
		case m.browser != nil:
			// another caller launched while the lock was released
			m.discardBrowser(b)
		default:
			m.browser = b
		}
	}

	m.lastActivity = m.now()
	m.startSweepLocked()
	return m.browser, nil
}

// AcquirePage returns the live page on the current browser, creating it if needed.
func (m *Manager) AcquirePage(ctx context.Context) (PageHandle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.acquirePageLocked(ctx)
}

func (m *Manager) acquirePageLocked(ctx context.Context) (PageHandle, error) {
	b, err := m.acquireBrowserLocked(ctx)
	if err != nil {
		return nil, err
	}

	if m.page != nil && m.page.Closed() {
		m.page = nil
	}
	if m.page == nil {
		gen := m.generation
		m.mu.Unlock()
		page, err := b.NewPage(ctx)
		m.mu.Lock()
		if err != nil {
			return nil, err
		}
		switch {
		case m.closed:
			_ = page.Close()
			return nil, ErrManagerClosed
		case m.generation != gen:
			_ = page.Close()
			return nil, ErrLeaseExpired
		case m.page != nil:
			_ = page.Close()
		default:
			m.page = page
			m.logger.Debug("page created", "browser", b.ID())
		}
	}

	m.lastActivity = m.now()
	return m.page, nil
}

// Lease waits for exclusive use of the page. Cookies are cleared so no login
// state carries over from the previous request.
func (m *Manager) Lease(ctx context.Context) (*Lease, error) {
	waitCtx := ctx
	if m.opts.LeaseWait > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, m.opts.LeaseWait)
		defer cancel()
	}

	select {
	case m.slot <- struct{}{}:
	case <-waitCtx.Done():
		return nil, fmt.Errorf("waiting for browser: %w", waitCtx.Err())
	}

	m.mu.Lock()
	page, err := m.acquirePageLocked(ctx)
	if err != nil {
		m.mu.Unlock()
		<-m.slot
		return nil, err
	}
	b, gen := m.browser, m.generation
	m.leased = true
	m.mu.Unlock()

	if err := b.ClearCookies(); err != nil {
		m.logger.Warn("failed to clear cookies", "error", err)
	}
	return &Lease{m: m, page: page, generation: gen}, nil
}

func (m *Manager) discardBrowser(b Browser) {
	if err := b.Close(); err != nil {
		m.logger.Debug("error closing discarded browser", "id", b.ID(), "error", err)
	}
}

func (m *Manager) release() {
	m.mu.Lock()
	m.leased = false
	m.lastActivity = m.now()
	m.mu.Unlock()
	<-m.slot
}

// Close closes page and browser and stops the sweep. Safe to call more than once.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.teardownLocked()
	stop, done := m.sweepStop, m.sweepDone
	m.sweepStop, m.sweepDone = nil, nil
	m.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
}

// Stats returns the current handle state.
func (m *Manager) Stats() models.BrowserStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := models.BrowserStats{
		BrowserAlive: m.browser != nil,
		PageOpen:     m.page != nil,
		Generation:   m.generation,
		Leased:       m.leased,
		Launching:    m.launching,
	}
	if !m.lastActivity.IsZero() {
		stats.IdleSeconds = int64(m.now().Sub(m.lastActivity).Seconds())
	}
	return stats
}

// teardownLocked closes the page and browser, tolerating handles that are already gone.
func (m *Manager) teardownLocked() {
	if m.page != nil {
		if err := m.page.Close(); err != nil {
			m.logger.Debug("error closing page", "error", err)
		}
		m.page = nil
	}
	if m.browser != nil {
		id := m.browser.ID()
		if err := m.browser.Close(); err != nil {
			m.logger.Warn("error closing browser", "id", id, "error", err)
		}
		m.browser = nil
		m.logger.Info("browser closed", "id", id)
	}
	m.generation++
}

func (m *Manager) startSweepLocked() {
	if m.sweepStop != nil || m.opts.SweepInterval <= 0 {
		return
	}
	m.sweepStop = make(chan struct{})
	m.sweepDone = make(chan struct{})
	go m.runSweep(m.sweepStop, m.sweepDone)
}

func (m *Manager) runSweep(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(m.opts.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

// sweep recycles an idle browser. A held lease is never interrupted.
func (m *Manager) sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed || m.leased || m.browser == nil || m.opts.IdleRecycleAfter <= 0 {
		return
	}
	idle := m.now().Sub(m.lastActivity)
	if idle <= m.opts.IdleRecycleAfter {
		return
	}
	m.logger.Info("recycling idle browser", "id", m.browser.ID(), "idle", idle)
	m.teardownLocked()
}

func (m *Manager) currentGeneration() (uint64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generation, m.closed
}

// Lease is exclusive use of the managed page for one request.
type Lease struct {
	m          *Manager
	page       PageHandle
	generation uint64
	once       sync.Once
}

// Page returns the leased page.
func (l *Lease) Page() Page {
	return l.page
}

// Valid reports whether the handle behind this lease is still the live one.
func (l *Lease) Valid() bool {
	gen, closed := l.m.currentGeneration()
	return !closed && gen == l.generation
}

// Check returns ErrLeaseExpired when the lease is no longer valid.
func (l *Lease) Check() error {
	if !l.Valid() {
		return ErrLeaseExpired
	}
	return nil
}

// Screenshot captures the leased page, returning nil when the lease has expired.
func (l *Lease) Screenshot(ctx context.Context) []byte {
	if !l.Valid() {
		return nil
	}
	png, err := l.page.Screenshot(ctx)
	if err != nil {
		l.m.logger.Debug("screenshot failed", "error", err)
		return nil
	}
	return png
}

// Release returns the page to the manager. Safe to call more than once.
func (l *Lease) Release() {
	l.once.Do(l.m.release)
}
