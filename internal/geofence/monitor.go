package geofence

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrPermissionDenied is reported by a PositionSource when the device refuses
// location access. It never crosses the wire; denial is handled locally.
var ErrPermissionDenied = errors.New("location permission denied")

// Position is a device location sample.
type Position struct {
	Lat float64
	Lng float64
	At  time.Time
}

// PositionSource abstracts the device positioning API.
type PositionSource interface {
	// Current returns a one-shot fix, accepting a cached position no older
	// than maxAge (zero means a fresh high-accuracy fix).
	Current(ctx context.Context, maxAge time.Duration) (Position, error)
	// Watch streams continuous high-accuracy updates until ctx is cancelled.
	Watch(ctx context.Context) (<-chan Position, error)
}

// Checker is the client view of the two geofence wire operations.
type Checker interface {
	Check(ctx context.Context, pos Position) (*CheckResult, error)
	SetBaseline(ctx context.Context, pos Position) error
}

// MonitorHooks carries the user-facing side effects of monitoring.
type MonitorHooks struct {
	// Notify surfaces a blocking notification before any navigation.
	Notify func(message string)
	// SignOut drops the local session and returns to the guard login.
	SignOut func()
}

// MonitorConfig holds the sampling policy knobs.
type MonitorConfig struct {
	// CheckInterval is the cadence of the periodic backup fix.
	CheckInterval time.Duration
	// BackupMaxAge is the staleness accepted for the backup fix.
	BackupMaxAge time.Duration
	// PermissionGrace is the delay between a permission denial notice and
	// the forced local sign-out.
	PermissionGrace time.Duration
}

// Monitor supervises position sampling for an active guard session: every
// continuous-watch update and every periodic backup fix is evaluated, and a
// violation or permission denial ends the session locally. A failed check is
// never escalated; only an explicit out-of-range result signs the guard out.
type Monitor struct {
	logger  *slog.Logger
	source  PositionSource
	checker Checker
	hooks   MonitorHooks
	cfg     MonitorConfig

	mu        sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}
	baselined bool
}

// NewMonitor constructs a Monitor.
func NewMonitor(logger *slog.Logger, source PositionSource, checker Checker, hooks MonitorHooks, cfg MonitorConfig) *Monitor {
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = 2 * time.Minute
	}
	if cfg.BackupMaxAge <= 0 {
		cfg.BackupMaxAge = time.Minute
	}
	if cfg.PermissionGrace <= 0 {
		cfg.PermissionGrace = 5 * time.Second
	}
	return &Monitor{logger: logger, source: source, checker: checker, hooks: hooks, cfg: cfg}
}

// Start requests an initial fix to establish permission and begins the
// sampling loop. Permission denial is a hard violation: the user is notified
// and signed out after the configured grace delay.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.cancel != nil {
		m.mu.Unlock()
		return errors.New("monitor already started")
	}
	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})
	m.mu.Unlock()

	pos, err := m.source.Current(ctx, 0)
	if err != nil {
		if errors.Is(err, ErrPermissionDenied) {
			m.notify("Location access is required while on duty. You will be signed out.")
			go m.signOutAfterGrace(ctx)
			return nil
		}
		close(m.done)
		cancel()
		return err
	}

	m.notify("Location monitoring is active.")
	m.sample(ctx, pos)

	watch, err := m.source.Watch(ctx)
	if err != nil {
		close(m.done)
		cancel()
		return err
	}

	go m.run(ctx, watch)
	return nil
}

// Stop cancels the watch and the periodic timer and waits for the loop to
// drain. No sample is sent after Stop returns.
func (m *Monitor) Stop() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	if done != nil {
		<-done
	}
}

func (m *Monitor) run(ctx context.Context, watch <-chan Position) {
	defer close(m.done)
	ticker := time.NewTicker(m.cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case pos, ok := <-watch:
			if !ok {
				// A nil channel never fires; the ticker carries on alone.
				m.logger.Warn("continuous watch ended, periodic checks continue")
				watch = nil
				continue
			}
			m.sample(ctx, pos)
		case <-ticker.C:
			// Backup channel in case the continuous watch stalls or the
			// platform throttles it.
			pos, err := m.source.Current(ctx, m.cfg.BackupMaxAge)
			if err != nil {
				m.logger.Warn("periodic position fix failed", slog.Any("error", err))
				continue
			}
			m.sample(ctx, pos)
		}
	}
}

func (m *Monitor) sample(ctx context.Context, pos Position) {
	if ctx.Err() != nil {
		return
	}
	result, err := m.checker.Check(ctx, pos)
	if err != nil {
		// Assume safe: a failed check must not itself sign the guard out.
		m.logger.Warn("geofence check failed", slog.Any("error", err))
		return
	}

	if result.Message == MsgNoBaseline && !m.baselined {
		if err := m.checker.SetBaseline(ctx, pos); err != nil {
			m.logger.Warn("set baseline failed", slog.Any("error", err))
			return
		}
		m.baselined = true
		return
	}

	if !result.WithinRange {
		// The authoritative state change already happened server-side.
		m.notify("You have moved outside the permitted area and were signed out.")
		m.signOut()
		m.mu.Lock()
		cancel := m.cancel
		m.mu.Unlock()
		if cancel != nil {
			cancel()
		}
	}
}

func (m *Monitor) signOutAfterGrace(ctx context.Context) {
	defer close(m.done)
	select {
	case <-ctx.Done():
	case <-time.After(m.cfg.PermissionGrace):
		m.signOut()
	}
}

func (m *Monitor) notify(message string) {
	if m.hooks.Notify != nil {
		m.hooks.Notify(message)
	}
}

func (m *Monitor) signOut() {
	if m.hooks.SignOut != nil {
		m.hooks.SignOut()
	}
}
