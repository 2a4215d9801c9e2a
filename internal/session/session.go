// Package session holds the client's view of who is logged in and which
// events they are registered for. The backend owns the truth (an HTTP-only
// cookie plus its registration records); the Manager mirrors it, applies
// logins optimistically and reconciles in the background.
package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/fragmede/campusevents/internal/api"
)

var (
	ErrInvalidIdentity = errors.New("session: identity is required")
	ErrInvalidRole     = errors.New("session: role must be student or club")
	ErrDisposed        = errors.New("session: manager disposed")

	errNotRecognized = errors.New("session cookie not recognized yet")
)

// Backend is what the Manager needs from the events API.
type Backend interface {
	CheckSession(ctx context.Context) (*api.SessionCheck, error)
	Logout(ctx context.Context) error
	MyRegistrations(ctx context.Context) ([]api.Registration, error)
}

// Options tunes the Manager. Zero fields take the DefaultOptions value.
type Options struct {
	// SettleDelay is how long Login waits before the first confirmation
	// check, giving the backend time to start honoring the new cookie.
	SettleDelay     time.Duration
	InitTimeout     time.Duration
	RequestTimeout  time.Duration
	ConfirmAttempts int
	MaxBackoff      time.Duration

	Logger *slog.Logger

	// OnChange receives a snapshot after every change. It is called
	// without the Manager's lock held, possibly from a background
	// goroutine.
	OnChange func(Snapshot)
}

// DefaultOptions returns the stock timings.
func DefaultOptions() Options {
	return Options{
		SettleDelay:     500 * time.Millisecond,
		InitTimeout:     10 * time.Second,
		RequestTimeout:  10 * time.Second,
		ConfirmAttempts: 4,
		MaxBackoff:      4 * time.Second,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.SettleDelay <= 0 {
		o.SettleDelay = d.SettleDelay
	}
	if o.InitTimeout <= 0 {
		o.InitTimeout = d.InitTimeout
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = d.RequestTimeout
	}
	if o.ConfirmAttempts <= 0 {
		o.ConfirmAttempts = d.ConfirmAttempts
	}
	if o.MaxBackoff <= 0 {
		o.MaxBackoff = d.MaxBackoff
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o
}

// Manager owns the session. All methods are safe for concurrent use.
type Manager struct {
	backend Backend
	opts    Options
	log     *slog.Logger

	// base is cancelled by Dispose and parents every background task.
	base       context.Context
	cancelBase context.CancelFunc
	wg         sync.WaitGroup

	mu            sync.Mutex
	identity      *api.User
	role          api.Role
	regs          *registrationSet
	state         State
	initializing  bool
	initStarted   bool
	disposed      bool
	version       uint64
	gen           uint64
	cancelConfirm context.CancelFunc
}

// New creates a Manager. The session starts empty with initializing set;
// call Initialize to resolve it.
func New(backend Backend, opts Options) *Manager {
	opts = opts.withDefaults()
	base, cancel := context.WithCancel(context.Background())
	return &Manager{
		backend:      backend,
		opts:         opts,
		log:          opts.Logger.With("component", "session"),
		base:         base,
		cancelBase:   cancel,
		regs:         newRegistrationSet(),
		state:        StateUnresolved,
		initializing: true,
	}
}

// Initialize asks the backend whether the stored cookie identifies someone
// and, if so, loads their registrations. It blocks until resolution is
// complete or InitTimeout elapses. Only the first call does anything.
// Initializing is false once it returns, whatever the outcome.
func (m *Manager) Initialize(ctx context.Context) {
	m.mu.Lock()
	if m.initStarted {
		m.mu.Unlock()
		return
	}
	m.initStarted = true
	if m.disposed {
		m.mu.Unlock()
		m.finishInit()
		return
	}
	if m.state == StateUnresolved {
		m.state = StateResolving
	}
	gen := m.gen
	m.wg.Add(1)
	snap := m.changedLocked()
	m.mu.Unlock()
	m.notify(snap)

	defer m.wg.Done()
	defer m.finishInit()

	ctx, cancel := context.WithTimeout(ctx, m.opts.InitTimeout)
	defer cancel()
	stop := context.AfterFunc(m.base, cancel)
	defer stop()

	check, err := m.backend.CheckSession(ctx)
	switch {
	case err != nil:
		m.log.Debug("no session on startup", "error", err)
		m.resolveAnonymous(gen)
		return
	case check == nil || check.User == nil:
		m.log.Debug("no session on startup")
		m.resolveAnonymous(gen)
		return
	case !check.Role.Valid():
		m.log.Warn("backend returned unknown role", "role", check.Role)
		m.resolveAnonymous(gen)
		return
	}

	m.mu.Lock()
	if gen != m.gen {
		m.mu.Unlock()
		return
	}
	m.identity = check.User
	m.role = check.Role
	m.state = StateAuthenticated
	snap = m.changedLocked()
	m.mu.Unlock()
	m.notify(snap)

	m.log.Info("session restored", "user", check.User.DisplayName(), "role", check.Role)
	m.loadRegistrations(ctx, gen)
}

func (m *Manager) resolveAnonymous(gen uint64) {
	m.mu.Lock()
	if gen != m.gen || m.identity != nil {
		m.mu.Unlock()
		return
	}
	m.regs.reset()
	m.state = StateAnonymous
	snap := m.changedLocked()
	m.mu.Unlock()
	m.notify(snap)
}

func (m *Manager) finishInit() {
	m.mu.Lock()
	if !m.initializing {
		m.mu.Unlock()
		return
	}
	m.initializing = false
	if m.state == StateResolving || m.state == StateUnresolved {
		m.state = StateAnonymous
	}
	snap := m.changedLocked()
	m.mu.Unlock()
	m.notify(snap)
}

// Login records identity and role right away, then confirms in the
// background that the backend recognizes the new cookie before loading
// registrations. A failed confirmation is logged and does not undo the
// login.
func (m *Manager) Login(identity *api.User, role api.Role) error {
	if identity == nil || identity.ID == "" {
		return ErrInvalidIdentity
	}
	if !role.Valid() {
		return ErrInvalidRole
	}

	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		return ErrDisposed
	}
	m.gen++
	gen := m.gen
	if m.cancelConfirm != nil {
		m.cancelConfirm()
	}
	ctx, cancel := context.WithCancel(m.base)
	m.cancelConfirm = cancel
	m.identity = identity
	m.role = role
	m.regs.reset()
	m.state = StateAuthenticated
	m.wg.Add(1)
	snap := m.changedLocked()
	m.mu.Unlock()
	m.notify(snap)

	m.log.Info("logged in", "user", identity.DisplayName(), "role", role)
	go m.confirm(ctx, gen, identity.ID)
	return nil
}

// confirm waits out the settle delay, then polls the session check with
// exponential backoff until the backend answers with a user. Registrations
// are only loaded when that user is the one who logged in.
func (m *Manager) confirm(ctx context.Context, gen uint64, userID string) {
	defer m.wg.Done()

	t := time.NewTimer(m.opts.SettleDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return
	case <-t.C:
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = min(m.opts.SettleDelay, m.opts.MaxBackoff)
	b.MaxInterval = m.opts.MaxBackoff

	user, err := backoff.Retry(ctx, func() (*api.User, error) {
		rctx, cancel := context.WithTimeout(ctx, m.opts.RequestTimeout)
		defer cancel()
		check, err := m.backend.CheckSession(rctx)
		if err != nil {
			return nil, err
		}
		if check == nil || check.User == nil {
			return nil, errNotRecognized
		}
		return check.User, nil
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(m.opts.ConfirmAttempts)),
		backoff.WithNotify(func(err error, next time.Duration) {
			m.log.Debug("waiting for session cookie", "error", err, "retry_in", next)
		}),
	)
	if ctx.Err() != nil || !m.current(gen) {
		return
	}
	if err != nil {
		m.log.Warn("login not confirmed by backend", "attempts", m.opts.ConfirmAttempts, "error", err)
		return
	}
	if user.ID != userID {
		m.log.Warn("backend confirmed a different user", "expected", userID, "got", user.ID)
		return
	}
	m.loadRegistrations(ctx, gen)
}

// Logout clears the local session, then tells the backend. Backend
// failures are logged and otherwise ignored.
func (m *Manager) Logout(ctx context.Context) {
	m.ClearLocal()
	m.EndRemote(ctx)
}

// ClearLocal forgets the identity, role and registrations and cancels any
// pending confirmation. The change is visible to Snapshot before it
// returns. The backend is not contacted.
func (m *Manager) ClearLocal() {
	m.mu.Lock()
	m.gen++
	if m.cancelConfirm != nil {
		m.cancelConfirm()
		m.cancelConfirm = nil
	}
	m.identity = nil
	m.role = ""
	m.regs.reset()
	m.state = StateAnonymous
	snap := m.changedLocked()
	m.mu.Unlock()
	m.notify(snap)
}

// EndRemote asks the backend to end its session. Failures are logged and
// otherwise ignored.
func (m *Manager) EndRemote(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, m.opts.RequestTimeout)
	defer cancel()
	if err := m.backend.Logout(ctx); err != nil {
		m.log.Warn("backend logout failed", "error", err)
		return
	}
	m.log.Info("logged out")
}

// RegisterEventLocally adds eventID to the registration set after the
// caller has registered with the backend. Adding an ID twice is a no-op.
func (m *Manager) RegisterEventLocally(eventID string) {
	if eventID == "" {
		return
	}
	m.mu.Lock()
	if !m.regs.add(eventID) {
		m.mu.Unlock()
		return
	}
	snap := m.changedLocked()
	m.mu.Unlock()
	m.notify(snap)
}

// ReloadRegistrations replaces the registration set with the backend's
// records. It does nothing when nobody is logged in.
func (m *Manager) ReloadRegistrations(ctx context.Context) error {
	m.mu.Lock()
	if m.identity == nil {
		m.mu.Unlock()
		return nil
	}
	gen := m.gen
	m.mu.Unlock()
	return m.loadRegistrations(ctx, gen)
}

// ApplyRegistrations replaces the registration set with records the
// caller already fetched for userID. It reports false and changes nothing
// when userID is no longer the logged-in user.
func (m *Manager) ApplyRegistrations(userID string, regs []api.Registration) bool {
	ids := api.EventIDs(regs)

	m.mu.Lock()
	if m.identity == nil || m.identity.ID != userID {
		m.mu.Unlock()
		return false
	}
	m.regs.replace(ids)
	snap := m.changedLocked()
	m.mu.Unlock()
	m.notify(snap)
	return true
}

// loadRegistrations fetches the user's registrations and replaces the set
// with their event IDs. Records whose event is gone are skipped. On any
// error the set is left as it was.
func (m *Manager) loadRegistrations(ctx context.Context, gen uint64) error {
	ctx, cancel := context.WithTimeout(ctx, m.opts.RequestTimeout)
	defer cancel()

	regs, err := m.backend.MyRegistrations(ctx)
	if err != nil {
		if api.IsUnauthorized(err) {
			m.log.Debug("registrations not available yet", "error", err)
		} else {
			m.log.Warn("loading registrations", "error", err)
		}
		return err
	}
	ids := api.EventIDs(regs)

	m.mu.Lock()
	if gen != m.gen || m.identity == nil {
		m.mu.Unlock()
		return nil
	}
	m.regs.replace(ids)
	snap := m.changedLocked()
	m.mu.Unlock()
	m.notify(snap)

	m.log.Debug("registrations loaded", "count", len(ids), "skipped", len(regs)-len(ids))
	return nil
}

// Dispose cancels pending background work, waits for it to stop and
// rejects any later Login.
func (m *Manager) Dispose() {
	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		return
	}
	m.disposed = true
	m.gen++
	if m.cancelConfirm != nil {
		m.cancelConfirm()
		m.cancelConfirm = nil
	}
	m.mu.Unlock()

	m.cancelBase()
	m.wg.Wait()
}

// Snapshot returns a copy of the current session.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Manager) IsRegistered(eventID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.regs.has(eventID)
}

// RegisteredEvents returns the registration set in insertion order.
func (m *Manager) RegisteredEvents() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.regs.list()
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) current(gen uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return gen == m.gen
}

func (m *Manager) snapshotLocked() Snapshot {
	var ident *api.User
	if m.identity != nil {
		u := *m.identity
		ident = &u
	}
	return Snapshot{
		Identity:      ident,
		Role:          m.role,
		Registrations: m.regs.list(),
		Initializing:  m.initializing,
		State:         m.state,
		Version:       m.version,
	}
}

func (m *Manager) changedLocked() Snapshot {
	m.version++
	return m.snapshotLocked()
}

func (m *Manager) notify(s Snapshot) {
	if m.opts.OnChange != nil {
		m.opts.OnChange(s)
	}
}
