// Package monitor ends a session once its lifetime has passed, even while the user is idle.
package monitor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jrsteele09/go-campus-session/navigation"
	"github.com/jrsteele09/go-campus-session/roles"
	"github.com/jrsteele09/go-campus-session/sessions"
	"github.com/rs/zerolog/log"
)

const DefaultInterval = 60 * time.Second

// Notifier tells the user their session ended.
type Notifier interface {
	SessionExpired(role roles.Role)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(role roles.Role)

func (f NotifierFunc) SessionExpired(role roles.Role) {
	f(role)
}

// Logouter ends a session: it tells the service, best effort, using the given session's
// token and then clears the store. A nil session only clears the store.
type Logouter interface {
	EndSession(ctx context.Context, session *sessions.Session)
}

// SessionState is the part of the session store the monitor polls.
type SessionState interface {
	Current() *sessions.Session
	IsValid() bool
}

// Subscriber publishes session lifecycle events.
type Subscriber interface {
	Current() *sessions.Session
	Subscribe(fn sessions.Listener)
}

type Monitor struct {
	state    SessionState
	logout   Logouter
	nav      navigation.Navigator
	notifier Notifier
	interval time.Duration

	mu         sync.Mutex
	cancel     context.CancelFunc
	generation uint64

	expiring     atomic.Bool
	handledMu    sync.Mutex
	handledToken string
	handled      bool
}

// Option defines a function type to modify the Monitor instance.
type Option func(*Monitor)

func WithInterval(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.interval = d
		}
	}
}

func WithNotifier(n Notifier) Option {
	return func(m *Monitor) {
		m.notifier = n
	}
}

func New(state SessionState, logout Logouter, nav navigation.Navigator, options ...Option) (*Monitor, error) {
	if state == nil {
		return nil, errors.New("[monitor.New] session state is required")
	}
	if logout == nil {
		return nil, errors.New("[monitor.New] logouter is required")
	}
	if nav == nil {
		return nil, errors.New("[monitor.New] navigator is required")
	}

	m := &Monitor{
		state:    state,
		logout:   logout,
		nav:      nav,
		interval: DefaultInterval,
	}
	for _, opt := range options {
		opt(m)
	}
	return m, nil
}

// Start runs the periodic check until Stop is called or ctx is done. Starting a running
// monitor does nothing.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancel != nil {
		return
	}
	loopCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.generation++
	gen := m.generation

	log.Debug().Dur("interval", m.interval).Msg("Session monitor started")
	go m.loop(loopCtx, gen)
}

// Stop cancels the periodic check. It does not wait for the loop to exit, so it is safe
// to call from a session listener running inside Check.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancel == nil {
		return
	}
	m.cancel()
	m.cancel = nil
	log.Debug().Msg("Session monitor stopped")
}

func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancel != nil
}

func (m *Monitor) loop(ctx context.Context, gen uint64) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	defer m.finished(gen)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}

// finished clears the running state when the loop exits on its own (parent ctx done).
func (m *Monitor) finished(gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.generation == gen && m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

// Check performs one validity poll. It reports whether the session had expired.
func (m *Monitor) Check(ctx context.Context) bool {
	before := m.state.Current()
	if m.state.IsValid() || before == nil {
		return false
	}
	m.expire(ctx, before, navigation.LoginPathFor(before.Role))
	return true
}

// Expire forces a logout of the current session and returns to the entry screen. It is the
// transport's handler for responses reporting an expired token.
func (m *Monitor) Expire(ctx context.Context) {
	m.expire(ctx, m.state.Current(), navigation.RouteEntry)
}

// expire runs the forced logout at most once per session token.
func (m *Monitor) expire(ctx context.Context, session *sessions.Session, target string) {
	// Logout may itself be answered with an expired-token response.
	if !m.expiring.CompareAndSwap(false, true) {
		return
	}
	defer m.expiring.Store(false)

	if session != nil && !m.claim(session.Token) {
		return
	}

	var role roles.Role
	if session != nil {
		role = session.Role
	}
	log.Info().Str("role", role.String()).Str("target", target).Msg("Session expired, forcing logout")

	m.logout.EndSession(context.WithoutCancel(ctx), session)

	if session != nil && m.notifier != nil {
		m.notifier.SessionExpired(role)
	}

	m.nav.Navigate(target, navigation.Reload)
}

// claim reports whether the expiry of token has not been handled yet, and marks it handled.
func (m *Monitor) claim(token string) bool {
	m.handledMu.Lock()
	defer m.handledMu.Unlock()

	if m.handled && m.handledToken == token {
		return false
	}
	m.handled = true
	m.handledToken = token
	return true
}

// Bind keeps the monitor running exactly while a session exists and forces the logout for
// an expiry observed by any reader of the store. Cancelling ctx stops it.
func (m *Monitor) Bind(ctx context.Context, sub Subscriber) {
	sub.Subscribe(func(event sessions.Event, session sessions.Session) {
		switch event {
		case sessions.Opened:
			m.Start(ctx)
		case sessions.Closed:
			m.Stop()
		case sessions.Expired:
			// Any reader of IsValid may observe the expiry before the next tick.
			m.Stop()
			m.expire(ctx, &session, navigation.LoginPathFor(session.Role))
		}
	})
	if sub.Current() != nil {
		m.Start(ctx)
	}
	go func() {
		<-ctx.Done()
		m.Stop()
	}()
}
