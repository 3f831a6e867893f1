package sessions

import (
	"sync"
	"time"

	apperrors "github.com/jrsteele09/go-campus-session/internal/errors"
	"github.com/rs/zerolog/log"
)

// ErrIncompleteSession is returned by Open for a session missing token, role or expiry.
var ErrIncompleteSession = apperrors.ErrIncompleteSession

// Event identifies a Store transition.
type Event int

const (
	Opened Event = iota + 1
	// Closed follows an explicit Close.
	Closed
	// Expired follows IsValid observing the session past its expiry and closing it.
	Expired
)

func (e Event) String() string {
	switch e {
	case Opened:
		return "opened"
	case Closed:
		return "closed"
	case Expired:
		return "expired"
	}
	return "unknown"
}

// Listener is called after a transition, outside the store lock.
type Listener func(event Event, session Session)

// Persister mirrors the session to durable storage.
type Persister interface {
	Save(session Session) error
	Load() (*Session, error)
	Clear() error
}

// Store is the single owner of the current session. Every mutation goes through
// Open or Close, which swap the whole session under one lock.
type Store struct {
	mu        sync.Mutex
	current   *Session
	persister Persister
	nowTime   func() time.Time

	listenersMu sync.RWMutex
	listeners   []Listener
}

// StoreOption defines a function type to modify the Store instance.
type StoreOption func(*Store)

// WithPersister enables write-through to p on every Open and Close.
func WithPersister(p Persister) StoreOption {
	return func(s *Store) {
		s.persister = p
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) StoreOption {
	return func(s *Store) {
		s.nowTime = nowFunc
	}
}

func NewStore(options ...StoreOption) *Store {
	s := &Store{nowTime: time.Now}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Current returns a copy of the session, or nil when nobody is logged in.
func (s *Store) Current() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil
	}
	return s.current.clone()
}

// Open replaces any existing session with session.
func (s *Store) Open(session Session) error {
	if !session.Complete() {
		return apperrors.Wrapf(ErrIncompleteSession, "[Store.Open] role %q", session.Role)
	}

	s.mu.Lock()
	s.current = session.clone()
	if s.persister != nil {
		if err := s.persister.Save(session); err != nil {
			log.Err(err).Str("role", session.Role.String()).Msg("Failed to persist session")
		}
	}
	s.mu.Unlock()

	log.Info().Str("role", session.Role.String()).Int64("expires_at", session.ExpiresAt).Msg("Session opened")
	s.notify(Opened, session)
	return nil
}

// Close clears the session. Persisted keys are always removed, even with no live session.
func (s *Store) Close() {
	s.mu.Lock()
	prev := s.closeLocked()
	s.mu.Unlock()

	if prev != nil {
		log.Info().Str("role", prev.Role.String()).Msg("Session closed")
		s.notify(Closed, *prev)
	}
}

// IsValid reports whether a session exists and has not expired. An expired session is
// closed as soon as it is observed.
func (s *Store) IsValid() bool {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return false
	}
	if !s.current.ExpiredAt(s.nowTime()) {
		s.mu.Unlock()
		return true
	}
	prev := s.closeLocked()
	s.mu.Unlock()

	log.Info().Str("role", prev.Role.String()).Msg("Session expired")
	s.notify(Expired, *prev)
	return false
}

// Restore loads the persisted session at start-up. Expired or partial records are cleared.
func (s *Store) Restore() *Session {
	if s.persister == nil {
		return nil
	}

	loaded, err := s.persister.Load()
	if err != nil {
		log.Err(err).Msg("Failed to load persisted session")
		return nil
	}
	if loaded == nil {
		return nil
	}
	if !loaded.Complete() || loaded.ExpiredAt(s.nowTime()) {
		log.Info().Str("role", loaded.Role.String()).Msg("Discarding expired persisted session")
		if err := s.persister.Clear(); err != nil {
			log.Err(err).Msg("Failed to clear persisted session")
		}
		return nil
	}

	s.mu.Lock()
	s.current = loaded.clone()
	s.mu.Unlock()

	log.Info().Str("role", loaded.Role.String()).Msg("Session restored")
	s.notify(Opened, *loaded)
	return loaded.clone()
}

// Subscribe registers fn for every subsequent transition.
func (s *Store) Subscribe(fn Listener) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// closeLocked clears memory and storage. Caller holds mu.
func (s *Store) closeLocked() *Session {
	prev := s.current
	s.current = nil
	if s.persister != nil {
		if err := s.persister.Clear(); err != nil {
			log.Err(err).Msg("Failed to clear persisted session")
		}
	}
	return prev
}

func (s *Store) notify(event Event, session Session) {
	s.listenersMu.RLock()
	listeners := make([]Listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.listenersMu.RUnlock()

	for _, fn := range listeners {
		fn(event, *session.clone())
	}
}
