package sessions_test

import (
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/go-campus-session/roles"
	"github.com/jrsteele09/go-campus-session/sessions"
	"github.com/jrsteele09/go-campus-session/storage/memory"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1_700_000_000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestStoreLifecycle(t *testing.T) {
	clock := newFakeClock()
	store := sessions.NewStore(sessions.WithNowTime(clock.Now))

	require.Nil(t, store.Current())
	require.False(t, store.IsValid())

	s := sessions.New("tok.en.sig", "", roles.Student, clock.Now(), 10*time.Second, nil)
	require.Equal(t, s.IssuedAt+10, s.ExpiresAt)
	require.Equal(t, sessions.DefaultTokenType, s.TokenType)

	require.NoError(t, store.Open(s))
	require.True(t, store.IsValid())
	require.Equal(t, &s, store.Current())

	clock.Advance(9 * time.Second)
	require.True(t, store.IsValid())

	clock.Advance(time.Second)
	require.False(t, store.IsValid())
	require.Nil(t, store.Current())
}

func TestStoreOpen(t *testing.T) {
	t.Run("rejects incomplete session", func(t *testing.T) {
		store := sessions.NewStore()
		err := store.Open(sessions.Session{Token: "t", Role: roles.Admin})
		require.ErrorIs(t, err, sessions.ErrIncompleteSession)
		require.Nil(t, store.Current())

		err = store.Open(sessions.Session{Token: "t", ExpiresAt: 10})
		require.ErrorIs(t, err, sessions.ErrIncompleteSession)
	})

	t.Run("new login supersedes previous", func(t *testing.T) {
		store := sessions.NewStore()
		require.NoError(t, store.Open(sessions.New("a.b.c", "", roles.Student, time.Now(), time.Hour, nil)))
		require.NoError(t, store.Open(sessions.New("d.e.f", "", roles.Teacher, time.Now(), time.Hour, nil)))

		cur := store.Current()
		require.Equal(t, roles.Teacher, cur.Role)
		require.Equal(t, "d.e.f", cur.Token)
	})

	t.Run("current returns a copy", func(t *testing.T) {
		store := sessions.NewStore()
		require.NoError(t, store.Open(testSession(roles.Admin)))

		cur := store.Current()
		cur.Role = roles.Student
		cur.User.Name = "changed"

		again := store.Current()
		require.Equal(t, roles.Admin, again.Role)
		require.Equal(t, "Ada Lovelace", again.User.Name)
	})
}

func TestStoreWriteThrough(t *testing.T) {
	kv := memory.New()
	clock := newFakeClock()
	store := sessions.NewStore(
		sessions.WithPersister(sessions.NewBridge(kv)),
		sessions.WithNowTime(clock.Now),
	)

	s := sessions.New("tok.en.sig", "Bearer", roles.Admin, clock.Now(), time.Minute, nil)
	require.NoError(t, store.Open(s))

	token, err := kv.Get(sessions.KeyToken)
	require.NoError(t, err)
	require.Equal(t, "tok.en.sig", token)

	store.Close()
	require.Nil(t, store.Current())
	require.Empty(t, kv.Keys())

	t.Run("expiry observed clears storage", func(t *testing.T) {
		require.NoError(t, store.Open(s))
		clock.Advance(2 * time.Minute)
		require.False(t, store.IsValid())
		require.Empty(t, kv.Keys())
	})
}

func TestStoreRestore(t *testing.T) {
	clock := newFakeClock()

	t.Run("restores live session", func(t *testing.T) {
		kv := memory.New()
		s := sessions.New("tok.en.sig", "Bearer", roles.Teacher, clock.Now(), time.Hour, nil)
		require.NoError(t, sessions.NewBridge(kv).Save(s))

		store := sessions.NewStore(sessions.WithPersister(sessions.NewBridge(kv)), sessions.WithNowTime(clock.Now))
		restored := store.Restore()
		require.Equal(t, &s, restored)
		require.True(t, store.IsValid())
	})

	t.Run("expired session is absent", func(t *testing.T) {
		kv := memory.New()
		s := sessions.New("tok.en.sig", "Bearer", roles.Teacher, clock.Now().Add(-2*time.Hour), time.Hour, nil)
		require.NoError(t, sessions.NewBridge(kv).Save(s))

		store := sessions.NewStore(sessions.WithPersister(sessions.NewBridge(kv)), sessions.WithNowTime(clock.Now))
		require.Nil(t, store.Restore())
		require.Nil(t, store.Current())
		require.Empty(t, kv.Keys())
	})

	t.Run("nothing persisted", func(t *testing.T) {
		store := sessions.NewStore(sessions.WithPersister(sessions.NewBridge(memory.New())))
		require.Nil(t, store.Restore())
	})

	t.Run("no persister", func(t *testing.T) {
		require.Nil(t, sessions.NewStore().Restore())
	})
}

func TestStoreSubscribe(t *testing.T) {
	clock := newFakeClock()
	store := sessions.NewStore(sessions.WithNowTime(clock.Now))

	var events []sessions.Event
	store.Subscribe(func(event sessions.Event, s sessions.Session) {
		require.Equal(t, roles.Student, s.Role)
		events = append(events, event)
	})

	require.NoError(t, store.Open(sessions.New("a.b.c", "", roles.Student, clock.Now(), time.Second, nil)))
	clock.Advance(time.Second)
	require.False(t, store.IsValid())
	store.Close()

	require.NoError(t, store.Open(sessions.New("d.e.f", "", roles.Student, clock.Now(), time.Minute, nil)))
	store.Close()

	require.Equal(t, []sessions.Event{sessions.Opened, sessions.Expired, sessions.Opened, sessions.Closed}, events)
}

func TestSessionRemaining(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	s := sessions.New("a.b.c", "", roles.Admin, now, time.Minute, nil)
	require.Equal(t, 30*time.Second, s.Remaining(now.Add(30*time.Second)))
	require.Zero(t, s.Remaining(now.Add(2*time.Minute)))
}
