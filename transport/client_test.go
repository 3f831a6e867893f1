package transport_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/jrsteele09/go-campus-session/sessions"
	"github.com/jrsteele09/go-campus-session/transport"
	"github.com/stretchr/testify/require"
)

type staticSessions struct {
	session *sessions.Session
}

func (s staticSessions) Current() *sessions.Session {
	return s.session
}

func newServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func writeEnvelope(w http.ResponseWriter, code int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

type requestRecorder struct {
	mu     sync.Mutex
	header http.Header
	path   string
}

func (rr *requestRecorder) record(r *http.Request) {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	rr.header = r.Header.Clone()
	rr.path = r.URL.Path
}

func (rr *requestRecorder) last() (http.Header, string) {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	return rr.header, rr.path
}

func TestClientHeaders(t *testing.T) {
	rec := &requestRecorder{}
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		writeEnvelope(w, http.StatusOK, map[string]any{"status": 200, "data": map[string]any{"ok": true}})
	})

	t.Run("with session and tenant", func(t *testing.T) {
		reader := staticSessions{session: &sessions.Session{Token: "abc.def.ghi", TokenType: "bearer"}}
		c, err := transport.New(srv.URL+"/api/", reader, transport.WithTenantID("org-1"))
		require.NoError(t, err)

		var out struct {
			OK bool `json:"ok"`
		}
		_, err = c.Post(context.Background(), "/auth/ping", map[string]string{"a": "b"}, &out)
		require.NoError(t, err)
		require.True(t, out.OK)
		got, gotPath := rec.last()
		require.Equal(t, "/api/auth/ping", gotPath)
		require.Equal(t, "Bearer abc.def.ghi", got.Get("Authorization"))
		require.Equal(t, "org-1", got.Get(transport.HeaderTenantID))
		require.Equal(t, "application/json", got.Get("Content-Type"))
		require.NotEmpty(t, got.Get(transport.HeaderRequestID))
	})

	t.Run("without session", func(t *testing.T) {
		c, err := transport.New(srv.URL, staticSessions{})
		require.NoError(t, err)

		_, err = c.Do(context.Background(), http.MethodGet, "/ping", nil, nil)
		require.NoError(t, err)
		got, _ := rec.last()
		require.Empty(t, got.Get("Authorization"))
		require.Empty(t, got.Get(transport.HeaderTenantID))
	})

	t.Run("session from context overrides reader", func(t *testing.T) {
		c, err := transport.New(srv.URL, staticSessions{})
		require.NoError(t, err)

		ctx := transport.WithSession(context.Background(), sessions.Session{Token: "old.tok.en", TokenType: "Bearer"})
		_, err = c.Post(ctx, "/auth/logout", nil, nil)
		require.NoError(t, err)
		got, _ := rec.last()
		require.Equal(t, "Bearer old.tok.en", got.Get("Authorization"))
	})
}

func TestClientStatus(t *testing.T) {
	t.Run("http error", func(t *testing.T) {
		srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(w, http.StatusBadRequest, map[string]any{"status": 400, "message": "Invalid credentials"})
		})
		c, err := transport.New(srv.URL, staticSessions{})
		require.NoError(t, err)

		env, err := c.Post(context.Background(), "/login", nil, nil)
		var statusErr *transport.StatusError
		require.ErrorAs(t, err, &statusErr)
		require.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
		require.Equal(t, "Invalid credentials", statusErr.Message)
		require.Equal(t, "Invalid credentials", env.Message)
	})

	t.Run("envelope failure inside http 200", func(t *testing.T) {
		srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(w, http.StatusOK, map[string]any{"status": "error", "message": "Account locked"})
		})
		c, err := transport.New(srv.URL, staticSessions{})
		require.NoError(t, err)

		_, err = c.Post(context.Background(), "/login", nil, nil)
		var statusErr *transport.StatusError
		require.ErrorAs(t, err, &statusErr)
		require.Equal(t, "Account locked", statusErr.Message)
	})

	t.Run("string success status", func(t *testing.T) {
		srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(w, http.StatusOK, map[string]any{"status": "success", "data": nil})
		})
		c, err := transport.New(srv.URL, staticSessions{})
		require.NoError(t, err)

		_, err = c.Post(context.Background(), "/x", nil, nil)
		require.NoError(t, err)
	})

	t.Run("plain text error body", func(t *testing.T) {
		srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "gateway down", http.StatusBadGateway)
		})
		c, err := transport.New(srv.URL, staticSessions{})
		require.NoError(t, err)

		_, err = c.Post(context.Background(), "/x", nil, nil)
		var statusErr *transport.StatusError
		require.ErrorAs(t, err, &statusErr)
		require.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
		require.Equal(t, "gateway down", statusErr.Message)
	})

	t.Run("network failure", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		c, err := transport.New(url, staticSessions{})
		require.NoError(t, err)
		_, err = c.Post(context.Background(), "/x", nil, nil)
		require.ErrorIs(t, err, transport.ErrNetwork)
	})
}

func TestClientUnauthorized(t *testing.T) {
	var message atomic.Value
	message.Store("Token has expired")
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, map[string]any{"status": 401, "message": message.Load()})
	})

	calls := 0
	c, err := transport.New(srv.URL, staticSessions{}, transport.WithUnauthorizedHandler(func(ctx context.Context) {
		calls++
	}))
	require.NoError(t, err)

	_, err = c.Post(context.Background(), "/grades", nil, nil)
	require.ErrorIs(t, err, transport.ErrSessionExpired)
	require.Equal(t, 1, calls)

	message.Store("Bad credentials")
	_, err = c.Post(context.Background(), "/grades", nil, nil)
	require.Error(t, err)
	require.NotErrorIs(t, err, transport.ErrSessionExpired)
	require.Equal(t, 1, calls)
}

func TestNew(t *testing.T) {
	_, err := transport.New("not a url", staticSessions{})
	require.Error(t, err)

	_, err = transport.New("http://localhost", nil)
	require.Error(t, err)
}

func TestStatusUnmarshal(t *testing.T) {
	tests := []struct {
		raw string
		ok  bool
		set bool
	}{
		{`200`, true, true},
		{`201`, true, true},
		{`404`, false, true},
		{`"success"`, true, true},
		{`"OK"`, true, true},
		{`"200"`, true, true},
		{`"failed"`, false, true},
		{`null`, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var s transport.Status
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &s))
			require.Equal(t, tt.ok, s.OK())
			require.Equal(t, tt.set, s.IsSet())
		})
	}

	var s transport.Status
	require.Error(t, json.Unmarshal([]byte(`{"x":1}`), &s))
}
