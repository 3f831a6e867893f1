// Package transport talks JSON to the remote service and attaches the session to every call.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/go-campus-session/internal/errors"
	"github.com/jrsteele09/go-campus-session/sessions"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const (
	HeaderTenantID  = "X-Tenant-ID"
	HeaderRequestID = "X-Request-ID"

	defaultTimeout = 15 * time.Second
	maxBodyBytes   = 1 << 20
)

var (
	// ErrNetwork wraps every failure to reach the service.
	ErrNetwork = apperrors.ErrNetwork
	// ErrSessionExpired is matched by a StatusError for a 401 reporting token expiry.
	ErrSessionExpired = apperrors.ErrSessionExpired
)

// StatusError is a response the service answered with a non-success status.
type StatusError struct {
	StatusCode int
	Message    string
	Expired    bool // 401 reporting an expired token
}

func (e *StatusError) Unwrap() error {
	if e.Expired {
		return ErrSessionExpired
	}
	return nil
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("service responded %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("service responded %d: %s", e.StatusCode, e.Message)
}

// SessionReader exposes the current session, if any.
type SessionReader interface {
	Current() *sessions.Session
}

type sessionKey struct{}

// WithSession makes requests under ctx authenticate as session instead of the current
// one. Used to end a session the store has already closed.
func WithSession(ctx context.Context, session sessions.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, session)
}

func sessionFrom(ctx context.Context, reader SessionReader) *sessions.Session {
	if s, ok := ctx.Value(sessionKey{}).(sessions.Session); ok {
		return &s
	}
	return reader.Current()
}

// Client is a JSON client for the remote authentication service.
type Client struct {
	baseURL      *url.URL
	httpClient   *http.Client
	sessions     SessionReader
	tenantID     string
	onExpired    func(ctx context.Context)
	expiryHinted func(message string) bool
}

// ClientOption defines a function type to modify the Client instance.
type ClientOption func(*Client)

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithTenantID sends id in the tenant header on every request.
func WithTenantID(id string) ClientOption {
	return func(c *Client) {
		c.tenantID = id
	}
}

// WithUnauthorizedHandler sets the forced-logout path run when the service reports an
// expired token.
func WithUnauthorizedHandler(fn func(ctx context.Context)) ClientOption {
	return func(c *Client) {
		c.onExpired = fn
	}
}

// WithExpiryMatcher overrides how a 401 message is recognised as token expiry.
func WithExpiryMatcher(fn func(message string) bool) ClientOption {
	return func(c *Client) {
		c.expiryHinted = fn
	}
}

func New(baseURL string, sessionReader SessionReader, options ...ClientOption) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("[transport.New] invalid base URL %q", baseURL)
	}
	if sessionReader == nil {
		return nil, fmt.Errorf("[transport.New] session reader is required")
	}

	c := &Client{
		baseURL:      u,
		httpClient:   &http.Client{Timeout: defaultTimeout},
		sessions:     sessionReader,
		expiryHinted: IsExpiryMessage,
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// IsExpiryMessage reports whether an unauthorized message says the token expired.
func IsExpiryMessage(message string) bool {
	return strings.Contains(strings.ToLower(message), "expired")
}

// Post sends body as JSON to path and decodes the envelope's data into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) (*Envelope, error) {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Do performs one request. Non-success responses return the envelope and a *StatusError.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) (*Envelope, error) {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrNetwork, path, err)
	}

	env := &Envelope{}
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, env); err != nil {
			env = &Envelope{Message: strings.TrimSpace(string(raw))}
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return env, fmt.Errorf("[Client.Do] %s: decode envelope: %w", path, err)
			}
		}
	}

	expired := resp.StatusCode == http.StatusUnauthorized && c.expiryHinted(env.Message)
	if expired {
		log.Warn().Str("path", path).Str("message", env.Message).Msg("Service reported an expired token")
		if c.onExpired != nil {
			c.onExpired(ctx)
		}
	}

	if !env.Success(resp.StatusCode) {
		code := resp.StatusCode
		if code >= 200 && code < 300 && env.Status.Code != 0 {
			code = env.Status.Code
		}
		return env, &StatusError{StatusCode: code, Message: env.Message, Expired: expired}
	}

	if err := env.Decode(out); err != nil {
		return env, fmt.Errorf("[Client.Do] %s: decode data: %w", path, err)
	}
	return env, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("[Client.newRequest] encode body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	target := c.baseURL.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("[Client.newRequest] %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(HeaderRequestID, uuid.NewString())
	if c.tenantID != "" {
		req.Header.Set(HeaderTenantID, c.tenantID)
	}
	if s := sessionFrom(ctx, c.sessions); s != nil {
		tok := &oauth2.Token{AccessToken: s.Token, TokenType: s.TokenType}
		tok.SetAuthHeader(req)
	}
	return req, nil
}
