package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jrsteele09/go-campus-session/claims"
	apperrors "github.com/jrsteele09/go-campus-session/internal/errors"
	"github.com/jrsteele09/go-campus-session/roles"
	"github.com/jrsteele09/go-campus-session/sessions"
	"github.com/jrsteele09/go-campus-session/transport"
	"github.com/jrsteele09/go-campus-session/users"
	"github.com/rs/zerolog/log"
)

const defaultSessionLifetime = time.Hour

// Credentials for a login. Students may use either their PAN number or email.
type Credentials struct {
	PanNumber string
	Email     string
	Password  string
}

type loginRequest struct {
	PanNumber string `json:"panNumber,omitempty"`
	Email     string `json:"email,omitempty"`
	Password  string `json:"password"`
}

// loginData is the data member of a successful login envelope.
type loginData struct {
	AccessToken string         `json:"accessToken"`
	TokenType   string         `json:"tokenType"`
	ExpiresIn   int64          `json:"expiresIn"` // seconds
	User        *users.Profile `json:"user,omitempty"`
}

// API is the transport used by the gateway.
type API interface {
	Post(ctx context.Context, path string, body, out any) (*transport.Envelope, error)
}

// SessionStore is the part of sessions.Store the gateway mutates.
type SessionStore interface {
	Current() *sessions.Session
	Open(session sessions.Session) error
	Close()
}

// Gateway performs login, registration and logout against the remote service.
type Gateway struct {
	api             API
	store           SessionStore
	endpoints       Endpoints
	defaultLifetime time.Duration
	nowTime         func() time.Time
}

// GatewayOption defines a function type to modify the Gateway instance.
type GatewayOption func(*Gateway)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) GatewayOption {
	return func(g *Gateway) {
		g.nowTime = nowFunc
	}
}

// WithDefaultLifetime is used when the service omits expiresIn.
func WithDefaultLifetime(d time.Duration) GatewayOption {
	return func(g *Gateway) {
		if d > 0 {
			g.defaultLifetime = d
		}
	}
}

func WithEndpoints(e Endpoints) GatewayOption {
	return func(g *Gateway) {
		g.endpoints = e
	}
}

func NewGateway(api API, store SessionStore, options ...GatewayOption) (*Gateway, error) {
	if api == nil {
		return nil, errors.New("[NewGateway] api is required")
	}
	if store == nil {
		return nil, errors.New("[NewGateway] session store is required")
	}

	g := &Gateway{
		api:             api,
		store:           store,
		endpoints:       DefaultEndpoints(),
		defaultLifetime: defaultSessionLifetime,
		nowTime:         time.Now,
	}
	for _, opt := range options {
		opt(g)
	}
	return g, nil
}

// LoginAs authenticates as role. The session is opened only when the returned token
// carries the role's claim; any failure leaves the current session untouched.
func (g *Gateway) LoginAs(ctx context.Context, role roles.Role, creds Credentials) (sessions.Session, error) {
	if !role.Valid() {
		return sessions.Session{}, apperrors.Wrapf(apperrors.ErrUnknownRole, "[Gateway.LoginAs] %q", role)
	}

	req := loginRequest{Email: strings.TrimSpace(creds.Email), Password: creds.Password}
	if role.Class() == roles.ClassStudent {
		req.PanNumber = strings.TrimSpace(creds.PanNumber)
	}

	var data loginData
	if _, err := g.api.Post(ctx, g.endpoints.login(role), req, &data); err != nil {
		failure := classify(err)
		log.Err(err).Str("role", role.String()).Str("reason", string(failure.Reason)).Msg("Login failed")
		return sessions.Session{}, failure
	}

	tokenClaims, err := claims.Decode(data.AccessToken)
	if err != nil || !claims.HasRole(tokenClaims, role.Claim()) {
		log.Warn().Str("role", role.String()).Strs("token_roles", tokenClaims.Roles()).Msg("Login token does not carry the expected role")
		return sessions.Session{}, &AuthFailure{
			Reason:  RoleMismatch,
			Message: fmt.Sprintf("This account cannot sign in as %s.", role),
			Err:     err,
		}
	}

	lifetime := time.Duration(data.ExpiresIn) * time.Second
	if lifetime <= 0 {
		lifetime = g.defaultLifetime
	}

	session := sessions.New(data.AccessToken, data.TokenType, role, g.nowTime(), lifetime, data.User)
	if err := g.store.Open(session); err != nil {
		return sessions.Session{}, fmt.Errorf("[Gateway.LoginAs] %w", err)
	}
	return session, nil
}

// Register submits a registration form for role. It never opens a session.
func (g *Gateway) Register(ctx context.Context, role roles.Role, form any) (*transport.Envelope, error) {
	if !role.Valid() {
		return nil, apperrors.Wrapf(apperrors.ErrUnknownRole, "[Gateway.Register] %q", role)
	}

	env, err := g.api.Post(ctx, g.endpoints.register(role), form, nil)
	if err != nil {
		failure := classify(err)
		log.Err(err).Str("role", role.String()).Msg("Registration failed")
		return env, failure
	}
	return env, nil
}

// Logout tells the service, best effort, and always clears the local session.
func (g *Gateway) Logout(ctx context.Context) {
	g.EndSession(ctx, g.store.Current())
}

// EndSession is Logout for a session the caller captured, which the store may already have
// closed on expiry. The remote call authenticates with that session's token.
func (g *Gateway) EndSession(ctx context.Context, session *sessions.Session) {
	defer g.store.Close()

	if session == nil {
		return
	}
	if _, err := g.api.Post(transport.WithSession(ctx, *session), g.endpoints.Logout, nil, nil); err != nil {
		log.Err(err).Str("role", session.Role.String()).Msg("Logout: remote notification failed")
	}
}

func classify(err error) *AuthFailure {
	var statusErr *transport.StatusError
	if errors.As(err, &statusErr) {
		msg := statusErr.Message
		if msg == "" {
			msg = "The service rejected the request."
		}
		return &AuthFailure{Reason: ServiceRejected, Message: msg, Err: err}
	}
	return &AuthFailure{Reason: NetworkError, Message: "The service could not be reached. Please try again.", Err: err}
}
