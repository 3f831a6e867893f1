package sessions

import (
	"time"

	"github.com/jrsteele09/go-campus-session/roles"
	"github.com/jrsteele09/go-campus-session/users"
)

// DefaultTokenType is used when the service does not name a scheme.
const DefaultTokenType = "Bearer"

// Session records who is authenticated, as what role, until when.
type Session struct {
	Token     string         // Signed session token as issued by the service
	TokenType string         // Authorization scheme, e.g. Bearer
	Role      roles.Role     // Derived from the token at login, never re-derived
	IssuedAt  int64          // Unix seconds, local clock at acceptance
	ExpiresAt int64          // Unix seconds, IssuedAt + granted lifetime
	User      *users.Profile // May be nil for a restored session
}

// New builds a session accepted at issuedAt and valid for lifetime.
func New(token, tokenType string, role roles.Role, issuedAt time.Time, lifetime time.Duration, user *users.Profile) Session {
	if tokenType == "" {
		tokenType = DefaultTokenType
	}
	iat := issuedAt.Unix()
	return Session{
		Token:     token,
		TokenType: tokenType,
		Role:      role,
		IssuedAt:  iat,
		ExpiresAt: iat + int64(lifetime/time.Second),
		User:      user.Clone(),
	}
}

// Complete reports whether every field required for a live session is present.
func (s Session) Complete() bool {
	return s.Token != "" && s.Role.Valid() && s.ExpiresAt > 0
}

// ExpiredAt reports whether the session is no longer valid at now.
func (s Session) ExpiredAt(now time.Time) bool {
	return now.Unix() >= s.ExpiresAt
}

// Remaining returns the time left before expiry, never negative.
func (s Session) Remaining(now time.Time) time.Duration {
	left := time.Unix(s.ExpiresAt, 0).Sub(now)
	if left < 0 {
		return 0
	}
	return left
}

func (s Session) clone() *Session {
	s.User = s.User.Clone()
	return &s
}
