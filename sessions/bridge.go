package sessions

import (
	"encoding/json"
	"errors"
	"strconv"

	apperrors "github.com/jrsteele09/go-campus-session/internal/errors"
	"github.com/jrsteele09/go-campus-session/roles"
	"github.com/jrsteele09/go-campus-session/storage"
	"github.com/jrsteele09/go-campus-session/users"
	"github.com/rs/zerolog/log"
)

// Storage keys written by the Bridge. Nothing else writes them.
const (
	KeyToken     = "token"
	KeyTokenType = "tokenType"
	KeyRole      = "role"
	KeyIssuedAt  = "issuedAt"
	KeyExpiresAt = "expiresAt"
	KeyUser      = "user"
)

var sessionKeys = []string{KeyToken, KeyTokenType, KeyRole, KeyIssuedAt, KeyExpiresAt, KeyUser}

// IdentifierKey is the auxiliary key caching the profile id for role, e.g. teacherId.
func IdentifierKey(role roles.Role) string {
	return string(role) + "Id"
}

var _ Persister = (*Bridge)(nil)

// Bridge mirrors a Session into a storage.KV one field per key.
type Bridge struct {
	kv storage.KV
}

func NewBridge(kv storage.KV) *Bridge {
	return &Bridge{kv: kv}
}

// Save writes every session field individually.
func (b *Bridge) Save(session Session) error {
	var errs []error
	set := func(key, value string) {
		if err := b.kv.Set(key, value); err != nil {
			errs = append(errs, apperrors.Wrapf(err, "[Bridge.Save] %s", key))
		}
	}
	remove := func(key string) {
		if err := b.kv.Remove(key); err != nil {
			errs = append(errs, apperrors.Wrapf(err, "[Bridge.Save] remove %s", key))
		}
	}

	set(KeyToken, session.Token)
	set(KeyTokenType, session.TokenType)
	set(KeyRole, string(session.Role))
	set(KeyIssuedAt, strconv.FormatInt(session.IssuedAt, 10))
	set(KeyExpiresAt, strconv.FormatInt(session.ExpiresAt, 10))

	if session.User != nil {
		data, err := json.Marshal(session.User)
		if err != nil {
			errs = append(errs, apperrors.Wrapf(err, "[Bridge.Save] encode user"))
		} else {
			set(KeyUser, string(data))
		}
	} else {
		remove(KeyUser)
	}

	for _, role := range roles.All() {
		if role == session.Role && session.User != nil && session.User.ID != "" {
			set(IdentifierKey(role), session.User.ID)
			continue
		}
		remove(IdentifierKey(role))
	}

	return apperrors.Join(errs...)
}

// Load reads the session back. A record missing token, role or expiry is cleared and
// reported as no session.
func (b *Bridge) Load() (*Session, error) {
	token, err := b.get(KeyToken)
	if err != nil {
		return nil, err
	}
	roleValue, err := b.get(KeyRole)
	if err != nil {
		return nil, err
	}
	expiresValue, err := b.get(KeyExpiresAt)
	if err != nil {
		return nil, err
	}

	role, roleErr := roles.Parse(roleValue)
	expiresAt, expErr := strconv.ParseInt(expiresValue, 10, 64)
	if token == "" || roleErr != nil || expErr != nil || expiresAt <= 0 {
		log.Warn().Msg("Discarding partial persisted session")
		return nil, b.Clear()
	}

	session := &Session{
		Token:     token,
		TokenType: DefaultTokenType,
		Role:      role,
		ExpiresAt: expiresAt,
	}

	if tokenType, err := b.get(KeyTokenType); err != nil {
		return nil, err
	} else if tokenType != "" {
		session.TokenType = tokenType
	}

	if issuedValue, err := b.get(KeyIssuedAt); err != nil {
		return nil, err
	} else if issuedAt, err := strconv.ParseInt(issuedValue, 10, 64); err == nil {
		session.IssuedAt = issuedAt
	}

	userValue, err := b.get(KeyUser)
	if err != nil {
		return nil, err
	}
	if userValue != "" {
		var user users.Profile
		if err := json.Unmarshal([]byte(userValue), &user); err != nil {
			log.Warn().Err(err).Msg("Dropping unreadable persisted user profile")
			_ = b.kv.Remove(KeyUser)
		} else {
			session.User = &user
		}
	}

	return session, nil
}

// Clear removes every session key and every role identifier key.
func (b *Bridge) Clear() error {
	var errs []error
	keys := append([]string{}, sessionKeys...)
	for _, role := range roles.All() {
		keys = append(keys, IdentifierKey(role))
	}
	for _, key := range keys {
		if err := b.kv.Remove(key); err != nil {
			errs = append(errs, apperrors.Wrapf(err, "[Bridge.Clear] %s", key))
		}
	}
	return apperrors.Join(errs...)
}

// get returns "" for an absent key and an error only for backend failures.
func (b *Bridge) get(key string) (string, error) {
	v, err := b.kv.Get(key)
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", apperrors.Wrapf(err, "[Bridge.Load] %s", key)
	}
	return v, nil
}
