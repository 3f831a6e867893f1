// Package claims reads the payload of a signed session token without verifying its signature.
//
// The role check built on top of it is a client-side gate that decides which screens to
// offer. The authentication service re-checks the token on every request.
package claims

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/go-campus-session/internal/errors"
	"github.com/jrsteele09/go-campus-session/internal/utils"
)

// RolesClaim holds a single role or a list of roles.
const RolesClaim = "roles"

// ErrDecodeFailure is wrapped by every Decode error.
var ErrDecodeFailure = apperrors.ErrDecodeFailure

var (
	segmentParser = jwtlib.NewParser(jwtlib.WithPaddingAllowed())
	toURLAlphabet = strings.NewReplacer("+", "-", "/", "_")
)

// ClaimSet is the decoded payload of a token.
type ClaimSet map[string]any

// Decode extracts the claim set from the payload segment of token.
func Decode(token string) (ClaimSet, error) {
	parts := strings.Split(strings.TrimSpace(token), ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: expected 3 segments, got %d", ErrDecodeFailure, len(parts))
	}

	payload, err := segmentParser.DecodeSegment(toURLAlphabet.Replace(parts[1]))
	if err != nil {
		return nil, fmt.Errorf("%w: payload encoding: %v", ErrDecodeFailure, err)
	}

	var claims ClaimSet
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, fmt.Errorf("%w: payload is not a claim mapping: %v", ErrDecodeFailure, err)
	}
	if claims == nil {
		return nil, fmt.Errorf("%w: payload is empty", ErrDecodeFailure)
	}
	return claims, nil
}

// HasRole reports whether the roles claim contains expected. A nil set has no roles.
func HasRole(claims ClaimSet, expected string) bool {
	for _, role := range claims.Roles() {
		if role == expected {
			return true
		}
	}
	return false
}

// Roles returns the roles claim normalised to a list.
func (c ClaimSet) Roles() []string {
	if c == nil {
		return nil
	}
	return utils.ToStringList(c[RolesClaim])
}

// Subject returns the sub claim, or "" when absent.
func (c ClaimSet) Subject() string {
	sub, err := jwtlib.MapClaims(c).GetSubject()
	if err != nil {
		return ""
	}
	return sub
}

// ExpiresAt returns the exp claim when the token carries one.
func (c ClaimSet) ExpiresAt() (time.Time, bool) {
	exp, err := jwtlib.MapClaims(c).GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
