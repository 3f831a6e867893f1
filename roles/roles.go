// Package roles lists the user classes the portal authorizes for.
package roles

import (
	"fmt"
	"strings"

	apperrors "github.com/jrsteele09/go-campus-session/internal/errors"
)

// Role is one of the three mutually exclusive user classes.
type Role string

const (
	Student Role = "student"
	Admin   Role = "admin"
	Teacher Role = "teacher"
)

// Class groups roles by the login endpoint they authenticate against.
type Class string

const (
	ClassStudent Class = "student"
	ClassStaff   Class = "staff"
)

const claimPrefix = "ROLE_"

// All returns every known role.
func All() []Role {
	return []Role{Student, Admin, Teacher}
}

// Parse accepts either the plain role name or its claim form (ROLE_TEACHER).
func Parse(s string) (Role, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	v = strings.TrimPrefix(v, strings.ToLower(claimPrefix))
	r := Role(v)
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", apperrors.ErrUnknownRole, s)
	}
	return r, nil
}

func (r Role) Valid() bool {
	switch r {
	case Student, Admin, Teacher:
		return true
	}
	return false
}

// Claim is the value the authentication service puts in a token's roles claim.
func (r Role) Claim() string {
	return claimPrefix + strings.ToUpper(string(r))
}

// Class reports which login endpoint serves the role. Admins and teachers are staff.
func (r Role) Class() Class {
	if r == Student {
		return ClassStudent
	}
	return ClassStaff
}

func (r Role) String() string {
	return string(r)
}
