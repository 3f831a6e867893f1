// Package guard decides whether a screen requiring a role may render.
//
// The decision is a pure function of its inputs and keeps no state between renders.
package guard

import (
	"fmt"

	"github.com/jrsteele09/go-campus-session/navigation"
	"github.com/jrsteele09/go-campus-session/roles"
	"github.com/jrsteele09/go-campus-session/sessions"
)

type Outcome int

const (
	// Redirect sends an unauthenticated user to the login for the required role.
	Redirect Outcome = iota + 1
	// Render shows the protected screen.
	Render
	// AccessDenied overlays the screen for a user signed in with another role.
	AccessDenied
)

func (o Outcome) String() string {
	switch o {
	case Redirect:
		return "redirect"
	case Render:
		return "render"
	case AccessDenied:
		return "access_denied"
	}
	return "unknown"
}

type Decision struct {
	Outcome      Outcome
	Path         string // Redirect target, or the recovery target for AccessDenied
	CurrentRole  roles.Role
	RequiredRole roles.Role
}

// Evaluate maps session state and a screen's required role to a decision.
func Evaluate(isAuthenticated bool, currentRole, requiredRole roles.Role) Decision {
	d := Decision{CurrentRole: currentRole, RequiredRole: requiredRole}
	switch {
	case !isAuthenticated:
		d.Outcome = Redirect
		d.Path = navigation.LoginPathFor(requiredRole)
	case currentRole == requiredRole:
		d.Outcome = Render
	default:
		d.Outcome = AccessDenied
		d.Path = navigation.DashboardPathFor(currentRole)
	}
	return d
}

// SessionState is the part of the session store the guard reads.
type SessionState interface {
	IsValid() bool
	Current() *sessions.Session
}

// Check evaluates against the live store. IsValid runs first so an expired session is
// cleared before its role is read.
func Check(state SessionState, requiredRole roles.Role) Decision {
	authenticated := state.IsValid()
	var current roles.Role
	if s := state.Current(); authenticated && s != nil {
		current = s.Role
	} else {
		authenticated = false
	}
	return Evaluate(authenticated, current, requiredRole)
}

// Recover performs the single recovery action of an access-denied overlay: go to the
// dashboard of the role the user actually has. It does nothing for other outcomes.
func (d Decision) Recover(nav navigation.Navigator) bool {
	if d.Outcome != AccessDenied {
		return false
	}
	nav.Navigate(d.Path, navigation.Push)
	return true
}

// Message is the overlay text naming both roles.
func (d Decision) Message() string {
	switch d.Outcome {
	case AccessDenied:
		return fmt.Sprintf("This area requires the %s role. You are signed in as %s.", d.RequiredRole, d.CurrentRole)
	case Redirect:
		return fmt.Sprintf("Please log in as %s to continue.", d.RequiredRole)
	}
	return ""
}
