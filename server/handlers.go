package server

import (
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/go-campus-session/auth"
	"github.com/jrsteele09/go-campus-session/guard"
	"github.com/jrsteele09/go-campus-session/navigation"
	"github.com/jrsteele09/go-campus-session/roles"
	"github.com/jrsteele09/go-campus-session/transport"
	"github.com/jrsteele09/go-campus-session/users"
	"github.com/rs/zerolog/log"
)

const maxFormBytes = 64 << 10

type loginLink struct {
	Label string
	Path  string
}

type entryData struct {
	AppName       string
	SignedIn      bool
	Role          roles.Role
	DashboardPath string
	Logins        []loginLink
}

// LoginPageData contains data for rendering the login page
type LoginPageData struct {
	AppName   string
	Label     string
	Action    string
	AllowPan  bool // Students may log in with their PAN number
	Notice    string
	Error     string
	Email     string // Preserve email on error
	PanNumber string
}

type dashboardData struct {
	AppName   string
	Label     string
	User      *users.Profile
	Active    bool
	Status    users.Status
	ExpiresAt string
}

type accessDeniedData struct {
	AppName      string
	Message      string
	RequiredRole roles.Role
	CurrentRole  roles.Role
	RecoverPath  string
}

func label(role roles.Role) string {
	name := role.String()
	if name == "" {
		return ""
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

// EntryHandler renders the role picker, or a link back to the dashboard when signed in.
func (s *Server) EntryHandler(tmpl *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := entryData{AppName: s.appName}
		if s.state.IsValid() {
			if current := s.state.Current(); current != nil {
				data.SignedIn = true
				data.Role = current.Role
				data.DashboardPath = navigation.DashboardPathFor(current.Role)
			}
		}
		for _, role := range roles.All() {
			data.Logins = append(data.Logins, loginLink{Label: label(role), Path: navigation.LoginPathFor(role)})
		}
		s.render(w, http.StatusOK, tmpl, data)
	}
}

func (s *Server) loginPage(role roles.Role) LoginPageData {
	return LoginPageData{
		AppName:  s.appName,
		Label:    label(role),
		Action:   navigation.LoginPathFor(role),
		AllowPan: role.Class() == roles.ClassStudent,
	}
}

// LoginPageHandler displays the login page for one role, with any pending expiry notice.
func (s *Server) LoginPageHandler(role roles.Role, tmpl *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := s.loginPage(role)
		data.Notice = s.takeNotice()
		data.Error = r.URL.Query().Get("error")
		data.Email = r.URL.Query().Get("email")
		s.render(w, http.StatusOK, tmpl, data)
	}
}

// LoginSubmissionHandler processes the login form submission
func (s *Server) LoginSubmissionHandler(role roles.Role, tmpl *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		creds := auth.Credentials{
			PanNumber: strings.TrimSpace(r.FormValue("panNumber")),
			Email:     strings.TrimSpace(r.FormValue("email")),
			Password:  r.FormValue("password"),
		}

		data := s.loginPage(role)
		data.Email = creds.Email
		data.PanNumber = creds.PanNumber

		if (creds.Email == "" && (!data.AllowPan || creds.PanNumber == "")) || creds.Password == "" {
			data.Error = "Email and password are required"
			if data.AllowPan {
				data.Error = "PAN number or email, and password, are required"
			}
			s.render(w, http.StatusBadRequest, tmpl, data)
			return
		}

		if _, err := s.gateway.LoginAs(r.Context(), role, creds); err != nil {
			msg, reason := failureMessage(err)
			data.Error = msg
			s.render(w, failureStatus(reason), tmpl, data)
			return
		}

		dashboard := navigation.DashboardPathFor(role)
		s.history.Navigate(dashboard, navigation.Push)
		redirectSuccess(w, r, dashboard)
	}
}

// LogoutHandler ends the session and returns to the entry screen.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.gateway.Logout(r.Context())
		s.history.Navigate(navigation.RouteEntry, navigation.Push)
		redirectSuccess(w, r, navigation.RouteEntry)
	}
}

// DashboardHandler renders a role's landing screen. It runs behind RequireRole.
func (s *Server) DashboardHandler(role roles.Role, tmpl *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		current := s.state.Current()
		if current == nil {
			redirectSuccess(w, r, navigation.LoginPathFor(role))
			return
		}

		path := navigation.DashboardPathFor(role)
		if s.history.Current() != path {
			s.history.Navigate(path, navigation.Push)
		}

		data := dashboardData{
			AppName:   s.appName,
			Label:     label(role),
			User:      current.User,
			Active:    current.User == nil || current.User.IsActive(),
			ExpiresAt: time.Unix(current.ExpiresAt, 0).Format(time.RFC1123),
		}
		if current.User != nil {
			data.Status = current.User.Status
		}
		s.render(w, http.StatusOK, tmpl, data)
	}
}

// RecoverHandler performs the access denied recovery action.
func (s *Server) RecoverHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		required, err := roles.Parse(r.FormValue("required"))
		if err != nil {
			http.Error(w, "Unknown role", http.StatusBadRequest)
			return
		}

		decision := guard.Check(s.state, required)
		switch {
		case decision.Recover(s.history):
			redirectSuccess(w, r, s.history.Current())
		case decision.Outcome == guard.Redirect:
			redirectSuccess(w, r, decision.Path)
		default:
			redirectSuccess(w, r, navigation.DashboardPathFor(required))
		}
	}
}

// RegisterHandler relays a JSON registration form to the service for one role.
func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role, err := roles.Parse(r.PathValue("role"))
		if err != nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Unknown role"})
			return
		}

		var form map[string]any
		if err := json.NewDecoder(io.LimitReader(r.Body, maxFormBytes)).Decode(&form); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid registration form"})
			return
		}

		env, err := s.gateway.Register(r.Context(), role, form)
		if err != nil {
			msg, reason := failureMessage(err)
			writeJSON(w, failureStatus(reason), map[string]string{"message": msg})
			return
		}

		if env == nil {
			env = &transport.Envelope{}
		}
		writeJSON(w, http.StatusOK, env)
	}
}

func failureMessage(err error) (string, auth.Reason) {
	var failure *auth.AuthFailure
	if errors.As(err, &failure) {
		if failure.Message != "" {
			return failure.Message, failure.Reason
		}
		return string(failure.Reason), failure.Reason
	}
	log.Err(err).Msg("Unexpected authentication error")
	return "Something went wrong. Please try again.", ""
}

func failureStatus(reason auth.Reason) int {
	switch reason {
	case auth.ServiceRejected:
		return http.StatusUnauthorized
	case auth.RoleMismatch:
		return http.StatusForbidden
	case auth.NetworkError:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// redirectSuccess helper for htmx-aware success redirects
func redirectSuccess(w http.ResponseWriter, r *http.Request, path string) {
	if isHTMXRequest(r) {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusNoContent) // 204 - no content, just redirect instruction
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// isHTMXRequest checks if the request was initiated by HTMX
func isHTMXRequest(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
