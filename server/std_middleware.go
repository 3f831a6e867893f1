package server

import (
	"html/template"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/jrsteele09/go-campus-session/guard"
	"github.com/jrsteele09/go-campus-session/roles"
	"github.com/rs/zerolog/log"
)

func ChainMiddleware(routeFunction http.HandlerFunc, mw ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	chainedHandler := routeFunction
	// Apply middleware in reverse order
	for i := len(mw) - 1; i >= 0; i-- {
		chainedHandler = mw[i](chainedHandler) // Call the middleware function
	}
	return chainedHandler
}

// PortalMiddleware is the stack for every screen route, followed by mw.
func (s *Server) PortalMiddleware(mw ...func(http.HandlerFunc) http.HandlerFunc) []func(http.HandlerFunc) http.HandlerFunc {
	chainedMiddleWare := []func(http.HandlerFunc) http.HandlerFunc{
		s.LoggingMiddleware,
		s.RecoverMiddleware,
		s.FrameSecurityMiddleware,
		s.ReloadMiddleware,
	}
	chainedMiddleWare = append(chainedMiddleWare, mw...)
	return chainedMiddleWare
}

func (s *Server) APIMiddleware() []func(http.HandlerFunc) http.HandlerFunc {
	return []func(http.HandlerFunc) http.HandlerFunc{
		s.LoggingMiddleware,
		s.RecoverMiddleware,
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) LoggingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)

		ev := log.Debug()
		if rec.status >= http.StatusInternalServerError {
			ev = log.Warn()
		}
		ev.Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("Request")
	}
}

func (s *Server) FrameSecurityMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Prevent embedding on other sites
		w.Header().Set("X-Frame-Options", "SAMEORIGIN")
		w.Header().Set("Content-Security-Policy", "frame-ancestors 'self'")
		next(w, r)
	}
}

func (s *Server) RecoverMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error().Interface("panic", rec).Bytes("stack", debug.Stack()).Str("path", r.URL.Path).Msg("Recovered from panic")
				http.Error(w, "Internal server error", http.StatusInternalServerError)
			}
		}()
		next(w, r)
	}
}

// ReloadMiddleware applies a pending reload-style navigation, such as the one left by a
// forced logout, before any other screen is served.
func (s *Server) ReloadMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if path, ok := s.history.TakeReload(); ok && path != r.URL.Path {
			redirectSuccess(w, r, path)
			return
		}
		next(w, r)
	}
}

// RequireRole guards a screen: it redirects to the role's login without a session, shows
// the access denied view for another role and otherwise renders.
func (s *Server) RequireRole(required roles.Role, deniedPage *template.Template) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			decision := guard.Check(s.state, required)
			switch decision.Outcome {
			case guard.Render:
				next(w, r)
			case guard.Redirect:
				redirectSuccess(w, r, decision.Path)
			default:
				log.Info().
					Str("required", required.String()).
					Str("current", decision.CurrentRole.String()).
					Msg("Access denied")
				s.render(w, http.StatusForbidden, deniedPage, accessDeniedData{
					AppName:      s.appName,
					Message:      decision.Message(),
					RequiredRole: decision.RequiredRole,
					CurrentRole:  decision.CurrentRole,
					RecoverPath:  RouteRecover,
				})
			}
		}
	}
}
