// Package server is the local portal: it renders the role login and dashboard screens and
// keeps them behind the route guard.
package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/jrsteele09/go-campus-session/auth"
	"github.com/jrsteele09/go-campus-session/guard"
	"github.com/jrsteele09/go-campus-session/internal/config"
	"github.com/jrsteele09/go-campus-session/monitor"
	"github.com/jrsteele09/go-campus-session/navigation"
	"github.com/jrsteele09/go-campus-session/roles"
	"github.com/jrsteele09/go-campus-session/sessions"
	"github.com/jrsteele09/go-campus-session/transport"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
)

// Gateway is the authentication surface the portal drives.
type Gateway interface {
	LoginAs(ctx context.Context, role roles.Role, creds auth.Credentials) (sessions.Session, error)
	Register(ctx context.Context, role roles.Role, form any) (*transport.Envelope, error)
	Logout(ctx context.Context)
}

var _ monitor.Notifier = (*Server)(nil)

type Server struct {
	env     string
	appName string
	mux     *http.ServeMux
	routes  []string
	config  config.Config
	gateway Gateway
	state   guard.SessionState
	history *navigation.History

	noticeLock sync.Mutex
	notice     string
}

func New(config config.Config, gateway Gateway, state guard.SessionState, history *navigation.History) (*Server, error) {
	if config == nil {
		return nil, errors.New("[Server New] config is required")
	}
	if gateway == nil {
		return nil, errors.New("[Server New] gateway is required")
	}
	if state == nil {
		return nil, errors.New("[Server New] session state is required")
	}
	if history == nil {
		return nil, errors.New("[Server New] navigation history is required")
	}

	s := &Server{
		env:     config.GetEnv(),
		appName: config.GetAppName(),
		mux:     http.NewServeMux(),
		config:  config,
		gateway: gateway,
		state:   state,
		history: history,
	}
	if err := s.initRoutes(); err != nil {
		return nil, err
	}
	s.logRoutes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Handler wraps the portal with the configured CORS policy.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   s.config.GetAllowedOrigins(),
		AllowedMethods:   s.config.GetAllowedMethods(),
		AllowedHeaders:   s.config.GetAllowedHeaders(),
		AllowCredentials: true,
	})
	return c.Handler(s)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// SessionExpired records a one-shot notice shown on the next login screen.
func (s *Server) SessionExpired(role roles.Role) {
	s.noticeLock.Lock()
	defer s.noticeLock.Unlock()
	if role == "" {
		s.notice = "Your session has expired. Please log in again."
		return
	}
	s.notice = "Your " + role.String() + " session has expired. Please log in again."
}

func (s *Server) takeNotice() string {
	s.noticeLock.Lock()
	defer s.noticeLock.Unlock()
	n := s.notice
	s.notice = ""
	return n
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		method, path, found := strings.Cut(route, " ")
		if !found {
			method, path = "", route
		}
		log.Debug().Str("method", method).Str("path", path).Msg("Route registered")
	}
}
