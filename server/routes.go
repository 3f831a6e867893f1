package server

import (
	"fmt"

	"github.com/jrsteele09/go-campus-session/navigation"
	"github.com/jrsteele09/go-campus-session/roles"
)

func (s *Server) initRoutes() error {
	pages, err := parsePages()
	if err != nil {
		return fmt.Errorf("[Server initRoutes] %w", err)
	}

	s.RegisterRouteHandler("GET /{$}", ChainMiddleware(s.EntryHandler(pages.entry), s.PortalMiddleware()...))

	for _, role := range roles.All() {
		login := navigation.LoginPathFor(role)
		dashboard := navigation.DashboardPathFor(role)

		// LOGIN
		s.RegisterRouteHandler("GET "+login, ChainMiddleware(s.LoginPageHandler(role, pages.login), s.PortalMiddleware()...))
		s.RegisterRouteHandler("POST "+login, ChainMiddleware(s.LoginSubmissionHandler(role, pages.login), s.PortalMiddleware()...))

		// DASHBOARDS
		s.RegisterRouteHandler("GET "+dashboard, ChainMiddleware(s.DashboardHandler(role, pages.dashboard), s.PortalMiddleware(s.RequireRole(role, pages.accessDenied))...))
	}

	s.RegisterRouteHandler("POST "+navigation.RouteLogout, ChainMiddleware(s.LogoutHandler(), s.PortalMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteRecover, ChainMiddleware(s.RecoverHandler(), s.PortalMiddleware()...))

	// API routes
	s.RegisterRouteHandler("POST "+RouteRegister, ChainMiddleware(s.RegisterHandler(), s.APIMiddleware()...))
	return nil
}
