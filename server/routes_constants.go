package server

// Route path constants owned by the portal. Screen routes live in the navigation package.
const (
	// Access denied recovery
	RouteRecover = "/access/recover"

	// Registration proxy, one per role
	RouteRegister = "/register/{role}"
)
