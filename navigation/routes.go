package navigation

import "github.com/jrsteele09/go-campus-session/roles"

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Entry screen, also the fallback when the role is unknown
	RouteEntry = "/"

	// Login Routes
	RouteStudentLogin = "/student/login"
	RouteAdminLogin   = "/admin/login"
	RouteTeacherLogin = "/teacher/login"
	RouteLogout       = "/logout"

	// Dashboard Routes
	RouteStudentDashboard = "/student/dashboard"
	RouteAdminDashboard   = "/admin/dashboard"
	RouteTeacherDashboard = "/teacher/dashboard"
)

// LoginPathFor returns the login entry point for role, or the entry screen.
func LoginPathFor(role roles.Role) string {
	switch role {
	case roles.Student:
		return RouteStudentLogin
	case roles.Admin:
		return RouteAdminLogin
	case roles.Teacher:
		return RouteTeacherLogin
	}
	return RouteEntry
}

// DashboardPathFor returns the landing screen for role, or the entry screen.
func DashboardPathFor(role roles.Role) string {
	switch role {
	case roles.Student:
		return RouteStudentDashboard
	case roles.Admin:
		return RouteAdminDashboard
	case roles.Teacher:
		return RouteTeacherDashboard
	}
	return RouteEntry
}
