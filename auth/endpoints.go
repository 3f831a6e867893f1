package auth

import "github.com/jrsteele09/go-campus-session/roles"

// Endpoints are the remote service paths, relative to the transport base URL.
type Endpoints struct {
	StudentLogin    string
	StaffLogin      string
	StudentRegister string
	StaffRegister   string
	Logout          string
}

func DefaultEndpoints() Endpoints {
	return Endpoints{
		StudentLogin:    "/auth/student/login",
		StaffLogin:      "/auth/staff/login",
		StudentRegister: "/auth/student/register",
		StaffRegister:   "/auth/staff/register",
		Logout:          "/auth/logout",
	}
}

func (e Endpoints) login(role roles.Role) string {
	if role.Class() == roles.ClassStudent {
		return e.StudentLogin
	}
	return e.StaffLogin
}

func (e Endpoints) register(role roles.Role) string {
	if role.Class() == roles.ClassStudent {
		return e.StudentRegister
	}
	return e.StaffRegister
}
