package session

import "errors"

// Route names a destination in the client.
type Route string

const (
	RouteLogin      Route = "login"
	RouteSignup     Route = "signup"
	RouteHome       Route = "home"
	RouteSections   Route = "sections"
	RouteCreateUser Route = "create-user"
	RouteUpload     Route = "upload"
	RouteStatus     Route = "status"
)

// Role ids with extra privileges. Every other role may open the analytics
// sections only.
const (
	RoleDataManager = 2
	RoleAdmin       = 3
)

// ErrForbiddenRoute is returned when the current role may not open a route.
var ErrForbiddenRoute = errors.New("your role cannot access this page")

var public = map[Route]bool{
	RouteLogin:  true,
	RouteSignup: true,
}

var restricted = map[Route][]int{
	RouteCreateUser: {RoleAdmin},
	RouteUpload:     {RoleDataManager, RoleAdmin},
}

// CanAccess reports whether roleID may open route once logged in.
func CanAccess(route Route, roleID int) bool {
	allowed, ok := restricted[route]
	if !ok {
		return true
	}
	for _, id := range allowed {
		if id == roleID {
			return true
		}
	}
	return false
}

// Resolve decides where a navigation to route ends up. Without a token every
// non-public route resolves to the login view; a role that may not open the
// route is sent home.
func Resolve(route Route, s *Session) Route {
	if public[route] {
		return route
	}
	if s == nil || s.Token == "" {
		return RouteLogin
	}
	if !CanAccess(route, s.User.RoleID) {
		return RouteHome
	}
	return route
}

// Guard is Resolve expressed as an error for command handlers.
func Guard(route Route, s *Session) error {
	switch Resolve(route, s) {
	case route:
		return nil
	case RouteLogin:
		return ErrNoSession
	default:
		return ErrForbiddenRoute
	}
}
