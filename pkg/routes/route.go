// Package routes declares HTTP routes as data so domain handlers can
// describe their endpoints and the API module can register them.
package routes

import "net/http"

// Route binds an HTTP method and pattern to a handler.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}

// Path returns the ServeMux pattern for the route beneath prefix.
func (r Route) Path(prefix string) string {
	pattern := prefix + r.Pattern
	if pattern == "" {
		pattern = "/"
	}
	return r.Method + " " + pattern
}
