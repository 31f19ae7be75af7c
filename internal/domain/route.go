package domain

import "strings"

type Route string

const (
	RouteDashboard Route = "#/"
	RouteAdmin     Route = "#/admin"
)

// ParseRoute maps a navigation token to a screen. Unknown tokens land on the dashboard.
func ParseRoute(token string) Route {
	t := strings.TrimSpace(token)
	t = strings.TrimPrefix(t, "#")
	t = strings.TrimSuffix(t, "/")
	if t == "/admin" || t == "admin" {
		return RouteAdmin
	}
	return RouteDashboard
}
