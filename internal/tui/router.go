package tui

import (
	"github.com/theirongolddev/poupa/internal/tui/components"
)

// Routes.
const (
	RouteLanding      = "/"
	RouteLogin        = "/login"
	RouteRegister     = "/register"
	RouteDashboard    = "/dashboard"
	RouteTransactions = "/transactions"
	RouteChallenges   = "/challenges"
)

// navItems is the sidebar of the logged-in pages, in key order.
var navItems = []components.NavItem{
	{Route: RouteDashboard, Label: "Dashboard", Icon: "◧", Key: "1"},
	{Route: RouteTransactions, Label: "Transactions", Icon: "⇄", Key: "2"},
	{Route: RouteChallenges, Label: "Challenges", Icon: "★", Key: "3"},
}

// Gated reports whether route requires a stored token.
func Gated(route string) bool {
	switch route {
	case RouteDashboard, RouteTransactions, RouteChallenges:
		return true
	}
	return false
}

// Resolve maps a requested route to the one that renders: gated routes
// without a token go to the login page, unknown routes to the landing page.
func Resolve(route string, hasToken bool) string {
	switch route {
	case RouteLanding, RouteLogin, RouteRegister:
		return route
	case RouteDashboard, RouteTransactions, RouteChallenges:
		if !hasToken {
			return RouteLogin
		}
		return route
	default:
		return RouteLanding
	}
}

// routeForKey maps the sidebar number keys to routes.
func routeForKey(key string) (string, bool) {
	for _, it := range navItems {
		if it.Key == key {
			return it.Route, true
		}
	}
	return "", false
}

// NewNavChannel returns the channel forced navigations arrive on. The API
// client's unauthorized hook and the reconcilers' navigator write to it.
func NewNavChannel() chan string {
	return make(chan string, 4)
}

// NavigateFunc returns a non-blocking sender onto ch.
func NavigateFunc(ch chan string) func(route string) {
	return func(route string) {
		select {
		case ch <- route:
		default:
		}
	}
}

// UnauthorizedHandler adapts ch for api.WithUnauthorizedHandler.
func UnauthorizedHandler(ch chan string) func() {
	send := NavigateFunc(ch)
	return func() { send(RouteLogin) }
}
