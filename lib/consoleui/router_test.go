// Copyright 2026 The PMIS Authors
// SPDX-License-Identifier: Apache-2.0

package consoleui

import (
	"testing"

	"github.com/pmisuite/pmis/lib/apiclient"
	"github.com/pmisuite/pmis/lib/session"
)

func TestGuardTable(t *testing.T) {
	loggedOut := (*session.Session)(nil)
	regular := &session.Session{Username: "u", Role: apiclient.RoleRegular, Token: "t"}
	admin := &session.Session{Username: "a", Role: apiclient.RoleAdmin, Token: "t"}

	allRoutes := []Route{
		RouteLogin, RouteHome, RouteProjects, RouteProjectDetail,
		RoutePilot, RouteTransactions, RouteAdmin,
	}

	tests := []struct {
		name    string
		current *session.Session
		route   Route
		want    Decision
	}{
		{"guest may see login", loggedOut, RouteLogin, Decision{Kind: DecisionAllow}},
		{"authenticated bounces off login", regular, RouteLogin,
			Decision{Kind: DecisionRedirect, To: RouteHome, From: RouteLogin}},
		{"admin bounces off login too", admin, RouteLogin,
			Decision{Kind: DecisionRedirect, To: RouteHome, From: RouteLogin}},
		{"regular reaches home", regular, RouteHome, Decision{Kind: DecisionAllow}},
		{"regular reaches pilot", regular, RoutePilot, Decision{Kind: DecisionAllow}},
		{"regular is denied admin", regular, RouteAdmin, Decision{Kind: DecisionDenied}},
		{"admin reaches admin", admin, RouteAdmin, Decision{Kind: DecisionAllow}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := Decide(test.current, test.route); got != test.want {
				t.Errorf("Decide(%v) = %+v, want %+v", test.route, got, test.want)
			}
		})
	}

	// Every guarded route redirects a guest to login, carrying the
	// origin so login can return there.
	for _, route := range allRoutes {
		if route == RouteLogin {
			continue
		}
		got := Decide(loggedOut, route)
		want := Decision{Kind: DecisionRedirect, To: RouteLogin, From: route}
		if got != want {
			t.Errorf("Decide(guest, %v) = %+v, want %+v", route, got, want)
		}
	}
}

func TestRouteTitles(t *testing.T) {
	for _, route := range []Route{
		RouteLogin, RouteHome, RouteProjects, RouteProjectDetail,
		RoutePilot, RouteTransactions, RouteAdmin,
	} {
		if route.String() == "?" || route.String() == "" {
			t.Errorf("route %d has no display title", route)
		}
	}
}
