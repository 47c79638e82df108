// Copyright 2026 The PMIS Authors
// SPDX-License-Identifier: Apache-2.0

package consoleui

import (
	"github.com/pmisuite/pmis/lib/apiclient"
	"github.com/pmisuite/pmis/lib/session"
)

// Route identifies one page of the console.
type Route int

const (
	// RouteLogin is the guest-only authentication page.
	RouteLogin Route = iota
	// RouteHome is the navigation hub.
	RouteHome
	// RouteProjects is the project list.
	RouteProjects
	// RouteProjectDetail is one project's tabbed detail page.
	RouteProjectDetail
	// RoutePilot is the events pilot page.
	RoutePilot
	// RouteTransactions is the per-project transaction browser.
	RouteTransactions
	// RouteAdmin is the administrative database browser, admin only.
	RouteAdmin
)

// String returns the route's display title.
func (route Route) String() string {
	switch route {
	case RouteLogin:
		return "Connexion"
	case RouteHome:
		return "Accueil"
	case RouteProjects:
		return "Projets"
	case RouteProjectDetail:
		return "Détail du projet"
	case RoutePilot:
		return "Pilotage des évènements"
	case RouteTransactions:
		return "Transactions"
	case RouteAdmin:
		return "Administration"
	default:
		return "?"
	}
}

// DecisionKind classifies a guard outcome.
type DecisionKind int

const (
	// DecisionAllow renders the requested page.
	DecisionAllow DecisionKind = iota
	// DecisionRedirect navigates elsewhere instead.
	DecisionRedirect
	// DecisionDenied renders the inline access-denied page.
	DecisionDenied
)

// Decision is the outcome of guarding a navigation. For redirects, To
// is where to go and From is the route originally requested — the
// login page uses it to return the user there after authenticating.
type Decision struct {
	Kind DecisionKind
	To   Route
	From Route
}

// Decide is the route guard: pure, no network effects. The rules are
// evaluated against the session at the moment of navigation only; a
// session change while a page is showing does not retroactively evict
// it (the next fetch observes the new credential instead).
func Decide(current *session.Session, route Route) Decision {
	authenticated := current != nil

	if route == RouteLogin {
		if authenticated {
			return Decision{Kind: DecisionRedirect, To: RouteHome, From: route}
		}
		return Decision{Kind: DecisionAllow}
	}

	if !authenticated {
		return Decision{Kind: DecisionRedirect, To: RouteLogin, From: route}
	}

	if route == RouteAdmin && current.Role != apiclient.RoleAdmin {
		return Decision{Kind: DecisionDenied}
	}

	return Decision{Kind: DecisionAllow}
}
