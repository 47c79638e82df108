// Copyright 2026 The PMIS Authors
// SPDX-License-Identifier: Apache-2.0

package consoleui

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pmisuite/pmis/lib/apiclient"
	"github.com/pmisuite/pmis/lib/config"
	"github.com/pmisuite/pmis/lib/session"
)

// testModel builds a model over a live httptest login endpoint and a
// temp session file. role is what the fake backend returns.
func testModel(t *testing.T, role apiclient.Role, preAuthenticated bool) (Model, *session.Store) {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"access_token": "tok", "token_type": "bearer", "username": "amina", "role": %q}`, role)
	}))
	t.Cleanup(server.Close)

	client, err := apiclient.New(apiclient.Config{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("apiclient.New: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	store := session.New(filepath.Join(t.TempDir(), "session.json"), client, logger)
	if preAuthenticated {
		if err := store.Login(context.Background(), "amina", "secret", role); err != nil {
			t.Fatalf("Login: %v", err)
		}
	}

	configuration := config.Default()
	configuration.Downloads.Directory = t.TempDir()
	return New(client, store, &configuration, logger), store
}

func keyPress(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestStartsOnLoginWhenLoggedOut(t *testing.T) {
	model, _ := testModel(t, apiclient.RoleRegular, false)
	if model.route != RouteLogin {
		t.Errorf("route = %v, want login", model.route)
	}
}

func TestStartsOnHomeWhenSessionHydrated(t *testing.T) {
	model, _ := testModel(t, apiclient.RoleRegular, true)
	if model.route != RouteHome {
		t.Errorf("route = %v, want home — no logged-out flash after hydration", model.route)
	}
}

func TestLoginReturnsToCapturedOrigin(t *testing.T) {
	model, store := testModel(t, apiclient.RoleRegular, false)

	// A guarded navigation while logged out bounces to login and
	// captures the origin.
	model.navigate(RoutePilot)
	if model.route != RouteLogin {
		t.Fatalf("route = %v, want login", model.route)
	}
	if !model.hasOrigin || model.returnTo != RoutePilot {
		t.Fatalf("origin not captured: hasOrigin=%v returnTo=%v", model.hasOrigin, model.returnTo)
	}

	// The asynchronous login succeeds; the result message drives the
	// redirect back to the origin.
	if err := store.Login(context.Background(), "amina", "secret", apiclient.RoleRegular); err != nil {
		t.Fatalf("Login: %v", err)
	}
	updated, _ := model.Update(loginResultMsg{})
	model = updated.(Model)

	if model.route != RoutePilot {
		t.Errorf("route = %v, want the captured origin (pilot)", model.route)
	}
	if model.hasOrigin {
		t.Error("the captured origin must be consumed by the redirect")
	}
}

func TestAdminRouteDeniedForRegularRole(t *testing.T) {
	model, _ := testModel(t, apiclient.RoleRegular, true)

	updated, _ := model.Update(keyPress('4'))
	model = updated.(Model)
	if !model.denied {
		t.Fatal("a regular session must be denied the admin route")
	}

	// The denied page offers the way home.
	updated, _ = model.Update(keyPress('0'))
	model = updated.(Model)
	if model.denied || model.route != RouteHome {
		t.Errorf("route = %v denied = %v, want back home", model.route, model.denied)
	}
}

func TestAdminRouteAllowedForAdminRole(t *testing.T) {
	model, _ := testModel(t, apiclient.RoleAdmin, true)

	updated, _ := model.Update(keyPress('4'))
	model = updated.(Model)
	if model.denied || model.route != RouteAdmin {
		t.Errorf("route = %v denied = %v, want the admin page", model.route, model.denied)
	}
}

func TestLogoutNavigatesToLogin(t *testing.T) {
	model, store := testModel(t, apiclient.RoleRegular, true)

	updated, _ := model.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	model = updated.(Model)

	if model.route != RouteLogin {
		t.Errorf("route = %v, want login after logout", model.route)
	}
	if store.Current() != nil {
		t.Error("logout must clear the session")
	}
}

func TestDownloadFailureRaisesBlockingAlert(t *testing.T) {
	model, _ := testModel(t, apiclient.RoleRegular, true)

	updated, _ := model.Update(downloadResultMsg{
		FileName: "rapport.pdf",
		Err:      fmt.Errorf("espace disque insuffisant"),
	})
	model = updated.(Model)
	if !model.alert.visible {
		t.Fatal("a failed download must raise the blocking alert")
	}

	// Any key dismisses it.
	updated, _ = model.Update(keyPress('x'))
	model = updated.(Model)
	if model.alert.visible {
		t.Error("any key must dismiss the alert")
	}
}

func TestWindowSizeReadiesTheView(t *testing.T) {
	model, _ := testModel(t, apiclient.RoleRegular, true)
	if view := model.View(); view != "" {
		t.Errorf("view before the first WindowSizeMsg = %q, want empty", view)
	}

	updated, _ := model.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	model = updated.(Model)
	if view := model.View(); view == "" {
		t.Error("view after sizing must render")
	}
}
