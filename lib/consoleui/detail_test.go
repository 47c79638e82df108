// Copyright 2026 The PMIS Authors
// SPDX-License-Identifier: Apache-2.0

package consoleui

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/pmisuite/pmis/lib/apiclient"
	"github.com/pmisuite/pmis/lib/session"
)

func testDetailPage(t *testing.T) *detailPage {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	store := session.New(filepath.Join(t.TempDir(), "session.json"), nil, logger)
	page := newDetailPage(nil, store)

	title := "Forage de puits"
	label := "Fourniture de pompes"
	page.activities = []apiclient.Activity{
		{ID: 11, Title: &title},
		{ID: 12, Title: &title},
	}
	page.commandes = []apiclient.Commande{{ID: 31, Label: &label}}
	page.activitiesLoading = false
	page.commandesLoading = false
	return &page
}

func TestOnlyOneRowMenuAtATime(t *testing.T) {
	page := testDetailPage(t)
	page.activeTab = detailTabActivites

	page.openRowMenu(120)
	if page.menu == nil || page.menu.entityID != 11 {
		t.Fatalf("menu = %+v, want the first activity's menu", page.menu)
	}

	// Opening from another row replaces the open menu.
	page.activityCursor = 1
	page.openRowMenu(120)
	if page.menu == nil || page.menu.entityID != 12 {
		t.Errorf("menu = %+v, want the second activity's menu", page.menu)
	}

	// Switching tabs closes it.
	page.switchTab(1)
	if page.menu != nil {
		t.Error("switching tabs must close the floating menu")
	}
}

func TestMenuActionsPerFamily(t *testing.T) {
	page := testDetailPage(t)

	page.activeTab = detailTabActivites
	page.openRowMenu(120)
	if got := len(page.menu.actions); got != len(activityMenuActions) {
		t.Errorf("activity menu has %d actions, want %d", got, len(activityMenuActions))
	}
	page.closeMenu()

	page.activeTab = detailTabCommandes
	page.openRowMenu(120)
	if got := len(page.menu.actions); got != len(commandeMenuActions) {
		t.Errorf("commande menu has %d actions, want %d", got, len(commandeMenuActions))
	}
}

func TestChoosingActionSetsPanelAndParentTogether(t *testing.T) {
	page := testDetailPage(t)
	page.activeTab = detailTabActivites
	page.openRowMenu(120)
	page.menu.cursor = 1 // Suivi

	cmd := page.chooseMenuAction()
	if cmd == nil {
		t.Fatal("choosing an action must start the sub-panel fetch")
	}
	if page.menu != nil {
		t.Error("choosing an action must close the menu")
	}
	if page.panel == nil || page.panel.action != actionSuivi || page.panel.parentID != 11 {
		t.Fatalf("panel = %+v, want suivi for activity 11", page.panel)
	}
	if !page.panelLoader.loading {
		t.Error("the sub-panel loader must be loading")
	}
}

func TestStaleSubPanelResultIsDiscarded(t *testing.T) {
	page := testDetailPage(t)
	page.activeTab = detailTabActivites
	page.openRowMenu(120)
	staleGeneration := page.panelLoader.generation + 1
	page.chooseMenuAction()

	// A second choice supersedes the first before its rows land.
	page.openRowMenu(120)
	page.menu.cursor = 0 // Zone
	page.chooseMenuAction()

	applied := page.panelLoader.apply(tableResultMsg{
		LoaderID:   "detail-subpanel",
		Generation: staleGeneration,
		Data:       tableData{Columns: []string{"x"}, Rows: [][]string{{"stale"}}},
	})
	if applied {
		t.Error("a result from the superseded sub-panel fetch must be discarded")
	}
	if len(page.panelLoader.data.Rows) != 0 {
		t.Errorf("rows = %+v, want none until the live fetch lands", page.panelLoader.data.Rows)
	}

	applied = page.panelLoader.apply(tableResultMsg{
		LoaderID:   "detail-subpanel",
		Generation: page.panelLoader.generation,
		Data:       tableData{Columns: []string{"Site", "Département"}, Rows: [][]string{{"Gaoua", "Poni"}}},
	})
	if !applied || len(page.panelLoader.data.Rows) != 1 {
		t.Errorf("live result not applied: rows = %+v", page.panelLoader.data.Rows)
	}
}

func TestReEnterOrphansPriorFetches(t *testing.T) {
	page := testDetailPage(t)
	page.enter(5)
	firstGeneration := page.generation
	page.enter(6)

	page.applyProject(detailProjectMsg{
		Generation: firstGeneration,
		Project:    &apiclient.Project{ID: 5, Code: "OLD"},
	})
	if page.project != nil {
		t.Errorf("project = %+v, want the project-5 result dropped", page.project)
	}

	page.applyProject(detailProjectMsg{
		Generation: page.generation,
		Project:    &apiclient.Project{ID: 6, Code: "NEW"},
	})
	if page.project == nil || page.project.Code != "NEW" {
		t.Errorf("project = %+v, want NEW", page.project)
	}
}
