// Copyright 2026 The PMIS Authors
// SPDX-License-Identifier: Apache-2.0

package consoleui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func TestSpliceOverlayReplacesRegion(t *testing.T) {
	view := strings.Join([]string{
		"aaaaaaaaaa",
		"bbbbbbbbbb",
		"cccccccccc",
	}, "\n")

	spliced := spliceOverlay(view, []string{"XXX", "YYY"}, 2, 1)
	lines := strings.Split(spliced, "\n")

	if !strings.Contains(lines[1], "XXX") || !strings.Contains(lines[2], "YYY") {
		t.Fatalf("overlay not spliced:\n%s", spliced)
	}
	if lines[0] != "aaaaaaaaaa" {
		t.Errorf("line above the overlay changed: %q", lines[0])
	}
	if got := ansi.StringWidth(ansi.Strip(lines[1])); got != 10 {
		t.Errorf("spliced line visible width = %d, want 10", got)
	}
	if stripped := ansi.Strip(lines[1]); stripped != "bbXXXbbbbb" {
		t.Errorf("spliced line = %q, want prefix and suffix preserved", stripped)
	}
}

func TestSpliceOverlayIgnoresOutOfRangeRows(t *testing.T) {
	view := "only line"
	spliced := spliceOverlay(view, []string{"A", "B", "C"}, 0, -1)
	lines := strings.Split(spliced, "\n")
	if len(lines) != 1 {
		t.Errorf("overlay must not grow the view: %d lines", len(lines))
	}
}

func TestRowMenuLinesHaveEqualWidth(t *testing.T) {
	menu := &rowMenu{actions: activityMenuActions}
	lines := menu.render(DefaultTheme)
	if len(lines) != len(activityMenuActions) {
		t.Fatalf("render produced %d lines, want %d", len(lines), len(activityMenuActions))
	}
	want := ansi.StringWidth(lines[0])
	for index, line := range lines {
		if got := ansi.StringWidth(line); got != want {
			t.Errorf("line %d width = %d, want %d", index, got, want)
		}
	}
}

func TestRowMenuCursorWraps(t *testing.T) {
	menu := &rowMenu{actions: commandeMenuActions}
	menu.moveUp()
	if menu.selected() != actionTitulaire {
		t.Errorf("selected = %v, want wrap to the last action", menu.selected())
	}
	menu.moveDown()
	if menu.selected() != actionSoumissionnaires {
		t.Errorf("selected = %v, want wrap back to the first action", menu.selected())
	}
}
