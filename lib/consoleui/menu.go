// Copyright 2026 The PMIS Authors
// SPDX-License-Identifier: Apache-2.0

package consoleui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// menuAction identifies one entry of a floating row menu. The set
// depends on the row's entity family: activities offer the sub-panel
// actions, procurement orders offer theirs.
type menuAction int

const (
	actionZone menuAction = iota
	actionSuivi
	actionResponsabilite
	actionExercice
	actionEvenements
	actionTransactions
	actionSoumissionnaires
	actionTitulaire
)

// label returns the French display text shown in the menu.
func (action menuAction) label() string {
	switch action {
	case actionZone:
		return "Zone d'implantation"
	case actionSuivi:
		return "Suivi"
	case actionResponsabilite:
		return "Responsabilité"
	case actionExercice:
		return "Exercice fiscal"
	case actionEvenements:
		return "Évènements"
	case actionTransactions:
		return "Transactions"
	case actionSoumissionnaires:
		return "Soumissionnaires"
	case actionTitulaire:
		return "Titulaire"
	default:
		return "?"
	}
}

// activityMenuActions is the contextual menu for an activity row.
var activityMenuActions = []menuAction{
	actionZone,
	actionSuivi,
	actionResponsabilite,
	actionExercice,
	actionEvenements,
	actionTransactions,
}

// commandeMenuActions is the contextual menu for a procurement-order row.
var commandeMenuActions = []menuAction{
	actionSoumissionnaires,
	actionTitulaire,
}

// rowMenu is a floating contextual menu anchored to a table row. At
// most one is open at a time; the owning page holds it (nil when
// closed) and routes all keyboard input to it while open.
type rowMenu struct {
	actions []menuAction
	cursor  int

	// Anchor in screen coordinates for overlay splicing.
	anchorX int
	anchorY int

	// The entity the menu acts on.
	entityID    int
	entityLabel string
}

// moveUp moves the cursor up by one, wrapping to the bottom.
func (menu *rowMenu) moveUp() {
	menu.cursor--
	if menu.cursor < 0 {
		menu.cursor = len(menu.actions) - 1
	}
}

// moveDown moves the cursor down by one, wrapping to the top.
func (menu *rowMenu) moveDown() {
	menu.cursor++
	if menu.cursor >= len(menu.actions) {
		menu.cursor = 0
	}
}

// selected returns the highlighted action.
func (menu *rowMenu) selected() menuAction {
	return menu.actions[menu.cursor]
}

// width returns the menu's total visible width in columns.
func (menu *rowMenu) width() int {
	widest := 0
	for _, action := range menu.actions {
		if labelWidth := ansi.StringWidth(action.label()); labelWidth > widest {
			widest = labelWidth
		}
	}
	// " > LABEL " with one column of padding on each side.
	return widest + 5
}

// render produces the menu lines for overlay splicing, all of equal
// visible width with a solid background.
func (menu *rowMenu) render(theme Theme) []string {
	totalWidth := menu.width()

	background := lipgloss.NewStyle().
		Background(theme.MenuBackground).
		Foreground(theme.NormalText)
	highlighted := lipgloss.NewStyle().
		Background(theme.SelectedBackground).
		Foreground(theme.SelectedForeground)

	lines := make([]string, 0, len(menu.actions))
	for index, action := range menu.actions {
		marker := "  "
		style := background
		if index == menu.cursor {
			marker = "> "
			style = highlighted
		}

		content := " " + marker + action.label()
		if padding := totalWidth - ansi.StringWidth(content); padding > 0 {
			content += strings.Repeat(" ", padding)
		}
		lines = append(lines, style.Render(content))
	}
	return lines
}
