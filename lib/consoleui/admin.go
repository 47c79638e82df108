// Copyright 2026 The PMIS Authors
// SPDX-License-Identifier: Apache-2.0

package consoleui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// adminTables is the database surface exposed to administrators, in
// the order the backend presents them.
var adminTables = []string{
	"projets",
	"activites",
	"personnels",
	"commandes",
	"soumissionnaires",
	"transactions",
	"evenements",
	"documents",
	"departements",
	"sites",
}

// adminPage is the role-restricted administrative browser: a list of
// database tables. Reaching it at all means the admin guard allowed
// the navigation; the guard, not this page, enforces the role.
type adminPage struct {
	cursor int
}

func (page *adminPage) moveCursor(offset int) {
	page.cursor += offset
	if page.cursor < 0 {
		page.cursor = 0
	}
	if page.cursor >= len(adminTables) {
		page.cursor = len(adminTables) - 1
	}
}

func (page *adminPage) view(theme Theme, width int) string {
	accent := lipgloss.NewStyle().Foreground(theme.AccentText).Bold(true)
	faint := lipgloss.NewStyle().Foreground(theme.FaintText)
	normal := lipgloss.NewStyle().Foreground(theme.NormalText)
	selected := lipgloss.NewStyle().
		Background(theme.SelectedBackground).
		Foreground(theme.SelectedForeground)

	var body strings.Builder
	body.WriteString(accent.Render("Base de données"))
	body.WriteString("\n")
	body.WriteString(faint.Render("tables administrables"))
	body.WriteString("\n\n")
	for index, table := range adminTables {
		if index == page.cursor {
			body.WriteString(selected.Render("> " + table))
		} else {
			body.WriteString(normal.Render("  " + table))
		}
		body.WriteString("\n")
	}
	return body.String()
}

// accessDeniedView is rendered when the admin guard returns a denial:
// it names the restriction and the way back.
func accessDeniedView(theme Theme, width int) string {
	body := lipgloss.NewStyle().Foreground(theme.ErrorText).Bold(true).Render("Accès refusé") +
		"\n\n" +
		lipgloss.NewStyle().Foreground(theme.NormalText).Render("Cette page est réservée au rôle administrateur.") +
		"\n" +
		lipgloss.NewStyle().Foreground(theme.HelpText).Render("0 pour revenir à l'accueil")

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.AlertBorder).
		Padding(1, 3).
		Render(body)
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, box)
}
