// Copyright 2026 The PMIS Authors
// SPDX-License-Identifier: Apache-2.0

package consoleui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pmisuite/pmis/lib/apiclient"
	"github.com/pmisuite/pmis/lib/session"
)

// homePage is the navigation hub: the signed-in identity plus the
// reachable pages. Stateless — navigation keys are handled by the
// model's global shortcuts.
type homePage struct{}

func (homePage) view(theme Theme, current *session.Session, width int) string {
	accent := lipgloss.NewStyle().Foreground(theme.AccentText).Bold(true)
	faint := lipgloss.NewStyle().Foreground(theme.FaintText)
	normal := lipgloss.NewStyle().Foreground(theme.NormalText)

	var body strings.Builder
	body.WriteString(accent.Render("Console PMIS"))
	body.WriteString("\n\n")

	if current != nil {
		role := "consultation"
		if current.Role == apiclient.RoleAdmin {
			role = "administrateur"
		}
		body.WriteString(normal.Render(fmt.Sprintf("Connecté: %s", current.Username)))
		body.WriteString(faint.Render(fmt.Sprintf("  (%s)", role)))
		body.WriteString("\n\n")
	}

	entries := []struct {
		key   string
		label string
	}{
		{"1", RouteProjects.String()},
		{"2", RoutePilot.String()},
		{"3", RouteTransactions.String()},
		{"4", RouteAdmin.String() + " (admin)"},
	}
	for _, entry := range entries {
		body.WriteString(accent.Render(" "+entry.key+" "))
		body.WriteString(normal.Render(" " + entry.label))
		body.WriteString("\n")
	}
	body.WriteString("\n")
	body.WriteString(faint.Render("C-l déconnexion · q quitter"))

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.BorderColor).
		Padding(1, 3).
		Render(body.String())
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, box)
}
