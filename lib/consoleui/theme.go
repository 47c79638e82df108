// Copyright 2026 The PMIS Authors
// SPDX-License-Identifier: Apache-2.0

package consoleui

import "github.com/charmbracelet/lipgloss"

// Theme defines the console's color palette. All colors are lipgloss
// ANSI 256-color codes for broad terminal compatibility.
type Theme struct {
	// Text colors.
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	// Selected row.
	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	// UI chrome.
	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color
	AccentText       lipgloss.Color

	// Active versus inactive tab labels.
	TabActive   lipgloss.Color
	TabInactive lipgloss.Color

	// Status bar log levels.
	WarningText lipgloss.Color
	ErrorText   lipgloss.Color

	// Floating menus and modals.
	MenuBackground  lipgloss.Color
	ModalBorder     lipgloss.Color
	AlertBorder     lipgloss.Color
	ModalBackground lipgloss.Color

	// Event status accents.
	StatusDone    lipgloss.Color
	StatusPending lipgloss.Color
	StatusLate    lipgloss.Color
}

// EventStatusColor maps an event status string to its accent color.
// The backend vocabulary is French; unknown values render faint.
func (theme Theme) EventStatusColor(status string) lipgloss.Color {
	switch status {
	case "Réalisé", "Realisé", "Terminé":
		return theme.StatusDone
	case "En attente", "Prévu", "En cours":
		return theme.StatusPending
	case "En retard", "Annulé":
		return theme.StatusLate
	default:
		return theme.FaintText
	}
}

// DefaultTheme is the built-in dark-terminal color scheme.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	HelpText:         lipgloss.Color("241"),
	AccentText:       lipgloss.Color("75"), // blue

	TabActive:   lipgloss.Color("220"), // amber
	TabInactive: lipgloss.Color("245"),

	WarningText: lipgloss.Color("220"),
	ErrorText:   lipgloss.Color("196"),

	MenuBackground:  lipgloss.Color("237"),
	ModalBorder:     lipgloss.Color("75"),
	AlertBorder:     lipgloss.Color("196"),
	ModalBackground: lipgloss.Color("235"),

	StatusDone:    lipgloss.Color("114"), // green
	StatusPending: lipgloss.Color("220"), // amber
	StatusLate:    lipgloss.Color("196"), // red
}
