// Copyright 2026 The PMIS Authors
// SPDX-License-Identifier: Apache-2.0

package consoleui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the console.
type KeyMap struct {
	// Navigation within lists and menus.
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding

	// Tab switching on the pilot and detail pages.
	NextTab     key.Binding
	PreviousTab key.Binding

	// Selection and dismissal.
	Confirm key.Binding
	Back    key.Binding

	// Page shortcuts from the home screen and header bar.
	GoHome         key.Binding
	GoProjects     key.Binding
	GoPilot        key.Binding
	GoTransactions key.Binding
	GoAdmin        key.Binding

	// Project picker.
	PickProject key.Binding

	// Row menu on the detail page, documents on event rows.
	RowMenu   key.Binding
	Documents key.Binding

	// Document modal actions.
	OpenDocument     key.Binding
	DownloadDocument key.Binding

	Logout key.Binding
	Quit   key.Binding
}

// DefaultKeyMap is the built-in key binding set. Vim-style movement
// alongside arrow keys, digits for page shortcuts.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("ctrl+u", "pgup"),
		key.WithHelp("C-u", "page up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("ctrl+d", "pgdown"),
		key.WithHelp("C-d", "page down"),
	),
	NextTab: key.NewBinding(
		key.WithKeys("tab", "l", "right"),
		key.WithHelp("Tab", "next tab"),
	),
	PreviousTab: key.NewBinding(
		key.WithKeys("shift+tab", "h", "left"),
		key.WithHelp("S-Tab", "previous tab"),
	),
	Confirm: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("Enter", "select"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("Esc", "back"),
	),
	GoHome: key.NewBinding(
		key.WithKeys("0"),
		key.WithHelp("0", "home"),
	),
	GoProjects: key.NewBinding(
		key.WithKeys("1"),
		key.WithHelp("1", "projets"),
	),
	GoPilot: key.NewBinding(
		key.WithKeys("2"),
		key.WithHelp("2", "pilotage"),
	),
	GoTransactions: key.NewBinding(
		key.WithKeys("3"),
		key.WithHelp("3", "transactions"),
	),
	GoAdmin: key.NewBinding(
		key.WithKeys("4"),
		key.WithHelp("4", "admin"),
	),
	PickProject: key.NewBinding(
		key.WithKeys("p", "/"),
		key.WithHelp("p", "choisir un projet"),
	),
	RowMenu: key.NewBinding(
		key.WithKeys("m", "enter"),
		key.WithHelp("m", "menu"),
	),
	Documents: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "documents"),
	),
	OpenDocument: key.NewBinding(
		key.WithKeys("o", "enter"),
		key.WithHelp("o", "ouvrir"),
	),
	DownloadDocument: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "télécharger"),
	),
	Logout: key.NewBinding(
		key.WithKeys("ctrl+l"),
		key.WithHelp("C-l", "déconnexion"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quitter"),
	),
}
