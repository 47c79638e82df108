// Copyright 2026 The PMIS Authors
// SPDX-License-Identifier: Apache-2.0

// Package consoleui is the terminal front end of the PMIS console.
//
// One bubbletea [Model] owns the whole screen: a route table with
// access guards, one page struct per route, a status bar fed by a
// slog handler, and two overlay layers (the floating row menus and
// the document modal / blocking alert). All state mutation happens on
// the bubbletea update loop; network work runs as tea.Cmd goroutines
// whose results re-enter Update as messages and are discarded on
// arrival when stale.
package consoleui
