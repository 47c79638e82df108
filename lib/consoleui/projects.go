// Copyright 2026 The PMIS Authors
// SPDX-License-Identifier: Apache-2.0

package consoleui

import (
	"context"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pmisuite/pmis/lib/apiclient"
	"github.com/pmisuite/pmis/lib/session"
)

// projectsPage lists every project and opens the detail page on
// confirmation. The quick list is reloaded on each visit.
type projectsPage struct {
	client *apiclient.Client
	store  *session.Store

	loader tableLoader
}

func newProjectsPage(client *apiclient.Client, store *session.Store) projectsPage {
	return projectsPage{
		client: client,
		store:  store,
		loader: newTableLoader("projects-list"),
	}
}

// enter starts the quick-list load for a fresh visit.
func (page *projectsPage) enter() tea.Cmd {
	client := page.client
	token := page.store.Token()
	return page.loader.load(func(ctx context.Context) (tableData, error) {
		projects, err := client.ListProjectsLite(ctx, token)
		if err != nil {
			return tableData{}, err
		}
		rows := make([][]string, 0, len(projects))
		for _, project := range projects {
			rows = append(rows, []string{strconv.Itoa(project.ID), project.Code})
		}
		return tableData{Columns: []string{"ID", "Code projet"}, Rows: rows}, nil
	})
}

// selectedID returns the project under the cursor, or 0. The ID rides
// in the first table column; the loader carries no typed rows.
func (page *projectsPage) selectedID() int {
	rows := page.loader.data.Rows
	if page.loader.cursor < 0 || page.loader.cursor >= len(rows) {
		return 0
	}
	id, err := strconv.Atoi(rows[page.loader.cursor][0])
	if err != nil {
		return 0
	}
	return id
}

// handleKey processes list movement. Confirmation is handled by the
// model (it triggers navigation).
func (page *projectsPage) handleKey(msg tea.KeyMsg, keys KeyMap) {
	switch msg.String() {
	case "k", "up":
		page.loader.moveCursor(-1)
	case "j", "down":
		page.loader.moveCursor(1)
	case "ctrl+u", "pgup":
		page.loader.moveCursor(-10)
	case "ctrl+d", "pgdown":
		page.loader.moveCursor(10)
	}
}

func (page *projectsPage) view(theme Theme, width, height int) string {
	return page.loader.view(theme, width, height-2)
}
