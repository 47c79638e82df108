// Copyright 2026 The PMIS Authors
// SPDX-License-Identifier: Apache-2.0

package consoleui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pmisuite/pmis/lib/apiclient"
	"github.com/pmisuite/pmis/lib/cascade"
	"github.com/pmisuite/pmis/lib/session"
)

// transactionsPage browses a project's financial transactions and the
// events attached to each: one project picker plus one cascade
// controller.
type transactionsPage struct {
	client *apiclient.Client
	store  *session.Store

	picker      projectPicker
	projectID   int
	projectCode string

	controller  *cascade.Controller
	eventCursor int
}

func newTransactionsPage(client *apiclient.Client, store *session.Store) transactionsPage {
	token := store.Token
	page := transactionsPage{
		client: client,
		store:  store,
		picker: newProjectPicker("transactions-picker"),
	}
	page.controller = cascade.New(cascade.Config{
		ID: "transactions-page",
		FetchOptions: func(ctx context.Context, projectID int) ([]cascade.Option, error) {
			rows, err := client.ProjectTransactions(ctx, token(), projectID, "projet")
			return asOptions(rows), err
		},
		FetchEvents: func(ctx context.Context, transactionID int) ([]apiclient.Event, error) {
			return client.TransactionEvents(ctx, token(), transactionID)
		},
	})
	return page
}

// setProject switches the working project and reloads the controller.
func (page *transactionsPage) setProject(project apiclient.ProjectLite) tea.Cmd {
	page.projectID = project.ID
	page.projectCode = project.Code
	page.eventCursor = 0
	return page.controller.Reload(project.ID)
}

func (page *transactionsPage) clampedEventCursor() int {
	total := len(page.controller.Events())
	if total == 0 {
		return -1
	}
	cursor := page.eventCursor
	if cursor < 0 {
		cursor = 0
	}
	if cursor >= total {
		cursor = total - 1
	}
	return cursor
}

// highlightedEventID returns the event under the drill-down cursor.
func (page *transactionsPage) highlightedEventID() int {
	cursor := page.clampedEventCursor()
	if cursor < 0 {
		return 0
	}
	return page.controller.Events()[cursor].ID
}

func (page *transactionsPage) highlightedEventLabel() string {
	cursor := page.clampedEventCursor()
	if cursor < 0 {
		return ""
	}
	return page.controller.Events()[cursor].Type
}

func (page *transactionsPage) handleKey(msg tea.KeyMsg, keys KeyMap) tea.Cmd {
	switch msg.String() {
	case "k", "up":
		return page.controller.SelectPrevious()
	case "j", "down":
		return page.controller.SelectNext()
	case "K", "shift+up":
		page.moveEventCursor(-1)
	case "J", "shift+down":
		page.moveEventCursor(1)
	}
	return nil
}

func (page *transactionsPage) moveEventCursor(offset int) {
	cursor := page.clampedEventCursor()
	if cursor < 0 {
		return
	}
	cursor += offset
	total := len(page.controller.Events())
	if cursor < 0 {
		cursor = 0
	}
	if cursor >= total {
		cursor = total - 1
	}
	page.eventCursor = cursor
}

func (page *transactionsPage) view(theme Theme, width, height int) string {
	faint := lipgloss.NewStyle().Foreground(theme.FaintText)
	if page.projectID == 0 {
		return faint.Render("Aucun projet choisi — appuyez sur p")
	}

	var body strings.Builder
	body.WriteString(lipgloss.NewStyle().Foreground(theme.AccentText).Bold(true).
		Render("Transactions — projet " + page.projectCode))
	body.WriteString(faint.Render("  (p pour changer)"))
	body.WriteString("\n\n")

	contentHeight := height - 3
	optionPane := renderOptionPane(theme, page.controller, width/2, contentHeight)
	eventsPane := renderEventsPane(theme, page.controller, page.clampedEventCursor(), width-width/2-3, contentHeight)
	body.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, optionPane, " │ ", eventsPane))
	return body.String()
}
