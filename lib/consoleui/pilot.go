// Copyright 2026 The PMIS Authors
// SPDX-License-Identifier: Apache-2.0

package consoleui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pmisuite/pmis/lib/apiclient"
	"github.com/pmisuite/pmis/lib/cascade"
	"github.com/pmisuite/pmis/lib/session"
)

// pilotTab identifies one tab of the events pilot page.
type pilotTab int

const (
	pilotTabProjet pilotTab = iota
	pilotTabActivites
	pilotTabPersonnels
	pilotTabCommandes
	pilotTabSoumissionnaires
	pilotTabTransactions
)

// pilotTabCount is the number of pilot tabs.
const pilotTabCount = 6

func (tab pilotTab) String() string {
	switch tab {
	case pilotTabProjet:
		return "Projet"
	case pilotTabActivites:
		return "Activités"
	case pilotTabPersonnels:
		return "Personnels"
	case pilotTabCommandes:
		return "Commandes"
	case pilotTabSoumissionnaires:
		return "Soumissionnaires"
	case pilotTabTransactions:
		return "Transactions"
	default:
		return "?"
	}
}

// pilotPage is the events pilot: a project picker plus six entity
// tabs. Each entity tab owns one cascade controller; switching tabs
// never cancels another tab's in-flight fetches — a hidden tab's
// results simply apply without being rendered. Changing the picked
// project reloads every controller.
type pilotPage struct {
	client *apiclient.Client
	store  *session.Store

	picker      projectPicker
	projectID   int
	projectCode string

	activeTab pilotTab

	// The project tab has no intermediate selection; it lists the
	// project's own events through a one-shot loader.
	projectEvents tableLoader

	activities       *cascade.Controller
	personnels       *cascade.Controller
	commandes        *cascade.Controller
	soumissionnaires *cascade.Controller
	transactions     *cascade.Controller

	// eventCursor tracks the highlighted event row per tab, for the
	// document drill-down. Clamped against the live list on use.
	eventCursor map[pilotTab]int
}

func newPilotPage(client *apiclient.Client, store *session.Store) pilotPage {
	page := pilotPage{
		client:        client,
		store:         store,
		picker:        newProjectPicker("pilot-picker"),
		projectEvents: newTableLoader("pilot-project-events"),
		eventCursor:   make(map[pilotTab]int),
	}

	token := store.Token

	page.activities = cascade.New(cascade.Config{
		ID: "pilot-activites",
		FetchOptions: func(ctx context.Context, projectID int) ([]cascade.Option, error) {
			rows, err := client.ProjectActivities(ctx, token(), projectID)
			return asOptions(rows), err
		},
		FetchEvents: func(ctx context.Context, activityID int) ([]apiclient.Event, error) {
			return client.ActivityEvents(ctx, token(), activityID)
		},
	})

	// The upstream personnel list returns duplicate rows for the same
	// person; this instantiation dedupes.
	page.personnels = cascade.New(cascade.Config{
		ID: "pilot-personnels",
		FetchOptions: func(ctx context.Context, projectID int) ([]cascade.Option, error) {
			rows, err := client.ProjectPersonnelsLite(ctx, token(), projectID)
			return asOptions(rows), err
		},
		FetchEvents: func(ctx context.Context, personnelID int) ([]apiclient.Event, error) {
			return client.PersonnelEvents(ctx, token(), personnelID)
		},
		DedupeByID: true,
	})

	page.commandes = cascade.New(cascade.Config{
		ID: "pilot-commandes",
		FetchOptions: func(ctx context.Context, projectID int) ([]cascade.Option, error) {
			rows, err := client.ProjectCommandesLite(ctx, token(), projectID)
			return asOptions(rows), err
		},
		FetchEvents: func(ctx context.Context, commandeID int) ([]apiclient.Event, error) {
			return client.CommandeEvents(ctx, token(), commandeID)
		},
	})

	page.soumissionnaires = cascade.New(cascade.Config{
		ID: "pilot-soumissionnaires",
		FetchOptions: func(ctx context.Context, projectID int) ([]cascade.Option, error) {
			rows, err := client.ProjectSoumissionnairesLite(ctx, token(), projectID)
			return asOptions(rows), err
		},
		FetchEvents: func(ctx context.Context, soumissionnaireID int) ([]apiclient.Event, error) {
			return client.SoumissionnaireEvents(ctx, token(), soumissionnaireID)
		},
	})

	page.transactions = cascade.New(cascade.Config{
		ID: "pilot-transactions",
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

// asOptions converts a typed entity slice into the cascade option
// interface slice.
func asOptions[T cascade.Option](rows []T) []cascade.Option {
	options := make([]cascade.Option, len(rows))
	for index, row := range rows {
		options[index] = row
	}
	return options
}

// controllers returns every cascade controller on the page.
func (page *pilotPage) controllers() []*cascade.Controller {
	return []*cascade.Controller{
		page.activities,
		page.personnels,
		page.commandes,
		page.soumissionnaires,
		page.transactions,
	}
}

// controllerForTab returns the active tab's controller, or nil for the
// project tab.
func (page *pilotPage) controllerForTab() *cascade.Controller {
	switch page.activeTab {
	case pilotTabActivites:
		return page.activities
	case pilotTabPersonnels:
		return page.personnels
	case pilotTabCommandes:
		return page.commandes
	case pilotTabSoumissionnaires:
		return page.soumissionnaires
	case pilotTabTransactions:
		return page.transactions
	default:
		return nil
	}
}

// setProject switches the working project and reloads everything.
func (page *pilotPage) setProject(project apiclient.ProjectLite) tea.Cmd {
	page.projectID = project.ID
	page.projectCode = project.Code
	page.eventCursor = make(map[pilotTab]int)

	commands := []tea.Cmd{page.loadProjectEvents()}
	for _, controller := range page.controllers() {
		commands = append(commands, controller.Reload(project.ID))
	}
	return tea.Batch(commands...)
}

// loadProjectEvents starts the project tab's own events fetch.
func (page *pilotPage) loadProjectEvents() tea.Cmd {
	client := page.client
	token := page.store.Token()
	projectID := page.projectID
	return page.projectEvents.load(func(ctx context.Context) (tableData, error) {
		events, err := client.ProjectEvents(ctx, token, projectID)
		if err != nil {
			return tableData{}, err
		}
		return eventsTable(events), nil
	})
}

// applyOptions routes an options result to whichever controller owns
// it; the others ignore it by ID.
func (page *pilotPage) applyOptions(msg cascade.OptionsResult) tea.Cmd {
	var commands []tea.Cmd
	for _, controller := range page.controllers() {
		if cmd := controller.ApplyOptions(msg); cmd != nil {
			commands = append(commands, cmd)
		}
	}
	return tea.Batch(commands...)
}

// applyEvents routes a dependent result to its controller.
func (page *pilotPage) applyEvents(msg cascade.EventsResult) {
	for _, controller := range page.controllers() {
		controller.ApplyEvents(msg)
	}
}

// currentEvents returns the event list shown on the active tab.
func (page *pilotPage) currentEvents() []apiclient.Event {
	if controller := page.controllerForTab(); controller != nil {
		return controller.Events()
	}
	// Project tab: the loader holds rendered rows, not typed events;
	// drill-down uses highlightedEvent instead.
	return nil
}

// highlightedEventID returns the event under the cursor on the active
// tab, or 0. The project tab carries the ID in its first table column.
func (page *pilotPage) highlightedEventID() int {
	if page.activeTab == pilotTabProjet {
		return tableEventID(&page.projectEvents)
	}
	events := page.currentEvents()
	cursor := page.clampedEventCursor(len(events))
	if cursor < 0 {
		return 0
	}
	return events[cursor].ID
}

// highlightedEventLabel names the highlighted event for modal titles.
func (page *pilotPage) highlightedEventLabel() string {
	if page.activeTab == pilotTabProjet {
		return tableEventLabel(&page.projectEvents)
	}
	events := page.currentEvents()
	cursor := page.clampedEventCursor(len(events))
	if cursor < 0 {
		return ""
	}
	return events[cursor].Type
}

func (page *pilotPage) clampedEventCursor(total int) int {
	if total == 0 {
		return -1
	}
	cursor := page.eventCursor[page.activeTab]
	if cursor < 0 {
		cursor = 0
	}
	if cursor >= total {
		cursor = total - 1
	}
	return cursor
}

// handleKey processes one key while no overlay is open. The model has
// already consumed global shortcuts.
func (page *pilotPage) handleKey(msg tea.KeyMsg, keys KeyMap) tea.Cmd {
	switch msg.String() {
	case "tab", "l", "right":
		page.activeTab = (page.activeTab + 1) % pilotTabCount
		return nil
	case "shift+tab", "h", "left":
		page.activeTab = (page.activeTab + pilotTabCount - 1) % pilotTabCount
		return nil
	case "k", "up":
		if page.activeTab == pilotTabProjet {
			page.projectEvents.moveCursor(-1)
			return nil
		}
		return page.controllerForTab().SelectPrevious()
	case "j", "down":
		if page.activeTab == pilotTabProjet {
			page.projectEvents.moveCursor(1)
			return nil
		}
		return page.controllerForTab().SelectNext()
	case "K", "shift+up":
		page.moveEventCursor(-1)
		return nil
	case "J", "shift+down":
		page.moveEventCursor(1)
		return nil
	}
	return nil
}

func (page *pilotPage) moveEventCursor(offset int) {
	if page.activeTab == pilotTabProjet {
		page.projectEvents.moveCursor(offset)
		return
	}
	total := len(page.currentEvents())
	cursor := page.clampedEventCursor(total)
	if cursor < 0 {
		return
	}
	cursor += offset
	if cursor < 0 {
		cursor = 0
	}
	if cursor >= total {
		cursor = total - 1
	}
	page.eventCursor[page.activeTab] = cursor
}

// view renders the pilot page: project line, tab bar, then either the
// project events table or the option pane + events pane split.
func (page *pilotPage) view(theme Theme, width, height int) string {
	var body strings.Builder

	faint := lipgloss.NewStyle().Foreground(theme.FaintText)
	if page.projectID == 0 {
		body.WriteString(faint.Render("Aucun projet choisi — appuyez sur p"))
		return body.String()
	}
	body.WriteString(lipgloss.NewStyle().Foreground(theme.AccentText).Bold(true).
		Render("Projet " + page.projectCode))
	body.WriteString(faint.Render("  (p pour changer)"))
	body.WriteString("\n")
	body.WriteString(renderTabBar(theme, page.tabLabels(), int(page.activeTab)))
	body.WriteString("\n\n")

	contentHeight := height - 4
	if page.activeTab == pilotTabProjet {
		body.WriteString(page.projectEvents.view(theme, width, contentHeight))
		return body.String()
	}

	controller := page.controllerForTab()
	optionPane := renderOptionPane(theme, controller, width/3, contentHeight)
	eventsPane := renderEventsPane(theme, controller, page.clampedEventCursor(len(controller.Events())), width-width/3-3, contentHeight)
	body.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, optionPane, " │ ", eventsPane))
	return body.String()
}

func (page *pilotPage) tabLabels() []string {
	labels := make([]string, pilotTabCount)
	for index := 0; index < pilotTabCount; index++ {
		labels[index] = pilotTab(index).String()
	}
	return labels
}

// renderTabBar renders a one-line tab bar with the active tab accented.
func renderTabBar(theme Theme, labels []string, active int) string {
	activeStyle := lipgloss.NewStyle().Foreground(theme.TabActive).Bold(true)
	inactiveStyle := lipgloss.NewStyle().Foreground(theme.TabInactive)

	parts := make([]string, 0, len(labels))
	for index, label := range labels {
		if index == active {
			parts = append(parts, activeStyle.Render("["+label+"]"))
		} else {
			parts = append(parts, inactiveStyle.Render(" "+label+" "))
		}
	}
	return strings.Join(parts, " ")
}

// renderOptionPane renders a controller's option list with the current
// selection highlighted.
func renderOptionPane(theme Theme, controller *cascade.Controller, width, maxRows int) string {
	faint := lipgloss.NewStyle().Foreground(theme.FaintText)
	if controller.OptionsLoading() {
		return faint.Render("chargement…")
	}
	if message := controller.OptionsError(); message != "" {
		return lipgloss.NewStyle().Foreground(theme.ErrorText).Render("erreur: " + message)
	}
	options := controller.Options()
	if len(options) == 0 {
		return faint.Render("aucun élément")
	}

	selectedStyle := lipgloss.NewStyle().
		Background(theme.SelectedBackground).
		Foreground(theme.SelectedForeground)
	normal := lipgloss.NewStyle().Foreground(theme.NormalText)

	first, last := visibleWindow(controller.SelectedIndex(), len(options), maxRows)
	var lines []string
	for index := first; index < last; index++ {
		label := options[index].OptionLabel()
		if index == controller.SelectedIndex() {
			lines = append(lines, selectedStyle.Render(truncatePad("> "+label, width)))
		} else {
			lines = append(lines, normal.Render(truncatePad("  "+label, width)))
		}
	}
	return strings.Join(lines, "\n")
}

// renderEventsPane renders a controller's dependent events with the
// drill-down cursor highlighted.
func renderEventsPane(theme Theme, controller *cascade.Controller, cursor, width, maxRows int) string {
	faint := lipgloss.NewStyle().Foreground(theme.FaintText)
	if controller.EventsLoading() {
		return faint.Render("chargement des évènements…")
	}
	if message := controller.EventsError(); message != "" {
		return lipgloss.NewStyle().Foreground(theme.ErrorText).Render("erreur: " + message)
	}
	events := controller.Events()
	if len(events) == 0 {
		return faint.Render("aucun évènement")
	}

	selectedStyle := lipgloss.NewStyle().
		Background(theme.SelectedBackground).
		Foreground(theme.SelectedForeground)

	first, last := visibleWindow(cursor, len(events), maxRows)
	var lines []string
	for index := first; index < last; index++ {
		event := events[index]
		statusStyle := lipgloss.NewStyle().Foreground(theme.EventStatusColor(stringValue(event.Status)))
		line := fmt.Sprintf("%-12s %s %s",
			stringValue(event.Date),
			event.Type,
			statusStyle.Render(stringValue(event.Status)),
		)
		if index == cursor {
			lines = append(lines, selectedStyle.Render(truncatePad("> "+line, width)))
		} else {
			lines = append(lines, truncatePad("  "+line, width))
		}
	}
	lines = append(lines, faint.Render("J/K évènement · d documents"))
	return strings.Join(lines, "\n")
}

// eventsTable converts typed events into loader table form. The ID
// rides in the first column so drill-down can recover it.
func eventsTable(events []apiclient.Event) tableData {
	rows := make([][]string, 0, len(events))
	for _, event := range events {
		rows = append(rows, []string{
			fmt.Sprintf("%d", event.ID),
			event.Type,
			stringValue(event.Date),
			stringValue(event.PlannedDate),
			stringValue(event.Status),
			stringValue(event.Description),
		})
	}
	return tableData{
		Columns: []string{"ID", "Type", "Date", "Prévue", "Statut", "Description"},
		Rows:    rows,
	}
}

// tableEventID recovers the event ID from a loader built by
// eventsTable.
func tableEventID(loader *tableLoader) int {
	rows := loader.data.Rows
	if loader.cursor < 0 || loader.cursor >= len(rows) || len(rows[loader.cursor]) == 0 {
		return 0
	}
	var id int
	if _, err := fmt.Sscanf(rows[loader.cursor][0], "%d", &id); err != nil {
		return 0
	}
	return id
}

// tableEventLabel recovers the event type column for modal titles.
func tableEventLabel(loader *tableLoader) string {
	rows := loader.data.Rows
	if loader.cursor < 0 || loader.cursor >= len(rows) || len(rows[loader.cursor]) < 2 {
		return ""
	}
	return rows[loader.cursor][1]
}

// stringValue dereferences an optional string field.
func stringValue(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

// truncatePad fits a line to an exact visible width.
func truncatePad(line string, width int) string {
	return joinCells([]string{line}, []int{width})
}
