// Copyright 2026 The PMIS Authors
// SPDX-License-Identifier: Apache-2.0

package consoleui

import (
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pmisuite/pmis/lib/apiclient"
	"github.com/pmisuite/pmis/lib/cascade"
	"github.com/pmisuite/pmis/lib/config"
	"github.com/pmisuite/pmis/lib/session"
)

// alertState is the blocking alert overlay. While visible it captures
// all input; any key dismisses it.
type alertState struct {
	visible bool
	title   string
	message string
}

// Model is the top-level bubbletea model for the console.
type Model struct {
	client        *apiclient.Client
	store         *session.Store
	configuration *config.Config
	logger        *slog.Logger

	theme Theme
	keys  KeyMap

	width  int
	height int
	ready  bool

	// Current route, access-denied flag for the page, and the origin
	// captured when an unauthenticated navigation bounced to login.
	route     Route
	denied    bool
	returnTo  Route
	hasOrigin bool

	login        loginPage
	home         homePage
	projects     projectsPage
	detail       detailPage
	pilot        pilotPage
	transactions transactionsPage
	admin        adminPage

	docs  docModal
	alert alertState

	statusMessage string
	statusLevel   slog.Level

	quitting bool
}

// New assembles the console model. The store has already hydrated, so
// the first frame renders the correct page for the session on disk.
func New(client *apiclient.Client, store *session.Store, configuration *config.Config, logger *slog.Logger) Model {
	model := Model{
		client:        client,
		store:         store,
		configuration: configuration,
		logger:        logger,
		theme:         DefaultTheme,
		keys:          DefaultKeyMap,
		login:         newLoginPage(store),
		projects:      newProjectsPage(client, store),
		detail:        newDetailPage(client, store),
		pilot:         newPilotPage(client, store),
		transactions:  newTransactionsPage(client, store),
	}
	if store.Current() != nil {
		model.route = RouteHome
	} else {
		model.route = RouteLogin
	}
	return model
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// navigate applies the guard and switches routes. Returns the entry
// command of the destination page.
func (m *Model) navigate(route Route) tea.Cmd {
	decision := Decide(m.store.Current(), route)
	switch decision.Kind {
	case DecisionDenied:
		m.route = route
		m.denied = true
		return nil

	case DecisionRedirect:
		if decision.To == RouteLogin {
			// Capture the origin so a successful login returns there.
			m.returnTo = decision.From
			m.hasOrigin = true
			m.route = RouteLogin
			m.denied = false
			m.login.reset()
			return nil
		}
		// Redirect away from login: the captured origin wins over home.
		target := decision.To
		if m.hasOrigin {
			target = m.returnTo
			m.hasOrigin = false
		}
		return m.navigate(target)

	default:
		m.route = route
		m.denied = false
		return m.enterRoute(route)
	}
}

// enterRoute runs the destination page's entry work.
func (m *Model) enterRoute(route Route) tea.Cmd {
	switch route {
	case RouteProjects:
		return m.projects.enter()
	case RouteLogin:
		m.login.reset()
	}
	return nil
}

// openProjectDetail navigates to the detail page for one project.
func (m *Model) openProjectDetail(projectID int) tea.Cmd {
	decision := Decide(m.store.Current(), RouteProjectDetail)
	if decision.Kind != DecisionAllow {
		return m.navigate(RouteProjectDetail)
	}
	m.route = RouteProjectDetail
	m.denied = false
	return m.detail.enter(projectID)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case statusLogMsg:
		m.statusMessage = msg.Summary
		m.statusLevel = msg.Level
		return m, tea.Tick(statusLogFadeDelay, func(time.Time) tea.Msg {
			return statusLogFadeMsg{}
		})

	case statusLogFadeMsg:
		m.statusMessage = ""
		return m, nil

	case loginResultMsg:
		if m.login.applyResult(msg) {
			target := RouteHome
			if m.hasOrigin {
				target = m.returnTo
				m.hasOrigin = false
			}
			return m, m.navigate(target)
		}
		return m, nil

	case pickerLoadedMsg:
		m.pilot.picker.applyLoaded(msg)
		m.transactions.picker.applyLoaded(msg)
		return m, nil

	case cascade.OptionsResult:
		commands := []tea.Cmd{m.pilot.applyOptions(msg)}
		if cmd := m.transactions.controller.ApplyOptions(msg); cmd != nil {
			commands = append(commands, cmd)
		}
		return m, tea.Batch(commands...)

	case cascade.EventsResult:
		m.pilot.applyEvents(msg)
		m.transactions.controller.ApplyEvents(msg)
		return m, nil

	case tableResultMsg:
		for _, loader := range m.tableLoaders() {
			if loader.apply(msg) {
				break
			}
		}
		return m, nil

	case detailProjectMsg:
		m.detail.applyProject(msg)
		return m, nil
	case detailActivitiesMsg:
		m.detail.applyActivities(msg)
		return m, nil
	case detailCommandesMsg:
		m.detail.applyCommandes(msg)
		return m, nil

	case docListMsg:
		m.docs.applyList(msg)
		return m, nil

	case downloadResultMsg:
		if msg.Err != nil {
			m.alert = alertState{
				visible: true,
				title:   "Téléchargement impossible",
				message: msg.FileName + ": " + msg.Err.Error(),
			}
			return m, nil
		}
		m.statusMessage = "téléchargé: " + msg.Path
		m.statusLevel = slog.LevelInfo
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// tableLoaders enumerates every loader owned by the model for result
// routing.
func (m *Model) tableLoaders() []*tableLoader {
	return []*tableLoader{
		&m.projects.loader,
		&m.pilot.projectEvents,
		&m.detail.departements,
		&m.detail.personnels,
		&m.detail.panelLoader,
	}
}

// handleKey routes one keypress through the overlay stack, then the
// global shortcuts, then the active page.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The blocking alert captures everything; any key dismisses it.
	if m.alert.visible {
		m.alert = alertState{}
		return m, nil
	}

	// The document modal is next in the stack.
	if m.docs.open {
		switch msg.String() {
		case "esc", "q":
			m.docs.dismiss()
		case "k", "up":
			if m.docs.cursor > 0 {
				m.docs.cursor--
			}
		case "j", "down":
			if m.docs.cursor < len(m.docs.documents)-1 {
				m.docs.cursor++
			}
		case "o", "enter":
			return m, m.docs.openSelected(m.client, m.logger)
		case "s":
			return m, m.docs.downloadSelected(m.client, m.configuration, m.store.Token())
		}
		return m, nil
	}

	// An open project picker captures input for its filter.
	if picker := m.activePicker(); picker != nil && picker.open {
		chosen, cmd := picker.handleKey(msg, m.keys)
		if chosen != nil {
			switch m.route {
			case RoutePilot:
				return m, m.pilot.setProject(*chosen)
			case RouteTransactions:
				return m, m.transactions.setProject(*chosen)
			}
		}
		return m, cmd
	}

	// The login page owns the keyboard while showing.
	if m.route == RouteLogin {
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		return m, m.login.handleKey(msg)
	}

	// Access-denied page: only the way home.
	if m.denied {
		switch msg.String() {
		case "0", "esc", "enter":
			return m, m.navigate(RouteHome)
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	// Global shortcuts. Cases that do not act fall through to the
	// page-local handling below.
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Logout):
		m.store.Logout()
		m.hasOrigin = false
		return m, m.navigate(RouteLogin)
	case key.Matches(msg, m.keys.GoHome):
		return m, m.navigate(RouteHome)
	case key.Matches(msg, m.keys.GoProjects):
		return m, m.navigate(RouteProjects)
	case key.Matches(msg, m.keys.GoPilot):
		return m, m.navigate(RoutePilot)
	case key.Matches(msg, m.keys.GoTransactions):
		return m, m.navigate(RouteTransactions)
	case key.Matches(msg, m.keys.GoAdmin):
		return m, m.navigate(RouteAdmin)
	case key.Matches(msg, m.keys.PickProject):
		if picker := m.activePicker(); picker != nil {
			return m, picker.show(m.client, m.store.Token())
		}
	case key.Matches(msg, m.keys.Documents):
		if cmd := m.openDocuments(); cmd != nil {
			return m, cmd
		}
	case key.Matches(msg, m.keys.Back):
		return m.handleBack()
	case key.Matches(msg, m.keys.Confirm):
		if m.route == RouteProjects {
			if projectID := m.projects.selectedID(); projectID != 0 {
				return m, m.openProjectDetail(projectID)
			}
			return m, nil
		}
	}

	// Page-local keys.
	switch m.route {
	case RouteProjects:
		m.projects.handleKey(msg, m.keys)
		return m, nil
	case RoutePilot:
		return m, m.pilot.handleKey(msg, m.keys)
	case RouteTransactions:
		return m, m.transactions.handleKey(msg, m.keys)
	case RouteProjectDetail:
		return m, m.detail.handleKey(msg, m.keys, m.width)
	case RouteAdmin:
		switch msg.String() {
		case "k", "up":
			m.admin.moveCursor(-1)
		case "j", "down":
			m.admin.moveCursor(1)
		}
		return m, nil
	}
	return m, nil
}

// handleBack implements Esc: close what is open, else step out of the
// page.
func (m Model) handleBack() (tea.Model, tea.Cmd) {
	switch m.route {
	case RouteProjectDetail:
		if m.detail.menu != nil {
			m.detail.closeMenu()
			return m, nil
		}
		if m.detail.panel != nil {
			m.detail.panel = nil
			m.detail.panelLoader.reset()
			return m, nil
		}
		return m, m.navigate(RouteProjects)
	case RouteHome:
		return m, nil
	default:
		return m, m.navigate(RouteHome)
	}
}

// activePicker returns the picker belonging to the current route.
func (m *Model) activePicker() *projectPicker {
	switch m.route {
	case RoutePilot:
		return &m.pilot.picker
	case RouteTransactions:
		return &m.transactions.picker
	default:
		return nil
	}
}

// openDocuments opens the document modal for the highlighted event on
// the current page, if there is one.
func (m *Model) openDocuments() tea.Cmd {
	var eventID int
	var label string
	switch m.route {
	case RoutePilot:
		eventID = m.pilot.highlightedEventID()
		label = m.pilot.highlightedEventLabel()
	case RouteTransactions:
		eventID = m.transactions.highlightedEventID()
		label = m.transactions.highlightedEventLabel()
	case RouteProjectDetail:
		eventID = m.detail.panelEventID()
		label = m.detail.panelEventLabel()
	}
	if eventID == 0 {
		return nil
	}
	return m.docs.show(m.client, m.store.Token(), eventID, label)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready || m.quitting {
		return ""
	}

	contentHeight := m.height - 3
	var content string
	switch {
	case m.denied:
		content = accessDeniedView(m.theme, m.width)
	case m.route == RouteLogin:
		content = m.login.view(m.theme, m.width)
	case m.route == RouteHome:
		content = m.home.view(m.theme, m.store.Current(), m.width)
	case m.route == RouteProjects:
		content = m.projects.view(m.theme, m.width, contentHeight)
	case m.route == RouteProjectDetail:
		content = m.detail.view(m.theme, m.width, contentHeight)
	case m.route == RoutePilot:
		content = m.pilot.view(m.theme, m.width, contentHeight)
	case m.route == RouteTransactions:
		content = m.transactions.view(m.theme, m.width, contentHeight)
	case m.route == RouteAdmin:
		content = m.admin.view(m.theme, m.width)
	}

	view := m.headerView() + "\n" + content
	view = m.padToHeight(view)
	view += "\n" + m.statusView()

	// Overlay stack, bottom to top: floating row menu, project picker,
	// document modal, blocking alert.
	if m.route == RouteProjectDetail && m.detail.menu != nil {
		menu := m.detail.menu
		view = spliceOverlay(view, menu.render(m.theme), menu.anchorX, menu.anchorY)
	}
	if picker := pickerOf(m); picker != nil && picker.open {
		view = centerOverlay(view, picker.render(m.theme), m.width, m.height)
	}
	if m.docs.open {
		view = centerOverlay(view, m.docs.render(m.theme), m.width, m.height)
	}
	if m.alert.visible {
		view = centerOverlay(view, m.alertLines(), m.width, m.height)
	}
	return view
}

// pickerOf adapts activePicker to the value receiver View.
func pickerOf(m Model) *projectPicker {
	switch m.route {
	case RoutePilot:
		return &m.pilot.picker
	case RouteTransactions:
		return &m.transactions.picker
	default:
		return nil
	}
}

// headerView renders the top bar: console name, page title, identity.
func (m Model) headerView() string {
	left := lipgloss.NewStyle().Foreground(m.theme.AccentText).Bold(true).Render("PMIS")
	title := lipgloss.NewStyle().Foreground(m.theme.HeaderForeground).Render(" · " + m.route.String())

	identity := ""
	if current := m.store.Current(); current != nil {
		identity = current.Username + " (" + string(current.Role) + ")"
	}
	right := lipgloss.NewStyle().Foreground(m.theme.FaintText).Render(identity)

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(title) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + title + strings.Repeat(" ", gap) + right
}

// statusView renders the bottom line: a log record if one is showing,
// the help line otherwise.
func (m Model) statusView() string {
	if m.statusMessage != "" {
		style := lipgloss.NewStyle().Foreground(m.theme.NormalText)
		switch {
		case m.statusLevel >= slog.LevelError:
			style = lipgloss.NewStyle().Foreground(m.theme.ErrorText)
		case m.statusLevel >= slog.LevelWarn:
			style = lipgloss.NewStyle().Foreground(m.theme.WarningText)
		}
		return style.Render(truncatePad(m.statusMessage, m.width))
	}
	help := "0 accueil · 1 projets · 2 pilotage · 3 transactions · 4 admin · C-l déconnexion · q quitter"
	return lipgloss.NewStyle().Foreground(m.theme.HelpText).Render(truncatePad(help, m.width))
}

// padToHeight pads the header+content block so the status line lands
// on the last terminal row.
func (m Model) padToHeight(view string) string {
	lines := strings.Count(view, "\n") + 1
	for lines < m.height-1 {
		view += "\n"
		lines++
	}
	return view
}

// alertLines renders the blocking alert overlay.
func (m Model) alertLines() []string {
	body := lipgloss.NewStyle().Foreground(m.theme.ErrorText).Bold(true).Render(m.alert.title) +
		"\n" +
		lipgloss.NewStyle().Foreground(m.theme.NormalText).Render(m.alert.message) +
		"\n" +
		lipgloss.NewStyle().Foreground(m.theme.HelpText).Render("appuyez sur une touche")

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.AlertBorder).
		Background(m.theme.ModalBackground).
		Padding(0, 2).
		Render(body)
	return strings.Split(box, "\n")
}
