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
	"github.com/pmisuite/pmis/lib/session"
)

// detailTab identifies one tab of the project detail page.
type detailTab int

const (
	detailTabResume detailTab = iota
	detailTabDepartements
	detailTabActivites
	detailTabPersonnels
	detailTabCommandes
)

const detailTabCount = 5

func (tab detailTab) String() string {
	switch tab {
	case detailTabResume:
		return "Résumé"
	case detailTabDepartements:
		return "Départements"
	case detailTabActivites:
		return "Activités"
	case detailTabPersonnels:
		return "Personnels"
	case detailTabCommandes:
		return "Commandes"
	default:
		return "?"
	}
}

// detailProjectMsg delivers the project record.
type detailProjectMsg struct {
	Generation uint64
	Project    *apiclient.Project
	Err        error
}

// detailActivitiesMsg delivers the typed activity rows (typed because
// the row menu needs their IDs).
type detailActivitiesMsg struct {
	Generation uint64
	Activities []apiclient.Activity
	Err        error
}

// detailCommandesMsg delivers the typed procurement-order rows.
type detailCommandesMsg struct {
	Generation uint64
	Commandes  []apiclient.Commande
	Err        error
}

// subPanel is the drill-down pane under the activities or commandes
// tab: one menu action applied to one parent row. Choosing an action
// replaces the active sub-panel entirely — panel identity and parent
// entity are set together, and the previously loaded rows are reset by
// the loader's generation bump.
type subPanel struct {
	action      menuAction
	parentID    int
	parentLabel string
}

// detailPage is one project's tabbed detail view. The activities and
// commandes tabs carry floating row menus opening contextual
// sub-panels; at most one menu is open at a time, and any interaction
// outside it closes it.
type detailPage struct {
	client *apiclient.Client
	store  *session.Store

	projectID  int
	generation uint64

	loading    bool
	errMessage string
	project    *apiclient.Project

	activeTab detailTab

	departements tableLoader
	personnels   tableLoader

	activities        []apiclient.Activity
	activitiesLoading bool
	activitiesError   string
	activityCursor    int

	commandes        []apiclient.Commande
	commandesLoading bool
	commandesError   string
	commandeCursor   int

	menu        *rowMenu
	panel       *subPanel
	panelLoader tableLoader
}

func newDetailPage(client *apiclient.Client, store *session.Store) detailPage {
	return detailPage{
		client:       client,
		store:        store,
		departements: newTableLoader("detail-departements"),
		personnels:   newTableLoader("detail-personnels"),
		panelLoader:  newTableLoader("detail-subpanel"),
	}
}

// enter loads everything for a project. A previous visit's in-flight
// fetches are orphaned by the generation bump.
func (page *detailPage) enter(projectID int) tea.Cmd {
	page.projectID = projectID
	page.generation++
	page.loading = true
	page.errMessage = ""
	page.project = nil
	page.activeTab = detailTabResume
	page.activities = nil
	page.activitiesLoading = true
	page.activitiesError = ""
	page.activityCursor = 0
	page.commandes = nil
	page.commandesLoading = true
	page.commandesError = ""
	page.commandeCursor = 0
	page.menu = nil
	page.panel = nil

	client := page.client
	token := page.store.Token()
	generation := page.generation

	projectCmd := func() tea.Msg {
		project, err := client.Project(context.Background(), token, projectID)
		return detailProjectMsg{Generation: generation, Project: project, Err: err}
	}
	activitiesCmd := func() tea.Msg {
		activities, err := client.ProjectActivities(context.Background(), token, projectID)
		return detailActivitiesMsg{Generation: generation, Activities: activities, Err: err}
	}
	commandesCmd := func() tea.Msg {
		commandes, err := client.ProjectCommandes(context.Background(), token, projectID)
		return detailCommandesMsg{Generation: generation, Commandes: commandes, Err: err}
	}

	departementsCmd := page.departements.load(func(ctx context.Context) (tableData, error) {
		departements, err := client.ProjectDepartements(ctx, token, projectID)
		if err != nil {
			return tableData{}, err
		}
		rows := make([][]string, 0, len(departements))
		for _, department := range departements {
			rows = append(rows, []string{department.Name, stringValue(department.Code)})
		}
		return tableData{Columns: []string{"Département", "Code"}, Rows: rows}, nil
	})

	personnelsCmd := page.personnels.load(func(ctx context.Context) (tableData, error) {
		personnels, err := client.ProjectPersonnels(ctx, token, projectID)
		if err != nil {
			return tableData{}, err
		}
		rows := make([][]string, 0, len(personnels))
		for _, person := range personnels {
			rows = append(rows, []string{
				person.Name,
				stringValue(person.Function),
				stringValue(person.Email),
				stringValue(person.ContractStart),
				stringValue(person.ContractEnd),
			})
		}
		return tableData{
			Columns: []string{"Nom", "Fonction", "Email", "Début contrat", "Fin contrat"},
			Rows:    rows,
		}, nil
	})

	return tea.Batch(projectCmd, activitiesCmd, commandesCmd, departementsCmd, personnelsCmd)
}

// applyProject folds the project record in.
func (page *detailPage) applyProject(msg detailProjectMsg) {
	if msg.Generation != page.generation {
		return
	}
	page.loading = false
	if msg.Err != nil {
		page.errMessage = msg.Err.Error()
		return
	}
	page.project = msg.Project
}

// applyActivities folds the activity rows in.
func (page *detailPage) applyActivities(msg detailActivitiesMsg) {
	if msg.Generation != page.generation {
		return
	}
	page.activitiesLoading = false
	if msg.Err != nil {
		page.activitiesError = msg.Err.Error()
		return
	}
	page.activities = msg.Activities
}

// applyCommandes folds the procurement-order rows in.
func (page *detailPage) applyCommandes(msg detailCommandesMsg) {
	if msg.Generation != page.generation {
		return
	}
	page.commandesLoading = false
	if msg.Err != nil {
		page.commandesError = msg.Err.Error()
		return
	}
	page.commandes = msg.Commandes
}

// openRowMenu opens the floating menu for the row under the cursor on
// the activities or commandes tab. Any menu already open (on any row)
// is replaced — one menu at a time.
func (page *detailPage) openRowMenu(width int) {
	switch page.activeTab {
	case detailTabActivites:
		if page.activityCursor < 0 || page.activityCursor >= len(page.activities) {
			return
		}
		activity := page.activities[page.activityCursor]
		page.menu = &rowMenu{
			actions:     activityMenuActions,
			anchorX:     width / 3,
			anchorY:     5 + page.activityCursor,
			entityID:    activity.ID,
			entityLabel: activity.OptionLabel(),
		}
	case detailTabCommandes:
		if page.commandeCursor < 0 || page.commandeCursor >= len(page.commandes) {
			return
		}
		commande := page.commandes[page.commandeCursor]
		page.menu = &rowMenu{
			actions:     commandeMenuActions,
			anchorX:     width / 3,
			anchorY:     5 + page.commandeCursor,
			entityID:    commande.ID,
			entityLabel: stringValue(commande.Label),
		}
	}
}

// closeMenu dismisses the floating menu, if open.
func (page *detailPage) closeMenu() {
	page.menu = nil
}

// chooseMenuAction applies the highlighted menu action: the sub-panel
// and its parent entity are set together, and the previous sub-panel's
// rows are discarded before the new fetch starts.
func (page *detailPage) chooseMenuAction() tea.Cmd {
	menu := page.menu
	if menu == nil {
		return nil
	}
	page.menu = nil

	panel := &subPanel{
		action:      menu.selected(),
		parentID:    menu.entityID,
		parentLabel: menu.entityLabel,
	}
	page.panel = panel
	// The shared loader's generation bump discards the previous
	// sub-panel's rows and orphans its in-flight fetch.
	return page.panelLoader.load(page.subPanelFetch(panel.action, panel.parentID))
}

// subPanelFetch builds the fetch for one menu action.
func (page *detailPage) subPanelFetch(action menuAction, parentID int) tableFetch {
	client := page.client
	token := page.store.Token()
	projectID := page.projectID

	switch action {
	case actionZone:
		return func(ctx context.Context) (tableData, error) {
			sites, err := client.ActivityImplantations(ctx, token, parentID)
			if err != nil {
				return tableData{}, err
			}
			rows := make([][]string, 0, len(sites))
			for _, site := range sites {
				rows = append(rows, []string{site.SiteName, site.DepartmentName})
			}
			return tableData{Columns: []string{"Site", "Département"}, Rows: rows}, nil
		}
	case actionSuivi:
		return func(ctx context.Context) (tableData, error) {
			indicators, err := client.ActivitySuivi(ctx, token, parentID)
			if err != nil {
				return tableData{}, err
			}
			rows := make([][]string, 0, len(indicators))
			for _, indicator := range indicators {
				rows = append(rows, []string{
					indicator.Indicator,
					floatValue(indicator.Base),
					floatValue(indicator.Target),
					floatValue(indicator.Current),
					indicator.Status,
				})
			}
			return tableData{
				Columns: []string{"Indicateur", "Base", "Cible", "Actuel", "Statut"},
				Rows:    rows,
			}, nil
		}
	case actionResponsabilite:
		return func(ctx context.Context) (tableData, error) {
			responsables, err := client.ActivityResponsables(ctx, token, parentID)
			if err != nil {
				return tableData{}, err
			}
			rows := make([][]string, 0, len(responsables))
			for _, responsable := range responsables {
				rows = append(rows, []string{
					responsable.Name,
					stringValue(responsable.Function),
					stringValue(responsable.Start),
					stringValue(responsable.End),
					responsable.DurationStatus,
				})
			}
			return tableData{
				Columns: []string{"Nom", "Fonction", "Début", "Fin", "Durée"},
				Rows:    rows,
			}, nil
		}
	case actionExercice:
		return func(ctx context.Context) (tableData, error) {
			exercices, err := client.ActivityExercices(ctx, token, parentID)
			if err != nil {
				return tableData{}, err
			}
			rows := make([][]string, 0, len(exercices))
			for _, exercice := range exercices {
				rows = append(rows, []string{
					fmt.Sprintf("%d", exercice.Year),
					stringValue(exercice.Start),
					stringValue(exercice.End),
				})
			}
			return tableData{Columns: []string{"Année", "Début", "Fin"}, Rows: rows}, nil
		}
	case actionEvenements:
		return func(ctx context.Context) (tableData, error) {
			events, err := client.ActivityEvents(ctx, token, parentID)
			if err != nil {
				return tableData{}, err
			}
			return eventsTable(events), nil
		}
	case actionTransactions:
		// The backend exposes transactions per project; the activity
		// view filters them client side on the joined activity ID.
		return func(ctx context.Context) (tableData, error) {
			transactions, err := client.ProjectTransactions(ctx, token, projectID, "projet")
			if err != nil {
				return tableData{}, err
			}
			rows := make([][]string, 0, len(transactions))
			for _, transaction := range transactions {
				if transaction.ActivityID == nil || *transaction.ActivityID != parentID {
					continue
				}
				rows = append(rows, []string{
					stringValue(transaction.Date),
					stringValue(transaction.Type),
					stringValue(transaction.Amount),
					stringValue(transaction.Currency),
					stringValue(transaction.Comment),
				})
			}
			return tableData{
				Columns: []string{"Date", "Type", "Montant", "Devise", "Commentaire"},
				Rows:    rows,
			}, nil
		}
	case actionSoumissionnaires:
		return func(ctx context.Context) (tableData, error) {
			bidders, err := client.CommandeSoumissionnaires(ctx, token, parentID)
			if err != nil {
				return tableData{}, err
			}
			rows := make([][]string, 0, len(bidders))
			for _, bidder := range bidders {
				rows = append(rows, []string{
					bidder.Name,
					stringValue(bidder.NIF),
					stringValue(bidder.Telephone),
					stringValue(bidder.Status),
				})
			}
			return tableData{Columns: []string{"Nom", "NIF", "Téléphone", "Statut"}, Rows: rows}, nil
		}
	case actionTitulaire:
		return func(ctx context.Context) (tableData, error) {
			titulaires, err := client.CommandeTitulaires(ctx, token, parentID)
			if err != nil {
				return tableData{}, err
			}
			rows := make([][]string, 0, len(titulaires))
			for _, titulaire := range titulaires {
				rows = append(rows, []string{
					titulaire.Name,
					stringValue(titulaire.NIF),
					stringValue(titulaire.SubmissionDate),
					stringValue(titulaire.SubmissionStatus),
				})
			}
			return tableData{
				Columns: []string{"Nom", "NIF", "Soumission", "Statut"},
				Rows:    rows,
			}, nil
		}
	default:
		return func(ctx context.Context) (tableData, error) {
			return tableData{}, nil
		}
	}
}

// panelEventID returns the event under the sub-panel cursor when the
// active sub-panel is an events table, or 0.
func (page *detailPage) panelEventID() int {
	if page.panel == nil || page.panel.action != actionEvenements {
		return 0
	}
	return tableEventID(&page.panelLoader)
}

func (page *detailPage) panelEventLabel() string {
	if page.panel == nil || page.panel.action != actionEvenements {
		return ""
	}
	return tableEventLabel(&page.panelLoader)
}

// handleKey processes one key while no overlay is open. The menu, when
// open, captures everything first.
func (page *detailPage) handleKey(msg tea.KeyMsg, keys KeyMap, width int) tea.Cmd {
	if page.menu != nil {
		switch msg.String() {
		case "k", "up":
			page.menu.moveUp()
		case "j", "down":
			page.menu.moveDown()
		case "enter":
			return page.chooseMenuAction()
		default:
			// Any other interaction closes the menu.
			page.closeMenu()
		}
		return nil
	}

	switch msg.String() {
	case "tab", "l", "right":
		page.switchTab(1)
		return nil
	case "shift+tab", "h", "left":
		page.switchTab(-1)
		return nil
	case "k", "up":
		page.moveCursor(-1)
		return nil
	case "j", "down":
		page.moveCursor(1)
		return nil
	case "K", "shift+up":
		if page.panel != nil {
			page.panelLoader.moveCursor(-1)
		}
		return nil
	case "J", "shift+down":
		if page.panel != nil {
			page.panelLoader.moveCursor(1)
		}
		return nil
	case "m", "enter":
		page.openRowMenu(width)
		return nil
	}
	return nil
}

// switchTab changes the active tab. The floating menu, being a row
// attachment, does not survive; the sub-panel does (its parent row is
// still the one it was opened for).
func (page *detailPage) switchTab(offset int) {
	page.closeMenu()
	page.activeTab = detailTab((int(page.activeTab) + offset + detailTabCount) % detailTabCount)
}

// moveCursor moves the active tab's row cursor.
func (page *detailPage) moveCursor(offset int) {
	switch page.activeTab {
	case detailTabDepartements:
		page.departements.moveCursor(offset)
	case detailTabPersonnels:
		page.personnels.moveCursor(offset)
	case detailTabActivites:
		page.activityCursor = clamp(page.activityCursor+offset, len(page.activities))
	case detailTabCommandes:
		page.commandeCursor = clamp(page.commandeCursor+offset, len(page.commandes))
	}
}

func clamp(cursor, total int) int {
	if cursor < 0 {
		return 0
	}
	if cursor >= total {
		if total == 0 {
			return 0
		}
		return total - 1
	}
	return cursor
}

// view renders the detail page; the floating menu is spliced on top by
// the model.
func (page *detailPage) view(theme Theme, width, height int) string {
	faint := lipgloss.NewStyle().Foreground(theme.FaintText)
	if page.loading {
		return faint.Render("chargement du projet…")
	}
	if page.errMessage != "" {
		return lipgloss.NewStyle().Foreground(theme.ErrorText).Render("erreur: " + page.errMessage)
	}
	if page.project == nil {
		return faint.Render("aucun projet")
	}

	var body strings.Builder
	body.WriteString(lipgloss.NewStyle().Foreground(theme.AccentText).Bold(true).
		Render(page.project.Code + " — " + stringValue(page.project.Title)))
	body.WriteString("\n")

	labels := make([]string, detailTabCount)
	for index := 0; index < detailTabCount; index++ {
		labels[index] = detailTab(index).String()
	}
	body.WriteString(renderTabBar(theme, labels, int(page.activeTab)))
	body.WriteString("\n\n")

	contentHeight := height - 4
	if page.panel != nil && (page.activeTab == detailTabActivites || page.activeTab == detailTabCommandes) {
		contentHeight /= 2
	}

	switch page.activeTab {
	case detailTabResume:
		body.WriteString(page.resumeView(theme))
	case detailTabDepartements:
		body.WriteString(page.departements.view(theme, width, contentHeight))
	case detailTabPersonnels:
		body.WriteString(page.personnels.view(theme, width, contentHeight))
	case detailTabActivites:
		body.WriteString(page.activitiesView(theme, width, contentHeight))
	case detailTabCommandes:
		body.WriteString(page.commandesView(theme, width, contentHeight))
	}

	if page.panel != nil && (page.activeTab == detailTabActivites || page.activeTab == detailTabCommandes) {
		body.WriteString("\n\n")
		body.WriteString(lipgloss.NewStyle().Foreground(theme.AccentText).
			Render(page.panel.action.label() + " — " + page.panel.parentLabel))
		body.WriteString("\n")
		body.WriteString(page.panelLoader.view(theme, width, contentHeight))
	}

	return body.String()
}

// resumeView renders the project record as a field list.
func (page *detailPage) resumeView(theme Theme) string {
	faint := lipgloss.NewStyle().Foreground(theme.FaintText)
	normal := lipgloss.NewStyle().Foreground(theme.NormalText)

	project := page.project
	fields := []struct {
		label string
		value string
	}{
		{"Code", project.Code},
		{"Intitulé", stringValue(project.Title)},
		{"Description", stringValue(project.Description)},
		{"État", stringValue(project.State)},
		{"Démarrage prévu", stringValue(project.PlannedStart)},
		{"Fin prévue", stringValue(project.PlannedEnd)},
		{"Démarrage réel", stringValue(project.ActualStart)},
		{"Fin réelle", stringValue(project.ActualEnd)},
		{"Budget", floatValue(project.Budget) + " " + stringValue(project.Currency)},
	}

	var body strings.Builder
	for _, field := range fields {
		body.WriteString(faint.Render(fmt.Sprintf("%-18s", field.label)))
		body.WriteString(normal.Render(field.value))
		body.WriteString("\n")
	}
	return body.String()
}

// activitiesView renders the typed activity rows with the row cursor.
func (page *detailPage) activitiesView(theme Theme, width, maxRows int) string {
	faint := lipgloss.NewStyle().Foreground(theme.FaintText)
	if page.activitiesLoading {
		return faint.Render("chargement…")
	}
	if page.activitiesError != "" {
		return lipgloss.NewStyle().Foreground(theme.ErrorText).Render("erreur: " + page.activitiesError)
	}
	if len(page.activities) == 0 {
		return faint.Render("aucune activité")
	}

	selectedStyle := lipgloss.NewStyle().
		Background(theme.SelectedBackground).
		Foreground(theme.SelectedForeground)

	var lines []string
	first, last := visibleWindow(page.activityCursor, len(page.activities), maxRows)
	for index := first; index < last; index++ {
		activity := page.activities[index]
		line := fmt.Sprintf("%-40s %s → %s",
			activity.OptionLabel(),
			stringValue(activity.PlannedStart),
			stringValue(activity.PlannedEnd),
		)
		if index == page.activityCursor {
			lines = append(lines, selectedStyle.Render(truncatePad("> "+line, width)))
		} else {
			lines = append(lines, truncatePad("  "+line, width))
		}
	}
	lines = append(lines, faint.Render("m menu contextuel"))
	return strings.Join(lines, "\n")
}

// commandesView renders the typed procurement-order rows.
func (page *detailPage) commandesView(theme Theme, width, maxRows int) string {
	faint := lipgloss.NewStyle().Foreground(theme.FaintText)
	if page.commandesLoading {
		return faint.Render("chargement…")
	}
	if page.commandesError != "" {
		return lipgloss.NewStyle().Foreground(theme.ErrorText).Render("erreur: " + page.commandesError)
	}
	if len(page.commandes) == 0 {
		return faint.Render("aucune commande")
	}

	selectedStyle := lipgloss.NewStyle().
		Background(theme.SelectedBackground).
		Foreground(theme.SelectedForeground)

	var lines []string
	first, last := visibleWindow(page.commandeCursor, len(page.commandes), maxRows)
	for index := first; index < last; index++ {
		commande := page.commandes[index]
		line := fmt.Sprintf("%-40s %s %s",
			stringValue(commande.Label),
			stringValue(commande.Nature),
			floatValue(commande.Amount),
		)
		if index == page.commandeCursor {
			lines = append(lines, selectedStyle.Render(truncatePad("> "+line, width)))
		} else {
			lines = append(lines, truncatePad("  "+line, width))
		}
	}
	lines = append(lines, faint.Render("m menu contextuel"))
	return strings.Join(lines, "\n")
}

// floatValue formats an optional numeric field.
func floatValue(value *float64) string {
	if value == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *value)
}
