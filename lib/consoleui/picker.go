// Copyright 2026 The PMIS Authors
// SPDX-License-Identifier: Apache-2.0

package consoleui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pmisuite/pmis/lib/apiclient"
)

// pickerLoadedMsg delivers the project quick list to a picker.
type pickerLoadedMsg struct {
	PickerID   string
	Generation uint64
	Projects   []apiclient.ProjectLite
	Err        error
}

// projectPicker is the filterable quick-list overlay used to choose
// the working project on the pilot and transactions pages. The list is
// fetched fresh on every open; a result arriving after close (or after
// a reopen) is discarded by generation.
type projectPicker struct {
	id         string
	generation uint64

	open       bool
	loading    bool
	errMessage string
	projects   []apiclient.ProjectLite

	filter textinput.Model
	cursor int
}

// newProjectPicker creates a closed picker routed by id.
func newProjectPicker(id string) projectPicker {
	filter := textinput.New()
	filter.Placeholder = "filtrer par code projet"
	filter.Prompt = "/ "
	filter.CharLimit = 64
	return projectPicker{id: id, filter: filter}
}

// show opens the picker and starts the quick-list fetch.
func (picker *projectPicker) show(client *apiclient.Client, token string) tea.Cmd {
	picker.open = true
	picker.loading = true
	picker.errMessage = ""
	picker.projects = nil
	picker.cursor = 0
	picker.filter.SetValue("")
	picker.filter.Focus()
	picker.generation++

	generation := picker.generation
	id := picker.id
	return func() tea.Msg {
		projects, err := client.ListProjectsLite(context.Background(), token)
		return pickerLoadedMsg{PickerID: id, Generation: generation, Projects: projects, Err: err}
	}
}

// dismiss closes the picker, orphaning any fetch still in flight.
func (picker *projectPicker) dismiss() {
	picker.open = false
	picker.projects = nil
	picker.filter.Blur()
	picker.generation++
}

// applyLoaded folds a quick-list result in; stale or misrouted results
// are ignored.
func (picker *projectPicker) applyLoaded(msg pickerLoadedMsg) {
	if msg.PickerID != picker.id || msg.Generation != picker.generation || !picker.open {
		return
	}
	picker.loading = false
	if msg.Err != nil {
		picker.errMessage = msg.Err.Error()
		return
	}
	picker.projects = msg.Projects
}

// visible returns the projects matching the filter text,
// case-insensitively against the project code.
func (picker *projectPicker) visible() []apiclient.ProjectLite {
	needle := strings.ToLower(strings.TrimSpace(picker.filter.Value()))
	if needle == "" {
		return picker.projects
	}
	var matches []apiclient.ProjectLite
	for _, project := range picker.projects {
		if strings.Contains(strings.ToLower(project.Code), needle) {
			matches = append(matches, project)
		}
	}
	return matches
}

// handleKey processes one key while the picker is open. Returns the
// chosen project when the user confirms, and a command for filter
// input updates.
func (picker *projectPicker) handleKey(msg tea.KeyMsg, keys KeyMap) (*apiclient.ProjectLite, tea.Cmd) {
	switch msg.String() {
	case "esc":
		picker.dismiss()
		return nil, nil
	case "up", "ctrl+p":
		if picker.cursor > 0 {
			picker.cursor--
		}
		return nil, nil
	case "down", "ctrl+n":
		if picker.cursor < len(picker.visible())-1 {
			picker.cursor++
		}
		return nil, nil
	case "enter":
		visible := picker.visible()
		if picker.cursor < len(visible) {
			chosen := visible[picker.cursor]
			picker.dismiss()
			return &chosen, nil
		}
		return nil, nil
	}

	var cmd tea.Cmd
	picker.filter, cmd = picker.filter.Update(msg)
	if picker.cursor >= len(picker.visible()) {
		picker.cursor = 0
	}
	return nil, cmd
}

// pickerMaxRows bounds the overlay height.
const pickerMaxRows = 12

// render produces the picker overlay lines.
func (picker *projectPicker) render(theme Theme) []string {
	boxWidth := 44

	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.ModalBorder).
		Background(theme.ModalBackground).
		Width(boxWidth).
		Padding(0, 1)

	var body strings.Builder
	body.WriteString(lipgloss.NewStyle().Foreground(theme.AccentText).Bold(true).Render("Choisir un projet"))
	body.WriteString("\n")
	body.WriteString(picker.filter.View())
	body.WriteString("\n")

	switch {
	case picker.loading:
		body.WriteString(lipgloss.NewStyle().Foreground(theme.FaintText).Render("chargement…"))
	case picker.errMessage != "":
		body.WriteString(lipgloss.NewStyle().Foreground(theme.ErrorText).Render("erreur: " + picker.errMessage))
	default:
		visible := picker.visible()
		if len(visible) == 0 {
			body.WriteString(lipgloss.NewStyle().Foreground(theme.FaintText).Render("aucun projet"))
		}
		first, last := visibleWindow(picker.cursor, len(visible), pickerMaxRows)
		for index := first; index < last; index++ {
			line := fmt.Sprintf("%s (#%d)", visible[index].Code, visible[index].ID)
			if index == picker.cursor {
				line = lipgloss.NewStyle().
					Background(theme.SelectedBackground).
					Foreground(theme.SelectedForeground).
					Render("> " + line)
			} else {
				line = "  " + line
			}
			body.WriteString(line)
			if index < last-1 {
				body.WriteString("\n")
			}
		}
	}

	return strings.Split(border.Render(body.String()), "\n")
}
