// Copyright 2026 The PMIS Authors
// SPDX-License-Identifier: Apache-2.0

package consoleui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// tableData is a rendered-form result set: column headers plus string
// cells. Pages convert typed API rows into this before display.
type tableData struct {
	Columns []string
	Rows    [][]string
}

// tableFetch loads one result set.
type tableFetch func(ctx context.Context) (tableData, error)

// tableResultMsg delivers a completed table fetch.
type tableResultMsg struct {
	LoaderID   string
	Generation uint64
	Data       tableData
	Err        error
}

// tableLoader is a one-shot fetch-and-display unit with the same
// generation discipline as the cascade controller: load bumps the
// generation and clears prior rows, apply discards results whose
// generation no longer matches. Sub-panels, detail tabs, and the
// pilot page's project tab are all instances of it.
type tableLoader struct {
	id         string
	generation uint64

	loading    bool
	errMessage string
	data       tableData
	cursor     int
}

// newTableLoader creates a loader routed by the given ID. The ID must
// be unique among loaders owned by the same model.
func newTableLoader(id string) tableLoader {
	return tableLoader{id: id}
}

// load starts a fetch, discarding prior rows and orphaning any fetch
// still in flight.
func (loader *tableLoader) load(fetch tableFetch) tea.Cmd {
	loader.generation++
	loader.loading = true
	loader.errMessage = ""
	loader.data = tableData{}
	loader.cursor = 0

	generation := loader.generation
	id := loader.id
	return func() tea.Msg {
		data, err := fetch(context.Background())
		return tableResultMsg{LoaderID: id, Generation: generation, Data: data, Err: err}
	}
}

// apply folds a fetch result in. Returns false for results that belong
// to another loader or a superseded fetch.
func (loader *tableLoader) apply(msg tableResultMsg) bool {
	if msg.LoaderID != loader.id || msg.Generation != loader.generation {
		return false
	}
	loader.loading = false
	if msg.Err != nil {
		loader.errMessage = msg.Err.Error()
		loader.data = tableData{}
		return true
	}
	loader.data = msg.Data
	return true
}

// reset clears all state and orphans any in-flight fetch.
func (loader *tableLoader) reset() {
	loader.generation++
	loader.loading = false
	loader.errMessage = ""
	loader.data = tableData{}
	loader.cursor = 0
}

// moveCursor shifts the row cursor, clamped to the data.
func (loader *tableLoader) moveCursor(offset int) {
	loader.cursor += offset
	if loader.cursor < 0 {
		loader.cursor = 0
	}
	if last := len(loader.data.Rows) - 1; loader.cursor > last {
		if last < 0 {
			last = 0
		}
		loader.cursor = last
	}
}

// view renders the loader as a fixed-width table with the cursor row
// highlighted. Loading and error states render as single lines.
func (loader *tableLoader) view(theme Theme, width, maxRows int) string {
	if loader.loading {
		return lipgloss.NewStyle().Foreground(theme.FaintText).Render("chargement…")
	}
	if loader.errMessage != "" {
		return lipgloss.NewStyle().Foreground(theme.ErrorText).Render("erreur: " + loader.errMessage)
	}
	if len(loader.data.Rows) == 0 {
		return lipgloss.NewStyle().Foreground(theme.FaintText).Render("aucune donnée")
	}

	columnWidths := fitColumns(loader.data, width)

	headerStyle := lipgloss.NewStyle().Foreground(theme.HeaderForeground).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(theme.NormalText)
	selectedStyle := lipgloss.NewStyle().
		Background(theme.SelectedBackground).
		Foreground(theme.SelectedForeground)

	var lines []string
	lines = append(lines, headerStyle.Render(joinCells(loader.data.Columns, columnWidths)))

	first, last := visibleWindow(loader.cursor, len(loader.data.Rows), maxRows)
	for index := first; index < last; index++ {
		line := joinCells(loader.data.Rows[index], columnWidths)
		if index == loader.cursor {
			lines = append(lines, selectedStyle.Render(line))
		} else {
			lines = append(lines, rowStyle.Render(line))
		}
	}
	return strings.Join(lines, "\n")
}

// visibleWindow returns the [first, last) row range keeping the cursor
// on screen.
func visibleWindow(cursor, total, maxRows int) (int, int) {
	if maxRows <= 0 || total <= maxRows {
		return 0, total
	}
	first := cursor - maxRows/2
	if first < 0 {
		first = 0
	}
	if first+maxRows > total {
		first = total - maxRows
	}
	return first, first + maxRows
}

// fitColumns allocates column widths: the natural width of each column
// capped so the whole table fits the available width.
func fitColumns(data tableData, width int) []int {
	widths := make([]int, len(data.Columns))
	for index, column := range data.Columns {
		widths[index] = ansi.StringWidth(column)
	}
	for _, row := range data.Rows {
		for index, cell := range row {
			if index < len(widths) && ansi.StringWidth(cell) > widths[index] {
				widths[index] = ansi.StringWidth(cell)
			}
		}
	}

	// Two columns of separator per boundary.
	total := 2 * (len(widths) - 1)
	for _, columnWidth := range widths {
		total += columnWidth
	}
	if total <= width || len(widths) == 0 {
		return widths
	}

	// Shrink the widest column first until it fits.
	for total > width {
		widest := 0
		for index := 1; index < len(widths); index++ {
			if widths[index] > widths[widest] {
				widest = index
			}
		}
		if widths[widest] <= 8 {
			break
		}
		widths[widest]--
		total--
	}
	return widths
}

// joinCells pads or truncates each cell to its column width and joins
// with two spaces.
func joinCells(cells []string, widths []int) string {
	parts := make([]string, 0, len(widths))
	for index, columnWidth := range widths {
		cell := ""
		if index < len(cells) {
			cell = cells[index]
		}
		if ansi.StringWidth(cell) > columnWidth {
			cell = ansi.Truncate(cell, columnWidth-1, "…")
		}
		if padding := columnWidth - ansi.StringWidth(cell); padding > 0 {
			cell += strings.Repeat(" ", padding)
		}
		parts = append(parts, cell)
	}
	return strings.Join(parts, "  ")
}
