// Copyright 2026 The PMIS Authors
// SPDX-License-Identifier: Apache-2.0

package consoleui

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path"
	"runtime"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pmisuite/pmis/lib/apiclient"
	"github.com/pmisuite/pmis/lib/config"
)

// docListMsg delivers the document list for an event to the modal.
type docListMsg struct {
	Generation uint64
	EventID    int
	Documents  []apiclient.Document
	Err        error
}

// downloadResultMsg reports a completed document download. A non-nil
// Err raises the blocking alert.
type downloadResultMsg struct {
	FileName string
	Path     string
	Err      error
}

// docModal is the document drill-down: a modal listing the files
// attached to one event. It loads only while open; closing discards
// everything, and a list arriving after close (or after a reopen for
// another event) fails the generation check and is dropped.
type docModal struct {
	generation uint64

	open       bool
	eventID    int
	eventLabel string

	loading    bool
	errMessage string
	documents  []apiclient.Document
	cursor     int
}

// show opens the modal for an event and starts the list fetch.
func (modal *docModal) show(client *apiclient.Client, token string, eventID int, eventLabel string) tea.Cmd {
	modal.open = true
	modal.eventID = eventID
	modal.eventLabel = eventLabel
	modal.loading = true
	modal.errMessage = ""
	modal.documents = nil
	modal.cursor = 0
	modal.generation++

	generation := modal.generation
	return func() tea.Msg {
		documents, err := client.EventDocuments(context.Background(), token, eventID)
		return docListMsg{Generation: generation, EventID: eventID, Documents: documents, Err: err}
	}
}

// dismiss closes the modal and discards all document state.
func (modal *docModal) dismiss() {
	modal.open = false
	modal.documents = nil
	modal.errMessage = ""
	modal.loading = false
	modal.generation++
}

// applyList folds a list result in; results for a superseded open are
// discarded.
func (modal *docModal) applyList(msg docListMsg) {
	if msg.Generation != modal.generation || !modal.open {
		return
	}
	modal.loading = false
	if msg.Err != nil {
		modal.errMessage = msg.Err.Error()
		return
	}
	modal.documents = msg.Documents
}

// selected returns the document under the cursor, or nil.
func (modal *docModal) selected() *apiclient.Document {
	if modal.cursor < 0 || modal.cursor >= len(modal.documents) {
		return nil
	}
	return &modal.documents[modal.cursor]
}

// openSelected spawns the system URL opener on the selected document's
// streaming URL. Failures inside the spawned viewer are its own
// problem; only the spawn error is reported.
func (modal *docModal) openSelected(client *apiclient.Client, logger *slog.Logger) tea.Cmd {
	document := modal.selected()
	if document == nil {
		return nil
	}
	streamURL := client.DocumentOpenURL(document.ID)
	return func() tea.Msg {
		if err := openInBrowser(streamURL); err != nil {
			logger.Warn("ouverture du document impossible", "document", document.Title, "error", err)
		}
		return nil
	}
}

// downloadSelected fetches the selected document's bytes and writes
// them into the configured download directory.
func (modal *docModal) downloadSelected(client *apiclient.Client, configuration *config.Config, token string) tea.Cmd {
	document := modal.selected()
	if document == nil {
		return nil
	}
	chosen := *document
	fileName := downloadFileName(chosen)
	return func() tea.Msg {
		data, err := client.DownloadDocument(context.Background(), token, chosen.ID)
		if err != nil {
			return downloadResultMsg{FileName: fileName, Err: err}
		}
		destination, err := configuration.DownloadPath(fileName)
		if err != nil {
			return downloadResultMsg{FileName: fileName, Err: err}
		}
		if err := os.WriteFile(destination, data, 0644); err != nil {
			return downloadResultMsg{FileName: fileName, Err: err}
		}
		return downloadResultMsg{FileName: fileName, Path: destination}
	}
}

// downloadFileName derives the local file name for a document: the
// title, given the extension recovered from the storage path when the
// title lacks one. Query strings and fragments on the storage path do
// not leak into the extension.
func downloadFileName(document apiclient.Document) string {
	title := strings.TrimSpace(document.Title)

	storagePath := document.StoragePath
	if cut := strings.IndexAny(storagePath, "?#"); cut >= 0 {
		storagePath = storagePath[:cut]
	}
	extension := path.Ext(storagePath)

	if title == "" {
		if base := path.Base(storagePath); base != "." && base != "/" && base != "" {
			return base
		}
		return fmt.Sprintf("document-%d%s", document.ID, extension)
	}
	if path.Ext(title) != "" {
		return title
	}
	return title + extension
}

// openInBrowser hands a URL to the platform opener.
func openInBrowser(url string) error {
	var command *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		command = exec.Command("open", url)
	case "windows":
		command = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		command = exec.Command("xdg-open", url)
	}
	return command.Start()
}

// docModalMaxRows bounds the modal height.
const docModalMaxRows = 10

// render produces the modal overlay lines.
func (modal *docModal) render(theme Theme) []string {
	boxWidth := 56

	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.ModalBorder).
		Background(theme.ModalBackground).
		Width(boxWidth).
		Padding(0, 1)

	var body strings.Builder
	title := "Documents"
	if modal.eventLabel != "" {
		title += " — " + modal.eventLabel
	}
	body.WriteString(lipgloss.NewStyle().Foreground(theme.AccentText).Bold(true).Render(title))
	body.WriteString("\n")

	switch {
	case modal.loading:
		body.WriteString(lipgloss.NewStyle().Foreground(theme.FaintText).Render("chargement…"))
	case modal.errMessage != "":
		body.WriteString(lipgloss.NewStyle().Foreground(theme.ErrorText).Render("erreur: " + modal.errMessage))
	case len(modal.documents) == 0:
		body.WriteString(lipgloss.NewStyle().Foreground(theme.FaintText).Render("aucun document"))
	default:
		first, last := visibleWindow(modal.cursor, len(modal.documents), docModalMaxRows)
		for index := first; index < last; index++ {
			document := modal.documents[index]
			line := fmt.Sprintf("%s  (%s)", document.Title, document.AddedDate)
			if index == modal.cursor {
				line = lipgloss.NewStyle().
					Background(theme.SelectedBackground).
					Foreground(theme.SelectedForeground).
					Render("> " + line)
			} else {
				line = "  " + line
			}
			body.WriteString(line)
			body.WriteString("\n")
		}
		body.WriteString(lipgloss.NewStyle().Foreground(theme.HelpText).Render("o ouvrir · s télécharger · Esc fermer"))
	}

	return strings.Split(border.Render(body.String()), "\n")
}
