// Copyright 2026 The PMIS Authors
// SPDX-License-Identifier: Apache-2.0

package consoleui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pmisuite/pmis/lib/apiclient"
	"github.com/pmisuite/pmis/lib/session"
)

// loginResultMsg reports an asynchronous login attempt.
type loginResultMsg struct {
	Err error
}

// loginField identifies which input has focus on the login page.
type loginField int

const (
	fieldUsername loginField = iota
	fieldPassword
	fieldRole
)

// loginPage is the guest-only authentication page: username and
// password inputs plus an expected-role toggle. Submission runs the
// login asynchronously; failure shows inline, success navigates to
// the captured origin route.
type loginPage struct {
	store *session.Store

	username textinput.Model
	password textinput.Model
	role     apiclient.Role

	focus      loginField
	submitting bool
	errMessage string
}

func newLoginPage(store *session.Store) loginPage {
	username := textinput.New()
	username.Placeholder = "nom d'utilisateur"
	username.Prompt = "› "
	username.CharLimit = 64
	username.Focus()

	password := textinput.New()
	password.Placeholder = "mot de passe"
	password.Prompt = "› "
	password.CharLimit = 128
	password.EchoMode = textinput.EchoPassword

	return loginPage{
		store:    store,
		username: username,
		password: password,
		role:     apiclient.RoleRegular,
	}
}

// reset clears the form for a fresh visit.
func (page *loginPage) reset() {
	page.username.SetValue("")
	page.password.SetValue("")
	page.errMessage = ""
	page.submitting = false
	page.focus = fieldUsername
	page.username.Focus()
	page.password.Blur()
}

// handleKey processes one key. The returned command is either an input
// update or the login attempt itself.
func (page *loginPage) handleKey(msg tea.KeyMsg) tea.Cmd {
	if page.submitting {
		return nil
	}

	switch msg.String() {
	case "tab", "down":
		page.cycleFocus(1)
		return nil
	case "shift+tab", "up":
		page.cycleFocus(-1)
		return nil
	case "left", "right", " ":
		if page.focus == fieldRole {
			page.toggleRole()
			return nil
		}
	case "enter":
		if page.focus == fieldRole {
			return page.submit()
		}
		if page.focus == fieldPassword {
			return page.submit()
		}
		page.cycleFocus(1)
		return nil
	}

	var cmd tea.Cmd
	switch page.focus {
	case fieldUsername:
		page.username, cmd = page.username.Update(msg)
	case fieldPassword:
		page.password, cmd = page.password.Update(msg)
	}
	return cmd
}

func (page *loginPage) cycleFocus(offset int) {
	page.focus = loginField((int(page.focus) + offset + 3) % 3)
	page.username.Blur()
	page.password.Blur()
	switch page.focus {
	case fieldUsername:
		page.username.Focus()
	case fieldPassword:
		page.password.Focus()
	}
}

func (page *loginPage) toggleRole() {
	if page.role == apiclient.RoleRegular {
		page.role = apiclient.RoleAdmin
	} else {
		page.role = apiclient.RoleRegular
	}
}

// submit starts the asynchronous login. Empty fields fail inline
// without a network round trip.
func (page *loginPage) submit() tea.Cmd {
	username := strings.TrimSpace(page.username.Value())
	password := page.password.Value()
	if username == "" || password == "" {
		page.errMessage = "nom d'utilisateur et mot de passe requis"
		return nil
	}

	page.submitting = true
	page.errMessage = ""
	store := page.store
	role := page.role
	return func() tea.Msg {
		err := store.Login(context.Background(), username, password, role)
		return loginResultMsg{Err: err}
	}
}

// applyResult folds the login outcome in. Returns true on success.
func (page *loginPage) applyResult(msg loginResultMsg) bool {
	page.submitting = false
	if msg.Err != nil {
		page.errMessage = msg.Err.Error()
		page.password.SetValue("")
		return false
	}
	return true
}

// view renders the login form centered in the content area.
func (page *loginPage) view(theme Theme, width int) string {
	labelStyle := lipgloss.NewStyle().Foreground(theme.FaintText)
	accent := lipgloss.NewStyle().Foreground(theme.AccentText).Bold(true)

	roleLine := "rôle attendu: "
	regular := "consultation"
	admin := "administrateur"
	if page.role == apiclient.RoleRegular {
		regular = accent.Render("[" + regular + "]")
		admin = labelStyle.Render(" " + admin + " ")
	} else {
		regular = labelStyle.Render(" " + regular + " ")
		admin = accent.Render("[" + admin + "]")
	}
	if page.focus == fieldRole {
		roleLine = "» " + roleLine
	} else {
		roleLine = "  " + roleLine
	}

	var body strings.Builder
	body.WriteString(accent.Render("Console PMIS — connexion"))
	body.WriteString("\n\n")
	body.WriteString(page.username.View())
	body.WriteString("\n")
	body.WriteString(page.password.View())
	body.WriteString("\n")
	body.WriteString(roleLine + regular + " " + admin)
	body.WriteString("\n\n")

	switch {
	case page.submitting:
		body.WriteString(labelStyle.Render("connexion en cours…"))
	case page.errMessage != "":
		body.WriteString(lipgloss.NewStyle().Foreground(theme.ErrorText).Render(page.errMessage))
	default:
		body.WriteString(labelStyle.Render("Entrée pour valider, Tab pour changer de champ"))
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.BorderColor).
		Padding(1, 3).
		Render(body.String())
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, box)
}
