package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/swishreport/swish/internal/session"
	"github.com/swishreport/swish/pkg/client"
	"github.com/swishreport/swish/pkg/domain"
)

type authField int

const (
	fieldEmail authField = iota
	fieldPassword
	fieldUsername
	numAuthFields
)

// authResultMsg carries the token exchange result.
type authResultMsg struct {
	email string
	token *domain.TokenResponse
	err   error
}

// signedInMsg tells the App to persist creds and leave the auth view.
type signedInMsg struct {
	creds session.Credentials
}

type authModel struct {
	client    *client.Client
	timeout   time.Duration
	signup    bool
	fields    [numAuthFields]string
	focus     authField
	notice    string
	statusMsg string
	submitted bool
}

func newAuthModel(c *client.Client, timeout time.Duration, notice string) authModel {
	return authModel{client: c, timeout: timeout, notice: notice}
}

func (m authModel) lastField() authField {
	if m.signup {
		return fieldUsername
	}
	return fieldPassword
}

func (m authModel) Update(msg tea.Msg) (authModel, tea.Cmd) {
	switch msg := msg.(type) {
	case authResultMsg:
		m.submitted = false
		if msg.err != nil {
			m.statusMsg = client.UserMessage(msg.err)
			return m, nil
		}
		if msg.token == nil || msg.token.AccessToken == "" {
			m.statusMsg = "sign-in returned no token"
			return m, nil
		}
		creds := session.Credentials{Token: msg.token.AccessToken, Identity: msg.email}
		m.fields[fieldPassword] = ""
		return m, func() tea.Msg { return signedInMsg{creds: creds} }

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m authModel) updateKeys(msg tea.KeyMsg) (authModel, tea.Cmd) {
	if m.submitted {
		return m, nil
	}
	m.statusMsg = ""

	n := m.lastField() + 1
	switch msg.String() {
	case "ctrl+s":
		return m.submit()
	case "ctrl+t":
		m.signup = !m.signup
		if m.focus > m.lastField() {
			m.focus = fieldEmail
		}
	case "tab", "down":
		m.focus = (m.focus + 1) % n
	case "shift+tab", "up":
		m.focus = (m.focus - 1 + n) % n
	case "enter":
		if m.focus == m.lastField() {
			return m.submit()
		}
		m.focus++
	default:
		f := &m.fields[m.focus]
		*f = editRune(*f, msg.String())
	}
	return m, nil
}

func (m authModel) submit() (authModel, tea.Cmd) {
	email := strings.TrimSpace(m.fields[fieldEmail])
	password := m.fields[fieldPassword]
	username := strings.TrimSpace(m.fields[fieldUsername])

	switch {
	case email == "":
		m.statusMsg = "email is required"
		return m, nil
	case !strings.Contains(email, "@"):
		m.statusMsg = "enter a valid email"
		return m, nil
	case password == "":
		m.statusMsg = "password is required"
		return m, nil
	case m.signup && username == "":
		m.statusMsg = "username is required"
		return m, nil
	}

	m.submitted = true
	c := m.client
	timeout := m.timeout
	signup := m.signup
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		var tok *domain.TokenResponse
		var err error
		if signup {
			tok, err = c.Signup(ctx, client.SignupRequest{Username: username, Email: email, Password: password})
		} else {
			tok, err = c.Login(ctx, email, password)
		}
		return authResultMsg{email: email, token: tok, err: err}
	}
}

func (m authModel) View() string {
	var b strings.Builder

	title := "Sign in"
	if m.signup {
		title = "Create an account"
	}
	b.WriteString(" " + selectedStyle.Render(title) + "\n")
	if m.notice != "" {
		b.WriteString(" " + goldStyle.Render(m.notice) + "\n")
	}
	b.WriteString("\n")

	labels := [numAuthFields]string{"email", "password", "username"}
	for i := fieldEmail; i <= m.lastField(); i++ {
		cursor := " "
		style := metaStyle
		if i == m.focus {
			cursor = accentStyle.Render(">")
			style = selectedStyle
		}
		value := m.fields[i]
		if i == fieldPassword {
			value = strings.Repeat("•", len([]rune(value)))
		}
		if i == m.focus {
			value += "█"
		}
		fmt.Fprintf(&b, " %s %s %s\n", cursor, style.Render(padRight(labels[i]+":", 10)), value)
	}

	b.WriteString("\n")
	switch {
	case m.submitted:
		b.WriteString(" " + dimStyle.Render("signing in..."))
	case m.statusMsg != "":
		b.WriteString(" " + errorStyle.Render(m.statusMsg))
	default:
		b.WriteString(" " + metaStyle.Render("Google account? run `swish login` from your shell"))
	}
	b.WriteString("\n")
	return b.String()
}

func (m authModel) helpKeys() string {
	toggle := "sign up"
	if m.signup {
		toggle = "sign in"
	}
	return helpBar("tab", "next", "enter", "submit", "ctrl+t", toggle, "ctrl+c", "quit")
}
