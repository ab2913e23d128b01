package view

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/tally-money/tally/internal/account"
)

// LoggedInMsg is emitted once the user has authenticated.
type LoggedInMsg struct {
	Owner *account.Owner
}

type loginResultMsg struct {
	owner *account.Owner
	err   error
}

type LoginModel struct {
	CommonModel
	accountService *account.Service

	form     *huh.Form
	register bool
	err      error

	formUsername string
	formPassword string
}

func NewLoginModel(accountSvc *account.Service) LoginModel {
	m := LoginModel{accountService: accountSvc}
	m.form = m.newForm()

	return m
}

func (m LoginModel) newForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("username").
				Title("Username").
				Value(&m.formUsername).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("username cannot be empty")
					}
					return nil
				}),

			huh.NewInput().
				Key("password").
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.formPassword),
		),
	).WithWidth(45).WithShowHelp(false)
}

func (m LoginModel) Title() string { return "Login" }
func (m LoginModel) ShortHelp() string {
	return "Enter: submit | Tab: next field | Ctrl+R: toggle register | Ctrl+C: quit"
}

func (m LoginModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loginResultMsg:
		if msg.err != nil {
			m.err = msg.err
			m.formPassword = ""
			m.form = m.newForm()

			return m, m.form.Init()
		}

		return m, func() tea.Msg { return LoggedInMsg{Owner: msg.owner} }

	case tea.KeyMsg:
		if msg.String() == "ctrl+r" {
			m.register = !m.register
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.formUsername = m.form.GetString("username")
	m.formPassword = m.form.GetString("password")

	return m, m.submitCmd()
}

func (m LoginModel) View() string {
	mode := "Login"
	if m.register {
		mode = "Register"
	}

	content := fmt.Sprintf("Tally %s\n\n%s", mode, m.form.View())

	if m.err != nil {
		content += "\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(m.err.Error())
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(content)
}

func (m LoginModel) submitCmd() tea.Cmd {
	username := m.formUsername
	password := m.formPassword
	register := m.register

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if register {
			owner, err := m.accountService.Register(ctx, username, password)
			if err != nil && !errors.Is(err, account.ErrUsernameTaken) {
				return loginResultMsg{err: err}
			}
			if err == nil {
				return loginResultMsg{owner: owner}
			}
		}

		owner, err := m.accountService.Authenticate(ctx, username, password)

		return loginResultMsg{owner: owner, err: err}
	}
}
