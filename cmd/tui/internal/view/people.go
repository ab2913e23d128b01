package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/tally-money/tally/internal/ledger"
)

type peopleState int

const (
	peopleStateBrowse peopleState = iota
	peopleStateAdd
)

type PeopleModel struct {
	CommonModel
	ledgerService *ledger.Service
	ownerID       uuid.UUID

	state  peopleState
	table  table.Model
	people []*ledger.Person
	form   *huh.Form

	loading bool
	err     error
	status  string

	formName string
}

func NewPeopleModel(ledgerSvc *ledger.Service, ownerID uuid.UUID) PeopleModel {
	columns := []table.Column{
		{Title: "Name", Width: 30},
		{Title: "Added", Width: 14},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return PeopleModel{
		ledgerService: ledgerSvc,
		ownerID:       ownerID,
		table:         t,
	}
}

func (m PeopleModel) Title() string { return "People" }
func (m PeopleModel) ShortHelp() string {
	if m.state == peopleStateAdd {
		return "Enter: save | Esc: cancel"
	}
	return "Esc: back | a: add | x: delete | r: refresh"
}

func (m PeopleModel) Init() tea.Cmd {
	m.loading = true
	return m.loadPeopleCmd()
}

func (m PeopleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case peopleLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.people = msg.people
		m.refreshTable()
		return m, nil

	case personActionMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.status = msg.status
		}
		m.state = peopleStateBrowse
		m.form = nil
		m.table.Focus()
		return m, m.loadPeopleCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case peopleStateBrowse:
		return m.updateBrowse(msg)
	case peopleStateAdd:
		return m.updateAdd(msg)
	}

	return m, nil
}

func (m PeopleModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadPeopleCmd()
		case "a":
			return m.enterAddMode()
		case "x":
			if person := m.selectedPerson(); person != nil {
				return m, m.deleteCmd(person.ID)
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m PeopleModel) enterAddMode() (tea.Model, tea.Cmd) {
	m.formName = ""
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("name").
				Title("Name").
				Value(&m.formName).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name cannot be empty")
					}
					return nil
				}),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = peopleStateAdd
	m.table.Blur()
	return m, m.form.Init()
}

func (m PeopleModel) updateAdd(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = peopleStateBrowse
			m.form = nil
			m.table.Focus()
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

	return m, m.addCmd(m.form.GetString("name"))
}

func (m PeopleModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading people...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := tableView

	if m.state == peopleStateAdd && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render("Add Person\n\n" + m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m PeopleModel) selectedPerson() *ledger.Person {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.people) {
		return nil
	}

	return m.people[idx]
}

func (m *PeopleModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.people))
	for _, p := range m.people {
		rows = append(rows, table.Row{p.Name, FormatDate(p.CreatedAt)})
	}
	m.table.SetRows(rows)
}

// Messages

type peopleLoadedMsg struct {
	people []*ledger.Person
	err    error
}

func (m PeopleModel) loadPeopleCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		people, err := m.ledgerService.ListPeople(ctx, m.ownerID)
		return peopleLoadedMsg{people: people, err: err}
	}
}

type personActionMsg struct {
	status string
	err    error
}

func (m PeopleModel) addCmd(name string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		person, err := m.ledgerService.AddPerson(ctx, m.ownerID, name)
		if err != nil {
			return personActionMsg{err: err}
		}

		return personActionMsg{status: fmt.Sprintf("Added %s", person.Name)}
	}
}

func (m PeopleModel) deleteCmd(personID uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := m.ledgerService.RemovePerson(ctx, m.ownerID, personID); err != nil {
			return personActionMsg{err: err}
		}

		return personActionMsg{status: "Person removed, their debts and history are gone"}
	}
}
