package view

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tally-money/tally/internal/ledger"
)

type LoanModel struct {
	CommonModel
	ledgerService *ledger.Service
	ownerID       uuid.UUID

	form    *huh.Form
	people  []*ledger.Person
	loading bool
	err     error
	status  string

	formPersonID  uuid.UUID
	formDirection string
	formAmount    string
	formDesc      string
}

func NewLoanModel(ledgerSvc *ledger.Service, ownerID uuid.UUID) LoanModel {
	return LoanModel{
		ledgerService: ledgerSvc,
		ownerID:       ownerID,
		loading:       true,
	}
}

func (m LoanModel) Title() string     { return "Record Loan" }
func (m LoanModel) ShortHelp() string { return "Navigate form | Esc: back" }

func (m LoanModel) Init() tea.Cmd {
	return m.loadPeopleCmd()
}

func (m LoanModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadPeopleMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.people = msg.people
		m.form = m.newForm()
		return m, m.form.Init()

	case loanSavedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			m.form = m.newForm()
			return m, m.form.Init()
		}

		m.status = fmt.Sprintf("Loan recorded, balance %s", FormatAmount(msg.balance))
		m.form = m.newForm()
		return m, m.form.Init()

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}
	}

	if m.form == nil {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.saveCmd()
}

func (m LoanModel) newForm() *huh.Form {
	options := make([]huh.Option[uuid.UUID], 0, len(m.people))
	for _, p := range m.people {
		options = append(options, huh.NewOption(p.Name, p.ID))
	}

	m.formAmount = ""
	m.formDesc = ""

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[uuid.UUID]().
				Key("person").
				Title("Person").
				Options(options...).
				Value(&m.formPersonID),

			huh.NewSelect[string]().
				Key("direction").
				Title("Direction").
				Options(
					huh.NewOption("I lent them money", string(ledger.DirectionLent)),
					huh.NewOption("I borrowed from them", string(ledger.DirectionBorrowed)),
				).
				Value(&m.formDirection),

			huh.NewInput().
				Key("amount").
				Title("Amount").
				Placeholder("0.00").
				Value(&m.formAmount).
				Validate(func(s string) error {
					amount, err := decimal.NewFromString(s)
					if err != nil || !amount.IsPositive() {
						return fmt.Errorf("enter a positive amount")
					}
					return nil
				}),

			huh.NewInput().
				Key("description").
				Title("Description").
				Placeholder("Dinner, rent, ...").
				Value(&m.formDesc),
		),
	).WithWidth(45).WithShowHelp(false)
}

func (m LoanModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading people...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	if len(m.people) == 0 {
		return lipgloss.NewStyle().Padding(2).Render(
			"No people yet. Add someone from the People view first.\n\nEsc: back",
		)
	}

	content := "Record Loan\n\n" + m.form.View()
	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(content)
}

// Messages

type loadPeopleMsg struct {
	people []*ledger.Person
	err    error
}

func (m LoanModel) loadPeopleCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		people, err := m.ledgerService.ListPeople(ctx, m.ownerID)
		return loadPeopleMsg{people: people, err: err}
	}
}

type loanSavedMsg struct {
	balance decimal.Decimal
	err     error
}

func (m LoanModel) saveCmd() tea.Cmd {
	personID := m.form.Get("person").(uuid.UUID)
	direction := m.form.GetString("direction")
	raw := m.form.GetString("amount")
	desc := m.form.GetString("description")

	return func() tea.Msg {
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return loanSavedMsg{err: err}
		}

		ctx, cancel := DbCtx()
		defer cancel()

		debt, err := m.ledgerService.RecordLoan(ctx, m.ownerID, ledger.RecordLoanParams{
			PersonID:    personID,
			Amount:      amount,
			Direction:   ledger.Direction(direction),
			Description: desc,
		})
		if err != nil {
			return loanSavedMsg{err: err}
		}

		return loanSavedMsg{balance: debt.Balance()}
	}
}
