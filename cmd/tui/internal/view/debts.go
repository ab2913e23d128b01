package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tally-money/tally/internal/ledger"
)

type debtsState int

const (
	debtsStateBrowse debtsState = iota
	debtsStatePay
)

type DebtsModel struct {
	CommonModel
	ledgerService *ledger.Service
	ownerID       uuid.UUID

	state    debtsState
	table    table.Model
	overview *ledger.Overview
	form     *huh.Form

	loading bool
	err     error
	status  string

	formAmount string
}

func NewDebtsModel(ledgerSvc *ledger.Service, ownerID uuid.UUID) DebtsModel {
	columns := []table.Column{
		{Title: "Person", Width: 24},
		{Title: "Direction", Width: 10},
		{Title: "Balance", Width: 12},
		{Title: "Last Activity", Width: 14},
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

	return DebtsModel{
		ledgerService: ledgerSvc,
		ownerID:       ownerID,
		table:         t,
	}
}

func (m DebtsModel) Title() string { return "Active Debts" }
func (m DebtsModel) ShortHelp() string {
	if m.state == debtsStatePay {
		return "Enter: record payment | Esc: cancel"
	}
	return "Esc: back | p: pay | s: settle | r: refresh"
}

func (m DebtsModel) Init() tea.Cmd {
	m.loading = true
	return m.loadDebtsCmd()
}

func (m DebtsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadDebtsMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.overview = msg.overview
		m.refreshTable()
		return m, nil

	case debtActionMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.status = msg.status
		}
		m.state = debtsStateBrowse
		m.form = nil
		m.table.Focus()
		return m, m.loadDebtsCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case debtsStateBrowse:
		return m.updateBrowse(msg)
	case debtsStatePay:
		return m.updatePay(msg)
	}

	return m, nil
}

func (m DebtsModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadDebtsCmd()
		case "p":
			return m.enterPayMode()
		case "s":
			if debt := m.selectedDebt(); debt != nil {
				return m, m.settleCmd(debt.ID)
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m DebtsModel) enterPayMode() (tea.Model, tea.Cmd) {
	debt := m.selectedDebt()
	if debt == nil {
		return m, nil
	}

	m.formAmount = ""
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("amount").
				Title("Payment Amount").
				Placeholder("0.00").
				Value(&m.formAmount).
				Validate(func(s string) error {
					if _, err := decimal.NewFromString(s); err != nil {
						return fmt.Errorf("enter a valid amount")
					}
					return nil
				}),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = debtsStatePay
	m.table.Blur()
	return m, m.form.Init()
}

func (m DebtsModel) updatePay(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = debtsStateBrowse
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

	return m, m.payCmd()
}

func (m DebtsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading debts...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	header := ""
	if m.overview != nil {
		header = fmt.Sprintf(
			"Lent: %s | Borrowed: %s",
			activeStyle(FormatAmount(m.overview.TotalLent)),
			activeStyle(FormatAmount(m.overview.TotalBorrowed)),
		)
	}

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if m.state == debtsStatePay && m.form != nil {
		balance := ""
		if debt := m.selectedDebt(); debt != nil {
			balance = FormatAmount(debt.Balance())
		}

		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(
				fmt.Sprintf("Record Payment\n\nOutstanding: %s\n\n%s", balance, m.form.View()),
			)

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}

func (m DebtsModel) selectedDebt() *ledger.Debt {
	if m.overview == nil {
		return nil
	}

	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.overview.Debts) {
		return nil
	}

	return m.overview.Debts[idx]
}

func (m *DebtsModel) refreshTable() {
	if m.overview == nil {
		m.table.SetRows(nil)
		return
	}

	rows := make([]table.Row, 0, len(m.overview.Debts))
	for _, d := range m.overview.Debts {
		name := ""
		if d.Person != nil {
			name = d.Person.Name
		}

		last := ""
		if activity := d.LastActivity(); !activity.IsZero() {
			last = FormatDate(activity)
		}

		rows = append(rows, table.Row{
			name,
			string(d.Direction),
			FormatAmount(d.Balance()),
			last,
		})
	}
	m.table.SetRows(rows)
}

// Messages

type loadDebtsMsg struct {
	overview *ledger.Overview
	err      error
}

func (m DebtsModel) loadDebtsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		overview, err := m.ledgerService.ListActiveDebts(ctx, m.ownerID)
		return loadDebtsMsg{overview: overview, err: err}
	}
}

type debtActionMsg struct {
	status string
	err    error
}

func (m DebtsModel) payCmd() tea.Cmd {
	debt := m.selectedDebt()
	if debt == nil {
		return nil
	}

	debtID := debt.ID
	raw := m.form.GetString("amount")

	return func() tea.Msg {
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return debtActionMsg{err: err}
		}

		ctx, cancel := DbCtx()
		defer cancel()

		updated, err := m.ledgerService.RecordPayment(ctx, m.ownerID, debtID, amount)
		if err != nil {
			return debtActionMsg{err: err}
		}

		if updated.Status == ledger.StatusSettled {
			return debtActionMsg{status: "Payment recorded, debt settled"}
		}

		return debtActionMsg{status: fmt.Sprintf("Payment recorded, %s remaining", FormatAmount(updated.Balance()))}
	}
}

func (m DebtsModel) settleCmd(debtID uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if _, err := m.ledgerService.SettleDebt(ctx, m.ownerID, debtID); err != nil {
			return debtActionMsg{err: err}
		}

		return debtActionMsg{status: "Debt settled"}
	}
}
