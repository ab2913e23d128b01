package main

import (
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/tally-money/tally/cmd/tui/internal/view"
	"github.com/tally-money/tally/internal/account"
	accountMemstore "github.com/tally-money/tally/internal/account/memstore"
	accountStore "github.com/tally-money/tally/internal/account/store"
	"github.com/tally-money/tally/internal/config"
	"github.com/tally-money/tally/internal/database"
	"github.com/tally-money/tally/internal/events"
	"github.com/tally-money/tally/internal/ledger"
	"github.com/tally-money/tally/internal/ledger/memstore"
	ledgerStore "github.com/tally-money/tally/internal/ledger/store"
)

type model struct {
	accountService *account.Service
	ledgerService  *ledger.Service

	ownerID     uuid.UUID
	currentView View

	loginView  view.LoginModel
	debtsView  view.DebtsModel
	loanView   view.LoanModel
	peopleView view.PeopleModel
}

type View int

const (
	ViewLogin  View = 0
	ViewMenu   View = 1
	ViewDebts  View = 2
	ViewLoan   View = 3
	ViewPeople View = 4
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	var (
		accountRepo account.Repository
		ledgerRepo  ledger.Repository
	)

	if cfg.DB.Driver == "memory" {
		ledgerMem := memstore.New()
		accountRepo = accountMemstore.New(ledgerMem)
		ledgerRepo = ledgerMem
	} else {
		db, err := database.New(cfg.ConnectionString())
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}

		accountRepo = accountStore.New(db)
		ledgerRepo = ledgerStore.New(db)
	}

	accountSvc := account.NewService(accountRepo)
	ledgerSvc := ledger.NewService(ledgerRepo, events.Noop{})

	return model{
		accountService: accountSvc,
		ledgerService:  ledgerSvc,
		currentView:    ViewLogin,
		loginView:      view.NewLoginModel(accountSvc),
	}
}

func (m model) Init() tea.Cmd {
	return m.loginView.Init()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewDebts
				m.debtsView = view.NewDebtsModel(m.ledgerService, m.ownerID)

				return m, m.debtsView.Init()
			case "2":
				m.currentView = ViewLoan
				m.loanView = view.NewLoanModel(m.ledgerService, m.ownerID)

				return m, m.loanView.Init()
			case "3":
				m.currentView = ViewPeople
				m.peopleView = view.NewPeopleModel(m.ledgerService, m.ownerID)

				return m, m.peopleView.Init()
			}
		}
	case view.LoggedInMsg:
		m.ownerID = msg.Owner.ID
		m.currentView = ViewMenu

		return m, nil
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewLogin:
		var newModel tea.Model
		newModel, cmd = m.loginView.Update(msg)
		m.loginView = newModel.(view.LoginModel)
	case ViewDebts:
		var newModel tea.Model
		newModel, cmd = m.debtsView.Update(msg)
		m.debtsView = newModel.(view.DebtsModel)
	case ViewLoan:
		var newModel tea.Model
		newModel, cmd = m.loanView.Update(msg)
		m.loanView = newModel.(view.LoanModel)
	case ViewPeople:
		var newModel tea.Model
		newModel, cmd = m.peopleView.Update(msg)
		m.peopleView = newModel.(view.PeopleModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewLogin:
		return m.loginView.View()
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Tally TUI\n\n" +
				"1. Active Debts\n" +
				"2. Record Loan\n" +
				"3. People\n\n" +
				"q. Quit",
		)
	case ViewDebts:
		return m.debtsView.View()
	case ViewLoan:
		return m.loanView.View()
	case ViewPeople:
		return m.peopleView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
