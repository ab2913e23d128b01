package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tally-money/tally/internal/events"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=ledger
type Repository interface {
	CreatePerson(ctx context.Context, p *Person) error
	GetPerson(ctx context.Context, id uuid.UUID) (*Person, error)
	FindPersonByName(ctx context.Context, ownerID uuid.UUID, name string) (*Person, error)
	ListPeople(ctx context.Context, ownerID uuid.UUID) ([]*Person, error)
	DeletePerson(ctx context.Context, id uuid.UUID) error

	GetDebt(ctx context.Context, id uuid.UUID) (*Debt, error)
	ListActiveDebts(ctx context.Context, ownerID uuid.UUID) ([]*Debt, error)
	UpdateDebtStatus(ctx context.Context, id uuid.UUID, status Status) error

	Begin(ctx context.Context) (Tx, error)
}

// Tx groups the writes of one lifecycle operation so that a debt and its
// transaction commit together or not at all.
type Tx interface {
	// FindActiveDebt returns the active debt for (person, direction), or
	// (nil, nil) when there is none.
	FindActiveDebt(ctx context.Context, personID uuid.UUID, direction Direction) (*Debt, error)
	CreateDebt(ctx context.Context, d *Debt) error
	CreateTransaction(ctx context.Context, t *Transaction) error
	UpdateDebtStatus(ctx context.Context, id uuid.UUID, status Status) error
	Commit() error
	Rollback() error
}

// Service implements the debt lifecycle: recording loans, applying payments,
// settling debts, and listing outstanding balances. Every operation is scoped
// to the owner passed in; resources reached through another owner's people
// fail with ErrNotOwned.
type Service struct {
	repo Repository
	pub  events.Publisher
}

func NewService(repo Repository, pub events.Publisher) *Service {
	if pub == nil {
		pub = events.Noop{}
	}

	return &Service{repo: repo, pub: pub}
}

// RecordLoanParams describes a new loan event against a person.
type RecordLoanParams struct {
	PersonID    uuid.UUID
	Amount      decimal.Decimal
	Direction   Direction
	Description string
}

// Overview is the owner's outstanding position: active debts ordered by most
// recent activity, plus running totals per direction.
type Overview struct {
	Debts         []*Debt
	TotalLent     decimal.Decimal
	TotalBorrowed decimal.Decimal
}

// AddPerson registers a counterparty for the owner. Adding a name that
// already exists for this owner returns the existing person unchanged.
func (s *Service) AddPerson(ctx context.Context, ownerID uuid.UUID, name string) (*Person, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationErr("name", "must not be empty")
	}

	existing, err := s.repo.FindPersonByName(ctx, ownerID, name)
	if err != nil {
		return nil, fmt.Errorf("looking up person by name: %w", err)
	}

	if existing != nil {
		return existing, nil
	}

	p := &Person{OwnerID: ownerID, Name: name}
	if err := s.repo.CreatePerson(ctx, p); err != nil {
		return nil, fmt.Errorf("creating person: %w", err)
	}

	return p, nil
}

// ListPeople returns the owner's counterparties ordered by name.
func (s *Service) ListPeople(ctx context.Context, ownerID uuid.UUID) ([]*Person, error) {
	return s.repo.ListPeople(ctx, ownerID)
}

// RemovePerson deletes a counterparty and, through cascade, all of their
// debts and transactions.
func (s *Service) RemovePerson(ctx context.Context, ownerID, personID uuid.UUID) error {
	if _, err := s.ownedPerson(ctx, ownerID, personID); err != nil {
		return err
	}

	return s.repo.DeletePerson(ctx, personID)
}

// RecordLoan appends a loan transaction to the active debt for
// (person, direction), creating the debt first when none exists. The debt
// and the transaction are committed atomically.
func (s *Service) RecordLoan(ctx context.Context, ownerID uuid.UUID, params RecordLoanParams) (*Debt, error) {
	if !params.Amount.IsPositive() {
		return nil, validationErr("amount", "must be positive")
	}

	if params.Direction != DirectionLent && params.Direction != DirectionBorrowed {
		return nil, validationErr("direction", `must be "lent" or "borrowed"`)
	}

	person, err := s.ownedPerson(ctx, ownerID, params.PersonID)
	if err != nil {
		return nil, err
	}

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning ledger tx: %w", err)
	}
	defer tx.Rollback()

	debt, err := tx.FindActiveDebt(ctx, person.ID, params.Direction)
	if err != nil {
		return nil, fmt.Errorf("finding active debt: %w", err)
	}

	if debt == nil {
		debt = &Debt{
			PersonID:  person.ID,
			Direction: params.Direction,
			Status:    StatusActive,
		}
		if err := tx.CreateDebt(ctx, debt); err != nil {
			return nil, err
		}
	}

	loan := &Transaction{
		DebtID:      debt.ID,
		Amount:      params.Amount,
		Kind:        KindLoan,
		Description: params.Description,
		Date:        time.Now().UTC(),
	}
	if err := tx.CreateTransaction(ctx, loan); err != nil {
		return nil, fmt.Errorf("creating loan transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing loan: %w", err)
	}

	debt.Person = person
	debt.Transactions = append(debt.Transactions, loan)

	s.publish(ctx, events.TopicTransactionRecorded, events.TransactionRecorded{
		TransactionID: loan.ID,
		DebtID:        debt.ID,
		OwnerID:       ownerID,
		Kind:          string(KindLoan),
		Amount:        loan.Amount,
		Balance:       debt.Balance(),
		OccurredAt:    loan.Date,
	})

	return debt, nil
}

// RecordPayment applies a payment to a debt. The amount is clamped to the
// outstanding balance so a payment can never drive it negative; a payment
// that clamps to zero or less records nothing. When the remaining balance
// drops below the settle threshold the debt transitions to settled, in the
// same store transaction as the payment.
func (s *Service) RecordPayment(ctx context.Context, ownerID, debtID uuid.UUID, amount decimal.Decimal) (*Debt, error) {
	debt, err := s.ownedDebt(ctx, ownerID, debtID)
	if err != nil {
		return nil, err
	}

	balance := debt.Balance()

	payment := decimal.Min(amount, balance)
	if !payment.IsPositive() {
		return debt, nil
	}

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning ledger tx: %w", err)
	}
	defer tx.Rollback()

	t := &Transaction{
		DebtID:      debt.ID,
		Amount:      payment,
		Kind:        KindPayment,
		Description: "Payment",
		Date:        time.Now().UTC(),
	}
	if err := tx.CreateTransaction(ctx, t); err != nil {
		return nil, fmt.Errorf("creating payment transaction: %w", err)
	}

	remaining := balance.Sub(payment)

	settled := Settleable(remaining)
	if settled {
		if err := tx.UpdateDebtStatus(ctx, debt.ID, StatusSettled); err != nil {
			return nil, fmt.Errorf("settling debt: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing payment: %w", err)
	}

	debt.Transactions = append(debt.Transactions, t)
	if settled {
		debt.Status = StatusSettled
	}

	s.publish(ctx, events.TopicTransactionRecorded, events.TransactionRecorded{
		TransactionID: t.ID,
		DebtID:        debt.ID,
		OwnerID:       ownerID,
		Kind:          string(KindPayment),
		Amount:        t.Amount,
		Balance:       remaining,
		OccurredAt:    t.Date,
	})

	if settled {
		s.publish(ctx, events.TopicDebtSettled, events.DebtSettled{
			DebtID:     debt.ID,
			OwnerID:    ownerID,
			Remaining:  remaining,
			OccurredAt: t.Date,
		})
	}

	return debt, nil
}

// SettleDebt writes a debt off regardless of its remaining balance. The
// transaction history is left untouched. Settling an already settled debt is
// a no-op.
func (s *Service) SettleDebt(ctx context.Context, ownerID, debtID uuid.UUID) (*Debt, error) {
	debt, err := s.ownedDebt(ctx, ownerID, debtID)
	if err != nil {
		return nil, err
	}

	if debt.Status == StatusSettled {
		return debt, nil
	}

	if err := s.repo.UpdateDebtStatus(ctx, debt.ID, StatusSettled); err != nil {
		return nil, fmt.Errorf("settling debt: %w", err)
	}

	debt.Status = StatusSettled

	s.publish(ctx, events.TopicDebtSettled, events.DebtSettled{
		DebtID:     debt.ID,
		OwnerID:    ownerID,
		Remaining:  debt.Balance(),
		WrittenOff: true,
		OccurredAt: time.Now().UTC(),
	})

	return debt, nil
}

// GetDebt returns a single debt with its person and full transaction
// history, provided it belongs to the owner.
func (s *Service) GetDebt(ctx context.Context, ownerID, debtID uuid.UUID) (*Debt, error) {
	return s.ownedDebt(ctx, ownerID, debtID)
}

// ListActiveDebts returns the owner's open debts ordered by most recent
// transaction, newest first; debts with no transactions sort last. Totals
// are the sums of current balances per direction.
func (s *Service) ListActiveDebts(ctx context.Context, ownerID uuid.UUID) (*Overview, error) {
	debts, err := s.repo.ListActiveDebts(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing active debts: %w", err)
	}

	sort.SliceStable(debts, func(i, j int) bool {
		return debts[i].LastActivity().After(debts[j].LastActivity())
	})

	overview := &Overview{
		Debts:         debts,
		TotalLent:     decimal.Zero,
		TotalBorrowed: decimal.Zero,
	}

	for _, d := range debts {
		switch d.Direction {
		case DirectionLent:
			overview.TotalLent = overview.TotalLent.Add(d.Balance())
		case DirectionBorrowed:
			overview.TotalBorrowed = overview.TotalBorrowed.Add(d.Balance())
		}
	}

	return overview, nil
}

func (s *Service) ownedPerson(ctx context.Context, ownerID, personID uuid.UUID) (*Person, error) {
	p, err := s.repo.GetPerson(ctx, personID)
	if err != nil {
		return nil, err
	}

	if p.OwnerID != ownerID {
		return nil, ErrNotOwned
	}

	return p, nil
}

func (s *Service) ownedDebt(ctx context.Context, ownerID, debtID uuid.UUID) (*Debt, error) {
	d, err := s.repo.GetDebt(ctx, debtID)
	if err != nil {
		return nil, err
	}

	if d.Person == nil || d.Person.OwnerID != ownerID {
		return nil, ErrNotOwned
	}

	return d, nil
}

// publish ships an event after commit. Delivery is best effort: the ledger
// write already succeeded, so a broker failure is logged, not returned.
func (s *Service) publish(ctx context.Context, topic string, event any) {
	if err := s.pub.Publish(ctx, topic, event); err != nil {
		slog.Warn("failed to publish event", "topic", topic, "error", err)
	}
}
