package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tally-money/tally/internal/ledger"
)

const uniqueViolation = "23505"

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanPerson(s scanner) (*ledger.Person, error) {
	var p ledger.Person

	if err := s.Scan(&p.ID, &p.OwnerID, &p.Name, &p.CreatedAt); err != nil {
		return nil, err
	}

	return &p, nil
}

// scanDebtWithPerson reads a debt row joined with its person.
// Expected column order: d.id, d.person_id, d.direction, d.status, d.created_at,
// p.id, p.owner_id, p.name, p.created_at
func scanDebtWithPerson(s scanner) (*ledger.Debt, error) {
	var (
		d         ledger.Debt
		p         ledger.Person
		direction string
		status    string
	)

	if err := s.Scan(
		&d.ID, &d.PersonID, &direction, &status, &d.CreatedAt,
		&p.ID, &p.OwnerID, &p.Name, &p.CreatedAt,
	); err != nil {
		return nil, err
	}

	d.Direction = ledger.Direction(direction)
	d.Status = ledger.Status(status)
	d.Person = &p

	return &d, nil
}

func scanTransaction(s scanner) (*ledger.Transaction, error) {
	var (
		t    ledger.Transaction
		kind string
	)

	if err := s.Scan(&t.ID, &t.DebtID, &t.Amount, &kind, &t.Description, &t.Date, &t.CreatedAt); err != nil {
		return nil, err
	}

	t.Kind = ledger.Kind(kind)

	return &t, nil
}

const selectDebtColumns = `
	d.id, d.person_id, d.direction, d.status, d.created_at,
	p.id, p.owner_id, p.name, p.created_at
`

const selectTransactionColumns = `
	t.id, t.debt_id, t.amount, t.kind, t.description, t.date, t.created_at
`

func (s *Store) CreatePerson(ctx context.Context, p *ledger.Person) error {
	query := `
		INSERT INTO people (owner_id, name)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query, p.OwnerID, p.Name).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating person: %w", err)
	}

	return nil
}

func (s *Store) GetPerson(ctx context.Context, id uuid.UUID) (*ledger.Person, error) {
	query := `SELECT id, owner_id, name, created_at FROM people WHERE id = $1`

	p, err := scanPerson(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledger.ErrPersonNotFound
		}

		return nil, fmt.Errorf("getting person: %w", err)
	}

	return p, nil
}

// FindPersonByName returns (nil, nil) when no person with that exact name
// exists for the owner.
func (s *Store) FindPersonByName(ctx context.Context, ownerID uuid.UUID, name string) (*ledger.Person, error) {
	query := `SELECT id, owner_id, name, created_at FROM people WHERE owner_id = $1 AND name = $2`

	p, err := scanPerson(s.db.QueryRowContext(ctx, query, ownerID, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("finding person by name: %w", err)
	}

	return p, nil
}

func (s *Store) ListPeople(ctx context.Context, ownerID uuid.UUID) ([]*ledger.Person, error) {
	query := `SELECT id, owner_id, name, created_at FROM people WHERE owner_id = $1 ORDER BY name ASC`

	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing people: %w", err)
	}
	defer rows.Close()

	var people []*ledger.Person

	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning person: %w", err)
		}

		people = append(people, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating people: %w", err)
	}

	return people, nil
}

// DeletePerson removes a person; debts and transactions go with it through
// the cascade constraints.
func (s *Store) DeletePerson(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM people WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting person: %w", err)
	}

	return nil
}

func (s *Store) GetDebt(ctx context.Context, id uuid.UUID) (*ledger.Debt, error) {
	query := `SELECT ` + selectDebtColumns + `
		FROM debts d
		JOIN people p ON d.person_id = p.id
		WHERE d.id = $1`

	d, err := scanDebtWithPerson(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledger.ErrDebtNotFound
		}

		return nil, fmt.Errorf("getting debt: %w", err)
	}

	txs, err := s.transactionsForDebts(ctx, []uuid.UUID{d.ID})
	if err != nil {
		return nil, err
	}

	d.Transactions = txs[d.ID]

	return d, nil
}

func (s *Store) ListActiveDebts(ctx context.Context, ownerID uuid.UUID) ([]*ledger.Debt, error) {
	query := `SELECT ` + selectDebtColumns + `
		FROM debts d
		JOIN people p ON d.person_id = p.id
		WHERE p.owner_id = $1 AND d.status = $2
		ORDER BY d.created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, ownerID, ledger.StatusActive)
	if err != nil {
		return nil, fmt.Errorf("listing active debts: %w", err)
	}
	defer rows.Close()

	var (
		debts []*ledger.Debt
		ids   []uuid.UUID
	)

	for rows.Next() {
		d, err := scanDebtWithPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning debt: %w", err)
		}

		debts = append(debts, d)
		ids = append(ids, d.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating debts: %w", err)
	}

	if len(debts) == 0 {
		return nil, nil
	}

	txs, err := s.transactionsForDebts(ctx, ids)
	if err != nil {
		return nil, err
	}

	for _, d := range debts {
		d.Transactions = txs[d.ID]
	}

	return debts, nil
}

func (s *Store) UpdateDebtStatus(ctx context.Context, id uuid.UUID, status ledger.Status) error {
	return updateDebtStatus(ctx, s.db, id, status)
}

func (s *Store) transactionsForDebts(ctx context.Context, debtIDs []uuid.UUID) (map[uuid.UUID][]*ledger.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions t
		WHERE t.debt_id = ANY($1)
		ORDER BY t.date ASC, t.created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, debtIDs)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	byDebt := make(map[uuid.UUID][]*ledger.Transaction, len(debtIDs))

	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		byDebt[t.DebtID] = append(byDebt[t.DebtID], t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transactions: %w", err)
	}

	return byDebt, nil
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func updateDebtStatus(ctx context.Context, db execer, id uuid.UUID, status ledger.Status) error {
	_, err := db.ExecContext(ctx, `UPDATE debts SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("updating debt status: %w", err)
	}

	return nil
}

type ledgerTx struct {
	tx *sql.Tx
}

func (s *Store) Begin(ctx context.Context) (ledger.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning ledger tx: %w", err)
	}

	return &ledgerTx{tx: tx}, nil
}

func (lt *ledgerTx) Commit() error   { return lt.tx.Commit() }
func (lt *ledgerTx) Rollback() error { return lt.tx.Rollback() }

func (lt *ledgerTx) FindActiveDebt(ctx context.Context, personID uuid.UUID, direction ledger.Direction) (*ledger.Debt, error) {
	query := `SELECT ` + selectDebtColumns + `
		FROM debts d
		JOIN people p ON d.person_id = p.id
		WHERE d.person_id = $1 AND d.direction = $2 AND d.status = $3`

	d, err := scanDebtWithPerson(lt.tx.QueryRowContext(ctx, query, personID, direction, ledger.StatusActive))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("finding active debt: %w", err)
	}

	return d, nil
}

func (lt *ledgerTx) CreateDebt(ctx context.Context, d *ledger.Debt) error {
	query := `
		INSERT INTO debts (person_id, direction, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := lt.tx.QueryRowContext(ctx, query, d.PersonID, d.Direction, d.Status).Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		// The partial unique index on (person_id, direction, status=active)
		// serializes concurrent lookup-or-create; the loser retries.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ledger.ErrDebtConflict
		}

		return fmt.Errorf("creating debt: %w", err)
	}

	return nil
}

func (lt *ledgerTx) CreateTransaction(ctx context.Context, t *ledger.Transaction) error {
	query := `
		INSERT INTO transactions (debt_id, amount, kind, description, date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := lt.tx.QueryRowContext(ctx, query, t.DebtID, t.Amount, t.Kind, t.Description, t.Date).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating transaction: %w", err)
	}

	return nil
}

func (lt *ledgerTx) UpdateDebtStatus(ctx context.Context, id uuid.UUID, status ledger.Status) error {
	return updateDebtStatus(ctx, lt.tx, id, status)
}
