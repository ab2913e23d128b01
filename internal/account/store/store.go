package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tally-money/tally/internal/account"
)

const uniqueViolation = "23505"

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateOwner(ctx context.Context, o *account.Owner) error {
	query := `
		INSERT INTO owners (username, password_hash)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query, o.Username, o.PasswordHash).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return account.ErrUsernameTaken
		}

		return fmt.Errorf("creating owner: %w", err)
	}

	return nil
}

func (s *Store) GetOwner(ctx context.Context, id uuid.UUID) (*account.Owner, error) {
	query := `SELECT id, username, password_hash, created_at FROM owners WHERE id = $1`

	var o account.Owner

	err := s.db.QueryRowContext(ctx, query, id).Scan(&o.ID, &o.Username, &o.PasswordHash, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, account.ErrOwnerNotFound
		}

		return nil, fmt.Errorf("getting owner: %w", err)
	}

	return &o, nil
}

func (s *Store) FindOwnerByUsername(ctx context.Context, username string) (*account.Owner, error) {
	query := `SELECT id, username, password_hash, created_at FROM owners WHERE username = $1`

	var o account.Owner

	err := s.db.QueryRowContext(ctx, query, username).Scan(&o.ID, &o.Username, &o.PasswordHash, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("finding owner by username: %w", err)
	}

	return &o, nil
}

// DeleteOwner removes an owner; people, debts, and transactions go with it
// through the cascade constraints.
func (s *Store) DeleteOwner(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM owners WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting owner: %w", err)
	}

	return nil
}
