// Package memstore is an in-memory owner repository used by the memory
// database driver and by tests.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tally-money/tally/internal/account"
)

var _ account.Repository = (*Store)(nil)

// Cascader removes all ledger data belonging to an owner. Postgres enforces
// this through its cascade constraints; the memory driver has to ask the
// ledger store to do it when an owner is deleted.
type Cascader interface {
	PurgeOwner(ctx context.Context, ownerID uuid.UUID) error
}

type Store struct {
	mu     sync.RWMutex
	ledger Cascader
	owners map[uuid.UUID]*account.Owner
}

func New(ledger Cascader) *Store {
	return &Store{
		ledger: ledger,
		owners: make(map[uuid.UUID]*account.Owner),
	}
}

func (s *Store) CreateOwner(_ context.Context, o *account.Owner) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.owners {
		if existing.Username == o.Username {
			return account.ErrUsernameTaken
		}
	}

	o.ID = uuid.New()
	o.CreatedAt = time.Now().UTC()
	s.owners[o.ID] = clone(o)

	return nil
}

func (s *Store) GetOwner(_ context.Context, id uuid.UUID) (*account.Owner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	owner, ok := s.owners[id]
	if !ok {
		return nil, account.ErrOwnerNotFound
	}

	return clone(owner), nil
}

func (s *Store) FindOwnerByUsername(_ context.Context, username string) (*account.Owner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, o := range s.owners {
		if o.Username == username {
			return clone(o), nil
		}
	}

	return nil, nil
}

func (s *Store) DeleteOwner(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()

	if _, ok := s.owners[id]; !ok {
		s.mu.Unlock()
		return account.ErrOwnerNotFound
	}
	delete(s.owners, id)
	s.mu.Unlock()

	if s.ledger != nil {
		return s.ledger.PurgeOwner(ctx, id)
	}

	return nil
}

func clone(o *account.Owner) *account.Owner {
	c := *o
	return &c
}
