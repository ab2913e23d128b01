// Package memstore provides an in-memory implementation of ledger.Repository.
// It backs tests and the memory driver mode; nothing survives a restart.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tally-money/tally/internal/ledger"
)

var _ ledger.Repository = (*Store)(nil)

type Store struct {
	mu           sync.Mutex
	people       map[uuid.UUID]*ledger.Person
	debts        map[uuid.UUID]*ledger.Debt
	transactions map[uuid.UUID][]*ledger.Transaction // keyed by debt id
}

func New() *Store {
	return &Store{
		people:       make(map[uuid.UUID]*ledger.Person),
		debts:        make(map[uuid.UUID]*ledger.Debt),
		transactions: make(map[uuid.UUID][]*ledger.Transaction),
	}
}

func (s *Store) CreatePerson(ctx context.Context, p *ledger.Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = uuid.New()
	p.CreatedAt = time.Now().UTC()
	s.people[p.ID] = clonePerson(p)

	return nil
}

func (s *Store) GetPerson(ctx context.Context, id uuid.UUID) (*ledger.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.people[id]
	if !ok {
		return nil, ledger.ErrPersonNotFound
	}

	return clonePerson(p), nil
}

func (s *Store) FindPersonByName(ctx context.Context, ownerID uuid.UUID, name string) (*ledger.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.people {
		if p.OwnerID == ownerID && p.Name == name {
			return clonePerson(p), nil
		}
	}

	return nil, nil
}

func (s *Store) ListPeople(ctx context.Context, ownerID uuid.UUID) ([]*ledger.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var people []*ledger.Person

	for _, p := range s.people {
		if p.OwnerID == ownerID {
			people = append(people, clonePerson(p))
		}
	}

	sort.Slice(people, func(i, j int) bool { return people[i].Name < people[j].Name })

	return people, nil
}

func (s *Store) DeletePerson(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.people, id)

	// Cascade: debts of the person and their transactions.
	for debtID, d := range s.debts {
		if d.PersonID == id {
			delete(s.debts, debtID)
			delete(s.transactions, debtID)
		}
	}

	return nil
}

// PurgeOwner removes every person belonging to the owner, along with their
// debts and transactions. The SQL store gets the same behavior from its
// cascade constraints; here it has to be done by hand.
func (s *Store) PurgeOwner(ctx context.Context, ownerID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for personID, p := range s.people {
		if p.OwnerID != ownerID {
			continue
		}

		delete(s.people, personID)

		for debtID, d := range s.debts {
			if d.PersonID == personID {
				delete(s.debts, debtID)
				delete(s.transactions, debtID)
			}
		}
	}

	return nil
}

func (s *Store) GetDebt(ctx context.Context, id uuid.UUID) (*ledger.Debt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.debts[id]
	if !ok {
		return nil, ledger.ErrDebtNotFound
	}

	return s.assemble(d), nil
}

func (s *Store) ListActiveDebts(ctx context.Context, ownerID uuid.UUID) ([]*ledger.Debt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var debts []*ledger.Debt

	for _, d := range s.debts {
		if d.Status != ledger.StatusActive {
			continue
		}

		p, ok := s.people[d.PersonID]
		if !ok || p.OwnerID != ownerID {
			continue
		}

		debts = append(debts, s.assemble(d))
	}

	sort.Slice(debts, func(i, j int) bool { return debts[i].CreatedAt.Before(debts[j].CreatedAt) })

	return debts, nil
}

func (s *Store) UpdateDebtStatus(ctx context.Context, id uuid.UUID, status ledger.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d, ok := s.debts[id]; ok {
		d.Status = status
	}

	return nil
}

// Begin locks the whole store for the duration of the transaction, which
// serializes concurrent lookup-or-create sequences the way the database
// transaction does for the SQL store.
func (s *Store) Begin(ctx context.Context) (ledger.Tx, error) {
	s.mu.Lock()

	return &memTx{store: s}, nil
}

type staged struct {
	debts        []*ledger.Debt
	transactions []*ledger.Transaction
	statuses     map[uuid.UUID]ledger.Status
}

type memTx struct {
	store *Store
	stage staged
	done  bool
}

func (t *memTx) FindActiveDebt(ctx context.Context, personID uuid.UUID, direction ledger.Direction) (*ledger.Debt, error) {
	for _, d := range t.store.debts {
		if d.PersonID == personID && d.Direction == direction && d.Status == ledger.StatusActive {
			return t.store.assemble(d), nil
		}
	}

	return nil, nil
}

func (t *memTx) CreateDebt(ctx context.Context, d *ledger.Debt) error {
	for _, existing := range t.store.debts {
		if existing.PersonID == d.PersonID && existing.Direction == d.Direction && existing.Status == ledger.StatusActive {
			return ledger.ErrDebtConflict
		}
	}

	d.ID = uuid.New()
	d.CreatedAt = time.Now().UTC()
	t.stage.debts = append(t.stage.debts, cloneDebt(d))

	return nil
}

func (t *memTx) CreateTransaction(ctx context.Context, txn *ledger.Transaction) error {
	txn.ID = uuid.New()
	txn.CreatedAt = time.Now().UTC()
	t.stage.transactions = append(t.stage.transactions, cloneTransaction(txn))

	return nil
}

func (t *memTx) UpdateDebtStatus(ctx context.Context, id uuid.UUID, status ledger.Status) error {
	if t.stage.statuses == nil {
		t.stage.statuses = make(map[uuid.UUID]ledger.Status)
	}

	t.stage.statuses[id] = status

	return nil
}

func (t *memTx) Commit() error {
	if t.done {
		return nil
	}

	for _, d := range t.stage.debts {
		t.store.debts[d.ID] = d
	}

	for _, txn := range t.stage.transactions {
		t.store.transactions[txn.DebtID] = append(t.store.transactions[txn.DebtID], txn)
	}

	for id, status := range t.stage.statuses {
		if d, ok := t.store.debts[id]; ok {
			d.Status = status
		}
	}

	t.done = true
	t.store.mu.Unlock()

	return nil
}

func (t *memTx) Rollback() error {
	if t.done {
		return nil
	}

	t.stage = staged{}
	t.done = true
	t.store.mu.Unlock()

	return nil
}

// assemble builds a detached copy of a debt with its person and ordered
// transaction history. Callers must hold the store lock.
func (s *Store) assemble(d *ledger.Debt) *ledger.Debt {
	out := cloneDebt(d)

	if p, ok := s.people[d.PersonID]; ok {
		out.Person = clonePerson(p)
	}

	for _, txn := range s.transactions[d.ID] {
		out.Transactions = append(out.Transactions, cloneTransaction(txn))
	}

	sort.SliceStable(out.Transactions, func(i, j int) bool {
		return out.Transactions[i].Date.Before(out.Transactions[j].Date)
	})

	return out
}

func clonePerson(p *ledger.Person) *ledger.Person {
	cp := *p
	return &cp
}

func cloneDebt(d *ledger.Debt) *ledger.Debt {
	cd := *d
	cd.Person = nil
	cd.Transactions = nil

	return &cd
}

func cloneTransaction(t *ledger.Transaction) *ledger.Transaction {
	ct := *t
	return &ct
}
