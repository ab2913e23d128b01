package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Direction says who owes whom: money the owner lent out, or money the
// owner borrowed.
type Direction string

const (
	DirectionLent     Direction = "lent"
	DirectionBorrowed Direction = "borrowed"
)

// Status represents the lifecycle state of a debt. Settled is terminal;
// new activity with the same person opens a fresh debt.
type Status string

const (
	StatusActive  Status = "active"
	StatusSettled Status = "settled"
)

// Kind represents the type of a ledger transaction.
type Kind string

const (
	KindLoan    Kind = "loan"
	KindPayment Kind = "payment"
)

// Person is a counterparty the owner has debt relationships with.
// Names are unique per owner, not globally.
type Person struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	Name      string
	CreatedAt time.Time
}

// Debt is one directional, cumulative relationship with a person. It owns
// an append-only, chronological list of transactions.
type Debt struct {
	ID        uuid.UUID
	PersonID  uuid.UUID
	Direction Direction
	Status    Status
	CreatedAt time.Time

	Person       *Person        // Loaded via JOIN
	Transactions []*Transaction // Ordered by date ascending
}

// Transaction is a single immutable financial event on a debt. Transactions
// are never updated or deleted.
type Transaction struct {
	ID          uuid.UUID
	DebtID      uuid.UUID
	Amount      decimal.Decimal
	Kind        Kind
	Description string
	Date        time.Time
	CreatedAt   time.Time
}

// LastActivity returns the date of the most recent transaction, or the zero
// time if the debt has none.
func (d *Debt) LastActivity() time.Time {
	var latest time.Time

	for _, t := range d.Transactions {
		if t.Date.After(latest) {
			latest = t.Date
		}
	}

	return latest
}
