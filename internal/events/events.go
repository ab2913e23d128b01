// Package events defines the domain events emitted after ledger writes
// commit, and the publisher contract used to ship them.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	TopicTransactionRecorded = "tally.transaction_recorded"
	TopicDebtSettled         = "tally.debt_settled"
)

// Publisher ships an event to a topic. Implementations must be safe for
// concurrent use.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
}

// TransactionRecorded is emitted once a loan or payment transaction has been
// committed to the ledger.
type TransactionRecorded struct {
	TransactionID uuid.UUID       `json:"transaction_id"`
	DebtID        uuid.UUID       `json:"debt_id"`
	OwnerID       uuid.UUID       `json:"owner_id"`
	Kind          string          `json:"kind"`
	Amount        decimal.Decimal `json:"amount"`
	Balance       decimal.Decimal `json:"balance"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// DebtSettled is emitted when a debt transitions to settled, either by a
// payment clearing the balance or by an explicit write-off.
type DebtSettled struct {
	DebtID     uuid.UUID       `json:"debt_id"`
	OwnerID    uuid.UUID       `json:"owner_id"`
	Remaining  decimal.Decimal `json:"remaining"`
	WrittenOff bool            `json:"written_off"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// Noop discards all events. Used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, string, any) error { return nil }
