package memstore_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally-money/tally/internal/account"
	"github.com/tally-money/tally/internal/account/memstore"
	"github.com/tally-money/tally/internal/ledger"
	ledgermem "github.com/tally-money/tally/internal/ledger/memstore"
)

// Deleting an owner must take their whole ledger with them, the way the
// cascade constraints do on the SQL side.
func TestDeleteOwner_CascadesThroughLedger(t *testing.T) {
	ctx := context.Background()

	ledgerMem := ledgermem.New()
	accountSvc := account.NewService(memstore.New(ledgerMem))
	ledgerSvc := ledger.NewService(ledgerMem, nil)

	owner, err := accountSvc.Register(ctx, "alice", "correct-horse")
	require.NoError(t, err)

	other, err := accountSvc.Register(ctx, "bob", "battery-staple")
	require.NoError(t, err)

	person, err := ledgerSvc.AddPerson(ctx, owner.ID, "Carol")
	require.NoError(t, err)

	debt, err := ledgerSvc.RecordLoan(ctx, owner.ID, ledger.RecordLoanParams{
		PersonID:  person.ID,
		Amount:    decimal.RequireFromString("100"),
		Direction: ledger.DirectionLent,
	})
	require.NoError(t, err)

	kept, err := ledgerSvc.AddPerson(ctx, other.ID, "Dave")
	require.NoError(t, err)

	require.NoError(t, accountSvc.Delete(ctx, owner.ID))

	_, err = accountSvc.Get(ctx, owner.ID)
	assert.ErrorIs(t, err, account.ErrOwnerNotFound)

	people, err := ledgerSvc.ListPeople(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, people)

	overview, err := ledgerSvc.ListActiveDebts(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, overview.Debts)

	_, err = ledgerSvc.GetDebt(ctx, owner.ID, debt.ID)
	assert.ErrorIs(t, err, ledger.ErrDebtNotFound)

	// Other owners are untouched.
	survivors, err := ledgerSvc.ListPeople(ctx, other.ID)
	require.NoError(t, err)
	require.Len(t, survivors, 1)
	assert.Equal(t, kept.ID, survivors[0].ID)
}

func TestDeleteOwner_Unknown(t *testing.T) {
	store := memstore.New(ledgermem.New())

	err := store.DeleteOwner(context.Background(), uuid.New())
	assert.ErrorIs(t, err, account.ErrOwnerNotFound)
}
