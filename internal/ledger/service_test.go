package ledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/tally-money/tally/internal/ledger"
)

func TestService_AddPerson(t *testing.T) {
	ownerID := uuid.New()

	type args struct {
		name string
	}

	type testCase struct {
		name      string
		args      args
		setupMock func(m *ledger.MockRepository)
		wantName  string
		wantErr   bool
	}

	tests := []testCase{
		{
			name: "Success",
			args: args{name: "  Alice  "},
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().
					FindPersonByName(gomock.Any(), ownerID, "Alice").
					Return(nil, nil)
				m.EXPECT().
					CreatePerson(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, p *ledger.Person) error {
						p.ID = uuid.New()
						p.CreatedAt = time.Now()
						return nil
					})
			},
			wantName: "Alice",
		},
		{
			name: "DuplicateReturnsExisting",
			args: args{name: "Alice"},
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().
					FindPersonByName(gomock.Any(), ownerID, "Alice").
					Return(&ledger.Person{ID: uuid.New(), OwnerID: ownerID, Name: "Alice"}, nil)
			},
			wantName: "Alice",
		},
		{
			name:    "EmptyName",
			args:    args{name: "   "},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := ledger.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := ledger.NewService(repo, nil)
			got, err := svc.AddPerson(context.Background(), ownerID, tt.args.name)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)

				var vErr *ledger.ValidationError
				assert.ErrorAs(t, err, &vErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantName, got.Name)
		})
	}
}

func TestService_RecordLoan(t *testing.T) {
	ownerID := uuid.New()
	personID := uuid.New()
	person := &ledger.Person{ID: personID, OwnerID: ownerID, Name: "Alice"}

	type args struct {
		params ledger.RecordLoanParams
	}

	type testCase struct {
		name      string
		args      args
		setupMock func(repo *ledger.MockRepository, tx *ledger.MockTx)
		wantErr   error
		checkErr  func(t *testing.T, err error)
	}

	tests := []testCase{
		{
			name: "CreatesDebtWhenNoneActive",
			args: args{params: ledger.RecordLoanParams{
				PersonID:  personID,
				Amount:    dec("100"),
				Direction: ledger.DirectionLent,
			}},
			setupMock: func(repo *ledger.MockRepository, tx *ledger.MockTx) {
				repo.EXPECT().GetPerson(gomock.Any(), personID).Return(person, nil)
				repo.EXPECT().Begin(gomock.Any()).Return(tx, nil)
				tx.EXPECT().FindActiveDebt(gomock.Any(), personID, ledger.DirectionLent).Return(nil, nil)
				tx.EXPECT().
					CreateDebt(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, d *ledger.Debt) error {
						d.ID = uuid.New()
						return nil
					})
				tx.EXPECT().
					CreateTransaction(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, tr *ledger.Transaction) error {
						tr.ID = uuid.New()
						return nil
					})
				tx.EXPECT().Commit().Return(nil)
				tx.EXPECT().Rollback().Return(nil)
			},
		},
		{
			name: "AppendsToExistingDebt",
			args: args{params: ledger.RecordLoanParams{
				PersonID:  personID,
				Amount:    dec("25"),
				Direction: ledger.DirectionLent,
			}},
			setupMock: func(repo *ledger.MockRepository, tx *ledger.MockTx) {
				existing := &ledger.Debt{
					ID:        uuid.New(),
					PersonID:  personID,
					Direction: ledger.DirectionLent,
					Status:    ledger.StatusActive,
				}

				repo.EXPECT().GetPerson(gomock.Any(), personID).Return(person, nil)
				repo.EXPECT().Begin(gomock.Any()).Return(tx, nil)
				tx.EXPECT().FindActiveDebt(gomock.Any(), personID, ledger.DirectionLent).Return(existing, nil)
				tx.EXPECT().
					CreateTransaction(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, tr *ledger.Transaction) error {
						assert.Equal(t, existing.ID, tr.DebtID)
						tr.ID = uuid.New()
						return nil
					})
				tx.EXPECT().Commit().Return(nil)
				tx.EXPECT().Rollback().Return(nil)
			},
		},
		{
			name: "ZeroAmount",
			args: args{params: ledger.RecordLoanParams{
				PersonID:  personID,
				Amount:    decimal.Zero,
				Direction: ledger.DirectionLent,
			}},
			checkErr: func(t *testing.T, err error) {
				var vErr *ledger.ValidationError
				assert.ErrorAs(t, err, &vErr)
			},
		},
		{
			name: "NegativeAmount",
			args: args{params: ledger.RecordLoanParams{
				PersonID:  personID,
				Amount:    dec("-10"),
				Direction: ledger.DirectionBorrowed,
			}},
			checkErr: func(t *testing.T, err error) {
				var vErr *ledger.ValidationError
				assert.ErrorAs(t, err, &vErr)
			},
		},
		{
			name: "InvalidDirection",
			args: args{params: ledger.RecordLoanParams{
				PersonID:  personID,
				Amount:    dec("10"),
				Direction: ledger.Direction("sideways"),
			}},
			checkErr: func(t *testing.T, err error) {
				var vErr *ledger.ValidationError
				assert.ErrorAs(t, err, &vErr)
			},
		},
		{
			name: "PersonNotFound",
			args: args{params: ledger.RecordLoanParams{
				PersonID:  personID,
				Amount:    dec("10"),
				Direction: ledger.DirectionLent,
			}},
			setupMock: func(repo *ledger.MockRepository, tx *ledger.MockTx) {
				repo.EXPECT().GetPerson(gomock.Any(), personID).Return(nil, ledger.ErrPersonNotFound)
			},
			wantErr: ledger.ErrPersonNotFound,
		},
		{
			name: "PersonOwnedBySomeoneElse",
			args: args{params: ledger.RecordLoanParams{
				PersonID:  personID,
				Amount:    dec("10"),
				Direction: ledger.DirectionLent,
			}},
			setupMock: func(repo *ledger.MockRepository, tx *ledger.MockTx) {
				repo.EXPECT().
					GetPerson(gomock.Any(), personID).
					Return(&ledger.Person{ID: personID, OwnerID: uuid.New(), Name: "Alice"}, nil)
			},
			wantErr: ledger.ErrNotOwned,
		},
		{
			name: "ConcurrentDebtCreationConflict",
			args: args{params: ledger.RecordLoanParams{
				PersonID:  personID,
				Amount:    dec("10"),
				Direction: ledger.DirectionLent,
			}},
			setupMock: func(repo *ledger.MockRepository, tx *ledger.MockTx) {
				repo.EXPECT().GetPerson(gomock.Any(), personID).Return(person, nil)
				repo.EXPECT().Begin(gomock.Any()).Return(tx, nil)
				tx.EXPECT().FindActiveDebt(gomock.Any(), personID, ledger.DirectionLent).Return(nil, nil)
				tx.EXPECT().CreateDebt(gomock.Any(), gomock.Any()).Return(ledger.ErrDebtConflict)
				tx.EXPECT().Rollback().Return(nil)
			},
			wantErr: ledger.ErrDebtConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := ledger.NewMockRepository(ctrl)
			tx := ledger.NewMockTx(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo, tx)
			}

			svc := ledger.NewService(repo, nil)
			got, err := svc.RecordLoan(context.Background(), ownerID, tt.args.params)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			if tt.checkErr != nil {
				require.Error(t, err)
				tt.checkErr(t, err)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, ledger.StatusActive, got.Status)
			assert.Equal(t, person, got.Person)
			require.NotEmpty(t, got.Transactions)

			last := got.Transactions[len(got.Transactions)-1]
			assert.Equal(t, ledger.KindLoan, last.Kind)
			assert.True(t, tt.args.params.Amount.Equal(last.Amount))
		})
	}
}

func TestService_RecordPayment(t *testing.T) {
	ownerID := uuid.New()
	debtID := uuid.New()

	newDebt := func(balance string) *ledger.Debt {
		return &ledger.Debt{
			ID:        debtID,
			Direction: ledger.DirectionLent,
			Status:    ledger.StatusActive,
			Person:    &ledger.Person{ID: uuid.New(), OwnerID: ownerID, Name: "Alice"},
			Transactions: []*ledger.Transaction{
				{Kind: ledger.KindLoan, Amount: dec(balance), Date: time.Now()},
			},
		}
	}

	type testCase struct {
		name        string
		amount      decimal.Decimal
		setupMock   func(repo *ledger.MockRepository, tx *ledger.MockTx)
		wantStatus  ledger.Status
		wantBalance decimal.Decimal
		wantTxCount int
	}

	tests := []testCase{
		{
			name:   "PartialPayment",
			amount: dec("40"),
			setupMock: func(repo *ledger.MockRepository, tx *ledger.MockTx) {
				repo.EXPECT().GetDebt(gomock.Any(), debtID).Return(newDebt("100"), nil)
				repo.EXPECT().Begin(gomock.Any()).Return(tx, nil)
				tx.EXPECT().
					CreateTransaction(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, tr *ledger.Transaction) error {
						assert.True(t, dec("40").Equal(tr.Amount))
						tr.ID = uuid.New()
						return nil
					})
				tx.EXPECT().Commit().Return(nil)
				tx.EXPECT().Rollback().Return(nil)
			},
			wantStatus:  ledger.StatusActive,
			wantBalance: dec("60"),
			wantTxCount: 2,
		},
		{
			name:   "OverpaymentClampsToBalance",
			amount: dec("1000"),
			setupMock: func(repo *ledger.MockRepository, tx *ledger.MockTx) {
				repo.EXPECT().GetDebt(gomock.Any(), debtID).Return(newDebt("60"), nil)
				repo.EXPECT().Begin(gomock.Any()).Return(tx, nil)
				tx.EXPECT().
					CreateTransaction(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, tr *ledger.Transaction) error {
						assert.True(t, dec("60").Equal(tr.Amount), "payment should clamp to the outstanding 60, got %s", tr.Amount)
						tr.ID = uuid.New()
						return nil
					})
				tx.EXPECT().UpdateDebtStatus(gomock.Any(), debtID, ledger.StatusSettled).Return(nil)
				tx.EXPECT().Commit().Return(nil)
				tx.EXPECT().Rollback().Return(nil)
			},
			wantStatus:  ledger.StatusSettled,
			wantBalance: decimal.Zero,
			wantTxCount: 2,
		},
		{
			name:   "ExactPaymentSettles",
			amount: dec("100"),
			setupMock: func(repo *ledger.MockRepository, tx *ledger.MockTx) {
				repo.EXPECT().GetDebt(gomock.Any(), debtID).Return(newDebt("100"), nil)
				repo.EXPECT().Begin(gomock.Any()).Return(tx, nil)
				tx.EXPECT().
					CreateTransaction(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, tr *ledger.Transaction) error {
						tr.ID = uuid.New()
						return nil
					})
				tx.EXPECT().UpdateDebtStatus(gomock.Any(), debtID, ledger.StatusSettled).Return(nil)
				tx.EXPECT().Commit().Return(nil)
				tx.EXPECT().Rollback().Return(nil)
			},
			wantStatus:  ledger.StatusSettled,
			wantBalance: decimal.Zero,
			wantTxCount: 2,
		},
		{
			name:   "ZeroAmountIsNoOp",
			amount: decimal.Zero,
			setupMock: func(repo *ledger.MockRepository, tx *ledger.MockTx) {
				repo.EXPECT().GetDebt(gomock.Any(), debtID).Return(newDebt("100"), nil)
			},
			wantStatus:  ledger.StatusActive,
			wantBalance: dec("100"),
			wantTxCount: 1,
		},
		{
			name:   "NegativeAmountIsNoOp",
			amount: dec("-5"),
			setupMock: func(repo *ledger.MockRepository, tx *ledger.MockTx) {
				repo.EXPECT().GetDebt(gomock.Any(), debtID).Return(newDebt("100"), nil)
			},
			wantStatus:  ledger.StatusActive,
			wantBalance: dec("100"),
			wantTxCount: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := ledger.NewMockRepository(ctrl)
			tx := ledger.NewMockTx(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo, tx)
			}

			svc := ledger.NewService(repo, nil)
			got, err := svc.RecordPayment(context.Background(), ownerID, debtID, tt.amount)

			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.True(t, tt.wantBalance.Equal(got.Balance()), "balance %s", got.Balance())
			assert.Len(t, got.Transactions, tt.wantTxCount)
		})
	}
}

func TestService_RecordPayment_NotOwned(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	debtID := uuid.New()
	repo := ledger.NewMockRepository(ctrl)
	repo.EXPECT().GetDebt(gomock.Any(), debtID).Return(&ledger.Debt{
		ID:     debtID,
		Person: &ledger.Person{OwnerID: uuid.New()},
	}, nil)

	svc := ledger.NewService(repo, nil)
	_, err := svc.RecordPayment(context.Background(), uuid.New(), debtID, dec("10"))
	assert.ErrorIs(t, err, ledger.ErrNotOwned)
}

func TestService_SettleDebt(t *testing.T) {
	ownerID := uuid.New()
	debtID := uuid.New()

	t.Run("WritesOffOutstandingBalance", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := ledger.NewMockRepository(ctrl)
		repo.EXPECT().GetDebt(gomock.Any(), debtID).Return(&ledger.Debt{
			ID:     debtID,
			Status: ledger.StatusActive,
			Person: &ledger.Person{OwnerID: ownerID},
			Transactions: []*ledger.Transaction{
				{Kind: ledger.KindLoan, Amount: dec("500")},
			},
		}, nil)
		repo.EXPECT().UpdateDebtStatus(gomock.Any(), debtID, ledger.StatusSettled).Return(nil)

		svc := ledger.NewService(repo, nil)
		got, err := svc.SettleDebt(context.Background(), ownerID, debtID)

		require.NoError(t, err)
		assert.Equal(t, ledger.StatusSettled, got.Status)
		assert.True(t, dec("500").Equal(got.Balance()), "history must survive settling")
	})

	t.Run("AlreadySettledIsNoOp", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := ledger.NewMockRepository(ctrl)
		repo.EXPECT().GetDebt(gomock.Any(), debtID).Return(&ledger.Debt{
			ID:     debtID,
			Status: ledger.StatusSettled,
			Person: &ledger.Person{OwnerID: ownerID},
		}, nil)

		svc := ledger.NewService(repo, nil)
		got, err := svc.SettleDebt(context.Background(), ownerID, debtID)

		require.NoError(t, err)
		assert.Equal(t, ledger.StatusSettled, got.Status)
	})

	t.Run("RepoError", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := ledger.NewMockRepository(ctrl)
		repo.EXPECT().GetDebt(gomock.Any(), debtID).Return(nil, errors.New("db error"))

		svc := ledger.NewService(repo, nil)
		_, err := svc.SettleDebt(context.Background(), ownerID, debtID)
		assert.Error(t, err)
	})
}

func TestService_ListActiveDebts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ownerID := uuid.New()
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	oldest := &ledger.Debt{
		ID:        uuid.New(),
		Direction: ledger.DirectionLent,
		Transactions: []*ledger.Transaction{
			{Kind: ledger.KindLoan, Amount: dec("10"), Date: base},
		},
	}
	newest := &ledger.Debt{
		ID:        uuid.New(),
		Direction: ledger.DirectionBorrowed,
		Transactions: []*ledger.Transaction{
			{Kind: ledger.KindLoan, Amount: dec("200"), Date: base.AddDate(0, 1, 0)},
			{Kind: ledger.KindPayment, Amount: dec("50"), Date: base.AddDate(0, 2, 0)},
		},
	}
	bare := &ledger.Debt{
		ID:        uuid.New(),
		Direction: ledger.DirectionLent,
	}

	repo := ledger.NewMockRepository(ctrl)
	repo.EXPECT().
		ListActiveDebts(gomock.Any(), ownerID).
		Return([]*ledger.Debt{oldest, bare, newest}, nil)

	svc := ledger.NewService(repo, nil)
	got, err := svc.ListActiveDebts(context.Background(), ownerID)

	require.NoError(t, err)
	require.Len(t, got.Debts, 3)
	assert.Equal(t, newest.ID, got.Debts[0].ID)
	assert.Equal(t, oldest.ID, got.Debts[1].ID)
	assert.Equal(t, bare.ID, got.Debts[2].ID, "debts without transactions sort last")
	assert.True(t, dec("10").Equal(got.TotalLent), "lent total %s", got.TotalLent)
	assert.True(t, dec("150").Equal(got.TotalBorrowed), "borrowed total %s", got.TotalBorrowed)
}
