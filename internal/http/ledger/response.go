package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tally-money/tally/internal/ledger"
)

type personResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type transactionResponse struct {
	ID          uuid.UUID       `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Kind        string          `json:"kind"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
}

type debtResponse struct {
	ID           uuid.UUID             `json:"id"`
	Person       *personResponse       `json:"person,omitempty"`
	Direction    string                `json:"direction"`
	Status       string                `json:"status"`
	Balance      decimal.Decimal       `json:"balance"`
	CreatedAt    time.Time             `json:"created_at"`
	Transactions []transactionResponse `json:"transactions"`
}

type overviewResponse struct {
	Debts         []debtResponse  `json:"debts"`
	TotalLent     decimal.Decimal `json:"total_lent"`
	TotalBorrowed decimal.Decimal `json:"total_borrowed"`
}

func toPersonResponse(p *ledger.Person) personResponse {
	return personResponse{
		ID:        p.ID,
		Name:      p.Name,
		CreatedAt: p.CreatedAt,
	}
}

func toTransactionResponse(t *ledger.Transaction) transactionResponse {
	return transactionResponse{
		ID:          t.ID,
		Amount:      t.Amount,
		Kind:        string(t.Kind),
		Description: t.Description,
		Date:        t.Date,
	}
}

func toDebtResponse(d *ledger.Debt) debtResponse {
	resp := debtResponse{
		ID:           d.ID,
		Direction:    string(d.Direction),
		Status:       string(d.Status),
		Balance:      d.Balance(),
		CreatedAt:    d.CreatedAt,
		Transactions: make([]transactionResponse, 0, len(d.Transactions)),
	}

	if d.Person != nil {
		p := toPersonResponse(d.Person)
		resp.Person = &p
	}

	for _, t := range d.Transactions {
		resp.Transactions = append(resp.Transactions, toTransactionResponse(t))
	}

	return resp
}

func toOverviewResponse(o *ledger.Overview) overviewResponse {
	resp := overviewResponse{
		Debts:         make([]debtResponse, 0, len(o.Debts)),
		TotalLent:     o.TotalLent,
		TotalBorrowed: o.TotalBorrowed,
	}

	for _, d := range o.Debts {
		resp.Debts = append(resp.Debts, toDebtResponse(d))
	}

	return resp
}
