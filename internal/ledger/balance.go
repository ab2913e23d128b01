package ledger

import "github.com/shopspring/decimal"

// settleThreshold is the balance below which a debt is considered paid off.
// Payments are clamped to the outstanding balance, so rounding is the only
// way a near-zero remainder appears.
var settleThreshold = decimal.NewFromFloat(0.01)

// Balance derives the outstanding amount from the full transaction history:
// the sum of loans minus the sum of payments. It is recomputed on every call
// so the result is always consistent with the ledger, never a stale cache.
// Transactions of an unrecognized kind contribute nothing to the sum.
func (d *Debt) Balance() decimal.Decimal {
	total := decimal.Zero

	for _, t := range d.Transactions {
		switch t.Kind {
		case KindLoan:
			total = total.Add(t.Amount)
		case KindPayment:
			total = total.Sub(t.Amount)
		}
	}

	return total
}

// Settleable reports whether the given balance is close enough to zero for
// the debt to be marked settled.
func Settleable(balance decimal.Decimal) bool {
	return balance.LessThan(settleThreshold)
}
