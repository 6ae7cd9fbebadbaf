// Package forecast computes operating runway and the growth or depletion
// trajectory of the Fixed and Flexible accounts.
package forecast

import (
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/paysplit/internal/model"
)

// WarnRunwayMonths is the runway below which callers should warn.
const WarnRunwayMonths = 3

// OperatingRunway returns how many months the operating balance covers the
// operating spend with no further income. ok is false when there is no
// monthly spend.
func OperatingRunway(accounts model.Accounts) (months float64, ok bool) {
	return runway(accounts.OperatingBalance(), accounts.OperatingSpend())
}

// RunwayWithReserve is OperatingRunway with the rainy day balance added.
func RunwayWithReserve(accounts model.Accounts) (months float64, ok bool) {
	balance := accounts.OperatingBalance().Add(accounts[model.RainyDayAccount].Balance)
	return runway(balance, accounts.OperatingSpend())
}

func runway(balance, spend decimal.Decimal) (float64, bool) {
	if !spend.IsPositive() {
		return 0, false
	}
	return balance.InexactFloat64() / spend.InexactFloat64(), true
}
