// Package allocation splits an income amount across the budget categories
// and credits the result to account balances.
package allocation

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/paysplit/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Event is the breakdown of one paycheck. It is never persisted.
type Event struct {
	ID          uuid.UUID
	Gross       decimal.Decimal
	DeductTax   bool
	TaxWithheld decimal.Decimal
	Net         decimal.Decimal
	Main        [len(model.Categories)]decimal.Decimal
	Savings     [len(model.SavingsCategories)]decimal.Decimal
}

// MainAmount returns the amount routed to main category c.
func (e Event) MainAmount(c model.Category) decimal.Decimal {
	return e.Main[c]
}

// SavingsAmount returns the amount routed to savings sub-category s.
func (e Event) SavingsAmount(s model.SavingsCategory) decimal.Decimal {
	return e.Savings[s]
}

// Allocated returns the sum of the main amounts. It equals Net when the
// main percentages sum to 100.
func (e Event) Allocated() decimal.Decimal {
	sum := decimal.Zero
	for _, amt := range e.Main {
		sum = sum.Add(amt)
	}
	return sum
}

// Compute splits gross across the main categories and then splits the
// Savings share across the savings sub-categories. A non-positive gross
// yields an all-zero event. Amounts are not rounded.
func Compute(gross decimal.Decimal, deductTax bool, main model.MainPercentages, savings model.SavingsPercentages) Event {
	ev := Event{
		ID:        uuid.New(),
		Gross:     gross,
		DeductTax: deductTax,
	}
	if !gross.IsPositive() {
		ev.Gross = decimal.Zero
		return ev
	}

	if deductTax {
		ev.TaxWithheld = gross.Mul(model.TaxRate)
	}
	ev.Net = gross.Sub(ev.TaxWithheld)

	for _, c := range model.Categories {
		ev.Main[c] = share(ev.Net, main[c])
	}
	pool := ev.Main[model.Savings]
	for _, s := range model.SavingsCategories {
		ev.Savings[s] = share(pool, savings[s])
	}
	return ev
}

func share(amount decimal.Decimal, pct float64) decimal.Decimal {
	return amount.Mul(decimal.NewFromFloat(pct)).Div(hundred)
}

// MarshalJSON encodes the event with category-keyed amount maps.
func (e Event) MarshalJSON() ([]byte, error) {
	main := make(map[string]decimal.Decimal, len(e.Main))
	for _, c := range model.Categories {
		main[c.Key()] = e.Main[c]
	}
	savings := make(map[string]decimal.Decimal, len(e.Savings))
	for _, s := range model.SavingsCategories {
		savings[s.Key()] = e.Savings[s]
	}
	return json.Marshal(struct {
		ID          string                     `json:"id"`
		Gross       decimal.Decimal            `json:"gross"`
		DeductTax   bool                       `json:"deductTax"`
		TaxWithheld decimal.Decimal            `json:"taxWithheld"`
		Net         decimal.Decimal            `json:"net"`
		Main        map[string]decimal.Decimal `json:"main"`
		Savings     map[string]decimal.Decimal `json:"savings"`
	}{
		ID:          e.ID.String(),
		Gross:       e.Gross,
		DeductTax:   e.DeductTax,
		TaxWithheld: e.TaxWithheld,
		Net:         e.Net,
		Main:        main,
		Savings:     savings,
	})
}
