package budget

import (
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/paysplit/internal/model"
)

// View is the serializable form of the state used by the HTTP API and the
// export command. Maps are keyed by category and account keys.
type View struct {
	MainPercentages    map[string]float64       `json:"mainPercentages" yaml:"main_percentages"`
	SavingsPercentages map[string]float64       `json:"savingsPercentages" yaml:"savings_percentages"`
	Accounts           map[string]model.Account `json:"accounts" yaml:"accounts"`
	Income             model.Income             `json:"income" yaml:"income"`
	Paycheck           decimal.Decimal          `json:"paycheck" yaml:"paycheck"`
	DeductTax          bool                     `json:"deductTax" yaml:"deduct_tax"`
}

// NewView converts st into its serializable form.
func NewView(st model.State) View {
	v := View{
		MainPercentages:    make(map[string]float64, len(model.Categories)),
		SavingsPercentages: make(map[string]float64, len(model.SavingsCategories)),
		Accounts:           make(map[string]model.Account, len(model.AccountKeys)),
		Income:             st.Income,
		Paycheck:           st.Paycheck,
		DeductTax:          st.DeductTax,
	}
	for _, c := range model.Categories {
		v.MainPercentages[c.Key()] = st.Main[c]
	}
	for _, sc := range model.SavingsCategories {
		v.SavingsPercentages[sc.Key()] = st.Savings[sc]
	}
	for _, k := range model.AccountKeys {
		v.Accounts[k.Key()] = st.Accounts[k]
	}
	return v
}

// View returns the current state in serializable form.
func (s *Service) View() View {
	return NewView(s.State())
}
