package model

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// AccountKey identifies one of the seven balance-holding accounts.
type AccountKey int

// Accounts in display order. The savings sub-accounts follow the
// SavingsCategory order.
const (
	FixedAccount AccountKey = iota
	FlexibleAccount
	CharityAccount
	RainyDayAccount
	RetirementAccount
	HSAAccount
	BigPurchasesAccount
	numAccounts
)

// AccountKeys lists every account in display order.
var AccountKeys = [numAccounts]AccountKey{
	FixedAccount, FlexibleAccount, CharityAccount,
	RainyDayAccount, RetirementAccount, HSAAccount, BigPurchasesAccount,
}

// Key returns the persisted key for the account.
func (k AccountKey) Key() string {
	if s, ok := k.Savings(); ok {
		return s.Key()
	}
	if c, ok := k.Category(); ok {
		return c.Key()
	}
	return fmt.Sprintf("account(%d)", int(k))
}

// Label returns the long display label.
func (k AccountKey) Label() string {
	if s, ok := k.Savings(); ok {
		return s.LabelFull()
	}
	if c, ok := k.Category(); ok {
		return c.LabelFull()
	}
	return k.Key()
}

func (k AccountKey) String() string { return k.Key() }

// Category returns the main category for Fixed, Flexible and Charity.
func (k AccountKey) Category() (Category, bool) {
	switch k {
	case FixedAccount:
		return Fixed, true
	case FlexibleAccount:
		return Flexible, true
	case CharityAccount:
		return Charity, true
	default:
		return 0, false
	}
}

// Savings returns the savings sub-category for the four savings accounts.
func (k AccountKey) Savings() (SavingsCategory, bool) {
	if k < RainyDayAccount || k >= numAccounts {
		return 0, false
	}
	return SavingsCategory(k - RainyDayAccount), true
}

// IsOperating reports whether the account counts toward runway.
func (k AccountKey) IsOperating() bool {
	return k == FixedAccount || k == FlexibleAccount
}

// ParseAccountKey resolves a persisted key to an AccountKey.
func ParseAccountKey(s string) (AccountKey, bool) {
	for _, k := range AccountKeys {
		if k.Key() == s {
			return k, true
		}
	}
	return 0, false
}

// Account tracks the balance, goal and recurring spend of one bucket.
// A zero Goal means no goal is set.
type Account struct {
	Balance      decimal.Decimal `json:"balance" yaml:"balance"`
	Goal         decimal.Decimal `json:"goal" yaml:"goal"`
	MonthlySpend decimal.Decimal `json:"monthlySpend" yaml:"monthly_spend"`
}

// Need is the monthly amount required to close the goal gap over a
// twelve month horizon while covering recurring spend.
func (a Account) Need() decimal.Decimal {
	gap := decimal.Max(decimal.Zero, a.Goal.Sub(a.Balance))
	return gap.Div(decimal.NewFromInt(12)).Add(a.MonthlySpend)
}

// HasGoal reports whether a positive goal is set.
func (a Account) HasGoal() bool {
	return a.Goal.IsPositive()
}

// Progress returns balance as a percentage of goal, or 0 without a goal.
func (a Account) Progress() float64 {
	if !a.HasGoal() {
		return 0
	}
	return a.Balance.Div(a.Goal).InexactFloat64() * 100
}

// Accounts holds all seven accounts indexed by AccountKey.
type Accounts [numAccounts]Account

// Get returns the account for k.
func (a Accounts) Get(k AccountKey) Account {
	return a[k]
}

// Savings returns the account behind a savings sub-category.
func (a Accounts) Savings(s SavingsCategory) Account {
	return a[s.Account()]
}

// OperatingBalance sums the Fixed and Flexible balances.
func (a Accounts) OperatingBalance() decimal.Decimal {
	return a[FixedAccount].Balance.Add(a[FlexibleAccount].Balance)
}

// OperatingSpend sums the Fixed and Flexible monthly spend.
func (a Accounts) OperatingSpend() decimal.Decimal {
	return a[FixedAccount].MonthlySpend.Add(a[FlexibleAccount].MonthlySpend)
}

type accountJSON struct {
	Balance      json.RawMessage `json:"balance"`
	Goal         json.RawMessage `json:"goal"`
	MonthlySpend json.RawMessage `json:"monthlySpend"`
}

// MarshalJSON encodes the accounts as an object keyed by account key with
// plain numeric fields.
func (a Accounts) MarshalJSON() ([]byte, error) {
	out := make(map[string]accountJSON, numAccounts)
	for _, k := range AccountKeys {
		acct := a[k]
		out[k.Key()] = accountJSON{
			Balance:      json.RawMessage(acct.Balance.String()),
			Goal:         json.RawMessage(acct.Goal.String()),
			MonthlySpend: json.RawMessage(acct.MonthlySpend.String()),
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes an object keyed by account key. Unknown keys are
// ignored and missing accounts stay zero.
func (a *Accounts) UnmarshalJSON(data []byte) error {
	var raw map[string]Account
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var out Accounts
	for key, acct := range raw {
		k, ok := ParseAccountKey(key)
		if !ok {
			continue
		}
		out[k] = acct
	}
	*a = out
	return nil
}
