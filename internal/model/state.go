package model

import "github.com/shopspring/decimal"

// State is the complete persisted budget: percentages, balances, income
// profile and the pending paycheck.
type State struct {
	Main      MainPercentages
	Savings   SavingsPercentages
	Accounts  Accounts
	Income    Income
	Paycheck  decimal.Decimal
	DeductTax bool
}

// DefaultState returns default percentages, zero balances and a regular
// income profile.
func DefaultState() State {
	return State{
		Main:    DefaultMainPercentages(),
		Savings: DefaultSavingsPercentages(),
		Income:  DefaultIncome(),
	}
}

// ClearAll zeroes every account and clears the regular paycheck and
// expected billing amounts. Percentages are kept.
func (s *State) ClearAll() {
	s.Accounts = Accounts{}
	s.Income.RegularPaycheck = decimal.Zero
	s.Income.ExpectedMonthlyBilling = decimal.Zero
}

// RestoreDefaultPercentages resets both percentage vectors.
func (s *State) RestoreDefaultPercentages() {
	s.Main = DefaultMainPercentages()
	s.Savings = DefaultSavingsPercentages()
}

// MonthlyIncome is shorthand for s.Income.MonthlyIncome.
func (s State) MonthlyIncome() decimal.Decimal {
	return s.Income.MonthlyIncome()
}
