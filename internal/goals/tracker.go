// Package goals estimates time-to-goal for each account at the current
// contribution rate.
package goals

import (
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/paysplit/internal/model"
)

// MaxActive caps the ActiveGoals projection.
const MaxActive = 4

// Status tags a time-to-goal outcome.
type Status int

// Time-to-goal outcomes.
const (
	Unknown Status = iota
	Done
	OverBudget
	Finite
)

func (s Status) String() string {
	switch s {
	case Done:
		return "done"
	case OverBudget:
		return "over_budget"
	case Finite:
		return "finite"
	default:
		return "unknown"
	}
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Outcome is the result of a time-to-goal calculation. Months is only
// meaningful for Finite.
type Outcome struct {
	Status Status `json:"status"`
	Months int    `json:"months,omitempty"`
}

// Message returns the short label shown next to a goal.
func (o Outcome) Message() string {
	switch o.Status {
	case Done:
		return "Done!"
	case OverBudget:
		return "Over budget"
	case Finite:
		return fmt.Sprintf("%dmo", o.Months)
	default:
		return "n/a"
	}
}

// MonthsToGoal estimates how long account k needs to reach its goal given
// its share of monthly income minus its monthly spend.
func MonthsToGoal(k model.AccountKey, s model.State) Outcome {
	acct := s.Accounts[k]
	if !acct.HasGoal() {
		return Outcome{Status: Unknown}
	}
	income := s.MonthlyIncome()
	if !income.IsPositive() {
		return Outcome{Status: Unknown}
	}
	return project(acct, Contribution(k, s.Main, s.Savings, income))
}

// MonthsToCategoryGoal is MonthsToGoal addressed by main category. Savings
// has no account of its own and is always Unknown.
func MonthsToCategoryGoal(c model.Category, s model.State) Outcome {
	k, ok := c.Account()
	if !ok {
		return Outcome{Status: Unknown}
	}
	return MonthsToGoal(k, s)
}

// Contribution returns the monthly amount routed to account k.
func Contribution(k model.AccountKey, main model.MainPercentages, savings model.SavingsPercentages, income decimal.Decimal) decimal.Decimal {
	if sub, ok := k.Savings(); ok {
		frac := main[model.Savings] / 100 * savings[sub] / 100
		return income.Mul(decimal.NewFromFloat(frac))
	}
	c, _ := k.Category()
	return income.Mul(decimal.NewFromFloat(main[c] / 100))
}

func project(acct model.Account, contribution decimal.Decimal) Outcome {
	gap := acct.Goal.Sub(acct.Balance)
	if !gap.IsPositive() {
		return Outcome{Status: Done}
	}
	net := contribution.Sub(acct.MonthlySpend)
	if !net.IsPositive() {
		return Outcome{Status: OverBudget}
	}
	months := int(math.Ceil(gap.InexactFloat64() / net.InexactFloat64()))
	return Outcome{Status: Finite, Months: months}
}

// Goal is one row of the ActiveGoals projection.
type Goal struct {
	Account   model.AccountKey `json:"-"`
	Key       string           `json:"key"`
	Name      string           `json:"name"`
	Balance   decimal.Decimal  `json:"balance"`
	Target    decimal.Decimal  `json:"goal"`
	Remaining decimal.Decimal  `json:"remaining"`
	Progress  float64          `json:"progress"`
	Outcome   Outcome          `json:"outcome"`
}

// ActiveGoals returns accounts with a goal not yet reached, most complete
// first, capped at MaxActive.
func ActiveGoals(s model.State) []Goal {
	var active []Goal
	for _, k := range model.AccountKeys {
		acct := s.Accounts[k]
		if !acct.HasGoal() {
			continue
		}
		progress := acct.Progress()
		if progress >= 100 {
			continue
		}
		active = append(active, Goal{
			Account:   k,
			Key:       k.Key(),
			Name:      k.Label(),
			Balance:   acct.Balance,
			Target:    acct.Goal,
			Remaining: acct.Goal.Sub(acct.Balance),
			Progress:  progress,
			Outcome:   MonthsToGoal(k, s),
		})
	}

	sort.SliceStable(active, func(i, j int) bool {
		return active[i].Progress > active[j].Progress
	})
	if len(active) > MaxActive {
		active = active[:MaxActive]
	}
	return active
}

// Summary totals goals and balances over the goal-bearing accounts.
type Summary struct {
	TotalGoal    decimal.Decimal `json:"totalGoal"`
	TotalBalance decimal.Decimal `json:"totalBalance"`
	Progress     float64         `json:"progress"`
}

// Summarize totals Fixed, Flexible and the savings accounts. Charity is
// excluded.
func Summarize(s model.State) Summary {
	var sum Summary
	for _, k := range model.AccountKeys {
		if k == model.CharityAccount {
			continue
		}
		sum.TotalGoal = sum.TotalGoal.Add(s.Accounts[k].Goal)
		sum.TotalBalance = sum.TotalBalance.Add(s.Accounts[k].Balance)
	}
	if sum.TotalGoal.IsPositive() {
		sum.Progress = sum.TotalBalance.Div(sum.TotalGoal).InexactFloat64() * 100
	}
	return sum
}
