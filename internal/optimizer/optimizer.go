// Package optimizer proposes percentage splits from account goals, gaps and
// recurring spend. Suggestions are never applied here; callers adopt them
// explicitly.
package optimizer

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/paysplit/internal/model"
)

// MinCharityPercent is the floor applied to the charity share.
const MinCharityPercent = 10

// MainSuggestion is a proposed main split.
type MainSuggestion struct {
	Percentages model.MainPercentages `json:"percentages"`
	// TotalNeedPercent is total monthly need as a share of monthly income.
	TotalNeedPercent float64 `json:"totalNeedPercent"`
}

// SuggestMain distributes the non-charity share across Fixed, Flexible and
// Savings in proportion to need. ok is false without monthly income.
func SuggestMain(s model.State) (MainSuggestion, bool) {
	income := s.MonthlyIncome()
	if !income.IsPositive() {
		return MainSuggestion{}, false
	}
	incomeF := income.InexactFloat64()

	charity := math.Max(s.Main[model.Charity], MinCharityPercent)
	available := 100 - charity

	fixed := s.Accounts[model.FixedAccount]
	flexible := s.Accounts[model.FlexibleAccount]

	var needs [3]float64 // fixed, flexible, savings
	needs[0] = fixed.Need().InexactFloat64()
	needs[1] = flexible.Need().InexactFloat64()
	for _, sc := range model.SavingsCategories {
		needs[2] += s.Accounts.Savings(sc).Need().InexactFloat64()
	}
	totalNeed := needs[0] + needs[1] + needs[2]

	var p model.MainPercentages
	p[model.Charity] = charity

	if totalNeed > 0 {
		p[model.Fixed] = round5(clamp(needs[0]/totalNeed*available, 0, available))
		p[model.Flexible] = round5(clamp(needs[1]/totalNeed*available, 0, available))
		p[model.Savings] = round5(clamp(needs[2]/totalNeed*available, 0, available))

		p[model.Fixed] = math.Max(p[model.Fixed], spendFloor(fixed.MonthlySpend, income))
		p[model.Flexible] = math.Max(p[model.Flexible], spendFloor(flexible.MonthlySpend, income))
	} else {
		p[model.Fixed] = round5(available * 0.5)
		p[model.Flexible] = round5(available * 0.2)
		p[model.Savings] = available - p[model.Fixed] - p[model.Flexible]
	}

	if sum := p[model.Fixed] + p[model.Flexible] + p[model.Savings]; sum != available {
		p[model.Savings] = math.Max(0, p[model.Savings]+available-sum)
	}

	return MainSuggestion{
		Percentages:      p,
		TotalNeedPercent: totalNeed / incomeF * 100,
	}, true
}

// SuggestSavings distributes the Savings pool across the sub-categories in
// proportion to need, or evenly when nothing is needed.
func SuggestSavings(accounts model.Accounts) model.SavingsPercentages {
	var needs model.SavingsPercentages
	var totalNeed float64
	for _, sc := range model.SavingsCategories {
		needs[sc] = accounts.Savings(sc).Need().InexactFloat64()
		totalNeed += needs[sc]
	}

	var p model.SavingsPercentages
	if totalNeed <= 0 {
		for _, sc := range model.SavingsCategories {
			p[sc] = 25
		}
		return p
	}

	for _, sc := range model.SavingsCategories {
		p[sc] = round5(clamp(needs[sc]/totalNeed*100, 0, 100))
	}
	if sum := p.Total(); sum != 100 {
		// First maximal key in display order absorbs the remainder.
		largest := model.SavingsCategories[0]
		for _, sc := range model.SavingsCategories[1:] {
			if p[sc] > p[largest] {
				largest = sc
			}
		}
		p[largest] += 100 - sum
	}
	return p
}

var (
	hundred = decimal.NewFromInt(100)
	five    = decimal.NewFromInt(5)
)

// spendFloor is the smallest multiple of five percent of income that covers
// spend. It stays in decimal so exact shares like 55% do not round up.
func spendFloor(spend, income decimal.Decimal) float64 {
	if !spend.IsPositive() || !income.IsPositive() {
		return 0
	}
	return spend.Mul(hundred).Div(income).Div(five).Ceil().Mul(five).InexactFloat64()
}

func round5(x float64) float64 {
	return roundHalfUp(x/5) * 5
}

// roundHalfUp rounds .5 toward positive infinity.
func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}

func clamp(x, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, x))
}
