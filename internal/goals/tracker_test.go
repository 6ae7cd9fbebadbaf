package goals

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/paysplit/internal/model"
)

func withIncome(paycheck int64) model.State {
	s := model.DefaultState()
	s.Income.RegularPaycheck = decimal.NewFromInt(paycheck)
	s.Income.PaychecksPerMonth = 2
	return s
}

func setGoal(s *model.State, k model.AccountKey, balance, goal int64) {
	s.Accounts[k].Balance = decimal.NewFromInt(balance)
	s.Accounts[k].Goal = decimal.NewFromInt(goal)
}

func TestMonthsToGoal(t *testing.T) {
	tests := []struct {
		name    string
		account model.AccountKey
		balance int64
		goal    int64
		spend   int64
		want    Outcome
	}{
		{"done at goal", model.FixedAccount, 1200, 1200, 0, Outcome{Status: Done}},
		{"done above goal", model.HSAAccount, 1500, 1200, 0, Outcome{Status: Done}},
		{"no goal", model.FixedAccount, 0, 0, 0, Outcome{Status: Unknown}},
		// 2000 * 50% = 1000/mo, minus 400 spend = 600/mo; 1200 / 600 = 2
		{"fixed finite", model.FixedAccount, 0, 1200, 400, Outcome{Status: Finite, Months: 2}},
		// 2000 * 15% = 300/mo, spend 300
		{"flexible over budget", model.FlexibleAccount, 0, 1200, 300, Outcome{Status: OverBudget}},
		// 2000 * 25% * 40% = 200/mo; 1000 / 200 = 5
		{"rainy day finite", model.RainyDayAccount, 0, 1000, 0, Outcome{Status: Finite, Months: 5}},
		// 2000 * 25% * 15% = 75/mo; 100 / 75 = 1.33 -> 2
		{"hsa rounds up", model.HSAAccount, 50, 150, 0, Outcome{Status: Finite, Months: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := withIncome(1000)
			setGoal(&s, tt.account, tt.balance, tt.goal)
			s.Accounts[tt.account].MonthlySpend = decimal.NewFromInt(tt.spend)
			assert.Equal(t, tt.want, MonthsToGoal(tt.account, s))
		})
	}
}

func TestMonthsToGoalZeroContributionIsOverBudget(t *testing.T) {
	s := withIncome(1000)
	s.Main[model.Charity] = 0
	setGoal(&s, model.CharityAccount, 0, 1200)

	assert.Equal(t, Outcome{Status: OverBudget}, MonthsToGoal(model.CharityAccount, s))
}

func TestMonthsToGoalUnknownWithoutIncome(t *testing.T) {
	s := withIncome(0)
	setGoal(&s, model.FixedAccount, 0, 1200)
	assert.Equal(t, Unknown, MonthsToGoal(model.FixedAccount, s).Status)

	s.Income.Type = model.Irregular
	s.Income.ExpectedMonthlyBilling = decimal.NewFromInt(3000)
	assert.Equal(t, Finite, MonthsToGoal(model.FixedAccount, s).Status)
}

func TestMonthsToCategoryGoal(t *testing.T) {
	s := withIncome(1000)
	setGoal(&s, model.FixedAccount, 0, 1000)

	assert.Equal(t, Outcome{Status: Finite, Months: 1}, MonthsToCategoryGoal(model.Fixed, s))
	assert.Equal(t, Unknown, MonthsToCategoryGoal(model.Savings, s).Status)
}

func TestActiveGoalsSortedAndCapped(t *testing.T) {
	s := withIncome(1000)
	setGoal(&s, model.FixedAccount, 100, 1000)        // 10%
	setGoal(&s, model.FlexibleAccount, 900, 1000)     // 90%
	setGoal(&s, model.CharityAccount, 500, 1000)      // 50%
	setGoal(&s, model.RainyDayAccount, 1000, 1000)    // met, excluded
	setGoal(&s, model.RetirementAccount, 300, 1000)   // 30%
	setGoal(&s, model.HSAAccount, 700, 1000)          // 70%
	setGoal(&s, model.BigPurchasesAccount, 0, 0)      // no goal

	active := ActiveGoals(s)
	require.Len(t, active, MaxActive)

	var keys []model.AccountKey
	for _, g := range active {
		keys = append(keys, g.Account)
	}
	assert.Equal(t, []model.AccountKey{
		model.FlexibleAccount, model.HSAAccount, model.CharityAccount, model.RetirementAccount,
	}, keys)
	assert.InDelta(t, 90, active[0].Progress, 1e-9)
	assert.True(t, active[0].Remaining.Equal(decimal.NewFromInt(100)))
}

func TestActiveGoalsEmpty(t *testing.T) {
	assert.Empty(t, ActiveGoals(model.DefaultState()))
}

func TestSummarize(t *testing.T) {
	s := model.DefaultState()
	assert.Equal(t, 0.0, Summarize(s).Progress)

	setGoal(&s, model.FixedAccount, 250, 1000)
	setGoal(&s, model.HSAAccount, 250, 1000)
	setGoal(&s, model.CharityAccount, 5000, 5000)

	sum := Summarize(s)
	assert.True(t, sum.TotalGoal.Equal(decimal.NewFromInt(2000)))
	assert.True(t, sum.TotalBalance.Equal(decimal.NewFromInt(500)))
	assert.InDelta(t, 25, sum.Progress, 1e-9)
}
