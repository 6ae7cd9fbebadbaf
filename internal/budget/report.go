package budget

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/paysplit/internal/forecast"
	"github.com/theirongolddev/paysplit/internal/goals"
	"github.com/theirongolddev/paysplit/internal/model"
	"github.com/theirongolddev/paysplit/internal/optimizer"
)

// Report is the read-only projection shown by the dashboard views.
type Report struct {
	GeneratedAt         time.Time                 `json:"generatedAt"`
	MonthlyIncome       decimal.Decimal           `json:"monthlyIncome"`
	ExpectedContractNet decimal.Decimal           `json:"expectedContractNet"`
	MainTotal           float64                   `json:"mainTotal"`
	SavingsTotal        float64                   `json:"savingsTotal"`
	OperatingBalance    decimal.Decimal           `json:"operatingBalance"`
	OperatingSpend      decimal.Decimal           `json:"operatingSpend"`
	Runway              *float64                  `json:"runwayMonths"`
	RunwayWithReserve   *float64                  `json:"runwayWithReserveMonths"`
	Forecast            forecast.Forecast         `json:"forecast"`
	Goals               []AccountGoal             `json:"goals"`
	ActiveGoals         []goals.Goal              `json:"activeGoals"`
	GoalSummary         goals.Summary             `json:"goalSummary"`
	MainSuggestion      *optimizer.MainSuggestion `json:"mainSuggestion"`
	SavingsSuggestion   model.SavingsPercentages  `json:"savingsSuggestion"`
}

// AccountGoal pairs an account with its time-to-goal outcome.
type AccountGoal struct {
	Key     string        `json:"key"`
	Name    string        `json:"name"`
	Account model.Account `json:"account"`
	Outcome goals.Outcome `json:"outcome"`
}

// BuildReport derives every metric from st without modifying it.
func BuildReport(st model.State) Report {
	r := Report{
		GeneratedAt:       time.Now().UTC(),
		MonthlyIncome:     st.MonthlyIncome(),
		MainTotal:         st.Main.Total(),
		SavingsTotal:      st.Savings.Total(),
		OperatingBalance:  st.Accounts.OperatingBalance(),
		OperatingSpend:    st.Accounts.OperatingSpend(),
		Forecast:          forecast.Compute(st),
		ActiveGoals:       goals.ActiveGoals(st),
		GoalSummary:       goals.Summarize(st),
		SavingsSuggestion: optimizer.SuggestSavings(st.Accounts),
	}
	if st.Income.Type == model.Irregular {
		r.ExpectedContractNet = st.Income.ExpectedContractNet()
	}
	if months, ok := forecast.OperatingRunway(st.Accounts); ok {
		r.Runway = &months
	}
	if months, ok := forecast.RunwayWithReserve(st.Accounts); ok {
		r.RunwayWithReserve = &months
	}
	if sug, ok := optimizer.SuggestMain(st); ok {
		r.MainSuggestion = &sug
	}
	for _, k := range model.AccountKeys {
		r.Goals = append(r.Goals, AccountGoal{
			Key:     k.Key(),
			Name:    k.Label(),
			Account: st.Accounts[k],
			Outcome: goals.MonthsToGoal(k, st),
		})
	}
	return r
}

// Report builds a report from the current state.
func (s *Service) Report() Report {
	return BuildReport(s.State())
}
