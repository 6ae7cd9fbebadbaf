package forecast

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/paysplit/internal/model"
)

// BufferMonths is the operating buffer a growing balance is measured against.
const BufferMonths = 6

// Trend tags a forecast result.
type Trend int

// Forecast outcomes.
const (
	Unknown Trend = iota
	Growing
	Declining
)

func (t Trend) String() string {
	switch t {
	case Growing:
		return "growing"
	case Declining:
		return "declining"
	default:
		return "unknown"
	}
}

// MarshalText encodes the trend by name.
func (t Trend) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a trend name. Unrecognized names become Unknown.
func (t *Trend) UnmarshalText(b []byte) error {
	switch string(b) {
	case "growing":
		*t = Growing
	case "declining":
		*t = Declining
	default:
		*t = Unknown
	}
	return nil
}

// Forecast is the projected trajectory of the operating balance.
//
// For Growing, MonthsToTarget is nil once the balance already covers
// BufferMonths of spend, or when inflow exactly matches spend (Stalled).
// For Declining, MonthsUntilDepleted holds the fractional month count.
type Forecast struct {
	Trend               Trend           `json:"trend"`
	MonthlyIncome       decimal.Decimal `json:"monthlyIncome"`
	NetMonthlyFlow      decimal.Decimal `json:"netMonthlyFlow"`
	TargetBalance       decimal.Decimal `json:"targetBalance"`
	MonthsToTarget      *int            `json:"monthsToTarget,omitempty"`
	Stalled             bool            `json:"stalled,omitempty"`
	MonthsUntilDepleted float64         `json:"monthsUntilDepleted,omitempty"`
}

// Healthy reports a growing balance already at or above the buffer.
func (f Forecast) Healthy() bool {
	return f.Trend == Growing && f.MonthsToTarget == nil && !f.Stalled
}

// Message returns the short status line shown next to the forecast.
func (f Forecast) Message() string {
	switch f.Trend {
	case Growing:
		if f.Stalled {
			return "Flat"
		}
		if f.MonthsToTarget == nil {
			return "Healthy"
		}
		return fmt.Sprintf("%dmo to %dmo buffer", *f.MonthsToTarget, BufferMonths)
	case Declining:
		return fmt.Sprintf("%.1fmo", f.MonthsUntilDepleted)
	default:
		return "n/a"
	}
}

// Compute evaluates the forecast for the current state. It is Unknown when
// there is no operating spend or no monthly income.
func Compute(s model.State) Forecast {
	spend := s.Accounts.OperatingSpend()
	if !spend.IsPositive() {
		return Forecast{Trend: Unknown}
	}

	income := s.MonthlyIncome()
	if !income.IsPositive() {
		return Forecast{Trend: Unknown}
	}

	inflow := income.Mul(decimal.NewFromFloat(s.Main.Operating()))
	netFlow := inflow.Sub(spend)
	balance := s.Accounts.OperatingBalance()

	f := Forecast{
		MonthlyIncome:  income,
		NetMonthlyFlow: netFlow,
		TargetBalance:  spend.Mul(decimal.NewFromInt(BufferMonths)),
	}

	if !netFlow.IsNegative() {
		f.Trend = Growing
		gap := f.TargetBalance.Sub(balance)
		if !gap.IsPositive() {
			return f
		}
		if netFlow.IsZero() {
			f.Stalled = true
			return f
		}
		months := int(math.Ceil(gap.InexactFloat64() / netFlow.InexactFloat64()))
		f.MonthsToTarget = &months
		return f
	}

	f.Trend = Declining
	f.MonthsUntilDepleted = balance.InexactFloat64() / netFlow.Abs().InexactFloat64()
	return f
}
