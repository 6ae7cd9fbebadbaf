package model

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// TaxRate is withheld from any income marked as tax-deducted.
var TaxRate = decimal.RequireFromString("0.33")

// IncomeType discriminates the income profile.
type IncomeType string

// Income profile kinds.
const (
	Regular   IncomeType = "regular"
	Irregular IncomeType = "irregular"
)

// ParseIncomeType accepts "regular" or "irregular".
func ParseIncomeType(s string) (IncomeType, bool) {
	switch IncomeType(strings.ToLower(strings.TrimSpace(s))) {
	case Regular:
		return Regular, true
	case Irregular:
		return Irregular, true
	}
	return "", false
}

// PaychecksPerMonthOptions are the allowed paycheck frequencies.
var PaychecksPerMonthOptions = []int{1, 2, 3, 4}

// BillingMonthOptions are the expected contract lengths offered to users.
var BillingMonthOptions = []int{1, 2, 3, 6, 12}

// Income describes how money arrives each month.
type Income struct {
	Type                   IncomeType      `json:"incomeType" yaml:"type"`
	RegularPaycheck        decimal.Decimal `json:"regularPaycheck" yaml:"regular_paycheck"`
	PaychecksPerMonth      int             `json:"paychecksPerMonth" yaml:"paychecks_per_month"`
	ExpectedMonthlyBilling decimal.Decimal `json:"expectedMonthlyBilling" yaml:"expected_monthly_billing"`
	ExpectedBillingMonths  int             `json:"expectedBillingMonths" yaml:"expected_billing_months"`
	FreelanceDeductTax     bool            `json:"freelanceDeductTax" yaml:"freelance_deduct_tax"`
}

// DefaultIncome returns a regular profile paid twice a month with no amounts.
func DefaultIncome() Income {
	return Income{
		Type:                  Regular,
		PaychecksPerMonth:     2,
		ExpectedBillingMonths: 3,
		FreelanceDeductTax:    true,
	}
}

// MonthlyIncome returns the income used by the forecast, goal tracker and
// optimizer.
func (i Income) MonthlyIncome() decimal.Decimal {
	if i.Type == Irregular {
		return i.ExpectedMonthlyNet()
	}
	return i.RegularPaycheck.Mul(decimal.NewFromInt(int64(i.PaychecksPerMonth)))
}

// ExpectedMonthlyNet returns expected billing, net of tax when the freelance
// tax flag is set.
func (i Income) ExpectedMonthlyNet() decimal.Decimal {
	return NetOf(i.ExpectedMonthlyBilling, i.FreelanceDeductTax)
}

// ExpectedContractNet returns the net expected across the whole contract.
func (i Income) ExpectedContractNet() decimal.Decimal {
	return i.ExpectedMonthlyNet().Mul(decimal.NewFromInt(int64(i.ExpectedBillingMonths)))
}

// NetOf returns gross with tax withheld when deductTax is set.
func NetOf(gross decimal.Decimal, deductTax bool) decimal.Decimal {
	if !deductTax {
		return gross
	}
	return gross.Sub(gross.Mul(TaxRate))
}

// ParseAmount coerces user input to a currency amount. Currency symbols,
// thousands separators and surrounding space are ignored; anything else
// that does not parse becomes zero.
func ParseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ValidateAmount rejects negative input. Empty or unparsable input is
// accepted since ParseAmount turns it into zero.
func ValidateAmount(s string) error {
	if ParseAmount(s).IsNegative() {
		return errors.New("amount cannot be negative")
	}
	return nil
}

// ParsePercent coerces user input to a percentage, or zero.
func ParsePercent(s string) float64 {
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
