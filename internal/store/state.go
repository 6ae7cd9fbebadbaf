package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/theirongolddev/paysplit/internal/model"
)

// Persisted keys. Every save writes all of them.
const (
	KeyMainAllocations        = "mainAllocations"
	KeySavingsAllocations     = "savingsAllocations"
	KeyAccounts               = "accounts"
	KeyRegularPaycheck        = "regularPaycheck"
	KeyPaychecksPerMonth      = "paychecksPerMonth"
	KeyPaycheck               = "paycheck"
	KeyIncomeType             = "incomeType"
	KeyDeductTax              = "deductTax"
	KeyExpectedMonthlyBilling = "expectedMonthlyBilling"
	KeyExpectedBillingMonths  = "expectedBillingMonths"
	KeyFreelanceDeductTax     = "freelanceDeductTax"
)

// Keys lists the persisted keys in load order.
var Keys = []string{
	KeyMainAllocations,
	KeySavingsAllocations,
	KeyAccounts,
	KeyRegularPaycheck,
	KeyPaychecksPerMonth,
	KeyPaycheck,
	KeyIncomeType,
	KeyDeductTax,
	KeyExpectedMonthlyBilling,
	KeyExpectedBillingMonths,
	KeyFreelanceDeductTax,
}

// LoadState reads every key into a default state and returns it with the
// revision it was read at. Missing keys keep their default and corrupt
// values are logged and skipped. Only backend errors are returned.
//
// The revision is read first, so a save that lands mid-load makes the
// caller's next SaveState fail with ErrConflict instead of hiding it.
func LoadState(ctx context.Context, kv KV) (model.State, int64, error) {
	st := model.DefaultState()
	rev, err := kv.Revision(ctx)
	if err != nil {
		return st, 0, err
	}
	for _, key := range Keys {
		raw, ok, err := kv.Get(ctx, key)
		if err != nil {
			return st, 0, fmt.Errorf("reading %s: %w", key, err)
		}
		if !ok || raw == "" {
			continue
		}
		if err := decodeKey(&st, key, raw); err != nil {
			log.WithField("key", key).Warnf("ignoring corrupt stored value: %v", err)
			continue
		}
	}
	log.WithField("revision", rev).Debug("Loaded budget state")
	return st, rev, nil
}

// SaveState writes all keys in one PutAll call based on revision rev and
// returns the new revision. A stale rev yields an error wrapping
// ErrConflict.
func SaveState(ctx context.Context, kv KV, rev int64, st model.State) (int64, error) {
	entries, err := EncodeState(st)
	if err != nil {
		return 0, err
	}
	next, err := kv.PutAll(ctx, rev, entries)
	if err != nil {
		return 0, fmt.Errorf("saving state: %w", err)
	}
	return next, nil
}

// EncodeState renders the state as JSON values keyed by persisted key.
// Cleared amounts are stored as empty strings.
func EncodeState(st model.State) (map[string]string, error) {
	values := map[string]any{
		KeyMainAllocations:        st.Main,
		KeySavingsAllocations:     st.Savings,
		KeyAccounts:               st.Accounts,
		KeyRegularPaycheck:        amountString(st.Income.RegularPaycheck),
		KeyPaychecksPerMonth:      st.Income.PaychecksPerMonth,
		KeyPaycheck:               amountString(st.Paycheck),
		KeyIncomeType:             st.Income.Type,
		KeyDeductTax:              st.DeductTax,
		KeyExpectedMonthlyBilling: amountString(st.Income.ExpectedMonthlyBilling),
		KeyExpectedBillingMonths:  st.Income.ExpectedBillingMonths,
		KeyFreelanceDeductTax:     st.Income.FreelanceDeductTax,
	}

	entries := make(map[string]string, len(values))
	for key, v := range values {
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", key, err)
		}
		entries[key] = string(data)
	}
	return entries, nil
}

func decodeKey(st *model.State, key, raw string) error {
	data := []byte(raw)
	switch key {
	case KeyMainAllocations:
		p := st.Main
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		st.Main = p
	case KeySavingsAllocations:
		p := st.Savings
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		st.Savings = p
	case KeyAccounts:
		var a model.Accounts
		if err := json.Unmarshal(data, &a); err != nil {
			return err
		}
		st.Accounts = a
	case KeyRegularPaycheck:
		return decodeAmount(data, &st.Income.RegularPaycheck)
	case KeyPaycheck:
		return decodeAmount(data, &st.Paycheck)
	case KeyExpectedMonthlyBilling:
		return decodeAmount(data, &st.Income.ExpectedMonthlyBilling)
	case KeyPaychecksPerMonth:
		var n int
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		if n < 1 || n > 4 {
			return fmt.Errorf("paychecks per month %d out of range", n)
		}
		st.Income.PaychecksPerMonth = n
	case KeyExpectedBillingMonths:
		var n int
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		if n < 1 {
			return fmt.Errorf("billing months %d out of range", n)
		}
		st.Income.ExpectedBillingMonths = n
	case KeyIncomeType:
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		t, ok := model.ParseIncomeType(s)
		if !ok {
			return fmt.Errorf("unknown income type %q", s)
		}
		st.Income.Type = t
	case KeyDeductTax:
		return json.Unmarshal(data, &st.DeductTax)
	case KeyFreelanceDeductTax:
		return json.Unmarshal(data, &st.Income.FreelanceDeductTax)
	default:
		return fmt.Errorf("unknown key %q", key)
	}
	return nil
}

// decodeAmount accepts a JSON string (the raw user input) or a JSON number
// and applies parse-or-zero to strings.
func decodeAmount(data []byte, dst *decimal.Decimal) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*dst = model.ParseAmount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	d, err := decimal.NewFromString(strings.TrimSpace(n.String()))
	if err != nil {
		return err
	}
	*dst = d
	return nil
}

func amountString(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}
