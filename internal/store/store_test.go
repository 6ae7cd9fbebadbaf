package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/paysplit/internal/model"
)

func sampleState() model.State {
	st := model.DefaultState()
	st.Main[model.Fixed] = 55
	st.Main[model.Savings] = 20
	st.Savings[model.HSA] = 20
	st.Savings[model.BigPurchases] = 10
	st.Accounts[model.FixedAccount].Balance = decimal.RequireFromString("1250.75")
	st.Accounts[model.FixedAccount].MonthlySpend = decimal.NewFromInt(900)
	st.Accounts[model.RetirementAccount].Goal = decimal.NewFromInt(50000)
	st.Income.Type = model.Irregular
	st.Income.RegularPaycheck = decimal.NewFromInt(1800)
	st.Income.PaychecksPerMonth = 4
	st.Income.ExpectedMonthlyBilling = decimal.NewFromInt(7000)
	st.Income.ExpectedBillingMonths = 6
	st.Income.FreelanceDeductTax = false
	st.Paycheck = decimal.RequireFromString("2100.10")
	st.DeductTax = true
	return st
}

func assertSameState(t *testing.T, want, got model.State) {
	t.Helper()
	assert.Equal(t, want.Main, got.Main)
	assert.Equal(t, want.Savings, got.Savings)
	for _, k := range model.AccountKeys {
		assert.True(t, want.Accounts[k].Balance.Equal(got.Accounts[k].Balance), "%s balance", k)
		assert.True(t, want.Accounts[k].Goal.Equal(got.Accounts[k].Goal), "%s goal", k)
		assert.True(t, want.Accounts[k].MonthlySpend.Equal(got.Accounts[k].MonthlySpend), "%s spend", k)
	}
	assert.Equal(t, want.Income.Type, got.Income.Type)
	assert.True(t, want.Income.RegularPaycheck.Equal(got.Income.RegularPaycheck))
	assert.Equal(t, want.Income.PaychecksPerMonth, got.Income.PaychecksPerMonth)
	assert.True(t, want.Income.ExpectedMonthlyBilling.Equal(got.Income.ExpectedMonthlyBilling))
	assert.Equal(t, want.Income.ExpectedBillingMonths, got.Income.ExpectedBillingMonths)
	assert.Equal(t, want.Income.FreelanceDeductTax, got.Income.FreelanceDeductTax)
	assert.True(t, want.Paycheck.Equal(got.Paycheck))
	assert.Equal(t, want.DeductTax, got.DeductTax)
}

func openSQLite(t *testing.T, path string) *SQLite {
	t.Helper()
	db, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSaveWritesAllKeys(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	rev, err := SaveState(ctx, kv, 0, model.DefaultState())
	require.NoError(t, err)
	assert.Equal(t, int64(1), rev)
	assert.Len(t, Keys, 11)

	for _, key := range Keys {
		_, ok, err := kv.Get(ctx, key)
		require.NoError(t, err)
		assert.True(t, ok, key)
	}

	raw, ok, err := kv.Get(ctx, KeyRegularPaycheck)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `""`, raw)
}

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	want := sampleState()

	saved, err := SaveState(ctx, kv, 0, want)
	require.NoError(t, err)
	got, rev, err := LoadState(ctx, kv)
	require.NoError(t, err)
	assert.Equal(t, saved, rev)
	assertSameState(t, want, got)
}

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t, filepath.Join(t.TempDir(), "nested", "paysplit.db"))

	want := sampleState()
	rev, err := SaveState(ctx, db, 0, want)
	require.NoError(t, err)

	// second save overwrites in place
	want.Accounts[model.FixedAccount].Balance = decimal.NewFromInt(10)
	rev, err = SaveState(ctx, db, rev, want)
	require.NoError(t, err)
	assert.Equal(t, int64(2), rev)

	got, loadedRev, err := LoadState(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, rev, loadedRev)
	assertSameState(t, want, got)

	_, ok, err := db.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoadEmptyStoreReturnsDefaults(t *testing.T) {
	got, rev, err := LoadState(context.Background(), NewMemory())
	require.NoError(t, err)
	assert.Zero(t, rev)
	assertSameState(t, model.DefaultState(), got)
}

func TestLoadIgnoresCorruptEntries(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	_, err := kv.PutAll(ctx, 0, map[string]string{
		KeyMainAllocations:       `{not json`,
		KeyAccounts:              `[1,2,3]`,
		KeyIncomeType:            `"weekly"`,
		KeyPaychecksPerMonth:     `9`,
		KeyDeductTax:             `"yes"`,
		KeyRegularPaycheck:       `"1,500"`,
		KeyPaycheck:              `"abc"`,
		KeyExpectedBillingMonths: `12`,
	})
	require.NoError(t, err)

	got, _, err := LoadState(ctx, kv)
	require.NoError(t, err)

	def := model.DefaultState()
	assert.Equal(t, def.Main, got.Main)
	assert.Equal(t, def.Accounts, got.Accounts)
	assert.Equal(t, model.Regular, got.Income.Type)
	assert.Equal(t, 2, got.Income.PaychecksPerMonth)
	assert.False(t, got.DeductTax)
	assert.True(t, got.Income.RegularPaycheck.Equal(decimal.NewFromInt(1500)))
	assert.True(t, got.Paycheck.IsZero())
	assert.Equal(t, 12, got.Income.ExpectedBillingMonths)
}

func TestLoadAcceptsNumericAmounts(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	_, err := kv.PutAll(ctx, 0, map[string]string{
		KeyPaycheck:           `2500.5`,
		KeySavingsAllocations: `{"rainyDay": 70}`,
	})
	require.NoError(t, err)

	got, _, err := LoadState(ctx, kv)
	require.NoError(t, err)
	assert.True(t, got.Paycheck.Equal(decimal.RequireFromString("2500.5")))
	assert.Equal(t, 70.0, got.Savings[model.RainyDay])
	assert.Equal(t, 30.0, got.Savings[model.Retirement])
}

func TestStaleSaveIsRejected(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "paysplit.db")
	stores := map[string]func() (KV, KV){
		"memory": func() (KV, KV) {
			m := NewMemory()
			return m, m
		},
		"sqlite": func() (KV, KV) {
			return openSQLite(t, path), openSQLite(t, path)
		},
	}

	for name, open := range stores {
		t.Run(name, func(t *testing.T) {
			a, b := open()

			_, revA, err := LoadState(ctx, a)
			require.NoError(t, err)
			_, revB, err := LoadState(ctx, b)
			require.NoError(t, err)
			require.Equal(t, revA, revB)

			first := model.DefaultState()
			first.Accounts[model.FixedAccount].Balance = decimal.NewFromInt(5000)
			_, err = SaveState(ctx, a, revA, first)
			require.NoError(t, err)

			// b still holds the old revision
			_, err = SaveState(ctx, b, revB, model.DefaultState())
			require.ErrorIs(t, err, ErrConflict)

			got, rev, err := LoadState(ctx, b)
			require.NoError(t, err)
			assert.Equal(t, revA+1, rev)
			assert.True(t, got.Accounts[model.FixedAccount].Balance.Equal(decimal.NewFromInt(5000)))
		})
	}
}

func TestReopenKeepsRevision(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "paysplit.db")

	db, err := Open(path)
	require.NoError(t, err)
	_, err = SaveState(ctx, db, 0, sampleState())
	require.NoError(t, err)
	require.NoError(t, db.Close())

	rev, err := openSQLite(t, path).Revision(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rev)
}
