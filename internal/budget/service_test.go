package budget

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/paysplit/internal/forecast"
	"github.com/theirongolddev/paysplit/internal/model"
	"github.com/theirongolddev/paysplit/internal/store"
)

type failingKV struct {
	*store.Memory
}

func (failingKV) PutAll(context.Context, int64, map[string]string) (int64, error) {
	return 0, errors.New("disk full")
}

// racingKV loses every save to some other writer.
type racingKV struct {
	*store.Memory
}

func (racingKV) PutAll(context.Context, int64, map[string]string) (int64, error) {
	return 0, store.ErrConflict
}

func newService(t *testing.T) (*Service, *store.Memory) {
	t.Helper()
	kv := store.NewMemory()
	svc, err := Open(context.Background(), kv)
	require.NoError(t, err)
	return svc, kv
}

func ptr(d decimal.Decimal) *decimal.Decimal { return &d }

func TestApplyPaycheckCreditsAndClears(t *testing.T) {
	ctx := context.Background()
	svc, kv := newService(t)

	svc.SetPaycheck(ctx, decimal.NewFromInt(1000), true)
	preview := svc.PreviewPaycheck()
	assert.True(t, preview.Net.Equal(decimal.NewFromInt(670)))

	ev := svc.ApplyPaycheck(ctx)
	assert.True(t, ev.Net.Equal(decimal.NewFromInt(670)))

	st := svc.State()
	assert.True(t, st.Paycheck.IsZero())
	assert.True(t, st.DeductTax, "tax flag is kept")
	assert.True(t, st.Accounts[model.FixedAccount].Balance.Equal(decimal.NewFromInt(335)))

	// persisted
	reloaded, _, err := store.LoadState(ctx, kv)
	require.NoError(t, err)
	assert.True(t, reloaded.Accounts[model.FixedAccount].Balance.Equal(decimal.NewFromInt(335)))
	assert.True(t, reloaded.Paycheck.IsZero())
}

func TestApplyEmptyPaycheckLeavesBalances(t *testing.T) {
	svc, _ := newService(t)
	ev := svc.ApplyPaycheck(context.Background())
	assert.True(t, ev.Net.IsZero())
	assert.Equal(t, model.Accounts{}, svc.State().Accounts)
}

func TestSaveFailureIsSwallowed(t *testing.T) {
	ctx := context.Background()
	svc, err := Open(ctx, failingKV{store.NewMemory()})
	require.NoError(t, err)

	ev := svc.Allocate(ctx, decimal.NewFromInt(100), false)
	assert.True(t, ev.Net.Equal(decimal.NewFromInt(100)))
	assert.True(t, svc.State().Accounts[model.FixedAccount].Balance.Equal(decimal.NewFromInt(50)))
	assert.EqualError(t, svc.LastSaveError(), "saving state: disk full")
}

func TestSaveGivesUpAfterRepeatedConflicts(t *testing.T) {
	ctx := context.Background()
	svc, err := Open(ctx, racingKV{store.NewMemory()})
	require.NoError(t, err)

	svc.Allocate(ctx, decimal.NewFromInt(100), false)
	assert.ErrorIs(t, svc.LastSaveError(), store.ErrConflict)
	assert.True(t, svc.State().Accounts[model.FixedAccount].Balance.Equal(decimal.NewFromInt(50)))
}

func openShared(t *testing.T, path string) *Service {
	t.Helper()
	db, err := store.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	svc, err := Open(context.Background(), db)
	require.NoError(t, err)
	return svc
}

func TestServicesSharingAFileKeepEachOthersWrites(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "paysplit.db")
	cli := openShared(t, path)
	server := openShared(t, path)

	cli.UpdateAccount(ctx, model.FixedAccount, AccountUpdate{Balance: ptr(decimal.NewFromInt(5000))})
	require.NoError(t, cli.LastSaveError())

	// server still holds the state it loaded before the CLI wrote
	server.SetPaycheck(ctx, decimal.NewFromInt(100), false)
	require.NoError(t, server.LastSaveError())

	st := server.State()
	assert.True(t, st.Accounts[model.FixedAccount].Balance.Equal(decimal.NewFromInt(5000)))
	assert.True(t, st.Paycheck.Equal(decimal.NewFromInt(100)))

	disk := openShared(t, path).State()
	assert.True(t, disk.Accounts[model.FixedAccount].Balance.Equal(decimal.NewFromInt(5000)))
	assert.True(t, disk.Paycheck.Equal(decimal.NewFromInt(100)))

	// and the other way round
	cli.Allocate(ctx, decimal.NewFromInt(100), false)
	require.NoError(t, cli.LastSaveError())
	disk = openShared(t, path).State()
	assert.True(t, disk.Accounts[model.FixedAccount].Balance.Equal(decimal.NewFromInt(5050)))
	assert.True(t, disk.Paycheck.Equal(decimal.NewFromInt(100)))
}

func TestRefreshPicksUpOtherWriters(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	a, err := Open(ctx, kv)
	require.NoError(t, err)
	b, err := Open(ctx, kv)
	require.NoError(t, err)

	var got []Change
	b.OnChange(func(c Change) { got = append(got, c) })

	require.NoError(t, b.Refresh(ctx))
	assert.Empty(t, got, "nothing changed")

	a.SetPaycheck(ctx, decimal.NewFromInt(250), true)
	require.NoError(t, b.Refresh(ctx))

	require.Len(t, got, 1)
	assert.Equal(t, ActionReload, got[0].Action)
	assert.True(t, got[0].State.Paycheck.Equal(decimal.NewFromInt(250)))
	assert.True(t, b.State().DeductTax)

	require.NoError(t, b.Refresh(ctx))
	assert.Len(t, got, 1)
}

func TestConcurrentAllocationsAreSerialized(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.Allocate(ctx, decimal.NewFromInt(10), false)
		}()
	}
	wg.Wait()

	assert.True(t, svc.State().Accounts[model.FixedAccount].Balance.Equal(decimal.NewFromInt(250)))
}

func TestUpdateAccountPartial(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	svc.UpdateAccount(ctx, model.HSAAccount, AccountUpdate{Balance: ptr(decimal.NewFromInt(40))})
	got := svc.UpdateAccount(ctx, model.HSAAccount, AccountUpdate{Goal: ptr(decimal.NewFromInt(400))})

	assert.True(t, got.Balance.Equal(decimal.NewFromInt(40)))
	assert.True(t, got.Goal.Equal(decimal.NewFromInt(400)))
	assert.True(t, got.MonthlySpend.IsZero())
}

func TestMergePercentagesClampsButKeepsTotals(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	svc.MergePercentages(ctx,
		map[model.Category]float64{model.Fixed: 140},
		map[model.SavingsCategory]float64{model.HSA: -5})

	st := svc.State()
	assert.Equal(t, 100.0, st.Main[model.Fixed])
	assert.Equal(t, 150.0, st.Main.Total())
	assert.Equal(t, 0.0, st.Savings[model.HSA])
	assert.Equal(t, model.DefaultSavingsPercentages()[model.Retirement], st.Savings[model.Retirement])
}

func TestSetIncomeKeepsValidFrequency(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	got := svc.SetIncome(ctx, model.Income{
		Type:              model.Regular,
		RegularPaycheck:   decimal.NewFromInt(2000),
		PaychecksPerMonth: 7,
	})
	assert.Equal(t, 2, got.PaychecksPerMonth)
	assert.Equal(t, 3, got.ExpectedBillingMonths)
	assert.True(t, svc.State().MonthlyIncome().Equal(decimal.NewFromInt(4000)))
}

func TestAdoptSuggestions(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	_, err := svc.AdoptMainSuggestion(ctx)
	require.ErrorIs(t, err, ErrNoIncome)
	assert.Equal(t, model.DefaultMainPercentages(), svc.State().Main)

	in := model.DefaultIncome()
	in.RegularPaycheck = decimal.NewFromInt(1500)
	svc.SetIncome(ctx, in)

	sug, err := svc.AdoptMainSuggestion(ctx)
	require.NoError(t, err)
	assert.Equal(t, sug.Percentages, svc.State().Main)

	savings := svc.AdoptSavingsSuggestion(ctx)
	assert.Equal(t, 25.0, savings[model.RainyDay])
	assert.Equal(t, savings, svc.State().Savings)
}

func TestClearAllAndRestoreDefaults(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	in := model.DefaultIncome()
	in.RegularPaycheck = decimal.NewFromInt(1500)
	svc.SetIncome(ctx, in)
	svc.Allocate(ctx, decimal.NewFromInt(100), false)
	svc.MergePercentages(ctx, map[model.Category]float64{model.Charity: 30}, nil)

	svc.ClearAll(ctx)
	st := svc.State()
	assert.Equal(t, model.Accounts{}, st.Accounts)
	assert.True(t, st.Income.RegularPaycheck.IsZero())
	assert.Equal(t, 30.0, st.Main[model.Charity])

	svc.RestoreDefaults(ctx)
	assert.Equal(t, model.DefaultMainPercentages(), svc.State().Main)
}

func TestOnChangeNotifies(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	var got []Change
	svc.OnChange(func(c Change) { got = append(got, c) })

	svc.SetPaycheck(ctx, decimal.NewFromInt(10), false)
	svc.ApplyPaycheck(ctx)
	_, _ = svc.AdoptMainSuggestion(ctx) // refused, no income

	require.Len(t, got, 2)
	assert.Equal(t, "set_paycheck", got[0].Action)
	assert.True(t, got[0].State.Paycheck.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, "apply_paycheck", got[1].Action)
	assert.NotEmpty(t, got[1].EventID)
	assert.True(t, got[1].State.Paycheck.IsZero())
	assert.True(t, got[1].State.Accounts[model.FixedAccount].Balance.Equal(decimal.NewFromInt(5)))
}

func TestChangesArriveInMutationOrder(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	var (
		mu  sync.Mutex
		got []decimal.Decimal
	)
	svc.OnChange(func(c Change) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, c.State.Accounts[model.FixedAccount].Balance)
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.Allocate(ctx, decimal.NewFromInt(10), false)
		}()
	}
	wg.Wait()

	require.Len(t, got, 20)
	for i, bal := range got {
		assert.True(t, bal.Equal(decimal.NewFromInt(int64(5*(i+1)))), "change %d saw %s", i, bal)
	}
}

func TestUpdateIncomeEditsCurrentProfile(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	in := model.DefaultIncome()
	in.RegularPaycheck = decimal.NewFromInt(2000)
	svc.SetIncome(ctx, in)

	got := svc.UpdateIncome(ctx, func(cur *model.Income) {
		cur.PaychecksPerMonth = 3
		cur.ExpectedBillingMonths = 0
	})
	assert.True(t, got.RegularPaycheck.Equal(decimal.NewFromInt(2000)))
	assert.Equal(t, 3, got.PaychecksPerMonth)
	assert.Equal(t, in.ExpectedBillingMonths, got.ExpectedBillingMonths, "invalid months fall back")
}

func TestSetDeductTaxKeepsPaycheck(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	svc.SetPaycheck(ctx, decimal.NewFromInt(900), false)
	svc.SetDeductTax(ctx, true)

	st := svc.State()
	assert.True(t, st.Paycheck.Equal(decimal.NewFromInt(900)))
	assert.True(t, st.DeductTax)
}

func TestParseKeys(t *testing.T) {
	_, err := ParseAccount("savings")
	assert.ErrorIs(t, err, ErrUnknownAccount)

	k, err := ParseAccount("rainyDay")
	require.NoError(t, err)
	assert.Equal(t, model.RainyDayAccount, k)

	_, err = ParseCategory("hsa")
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestReport(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	r := svc.Report()
	assert.Nil(t, r.Runway)
	assert.Nil(t, r.MainSuggestion)
	assert.Equal(t, forecast.Unknown, r.Forecast.Trend)
	assert.Len(t, r.Goals, 7)

	in := model.DefaultIncome()
	in.RegularPaycheck = decimal.NewFromInt(1500)
	svc.SetIncome(ctx, in)
	svc.UpdateAccount(ctx, model.FixedAccount, AccountUpdate{
		Balance:      ptr(decimal.NewFromInt(600)),
		MonthlySpend: ptr(decimal.NewFromInt(500)),
	})
	svc.UpdateAccount(ctx, model.FlexibleAccount, AccountUpdate{
		Balance:      ptr(decimal.NewFromInt(400)),
		MonthlySpend: ptr(decimal.NewFromInt(500)),
	})

	r = svc.Report()
	require.NotNil(t, r.Runway)
	assert.InDelta(t, 1.0, *r.Runway, 1e-9)
	require.NotNil(t, r.MainSuggestion)
	assert.Equal(t, forecast.Growing, r.Forecast.Trend)
	assert.Equal(t, 100.0, r.MainTotal)
}
