package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/paysplit/internal/budget"
	"github.com/theirongolddev/paysplit/internal/model"
	"github.com/theirongolddev/paysplit/internal/store"
)

func newTestService(t *testing.T, buffer int) *Service {
	t.Helper()
	b, err := budget.Open(context.Background(), store.NewMemory())
	require.NoError(t, err)
	return New(Config{EventsBuffer: buffer}, b)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestDiffSnapshots(t *testing.T) {
	prev := Snapshot{
		TotalBalance:     decimal.NewFromInt(100),
		OperatingBalance: decimal.NewFromInt(60),
		MonthlyIncome:    decimal.NewFromInt(3000),
	}
	curr := Snapshot{
		TotalBalance:     decimal.NewFromInt(1100),
		OperatingBalance: decimal.NewFromInt(710),
		MonthlyIncome:    decimal.NewFromInt(3000),
	}

	delta := diffSnapshots(prev, curr)
	assert.True(t, delta.TotalBalance.Equal(decimal.NewFromInt(1000)))
	assert.True(t, delta.OperatingBalance.Equal(decimal.NewFromInt(650)))
	assert.True(t, delta.MonthlyIncome.IsZero())
	assert.False(t, delta.isZero())
	assert.True(t, diffSnapshots(curr, curr).isZero())
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := newTestService(t, 2)

	s.mu.Lock()
	s.publishLocked(Event{ID: 1})
	s.publishLocked(Event{ID: 2})
	s.publishLocked(Event{ID: 3})
	s.mu.Unlock()

	events := s.recentEvents()
	require.Len(t, events, 2)
	assert.Equal(t, int64(2), events[0].ID)
	assert.Equal(t, int64(3), events[1].ID)
}

func TestHealth(t *testing.T) {
	s := newTestService(t, 10)
	rec := do(t, s.Handler(), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())
}

func TestAllocatePublishesEvent(t *testing.T) {
	s := newTestService(t, 10)
	h := s.Handler()

	rec := do(t, h, http.MethodPost, "/v1/allocations", `{"amount":"1000"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var ev struct {
		ID   string                     `json:"id"`
		Net  decimal.Decimal            `json:"net"`
		Main map[string]decimal.Decimal `json:"main"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ev))
	assert.NotEmpty(t, ev.ID)
	assert.True(t, ev.Net.Equal(decimal.NewFromInt(1000)))
	assert.True(t, ev.Main["fixed"].Equal(decimal.NewFromInt(500)))

	rec = do(t, h, http.MethodGet, "/v1/events", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var events []struct {
		Type         string `json:"type"`
		AllocationID string `json:"allocation_id"`
		Delta        *struct {
			TotalBalance decimal.Decimal `json:"total_balance"`
		} `json:"delta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
	require.Len(t, events, 1)
	assert.Equal(t, "allocate", events[0].Type)
	assert.Equal(t, ev.ID, events[0].AllocationID)
	require.NotNil(t, events[0].Delta)
	assert.True(t, events[0].Delta.TotalBalance.Equal(decimal.NewFromInt(1000)))

	status := s.snapshotStatus()
	assert.Equal(t, int64(1), status.ChangeCount)
	assert.True(t, status.Summary.OperatingBalance.Equal(decimal.NewFromInt(650)))
}

func TestPreviewDoesNotMutate(t *testing.T) {
	s := newTestService(t, 10)
	rec := do(t, s.Handler(), http.MethodPost, "/v1/allocations/preview", `{"amount":1000,"deductTax":true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var ev struct {
		TaxWithheld decimal.Decimal `json:"taxWithheld"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ev))
	assert.True(t, ev.TaxWithheld.Equal(decimal.NewFromInt(330)))
	assert.Empty(t, s.recentEvents())
}

func TestPaycheckApply(t *testing.T) {
	s := newTestService(t, 10)
	h := s.Handler()

	require.Equal(t, http.StatusOK, do(t, h, http.MethodPut, "/v1/paycheck", `{"amount":"200"}`).Code)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/v1/paycheck/apply", "").Code)

	st := s.budget.State()
	assert.True(t, st.Paycheck.IsZero())
	assert.True(t, st.Accounts.OperatingBalance().Equal(decimal.NewFromInt(130)))
}

func TestBadRequests(t *testing.T) {
	s := newTestService(t, 10)
	h := s.Handler()

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"malformed json", http.MethodPost, "/v1/allocations", `{"amount":`, http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/v1/allocations", `{"gross":"5"}`, http.StatusBadRequest},
		{"unknown account", http.MethodPut, "/v1/accounts/savings", `{"balance":"5"}`, http.StatusNotFound},
		{"empty account update", http.MethodPut, "/v1/accounts/hsa", `{}`, http.StatusBadRequest},
		{"unknown category", http.MethodPut, "/v1/percentages", `{"main":{"hsa":10}}`, http.StatusBadRequest},
		{"unknown optimize target", http.MethodPost, "/v1/optimize/charity", "", http.StatusNotFound},
		{"main optimize without income", http.MethodPost, "/v1/optimize/main", "", http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, do(t, h, tt.method, tt.path, tt.body).Code)
		})
	}
	assert.Empty(t, s.recentEvents())
}

func TestUpdateAccount(t *testing.T) {
	s := newTestService(t, 10)
	rec := do(t, s.Handler(), http.MethodPut, "/v1/accounts/rainyDay", `{"balance":"250","goal":"1000"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	acct := s.budget.State().Accounts[model.RainyDayAccount]
	assert.True(t, acct.Balance.Equal(decimal.NewFromInt(250)))
	assert.True(t, acct.Goal.Equal(decimal.NewFromInt(1000)))
}

func TestSetPercentagesMergesPartialUpdate(t *testing.T) {
	s := newTestService(t, 10)
	rec := do(t, s.Handler(), http.MethodPut, "/v1/percentages", `{"main":{"charity":20}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var view budget.View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, 20.0, view.MainPercentages["charity"])
	assert.Equal(t, 50.0, view.MainPercentages["fixed"])
	assert.Equal(t, 40.0, view.SavingsPercentages["rainyDay"])
}

func TestSetIncomeMergesOverCurrent(t *testing.T) {
	s := newTestService(t, 10)
	h := s.Handler()

	rec := do(t, h, http.MethodPut, "/v1/income", `{"regularPaycheck":"1500"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	in := s.budget.State().Income
	assert.Equal(t, 2, in.PaychecksPerMonth)
	assert.True(t, in.RegularPaycheck.Equal(decimal.NewFromInt(1500)))

	rec = do(t, h, http.MethodPost, "/v1/optimize/main", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

// hookedBody runs before once, ahead of the first read of the request body.
type hookedBody struct {
	io.Reader
	once   sync.Once
	before func()
}

func (b *hookedBody) Read(p []byte) (int, error) {
	b.once.Do(b.before)
	return b.Reader.Read(p)
}

func TestSetIncomeDoesNotUndoConcurrentClear(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, 10)
	h := s.Handler()

	require.Equal(t, http.StatusOK, do(t, h, http.MethodPut, "/v1/income", `{"regularPaycheck":"2000"}`).Code)

	body := &hookedBody{
		Reader: bytes.NewBufferString(`{"paychecksPerMonth":3}`),
		before: func() { s.budget.ClearAll(ctx) },
	}
	req := httptest.NewRequest(http.MethodPut, "/v1/income", body)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	in := s.budget.State().Income
	assert.True(t, in.RegularPaycheck.IsZero(), "clear kept")
	assert.Equal(t, 3, in.PaychecksPerMonth)
}

func TestSetPercentagesDoesNotUndoConcurrentChange(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, 10)
	h := s.Handler()

	body := &hookedBody{
		Reader: bytes.NewBufferString(`{"main":{"fixed":40}}`),
		before: func() {
			s.budget.MergePercentages(ctx, map[model.Category]float64{model.Charity: 25}, nil)
		},
	}
	req := httptest.NewRequest(http.MethodPut, "/v1/percentages", body)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	st := s.budget.State()
	assert.Equal(t, 40.0, st.Main[model.Fixed])
	assert.Equal(t, 25.0, st.Main[model.Charity])
}

func TestEventSnapshotsFollowEachChange(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, 50)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.budget.Allocate(ctx, decimal.NewFromInt(10), false)
		}()
	}
	wg.Wait()

	events := s.recentEvents()
	require.Len(t, events, 20)
	sort.Slice(events, func(i, j int) bool { return events[i].ID < events[j].ID })
	for i, ev := range events {
		want := decimal.NewFromInt(int64(10 * (i + 1)))
		assert.True(t, ev.Snapshot.TotalBalance.Equal(want), "event %d total %s", ev.ID, ev.Snapshot.TotalBalance)
		require.NotNil(t, ev.Delta, "event %d", ev.ID)
		assert.True(t, ev.Delta.TotalBalance.Equal(decimal.NewFromInt(10)), "event %d delta %s", ev.ID, ev.Delta.TotalBalance)
	}
	assert.True(t, s.snapshotStatus().Summary.TotalBalance.Equal(decimal.NewFromInt(200)))
}

func TestRequestsSeeOtherProcessWrites(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	served, err := budget.Open(ctx, kv)
	require.NoError(t, err)
	cli, err := budget.Open(ctx, kv)
	require.NoError(t, err)

	s := New(Config{EventsBuffer: 10}, served)
	h := s.Handler()

	cli.SetPaycheck(ctx, decimal.NewFromInt(300), false)

	rec := do(t, h, http.MethodGet, "/v1/state", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var view budget.View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.True(t, view.Paycheck.Equal(decimal.NewFromInt(300)))

	events := s.recentEvents()
	require.Len(t, events, 1)
	assert.Equal(t, budget.ActionReload, events[0].Type)
}

func TestRefreshLoopReloads(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	kv := store.NewMemory()
	served, err := budget.Open(ctx, kv)
	require.NoError(t, err)
	cli, err := budget.Open(ctx, kv)
	require.NoError(t, err)

	s := New(Config{EventsBuffer: 10, RefreshInterval: 10 * time.Millisecond}, served)
	go s.refreshLoop(ctx)

	cli.Allocate(ctx, decimal.NewFromInt(100), false)
	assert.Eventually(t, func() bool {
		return s.snapshotStatus().Summary.TotalBalance.Equal(decimal.NewFromInt(100))
	}, 2*time.Second, 10*time.Millisecond)
}
