// Package budget owns the live budget state. All mutations go through a
// single Service which saves every key after each change. Services in
// different processes may share one store; a save that finds the store
// moved on reloads and reapplies the change.
package budget

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/theirongolddev/paysplit/internal/allocation"
	"github.com/theirongolddev/paysplit/internal/model"
	"github.com/theirongolddev/paysplit/internal/optimizer"
	"github.com/theirongolddev/paysplit/internal/store"
)

// ErrUnknownAccount is returned when an account key does not resolve.
var ErrUnknownAccount = errors.New("unknown account")

// ErrUnknownCategory is returned when a category key does not resolve.
var ErrUnknownCategory = errors.New("unknown category")

// ErrNoIncome is returned when the main split cannot be optimized.
var ErrNoIncome = errors.New("no monthly income configured")

// ActionReload is the Change action for state picked up from another
// process's save.
const ActionReload = "reload"

// maxSaveAttempts bounds how often a mutation is reapplied after losing a
// save race.
const maxSaveAttempts = 3

// Change describes one applied mutation. State is the state right after
// it, so listeners never observe a later mutation.
type Change struct {
	Action  string      `json:"action"`
	EventID string      `json:"eventId,omitempty"`
	At      time.Time   `json:"at"`
	State   model.State `json:"-"`
}

// Service serializes reads and writes of the budget state.
type Service struct {
	kv store.KV

	mu        sync.Mutex
	state     model.State
	rev       int64
	lastSave  error
	listeners []func(Change)

	// notifyMu keeps listener calls in mutation order.
	notifyMu sync.Mutex
}

// Open loads the state from kv.
func Open(ctx context.Context, kv store.KV) (*Service, error) {
	st, rev, err := store.LoadState(ctx, kv)
	if err != nil {
		return nil, fmt.Errorf("loading state: %w", err)
	}
	return &Service{kv: kv, state: st, rev: rev}, nil
}

// State returns a copy of the current state.
func (s *Service) State() model.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastSaveError returns the error from the most recent save, if any.
func (s *Service) LastSaveError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSave
}

// OnChange registers fn to run after every mutation. fn runs outside the
// service lock but must not mutate the service.
func (s *Service) OnChange(fn func(Change)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// mutate applies fn under the lock, saves all keys and notifies listeners.
// Save failures are logged and never undo the in-memory change.
func (s *Service) mutate(ctx context.Context, action string, fn func(st *model.State) string) {
	_ = s.tryMutate(ctx, action, func(st *model.State) (string, error) {
		return fn(st), nil
	})
}

// tryMutate is mutate for changes that can be refused. When fn returns an
// error nothing is saved and listeners are not called.
//
// If another process saved first, the state is reloaded and fn reapplied
// to it, so changes made elsewhere are kept.
func (s *Service) tryMutate(ctx context.Context, action string, fn func(st *model.State) (string, error)) error {
	s.mu.Lock()
	var (
		next    model.State
		eventID string
		saveErr error
	)
	for attempt := 1; ; attempt++ {
		next = s.state
		id, err := fn(&next)
		if err != nil {
			s.mu.Unlock()
			return err
		}
		eventID = id

		rev, err := store.SaveState(ctx, s.kv, s.rev, next)
		if err == nil {
			s.rev, saveErr = rev, nil
			break
		}
		saveErr = err
		if !errors.Is(err, store.ErrConflict) || attempt == maxSaveAttempts {
			break
		}
		fresh, rev, err := store.LoadState(ctx, s.kv)
		if err != nil {
			saveErr = fmt.Errorf("reloading state: %w", err)
			break
		}
		log.WithFields(log.Fields{"action": action, "revision": rev}).
			Debug("Budget state changed on disk, reapplying")
		s.state, s.rev = fresh, rev
	}
	s.state = next
	s.lastSave = saveErr

	entry := log.WithField("action", action)
	if eventID != "" {
		entry = entry.WithField("event", eventID)
	}
	if saveErr != nil {
		entry.WithError(saveErr).Error("Failed to save budget state")
	} else {
		entry.Debug("Saved budget state")
	}

	s.notifyLocked(Change{Action: action, EventID: eventID, At: time.Now().UTC(), State: next})
	return nil
}

// notifyLocked releases s.mu and calls the listeners with c. notifyMu is
// taken before s.mu is released so changes are delivered in order.
func (s *Service) notifyLocked(c Change) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	listeners := append([]func(Change){}, s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(c)
	}
}

// Refresh reloads the state if another process saved since this service
// last loaded or saved. Listeners see the reload as an ActionReload change.
func (s *Service) Refresh(ctx context.Context) error {
	s.mu.Lock()
	rev, err := s.kv.Revision(ctx)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if rev == s.rev {
		s.mu.Unlock()
		return nil
	}
	st, rev, err := store.LoadState(ctx, s.kv)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("reloading state: %w", err)
	}
	s.state, s.rev = st, rev
	log.WithField("revision", rev).Debug("Reloaded budget state")

	s.notifyLocked(Change{Action: ActionReload, At: time.Now().UTC(), State: st})
	return nil
}

// Preview computes an allocation against the current percentages without
// changing anything.
func (s *Service) Preview(gross decimal.Decimal, deductTax bool) allocation.Event {
	st := s.State()
	return allocation.Compute(gross, deductTax, st.Main, st.Savings)
}

// PreviewPaycheck previews the stored pending paycheck.
func (s *Service) PreviewPaycheck() allocation.Event {
	st := s.State()
	return allocation.Compute(st.Paycheck, st.DeductTax, st.Main, st.Savings)
}

// SetDeductTax changes only the pending paycheck's tax flag.
func (s *Service) SetDeductTax(ctx context.Context, deductTax bool) {
	s.mutate(ctx, "set_paycheck", func(st *model.State) string {
		st.DeductTax = deductTax
		return ""
	})
}

// SetPaycheck stores the pending paycheck amount and its tax flag.
func (s *Service) SetPaycheck(ctx context.Context, gross decimal.Decimal, deductTax bool) {
	s.mutate(ctx, "set_paycheck", func(st *model.State) string {
		st.Paycheck = gross
		st.DeductTax = deductTax
		return ""
	})
}

// ApplyPaycheck credits the stored pending paycheck and clears it.
func (s *Service) ApplyPaycheck(ctx context.Context) allocation.Event {
	var ev allocation.Event
	s.mutate(ctx, "apply_paycheck", func(st *model.State) string {
		ev = allocation.Compute(st.Paycheck, st.DeductTax, st.Main, st.Savings)
		st.Accounts = allocation.Apply(ev, st.Accounts)
		st.Paycheck = decimal.Zero
		return ev.ID.String()
	})
	return ev
}

// Allocate credits a one-off amount, such as a freelance payment, without
// touching the stored paycheck.
func (s *Service) Allocate(ctx context.Context, gross decimal.Decimal, deductTax bool) allocation.Event {
	var ev allocation.Event
	s.mutate(ctx, "allocate", func(st *model.State) string {
		ev = allocation.Compute(gross, deductTax, st.Main, st.Savings)
		st.Accounts = allocation.Apply(ev, st.Accounts)
		return ev.ID.String()
	})
	return ev
}

// AccountUpdate holds optional new values for an account.
type AccountUpdate struct {
	Balance      *decimal.Decimal `json:"balance,omitempty"`
	Goal         *decimal.Decimal `json:"goal,omitempty"`
	MonthlySpend *decimal.Decimal `json:"monthlySpend,omitempty"`
}

// Empty reports whether no field is set.
func (u AccountUpdate) Empty() bool {
	return u.Balance == nil && u.Goal == nil && u.MonthlySpend == nil
}

// UpdateAccount overwrites the fields set in u.
func (s *Service) UpdateAccount(ctx context.Context, k model.AccountKey, u AccountUpdate) model.Account {
	var out model.Account
	s.mutate(ctx, "update_account", func(st *model.State) string {
		acct := &st.Accounts[k]
		if u.Balance != nil {
			acct.Balance = *u.Balance
		}
		if u.Goal != nil {
			acct.Goal = *u.Goal
		}
		if u.MonthlySpend != nil {
			acct.MonthlySpend = *u.MonthlySpend
		}
		out = *acct
		return ""
	})
	return out
}

// MergePercentages overwrites the listed shares and keeps the others.
func (s *Service) MergePercentages(ctx context.Context, main map[model.Category]float64, savings map[model.SavingsCategory]float64) {
	s.mutate(ctx, "set_percentages", func(st *model.State) string {
		for c, v := range main {
			st.Main[c] = clampPercent(v)
		}
		for sc, v := range savings {
			st.Savings[sc] = clampPercent(v)
		}
		return ""
	})
}

// SetIncome replaces the income profile. Out-of-range frequencies fall back
// to the current value.
func (s *Service) SetIncome(ctx context.Context, in model.Income) model.Income {
	return s.UpdateIncome(ctx, func(cur *model.Income) { *cur = in })
}

// UpdateIncome edits the current income profile in place under the lock,
// then normalizes it like SetIncome.
func (s *Service) UpdateIncome(ctx context.Context, fn func(*model.Income)) model.Income {
	var out model.Income
	s.mutate(ctx, "set_income", func(st *model.State) string {
		in := st.Income
		fn(&in)
		if in.Type != model.Regular && in.Type != model.Irregular {
			in.Type = st.Income.Type
		}
		if in.PaychecksPerMonth < 1 || in.PaychecksPerMonth > 4 {
			in.PaychecksPerMonth = st.Income.PaychecksPerMonth
		}
		if in.ExpectedBillingMonths < 1 {
			in.ExpectedBillingMonths = st.Income.ExpectedBillingMonths
		}
		st.Income = in
		out = in
		return ""
	})
	return out
}

// AdoptMainSuggestion replaces the main percentages with the optimizer's
// suggestion. It returns ErrNoIncome when there is nothing to suggest.
func (s *Service) AdoptMainSuggestion(ctx context.Context) (optimizer.MainSuggestion, error) {
	var sug optimizer.MainSuggestion
	err := s.tryMutate(ctx, "adopt_main", func(st *model.State) (string, error) {
		var ok bool
		sug, ok = optimizer.SuggestMain(*st)
		if !ok {
			return "", ErrNoIncome
		}
		st.Main = sug.Percentages
		return "", nil
	})
	return sug, err
}

// AdoptSavingsSuggestion replaces the savings percentages with the
// optimizer's suggestion.
func (s *Service) AdoptSavingsSuggestion(ctx context.Context) model.SavingsPercentages {
	var sug model.SavingsPercentages
	s.mutate(ctx, "adopt_savings", func(st *model.State) string {
		sug = optimizer.SuggestSavings(st.Accounts)
		st.Savings = sug
		return ""
	})
	return sug
}

// RestoreDefaults resets both percentage vectors.
func (s *Service) RestoreDefaults(ctx context.Context) {
	s.mutate(ctx, "restore_defaults", func(st *model.State) string {
		st.RestoreDefaultPercentages()
		return ""
	})
}

// ClearAll zeroes every account and the income amounts.
func (s *Service) ClearAll(ctx context.Context) {
	s.mutate(ctx, "clear_all", func(st *model.State) string {
		st.ClearAll()
		return ""
	})
}

// ParseAccount resolves an account key, wrapping ErrUnknownAccount.
func ParseAccount(key string) (model.AccountKey, error) {
	k, ok := model.ParseAccountKey(key)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownAccount, key)
	}
	return k, nil
}

// ParseCategory resolves a main category key, wrapping ErrUnknownCategory.
func ParseCategory(key string) (model.Category, error) {
	c, ok := model.ParseCategory(key)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, key)
	}
	return c, nil
}

// ParseSavingsCategory resolves a savings sub-category key, wrapping
// ErrUnknownCategory.
func ParseSavingsCategory(key string) (model.SavingsCategory, error) {
	sc, ok := model.ParseSavingsCategory(key)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, key)
	}
	return sc, nil
}

func clampPercent(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(100, math.Max(0, v))
}
