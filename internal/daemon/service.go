// Package daemon serves the budget over a local HTTP API and streams change
// events to subscribers.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/theirongolddev/paysplit/internal/budget"
	"github.com/theirongolddev/paysplit/internal/forecast"
)

// Config controls the daemon runtime behavior.
type Config struct {
	Addr         string
	EventsBuffer int
	// RefreshInterval is how often the budget is reloaded when another
	// process saved to the same store.
	RefreshInterval time.Duration
}

// Snapshot is a compact budget state for status and event payloads.
type Snapshot struct {
	At               time.Time       `json:"at"`
	MonthlyIncome    decimal.Decimal `json:"monthly_income"`
	TotalBalance     decimal.Decimal `json:"total_balance"`
	OperatingBalance decimal.Decimal `json:"operating_balance"`
	OperatingSpend   decimal.Decimal `json:"operating_spend"`
	RunwayMonths     *float64        `json:"runway_months"`
	Trend            forecast.Trend  `json:"trend"`
	Forecast         string          `json:"forecast"`
	MainTotal        float64         `json:"main_total"`
	SavingsTotal     float64         `json:"savings_total"`
}

// Delta captures balance movement between two snapshots.
type Delta struct {
	TotalBalance     decimal.Decimal `json:"total_balance"`
	OperatingBalance decimal.Decimal `json:"operating_balance"`
	MonthlyIncome    decimal.Decimal `json:"monthly_income"`
}

func (d Delta) isZero() bool {
	return d.TotalBalance.IsZero() &&
		d.OperatingBalance.IsZero() &&
		d.MonthlyIncome.IsZero()
}

// Event is emitted after every applied budget change. Delta is omitted
// when no balance or income moved.
type Event struct {
	ID           int64     `json:"id"`
	Type         string    `json:"type"`
	Timestamp    time.Time `json:"timestamp"`
	AllocationID string    `json:"allocation_id,omitempty"`
	Snapshot     Snapshot  `json:"snapshot"`
	Delta        *Delta    `json:"delta,omitempty"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastChangeAt    time.Time `json:"last_change_at"`
	ChangeCount     int64     `json:"change_count"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg    Config
	budget *budget.Service

	mu           sync.RWMutex
	startedAt    time.Time
	lastChangeAt time.Time
	changeCount  int64
	snapshot     Snapshot
	nextEventID  int64
	events       []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a daemon serving b. It subscribes to b's change feed.
func New(cfg Config, b *budget.Service) *Service {
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = 2 * time.Second
	}

	s := &Service{
		cfg:       cfg,
		budget:    b,
		startedAt: time.Now(),
		snapshot:  snapshotFromReport(b.Report()),
		subs:      make(map[int]chan Event),
	}
	b.OnChange(s.onChange)
	return s
}

// Run serves HTTP until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	log.WithField("addr", s.cfg.Addr).Info("Serving budget API")

	go s.refreshLoop(ctx)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("daemon http server: %w", err)
	}
}

// refreshLoop reloads the budget while ctx is live so subscribers see
// changes saved by CLI commands and other processes.
func (s *Service) refreshLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.budget.Refresh(ctx); err != nil && ctx.Err() == nil {
				log.WithError(err).Warn("Failed to refresh budget state")
			}
		}
	}
}

// onChange runs once per change, in change order. The snapshot comes from
// the state the change produced, not from whatever the budget holds now.
func (s *Service) onChange(c budget.Change) {
	snap := snapshotFromReport(budget.BuildReport(c.State))

	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.snapshot
	s.snapshot = snap
	s.lastChangeAt = c.At
	s.changeCount++
	s.nextEventID++
	ev := Event{
		ID:           s.nextEventID,
		Type:         c.Action,
		Timestamp:    c.At,
		AllocationID: c.EventID,
		Snapshot:     snap,
	}
	if d := diffSnapshots(prev, snap); !d.isZero() {
		ev.Delta = &d
	}
	s.publishLocked(ev)
}

func snapshotFromReport(r budget.Report) Snapshot {
	total := decimal.Zero
	for _, g := range r.Goals {
		total = total.Add(g.Account.Balance)
	}
	return Snapshot{
		At:               r.GeneratedAt,
		MonthlyIncome:    r.MonthlyIncome,
		TotalBalance:     total,
		OperatingBalance: r.OperatingBalance,
		OperatingSpend:   r.OperatingSpend,
		RunwayMonths:     r.Runway,
		Trend:            r.Forecast.Trend,
		Forecast:         r.Forecast.Message(),
		MainTotal:        r.MainTotal,
		SavingsTotal:     r.SavingsTotal,
	}
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		TotalBalance:     curr.TotalBalance.Sub(prev.TotalBalance),
		OperatingBalance: curr.OperatingBalance.Sub(prev.OperatingBalance),
		MonthlyIncome:    curr.MonthlyIncome.Sub(prev.MonthlyIncome),
	}
}

// publishLocked records ev and fans it out. s.mu must be held.
func (s *Service) publishLocked(ev Event) {
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// snapshotStatus must not hold s.mu while calling into the budget: change
// listeners take s.mu while the budget is delivering.
func (s *Service) snapshotStatus() Status {
	var lastErr string
	if err := s.budget.LastSaveError(); err != nil {
		lastErr = err.Error()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return Status{
		StartedAt:       s.startedAt,
		LastChangeAt:    s.lastChangeAt,
		ChangeCount:     s.changeCount,
		Summary:         s.snapshot,
		LastError:       lastErr,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) recentEvents() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	return events
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
