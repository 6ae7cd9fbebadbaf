package daemon

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/theirongolddev/paysplit/internal/budget"
	"github.com/theirongolddev/paysplit/internal/model"
)

// Handler returns the router for the budget API.
func (s *Service) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(logRequests, s.refreshBudget)

	r.HandleFunc("/healthz", s.handleHealth).Methods("GET")
	r.HandleFunc("/v1/status", s.handleStatus).Methods("GET")
	r.HandleFunc("/v1/state", s.handleState).Methods("GET")
	r.HandleFunc("/v1/report", s.handleReport).Methods("GET")

	r.HandleFunc("/v1/allocations/preview", s.handlePreview).Methods("POST")
	r.HandleFunc("/v1/allocations", s.handleAllocate).Methods("POST")
	r.HandleFunc("/v1/paycheck", s.handleSetPaycheck).Methods("PUT")
	r.HandleFunc("/v1/paycheck/apply", s.handleApplyPaycheck).Methods("POST")

	r.HandleFunc("/v1/accounts/{key}", s.handleUpdateAccount).Methods("PUT")
	r.HandleFunc("/v1/percentages", s.handleSetPercentages).Methods("PUT")
	r.HandleFunc("/v1/percentages/reset", s.handleResetPercentages).Methods("POST")
	r.HandleFunc("/v1/income", s.handleSetIncome).Methods("PUT")
	r.HandleFunc("/v1/optimize/{target}", s.handleOptimize).Methods("POST")
	r.HandleFunc("/v1/clear", s.handleClear).Methods("POST")

	r.HandleFunc("/v1/events", s.handleEvents).Methods("GET")
	r.HandleFunc("/v1/stream", s.handleStream).Methods("GET")
	return r
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.WithFields(log.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start),
		}).Debug("Handled request")
	})
}

// refreshBudget picks up saves made by other processes before serving.
func (s *Service) refreshBudget(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := s.budget.Refresh(r.Context()); err != nil {
			log.WithError(err).Warn("Failed to refresh budget state")
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("Failed to encode response")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.budget.View())
}

func (s *Service) handleReport(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.budget.Report())
}

type allocationRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	DeductTax bool            `json:"deductTax"`
}

func (s *Service) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req allocationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, s.budget.Preview(req.Amount, req.DeductTax))
}

func (s *Service) handleAllocate(w http.ResponseWriter, r *http.Request) {
	var req allocationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	ev := s.budget.Allocate(r.Context(), req.Amount, req.DeductTax)
	writeJSON(w, http.StatusCreated, ev)
}

func (s *Service) handleSetPaycheck(w http.ResponseWriter, r *http.Request) {
	var req allocationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s.budget.SetPaycheck(r.Context(), req.Amount, req.DeductTax)
	writeJSON(w, http.StatusOK, s.budget.PreviewPaycheck())
}

func (s *Service) handleApplyPaycheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusCreated, s.budget.ApplyPaycheck(r.Context()))
}

func (s *Service) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	k, err := budget.ParseAccount(mux.Vars(r)["key"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	var u budget.AccountUpdate
	if !decodeBody(w, r, &u) {
		return
	}
	if u.Empty() {
		http.Error(w, "no account fields to update", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, s.budget.UpdateAccount(r.Context(), k, u))
}

type percentagesRequest struct {
	Main    map[string]float64 `json:"main"`
	Savings map[string]float64 `json:"savings"`
}

// handleSetPercentages changes the named shares and keeps the rest.
func (s *Service) handleSetPercentages(w http.ResponseWriter, r *http.Request) {
	var req percentagesRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Main) == 0 && len(req.Savings) == 0 {
		http.Error(w, "no percentages to update", http.StatusBadRequest)
		return
	}

	main := make(map[model.Category]float64, len(req.Main))
	for key, pct := range req.Main {
		c, err := budget.ParseCategory(key)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		main[c] = pct
	}
	savings := make(map[model.SavingsCategory]float64, len(req.Savings))
	for key, pct := range req.Savings {
		sc, err := budget.ParseSavingsCategory(key)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		savings[sc] = pct
	}

	s.budget.MergePercentages(r.Context(), main, savings)
	writeJSON(w, http.StatusOK, s.budget.View())
}

func (s *Service) handleResetPercentages(w http.ResponseWriter, r *http.Request) {
	s.budget.RestoreDefaults(r.Context())
	writeJSON(w, http.StatusOK, s.budget.View())
}

// incomeRequest carries the income fields a client wants changed.
type incomeRequest struct {
	Type                   *model.IncomeType `json:"incomeType"`
	RegularPaycheck        *decimal.Decimal  `json:"regularPaycheck"`
	PaychecksPerMonth      *int              `json:"paychecksPerMonth"`
	ExpectedMonthlyBilling *decimal.Decimal  `json:"expectedMonthlyBilling"`
	ExpectedBillingMonths  *int              `json:"expectedBillingMonths"`
	FreelanceDeductTax     *bool             `json:"freelanceDeductTax"`
}

func (req incomeRequest) apply(in *model.Income) {
	if req.Type != nil {
		in.Type = *req.Type
	}
	if req.RegularPaycheck != nil {
		in.RegularPaycheck = *req.RegularPaycheck
	}
	if req.PaychecksPerMonth != nil {
		in.PaychecksPerMonth = *req.PaychecksPerMonth
	}
	if req.ExpectedMonthlyBilling != nil {
		in.ExpectedMonthlyBilling = *req.ExpectedMonthlyBilling
	}
	if req.ExpectedBillingMonths != nil {
		in.ExpectedBillingMonths = *req.ExpectedBillingMonths
	}
	if req.FreelanceDeductTax != nil {
		in.FreelanceDeductTax = *req.FreelanceDeductTax
	}
}

// handleSetIncome merges the request body over the current income profile.
// The merge happens under the budget lock.
func (s *Service) handleSetIncome(w http.ResponseWriter, r *http.Request) {
	var req incomeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, s.budget.UpdateIncome(r.Context(), req.apply))
}

func (s *Service) handleOptimize(w http.ResponseWriter, r *http.Request) {
	switch mux.Vars(r)["target"] {
	case "main":
		sug, err := s.budget.AdoptMainSuggestion(r.Context())
		if errors.Is(err, budget.ErrNoIncome) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		writeJSON(w, http.StatusOK, sug)
	case "savings":
		writeJSON(w, http.StatusOK, s.budget.AdoptSavingsSuggestion(r.Context()))
	default:
		http.Error(w, "unknown optimize target", http.StatusNotFound)
	}
}

func (s *Service) handleClear(w http.ResponseWriter, r *http.Request) {
	s.budget.ClearAll(r.Context())
	writeJSON(w, http.StatusOK, s.budget.View())
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.recentEvents())
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	current := Event{
		Type:      "snapshot",
		Timestamp: time.Now(),
		Snapshot:  s.snapshotStatus().Summary,
	}
	writeSSE(w, current)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}
