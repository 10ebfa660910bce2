package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"subtrack/internal/auth"
	"subtrack/internal/core"
	"subtrack/internal/export"
	"subtrack/internal/importer"
	"subtrack/internal/ledger"
	applog "subtrack/internal/log"
)

type subscriptionRequest struct {
	Name          string              `json:"name"`
	Price         core.Money          `json:"price"`
	Currency      string              `json:"currency"`
	Frequency     core.Frequency      `json:"frequency"`
	BillingDate   core.Date           `json:"billing_date"`
	PaymentMethod core.PaymentMethod  `json:"payment_method"`
	Category      string              `json:"category"`
	Notes         string              `json:"notes"`
	IsShared      bool                `json:"is_shared"`
	SharedWith    []core.SharedPerson `json:"shared_with"`
	IsIncluded    bool                `json:"is_included"`
	IncludedWith  string              `json:"included_with"`
}

func (req subscriptionRequest) toInput() ledger.AddInput {
	return ledger.AddInput{
		Name:          req.Name,
		Price:         req.Price,
		Currency:      req.Currency,
		Frequency:     req.Frequency,
		BillingDate:   req.BillingDate,
		PaymentMethod: req.PaymentMethod,
		Category:      req.Category,
		Notes:         req.Notes,
		IsShared:      req.IsShared,
		SharedWith:    req.SharedWith,
		IsIncluded:    req.IsIncluded,
		IncludedWith:  req.IncludedWith,
	}
}

type subscriptionPatchRequest struct {
	Name          *string              `json:"name"`
	Price         *core.Money          `json:"price"`
	Currency      *string              `json:"currency"`
	Frequency     *core.Frequency      `json:"frequency"`
	BillingDate   *core.Date           `json:"billing_date"`
	PaymentMethod *core.PaymentMethod  `json:"payment_method"`
	Category      *string              `json:"category"`
	Notes         *string              `json:"notes"`
	Status        *core.Status         `json:"status"`
	IsShared      *bool                `json:"is_shared"`
	SharedWith    *[]core.SharedPerson `json:"shared_with"`
	IsIncluded    *bool                `json:"is_included"`
	IncludedWith  *string              `json:"included_with"`
}

func (req subscriptionPatchRequest) toPatch() ledger.UpdatePatch {
	return ledger.UpdatePatch{
		Name:          req.Name,
		Price:         req.Price,
		Currency:      req.Currency,
		Frequency:     req.Frequency,
		BillingDate:   req.BillingDate,
		PaymentMethod: req.PaymentMethod,
		Category:      req.Category,
		Notes:         req.Notes,
		Status:        req.Status,
		IsShared:      req.IsShared,
		SharedWith:    req.SharedWith,
		IsIncluded:    req.IsIncluded,
		IncludedWith:  req.IncludedWith,
	}
}

func (s *Server) handleCreateSubscription(w http.ResponseWriter, r *http.Request) {
	var req subscriptionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	sub, err := s.ledger.Add(r.Context(), req.toInput())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	s.invalidateAggregates()
	writeJSON(w, http.StatusCreated, sub)
}

func (s *Server) handleListSubscriptions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.ledger.List())
}

func (s *Server) handleGetSubscription(w http.ResponseWriter, r *http.Request) {
	sub, err := s.ledger.Get(r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (s *Server) handleUpdateSubscription(w http.ResponseWriter, r *http.Request) {
	var req subscriptionPatchRequest
	if !decodeBody(w, r, &req) {
		return
	}

	sub, err := s.ledger.Update(r.Context(), r.PathValue("id"), req.toPatch())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	s.invalidateAggregates()
	writeJSON(w, http.StatusOK, sub)
}

type deleteResponse struct {
	Deleted       core.Subscription `json:"deleted"`
	AnnualSavings core.Money        `json:"annual_savings"`
}

func (s *Server) handleDeleteSubscription(w http.ResponseWriter, r *http.Request) {
	sub, savings, err := s.ledger.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	s.invalidateAggregates()
	writeJSON(w, http.StatusOK, deleteResponse{Deleted: sub, AnnualSavings: savings})
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	const key = "stats"
	if st, ok := s.statsCache.Get(key); ok {
		writeJSON(w, http.StatusOK, st)
		return
	}

	st := s.ledger.Stats()
	s.statsCache.Set(key, st)
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleUpcoming(w http.ResponseWriter, r *http.Request) {
	days := s.opts.UpcomingWindow
	if q := r.URL.Query().Get("days"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 || n > 365 {
			writeError(w, http.StatusBadRequest, "days must be between 1 and 365")
			return
		}
		days = n
	}

	key := fmt.Sprintf("upcoming:%d", days)
	if subs, ok := s.upcomingCache.Get(key); ok {
		writeJSON(w, http.StatusOK, subs)
		return
	}

	subs := s.ledger.Upcoming(days)
	s.upcomingCache.Set(key, subs)
	writeJSON(w, http.StatusOK, subs)
}

func (s *Server) handleShared(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.ledger.SharedSummary())
}

type importRequest struct {
	Text string `json:"text"`
}

type importResponse struct {
	Imported []core.Subscription `json:"imported"`
	Skipped  int                 `json:"skipped"`
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if !decodeBody(w, r, &req) {
		return
	}

	drafts := importer.ParseText(req.Text, time.Now())
	resp := importResponse{Imported: []core.Subscription{}}
	for _, draft := range drafts {
		sub, err := s.ledger.Add(r.Context(), draft)
		if err != nil {
			slog.WarnContext(r.Context(), "Skipping unparseable import line",
				"name", draft.Name, applog.FieldError, err)
			resp.Skipped++
			continue
		}
		resp.Imported = append(resp.Imported, sub)
	}

	if len(resp.Imported) > 0 {
		s.invalidateAggregates()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="subscriptions.csv"`)
	if err := export.WriteCSV(w, s.ledger.List()); err != nil {
		slog.Error("CSV export failed", applog.FieldError, err)
	}
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="subscriptions.xlsx"`)
	if err := export.WriteXLSX(w, s.ledger.List()); err != nil {
		slog.Error("XLSX export failed", applog.FieldError, err)
	}
}

type loginRequest struct {
	Email string `json:"email"`
}

type registerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := s.auth.Login(r.Context(), req.Email)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleLoginGoogle(w http.ResponseWriter, r *http.Request) {
	user, err := s.auth.LoginWithGoogle(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := s.auth.Register(r.Context(), req.Name, req.Email)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.Logout(r.Context()); err != nil {
		writeDomainError(w, err)
		return
	}
	// Logout wipes the data blob; drop the in-memory set too, otherwise the
	// next mutation would persist the wiped records right back.
	if err := s.ledger.Reload(r.Context()); err != nil {
		writeDomainError(w, err)
		return
	}
	s.invalidateAggregates()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.auth.Current(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	onboarded, err := s.auth.OnboardingCompleted(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		User                auth.User `json:"user"`
		OnboardingCompleted bool      `json:"onboarding_completed"`
	}{User: user, OnboardingCompleted: onboarded})
}

func (s *Server) handleCompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.CompleteOnboarding(r.Context()); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
