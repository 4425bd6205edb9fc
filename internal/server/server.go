package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/iwvelando/home-affordability/internal/listings"
	"github.com/iwvelando/home-affordability/internal/metrics"
	"github.com/iwvelando/home-affordability/internal/planner"
	"github.com/iwvelando/home-affordability/internal/state"
	"github.com/iwvelando/home-affordability/pkg/affordability"
	"github.com/iwvelando/home-affordability/pkg/budget"
	"github.com/iwvelando/home-affordability/pkg/constants"
	"github.com/iwvelando/home-affordability/pkg/loans"
	"github.com/iwvelando/home-affordability/pkg/validation"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Dependencies are the collaborators the HTTP handler delegates to.
type Dependencies struct {
	Planner  *planner.Planner
	Listings listings.Searcher
	Store    state.Store
}

type handler struct {
	logger      *zap.Logger
	maxBodySize int64
	version     string
	planner     *planner.Planner
	listings    listings.Searcher
	store       state.Store

	// formMu serializes read-modify-write cycles on the stored form.
	formMu sync.Mutex
}

// NewHandler constructs the HTTP handler that serves the calculator API.
func NewHandler(logger *zap.Logger, deps Dependencies, maxBodySize int64, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxBodySize <= 0 {
		maxBodySize = constants.DefaultMaxBodySizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	store := deps.Store
	if store == nil {
		store = state.NewMemoryStore()
	}

	h := &handler{
		logger:      logger,
		maxBodySize: maxBodySize,
		version:     trimmedVersion,
		planner:     deps.Planner,
		listings:    deps.Listings,
		store:       store,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)

	r.Route("/api", func(r chi.Router) {
		// Stateless calculators
		r.Post("/affordability", h.handleAffordability)
		r.Post("/mortgage", h.handleMortgage)
		r.Post("/mortgage/schedule", h.handleSchedule)
		r.Get("/budget", h.handleBudget)

		// Form-backed flow
		r.Post("/plan", h.handlePlan)
		r.Post("/listings", h.handleListings)
		r.Get("/form", h.handleFormGet)
		r.Patch("/form", h.handleFormPatch)
		r.Delete("/form", h.handleFormReset)
		r.Post("/form/quote", h.handleFormQuote)

		r.Get("/version", h.handleVersion)
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}

type affordabilityRequest struct {
	Value     float64 `json:"value"`
	Frequency string  `json:"frequency"`
}

func (a affordabilityRequest) income() (affordability.Income, error) {
	frequency, err := affordability.ParseFrequency(a.Frequency)
	if err != nil {
		return affordability.Income{}, err
	}
	return affordability.Income{Value: a.Value, Frequency: frequency}, nil
}

type affordabilityResponse struct {
	Annual         float64 `json:"annual"`
	AffordableHome float64 `json:"affordableHome"`
}

type mortgageRequest struct {
	loans.QuoteRequest
	AnnualIncome float64 `json:"annualIncome,omitempty"`
}

type mortgageResponse struct {
	loans.Quote
	Summary string `json:"summary"`
}

type scheduleRequest struct {
	loans.QuoteRequest
	StartDate string `json:"startDate,omitempty"`
}

type scheduleResponse struct {
	Quote    loans.Quote           `json:"quote"`
	Schedule []loans.Payment       `json:"schedule"`
	Summary  loans.ScheduleSummary `json:"summary"`
}

type budgetResponse struct {
	budget.Band
	Valid bool `json:"valid"`
}

type listingsRequest struct {
	ZIP            string   `json:"zip"`
	AffordableHome *float64 `json:"affordableHome,omitempty"`
}

type listingsResponse struct {
	Band      budgetResponse     `json:"band"`
	Listings  []listings.Listing `json:"listings"`
	Count     int                `json:"count"`
	BrowseURL string             `json:"browseUrl"`
	Duration  string             `json:"duration"`
}

type planResponse struct {
	planner.Plan
	Form state.Form `json:"form"`
}

func (h *handler) handleAffordability(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleAffordability"

	var req affordabilityRequest
	if !h.decodeJSON(w, r, &req, op) {
		return
	}

	income, err := req.income()
	if err != nil {
		metrics.ObserveCalculation(metrics.KindAffordability, err)
		h.respondErr(w, err, op)
		return
	}

	estimate, err := affordability.EstimateAffordability(income)
	metrics.ObserveCalculation(metrics.KindAffordability, err)
	if err != nil {
		h.respondErr(w, err, op)
		return
	}

	h.writeJSON(w, http.StatusOK, affordabilityResponse{
		Annual:         estimate.Annual,
		AffordableHome: estimate.AffordableHome,
	})
}

func (h *handler) handleMortgage(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleMortgage"

	var req mortgageRequest
	if !h.decodeJSON(w, r, &req, op) {
		return
	}

	quote, err := loans.CalculateMortgage(req.QuoteRequest)
	metrics.ObserveCalculation(metrics.KindMortgage, err)
	if err != nil {
		h.respondErr(w, err, op)
		return
	}

	h.writeJSON(w, http.StatusOK, mortgageResponse{
		Quote:   quote,
		Summary: planner.Summary(req.AnnualIncome, quote),
	})
}

func (h *handler) handleSchedule(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSchedule"

	var req scheduleRequest
	if !h.decodeJSON(w, r, &req, op) {
		return
	}

	quote, err := loans.CalculateMortgage(req.QuoteRequest)
	if err == nil {
		var schedule []loans.Payment
		schedule, err = loans.GenerateSchedule(quote)
		if err == nil && req.StartDate != "" {
			err = loans.AssignDates(schedule, req.StartDate)
		}
		metrics.ObserveCalculation(metrics.KindSchedule, err)
		if err == nil {
			h.writeJSON(w, http.StatusOK, scheduleResponse{
				Quote:    quote,
				Schedule: schedule,
				Summary:  loans.SummarizeSchedule(schedule),
			})
			return
		}
	} else {
		metrics.ObserveCalculation(metrics.KindSchedule, err)
	}
	h.respondErr(w, err, op)
}

func (h *handler) handleBudget(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleBudget"

	raw := strings.TrimSpace(r.URL.Query().Get("affordableHome"))
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		err = fmt.Errorf("%w: affordableHome must be a number, got %q", validation.ErrInvalidInput, raw)
		metrics.ObserveCalculation(metrics.KindBudget, err)
		h.respondErr(w, err, op)
		return
	}

	band := budget.DeriveBand(value)
	metrics.ObserveCalculation(metrics.KindBudget, nil)
	h.writeJSON(w, http.StatusOK, budgetResponse{Band: band, Valid: band.Valid()})
}

func (h *handler) handlePlan(w http.ResponseWriter, r *http.Request) {
	const op = "server.handlePlan"

	if h.planner == nil {
		h.respondErrorWithOp(w, http.StatusServiceUnavailable, "planner is not configured", op)
		return
	}

	var req affordabilityRequest
	if !h.decodeJSON(w, r, &req, op) {
		return
	}

	income, err := req.income()
	if err != nil {
		h.respondErr(w, err, op)
		return
	}

	plan, err := h.planner.Plan(income)
	if err != nil {
		h.respondErr(w, err, op)
		return
	}

	h.formMu.Lock()
	defer h.formMu.Unlock()

	form, err := h.store.Load(r.Context())
	if err != nil {
		h.respondErr(w, err, op)
		return
	}
	form = planner.ApplyPlan(form, plan)
	if err := h.store.Save(r.Context(), form); err != nil {
		h.respondErr(w, err, op)
		return
	}

	h.writeJSON(w, http.StatusOK, planResponse{Plan: plan, Form: form})
}

func (h *handler) handleListings(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleListings"

	if h.listings == nil {
		h.respondErrorWithOp(w, http.StatusServiceUnavailable, "listings search is not configured", op)
		return
	}

	var req listingsRequest
	if !h.decodeJSON(w, r, &req, op) {
		return
	}

	zip, err := validation.NormalizeZIP(req.ZIP)
	if err != nil {
		h.respondErr(w, err, op)
		return
	}

	var affordableHome float64
	if req.AffordableHome != nil {
		affordableHome = *req.AffordableHome
	} else {
		form, err := h.store.Load(r.Context())
		if err != nil {
			h.respondErr(w, err, op)
			return
		}
		affordableHome = form.AffordableHome
	}

	start := time.Now()
	band := budget.DeriveBand(affordableHome)
	results, err := h.listings.Search(r.Context(), listings.Request{
		ZIP:            zip,
		Band:           band,
		AffordableHome: affordableHome,
	})
	if err != nil {
		h.respondErr(w, err, op)
		return
	}

	elapsed := time.Since(start)

	h.logger.Info("listings search served",
		zap.String("op", op),
		zap.String("zip", zip),
		zap.Int("results", len(results)),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, listingsResponse{
		Band:      budgetResponse{Band: band, Valid: band.Valid()},
		Listings:  results,
		Count:     len(results),
		BrowseURL: listings.BrowseURL(zip),
		Duration:  elapsed.String(),
	})
}

func (h *handler) handleFormGet(w http.ResponseWriter, r *http.Request) {
	form, err := h.store.Load(r.Context())
	if err != nil {
		h.respondErr(w, err, "server.handleFormGet")
		return
	}
	h.writeJSON(w, http.StatusOK, form)
}

func (h *handler) handleFormPatch(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleFormPatch"

	var update state.Update
	if !h.decodeJSON(w, r, &update, op) {
		return
	}

	h.formMu.Lock()
	defer h.formMu.Unlock()

	form, err := h.store.Load(r.Context())
	if err != nil {
		h.respondErr(w, err, op)
		return
	}
	form = form.Merge(update)
	if err := h.store.Save(r.Context(), form); err != nil {
		h.respondErr(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, form)
}

func (h *handler) handleFormReset(w http.ResponseWriter, r *http.Request) {
	h.formMu.Lock()
	defer h.formMu.Unlock()

	form := state.DefaultForm()
	if err := h.store.Save(r.Context(), form); err != nil {
		h.respondErr(w, err, "server.handleFormReset")
		return
	}
	h.writeJSON(w, http.StatusOK, form)
}

func (h *handler) handleFormQuote(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleFormQuote"

	h.formMu.Lock()
	defer h.formMu.Unlock()

	form, err := h.store.Load(r.Context())
	if err != nil {
		h.respondErr(w, err, op)
		return
	}

	quote, err := planner.Quote(form)
	if err != nil {
		h.respondErr(w, err, op)
		return
	}

	form = planner.ApplyQuote(form, quote)
	if err := h.store.Save(r.Context(), form); err != nil {
		h.respondErr(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, form)
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

// decodeJSON reads a size-capped JSON body into dst, writing the error
// response itself when decoding fails.
func (h *handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}, op string) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds limit of %d bytes", h.maxBodySize), op)
			return false
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return false
	}
	return true
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var apiErr *listings.APIError
	switch {
	case errors.Is(err, validation.ErrInvalidInput), errors.Is(err, budget.ErrNoBudget):
		return http.StatusBadRequest
	case errors.As(err, &apiErr):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (h *handler) respondErr(w http.ResponseWriter, err error, op string) {
	h.respondErrorWithOp(w, statusFor(err), err.Error(), op)
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("op", op),
			zap.Int("status", status),
			zap.String("error", msg),
		)
	} else {
		h.logger.Debug("request rejected",
			zap.String("op", op),
			zap.Int("status", status),
			zap.String("error", msg),
		)
	}

	h.writeJSON(w, status, map[string]string{"error": msg})
}

// writeJSON encodes payload in full before writing the status. A payload that
// cannot be encoded is answered with a 500.
func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		h.logger.Error("failed to encode JSON response",
			zap.Int("status", status),
			zap.Error(err),
		)
		buf.Reset()
		status = http.StatusInternalServerError
		_ = json.NewEncoder(&buf).Encode(map[string]string{"error": "failed to encode response"})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

func (h *handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.logger.Info("request",
			zap.String("op", "server.logRequests"),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("requestId", middleware.GetReqID(r.Context())),
		)
	})
}
