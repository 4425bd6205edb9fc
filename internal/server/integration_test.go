package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/iwvelando/home-affordability/internal/config"
	"github.com/iwvelando/home-affordability/internal/listings"
	"github.com/iwvelando/home-affordability/internal/planner"
	"github.com/iwvelando/home-affordability/internal/state"
	"github.com/iwvelando/home-affordability/pkg/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const upstreamResults = `{
  "results": [
    {"zpid": 101, "price": 310000, "streetAddress": "12 Oak Ln", "city": "Austin", "state": "TX", "zipcode": "78701", "bedrooms": 3, "bathrooms": 2, "livingArea": 1600},
    {"zpid": "102", "price": 365000, "streetAddress": "9 Elm St", "city": "Austin", "state": "TX", "zipcode": 78701, "bedrooms": 4, "bathrooms": 3, "livingArea": 2100}
  ]
}`

// TestGuidedFlowEndToEnd drives the plan, listings and form endpoints against
// a redis-backed store and a stub listings upstream.
func TestGuidedFlowEndToEnd(t *testing.T) {
	var upstreamQueries []string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upstreamQueries = append(upstreamQueries, r.URL.RawQuery)
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "integration-key", r.Header.Get("X-RapidAPI-Key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(upstreamResults))
	}))
	defer upstream.Close()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := state.NewRedisStore(zap.NewNop(), client, "integration-form")
	defer func() {
		_ = store.Close()
	}()

	conf, err := config.Defaults()
	require.NoError(t, err)
	conf.Listings.BaseURL = upstream.URL
	conf.Listings.APIKey = "integration-key"
	conf.Listings.RequestsPerSecond = 0

	handler := NewHandler(zap.NewNop(), Dependencies{
		Planner:  planner.New(zap.NewNop(), conf.Plan),
		Listings: listings.NewClient(zap.NewNop(), conf.Listings, upstream.Client()),
		Store:    store,
	}, 0, "integration")

	// Listings are refused until a plan has produced a budget.
	rr := perform(t, handler, http.MethodPost, "/api/listings", `{"zip":"78701"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
	assert.Empty(t, upstreamQueries)

	rr = perform(t, handler, http.MethodPost, "/api/plan", `{"value":120000,"frequency":"annually"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var plan planResponse
	decode(t, rr, &plan)
	assert.Equal(t, 672000.0, plan.Estimate.AffordableHome)
	assert.Equal(t, 604800.0, plan.Band.Lower)
	assert.Equal(t, 739200.0, plan.Band.Upper)

	// The record survives in redis, not only in the handler.
	raw, err := mr.Get("integration-form")
	require.NoError(t, err)
	assert.Contains(t, raw, `"affordableHome":672000`)

	rr = perform(t, handler, http.MethodPost, "/api/listings", `{"zip":" 78 701 "}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var found listingsResponse
	decode(t, rr, &found)
	require.Len(t, found.Listings, 2)
	require.Len(t, upstreamQueries, 1)
	assert.Contains(t, upstreamQueries[0], "price_min=604800")
	assert.Contains(t, upstreamQueries[0], "price_max=739200")
	assert.Contains(t, upstreamQueries[0], "location=78701")

	oak := testutil.FindListing(found.Listings, "101")
	require.NotNil(t, oak)
	assert.Equal(t, "12 Oak Ln, Austin, TX 78701", oak.Address)
	assert.True(t, oak.WithinBudget)
	assert.NotNil(t, testutil.FindListing(found.Listings, "102"))
	assert.Equal(t, listings.BrowseURL("78701"), found.BrowseURL)

	// Editing the form and re-quoting keeps the affordability estimate.
	rr = perform(t, handler, http.MethodPatch, "/api/form", `{"homeValue":500000,"downPayment":100000,"interestRate":6}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	rr = perform(t, handler, http.MethodPost, "/api/form/quote", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	form, err := store.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, form.LoanAmount)
	assert.Equal(t, 400000.0, *form.LoanAmount)
	assert.Equal(t, 2398.0, form.MonthlyPayment)
	assert.Equal(t, 672000.0, form.AffordableHome)
	assert.Contains(t, form.ResultText, "$120,000")
}
