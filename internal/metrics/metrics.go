// Package metrics registers the Prometheus collectors for the application.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Calculation kinds used as label values.
const (
	KindAffordability = "affordability"
	KindMortgage      = "mortgage"
	KindSchedule      = "schedule"
	KindBudget        = "budget"
	KindPlan          = "plan"
)

// Listings request outcomes used as label values.
const (
	OutcomeSuccess   = "success"
	OutcomeRefused   = "refused"
	OutcomeAPIError  = "api_error"
	OutcomeTransport = "transport_error"
)

var (
	// CalculationsTotal counts successful calculations by kind.
	CalculationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "home_affordability_calculations_total",
			Help: "Total number of successful calculations",
		},
		[]string{"kind"},
	)

	// CalculationErrorsTotal counts calculations rejected for invalid input, by kind.
	CalculationErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "home_affordability_calculation_errors_total",
			Help: "Total number of calculations rejected for invalid input",
		},
		[]string{"kind"},
	)

	// ListingsRequestsTotal counts listings searches by outcome.
	ListingsRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "home_affordability_listings_requests_total",
			Help: "Total number of listings searches by outcome",
		},
		[]string{"outcome"},
	)

	// ListingsRequestDuration observes outbound listings API latency.
	ListingsRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "home_affordability_listings_request_duration_seconds",
			Help:    "Duration of outbound listings API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// ObserveCalculation counts a calculation as succeeded or rejected.
func ObserveCalculation(kind string, err error) {
	if err != nil {
		CalculationErrorsTotal.WithLabelValues(kind).Inc()
		return
	}
	CalculationsTotal.WithLabelValues(kind).Inc()
}
