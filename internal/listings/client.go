package listings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/iwvelando/home-affordability/internal/config"
	"github.com/iwvelando/home-affordability/internal/metrics"
	"github.com/iwvelando/home-affordability/pkg/budget"
	"github.com/iwvelando/home-affordability/pkg/constants"
	"github.com/iwvelando/home-affordability/pkg/validation"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const maxResponseBytes = 4 << 20

// APIError reports a non-2xx response from the listings API.
type APIError struct {
	StatusCode int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error: %d", e.StatusCode)
}

// Request describes a listings search.
type Request struct {
	ZIP            string
	Band           budget.Band
	AffordableHome float64
}

// Searcher is implemented by Client; the HTTP server depends on it so tests
// can substitute a fake.
type Searcher interface {
	Search(ctx context.Context, req Request) ([]Listing, error)
}

// Client calls the listings search API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	host       string
	apiKey     string
	homeType   string
	limit      int
	limiter    *rate.Limiter
	logger     *zap.Logger
	newID      func() string
}

// NewClient builds a Client from configuration. A nil httpClient gets one
// with the configured timeout.
func NewClient(logger *zap.Logger, cfg config.ListingsConfig, httpClient *http.Client) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	c := &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(defaultString(cfg.BaseURL, constants.DefaultListingsBaseURL), "/"),
		host:       defaultString(cfg.Host, constants.DefaultListingsHost),
		apiKey:     cfg.APIKey,
		homeType:   defaultString(cfg.HomeType, constants.DefaultListingsHomeType),
		limit:      cfg.Limit,
		logger:     logger,
		newID:      randomID,
	}
	if c.limit <= 0 {
		c.limit = constants.DefaultListingsLimit
	}
	if cfg.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return c
}

func defaultString(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

// Search queries the API for houses in req.ZIP priced within req.Band. It
// refuses to issue the query when the ZIP is malformed or the band is not
// valid.
func (c *Client) Search(ctx context.Context, req Request) ([]Listing, error) {
	zip, err := validation.NormalizeZIP(req.ZIP)
	if err != nil {
		metrics.ListingsRequestsTotal.WithLabelValues(metrics.OutcomeRefused).Inc()
		return nil, err
	}
	if !req.Band.Valid() {
		metrics.ListingsRequestsTotal.WithLabelValues(metrics.OutcomeRefused).Inc()
		return nil, budget.ErrNoBudget
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("listings rate limiter: %w", err)
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchURL(zip, req.Band), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build listings request: %w", err)
	}
	httpReq.Header.Set("X-RapidAPI-Key", c.apiKey)
	httpReq.Header.Set("X-RapidAPI-Host", c.host)
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	metrics.ListingsRequestDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ListingsRequestsTotal.WithLabelValues(metrics.OutcomeTransport).Inc()
		c.logger.Error("listings request failed",
			zap.String("op", "listings.Search"),
			zap.String("zip", zip),
			zap.Error(err),
		)
		return nil, fmt.Errorf("listings request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.ListingsRequestsTotal.WithLabelValues(metrics.OutcomeAPIError).Inc()
		c.logger.Error("listings API returned an error status",
			zap.String("op", "listings.Search"),
			zap.String("zip", zip),
			zap.Int("status", resp.StatusCode),
		)
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil, &APIError{StatusCode: resp.StatusCode}
	}

	var decoded searchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&decoded); err != nil && !errors.Is(err, io.EOF) {
		metrics.ListingsRequestsTotal.WithLabelValues(metrics.OutcomeAPIError).Inc()
		return nil, fmt.Errorf("failed to decode listings response: %w", err)
	}

	results := make([]Listing, 0, len(decoded.Results))
	inBand := 0
	for _, raw := range decoded.Results {
		if req.Band.Contains(raw.Price) {
			inBand++
		}
		results = append(results, raw.toListing(req.AffordableHome, c.newID))
	}

	metrics.ListingsRequestsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	c.logger.Debug("listings search complete",
		zap.String("op", "listings.Search"),
		zap.String("zip", zip),
		zap.Float64("priceMin", req.Band.Lower),
		zap.Float64("priceMax", req.Band.Upper),
		zap.Int("results", len(results)),
		zap.Int("inBand", inBand),
	)
	return results, nil
}

func (c *Client) searchURL(zip string, band budget.Band) string {
	params := url.Values{}
	params.Set("location", zip)
	params.Set("home_type", c.homeType)
	params.Set("price_min", strconv.FormatFloat(band.Lower, 'f', 0, 64))
	params.Set("price_max", strconv.FormatFloat(band.Upper, 'f', 0, 64))
	params.Set("page", "1")
	params.Set("limit", strconv.Itoa(c.limit))
	return c.baseURL + "/search?" + params.Encode()
}
