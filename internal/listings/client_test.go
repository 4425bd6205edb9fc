package listings

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/iwvelando/home-affordability/internal/config"
	"github.com/iwvelando/home-affordability/pkg/budget"
	"github.com/iwvelando/home-affordability/pkg/constants"
	"github.com/iwvelando/home-affordability/pkg/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const sampleResponse = `{
  "results": [
    {
      "zpid": 29374021,
      "price": 329000,
      "streetAddress": "123 Oak St",
      "city": "Austin",
      "state": "TX",
      "zipcode": "78701",
      "bedrooms": 3,
      "bathrooms": 2,
      "livingArea": 1650,
      "imageUrl": "https://img.example/1.jpg"
    },
    {
      "zpid": "29374022",
      "price": 365000,
      "streetAddress": "9 Elm Ave",
      "city": "Austin",
      "state": "TX",
      "zipcode": 78701,
      "imgSrc": "https://img.example/2.jpg"
    },
    {
      "price": 340000
    }
  ]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(zap.NewNop(), config.ListingsConfig{
		BaseURL: server.URL,
		APIKey:  "test-key",
	}, server.Client())
	client.newID = func() string { return "generated-id" }
	return client
}

func TestSearchSendsQueryAndMapsResults(t *testing.T) {
	var captured *http.Request
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		captured = r
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleResponse))
	})

	band := budget.DeriveBand(336000)
	results, err := client.Search(context.Background(), Request{ZIP: "78701", Band: band, AffordableHome: 336000})
	require.NoError(t, err)

	require.NotNil(t, captured)
	assert.Equal(t, "/search", captured.URL.Path)
	query := captured.URL.Query()
	assert.Equal(t, "78701", query.Get("location"))
	assert.Equal(t, "Houses", query.Get("home_type"))
	assert.Equal(t, "302400", query.Get("price_min"))
	assert.Equal(t, "369600", query.Get("price_max"))
	assert.Equal(t, "1", query.Get("page"))
	assert.Equal(t, "12", query.Get("limit"))
	assert.Equal(t, "test-key", captured.Header.Get("X-RapidAPI-Key"))
	assert.Equal(t, constants.DefaultListingsHost, captured.Header.Get("X-RapidAPI-Host"))

	require.Len(t, results, 3)

	assert.Equal(t, Listing{
		ID:           "29374021",
		Price:        329000,
		Address:      "123 Oak St, Austin, TX 78701",
		Beds:         3,
		Baths:        2,
		Sqft:         1650,
		ImageURL:     "https://img.example/1.jpg",
		WithinBudget: true,
	}, results[0])

	assert.Equal(t, "29374022", results[1].ID)
	assert.Equal(t, "9 Elm Ave, Austin, TX 78701", results[1].Address)
	assert.Equal(t, "https://img.example/2.jpg", results[1].ImageURL)
	assert.False(t, results[1].WithinBudget)
	assert.Zero(t, results[1].Beds)

	assert.Equal(t, "generated-id", results[2].ID)
	assert.Equal(t, ", ,", results[2].Address)
	assert.Equal(t, constants.PlaceholderImageURL, results[2].ImageURL)
	assert.False(t, results[2].WithinBudget)
}

func TestSearchRefusesInvalidBudget(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := client.Search(context.Background(), Request{ZIP: "78701", Band: budget.DeriveBand(0)})
	assert.ErrorIs(t, err, budget.ErrNoBudget)
	assert.False(t, called, "no request should be issued without a budget")
}

func TestSearchRefusesInvalidZIP(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := client.Search(context.Background(), Request{ZIP: "787", Band: budget.DeriveBand(336000)})
	assert.ErrorIs(t, err, validation.ErrInvalidZIP)
	assert.ErrorIs(t, err, validation.ErrInvalidInput)
	assert.False(t, called)
}

func TestSearchReportsAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	})

	_, err := client.Search(context.Background(), Request{ZIP: "78701", Band: budget.DeriveBand(336000)})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Equal(t, "API error: 429", err.Error())
}

func TestSearchHandlesEmptyResults(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	results, err := client.Search(context.Background(), Request{ZIP: "78701", Band: budget.DeriveBand(336000)})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchRejectsMalformedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results": [`))
	})

	_, err := client.Search(context.Background(), Request{ZIP: "78701", Band: budget.DeriveBand(336000)})
	assert.Error(t, err)
}

func TestSearchHonorsContextCancellation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Search(ctx, Request{ZIP: "78701", Band: budget.DeriveBand(336000)})
	assert.Error(t, err)
}

func TestNewClientDefaults(t *testing.T) {
	client := NewClient(nil, config.ListingsConfig{RequestsPerSecond: 1}, nil)
	assert.Equal(t, constants.DefaultListingsBaseURL, client.baseURL)
	assert.Equal(t, constants.DefaultListingsLimit, client.limit)
	assert.NotNil(t, client.limiter)
	assert.Equal(t, 15*time.Second, client.httpClient.Timeout)

	unlimited := NewClient(nil, config.ListingsConfig{BaseURL: "http://example.test/"}, nil)
	assert.Nil(t, unlimited.limiter)
	assert.Equal(t, "http://example.test", unlimited.baseURL)
}

func TestBrowseURL(t *testing.T) {
	assert.Equal(t, "https://www.zillow.com", BrowseURL(""))
	assert.Equal(t, "https://www.zillow.com/homes/78701_rb/", BrowseURL("78701"))
}
