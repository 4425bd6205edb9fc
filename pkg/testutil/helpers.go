// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/home-affordability/internal/listings"
)

// Float64Ptr returns a pointer to v, for populating optional request fields.
func Float64Ptr(v float64) *float64 {
	return &v
}

// IntPtr returns a pointer to v, for populating optional request fields.
func IntPtr(v int) *int {
	return &v
}

// FindListing finds a listing by ID in the results slice.
// Returns a pointer to the listing if found, nil otherwise.
func FindListing(results []listings.Listing, id string) *listings.Listing {
	for i := range results {
		if results[i].ID == id {
			return &results[i]
		}
	}
	return nil
}
