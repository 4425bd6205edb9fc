// Package listings searches a third-party real-estate API for homes within a
// budget band.
package listings

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/iwvelando/home-affordability/pkg/constants"
)

// Listing is a home returned by a search.
type Listing struct {
	ID           string  `json:"id"`
	Price        float64 `json:"price"`
	Address      string  `json:"address"`
	Beds         float64 `json:"beds"`
	Baths        float64 `json:"baths"`
	Sqft         float64 `json:"sqft"`
	ImageURL     string  `json:"img"`
	WithinBudget bool    `json:"withinBudget"`
}

type searchResponse struct {
	Results []rawListing `json:"results"`
}

type rawListing struct {
	ZPID          flexString `json:"zpid"`
	Price         float64    `json:"price"`
	StreetAddress string     `json:"streetAddress"`
	City          string     `json:"city"`
	State         string     `json:"state"`
	Zipcode       flexString `json:"zipcode"`
	Bedrooms      float64    `json:"bedrooms"`
	Bathrooms     float64    `json:"bathrooms"`
	LivingArea    float64    `json:"livingArea"`
	ImageURL      string     `json:"imageUrl"`
	ImgSrc        string     `json:"imgSrc"`
}

// flexString accepts either a JSON string or a bare number; the API is not
// consistent about the type of identifiers and postal codes.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*f = ""
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", trimmed)
	}
	*f = flexString(n.String())
	return nil
}

func (r rawListing) toListing(affordableHome float64, newID func() string) Listing {
	id := string(r.ZPID)
	if id == "" {
		id = newID()
	}

	image := r.ImageURL
	if image == "" {
		image = r.ImgSrc
	}
	if image == "" {
		image = constants.PlaceholderImageURL
	}

	address := strings.TrimSpace(fmt.Sprintf("%s, %s, %s %s", r.StreetAddress, r.City, r.State, r.Zipcode))

	return Listing{
		ID:           id,
		Price:        r.Price,
		Address:      address,
		Beds:         r.Bedrooms,
		Baths:        r.Bathrooms,
		Sqft:         r.LivingArea,
		ImageURL:     image,
		WithinBudget: r.Price <= affordableHome,
	}
}

// BrowseURL links to the public listings page for a ZIP code, or to the
// site root when zip is empty.
func BrowseURL(zip string) string {
	if zip == "" {
		return constants.BrowseBaseURL
	}
	return fmt.Sprintf("%s/homes/%s_rb/", constants.BrowseBaseURL, zip)
}

func randomID() string {
	return uuid.NewString()
}
