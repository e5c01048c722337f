package geocode

import (
	"context"
	"net/url"
)

const (
	censusOneLineURL = "https://geocoding.geo.census.gov/geocoder/locations/onelineaddress"
	censusBenchmark  = "Public_AR_Current"
)

// censusOneLineResponse is the JSON response from the Census single-address API.
type censusOneLineResponse struct {
	Result struct {
		AddressMatches []censusAddressMatch `json:"addressMatches"`
	} `json:"result"`
}

type censusAddressMatch struct {
	Coordinates struct {
		X float64 `json:"x"` // longitude
		Y float64 `json:"y"` // latitude
	} `json:"coordinates"`
	MatchedAddress string `json:"matchedAddress"`
}

// CensusProvider geocodes via the free US Census Geocoder. It only covers US
// addresses, so the country restriction is implicit.
type CensusProvider struct {
	httpProvider
}

// NewCensusProvider creates a CensusProvider.
func NewCensusProvider(opts ...Option) *CensusProvider {
	return &CensusProvider{httpProvider: newHTTPProvider("census", censusOneLineURL, append([]Option{WithMinDelay(DefaultMinDelay)}, opts...))}
}

// Name implements Provider.
func (p *CensusProvider) Name() string { return "census" }

// Available implements Provider. The Census geocoder only serves US addresses.
func (p *CensusProvider) Available() bool { return p.countryLower() == "us" }

// Geocode implements Provider.
func (p *CensusProvider) Geocode(ctx context.Context, query string) (*Result, error) {
	if query == "" {
		return &Result{Matched: false, Source: "census"}, nil
	}

	params := url.Values{
		"address":   {query},
		"benchmark": {censusBenchmark},
		"format":    {"json"},
	}

	var censusResp censusOneLineResponse
	if err := p.getJSON(ctx, p.baseURL+"?"+params.Encode(), &censusResp); err != nil {
		return nil, err
	}

	if len(censusResp.Result.AddressMatches) == 0 {
		return &Result{Matched: false, Source: "census"}, nil
	}

	match := censusResp.Result.AddressMatches[0]
	return &Result{
		Latitude:  match.Coordinates.Y,
		Longitude: match.Coordinates.X,
		Source:    "census",
		Quality:   "rooftop", // Census one-line matches are exact
		Matched:   true,
	}, nil
}
