package geocode

import (
	"context"
	"net/url"
	"strconv"

	"github.com/rotisserie/eris"
)

const nominatimSearchURL = "https://nominatim.openstreetmap.org/search"

// nominatimResult mirrors the relevant parts of the OSM search payload.
type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
	Category    string `json:"category"`
	Type        string `json:"type"`
	AddressType string `json:"addresstype"`
}

// NominatimProvider geocodes via the free OpenStreetMap Nominatim service. The
// public instance allows one request per second, so callers should keep the
// default minimum delay.
type NominatimProvider struct {
	httpProvider
}

// NewNominatimProvider creates a NominatimProvider throttled to DefaultMinDelay
// unless WithMinDelay says otherwise.
func NewNominatimProvider(opts ...Option) *NominatimProvider {
	return &NominatimProvider{httpProvider: newHTTPProvider("nominatim", nominatimSearchURL, append([]Option{WithMinDelay(DefaultMinDelay)}, opts...))}
}

// Name implements Provider.
func (p *NominatimProvider) Name() string { return "nominatim" }

// Available implements Provider.
func (p *NominatimProvider) Available() bool { return true }

// Geocode implements Provider.
func (p *NominatimProvider) Geocode(ctx context.Context, query string) (*Result, error) {
	if query == "" {
		return &Result{Matched: false, Source: "nominatim"}, nil
	}

	params := url.Values{
		"q":              {query},
		"format":         {"jsonv2"},
		"limit":          {"1"},
		"addressdetails": {"0"},
		"countrycodes":   {p.countryLower()},
	}

	var results []nominatimResult
	if err := p.getJSON(ctx, p.baseURL+"?"+params.Encode(), &results); err != nil {
		return nil, err
	}

	if len(results) == 0 {
		return &Result{Matched: false, Source: "nominatim"}, nil
	}

	top := results[0]
	lat, err := strconv.ParseFloat(top.Lat, 64)
	if err != nil {
		return nil, eris.Wrapf(err, "geocode: nominatim parse lat %q", top.Lat)
	}
	lon, err := strconv.ParseFloat(top.Lon, 64)
	if err != nil {
		return nil, eris.Wrapf(err, "geocode: nominatim parse lon %q", top.Lon)
	}

	return &Result{
		Latitude:  lat,
		Longitude: lon,
		Source:    "nominatim",
		Quality:   nominatimQuality(top.AddressType),
		Matched:   true,
	}, nil
}

// nominatimQuality maps the OSM address type of a hit to our quality taxonomy.
func nominatimQuality(addrType string) string {
	switch addrType {
	case "building", "house":
		return "rooftop"
	case "road":
		return "range"
	case "postcode", "suburb", "neighbourhood", "quarter":
		return "centroid"
	default:
		return "approximate"
	}
}
