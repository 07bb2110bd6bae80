package domain

import "context"

// GeocodingResult contains location data returned by a geocoding provider.
type GeocodingResult struct {
	Lat              float64
	Lon              float64
	FormattedAddress string
	PlaceName        string
	Confidence       float64 // 0.0–1.0 provider confidence score
}

// Geocoder resolves the forecast location.
type Geocoder interface {
	// ForwardGeocode converts a place name and region to coordinates.
	ForwardGeocode(ctx context.Context, name, region string) (GeocodingResult, error)

	// ReverseGeocode converts coordinates to place details.
	ReverseGeocode(ctx context.Context, lat, lon float64) (GeocodingResult, error)
}

// Location is where the forecast is requested for.
type Location struct {
	Name   string  `json:"name,omitempty"`
	Region string  `json:"region,omitempty"`
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`

	// DisplayName is a human label for emails, e.g. "Austin, Texas, United States".
	DisplayName string `json:"display_name,omitempty"`
	// Source records how coordinates were obtained: "configured", "forward",
	// "reverse" or "failed".
	Source string `json:"source,omitempty"`
}

// HasCoords reports whether the location carries usable coordinates.
// 0,0 means unset: unset env vars parse to zero and the point is open ocean.
// A location on one axis (lat 0 or lon 0) still counts.
func (l Location) HasCoords() bool {
	return l.Lat != 0 || l.Lon != 0
}

// Label returns the best available display name.
func (l Location) Label() string {
	switch {
	case l.DisplayName != "":
		return l.DisplayName
	case l.Name != "" && l.Region != "":
		return l.Name + ", " + l.Region
	case l.Name != "":
		return l.Name
	default:
		return ""
	}
}
