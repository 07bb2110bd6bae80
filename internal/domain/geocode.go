package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrLocationUnresolved is returned when a location has no coordinates and
// forward geocoding could not supply them.
var ErrLocationUnresolved = errors.New("location has no coordinates")

// ResolveLocation fills in whatever the configured location lacks.
// Coordinates win over names: with coordinates present, a reverse lookup
// only adds a display name and its failure is not fatal. Without
// coordinates, forward geocoding must succeed.
func ResolveLocation(ctx context.Context, loc Location, geocoder Geocoder, logger *slog.Logger) (Location, error) {
	if loc.HasCoords() {
		loc.Source = "configured"
		if geocoder == nil || loc.DisplayName != "" {
			return loc, nil
		}
		result, err := geocoder.ReverseGeocode(ctx, loc.Lat, loc.Lon)
		if err != nil {
			logger.Warn("reverse geocoding failed",
				"lat", loc.Lat,
				"lon", loc.Lon,
				"error", err,
			)
			return loc, nil
		}
		if result.FormattedAddress != "" {
			loc.DisplayName = result.FormattedAddress
			loc.Source = "reverse"
		}
		return loc, nil
	}

	if loc.Name == "" {
		return loc, fmt.Errorf("resolve location: %w: no place name configured", ErrLocationUnresolved)
	}
	if geocoder == nil {
		return loc, fmt.Errorf("resolve location %q: %w: geocoding disabled", loc.Name, ErrLocationUnresolved)
	}

	result, err := geocoder.ForwardGeocode(ctx, loc.Name, loc.Region)
	if err != nil {
		loc.Source = "failed"
		return loc, fmt.Errorf("resolve location %q: %w", loc.Name, err)
	}
	if result.Lat == 0 && result.Lon == 0 {
		loc.Source = "failed"
		return loc, fmt.Errorf("resolve location %q: %w", loc.Name, ErrLocationUnresolved)
	}

	loc.Lat = result.Lat
	loc.Lon = result.Lon
	loc.DisplayName = result.FormattedAddress
	loc.Source = "forward"
	logger.Debug("location resolved",
		"name", loc.Name,
		"region", loc.Region,
		"lat", loc.Lat,
		"lon", loc.Lon,
		"confidence", result.Confidence,
	)
	return loc, nil
}
