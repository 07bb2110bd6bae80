package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidPayload reports a forecast payload that is missing a structurally
// required field. Optional fields (pop, rain.1h) never trigger it.
var ErrInvalidPayload = errors.New("invalid forecast payload")

// ForecastPoint is one hourly entry of the forecast.
type ForecastPoint struct {
	Timestamp    int64   `json:"dt"`          // unix seconds, UTC
	Description  string  `json:"description"` // weather[0].description
	Pop          float64 `json:"pop"`         // probability of precipitation, 0..1
	RainLastHour float64 `json:"rain_1h"`     // millimeters
}

// ForecastPayload is the parsed forecast for one location.
type ForecastPayload struct {
	Lat            float64         `json:"lat"`
	Lon            float64         `json:"lon"`
	TimezoneName   string          `json:"timezone,omitempty"`
	TimezoneOffset int             `json:"timezone_offset"` // seconds east of UTC
	Hourly         []ForecastPoint `json:"hourly"`
}

// rawOneCall mirrors the subset of the OpenWeather One Call 3.0 response the
// engine reads. Pointers distinguish "absent" from zero values.
type rawOneCall struct {
	Lat            float64   `json:"lat"`
	Lon            float64   `json:"lon"`
	Timezone       string    `json:"timezone"`
	TimezoneOffset *int      `json:"timezone_offset"`
	Hourly         []rawHour `json:"hourly"`
}

type rawHour struct {
	Dt      *int64         `json:"dt"`
	Pop     *float64       `json:"pop"`
	Rain    *rawRain       `json:"rain"`
	Weather []rawCondition `json:"weather"`
}

type rawRain struct {
	OneHour *float64 `json:"1h"`
}

type rawCondition struct {
	ID          int     `json:"id"`
	Main        string  `json:"main"`
	Description *string `json:"description"`
}

// ParseForecast decodes a One Call response body into a ForecastPayload.
// Missing pop and rain.1h default to 0.0 here and nowhere else. A missing
// timezone_offset, dt or weather description fails with ErrInvalidPayload.
// A missing hourly array yields an empty forecast.
func ParseForecast(data []byte) (ForecastPayload, error) {
	var raw rawOneCall
	if err := json.Unmarshal(data, &raw); err != nil {
		return ForecastPayload{}, fmt.Errorf("parse forecast: %w: %w", ErrInvalidPayload, err)
	}
	if raw.TimezoneOffset == nil {
		return ForecastPayload{}, fmt.Errorf("parse forecast: %w: timezone_offset is missing", ErrInvalidPayload)
	}

	payload := ForecastPayload{
		Lat:            raw.Lat,
		Lon:            raw.Lon,
		TimezoneName:   raw.Timezone,
		TimezoneOffset: *raw.TimezoneOffset,
		Hourly:         make([]ForecastPoint, 0, len(raw.Hourly)),
	}

	for i, h := range raw.Hourly {
		point, err := h.toPoint()
		if err != nil {
			return ForecastPayload{}, fmt.Errorf("parse forecast: hourly[%d]: %w", i, err)
		}
		payload.Hourly = append(payload.Hourly, point)
	}
	return payload, nil
}

func (h rawHour) toPoint() (ForecastPoint, error) {
	if h.Dt == nil {
		return ForecastPoint{}, fmt.Errorf("%w: dt is missing", ErrInvalidPayload)
	}
	// The primary condition is the first entry; OpenWeather lists extras after it.
	if len(h.Weather) == 0 || h.Weather[0].Description == nil {
		return ForecastPoint{}, fmt.Errorf("%w: weather description is missing", ErrInvalidPayload)
	}

	point := ForecastPoint{
		Timestamp:   *h.Dt,
		Description: *h.Weather[0].Description,
	}
	if h.Pop != nil {
		point.Pop = *h.Pop
	}
	if h.Rain != nil && h.Rain.OneHour != nil {
		point.RainLastHour = *h.Rain.OneHour
	}
	return point, nil
}
