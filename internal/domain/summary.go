package domain

import "time"

// ClassifiedHour is a rain hour with its local label and tier.
type ClassifiedHour struct {
	Label      string  `json:"time"`
	Tier       Tier    `json:"tier"`
	RainVolume float64 `json:"amount"`
}

// RainSummary is the engine's verdict for the current local day.
//
// Buckets only holds tiers that have at least one hour; TierNo never appears.
// Peak is nil when no rain hour reported a positive volume.
type RainSummary struct {
	HasRain    bool              `json:"has_rain"`
	RainHours  []string          `json:"rain_hours"`
	Buckets    map[Tier][]string `json:"rain_levels"`
	Peak       *ClassifiedHour   `json:"peak_rain"`
	TotalHours int               `json:"total_hours"`
	WorstTier  Tier              `json:"worst_level"`
}

// Bucket returns the labels classified as t, in chronological order.
func (s RainSummary) Bucket(t Tier) []string {
	return s.Buckets[t]
}

// Summarize runs the engine against the package clock. The clock is read once.
func Summarize(payload ForecastPayload) RainSummary {
	return SummarizeAt(payload, clock.Now())
}

// SummarizeAt runs the engine with an explicit "now".
func SummarizeAt(payload ForecastPayload, now time.Time) RainSummary {
	return Aggregate(SelectToday(payload, now), payload.TimezoneOffset)
}

// Aggregate classifies points in order and folds the rain hours into a
// summary. The peak uses a strict comparison so the earliest of several
// equal maxima is kept.
func Aggregate(points []ForecastPoint, offsetSeconds int) RainSummary {
	summary := RainSummary{
		RainHours: []string{},
		Buckets:   map[Tier][]string{},
		WorstTier: TierNo,
	}

	maxVolume := 0.0
	for _, p := range points {
		tier := Classify(p)
		if !tier.IsRain() {
			continue
		}

		label := FormatHourMinute(ToLocal(p.Timestamp, offsetSeconds))
		summary.RainHours = append(summary.RainHours, label)
		summary.Buckets[tier] = append(summary.Buckets[tier], label)
		summary.TotalHours++
		summary.WorstTier = max(summary.WorstTier, tier)

		if p.RainLastHour > maxVolume {
			maxVolume = p.RainLastHour
			summary.Peak = &ClassifiedHour{Label: label, Tier: tier, RainVolume: p.RainLastHour}
		}
	}

	summary.HasRain = summary.TotalHours > 0
	return summary
}
