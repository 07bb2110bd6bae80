package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// shanghaiPayload is the UTC+8 scenario: light rain at 09:00, heavy rain at
// 14:00 and a cloudy but likely-wet 18:00 that the keyword gate rejects.
func shanghaiPayload() ForecastPayload {
	return ForecastPayload{
		TimezoneOffset: utc8,
		Hourly: []ForecastPoint{
			{Timestamp: localUnix(utc8, 2025, time.June, 10, 9, 0, 0), Description: "light rain", Pop: 0.3, RainLastHour: 0.5},
			{Timestamp: localUnix(utc8, 2025, time.June, 10, 14, 0, 0), Description: "heavy rain", Pop: 0.5, RainLastHour: 5.0},
			{Timestamp: localUnix(utc8, 2025, time.June, 10, 18, 0, 0), Description: "cloudy", Pop: 0.9, RainLastHour: 0.0},
		},
	}
}

var shanghaiMorning = time.Date(2025, time.June, 10, 0, 30, 0, 0, time.UTC) // 08:30 local

func TestSummarizeAt_EndToEnd(t *testing.T) {
	summary := SummarizeAt(shanghaiPayload(), shanghaiMorning)

	expected := RainSummary{
		HasRain:   true,
		RainHours: []string{"09:00", "14:00"},
		Buckets: map[Tier][]string{
			TierLight: {"09:00"},
			TierHeavy: {"14:00"},
		},
		Peak:       &ClassifiedHour{Label: "14:00", Tier: TierHeavy, RainVolume: 5.0},
		TotalHours: 2,
		WorstTier:  TierHeavy,
	}
	if diff := cmp.Diff(expected, summary); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestSummarizeAt_EmptyForecast(t *testing.T) {
	summary := SummarizeAt(ForecastPayload{TimezoneOffset: utc8}, shanghaiMorning)

	assert.False(t, summary.HasRain)
	assert.Empty(t, summary.RainHours)
	assert.Empty(t, summary.Buckets)
	assert.Nil(t, summary.Peak)
	assert.Equal(t, 0, summary.TotalHours)
	assert.Equal(t, TierNo, summary.WorstTier)
}

func TestSummarizeAt_NoPointsToday(t *testing.T) {
	payload := shanghaiPayload()
	tomorrow := shanghaiMorning.Add(24 * time.Hour)

	summary := SummarizeAt(payload, tomorrow)
	assert.False(t, summary.HasRain)
	assert.Equal(t, TierNo, summary.WorstTier)
}

func TestSummarizeAt_Idempotent(t *testing.T) {
	payload := shanghaiPayload()

	first := SummarizeAt(payload, shanghaiMorning)
	second := SummarizeAt(payload, shanghaiMorning)

	assert.Empty(t, cmp.Diff(first, second))
}

func TestSummarize_UsesPackageClock(t *testing.T) {
	SetClock(clockwork.NewFakeClockAt(shanghaiMorning))
	defer SetClock(nil)

	assert.Equal(t, SummarizeAt(shanghaiPayload(), shanghaiMorning), Summarize(shanghaiPayload()))
}

func TestAggregate_PeakTieKeepsFirst(t *testing.T) {
	points := []ForecastPoint{
		{Timestamp: localUnix(utc8, 2025, time.June, 10, 10, 0, 0), Description: "moderate rain", RainLastHour: 2.0},
		{Timestamp: localUnix(utc8, 2025, time.June, 10, 11, 0, 0), Description: "moderate rain", RainLastHour: 2.0},
		{Timestamp: localUnix(utc8, 2025, time.June, 10, 12, 0, 0), Description: "light rain", RainLastHour: 1.0},
	}

	summary := Aggregate(points, utc8)
	require.NotNil(t, summary.Peak)
	assert.Equal(t, "10:00", summary.Peak.Label)
	assert.Equal(t, TierModerate, summary.Peak.Tier)
	assert.Equal(t, 2.0, summary.Peak.RainVolume)
}

func TestAggregate_WorstTierPrecedence(t *testing.T) {
	tests := []struct {
		name     string
		points   []ForecastPoint
		expected Tier
	}{
		{
			name: "light then heavy",
			points: []ForecastPoint{
				{Timestamp: 1, Description: "light rain", RainLastHour: 0.2},
				{Timestamp: 2, Description: "heavy rain", RainLastHour: 6},
			},
			expected: TierHeavy,
		},
		{
			name: "heavy then light",
			points: []ForecastPoint{
				{Timestamp: 1, Description: "heavy rain", RainLastHour: 6},
				{Timestamp: 2, Description: "light rain", RainLastHour: 0.2},
			},
			expected: TierHeavy,
		},
		{
			name: "moderate by pop",
			points: []ForecastPoint{
				{Timestamp: 1, Description: "light rain", Pop: 0.8},
				{Timestamp: 2, Description: "light rain", Pop: 0.1},
			},
			expected: TierModerate,
		},
		{
			name:     "dry",
			points:   []ForecastPoint{{Timestamp: 1, Description: "clear sky", Pop: 0.9, RainLastHour: 9}},
			expected: TierNo,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary := Aggregate(tt.points, 0)
			assert.Equal(t, tt.expected, summary.WorstTier)
		})
	}
}

func TestAggregate_Invariants(t *testing.T) {
	points := []ForecastPoint{
		{Timestamp: localUnix(utc8, 2025, time.June, 10, 6, 0, 0), Description: "light rain", RainLastHour: 0.4},
		{Timestamp: localUnix(utc8, 2025, time.June, 10, 7, 0, 0), Description: "overcast clouds", Pop: 0.7},
		{Timestamp: localUnix(utc8, 2025, time.June, 10, 8, 0, 0), Description: "moderate rain", RainLastHour: 1.8},
		{Timestamp: localUnix(utc8, 2025, time.June, 10, 9, 0, 0), Description: "heavy intensity rain", RainLastHour: 4.6},
		{Timestamp: localUnix(utc8, 2025, time.June, 10, 10, 0, 0), Description: "moderate rain", Pop: 0.95, RainLastHour: 1.1},
	}

	summary := Aggregate(points, utc8)

	total := 0
	for _, tier := range RainTiers {
		total += len(summary.Bucket(tier))
	}
	assert.Equal(t, len(summary.RainHours), total)
	assert.Equal(t, summary.TotalHours, total)
	assert.NotContains(t, summary.Buckets, TierNo)
	assert.Equal(t, []string{"06:00", "08:00", "09:00", "10:00"}, summary.RainHours)
	assert.Equal(t, []string{"08:00", "10:00"}, summary.Bucket(TierModerate))
	require.NotNil(t, summary.Peak)
	assert.Equal(t, "09:00", summary.Peak.Label)
	assert.Equal(t, TierHeavy, summary.WorstTier)
}

func TestAggregate_ZeroVolumeRainHasNoPeak(t *testing.T) {
	points := []ForecastPoint{
		{Timestamp: localUnix(utc8, 2025, time.June, 10, 15, 0, 0), Description: "light rain", Pop: 0.4},
	}

	summary := Aggregate(points, utc8)
	assert.True(t, summary.HasRain)
	assert.Equal(t, TierLight, summary.WorstTier)
	assert.Nil(t, summary.Peak)
}

func TestRainSummary_JSON(t *testing.T) {
	summary := SummarizeAt(shanghaiPayload(), shanghaiMorning)

	data, err := json.Marshal(summary)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"has_rain": true,
		"rain_hours": ["09:00", "14:00"],
		"rain_levels": {"light": ["09:00"], "heavy": ["14:00"]},
		"peak_rain": {"time": "14:00", "tier": "heavy", "amount": 5},
		"total_hours": 2,
		"worst_level": "heavy"
	}`, string(data))

	var decoded RainSummary
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, summary, decoded)
}
