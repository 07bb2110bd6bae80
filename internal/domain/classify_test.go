package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		description string
		pop         float64
		rain        float64
		expected    Tier
	}{
		{"no keyword, heavy volume", "overcast clouds", 1.0, 10, TierNo},
		{"no keyword, high pop", "cloudy", 0.9, 0, TierNo},
		{"empty description", "", 1.0, 5, TierNo},
		{"light rain", "light rain", 0.3, 0.5, TierLight},
		{"uppercase keyword", "Heavy Intensity RAIN", 0.2, 0.1, TierLight},
		{"chinese rain", "小雨", 0.2, 0.3, TierLight},
		{"chinese thunder", "雷阵雨", 0.1, 0.0, TierLight},
		{"heavy threshold inclusive", "moderate rain", 0.1, 4.0, TierHeavy},
		{"heavy ignores pop", "heavy rain", 0.0, 7.2, TierHeavy},
		{"heavy with max pop", "heavy rain", 1.0, 4.0, TierHeavy},
		{"moderate volume inclusive", "rain", 0.0, 1.5, TierModerate},
		{"just below moderate volume", "rain", 0.6, 1.49999, TierLight},
		{"pop at trigger is not moderate", "light rain", 0.6, 0.2, TierLight},
		{"pop above trigger", "light rain", 0.60001, 0.2, TierModerate},
		{"pop alone never heavy", "light rain", 1.0, 0.0, TierModerate},
		{"drizzle without keyword", "drizzle", 0.9, 3.0, TierNo},
		{"thunderstorm with rain", "thunderstorm with light rain", 0.4, 0.8, TierLight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ForecastPoint{Description: tt.description, Pop: tt.pop, RainLastHour: tt.rain}
			assert.Equal(t, tt.expected, Classify(p))
		})
	}
}

func TestClassify_KeywordGateDominates(t *testing.T) {
	for _, pop := range []float64{0, 0.25, 0.6, 0.61, 1} {
		for _, rain := range []float64{0, 1.5, 4, 25} {
			p := ForecastPoint{Description: "scattered clouds", Pop: pop, RainLastHour: rain}
			assert.Equal(t, TierNo, Classify(p), "pop=%v rain=%v", pop, rain)
		}
	}
}

func TestTier_Order(t *testing.T) {
	assert.Less(t, TierNo, TierLight)
	assert.Less(t, TierLight, TierModerate)
	assert.Less(t, TierModerate, TierHeavy)
	assert.Equal(t, TierHeavy, max(TierLight, TierHeavy, TierModerate))
}

func TestTier_Strings(t *testing.T) {
	tests := []struct {
		tier  Tier
		name  string
		title string
	}{
		{TierNo, "no", "No"},
		{TierLight, "light", "Light"},
		{TierModerate, "moderate", "Moderate"},
		{TierHeavy, "heavy", "Heavy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.tier.String())
			assert.Equal(t, tt.title, tt.tier.Title())

			parsed, err := ParseTier(tt.title)
			assert.NoError(t, err)
			assert.Equal(t, tt.tier, parsed)
		})
	}
}

func TestParseTier_Unknown(t *testing.T) {
	_, err := ParseTier("torrential")
	assert.ErrorContains(t, err, "torrential")
}
