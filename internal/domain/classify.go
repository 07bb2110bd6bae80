package domain

import "strings"

// Severity thresholds for the last-hour rain volume (mm) and probability of
// precipitation. Volume drives the tier; probability only lifts LIGHT to
// MODERATE and never reaches HEAVY on its own.
const (
	heavyRainMM        = 4.0
	moderateRainMM     = 1.5
	moderatePopTrigger = 0.6
)

// rainKeywords gate classification. pop and rain.1h are populated for dry
// hours too, so an hour only counts as rain when its description says so.
// The CJK entries cover lang=zh_cn descriptions ("小雨", "雷阵雨").
var rainKeywords = []string{"rain", "雨", "雷"}

// Classify maps one forecast hour to its severity tier.
func Classify(p ForecastPoint) Tier {
	if !describesRain(p.Description) {
		return TierNo
	}

	switch {
	case p.RainLastHour >= heavyRainMM:
		return TierHeavy
	case p.RainLastHour >= moderateRainMM || p.Pop > moderatePopTrigger:
		return TierModerate
	default:
		return TierLight
	}
}

func describesRain(description string) bool {
	return hasAny(strings.ToLower(description), rainKeywords...)
}

// hasAny reports whether s contains any of subs.
func hasAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
