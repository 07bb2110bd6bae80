package domain

import (
	"fmt"
	"strings"
)

// Tier is the rain severity of a single forecast hour. Tiers are totally
// ordered, so the worst of several tiers is plain integer max.
type Tier int

const (
	TierNo Tier = iota
	TierLight
	TierModerate
	TierHeavy
)

// RainTiers lists the tiers that count as rain, mildest first.
var RainTiers = []Tier{TierLight, TierModerate, TierHeavy}

func (t Tier) String() string {
	switch t {
	case TierNo:
		return "no"
	case TierLight:
		return "light"
	case TierModerate:
		return "moderate"
	case TierHeavy:
		return "heavy"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

// Title returns the capitalized tier name used in subjects, e.g. "Heavy".
func (t Tier) Title() string {
	s := t.String()
	return strings.ToUpper(s[:1]) + s[1:]
}

// IsRain reports whether t is above TierNo.
func (t Tier) IsRain() bool { return t > TierNo }

// MarshalText renders the tier as its lowercase name so summaries serialize
// as {"heavy": [...]} rather than {"3": [...]}.
func (t Tier) MarshalText() ([]byte, error) {
	if t < TierNo || t > TierHeavy {
		return nil, fmt.Errorf("marshal tier: unknown value %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText parses a lowercase tier name.
func (t *Tier) UnmarshalText(b []byte) error {
	v, err := ParseTier(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// ParseTier maps "no", "light", "moderate" or "heavy" (any case) to a Tier.
func ParseTier(s string) (Tier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "no", "":
		return TierNo, nil
	case "light":
		return TierLight, nil
	case "moderate":
		return TierModerate, nil
	case "heavy":
		return TierHeavy, nil
	default:
		return TierNo, fmt.Errorf("parse tier: unknown tier %q", s)
	}
}
