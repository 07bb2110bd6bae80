package domain

import (
	"fmt"
	"time"
)

// hourMinuteLayout is the 24-hour, zero-padded label used for rain hours.
const hourMinuteLayout = "15:04"

// ToLocal converts a unix timestamp into wall-clock time at the given UTC
// offset. The result carries a fixed zone so Hour(), Day() and Format() all
// read local values.
func ToLocal(timestamp int64, offsetSeconds int) time.Time {
	return time.Unix(timestamp, 0).In(fixedZone(offsetSeconds))
}

// FormatHourMinute renders t as "HH:MM" in t's own location.
func FormatHourMinute(t time.Time) string {
	return t.Format(hourMinuteLayout)
}

func fixedZone(offsetSeconds int) *time.Location {
	sign := "+"
	off := offsetSeconds
	if off < 0 {
		sign = "-"
		off = -off
	}
	return time.FixedZone(fmt.Sprintf("UTC%s%02d:%02d", sign, off/3600, (off%3600)/60), offsetSeconds)
}

// dayBounds returns local midnight and the last nanosecond of the local
// calendar day that contains now.
func dayBounds(now time.Time, offsetSeconds int) (time.Time, time.Time) {
	local := now.In(fixedZone(offsetSeconds))
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())
	end := start.AddDate(0, 0, 1).Add(-time.Nanosecond)
	return start, end
}

// SelectToday keeps, in order, the hourly points that fall on the current
// local calendar day. Points later than local midnight tonight are dropped
// even if they are within the next 24 hours.
func SelectToday(payload ForecastPayload, now time.Time) []ForecastPoint {
	if len(payload.Hourly) == 0 {
		return []ForecastPoint{}
	}

	start, end := dayBounds(now, payload.TimezoneOffset)
	today := make([]ForecastPoint, 0, 24)
	for _, p := range payload.Hourly {
		t := ToLocal(p.Timestamp, payload.TimezoneOffset)
		if t.Before(start) || t.After(end) {
			continue
		}
		today = append(today, p)
	}
	return today
}
