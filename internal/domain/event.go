package domain

import "time"

// SummaryEvent is the record of one reminder run, published downstream.
type SummaryEvent struct {
	RunID       string      `json:"run_id"`
	Location    Location    `json:"location"`
	Date        string      `json:"date"` // local calendar day, YYYY-MM-DD
	Summary     RainSummary `json:"summary"`
	Notified    bool        `json:"notified"`
	GeneratedAt time.Time   `json:"generated_at"`
}
