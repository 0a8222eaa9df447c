// Package events defines the event payloads the report service consumes and emits.
package events

import (
	"fmt"
	"strings"
	"time"
)

// Event types carried in the event_type header.
const (
	TypeParticipationChanged = "participation.changed"
	TypeReportExported       = "report.exported"
)

// ParticipationChanged is emitted by the records service when a participation
// record is created, edited or deleted.
type ParticipationChanged struct {
	RecordID string `json:"record_id"`
	Branch   string `json:"branch"`
	Date     string `json:"date,omitempty"`
}

// Day parses the record date. An empty date yields nil.
func (e ParticipationChanged) Day() (*time.Time, error) {
	value := strings.TrimSpace(e.Date)
	if value == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid date %q", e.Date)
}

// ReportExported records that a report document was produced for a caller.
type ReportExported struct {
	ExportID     string    `json:"export_id"`
	Subject      string    `json:"subject"`
	Year         int       `json:"year"`
	Branch       string    `json:"branch"`
	Activity     string    `json:"activity,omitempty"`
	Format       string    `json:"format"`
	Participants int       `json:"participants"`
	ExportedAt   time.Time `json:"exported_at"`
}
