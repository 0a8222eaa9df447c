// Package source defines where participation records and precomputed summaries
// come from. Implementations live in the rest, postgres and memory subpackages.
package source

import (
	"context"
	"log"

	"example.com/sahakari/internal/domain"
	"example.com/sahakari/internal/observability"
)

// RecordFetcher returns participation records for a filter. Implementations may
// narrow server-side; callers still apply domain.Filter to the result.
type RecordFetcher interface {
	FetchRecords(ctx context.Context, filter domain.ReportFilter) ([]domain.ParticipationRecord, error)
}

// SummaryFetcher returns a precomputed report summary for a filter.
type SummaryFetcher interface {
	FetchSummary(ctx context.Context, filter domain.ReportFilter) (domain.ReportSummary, error)
}

// Sanitize returns the records that pass ingestion validation. Malformed
// optional fields are cleared and the record is kept; records with an invalid
// required field are dropped. Both are logged, and drops are counted under name.
func Sanitize(name string, logger *log.Logger, records []domain.ParticipationRecord) []domain.ParticipationRecord {
	out := make([]domain.ParticipationRecord, 0, len(records))
	rejected := 0
	for _, rec := range records {
		cleaned, cleared, err := domain.CleanRecord(rec)
		if err != nil {
			rejected++
			if logger != nil {
				logger.Printf("dropping record %q: %v", rec.ID, err)
			}
			continue
		}
		if len(cleared) > 0 && logger != nil {
			logger.Printf("clearing malformed fields on record %q: %v", rec.ID, domain.NewValidationError(cleared...))
		}
		out = append(out, cleaned)
	}
	observability.RecordRejected(name, rejected)
	return out
}
