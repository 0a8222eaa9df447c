// Package memory provides an in-process record store used when no records API
// or database is configured, and by tests.
package memory

import (
	"context"
	"log"
	"sync"

	"github.com/google/uuid"

	"example.com/sahakari/internal/domain"
	"example.com/sahakari/internal/source"
)

// Store keeps participation records in memory.
type Store struct {
	mu      sync.RWMutex
	records []domain.ParticipationRecord
	logger  *log.Logger
}

// NewStore constructs a Store seeded with records.
func NewStore(records ...domain.ParticipationRecord) *Store {
	s := &Store{logger: log.New(log.Writer(), "[source] ", log.LstdFlags|log.Lshortfile)}
	s.Add(records...)
	return s
}

var _ source.RecordFetcher = (*Store)(nil)

// Add stores records, assigning an ID to any record without one. Records that
// fail validation are dropped.
func (s *Store) Add(records ...domain.ParticipationRecord) {
	prepared := make([]domain.ParticipationRecord, len(records))
	for i, rec := range records {
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		prepared[i] = rec
	}
	prepared = source.Sanitize("memory", s.logger, prepared)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, prepared...)
}

// FetchRecords implements source.RecordFetcher.
func (s *Store) FetchRecords(ctx context.Context, filter domain.ReportFilter) ([]domain.ParticipationRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.Filter(s.records, filter), nil
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
