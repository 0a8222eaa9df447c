package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/sahakari/internal/domain"
)

func TestStoreFetchNarrowsByFilter(t *testing.T) {
	in := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
	out := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	store := NewStore(
		domain.ParticipationRecord{Activity: domain.ActivityByName("Yoga"), Date: &in, Branch: "Pokhara"},
		domain.ParticipationRecord{ID: "x", Activity: domain.ActivityByName("Yoga"), Date: &out, Branch: "Pokhara"},
		domain.ParticipationRecord{ID: "bad", Activity: domain.ActivityByName("Yoga"), Date: &in, Age: -4},
	)
	require.Equal(t, 2, store.Len())

	records, err := store.FetchRecords(context.Background(), domain.ReportFilter{Year: 2024, Branch: "Pokhara"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.NotEmpty(t, records[0].ID)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = store.FetchRecords(ctx, domain.ReportFilter{Year: 2024})
	require.ErrorIs(t, err, context.Canceled)
}
