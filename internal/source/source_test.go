package source

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/sahakari/internal/domain"
)

func TestSanitizeDropsInvalidRecords(t *testing.T) {
	date := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	records := []domain.ParticipationRecord{
		{ID: "ok", Activity: domain.ActivityByName("Yoga"), Date: &date, Age: 30},
		{ID: "bad-age", Activity: domain.ActivityByName("Yoga"), Date: &date, Age: -1},
		{ID: "", Activity: domain.ActivityByName("Yoga"), Date: &date},
		{ID: "bad-age-and-phone", Activity: domain.ActivityByName("Yoga"), Date: &date, Age: -3, PhoneNumber: "12"},
	}

	kept := Sanitize("test", nil, records)

	require.Len(t, kept, 1)
	require.Equal(t, "ok", kept[0].ID)
	require.Len(t, records, 4)
	require.Equal(t, "bad-age", records[1].ID)
}

func TestSanitizeClearsMalformedOptionalFields(t *testing.T) {
	date := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	records := []domain.ParticipationRecord{
		{ID: "r1", Activity: domain.ActivityByName("Yoga"), Date: &date, FullName: "Sita", PhoneNumber: "01-4412345"},
		{ID: "r2", Activity: domain.ActivityByName("Yoga"), Date: &date, Gender: domain.Gender("unknown")},
	}

	kept := Sanitize("test", nil, records)

	require.Len(t, kept, 2)
	require.Equal(t, "Sita", kept[0].FullName)
	require.Empty(t, kept[0].PhoneNumber)
	require.Empty(t, kept[1].Gender)
	require.Equal(t, "01-4412345", records[0].PhoneNumber)
}
