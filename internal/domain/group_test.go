package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGroupSortsClustersCaseSensitively(t *testing.T) {
	records := []ParticipationRecord{
		record("1", "yoga", day(2024, time.March, 1)),
		record("2", "Yoga", day(2024, time.March, 2)),
		record("3", "Awareness", day(2024, time.March, 3)),
		record("4", "yoga", day(2024, time.January, 1)),
	}

	clusters := Group(records)

	names := make([]string, 0, len(clusters))
	for _, c := range clusters {
		names = append(names, c.ActivityName)
	}
	require.Equal(t, []string{"Awareness", "Yoga", "yoga"}, names)
	require.Equal(t, []string{"1", "4"}, ids(clusters[2].Records), "records keep input order, not date order")
}

func TestActivityRefResolution(t *testing.T) {
	require.Equal(t, "Yoga", ActivityByID("x", " Yoga ").Resolve())
	require.Equal(t, UnknownActivity, ActivityByID("x", "").Resolve())
	require.Equal(t, "Yoga", ActivityByName("Yoga").Resolve())
	require.Equal(t, UnknownActivity, ActivityRef{}.Resolve())

	require.True(t, ActivityByID("x", "Yoga").Matches("x"))
	require.False(t, ActivityByID("x", "Yoga").Matches("Yoga"))
	require.True(t, ActivityByName("Yoga").Matches("Yoga"))
	require.False(t, ActivityRef{}.Matches(""))

	resolved := ActivityByName("Yoga").WithMasterID("m7")
	require.True(t, resolved.Matches("m7"))
	require.True(t, resolved.Matches("Yoga"))
	require.False(t, ActivityByName("Yoga").Matches("m7"))
	require.Equal(t, "Yoga", resolved.Resolve())
	require.Equal(t, ActivityByID("m7", ""), ActivityByID("m7", "").WithMasterID("other"))
}
