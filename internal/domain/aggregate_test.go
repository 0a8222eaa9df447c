package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSummarizeWorkedExamples(t *testing.T) {
	records := exampleRecords()

	filtered := Filter(records, ReportFilter{Year: 2024})
	require.Len(t, filtered, 2)
	summary := Summarize(filtered, ReportFilter{Year: 2024})
	require.Equal(t, ReportSummary{
		Year:              2024,
		Branch:            AllBranches,
		TotalActivities:   1,
		TotalParticipants: 2,
		Breakdown:         []ActivitySummary{{ActivityName: "Tree Planting", Participants: 2}},
	}, summary)

	clusters := Group(filtered)
	require.Len(t, clusters, 1)
	require.Equal(t, "Tree Planting", clusters[0].ActivityName)
	require.Len(t, clusters[0].Records, 2)

	filtered = Filter(records, ReportFilter{Year: 2023})
	require.Len(t, filtered, 1)
	summary = Summarize(filtered, ReportFilter{Year: 2023})
	require.Equal(t, []ActivitySummary{{ActivityName: "Blood Donation", Participants: 1}}, summary.Breakdown)
}

func TestSummarizeOrdersByFirstAppearance(t *testing.T) {
	records := []ParticipationRecord{
		record("1", "Yoga", day(2024, time.January, 2)),
		record("2", "Blood Donation", day(2024, time.January, 3)),
		record("3", "Yoga", day(2024, time.January, 4)),
		record("4", "Awareness", day(2024, time.January, 5)),
	}

	summary := Summarize(records, ReportFilter{Year: 2024})

	require.Equal(t, []ActivitySummary{
		{ActivityName: "Yoga", Participants: 2},
		{ActivityName: "Blood Donation", Participants: 1},
		{ActivityName: "Awareness", Participants: 1},
	}, summary.Breakdown)
	require.Equal(t, 3, summary.TotalActivities)
	require.Equal(t, 4, summary.TotalParticipants)
}

func TestUnknownBucketIsSharedAndReconciles(t *testing.T) {
	records := []ParticipationRecord{
		record("1", "Yoga", day(2024, time.January, 2)),
		{ID: "2", Date: day(2024, time.January, 3)},
		{ID: "3", Activity: ActivityByID("dangling", ""), Date: day(2024, time.January, 4)},
		{ID: "4", Activity: ActivityByName("   "), Date: day(2024, time.January, 5)},
	}

	summary := Summarize(records, ReportFilter{Year: 2024})
	clusters := Group(records)

	require.Equal(t, []ActivitySummary{
		{ActivityName: "Yoga", Participants: 1},
		{ActivityName: UnknownActivity, Participants: 3},
	}, summary.Breakdown)
	require.Len(t, clusters, 2)
	require.Equal(t, UnknownActivity, clusters[0].ActivityName)
	require.Equal(t, []string{"2", "3", "4"}, ids(clusters[0].Records))
	require.NoError(t, Reconcile(summary, clusters))
}

func TestCountReconciliation(t *testing.T) {
	var records []ParticipationRecord
	names := []string{"b", "A", "", "a", "B", "A"}
	for i := 0; i < 60; i++ {
		records = append(records, record(string(rune('a'+i%26))+string(rune('0'+i/26)), names[i%len(names)], day(2024, time.Month(1+i%12), 1+i%28)))
	}

	filtered := Filter(records, ReportFilter{Year: 2024})
	summary := Summarize(filtered, ReportFilter{Year: 2024})
	clusters := Group(filtered)

	require.Equal(t, len(filtered), summary.TotalParticipants)
	require.Equal(t, summary.TotalParticipants, summary.ParticipantSum())
	require.Equal(t, summary.TotalParticipants, ClusterTotal(clusters))
	require.Equal(t, summary.TotalActivities, len(clusters))
	require.NoError(t, Reconcile(summary, clusters))
}

func TestPipelineIsIdempotent(t *testing.T) {
	records := exampleRecords()
	criteria := ReportFilter{Year: 2024}

	first := Summarize(Filter(records, criteria), criteria)
	second := Summarize(Filter(records, criteria), criteria)

	require.True(t, first.Equal(second))
	require.Equal(t, Group(Filter(records, criteria)), Group(Filter(records, criteria)))
}

func TestEmptyResultIsNotAnError(t *testing.T) {
	summary := Summarize(nil, ReportFilter{Year: 2030})

	require.Equal(t, 0, summary.TotalParticipants)
	require.Equal(t, 0, summary.TotalActivities)
	require.Empty(t, summary.Breakdown)
	require.Empty(t, Group(nil))
	require.NoError(t, Reconcile(summary, nil))
}

func TestReconcileDetectsMismatch(t *testing.T) {
	clusters := Group(exampleRecords()[:2])

	err := Reconcile(ReportSummary{
		TotalParticipants: 3,
		Breakdown:         []ActivitySummary{{ActivityName: "Tree Planting", Participants: 3}},
	}, clusters)
	require.ErrorIs(t, err, ErrSummaryMismatch)

	err = Reconcile(ReportSummary{
		TotalParticipants: 2,
		Breakdown:         []ActivitySummary{{ActivityName: "Planting", Participants: 2}},
	}, clusters)
	require.ErrorIs(t, err, ErrSummaryMismatch)
}

func TestNormalizeSummaryMergesBlankNames(t *testing.T) {
	s := NormalizeSummary(ReportSummary{
		TotalParticipants: 4,
		Breakdown: []ActivitySummary{
			{ActivityName: "", Participants: 1},
			{ActivityName: "Yoga", Participants: 2},
			{ActivityName: " ", Participants: 1},
		},
	}, ReportFilter{Year: 2024, Branch: "pokhara"})

	require.Equal(t, 2024, s.Year)
	require.Equal(t, "pokhara", s.Branch)
	require.Equal(t, 2, s.TotalActivities)
	require.Equal(t, []ActivitySummary{
		{ActivityName: UnknownActivity, Participants: 2},
		{ActivityName: "Yoga", Participants: 2},
	}, s.Breakdown)
}
