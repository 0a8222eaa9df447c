package domain

import (
	"fmt"
	"slices"
	"strings"
)

// ActivitySummary is one row of the per-activity breakdown.
type ActivitySummary struct {
	ActivityName string
	Participants int
}

// ReportSummary is the aggregate view of one filtered record set.
type ReportSummary struct {
	Year              int
	Branch            string
	TotalActivities   int
	TotalParticipants int
	Breakdown         []ActivitySummary
}

// bucketize partitions records by resolved activity name. order lists the names by
// first appearance in records.
func bucketize(records []ParticipationRecord) (order []string, buckets map[string][]ParticipationRecord) {
	buckets = make(map[string][]ParticipationRecord)
	for _, rec := range records {
		name := rec.Activity.Resolve()
		if _, seen := buckets[name]; !seen {
			order = append(order, name)
		}
		buckets[name] = append(buckets[name], rec)
	}
	return order, buckets
}

// Summarize reduces a filtered record set to totals and a breakdown ordered by the
// first appearance of each activity in filtered.
func Summarize(filtered []ParticipationRecord, criteria ReportFilter) ReportSummary {
	order, buckets := bucketize(filtered)
	breakdown := make([]ActivitySummary, 0, len(order))
	for _, name := range order {
		breakdown = append(breakdown, ActivitySummary{ActivityName: name, Participants: len(buckets[name])})
	}
	return ReportSummary{
		Year:              criteria.Year,
		Branch:            criteria.BranchLabel(),
		TotalActivities:   len(breakdown),
		TotalParticipants: len(filtered),
		Breakdown:         breakdown,
	}
}

// ParticipantSum adds up the breakdown's participant counts.
func (s ReportSummary) ParticipantSum() int {
	total := 0
	for _, row := range s.Breakdown {
		total += row.Participants
	}
	return total
}

// Reconcile checks that summary and clusters describe the same record set: totals
// agree and every activity carries the same count on both sides.
func Reconcile(summary ReportSummary, clusters []ActivityCluster) error {
	if summary.ParticipantSum() != summary.TotalParticipants {
		return fmt.Errorf("%w: breakdown sums to %d, total is %d", ErrSummaryMismatch, summary.ParticipantSum(), summary.TotalParticipants)
	}
	if len(summary.Breakdown) != len(clusters) {
		return fmt.Errorf("%w: %d breakdown rows, %d clusters", ErrSummaryMismatch, len(summary.Breakdown), len(clusters))
	}
	counts := make(map[string]int, len(clusters))
	for _, c := range clusters {
		counts[c.ActivityName] = len(c.Records)
	}
	for _, row := range summary.Breakdown {
		n, ok := counts[row.ActivityName]
		if !ok || n != row.Participants {
			return fmt.Errorf("%w: activity %q has %d in summary, %d in clusters", ErrSummaryMismatch, row.ActivityName, row.Participants, n)
		}
	}
	if ClusterTotal(clusters) != summary.TotalParticipants {
		return fmt.Errorf("%w: clusters hold %d records, total is %d", ErrSummaryMismatch, ClusterTotal(clusters), summary.TotalParticipants)
	}
	return nil
}

// Equal reports structural equality of two summaries.
func (s ReportSummary) Equal(other ReportSummary) bool {
	return s.Year == other.Year &&
		s.Branch == other.Branch &&
		s.TotalActivities == other.TotalActivities &&
		s.TotalParticipants == other.TotalParticipants &&
		slices.Equal(s.Breakdown, other.Breakdown)
}

// normalizeBreakdown maps blank activity names from external summaries to the
// sentinel and merges duplicate rows, keeping first-appearance order.
func normalizeBreakdown(rows []ActivitySummary) []ActivitySummary {
	out := make([]ActivitySummary, 0, len(rows))
	index := make(map[string]int, len(rows))
	for _, row := range rows {
		name := strings.TrimSpace(row.ActivityName)
		if name == "" {
			name = UnknownActivity
		}
		if i, ok := index[name]; ok {
			out[i].Participants += row.Participants
			continue
		}
		index[name] = len(out)
		out = append(out, ActivitySummary{ActivityName: name, Participants: row.Participants})
	}
	return out
}

// NormalizeSummary prepares an externally supplied summary for display: blank names
// land in the unknown bucket and the branch label is filled in from the filter.
func NormalizeSummary(s ReportSummary, criteria ReportFilter) ReportSummary {
	s.Breakdown = normalizeBreakdown(s.Breakdown)
	s.TotalActivities = len(s.Breakdown)
	if s.Year == 0 {
		s.Year = criteria.Year
	}
	if strings.TrimSpace(s.Branch) == "" {
		s.Branch = criteria.BranchLabel()
	}
	return s
}
