package domain

import (
	"slices"
	"strings"
)

// ActivityCluster holds the records of one activity in their filtered order.
type ActivityCluster struct {
	ActivityName string
	Records      []ParticipationRecord
}

// Group partitions filtered records into clusters sorted by activity name
// (byte-wise, case-sensitive). Records keep their input order within a cluster.
func Group(filtered []ParticipationRecord) []ActivityCluster {
	order, buckets := bucketize(filtered)
	names := slices.Clone(order)
	slices.SortStableFunc(names, strings.Compare)

	clusters := make([]ActivityCluster, 0, len(names))
	for _, name := range names {
		clusters = append(clusters, ActivityCluster{ActivityName: name, Records: buckets[name]})
	}
	return clusters
}

// ClusterTotal counts the records across clusters.
func ClusterTotal(clusters []ActivityCluster) int {
	total := 0
	for _, c := range clusters {
		total += len(c.Records)
	}
	return total
}
