package report

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"example.com/sahakari/internal/auth"
	"example.com/sahakari/internal/domain"
	"example.com/sahakari/internal/source/rest"
)

const apiRecords = `[
  {"_id":"r1","masterActivityId":{"_id":"m1","activityName":"Tree Planting"},"fullName":"Sita","date":"2024-03-05T00:00:00.000Z","branchId":{"_id":"b1","username":"Pokhara"}},
  {"_id":"r2","activityName":"Tree Planting","fullName":"Ram","phoneNumber":"01-4412345","date":"2024-03-06","branchId":{"_id":"b1","username":"Pokhara"}},
  {"_id":"r3","masterActivityId":{"_id":"m2","activityName":"Health Camp"},"fullName":"Hari","date":"2024-03-07T00:00:00.000Z","branchId":{"_id":"b2","username":"Butwal"}}
]`

func recordsAPI(t *testing.T) *rest.Client {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/activities", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(apiRecords))
	})
	mux.HandleFunc("/api/master-activities", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"_id":"m1","activityName":"Tree Planting"},{"_id":"m2","activityName":"Health Camp"}]`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return rest.New(srv.URL, rest.WithLogger(log.New(io.Discard, "", 0)))
}

func fetchSamples(t *testing.T, kind string) uint64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	var total uint64
	for _, mf := range families {
		if mf.GetName() != "report_service_source_fetch_duration_seconds" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "kind" && lp.GetValue() == kind {
					total += m.GetHistogram().GetSampleCount()
				}
			}
		}
	}
	return total
}

func TestBranchReportFromRecordsAPI(t *testing.T) {
	clerk := auth.Session{Subject: "clerk", Role: auth.RoleBranch, Branch: "Pokhara"}
	c := NewController(clerk, recordsAPI(t), quiet)

	view, err := c.Apply(context.Background(), domain.ReportFilter{Year: 2024})
	require.NoError(t, err)
	require.Equal(t, 2, view.Summary.TotalParticipants)
	require.Equal(t, []domain.ActivitySummary{{ActivityName: "Tree Planting", Participants: 2}}, view.Summary.Breakdown)
}

func TestActivityReportFromRecordsAPIKeepsNameOnlyRecords(t *testing.T) {
	c := NewController(admin, recordsAPI(t), quiet)

	view, err := c.Apply(context.Background(), domain.ReportFilter{Year: 2024, Activity: "m1"})
	require.NoError(t, err)
	require.Equal(t, 2, view.Summary.TotalParticipants)
	require.Len(t, view.Clusters, 1)
	require.Equal(t, "Tree Planting", view.Clusters[0].ActivityName)
}

func TestRecordsFetchIsObservedOnce(t *testing.T) {
	c := NewController(admin, recordsAPI(t), quiet)
	before := fetchSamples(t, "records")

	_, err := c.Apply(context.Background(), domain.ReportFilter{Year: 2024})
	require.NoError(t, err)
	require.Equal(t, before+1, fetchSamples(t, "records"))
}
