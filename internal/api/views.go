package api

import (
	"time"

	"example.com/sahakari/internal/domain"
	"example.com/sahakari/internal/report"
)

// ReportResponse is the body of the summary and reload endpoints.
type ReportResponse struct {
	State      string        `json:"state"`
	Generation uint64        `json:"generation"`
	Filter     *FilterView   `json:"filter,omitempty"`
	Summary    *SummaryView  `json:"summary,omitempty"`
	Clusters   []ClusterView `json:"clusters,omitempty"`
	Message    string        `json:"message,omitempty"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// FilterView echoes the applied filter.
type FilterView struct {
	Year     int    `json:"year"`
	Branch   string `json:"branch,omitempty"`
	Activity string `json:"activity,omitempty"`
}

// SummaryView is the report header and breakdown.
type SummaryView struct {
	Year              int            `json:"year"`
	Branch            string         `json:"branch"`
	TotalActivities   int            `json:"total_activities"`
	TotalParticipants int            `json:"total_participants"`
	Breakdown         []BreakdownRow `json:"activity_breakdown"`
}

// BreakdownRow is one activity's participant count.
type BreakdownRow struct {
	ActivityName string `json:"activity_name"`
	Participants int    `json:"participants"`
}

// ClusterView lists the participants of one activity.
type ClusterView struct {
	ActivityName string            `json:"activity_name"`
	Participants []ParticipantView `json:"participants"`
}

// ParticipantView exposes one participation record.
type ParticipantView struct {
	ID               string `json:"id"`
	FullName         string `json:"full_name"`
	Age              int    `json:"age,omitempty"`
	Gender           string `json:"gender,omitempty"`
	MembershipNumber string `json:"membership_number,omitempty"`
	RecordedBy       string `json:"recorded_by,omitempty"`
	Date             string `json:"date,omitempty"`
	PhoneNumber      string `json:"phone_number,omitempty"`
	Branch           string `json:"branch,omitempty"`
}

// StatisticsResponse is the gender and age-group tally of a report.
type StatisticsResponse struct {
	Year      int             `json:"year"`
	Branch    string          `json:"branch"`
	Total     int             `json:"total"`
	Male      int             `json:"male"`
	Female    int             `json:"female"`
	Other     int             `json:"other"`
	AgeGroups []AgeGroupCount `json:"age_groups"`
}

// AgeGroupCount is the number of participants in one age range.
type AgeGroupCount struct {
	Range string `json:"range"`
	Count int    `json:"count"`
}

func toReportResponse(view report.View) ReportResponse {
	resp := ReportResponse{
		State:      view.State.String(),
		Generation: view.Generation,
		Message:    view.Message,
		UpdatedAt:  view.UpdatedAt,
	}
	if view.Filter != nil {
		resp.Filter = &FilterView{Year: view.Filter.Year, Branch: view.Filter.Branch, Activity: view.Filter.Activity}
	}
	if view.Summary != nil {
		s := view.Summary
		resp.Summary = &SummaryView{
			Year:              s.Year,
			Branch:            s.Branch,
			TotalActivities:   s.TotalActivities,
			TotalParticipants: s.TotalParticipants,
			Breakdown:         make([]BreakdownRow, 0, len(s.Breakdown)),
		}
		for _, row := range s.Breakdown {
			resp.Summary.Breakdown = append(resp.Summary.Breakdown, BreakdownRow{ActivityName: row.ActivityName, Participants: row.Participants})
		}
	}
	for _, cluster := range view.Clusters {
		cv := ClusterView{ActivityName: cluster.ActivityName, Participants: make([]ParticipantView, 0, len(cluster.Records))}
		for _, rec := range cluster.Records {
			cv.Participants = append(cv.Participants, toParticipantView(rec))
		}
		resp.Clusters = append(resp.Clusters, cv)
	}
	return resp
}

func toParticipantView(rec domain.ParticipationRecord) ParticipantView {
	v := ParticipantView{
		ID:               rec.ID,
		FullName:         rec.FullName,
		Age:              rec.Age,
		Gender:           string(rec.Gender),
		MembershipNumber: rec.MembershipNumber,
		RecordedBy:       rec.RecordedBy,
		PhoneNumber:      rec.PhoneNumber,
		Branch:           rec.Branch,
	}
	if rec.HasDate() {
		v.Date = rec.Date.Format("2006-01-02")
	}
	return v
}
