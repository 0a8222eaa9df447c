package domain

import (
	"time"
)

func day(year int, month time.Month, d int) *time.Time {
	t := time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func record(id, activity string, date *time.Time) ParticipationRecord {
	ref := ActivityRef{}
	if activity != "" {
		ref = ActivityByID("id-"+activity, activity)
	}
	return ParticipationRecord{ID: id, Activity: ref, FullName: "Person " + id, Date: date}
}

func exampleRecords() []ParticipationRecord {
	return []ParticipationRecord{
		record("1", "Tree Planting", day(2024, time.May, 1)),
		record("2", "Tree Planting", day(2024, time.June, 1)),
		record("3", "Blood Donation", day(2023, time.December, 31)),
	}
}
