// Package domain defines the participation records and the report pipeline that
// filters, aggregates and groups them.
package domain

import (
	"strings"
	"time"
)

// Gender is the enumerated gender recorded for a participant.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// ParseGender normalises free-form input. Empty input yields an empty Gender.
func ParseGender(raw string) Gender {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return ""
	case "male", "m":
		return GenderMale
	case "female", "f":
		return GenderFemale
	default:
		return GenderOther
	}
}

// ParticipationRecord is one enrollment of a person in a master activity.
// Records are read-only once they enter the report pipeline.
type ParticipationRecord struct {
	ID               string `validate:"required"`
	Activity         ActivityRef
	FullName         string
	Age              int    `validate:"gte=0"`
	Gender           Gender `validate:"omitempty,oneof=male female other"`
	MembershipNumber string
	Address          string
	Date             *time.Time
	PhoneNumber      string `validate:"omitempty,len=10,numeric"`
	RecordedBy       string
	Branch           string
}

// HasDate reports whether the record carries a participation date.
func (r ParticipationRecord) HasDate() bool {
	return r.Date != nil && !r.Date.IsZero()
}
