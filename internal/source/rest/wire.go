package rest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"example.com/sahakari/internal/domain"
)

// wireRecord mirrors a participation document served by the records API.
type wireRecord struct {
	ID               string          `json:"_id"`
	MasterActivity   json.RawMessage `json:"masterActivityId"`
	ActivityName     string          `json:"activityName"`
	FullName         string          `json:"fullName"`
	Age              flexInt         `json:"age"`
	Gender           string          `json:"gender"`
	Address          string          `json:"address"`
	MembershipNumber string          `json:"membershipNumber"`
	PhoneNumber      string          `json:"phoneNumber"`
	Date             string          `json:"date"`
	ByWhom           string          `json:"byWhom"`
	BranchRef        json.RawMessage `json:"branchId"`
	Branch           string          `json:"branch"`
}

// wireBranch is the populated branch user embedded in a record.
type wireBranch struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
}

type wireMasterActivity struct {
	ID           string `json:"_id"`
	ActivityName string `json:"activityName"`
}

type wireSummary struct {
	Year              flexInt `json:"year"`
	Branch            string  `json:"branch"`
	TotalActivities   int     `json:"totalActivities"`
	TotalParticipants int     `json:"totalParticipants"`
	ActivityBreakdown []struct {
		ActivityName string `json:"activityName"`
		Participants int    `json:"participants"`
	} `json:"activityBreakdown"`
}

// flexInt accepts a JSON number, a numeric string, or an empty string.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = 0
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("not a number: %q", s)
		}
		*f = flexInt(n)
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexInt(n)
	return nil
}

// activityRef decodes the reference shapes the API emits: an embedded master
// activity object, a bare id string, or only a plain activityName.
func (w wireRecord) activityRef() (domain.ActivityRef, error) {
	raw := bytes.TrimSpace(w.MasterActivity)
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
		if strings.TrimSpace(w.ActivityName) == "" {
			return domain.ActivityRef{}, nil
		}
		return domain.ActivityByName(w.ActivityName), nil
	case raw[0] == '"':
		var id string
		if err := json.Unmarshal(raw, &id); err != nil {
			return domain.ActivityRef{}, err
		}
		return domain.ActivityByID(id, ""), nil
	default:
		var embedded wireMasterActivity
		if err := json.Unmarshal(raw, &embedded); err != nil {
			return domain.ActivityRef{}, fmt.Errorf("masterActivityId: %w", err)
		}
		return domain.ActivityByID(embedded.ID, embedded.ActivityName), nil
	}
}

// branch returns the branch a record belongs to. A populated branchId yields
// its username, falling back to its id; a bare id string is used as is; the
// flat branch field is the last resort.
func (w wireRecord) branch() (string, error) {
	raw := bytes.TrimSpace(w.BranchRef)
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
	case raw[0] == '"':
		var id string
		if err := json.Unmarshal(raw, &id); err != nil {
			return "", fmt.Errorf("branchId: %w", err)
		}
		if id = strings.TrimSpace(id); id != "" {
			return id, nil
		}
	default:
		var embedded wireBranch
		if err := json.Unmarshal(raw, &embedded); err != nil {
			return "", fmt.Errorf("branchId: %w", err)
		}
		if name := strings.TrimSpace(embedded.Username); name != "" {
			return name, nil
		}
		if id := strings.TrimSpace(embedded.ID); id != "" {
			return id, nil
		}
	}
	return strings.TrimSpace(w.Branch), nil
}

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

func parseDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unrecognised date %q", value)
}

func (w wireRecord) toDomain() (domain.ParticipationRecord, error) {
	ref, err := w.activityRef()
	if err != nil {
		return domain.ParticipationRecord{}, err
	}
	date, err := parseDate(w.Date)
	if err != nil {
		return domain.ParticipationRecord{}, err
	}
	branch, err := w.branch()
	if err != nil {
		return domain.ParticipationRecord{}, err
	}
	return domain.ParticipationRecord{
		ID:               w.ID,
		Activity:         ref,
		FullName:         strings.TrimSpace(w.FullName),
		Age:              int(w.Age),
		Gender:           domain.ParseGender(w.Gender),
		MembershipNumber: strings.TrimSpace(w.MembershipNumber),
		Address:          strings.TrimSpace(w.Address),
		Date:             date,
		PhoneNumber:      strings.TrimSpace(w.PhoneNumber),
		RecordedBy:       strings.TrimSpace(w.ByWhom),
		Branch:           branch,
	}, nil
}

func (w wireSummary) toDomain() domain.ReportSummary {
	s := domain.ReportSummary{
		Year:              int(w.Year),
		Branch:            w.Branch,
		TotalActivities:   w.TotalActivities,
		TotalParticipants: w.TotalParticipants,
	}
	for _, row := range w.ActivityBreakdown {
		s.Breakdown = append(s.Breakdown, domain.ActivitySummary{ActivityName: row.ActivityName, Participants: row.Participants})
	}
	return s
}
