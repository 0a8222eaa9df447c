package domain

import (
	"strconv"
	"strings"
	"time"
)

// AllBranches labels reports that are not scoped to a single branch.
const AllBranches = "All"

// ReportFilter holds the query parameters of one report run.
type ReportFilter struct {
	Year     int
	Branch   string
	Activity string
}

// ParseFilter builds a ReportFilter from raw user input.
func ParseFilter(year, branch, activity string) (ReportFilter, error) {
	raw := strings.TrimSpace(year)
	if raw == "" {
		return ReportFilter{}, NewValidationError(FieldError{Field: "year", Message: "year is required"})
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return ReportFilter{}, NewValidationError(FieldError{Field: "year", Message: "year must be a number"})
	}
	f := ReportFilter{
		Year:     parsed,
		Branch:   strings.TrimSpace(branch),
		Activity: strings.TrimSpace(activity),
	}
	if err := f.Validate(); err != nil {
		return ReportFilter{}, err
	}
	return f, nil
}

// Validate checks that the filter can be run.
func (f ReportFilter) Validate() error {
	if f.Year == 0 {
		return NewValidationError(FieldError{Field: "year", Message: "year is required"})
	}
	if f.Year < 1 || f.Year > 9999 {
		return NewValidationError(FieldError{Field: "year", Message: "year is out of range"})
	}
	return nil
}

// Window returns the half-open interval [Jan 1 of Year, Jan 1 of Year+1) in UTC.
func (f ReportFilter) Window() (time.Time, time.Time) {
	start := time.Date(f.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(1, 0, 0)
}

// BranchLabel returns the branch shown on reports.
func (f ReportFilter) BranchLabel() string {
	if f.Branch == "" {
		return AllBranches
	}
	return f.Branch
}

// Covers reports whether a record dated at date in branch could fall inside the filter.
// A nil date covers every year.
func (f ReportFilter) Covers(date *time.Time, branch string) bool {
	if f.Branch != "" && branch != "" && f.Branch != branch {
		return false
	}
	if date == nil || date.IsZero() {
		return true
	}
	return f.inWindow(*date)
}

func (f ReportFilter) inWindow(t time.Time) bool {
	start, end := f.Window()
	return !t.Before(start) && t.Before(end)
}

// Filter keeps the records that fall inside the filter's year window and match its
// optional branch and activity. Records without a date are always excluded.
// Filter never mutates its input and applying it twice yields the same result.
func Filter(records []ParticipationRecord, criteria ReportFilter) []ParticipationRecord {
	out := make([]ParticipationRecord, 0, len(records))
	for _, rec := range records {
		if !rec.HasDate() || !criteria.inWindow(*rec.Date) {
			continue
		}
		if criteria.Branch != "" && rec.Branch != criteria.Branch {
			continue
		}
		if criteria.Activity != "" && !rec.Activity.Matches(criteria.Activity) {
			continue
		}
		out = append(out, rec)
	}
	return out
}
