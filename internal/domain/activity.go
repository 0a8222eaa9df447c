package domain

import "strings"

// UnknownActivity labels the single bucket that collects records whose activity
// reference cannot be resolved to a name.
const UnknownActivity = "Unknown Activity"

// ActivityRefKind distinguishes the two shapes an activity reference arrives in.
type ActivityRefKind int

const (
	// ActivityRefNone is the zero value: no reference at all.
	ActivityRefNone ActivityRefKind = iota
	// ActivityRefByID references a master activity by identity, optionally with its embedded name.
	ActivityRefByID
	// ActivityRefByName carries only the activity's display name.
	ActivityRefByName
)

// ActivityRef points a participation record at its master activity.
type ActivityRef struct {
	Kind ActivityRefKind
	ID   string
	Name string
}

// ActivityByID builds a reference to a master activity identity. name may be empty
// when the upstream payload did not embed it.
func ActivityByID(id, name string) ActivityRef {
	return ActivityRef{Kind: ActivityRefByID, ID: strings.TrimSpace(id), Name: strings.TrimSpace(name)}
}

// ActivityByName builds a name-only reference.
func ActivityByName(name string) ActivityRef {
	return ActivityRef{Kind: ActivityRefByName, Name: strings.TrimSpace(name)}
}

// Resolve returns the canonical display name used as the grouping key.
// Every unresolvable reference maps to UnknownActivity.
func (r ActivityRef) Resolve() string {
	if !r.Resolved() {
		return UnknownActivity
	}
	return r.Name
}

// Resolved reports whether the reference carries a usable name.
func (r ActivityRef) Resolved() bool {
	switch r.Kind {
	case ActivityRefByID, ActivityRefByName:
		return r.Name != ""
	default:
		return false
	}
}

// WithMasterID attaches the identity of the master activity a ByName reference
// was resolved to. Other kinds are returned unchanged.
func (r ActivityRef) WithMasterID(id string) ActivityRef {
	if r.Kind == ActivityRefByName {
		r.ID = strings.TrimSpace(id)
	}
	return r
}

// Matches reports whether the reference equals the activity filter key. ById
// references compare identities. ByName references compare names, or the
// identity attached by WithMasterID.
func (r ActivityRef) Matches(key string) bool {
	switch r.Kind {
	case ActivityRefByID:
		return r.ID != "" && r.ID == key
	case ActivityRefByName:
		return (r.Name != "" && r.Name == key) || (r.ID != "" && r.ID == key)
	default:
		return false
	}
}
