// Package report runs report cycles: it fetches participation records for a
// filter, aggregates and groups them, and holds the result for export.
package report

// State is the lifecycle position of a Controller.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}
