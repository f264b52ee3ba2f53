package domain

import "strings"

// Status is the closed set of reading states a user-book link can be in.
// Raw input is validated once at the boundary via ParseStatus; everything
// downstream works with the typed value.
type Status string

const (
	StatusPlanToRead Status = "plan_to_read"
	StatusReading    Status = "reading"
	StatusFinished   Status = "finished"
	StatusDNF        Status = "dnf"
	StatusPaused     Status = "paused"
)

// AllStatuses is the complete status set in display order.
// Profile summaries zero-fill counts from this list.
var AllStatuses = []Status{
	StatusPlanToRead,
	StatusReading,
	StatusFinished,
	StatusDNF,
	StatusPaused,
}

// ParseStatus normalizes and validates a raw status token.
// Returns false if the token is not one of the known statuses.
func ParseStatus(raw string) (Status, bool) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	return s, s.Valid()
}

// Valid reports whether the status is a member of the closed set.
func (s Status) Valid() bool {
	switch s {
	case StatusPlanToRead, StatusReading, StatusFinished, StatusDNF, StatusPaused:
		return true
	}
	return false
}

// String implements fmt.Stringer.
func (s Status) String() string { return string(s) }
