package schedule

import (
	"context"
	"time"
)

// Event is one interview booking to place on the calendar.
type Event struct {
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	Attendees   []string
}

// Calendar abstracts the booking backend so slot search stays testable
// without network access.
type Calendar interface {
	// HasConflict reports whether any confirmed event overlaps [from, to).
	HasConflict(ctx context.Context, from, to time.Time) (bool, error)
	CreateEvent(ctx context.Context, ev Event) error
}
