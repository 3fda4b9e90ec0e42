package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumtech/hiredroid/internal/common"
)

// fakeCalendar reports conflicts for a fixed set of slots and records what
// gets booked.
type fakeCalendar struct {
	busy    []time.Time // slot starts that are taken
	checks  int
	created []Event
}

func (f *fakeCalendar) HasConflict(_ context.Context, from, _ time.Time) (bool, error) {
	f.checks++
	for _, b := range f.busy {
		if b.Equal(from) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeCalendar) CreateEvent(_ context.Context, ev Event) error {
	f.created = append(f.created, ev)
	return nil
}

// mustTime builds a UTC time for a known weekday.
func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return ts.UTC()
}

func newTestScheduler(cal Calendar) *Scheduler {
	return NewScheduler(cal, Config{Location: time.UTC}, nil)
}

func TestBookTakesFreeSlotAsIs(t *testing.T) {
	cal := &fakeCalendar{}
	s := newTestScheduler(cal)

	// Wednesday 14:00 UTC, inside the window.
	start := mustTime(t, "2026-09-02T14:00:00Z")
	booked, err := s.Book(context.Background(), BookingRequest{
		JobID:         "job-1",
		JobTitle:      "Backend Engineer",
		CandidateName: "Ada",
		HREmail:       "hr@example.com",
		Start:         start,
	})
	require.NoError(t, err)
	assert.True(t, booked.Equal(start))

	require.Len(t, cal.created, 1)
	ev := cal.created[0]
	assert.Equal(t, "Interview: Ada for Backend Engineer", ev.Summary)
	assert.True(t, ev.End.Equal(start.Add(30*time.Minute)))
	assert.Equal(t, []string{"hr@example.com"}, ev.Attendees)
}

func TestBookRollsOverWeekend(t *testing.T) {
	cal := &fakeCalendar{}
	s := newTestScheduler(cal)

	// Saturday afternoon rolls to Monday at window open.
	start := mustTime(t, "2026-09-05T15:00:00Z")
	booked, err := s.Book(context.Background(), BookingRequest{JobID: "job-1", Start: start})
	require.NoError(t, err)
	assert.True(t, booked.Equal(mustTime(t, "2026-09-07T13:00:00Z")))
}

func TestBookRollsPastAfterHours(t *testing.T) {
	cal := &fakeCalendar{}
	s := newTestScheduler(cal)

	// Wednesday 21:45: a 30-minute slot cannot end by 22:00, so it moves to
	// Thursday 13:00.
	start := mustTime(t, "2026-09-02T21:45:00Z")
	booked, err := s.Book(context.Background(), BookingRequest{JobID: "job-1", Start: start})
	require.NoError(t, err)
	assert.True(t, booked.Equal(mustTime(t, "2026-09-03T13:00:00Z")))
}

func TestBookMorningSnapsToWindowOpen(t *testing.T) {
	cal := &fakeCalendar{}
	s := newTestScheduler(cal)

	start := mustTime(t, "2026-09-02T09:00:00Z")
	booked, err := s.Book(context.Background(), BookingRequest{JobID: "job-1", Start: start})
	require.NoError(t, err)
	assert.True(t, booked.Equal(mustTime(t, "2026-09-02T13:00:00Z")))
}

func TestBookStepsOverConflicts(t *testing.T) {
	start := mustTime(t, "2026-09-02T14:00:00Z")
	cal := &fakeCalendar{busy: []time.Time{
		start,
		start.Add(45 * time.Minute),
	}}
	s := newTestScheduler(cal)

	booked, err := s.Book(context.Background(), BookingRequest{JobID: "job-1", Start: start})
	require.NoError(t, err)
	// Each conflicted attempt advances by slot plus gap.
	assert.True(t, booked.Equal(start.Add(90*time.Minute)))
	assert.Equal(t, 3, cal.checks)
}

func TestBookExhaustsAttempts(t *testing.T) {
	// Every slot is busy.
	cal := &alwaysBusy{}
	s := NewScheduler(cal, Config{Location: time.UTC, MaxAttempts: 5}, nil)

	start := mustTime(t, "2026-09-02T14:00:00Z")
	_, err := s.Book(context.Background(), BookingRequest{JobID: "job-1", Start: start})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrSchedulingConflict)
	assert.Equal(t, 5, cal.checks)
}

type alwaysBusy struct{ checks int }

func (a *alwaysBusy) HasConflict(context.Context, time.Time, time.Time) (bool, error) {
	a.checks++
	return true, nil
}

func (a *alwaysBusy) CreateEvent(context.Context, Event) error { return nil }
