package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/quantumtech/hiredroid/internal/common"
)

// Config bounds the slot search. Defaults match the recruitment team's working
// hours: Mon-Fri, 13:00-22:00 local.
type Config struct {
	Location     *time.Location
	DayStartHour int
	DayEndHour   int // a slot must END by this hour
	SlotDuration time.Duration
	SlotGap      time.Duration // break between consecutive interviews
	MaxAttempts  int
}

func (c *Config) applyDefaults() {
	if c.Location == nil {
		c.Location = time.UTC
	}
	if c.DayStartHour <= 0 {
		c.DayStartHour = 13
	}
	if c.DayEndHour <= 0 {
		c.DayEndHour = 22
	}
	if c.SlotDuration <= 0 {
		c.SlotDuration = 30 * time.Minute
	}
	if c.SlotGap < 0 {
		c.SlotGap = 0
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 50
	}
}

// BookingRequest describes one interview to place.
type BookingRequest struct {
	JobID          string
	JobTitle       string
	CandidateName  string
	CandidateEmail string
	CVFilename     string
	CVLink         string
	HREmail        string
	Start          time.Time // earliest acceptable start
}

// Scheduler walks forward from the requested start, skipping weekends and
// after-hours, until it finds a conflict-free slot and books it.
type Scheduler struct {
	cal Calendar
	cfg Config
	log *slog.Logger
}

func NewScheduler(cal Calendar, cfg Config, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	cfg.applyDefaults()
	return &Scheduler{cal: cal, cfg: cfg, log: logger}
}

// Book finds the first free slot at or after req.Start and creates the event.
// Returns the booked start time, or ErrSchedulingConflict when the attempt
// budget runs out without a free slot.
func (s *Scheduler) Book(ctx context.Context, req BookingRequest) (time.Time, error) {
	cur := req.Start.In(s.cfg.Location)

	for attempt := 0; attempt < s.cfg.MaxAttempts; attempt++ {
		cur = s.rollForward(cur)
		end := cur.Add(s.cfg.SlotDuration)

		conflict, err := s.cal.HasConflict(ctx, cur, end)
		if err != nil {
			return time.Time{}, fmt.Errorf("check calendar: %w", err)
		}
		if conflict {
			s.log.Debug("schedule.slot.conflict", "job_id", req.JobID, "candidate", req.CandidateName, "slot", cur)
			cur = cur.Add(s.cfg.SlotDuration + s.cfg.SlotGap)
			continue
		}

		ev := Event{
			Summary: fmt.Sprintf("Interview: %s for %s", req.CandidateName, req.JobTitle),
			Description: fmt.Sprintf(
				"Interview with %s for the %s position (Job ID: %s).\nPlease review the candidate's CV at %s.\nContact the recruitment team for any additional details.",
				req.CandidateName, req.JobTitle, req.JobID, req.CVLink),
			Start:     cur,
			End:       end,
			Attendees: attendees(req),
		}
		if err := s.cal.CreateEvent(ctx, ev); err != nil {
			return time.Time{}, fmt.Errorf("create event: %w", err)
		}
		s.log.Info("schedule.slot.booked",
			"job_id", req.JobID,
			"candidate", req.CandidateName,
			"start", cur,
			"attempts", attempt+1,
		)
		return cur, nil
	}

	return time.Time{}, fmt.Errorf("%w: no free slot within %d attempts from %s",
		common.ErrSchedulingConflict, s.cfg.MaxAttempts, req.Start.In(s.cfg.Location).Format(time.RFC3339))
}

// rollForward normalizes t to the next moment inside the booking window:
// weekdays only, starting no earlier than DayStartHour, with room for a full
// slot before DayEndHour.
func (s *Scheduler) rollForward(t time.Time) time.Time {
	for {
		switch t.Weekday() {
		case time.Saturday:
			t = startOfDay(t.AddDate(0, 0, 2), s.cfg.DayStartHour)
			continue
		case time.Sunday:
			t = startOfDay(t.AddDate(0, 0, 1), s.cfg.DayStartHour)
			continue
		}
		if t.Hour() < s.cfg.DayStartHour {
			t = startOfDay(t, s.cfg.DayStartHour)
			continue
		}
		dayEnd := startOfDay(t, s.cfg.DayEndHour)
		if t.Add(s.cfg.SlotDuration).After(dayEnd) {
			// No room left today; resume tomorrow morning.
			t = startOfDay(t.AddDate(0, 0, 1), s.cfg.DayStartHour)
			continue
		}
		return t
	}
}

func startOfDay(t time.Time, hour int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), hour, 0, 0, 0, t.Location())
}

func attendees(req BookingRequest) []string {
	var out []string
	if req.HREmail != "" {
		out = append(out, req.HREmail)
	}
	if req.CandidateEmail != "" {
		out = append(out, req.CandidateEmail)
	}
	return out
}
