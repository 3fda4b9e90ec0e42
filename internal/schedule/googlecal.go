package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/quantumtech/hiredroid/internal/common"
)

// GoogleCalendar implements Calendar against the Calendar API using a stored
// OAuth token.
type GoogleCalendar struct {
	svc        *calendar.Service
	calendarID string
	log        *slog.Logger
}

func NewGoogleCalendar(ctx context.Context, credentialsPath, tokenPath, calendarID string, logger *slog.Logger) (*GoogleCalendar, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if calendarID == "" {
		calendarID = "primary"
	}
	ts, err := calendarTokenSource(ctx, credentialsPath, tokenPath)
	if err != nil {
		return nil, err
	}
	svc, err := calendar.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("%w: calendar service: %v", common.ErrWorkerUnavailable, err)
	}
	return &GoogleCalendar{svc: svc, calendarID: calendarID, log: logger}, nil
}

func (g *GoogleCalendar) HasConflict(ctx context.Context, from, to time.Time) (bool, error) {
	events, err := g.svc.Events.List(g.calendarID).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return false, fmt.Errorf("%w: list events: %v", common.ErrWorkerUnavailable, err)
	}
	for _, ev := range events.Items {
		if ev.Status == "cancelled" {
			continue
		}
		if ev.Start == nil || ev.End == nil || ev.Start.DateTime == "" || ev.End.DateTime == "" {
			// All-day entries do not block interview slots.
			continue
		}
		evStart, err1 := time.Parse(time.RFC3339, ev.Start.DateTime)
		evEnd, err2 := time.Parse(time.RFC3339, ev.End.DateTime)
		if err1 != nil || err2 != nil {
			continue
		}
		if from.Before(evEnd) && to.After(evStart) {
			g.log.Debug("schedule.calendar.overlap", "summary", ev.Summary, "start", ev.Start.DateTime)
			return true, nil
		}
	}
	return false, nil
}

func (g *GoogleCalendar) CreateEvent(ctx context.Context, ev Event) error {
	tz := ev.Start.Location().String()
	body := &calendar.Event{
		Summary:     ev.Summary,
		Description: ev.Description,
		Start:       &calendar.EventDateTime{DateTime: ev.Start.Format(time.RFC3339), TimeZone: tz},
		End:         &calendar.EventDateTime{DateTime: ev.End.Format(time.RFC3339), TimeZone: tz},
	}
	for _, a := range ev.Attendees {
		body.Attendees = append(body.Attendees, &calendar.EventAttendee{Email: a})
	}
	created, err := g.svc.Events.Insert(g.calendarID, body).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: insert event: %v", common.ErrWorkerUnavailable, err)
	}
	g.log.Info("schedule.calendar.event_created", "event_id", created.Id, "start", ev.Start)
	return nil
}

func calendarTokenSource(ctx context.Context, credentialsPath, tokenPath string) (oauth2.TokenSource, error) {
	creds, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("%w: read credentials: %v", common.ErrWorkerUnavailable, err)
	}
	conf, err := google.ConfigFromJSON(creds, calendar.CalendarEventsScope)
	if err != nil {
		return nil, fmt.Errorf("%w: parse credentials: %v", common.ErrWorkerUnavailable, err)
	}
	tokBytes, err := os.ReadFile(tokenPath)
	if err != nil {
		return nil, fmt.Errorf("%w: read token (run the auth flow first): %v", common.ErrWorkerUnavailable, err)
	}
	tok := &oauth2.Token{}
	if err := json.Unmarshal(tokBytes, tok); err != nil {
		return nil, fmt.Errorf("%w: parse token: %v", common.ErrWorkerUnavailable, err)
	}
	return conf.TokenSource(ctx, tok), nil
}
