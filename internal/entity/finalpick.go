package entity

import "time"

// FinalPick is one scored candidate selected for an on-site interview.
// A scoring failure is recorded as score 0 with a diagnostic reason; a booking
// failure keeps the provisional InterviewTime and sets BookingFailed.
type FinalPick struct {
	Filename      string    `json:"filename"`
	Name          string    `json:"name"`
	Score         int       `json:"score"`
	Reason        string    `json:"reason"`
	InterviewTime time.Time `json:"interview_time"`
	BookingFailed bool      `json:"booking_failed,omitempty"`
}
