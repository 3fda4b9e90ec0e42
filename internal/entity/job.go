package entity

import "time"

// Job is one open position driving one pipeline instance. Jobs are created and
// maintained outside the pipeline; the core only reads them.
type Job struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}
