package notify

import "context"

// Mailer sends plain-text mail. Notification failures are never fatal to a
// pipeline stage; callers log and move on.
type Mailer interface {
	Send(ctx context.Context, to, cc, subject, body string) error
}
