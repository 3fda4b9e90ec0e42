package notify

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/quantumtech/hiredroid/internal/common"
)

// GmailMailer sends mail through the Gmail API using a stored OAuth token.
type GmailMailer struct {
	svc    *gmail.Service
	sender string
	log    *slog.Logger
}

// NewGmailMailer builds the Gmail service from a token file previously minted
// by the offline OAuth flow.
func NewGmailMailer(ctx context.Context, credentialsPath, tokenPath, sender string, logger *slog.Logger) (*GmailMailer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	ts, err := tokenSource(ctx, credentialsPath, tokenPath, gmail.GmailSendScope)
	if err != nil {
		return nil, err
	}
	svc, err := gmail.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("%w: gmail service: %v", common.ErrWorkerUnavailable, err)
	}
	return &GmailMailer{svc: svc, sender: sender, log: logger}, nil
}

func (m *GmailMailer) Send(ctx context.Context, to, cc, subject, body string) error {
	headers := fmt.Sprintf("From: %s\r\nTo: %s\r\n", m.sender, to)
	if cc != "" {
		headers += fmt.Sprintf("Cc: %s\r\n", cc)
	}
	headers += fmt.Sprintf("Subject: %s\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n", subject)
	raw := base64.URLEncoding.EncodeToString([]byte(headers + body))

	msg := &gmail.Message{Raw: raw}
	sent, err := m.svc.Users.Messages.Send("me", msg).Context(ctx).Do()
	if err != nil {
		m.log.Error("notify.gmail.send_failed", "to", to, "subject", subject, "error", err)
		return fmt.Errorf("%w: send mail: %v", common.ErrWorkerUnavailable, err)
	}
	m.log.Info("notify.gmail.sent", "to", to, "cc", cc, "message_id", sent.Id)
	return nil
}

// tokenSource loads client credentials and the user token from disk and
// returns a refreshing token source. Shared with the calendar adapter.
func tokenSource(ctx context.Context, credentialsPath, tokenPath string, scopes ...string) (oauth2.TokenSource, error) {
	creds, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("%w: read credentials: %v", common.ErrWorkerUnavailable, err)
	}
	conf, err := google.ConfigFromJSON(creds, scopes...)
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
