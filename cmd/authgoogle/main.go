// Command authgoogle mints the OAuth token file used by the Gmail and
// Calendar integrations. Run it once, follow the printed URL, and paste the
// authorization code back.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/gmail/v1"
)

func main() {
	var (
		credentialsPath = flag.String("credentials", "credentials.json", "OAuth client credentials file")
		tokenPath       = flag.String("token", "token.json", "where to write the token")
	)
	flag.Parse()

	creds, err := os.ReadFile(*credentialsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read credentials: %v\n", err)
		os.Exit(1)
	}
	conf, err := google.ConfigFromJSON(creds, gmail.GmailSendScope, calendar.CalendarEventsScope)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse credentials: %v\n", err)
		os.Exit(1)
	}

	url := conf.AuthCodeURL("state-token", oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	fmt.Printf("Open the following URL in a browser, authorize, then paste the code here:\n\n%s\n\ncode: ", url)

	var code string
	if _, err := fmt.Scan(&code); err != nil {
		fmt.Fprintf(os.Stderr, "read code: %v\n", err)
		os.Exit(1)
	}

	tok, err := conf.Exchange(context.Background(), code)
	if err != nil {
		fmt.Fprintf(os.Stderr, "exchange code: %v\n", err)
		os.Exit(1)
	}

	out, err := os.OpenFile(*tokenPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "write token: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()
	if err := json.NewEncoder(out).Encode(tok); err != nil {
		fmt.Fprintf(os.Stderr, "encode token: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("token written to %s\n", *tokenPath)
}
