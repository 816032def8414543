package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
)

const (
	// credentialsFile is the downloaded Google API client secrets file,
	// expected under the data directory.
	credentialsFile = "credentials.json"
	// tokenFile holds the previously obtained OAuth token. Acquiring it
	// (the interactive browser flow) happens outside this process.
	tokenFile = "token.json"
)

// oauthClient builds an HTTP client from the stored client secrets and
// token. The returned client refreshes the access token transparently via
// the refresh token.
func oauthClient(ctx context.Context, dir string) (*http.Client, error) {
	secrets, err := os.ReadFile(filepath.Join(dir, credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("read client secrets: %w", err)
	}

	conf, err := google.ConfigFromJSON(secrets, gcal.CalendarScope)
	if err != nil {
		return nil, fmt.Errorf("parse client secrets: %w", err)
	}

	tokenPath := filepath.Join(dir, tokenFile)
	data, err := os.ReadFile(tokenPath)
	if err != nil {
		return nil, fmt.Errorf("read token (run the authorization flow first): %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("parse token %s: %w", tokenPath, err)
	}

	return conf.Client(ctx, &token), nil
}
