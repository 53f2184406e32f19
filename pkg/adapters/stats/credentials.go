package stats

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/wadjakorntonsri/shortlinks/pkg/config"
	"github.com/wadjakorntonsri/shortlinks/pkg/ports"
)

// FirebaseScope is the OAuth scope granted to the service account token
const FirebaseScope = "https://www.googleapis.com/auth/firebase"

// NewAuthorizedHTTPClient loads a service account key file and returns an
// HTTP client that attaches a fresh bearer token to every request.
func NewAuthorizedHTTPClient(ctx context.Context, credentialsFile string, timeout time.Duration) (*http.Client, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}

	conf, err := google.JWTConfigFromJSON(data, FirebaseScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account credentials: %w", err)
	}

	client := oauth2.NewClient(ctx, conf.TokenSource(ctx))
	client.Timeout = timeout
	return client, nil
}

// FromConfig builds the stats client for the configured credentials. When the
// credentials cannot be loaded it still returns a usable client, one that
// fails every call, along with the loading error.
func FromConfig(ctx context.Context, cfg *config.Config) (ports.StatsClient, error) {
	httpClient, err := NewAuthorizedHTTPClient(ctx, cfg.CredentialsFile, cfg.StatsTimeout)
	if err != nil {
		return Unavailable(err), err
	}
	return NewClient(httpClient, cfg.StatsBaseURL), nil
}
