package stats

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/wadjakorntonsri/shortlinks/pkg/core/domain"
	"github.com/wadjakorntonsri/shortlinks/pkg/ports"
)

const (
	DefaultBaseURL = "https://firebasedynamiclinks.googleapis.com"

	// DurationDays is the fixed window queried for every link
	DurationDays = 365

	maxBodyBytes = 10 << 20
)

// Client calls the Firebase Dynamic Links linkStats endpoint
type Client struct {
	http    *http.Client
	baseURL string
	maxBody int64
}

// NewClient wraps an already authorized HTTP client
func NewClient(httpClient *http.Client, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		maxBody: maxBodyBytes,
	}
}

func (c *Client) statsURL(linkURL string) string {
	return fmt.Sprintf("%s/v1/%s/linkStats?durationDays=%d", c.baseURL, escapeSegment(linkURL), DurationDays)
}

// LinkStats fetches the raw statistics document for linkURL. Transport
// failures and non-2xx replies come back as *domain.UpstreamError.
func (c *Client) LinkStats(ctx context.Context, linkURL string) (*domain.StatsResponse, error) {
	target := c.statsURL(linkURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &domain.UpstreamError{URL: target, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &domain.UpstreamError{URL: target, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &domain.UpstreamError{
			StatusCode: resp.StatusCode,
			Reason:     reason(resp),
			URL:        target,
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, &domain.UpstreamError{URL: target, Err: fmt.Errorf("read stats response: %w", err)}
	}
	if int64(len(body)) > c.maxBody {
		return nil, &domain.UpstreamError{
			StatusCode: resp.StatusCode,
			URL:        target,
			Err:        fmt.Errorf("stats response too large: over %d bytes", c.maxBody),
		}
	}

	return &domain.StatsResponse{StatusCode: resp.StatusCode, Body: body}, nil
}

func reason(resp *http.Response) string {
	if r := strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)+" "); r != "" && r != resp.Status {
		return r
	}
	return http.StatusText(resp.StatusCode)
}

// escapeSegment percent-encodes s for use as a single path segment. Only
// unreserved characters are left as is, so '/', ':' and '?' are escaped too.
func escapeSegment(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s) * 3)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	case c == '-', c == '_', c == '.', c == '~':
		return true
	}
	return false
}

// unavailable fails every call with the credential loading error
type unavailable struct {
	err error
}

// Unavailable returns a client for when credentials could not be loaded
func Unavailable(err error) ports.StatsClient {
	return unavailable{err: err}
}

func (u unavailable) LinkStats(ctx context.Context, linkURL string) (*domain.StatsResponse, error) {
	return nil, &domain.UpstreamError{Err: fmt.Errorf("stats credentials unavailable: %w", u.err)}
}

var _ ports.StatsClient = (*Client)(nil)
