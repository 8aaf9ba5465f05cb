// Package indico talks to the HTTP API of an Indico instance.
package indico

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/javiermolinar/indico/internal/dateutil"
	"github.com/javiermolinar/indico/internal/timetable"
)

const defaultTimeout = 30 * time.Second

// Errors returned by the client.
var (
	ErrTokenExpired       = errors.New("indico token has expired")
	ErrMissingBaseURL     = errors.New("indico base URL is required")
	ErrMissingToken       = errors.New("indico API token is required")
	ErrConferenceNotFound = errors.New("conference not found in timetable export")
	ErrInvalidResponse    = errors.New("invalid response from indico")
)

// StatusError reports a response with an unexpected status code.
type StatusError struct {
	Method string
	URL    string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("request for %s %s failed with %d: %s", e.Method, e.URL, e.Code, body)
}

// Client is an authenticated Indico API client.
// It implements both timetable fetching and entry persistence.
type Client struct {
	baseURL *url.URL
	token   string
	http    *http.Client
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
// Redirects are still never followed.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		clone := *hc
		c.http = &clone
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a client for the Indico instance at baseURL.
func New(baseURL, token string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, ErrMissingBaseURL
	}
	if strings.TrimSpace(token) == "" {
		return nil, ErrMissingToken
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base URL must be http or https, got %q", baseURL)
	}

	c := &Client{
		baseURL: u,
		token:   token,
		http:    &http.Client{Timeout: defaultTimeout},
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.http.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return c, nil
}

// BaseURL returns the instance URL the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// get issues an authenticated GET and returns the body of a 200 response.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "method", req.Method, "path", u.Path, "error", err)
		return nil, fmt.Errorf("%s %s: %w", req.Method, u.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("request done", "method", req.Method, "path", u.Path,
		"status", resp.StatusCode, "elapsed", time.Since(start))

	if loc := resp.Header.Get("Location"); strings.Contains(loc, "/login/") {
		return nil, ErrTokenExpired
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Method: req.Method, URL: u.String(), Code: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

// RawTimetable returns the unparsed timetable export of a conference.
func (c *Client) RawTimetable(ctx context.Context, conferenceID string, days dateutil.DateRange) ([]byte, error) {
	query := url.Values{}
	if !days.Start.IsZero() {
		query.Set("from", days.Start.Format(dateutil.DateLayout))
	}
	if !days.End.IsZero() {
		query.Set("to", days.End.Format(dateutil.DateLayout))
	}
	body, err := c.get(ctx, "/export/timetable/"+url.PathEscape(conferenceID)+".json", query)
	if err != nil {
		return nil, fmt.Errorf("fetching timetable: %w", err)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("fetching timetable: %w: body is not JSON", ErrInvalidResponse)
	}
	return body, nil
}

// FetchTimetable returns the flattened entries of a conference timetable,
// limited to the days in range.
func (c *Client) FetchTimetable(ctx context.Context, conferenceID string, days dateutil.DateRange) ([]timetable.Entry, error) {
	body, err := c.RawTimetable(ctx, conferenceID, days)
	if err != nil {
		return nil, err
	}
	entries, err := ParseTimetable(body, conferenceID, days)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("timetable fetched", "conference", conferenceID, "entries", len(entries), "days", days.String())
	return entries, nil
}

// PersistEntry moves a timetable entry of a conference to [start, end).
// Times are sent in the entry's own location, as the event displays them.
// The returned snapshot carries the requested times.
func (c *Client) PersistEntry(ctx context.Context, conferenceID string, entry timetable.Entry, start, end time.Time) (timetable.Entry, error) {
	loc := entry.Start.Location()
	query := url.Values{}
	query.Set("startDate", start.In(loc).Format(editLayout))
	query.Set("endDate", end.In(loc).Format(editLayout))

	path := fmt.Sprintf("/event/%s/manage/timetable/entry/%s/edit/datetime",
		url.PathEscape(conferenceID), url.PathEscape(entry.TimetableID()))
	body, err := c.get(ctx, path, query)
	if err != nil {
		return timetable.Entry{}, fmt.Errorf("persisting %s: %w", entry.ID, err)
	}
	if !gjson.ValidBytes(body) {
		return timetable.Entry{}, fmt.Errorf("persisting %s: %w: body is not JSON", entry.ID, ErrInvalidResponse)
	}

	c.logger.Info("entry persisted", "conference", conferenceID, "entry", entry.ID,
		"start", start, "end", end)
	return entry.WithTimes(start, end), nil
}
