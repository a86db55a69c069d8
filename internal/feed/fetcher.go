// Package feed downloads a community feed page and pulls post titles out of it.
//
// Only one page shape is understood: a listing of <shreddit-post> elements
// whose post-title attribute carries the headline. Titles are returned in the
// order the page lists them, which the source serves newest first.
package feed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"patchcheck/internal/debug"
)

const (
	// PostTag is the element wrapping one feed post.
	PostTag = "shreddit-post"
	// TitleAttr is the attribute on PostTag holding the post title.
	TitleAttr = "post-title"
	// DefaultUserAgent identifies patchcheck to the feed host.
	DefaultUserAgent = "patchcheck-feed-reader"
)

// ErrFeedUnavailable is returned when the feed could not be fetched or did
// not answer with 200 OK.
var ErrFeedUnavailable = errors.New("feed unavailable")

// Fetcher retrieves feeds and extracts post titles.
type Fetcher struct {
	client *resty.Client
	tag    string
	attr   string
}

type fetcherSettings struct {
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string
	tag        string
	attr       string
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*fetcherSettings)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(client *http.Client) FetcherOption {
	return func(s *fetcherSettings) {
		s.httpClient = client
	}
}

// WithTimeout bounds each request. Zero means no timeout.
func WithTimeout(timeout time.Duration) FetcherOption {
	return func(s *fetcherSettings) {
		s.timeout = timeout
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) FetcherOption {
	return func(s *fetcherSettings) {
		if ua != "" {
			s.userAgent = ua
		}
	}
}

// WithPostSelector overrides the tag and attribute scanned for titles.
func WithPostSelector(tag, attr string) FetcherOption {
	return func(s *fetcherSettings) {
		s.tag = tag
		s.attr = attr
	}
}

// NewFetcher creates a Fetcher. Requests are never retried.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	s := fetcherSettings{
		userAgent: DefaultUserAgent,
		tag:       PostTag,
		attr:      TitleAttr,
	}
	for _, opt := range opts {
		opt(&s)
	}

	var client *resty.Client
	if s.httpClient != nil {
		client = resty.NewWithClient(s.httpClient)
	} else {
		client = resty.New()
	}
	client.SetRetryCount(0).
		SetHeader("User-Agent", s.userAgent).
		SetHeader("Accept", "text/html").
		SetLogger(debugLogger{})
	if s.timeout > 0 {
		client.SetTimeout(s.timeout)
	}

	return &Fetcher{client: client, tag: s.tag, attr: s.attr}
}

// Titles issues a single GET to url and returns the post titles in page order.
func (f *Fetcher) Titles(ctx context.Context, url string) ([]string, error) {
	debug.Logf("feed: GET %s", url)
	resp, err := f.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFeedUnavailable, err)
	}
	body := resp.RawBody()
	if body != nil {
		defer func() { _ = body.Close() }()
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrFeedUnavailable, resp.StatusCode())
	}
	if body == nil {
		return nil, nil
	}

	titles, err := ExtractAttr(body, f.tag, f.attr)
	if err != nil {
		return nil, err
	}
	debug.Logf("feed: %d titles from %s", len(titles), url)
	return titles, nil
}

// debugLogger routes resty's own diagnostics to the debug log instead of stderr.
type debugLogger struct{}

func (debugLogger) Errorf(format string, v ...any) { debug.Logf("resty error: "+format, v...) }
func (debugLogger) Warnf(format string, v ...any)  { debug.Logf("resty warn: "+format, v...) }
func (debugLogger) Debugf(format string, v ...any) { debug.Logf("resty debug: "+format, v...) }
