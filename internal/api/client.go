package api

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// DefaultUserAgent identifies feed requests.
const DefaultUserAgent = "levelfeed/1.0"

// Fetcher downloads the feed asynchronously. At most one request is in flight;
// starting a new one supersedes the previous.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	logger     *slog.Logger

	ctx context.Context

	mu       sync.Mutex
	gen      uint64
	cancel   context.CancelFunc
	response string
	closed   bool
	wg       sync.WaitGroup
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// NewFetcher creates a Fetcher. Requests are cancelled when ctx is done.
func NewFetcher(ctx context.Context, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		userAgent: DefaultUserAgent,
		logger:    slog.Default(),
		ctx:       ctx,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.httpClient.Timeout = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) FetcherOption {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) FetcherOption {
	return func(f *Fetcher) {
		f.httpClient = hc
	}
}
