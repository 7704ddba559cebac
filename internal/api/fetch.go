package api

import (
	"context"
	"net/url"

	"github.com/rickgao/levelfeed/internal/scheduler"
)

// StartFetch begins downloading rawURL in the background and reports whether
// the request was accepted. It rejects malformed URLs and a closed Fetcher.
// Any request still in flight is cancelled and its result discarded.
func (f *Fetcher) StartFetch(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		f.logger.Warn("rejecting feed url", "url", rawURL)
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed || f.ctx.Err() != nil {
		return false
	}

	if f.cancel != nil {
		f.cancel()
		f.logger.Debug("superseding in-flight request", "generation", f.gen)
	}

	f.gen++
	ctx, cancel := context.WithCancel(f.ctx)
	f.cancel = cancel
	f.response = ""

	f.wg.Add(1)
	go f.fetch(ctx, cancel, f.gen, rawURL)

	return true
}

// CurrentResponse returns "" while pending, scheduler.ResponseError on
// failure, otherwise the body of the latest request.
func (f *Fetcher) CurrentResponse() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.response
}

// Close cancels any in-flight request, waits for it to return, and rejects
// later StartFetch calls.
func (f *Fetcher) Close() {
	f.mu.Lock()
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	f.gen++
	f.closed = true
	f.mu.Unlock()

	f.wg.Wait()
}

func (f *Fetcher) fetch(ctx context.Context, cancel context.CancelFunc, gen uint64, rawURL string) {
	defer f.wg.Done()
	defer cancel()

	result := scheduler.ResponseError
	body, err := f.doRequest(ctx, rawURL)
	switch {
	case err != nil:
		f.logger.Warn("feed request failed", "url", rawURL, "error", err)
	case len(body) == 0:
		// An empty body reads as pending and is left to the tick timeout.
		f.logger.Warn("feed returned empty body", "url", rawURL)
		result = ""
	default:
		result = string(body)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if gen != f.gen {
		return
	}
	f.response = result
	f.cancel = nil
}
