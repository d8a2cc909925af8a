// Package refdata fetches static reference tables (such as the ISO-3166
// country/region lookup) over HTTP and caches them per URL with a TTL.
package refdata

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"

	"tabula/internal/logging"
	"tabula/internal/table"
	"tabula/internal/transform"
)

// ISO3166URL is the default country-code reference table, keyed by "alpha-3".
const ISO3166URL = "https://raw.githubusercontent.com/lukes/ISO-3166-Countries-with-Regional-Codes/master/all/all.csv"

const DefaultTimeout = 30 * time.Second

// Getter retrieves the raw bytes behind a URL.
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// HTTPGetter is a Getter with a per-request timeout. Non-2xx responses are
// errors.
type HTTPGetter struct {
	Client  *http.Client
	Timeout time.Duration
}

func (g *HTTPGetter) Get(ctx context.Context, url string) ([]byte, error) {
	timeout := g.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	client := g.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read body")
	}
	return body, nil
}

// Fetcher decodes reference tables from CSV and optionally caches the raw
// payload. Failed fetches are never cached.
type Fetcher struct {
	getter Getter
	cache  Cache
	ttl    time.Duration
	clock  clock.Clock
}

type Option func(*Fetcher)

// WithCache enables caching in c for ttl. A ttl of zero disables caching.
func WithCache(c Cache, ttl time.Duration) Option {
	return func(f *Fetcher) {
		if ttl > 0 {
			f.cache, f.ttl = c, ttl
		}
	}
}

func WithClock(c clock.Clock) Option {
	return func(f *Fetcher) { f.clock = c }
}

func NewFetcher(g Getter, opts ...Option) *Fetcher {
	f := &Fetcher{getter: g, clock: clock.New()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns the table at url. Every failure is a
// *transform.ExternalFetchError.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*table.Table, error) {
	if f.cache != nil {
		e, ok, err := f.cache.Lookup(url)
		if err != nil {
			logging.L().Warn("refdata: cache lookup failed", "url", url, "err", err)
		}
		if ok && f.clock.Since(e.Fetched) < f.ttl {
			if t, err := table.ReadCSV(bytes.NewReader(e.Body)); err == nil {
				logging.L().Debug("refdata: cache hit", "url", url, "age", f.clock.Since(e.Fetched))
				return t, nil
			}
		}
	}

	body, err := f.getter.Get(ctx, url)
	if err != nil {
		return nil, &transform.ExternalFetchError{URL: url, Err: err}
	}
	t, err := table.ReadCSV(bytes.NewReader(body))
	if err != nil {
		return nil, &transform.ExternalFetchError{URL: url, Err: err}
	}
	logging.L().Info("refdata: fetched reference table", "url", url, "rows", t.Len())

	if f.cache != nil {
		if err := f.cache.Store(url, Entry{Body: body, Fetched: f.clock.Now()}); err != nil {
			logging.L().Warn("refdata: cache store failed", "url", url, "err", err)
		}
	}
	return t, nil
}
