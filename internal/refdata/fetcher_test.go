package refdata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"

	"tabula/internal/transform"
)

const isoCSV = "name,alpha-2,alpha-3,region,sub-region\nGermany,DE,DEU,Europe,Western Europe\nIndia,IN,IND,Asia,Southern Asia\n"

func countingServer(t *testing.T, status int, body string) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestFetch_DecodesCSV(t *testing.T) {
	srv, _ := countingServer(t, http.StatusOK, isoCSV)
	f := NewFetcher(&HTTPGetter{Timeout: time.Second})

	tb, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, 2, tb.Len())
	require.Equal(t, "Western Europe", tb.Rows()[0]["sub-region"])
}

func TestFetch_Non2xxIsExternalFetchError(t *testing.T) {
	srv, _ := countingServer(t, http.StatusBadGateway, "nope")
	f := NewFetcher(&HTTPGetter{})

	_, err := f.Fetch(context.Background(), srv.URL)
	var fe *transform.ExternalFetchError
	require.True(t, errors.As(err, &fe), "got %v", err)
	require.Equal(t, srv.URL, fe.URL)
	require.Contains(t, fe.Error(), "502")
}

func TestFetch_Timeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(block)

	f := NewFetcher(&HTTPGetter{Timeout: 20 * time.Millisecond})
	_, err := f.Fetch(context.Background(), srv.URL)
	var fe *transform.ExternalFetchError
	require.True(t, errors.As(err, &fe), "got %v", err)
	require.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)
}

func TestFetch_MemoryCacheHonoursTTL(t *testing.T) {
	srv, hits := countingServer(t, http.StatusOK, isoCSV)
	mock := clock.NewMock()
	f := NewFetcher(&HTTPGetter{}, WithCache(NewMemoryCache(), time.Hour), WithClock(mock))

	for i := 0; i < 3; i++ {
		_, err := f.Fetch(context.Background(), srv.URL)
		require.NoError(t, err)
	}
	require.EqualValues(t, 1, atomic.LoadInt32(hits))

	mock.Add(2 * time.Hour)
	_, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.EqualValues(t, 2, atomic.LoadInt32(hits))
}

func TestFetch_ZeroTTLDisablesCache(t *testing.T) {
	srv, hits := countingServer(t, http.StatusOK, isoCSV)
	f := NewFetcher(&HTTPGetter{}, WithCache(NewMemoryCache(), 0))
	for i := 0; i < 2; i++ {
		_, err := f.Fetch(context.Background(), srv.URL)
		require.NoError(t, err)
	}
	require.EqualValues(t, 2, atomic.LoadInt32(hits))
}

func TestFetch_ErrorsAreNotCached(t *testing.T) {
	srv, hits := countingServer(t, http.StatusInternalServerError, "")
	f := NewFetcher(&HTTPGetter{}, WithCache(NewMemoryCache(), time.Hour))
	for i := 0; i < 2; i++ {
		_, err := f.Fetch(context.Background(), srv.URL)
		require.Error(t, err)
	}
	require.EqualValues(t, 2, atomic.LoadInt32(hits))
}

func TestBoltCache_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "refdata.db")
	fetched := time.Unix(1700000000, 123).UTC()

	c, err := OpenBoltCache(path)
	require.NoError(t, err)
	require.NoError(t, c.Store("u", Entry{Body: []byte(isoCSV), Fetched: fetched}))
	require.NoError(t, c.Close())

	c, err = OpenBoltCache(path)
	require.NoError(t, err)
	defer c.Close()
	e, ok, err := c.Lookup("u")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, isoCSV, string(e.Body))
	require.True(t, e.Fetched.Equal(fetched))

	_, ok, err = c.Lookup("missing")
	require.NoError(t, err)
	require.False(t, ok)
}
