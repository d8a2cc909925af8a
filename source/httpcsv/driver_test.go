package httpcsv

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tabula/source"
)

func TestRead_DownloadsCSV(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("iso_code,total\nDEU,5\n"))
	}))
	defer srv.Close()

	a, err := source.Open(source.Config{Kind: Kind, URL: srv.URL, Timeout: time.Second})
	require.NoError(t, err)
	tb, err := a.Read(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, tb.Len())
	require.Equal(t, "DEU", tb.Rows()[0]["iso_code"])
}

func TestRead_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	a, err := New(source.Config{URL: srv.URL})
	require.NoError(t, err)
	_, err = a.Read(context.Background())
	require.ErrorContains(t, err, "404")
}

func TestOpen_UnknownKind(t *testing.T) {
	_, err := source.Open(source.Config{Kind: "ftp"})
	require.Error(t, err)
}
