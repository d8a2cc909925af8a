package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tabula/source"
)

func write(t *testing.T, path, body string, mod time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	require.NoError(t, os.Chtimes(path, mod, mod))
}

func TestResolve_PicksNewestCSV(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	write(t, filepath.Join(dir, "old.csv"), "a\n1\n", now.Add(-time.Hour))
	write(t, filepath.Join(dir, "new.csv"), "a\n2\n", now)
	write(t, filepath.Join(dir, "newer.txt"), "ignored", now.Add(time.Hour))

	got, err := Resolve(dir)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "new.csv"), got)
}

func TestResolve_EmptyDir(t *testing.T) {
	_, err := Resolve(t.TempDir())
	require.ErrorContains(t, err, "no csv files")
}

func TestRead_ThroughRegistry(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "in.csv")
	write(t, p, "location,total\nGermany,\n", time.Now())

	a, err := source.Open(source.Config{Kind: Kind, Path: p})
	require.NoError(t, err)
	tb, err := a.Read(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"location", "total"}, tb.Columns())
	require.Nil(t, tb.Rows()[0]["total"])
}

func TestNew_RequiresPath(t *testing.T) {
	_, err := New(source.Config{Kind: Kind})
	require.Error(t, err)
}
