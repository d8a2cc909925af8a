package fillempty

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"tabula/internal/table"
	"tabula/internal/transform"
)

func build(t *testing.T, p transform.Params) transform.Step {
	t.Helper()
	s, err := New(p)
	require.NoError(t, err)
	return s
}

func TestFill_ForwardFillsWithinPartition(t *testing.T) {
	tb := table.FromRows([]string{"letter", "number"}, []table.Row{
		{"letter": "a", "number": nil},
		{"letter": "b", "number": "2"},
		{"letter": "b", "number": nil},
		{"letter": "c", "number": nil},
	})
	s := build(t, transform.Params{"filter_column": "letter", "count_columns": []any{"number"}})

	out, err := s.Apply(context.Background(), tb)
	require.NoError(t, err)
	require.Equal(t, []any{nil, "2", "2", nil}, out.Column("number"))
}

func TestFill_DoesNotCrossPartitions(t *testing.T) {
	tb := table.FromRows([]string{"k", "n"}, []table.Row{
		{"k": "x", "n": "1"},
		{"k": "y", "n": nil},
		{"k": "x", "n": nil},
		{"k": nil, "n": nil},
	})
	s := build(t, transform.Params{"filter_column": "k", "count_columns": []any{"n"}})

	out, err := s.Apply(context.Background(), tb)
	require.NoError(t, err)
	require.Equal(t, []any{"1", nil, "1", nil}, out.Column("n"))
}

func TestFill_ParallelMatchesSequential(t *testing.T) {
	mk := func() *table.Table {
		tb := table.New("k", "a", "b")
		for i := 0; i < 500; i++ {
			r := table.Row{"k": fmt.Sprintf("p%d", i%17)}
			if i%3 == 0 {
				r["a"] = i
			}
			if i%5 == 0 {
				r["b"] = i
			}
			tb.Append(r)
		}
		return tb
	}
	params := func(workers int) transform.Params {
		return transform.Params{"filter_column": "k", "count_columns": []any{"a", "b"}, "workers": workers}
	}

	seq, err := build(t, params(1)).Apply(context.Background(), mk())
	require.NoError(t, err)
	par, err := build(t, params(8)).Apply(context.Background(), mk())
	require.NoError(t, err)
	require.Equal(t, seq.Rows(), par.Rows())
}

func TestFill_MissingColumn(t *testing.T) {
	s := build(t, transform.Params{"filter_column": "k", "count_columns": []any{"missing"}})
	_, err := s.Apply(context.Background(), table.FromRows([]string{"k"}, []table.Row{{"k": "a"}}))
	require.ErrorContains(t, err, "missing")
}

func TestNew_RejectsZeroWorkers(t *testing.T) {
	_, err := New(transform.Params{"filter_column": "k", "count_columns": []any{"n"}, "workers": 0})
	require.Error(t, err)
}
