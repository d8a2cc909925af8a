package window

import (
	"context"
	"errors"
	"testing"

	"tabula/internal/table"
	"tabula/internal/transform"
)

func days(n int) *table.Table {
	tb := table.New("day")
	for i := 1; i <= n; i++ {
		tb.Append(table.Row{"day": i})
	}
	return tb
}

func apply(t *testing.T, n int, tb *table.Table) *table.Table {
	t.Helper()
	s, err := New(transform.Params{"number_of_days": n})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	out, err := s.Apply(context.Background(), tb)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	return out
}

func TestWindow_KeepsLastRows(t *testing.T) {
	out := apply(t, 2, days(5))
	col := out.Column("day")
	if len(col) != 2 || col[0] != 4 || col[1] != 5 {
		t.Fatalf("got %v, want [4 5]", col)
	}
}

func TestWindow_ShorterTableUnchanged(t *testing.T) {
	if out := apply(t, 5, days(1)); out.Len() != 1 {
		t.Fatalf("got %d rows, want 1", out.Len())
	}
}

func TestWindow_ZeroDays(t *testing.T) {
	out := apply(t, 0, days(3))
	if !out.Empty() || len(out.Columns()) != 1 {
		t.Fatalf("want empty table with columns kept, got %v", out)
	}
}

func TestWindow_RejectsNegative(t *testing.T) {
	var pe *transform.InvalidParameterError
	if _, err := New(transform.Params{"number_of_days": -1}); !errors.As(err, &pe) {
		t.Fatalf("want InvalidParameterError, got %v", err)
	}
}
