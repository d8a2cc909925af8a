package rename

import (
	"context"
	"errors"
	"testing"

	"tabula/internal/table"
	"tabula/internal/transform"
)

func sample() *table.Table {
	return table.FromRows([]string{"a", "b", "c"}, []table.Row{
		{"a": "1", "b": "2", "c": "3"},
	})
}

func TestRename_AppliesMappingAndSkipsMissing(t *testing.T) {
	s, err := New(transform.Params{"mapping": map[string]any{"a": "x", "zzz": "y"}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	out, err := s.Apply(context.Background(), sample())
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	got := out.Columns()
	if len(got) != 3 || got[0] != "x" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("columns = %v", got)
	}
	if out.Rows()[0]["x"] != "1" {
		t.Fatalf("value not carried: %v", out.Rows()[0])
	}
}

func TestRename_Idempotent(t *testing.T) {
	s, err := New(transform.Params{"mapping": map[string]any{"a": "x"}})
	if err != nil {
		t.Fatal(err)
	}
	once, _ := s.Apply(context.Background(), sample())
	twice, _ := s.Apply(context.Background(), once.Clone())
	if a, b := once.Columns(), twice.Columns(); len(a) != len(b) || a[0] != b[0] {
		t.Fatalf("second application changed columns: %v vs %v", a, b)
	}
}

func TestRename_RejectsBadParams(t *testing.T) {
	cases := map[string]transform.Params{
		"missing":     {},
		"not a map":   {"mapping": "a"},
		"empty value": {"mapping": map[string]any{"a": ""}},
		"unknown key": {"mapping": map[string]any{"a": "b"}, "extra": true},
	}
	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			var pe *transform.InvalidParameterError
			if _, err := New(p); !errors.As(err, &pe) {
				t.Fatalf("want InvalidParameterError, got %v", err)
			}
		})
	}
}
