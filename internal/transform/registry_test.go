package transform

import (
	"context"
	"errors"
	"testing"

	"tabula/internal/table"
)

func noopCtor(Params) (Step, error) {
	return StepFunc(func(_ context.Context, t *table.Table) (*table.Table, error) { return t, nil }), nil
}

func TestRegistry_BuildUnknown(t *testing.T) {
	r := NewRegistry()
	_, err := r.Build("Nope", nil)
	var ue *UnknownTransformationError
	if !errors.As(err, &ue) {
		t.Fatalf("want UnknownTransformationError, got %v", err)
	}
	if ue.Name != "Nope" {
		t.Fatalf("error names %q, want Nope", ue.Name)
	}
}

func TestRegistry_DuplicateFailsFast(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("A", noopCtor); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	err := r.Register("A", noopCtor)
	if !errors.Is(err, ErrDuplicateTransformation) {
		t.Fatalf("want ErrDuplicateTransformation, got %v", err)
	}
}

func TestRegistry_AllowOverrideLastWins(t *testing.T) {
	r := NewRegistry(AllowOverride())
	var built string
	first := func(Params) (Step, error) { built = "first"; return noopCtor(nil) }
	second := func(Params) (Step, error) { built = "second"; return noopCtor(nil) }
	if err := r.Register("A", first); err != nil {
		t.Fatal(err)
	}
	if err := r.Register("A", second); err != nil {
		t.Fatalf("override Register: %v", err)
	}
	if _, err := r.Build("A", nil); err != nil {
		t.Fatal(err)
	}
	if built != "second" {
		t.Fatalf("built %q, want second", built)
	}
}

type moduleFunc func(*Registry) error

func (f moduleFunc) Register(r *Registry) error { return f(r) }

func TestRegistry_InstallAndNames(t *testing.T) {
	r := NewRegistry()
	err := r.Install(
		moduleFunc(func(r *Registry) error { return r.Register("Zed", noopCtor) }),
		moduleFunc(func(r *Registry) error { return r.Register("Alpha", noopCtor) }),
	)
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	names := r.Names()
	if len(names) != 2 || names[0] != "Alpha" || names[1] != "Zed" {
		t.Fatalf("Names() = %v", names)
	}
	if !r.Has("Zed") || r.Has("zed") {
		t.Fatal("Has must be exact and case-sensitive")
	}
}

func TestSpecFromMap(t *testing.T) {
	s, err := SpecFromMap(map[string]any{"name": "RenameTransformer", "mapping": map[string]any{"a": "b"}})
	if err != nil {
		t.Fatalf("SpecFromMap: %v", err)
	}
	if s.Name != "RenameTransformer" || len(s.Params) != 1 {
		t.Fatalf("unexpected spec %+v", s)
	}
	if _, err := SpecFromMap(map[string]any{"mapping": nil}); err == nil {
		t.Fatal("want error for missing name")
	}
	var pe *InvalidParameterError
	if _, err := SpecFromMap(map[string]any{"name": 3}); !errors.As(err, &pe) || pe.Param != "name" {
		t.Fatalf("want InvalidParameterError on name, got %v", err)
	}
}
