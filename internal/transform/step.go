package transform

import (
	"context"

	"tabula/internal/table"
)

// Step is a single named, parameterized table transformation. Apply may mutate
// its input and return it; callers must not rely on the input afterwards.
type Step interface {
	Apply(ctx context.Context, t *table.Table) (*table.Table, error)
}

// StepFunc adapts a function to Step.
type StepFunc func(ctx context.Context, t *table.Table) (*table.Table, error)

func (f StepFunc) Apply(ctx context.Context, t *table.Table) (*table.Table, error) { return f(ctx, t) }

// Constructor builds a Step from its configuration parameters. It must reject
// malformed parameters instead of deferring the failure to Apply.
type Constructor func(Params) (Step, error)

// Spec is one entry of a pipeline's step list: the registered step name plus
// the remaining configuration keys as constructor parameters.
type Spec struct {
	Name   string
	Params Params
}

// SpecFromMap splits a raw configuration mapping into name and parameters.
func SpecFromMap(m map[string]any) (Spec, error) {
	raw, ok := m["name"]
	if !ok {
		return Spec{}, &InvalidParameterError{Param: "name", Reason: "required"}
	}
	name, ok := raw.(string)
	if !ok || name == "" {
		return Spec{}, &InvalidParameterError{Param: "name", Reason: "must be a non-empty string"}
	}
	params := make(Params, len(m)-1)
	for k, v := range m {
		if k != "name" {
			params[k] = v
		}
	}
	return Spec{Name: name, Params: params}, nil
}
