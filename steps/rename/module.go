// Package rename provides RenameTransformer, which renames table columns
// according to an old→new mapping.
package rename

import (
	"context"

	"tabula/internal/table"
	"tabula/internal/transform"
)

const Name = "RenameTransformer"

// Module implements the transform.Module interface for this package.
type Module struct{}

func (Module) Register(r *transform.Registry) error {
	return r.Register(Name, New)
}

// Transformer renames the columns named in its mapping. Columns absent from
// the table are skipped, so applying it twice is the same as applying it once.
type Transformer struct {
	mapping map[string]string
}

// New reads the "mapping" parameter.
func New(params transform.Params) (transform.Step, error) {
	r := transform.NewParamReader(Name, params)
	mapping := r.StringMap("mapping")
	if err := r.Close(); err != nil {
		return nil, err
	}
	for from, to := range mapping {
		if to == "" {
			return nil, &transform.InvalidParameterError{Step: Name, Param: "mapping", Reason: "empty new name for " + from}
		}
	}
	return &Transformer{mapping: mapping}, nil
}

func (t *Transformer) Apply(_ context.Context, tb *table.Table) (*table.Table, error) {
	tb.RenameColumns(t.mapping)
	return tb, nil
}
