// Package window provides WindowByDaysTransformer, which keeps only the most
// recent rows of a table.
package window

import (
	"context"

	"tabula/internal/table"
	"tabula/internal/transform"
)

const Name = "WindowByDaysTransformer"

type Module struct{}

func (Module) Register(r *transform.Registry) error {
	return r.Register(Name, New)
}

// Transformer returns the last Days rows in their existing order, or the whole
// table when it is shorter. Rows are assumed to be one per day.
type Transformer struct {
	Days int
}

func New(params transform.Params) (transform.Step, error) {
	r := transform.NewParamReader(Name, params)
	days := r.Int("number_of_days")
	if err := r.Close(); err != nil {
		return nil, err
	}
	if days < 0 {
		return nil, &transform.InvalidParameterError{Step: Name, Param: "number_of_days", Reason: "must not be negative"}
	}
	return &Transformer{Days: days}, nil
}

func (t *Transformer) Apply(_ context.Context, tb *table.Table) (*table.Table, error) {
	if tb.Len() <= t.Days {
		return tb, nil
	}
	return tb.Tail(t.Days), nil
}
