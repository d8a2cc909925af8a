// Package fillempty provides FillEmptyCountsTransformer: a forward fill of
// count columns that never crosses partition boundaries.
//
//	filter_column: letter, count_columns: [number]
//
//	letter number         letter number
//	a                     a
//	b      2              b      2
//	b             ==>     b      2
//	c      1              c      1
//	c                     c      1
package fillempty

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"tabula/internal/table"
	"tabula/internal/transform"
)

const Name = "FillEmptyCountsTransformer"

type Module struct{}

func (Module) Register(r *transform.Registry) error {
	return r.Register(Name, New)
}

// Transformer forward-fills null values of CountColumns with the nearest
// preceding non-null value among rows that share FilterColumn's value.
// Partitions keep table order; leading nulls stay null. Rows whose filter
// value is null belong to no partition and are left alone.
type Transformer struct {
	FilterColumn string
	CountColumns []string
	// Workers > 1 fills partitions concurrently. The result is the same.
	Workers int
}

func New(params transform.Params) (transform.Step, error) {
	r := transform.NewParamReader(Name, params)
	t := &Transformer{
		FilterColumn: r.String("filter_column"),
		CountColumns: r.Strings("count_columns"),
		Workers:      r.OptInt("workers", 1),
	}
	if err := r.Close(); err != nil {
		return nil, err
	}
	if t.Workers < 1 {
		return nil, &transform.InvalidParameterError{Step: Name, Param: "workers", Reason: "must be at least 1"}
	}
	return t, nil
}

func (t *Transformer) Apply(ctx context.Context, tb *table.Table) (*table.Table, error) {
	for _, c := range append([]string{t.FilterColumn}, t.CountColumns...) {
		if !tb.HasColumn(c) {
			return nil, errors.Errorf("fillempty: column %q not in table", c)
		}
	}

	parts := partitions(tb.Rows(), t.FilterColumn)
	if t.Workers == 1 || len(parts) < 2 {
		for _, idx := range parts {
			t.fill(tb.Rows(), idx)
		}
		return tb, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.Workers)
	rows := tb.Rows()
	for _, idx := range parts {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			t.fill(rows, idx)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tb, nil
}

func (t *Transformer) fill(rows []table.Row, idx []int) {
	for _, col := range t.CountColumns {
		var last any
		seen := false
		for _, i := range idx {
			v := rows[i][col]
			if !table.IsNull(v) {
				last, seen = v, true
				continue
			}
			if seen {
				rows[i][col] = last
			}
		}
	}
}

// partitions groups row indices by the filter value, in order of first
// appearance.
func partitions(rows []table.Row, col string) [][]int {
	byKey := map[string]int{}
	var out [][]int
	for i, r := range rows {
		v := r[col]
		if table.IsNull(v) {
			continue
		}
		k := fmt.Sprintf("%T\x00%v", v, v)
		p, ok := byKey[k]
		if !ok {
			p = len(out)
			byKey[k] = p
			out = append(out, nil)
		}
		out[p] = append(out[p], i)
	}
	return out
}
