// Package external provides AddExternalColumnTransformer, which left-joins
// columns of a reference table fetched at apply time onto the input table.
//
//	match_column_mapping: {letter: alphabet}, external_columns: [name]
//
//	letter number   alphabet name foo       letter number alphabet name
//	a      1        a        Ant  bar       a      1      a        Ant
//	b      2    +   b        Bert      ==>  b      2      b        Bert
//	d      4                                d      4
package external

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"tabula/internal/refdata"
	"tabula/internal/table"
	"tabula/internal/transform"
)

const Name = "AddExternalColumnTransformer"

// Fetcher loads the reference table at url.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*table.Table, error)
}

// Module registers the step with a shared Fetcher. A nil Fetcher falls back to
// an uncached HTTP fetch with the default timeout; an empty DefaultURL falls
// back to the ISO-3166 table.
type Module struct {
	Fetcher    Fetcher
	DefaultURL string
}

func (m Module) Register(r *transform.Registry) error {
	f := m.Fetcher
	if f == nil {
		f = refdata.NewFetcher(&refdata.HTTPGetter{})
	}
	url := m.DefaultURL
	if url == "" {
		url = refdata.ISO3166URL
	}
	return r.Register(Name, func(p transform.Params) (transform.Step, error) {
		return New(p, f, url)
	})
}

type keyPair struct {
	internal, external string
}

// Transformer performs the left outer join. Every input row survives; a row
// with several matches fans out into one row per match.
type Transformer struct {
	keys    []keyPair
	columns []string
	url     string
	fetcher Fetcher
}

func New(params transform.Params, f Fetcher, defaultURL string) (*Transformer, error) {
	r := transform.NewParamReader(Name, params)
	mapping := r.StringMap("match_column_mapping")
	columns := r.Strings("external_columns")
	url := r.OptString("url", defaultURL)
	if err := r.Close(); err != nil {
		return nil, err
	}
	if url == "" {
		return nil, &transform.InvalidParameterError{Step: Name, Param: "url", Reason: "must not be empty"}
	}

	t := &Transformer{columns: columns, url: url, fetcher: f}
	for in, ext := range mapping {
		if ext == "" {
			return nil, &transform.InvalidParameterError{Step: Name, Param: "match_column_mapping", Reason: "empty external column for " + in}
		}
		t.keys = append(t.keys, keyPair{internal: in, external: ext})
	}
	sort.Slice(t.keys, func(i, j int) bool { return t.keys[i].internal < t.keys[j].internal })
	return t, nil
}

func (t *Transformer) Apply(ctx context.Context, tb *table.Table) (*table.Table, error) {
	for _, k := range t.keys {
		if !tb.HasColumn(k.internal) {
			return nil, errors.Errorf("external: join column %q not in table", k.internal)
		}
	}

	ref, err := t.fetcher.Fetch(ctx, t.url)
	if err != nil {
		var fe *transform.ExternalFetchError
		if errors.As(err, &fe) {
			return nil, err
		}
		return nil, &transform.ExternalFetchError{URL: t.url, Err: err}
	}
	for _, c := range append(t.externalKeys(), t.columns...) {
		if !ref.HasColumn(c) {
			return nil, &transform.ExternalFetchError{URL: t.url, Err: fmt.Errorf("reference table has no column %q", c)}
		}
	}

	right := t.rightColumns()
	leftOut, rightOut := outputNames(tb.Columns(), right)

	index := map[string][]table.Row{}
	for _, rr := range ref.Rows() {
		if k, ok := joinKey(rr, t.externalKeys()); ok {
			index[k] = append(index[k], rr)
		}
	}

	out := table.New(append(mapNames(tb.Columns(), leftOut), mapNames(right, rightOut)...)...)
	for _, lr := range tb.Rows() {
		base := make(table.Row, len(lr)+len(right))
		for c, v := range lr {
			base[rename(leftOut, c)] = v
		}
		k, ok := joinKey(lr, t.internalKeys())
		matches := index[k]
		if !ok || len(matches) == 0 {
			out.Append(base)
			continue
		}
		for _, rr := range matches {
			nr := make(table.Row, len(base)+len(right))
			for c, v := range base {
				nr[c] = v
			}
			for _, c := range right {
				nr[rename(rightOut, c)] = rr[c]
			}
			out.Append(nr)
		}
	}
	return out, nil
}

func (t *Transformer) internalKeys() []string {
	out := make([]string, len(t.keys))
	for i, k := range t.keys {
		out[i] = k.internal
	}
	return out
}

func (t *Transformer) externalKeys() []string {
	out := make([]string, len(t.keys))
	for i, k := range t.keys {
		out[i] = k.external
	}
	return out
}

// rightColumns lists the reference columns carried into the output: external
// key columns not named like their internal counterpart, then the requested
// columns.
func (t *Transformer) rightColumns() []string {
	seen := map[string]bool{}
	var out []string
	for _, k := range t.keys {
		if k.external != k.internal && !seen[k.external] {
			seen[k.external] = true
			out = append(out, k.external)
		}
	}
	shared := map[string]bool{}
	for _, k := range t.keys {
		if k.external == k.internal {
			shared[k.internal] = true
		}
	}
	for _, c := range t.columns {
		if !seen[c] && !shared[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

// outputNames suffixes columns present on both sides: left with _x, right with _y.
func outputNames(left, right []string) (map[string]string, map[string]string) {
	l, r := map[string]string{}, map[string]string{}
	inLeft := map[string]bool{}
	for _, c := range left {
		inLeft[c] = true
	}
	for _, c := range right {
		if inLeft[c] {
			l[c] = c + "_x"
			r[c] = c + "_y"
		}
	}
	return l, r
}

func rename(m map[string]string, c string) string {
	if n, ok := m[c]; ok {
		return n
	}
	return c
}

func mapNames(cols []string, m map[string]string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = rename(m, c)
	}
	return out
}

// joinKey builds an exact, case-sensitive composite key. Rows with a null key
// part never match.
func joinKey(r table.Row, cols []string) (string, bool) {
	parts := make([]string, len(cols))
	for i, c := range cols {
		v := r[c]
		if table.IsNull(v) {
			return "", false
		}
		parts[i] = table.Format(v)
	}
	return strings.Join(parts, "\x1f"), true
}
