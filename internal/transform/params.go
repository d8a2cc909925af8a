package transform

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Params holds a step's configuration keys other than "name".
type Params map[string]any

// ParamReader decodes a step's parameters one key at a time so that a failure
// names the offending parameter. The first error sticks; later reads return
// zero values and Err reports it. Close additionally rejects keys that were
// never read.
//
//	r := transform.NewParamReader("WindowByDaysTransformer", params)
//	n := r.Int("number_of_days")
//	if err := r.Close(); err != nil { ... }
type ParamReader struct {
	step   string
	params Params
	seen   map[string]struct{}
	err    *InvalidParameterError
}

func NewParamReader(step string, params Params) *ParamReader {
	return &ParamReader{step: step, params: params, seen: map[string]struct{}{}}
}

// String reads a required non-empty string.
func (r *ParamReader) String(key string) string {
	var s string
	if r.decode(key, true, &s) && s == "" {
		r.fail(key, "must not be empty")
	}
	return s
}

// OptString reads an optional string, returning def when absent.
func (r *ParamReader) OptString(key, def string) string {
	s := def
	r.decode(key, false, &s)
	return s
}

// Strings reads a required non-empty list of non-empty strings.
func (r *ParamReader) Strings(key string) []string {
	var out []string
	if !r.decode(key, true, &out) {
		return nil
	}
	if len(out) == 0 {
		r.fail(key, "must list at least one value")
		return nil
	}
	for i, s := range out {
		if s == "" {
			r.fail(key, fmt.Sprintf("element %d must not be empty", i))
			return nil
		}
	}
	return out
}

// StringMap reads a required non-empty string→string mapping.
func (r *ParamReader) StringMap(key string) map[string]string {
	var out map[string]string
	if !r.decode(key, true, &out) {
		return nil
	}
	if len(out) == 0 {
		r.fail(key, "must contain at least one entry")
		return nil
	}
	return out
}

// Map reads an optional free-form mapping.
func (r *ParamReader) Map(key string) map[string]any {
	var out map[string]any
	r.decode(key, false, &out)
	return out
}

// Int reads a required integer. Floats are accepted only when integral, so
// JSON-decoded numbers work.
func (r *ParamReader) Int(key string) int {
	return r.integer(key, true, 0)
}

// OptInt reads an optional integer, returning def when absent.
func (r *ParamReader) OptInt(key string, def int) int {
	return r.integer(key, false, def)
}

// Err returns the first decoding error, if any.
func (r *ParamReader) Err() error {
	if r.err == nil {
		return nil
	}
	return r.err
}

// Close returns the first decoding error, or an error naming a parameter that
// no read consumed.
func (r *ParamReader) Close() error {
	if r.err != nil {
		return r.err
	}
	var unknown []string
	for k := range r.params {
		if _, ok := r.seen[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		r.fail(unknown[0], "unknown parameter")
		if len(unknown) > 1 {
			r.err.Reason = fmt.Sprintf("unknown parameters %s", strings.Join(unknown, ", "))
		}
		return r.err
	}
	return nil
}

func (r *ParamReader) integer(key string, required bool, def int) int {
	if r.err != nil {
		return def
	}
	r.seen[key] = struct{}{}
	raw, ok := r.params[key]
	if !ok || raw == nil {
		if required {
			r.fail(key, "required")
		}
		return def
	}
	switch v := raw.(type) {
	case float64:
		if v != math.Trunc(v) {
			r.fail(key, fmt.Sprintf("must be an integer, got %v", v))
			return def
		}
	case bool, string:
		r.fail(key, fmt.Sprintf("must be an integer, got %T", raw))
		return def
	}
	out := def
	r.decode(key, required, &out)
	return out
}

// decode reports whether key was present and decoded into out.
func (r *ParamReader) decode(key string, required bool, out any) bool {
	if r.err != nil {
		return false
	}
	r.seen[key] = struct{}{}
	raw, ok := r.params[key]
	if !ok || raw == nil {
		if required {
			r.fail(key, "required")
		}
		return false
	}
	if err := mapstructure.Decode(raw, out); err != nil {
		r.fail(key, decodeReason(err))
		return false
	}
	return true
}

func (r *ParamReader) fail(key, reason string) {
	if r.err == nil {
		r.err = &InvalidParameterError{Step: r.step, Param: key, Reason: reason}
	}
}

func decodeReason(err error) string {
	if me, ok := err.(*mapstructure.Error); ok && len(me.Errors) > 0 {
		return strings.Join(me.Errors, "; ")
	}
	return err.Error()
}
