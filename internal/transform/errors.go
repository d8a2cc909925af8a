package transform

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrDuplicateTransformation is returned by Registry.Register when a name is
// registered twice and the registry does not allow overrides.
var ErrDuplicateTransformation = errors.New("transform: duplicate step name")

// UnknownTransformationError reports a step name that is not registered.
type UnknownTransformationError struct {
	Name string
}

func (e *UnknownTransformationError) Error() string {
	return fmt.Sprintf("transform: unknown step %q", e.Name)
}

// InvalidParameterError reports a malformed or missing constructor parameter.
type InvalidParameterError struct {
	Step   string
	Param  string
	Reason string
}

func (e *InvalidParameterError) Error() string {
	if e.Step == "" {
		return fmt.Sprintf("transform: parameter %q: %s", e.Param, e.Reason)
	}
	return fmt.Sprintf("transform: %s: parameter %q: %s", e.Step, e.Param, e.Reason)
}

// ExternalFetchError wraps a failure to retrieve or decode reference data.
type ExternalFetchError struct {
	URL string
	Err error
}

func (e *ExternalFetchError) Error() string {
	return fmt.Sprintf("transform: fetch %s: %v", e.URL, e.Err)
}

func (e *ExternalFetchError) Unwrap() error { return e.Err }

// StepExecutionError identifies the pipeline stage whose Apply failed.
type StepExecutionError struct {
	Index int
	Step  string
	Err   error
}

func (e *StepExecutionError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Index, e.Step, e.Err)
}

func (e *StepExecutionError) Unwrap() error { return e.Err }
