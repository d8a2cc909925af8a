package pipeline

import (
	"io"
	"sync/atomic"

	"github.com/pkg/errors"

	"tabula/internal/transform"
)

// ErrPipelineConsumed is returned when a Pipeline is run a second time.
var ErrPipelineConsumed = errors.New("pipeline: already consumed")

// Stage is one built step and its position in the pipeline.
type Stage struct {
	Index int
	Name  string
	Step  transform.Step
}

// Pipeline is an ordered list of steps that can be run once. Build a new one
// from the same specs to run again.
type Pipeline struct {
	stages   []Stage
	consumed atomic.Bool
}

// Build instantiates every spec through reg, in order, before anything runs.
// The first failing spec aborts the build; the error names its index and
// step and keeps the registry error reachable with errors.As.
func Build(reg *transform.Registry, specs []transform.Spec) (*Pipeline, error) {
	p := &Pipeline{stages: make([]Stage, 0, len(specs))}
	for i, s := range specs {
		step, err := reg.Build(s.Name, s.Params)
		if err != nil {
			p.Close()
			return nil, errors.Wrapf(err, "pipeline: step %d (%s)", i, s.Name)
		}
		p.stages = append(p.stages, Stage{Index: i, Name: s.Name, Step: step})
	}
	return p, nil
}

func (p *Pipeline) Len() int { return len(p.stages) }

func (p *Pipeline) Stages() []Stage { return append([]Stage(nil), p.stages...) }

func (p *Pipeline) consume() error {
	if !p.consumed.CompareAndSwap(false, true) {
		return ErrPipelineConsumed
	}
	return nil
}

// Close releases steps holding resources, such as plugin connections.
func (p *Pipeline) Close() error {
	var first error
	for _, s := range p.stages {
		if c, ok := s.Step.(io.Closer); ok {
			if err := c.Close(); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}
