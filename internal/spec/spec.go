package spec

import (
	"github.com/pkg/errors"

	"tabula/internal/load"
	"tabula/internal/transform"
	"tabula/sink"
	"tabula/source"
)

type File struct {
	SchemaVersion string `yaml:"schema_version"`

	Source source.Config `yaml:"source"`

	// Ordered step list; each entry is a name plus constructor parameters.
	Steps []map[string]any `yaml:"steps"`

	// Snapshot enables the persistence hook when set.
	Snapshot *sink.Metadata `yaml:"snapshot"`

	Output load.Config `yaml:"output"`
}

// StepSpecs converts the raw step list, naming the index of a bad entry.
func (f File) StepSpecs() ([]transform.Spec, error) {
	out := make([]transform.Spec, 0, len(f.Steps))
	for i, m := range f.Steps {
		s, err := transform.SpecFromMap(m)
		if err != nil {
			return nil, errors.Wrapf(err, "steps[%d]", i)
		}
		out = append(out, s)
	}
	return out, nil
}
