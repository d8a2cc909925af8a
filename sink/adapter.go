package sink

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"sort"
	"time"

	"github.com/pkg/errors"

	"tabula/internal/table"
)

const (
	// OrderLayout formats the per-step order key.
	OrderLayout = "20060102T150405.000000"
	// RunLayout formats the run-start segment of the object path.
	RunLayout = "2006-01-02T150405Z"
)

// Metadata selects and addresses the snapshot destination for one run.
type Metadata struct {
	Method      string            `yaml:"method"`
	Destination string            `yaml:"destination"`
	DagID       string            `yaml:"dag_id"`
	TaskID      string            `yaml:"task_id"`
	Options     map[string]string `yaml:"options"`
}

func (m Metadata) Validate() error {
	switch {
	case m.Method == "":
		return errors.New("sink: method is required")
	case m.Destination == "":
		return errors.New("sink: destination is required")
	case m.DagID == "" || m.TaskID == "":
		return errors.New("sink: dag_id and task_id are required")
	}
	return nil
}

// Snapshot is one intermediate step result.
type Snapshot struct {
	Order      string
	Step       string
	RunStarted time.Time
	Table      *table.Table
}

// ObjectKey is the slash-separated path of s below the destination:
// {dag_id}/{task_id}/{run timestamp}/{order}_{step}.csv
func (m Metadata) ObjectKey(s Snapshot) string {
	return path.Join(m.DagID, m.TaskID, s.RunStarted.UTC().Format(RunLayout), s.Order+"_"+s.Step+".csv")
}

// Encode renders the snapshot table as CSV.
func Encode(s Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := table.WriteCSV(&buf, s.Table); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Adapter is the common behaviour every snapshot destination exposes.
type Adapter interface {
	Configure(Metadata) error
	Push(ctx context.Context, key string, s Snapshot) error
	Close() error // idempotent
}

/*──────── registry ───────*/

type Factory = func() Adapter

var reg = map[string]Factory{}

// Register is called from each driver's init().
func Register(method string, f Factory) { reg[method] = f }

// Open builds and configures the adapter for m.Method.
func Open(m Metadata) (Adapter, error) {
	f, ok := reg[m.Method]
	if !ok {
		return nil, fmt.Errorf("sink: unknown method %q", m.Method)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	a := f()
	if err := a.Configure(m); err != nil {
		return nil, errors.Wrapf(err, "sink: configure %s", m.Method)
	}
	return a, nil
}

// Methods lists the registered method names.
func Methods() []string {
	out := make([]string, 0, len(reg))
	for k := range reg {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
