package pipeline

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"

	"tabula/internal/logging"
	"tabula/internal/table"
	"tabula/internal/telemetry"
	"tabula/internal/transform"
	"tabula/sink"
)

const DefaultPreviewRows = 5

// Opener resolves the snapshot adapter for a run.
type Opener func(sink.Metadata) (sink.Adapter, error)

type Runner struct {
	clock       clock.Clock
	previewRows int
	metrics     *telemetry.StepMetrics
	open        Opener
}

type Option func(*Runner)

func WithClock(c clock.Clock) Option { return func(r *Runner) { r.clock = c } }

// WithPreviewRows sets how many rows of each intermediate table are logged.
// Zero or less disables previews.
func WithPreviewRows(n int) Option { return func(r *Runner) { r.previewRows = n } }

func WithMetrics(m *telemetry.StepMetrics) Option { return func(r *Runner) { r.metrics = m } }

func WithOpener(o Opener) Option { return func(r *Runner) { r.open = o } }

func NewRunner(opts ...Option) *Runner {
	r := &Runner{clock: clock.New(), previewRows: DefaultPreviewRows, open: sink.Open}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Run folds t through every stage of p, left to right. When meta is non-nil
// each non-empty step result is pushed to the snapshot adapter for
// meta.Method before the next step runs. A failing step or snapshot write
// aborts the run with a *transform.StepExecutionError.
func (r *Runner) Run(ctx context.Context, t *table.Table, p *Pipeline, meta *sink.Metadata) (*table.Table, error) {
	if err := p.consume(); err != nil {
		return nil, err
	}

	var snap sink.Adapter
	if meta != nil {
		var err error
		if snap, err = r.open(*meta); err != nil {
			return nil, errors.Wrap(err, "pipeline: snapshot")
		}
		defer snap.Close()
	}

	started := r.clock.Now().UTC()
	var last time.Time
	r.preview("input", t)

	cur := t
	for _, st := range p.stages {
		begin := r.clock.Now()
		out, err := st.Step.Apply(ctx, cur)
		if err == nil && out == nil {
			err = errors.New("step returned no table")
		}
		took := r.clock.Since(begin)
		r.metrics.Observe(st.Name, took, rowCount(out), err)
		if err != nil {
			return nil, &transform.StepExecutionError{Index: st.Index, Step: st.Name, Err: err}
		}
		logging.L().Info("step done", "index", st.Index, "step", st.Name, "rows", out.Len(), "took", took)
		r.preview(st.Name, out)

		if snap != nil {
			if out.Empty() {
				logging.L().Info("snapshot skipped, empty result", "step", st.Name)
			} else {
				s := sink.Snapshot{Order: r.nextOrder(&last), Step: st.Name, RunStarted: started, Table: out}
				if err := snap.Push(ctx, meta.ObjectKey(s), s); err != nil {
					return nil, &transform.StepExecutionError{Index: st.Index, Step: st.Name, Err: err}
				}
			}
		}
		cur = out
	}
	return cur, nil
}

// nextOrder returns a UTC order key strictly after the previous one.
func (r *Runner) nextOrder(last *time.Time) string {
	now := r.clock.Now().UTC().Truncate(time.Microsecond)
	if !now.After(*last) {
		now = last.Add(time.Microsecond)
	}
	*last = now
	return now.Format(sink.OrderLayout)
}

func (r *Runner) preview(label string, t *table.Table) {
	if r.previewRows <= 0 || t == nil {
		return
	}
	logging.L().Info("preview", "stage", label, "table", "\n"+table.Preview(t, r.previewRows))
}

func rowCount(t *table.Table) int {
	if t == nil {
		return 0
	}
	return t.Len()
}
