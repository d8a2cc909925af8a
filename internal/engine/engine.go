package engine

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"tabula/internal/config"
	"tabula/internal/load"
	"tabula/internal/logging"
	"tabula/internal/pipeline"
	"tabula/internal/refdata"
	"tabula/internal/spec"
	"tabula/internal/table"
	"tabula/internal/telemetry"
	"tabula/internal/transform"
	"tabula/source"
)

type Engine struct {
	run      config.RunConfig
	file     spec.File
	registry *transform.Registry
	cache    refdata.Cache
	gatherer *prometheus.Registry
	metrics  *telemetry.StepMetrics
	runID    string
}

func (e *Engine) RunID() string { return e.runID }

// Run executes one pass: read the source, run the steps with the optional
// snapshot hook, load the output and push metrics.
func (e *Engine) Run(ctx context.Context) (*table.Table, error) {
	log := logging.L().With("run_id", e.runID)

	specs, err := e.file.StepSpecs()
	if err != nil {
		return nil, err
	}
	p, err := pipeline.Build(e.registry, specs)
	if err != nil {
		return nil, err
	}
	defer p.Close()

	sc := e.file.Source
	sc.Timeout = e.run.HTTP.Timeout
	src, err := source.Open(sc)
	if err != nil {
		return nil, err
	}
	in, err := src.Read(ctx)
	if err != nil {
		return nil, err
	}
	log.Info("run started", "steps", p.Len(), "rows", in.Len())

	runner := pipeline.NewRunner(
		pipeline.WithPreviewRows(e.run.PreviewRows),
		pipeline.WithMetrics(e.metrics),
	)
	out, runErr := runner.Run(ctx, in, p, e.file.Snapshot)
	e.pushMetrics()
	if runErr != nil {
		return nil, runErr
	}

	if e.file.Output.Kind != "" {
		l, err := load.New(e.file.Output)
		if err != nil {
			return nil, err
		}
		if err := l.Load(ctx, out); err != nil {
			return nil, err
		}
	}
	log.Info("run finished", "rows", out.Len(), "columns", len(out.Columns()))
	return out, nil
}

func (e *Engine) pushMetrics() {
	if e.run.Metrics.Pushgateway == "" {
		return
	}
	if err := telemetry.Push(e.run.Metrics.Pushgateway, e.run.Metrics.Job, e.gatherer); err != nil {
		logging.L().Warn("metrics push failed", "err", err)
	}
}

func (e *Engine) Close() error {
	if e.cache != nil {
		return e.cache.Close()
	}
	return nil
}
