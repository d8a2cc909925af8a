package engine

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"tabula/internal/config"
	"tabula/internal/logging"
	"tabula/internal/refdata"
	"tabula/internal/spec"
	"tabula/internal/telemetry"
	"tabula/internal/transform"
	"tabula/steps/all"

	_ "tabula/sink/kafka"
	_ "tabula/sink/localfs"
	_ "tabula/sink/s3"
	_ "tabula/source/file"
	_ "tabula/source/httpcsv"
)

type Config struct {
	PipelinePath string
	ConfigPath   string // optional run config YAML
	RunID        string // generated when empty
}

// Bootstrap loads configuration and wires the registry, the reference-data
// fetcher and metrics. Nothing is read or run until Engine.Run.
func Bootstrap(_ context.Context, cfg Config) (*Engine, error) {
	// 1. process config + logging
	run, err := config.LoadRunConfig(cfg.ConfigPath)
	if err != nil {
		return nil, err
	}
	logging.Configure(logging.Options{Level: run.Log.Level, JSON: run.Log.JSON})

	// 2. pipeline file
	file, err := config.LoadPipelineSpec(cfg.PipelinePath)
	if err != nil {
		return nil, err
	}

	// 3. reference data
	cache, err := openCache(run.Refdata)
	if err != nil {
		return nil, err
	}
	fetcher := refdata.NewFetcher(&refdata.HTTPGetter{Timeout: run.Refdata.Timeout},
		refdata.WithCache(cache, run.Refdata.CacheTTL))

	// 4. steps
	reg := transform.NewRegistry()
	if err := all.Register(reg, all.Deps{Fetcher: fetcher, ExternalURL: run.Refdata.URL}); err != nil {
		cache.Close()
		return nil, err
	}

	// 5. metrics
	gatherer := prometheus.NewRegistry()
	metrics, err := telemetry.NewStepMetrics(gatherer)
	if err != nil {
		cache.Close()
		return nil, err
	}

	id := cfg.RunID
	if id == "" {
		id = uuid.NewString()
	}
	return &Engine{
		run:      run,
		file:     file,
		registry: reg,
		cache:    cache,
		gatherer: gatherer,
		metrics:  metrics,
		runID:    id,
	}, nil
}

func openCache(c config.RefdataConfig) (refdata.Cache, error) {
	if c.Cache == "bolt" {
		bc, err := refdata.OpenBoltCache(c.BoltPath)
		return bc, errors.Wrap(err, "engine")
	}
	return refdata.NewMemoryCache(), nil
}

// StepNames lists the built-in steps.
func StepNames() ([]string, error) {
	reg := transform.NewRegistry()
	if err := all.Register(reg, all.Deps{}); err != nil {
		return nil, err
	}
	return reg.Names(), nil
}

// Pipeline exposes the loaded pipeline file.
func (e *Engine) Pipeline() spec.File { return e.file }
