package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"tabula/internal/engine"
	"tabula/internal/logging"
)

func main() {
	logging.InitFromEnv()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "tabula: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "tabula",
		Usage:     "Run configured table transformation pipelines",
		UsageText: "tabula [command]",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run a pipeline file once",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "pipeline", Aliases: []string{"p"}, Usage: "pipeline YAML", Required: true},
					&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "run config YAML", EnvVars: []string{"TABULA_CONFIG"}},
					&cli.StringFlag{Name: "run-id", Usage: "id attached to logs (default: random uuid)"},
				},
				Action: runAction,
			},
			{
				Name:  "steps",
				Usage: "List registered step names",
				Action: func(c *cli.Context) error {
					names, err := engine.StepNames()
					if err != nil {
						return err
					}
					for _, n := range names {
						fmt.Fprintln(c.App.Writer, n)
					}
					return nil
				},
			},
		},
	}
}

func runAction(c *cli.Context) error {
	e, err := engine.Bootstrap(c.Context, engine.Config{
		PipelinePath: c.String("pipeline"),
		ConfigPath:   c.String("config"),
		RunID:        c.String("run-id"),
	})
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	defer e.Close()

	out, err := e.Run(c.Context)
	if err != nil {
		return fmt.Errorf("run %s: %w", e.RunID(), err)
	}
	logging.L().Info("done", "run_id", e.RunID(), "rows", out.Len())
	return nil
}
