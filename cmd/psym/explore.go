package main

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/p-org/psym/pkg/config"
	"github.com/p-org/psym/pkg/explorer"
	"github.com/p-org/psym/pkg/lib/server"
	"github.com/p-org/psym/pkg/lib/signals"
	"github.com/p-org/psym/pkg/metrics"
	"github.com/p-org/psym/pkg/runtime"
	"github.com/p-org/psym/pkg/scheduler"
)

type exploreOptions struct {
	configPath string
	profiling  bool
	config     *config.Config
}

func newExploreCmd() *cobra.Command {
	o := exploreOptions{config: config.Default()}

	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Explore the reference broadcast program",
		Long: `Explore runs iterations of the broadcast program until every planned
interleaving has run or a bound is hit.

        $ psym explore --machines 3 --receivers 2 --messages 2
        $ psym explore --config psym.yaml --dpor=false
        `,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.load(cmd)
			if err != nil {
				return err
			}

			logger := logrus.New()
			logger.SetOutput(cmd.ErrOrStderr())
			if cfg.Debug {
				logger.SetLevel(logrus.DebugLevel)
			}
			logger.Infof("log level %s", logger.Level)

			ctx, cancel := signals.Context(cmd.Context(), logger)
			defer cancel()

			report, err := o.run(ctx, cfg, logger)
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), report)
			if report.Violation != nil {
				return report.Violation
			}
			return nil
		},
	}

	o.config.AddFlags(cmd.Flags())
	cmd.Flags().StringVar(&o.configPath, "config", "", "path to a YAML config file; flags override its values")
	cmd.Flags().BoolVar(&o.profiling, "profiling", false, "serve profiling data next to the metrics")

	return cmd
}

// load returns the flag values, or the config file with the changed flags
// applied on top.
func (o *exploreOptions) load(cmd *cobra.Command) (*config.Config, error) {
	cfg := o.config
	if o.configPath != "" {
		loaded, err := config.Load(o.configPath)
		if err != nil {
			return nil, err
		}
		if err := loaded.Override(cmd.Flags()); err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	if err := cfg.Apply(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (o *exploreOptions) run(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*explorer.Report, error) {
	runID := uuid.New().String()
	entry := logger.WithField("run", runID)

	program := runtime.NewBroadcast(cfg.Machines, cfg.Receivers, cfg.Messages, runtime.WithFailAt(cfg.FailAt))
	var s scheduler.Scheduler
	if cfg.DPOR {
		s = scheduler.NewDPORScheduler(cfg, program, entry)
	} else {
		s = scheduler.NewIterativeBoundedScheduler(cfg, program, entry)
	}
	entry.WithFields(logrus.Fields{
		"program":  program.Name(),
		"dpor":     cfg.DPOR,
		"backend":  cfg.GuardBackend,
		"machines": cfg.Machines,
	}).Info("starting exploration")

	if cfg.MetricsAddr == "" {
		return explorer.Run(ctx, s, explorer.WithLogger(logger), explorer.WithRunID(runID))
	}

	metrics.Register()
	serve := server.GetServeFunc(
		server.WithAddress(cfg.MetricsAddr),
		server.WithLogger(entry),
		server.WithProfiling(o.profiling),
	)

	g, gctx := errgroup.WithContext(ctx)
	serveCtx, stopServing := context.WithCancel(gctx)
	var report *explorer.Report
	g.Go(func() error {
		defer stopServing()
		var err error
		report, err = explorer.Run(gctx, s, explorer.WithLogger(logger), explorer.WithRunID(runID))
		return err
	})
	g.Go(func() error {
		return serve(serveCtx)
	})
	if err := g.Wait(); err != nil {
		return report, err
	}
	return report, nil
}

func printReport(w io.Writer, r *explorer.Report) {
	fmt.Fprintf(w, "run:                %s\n", r.RunID)
	fmt.Fprintf(w, "outcome:            %s\n", r.Outcome)
	fmt.Fprintf(w, "iterations:         %d\n", r.Iterations)
	fmt.Fprintf(w, "bounded iterations: %d\n", r.BoundedIterations)
	fmt.Fprintf(w, "max depth:          %d\n", r.MaxDepth)
	fmt.Fprintf(w, "exhausted:          %t\n", r.Exhausted)
	fmt.Fprintf(w, "duration:           %s\n", r.Duration)
	if r.Violation != nil {
		fmt.Fprintf(w, "violation:          %v\n", r.Violation)
	}
}
