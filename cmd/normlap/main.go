package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/ritzau/normlap/pkg/analysis"
	"github.com/ritzau/normlap/pkg/config"
	"github.com/ritzau/normlap/pkg/edgelist"
	"github.com/ritzau/normlap/pkg/logging"
	"github.com/ritzau/normlap/pkg/maxent"
	"github.com/ritzau/normlap/pkg/output"
	"github.com/ritzau/normlap/pkg/overlap"
	"github.com/ritzau/normlap/pkg/pubsub"
	"github.com/ritzau/normlap/pkg/watcher"
	"github.com/ritzau/normlap/pkg/web"
)

// Debounce settings for --watch
const (
	quietPeriod = 300 * time.Millisecond
	maxWait     = 2 * time.Second
)

func main() {
	f := pflag.NewFlagSet("normlap", pflag.ContinueOnError)
	config.RegisterFlags(f)
	f.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: normlap --a net1.tsv --b net2.tsv [--pool pool.tsv] [flags]\n\n")
		f.PrintDefaults()
	}
	if err := f.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	cfg, err := config.Load(f)
	if err != nil {
		logging.Fatal("failed to load configuration", "error", err)
	}

	level := logging.ParseLevel(cfg.Verbosity, cfg.VerboseCnt)
	if cfg.LogJSON {
		logging.SetJSONOutput(level)
	} else {
		logging.SetLevel(level)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		f.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		stop()
		logging.Fatal("normlap failed", "error", err)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	publisher := pubsub.NewComparisonPublisher()
	defer publisher.Close()

	runner := analysis.NewRunner(analysis.Options{
		SigmaFloor: cfg.SigmaFloor,
		Negative:   cfg.Negative,
		Positive:   cfg.Positive,
	}, publisher)

	switch {
	case cfg.Sample != "":
		return sample(ctx, cfg, runner, os.Stdout)
	case cfg.WebMode:
		return serve(ctx, cfg, runner, publisher)
	}

	res, err := runner.Run(ctx, request(cfg, "initial run"))
	if err != nil {
		return err
	}
	if err := printResult(os.Stdout, cfg, res); err != nil {
		return err
	}

	if cfg.Watch {
		return watch(ctx, cfg, runner, func(res analysis.Result) {
			if err := printResult(os.Stdout, cfg, res); err != nil {
				logging.Error("failed to print report", "error", err)
			}
		})
	}
	return nil
}

// request builds a comparison request from the configured input files
func request(cfg *config.Config, reason string) analysis.Request {
	req := analysis.Request{
		A:      analysis.FileSource(cfg.A),
		B:      analysis.FileSource(cfg.B),
		Reason: reason,
	}
	if cfg.Pool != "" {
		req.Pool = analysis.FileSource(cfg.Pool)
	}
	return req
}

func printResult(w io.Writer, cfg *config.Config, res analysis.Result) error {
	if cfg.JSON {
		return output.WriteJSON(w, res.Report)
	}
	if cfg.Watch {
		color.New(color.Faint).Fprintf(w, "--- %s (%s) ---\n", res.Finished.Format(time.TimeOnly), res.Reason)
	}
	output.PrintReport(w, res.Inputs, res.Report)
	return nil
}

// watch re-scores the comparison whenever an input file changes, until
// ctx is done
func watch(ctx context.Context, cfg *config.Config, runner *analysis.Runner, onResult func(analysis.Result)) error {
	fw, err := watcher.NewFileWatcher([]watcher.Input{
		{Role: "a", Path: cfg.A},
		{Role: "b", Path: cfg.B},
		{Role: "pool", Path: cfg.Pool},
	})
	if err != nil {
		return err
	}
	if err := fw.Start(ctx); err != nil {
		return err
	}

	debouncer := watcher.NewDebouncer(fw.Events(), quietPeriod, maxWait)
	debouncer.Start(ctx)

	for change := range debouncer.Output() {
		reason := strings.Join(change.Roles, ", ") + " changed"
		res, err := runner.Run(ctx, request(cfg, reason))
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			// A half-saved file is common; wait for the next change
			logging.ErrorContext(ctx, "re-score failed", "reason", reason, "error", err)
			continue
		}
		onResult(res)
	}
	return nil
}

// serve runs the HTTP API. Configured input files are scored once at
// startup and, with --watch, again on every change.
func serve(ctx context.Context, cfg *config.Config, runner *analysis.Runner, publisher *pubsub.SSEPublisher) error {
	server := web.NewServer(runner, publisher)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Start(ctx, cfg.Port)
	})

	if cfg.A != "" && cfg.B != "" {
		g.Go(func() error {
			if _, err := runner.Run(ctx, request(cfg, "initial run")); err != nil && ctx.Err() == nil {
				logging.ErrorContext(ctx, "initial comparison failed", "error", err)
			}
			if !cfg.Watch {
				return nil
			}
			return watch(ctx, cfg, runner, func(analysis.Result) {})
		})
	}

	return g.Wait()
}

// sample prints one instance of the negative or positive null model
func sample(ctx context.Context, cfg *config.Config, runner *analysis.Runner, w io.Writer) error {
	cmp, _, err := runner.Load(ctx, request(cfg, "sample"))
	if err != nil {
		return err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	logging.InfoContext(ctx, "sampling instance", "model", cfg.Sample, "from", cfg.SampleFrom, "seed", seed)
	src := rand.NewPCG(seed, seed)

	direction := overlap.AToB
	if cfg.SampleFrom == "b" {
		direction = overlap.BToA
	}
	policy := maxent.Fixed(cfg.InstanceIterations)

	var pairs [][2]string
	switch cfg.Sample {
	case "negative":
		pairs, err = cmp.NegativeInstance(ctx, direction, policy, src)
	case "positive":
		pairs, err = cmp.PositiveInstance(ctx, direction, policy, src)
	default:
		return fmt.Errorf("unknown sample model %q", cfg.Sample)
	}
	if err != nil {
		return err
	}
	return edgelist.Write(w, pairs)
}
