// Command jobs runs reconciliation passes and batch correction jobs once,
// outside the HTTP server.
//
// Usage:
//
//	jobs [-config path] <command> [flags]
//
// Commands are process-pending, update-costs, rebuild-costs -start YYYY-MM-DD,
// coverage, and every batch job by name (cost-backfill, shipping-backfill,
// repair-incomplete, recompute-costs, recompute-shipping, import-orders,
// reset) with an optional -from YYYY-MM-DD.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"meli-reconciler/config"
	"meli-reconciler/internal/app"
	"meli-reconciler/internal/core/domain"
	"meli-reconciler/internal/core/ports"
	"meli-reconciler/pkg/logger"
)

const (
	cmdProcessPending = "process-pending"
	cmdUpdateCosts    = "update-costs"
	cmdRebuildCosts   = "rebuild-costs"
	cmdCoverage       = "coverage"
)

var errUsage = errors.New("usage")

// services is what the commands need from the application.
type services struct {
	reconciler ports.ReconcilerService
	costs      ports.CostService
	jobs       ports.JobService
}

func main() {
	fs := flag.NewFlagSet("jobs", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	fs.Usage = func() { usage(fs.Output()) }
	_ = fs.Parse(os.Args[1:])

	if fs.NArg() == 0 {
		usage(os.Stderr)
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize application")
	}

	svc := services{reconciler: a.Reconciler, costs: a.Costs, jobs: a.Jobs}
	start := time.Now()
	err = run(ctx, svc, fs.Args(), os.Stdout)
	a.Close()

	switch {
	case errors.Is(err, errUsage):
		usage(os.Stderr)
		os.Exit(2)
	case err != nil:
		log.Error().Err(err).Str("command", fs.Arg(0)).Dur("elapsed", time.Since(start)).Msg("Command failed")
		os.Exit(1)
	}
	log.Info().Str("command", fs.Arg(0)).Dur("elapsed", time.Since(start)).Msg("Command finished")
}

// run executes one command and writes its result as JSON to out.
func run(ctx context.Context, svc services, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	name, rest := args[0], args[1:]

	var result any
	var err error

	switch name {
	case cmdProcessPending:
		var res *ports.ReconcileResult
		if res, err = svc.reconciler.ProcessPending(ctx); res != nil {
			result = res
		}

	case cmdUpdateCosts:
		var changed int
		if changed, err = svc.costs.RefreshCurrent(ctx); err == nil {
			result = map[string]int{"changed": changed}
		}

	case cmdRebuildCosts:
		fs := flag.NewFlagSet(name, flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		startDate := fs.String("start", "", "first snapshot date, YYYY-MM-DD")
		if err := fs.Parse(rest); err != nil {
			return fmt.Errorf("%w: %v", errUsage, err)
		}
		start, perr := parseDay(*startDate)
		if perr != nil || start == nil {
			return fmt.Errorf("%w: rebuild-costs needs -start YYYY-MM-DD", errUsage)
		}
		var res *ports.RebuildResult
		if res, err = svc.costs.RebuildAll(ctx, *start); res != nil {
			result = res
		}

	case cmdCoverage:
		var cov *domain.CostCoverage
		if cov, err = svc.jobs.CostCoverage(ctx); cov != nil {
			result = cov
		}

	default:
		job, ok := domain.ParseJobName(name)
		if !ok {
			return fmt.Errorf("%w: unknown command %q", errUsage, name)
		}
		fs := flag.NewFlagSet(name, flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		fromDate := fs.String("from", "", "override the job's default window, YYYY-MM-DD")
		if err := fs.Parse(rest); err != nil {
			return fmt.Errorf("%w: %v", errUsage, err)
		}
		from, perr := parseDay(*fromDate)
		if perr != nil {
			return fmt.Errorf("%w: %v", errUsage, perr)
		}

		var report *domain.JobReport
		report, err = svc.jobs.Run(ctx, job, ports.JobParams{From: from})
		if report != nil {
			result = report
		}
	}

	if result != nil {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(result); encErr != nil && err == nil {
			err = encErr
		}
	}
	return err
}

func parseDay(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return &t, nil
}

func usage(w io.Writer) {
	names := make([]string, 0, len(domain.AllJobs))
	for _, j := range domain.AllJobs {
		names = append(names, string(j))
	}
	fmt.Fprintf(w, "usage: jobs [-config path] <command> [flags]\n\n")
	fmt.Fprintf(w, "commands:\n")
	fmt.Fprintf(w, "  %s\n  %s\n  %s -start YYYY-MM-DD\n  %s\n", cmdProcessPending, cmdUpdateCosts, cmdRebuildCosts, cmdCoverage)
	fmt.Fprintf(w, "  %s [-from YYYY-MM-DD]\n", strings.Join(names, " | "))
}
