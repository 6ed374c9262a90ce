package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/subcommands"

	"hyperiq/internal/coordinator"
	"hyperiq/internal/view"
)

type snapshotCmd struct{}

func (*snapshotCmd) Name() string     { return "snapshot" }
func (*snapshotCmd) Synopsis() string { return "refresh market data once and print it" }
func (*snapshotCmd) Usage() string {
	return `hyperiq [-config <file>] snapshot

  Fetches current prices and growth figures for every instrument of the
  catalog, prints the four tables and any per-instrument errors, then exits.
`
}

func (*snapshotCmd) SetFlags(*flag.FlagSet) {}

func (*snapshotCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp(*configPath, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := a.snapshot(ctx, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// snapshot runs one refresh and renders it to out.
func (a *app) snapshot(ctx context.Context, out io.Writer) error {
	coord, err := a.newCoordinator()
	if err != nil {
		return err
	}
	view.NewTerminal(out).Present(coord.Refresh(ctx))
	return nil
}

type watchCmd struct {
	interval time.Duration
}

func (*watchCmd) Name() string     { return "watch" }
func (*watchCmd) Synopsis() string { return "refresh market data on demand and on a schedule" }
func (*watchCmd) Usage() string {
	return `hyperiq [-config <file>] watch [-interval <duration>]

  Refreshes on start, every interval when one is set, and whenever the
  process receives SIGHUP. A refresh requested while another is running is
  ignored. Stops on SIGINT or SIGTERM.
`
}

func (w *watchCmd) SetFlags(f *flag.FlagSet) {
	f.DurationVar(&w.interval, "interval", 0, "Refresh period, overrides refresh_interval (0 keeps the configured value).")
}

func (w *watchCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp(*configPath, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	interval := a.cfg.RefreshInterval
	if w.interval > 0 {
		interval = w.interval
	}

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	if err := a.watch(ctx, os.Stdout, interval, hup); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// watch runs the refresh loop until ctx is done. Each value received on manual
// and each tick of interval, when positive, requests a refresh.
func (a *app) watch(ctx context.Context, out io.Writer, interval time.Duration, manual <-chan os.Signal) error {
	coord, err := a.newCoordinator()
	if err != nil {
		return err
	}

	triggers := make(chan struct{})
	go func() {
		var tick <-chan time.Time
		if interval > 0 {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			tick = ticker.C
		}
		for {
			select {
			case <-ctx.Done():
				return
			case <-tick:
			case <-manual:
				a.log.Info("manual refresh requested")
			}
			select {
			case triggers <- struct{}{}:
			case <-ctx.Done():
				return
			}
		}
	}()

	a.log.Info("watching market data", "interval", interval)
	err = coordinator.NewLoop(coord, view.NewTerminal(out), a.log).Run(ctx, triggers)
	if errors.Is(err, context.Canceled) {
		a.log.Info("shutting down")
		return nil
	}
	return err
}

type catalogCmd struct{}

func (*catalogCmd) Name() string     { return "catalog" }
func (*catalogCmd) Synopsis() string { return "list the configured instruments" }
func (*catalogCmd) Usage() string {
	return `hyperiq [-config <file>] catalog

  Prints every instrument in fetch order with its category and lookup symbol.
`
}

func (*catalogCmd) SetFlags(*flag.FlagSet) {}

func (*catalogCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp(*configPath, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Print(view.RenderCatalog(a.cfg.Instruments()))
	return subcommands.ExitSuccess
}
