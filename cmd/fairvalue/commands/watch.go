package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/fairvalue/internal/scheduler"
	"github.com/wonny/fairvalue/internal/scheduler/jobs"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-value a watchlist on a cron schedule",
	Long: `Runs the watchlist valuation job on a six-field cron schedule
(seconds first) and logs each ticker's outcome.

Defaults come from WATCH_TICKERS and WATCH_SCHEDULE.

Example:
  go run ./cmd/fairvalue watch --tickers AAPL,MSFT
  go run ./cmd/fairvalue watch --schedule "0 30 9 * * 1-5"
  go run ./cmd/fairvalue watch --tickers AAPL --once`,
	RunE: runWatch,
}

var (
	watchTickers  []string
	watchSchedule string
	watchOnce     bool
)

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringSliceVar(&watchTickers, "tickers", nil, "comma-separated ticker symbols (default from WATCH_TICKERS)")
	watchCmd.Flags().StringVar(&watchSchedule, "schedule", "", "cron schedule with seconds (default from WATCH_SCHEDULE)")
	watchCmd.Flags().BoolVar(&watchOnce, "once", false, "run the job once and exit")
}

func runWatch(cmd *cobra.Command, args []string) error {
	d, err := initDeps(false)
	if err != nil {
		return err
	}
	defer d.Close()

	tickers := watchTickers
	if len(tickers) == 0 {
		tickers = d.cfg.Watch.Tickers
	}
	schedule := watchSchedule
	if schedule == "" {
		schedule = d.cfg.Watch.Schedule
	}
	if err := scheduler.ValidateSchedule(schedule); err != nil {
		return err
	}

	job, err := jobs.NewWatchlistJob(d.evaluator, tickers, schedule, d.log)
	if err != nil {
		return fmt.Errorf("watchlist: %w", err)
	}

	sched := scheduler.New(d.log)
	if err := sched.AddJob(job); err != nil {
		return err
	}

	if watchOnce {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		result, err := sched.RunJobNow(ctx, job.Name())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		last := job.Last()
		for _, ticker := range job.Tickers() {
			fmt.Fprintln(out, FormatOutcome(ticker, last[ticker]))
		}
		if result.Tickers != nil && result.Tickers.Failed > 0 {
			fmt.Fprintf(out, "%d of %d tickers failed\n", result.Tickers.Failed, result.Tickers.Total)
		}
		if !result.Success {
			return fmt.Errorf("watchlist run failed: %s", result.Error)
		}
		return nil
	}

	sched.Start()
	next, _ := sched.NextRun(job.Name())
	fmt.Printf("\n✅ Watching %d tickers (%s), next run %s\n", len(job.Tickers()), schedule, next.Format("2006-01-02 15:04:05"))
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)
	<-quit

	sched.Stop()
	return nil
}
