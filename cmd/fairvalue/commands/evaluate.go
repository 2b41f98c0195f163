package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/wonny/fairvalue/internal/valuation"
)

// evaluateCmd represents the evaluate command
var evaluateCmd = &cobra.Command{
	Use:   "evaluate [TICKER...]",
	Short: "Estimate fair value per share",
	Long: `Runs the valuation for each ticker and prints one line per ticker.

A failing ticker prints a failure line and the batch continues.
The exit code is non-zero if any ticker failed.

Example:
  go run ./cmd/fairvalue evaluate --tickers AAPL,MSFT
  go run ./cmd/fairvalue evaluate AAPL --verbose`,
	RunE: runEvaluate,
}

var (
	evaluateTickers []string
)

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().StringSliceVar(&evaluateTickers, "tickers", nil, "comma-separated ticker symbols")
}

// analyzer is the part of the evaluator the evaluate command needs
type analyzer interface {
	EvaluateBatch(ctx context.Context, tickers []string) map[string]valuation.Outcome
	Analyze(ctx context.Context, ticker string) (*valuation.Report, error)
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	tickers := valuation.NormalizeTickers(append(append([]string{}, evaluateTickers...), args...))
	if len(tickers) == 0 {
		return fmt.Errorf("no tickers given (use --tickers or positional arguments)")
	}

	d, err := initDeps(true)
	if err != nil {
		return err
	}
	defer d.Close()

	return evaluateTickersTo(cmd.Context(), cmd.OutOrStdout(), d.evaluator, tickers, verbose)
}

// evaluateTickersTo prints one line per ticker in the given order.
// With detail, every ticker is analyzed in turn and its breakdown printed.
func evaluateTickersTo(ctx context.Context, w io.Writer, ev analyzer, tickers []string, detail bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	failed := 0
	if detail {
		for _, ticker := range tickers {
			report, err := ev.Analyze(ctx, ticker)
			if err != nil {
				failed++
				fmt.Fprintln(w, FormatFailure(ticker, err))
				continue
			}
			PrintReport(w, report)
		}
	} else {
		outcomes := ev.EvaluateBatch(ctx, tickers)
		for _, ticker := range tickers {
			o := outcomes[ticker]
			if !o.OK() {
				failed++
			}
			fmt.Fprintln(w, FormatOutcome(ticker, o))
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d tickers failed", failed, len(tickers))
	}
	return nil
}
