package valuation

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/fairvalue/internal/contracts"
)

// Outcome is the per-ticker result of a batch: exactly one of Result or Err is set
type Outcome struct {
	Result *contracts.FairValueResult
	Err    error
}

// OK reports whether the ticker was valued
func (o Outcome) OK() bool {
	return o.Err == nil && o.Result != nil
}

// NormalizeTickers trims, upper-cases and de-duplicates, keeping first-seen order
func NormalizeTickers(tickers []string) []string {
	seen := make(map[string]bool, len(tickers))
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		symbol := NormalizeTicker(t)
		if symbol == "" || seen[symbol] {
			continue
		}
		seen[symbol] = true
		out = append(out, symbol)
	}
	return out
}

// EvaluateBatch values every ticker independently.
// ⭐ SSOT: 종목 간 실패 격리, 모든 task join 후 반환
// One task per distinct ticker, at most batch.workers in flight. A failure is
// recorded in that ticker's Outcome and never affects the others.
func (e *Evaluator) EvaluateBatch(ctx context.Context, tickers []string) map[string]Outcome {
	symbols := NormalizeTickers(tickers)
	outcomes := make(map[string]Outcome, len(symbols))
	if len(symbols) == 0 {
		return outcomes
	}

	start := time.Now()
	var mu sync.Mutex

	workers := e.assumptions.Batch.Workers
	if workers < 1 {
		workers = 1
	}

	var g errgroup.Group
	g.SetLimit(workers)

	for _, symbol := range symbols {
		symbol := symbol
		g.Go(func() error {
			res, err := e.Evaluate(ctx, symbol)

			mu.Lock()
			outcomes[symbol] = Outcome{Result: res, Err: err}
			mu.Unlock()

			// per-ticker errors stay in Outcome, the group never aborts
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, o := range outcomes {
		if !o.OK() {
			failed++
		}
	}

	e.logger.WithFields(map[string]interface{}{
		"tickers":  len(symbols),
		"failed":   failed,
		"duration": time.Since(start),
	}).Info("Batch valuation completed")

	return outcomes
}
