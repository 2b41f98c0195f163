package jobs

import (
	"context"
	"fmt"
	"sync"

	"github.com/wonny/fairvalue/internal/contracts"
	"github.com/wonny/fairvalue/internal/scheduler"
	"github.com/wonny/fairvalue/internal/valuation"
	"github.com/wonny/fairvalue/pkg/logger"
)

// WatchlistJobName is the scheduler key of the watchlist job
const WatchlistJobName = "watchlist_valuation"

// BatchEvaluator values a set of tickers with per-ticker isolation
type BatchEvaluator interface {
	EvaluateBatch(ctx context.Context, tickers []string) map[string]valuation.Outcome
}

// WatchlistJob re-values a fixed list of tickers on a cron schedule
// ⭐ SSOT: 워치리스트 밸류에이션 스케줄은 이 Job에서만
type WatchlistJob struct {
	evaluator BatchEvaluator
	tickers   []string
	schedule  string
	logger    *logger.Logger

	mu     sync.RWMutex
	last   map[string]valuation.Outcome
	counts scheduler.TickerCounts
}

var _ scheduler.TickerReporter = (*WatchlistJob)(nil)

// NewWatchlistJob creates a watchlist job; tickers are normalized and de-duplicated
func NewWatchlistJob(ev BatchEvaluator, tickers []string, schedule string, log *logger.Logger) (*WatchlistJob, error) {
	symbols := valuation.NormalizeTickers(tickers)
	if len(symbols) == 0 {
		return nil, fmt.Errorf("watchlist has no tickers")
	}
	return &WatchlistJob{
		evaluator: ev,
		tickers:   symbols,
		schedule:  schedule,
		logger:    log.WithModule("watchlist"),
	}, nil
}

// Name returns the job name
func (j *WatchlistJob) Name() string {
	return WatchlistJobName
}

// Schedule returns the cron schedule
func (j *WatchlistJob) Schedule() string {
	return j.schedule
}

// Tickers returns the normalized watchlist
func (j *WatchlistJob) Tickers() []string {
	return append([]string(nil), j.tickers...)
}

// Run values every ticker and logs one line per outcome.
// A run fails only when no ticker could be valued.
func (j *WatchlistJob) Run(ctx context.Context) error {
	j.logger.WithField("tickers", len(j.tickers)).Info("Starting scheduled watchlist valuation")

	outcomes := j.evaluator.EvaluateBatch(ctx, j.tickers)

	counts := scheduler.TickerCounts{Total: len(j.tickers), FailedByKind: map[string]int{}}
	for _, ticker := range j.tickers {
		o, ok := outcomes[ticker]
		if !ok {
			o = valuation.Outcome{Err: fmt.Errorf("%w: no outcome for %s", contracts.ErrProviderData, ticker)}
			outcomes[ticker] = o
		}

		if o.OK() {
			j.logger.WithFields(map[string]interface{}{
				"ticker":     ticker,
				"fair_value": o.Result.FairValuePerShare,
			}).Info(o.Result.String())
			counts.Valued++
			continue
		}

		counts.Failed++
		counts.FailedByKind[contracts.KindOf(o.Err)]++
		j.logger.WithError(o.Err).WithFields(map[string]interface{}{
			"ticker": ticker,
			"kind":   contracts.KindOf(o.Err),
		}).Warn("Watchlist ticker failed")
	}

	j.mu.Lock()
	j.last = outcomes
	j.counts = counts
	j.mu.Unlock()

	j.logger.WithFields(map[string]interface{}{
		"total":  counts.Total,
		"failed": counts.Failed,
	}).Info("Watchlist valuation finished")

	if counts.Failed == counts.Total {
		return fmt.Errorf("all %d watchlist tickers failed", counts.Failed)
	}
	return nil
}

// Last returns the outcomes of the most recent run (nil before the first run)
func (j *WatchlistJob) Last() map[string]valuation.Outcome {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if j.last == nil {
		return nil
	}
	out := make(map[string]valuation.Outcome, len(j.last))
	for k, v := range j.last {
		out[k] = v
	}
	return out
}

// LastCounts returns the per-ticker tally of the most recent run
func (j *WatchlistJob) LastCounts() scheduler.TickerCounts {
	j.mu.RLock()
	defer j.mu.RUnlock()

	out := j.counts
	if j.counts.FailedByKind != nil {
		out.FailedByKind = make(map[string]int, len(j.counts.FailedByKind))
		for k, v := range j.counts.FailedByKind {
			out.FailedByKind[k] = v
		}
	}
	return out
}
