package valuation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/fairvalue/internal/assumptions"
	"github.com/wonny/fairvalue/internal/contracts"
	"github.com/wonny/fairvalue/internal/dcf"
	"github.com/wonny/fairvalue/pkg/logger"
)

// Evaluator sequences gather → normalize → WACC → growth → discount for a ticker
// ⭐ SSOT: 종목 1개 밸류에이션 오케스트레이션
// It holds no per-run state and is safe for concurrent use.
type Evaluator struct {
	gateway     contracts.Gateway
	assumptions *assumptions.Config
	hash        string
	logger      *logger.Logger
}

// Report is the full breakdown of one valuation run
type Report struct {
	RunID           string                    `json:"run_id"`
	Ticker          string                    `json:"ticker"`
	AssumptionsHash string                    `json:"assumptions_hash"`
	Inputs          *Inputs                   `json:"inputs"`
	WACC            dcf.WACCResult            `json:"wacc"`
	Growth          dcf.GrowthProfile         `json:"growth"`
	DCF             *dcf.Result               `json:"dcf"`
	Result          contracts.FairValueResult `json:"result"`
	Duration        time.Duration             `json:"duration"`
}

// NewEvaluator creates an Evaluator; nil assumptions means assumptions.Default()
func NewEvaluator(gw contracts.Gateway, a *assumptions.Config, log *logger.Logger) *Evaluator {
	if a == nil {
		a = assumptions.Default()
	}
	return &Evaluator{
		gateway:     gw,
		assumptions: a,
		hash:        assumptions.ShortHash(a),
		logger:      log.WithModule("valuation"),
	}
}

// Assumptions returns the assumptions in use
func (e *Evaluator) Assumptions() *assumptions.Config {
	return e.assumptions
}

// Evaluate returns the fair value per share for ticker
func (e *Evaluator) Evaluate(ctx context.Context, ticker string) (*contracts.FairValueResult, error) {
	report, err := e.Analyze(ctx, ticker)
	if err != nil {
		return nil, err
	}
	return &report.Result, nil
}

// Analyze runs one valuation and returns every intermediate figure
func (e *Evaluator) Analyze(ctx context.Context, ticker string) (*Report, error) {
	symbol := NormalizeTicker(ticker)
	if symbol == "" {
		return nil, fmt.Errorf("%w: empty ticker symbol", contracts.ErrProviderData)
	}

	start := time.Now()
	runID := uuid.NewString()
	log := e.logger.WithFields(map[string]interface{}{
		"run_id": runID,
		"ticker": symbol,
	})
	log.Debug("Valuation started")

	in, err := Gather(ctx, e.gateway, Request{
		Ticker:           symbol,
		Period:           e.assumptions.Period(),
		IncomeLookback:   e.assumptions.Provider.IncomeLookback,
		EstimateLookback: e.assumptions.Provider.EstimateLookback,
	})
	if err != nil {
		log.WithError(err).WithField("kind", contracts.KindOf(err)).Warn("Gather failed")
		return nil, err
	}

	report, err := e.compute(in)
	if err != nil {
		log.WithError(err).WithField("kind", contracts.KindOf(err)).Warn("Valuation failed")
		return nil, err
	}

	report.RunID = runID
	report.Duration = time.Since(start)

	log.WithFields(map[string]interface{}{
		"fair_value":          report.Result.FairValuePerShare,
		"required_return_pct": report.WACC.RequiredReturnPct,
		"avg_growth_pct":      report.Growth.AverageRevenueGrowthPct,
		"assumptions":         e.hash,
		"duration":            report.Duration,
	}).Info("Valuation completed")

	return report, nil
}

// compute is the synchronous part of a valuation (no I/O)
func (e *Evaluator) compute(in *Inputs) (*Report, error) {
	if err := in.Stats.Validate(); err != nil {
		return nil, err
	}
	shares := in.Stats.SharesOutstanding

	cashFlows, estimatedIncome, err := dcf.NormalizeEstimates(in.Estimates, shares)
	if err != nil {
		return nil, fmt.Errorf("normalize estimates: %w", err)
	}

	latest, err := in.LatestIncome()
	if err != nil {
		return nil, err
	}

	wacc, err := dcf.CalculateWACC(
		contracts.NewCapitalStructure(in.BalanceSheet, latest),
		in.Stats,
		contracts.MacroInputs{TenYearTreasuryRate: in.TreasuryRate},
		e.assumptions.Market.PresumedGrowthPct,
	)
	if err != nil {
		return nil, fmt.Errorf("wacc: %w", err)
	}

	growth, err := dcf.ProjectGrowth(dcf.MergeIncome(in.Income, estimatedIncome), cashFlows)
	if err != nil {
		return nil, fmt.Errorf("growth: %w", err)
	}

	result, err := dcf.Discount(growth.Joined, growth, wacc.RequiredReturnPct, e.assumptions.DCF(), shares)
	if err != nil {
		return nil, fmt.Errorf("discount: %w", err)
	}

	return &Report{
		Ticker:          in.Ticker,
		AssumptionsHash: e.hash,
		Inputs:          in,
		WACC:            wacc,
		Growth:          growth,
		DCF:             result,
		Result: contracts.FairValueResult{
			Ticker:            in.Ticker,
			FairValuePerShare: result.FairValuePerShare,
		},
	}, nil
}

// NormalizeTicker upper-cases and trims a ticker symbol
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}
