package valuation

import (
	"context"
	"fmt"

	"github.com/wonny/fairvalue/internal/contracts"
)

// gatewayCalls is the size of the fan-out for one ticker
const gatewayCalls = 5

// Request describes what to gather for one ticker
type Request struct {
	Ticker           string
	Period           contracts.Period
	IncomeLookback   int
	EstimateLookback int
}

// Inputs are the raw provider facts one valuation needs
// Either all five are present or Gather returned an error.
type Inputs struct {
	Ticker       string                        `json:"ticker"`
	Income       []contracts.ReportedIncome    `json:"income"`
	BalanceSheet contracts.BalanceSheet        `json:"balance_sheet"`
	Stats        contracts.CompanyFundamentals `json:"stats"`
	TreasuryRate float64                       `json:"treasury_rate"`
	Estimates    []contracts.ConsensusEstimate `json:"estimates"`
}

// LatestIncome returns the most recent reported income row
func (in *Inputs) LatestIncome() (contracts.ReportedIncome, error) {
	if len(in.Income) == 0 {
		return contracts.ReportedIncome{}, fmt.Errorf("%w: no reported income for %s", contracts.ErrProviderData, in.Ticker)
	}
	latest := in.Income[0]
	for _, row := range in.Income[1:] {
		if row.FiscalYear > latest.FiscalYear {
			latest = row
		}
	}
	return latest, nil
}

// fetchResult carries one gateway response back to the join point
type fetchResult struct {
	name  string
	apply func(*Inputs)
	err   error
}

// Gather issues the five gateway calls concurrently and joins them.
// ⭐ SSOT: fan-out/fan-in, 부분 결과 없음
// The first error is returned as soon as it arrives. Sibling calls are not
// cancelled; they finish into the buffered channel and are dropped.
func Gather(ctx context.Context, gw contracts.Gateway, req Request) (*Inputs, error) {
	results := make(chan fetchResult, gatewayCalls)

	send := func(name string, fn func() (func(*Inputs), error)) {
		go func() {
			apply, err := fn()
			if err != nil {
				results <- fetchResult{name: name, err: fmt.Errorf("%s: %w", name, err)}
				return
			}
			results <- fetchResult{name: name, apply: apply}
		}()
	}

	send("income statement", func() (func(*Inputs), error) {
		rows, err := gw.FetchIncomeStatement(ctx, req.Ticker, req.Period, req.IncomeLookback)
		return func(in *Inputs) { in.Income = rows }, err
	})
	send("balance sheet", func() (func(*Inputs), error) {
		bs, err := gw.FetchBalanceSheet(ctx, req.Ticker, req.Period)
		return func(in *Inputs) { in.BalanceSheet = bs }, err
	})
	send("company stats", func() (func(*Inputs), error) {
		stats, err := gw.FetchCompanyStats(ctx, req.Ticker)
		return func(in *Inputs) { in.Stats = stats }, err
	})
	send("treasury rate", func() (func(*Inputs), error) {
		rate, err := gw.FetchTreasuryRate(ctx)
		return func(in *Inputs) { in.TreasuryRate = rate }, err
	})
	send("estimates", func() (func(*Inputs), error) {
		rows, err := gw.FetchEstimates(ctx, req.Ticker, req.Period, req.EstimateLookback)
		return func(in *Inputs) { in.Estimates = rows }, err
	})

	in := &Inputs{Ticker: req.Ticker}
	for i := 0; i < gatewayCalls; i++ {
		r := <-results
		if r.err != nil {
			return nil, r.err
		}
		r.apply(in)
	}
	return in, nil
}
