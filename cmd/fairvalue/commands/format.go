package commands

import (
	"fmt"
	"io"

	"github.com/wonny/fairvalue/internal/contracts"
	"github.com/wonny/fairvalue/internal/valuation"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

const (
	doubleSeparator = "═══════════════════════════════════════════════════════════"
	singleSeparator = "───────────────────────────────────────────────────────────"
)

// FormatOutcome renders the one-line result for a ticker
func FormatOutcome(ticker string, o valuation.Outcome) string {
	if o.OK() {
		return o.Result.String()
	}
	return FormatFailure(ticker, o.Err)
}

// FormatFailure renders the failure line for a ticker
func FormatFailure(ticker string, err error) string {
	if err == nil {
		err = fmt.Errorf("%w: no result", contracts.ErrProviderData)
	}
	return fmt.Sprintf("Failed to value %s: [%s] %v", ticker, contracts.KindOf(err), err)
}

// PrintReport prints the full valuation breakdown (--verbose)
func PrintReport(w io.Writer, r *valuation.Report) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, doubleSeparator)
	fmt.Fprintf(w, "  %s\n", r.Ticker)
	fmt.Fprintln(w, singleSeparator)
	fmt.Fprintf(w, "  Run ID      : %s\n", r.RunID)
	fmt.Fprintf(w, "  Assumptions : %s\n", r.AssumptionsHash)
	fmt.Fprintf(w, "  Duration    : %s\n", r.Duration)

	if r.Inputs != nil {
		fmt.Fprintln(w, singleSeparator)
		fmt.Fprintf(w, "  Shares out  : %d\n", r.Inputs.Stats.SharesOutstanding)
		fmt.Fprintf(w, "  Market cap  : %.0f\n", r.Inputs.Stats.MarketCap)
		fmt.Fprintf(w, "  Beta        : %.3f\n", r.Inputs.Stats.Beta)
		fmt.Fprintf(w, "  10Y rate    : %.3f%%\n", r.Inputs.TreasuryRate)
	}

	fmt.Fprintln(w, singleSeparator)
	fmt.Fprintf(w, "  Tax rate    : %.4f\n", r.WACC.EffectiveTaxRate)
	fmt.Fprintf(w, "  Cost/debt   : %.4f\n", r.WACC.CostOfDebt)
	fmt.Fprintf(w, "  Weight D/E  : %.4f / %.4f\n", r.WACC.WeightDebt, r.WACC.WeightEquity)
	fmt.Fprintf(w, "  Cost/equity : %.4f%%\n", r.WACC.CostOfEquity)
	fmt.Fprintf(w, "  Required    : %.4f%%\n", r.WACC.RequiredReturnPct)

	fmt.Fprintln(w, singleSeparator)
	fmt.Fprintf(w, "  Rev growth  : %.4f%%\n", r.Growth.AverageRevenueGrowthPct)
	fmt.Fprintf(w, "  Net margin  : %.4f%%\n", r.Growth.MinimumNetMarginPct)
	fmt.Fprintf(w, "  FCF/NI      : %.4f%%\n", r.Growth.MinimumEquityToCashFlowPct)

	if r.DCF != nil {
		fmt.Fprintln(w, singleSeparator)
		fmt.Fprintf(w, "  %-6s %18s %10s %20s\n", "FY", "FCF", "Factor", "PV")
		for _, p := range r.DCF.Discounted {
			fmt.Fprintf(w, "  %-6d %18d %10.6f %20.2f\n", p.FiscalYear, p.FreeCashFlow, p.DiscountFactor, p.PresentValue)
		}
		fmt.Fprintf(w, "  Terminal    : %.2f (PV %.2f)\n", r.DCF.TerminalValue, r.DCF.DiscountedTerminalValue)
		fmt.Fprintf(w, "  Aggregate   : %.2f\n", r.DCF.AggregatePresentValue)
	}

	fmt.Fprintln(w, singleSeparator)
	fmt.Fprintf(w, "  %s\n", r.Result.String())
	fmt.Fprintln(w, doubleSeparator)
}
