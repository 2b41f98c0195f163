package dcf

import (
	"fmt"
	"math"

	"github.com/wonny/fairvalue/internal/contracts"
)

// Forecast projects years periods after last.
// Each stored value is truncated to whole currency units; projected records
// carry free cash flow in CashFlow with zero capital expenditures.
// A fiscal year sequence that would run past the uint16 range is ErrProviderData.
func Forecast(last contracts.FinancialPeriodRecord, profile GrowthProfile, years int) (contracts.ProjectionSeries, error) {
	if int(last.FiscalYear)+years > math.MaxUint16 {
		return nil, fmt.Errorf("%w: fiscal year %d leaves no room for a %d year forecast", contracts.ErrProviderData, last.FiscalYear, years)
	}

	out := make(contracts.ProjectionSeries, 0, years)
	prevRevenue := last.TotalRevenue
	prevYear := last.FiscalYear

	for k := 0; k < years; k++ {
		revenue := int64(float64(prevRevenue) * (1 + profile.AverageRevenueGrowthPct/100))
		netIncome := int64(float64(revenue) * (profile.MinimumNetMarginPct / 100))
		fcf := int64(float64(netIncome) * (profile.MinimumEquityToCashFlowPct / 100))

		rec := contracts.FinancialPeriodRecord{
			FiscalYear:   prevYear + 1,
			TotalRevenue: revenue,
			NetIncome:    netIncome,
			CashFlow:     fcf,
		}
		out = append(out, rec)

		prevRevenue = revenue
		prevYear = rec.FiscalYear
	}
	return out, nil
}

// TerminalValue 영구성장 모형 터미널 가치 (할인 전)
// r and g are ratios (0.08, 0.025).
func TerminalValue(lastFreeCashFlow float64, r, g float64) (float64, error) {
	spread := r - g
	if spread <= 0 {
		return 0, fmt.Errorf("%w: discount rate %.4f must exceed perpetual growth %.4f", contracts.ErrArithmetic, r, g)
	}
	return lastFreeCashFlow * (1 + g) / spread, nil
}

// DiscountFactor returns (1 + r)^-k
func DiscountFactor(r float64, k int) float64 {
	return math.Pow(1+r, -float64(k))
}

// Discount builds the explicit forecast from the most recent joined period and
// discounts it plus a terminal value to a per-share fair value.
func Discount(joined contracts.ProjectionSeries, profile GrowthProfile, requiredReturnPct float64, p Params, sharesOutstanding int64) (*Result, error) {
	if sharesOutstanding <= 0 {
		return nil, fmt.Errorf("%w: shares outstanding must be > 0, got %d", contracts.ErrProviderData, sharesOutstanding)
	}
	if p.ForecastYears < 1 {
		return nil, fmt.Errorf("%w: forecast horizon must be >= 1, got %d", contracts.ErrArithmetic, p.ForecastYears)
	}
	last, ok := joined.Last()
	if !ok {
		return nil, fmt.Errorf("%w: no base period to forecast from", contracts.ErrProviderData)
	}

	r := requiredReturnPct / 100
	g := p.PerpetualGrowthPct / 100
	if !isFinite(r) || 1+r <= 0 {
		return nil, fmt.Errorf("%w: invalid discount rate %.4f", contracts.ErrArithmetic, r)
	}

	forecast, err := Forecast(last, profile, p.ForecastYears)
	if err != nil {
		return nil, err
	}

	discounted := make([]DiscountedPeriod, 0, len(forecast))
	var aggregate float64
	for i, rec := range forecast {
		factor := DiscountFactor(r, i+1)
		pv := float64(rec.CashFlow) * factor
		discounted = append(discounted, DiscountedPeriod{
			FiscalYear:     rec.FiscalYear,
			FreeCashFlow:   rec.CashFlow,
			DiscountFactor: factor,
			PresentValue:   pv,
		})
		aggregate += pv
	}

	lastForecast, _ := forecast.Last()
	terminal, err := TerminalValue(float64(lastForecast.CashFlow), r, g)
	if err != nil {
		return nil, err
	}
	discountedTerminal := terminal * DiscountFactor(r, p.ForecastYears)
	aggregate += discountedTerminal

	if !isFinite(aggregate) {
		return nil, fmt.Errorf("%w: aggregate present value is not finite", contracts.ErrArithmetic)
	}

	series := make(contracts.ProjectionSeries, 0, len(joined)+len(forecast))
	series = append(series, joined...)
	series = append(series, forecast...)

	return &Result{
		Forecast:                forecast,
		Series:                  series,
		Discounted:              discounted,
		TerminalValue:           terminal,
		DiscountedTerminalValue: discountedTerminal,
		AggregatePresentValue:   aggregate,
		SharesOutstanding:       sharesOutstanding,
		FairValuePerShare:       int64(math.Trunc(aggregate / float64(sharesOutstanding))),
	}, nil
}
