package dcf

import "github.com/wonny/fairvalue/internal/contracts"

// =============================================================================
// Unit Convention
// =============================================================================

// ⭐ SSOT: 비율 단위 규약
// - Rates crossing package boundaries are whole percents (8 = 8%).
// - Tax rate, cost of debt, capital weights are plain ratios (0.21 = 21%).
// - Division by 100 happens only inside the discounting step.

// DefaultForecastYears is the explicit forecast horizon used when none is configured
const DefaultForecastYears = 2

// DefaultPerpetualGrowthPct is the terminal growth rate in percent
const DefaultPerpetualGrowthPct = 2.5

// =============================================================================
// WACC
// =============================================================================

// WACCResult WACC 계산 결과 + 중간값 (로그/--verbose 출력용)
type WACCResult struct {
	EffectiveTaxRate  float64 `json:"effective_tax_rate"` // ratio
	TotalDebt         float64 `json:"total_debt"`
	CostOfDebt        float64 `json:"cost_of_debt"`  // ratio
	WeightDebt        float64 `json:"weight_debt"`   // ratio
	WeightEquity      float64 `json:"weight_equity"` // ratio
	CostOfEquity      float64 `json:"cost_of_equity_pct"`
	RequiredReturnPct float64 `json:"required_return_pct"`
}

// =============================================================================
// Growth
// =============================================================================

// GrowthProfile 과거+추정치에서 도출한 성장/마진/현금전환 지표
type GrowthProfile struct {
	AverageRevenueGrowthPct    float64 `json:"average_revenue_growth_pct"`
	MinimumNetMarginPct        float64 `json:"minimum_net_margin_pct"`
	MinimumEquityToCashFlowPct float64 `json:"minimum_equity_to_cash_flow_pct"`

	// Joined holds periods where cash flow and income share a fiscal year
	Joined contracts.ProjectionSeries `json:"joined"`
}

// =============================================================================
// Discounting
// =============================================================================

// Params 할인 단계 파라미터
type Params struct {
	ForecastYears      int     `json:"forecast_years"`
	PerpetualGrowthPct float64 `json:"perpetual_growth_pct"`
}

// DefaultParams returns the reference horizon and terminal growth
func DefaultParams() Params {
	return Params{
		ForecastYears:      DefaultForecastYears,
		PerpetualGrowthPct: DefaultPerpetualGrowthPct,
	}
}

// DiscountedPeriod is one explicit forecast period and its present value
type DiscountedPeriod struct {
	FiscalYear     uint16  `json:"fiscal_year"`
	FreeCashFlow   int64   `json:"free_cash_flow"`
	DiscountFactor float64 `json:"discount_factor"`
	PresentValue   float64 `json:"present_value"`
}

// Result DCF 최종 결과
type Result struct {
	Forecast   contracts.ProjectionSeries `json:"forecast"`
	Series     contracts.ProjectionSeries `json:"series"` // joined history + forecast
	Discounted []DiscountedPeriod         `json:"discounted"`

	TerminalValue           float64 `json:"terminal_value"`
	DiscountedTerminalValue float64 `json:"discounted_terminal_value"`
	AggregatePresentValue   float64 `json:"aggregate_present_value"`

	SharesOutstanding int64 `json:"shares_outstanding"`
	FairValuePerShare int64 `json:"fair_value_per_share"`
}
