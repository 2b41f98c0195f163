package dcf

import (
	"fmt"

	"github.com/wonny/fairvalue/internal/contracts"
)

// CalculateWACC derives the required rate of return (percent)
//
//	effective_tax_rate = income_tax / pretax_income
//	total_debt         = long_term_debt + total_current_liabilities
//	cost_of_debt       = interest_income / total_debt
//	weight_debt        = total_debt / (total_debt + market_cap)
//	weight_equity      = 1 - weight_debt
//	cost_of_equity     = rf + beta * (market_growth - rf)          (CAPM, percent)
//	required_return    = wd * (1 - t * kd) + we * ke
//
// treasury rate and presumedMarketGrowthPct are percents; the result is a percent.
func CalculateWACC(cs contracts.CapitalStructureInputs, f contracts.CompanyFundamentals, m contracts.MacroInputs, presumedMarketGrowthPct float64) (WACCResult, error) {
	if cs.PretaxIncome == 0 {
		return WACCResult{}, fmt.Errorf("%w: pretax income is zero, effective tax rate undefined", contracts.ErrArithmetic)
	}

	totalDebt := cs.LongTermDebt + cs.TotalCurrentLiabilities
	if totalDebt == 0 {
		return WACCResult{}, fmt.Errorf("%w: total debt is zero, cost of debt undefined", contracts.ErrArithmetic)
	}

	capital := totalDebt + f.MarketCap
	if capital == 0 {
		return WACCResult{}, fmt.Errorf("%w: total debt + market cap is zero", contracts.ErrArithmetic)
	}

	taxRate := cs.IncomeTax / cs.PretaxIncome
	costOfDebt := cs.InterestIncome / totalDebt

	weightDebt := totalDebt / capital
	weightEquity := 1 - weightDebt

	costOfEquity := CostOfEquity(m.TenYearTreasuryRate, f.Beta, presumedMarketGrowthPct)

	required := weightDebt*(1-taxRate*costOfDebt) + weightEquity*costOfEquity
	if !isFinite(required) {
		return WACCResult{}, fmt.Errorf("%w: required rate of return is not finite", contracts.ErrArithmetic)
	}

	return WACCResult{
		EffectiveTaxRate:  taxRate,
		TotalDebt:         totalDebt,
		CostOfDebt:        costOfDebt,
		WeightDebt:        weightDebt,
		WeightEquity:      weightEquity,
		CostOfEquity:      costOfEquity,
		RequiredReturnPct: required,
	}, nil
}

// CostOfEquity CAPM: rf + beta * (market - rf)
func CostOfEquity(riskFreePct, beta, marketGrowthPct float64) float64 {
	return riskFreePct + beta*(marketGrowthPct-riskFreePct)
}
