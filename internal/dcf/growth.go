package dcf

import (
	"fmt"
	"math"
	"sort"

	"github.com/wonny/fairvalue/internal/contracts"
)

// ProjectGrowth derives the growth profile from ascending series.
//
// incomes must hold at least two periods in strictly ascending fiscal years.
// cashFlows are joined to incomes by fiscal year; unmatched rows on either
// side are left out of the cash conversion ratio only.
func ProjectGrowth(incomes []contracts.AnnualIncomeStatement, cashFlows []contracts.AnnualCashFlow) (GrowthProfile, error) {
	if len(incomes) < 2 {
		return GrowthProfile{}, fmt.Errorf("%w: need at least 2 income periods, got %d", contracts.ErrProviderData, len(incomes))
	}
	for i := 1; i < len(incomes); i++ {
		if incomes[i].FiscalYear <= incomes[i-1].FiscalYear {
			return GrowthProfile{}, fmt.Errorf("%w: income periods not ascending at FY %d", contracts.ErrProviderData, incomes[i].FiscalYear)
		}
	}

	growth, err := averageRevenueGrowth(incomes)
	if err != nil {
		return GrowthProfile{}, err
	}

	margin, err := minimumNetMargin(incomes)
	if err != nil {
		return GrowthProfile{}, err
	}

	joined, err := JoinByFiscalYear(cashFlows, incomes)
	if err != nil {
		return GrowthProfile{}, err
	}

	ratio, err := minimumEquityToCashFlow(joined)
	if err != nil {
		return GrowthProfile{}, err
	}

	return GrowthProfile{
		AverageRevenueGrowthPct:    growth,
		MinimumNetMarginPct:        margin,
		MinimumEquityToCashFlowPct: ratio,
		Joined:                     joined,
	}, nil
}

// averageRevenueGrowth 전년 대비 매출 성장률(%) 평균
// A single growth figure is returned as-is.
func averageRevenueGrowth(incomes []contracts.AnnualIncomeStatement) (float64, error) {
	rates := make([]float64, 0, len(incomes)-1)
	for i := 1; i < len(incomes); i++ {
		prev := incomes[i-1].TotalRevenue
		if prev == 0 {
			return 0, fmt.Errorf("%w: zero revenue in FY %d", contracts.ErrArithmetic, incomes[i-1].FiscalYear)
		}
		rates = append(rates, float64(incomes[i].TotalRevenue-prev)/float64(prev)*100)
	}

	if len(rates) == 1 {
		return rates[0], nil
	}

	var sum float64
	for _, r := range rates {
		sum += r
	}
	return sum / float64(len(rates)), nil
}

// minimumNetMargin 최저 순이익률(%), 보수적 하한
func minimumNetMargin(incomes []contracts.AnnualIncomeStatement) (float64, error) {
	lowest := math.Inf(1)
	for _, inc := range incomes {
		if inc.TotalRevenue == 0 {
			return 0, fmt.Errorf("%w: zero revenue in FY %d", contracts.ErrArithmetic, inc.FiscalYear)
		}
		m := float64(inc.NetIncome) / float64(inc.TotalRevenue) * 100
		if m < lowest {
			lowest = m
		}
	}
	return lowest, nil
}

// minimumEquityToCashFlow 최저 FCF/순이익 비율(%)
func minimumEquityToCashFlow(joined contracts.ProjectionSeries) (float64, error) {
	lowest := math.Inf(1)
	for _, p := range joined {
		if p.NetIncome == 0 {
			return 0, fmt.Errorf("%w: zero net income in FY %d", contracts.ErrArithmetic, p.FiscalYear)
		}
		r := float64(p.FreeCashFlow()) / float64(p.NetIncome) * 100
		if r < lowest {
			lowest = r
		}
	}
	return lowest, nil
}

// JoinByFiscalYear pairs cash-flow and income rows that share a fiscal year.
// ⭐ SSOT: 현금흐름-손익 정렬은 인덱스가 아닌 fiscal_year 키로만 수행
// The joined series is ascending. It fails with ErrProviderData when nothing
// matches or when matched years are not consecutive.
func JoinByFiscalYear(cashFlows []contracts.AnnualCashFlow, incomes []contracts.AnnualIncomeStatement) (contracts.ProjectionSeries, error) {
	revenueByYear := make(map[uint16]int64, len(incomes))
	for _, inc := range incomes {
		revenueByYear[inc.FiscalYear] = inc.TotalRevenue
	}

	joined := make(contracts.ProjectionSeries, 0, len(cashFlows))
	seen := make(map[uint16]bool, len(cashFlows))
	for _, cf := range cashFlows {
		revenue, ok := revenueByYear[cf.FiscalYear]
		if !ok {
			continue
		}
		if seen[cf.FiscalYear] {
			return nil, fmt.Errorf("%w: duplicate cash flow for FY %d", contracts.ErrProviderData, cf.FiscalYear)
		}
		seen[cf.FiscalYear] = true

		joined = append(joined, contracts.FinancialPeriodRecord{
			FiscalYear:          cf.FiscalYear,
			TotalRevenue:        revenue,
			NetIncome:           cf.NetIncome,
			CapitalExpenditures: cf.CapitalExpenditures,
			CashFlow:            cf.CashFlow,
		})
	}

	if len(joined) == 0 {
		return nil, fmt.Errorf("%w: no cash flow period matches an income period", contracts.ErrProviderData)
	}

	sort.Slice(joined, func(i, j int) bool { return joined[i].FiscalYear < joined[j].FiscalYear })

	if !joined.IsConsecutive() {
		return nil, fmt.Errorf("%w: gap in matched fiscal years %s", contracts.ErrProviderData, yearsOf(joined))
	}

	return joined, nil
}

func sortIncomes(incomes []contracts.AnnualIncomeStatement) {
	sort.Slice(incomes, func(i, j int) bool { return incomes[i].FiscalYear < incomes[j].FiscalYear })
}

func yearsOf(s contracts.ProjectionSeries) string {
	years := make([]uint16, len(s))
	for i, p := range s {
		years[i] = p.FiscalYear
	}
	return fmt.Sprint(years)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
