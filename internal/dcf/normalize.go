package dcf

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/wonny/fairvalue/internal/contracts"
)

const (
	fiscalPeriodPrefix = "FY "
	millions           = 1_000_000
)

// ParseFiscalYear extracts the year from a provider label like "FY 2024"
func ParseFiscalYear(label string) (uint16, error) {
	_, rest, ok := strings.Cut(label, fiscalPeriodPrefix)
	if !ok {
		return 0, fmt.Errorf("%w: fiscal period %q has no %q prefix", contracts.ErrParse, label, fiscalPeriodPrefix)
	}

	year, err := strconv.ParseUint(strings.TrimSpace(rest), 10, 16)
	if err != nil {
		return 0, fmt.Errorf("%w: fiscal period %q: %v", contracts.ErrParse, label, err)
	}
	return uint16(year), nil
}

// NormalizeEstimates converts consensus rows into absolute cash-flow and income series.
// Input is provider order (most recent first); output is ascending by fiscal year.
func NormalizeEstimates(estimates []contracts.ConsensusEstimate, sharesOutstanding int64) ([]contracts.AnnualCashFlow, []contracts.AnnualIncomeStatement, error) {
	if len(estimates) == 0 {
		return nil, nil, fmt.Errorf("%w: no consensus estimates", contracts.ErrProviderData)
	}
	if sharesOutstanding <= 0 {
		return nil, nil, fmt.Errorf("%w: shares outstanding must be > 0, got %d", contracts.ErrProviderData, sharesOutstanding)
	}

	cashFlows := make([]contracts.AnnualCashFlow, 0, len(estimates))
	incomes := make([]contracts.AnnualIncomeStatement, 0, len(estimates))

	// 역순으로 순회 → 오름차순
	for i := len(estimates) - 1; i >= 0; i-- {
		e := estimates[i]

		year, err := ParseFiscalYear(e.FiscalPeriod)
		if err != nil {
			return nil, nil, err
		}

		netIncome := scale(e.ConsensusNetIncome, millions)

		cashFlows = append(cashFlows, contracts.AnnualCashFlow{
			FiscalYear:          year,
			CashFlow:            scale(e.ConsensusCashFlowPerShare, float64(sharesOutstanding)),
			CapitalExpenditures: -scale(e.ConsensusCapexPerShare, millions),
			NetIncome:           netIncome,
		})
		incomes = append(incomes, contracts.AnnualIncomeStatement{
			FiscalYear:   year,
			TotalRevenue: scale(e.ConsensusRevenue, millions),
			NetIncome:    netIncome,
		})
	}

	return cashFlows, incomes, nil
}

// MergeIncome prepends reported history to the estimate series.
// Where both cover a fiscal year the estimate row wins. Output is ascending.
func MergeIncome(reported []contracts.ReportedIncome, estimated []contracts.AnnualIncomeStatement) []contracts.AnnualIncomeStatement {
	byYear := make(map[uint16]contracts.AnnualIncomeStatement, len(reported)+len(estimated))
	for _, r := range reported {
		if r.FiscalYear == 0 {
			continue
		}
		byYear[r.FiscalYear] = contracts.AnnualIncomeStatement{
			FiscalYear:   r.FiscalYear,
			TotalRevenue: int64(math.Round(r.TotalRevenue)),
			NetIncome:    int64(math.Round(r.NetIncome)),
		}
	}
	for _, e := range estimated {
		byYear[e.FiscalYear] = e
	}

	merged := make([]contracts.AnnualIncomeStatement, 0, len(byYear))
	for _, v := range byYear {
		merged = append(merged, v)
	}
	sortIncomes(merged)
	return merged
}

// scale multiplies and rounds to whole currency units
func scale(v, factor float64) int64 {
	return int64(math.Round(v * factor))
}
