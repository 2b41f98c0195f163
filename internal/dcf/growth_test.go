package dcf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fairvalue/internal/contracts"
)

func incomes(years []uint16, revenue, netIncome []int64) []contracts.AnnualIncomeStatement {
	out := make([]contracts.AnnualIncomeStatement, len(years))
	for i := range years {
		out[i] = contracts.AnnualIncomeStatement{FiscalYear: years[i], TotalRevenue: revenue[i], NetIncome: netIncome[i]}
	}
	return out
}

func cashFlow(year uint16, cf, capex, netIncome int64) contracts.AnnualCashFlow {
	return contracts.AnnualCashFlow{FiscalYear: year, CashFlow: cf, CapitalExpenditures: capex, NetIncome: netIncome}
}

func TestProjectGrowth_AverageRevenueGrowth(t *testing.T) {
	inc := incomes([]uint16{2022, 2023, 2024}, []int64{100, 110, 121}, []int64{10, 11, 12})
	cfs := []contracts.AnnualCashFlow{cashFlow(2024, 10, -2, 12)}

	got, err := ProjectGrowth(inc, cfs)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, got.AverageRevenueGrowthPct, 1e-9)
}

func TestProjectGrowth_SingleGrowthFigureUsedDirectly(t *testing.T) {
	inc := incomes([]uint16{2023, 2024}, []int64{100, 120}, []int64{10, 12})
	cfs := []contracts.AnnualCashFlow{cashFlow(2024, 10, 0, 12)}

	got, err := ProjectGrowth(inc, cfs)
	require.NoError(t, err)
	assert.InDelta(t, 20.0, got.AverageRevenueGrowthPct, 1e-9)
}

func TestProjectGrowth_MinimumNetMargin(t *testing.T) {
	// margins: 10%, 20%, 12/121 ≈ 9.917%
	inc := incomes([]uint16{2022, 2023, 2024}, []int64{100, 110, 121}, []int64{10, 22, 12})
	cfs := []contracts.AnnualCashFlow{cashFlow(2024, 10, 0, 12)}

	got, err := ProjectGrowth(inc, cfs)
	require.NoError(t, err)
	assert.InDelta(t, 12.0/121.0*100, got.MinimumNetMarginPct, 1e-9)
}

func TestProjectGrowth_MinimumEquityToCashFlow(t *testing.T) {
	inc := incomes([]uint16{2023, 2024, 2025}, []int64{100, 110, 121}, []int64{10, 20, 40})
	cfs := []contracts.AnnualCashFlow{
		cashFlow(2024, 30, -10, 20), // 100%
		cashFlow(2025, 50, -20, 40), // 75%
	}

	got, err := ProjectGrowth(inc, cfs)
	require.NoError(t, err)
	assert.InDelta(t, 75.0, got.MinimumEquityToCashFlowPct, 1e-9)

	require.Len(t, got.Joined, 2)
	assert.Equal(t, uint16(2024), got.Joined[0].FiscalYear)
	assert.Equal(t, int64(110), got.Joined[0].TotalRevenue)
	assert.Equal(t, int64(30), got.Joined[1].FreeCashFlow())
}

func TestProjectGrowth_UnmatchedRecordsExcludedFromRatio(t *testing.T) {
	// 2021 cash flow has no income row; 2023 income has no cash flow row
	inc := incomes([]uint16{2023, 2024, 2025}, []int64{100, 110, 121}, []int64{10, 20, 40})
	cfs := []contracts.AnnualCashFlow{
		cashFlow(2021, 1, -100, 1), // would be -9900% if joined
		cashFlow(2024, 30, -10, 20),
		cashFlow(2025, 50, -10, 40),
	}

	got, err := ProjectGrowth(inc, cfs)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, got.MinimumEquityToCashFlowPct, 1e-9)
	assert.Len(t, got.Joined, 2)

	// unmatched income still drives growth
	assert.InDelta(t, 10.0, got.AverageRevenueGrowthPct, 1e-9)
}

func TestProjectGrowth_ProviderDataErrors(t *testing.T) {
	tests := []struct {
		name string
		inc  []contracts.AnnualIncomeStatement
		cfs  []contracts.AnnualCashFlow
	}{
		{
			name: "single income period",
			inc:  incomes([]uint16{2024}, []int64{100}, []int64{10}),
			cfs:  []contracts.AnnualCashFlow{cashFlow(2024, 1, 0, 10)},
		},
		{
			name: "not ascending",
			inc:  incomes([]uint16{2024, 2023}, []int64{100, 110}, []int64{10, 11}),
			cfs:  []contracts.AnnualCashFlow{cashFlow(2024, 1, 0, 10)},
		},
		{
			name: "duplicate income year",
			inc:  incomes([]uint16{2024, 2024}, []int64{100, 110}, []int64{10, 11}),
			cfs:  []contracts.AnnualCashFlow{cashFlow(2024, 1, 0, 10)},
		},
		{
			name: "empty join",
			inc:  incomes([]uint16{2023, 2024}, []int64{100, 110}, []int64{10, 11}),
			cfs:  []contracts.AnnualCashFlow{cashFlow(2020, 1, 0, 10)},
		},
		{
			name: "gap in joined years",
			inc:  incomes([]uint16{2022, 2023, 2024}, []int64{100, 110, 121}, []int64{10, 11, 12}),
			cfs:  []contracts.AnnualCashFlow{cashFlow(2022, 1, 0, 10), cashFlow(2024, 1, 0, 12)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ProjectGrowth(tt.inc, tt.cfs)
			assert.ErrorIs(t, err, contracts.ErrProviderData)
		})
	}
}

func TestProjectGrowth_ArithmeticErrors(t *testing.T) {
	t.Run("zero revenue", func(t *testing.T) {
		inc := incomes([]uint16{2023, 2024}, []int64{0, 110}, []int64{0, 11})
		_, err := ProjectGrowth(inc, []contracts.AnnualCashFlow{cashFlow(2024, 1, 0, 11)})
		assert.ErrorIs(t, err, contracts.ErrArithmetic)
	})

	t.Run("zero net income in joined period", func(t *testing.T) {
		inc := incomes([]uint16{2023, 2024}, []int64{100, 110}, []int64{10, 0})
		_, err := ProjectGrowth(inc, []contracts.AnnualCashFlow{cashFlow(2024, 1, 0, 0)})
		assert.ErrorIs(t, err, contracts.ErrArithmetic)
	})
}

func TestJoinByFiscalYear_SortsAscending(t *testing.T) {
	inc := incomes([]uint16{2023, 2024}, []int64{100, 110}, []int64{10, 11})
	cfs := []contracts.AnnualCashFlow{cashFlow(2024, 2, 0, 11), cashFlow(2023, 1, 0, 10)}

	joined, err := JoinByFiscalYear(cfs, inc)
	require.NoError(t, err)
	require.Len(t, joined, 2)
	assert.Equal(t, uint16(2023), joined[0].FiscalYear)
	assert.Equal(t, uint16(2024), joined[1].FiscalYear)
}

func TestJoinByFiscalYear_DuplicateCashFlow(t *testing.T) {
	inc := incomes([]uint16{2023, 2024}, []int64{100, 110}, []int64{10, 11})
	cfs := []contracts.AnnualCashFlow{cashFlow(2024, 2, 0, 11), cashFlow(2024, 3, 0, 11)}

	_, err := JoinByFiscalYear(cfs, inc)
	assert.ErrorIs(t, err, contracts.ErrProviderData)
}
