package dcf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fairvalue/internal/contracts"
)

func TestParseFiscalYear(t *testing.T) {
	tests := []struct {
		label   string
		want    uint16
		wantErr bool
	}{
		{"FY 2024", 2024, false},
		{"FY 1999", 1999, false},
		{"FY  2025 ", 2025, false},
		{"2024", 0, true},
		{"FY", 0, true},
		{"FY abc", 0, true},
		{"FY 70000", 0, true}, // overflows uint16
		{"FY -1", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, err := ParseFiscalYear(tt.label)
			if tt.wantErr {
				assert.ErrorIs(t, err, contracts.ErrParse)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeEstimates_Scaling(t *testing.T) {
	estimates := []contracts.ConsensusEstimate{
		{
			FiscalPeriod:              "FY 2024",
			ConsensusCashFlowPerShare: 1.5,
			ConsensusCapexPerShare:    2,
			ConsensusNetIncome:        100,
			ConsensusRevenue:          400,
		},
	}

	cashFlows, incomes, err := NormalizeEstimates(estimates, 1_000_000)
	require.NoError(t, err)
	require.Len(t, cashFlows, 1)
	require.Len(t, incomes, 1)

	assert.Equal(t, int64(1_500_000), cashFlows[0].CashFlow)
	assert.Equal(t, int64(-2_000_000), cashFlows[0].CapitalExpenditures)
	assert.Equal(t, int64(100_000_000), cashFlows[0].NetIncome)
	assert.Equal(t, uint16(2024), cashFlows[0].FiscalYear)

	assert.Equal(t, int64(400_000_000), incomes[0].TotalRevenue)
	assert.Equal(t, int64(100_000_000), incomes[0].NetIncome)
	assert.Equal(t, uint16(2024), incomes[0].FiscalYear)
}

func TestNormalizeEstimates_ReversesProviderOrder(t *testing.T) {
	// provider returns most recent first
	estimates := []contracts.ConsensusEstimate{
		{FiscalPeriod: "FY 2026", ConsensusRevenue: 3},
		{FiscalPeriod: "FY 2025", ConsensusRevenue: 2},
		{FiscalPeriod: "FY 2024", ConsensusRevenue: 1},
	}

	cashFlows, incomes, err := NormalizeEstimates(estimates, 10)
	require.NoError(t, err)

	years := func() []uint16 {
		out := make([]uint16, len(incomes))
		for i, inc := range incomes {
			out[i] = inc.FiscalYear
		}
		return out
	}()
	assert.Equal(t, []uint16{2024, 2025, 2026}, years)
	assert.Equal(t, uint16(2024), cashFlows[0].FiscalYear)
	assert.Equal(t, int64(1_000_000), incomes[0].TotalRevenue)
	assert.Equal(t, int64(3_000_000), incomes[2].TotalRevenue)
}

func TestNormalizeEstimates_Errors(t *testing.T) {
	_, _, err := NormalizeEstimates(nil, 100)
	assert.ErrorIs(t, err, contracts.ErrProviderData)

	_, _, err = NormalizeEstimates([]contracts.ConsensusEstimate{{FiscalPeriod: "FY 2024"}}, 0)
	assert.ErrorIs(t, err, contracts.ErrProviderData)

	_, _, err = NormalizeEstimates([]contracts.ConsensusEstimate{
		{FiscalPeriod: "FY 2025"},
		{FiscalPeriod: "Q3 2024"},
	}, 100)
	assert.ErrorIs(t, err, contracts.ErrParse)
}

func TestMergeIncome(t *testing.T) {
	reported := []contracts.ReportedIncome{
		{FiscalYear: 2023, TotalRevenue: 900, NetIncome: 90},
		{FiscalYear: 2022, TotalRevenue: 800, NetIncome: 80},
		{FiscalYear: 0, TotalRevenue: 1}, // missing year is ignored
	}
	estimated := []contracts.AnnualIncomeStatement{
		{FiscalYear: 2023, TotalRevenue: 950, NetIncome: 95},
		{FiscalYear: 2024, TotalRevenue: 1000, NetIncome: 100},
	}

	merged := MergeIncome(reported, estimated)
	require.Len(t, merged, 3)

	assert.Equal(t, uint16(2022), merged[0].FiscalYear)
	assert.Equal(t, int64(800), merged[0].TotalRevenue)

	// estimate wins on overlap
	assert.Equal(t, uint16(2023), merged[1].FiscalYear)
	assert.Equal(t, int64(950), merged[1].TotalRevenue)

	assert.Equal(t, uint16(2024), merged[2].FiscalYear)
}
