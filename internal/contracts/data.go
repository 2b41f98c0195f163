package contracts

import (
	"fmt"
	"strings"
)

// Period is the reporting granularity requested from the provider
type Period string

const (
	// PeriodAnnual is the only supported granularity
	PeriodAnnual Period = "annual"
)

// ParsePeriod validates a period string (case-insensitive)
func ParsePeriod(s string) (Period, error) {
	switch Period(strings.ToLower(strings.TrimSpace(s))) {
	case PeriodAnnual:
		return PeriodAnnual, nil
	default:
		return "", fmt.Errorf("%w: unsupported period %q (only annual)", ErrProviderData, s)
	}
}

// FinancialPeriodRecord is one fiscal year of cash-flow and income figures
// ⭐ SSOT: 모든 기간 데이터의 공통 형태
// Currency values are whole base-currency units.
type FinancialPeriodRecord struct {
	FiscalYear          uint16 `json:"fiscal_year"`
	TotalRevenue        int64  `json:"total_revenue"`
	NetIncome           int64  `json:"net_income"`
	CapitalExpenditures int64  `json:"capital_expenditures"` // negative = outflow
	CashFlow            int64  `json:"cash_flow"`
}

// FreeCashFlow returns operating cash flow net of capital expenditures
func (r FinancialPeriodRecord) FreeCashFlow() int64 {
	return r.CashFlow + r.CapitalExpenditures
}

// ProjectionSeries is an ascending run of periods owned by one valuation
type ProjectionSeries []FinancialPeriodRecord

// Last returns the most recent period
func (s ProjectionSeries) Last() (FinancialPeriodRecord, bool) {
	if len(s) == 0 {
		return FinancialPeriodRecord{}, false
	}
	return s[len(s)-1], true
}

// IsConsecutive reports whether fiscal years step by exactly one
func (s ProjectionSeries) IsConsecutive() bool {
	for i := 1; i < len(s); i++ {
		if int(s[i].FiscalYear) != int(s[i-1].FiscalYear)+1 {
			return false
		}
	}
	return true
}

// AnnualCashFlow is the cash-flow view of a normalized estimate
type AnnualCashFlow struct {
	FiscalYear          uint16 `json:"fiscal_year"`
	CashFlow            int64  `json:"cash_flow"`
	CapitalExpenditures int64  `json:"capital_expenditures"`
	NetIncome           int64  `json:"net_income"`
}

// FreeCashFlow returns CashFlow + CapitalExpenditures
func (c AnnualCashFlow) FreeCashFlow() int64 {
	return c.CashFlow + c.CapitalExpenditures
}

// AnnualIncomeStatement is the income view of a normalized estimate
type AnnualIncomeStatement struct {
	FiscalYear   uint16 `json:"fiscal_year"`
	TotalRevenue int64  `json:"total_revenue"`
	NetIncome    int64  `json:"net_income"`
}

// ReportedIncome is one reported income statement row from the provider
type ReportedIncome struct {
	FiscalYear     uint16  `json:"fiscal_year"`
	TotalRevenue   float64 `json:"total_revenue"`
	NetIncome      float64 `json:"net_income"`
	InterestIncome float64 `json:"interest_income"`
	PretaxIncome   float64 `json:"pretax_income"`
	IncomeTax      float64 `json:"income_tax"`
}

// BalanceSheet holds the debt figures used for WACC
type BalanceSheet struct {
	LongTermDebt            float64 `json:"long_term_debt"`
	TotalCurrentLiabilities float64 `json:"total_current_liabilities"`
}

// ConsensusEstimate is a raw analyst consensus row (provider-native units)
type ConsensusEstimate struct {
	FiscalPeriod              string  `json:"fiscal_period"` // "FY 2024"
	ConsensusCashFlowPerShare float64 `json:"consensus_cps"`
	ConsensusCapexPerShare    float64 `json:"consensus_cpx"`
	ConsensusNetIncome        float64 `json:"consensus_net"` // millions
	ConsensusRevenue          float64 `json:"consensus_sal"` // millions
}

// CompanyFundamentals holds market data for one company
type CompanyFundamentals struct {
	SharesOutstanding int64   `json:"shares_outstanding"`
	MarketCap         float64 `json:"market_cap"`
	Beta              float64 `json:"beta"`
}

// Validate checks the invariants the valuation depends on
func (f CompanyFundamentals) Validate() error {
	if f.SharesOutstanding <= 0 {
		return fmt.Errorf("%w: shares outstanding must be > 0, got %d", ErrProviderData, f.SharesOutstanding)
	}
	return nil
}

// CapitalStructureInputs are the debt, tax and interest figures for WACC
type CapitalStructureInputs struct {
	LongTermDebt            float64 `json:"long_term_debt"`
	TotalCurrentLiabilities float64 `json:"total_current_liabilities"`
	InterestIncome          float64 `json:"interest_income"`
	PretaxIncome            float64 `json:"pretax_income"`
	IncomeTax               float64 `json:"income_tax"`
}

// NewCapitalStructure combines the balance sheet with the latest income row
func NewCapitalStructure(bs BalanceSheet, income ReportedIncome) CapitalStructureInputs {
	return CapitalStructureInputs{
		LongTermDebt:            bs.LongTermDebt,
		TotalCurrentLiabilities: bs.TotalCurrentLiabilities,
		InterestIncome:          income.InterestIncome,
		PretaxIncome:            income.PretaxIncome,
		IncomeTax:               income.IncomeTax,
	}
}

// MacroInputs holds market-wide rates (percent, e.g. 4.2 = 4.2%)
type MacroInputs struct {
	TenYearTreasuryRate float64 `json:"ten_year_treasury_rate"`
}

// FairValueResult is the outcome of one successful valuation
type FairValueResult struct {
	Ticker            string `json:"ticker"`
	FairValuePerShare int64  `json:"fair_value_per_share"`
}

// String renders the result the way the CLI prints it
func (r FairValueResult) String() string {
	return fmt.Sprintf("Fair value for %s is %d", r.Ticker, r.FairValuePerShare)
}
