package contracts

import "context"

// Gateway is the typed accessor for provider data
// ⭐ SSOT: valuation 엔진이 외부 데이터에 접근하는 유일한 인터페이스
// Every method fails with ErrNetwork, ErrDeserialization or ErrProviderStatus
// (ErrProviderData when a required row is missing).
type Gateway interface {
	FetchIncomeStatement(ctx context.Context, ticker string, period Period, last int) ([]ReportedIncome, error)
	FetchBalanceSheet(ctx context.Context, ticker string, period Period) (BalanceSheet, error)
	FetchCompanyStats(ctx context.Context, ticker string) (CompanyFundamentals, error)
	FetchTreasuryRate(ctx context.Context) (float64, error)
	FetchEstimates(ctx context.Context, ticker string, period Period, last int) ([]ConsensusEstimate, error)
}
