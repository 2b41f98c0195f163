package valuation

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/wonny/fairvalue/internal/contracts"
)

// fixture is one ticker's canned provider data
type fixture struct {
	income    []contracts.ReportedIncome
	balance   contracts.BalanceSheet
	stats     contracts.CompanyFundamentals
	estimates []contracts.ConsensusEstimate
}

// goodFixture is hand-computed to a fair value of 185 per share.
//
//	WACC: t=0.2 kd=0.05 wd=0.1 ke=4+1.2*(10-4)=11.2 → 0.1*(1-0.01)+0.9*11.2 = 10.179
//	growth: revenue 90,95,100,110 (bn) → mean(5.556, 5.263, 10) = 6.9396
//	margin: min(10, 10, 11, 10.909) = 10
//	cash conversion: min((13e9-2.8e6)/11e9, (14e9-3e6)/12e9) = 116.6417
//	forecast FCF: 2026 13,720,970,792  2027 14,673,147,322
//	terminal 195,858,523,310 → discounted 161,341,029,243
//	aggregate 185,881,571,759 / 1e9 shares → 185
func goodFixture() fixture {
	return fixture{
		income: []contracts.ReportedIncome{
			{FiscalYear: 2023, TotalRevenue: 95e9, NetIncome: 9.5e9, InterestIncome: 0.5e9, IncomeTax: 2.5e9, PretaxIncome: 12.5e9},
			{FiscalYear: 2022, TotalRevenue: 90e9, NetIncome: 9e9, InterestIncome: 0.4e9, IncomeTax: 2.2e9, PretaxIncome: 11e9},
		},
		balance: contracts.BalanceSheet{LongTermDebt: 8e9, TotalCurrentLiabilities: 2e9},
		stats:   contracts.CompanyFundamentals{SharesOutstanding: 1_000_000_000, MarketCap: 90e9, Beta: 1.2},
		estimates: []contracts.ConsensusEstimate{
			{FiscalPeriod: "FY 2025", ConsensusCashFlowPerShare: 14, ConsensusCapexPerShare: 3.0, ConsensusNetIncome: 12000, ConsensusRevenue: 110000},
			{FiscalPeriod: "FY 2024", ConsensusCashFlowPerShare: 13, ConsensusCapexPerShare: 2.8, ConsensusNetIncome: 11000, ConsensusRevenue: 100000},
		},
	}
}

// fakeGateway serves fixtures by ticker and can inject per-call failures
type fakeGateway struct {
	mu       sync.Mutex
	fixtures map[string]fixture
	treasury float64

	// failures keyed by call name ("income", "balance", "stats", "treasury", "estimates")
	failures map[string]error

	// block, when set, parks the named call until the channel is closed
	blockCall string
	block     chan struct{}

	calls int32
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		fixtures: map[string]fixture{"GOOD": goodFixture()},
		treasury: 4.0,
		failures: map[string]error{},
	}
}

func (f *fakeGateway) enter(ctx context.Context, call string) error {
	atomic.AddInt32(&f.calls, 1)

	f.mu.Lock()
	blockCall, block := f.blockCall, f.block
	err := f.failures[call]
	f.mu.Unlock()

	if block != nil && blockCall == call {
		<-block
	}
	return err
}

func (f *fakeGateway) fixture(ticker string) (fixture, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fx, ok := f.fixtures[strings.ToUpper(ticker)]
	if !ok {
		return fixture{}, &contracts.ProviderStatusError{StatusCode: 404, Endpoint: "/stock/" + ticker, Message: "Unknown symbol"}
	}
	return fx, nil
}

func (f *fakeGateway) FetchIncomeStatement(ctx context.Context, ticker string, period contracts.Period, last int) ([]contracts.ReportedIncome, error) {
	if err := f.enter(ctx, "income"); err != nil {
		return nil, err
	}
	fx, err := f.fixture(ticker)
	if err != nil {
		return nil, err
	}
	if last > 0 && len(fx.income) > last {
		return fx.income[:last], nil
	}
	return fx.income, nil
}

func (f *fakeGateway) FetchBalanceSheet(ctx context.Context, ticker string, period contracts.Period) (contracts.BalanceSheet, error) {
	if err := f.enter(ctx, "balance"); err != nil {
		return contracts.BalanceSheet{}, err
	}
	fx, err := f.fixture(ticker)
	if err != nil {
		return contracts.BalanceSheet{}, err
	}
	return fx.balance, nil
}

func (f *fakeGateway) FetchCompanyStats(ctx context.Context, ticker string) (contracts.CompanyFundamentals, error) {
	if err := f.enter(ctx, "stats"); err != nil {
		return contracts.CompanyFundamentals{}, err
	}
	fx, err := f.fixture(ticker)
	if err != nil {
		return contracts.CompanyFundamentals{}, err
	}
	return fx.stats, nil
}

func (f *fakeGateway) FetchTreasuryRate(ctx context.Context) (float64, error) {
	if err := f.enter(ctx, "treasury"); err != nil {
		return 0, err
	}
	return f.treasury, nil
}

func (f *fakeGateway) FetchEstimates(ctx context.Context, ticker string, period contracts.Period, last int) ([]contracts.ConsensusEstimate, error) {
	if err := f.enter(ctx, "estimates"); err != nil {
		return nil, err
	}
	fx, err := f.fixture(ticker)
	if err != nil {
		return nil, err
	}
	return fx.estimates, nil
}

var _ contracts.Gateway = (*fakeGateway)(nil)

func networkErr(call string) error {
	return fmt.Errorf("%w: GET %s: connection refused", contracts.ErrNetwork, call)
}
