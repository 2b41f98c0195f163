package valuation

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fairvalue/internal/contracts"
	"github.com/wonny/fairvalue/pkg/logger"
)

func goodRequest() Request {
	return Request{Ticker: "GOOD", Period: contracts.PeriodAnnual, IncomeLookback: 2, EstimateLookback: 2}
}

func TestGather_AllSucceed(t *testing.T) {
	gw := newFakeGateway()

	in, err := Gather(context.Background(), gw, goodRequest())
	require.NoError(t, err)

	assert.Equal(t, "GOOD", in.Ticker)
	assert.Len(t, in.Income, 2)
	assert.InDelta(t, 8e9, in.BalanceSheet.LongTermDebt, 1)
	assert.Equal(t, int64(1_000_000_000), in.Stats.SharesOutstanding)
	assert.InDelta(t, 4.0, in.TreasuryRate, 1e-12)
	assert.Len(t, in.Estimates, 2)
	assert.Equal(t, int32(5), atomic.LoadInt32(&gw.calls))
}

func TestGather_AnyFailureFailsWhole(t *testing.T) {
	for _, call := range []string{"income", "balance", "stats", "treasury", "estimates"} {
		t.Run(call, func(t *testing.T) {
			gw := newFakeGateway()
			gw.failures[call] = networkErr(call)

			in, err := Gather(context.Background(), gw, goodRequest())
			assert.ErrorIs(t, err, contracts.ErrNetwork)
			assert.Nil(t, in)

			// no valuation is built from the remaining successes
			ev := NewEvaluator(gw, nil, logger.Nop())
			res, err := ev.Evaluate(context.Background(), "GOOD")
			assert.ErrorIs(t, err, contracts.ErrNetwork)
			assert.Nil(t, res)
		})
	}
}

func TestGather_FailsFastWithoutCancellingSiblings(t *testing.T) {
	gw := newFakeGateway()
	gw.blockCall = "estimates"
	gw.block = make(chan struct{})
	gw.failures["treasury"] = networkErr("treasury")

	done := make(chan error, 1)
	go func() {
		_, err := Gather(context.Background(), gw, goodRequest())
		done <- err
	}()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, contracts.ErrNetwork)
	case <-time.After(2 * time.Second):
		t.Fatal("Gather waited for a blocked sibling after a failure")
	}

	// the parked call is still allowed to finish
	close(gw.block)
}

func TestGather_ErrorNamesTheCall(t *testing.T) {
	gw := newFakeGateway()
	gw.failures["stats"] = &contracts.ProviderStatusError{StatusCode: 503, Endpoint: "/stock/GOOD/stats"}

	_, err := Gather(context.Background(), gw, goodRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "company stats")
	assert.ErrorIs(t, err, contracts.ErrProviderStatus)
}

func TestInputs_LatestIncome(t *testing.T) {
	in := &Inputs{Income: []contracts.ReportedIncome{
		{FiscalYear: 2022, PretaxIncome: 1},
		{FiscalYear: 2023, PretaxIncome: 2},
		{FiscalYear: 2021, PretaxIncome: 3},
	}}

	latest, err := in.LatestIncome()
	require.NoError(t, err)
	assert.Equal(t, uint16(2023), latest.FiscalYear)

	_, err = (&Inputs{}).LatestIncome()
	assert.ErrorIs(t, err, contracts.ErrProviderData)
}
