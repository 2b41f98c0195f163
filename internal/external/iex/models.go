package iex

import (
	"math"

	"github.com/wonny/fairvalue/internal/contracts"
)

// Provider-native response shapes. Field names follow the IEX Cloud JSON.

type incomeResponse struct {
	Symbol string      `json:"symbol"`
	Income []incomeRow `json:"income"`
}

type incomeRow struct {
	FiscalYear     uint16  `json:"fiscalYear"`
	TotalRevenue   float64 `json:"totalRevenue"`
	NetIncome      float64 `json:"netIncome"`
	InterestIncome float64 `json:"interestIncome"`
	IncomeTax      float64 `json:"incomeTax"`
	PretaxIncome   float64 `json:"pretaxIncome"`
}

func (r incomeRow) toContract() contracts.ReportedIncome {
	return contracts.ReportedIncome{
		FiscalYear:     r.FiscalYear,
		TotalRevenue:   r.TotalRevenue,
		NetIncome:      r.NetIncome,
		InterestIncome: r.InterestIncome,
		PretaxIncome:   r.PretaxIncome,
		IncomeTax:      r.IncomeTax,
	}
}

type balanceSheetResponse struct {
	BalanceSheet []balanceSheetRow `json:"balancesheet"`
}

type balanceSheetRow struct {
	LongTermDebt            float64 `json:"longTermDebt"`
	TotalCurrentLiabilities float64 `json:"totalCurrentLiabilities"`
}

// statsResponse: sharesOutstanding is sometimes rendered as a float
type statsResponse struct {
	SharesOutstanding float64 `json:"sharesOutstanding"`
	Marketcap         float64 `json:"marketcap"`
	Beta              float64 `json:"beta"`
}

func (s statsResponse) toContract() contracts.CompanyFundamentals {
	return contracts.CompanyFundamentals{
		SharesOutstanding: int64(math.Round(s.SharesOutstanding)),
		MarketCap:         s.Marketcap,
		Beta:              s.Beta,
	}
}

type treasuryPoint struct {
	Value float64 `json:"value"`
}

type estimatesResponse struct {
	Estimates []estimateRow `json:"estimates"`
}

type estimateRow struct {
	ConsensusCPS float64 `json:"consensusCPS"`
	ConsensusCPX float64 `json:"consensusCPX"`
	ConsensusNET float64 `json:"consensusNET"`
	ConsensusSAL float64 `json:"consensusSAL"`
	FiscalPeriod string  `json:"fiscalPeriod"`
}

func (e estimateRow) toContract() contracts.ConsensusEstimate {
	return contracts.ConsensusEstimate{
		FiscalPeriod:              e.FiscalPeriod,
		ConsensusCashFlowPerShare: e.ConsensusCPS,
		ConsensusCapexPerShare:    e.ConsensusCPX,
		ConsensusNetIncome:        e.ConsensusNET,
		ConsensusRevenue:          e.ConsensusSAL,
	}
}
