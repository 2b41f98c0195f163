package assumptions

import (
	"github.com/wonny/fairvalue/internal/contracts"
	"github.com/wonny/fairvalue/internal/dcf"
)

// Config holds every tunable assumption used by a valuation run
// ⭐ SSOT: 밸류에이션 가정값은 YAML 한 파일에서만 관리
type Config struct {
	Meta     Meta     `yaml:"meta" json:"meta"`
	Market   Market   `yaml:"market" json:"market"`
	Forecast Forecast `yaml:"forecast" json:"forecast"`
	Provider Provider `yaml:"provider" json:"provider"`
	Batch    Batch    `yaml:"batch" json:"batch"`
}

// Meta 메타 정보
type Meta struct {
	Name    string `yaml:"name" json:"name"`
	Version string `yaml:"version" json:"version"`
}

// Market holds long-run market assumptions (percent)
type Market struct {
	// PresumedGrowthPct is the long-run equity-market growth used by CAPM
	PresumedGrowthPct float64 `yaml:"presumed_growth_pct" json:"presumed_growth_pct"`
}

// Forecast 명시적 예측 구간 + 영구 성장률
type Forecast struct {
	Years              int     `yaml:"years" json:"years"`
	PerpetualGrowthPct float64 `yaml:"perpetual_growth_pct" json:"perpetual_growth_pct"`
}

// Provider controls what is requested from the data provider
type Provider struct {
	Period           string `yaml:"period" json:"period"` // annual only
	IncomeLookback   int    `yaml:"income_lookback" json:"income_lookback"`
	EstimateLookback int    `yaml:"estimate_lookback" json:"estimate_lookback"`
}

// Batch 다종목 평가 동시성
type Batch struct {
	Workers int `yaml:"workers" json:"workers"`
}

// Default returns the reference assumptions
func Default() *Config {
	return &Config{
		Meta: Meta{
			Name:    "default",
			Version: "1",
		},
		Market: Market{
			PresumedGrowthPct: 10,
		},
		Forecast: Forecast{
			Years:              2,
			PerpetualGrowthPct: 2.5,
		},
		Provider: Provider{
			Period:           "annual",
			IncomeLookback:   2,
			EstimateLookback: 2,
		},
		Batch: Batch{
			Workers: 4,
		},
	}
}

// DCF returns the discounting parameters
func (c *Config) DCF() dcf.Params {
	return dcf.Params{
		ForecastYears:      c.Forecast.Years,
		PerpetualGrowthPct: c.Forecast.PerpetualGrowthPct,
	}
}

// Period returns the validated provider period
func (c *Config) Period() contracts.Period {
	p, err := contracts.ParsePeriod(c.Provider.Period)
	if err != nil {
		return contracts.PeriodAnnual
	}
	return p
}
