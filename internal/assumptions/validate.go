package assumptions

import (
	"fmt"
	"math"

	"github.com/wonny/fairvalue/internal/contracts"
)

// ValidationError 검증 실패 (기동 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks all required constraints
func Validate(cfg *Config) error {
	// === Market ===
	if !isFinite(cfg.Market.PresumedGrowthPct) {
		return ValidationError{"market.presumed_growth_pct", "must be a finite number"}
	}
	if cfg.Market.PresumedGrowthPct <= 0 || cfg.Market.PresumedGrowthPct > 50 {
		return ValidationError{"market.presumed_growth_pct", "must be in (0, 50]"}
	}

	// === Forecast ===
	if cfg.Forecast.Years < 1 || cfg.Forecast.Years > 10 {
		return ValidationError{"forecast.years", "must be in [1, 10]"}
	}
	if !isFinite(cfg.Forecast.PerpetualGrowthPct) {
		return ValidationError{"forecast.perpetual_growth_pct", "must be a finite number"}
	}
	if cfg.Forecast.PerpetualGrowthPct < 0 || cfg.Forecast.PerpetualGrowthPct >= cfg.Market.PresumedGrowthPct {
		return ValidationError{"forecast.perpetual_growth_pct", "must be in [0, market.presumed_growth_pct)"}
	}

	// === Provider ===
	if _, err := contracts.ParsePeriod(cfg.Provider.Period); err != nil {
		return ValidationError{"provider.period", "only annual is supported"}
	}
	if cfg.Provider.IncomeLookback < 1 {
		return ValidationError{"provider.income_lookback", "must be >= 1"}
	}
	// 성장률 계산에 최소 2개 기간 필요
	if cfg.Provider.EstimateLookback < 2 {
		return ValidationError{"provider.estimate_lookback", "must be >= 2"}
	}

	// === Batch ===
	if cfg.Batch.Workers < 1 || cfg.Batch.Workers > 64 {
		return ValidationError{"batch.workers", "must be in [1, 64]"}
	}

	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
