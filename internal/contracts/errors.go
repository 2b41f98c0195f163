package contracts

import (
	"context"
	"errors"
	"fmt"
)

// Error taxonomy
// ⭐ SSOT: 모든 valuation 에러는 아래 sentinel 중 하나로 분류됨
var (
	// ErrNetwork: the provider could not be reached
	ErrNetwork = errors.New("network error")

	// ErrDeserialization: the provider body could not be decoded
	ErrDeserialization = errors.New("deserialization error")

	// ErrProviderStatus: the provider answered with a non-200 status
	ErrProviderStatus = errors.New("provider status error")

	// ErrProviderData: missing, empty or fiscal-year-misaligned series
	ErrProviderData = errors.New("provider data error")

	// ErrArithmetic: division by zero or a non-positive discount spread
	ErrArithmetic = errors.New("arithmetic error")

	// ErrParse: malformed fiscal period label
	ErrParse = errors.New("parse error")
)

// ProviderStatusError carries the status returned by the provider
type ProviderStatusError struct {
	StatusCode int
	Endpoint   string
	Message    string
}

func (e *ProviderStatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("provider returned status %d for %s", e.StatusCode, e.Endpoint)
	}
	return fmt.Sprintf("provider returned status %d for %s: %s", e.StatusCode, e.Endpoint, e.Message)
}

// Is makes errors.Is(err, ErrProviderStatus) match
func (e *ProviderStatusError) Is(target error) bool {
	return target == ErrProviderStatus
}

// Kind labels used in logs and CLI output
const (
	KindNetwork         = "network"
	KindDeserialization = "deserialization"
	KindProviderStatus  = "provider_status"
	KindProviderData    = "provider_data"
	KindArithmetic      = "arithmetic"
	KindParse           = "parse"
	KindCanceled        = "canceled"
	KindUnknown         = "unknown"
)

// KindOf returns the taxonomy label for err
func KindOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrProviderStatus):
		return KindProviderStatus
	case errors.Is(err, ErrNetwork):
		return KindNetwork
	case errors.Is(err, ErrDeserialization):
		return KindDeserialization
	case errors.Is(err, ErrProviderData):
		return KindProviderData
	case errors.Is(err, ErrArithmetic):
		return KindArithmetic
	case errors.Is(err, ErrParse):
		return KindParse
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	default:
		return KindUnknown
	}
}

// IsProviderFailure reports transport/provider-side failures (vs. data or math problems)
func IsProviderFailure(err error) bool {
	return errors.Is(err, ErrNetwork) ||
		errors.Is(err, ErrDeserialization) ||
		errors.Is(err, ErrProviderStatus)
}
