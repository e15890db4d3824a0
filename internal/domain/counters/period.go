package counters

import (
	"time"

	"numera/internal/core/apperror"
)

// ResolvePeriod computes the integer period key bucketing a counter's
// sequence space over time. Distinct keys are independent sequences.
func ResolvePeriod(policy ResetPolicy, date time.Time) (int, error) {
	switch policy {
	case ResetNone:
		return 0, nil
	case ResetAnnual:
		return date.Year() % 100, nil
	case ResetMonthly:
		return 100*(date.Year()%100) + int(date.Month()), nil
	case ResetFiscalYear, ResetPeriod:
		// Declared in legacy definition rows but the fiscal calendar was
		// never wired up. Failing beats silently sharing one bucket.
		return 0, apperror.NewUnsupported("fiscal-calendar reset policy").
			WithDetail("policy", policy.String())
	default:
		return 0, apperror.NewValidation("unknown reset policy").
			WithDetail("value", int(policy))
	}
}

// decadeKey is the single-digit year bucket used only by 1-character
// year segments (legacy "mode 99").
func decadeKey(date time.Time) int {
	return date.Year() % 10
}
