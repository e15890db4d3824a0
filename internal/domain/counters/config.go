package counters

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Config carries the domain constants the legacy system kept as scattered
// module-level literals. It is passed into the allocator explicitly.
type Config struct {
	// LegacyEpoch is the reference date used when the caller supplies none.
	// Matches the SQL Server minimum date the legacy tables default to.
	LegacyEpoch time.Time `validate:"required"`

	// MaxSegments bounds how many format segments a definition may carry.
	MaxSegments int `validate:"gt=0"`

	// PadRune fills short site/company fragments when the definition
	// requests padding.
	PadRune rune
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		LegacyEpoch: time.Date(1753, time.January, 1, 0, 0, 0, 0, time.UTC),
		MaxSegments: 9,
		PadRune:     '_',
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	return validator.New().Struct(c)
}
