package counters

import (
	"context"
	"time"
)

// Key is the composite identity of one persisted sequence: a counter code
// partitioned by scope (site/company), period bucket and complement.
type Key struct {
	Code       string
	Scope      string
	Period     int
	Complement string
}

// DefinitionSource loads counter definitions. Implementations live in the
// infrastructure layer (repository, cache decorator).
type DefinitionSource interface {
	// Get returns the definition for code, or a NotFound apperror.
	Get(ctx context.Context, code string) (*Definition, error)
}

// ValueStore owns all read-modify-write access to persisted counter values.
// No other component mutates those rows.
type ValueStore interface {
	// Allocate atomically claims and returns the next sequence value for
	// key, starting at 1 for a fresh key. Two concurrent calls for the
	// same key never observe the same value; calls for distinct keys do
	// not block one another.
	Allocate(ctx context.Context, key Key) (int64, error)

	// Peek reads the last allocated value without consuming one.
	// ok is false when the key has never allocated.
	Peek(ctx context.Context, key Key) (value int64, ok bool, err error)

	// Set forces the sequence position for key (migration support).
	// The next Allocate returns value+1.
	Set(ctx context.Context, key Key, value int64) error
}

// CompanyResolver maps a site code to its owning company code, used by
// company-level definitions to build the scope key.
type CompanyResolver interface {
	CompanyForSite(ctx context.Context, site string) (string, error)
}

// Request carries the caller inputs for one allocation.
type Request struct {
	// CounterCode selects the definition.
	CounterCode string

	// Site is the caller's site code. Required for site- and
	// company-level definitions.
	Site string

	// Date is the business reference date. Zero means the configured
	// legacy epoch.
	Date time.Time

	// Complement is the caller-supplied free text, embedded only when
	// the definition sanctions a complement segment.
	Complement string
}

// Allocator mints the next formatted identifier for a counter.
type Allocator interface {
	Next(ctx context.Context, req Request) (string, error)
}
