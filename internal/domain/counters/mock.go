package counters

import (
	"context"
)

// MockAllocator is a test implementation of Allocator.
// Use in callers' unit tests to avoid database dependencies.
type MockAllocator struct {
	NextFunc func(ctx context.Context, req Request) (string, error)
}

// Next implements Allocator.
func (m *MockAllocator) Next(ctx context.Context, req Request) (string, error) {
	if m.NextFunc != nil {
		return m.NextFunc(ctx, req)
	}
	return "MOCK0001", nil
}

// Ensure compile-time interface compliance.
var _ Allocator = (*MockAllocator)(nil)
