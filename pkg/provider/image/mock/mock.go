// Package mock provides a test double for the image.Provider interface.
package mock

import (
	"context"
	"sync"

	"github.com/papercast-dev/papercast/pkg/provider/image"
)

// GenerateCall records a single invocation of Generate.
type GenerateCall struct {
	// Ctx is the context passed to Generate.
	Ctx context.Context
	// Req is the Request passed to Generate.
	Req image.Request
}

// Provider is a mock implementation of image.Provider.
type Provider struct {
	mu sync.Mutex

	// GenerateResult is returned by Generate. May be nil (returns nil, nil).
	GenerateResult *image.Result

	// GenerateErr, if non-nil, is returned as the error from Generate.
	GenerateErr error

	// GenerateFunc, if non-nil, overrides GenerateResult/GenerateErr and
	// computes the result per call.
	GenerateFunc func(call GenerateCall) (*image.Result, error)

	// GenerateCalls records every invocation of Generate in order.
	GenerateCalls []GenerateCall
}

// Generate records the call and returns the configured result.
func (p *Provider) Generate(ctx context.Context, req image.Request) (*image.Result, error) {
	call := GenerateCall{Ctx: ctx, Req: req}

	p.mu.Lock()
	p.GenerateCalls = append(p.GenerateCalls, call)
	fn := p.GenerateFunc
	result := p.GenerateResult
	err := p.GenerateErr
	p.mu.Unlock()

	if fn != nil {
		return fn(call)
	}
	return result, err
}

// Reset clears all recorded calls. Thread-safe.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.GenerateCalls = nil
}

// Ensure Provider implements image.Provider at compile time.
var _ image.Provider = (*Provider)(nil)
