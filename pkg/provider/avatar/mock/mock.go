// Package mock provides a test double for the avatar.Provider interface.
package mock

import (
	"context"
	"sync"

	"github.com/papercast-dev/papercast/pkg/provider/avatar"
)

// StartCall records a single invocation of StartConversation.
type StartCall struct {
	// Ctx is the context passed to StartConversation.
	Ctx context.Context
	// EpisodeContext is the context string passed to StartConversation.
	EpisodeContext string
}

// Provider is a mock implementation of avatar.Provider.
// Zero values for response fields cause methods to return zero values and nil
// errors. Set Err fields to inject errors.
type Provider struct {
	mu sync.Mutex

	// StartResult is returned by StartConversation.
	StartResult *avatar.Conversation
	// StartErr, if non-nil, is returned as the error from StartConversation.
	StartErr error

	// GetResult is returned by GetConversation.
	GetResult *avatar.Conversation
	// GetErr, if non-nil, is returned as the error from GetConversation.
	GetErr error

	// ListResult is returned by ListConversations.
	ListResult []avatar.Conversation
	// ListErr, if non-nil, is returned as the error from ListConversations.
	ListErr error

	// EndErr is returned by EndConversation.
	EndErr error
	// DeleteErr is returned by DeleteConversation.
	DeleteErr error

	// StartCalls records every invocation of StartConversation in order.
	StartCalls []StartCall
	// GetIDs records the IDs passed to GetConversation in order.
	GetIDs []string
	// EndIDs records the IDs passed to EndConversation in order.
	EndIDs []string
	// DeleteIDs records the IDs passed to DeleteConversation in order.
	DeleteIDs []string
	// ListCallCount is the number of times ListConversations was called.
	ListCallCount int
}

// StartConversation records the call and returns the configured result.
func (p *Provider) StartConversation(ctx context.Context, episodeContext string) (*avatar.Conversation, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.StartCalls = append(p.StartCalls, StartCall{Ctx: ctx, EpisodeContext: episodeContext})
	return p.StartResult, p.StartErr
}

// GetConversation records the call and returns the configured result.
func (p *Provider) GetConversation(ctx context.Context, id string) (*avatar.Conversation, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.GetIDs = append(p.GetIDs, id)
	return p.GetResult, p.GetErr
}

// ListConversations records the call and returns the configured result.
func (p *Provider) ListConversations(ctx context.Context) ([]avatar.Conversation, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ListCallCount++
	return p.ListResult, p.ListErr
}

// EndConversation records the call and returns EndErr.
func (p *Provider) EndConversation(ctx context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.EndIDs = append(p.EndIDs, id)
	return p.EndErr
}

// DeleteConversation records the call and returns DeleteErr.
func (p *Provider) DeleteConversation(ctx context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.DeleteIDs = append(p.DeleteIDs, id)
	return p.DeleteErr
}

// Reset clears all recorded calls. Thread-safe.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.StartCalls = nil
	p.GetIDs = nil
	p.EndIDs = nil
	p.DeleteIDs = nil
	p.ListCallCount = 0
}

// Ensure Provider implements avatar.Provider at compile time.
var _ avatar.Provider = (*Provider)(nil)
