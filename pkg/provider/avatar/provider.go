// Package avatar defines the interface for conversational video avatar
// providers. An avatar conversation is a live video session a listener can
// join after an episode to talk through what they heard.
package avatar

import "context"

// Conversation describes one avatar conversation session.
type Conversation struct {
	// ID is the provider-assigned conversation identifier.
	ID string `json:"conversation_id"`
	// Name is the human-readable conversation name.
	Name string `json:"conversation_name,omitempty"`
	// Status is the provider-reported lifecycle state, e.g. "active" or "ended".
	Status string `json:"status,omitempty"`
	// URL is the join link for the live session.
	URL string `json:"conversation_url,omitempty"`
	// CreatedAt is the provider-reported creation timestamp, verbatim.
	CreatedAt string `json:"created_at,omitempty"`
}

// Provider manages avatar conversation sessions.
type Provider interface {
	// StartConversation creates a live session primed with the given episode
	// context (typically the full script) and returns the join details.
	StartConversation(ctx context.Context, episodeContext string) (*Conversation, error)

	// GetConversation fetches the current state of a session.
	GetConversation(ctx context.Context, id string) (*Conversation, error)

	// ListConversations returns all sessions known to the provider.
	ListConversations(ctx context.Context) ([]Conversation, error)

	// EndConversation stops a live session. Ending an already-ended session
	// is a provider-side no-op.
	EndConversation(ctx context.Context, id string) error

	// DeleteConversation removes a session record entirely.
	DeleteConversation(ctx context.Context, id string) error
}
