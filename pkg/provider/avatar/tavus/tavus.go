// Package tavus provides an avatar.Provider backed by the Tavus v2
// conversations API. Each started conversation is primed as a reflective
// tutor: the avatar greets the listener after an episode and asks them to
// summarise what they learned.
package tavus

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/papercast-dev/papercast/pkg/provider/avatar"
)

// Compile-time interface assertion.
var _ avatar.Provider = (*Provider)(nil)

const (
	defaultBaseURL = "https://tavusapi.com"
	defaultTimeout = 30 * time.Second

	conversationsPath = "/v2/conversations"

	// defaultConversationName labels sessions in the Tavus dashboard.
	defaultConversationName = "rubber ducky"

	// tutorGreeting is the avatar's opening line.
	tutorGreeting = "Hey how's it going? I hope you enjoyed the podcast. " +
		"I am here to help you reflect on what you learned and clarify any questions you might have. " +
		"Let's dive in! Can you start with a quick summary of what you learned?"

	// tutorContext frames the avatar's role; the episode script is appended
	// at start time.
	tutorContext = "You're about to speak with a student who has just finished listening to a podcast " +
		"designed to explain a concept for which they uploaded resources for. Your role is to encourage " +
		"the student to articulate their understanding of the concept, reflect on how much they grasped, " +
		"and identify any areas of confusion. The goal is to guide the student toward greater " +
		"self-awareness of their knowledge gaps and help them formulate thoughtful follow-up questions. " +
		"Here is the script / planning that went into the exact podcast the student listened to:"
)

// Option is a functional option for configuring a Tavus Provider.
type Option func(*Provider)

// WithBaseURL overrides the API base URL. Useful for testing against a local
// stub server.
func WithBaseURL(u string) Option {
	return func(p *Provider) {
		p.baseURL = strings.TrimRight(u, "/")
	}
}

// WithConversationName sets the name given to new sessions.
func WithConversationName(name string) Option {
	return func(p *Provider) {
		p.conversationName = name
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) {
		p.httpClient = c
	}
}

// Provider implements avatar.Provider against the Tavus v2 API.
// It is safe for concurrent use.
type Provider struct {
	apiKey           string
	replicaID        string
	baseURL          string
	conversationName string
	httpClient       *http.Client
}

// New creates a new Tavus Provider. Both apiKey and replicaID must be
// non-empty; the replica ID selects which avatar persona answers.
func New(apiKey, replicaID string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, errors.New("tavus: apiKey must not be empty")
	}
	if replicaID == "" {
		return nil, errors.New("tavus: replicaID must not be empty")
	}
	p := &Provider{
		apiKey:           apiKey,
		replicaID:        replicaID,
		baseURL:          defaultBaseURL,
		conversationName: defaultConversationName,
		httpClient:       &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// ---- wire types ----

// conversationProperties mirrors the Tavus properties object.
type conversationProperties struct {
	EnableRecording      bool   `json:"enable_recording"`
	EnableClosedCaptions bool   `json:"enable_closed_captions"`
	ApplyGreenscreen     bool   `json:"apply_greenscreen"`
	Language             string `json:"language"`
}

// startRequest is the JSON body for POST /v2/conversations.
type startRequest struct {
	ReplicaID             string                 `json:"replica_id"`
	ConversationName      string                 `json:"conversation_name"`
	CustomGreeting        string                 `json:"custom_greeting"`
	ConversationalContext string                 `json:"conversational_context"`
	Properties            conversationProperties `json:"properties"`
}

// listResponse is the JSON body of GET /v2/conversations.
type listResponse struct {
	Data       []avatar.Conversation `json:"data"`
	TotalCount int                   `json:"total_count"`
}

// ---- operations ----

// StartConversation creates a new tutoring session primed with the episode
// context.
func (p *Provider) StartConversation(ctx context.Context, episodeContext string) (*avatar.Conversation, error) {
	body := startRequest{
		ReplicaID:             p.replicaID,
		ConversationName:      p.conversationName,
		CustomGreeting:        tutorGreeting,
		ConversationalContext: tutorContext + episodeContext,
		Properties: conversationProperties{
			EnableRecording:      false,
			EnableClosedCaptions: false,
			ApplyGreenscreen:     false,
			Language:             "english",
		},
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("tavus: marshal start request: %w", err)
	}

	var conv avatar.Conversation
	if err := p.do(ctx, http.MethodPost, conversationsPath, bytes.NewReader(data), &conv); err != nil {
		return nil, err
	}
	if conv.ID == "" {
		return nil, errors.New("tavus: start conversation: response missing conversation_id")
	}
	return &conv, nil
}

// GetConversation fetches one session by ID.
func (p *Provider) GetConversation(ctx context.Context, id string) (*avatar.Conversation, error) {
	if id == "" {
		return nil, errors.New("tavus: conversation id must not be empty")
	}
	var conv avatar.Conversation
	if err := p.do(ctx, http.MethodGet, conversationsPath+"/"+id, nil, &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

// ListConversations returns all sessions for the account.
func (p *Provider) ListConversations(ctx context.Context) ([]avatar.Conversation, error) {
	var lr listResponse
	if err := p.do(ctx, http.MethodGet, conversationsPath, nil, &lr); err != nil {
		return nil, err
	}
	return lr.Data, nil
}

// EndConversation stops a live session.
func (p *Provider) EndConversation(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("tavus: conversation id must not be empty")
	}
	return p.do(ctx, http.MethodPost, conversationsPath+"/"+id+"/end", nil, nil)
}

// DeleteConversation removes a session record.
func (p *Provider) DeleteConversation(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("tavus: conversation id must not be empty")
	}
	return p.do(ctx, http.MethodDelete, conversationsPath+"/"+id, nil, nil)
}

// do issues one authenticated request and decodes the response into out when
// out is non-nil.
func (p *Provider) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("tavus: create request: %w", err)
	}
	req.Header.Set("x-api-key", p.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("tavus: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("tavus: %s %s returned status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("tavus: decode %s %s response: %w", method, path, err)
	}
	return nil
}
