package interfaces

import (
	"context"
)

// Message represents a single message in a chat conversation
type Message struct {
	// Role identifies the message sender: "user", "assistant", or "system"
	Role string

	// Content contains the text content of the message
	Content string
}

// LLMService defines the interface for chat completions against a language
// model provider. Implementations wrap a specific vendor SDK (Google Gemini,
// Anthropic Claude).
type LLMService interface {
	// Chat generates a completion response based on the conversation history.
	// The messages slice should contain the full conversation context including
	// system prompts, user messages, and previous assistant responses.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout control
	//   - messages: Conversation history in chronological order
	//
	// Returns:
	//   - string: Generated assistant response
	//   - error: Error if chat completion fails
	Chat(ctx context.Context, messages []Message) (string, error)

	// HealthCheck verifies the LLM service is operational and can handle
	// requests. This may check API connectivity and authentication.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout control
	//
	// Returns:
	//   - error: Error if service is not healthy or unreachable
	HealthCheck(ctx context.Context) error

	// Close releases resources and performs cleanup operations such as
	// closing HTTP connections.
	//
	// Returns:
	//   - error: Error if cleanup fails
	Close() error
}
