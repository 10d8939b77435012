package valueobjects

import (
	"fmt"
	"unicode/utf8"

	"loom-backend/domain/config"
)

// MessageContent is a value object for the text carried by a message node.
// ASSISTANT nodes legitimately start empty and fill in as generation streams,
// so emptiness is not rejected here.
type MessageContent struct {
	body string
}

// NewMessageContent creates content with validation using default configuration
func NewMessageContent(body string) (MessageContent, error) {
	return NewMessageContentWithConfig(body, config.DefaultDomainConfig())
}

// NewMessageContentWithConfig creates content with validation and configuration
func NewMessageContentWithConfig(body string, cfg *config.DomainConfig) (MessageContent, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	if utf8.RuneCountInString(body) > cfg.MaxContentLength {
		return MessageContent{}, fmt.Errorf("content exceeds maximum length of %d characters", cfg.MaxContentLength)
	}

	return MessageContent{body: body}, nil
}

// Body returns the content text
func (c MessageContent) Body() string {
	return c.body
}

// IsEmpty checks if content is empty
func (c MessageContent) IsEmpty() bool {
	return c.body == ""
}

// Equals checks if two contents are equal
func (c MessageContent) Equals(other MessageContent) bool {
	return c.body == other.body
}

// TokenEstimate returns the approximate token count, ceil(length/4).
// The heuristic matches what the context budget arithmetic expects; an exact
// tokenizer would be provider-specific and lives outside the engine.
func (c MessageContent) TokenEstimate() int {
	return EstimateTokens(c.body)
}

// Summary returns a truncated preview of the content
func (c MessageContent) Summary(maxLength int) string {
	if maxLength <= 0 {
		return ""
	}
	if utf8.RuneCountInString(c.body) <= maxLength {
		return c.body
	}
	runes := []rune(c.body)
	return string(runes[:maxLength-3]) + "..."
}

// EstimateTokens approximates the token count of raw text as ceil(length/4)
func EstimateTokens(text string) int {
	n := utf8.RuneCountInString(text)
	return (n + 3) / 4
}
