// Package tokenizer estimates prompt sizes so callers can enforce token
// budgets before a request ever reaches a backend. A fast heuristic counter
// works everywhere; a tiktoken-backed counter gives exact counts for OpenAI
// model families.
package tokenizer

import "github.com/hupe1980/agentswarm/core"

// Per-message framing overhead and reply priming, per the OpenAI chat format.
const (
	tokensPerMessage = 4
	tokensPerReply   = 3
)

// Counter estimates token usage for text and chat transcripts.
type Counter interface {
	// CountText returns the token count of a single string.
	CountText(text string) int

	// CountMessages returns the token count of a full request transcript,
	// including per-message framing overhead.
	CountMessages(messages []core.Message) int
}

// HeuristicCounter approximates tokens as len(text)/4, the common rule of
// thumb for English prose. It needs no encoding data and never fails, at the
// cost of accuracy on code or non-Latin scripts.
type HeuristicCounter struct{}

// NewHeuristicCounter creates a heuristic token counter.
func NewHeuristicCounter() *HeuristicCounter {
	return &HeuristicCounter{}
}

// CountText returns the token count of a single string.
func (c *HeuristicCounter) CountText(text string) int {
	if text == "" {
		return 0
	}

	return len(text)/4 + 1
}

// CountMessages returns the token count of a full request transcript.
func (c *HeuristicCounter) CountMessages(messages []core.Message) int {
	return countMessages(c, messages)
}

// countMessages sums per-message content through any Counter's CountText,
// shared by all implementations.
func countMessages(c Counter, messages []core.Message) int {
	total := tokensPerReply
	for _, msg := range messages {
		total += tokensPerMessage
		total += c.CountText(msg.Content)
		total += c.CountText(msg.Sender)

		for _, call := range msg.ToolCalls {
			total += c.CountText(call.Function.Name)
			total += c.CountText(call.Function.Arguments)
		}
	}

	return total
}
