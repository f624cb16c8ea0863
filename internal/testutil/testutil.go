// Package testutil contains helper builders used across tests to reduce
// boilerplate when constructing transcripts and tool calls. These helpers
// are intentionally minimal and avoid adding third-party dependencies. They
// are not intended for production usage.
package testutil

import "github.com/hupe1980/agentswarm/core"

// Conversation provides a fluent helper for building message transcripts in
// tests. Example:
//
//	msgs := NewConversation().User("hi").Assistant("support", "hello").Messages()
//
// Chain only the turns you need.
type Conversation struct {
	messages []core.Message
}

// NewConversation creates an empty transcript builder.
func NewConversation() *Conversation { return &Conversation{} }

// System appends a system message (chainable).
func (c *Conversation) System(text string) *Conversation {
	c.messages = append(c.messages, core.NewSystemMessage(text))
	return c
}

// User appends a user message (chainable).
func (c *Conversation) User(text string) *Conversation {
	c.messages = append(c.messages, core.NewUserMessage(text))
	return c
}

// Assistant appends an assistant text message attributed to sender (chainable).
func (c *Conversation) Assistant(sender, text string) *Conversation {
	c.messages = append(c.messages, core.NewAssistantMessage(sender, text))
	return c
}

// AssistantCalls appends an assistant message requesting the given tool calls
// (chainable).
func (c *Conversation) AssistantCalls(sender string, calls ...core.ToolCall) *Conversation {
	c.messages = append(c.messages, core.NewAssistantMessage(sender, "", calls...))
	return c
}

// ToolResult appends a tool message answering callID (chainable).
func (c *Conversation) ToolResult(callID, toolName, content string) *Conversation {
	c.messages = append(c.messages, core.NewToolMessage(callID, toolName, content))
	return c
}

// Messages returns a copy of the transcript built so far.
func (c *Conversation) Messages() []core.Message {
	return append([]core.Message(nil), c.messages...)
}

// Call constructs a function tool call with a JSON argument string.
func Call(id, name, args string) core.ToolCall {
	return core.ToolCall{
		ID:   id,
		Type: "function",
		Function: core.FunctionCall{
			Name:      name,
			Arguments: args,
		},
	}
}
