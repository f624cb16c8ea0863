package core

// Role identifies the author class of a chat message.
type Role string

const (
	// RoleSystem marks instruction messages injected ahead of the transcript.
	RoleSystem Role = "system"
	// RoleUser marks end-user input.
	RoleUser Role = "user"
	// RoleAssistant marks model output, including tool call requests.
	RoleAssistant Role = "assistant"
	// RoleTool marks tool execution results fed back to the model.
	RoleTool Role = "tool"
)

// FunctionCall carries the name and raw JSON arguments of a requested tool
// invocation. Arguments stay serialized until the executing side parses them.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolCall is a single model-requested tool invocation. The ID correlates the
// request with the tool message answering it.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

// Message is one transcript entry in OpenAI-compatible wire shape. Sender
// carries the emitting agent's name on assistant messages so multi-agent
// transcripts stay attributable.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	Sender     string     `json:"sender,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	ToolName   string     `json:"tool_name,omitempty"`
}

// NewSystemMessage creates a system role message.
func NewSystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// NewUserMessage creates a user role message.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage creates an assistant role message attributed to sender.
func NewAssistantMessage(sender, content string, toolCalls ...ToolCall) Message {
	return Message{Role: RoleAssistant, Content: content, Sender: sender, ToolCalls: toolCalls}
}

// NewToolMessage creates a tool role message answering the given call.
func NewToolMessage(callID, toolName, content string) Message {
	return Message{Role: RoleTool, Content: content, ToolCallID: callID, ToolName: toolName}
}

// HasToolCalls reports whether the message requests at least one tool
// invocation.
func (m Message) HasToolCalls() bool {
	return len(m.ToolCalls) > 0
}
