package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// MockClient answers without a provider. It reads the agenda block the
// dispatcher appends to calendar prompts so offline runs still mention events.
type MockClient struct{}

// NewMockClient creates a new mock LLM client.
func NewMockClient() *MockClient {
	return &MockClient{}
}

var _ LLMClient = (*MockClient)(nil)

// CreateChatCompletion implements LLMClient.
func (m *MockClient) CreateChatCompletion(_ context.Context, req *ChatCompletionRequest) (*ChatCompletionResponse, error) {
	var system, user string
	for _, msg := range req.Messages {
		switch msg.Role {
		case "system":
			system = msg.Content
		case "user":
			user = msg.Content
		}
	}

	return &ChatCompletionResponse{
		ID:      fmt.Sprintf("mock-%d", time.Now().UnixNano()),
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   req.Model,
		Choices: []Choice{{
			Message:      &ChatMessage{Role: "assistant", Content: mockReply(system, user)},
			FinishReason: "stop",
		}},
	}, nil
}

func mockReply(system, user string) string {
	events := agendaLines(system)
	switch {
	case len(events) > 0:
		return fmt.Sprintf("[MOCK] You have %d upcoming event(s). Next: %s.", len(events), events[0])
	case strings.Contains(system, "no events available"):
		return "[MOCK] Your agenda is empty right now."
	case user == "":
		return "[MOCK] How can I help you today?"
	default:
		if len(user) > 100 {
			user = user[:100] + "..."
		}
		return fmt.Sprintf("[MOCK] You asked: %q.", user)
	}
}

// agendaLines returns the "- date: title (category)" lines of a prompt.
func agendaLines(system string) []string {
	_, block, ok := strings.Cut(system, "Upcoming events:\n")
	if !ok {
		return nil
	}
	var out []string
	for _, line := range strings.Split(block, "\n") {
		if item, ok := strings.CutPrefix(line, "- "); ok {
			out = append(out, item)
		}
	}
	return out
}
