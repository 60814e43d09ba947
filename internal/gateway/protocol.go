package gateway

import "github.com/xiaot623/assistant/internal/domain"

// Message types from client to gateway
const (
	TypeHello = "hello"
	TypeChat  = "chat"
)

// Message types from gateway to client
const (
	TypeHelloAck = "hello_ack"
	TypeReply    = "reply"
	TypeError    = "error"
)

// Error codes
const (
	ErrorCodeInvalidMessage  = "invalid_message"
	ErrorCodeSessionRequired = "session_required"
	ErrorCodeUnavailable     = "orchestrator_unavailable"
)

// BaseMessage contains the fields shared by every frame.
type BaseMessage struct {
	Type      string `json:"type"`
	Ts        int64  `json:"ts"`
	RequestID string `json:"request_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// HelloMessage binds a connection to a session.
type HelloMessage struct {
	BaseMessage
	UserID string `json:"user_id,omitempty"`
}

// ChatMessage carries one user utterance.
type ChatMessage struct {
	BaseMessage
	Message string `json:"message"`
}

// ReplyMessage carries the orchestrator's answer.
type ReplyMessage struct {
	BaseMessage
	domain.DispatchResult
}

// ErrorMessage reports a failed frame.
type ErrorMessage struct {
	BaseMessage
	Code    string `json:"code"`
	Message string `json:"message"`
}
