package models

import "time"

// Role identifies the author of a chat turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatTurn represents one message in a conversation, oldest first.
// Turns are immutable once appended; only the containing slice changes.
type ChatTurn struct {
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"ts,omitempty"`
	Mode      string `json:"mode,omitempty"`
}

// SessionSummary represents one entry in the remote session list.
type SessionSummary struct {
	SID       string    `json:"sid"`
	Title     string    `json:"title"`
	Last      string    `json:"last"`
	UpdatedAt time.Time `json:"updated_at"`
	Count     int       `json:"count"`
}

// ChatRequest is the payload for sending one user message.
type ChatRequest struct {
	SID                string       `json:"sid"`
	Message            string       `json:"message"`
	SystemInstructions string       `json:"system"`
	Context            *ChatContext `json:"context,omitempty"`
}

// ChatContext carries execution context so replies stay aligned with the
// user's current direction and check-in.
type ChatContext struct {
	Direction   string `json:"direction,omitempty"`
	TodayAction string `json:"todayAction,omitempty"`
	Tone        string `json:"tone,omitempty"`
	Category    string `json:"category"`
}
