// Package chat owns one conversation with the coaching backend: tolerant
// payload normalization, the session controller, and message categorization.
package chat

import (
	"encoding/json"
	"strings"

	"github.com/novahuman/compass/internal/models"
)

// Normalize converts a heterogeneous backend payload into an ordered list
// of chat turns. It accepts a bare array of turn-like objects or an object
// with a "messages" array; per-turn content may live under "content",
// "message" or "text", and timestamps under "ts" or "created_at". Entries
// with a role other than user/assistant, or with blank content, are
// dropped. Returns nil (not an empty slice) when nothing valid was found,
// so callers can tell "nothing parsed" from "parsed, empty conversation".
func Normalize(input interface{}) []models.ChatTurn {
	if input == nil {
		return nil
	}

	var raw []interface{}
	switch v := input.(type) {
	case []interface{}:
		raw = v
	case map[string]interface{}:
		if inner, ok := v["messages"].([]interface{}); ok {
			raw = inner
		}
	}
	if raw == nil {
		return nil
	}

	var turns []models.ChatTurn
	for _, entry := range raw {
		m, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}

		role, _ := m["role"].(string)
		if role != string(models.RoleUser) && role != string(models.RoleAssistant) {
			continue
		}

		content := firstString(m, "content", "message", "text")
		content = strings.TrimSpace(content)
		if content == "" {
			continue
		}

		turns = append(turns, models.ChatTurn{
			Role:      models.Role(role),
			Content:   content,
			Timestamp: firstString(m, "ts", "created_at"),
			Mode:      firstString(m, "mode"),
		})
	}

	if len(turns) == 0 {
		return nil
	}
	return turns
}

// NormalizeRaw decodes a raw JSON payload and normalizes it.
func NormalizeRaw(raw json.RawMessage) []models.ChatTurn {
	var decoded interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil
	}
	return Normalize(decoded)
}

// LatestAssistantText digs the most recent assistant reply out of whatever
// shape the backend returned. The fallback chain is deliberate and ordered;
// newer backends stop matching the earlier shapes:
//
//  1. last assistant turn from Normalize
//  2. scalar fields: assistant_message, assistant_text, content, message, text
//  3. an "assistant" value, as a string or an object with "content"
//  4. recursive unwrap through a "data" wrapper
//  5. the value itself, when it is a non-empty string
//
// Returns "" when every rung misses.
func LatestAssistantText(input interface{}) string {
	if input == nil {
		return ""
	}

	if turns := Normalize(input); turns != nil {
		for i := len(turns) - 1; i >= 0; i-- {
			if turns[i].Role == models.RoleAssistant {
				return turns[i].Content
			}
		}
	}

	if m, ok := input.(map[string]interface{}); ok {
		if s := firstString(m, "assistant_message", "assistant_text", "content", "message", "text"); strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}

		switch a := m["assistant"].(type) {
		case string:
			if strings.TrimSpace(a) != "" {
				return strings.TrimSpace(a)
			}
		case map[string]interface{}:
			if s, ok := a["content"].(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}

		if inner, ok := m["data"]; ok && inner != nil {
			return LatestAssistantText(inner)
		}
	}

	if s, ok := input.(string); ok && strings.TrimSpace(s) != "" {
		return strings.TrimSpace(s)
	}

	return ""
}

// LatestAssistantTextRaw decodes a raw JSON payload and extracts the latest
// assistant reply.
func LatestAssistantTextRaw(raw json.RawMessage) string {
	var decoded interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return ""
	}
	return LatestAssistantText(decoded)
}

// firstString returns the first of the named keys holding a non-empty
// string.
func firstString(m map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if s, ok := m[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
