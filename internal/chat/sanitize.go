package chat

import (
	"encoding/json"
	"strings"
)

// Sanitize filters an arbitrary, possibly malformed message sequence down to a
// safe provider shape: objects with a string, non-blank content and a role of
// user or assistant. Everything else is dropped silently; order is preserved.
// Robustness over strictness: a junk entry never fails the whole request.
func Sanitize(raw []json.RawMessage) []Message {
	out := make([]Message, 0, len(raw))
	for _, entry := range raw {
		var m struct {
			Role    string          `json:"role"`
			Content json.RawMessage `json:"content"`
		}
		if err := json.Unmarshal(entry, &m); err != nil {
			continue
		}
		if m.Role != RoleUser && m.Role != RoleAssistant {
			continue
		}
		var content string
		if err := json.Unmarshal(m.Content, &content); err != nil {
			continue
		}
		if strings.TrimSpace(content) == "" {
			continue
		}
		out = append(out, Message{Role: m.Role, Content: content})
	}
	return out
}
