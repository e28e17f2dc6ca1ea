// Package convo provides conversational turn classification: message history
// types, the mode detector and negation/ban resolution. The caller owns the
// Session Context; this package only reads it.
package convo

import "strings"

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single conversation turn.
type Message struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// FlattenHistory renders the last window messages as plain text for the
// classifier prompt, oldest first.
func FlattenHistory(history []Message, window int) string {
	if window > 0 && len(history) > window {
		history = history[len(history)-window:]
	}

	var sb strings.Builder
	for _, m := range history {
		role := "ผู้ใช้"
		if m.Role == RoleAssistant {
			role = "AI"
		}
		sb.WriteString(role)
		sb.WriteString(": ")
		sb.WriteString(m.Text)
		sb.WriteString("\n")
	}
	return sb.String()
}
