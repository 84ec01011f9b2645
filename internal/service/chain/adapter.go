package chain

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/sandevgo/factbot/internal/core"
)

// ToMessages maps stored turns to prompt messages, keeping order.
func ToMessages(turns []core.Turn) []core.Message {
	return lo.Map(turns, func(t core.Turn, _ int) core.Message {
		role := core.RoleAssistant
		if t.IsUser {
			role = core.RoleUser
		}
		return core.Message{Role: role, Content: t.Content}
	})
}

// FormatHistory renders messages as a plain transcript for template placeholders.
func FormatHistory(history []core.Message) string {
	if len(history) == 0 {
		return "(no previous messages)"
	}

	var b strings.Builder
	for _, m := range history {
		switch m.Role {
		case core.RoleUser:
			b.WriteString("User: ")
		case core.RoleAssistant:
			b.WriteString("Assistant: ")
		default:
			continue
		}
		b.WriteString(m.Content)
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatFacts renders facts as a numbered list, or "None".
func FormatFacts(facts []string) string {
	if len(facts) == 0 {
		return "None"
	}

	var b strings.Builder
	for i, f := range facts {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. %s", i+1, f)
	}
	return b.String()
}
