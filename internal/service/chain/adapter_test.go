package chain

import (
	"testing"

	"github.com/sandevgo/factbot/internal/core"
	"github.com/stretchr/testify/assert"
)

func TestToMessages(t *testing.T) {
	tests := []struct {
		name  string
		turns []core.Turn
		want  []core.Message
	}{
		{
			name:  "empty",
			turns: nil,
			want:  []core.Message{},
		},
		{
			name: "roles follow the user flag in order",
			turns: []core.Turn{
				{IsUser: true, Content: "Hi"},
				{IsUser: false, Content: "Hello!"},
				{IsUser: true, Content: "I live in Boston"},
			},
			want: []core.Message{
				{Role: core.RoleUser, Content: "Hi"},
				{Role: core.RoleAssistant, Content: "Hello!"},
				{Role: core.RoleUser, Content: "I live in Boston"},
			},
		},
		{
			name:  "consecutive assistant turns",
			turns: []core.Turn{{Content: "a"}, {Content: "b"}},
			want: []core.Message{
				{Role: core.RoleAssistant, Content: "a"},
				{Role: core.RoleAssistant, Content: "b"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToMessages(tt.turns)
			assert.Len(t, got, len(tt.turns))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatHistory(t *testing.T) {
	assert.Equal(t, "(no previous messages)", FormatHistory(nil))
	assert.Equal(t, "User: hi\nAssistant: hello", FormatHistory([]core.Message{
		{Role: core.RoleSystem, Content: "ignored"},
		{Role: core.RoleUser, Content: "hi"},
		{Role: core.RoleAssistant, Content: "hello"},
	}))
}

func TestFormatFacts(t *testing.T) {
	assert.Equal(t, "None", FormatFacts(nil))
	assert.Equal(t, "1. Name is Alex\n2. Lives in Boston", FormatFacts([]string{"Name is Alex", "Lives in Boston"}))
}
