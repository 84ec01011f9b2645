package chain

import (
	"testing"

	"github.com/sandevgo/factbot/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumberedList(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{name: "blank", input: "  \n", want: []string{}},
		{name: "none marker", input: "None", want: []string{}},
		{name: "none marker with period", input: "none.", want: []string{}},
		{name: "no new facts", input: "No new facts", want: []string{}},
		{name: "empty json list", input: "[]", want: []string{}},
		{name: "dot numbering", input: "1. Name is Alex\n2. Lives in Boston", want: []string{"Name is Alex", "Lives in Boston"}},
		{name: "paren numbering and blank lines", input: "\n1) Likes tea\n\n2) Has a cat  \n", want: []string{"Likes tea", "Has a cat"}},
		{name: "indented", input: "  1. Works remotely", want: []string{"Works remotely"}},
		{name: "preamble text", input: "Here are the facts:\n1. Likes tea", wantErr: true},
		{name: "bullets", input: "- Likes tea\n- Has a cat", wantErr: true},
		{name: "number without text", input: "1.", wantErr: true},
		{name: "prose", input: "The user seems happy.", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseNumberedList(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, core.ErrParse)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
