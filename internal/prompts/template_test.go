package prompts

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplate_Render(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		vars    map[string]string
		want    string
		wantErr bool
	}{
		{
			name: "single placeholder",
			text: "Message: {user_input}",
			vars: map[string]string{"user_input": "hi"},
			want: "Message: hi",
		},
		{
			name: "escaped braces",
			text: `Output {{"facts": []}} for {user_input}`,
			vars: map[string]string{"user_input": "x"},
			want: `Output {"facts": []} for x`,
		},
		{
			name: "value with braces is not expanded",
			text: "{user_input}",
			vars: map[string]string{"user_input": "{facts}"},
			want: "{facts}",
		},
		{
			name:    "missing binding",
			text:    "{user_input} {facts}",
			vars:    map[string]string{"user_input": "x"},
			wantErr: true,
		},
		{
			name:    "unclosed placeholder",
			text:    "{user_input",
			vars:    map[string]string{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl := &Template{Name: "test", Text: tt.text}
			got, err := tpl.Render(tt.vars)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_ValidatesDeclaredVariables(t *testing.T) {
	_, err := Parse([]byte("name: x\ninput_variables: [a]\ntemplate: \"{a} {b}\"\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("name: x\ninput_variables: [a, b]\ntemplate: \"{a}\"\n"))
	assert.Error(t, err)

	tpl, err := Parse([]byte("name: x\nversion: 2\ninput_variables: [b, a]\ntemplate: \"{a} {b} {a}\"\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, tpl.Version)
}

func TestLoad_Embedded(t *testing.T) {
	set, err := Load(context.Background(), "")
	require.NoError(t, err)

	for _, name := range Names() {
		_, err := set.Get(name)
		assert.NoError(t, err, name)
	}

	out, err := set.Render(DeriveFacts, map[string]string{VarUserInput: "My name is Alex"})
	require.NoError(t, err)
	assert.Contains(t, out, "My name is Alex")
}

func TestLoad_Override(t *testing.T) {
	dir := t.TempDir()
	custom := "name: response\nversion: 7\ninput_variables: [facts]\ntemplate: \"Known: {facts}\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "response.yaml"), []byte(custom), 0644))

	set, err := Load(context.Background(), dir)
	require.NoError(t, err)

	out, err := set.Render(Response, map[string]string{VarFacts: "Lives in Boston"})
	require.NoError(t, err)
	assert.Equal(t, "Known: Lives in Boston", out)
}

func TestLoad_OverrideWithWrongPlaceholders(t *testing.T) {
	dir := t.TempDir()
	custom := "name: response\ninput_variables: [user_input]\ntemplate: \"{user_input}\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "response.yaml"), []byte(custom), 0644))

	_, err := Load(context.Background(), dir)
	assert.Error(t, err)
}

func TestLoad_IntrospectionUsesUserInput(t *testing.T) {
	set, err := Load(context.Background(), "")
	require.NoError(t, err)

	out, err := set.Render(Introspection, map[string]string{
		VarChatHistory: "user: hi",
		VarUserInput:   "Where do I live?",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "Where do I live?")

	dir := t.TempDir()
	custom := "name: introspection\ninput_variables: [chat_history, input]\ntemplate: \"{chat_history} {input}\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "introspection.yaml"), []byte(custom), 0644))

	_, err = Load(context.Background(), dir)
	assert.Error(t, err)
}

func TestExport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "prompts")

	written, err := Export(dir)
	require.NoError(t, err)
	assert.Len(t, written, len(Names()))

	custom := []byte("edited")
	require.NoError(t, os.WriteFile(filepath.Join(dir, Response+".yaml"), custom, 0644))

	written, err = Export(dir)
	require.NoError(t, err)
	assert.Empty(t, written)

	data, err := os.ReadFile(filepath.Join(dir, Response+".yaml"))
	require.NoError(t, err)
	assert.Equal(t, custom, data)

	_, err = Load(context.Background(), t.TempDir())
	require.NoError(t, err)
}
