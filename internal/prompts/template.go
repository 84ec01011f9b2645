package prompts

import (
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Template is an instruction text with named {placeholders}.
// Literal braces are written as {{ and }}.
type Template struct {
	Name           string   `yaml:"name"`
	Version        int      `yaml:"version"`
	InputVariables []string `yaml:"input_variables"`
	Text           string   `yaml:"template"`
}

// Parse decodes a YAML template and checks that the declared input
// variables match the placeholders used in the text.
func Parse(data []byte) (*Template, error) {
	var t Template
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode template: %w", err)
	}
	if t.Name == "" {
		return nil, fmt.Errorf("template has no name")
	}
	if strings.TrimSpace(t.Text) == "" {
		return nil, fmt.Errorf("template %s: empty text", t.Name)
	}

	used, err := t.Placeholders()
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", t.Name, err)
	}

	declared := slices.Clone(t.InputVariables)
	slices.Sort(declared)
	if !slices.Equal(used, slices.Compact(declared)) {
		return nil, fmt.Errorf("template %s: declares %v but uses %v", t.Name, t.InputVariables, used)
	}
	return &t, nil
}

// Placeholders returns the sorted, unique placeholder names used in the text.
func (t *Template) Placeholders() ([]string, error) {
	var names []string
	_, err := expand(t.Text, func(name string) (string, error) {
		names = append(names, name)
		return "", nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(names)
	return slices.Compact(names), nil
}

// Render substitutes every placeholder. A missing binding is an error.
func (t *Template) Render(vars map[string]string) (string, error) {
	out, err := expand(t.Text, func(name string) (string, error) {
		v, ok := vars[name]
		if !ok {
			return "", fmt.Errorf("missing value for {%s}", name)
		}
		return v, nil
	})
	if err != nil {
		return "", fmt.Errorf("render %s: %w", t.Name, err)
	}
	return out, nil
}

func expand(text string, lookup func(name string) (string, error)) (string, error) {
	var b strings.Builder
	b.Grow(len(text))

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '{' && i+1 < len(text) && text[i+1] == '{':
			b.WriteByte('{')
			i++
		case c == '}' && i+1 < len(text) && text[i+1] == '}':
			b.WriteByte('}')
			i++
		case c == '{':
			end := strings.IndexByte(text[i+1:], '}')
			if end < 0 {
				return "", fmt.Errorf("unclosed placeholder at offset %d", i)
			}
			name := text[i+1 : i+1+end]
			if !isIdent(name) {
				return "", fmt.Errorf("invalid placeholder {%s}", name)
			}
			v, err := lookup(name)
			if err != nil {
				return "", err
			}
			b.WriteString(v)
			i += end + 1
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
