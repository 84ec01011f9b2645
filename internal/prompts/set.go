package prompts

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/sandevgo/factbot/configs"
	"github.com/sandevgo/factbot/pkg/log"
)

const (
	DeriveFacts   = "derive_facts"
	CheckDupFacts = "check_dup_facts"
	Introspection = "introspection"
	Response      = "response"
)

// Placeholder names shared by the templates.
const (
	VarUserInput     = "user_input"
	VarChatHistory   = "chat_history"
	VarFacts         = "facts"
	VarExistingFacts = "existing_facts"
)

var required = map[string][]string{
	DeriveFacts:   {VarUserInput},
	CheckDupFacts: {VarExistingFacts, VarFacts},
	Introspection: {VarChatHistory, VarUserInput},
	Response:      {VarFacts},
}

// Names lists the templates every Set must contain.
func Names() []string {
	return []string{DeriveFacts, CheckDupFacts, Introspection, Response}
}

// Set is the immutable collection of templates loaded at startup.
type Set struct {
	templates map[string]*Template
}

// NewSet validates that all required templates are present with their expected placeholders.
func NewSet(templates ...*Template) (*Set, error) {
	s := &Set{templates: make(map[string]*Template, len(templates))}
	for _, t := range templates {
		s.templates[t.Name] = t
	}

	for _, name := range Names() {
		t, ok := s.templates[name]
		if !ok {
			return nil, fmt.Errorf("missing prompt template %q", name)
		}
		got, err := t.Placeholders()
		if err != nil {
			return nil, err
		}
		want := slices.Clone(required[name])
		slices.Sort(want)
		if !slices.Equal(got, want) {
			return nil, fmt.Errorf("template %s: expects placeholders %v, has %v", name, want, got)
		}
	}
	return s, nil
}

// Load reads the embedded templates. A file <overrideDir>/<name>.yaml replaces the embedded one.
func Load(ctx context.Context, overrideDir string) (*Set, error) {
	logger := log.FromCtx(ctx)
	templates := make([]*Template, 0, len(required))

	for _, name := range Names() {
		data, source, err := readTemplate(overrideDir, name)
		if err != nil {
			return nil, err
		}
		t, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", source, err)
		}
		if t.Name != name {
			return nil, fmt.Errorf("%s: template is named %q, want %q", source, t.Name, name)
		}
		logger.Debug().Str("template", name).Int("version", t.Version).Str("source", source).Msg("loaded prompt template")
		templates = append(templates, t)
	}

	return NewSet(templates...)
}

func readTemplate(overrideDir, name string) ([]byte, string, error) {
	file := name + ".yaml"
	if overrideDir != "" {
		path := filepath.Join(overrideDir, file)
		data, err := os.ReadFile(path)
		if err == nil {
			return data, path, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, "", fmt.Errorf("read %s: %w", path, err)
		}
	}

	embedded := "prompts/" + file
	data, err := configs.FS.ReadFile(embedded)
	if err != nil {
		return nil, "", fmt.Errorf("read embedded %s: %w", embedded, err)
	}
	return data, "embedded:" + embedded, nil
}

func (s *Set) Get(name string) (*Template, error) {
	t, ok := s.templates[name]
	if !ok {
		return nil, fmt.Errorf("unknown prompt template %q", name)
	}
	return t, nil
}

func (s *Set) Render(name string, vars map[string]string) (string, error) {
	t, err := s.Get(name)
	if err != nil {
		return "", err
	}
	return t.Render(vars)
}

// Export writes the embedded templates into dir for editing. Existing files are left untouched.
func Export(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}

	var written []string
	for _, name := range Names() {
		dst := filepath.Join(dir, name+".yaml")
		if _, err := os.Stat(dst); err == nil {
			continue
		}
		data, err := configs.FS.ReadFile("prompts/" + name + ".yaml")
		if err != nil {
			return written, fmt.Errorf("read embedded %s: %w", name, err)
		}
		if err := os.WriteFile(dst, data, 0644); err != nil {
			return written, fmt.Errorf("write %s: %w", dst, err)
		}
		written = append(written, dst)
	}
	return written, nil
}
