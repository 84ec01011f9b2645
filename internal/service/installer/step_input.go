package installer

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandevgo/factbot/internal/service/ui"
)

// InputStep collects one line of text. It completes immediately when skip reports true.
type InputStep struct {
	title    string
	input    textinput.Model
	optional bool
	checked  bool
	err      error

	skip     func(state *InstallState) bool
	validate func(value string) error
	apply    func(state *InstallState, value string)
}

type inputOption func(*InputStep)

func secret() inputOption {
	return func(s *InputStep) {
		s.input.EchoMode = textinput.EchoPassword
		s.input.EchoCharacter = '•'
	}
}

func optional() inputOption {
	return func(s *InputStep) { s.optional = true }
}

func skipWhen(fn func(*InstallState) bool) inputOption {
	return func(s *InputStep) { s.skip = fn }
}

func validateWith(fn func(string) error) inputOption {
	return func(s *InputStep) { s.validate = fn }
}

func NewInputStep(title, placeholder string, apply func(*InstallState, string), opts ...inputOption) Step {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 255
	ti.Width = 40
	ti.Placeholder = placeholder

	s := &InputStep{title: title, input: ti, apply: apply}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InputStep) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, func() tea.Msg { return nextMsg{} })
}

func (s *InputStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if !s.checked {
		s.checked = true
		if s.skip != nil && s.skip(state) {
			return nil, nil
		}
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)

	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		value := s.input.Value()
		if value == "" && !s.optional {
			s.err = fmt.Errorf("a value is required")
			return s, nil
		}
		if value != "" && s.validate != nil {
			if err := s.validate(value); err != nil {
				s.err = err
				return s, nil
			}
		}
		s.apply(state, value)
		return nil, nil
	}
	return s, cmd
}

func (s *InputStep) View(state *InstallState) string {
	hint := ""
	if s.optional {
		hint = " (optional - press Enter to skip)"
	}
	view := fmt.Sprintf("%s%s:\n\n%s\n\n", s.title, hint, s.input.View())
	if s.err != nil {
		view += ui.ErrorStyle.Render(s.err.Error()) + "\n\n"
	}
	return view + "(press enter to confirm)\n"
}
