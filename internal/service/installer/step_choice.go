package installer

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandevgo/factbot/internal/service/ui"
)

// ChoiceStep picks one option from a fixed list.
type ChoiceStep struct {
	title   string
	choices []item
	cursor  int
	apply   func(state *InstallState, id string)
}

func NewChoiceStep(title string, choices []item, apply func(*InstallState, string)) Step {
	return &ChoiceStep{title: title, choices: choices, apply: apply}
}

func (s *ChoiceStep) Init() tea.Cmd {
	return nil
}

func (s *ChoiceStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.cursor > 0 {
				s.cursor--
			}
		case "down", "j":
			if s.cursor < len(s.choices)-1 {
				s.cursor++
			}
		case "enter":
			s.apply(state, s.choices[s.cursor].id)
			return nil, nil
		}
	}
	return s, nil
}

func (s *ChoiceStep) View(state *InstallState) string {
	var b strings.Builder
	b.WriteString(s.title + "\n\n")
	for i, choice := range s.choices {
		line := fmt.Sprintf("  %s", choice.title)
		if choice.desc != "" {
			line += " - " + choice.desc
		}
		if s.cursor == i {
			b.WriteString(ui.SelectedStyle.Render("❯"+line[1:]) + "\n")
		} else {
			b.WriteString(ui.ItemStyle.Render(line) + "\n")
		}
	}
	b.WriteString("\n(press ctrl+c to quit)\n")
	return b.String()
}
