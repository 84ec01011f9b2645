package installer

import (
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandevgo/factbot/internal/config"
	"github.com/sandevgo/factbot/internal/service/ui"
)

// Step represents a single step in the installation wizard
type Step interface {
	Init() tea.Cmd
	Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd)
	View(state *InstallState) string
}

func getSteps() []Step {
	return []Step{
		NewChoiceStep("Select your AI provider:", []item{
			{id: "openai", title: "OpenAI"},
			{id: "anthropic", title: "Anthropic"},
			{id: "openrouter", title: "OpenRouter"},
			{id: "ollama", title: "Ollama", desc: "local models"},
		}, func(st *InstallState, id string) { st.Settings.Provider = id }),
		newAPIKeyStep(),
		NewInputStep("Model name", "leave empty for the provider default",
			func(st *InstallState, v string) { st.Settings.Model = v }, optional()),
		NewChoiceStep("Where should facts and conversations be stored?", []item{
			{id: config.MemorySQLite, title: "SQLite", desc: "local file with vector search"},
			{id: config.MemoryHoncho, title: "Honcho", desc: "hosted memory service"},
		}, func(st *InstallState, id string) { st.Settings.Memory = id }),
		NewInputStep("OpenAI API key for embeddings", "sk-...",
			func(st *InstallState, v string) { st.Settings.OpenAIAPIKey = v },
			secret(),
			skipWhen(func(st *InstallState) bool {
				return st.Settings.Memory != config.MemorySQLite || st.Settings.OpenAIAPIKey != ""
			})),
		NewInputStep("Honcho API key", "",
			func(st *InstallState, v string) { st.Settings.HonchoAPIKey = v },
			secret(), optional(),
			skipWhen(func(st *InstallState) bool { return st.Settings.Memory != config.MemoryHoncho })),
		NewChoiceStep("Select the chat surface:", []item{
			{id: config.TransportDiscord, title: "Discord"},
			{id: config.TransportTelegram, title: "Telegram"},
			{id: "both", title: "Discord and Telegram"},
		}, func(st *InstallState, id string) {
			if id == "both" {
				st.Settings.Transports = []string{config.TransportDiscord, config.TransportTelegram}
				return
			}
			st.Settings.Transports = []string{id}
		}),
		NewInputStep("Discord bot token", "MTA...",
			func(st *InstallState, v string) { st.Settings.DiscordToken = v },
			secret(),
			skipWhen(func(st *InstallState) bool { return !st.usesTransport(config.TransportDiscord) })),
		NewInputStep("Telegram bot token", "123456789:ABCDEF...",
			func(st *InstallState, v string) { st.Settings.TelegramToken = v },
			secret(),
			skipWhen(func(st *InstallState) bool { return !st.usesTransport(config.TransportTelegram) })),
		NewInputStep("Telegram user ID (owner)", "123456789",
			func(st *InstallState, v string) {
				st.Settings.TelegramOwnerID, _ = strconv.ParseInt(v, 10, 64)
			},
			validateWith(func(v string) error {
				if _, err := strconv.ParseInt(v, 10, 64); err != nil {
					return fmt.Errorf("owner ID must be a number")
				}
				return nil
			}),
			skipWhen(func(st *InstallState) bool { return !st.usesTransport(config.TransportTelegram) })),
		NewSaveEnvStep(),
		NewInitializeFilesStep(),
	}
}

// newAPIKeyStep stores the key in the field that matches the chosen provider.
func newAPIKeyStep() Step {
	return NewInputStep("API key", "",
		func(st *InstallState, v string) {
			switch st.Settings.Provider {
			case "openai":
				st.Settings.OpenAIAPIKey = v
			case "anthropic":
				st.Settings.AnthropicAPIKey = v
			case "openrouter":
				st.Settings.OpenRouterAPIKey = v
			case "ollama":
				st.Settings.OllamaAPIKey = v
			}
		},
		secret(), optional())
}

type item struct {
	id    string
	title string
	desc  string
}

type nextMsg struct{}

// model is the main Bubble Tea model that orchestrates the steps
type model struct {
	steps       []Step
	currentStep int
	state       *InstallState
	quitting    bool
	width       int
	height      int
}

func initialModel() model {
	return model{
		steps:       getSteps(),
		currentStep: 0,
		state:       NewInstallState(),
	}
}

func (m model) Init() tea.Cmd {
	if len(m.steps) > 0 && m.steps[0] != nil {
		return m.steps[0].Init()
	}
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.quitting {
		return m, tea.Quit
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
	}

	if m.currentStep >= len(m.steps) {
		return m, tea.Quit
	}

	nextStep, cmd := m.steps[m.currentStep].Update(msg, m.state, m.width, m.height)

	if nextStep == nil {
		// Step indicated completion, move to next
		m.currentStep++
		if m.currentStep >= len(m.steps) {
			// All steps completed
			return m, tea.Quit
		}
		// Initialize the next step
		return m, m.steps[m.currentStep].Init()
	}

	// If the step returned a different step (e.g., for branching), update current
	if nextStep != m.steps[m.currentStep] {
		m.steps[m.currentStep] = nextStep
	}

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return "Setup cancelled.\n"
	}

	if m.currentStep >= len(m.steps) {
		return "Configuration complete!\n"
	}

	return ui.HeaderStyle.Render("Setting up FactBot") + "\n\n" + m.steps[m.currentStep].View(m.state)
}

// RunWizard starts the TUI and returns the saved settings.
func RunWizard() (*InstallState, error) {
	p := tea.NewProgram(initialModel(), tea.WithAltScreen())
	m, err := p.Run()
	if err != nil {
		return nil, err
	}

	finalModel := m.(model)
	if finalModel.quitting {
		return nil, fmt.Errorf("factbot setup interrupted")
	}

	return finalModel.state, nil
}
