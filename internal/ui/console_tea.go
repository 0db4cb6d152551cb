package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type teaConsoleModel struct {
	console *Console
	input   textinput.Model
	last    Reply
	note    string
	quit    bool
}

func newTeaConsoleModel(c *Console) teaConsoleModel {
	input := textinput.New()
	input.Placeholder = c.Catalog.Console.Placeholder
	input.Prompt = c.Catalog.Console.Prompt
	input.CharLimit = 512
	input.Focus()
	return teaConsoleModel{console: c, input: input}
}

func (m teaConsoleModel) Init() tea.Cmd { return textinput.Blink }

func (m teaConsoleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch k := msg.(type) {
	case tea.WindowSizeMsg:
		m.input.Width = max(k.Width-len(m.input.Prompt)-2, 10)
		return m, nil
	case tea.KeyMsg:
		switch k.String() {
		case "esc", "ctrl+c":
			m.quit = true
			return m, tea.Quit
		case "enter":
			reply := m.console.Handle(m.input.Value())
			m.input.SetValue("")
			if reply.Quit {
				m.quit = true
				return m, tea.Quit
			}
			if reply.Reset {
				m.last = Reply{}
			}
			if reply.Outcome != nil {
				m.last = reply
				m.note = ""
			} else {
				m.note = reply.Text
			}
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m teaConsoleModel) View() string {
	var b strings.Builder
	b.WriteString(RenderDashboard(m.console.Dashboard(m.last), m.console.Catalog))
	if note := strings.TrimSpace(m.note); note != "" {
		b.WriteString("\n")
		b.WriteString(note)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(hintStyle.Render(m.console.Catalog.Console.QuitHint))
	return b.String()
}

func runTeaConsole(c *Console) error {
	_, err := tea.NewProgram(newTeaConsoleModel(c), tea.WithAltScreen()).Run()
	return err
}
