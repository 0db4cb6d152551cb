package ui

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/rivo/tview"
)

const resetQuestion = "Restore the initial device settings and clear the activity log?"

// ConfirmReset asks before wiping the saved session. used is false when no
// interactive backend could ask, so the caller can decide on its own.
func ConfirmReset(backend string) (approved bool, used bool, err error) {
	var firstErr error
	for _, candidate := range backendCandidates(backend) {
		var ok bool
		switch candidate {
		case BackendBubbleTea:
			ok, err = confirmWithBubbleTea()
		case BackendHuh:
			ok, err = confirmWithHuh()
		case BackendTView:
			ok, err = confirmWithTView()
		default:
			continue
		}
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		return ok, true, nil
	}
	return false, false, firstErr
}

type confirmModel struct {
	approved bool
	done     bool
}

func (m confirmModel) Init() tea.Cmd { return nil }

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch strings.ToLower(k.String()) {
		case "y":
			m.approved = true
			m.done = true
			return m, tea.Quit
		case "n", "esc", "ctrl+c", "enter":
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m confirmModel) View() string {
	return titleStyle.Render(resetQuestion) + "\n\n" + hintStyle.Render("[y] reset  [n] keep")
}

func confirmWithBubbleTea() (bool, error) {
	final, err := tea.NewProgram(confirmModel{}, tea.WithAltScreen()).Run()
	if err != nil {
		return false, err
	}
	out, ok := final.(confirmModel)
	if !ok || !out.done {
		return false, nil
	}
	return out.approved, nil
}

func confirmWithHuh() (bool, error) {
	approved := false
	prompt := huh.NewConfirm().
		Title(resetQuestion).
		Affirmative("Reset").
		Negative("Keep").
		Value(&approved).
		WithTheme(huh.ThemeCharm())
	if err := prompt.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return approved, nil
}

func confirmWithTView() (bool, error) {
	app := tview.NewApplication()
	approved := false
	modal := tview.NewModal().
		SetText(resetQuestion).
		AddButtons([]string{"Reset", "Keep"}).
		SetDoneFunc(func(_ int, label string) {
			approved = label == "Reset"
			app.Stop()
		})
	if err := app.SetRoot(modal, true).Run(); err != nil {
		return false, err
	}
	return approved, nil
}
