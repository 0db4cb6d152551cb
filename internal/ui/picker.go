package ui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/rivo/tview"
)

// PickExample lets the user choose one example command. ok is false when the
// picker was cancelled or no backend could start.
func PickExample(backend string, title string, examples []string) (string, bool, error) {
	options := pickerOptions(examples)
	if len(options) == 0 {
		return "", false, nil
	}

	var firstErr error
	for _, candidate := range backendCandidates(backend) {
		var (
			picked string
			err    error
		)
		switch candidate {
		case BackendBubbleTea:
			picked, err = pickWithBubbleTea(title, options)
		case BackendHuh:
			picked, err = pickWithHuh(title, options)
		case BackendTView:
			picked, err = pickWithTView(title, options)
		default:
			continue
		}
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		return picked, picked != "", nil
	}
	return "", false, firstErr
}

func pickerOptions(examples []string) []string {
	options := make([]string, 0, len(examples))
	seen := map[string]struct{}{}
	for _, example := range examples {
		command := strings.TrimSpace(example)
		if command == "" {
			continue
		}
		key := strings.ToLower(command)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		options = append(options, command)
	}
	return options
}

func pickWithHuh(title string, options []string) (string, error) {
	huhOptions := make([]huh.Option[string], 0, len(options))
	for _, option := range options {
		huhOptions = append(huhOptions, huh.NewOption(option, option))
	}

	choice := options[0]
	prompt := huh.NewSelect[string]().
		Title(title).
		Options(huhOptions...).
		Filtering(true).
		Height(huhSelectHeight(len(huhOptions))).
		Value(&choice).
		WithTheme(huh.ThemeCharm())

	if err := prompt.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(choice), nil
}

type pickerItem string

func (i pickerItem) Title() string       { return string(i) }
func (i pickerItem) Description() string { return "" }
func (i pickerItem) FilterValue() string { return string(i) }

type pickerModel struct {
	list    list.Model
	picked  string
	options int
}

func (m pickerModel) Init() tea.Cmd { return nil }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch k := msg.(type) {
	case tea.WindowSizeMsg:
		width, height := bubblePickerSize(k.Width, k.Height, m.options)
		m.list.SetSize(width, height)
		return m, nil
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch k.String() {
		case "q", "esc", "ctrl+c":
			m.picked = ""
			return m, tea.Quit
		case "enter":
			if item, ok := m.list.SelectedItem().(pickerItem); ok {
				m.picked = string(item)
			}
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m pickerModel) View() string {
	return m.list.View()
}

func newPickerModel(title string, options []string) pickerModel {
	items := make([]list.Item, 0, len(options))
	for _, option := range options {
		items = append(items, pickerItem(option))
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetSpacing(0)

	width, height := bubblePickerSize(80, 24, len(items))
	picker := list.New(items, delegate, width, height)
	picker.Title = title
	picker.SetShowHelp(false)
	picker.SetFilteringEnabled(true)
	return pickerModel{list: picker, options: len(items)}
}

func pickWithBubbleTea(title string, options []string) (string, error) {
	final, err := tea.NewProgram(newPickerModel(title, options), tea.WithAltScreen()).Run()
	if err != nil {
		return "", err
	}
	out, ok := final.(pickerModel)
	if !ok {
		return "", nil
	}
	return strings.TrimSpace(out.picked), nil
}

func pickWithTView(title string, options []string) (string, error) {
	app := tview.NewApplication()
	listView := tview.NewList()
	listView.SetBorder(true)
	listView.SetTitle(" " + title + " ")
	listView.ShowSecondaryText(false)

	picked := ""
	for _, option := range options {
		current := option
		listView.AddItem(current, "", 0, func() {
			picked = current
			app.Stop()
		})
	}
	listView.SetDoneFunc(func() {
		app.Stop()
	})

	if err := app.SetRoot(listView, true).SetFocus(listView).Run(); err != nil {
		return "", err
	}
	return picked, nil
}

func clampInt(v, minV, maxV int) int {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

func bubblePickerSize(termWidth, termHeight, optionCount int) (int, int) {
	if termWidth <= 0 {
		termWidth = 80
	}
	if termHeight <= 0 {
		termHeight = 24
	}
	optionCount = max(optionCount, 1)

	minWidth := min(32, termWidth)
	width := clampInt(termWidth-4, minWidth, termWidth)

	desiredHeight := clampInt(optionCount, 3, 12) + 6
	maxHeight := termHeight - 2
	if maxHeight <= 0 {
		maxHeight = max(termHeight, 1)
	}
	minHeight := min(8, maxHeight)
	return width, clampInt(desiredHeight, minHeight, maxHeight)
}

func huhSelectHeight(optionCount int) int {
	return clampInt(max(optionCount, 1)+1, 4, 10)
}
