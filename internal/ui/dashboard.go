package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/ashwch/handset/internal/activity"
	"github.com/ashwch/handset/internal/device"
	"github.com/ashwch/handset/internal/i18n"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("69"))
	subtitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	headingStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	onStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	offStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	hintStyle     = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("245"))
	panelStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

const dashboardActivityRows = 5

// Dashboard is everything the full-screen consoles draw between prompts.
type Dashboard struct {
	State        device.State
	LastCommand  string
	LastResponse string
	LastSuccess  bool
	Recent       []activity.Entry
	Hint         string
}

func RenderDashboard(d Dashboard, catalog i18n.Catalog) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(catalog.Console.Title))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render(catalog.Console.Subtitle))
	b.WriteString("\n\n")

	status := panelStyle.Render(RenderStatus(d.State, catalog))
	recent := d.Recent
	if len(recent) > dashboardActivityRows {
		recent = recent[:dashboardActivityRows]
	}
	log := panelStyle.Render(RenderActivity(recent, catalog))
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, status, " ", log))
	b.WriteString("\n")

	if strings.TrimSpace(d.LastCommand) != "" {
		fmt.Fprintf(&b, "\n%s: %s\n", catalog.Panel.LastCommand, d.LastCommand)
		style := okStyle
		if !d.LastSuccess {
			style = failStyle
		}
		fmt.Fprintf(&b, "%s: %s\n", catalog.Panel.Response, style.Render(d.LastResponse))
	} else {
		fmt.Fprintf(&b, "\n%s\n", catalog.Console.Ready)
	}
	if hint := strings.TrimSpace(d.Hint); hint != "" {
		b.WriteString(hintStyle.Render(fmt.Sprintf("%s: %q", catalog.Panel.Try, hint)))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderStatus lists every setting, one per line.
func RenderStatus(state device.State, catalog i18n.Catalog) string {
	lines := []string{headingStyle.Render(catalog.Panel.Device)}
	width := 0
	for _, field := range device.Fields() {
		if n := len(field.Label()); n > width {
			width = n
		}
	}
	for _, field := range device.Fields() {
		value := offStyle.Render(catalog.Panel.Off)
		if state.Bool(field) {
			value = onStyle.Render(catalog.Panel.On)
		}
		lines = append(lines, fmt.Sprintf("%-*s  %s", width, field.Label(), value))
	}
	lines = append(lines,
		fmt.Sprintf("%-*s  %d%%", width, catalog.Panel.Brightness, state.Brightness),
		fmt.Sprintf("%-*s  %d%%", width, catalog.Panel.Volume, state.Volume),
	)
	return strings.Join(lines, "\n")
}

func RenderActivity(entries []activity.Entry, catalog i18n.Catalog) string {
	lines := []string{headingStyle.Render(catalog.Panel.Activity)}
	if len(entries) == 0 {
		lines = append(lines, offStyle.Render(catalog.Panel.NoActivity))
		return strings.Join(lines, "\n")
	}
	for _, entry := range entries {
		mark := okStyle.Render("✓")
		if !entry.Success {
			mark = failStyle.Render("✗")
		}
		lines = append(lines, fmt.Sprintf("%s %s [%s] %s", entryClock(entry.Timestamp), mark, sourceLabel(entry.Source, catalog), entry.Command))
		lines = append(lines, "    "+subtitleStyle.Render(entry.Result))
	}
	return strings.Join(lines, "\n")
}

func entryClock(timestamp string) string {
	parsed, err := time.Parse(time.RFC3339, timestamp)
	if err != nil {
		return "--:--"
	}
	return parsed.Local().Format("15:04")
}

func sourceLabel(source activity.Source, catalog i18n.Catalog) string {
	if source == activity.SourceVoice {
		return catalog.Panel.Voice
	}
	return catalog.Panel.Text
}
