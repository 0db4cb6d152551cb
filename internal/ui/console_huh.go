package ui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/huh"
)

func runHuhConsole(c *Console) error {
	var last, note Reply
	for {
		description := RenderDashboard(c.Dashboard(last), c.Catalog)
		if text := strings.TrimSpace(note.Text); text != "" {
			description += "\n" + text
		}

		line := ""
		prompt := huh.NewInput().
			Title(c.Catalog.Console.Prompt).
			Description(description).
			Placeholder(c.Catalog.Console.Placeholder).
			Value(&line).
			WithTheme(huh.ThemeCharm())
		if err := prompt.Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return err
		}

		reply := c.Handle(line)
		if reply.Quit {
			return nil
		}
		note = Reply{}
		if reply.Reset {
			last = Reply{}
		}
		if reply.Outcome != nil {
			last = reply
		} else {
			note = reply
		}
	}
}
