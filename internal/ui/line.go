package ui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
)

var metaCommands = []string{"help", "status", "log", "reset", "exit"}

// RunLineConsole is the plain prompt used when no full-screen backend can
// start, or when the user asked for it. stdin and stdout may be nil to use
// the terminal.
func RunLineConsole(c *Console, stdin io.ReadCloser, stdout io.Writer) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          c.Catalog.Console.Prompt,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		HistoryFile:     c.HistoryFile,
		AutoComplete:    lineCompleter(c.Examples),
		Stdin:           stdin,
		Stdout:          stdout,
	})
	if err != nil {
		return fmt.Errorf("could not start line console: %w", err)
	}
	defer rl.Close()

	out := rl.Stdout()
	fmt.Fprintln(out, c.Catalog.Console.Title)
	fmt.Fprintln(out, c.Catalog.Console.Subtitle)
	if hint := c.Hint(); hint != "" {
		fmt.Fprintf(out, "%s: %q\n", c.Catalog.Panel.Try, hint)
	}

	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if line == "" {
					return nil
				}
				continue
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		reply := c.Handle(line)
		if text := strings.TrimSpace(reply.Text); text != "" {
			fmt.Fprintln(out, text)
		}
		if reply.Quit {
			return nil
		}
	}
}

func lineCompleter(examples []string) *readline.PrefixCompleter {
	items := make([]readline.PrefixCompleterInterface, 0, len(metaCommands)+len(examples))
	for _, command := range metaCommands {
		items = append(items, readline.PcItem(command))
	}
	for _, example := range examples {
		items = append(items, readline.PcItem(strings.ToLower(example)))
	}
	return readline.NewPrefixCompleter(items...)
}
