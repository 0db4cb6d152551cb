package ui

import (
	"fmt"
	"strings"

	"github.com/ashwch/handset/internal/activity"
	"github.com/ashwch/handset/internal/device"
	"github.com/ashwch/handset/internal/engine"
	"github.com/ashwch/handset/internal/i18n"
	"github.com/ashwch/handset/internal/session"
)

// Console drives one interactive session. Every backend funnels lines
// through Handle so meta commands behave the same everywhere.
type Console struct {
	Session  *session.Session
	Catalog  i18n.Catalog
	Source   activity.Source
	Initial  device.State
	Examples []string
	// HistoryFile is used by the line console only.
	HistoryFile string
	// Commit persists the session after every recorded command. It may be nil.
	Commit func() error

	handled int
}

// Reply is what a backend shows after one line.
type Reply struct {
	Text    string
	Quit    bool
	// Reset is set once the session is back at its initial state; backends
	// drop the last outcome they were showing.
	Reset   bool
	Command string
	Outcome *engine.Outcome
}

func (c *Console) Handle(line string) Reply {
	trimmed := strings.TrimSpace(line)
	switch strings.ToLower(trimmed) {
	case "":
		return Reply{}
	case "help", "?":
		return Reply{Text: strings.Join(c.Catalog.Console.Help, "\n")}
	case "status":
		return Reply{Text: RenderStatus(c.Session.State(), c.Catalog)}
	case "log", "history":
		return Reply{Text: RenderActivity(c.Session.Recent(0), c.Catalog)}
	case "reset":
		c.Session.Reset(c.Initial)
		if err := c.commit(); err != nil {
			return Reply{Text: err.Error()}
		}
		return Reply{Text: c.Catalog.Console.ResetDone, Reset: true}
	case "exit", "quit", "bye":
		return Reply{Text: c.Catalog.Console.Goodbye, Quit: true}
	}

	source := c.Source
	if source == "" {
		source = activity.SourceText
	}
	out := c.Session.Submit(trimmed, source)
	c.handled++
	reply := Reply{Text: out.Response, Command: trimmed, Outcome: &out}
	if err := c.commit(); err != nil {
		reply.Text = fmt.Sprintf("%s\n%s", out.Response, err.Error())
	}
	return reply
}

// Dashboard builds the current view; last may be the zero Reply.
func (c *Console) Dashboard(last Reply) Dashboard {
	d := Dashboard{
		State:  c.Session.State(),
		Recent: c.Session.Recent(dashboardActivityRows),
		Hint:   c.Hint(),
	}
	if last.Outcome != nil {
		d.LastCommand = last.Command
		d.LastResponse = last.Outcome.Response
		d.LastSuccess = last.Outcome.Success
	}
	return d
}

// Hint rotates through the example commands as lines are handled.
func (c *Console) Hint() string {
	if len(c.Examples) == 0 {
		return ""
	}
	return c.Examples[c.handled%len(c.Examples)]
}

func (c *Console) commit() error {
	if c.Commit == nil {
		return nil
	}
	if err := c.Commit(); err != nil {
		return fmt.Errorf("could not save session: %w", err)
	}
	return nil
}

// RunConsole tries the full-screen backends in preference order. used is
// false when none of them could start, in which case the caller should fall
// back to the line console.
func RunConsole(backend string, c *Console) (bool, error) {
	var firstErr error
	for _, candidate := range backendCandidates(backend) {
		var err error
		switch candidate {
		case BackendBubbleTea:
			err = runTeaConsole(c)
		case BackendHuh:
			err = runHuhConsole(c)
		case BackendTView:
			err = runTViewConsole(c)
		default:
			continue
		}
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		return true, nil
	}
	return false, firstErr
}
