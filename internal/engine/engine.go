// Package engine turns free-text commands into device state transitions.
package engine

import (
	"github.com/ashwch/handset/internal/device"
	"github.com/ashwch/handset/internal/router"
)

const (
	ResponseEmptyInput = "I did not catch that command."
	ResponseNoMatch    = "I couldn't map that request to a phone control just yet."
)

// Outcome is the result of interpreting one command.
type Outcome struct {
	NextState device.State  `json:"next_state"`
	Response  string        `json:"response"`
	Success   bool          `json:"success"`
	Intent    router.Intent `json:"intent"`
	Rule      string        `json:"rule,omitempty"`
}

// Interpret normalizes raw, matches it against the rule table and applies the
// winning rule to state. It never fails: empty input and unrecognised
// commands come back as unsuccessful outcomes with state unchanged.
func Interpret(state device.State, raw string) Outcome {
	normalized, err := Normalize(raw)
	if err != nil {
		return Outcome{NextState: state, Response: ResponseEmptyInput, Intent: router.IntentNone}
	}
	match, ok := router.Match(normalized)
	if !ok {
		return Outcome{NextState: state, Response: ResponseNoMatch, Intent: router.IntentNone}
	}
	return Apply(state, match)
}
