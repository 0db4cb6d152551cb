// Package session owns the authoritative device state and serializes every
// command applied to it.
package session

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/ashwch/handset/internal/activity"
	"github.com/ashwch/handset/internal/appdirs"
	"github.com/ashwch/handset/internal/device"
	"github.com/ashwch/handset/internal/engine"
)

const SnapshotFileName = "device.json"

type Options struct {
	State  device.State
	Log    activity.Log
	Logger *slog.Logger
}

type Session struct {
	mu     sync.Mutex
	state  device.State
	log    activity.Log
	logger *slog.Logger
}

func New(opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{state: opts.State, log: opts.Log, logger: logger}
}

// Submit interprets raw against the current state, commits the next state
// and records the command in the activity log. Blank input produces the
// engine's empty-input outcome and is not recorded.
func (s *Session) Submit(raw string, source activity.Source) engine.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := engine.Interpret(s.state, raw)
	if strings.TrimSpace(raw) == "" {
		s.logger.Debug("ignored empty command", "source", source)
		return out
	}

	s.state = out.NextState
	s.log.Append(raw, out.Response, out.Success, source)
	s.logger.Info("command interpreted",
		"intent", out.Intent,
		"rule", out.Rule,
		"success", out.Success,
		"source", source,
	)
	if violations := s.state.Violations(); len(violations) > 0 {
		s.logger.Warn("device state is inconsistent", "violations", violations)
	}
	return out
}

func (s *Session) State() device.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Recent(n int) []activity.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.log.Recent(n)
}

// Reset replaces the state and clears the activity log.
func (s *Session) Reset(state device.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.log.Clear()
	s.logger.Info("session reset")
}

// Save writes the snapshot and activity log. Either path may be empty to
// skip that file.
func (s *Session) Save(snapshotPath, activityPath string) error {
	s.mu.Lock()
	state := s.state
	log := s.log
	log.Entries = s.log.Recent(0)
	s.mu.Unlock()

	if snapshotPath != "" {
		if err := SaveSnapshot(snapshotPath, state); err != nil {
			return err
		}
	}
	if activityPath != "" {
		if err := activity.Save(activityPath, log); err != nil {
			return err
		}
	}
	return nil
}

// LoadSnapshot reads a saved device state. A missing file yields fallback.
func LoadSnapshot(path string, fallback device.State) (device.State, error) {
	bytes, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return fallback, nil
	}
	if err != nil {
		return device.State{}, fmt.Errorf("could not read device snapshot: %w", err)
	}
	state := fallback
	if err := json.Unmarshal(bytes, &state); err != nil {
		return device.State{}, fmt.Errorf("could not parse device snapshot: %w", err)
	}
	return state.Settle(), nil
}

func SaveSnapshot(path string, state device.State) error {
	payload, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("could not encode device snapshot: %w", err)
	}
	return appdirs.WriteFileAtomic(path, payload, "device snapshot")
}

func SnapshotPath() (string, error) {
	return appdirs.StateFilePath(SnapshotFileName)
}
