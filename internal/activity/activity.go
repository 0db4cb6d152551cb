// Package activity keeps the short, newest-first log of interpreted commands.
package activity

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ashwch/handset/internal/appdirs"
	"github.com/ashwch/handset/internal/safety"
)

const (
	storeFileName    = "activity.json"
	DefaultRetention = 14
	maxRetention     = 500
)

type Source string

const (
	SourceVoice Source = "voice"
	SourceText  Source = "text"
)

func ParseSource(raw string) (Source, error) {
	switch Source(strings.ToLower(strings.TrimSpace(raw))) {
	case SourceVoice:
		return SourceVoice, nil
	case SourceText:
		return SourceText, nil
	default:
		return "", fmt.Errorf("invalid source %q (expected voice or text)", raw)
	}
}

type Entry struct {
	ID        string `json:"id"`
	Command   string `json:"command"`
	Timestamp string `json:"timestamp"`
	Result    string `json:"result"`
	Success   bool   `json:"success"`
	Source    Source `json:"source"`
}

// Log is capped at Retention entries, newest first. Retention and Redact are
// runtime settings and are not persisted with the entries.
type Log struct {
	Entries   []Entry `json:"entries"`
	Retention int     `json:"-"`
	Redact    bool    `json:"-"`
}

func New(retention int, redact bool) Log {
	return Log{Retention: clampRetention(retention), Redact: redact}
}

func Load(retention int) (Log, string, error) {
	path, err := appdirs.StateFilePath(storeFileName)
	if err != nil {
		return Log{}, "", err
	}
	log, err := LoadFile(path, retention)
	if err != nil {
		return Log{}, "", err
	}
	return log, path, nil
}

func LoadFile(path string, retention int) (Log, error) {
	log := New(retention, false)
	bytes, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return log, nil
	}
	if err != nil {
		return Log{}, fmt.Errorf("could not read activity log: %w", err)
	}
	if err := json.Unmarshal(bytes, &log); err != nil {
		return Log{}, fmt.Errorf("could not parse activity log: %w", err)
	}
	log.normalize()
	return log, nil
}

func Save(path string, log Log) error {
	log.normalize()
	if log.Entries == nil {
		log.Entries = []Entry{}
	}
	payload, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return fmt.Errorf("could not encode activity log: %w", err)
	}
	return appdirs.WriteFileAtomic(path, payload, "activity")
}

// Append records one interpreted command at the head of the log and drops
// whatever falls past the retention cap.
func (l *Log) Append(command, result string, success bool, source Source) Entry {
	command = strings.TrimSpace(command)
	if l.Redact {
		command = safety.RedactText(command)
		result = safety.RedactText(result)
	}
	if source == "" {
		source = SourceText
	}
	entry := Entry{
		ID:        uuid.NewString(),
		Command:   command,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Result:    result,
		Success:   success,
		Source:    source,
	}
	l.Entries = append([]Entry{entry}, l.Entries...)
	l.trim()
	return entry
}

func (l *Log) Recent(n int) []Entry {
	if n <= 0 || n > len(l.Entries) {
		n = len(l.Entries)
	}
	out := make([]Entry, n)
	copy(out, l.Entries[:n])
	return out
}

func (l *Log) Clear() {
	l.Entries = nil
}

func (l *Log) normalize() {
	if l == nil {
		return
	}
	l.Retention = clampRetention(l.Retention)
	entries := make([]Entry, 0, len(l.Entries))
	seen := map[string]struct{}{}
	for _, entry := range l.Entries {
		entry.Command = strings.TrimSpace(entry.Command)
		if entry.Command == "" {
			continue
		}
		if entry.ID == "" {
			entry.ID = uuid.NewString()
		}
		if _, exists := seen[entry.ID]; exists {
			continue
		}
		seen[entry.ID] = struct{}{}
		if _, err := ParseSource(string(entry.Source)); err != nil {
			entry.Source = SourceText
		}
		entries = append(entries, entry)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp > entries[j].Timestamp
	})
	l.Entries = entries
	l.trim()
}

func (l *Log) trim() {
	limit := clampRetention(l.Retention)
	if len(l.Entries) > limit {
		l.Entries = l.Entries[:limit]
	}
}

func clampRetention(retention int) int {
	switch {
	case retention <= 0:
		return DefaultRetention
	case retention > maxRetention:
		return maxRetention
	default:
		return retention
	}
}
