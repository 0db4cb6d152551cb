// Package transcript reads the JSONL feed an external speech-to-text tool
// writes, one recognition event per line.
package transcript

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ashwch/handset/internal/activity"
)

const maxTranscriptLength = 8192

type Event struct {
	Transcript string          `json:"transcript"`
	Final      bool            `json:"final"`
	Source     activity.Source `json:"source"`
	Timestamp  string          `json:"timestamp"`
}

type wireEvent struct {
	Transcript string `json:"transcript"`
	Final      *bool  `json:"final"`
	Source     string `json:"source"`
	Timestamp  string `json:"timestamp"`
}

const maxLineBytes = 1024 * 1024

// Scan calls fn for every usable event in r, interim results included.
// Blank lines, malformed JSON, empty transcripts and lines over 1 MiB are
// skipped. An event without a "final" field counts as final. Scanning stops
// at the first error fn returns.
func Scan(r io.Reader, fn func(Event) error) error {
	reader := bufio.NewReaderSize(r, 64*1024)
	for {
		raw, tooLong, err := readLine(reader)
		if err != nil && err != io.EOF {
			return fmt.Errorf("could not read transcript feed: %w", err)
		}
		if line := strings.TrimSpace(string(raw)); line != "" && !tooLong {
			if ev, ok := decode(line); ok {
				if fnErr := fn(ev); fnErr != nil {
					return fnErr
				}
			}
		}
		if err == io.EOF {
			return nil
		}
	}
}

// readLine returns the next line without its newline. A line longer than
// maxLineBytes is drained and reported as tooLong with no content.
func readLine(reader *bufio.Reader) ([]byte, bool, error) {
	var line []byte
	tooLong := false
	for {
		chunk, err := reader.ReadSlice('\n')
		if !tooLong {
			if len(line)+len(chunk) > maxLineBytes+1 {
				tooLong = true
				line = nil
			} else {
				line = append(line, chunk...)
			}
		}
		if err == bufio.ErrBufferFull {
			continue
		}
		return line, tooLong, err
	}
}

// ScanFile is Scan over a file; "-" reads stdin.
func ScanFile(path string, stdin io.Reader, fn func(Event) error) error {
	if path == "-" {
		return Scan(stdin, fn)
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("could not open transcript feed: %w", err)
	}
	defer f.Close()
	return Scan(f, fn)
}

func decode(line string) (Event, bool) {
	var raw wireEvent
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return Event{}, false
	}
	text := strings.TrimSpace(raw.Transcript)
	if text == "" {
		return Event{}, false
	}
	text = truncate(text, maxTranscriptLength)
	source, err := activity.ParseSource(raw.Source)
	if err != nil {
		source = activity.SourceVoice
	}
	ev := Event{
		Transcript: text,
		Final:      raw.Final == nil || *raw.Final,
		Source:     source,
		Timestamp:  raw.Timestamp,
	}
	if ev.Timestamp == "" {
		ev.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	return ev, true
}

// truncate cuts s to at most n bytes without splitting a character.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
