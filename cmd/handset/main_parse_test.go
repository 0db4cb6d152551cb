package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ashwch/handset/internal/activity"
	"github.com/ashwch/handset/internal/engine"
)

func isolate(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(root, "config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(root, "state"))
	t.Setenv("HANDSET_LOCALE", "en")
	return root
}

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestParseArgsHelpReturnsFlagErrHelp(t *testing.T) {
	_, _, err := parseArgs([]string{"--help"})
	if !errors.Is(err, flag.ErrHelp) {
		t.Fatalf("expected flag.ErrHelp, got %v", err)
	}
}

func TestParseArgsJoinsCommandWords(t *testing.T) {
	opts, command, err := parseArgs([]string{"--json", "--source", "Voice", "turn", "on", "wifi"})
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if !opts.JSON || opts.Source != "voice" {
		t.Fatalf("unexpected options: %+v", opts)
	}
	if command != "turn on wifi" {
		t.Fatalf("unexpected command: %q", command)
	}
}

func TestParseArgsRejectsUnknownSource(t *testing.T) {
	if _, _, err := parseArgs([]string{"--source", "telepathy", "mute"}); err == nil {
		t.Fatalf("expected source error")
	}
}

func TestParseArgsRejectsConflictingModes(t *testing.T) {
	if _, _, err := parseArgs([]string{"--shell", "mute", "the", "phone"}); err == nil {
		t.Fatalf("expected conflict error")
	}
	if _, _, err := parseArgs([]string{"--transcripts", "-", "--pick"}); err == nil {
		t.Fatalf("expected conflict error")
	}
}

func TestParseArgsRepeatableSet(t *testing.T) {
	opts, _, err := parseArgs([]string{"--set", "ui.backend=plain", "--set", "activity.retention = 5", "--ui", "huh"})
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	changes := configChanges(opts)
	if changes["ui.backend"] != "plain" {
		t.Fatalf("expected --set to win over --ui, got %q", changes["ui.backend"])
	}
	if changes["activity.retention"] != "5" {
		t.Fatalf("expected trimmed value, got %q", changes["activity.retention"])
	}
}

func TestParseArgsSetNeedsAssignment(t *testing.T) {
	if _, _, err := parseArgs([]string{"--set", "ui.backend"}); err == nil {
		t.Fatalf("expected key=value error")
	}
}

func TestRunVersion(t *testing.T) {
	code, stdout, _ := runCLI(t, "", "--version")
	if code != exitOK || strings.TrimSpace(stdout) != version {
		t.Fatalf("unexpected version output: code=%d out=%q", code, stdout)
	}
}

func TestRunCommandPersistsStateAndLog(t *testing.T) {
	isolate(t)

	code, stdout, stderr := runCLI(t, "", "turn", "on", "bluetooth")
	if code != exitOK {
		t.Fatalf("unexpected exit %d: %s", code, stderr)
	}
	if strings.TrimSpace(stdout) != "Bluetooth is now on." {
		t.Fatalf("unexpected output %q", stdout)
	}

	code, stdout, _ = runCLI(t, "", "--json", "--status")
	if code != exitOK {
		t.Fatalf("unexpected exit %d", code)
	}
	var status statusPayload
	if err := json.Unmarshal([]byte(stdout), &status); err != nil {
		t.Fatalf("could not decode status: %v\n%s", err, stdout)
	}
	if !status.State.Bluetooth || !status.Consistent {
		t.Fatalf("expected persisted bluetooth, got %+v", status)
	}

	code, stdout, _ = runCLI(t, "", "--json", "--log")
	if code != exitOK {
		t.Fatalf("unexpected exit %d", code)
	}
	var entries []activity.Entry
	if err := json.Unmarshal([]byte(stdout), &entries); err != nil {
		t.Fatalf("could not decode log: %v", err)
	}
	if len(entries) != 1 || entries[0].Command != "turn on bluetooth" {
		t.Fatalf("unexpected log entries: %+v", entries)
	}
}

func TestRunDryRunDoesNotPersist(t *testing.T) {
	root := isolate(t)
	if code, _, stderr := runCLI(t, "", "--dry-run", "turn on flashlight"); code != exitOK {
		t.Fatalf("unexpected exit %d: %s", code, stderr)
	}
	if _, err := os.Stat(filepath.Join(root, "state", "handset", "device.json")); !os.IsNotExist(err) {
		t.Fatalf("expected no snapshot after dry run, stat err=%v", err)
	}
}

func TestRunJSONOutcome(t *testing.T) {
	isolate(t)
	code, stdout, _ := runCLI(t, "", "--json", "--dry-run", "set", "volume", "to", "70")
	if code != exitOK {
		t.Fatalf("unexpected exit %d", code)
	}
	var out engine.Outcome
	if err := json.Unmarshal([]byte(stdout), &out); err != nil {
		t.Fatalf("could not decode outcome: %v", err)
	}
	if !out.Success || out.NextState.Volume != 70 {
		t.Fatalf("unexpected outcome %+v", out)
	}
}

func TestRunStrictExitsOnFailure(t *testing.T) {
	isolate(t)
	code, stdout, _ := runCLI(t, "", "--strict", "--dry-run", "bake", "a", "cake")
	if code != exitFailed {
		t.Fatalf("expected exit %d, got %d", exitFailed, code)
	}
	if strings.TrimSpace(stdout) != engine.ResponseNoMatch {
		t.Fatalf("unexpected output %q", stdout)
	}

	code, _, _ = runCLI(t, "", "--dry-run", "bake", "a", "cake")
	if code != exitOK {
		t.Fatalf("failed interpretation should exit 0 without --strict, got %d", code)
	}
}

func TestRunInvalidConfigChangeIsUsageError(t *testing.T) {
	isolate(t)
	code, _, stderr := runCLI(t, "", "--set", "activity.redact=sometimes", "--status")
	if code != exitUsage {
		t.Fatalf("expected usage exit, got %d", code)
	}
	if !strings.HasPrefix(stderr, "handset: ") {
		t.Fatalf("expected prefixed error, got %q", stderr)
	}
}

func TestRunNothingToDo(t *testing.T) {
	isolate(t)
	if code, _, _ := runCLI(t, ""); code != exitUsage {
		t.Fatalf("expected usage exit, got %d", code)
	}
}

func TestRunTranscriptsFromStdin(t *testing.T) {
	isolate(t)
	feed := strings.Join([]string{
		`{"transcript":"turn on","final":false}`,
		`{"transcript":"turn off wifi","final":true,"source":"voice"}`,
		`not json`,
		`{"transcript":"mute the phone"}`,
	}, "\n")

	code, stdout, stderr := runCLI(t, feed, "--transcripts", "-")
	if code != exitOK {
		t.Fatalf("unexpected exit %d: %s", code, stderr)
	}
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) != 2 || lines[0] != "Wi-Fi is now off." || lines[1] != "Muting the phone." {
		t.Fatalf("unexpected transcript output: %q", lines)
	}

	_, stdout, _ = runCLI(t, "", "--json", "--log")
	var entries []activity.Entry
	if err := json.Unmarshal([]byte(stdout), &entries); err != nil {
		t.Fatalf("could not decode log: %v", err)
	}
	if len(entries) != 2 || entries[1].Source != activity.SourceVoice {
		t.Fatalf("unexpected log entries: %+v", entries)
	}
}

func TestRunResetWithYes(t *testing.T) {
	isolate(t)
	runCLI(t, "", "turn on airplane mode")
	code, _, stderr := runCLI(t, "", "--reset", "--yes", "--json", "--status")
	if code != exitOK {
		t.Fatalf("unexpected exit %d: %s", code, stderr)
	}
	_, stdout, _ := runCLI(t, "", "--json", "--log")
	if strings.TrimSpace(stdout) != "[]" {
		t.Fatalf("expected empty log after reset, got %q", stdout)
	}
}

func TestRunExamplesAndShowConfig(t *testing.T) {
	isolate(t)
	code, stdout, _ := runCLI(t, "", "--examples")
	if code != exitOK || !strings.Contains(stdout, "- ") {
		t.Fatalf("unexpected examples output: %d %q", code, stdout)
	}
	code, stdout, _ = runCLI(t, "", "--show-config", "--ui", "plain")
	if code != exitOK || !strings.Contains(stdout, "ui.backend = plain") {
		t.Fatalf("unexpected config output: %d %q", code, stdout)
	}
}

func TestRunPickNeedsTerminal(t *testing.T) {
	isolate(t)
	code, _, stderr := runCLI(t, "", "--pick", "--ui", "plain")
	if code != exitUsage || !strings.Contains(stderr, "--pick") {
		t.Fatalf("expected usage error for --pick, got %d %q", code, stderr)
	}
}

type brokenFeed struct {
	data io.Reader
}

func (f *brokenFeed) Read(p []byte) (int, error) {
	n, err := f.data.Read(p)
	if err == io.EOF {
		return n, errors.New("connection reset")
	}
	return n, err
}

func TestRunTranscriptsSkipsOversizedLine(t *testing.T) {
	isolate(t)
	feed := strings.Join([]string{
		`{"transcript":"turn on bluetooth"}`,
		`{"transcript":"` + strings.Repeat("x", 2*1024*1024) + `"}`,
		`{"transcript":"mute"}`,
	}, "\n")

	code, stdout, stderr := runCLI(t, feed, "--transcripts", "-")
	if code != exitOK {
		t.Fatalf("unexpected exit %d: %s", code, stderr)
	}
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) != 2 || lines[0] != "Bluetooth is now on." || lines[1] != "Muting the phone." {
		t.Fatalf("unexpected transcript output: %q", lines)
	}
}

func TestRunTranscriptsSavesAppliedCommandsOnReadError(t *testing.T) {
	isolate(t)
	feed := &brokenFeed{data: strings.NewReader(`{"transcript":"turn on flashlight"}` + "\n")}

	var stdout, stderr bytes.Buffer
	code := run([]string{"--transcripts", "-"}, feed, &stdout, &stderr)
	if code != exitIO {
		t.Fatalf("expected exit %d on a broken feed, got %d", exitIO, code)
	}
	if !strings.Contains(stderr.String(), "connection reset") {
		t.Fatalf("expected read error on stderr, got %q", stderr.String())
	}

	_, out, _ := runCLI(t, "", "--json", "--status")
	var status statusPayload
	if err := json.Unmarshal([]byte(out), &status); err != nil {
		t.Fatalf("could not decode status: %v", err)
	}
	if !status.State.Flashlight {
		t.Fatalf("expected the flashlight command to be saved before the error")
	}
}
