package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/ashwch/handset/internal/activity"
	"github.com/ashwch/handset/internal/appdirs"
	"github.com/ashwch/handset/internal/config"
	"github.com/ashwch/handset/internal/device"
	"github.com/ashwch/handset/internal/engine"
	"github.com/ashwch/handset/internal/i18n"
	"github.com/ashwch/handset/internal/knowledge"
	"github.com/ashwch/handset/internal/logging"
	"github.com/ashwch/handset/internal/session"
	"github.com/ashwch/handset/internal/transcript"
	"github.com/ashwch/handset/internal/ui"
)

var version = "dev"

const (
	exitOK      = 0
	exitIO      = 1
	exitUsage   = 2
	exitFailed  = 3
	historyFile = "console_history"
)

type assignments []string

func (a *assignments) String() string { return strings.Join(*a, ",") }

func (a *assignments) Set(value string) error {
	if _, _, ok := strings.Cut(value, "="); !ok {
		return fmt.Errorf("expected key=value, got %q", value)
	}
	*a = append(*a, value)
	return nil
}

type options struct {
	JSON        bool
	Source      string
	Shell       bool
	Transcripts string
	Status      bool
	Log         bool
	Reset       bool
	Yes         bool
	Examples    bool
	Pick        bool
	ShowConfig  bool
	Sets        assignments
	Save        bool
	UI          string
	Locale      string
	DryRun      bool
	Version     bool
	Strict      bool
}

type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func parseArgs(args []string) (options, string, error) {
	fs := flag.NewFlagSet("handset", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts options
	fs.BoolVar(&opts.JSON, "json", false, "output JSON")
	fs.StringVar(&opts.Source, "source", "text", "source tag for commands: voice|text")
	fs.BoolVar(&opts.Shell, "shell", false, "open the interactive console")
	fs.StringVar(&opts.Transcripts, "transcripts", "", "interpret a JSONL transcript feed (- for stdin)")
	fs.BoolVar(&opts.Status, "status", false, "print the device settings")
	fs.BoolVar(&opts.Log, "log", false, "print the activity log")
	fs.BoolVar(&opts.Reset, "reset", false, "restore the initial settings and clear the log")
	fs.BoolVar(&opts.Yes, "yes", false, "skip the reset confirmation")
	fs.BoolVar(&opts.Examples, "examples", false, "list example commands")
	fs.BoolVar(&opts.Pick, "pick", false, "choose an example command and run it")
	fs.BoolVar(&opts.ShowConfig, "show-config", false, "show effective settings and exit")
	fs.Var(&opts.Sets, "set", "config override key=value (repeatable)")
	fs.BoolVar(&opts.Save, "save", false, "persist overrides")
	fs.StringVar(&opts.UI, "ui", "", "override ui backend: auto|bubbletea|huh|tview|plain")
	fs.StringVar(&opts.Locale, "locale", "", "override locale: auto|en|es")
	fs.BoolVar(&opts.DryRun, "dry-run", false, "interpret without saving state or log")
	fs.BoolVar(&opts.Version, "version", false, "print version")
	fs.BoolVar(&opts.Strict, "strict", false, "exit 3 when a command is not carried out")

	if err := fs.Parse(args); err != nil {
		return options{}, "", err
	}
	source, err := activity.ParseSource(opts.Source)
	if err != nil {
		return options{}, "", err
	}
	opts.Source = string(source)
	opts.Transcripts = strings.TrimSpace(opts.Transcripts)

	command := strings.TrimSpace(strings.Join(fs.Args(), " "))
	exclusive := 0
	for _, set := range []bool{command != "", opts.Shell, opts.Transcripts != "", opts.Pick} {
		if set {
			exclusive++
		}
	}
	if exclusive > 1 {
		return options{}, "", fmt.Errorf("use only one of: a command, --shell, --transcripts, --pick")
	}
	return opts, command, nil
}

// configChanges merges --ui, --locale and --set into one key=value map.
// Later --set values win.
func configChanges(opts options) map[string]string {
	changes := map[string]string{}
	if ui := strings.TrimSpace(opts.UI); ui != "" {
		changes["ui.backend"] = ui
	}
	if locale := strings.TrimSpace(opts.Locale); locale != "" {
		changes["locale"] = locale
	}
	for _, assignment := range opts.Sets {
		key, value, _ := strings.Cut(assignment, "=")
		changes[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}
	return changes
}

func sortedKeys(changes map[string]string) []string {
	keys := make([]string, 0, len(changes))
	for key := range changes {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, command, err := parseArgs(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintf(stderr, "handset: %v\n", err)
		return exitUsage
	}
	if opts.Version {
		fmt.Fprintln(stdout, version)
		return exitOK
	}

	a := &app{opts: opts, stdin: stdin, stdout: stdout, stderr: stderr}
	code, err := a.run(command)
	if err != nil {
		fmt.Fprintf(stderr, "handset: %v\n", err)
		var usage usageError
		if errors.As(err, &usage) {
			return exitUsage
		}
		return exitIO
	}
	return code
}

type app struct {
	opts   options
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	cfg          config.Config
	catalog      i18n.Catalog
	logger       *slog.Logger
	session      *session.Session
	initial      device.State
	snapshotPath string
	activityPath string
}

func (a *app) run(command string) (int, error) {
	cfg, cfgPath, err := config.LoadOrCreate()
	if err != nil {
		return exitIO, fmt.Errorf("could not load config: %w", err)
	}
	changes := configChanges(a.opts)
	for _, key := range sortedKeys(changes) {
		if err := cfg.Set(key, changes[key]); err != nil {
			return exitUsage, usageError{fmt.Errorf("invalid config change %s=%s: %w", key, changes[key], err)}
		}
	}
	if a.opts.Save && len(changes) > 0 {
		if err := config.Save(cfgPath, cfg); err != nil {
			return exitIO, fmt.Errorf("could not save config: %w", err)
		}
	}
	a.cfg = cfg

	logger, closer, err := logging.Setup(cfg.Log, a.stderr)
	if err != nil {
		return exitIO, fmt.Errorf("could not set up logging: %w", err)
	}
	defer closer.Close()
	a.logger = logger

	locale := cfg.Locale
	if strings.EqualFold(locale, "auto") {
		locale = ""
	}
	a.catalog = i18n.LoadCatalog(locale)

	if a.opts.ShowConfig {
		return exitOK, a.showConfig(cfgPath)
	}
	if a.opts.Examples {
		return exitOK, a.printExamples()
	}

	if err := a.openSession(); err != nil {
		return exitIO, err
	}

	if a.opts.Reset {
		if err := a.reset(); err != nil {
			return exitIO, err
		}
	}

	code := exitOK
	acted := a.opts.Reset || a.opts.Status || a.opts.Log
	switch {
	case a.opts.Transcripts != "":
		code, err = a.consumeTranscripts()
		acted = true
	case a.opts.Shell:
		err = a.shell()
		acted = true
	case a.opts.Pick:
		if !ui.IsInteractiveBackend(a.cfg.UI.Backend) {
			return exitUsage, usageError{errors.New("--pick needs a terminal and a full-screen ui backend")}
		}
		picked, ok, pickErr := ui.PickExample(a.cfg.UI.Backend, a.catalog.Panel.Try, knowledge.Commands())
		if pickErr != nil {
			return exitIO, fmt.Errorf("could not open example picker: %w", pickErr)
		}
		if ok {
			code, err = a.interpretOne(picked)
		}
		acted = true
	case command != "":
		code, err = a.interpretOne(command)
		acted = true
	}
	if err != nil {
		return exitIO, err
	}
	if !acted {
		return exitUsage, usageError{errors.New("nothing to do: pass a command, or one of --shell, --transcripts, --status, --log")}
	}

	if a.opts.Status {
		if err := a.printStatus(); err != nil {
			return exitIO, err
		}
	}
	if a.opts.Log {
		if err := a.printLog(); err != nil {
			return exitIO, err
		}
	}
	return code, nil
}

func (a *app) openSession() error {
	a.initial = a.cfg.InitialState()
	state := a.initial
	log := activity.New(a.cfg.Activity.Retention, a.cfg.Activity.Redact)

	if a.cfg.Session.Persist {
		path, err := session.SnapshotPath()
		if err != nil {
			return err
		}
		if state, err = session.LoadSnapshot(path, a.initial); err != nil {
			return err
		}
		loaded, activityPath, err := activity.Load(a.cfg.Activity.Retention)
		if err != nil {
			return err
		}
		loaded.Redact = a.cfg.Activity.Redact
		log = loaded
		a.snapshotPath = path
		a.activityPath = activityPath
	}

	a.session = session.New(session.Options{State: state, Log: log, Logger: a.logger})
	return nil
}

func (a *app) persisting() bool {
	return a.cfg.Session.Persist && !a.opts.DryRun
}

func (a *app) commit() error {
	if !a.persisting() {
		return nil
	}
	if _, err := appdirs.EnsureStateDir(); err != nil {
		return err
	}
	return a.session.Save(a.snapshotPath, a.activityPath)
}

func (a *app) reset() error {
	if !a.opts.Yes && !a.opts.JSON && ui.IsInteractiveBackend(a.cfg.UI.Backend) {
		approved, used, err := ui.ConfirmReset(a.cfg.UI.Backend)
		if !used {
			if err != nil {
				a.logger.Debug("reset confirmation unavailable", "error", err)
			}
			return errors.New("could not ask for reset confirmation; pass --yes to reset anyway")
		}
		if !approved {
			fmt.Fprintln(a.stdout, "reset cancelled")
			return nil
		}
	}
	a.session.Reset(a.initial)
	if err := a.commit(); err != nil {
		return err
	}
	if !a.opts.JSON {
		fmt.Fprintln(a.stdout, a.catalog.Console.ResetDone)
	}
	return nil
}

func (a *app) interpretOne(command string) (int, error) {
	out := a.session.Submit(command, activity.Source(a.opts.Source))
	if err := a.commit(); err != nil {
		return exitIO, err
	}
	if err := a.printOutcome(out); err != nil {
		return exitIO, err
	}
	if a.opts.Strict && !out.Success {
		return exitFailed, nil
	}
	return exitOK, nil
}

// consumeTranscripts interprets every final event in the feed. Interim
// results are logged and skipped.
func (a *app) consumeTranscripts() (int, error) {
	code := exitOK
	err := transcript.ScanFile(a.opts.Transcripts, a.stdin, func(event transcript.Event) error {
		if !event.Final {
			a.logger.Debug("skipping interim transcript", "transcript", event.Transcript)
			return nil
		}
		out := a.session.Submit(event.Transcript, event.Source)
		if a.opts.Strict && !out.Success {
			code = exitFailed
		}
		return a.printOutcome(out)
	})
	// Commands already applied are saved even when the feed breaks off.
	if commitErr := a.commit(); commitErr != nil {
		return exitIO, errors.Join(err, commitErr)
	}
	if err != nil {
		return exitIO, err
	}
	return code, nil
}

func (a *app) shell() error {
	console := &ui.Console{
		Session:  a.session,
		Catalog:  a.catalog,
		Source:   activity.Source(a.opts.Source),
		Initial:  a.initial,
		Examples: knowledge.Commands(),
		Commit:   a.commit,
	}
	if a.persisting() {
		if path, err := appdirs.StateFilePath(historyFile); err == nil {
			console.HistoryFile = path
		}
	}

	if ui.IsInteractiveBackend(a.cfg.UI.Backend) {
		used, err := ui.RunConsole(a.cfg.UI.Backend, console)
		if used {
			return nil
		}
		if err != nil {
			a.logger.Warn("full-screen console unavailable, using line console", "error", err)
		}
	}
	return ui.RunLineConsole(console, nil, nil)
}

func (a *app) printOutcome(out engine.Outcome) error {
	if a.opts.JSON {
		return writeJSON(a.stdout, out)
	}
	_, err := fmt.Fprintln(a.stdout, out.Response)
	return err
}

type statusPayload struct {
	State      device.State `json:"state"`
	Consistent bool         `json:"consistent"`
	Violations []string     `json:"violations,omitempty"`
}

func (a *app) printStatus() error {
	state := a.session.State()
	if a.opts.JSON {
		return writeJSON(a.stdout, statusPayload{
			State:      state,
			Consistent: state.Consistent(),
			Violations: state.Violations(),
		})
	}
	fmt.Fprintln(a.stdout, ui.RenderStatus(state, a.catalog))
	for _, violation := range state.Violations() {
		fmt.Fprintf(a.stdout, "warning: %s\n", violation)
	}
	return nil
}

func (a *app) printLog() error {
	entries := a.session.Recent(0)
	if a.opts.JSON {
		if entries == nil {
			entries = []activity.Entry{}
		}
		return writeJSON(a.stdout, entries)
	}
	fmt.Fprintln(a.stdout, ui.RenderActivity(entries, a.catalog))
	return nil
}

func (a *app) printExamples() error {
	examples, err := knowledge.Examples()
	if err != nil {
		return err
	}
	if a.opts.JSON {
		return writeJSON(a.stdout, examples)
	}
	for _, example := range examples {
		fmt.Fprintf(a.stdout, "- %s\n", example.Command)
	}
	return nil
}

func (a *app) showConfig(cfgPath string) error {
	if a.opts.JSON {
		return writeJSON(a.stdout, struct {
			Path   string        `json:"config_path"`
			Config config.Config `json:"config"`
		}{cfgPath, a.cfg})
	}
	for _, key := range config.Keys() {
		value, err := a.cfg.Get(key)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "%s = %s\n", key, value)
	}
	fmt.Fprintf(a.stdout, "config: %s\n", cfgPath)
	return nil
}

func writeJSON(w io.Writer, payload any) error {
	encoded, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(encoded))
	return err
}
