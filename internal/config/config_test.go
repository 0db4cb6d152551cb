package config

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"github.com/ashwch/handset/internal/device"
)

func TestSetGetRoundTrip(t *testing.T) {
	cfg := Default()

	settings := map[string]string{
		"ui.backend":         "tview",
		"locale":             "es-mx",
		"log.level":          "DEBUG",
		"log.format":         "json",
		"log.file":           "yes",
		"log.max_size_mb":    "10",
		"log.max_backups":    "0",
		"activity.retention": "20",
		"activity.redact":    "false",
		"session.persist":    "off",
	}
	for key, value := range settings {
		if err := cfg.Set(key, value); err != nil {
			t.Fatalf("set %s failed: %v", key, err)
		}
	}

	want := map[string]string{
		"ui.backend":         "tview",
		"locale":             "es-MX",
		"log.level":          "debug",
		"log.format":         "json",
		"log.file":           "true",
		"log.max_size_mb":    "10",
		"log.max_backups":    "0",
		"activity.retention": "20",
		"activity.redact":    "false",
		"session.persist":    "false",
	}
	for key, expected := range want {
		got, err := cfg.Get(key)
		if err != nil {
			t.Fatalf("get %s failed: %v", key, err)
		}
		if got != expected {
			t.Fatalf("%s: expected %q, got %q", key, expected, got)
		}
	}
}

func TestSetRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"ui.backend":         "neon-ui",
		"locale":             "%%bad-locale",
		"log.level":          "loud",
		"log.format":         "xml",
		"log.file":           "notabool",
		"log.max_size_mb":    "0",
		"activity.retention": "-1",
		"device.brightness":  "101",
		"device.wifi":        "maybe",
		"device.hyperdrive":  "true",
		"provider":           "codex",
	}
	for key, value := range cases {
		cfg := Default()
		if err := cfg.Set(key, value); err == nil {
			t.Fatalf("expected %s=%s to be rejected", key, value)
		}
	}
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.UI.Backend != "bubbletea" {
		t.Fatalf("expected default ui backend bubbletea, got %q", cfg.UI.Backend)
	}
	if cfg.Locale != "auto" {
		t.Fatalf("expected default locale auto, got %q", cfg.Locale)
	}
	if cfg.Activity.Retention != 14 {
		t.Fatalf("expected retention 14, got %d", cfg.Activity.Retention)
	}
	if !cfg.Activity.Redact || !cfg.Session.Persist {
		t.Fatalf("expected redaction and persistence enabled by default")
	}
	if cfg.InitialState() != device.Initial() {
		t.Fatalf("expected default initial state to match the built-in snapshot")
	}
}

func TestKeysAreAllReadable(t *testing.T) {
	cfg := Default()
	for _, key := range Keys() {
		if _, err := cfg.Get(key); err != nil {
			t.Fatalf("Keys() lists %s but Get failed: %v", key, err)
		}
	}
}

func TestDeviceOverridesProduceConsistentInitialState(t *testing.T) {
	cfg := Default()
	for key, value := range map[string]string{
		"device.airplane-mode": "true",
		"device.bluetooth":     "true",
		"device.silent":        "true",
		"device.brightness":    "30",
	} {
		if err := cfg.Set(key, value); err != nil {
			t.Fatalf("set %s failed: %v", key, err)
		}
	}

	s := cfg.InitialState()
	if !s.AirplaneMode || s.WiFi || s.Bluetooth {
		t.Fatalf("expected airplane mode to force radios off, got %+v", s)
	}
	if !s.Silent || s.Volume != 0 {
		t.Fatalf("expected silent override to zero the volume, got %+v", s)
	}
	if s.Brightness != 30 {
		t.Fatalf("expected brightness 30, got %d", s.Brightness)
	}
	if !s.Consistent() {
		t.Fatalf("expected consistent state, got violations %v", s.Violations())
	}

	got, err := cfg.Get("device.airplane_mode")
	if err != nil || got != "true" {
		t.Fatalf("expected device.airplane_mode=true, got %q (%v)", got, err)
	}
}

func TestZeroVolumeOverrideImpliesSilent(t *testing.T) {
	cfg := Default()
	if err := cfg.Set("device.volume", "0"); err != nil {
		t.Fatalf("set device.volume failed: %v", err)
	}
	if s := cfg.InitialState(); !s.Silent {
		t.Fatalf("expected volume 0 to start silent, got %+v", s)
	}
}

func TestNormalizePreservesExplicitFalseValues(t *testing.T) {
	cfg := Default()
	cfg.Activity.Redact = false
	cfg.Session.Persist = false

	cfg.normalize()

	if cfg.Activity.Redact {
		t.Fatalf("expected activity.redact=false to be preserved")
	}
	if cfg.Session.Persist {
		t.Fatalf("expected session.persist=false to be preserved")
	}
}

func TestNormalizeDropsUnknownDeviceToggles(t *testing.T) {
	cfg := Default()
	cfg.Device.Toggles = map[string]bool{"Battery-Saver": true, "warp": true}
	cfg.normalize()
	if len(cfg.Device.Toggles) != 1 || !cfg.Device.Toggles["battery_saver"] {
		t.Fatalf("unexpected toggles after normalize: %v", cfg.Device.Toggles)
	}
}

func TestLoadOrCreateWritesDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))

	cfg, path, err := LoadOrCreate()
	if err != nil {
		t.Fatalf("LoadOrCreate failed: %v", err)
	}
	if cfg.UI.Backend != "bubbletea" {
		t.Fatalf("unexpected backend %q", cfg.UI.Backend)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config file to be created: %v", err)
	}

	if err := cfg.Set("device.flashlight", "on"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	again, _, err := LoadOrCreate()
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if !again.InitialState().Flashlight {
		t.Fatalf("expected flashlight override to survive a reload")
	}
}

func TestSaveUsesPrivateFileMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not portable on windows")
	}

	cfg := Default()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat config failed: %v", err)
	}
	if perms := info.Mode().Perm(); perms&0o077 != 0 {
		t.Fatalf("expected private permissions, got %o", perms)
	}
}

func TestSaveAtomicWriteProducesParseableConfigUnderConcurrentSaves(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			cfg := Default()
			if idx%2 == 0 {
				cfg.UI.Backend = "huh"
			} else {
				cfg.UI.Backend = "plain"
			}
			if err := Save(path, cfg); err != nil {
				t.Errorf("save failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	bytes, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config failed: %v", err)
	}
	var parsed Config
	if err := toml.Unmarshal(bytes, &parsed); err != nil {
		t.Fatalf("expected final config to be parseable TOML, got error: %v\ncontent:\n%s", err, string(bytes))
	}
}
