package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/ashwch/handset/internal/appdirs"
	"github.com/ashwch/handset/internal/device"
	"github.com/ashwch/handset/internal/i18n"
)

type UIConfig struct {
	Backend string `toml:"backend" json:"backend"`
}

type LogConfig struct {
	Level      string `toml:"level" json:"level"`
	Format     string `toml:"format" json:"format"`
	File       bool   `toml:"file" json:"file"`
	MaxSizeMB  int    `toml:"max_size_mb" json:"max_size_mb"`
	MaxBackups int    `toml:"max_backups" json:"max_backups"`
}

type ActivityConfig struct {
	Retention int  `toml:"retention" json:"retention"`
	Redact    bool `toml:"redact" json:"redact"`
}

type SessionConfig struct {
	Persist bool `toml:"persist" json:"persist"`
}

// DeviceConfig overrides the session-start snapshot. Unset fields keep the
// built-in initial values.
type DeviceConfig struct {
	Toggles    map[string]bool `toml:"toggles,omitempty" json:"toggles,omitempty"`
	Brightness *int            `toml:"brightness,omitempty" json:"brightness,omitempty"`
	Volume     *int            `toml:"volume,omitempty" json:"volume,omitempty"`
}

type Config struct {
	Version  int            `toml:"version" json:"version"`
	Locale   string         `toml:"locale" json:"locale"`
	UI       UIConfig       `toml:"ui" json:"ui"`
	Log      LogConfig      `toml:"log" json:"log"`
	Activity ActivityConfig `toml:"activity" json:"activity"`
	Session  SessionConfig  `toml:"session" json:"session"`
	Device   DeviceConfig   `toml:"device" json:"device"`
}

func Default() Config {
	return Config{
		Version: 1,
		Locale:  "auto",
		UI: UIConfig{
			Backend: "bubbletea",
		},
		Log: LogConfig{
			Level:      "warn",
			Format:     "text",
			File:       false,
			MaxSizeMB:  5,
			MaxBackups: 3,
		},
		Activity: ActivityConfig{
			Retention: 14,
			Redact:    true,
		},
		Session: SessionConfig{
			Persist: true,
		},
	}
}

func LoadOrCreate() (Config, string, error) {
	path, err := appdirs.ConfigFilePath()
	if err != nil {
		return Config{}, "", err
	}

	cfg := Default()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if _, err := appdirs.EnsureConfigDir(); err != nil {
			return Config{}, "", err
		}
		if err := Save(path, cfg); err != nil {
			return Config{}, "", err
		}
		return cfg, path, nil
	}
	if err != nil {
		return Config{}, "", fmt.Errorf("could not stat config path: %w", err)
	}

	bytes, err := os.ReadFile(path)
	if err != nil {
		return Config{}, "", fmt.Errorf("could not read config file: %w", err)
	}
	if err := toml.Unmarshal(bytes, &cfg); err != nil {
		return Config{}, "", fmt.Errorf("could not parse config file: %w", err)
	}
	cfg.normalize()
	return cfg, path, nil
}

func Save(path string, cfg Config) error {
	cfg.normalize()
	payload, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("could not serialize config: %w", err)
	}
	return appdirs.WriteFileAtomic(path, payload, "config")
}

func (c *Config) normalize() {
	defaults := Default()
	if c.Version == 0 {
		c.Version = defaults.Version
	}
	c.Locale = normalizeLocaleSetting(c.Locale, defaults.Locale)
	c.UI.Backend = normalizeChoice(c.UI.Backend, defaults.UI.Backend, uiBackends)
	c.Log.Level = normalizeChoice(c.Log.Level, defaults.Log.Level, logLevels)
	c.Log.Format = normalizeChoice(c.Log.Format, defaults.Log.Format, logFormats)
	if c.Log.MaxSizeMB <= 0 {
		c.Log.MaxSizeMB = defaults.Log.MaxSizeMB
	}
	if c.Log.MaxBackups < 0 {
		c.Log.MaxBackups = defaults.Log.MaxBackups
	}
	if c.Activity.Retention <= 0 {
		c.Activity.Retention = defaults.Activity.Retention
	}

	toggles := make(map[string]bool, len(c.Device.Toggles))
	for name, value := range c.Device.Toggles {
		field, err := device.ParseField(name)
		if err != nil {
			continue
		}
		toggles[string(field)] = value
	}
	if len(toggles) == 0 {
		toggles = nil
	}
	c.Device.Toggles = toggles
	c.Device.Brightness = clampPtr(c.Device.Brightness)
	c.Device.Volume = clampPtr(c.Device.Volume)
}

var (
	uiBackends = []string{"auto", "bubbletea", "huh", "tview", "plain"}
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
)

// Keys lists every settable key in the order --show-config prints them.
func Keys() []string {
	keys := []string{
		"locale",
		"ui.backend",
		"log.level",
		"log.format",
		"log.file",
		"log.max_size_mb",
		"log.max_backups",
		"activity.retention",
		"activity.redact",
		"session.persist",
		"device.brightness",
		"device.volume",
	}
	for _, field := range device.Fields() {
		keys = append(keys, "device."+string(field))
	}
	return keys
}

func (c *Config) Set(key, value string) error {
	key = strings.TrimSpace(strings.ToLower(key))
	value = strings.TrimSpace(value)

	if strings.HasPrefix(key, "device.") {
		if err := c.setDeviceKey(strings.TrimPrefix(key, "device."), value); err != nil {
			return err
		}
		c.normalize()
		return nil
	}

	switch key {
	case "locale":
		c.Locale = normalizeLocaleSetting(value, "")
		if c.Locale == "" {
			return fmt.Errorf("locale must be 'auto' or a locale like en, en-US, es, es-MX")
		}
	case "ui.backend":
		c.UI.Backend = normalizeChoice(value, "", uiBackends)
		if c.UI.Backend == "" {
			return fmt.Errorf("ui.backend must be one of %s", strings.Join(uiBackends, "|"))
		}
	case "log.level":
		c.Log.Level = normalizeChoice(value, "", logLevels)
		if c.Log.Level == "" {
			return fmt.Errorf("log.level must be one of %s", strings.Join(logLevels, "|"))
		}
	case "log.format":
		c.Log.Format = normalizeChoice(value, "", logFormats)
		if c.Log.Format == "" {
			return fmt.Errorf("log.format must be one of %s", strings.Join(logFormats, "|"))
		}
	case "log.file":
		b, err := parseBool(value)
		if err != nil {
			return fmt.Errorf("log.file must be boolean")
		}
		c.Log.File = b
	case "log.max_size_mb":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("log.max_size_mb must be a positive number")
		}
		c.Log.MaxSizeMB = n
	case "log.max_backups":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("log.max_backups must be zero or a positive number")
		}
		c.Log.MaxBackups = n
	case "activity.retention":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("activity.retention must be a positive number")
		}
		c.Activity.Retention = n
	case "activity.redact":
		b, err := parseBool(value)
		if err != nil {
			return fmt.Errorf("activity.redact must be boolean")
		}
		c.Activity.Redact = b
	case "session.persist":
		b, err := parseBool(value)
		if err != nil {
			return fmt.Errorf("session.persist must be boolean")
		}
		c.Session.Persist = b
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	c.normalize()
	return nil
}

func (c *Config) setDeviceKey(name, value string) error {
	switch name {
	case "brightness", "volume":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 || n > 100 {
			return fmt.Errorf("device.%s must be a number between 0 and 100", name)
		}
		if name == "brightness" {
			c.Device.Brightness = &n
		} else {
			c.Device.Volume = &n
		}
		return nil
	}
	field, err := device.ParseField(name)
	if err != nil {
		return fmt.Errorf("unknown config key: device.%s", name)
	}
	b, err := parseBool(value)
	if err != nil {
		return fmt.Errorf("device.%s must be boolean", field)
	}
	if c.Device.Toggles == nil {
		c.Device.Toggles = map[string]bool{}
	}
	c.Device.Toggles[string(field)] = b
	return nil
}

func (c Config) Get(key string) (string, error) {
	key = strings.TrimSpace(strings.ToLower(key))

	if strings.HasPrefix(key, "device.") {
		return c.getDeviceKey(strings.TrimPrefix(key, "device."))
	}

	switch key {
	case "locale":
		return c.Locale, nil
	case "ui.backend":
		return c.UI.Backend, nil
	case "log.level":
		return c.Log.Level, nil
	case "log.format":
		return c.Log.Format, nil
	case "log.file":
		return strconv.FormatBool(c.Log.File), nil
	case "log.max_size_mb":
		return strconv.Itoa(c.Log.MaxSizeMB), nil
	case "log.max_backups":
		return strconv.Itoa(c.Log.MaxBackups), nil
	case "activity.retention":
		return strconv.Itoa(c.Activity.Retention), nil
	case "activity.redact":
		return strconv.FormatBool(c.Activity.Redact), nil
	case "session.persist":
		return strconv.FormatBool(c.Session.Persist), nil
	default:
		return "", fmt.Errorf("unknown config key: %s", key)
	}
}

// Device keys report the effective initial value, override or not.
func (c Config) getDeviceKey(name string) (string, error) {
	initial := c.InitialState()
	switch name {
	case "brightness":
		return strconv.Itoa(initial.Brightness), nil
	case "volume":
		return strconv.Itoa(initial.Volume), nil
	}
	field, err := device.ParseField(name)
	if err != nil {
		return "", fmt.Errorf("unknown config key: device.%s", name)
	}
	return strconv.FormatBool(initial.Bool(field)), nil
}

// InitialState applies the device overrides to the built-in snapshot and
// re-derives the dependent fields so the result is consistent.
func (c Config) InitialState() device.State {
	s := device.Initial()
	names := make([]string, 0, len(c.Device.Toggles))
	for name := range c.Device.Toggles {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		field, err := device.ParseField(name)
		if err != nil {
			continue
		}
		s = s.WithBool(field, c.Device.Toggles[name])
	}
	if c.Device.Brightness != nil {
		s.Brightness = *c.Device.Brightness
	}
	if c.Device.Volume != nil {
		s.Volume = *c.Device.Volume
	}
	s = s.Settle()
	if s.Silent {
		s.Volume = 0
	} else if s.Volume == 0 {
		s.Silent = true
	}
	return s
}

func parseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid bool: %s", value)
	}
}

func clampPtr(v *int) *int {
	if v == nil {
		return nil
	}
	n := device.ClampPercent(*v)
	return &n
}

func normalizeChoice(value, fallback string, allowed []string) string {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, choice := range allowed {
		if normalized == choice {
			return normalized
		}
	}
	return strings.ToLower(strings.TrimSpace(fallback))
}

func normalizeLocaleSetting(value string, fallback string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		trimmed = strings.TrimSpace(fallback)
	}
	if strings.EqualFold(trimmed, "auto") {
		return "auto"
	}
	return i18n.NormalizeLocale(trimmed)
}
