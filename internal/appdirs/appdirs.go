package appdirs

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const AppName = "handset"

func baseDir(xdgEnv, windowsEnv string, xdgFallback ...string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not resolve home directory: %w", err)
	}

	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support"), nil
	case "windows":
		if dir := os.Getenv(windowsEnv); dir != "" {
			return dir, nil
		}
		if windowsEnv == "LOCALAPPDATA" {
			return filepath.Join(home, "AppData", "Local"), nil
		}
		return filepath.Join(home, "AppData", "Roaming"), nil
	default:
		if dir := os.Getenv(xdgEnv); dir != "" {
			return dir, nil
		}
		return filepath.Join(append([]string{home}, xdgFallback...)...), nil
	}
}

func ConfigDir() (string, error) {
	base, err := baseDir("XDG_CONFIG_HOME", "APPDATA", ".config")
	if err != nil {
		return "", err
	}
	return filepath.Join(base, AppName), nil
}

func ConfigFilePath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// LocaleFilePath is where a community translation for locale is looked up.
func LocaleFilePath(locale string) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "locales", locale+".json"), nil
}

func EnsureConfigDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return dir, ensurePrivateDir(dir, "config")
}

func StateDir() (string, error) {
	base, err := baseDir("XDG_STATE_HOME", "LOCALAPPDATA", ".local", "state")
	if err != nil {
		return "", err
	}
	return filepath.Join(base, AppName, "state"), nil
}

func EnsureStateDir() (string, error) {
	dir, err := StateDir()
	if err != nil {
		return "", err
	}
	return dir, ensurePrivateDir(dir, "state")
}

func StateFilePath(name string) (string, error) {
	dir, err := StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

func ensurePrivateDir(dir, kind string) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("could not create %s dir: %w", kind, err)
	}
	if err := os.Chmod(dir, 0o700); err != nil {
		return fmt.Errorf("could not secure %s dir permissions: %w", kind, err)
	}
	return nil
}

// WriteFileAtomic replaces path with payload through a temp file in the same
// directory, leaving the result readable only by the owner. label names the
// file in error messages.
func WriteFileAtomic(path string, payload []byte, label string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("could not create %s dir: %w", label, err)
	}
	tempFile, err := os.CreateTemp(dir, "."+AppName+"-*.tmp")
	if err != nil {
		return fmt.Errorf("could not create temp %s file: %w", label, err)
	}
	tempPath := tempFile.Name()
	cleanup := func() {
		_ = os.Remove(tempPath)
	}
	if _, err := tempFile.Write(payload); err != nil {
		_ = tempFile.Close()
		cleanup()
		return fmt.Errorf("could not write temp %s file: %w", label, err)
	}
	if err := tempFile.Chmod(0o600); err != nil {
		_ = tempFile.Close()
		cleanup()
		return fmt.Errorf("could not secure temp %s file: %w", label, err)
	}
	if err := tempFile.Close(); err != nil {
		cleanup()
		return fmt.Errorf("could not close temp %s file: %w", label, err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		cleanup()
		return fmt.Errorf("could not atomically replace %s file: %w", label, err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		return fmt.Errorf("could not secure %s file: %w", label, err)
	}
	return nil
}
