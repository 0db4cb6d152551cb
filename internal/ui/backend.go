package ui

import (
	"os"
	"strings"
)

const (
	BackendAuto      = "auto"
	BackendBubbleTea = "bubbletea"
	BackendHuh       = "huh"
	BackendTView     = "tview"
	BackendPlain     = "plain"
)

func NormalizeBackend(backend string) string {
	switch normalized := strings.ToLower(strings.TrimSpace(backend)); normalized {
	case BackendBubbleTea, BackendHuh, BackendTView, BackendPlain:
		return normalized
	default:
		return BackendAuto
	}
}

// StdinIsInteractive reports whether stdin is a terminal. Tests replace it.
var StdinIsInteractive = func() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return stat.Mode()&os.ModeCharDevice != 0
}

// IsInteractiveBackend is true when backend is a full-screen one and stdin
// can drive it.
func IsInteractiveBackend(backend string) bool {
	return NormalizeBackend(backend) != BackendPlain && StdinIsInteractive()
}

// backendCandidates lists the full-screen backends to try in order. The
// plain line console is never a candidate; callers fall back to it when
// every candidate fails.
func backendCandidates(backend string) []string {
	switch NormalizeBackend(backend) {
	case BackendHuh:
		return []string{BackendHuh, BackendBubbleTea, BackendTView}
	case BackendTView:
		return []string{BackendTView, BackendBubbleTea, BackendHuh}
	case BackendPlain:
		return nil
	default:
		return []string{BackendBubbleTea, BackendHuh, BackendTView}
	}
}
