package safety

import "regexp"

type redactionRule struct {
	pattern     *regexp.Regexp
	replacement string
}

var secretRedactionRules = []redactionRule{
	{
		// "my password is hunter2", "passcode: 1234"
		pattern:     regexp.MustCompile(`(?i)\b(password|passcode|passphrase|pin|secret)(\s+(?:is|was)\s+|\s*[:=]\s*)("[^"]*"|'[^']*'|\S+)`),
		replacement: `$1$2<redacted>`,
	},
	{
		pattern:     regexp.MustCompile(`(?i)\b((?:verification|security|access|login|one[\s-]time)\s+code)(\s+(?:is|was)\s+|\s*[:=]?\s*)(\d[\d\s-]{2,}\d)`),
		replacement: `$1$2<redacted>`,
	},
	{
		pattern:     regexp.MustCompile(`(?i)\b(pin|code|otp)\s+(\d{4,8})\b`),
		replacement: `$1 <redacted>`,
	},
	{
		// Card and account numbers, spoken with or without separators.
		pattern:     regexp.MustCompile(`\b\d(?:[\s-]?\d){11,18}\b`),
		replacement: `<redacted-number>`,
	},
	{
		pattern:     regexp.MustCompile(`(?i)\b([a-z0-9_]*(?:token|api[_-]?key|access[_-]?key)[a-z0-9_]*)\s*[:=]\s*([^\s"']+|"[^"]*"|'[^']*')`),
		replacement: `$1=<redacted>`,
	},
}

// RedactText scrubs passwords, PINs, one-time codes and long digit runs from
// a command or response before it is written to the activity log.
func RedactText(input string) string {
	redacted := input
	for _, rule := range secretRedactionRules {
		redacted = rule.pattern.ReplaceAllString(redacted, rule.replacement)
	}
	return redacted
}
