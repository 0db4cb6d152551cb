package router

import (
	"regexp"
	"strconv"

	"github.com/ashwch/handset/internal/device"
)

// Rule is one entry of the ordered rule table.
type Rule struct {
	Name   string
	Intent Intent
	match  func(text string) (Captures, bool)
}

// AppVocabulary is the fixed set of apps the open/launch rule understands.
var AppVocabulary = []string{"camera", "maps", "calendar", "spotify", "music"}

const adjustStep = 12

var (
	onVerb  = regexp.MustCompile(`\b(?:(?:turn|switch)\s+on|enable|activate)\b`)
	offVerb = regexp.MustCompile(`\b(?:(?:turn|switch)\s+off|disable|deactivate)\b`)

	wifiKeyword       = regexp.MustCompile(`\bwi[\s-]?fi\b`)
	bluetoothKeyword  = regexp.MustCompile(`\bbluetooth\b`)
	flashlightKeyword = regexp.MustCompile(`\b(?:flashlight|torch)\b`)
	locationKeyword   = regexp.MustCompile(`\b(?:location|gps|navigation)\b`)
	batteryKeyword    = regexp.MustCompile(`\b(?:battery\s+saver|low\s+power)\b`)
	airplaneKeyword   = regexp.MustCompile(`\b(?:airplane|flight)\s+mode\b`)
	silentKeyword     = regexp.MustCompile(`\b(?:silent|mute)\b`)
	dndKeyword        = regexp.MustCompile(`\b(?:do\s*not\s*disturb|dnd)\b`)

	brightnessUp  = regexp.MustCompile(`\b(?:increase|raise)\s+(?:the\s+)?brightness\b`)
	brightnessDn  = regexp.MustCompile(`\b(?:decrease|lower)\s+(?:the\s+)?brightness\b`)
	brightnessSet = regexp.MustCompile(`\bbrightness(?:\s+to)?\s+(\d{1,3})`)
	volumeUp      = regexp.MustCompile(`\b(?:increase|raise)\s+(?:the\s+)?volume\b`)
	volumeDn      = regexp.MustCompile(`\b(?:decrease|lower|reduce)\s+(?:the\s+)?volume\b`)
	mutePattern   = regexp.MustCompile(`\b(?:mute|silence)\b(?:\s+(?:the\s+)?(?:phone|device|it)\b)?`)
	unmutePattern = regexp.MustCompile(`\b(?:unmute|sound)\b(?:\s+(?:the\s+)?(?:phone|device|it)\b)?`)
	volumeSet     = regexp.MustCompile(`\bvolume(?:\s+to)?\s+(\d{1,3})`)
	callPattern   = regexp.MustCompile(`\b(?:call|dial)\s+([a-z\s]+)`)
	messagePat    = regexp.MustCompile(`\bsend\s+(?:a\s+)?message\s+to\s+([a-z\s]+?)(?:\s+saying\s+(.+))?$`)
	openAppPat    = regexp.MustCompile(`\b(?:open|launch)\s+(camera|maps|calendar|spotify|music)\b`)
	batteryQuery  = regexp.MustCompile(`\bwhat(?:'s|s|\s+is)\s+(?:the\s+)?battery\b`)
)

// The order of this table is the matching priority. Several predicates
// overlap ("mute" vs "unmute", "volume to 0" vs "mute"), so entries must not
// be reordered casually.
var table = buildTable()

func buildTable() []Rule {
	features := []struct {
		name    string
		field   device.Field
		keyword *regexp.Regexp
	}{
		{"wifi", device.FieldWiFi, wifiKeyword},
		{"bluetooth", device.FieldBluetooth, bluetoothKeyword},
		{"flashlight", device.FieldFlashlight, flashlightKeyword},
		{"location", device.FieldLocation, locationKeyword},
		{"battery_saver", device.FieldBatterySaver, batteryKeyword},
		{"airplane_mode", device.FieldAirplaneMode, airplaneKeyword},
		{"silent", device.FieldSilent, silentKeyword},
	}

	rules := make([]Rule, 0, 32)
	for _, f := range features {
		rules = append(rules,
			toggleRule(f.name+".on", IntentToggle, f.field, true, onVerb, f.keyword),
			toggleRule(f.name+".off", IntentToggle, f.field, false, offVerb, f.keyword),
		)
	}
	rules = append(rules,
		toggleRule("do_not_disturb.on", IntentDoNotDisturb, device.FieldDoNotDisturb, true, onVerb, dndKeyword),
		toggleRule("do_not_disturb.off", IntentDoNotDisturb, device.FieldDoNotDisturb, false, offVerb, dndKeyword),
		adjustRule("brightness.increase", IntentBrightnessAdjust, brightnessUp, adjustStep),
		adjustRule("brightness.decrease", IntentBrightnessAdjust, brightnessDn, -adjustStep),
		setRule("brightness.set", IntentBrightnessSet, brightnessSet),
		adjustRule("volume.increase", IntentVolumeAdjust, volumeUp, adjustStep),
		adjustRule("volume.decrease", IntentVolumeAdjust, volumeDn, -adjustStep),
		flagRule("mute", IntentMute, mutePattern),
		flagRule("unmute", IntentUnmute, unmutePattern),
		setRule("volume.set", IntentVolumeSet, volumeSet),
		Rule{Name: "call", Intent: IntentCall, match: matchCall},
		Rule{Name: "message", Intent: IntentMessage, match: matchMessage},
		Rule{Name: "open_app", Intent: IntentOpenApp, match: matchOpenApp},
		flagRule("battery_query", IntentBatteryQuery, batteryQuery),
	)
	return rules
}

// Rules returns a copy of the rule table in priority order.
func Rules() []Rule {
	out := make([]Rule, len(table))
	copy(out, table)
	return out
}

// Matches reports whether this rule alone would accept the text, ignoring
// the rules ahead of it.
func (r Rule) Matches(text string) bool {
	_, ok := r.match(text)
	return ok
}

func toggleRule(name string, intent Intent, field device.Field, desired bool, verb, keyword *regexp.Regexp) Rule {
	return Rule{
		Name:   name,
		Intent: intent,
		match: func(text string) (Captures, bool) {
			if !verb.MatchString(text) || !keyword.MatchString(text) {
				return Captures{}, false
			}
			return Captures{Field: field, Desired: desired}, true
		},
	}
}

func adjustRule(name string, intent Intent, pattern *regexp.Regexp, delta int) Rule {
	return Rule{
		Name:   name,
		Intent: intent,
		match: func(text string) (Captures, bool) {
			if !pattern.MatchString(text) {
				return Captures{}, false
			}
			return Captures{Delta: delta}, true
		},
	}
}

func setRule(name string, intent Intent, pattern *regexp.Regexp) Rule {
	return Rule{
		Name:   name,
		Intent: intent,
		match: func(text string) (Captures, bool) {
			groups := pattern.FindStringSubmatch(text)
			if groups == nil {
				return Captures{}, false
			}
			// At most three digits, so Atoi cannot overflow or go negative.
			value, err := strconv.Atoi(groups[1])
			if err != nil {
				return Captures{}, false
			}
			return Captures{Value: value}, true
		},
	}
}

func flagRule(name string, intent Intent, pattern *regexp.Regexp) Rule {
	return Rule{
		Name:   name,
		Intent: intent,
		match: func(text string) (Captures, bool) {
			return Captures{}, pattern.MatchString(text)
		},
	}
}

func matchCall(text string) (Captures, bool) {
	groups := callPattern.FindStringSubmatch(text)
	if groups == nil {
		return Captures{}, false
	}
	return Captures{Name: groups[1]}, true
}

func matchMessage(text string) (Captures, bool) {
	groups := messagePat.FindStringSubmatchIndex(text)
	if groups == nil {
		return Captures{}, false
	}
	captures := Captures{Name: text[groups[2]:groups[3]]}
	if groups[4] >= 0 {
		captures.Body = text[groups[4]:groups[5]]
		captures.HasBody = true
	}
	return captures, true
}

func matchOpenApp(text string) (Captures, bool) {
	groups := openAppPat.FindStringSubmatch(text)
	if groups == nil {
		return Captures{}, false
	}
	return Captures{App: groups[1]}, true
}
