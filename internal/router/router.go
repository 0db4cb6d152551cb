package router

import "github.com/ashwch/handset/internal/device"

// Intent describes the category of action a command maps to.
type Intent string

const (
	IntentNone             Intent = "none"
	IntentToggle           Intent = "toggle"
	IntentDoNotDisturb     Intent = "do_not_disturb"
	IntentBrightnessAdjust Intent = "brightness_adjust"
	IntentBrightnessSet    Intent = "brightness_set"
	IntentVolumeAdjust     Intent = "volume_adjust"
	IntentMute             Intent = "mute"
	IntentUnmute           Intent = "unmute"
	IntentVolumeSet        Intent = "volume_set"
	IntentCall             Intent = "call"
	IntentMessage          Intent = "message"
	IntentOpenApp          Intent = "open_app"
	IntentBatteryQuery     Intent = "battery_query"
)

// Captures holds the parameters a rule extracted from the command text.
// Only the fields relevant to the matched intent are populated.
type Captures struct {
	Field   device.Field
	Desired bool
	Delta   int
	Value   int
	Name    string
	Body    string
	HasBody bool
	App     string
}

// Result is a successful rule match.
type Result struct {
	Rule     string
	Intent   Intent
	Captures Captures
}

// Match evaluates the rule table in order against an already normalized
// command. The first rule whose predicate matches wins.
func Match(normalized string) (Result, bool) {
	for _, rule := range table {
		captures, ok := rule.match(normalized)
		if !ok {
			continue
		}
		return Result{Rule: rule.Name, Intent: rule.Intent, Captures: captures}, true
	}
	return Result{Rule: "", Intent: IntentNone}, false
}
