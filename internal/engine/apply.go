package engine

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ashwch/handset/internal/device"
	"github.com/ashwch/handset/internal/router"
)

const (
	silentOffVolume = 35
	unmuteVolume    = 40
	callVolume      = 50
	callMinVolume   = 30
)

// Apply computes the outcome of a matched rule. It does not modify state;
// successful transitions are settled before they are returned.
func Apply(state device.State, match router.Result) Outcome {
	out := applyIntent(state, match.Captures, match.Intent)
	out.Intent = match.Intent
	out.Rule = match.Rule
	if out.Success {
		out.NextState = out.NextState.Settle()
	}
	return out
}

func applyIntent(s device.State, c router.Captures, intent router.Intent) Outcome {
	switch intent {
	case router.IntentToggle, router.IntentDoNotDisturb:
		return applyToggle(s, c.Field, c.Desired)
	case router.IntentBrightnessAdjust:
		next := device.ClampPercent(s.Brightness + c.Delta)
		changed := next != s.Brightness
		s.Brightness = next
		return Outcome{NextState: s, Success: changed, Response: fmt.Sprintf("Brightness set to %d%%", next)}
	case router.IntentBrightnessSet:
		s.Brightness = device.ClampPercent(c.Value)
		return Outcome{NextState: s, Success: true, Response: fmt.Sprintf("Brightness set to %d%%", s.Brightness)}
	case router.IntentVolumeAdjust:
		next := device.ClampPercent(s.Volume + c.Delta)
		changed := next != s.Volume
		s.Volume = next
		s.Silent = next == 0
		direction := "increased"
		if c.Delta < 0 {
			direction = "reduced"
		}
		return Outcome{NextState: s, Success: changed, Response: fmt.Sprintf("Volume %s to %d%%", direction, next)}
	case router.IntentMute:
		if s.Silent && s.Volume == 0 {
			return Outcome{NextState: s, Response: "The phone is already muted."}
		}
		s.Silent = true
		s.Volume = 0
		return Outcome{NextState: s, Success: true, Response: "Muting the phone."}
	case router.IntentUnmute:
		if !s.Silent && s.Volume > 0 {
			return Outcome{NextState: s, Response: "The phone is already unmuted."}
		}
		s.Silent = false
		if s.Volume == 0 {
			s.Volume = unmuteVolume
		}
		return Outcome{NextState: s, Success: true, Response: "Restoring sound."}
	case router.IntentVolumeSet:
		s.Volume = device.ClampPercent(c.Value)
		s.Silent = s.Volume == 0
		return Outcome{NextState: s, Success: true, Response: fmt.Sprintf("Volume set to %d%%", s.Volume)}
	case router.IntentCall:
		s.Silent = false
		if s.Volume < callMinVolume {
			s.Volume = callVolume
		}
		return Outcome{NextState: s, Success: true, Response: fmt.Sprintf("Placing a call to %s...", ContactName(c.Name))}
	case router.IntentMessage:
		name := ContactName(c.Name)
		body := strings.TrimSpace(c.Body)
		if !c.HasBody || body == "" {
			return Outcome{NextState: s, Response: fmt.Sprintf("What should I say to %s?", name)}
		}
		return Outcome{NextState: s, Success: true, Response: fmt.Sprintf("Sending \"%s\" to %s.", body, name)}
	case router.IntentOpenApp:
		return Outcome{NextState: s, Success: true, Response: fmt.Sprintf("Opening %s.", c.App)}
	case router.IntentBatteryQuery:
		response := "Battery level is stable."
		if s.BatterySaver {
			response = "Battery saver is preserving power."
		}
		return Outcome{NextState: s, Success: true, Response: response}
	default:
		return Outcome{NextState: s, Response: ResponseNoMatch}
	}
}

func applyToggle(s device.State, field device.Field, desired bool) Outcome {
	label := field.Label()
	if s.Bool(field) == desired {
		return Outcome{NextState: s, Response: fmt.Sprintf("%s is already %s.", label, onOff(desired))}
	}
	if desired && field.IsRadio() && s.AirplaneMode {
		return Outcome{NextState: s, Response: fmt.Sprintf("%s is unavailable while airplane mode is on.", label)}
	}

	next := s.WithBool(field, desired)
	response := fmt.Sprintf("%s is now %s.", label, onOff(desired))
	switch field {
	case device.FieldAirplaneMode:
		if desired {
			next.WiFi = false
			next.Bluetooth = false
			response = "Turning on airplane mode and disabling Wi-Fi and Bluetooth."
		} else {
			response = "Airplane mode is off. Wi-Fi and Bluetooth remain disabled."
		}
	case device.FieldSilent:
		if desired {
			next.Volume = 0
		} else if s.Volume == 0 {
			next.Volume = silentOffVolume
		}
	}
	return Outcome{NextState: next, Success: true, Response: response}
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

// ContactName title-cases each word of a captured name. An empty capture
// becomes "your contact".
func ContactName(raw string) string {
	words := strings.Fields(raw)
	if len(words) == 0 {
		return "your contact"
	}
	return cases.Title(language.English).String(strings.Join(words, " "))
}
