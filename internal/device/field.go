package device

import (
	"fmt"
	"strings"
)

// Field names one boolean setting that on/off commands control.
type Field string

const (
	FieldWiFi         Field = "wifi"
	FieldBluetooth    Field = "bluetooth"
	FieldFlashlight   Field = "flashlight"
	FieldLocation     Field = "location"
	FieldBatterySaver Field = "battery_saver"
	FieldAirplaneMode Field = "airplane_mode"
	FieldSilent       Field = "silent"
	FieldDoNotDisturb Field = "do_not_disturb"
)

// Fields lists the toggle fields in display order.
func Fields() []Field {
	return []Field{
		FieldWiFi,
		FieldBluetooth,
		FieldFlashlight,
		FieldLocation,
		FieldBatterySaver,
		FieldAirplaneMode,
		FieldSilent,
		FieldDoNotDisturb,
	}
}

func ParseField(raw string) (Field, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "-", "_")
	for _, field := range Fields() {
		if string(field) == normalized {
			return field, nil
		}
	}
	return "", fmt.Errorf("unknown device field: %s", raw)
}

func (f Field) Label() string {
	switch f {
	case FieldWiFi:
		return "Wi-Fi"
	case FieldBluetooth:
		return "Bluetooth"
	case FieldFlashlight:
		return "Flashlight"
	case FieldLocation:
		return "Location"
	case FieldBatterySaver:
		return "Battery saver"
	case FieldAirplaneMode:
		return "Airplane mode"
	case FieldSilent:
		return "Silent mode"
	case FieldDoNotDisturb:
		return "Do not disturb"
	default:
		return string(f)
	}
}

// IsRadio reports whether airplane mode forces the field off.
func (f Field) IsRadio() bool {
	return f == FieldWiFi || f == FieldBluetooth
}

func (s State) Bool(f Field) bool {
	switch f {
	case FieldWiFi:
		return s.WiFi
	case FieldBluetooth:
		return s.Bluetooth
	case FieldFlashlight:
		return s.Flashlight
	case FieldLocation:
		return s.Location
	case FieldBatterySaver:
		return s.BatterySaver
	case FieldAirplaneMode:
		return s.AirplaneMode
	case FieldSilent:
		return s.Silent
	case FieldDoNotDisturb:
		return s.DoNotDisturb
	default:
		return false
	}
}

// WithBool returns a copy of s with the field set. Unknown fields leave the
// copy unchanged.
func (s State) WithBool(f Field, value bool) State {
	switch f {
	case FieldWiFi:
		s.WiFi = value
	case FieldBluetooth:
		s.Bluetooth = value
	case FieldFlashlight:
		s.Flashlight = value
	case FieldLocation:
		s.Location = value
	case FieldBatterySaver:
		s.BatterySaver = value
	case FieldAirplaneMode:
		s.AirplaneMode = value
	case FieldSilent:
		s.Silent = value
	case FieldDoNotDisturb:
		s.DoNotDisturb = value
	}
	return s
}
