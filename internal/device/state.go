// Package device holds the simulated phone settings snapshot.
package device

import "fmt"

// State is a fixed-shape snapshot of the device settings. It is treated as a
// value: transitions return a new State and never mutate the receiver.
type State struct {
	WiFi         bool `json:"wifi" toml:"wifi"`
	Bluetooth    bool `json:"bluetooth" toml:"bluetooth"`
	Flashlight   bool `json:"flashlight" toml:"flashlight"`
	Silent       bool `json:"silent" toml:"silent"`
	DoNotDisturb bool `json:"do_not_disturb" toml:"do_not_disturb"`
	AirplaneMode bool `json:"airplane_mode" toml:"airplane_mode"`
	Location     bool `json:"location" toml:"location"`
	BatterySaver bool `json:"battery_saver" toml:"battery_saver"`
	Brightness   int  `json:"brightness" toml:"brightness"`
	Volume       int  `json:"volume" toml:"volume"`
}

func Initial() State {
	return State{
		WiFi:       true,
		Location:   true,
		Brightness: 72,
		Volume:     46,
	}
}

func ClampPercent(value int) int {
	switch {
	case value < 0:
		return 0
	case value > 100:
		return 100
	default:
		return value
	}
}

// Settle re-derives the fields that depend on others: radios are forced off
// under airplane mode and both percentages are clamped. Silent and volume are
// left alone because each volume path keeps them in sync its own way.
func (s State) Settle() State {
	if s.AirplaneMode {
		s.WiFi = false
		s.Bluetooth = false
	}
	s.Brightness = ClampPercent(s.Brightness)
	s.Volume = ClampPercent(s.Volume)
	return s
}

// Violations reports every invariant the snapshot breaks. An empty result
// means the state is consistent.
func (s State) Violations() []string {
	var out []string
	if s.AirplaneMode && s.WiFi {
		out = append(out, "wifi is on while airplane mode is on")
	}
	if s.AirplaneMode && s.Bluetooth {
		out = append(out, "bluetooth is on while airplane mode is on")
	}
	if s.Brightness < 0 || s.Brightness > 100 {
		out = append(out, fmt.Sprintf("brightness %d is outside 0-100", s.Brightness))
	}
	if s.Volume < 0 || s.Volume > 100 {
		out = append(out, fmt.Sprintf("volume %d is outside 0-100", s.Volume))
	}
	if s.Silent && s.Volume != 0 {
		out = append(out, fmt.Sprintf("silent mode is on with volume %d", s.Volume))
	}
	if !s.Silent && s.Volume == 0 {
		out = append(out, "volume is 0 while silent mode is off")
	}
	return out
}

func (s State) Consistent() bool {
	return len(s.Violations()) == 0
}
