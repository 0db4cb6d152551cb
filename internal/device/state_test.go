package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialSnapshot(t *testing.T) {
	s := Initial()

	assert.True(t, s.WiFi)
	assert.False(t, s.Bluetooth)
	assert.False(t, s.Flashlight)
	assert.False(t, s.Silent)
	assert.False(t, s.DoNotDisturb)
	assert.False(t, s.AirplaneMode)
	assert.True(t, s.Location)
	assert.False(t, s.BatterySaver)
	assert.Equal(t, 72, s.Brightness)
	assert.Equal(t, 46, s.Volume)
	assert.True(t, s.Consistent())
}

func TestClampPercent(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{in: -10, want: 0},
		{in: 0, want: 0},
		{in: 55, want: 55},
		{in: 100, want: 100},
		{in: 999, want: 100},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ClampPercent(tc.in), "ClampPercent(%d)", tc.in)
	}
}

func TestSettleForcesRadiosOffUnderAirplaneMode(t *testing.T) {
	s := State{AirplaneMode: true, WiFi: true, Bluetooth: true, Brightness: 140, Volume: -4}

	settled := s.Settle()

	assert.False(t, settled.WiFi)
	assert.False(t, settled.Bluetooth)
	assert.Equal(t, 100, settled.Brightness)
	assert.Equal(t, 0, settled.Volume)
	assert.True(t, s.WiFi, "Settle must not modify the receiver")
}

func TestSettleLeavesSilentAlone(t *testing.T) {
	s := State{Silent: true, Volume: 30, Brightness: 50}
	assert.Equal(t, s, s.Settle())
}

func TestViolations(t *testing.T) {
	s := State{AirplaneMode: true, WiFi: true, Silent: true, Volume: 20, Brightness: 101}
	got := s.Violations()
	require.Len(t, got, 3)
	assert.Contains(t, got[0], "wifi")
	assert.Contains(t, got[1], "brightness")
	assert.Contains(t, got[2], "silent")

	assert.Contains(t, State{Volume: 0}.Violations(), "volume is 0 while silent mode is off")
}

func TestFieldRoundTrip(t *testing.T) {
	s := State{}
	for _, field := range Fields() {
		on := s.WithBool(field, true)
		assert.True(t, on.Bool(field), "field %s", field)
		assert.False(t, s.Bool(field), "WithBool must return a copy for %s", field)
	}
}

func TestParseField(t *testing.T) {
	field, err := ParseField(" Battery-Saver ")
	require.NoError(t, err)
	assert.Equal(t, FieldBatterySaver, field)
	assert.Equal(t, "Battery saver", field.Label())

	_, err = ParseField("hyperdrive")
	assert.Error(t, err)
}

func TestIsRadio(t *testing.T) {
	assert.True(t, FieldWiFi.IsRadio())
	assert.True(t, FieldBluetooth.IsRadio())
	assert.False(t, FieldLocation.IsRadio())
}
