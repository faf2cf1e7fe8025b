// Package cooler abstracts the liquid-cooler hardware behind a narrow
// capability interface so the vendor tooling is swappable and the control
// loop can run against a simulated device in tests.
package cooler

import "strings"

// StatusField is one entry of a device's ordered status report.
type StatusField struct {
	Key   string
	Value any
	Unit  string
}

// Device is one physical cooler. A handle is obtained once at node start-up
// and owned by the control loop for the node's lifetime; it is re-acquired by
// retrying discovery, never by recreating the node.
type Device interface {
	Name() string
	Connect() error
	Initialize() error
	Status() ([]StatusField, error)
	SetFixedSpeed(channel string, percent int) error
	SetColor(channel, mode string, colors []string) error
	Close() error
}

// Discoverer enumerates attached cooler devices.
type Discoverer interface {
	Discover() ([]Device, error)
}

// Cooler status channels
const (
	ChannelFan  = "fan"
	ChannelPump = "pump"
	ChannelLED  = "led"

	ColorModeFixed = "fixed"
)

// LiquidTemp extracts the liquid temperature from an ordered status report.
func LiquidTemp(fields []StatusField) (float64, bool) {
	return findNumber(fields, "liquid temperature")
}

// FanRPM extracts the fan speed from an ordered status report.
func FanRPM(fields []StatusField) (float64, bool) {
	return findNumber(fields, "fan speed")
}

// PumpRPM extracts the pump speed from an ordered status report.
func PumpRPM(fields []StatusField) (float64, bool) {
	return findNumber(fields, "pump speed")
}

func findNumber(fields []StatusField, key string) (float64, bool) {
	for _, field := range fields {
		if !strings.Contains(strings.ToLower(field.Key), key) {
			continue
		}
		switch v := field.Value.(type) {
		case float64:
			return v, true
		case int:
			return float64(v), true
		}
	}

	return 0, false
}
