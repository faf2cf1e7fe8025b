package cooler

import (
	"sync"

	"codeberg.org/voss/hydractl/internal/errors"
)

// FakeDiscoverer returns a fixed set of devices, or none to simulate a
// machine without a supported cooler.
type FakeDiscoverer struct {
	Devices []Device
	Err     error
}

func (d *FakeDiscoverer) Discover() ([]Device, error) {
	return d.Devices, d.Err
}

// SpeedCommand records one SetFixedSpeed call.
type SpeedCommand struct {
	Channel string
	Percent int
}

// ColorCommand records one SetColor call.
type ColorCommand struct {
	Channel string
	Mode    string
	Colors  []string
}

// FakeDevice is an in-memory cooler for tests: it reports a scripted liquid
// temperature and records every issued command.
type FakeDevice struct {
	mu sync.Mutex

	DeviceName string
	LiquidTemp float64
	FanSpeed   float64
	PumpSpeed  float64

	// FailCommands makes every actuation call fail, simulating a busy or
	// disconnected device.
	FailCommands bool

	connected   bool
	initialized bool
	speeds      []SpeedCommand
	colors      []ColorCommand
}

func (d *FakeDevice) Name() string {
	if d.DeviceName == "" {
		return "Fake Cooler"
	}

	return d.DeviceName
}

func (d *FakeDevice) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.FailCommands {
		return errors.New().New(errors.ErrDeviceCommand)
	}
	d.connected = true

	return nil
}

func (d *FakeDevice) Initialize() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.FailCommands {
		return errors.New().New(errors.ErrDeviceCommand)
	}
	d.initialized = true

	return nil
}

func (d *FakeDevice) Status() ([]StatusField, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.FailCommands {
		return nil, errors.New().New(errors.ErrDeviceCommand)
	}

	return []StatusField{
		{Key: "Liquid temperature", Value: d.LiquidTemp, Unit: "°C"},
		{Key: "Fan speed", Value: d.FanSpeed, Unit: "rpm"},
		{Key: "Pump speed", Value: d.PumpSpeed, Unit: "rpm"},
	}, nil
}

func (d *FakeDevice) SetFixedSpeed(channel string, percent int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.FailCommands {
		return errors.New().New(errors.ErrDeviceCommand)
	}
	d.speeds = append(d.speeds, SpeedCommand{Channel: channel, Percent: percent})

	return nil
}

func (d *FakeDevice) SetColor(channel, mode string, colors []string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.FailCommands {
		return errors.New().New(errors.ErrDeviceCommand)
	}
	colorsCopy := make([]string, len(colors))
	copy(colorsCopy, colors)
	d.colors = append(d.colors, ColorCommand{Channel: channel, Mode: mode, Colors: colorsCopy})

	return nil
}

func (d *FakeDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.connected = false

	return nil
}

// SpeedCommands returns the recorded SetFixedSpeed calls in order.
func (d *FakeDevice) SpeedCommands() []SpeedCommand {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]SpeedCommand, len(d.speeds))
	copy(out, d.speeds)

	return out
}

// ColorCommands returns the recorded SetColor calls in order.
func (d *FakeDevice) ColorCommands() []ColorCommand {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]ColorCommand, len(d.colors))
	copy(out, d.colors)

	return out
}

// Connected reports whether Connect has been called without a later Close.
func (d *FakeDevice) Connected() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.connected
}
