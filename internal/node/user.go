// Package node holds the control loops: sense, smooth, compute, actuate,
// publish, sleep.
package node

import (
	"context"
	"math"
	"time"

	"codeberg.org/voss/hydractl/internal/cooler"
	"codeberg.org/voss/hydractl/internal/curve"
	"codeberg.org/voss/hydractl/internal/errors"
	"codeberg.org/voss/hydractl/internal/hostsensor"
	"codeberg.org/voss/hydractl/internal/lighting"
	"codeberg.org/voss/hydractl/internal/logger"
	"codeberg.org/voss/hydractl/internal/retry"
	"codeberg.org/voss/hydractl/internal/smoothing"
	"codeberg.org/voss/hydractl/internal/statecell"
	"codeberg.org/voss/hydractl/internal/status"
)

// UserConfig parameterizes the unprivileged control loop.
type UserConfig struct {
	Interval   time.Duration
	RetryDelay time.Duration
	DegreeMin  float64
	DegreeMax  float64
	HueFix     bool
	Monitor    bool
}

// User is the unprivileged control loop: it samples the cooler and the CPU
// die, derives the LED color and fan duty from the smoothed coolant
// temperature, actuates the cooler, and publishes its snapshot.
type User struct {
	cfg        UserConfig
	discoverer cooler.Discoverer
	sensor     hostsensor.Reader
	cell       *statecell.Cell

	liquidWindow *smoothing.Window
	cpuWindow    *smoothing.Window
	seq          uint64
}

// NewUser wires the unprivileged loop; the cell is injected, shared with the
// node's socket server.
func NewUser(cfg UserConfig, discoverer cooler.Discoverer, sensor hostsensor.Reader, cell *statecell.Cell) *User {
	return &User{
		cfg:          cfg,
		discoverer:   discoverer,
		sensor:       sensor,
		cell:         cell,
		liquidWindow: smoothing.NewWindow(),
		cpuWindow:    smoothing.NewWindow(),
	}
}

// Run drives the loop until ctx is cancelled. Zero devices at discovery is
// permanent: reported once, the loop never starts. Any later device failure
// restarts the whole discover-connect sequence after the fixed delay,
// forever.
func (u *User) Run(ctx context.Context) error {
	errFactory := errors.New()

	devices, err := u.discoverer.Discover()
	if err != nil {
		return errFactory.Wrap(errors.ErrNoDevices, err)
	}
	if len(devices) == 0 {
		logger.Error().Msg("no devices matched available drivers and selection criteria")
		return errFactory.New(errors.ErrNoDevices)
	}

	device := devices[0]
	policy := retry.Policy{Delay: u.cfg.RetryDelay}

	return policy.Forever(ctx, func(ctx context.Context) error {
		if device == nil {
			found, err := u.discoverer.Discover()
			if err != nil || len(found) == 0 {
				logger.Warn().Err(err).Msg("cooler rediscovery failed, retrying")
				return errFactory.New(errors.ErrNoDevices)
			}
			device = found[0]
		}

		err := u.session(ctx, device)
		if ctx.Err() == nil {
			logger.Warn().Str("device", device.Name()).Err(err).Msg("cooler session failed, reacquiring device")
		}
		// Reacquire the handle by retrying discovery next attempt
		device = nil

		return err
	})
}

// session connects to one device and ticks until the device fails or ctx is
// cancelled.
func (u *User) session(ctx context.Context, device cooler.Device) error {
	if err := device.Connect(); err != nil {
		return err
	}
	defer device.Close()

	if err := device.Initialize(); err != nil {
		return err
	}

	logger.Info().Str("device", device.Name()).Msg("cooler connected")

	ticker := time.NewTicker(u.cfg.Interval)
	defer ticker.Stop()

	for {
		if err := u.tick(ctx, device); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (u *User) tick(ctx context.Context, device cooler.Device) error {
	errFactory := errors.New()

	fields, err := device.Status()
	if err != nil {
		return err
	}

	liquidTemp, ok := cooler.LiquidTemp(fields)
	if !ok {
		return errFactory.WithData(errors.ErrDeviceCommand, "status report carries no liquid temperature")
	}
	fanRPM, _ := cooler.FanRPM(fields)
	pumpRPM, _ := cooler.PumpRPM(fields)

	cpuTemp, err := u.sensor.CPUTemperature(ctx)
	if err != nil || cpuTemp == 0 {
		cpuTemp = hostsensor.EstimateFromLiquid(liquidTemp)
	}

	if u.liquidWindow.Len() == 0 {
		u.liquidWindow.Fill(liquidTemp)
		u.cpuWindow.Fill(cpuTemp)
	} else {
		u.liquidWindow.Push(liquidTemp)
		u.cpuWindow.Push(cpuTemp)
	}

	liquidAvg := u.liquidWindow.Average()
	cpuAvg := u.cpuWindow.Average()

	wavelength := lighting.DegreeToWavelength(liquidAvg, u.cfg.DegreeMin, u.cfg.DegreeMax)
	r, g, b := lighting.WavelengthToRGB(wavelength, liquidAvg, u.cfg.DegreeMin, u.cfg.DegreeMax)
	if u.cfg.HueFix {
		r, g, b = lighting.AorusX470HueFix(r, g, b)
	}
	color := lighting.RGBToHex(r, g, b)

	duty := curve.CoolantSpeed(liquidAvg)

	if !u.cfg.Monitor {
		if err := device.SetColor(cooler.ChannelLED, cooler.ColorModeFixed, []string{color}); err != nil {
			return err
		}
		if err := device.SetFixedSpeed(cooler.ChannelFan, duty); err != nil {
			return err
		}
	}

	u.seq++
	snap := status.Snapshot{
		status.FieldLiquidTemp:    round1(liquidTemp),
		status.FieldLiquidTempAvg: round1(liquidAvg),
		status.FieldCPUTemp:       round1(cpuTemp),
		status.FieldCPUTempAvg:    round1(cpuAvg),
		status.FieldFanRPM:        fanRPM,
		status.FieldPumpRPM:       pumpRPM,
		status.FieldFanDuty:       duty,
		status.FieldLEDColor:      color,
	}.Stamp(u.seq, time.Now())
	u.cell.Write(snap)

	logger.Debug().
		Float64("liquid_temp", liquidTemp).
		Float64("liquid_temp_avg", liquidAvg).
		Float64("cpu_temp", cpuTemp).
		Int("fan_duty", duty).
		Str("led_color", color).
		Msg("tick published")

	return nil
}

func round1(value float64) float64 {
	return math.Round(value*10) / 10
}
