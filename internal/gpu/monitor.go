// Package gpu monitors and actuates every NVIDIA GPU on the machine through
// NVML. A failed per-device query degrades only that field of the snapshot;
// the tick still completes for the other devices.
package gpu

import (
	"codeberg.org/voss/hydractl/internal/curve"
	"codeberg.org/voss/hydractl/internal/errors"
	"codeberg.org/voss/hydractl/internal/logger"
	"codeberg.org/voss/hydractl/internal/smoothing"
)

// FanStatus is one fan's reading and the duty last commanded for it.
// RPM is nil when the query failed this tick.
type FanStatus struct {
	RPM  *int
	Duty int
}

// DeviceStatus is one GPU's per-tick state. Temperature is nil when the
// query failed this tick; AvgTemperature then carries the previous window.
type DeviceStatus struct {
	Index          int
	Name           string
	Temperature    *float64
	AvgTemperature float64
	Fans           []FanStatus
}

// Monitor owns the NVML session and the per-device smoothing windows.
type Monitor struct {
	ctrl    controller
	devices []device
	names   []string
	windows []*smoothing.Window
}

// New discovers all GPUs. Zero devices is an error; the caller treats it as
// permanent unavailability.
func New() (*Monitor, error) {
	return newMonitor(&nvmlWrapper{})
}

func newMonitor(ctrl controller) (*Monitor, error) {
	errFactory := errors.New()

	if err := ctrl.Initialize(); err != nil {
		return nil, err
	}

	count, err := ctrl.DeviceCount()
	if err != nil {
		ctrl.Shutdown()
		return nil, err
	}
	if count == 0 {
		ctrl.Shutdown()
		return nil, errFactory.New(ErrNoDevicesFound)
	}

	m := &Monitor{ctrl: ctrl}
	for i := 0; i < count; i++ {
		dev, err := ctrl.Device(i)
		if err != nil {
			ctrl.Shutdown()
			return nil, err
		}

		name := "unknown"
		if n, err := dev.Name(); err == nil {
			name = n
		} else {
			logger.Warn().Int("gpu", i).Err(err).Msg("name query failed")
		}
		logger.Info().Int("gpu", i).Str("name", name).Msg("detected GPU")

		m.devices = append(m.devices, dev)
		m.names = append(m.names, name)
		m.windows = append(m.windows, smoothing.NewWindow())
	}

	return m, nil
}

// DeviceCount returns the number of discovered GPUs.
func (m *Monitor) DeviceCount() int {
	return len(m.devices)
}

// Collect queries every device and updates the smoothing windows. Per-call
// failures are logged and leave nil fields; they never abort the collection.
func (m *Monitor) Collect() []DeviceStatus {
	statuses := make([]DeviceStatus, 0, len(m.devices))

	for i, dev := range m.devices {
		st := DeviceStatus{Index: i, Name: m.names[i]}
		window := m.windows[i]

		if temp, err := dev.Temperature(); err == nil {
			if window.Len() == 0 {
				window.Fill(temp)
			} else {
				window.Push(temp)
			}
			st.Temperature = &temp
		} else {
			logger.Warn().Int("gpu", i).Err(err).Msg("temperature query failed")
		}
		st.AvgTemperature = window.Average()

		fanCount, err := dev.FanCount()
		if err != nil {
			logger.Warn().Int("gpu", i).Err(err).Msg("fan count query failed")
			fanCount = 0
		}

		for fan := 0; fan < fanCount; fan++ {
			fs := FanStatus{}
			if rpm, err := dev.FanSpeed(fan); err == nil {
				fs.RPM = &rpm
			} else {
				logger.Warn().Int("gpu", i).Int("fan", fan).Err(err).Msg("fan speed query failed")
			}
			st.Fans = append(st.Fans, fs)
		}

		statuses = append(statuses, st)
	}

	return statuses
}

// ApplyFanCurve computes and commands each device's fan duties from its
// smoothed temperature, recording the commanded duty in the status. A failed
// set degrades that fan only.
func (m *Monitor) ApplyFanCurve(statuses []DeviceStatus) {
	for i := range statuses {
		st := &statuses[i]
		if st.Temperature == nil {
			continue
		}

		for fan := range st.Fans {
			modifier := curve.GPUFanModifierIntake
			if fan > 0 {
				modifier = curve.GPUFanModifierExhaust
			}

			duty := curve.GPUFanSpeed(st.AvgTemperature, modifier)
			if err := m.devices[st.Index].SetFanSpeed(fan, duty); err != nil {
				logger.Warn().Int("gpu", st.Index).Int("fan", fan).Err(err).Msg("set fan speed failed")
				continue
			}
			st.Fans[fan].Duty = duty
		}
	}
}

// MaxAvgTemperature returns the hottest smoothed temperature across devices.
func (m *Monitor) MaxAvgTemperature() float64 {
	maxTemp := 0.0
	for _, window := range m.windows {
		if avg := window.Average(); avg > maxTemp {
			maxTemp = avg
		}
	}

	return maxTemp
}

// Shutdown releases the NVML session.
func (m *Monitor) Shutdown() error {
	return m.ctrl.Shutdown()
}
