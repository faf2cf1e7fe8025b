package node

import (
	"context"
	"time"

	"codeberg.org/voss/hydractl/internal/cpufreq"
	"codeberg.org/voss/hydractl/internal/gpu"
	"codeberg.org/voss/hydractl/internal/logger"
	"codeberg.org/voss/hydractl/internal/statecell"
	"codeberg.org/voss/hydractl/internal/status"
)

// RootConfig parameterizes the privileged control loop.
type RootConfig struct {
	Interval time.Duration
	Governor string
	Monitor  bool
}

// GPUMonitor is the slice of the GPU monitor the loop drives.
type GPUMonitor interface {
	Collect() []gpu.DeviceStatus
	ApplyFanCurve(statuses []gpu.DeviceStatus)
	MaxAvgTemperature() float64
}

// Root is the privileged control loop: it samples the GPUs, drives their fan
// curves, steers the CPU frequency governor off the smoothed GPU temperature,
// and publishes its snapshot.
type Root struct {
	cfg     RootConfig
	monitor GPUMonitor
	freq    cpufreq.Writer
	cell    *statecell.Cell

	lastGovernor string
	seq          uint64
}

// NewRoot wires the privileged loop; the cell is injected, shared with the
// node's socket server.
func NewRoot(cfg RootConfig, monitor GPUMonitor, freq cpufreq.Writer, cell *statecell.Cell) *Root {
	return &Root{
		cfg:     cfg,
		monitor: monitor,
		freq:    freq,
		cell:    cell,
	}
}

// Run drives the loop until ctx is cancelled. GPU call failures degrade the
// affected fields only; the loop never stops over them.
func (r *Root) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	for {
		r.tick()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (r *Root) tick() {
	devices := r.monitor.Collect()

	if !r.cfg.Monitor {
		r.monitor.ApplyFanCurve(devices)
	}

	governor := cpufreq.Select(r.cfg.Governor, r.monitor.MaxAvgTemperature())
	if !r.cfg.Monitor && governor != r.lastGovernor {
		// A failed write stays transient: lastGovernor is only advanced on
		// success, so the next tick retries
		if err := r.freq.Apply(governor); err != nil {
			logger.Warn().Str("governor", governor).Err(err).Msg("governor apply failed")
		} else {
			logger.Info().Str("governor", governor).Msg("governor switched")
			r.lastGovernor = governor
		}
	}

	r.seq++
	snap := status.Snapshot{
		status.FieldGovernor: governor,
	}
	for _, device := range devices {
		snap[status.GPUField(device.Index, "name")] = device.Name
		if device.Temperature != nil {
			snap[status.GPUField(device.Index, "temp")] = round1(*device.Temperature)
		}
		snap[status.GPUField(device.Index, "temp_avg")] = round1(device.AvgTemperature)
		for fan, st := range device.Fans {
			if st.RPM != nil {
				snap[status.GPUFanField(device.Index, fan, "rpm")] = *st.RPM
			}
			snap[status.GPUFanField(device.Index, fan, "duty")] = st.Duty
		}
	}
	r.cell.Write(snap.Stamp(r.seq, time.Now()))

	logger.Debug().
		Int("gpus", len(devices)).
		Str("governor", governor).
		Float64("gpu_temp_avg", r.monitor.MaxAvgTemperature()).
		Msg("tick published")
}
