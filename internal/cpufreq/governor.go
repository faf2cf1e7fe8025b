// Package cpufreq applies the CPU frequency-scaling governor through the
// kernel's per-core control files. Requires root.
package cpufreq

import (
	"os"
	"path/filepath"

	"codeberg.org/voss/hydractl/internal/errors"
	"codeberg.org/voss/hydractl/internal/logger"
)

const governorGlob = "/sys/devices/system/cpu/cpu*/cpufreq/scaling_governor"

// WarmDegree is the smoothed GPU temperature above which the configured
// governor is overridden to powersave.
const WarmDegree = 39.0

// Writer applies a governor to every core.
type Writer interface {
	Apply(governor string) error
}

// WriterFunc adapts a function to the Writer interface.
type WriterFunc func(governor string) error

func (f WriterFunc) Apply(governor string) error {
	return f(governor)
}

type sysfsWriter struct {
	glob string
}

// New returns a Writer over the kernel's scaling_governor files.
func New() Writer {
	return &sysfsWriter{glob: governorGlob}
}

// Apply writes the governor string verbatim to each per-core control file.
// A core that rejects the write degrades only that core.
func (w *sysfsWriter) Apply(governor string) error {
	errFactory := errors.New()

	paths, err := filepath.Glob(w.glob)
	if err != nil {
		return errFactory.Wrap(errors.ErrOperationFailed, err)
	}
	if len(paths) == 0 {
		return errFactory.WithData(errors.ErrResourceNotFound, w.glob)
	}

	applied := 0
	for _, path := range paths {
		if err := os.WriteFile(path, []byte(governor), 0o644); err != nil {
			logger.Warn().Str("path", path).Err(err).Msg("governor write failed")
			continue
		}
		applied++
	}

	if applied == 0 {
		return errFactory.WithData(errors.ErrOperationFailed, governor)
	}

	return nil
}

// Select returns the governor to apply this tick: the operator's configured
// choice, overridden to powersave when the smoothed GPU temperature crosses
// the warm threshold.
func Select(configured string, gpuAvgDegree float64) string {
	if gpuAvgDegree > WarmDegree {
		return "powersave"
	}

	return configured
}
