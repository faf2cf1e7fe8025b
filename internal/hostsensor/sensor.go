// Package hostsensor reads the CPU die temperature from the host's hardware
// monitoring chips.
package hostsensor

import (
	"context"
	"strings"

	"codeberg.org/voss/hydractl/internal/errors"
	"github.com/shirou/gopsutil/v4/sensors"
)

// Reader yields the current CPU die temperature.
type Reader interface {
	CPUTemperature(ctx context.Context) (float64, error)
}

// ReaderFunc adapts a function to the Reader interface.
type ReaderFunc func(ctx context.Context) (float64, error)

func (f ReaderFunc) CPUTemperature(ctx context.Context) (float64, error) {
	return f(ctx)
}

// hwmonReader selects a labelled reading from one sensor chip, e.g. the tdie
// output of k10temp.
type hwmonReader struct {
	chip   string
	labels []string
}

// New returns a Reader for the given chip accepting the given labels, in
// preference order.
func New(chip string, labels []string) Reader {
	normalized := make([]string, len(labels))
	for i, label := range labels {
		normalized[i] = normalizeLabel(label)
	}

	return &hwmonReader{chip: strings.ToLower(chip), labels: normalized}
}

func (r *hwmonReader) CPUTemperature(ctx context.Context) (float64, error) {
	errFactory := errors.New()

	stats, err := sensors.TemperaturesWithContext(ctx)
	if err != nil {
		return 0, errFactory.Wrap(errors.ErrUnavailable, err)
	}

	for _, label := range r.labels {
		for _, stat := range stats {
			key := normalizeLabel(stat.SensorKey)
			if key == r.chip+"_"+label || (key == r.chip && label == "") {
				return stat.Temperature, nil
			}
		}
	}

	return 0, errFactory.WithData(errors.ErrUnavailable, r.chip)
}

// EstimateFromLiquid approximates the CPU die temperature from the coolant
// temperature when no host sensor is readable. Empirical fit from observed
// liquid/die pairs.
func EstimateFromLiquid(liquidTemp float64) float64 {
	return (-727.5 + 30*liquidTemp) / 7.5
}

func normalizeLabel(label string) string {
	return strings.ReplaceAll(strings.ToLower(label), " ", "_")
}
