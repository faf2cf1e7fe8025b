// Package status defines the snapshot each node publishes: a flat field map
// replaced wholesale on every control-loop tick.
package status

import (
	"strconv"
	"time"
)

// Well-known snapshot fields. Per-GPU fields are built with GPUField.
const (
	FieldLiquidTemp    = "liquid_temp"
	FieldLiquidTempAvg = "liquid_temp_avg"
	FieldCPUTemp       = "cpu_temp"
	FieldCPUTempAvg    = "cpu_temp_avg"
	FieldFanRPM        = "fan_rpm"
	FieldPumpRPM       = "pump_rpm"
	FieldFanDuty       = "fan_duty"
	FieldLEDColor      = "led_color"
	FieldGovernor      = "governor"

	// Staleness markers, stamped by the publishing node. A consumer that sees
	// the same seq twice knows the upstream feed has not produced since.
	FieldSeq       = "seq"
	FieldUpdatedAt = "updated_at"
)

// Snapshot is one node's complete publishable state at an instant. It is
// owned by the node that produced it and replaced, never patched.
type Snapshot map[string]any

// GPUField names a per-device field, e.g. GPUField(0, "temp") -> "gpu0_temp".
func GPUField(index int, name string) string {
	return "gpu" + itoa(index) + "_" + name
}

// GPUFanField names a per-fan field, e.g. GPUFanField(0, 1, "rpm") -> "gpu0_fan1_rpm".
func GPUFanField(device, fan int, name string) string {
	return "gpu" + itoa(device) + "_fan" + itoa(fan) + "_" + name
}

// Stamp sets the staleness markers on s and returns it.
func (s Snapshot) Stamp(seq uint64, now time.Time) Snapshot {
	s[FieldSeq] = seq
	s[FieldUpdatedAt] = now.UTC().Format(time.RFC3339)

	return s
}

// Clone returns a shallow copy of s. Field values are scalars, so a shallow
// copy is a full copy.
func (s Snapshot) Clone() Snapshot {
	if s == nil {
		return nil
	}

	out := make(Snapshot, len(s))
	for k, v := range s {
		out[k] = v
	}

	return out
}

// Merge combines the given snapshots into a new one, later sources winning on
// key collision. Sources are never mutated.
func Merge(sources ...Snapshot) Snapshot {
	out := make(Snapshot)
	for _, src := range sources {
		for k, v := range src {
			out[k] = v
		}
	}

	return out
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
