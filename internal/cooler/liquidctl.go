package cooler

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"

	"codeberg.org/voss/hydractl/internal/errors"
)

const defaultBinary = "liquidctl"

// liquidctlDiscoverer drives coolers through the liquidctl command-line tool,
// which exposes every supported device behind one JSON interface.
type liquidctlDiscoverer struct {
	binary string
}

// NewLiquidctl returns a Discoverer backed by the liquidctl CLI.
func NewLiquidctl() Discoverer {
	return &liquidctlDiscoverer{binary: defaultBinary}
}

type liquidctlEntry struct {
	Bus         string `json:"bus"`
	Address     string `json:"address"`
	Description string `json:"description"`
	Status      []struct {
		Key   string `json:"key"`
		Value any    `json:"value"`
		Unit  string `json:"unit"`
	} `json:"status"`
}

func (d *liquidctlDiscoverer) Discover() ([]Device, error) {
	errFactory := errors.New()

	out, err := exec.Command(d.binary, "--json", "list").Output()
	if err != nil {
		return nil, errFactory.Wrap(errors.ErrNoDevices, err)
	}

	var entries []liquidctlEntry
	if err := json.Unmarshal(out, &entries); err != nil {
		return nil, errFactory.Wrap(errors.ErrDecodeFailed, err)
	}

	devices := make([]Device, 0, len(entries))
	for _, entry := range entries {
		devices = append(devices, &liquidctlDevice{
			binary:      d.binary,
			description: entry.Description,
		})
	}

	return devices, nil
}

// liquidctlDevice addresses one cooler by its description match.
type liquidctlDevice struct {
	binary      string
	description string
}

func (d *liquidctlDevice) Name() string {
	return d.description
}

// Connect is satisfied per invocation by the CLI; nothing to hold open.
func (d *liquidctlDevice) Connect() error {
	return nil
}

func (d *liquidctlDevice) Initialize() error {
	return d.run("initialize")
}

func (d *liquidctlDevice) Status() ([]StatusField, error) {
	errFactory := errors.New()

	out, err := exec.Command(d.binary, "--json", "--match", d.description, "status").Output()
	if err != nil {
		return nil, errFactory.Wrap(errors.ErrDeviceCommand, err)
	}

	var entries []liquidctlEntry
	if err := json.Unmarshal(out, &entries); err != nil {
		return nil, errFactory.Wrap(errors.ErrDecodeFailed, err)
	}
	if len(entries) == 0 {
		return nil, errFactory.WithData(errors.ErrDeviceCommand, fmt.Sprintf("no status for %q", d.description))
	}

	fields := make([]StatusField, 0, len(entries[0].Status))
	for _, field := range entries[0].Status {
		fields = append(fields, StatusField{Key: field.Key, Value: field.Value, Unit: field.Unit})
	}

	return fields, nil
}

func (d *liquidctlDevice) SetFixedSpeed(channel string, percent int) error {
	return d.run("set", channel, "speed", strconv.Itoa(percent))
}

func (d *liquidctlDevice) SetColor(channel, mode string, colors []string) error {
	args := append([]string{"set", channel, "color", mode}, colors...)

	return d.run(args...)
}

func (d *liquidctlDevice) Close() error {
	return nil
}

func (d *liquidctlDevice) run(args ...string) error {
	errFactory := errors.New()

	full := append([]string{"--match", d.description}, args...)
	if err := exec.Command(d.binary, full...).Run(); err != nil {
		return errFactory.Wrap(errors.ErrDeviceCommand, err)
	}

	return nil
}
