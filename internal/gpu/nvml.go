package gpu

import (
	"codeberg.org/voss/hydractl/internal/errors"
	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

// device abstracts one GPU's NVML operations for testing
type device interface {
	Name() (string, error)
	Temperature() (float64, error)
	FanCount() (int, error)
	FanSpeed(index int) (int, error)
	SetFanSpeed(index, percent int) error
}

// controller abstracts NVML lifecycle and enumeration for testing
type controller interface {
	Initialize() error
	Shutdown() error
	DeviceCount() (int, error)
	Device(index int) (device, error)
}

type nvmlWrapper struct {
	initialized bool
}

func (w *nvmlWrapper) Initialize() error {
	errFactory := errors.New()
	if w.initialized {
		return nil
	}

	ret := nvml.Init()
	if !IsNVMLSuccess(ret) {
		return errFactory.Wrap(ErrInitFailed, newNVMLError(ret))
	}

	w.initialized = true

	return nil
}

func (w *nvmlWrapper) Shutdown() error {
	errFactory := errors.New()
	if !w.initialized {
		return nil
	}

	ret := nvml.Shutdown()
	if !IsNVMLSuccess(ret) {
		return errFactory.Wrap(ErrShutdownFailed, newNVMLError(ret))
	}

	w.initialized = false

	return nil
}

func (w *nvmlWrapper) DeviceCount() (int, error) {
	errFactory := errors.New()
	if !w.initialized {
		return 0, errFactory.New(ErrNotInitialized)
	}

	count, ret := nvml.DeviceGetCount()
	if !IsNVMLSuccess(ret) {
		return 0, errFactory.Wrap(ErrDeviceCountFailed, newNVMLError(ret))
	}

	return count, nil
}

func (w *nvmlWrapper) Device(index int) (device, error) {
	errFactory := errors.New()
	if !w.initialized {
		return nil, errFactory.New(ErrNotInitialized)
	}

	handle, ret := nvml.DeviceGetHandleByIndex(index)
	if !IsNVMLSuccess(ret) {
		return nil, errFactory.Wrap(ErrDeviceNotFound, newNVMLError(ret))
	}

	return &nvmlDevice{handle: handle}, nil
}

type nvmlDevice struct {
	handle nvml.Device
}

func (d *nvmlDevice) Name() (string, error) {
	name, ret := d.handle.GetName()
	if !IsNVMLSuccess(ret) {
		return "", newNVMLError(ret)
	}

	return name, nil
}

func (d *nvmlDevice) Temperature() (float64, error) {
	temp, ret := d.handle.GetTemperature(nvml.TEMPERATURE_GPU)
	if !IsNVMLSuccess(ret) {
		return 0, newNVMLError(ret)
	}

	return float64(temp), nil
}

func (d *nvmlDevice) FanCount() (int, error) {
	count, ret := d.handle.GetNumFans()
	if !IsNVMLSuccess(ret) {
		return 0, newNVMLError(ret)
	}

	return count, nil
}

func (d *nvmlDevice) FanSpeed(index int) (int, error) {
	speed, ret := d.handle.GetFanSpeed_v2(index)
	if !IsNVMLSuccess(ret) {
		return 0, newNVMLError(ret)
	}

	return int(speed), nil
}

func (d *nvmlDevice) SetFanSpeed(index, percent int) error {
	if ret := nvml.DeviceSetFanSpeed_v2(d.handle, index, percent); !IsNVMLSuccess(ret) {
		return newNVMLError(ret)
	}

	return nil
}
