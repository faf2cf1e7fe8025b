package gpu

import (
	"codeberg.org/voss/hydractl/internal/errors"
	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

const (
	ErrNotInitialized    = errors.ErrorCode("gpu_not_initialized")
	ErrInitFailed        = errors.ErrorCode("gpu_init_failed")
	ErrShutdownFailed    = errors.ErrorCode("gpu_shutdown_failed")
	ErrDeviceCountFailed = errors.ErrorCode("gpu_device_count_failed")
	ErrDeviceNotFound    = errors.ErrorCode("gpu_device_not_found")
	ErrNoDevicesFound    = errors.ErrorCode("gpu_no_devices_found")
	ErrSetFanSpeed       = errors.ErrorCode("gpu_set_fan_speed_failed")
)

// nvmlError represents an NVML-specific error
type nvmlError struct {
	ret nvml.Return
}

func (e nvmlError) Error() string {
	return nvml.ErrorString(e.ret)
}

// newNVMLError creates an error from an NVML return code
func newNVMLError(ret nvml.Return) error {
	if ret == nvml.SUCCESS {
		return nil
	}
	return &nvmlError{ret: ret}
}

// IsNVMLSuccess checks if a Return value indicates success
func IsNVMLSuccess(ret nvml.Return) bool {
	return ret == nvml.SUCCESS
}
