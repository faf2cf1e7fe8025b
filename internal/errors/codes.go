package errors

// Common error codes
const (
	// System errors
	ErrInternal        ErrorCode = "internal_error"
	ErrInvalidArgument ErrorCode = "invalid_argument"
	ErrUnavailable     ErrorCode = "service_unavailable"

	// Configuration errors
	ErrInvalidConfig   ErrorCode = "invalid_configuration"
	ErrBindFlags       ErrorCode = "bind_flags_failed"
	ErrReadConfig      ErrorCode = "read_config_failed"
	ErrInvalidInterval ErrorCode = "invalid_interval"

	// Logging errors
	ErrInvalidLogLevel ErrorCode = "invalid_log_level"

	// Initialization errors
	ErrInitFailed     ErrorCode = "initialization_failed"
	ErrShutdownFailed ErrorCode = "shutdown_failed"
	ErrAlreadyRunning ErrorCode = "already_running"

	// Device errors
	ErrNoDevices     ErrorCode = "no_devices_found"
	ErrDeviceCommand ErrorCode = "device_command_failed"

	// Socket errors
	ErrListenFailed  ErrorCode = "listen_failed"
	ErrConnectFailed ErrorCode = "connect_failed"
	ErrPeerLost      ErrorCode = "peer_connection_lost"
	ErrDecodeFailed  ErrorCode = "decode_failed"

	// Operation errors
	ErrOperationFailed  ErrorCode = "operation_failed"
	ErrResourceNotFound ErrorCode = "resource_not_found"
	ErrMainLoop         ErrorCode = "main_loop_failed"
)

// Common error messages
var errorMessages = map[ErrorCode]string{
	ErrInternal:         "Internal error occurred",
	ErrInvalidArgument:  "Invalid argument provided",
	ErrUnavailable:      "Service unavailable",
	ErrInvalidConfig:    "Invalid configuration",
	ErrBindFlags:        "Failed to bind flags",
	ErrReadConfig:       "Failed to read configuration",
	ErrInvalidInterval:  "Invalid interval value",
	ErrInvalidLogLevel:  "Invalid log level",
	ErrInitFailed:       "Initialization failed",
	ErrShutdownFailed:   "Shutdown failed",
	ErrAlreadyRunning:   "Process already running",
	ErrNoDevices:        "No devices matched available drivers",
	ErrDeviceCommand:    "Device command failed",
	ErrListenFailed:     "Failed to bind and listen",
	ErrConnectFailed:    "Failed to connect to peer",
	ErrPeerLost:         "Peer connection lost",
	ErrDecodeFailed:     "Failed to decode document",
	ErrOperationFailed:  "Operation failed",
	ErrResourceNotFound: "Resource not found",
	ErrMainLoop:         "Error in main loop",
}

// GetErrorMessage returns the message for a given error code
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}

	return string(code)
}
