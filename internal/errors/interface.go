package errors

// ErrorCode identifies one failure class: configuration, device discovery and
// commands, socket connectivity, governor writes. Codes are stable strings so
// log lines can be grepped across the three node binaries.
type ErrorCode string

// Error is a failure tagged with its code plus optional context: the message
// shown to the operator, the wrapped cause, and free-form data such as the
// offending device or config value.
type Error interface {
	error
	Code() ErrorCode
	WithMessage(msg string) Error
	WithData(data any) Error
	GetData() any
	Unwrap() error
}

// Factory builds tagged errors at the failure site.
type Factory interface {
	New(code ErrorCode) Error
	Wrap(code ErrorCode, err error) Error
	WithMessage(code ErrorCode, msg string) Error
	WithData(code ErrorCode, data any) Error
}
