package models

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	ErrNotFound         = status.Errorf(codes.NotFound, "not found")
	ErrDuplicateMessage = status.Errorf(codes.AlreadyExists, "message already ingested")
	ErrMappingInactive  = status.Errorf(codes.FailedPrecondition, "channel mapping is inactive")
	ErrAlreadyPromoted  = status.Errorf(codes.FailedPrecondition, "message is already promoted")
)

// PlatformNotSupportedError is returned before any network or database
// effect when a platform has no registered client or the client lacks the
// requested capability.
type PlatformNotSupportedError struct {
	Platform  Platform
	Operation string
}

func (e *PlatformNotSupportedError) Error() string {
	if e.Operation != "" {
		return "platform " + string(e.Platform) + " does not support " + e.Operation
	}
	return "platform " + string(e.Platform) + " is not supported"
}

// PlatformError wraps a transport failure from a platform client so callers
// can log which platform and operation failed without losing the cause.
type PlatformError struct {
	Platform  Platform
	Operation string
	Cause     error
}

func (e *PlatformError) Error() string {
	msg := string(e.Platform) + " " + e.Operation + " failed"
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *PlatformError) Unwrap() error {
	return e.Cause
}

func NewPlatformError(platform Platform, operation string, cause error) *PlatformError {
	return &PlatformError{Platform: platform, Operation: operation, Cause: cause}
}
