package core

import (
	stdErrors "errors"
	"fmt"
)

type AuthReason string

const (
	// AuthNon2xx covers any token service response outside the 2xx range,
	// including transport-level failures where no response arrived at all.
	AuthNon2xx AuthReason = "non_2xx"
	// AuthMalformedBody covers undecodable or partially populated bodies.
	AuthMalformedBody AuthReason = "malformed_body"
)

// AuthError indicates the token service refused or mangled a credential request.
type AuthError struct {
	Reason AuthReason
	Op     string // high-level operation (e.g. "token.session")
	Err    error  // underlying cause (may be nil)
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("auth error (%s): %s", e.Reason, e.Op)
	}
	return fmt.Sprintf("auth error (%s): %s: %v", e.Reason, e.Op, e.Err)
}
func (e *AuthError) Unwrap() error { return e.Err }

type TransportReason string

const (
	TransportConnectFailed TransportReason = "connect_failed"
	TransportDisconnected  TransportReason = "disconnected_unexpectedly"
)

// TransportError indicates the media transport could not be established or was lost.
type TransportError struct {
	Reason TransportReason
	Op     string
	Err    error
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("transport error (%s): %s", e.Reason, e.Op)
	}
	return fmt.Sprintf("transport error (%s): %s: %v", e.Reason, e.Op, e.Err)
}
func (e *TransportError) Unwrap() error { return e.Err }

type DeviceReason string

const (
	DevicePermissionDenied DeviceReason = "permission_denied"
	DeviceNoDevice         DeviceReason = "no_device"
	DeviceMediaFailure     DeviceReason = "media_device_failure"
)

// DeviceError indicates a local capture or playback device problem.
type DeviceError struct {
	Reason DeviceReason
	Op     string
	Err    error
}

func (e *DeviceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("device error (%s): %s", e.Reason, e.Op)
	}
	return fmt.Sprintf("device error (%s): %s: %v", e.Reason, e.Op, e.Err)
}
func (e *DeviceError) Unwrap() error { return e.Err }

// IsAuthError reports whether err is (or wraps) an AuthError.
func IsAuthError(err error) bool {
	var ae *AuthError
	return stdErrors.As(err, &ae)
}

// IsTransportError reports whether err is (or wraps) a TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return stdErrors.As(err, &te)
}

// IsDeviceError reports whether err is (or wraps) a DeviceError.
func IsDeviceError(err error) bool {
	var de *DeviceError
	return stdErrors.As(err, &de)
}
