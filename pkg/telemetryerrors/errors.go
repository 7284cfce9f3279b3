// Package telemetryerrors provides the typed error vocabulary used across
// the sketch registry, saver, and uploader.
package telemetryerrors

import (
	"errors"
	"fmt"
)

// ErrShuttingDown is the sentinel for the shutdown-in-progress error kind,
// matched by IsShuttingDown. No function in this module returns it: the
// Saver and uploader workers observe shutdown through their Stop methods.
var ErrShuttingDown = errors.New("shutting down")

// ConfigError reports a missing required key or a malformed value at
// profile/uploader construction. Fatal to the instance being built, never
// to the process.
type ConfigError struct {
	Component string
	Field     string
	Err       error
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config %s.%s: %v", e.Component, e.Field, e.Err)
	}
	return fmt.Sprintf("config %s: %v", e.Component, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// FilesystemError reports a directory create, open, write, or lock
// acquisition failure. Logged and skipped by callers; never propagated to
// the inference thread.
type FilesystemError struct {
	Path      string
	Operation string
	Err       error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("filesystem %s: operation %s: %v", e.Path, e.Operation, e.Err)
}

func (e *FilesystemError) Unwrap() error { return e.Err }

// SketchComputationError reports an ill-formed metric input (empty image,
// zero-noise division, unsupported channel count). The profile catches it
// and skips the update for that metric on that call.
type SketchComputationError struct {
	Metric string
	Err    error
}

func (e *SketchComputationError) Error() string {
	return fmt.Sprintf("sketch computation %s: %v", e.Metric, e.Err)
}

func (e *SketchComputationError) Unwrap() error { return e.Err }

// TransportError reports an HTTP non-2xx response or connection failure
// during upload. Retryable indicates whether another attempt is still
// worth making per the caller's retry budget.
type TransportError struct {
	Endpoint  string
	Retryable bool
	Err       error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func WrapConfigError(component, field string, err error) error {
	if err == nil {
		return nil
	}
	return &ConfigError{Component: component, Field: field, Err: err}
}

func WrapFilesystemError(path, operation string, err error) error {
	if err == nil {
		return nil
	}
	return &FilesystemError{Path: path, Operation: operation, Err: err}
}

func WrapSketchComputationError(metric string, err error) error {
	if err == nil {
		return nil
	}
	return &SketchComputationError{Metric: metric, Err: err}
}

func WrapTransportError(endpoint string, retryable bool, err error) error {
	if err == nil {
		return nil
	}
	return &TransportError{Endpoint: endpoint, Retryable: retryable, Err: err}
}

func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

func IsFilesystemError(err error) bool {
	var fe *FilesystemError
	return errors.As(err, &fe)
}

func IsSketchComputationError(err error) bool {
	var se *SketchComputationError
	return errors.As(err, &se)
}

func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsRetryableTransport reports whether err is a TransportError whose
// Retryable flag is set.
func IsRetryableTransport(err error) bool {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Retryable
	}
	return false
}

func IsShuttingDown(err error) bool {
	return errors.Is(err, ErrShuttingDown)
}
