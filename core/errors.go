package core

import "fmt"

// Error values for pipeline operations. Metadata extraction and
// injection failures are recovered locally and never reach these;
// only decode, transform, and encode failures abort an operation.
var (
	// ErrDecodeFailed is returned when the source bytes cannot be
	// decoded as an image.
	ErrDecodeFailed = &PipelineError{Code: "DECODE_FAILED", Message: "failed to decode source image"}

	// ErrTransformFailed is returned when the pixel transform rejects.
	ErrTransformFailed = &PipelineError{Code: "TRANSFORM_FAILED", Message: "pixel transform failed"}

	// ErrEncodeFailed is returned when the transformed surface cannot
	// be re-encoded to the snapshot's container format.
	ErrEncodeFailed = &PipelineError{Code: "ENCODE_FAILED", Message: "failed to re-encode image"}

	// ErrNoImage is returned when a transform is requested with no
	// image loaded.
	ErrNoImage = &PipelineError{Code: "NO_IMAGE", Message: "no image loaded"}

	// ErrBusy is returned when a transform is requested while another
	// operation is in flight.
	ErrBusy = &PipelineError{Code: "BUSY", Message: "another operation is in flight"}

	// ErrSuperseded is returned when a newer load invalidated the
	// operation before it could publish its result.
	ErrSuperseded = &PipelineError{Code: "SUPERSEDED", Message: "operation superseded by a newer load"}
)

// PipelineError is a structured error carrying a stable code for
// programmatic handling.
type PipelineError struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// WithCause returns a copy of the error with a cause attached.
func (e *PipelineError) WithCause(cause error) *PipelineError {
	return &PipelineError{Code: e.Code, Message: e.Message, Cause: cause}
}

// Is matches errors by code so callers can compare against the
// sentinel values with errors.Is.
func (e *PipelineError) Is(target error) bool {
	t, ok := target.(*PipelineError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}
