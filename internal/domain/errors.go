package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies terminal job failures. These values are part of the
// API contract: status responses expose them verbatim.
type ErrorKind string

const (
	KindInvalidImageFormat ErrorKind = "INVALID_IMAGE_FORMAT"
	KindImageTooLarge      ErrorKind = "IMAGE_TOO_LARGE"
	KindSegmentationFailed ErrorKind = "SEGMENTATION_FAILED"
	KindPoseFailed         ErrorKind = "POSE_FAILED"
	KindWarpFailed         ErrorKind = "WARP_FAILED"
	KindGenerationAPI      ErrorKind = "GENERATION_API_ERROR"
	KindTimeout            ErrorKind = "TIMEOUT"
	KindStorage            ErrorKind = "STORAGE_ERROR"
	KindQualityCheck       ErrorKind = "QUALITY_CHECK_FAILED"
	KindUnknown            ErrorKind = "UNKNOWN_ERROR"
)

// Error is the typed stage error surfaced by every pipeline stage. The
// orchestrator maps it onto the terminal job record; anything that is not a
// *Error collapses to KindUnknown.
type Error struct {
	Kind    ErrorKind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// E builds a stage error with a formatted message.
func E(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapErr attaches a kind and message to an underlying cause.
func WrapErr(kind ErrorKind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), cause: cause}
}

// KindOf extracts the error kind, collapsing untyped errors to KindUnknown.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Store sentinels.
var (
	ErrJobNotFound = errors.New("job not found")
	ErrJobExists   = errors.New("job already exists")
	ErrQueueFull   = errors.New("job queue is full")
)
