package errors

import (
	"context"
	"errors"
)

// Class is the coarse failure classification used by the sync engine.
type Class int

const (
	// Transient failures are safe to retry on the next cycle.
	Transient Class = iota
	// DataError failures need human attention and are never retried automatically.
	DataError
	// Fatal failures stop the cycle for the affected source.
	Fatal
)

// String returns the lowercase class name used in logs and metrics.
func (c Class) String() string {
	switch c {
	case Transient:
		return "transient"
	case DataError:
		return "data_error"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

var codeClasses = map[Code]Class{
	ErrCodeNetwork:     Transient,
	ErrCodeTimeout:     Transient,
	ErrCodeRateLimited: Transient,

	ErrCodeInvalidInput:    DataError,
	ErrCodeInvalidVersion:  DataError,
	ErrCodeInvalidManifest: DataError,
	ErrCodeInvalidPath:     DataError,
	ErrCodeDecode:          DataError,
	ErrCodeValidation:      DataError,
	ErrCodeDuplicate:       DataError,
	ErrCodeNotFound:        DataError,
	ErrCodeFileNotFound:    DataError,
	ErrCodeUnsupported:     DataError,

	ErrCodeStorage:   Fatal,
	ErrCodeTaskPanic: Fatal,
	ErrCodeInternal:  Fatal,
}

// ClassOf returns the class of err.
//
// The outermost *Error with a known code wins. Deadline and cancellation
// errors without a code are Transient. Anything else is Fatal, since an
// unclassified failure means a task broke in a way nobody anticipated.
func ClassOf(err error) Class {
	for e := err; e != nil; e = errors.Unwrap(e) {
		if se, ok := e.(*Error); ok {
			if c, ok := codeClasses[se.Code]; ok {
				return c
			}
		}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return Transient
	}
	return Fatal
}

// Transientf creates a network-class error.
func Transientf(cause error, format string, args ...any) *Error {
	return Wrap(ErrCodeNetwork, cause, format, args...)
}

// Dataf creates a data-class error.
func Dataf(cause error, format string, args ...any) *Error {
	return Wrap(ErrCodeInvalidManifest, cause, format, args...)
}

// Storagef creates a storage-class error.
func Storagef(cause error, format string, args ...any) *Error {
	return Wrap(ErrCodeStorage, cause, format, args...)
}
