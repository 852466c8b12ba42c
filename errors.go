package avcodec

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrLibraryNotLoaded     = errors.New("avcodec: native library not loaded")
	ErrPlatformNotSupported = errors.New("avcodec: platform not supported")
	ErrCodecNotFound        = errors.New("avcodec: codec not found")
	ErrContextFreed         = errors.New("avcodec: codec context has been freed")
	ErrInvalidArgument      = errors.New("avcodec: invalid argument")

	// ErrResourceExhausted is matched by every *ResourceExhaustionError.
	ErrResourceExhausted = errors.New("avcodec: native allocation failed")
)

// NativeCallError reports a negative status returned by the native library.
// Code is the untranslated value the library returned.
type NativeCallError struct {
	Op   string // native function that failed
	Code int
}

func (e *NativeCallError) Error() string {
	return fmt.Sprintf("avcodec: %s failed with code %d", e.Op, e.Code)
}

func newNativeCallError(op string, code int32) *NativeCallError {
	return &NativeCallError{Op: op, Code: int(code)}
}

// ResourceExhaustionError is returned when the encoder output buffer cannot
// be allocated. It is fatal for the call that returned it; the context stays
// usable and a later call retries the allocation.
type ResourceExhaustionError struct {
	Op   string
	Size int // requested bytes
}

func (e *ResourceExhaustionError) Error() string {
	return fmt.Sprintf("avcodec: %s: out of memory (%d bytes requested)", e.Op, e.Size)
}

// Is makes errors.Is(err, ErrResourceExhausted) hold.
func (e *ResourceExhaustionError) Is(target error) bool {
	return target == ErrResourceExhausted
}

// NativeCode extracts the native status code from err.
func NativeCode(err error) (int, bool) {
	var nce *NativeCallError
	if errors.As(err, &nce) {
		return nce.Code, true
	}
	return 0, false
}
