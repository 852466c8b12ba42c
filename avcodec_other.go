//go:build !darwin && !linux

package avcodec

// NativeLibrary is unavailable on this platform.
type NativeLibrary struct{ Library }

// LoadLibrary always fails on platforms purego cannot dlopen on.
func LoadLibrary(cfg LibraryConfig) (*NativeLibrary, error) {
	return nil, ErrPlatformNotSupported
}

// Paths returns empty strings.
func (l *NativeLibrary) Paths() (avcodec, avutil, shim string) { return "", "", "" }

// Version returns zeros.
func (l *NativeLibrary) Version() (major, minor, micro int) { return 0, 0, 0 }
