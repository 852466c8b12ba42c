//go:build darwin || linux

// Shared utilities for the purego binding.

package avcodec

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"unsafe"
)

// goStringFromPtr converts a C string pointer to a Go string.
func goStringFromPtr(ptr uintptr) string {
	if ptr == 0 {
		return ""
	}
	p := unsafe.Pointer(ptr)
	var length int
	for *(*byte)(unsafe.Add(p, length)) != 0 {
		length++
		if length > 4096 { // Safety limit
			break
		}
	}
	if length == 0 {
		return ""
	}
	return string(unsafe.Slice((*byte)(p), length))
}

// sharedLibName returns the platform file name of lib, optionally with a
// major version: libavcodec.so.54 or libavcodec.54.dylib.
func sharedLibName(lib string, major int) string {
	if runtime.GOOS == "darwin" {
		if major > 0 {
			return "lib" + lib + "." + strconv.Itoa(major) + ".dylib"
		}
		return "lib" + lib + ".dylib"
	}
	if major > 0 {
		return "lib" + lib + ".so." + strconv.Itoa(major)
	}
	return "lib" + lib + ".so"
}

// libraryPaths lists the candidate paths for lib, most specific first:
// the explicit path, the configured search directories, build directories
// next to the executable, source and module roots, then bare names for the
// system loader. majors lists the versioned names to try.
func libraryPaths(lib, explicit string, cfg LibraryConfig, majors ...int) []string {
	var names []string
	for _, m := range majors {
		names = append(names, sharedLibName(lib, m))
	}
	names = append(names, sharedLibName(lib, 0))

	var paths []string
	if explicit != "" {
		paths = append(paths, explicit)
	}

	var dirs []string
	dirs = append(dirs, cfg.SearchDirs...)
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		dirs = append(dirs,
			exeDir,
			filepath.Join(exeDir, "..", "lib"),
			filepath.Join(exeDir, "..", "..", "build", "ffi"),
		)
	}
	if root := findSourceRoot(); root != "" {
		dirs = append(dirs, filepath.Join(root, "build"), filepath.Join(root, "build", "ffi"))
	}
	if root := findModuleRoot(); root != "" {
		dirs = append(dirs, filepath.Join(root, "build"), filepath.Join(root, "build", "ffi"))
	}
	switch runtime.GOOS {
	case "darwin":
		dirs = append(dirs, "/usr/local/lib", "/opt/homebrew/lib")
	case "linux":
		dirs = append(dirs, "/usr/local/lib", "/usr/lib", "/usr/lib/x86_64-linux-gnu", "/usr/lib/aarch64-linux-gnu")
	}

	for _, dir := range dirs {
		for _, name := range names {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	// Bare names let the dynamic loader search LD_LIBRARY_PATH and friends.
	paths = append(paths, names...)
	return paths
}

// findSourceRoot returns the directory holding this source file, which is
// the module root when running from a checkout.
func findSourceRoot() string {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return ""
	}
	return filepath.Dir(file)
}

// findModuleRoot walks up the directory tree from the current working directory
// to find the module root (directory containing go.mod).
func findModuleRoot() string {
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}
