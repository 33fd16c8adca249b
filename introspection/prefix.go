package introspection

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// PrefixIndex resolves a package name to the filesystem prefix its
// introspection library was installed under. It is an interface so
// tests can inject a fake resolver instead of touching the real ament
// resource index.
type PrefixIndex interface {
	PackagePrefix(pkg string) (string, bool)
}

// AmentPrefixIndex resolves package prefixes the way ament_index_cpp
// does: it searches each colon-separated entry of AMENT_PREFIX_PATH for
// a resource-index marker file for the package.
type AmentPrefixIndex struct{}

func (AmentPrefixIndex) PackagePrefix(pkg string) (string, bool) {
	prefixPath := os.Getenv("AMENT_PREFIX_PATH")
	if prefixPath == "" {
		return "", false
	}
	for _, prefix := range strings.Split(prefixPath, string(os.PathListSeparator)) {
		if prefix == "" {
			continue
		}
		marker := filepath.Join(prefix, "share", "ament_index", "resource_index", "packages", pkg)
		if _, err := os.Stat(marker); err == nil {
			return prefix, true
		}
	}
	return "", false
}

// libraryPathEnvVar selects the platform's shared library search path
// variable.
func libraryPathEnvVar() string {
	switch runtime.GOOS {
	case "windows":
		return "PATH"
	case "darwin":
		return "DYLD_LIBRARY_PATH"
	default:
		return "LD_LIBRARY_PATH"
	}
}

// LibraryPath returns the entries of the platform library search path
// environment variable, split on the platform list separator.
func LibraryPath() []string {
	value := os.Getenv(libraryPathEnvVar())
	if value == "" {
		return nil
	}
	var out []string
	for _, entry := range strings.Split(value, string(os.PathListSeparator)) {
		if entry != "" {
			out = append(out, entry)
		}
	}
	return out
}
