package typecache

import "github.com/wkalt/typewatch/introspection"

// Loader is the narrow surface of introspection.Loader the cache needs. It
// is an interface so tests can supply a fake introspection module list
// instead of loading a real shared library.
type Loader interface {
	Load(pkg, middle, typeName string) (*introspection.MembersHandle, error)
}
