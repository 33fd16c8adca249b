package introspection

import (
	"path/filepath"
	"plugin"
	"runtime"
	"sync"
)

// Plugin is the narrow surface of *plugin.Plugin the loader needs. It
// exists so tests can substitute a fake without building a real .so.
type Plugin interface {
	Lookup(symbol string) (any, error)
}

// OpenFunc opens a shared library at path and returns a Plugin.
type OpenFunc func(path string) (Plugin, error)

type pluginAdapter struct{ p *plugin.Plugin }

func (a pluginAdapter) Lookup(symbol string) (any, error) {
	return a.p.Lookup(symbol)
}

func defaultOpen(path string) (Plugin, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, err
	}
	return pluginAdapter{p}, nil
}

// resolvedPackage remembers the language flavour and already-opened
// library handle a package was last resolved under, so a package with
// several messages only pays the prefix×language search once.
type resolvedPackage struct {
	lang Lang
	plug Plugin
}

// Loader locates and loads a shared introspection typesupport library
// for a named ROS message.
type Loader struct {
	PrefixIndex PrefixIndex
	Open        OpenFunc
	LibraryPath func() []string

	mu       sync.Mutex
	resolved map[string]resolvedPackage
}

// NewLoader builds a Loader wired to the real ament resource index,
// real shared-library loading, and the real platform library path.
func NewLoader() *Loader {
	return &Loader{
		PrefixIndex: AmentPrefixIndex{},
		Open:        defaultOpen,
		LibraryPath: LibraryPath,
	}
}

func libraryFilename(pkg string, lang Lang) (folder, filename string) {
	suffix := "__rosidl_typesupport_introspection_" + string(lang)
	switch runtime.GOOS {
	case "windows":
		return "bin", pkg + suffix + ".dll"
	case "darwin":
		return "lib", "lib" + pkg + suffix + ".dylib"
	default:
		return "lib", "lib" + pkg + suffix + ".so"
	}
}

// Load resolves and loads the introspection handle for
// (package, middle, typeName). A package already resolved by a prior Load
// reuses its remembered language flavour and open library handle directly;
// otherwise Load tries each candidate prefix in order of the package-prefix
// index result followed by the platform library search path, and each
// language flavour (C then C++) at each prefix, remembering whichever one
// succeeds for next time.
func (l *Loader) Load(pkg, middle, typeName string) (*MembersHandle, error) {
	middleOrMsg := middle
	if middleOrMsg == "" {
		middleOrMsg = "msg"
	}

	if rp, ok := l.getResolved(pkg); ok {
		if members, ok := extractMembers(rp.plug, rp.lang, pkg, middleOrMsg, typeName); ok {
			return members, nil
		}
	}

	var prefixes []string
	if p, ok := l.PrefixIndex.PackagePrefix(pkg); ok {
		prefixes = append(prefixes, p)
	}
	if l.LibraryPath != nil {
		prefixes = append(prefixes, l.LibraryPath()...)
	}
	if len(prefixes) == 0 {
		return nil, &LoadFailureError{Package: pkg, Reason: "no directory in library search path"}
	}

	for _, prefix := range prefixes {
		for _, lang := range []Lang{LangC, LangCPP} {
			folder, filename := libraryFilename(pkg, lang)
			path := filepath.Join(prefix, folder, filename)
			plug, err := l.Open(path)
			if err != nil {
				continue
			}
			members, ok := extractMembers(plug, lang, pkg, middleOrMsg, typeName)
			if !ok {
				continue
			}
			l.rememberResolved(pkg, resolvedPackage{lang: lang, plug: plug})
			return members, nil
		}
	}
	return nil, &LoadFailureError{Package: pkg, Reason: "no introspection typesupport variant loaded"}
}

// extractMembers looks up the type-specific accessor symbol on an already-
// opened package library and validates its result.
func extractMembers(plug Plugin, lang Lang, pkg, middleOrMsg, typeName string) (*MembersHandle, bool) {
	symName := lang.identifier() + "__get_message_type_support_handle__" +
		pkg + "__" + middleOrMsg + "__" + typeName
	sym, err := plug.Lookup(symName)
	if err != nil {
		return nil, false
	}
	getTS, ok := sym.(func() *TypeSupportHandle)
	if !ok {
		return nil, false
	}
	ts := getTS()
	if ts == nil || ts.Lang != lang || ts.Members == nil {
		return nil, false
	}
	return ts.Members, true
}

func (l *Loader) getResolved(pkg string) (resolvedPackage, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rp, ok := l.resolved[pkg]
	return rp, ok
}

func (l *Loader) rememberResolved(pkg string, rp resolvedPackage) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.resolved == nil {
		l.resolved = make(map[string]resolvedPackage)
	}
	l.resolved[pkg] = rp
}
