package typename

import "strings"

// Demangle converts an on-wire DDS type name into its canonical demangled
// ROS form (pkg/middle/Type). It accepts both the short "pkg::msg::Type"
// form and the full "pkg::middle::dds_::Type_" mangled form.
func Demangle(name string) (string, error) {
	if name == "" {
		return "", invalidName(name, "empty type name")
	}

	if idx := strings.Index(name, "::"); idx >= 0 && strings.Count(name, "::") == 2 {
		rest := name[idx:]
		if strings.HasPrefix(rest, "::msg::") || strings.HasPrefix(rest, "::srv::") {
			return strings.ReplaceAll(name, "::", "/"), nil
		}
	}

	const ddsUnderscoreMarker = "::dds_::"
	const ddsMarker = "::dds::"

	prefixLen := len(ddsUnderscoreMarker)
	idx := strings.LastIndex(name, ddsUnderscoreMarker)
	if idx < 0 {
		prefixLen = len(ddsMarker)
		idx = strings.LastIndex(name, ddsMarker)
		if idx < 0 {
			return "", invalidName(name, "missing dds namespace marker")
		}
	}

	markerEnd := idx + prefixLen
	if strings.Contains(name[markerEnd:], "::") {
		return "", invalidName(name, "unexpected separators after dds namespace")
	}

	typeName := strings.TrimSuffix(name[markerEnd:], "_")
	pkgMiddle := strings.ReplaceAll(name[:idx], "::", "/")
	if pkgMiddle == "" || typeName == "" {
		return "", invalidName(name, "malformed dds type name")
	}
	return pkgMiddle + "/" + typeName, nil
}

// Mangle converts a canonical demangled ROS type name (pkg/middle/Type) into
// its on-wire mangled form (pkg::middle::dds_::Type_). It is the exact
// inverse of Demangle for names produced by Demangle.
func Mangle(name string) (string, error) {
	pkg, middle, typ, err := ParseROS(name)
	if err != nil {
		return "", err
	}
	return pkg + "::" + middle + "::dds_::" + typ + "_", nil
}

// MangleMemberName appends a trailing underscore when legacy RMW
// compatibility is in effect and one is not already present.
func MangleMemberName(name string, legacy bool) string {
	if !legacy || strings.HasSuffix(name, "_") {
		return name
	}
	return name + "_"
}

// DemangleMemberName strips a trailing legacy-compat underscore if present.
func DemangleMemberName(name string) string {
	return strings.TrimSuffix(name, "_")
}
