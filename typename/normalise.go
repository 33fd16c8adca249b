package typename

import "strings"

// Normalise collapses the mangling artifacts a name may carry — a doubled
// underscore used as a namespace separator, a trailing legacy-compat
// underscore, and the "dds_"/"dds" pseudo-namespace — into a single
// canonical form used as the cache key.
func Normalise(name string) (string, error) {
	if name == "" {
		return "", invalidName(name, "empty type name")
	}
	out := strings.ReplaceAll(name, "__", "::")
	out = strings.TrimSuffix(out, "_")
	out = strings.ReplaceAll(out, "::dds_::", "::dds::")
	out = strings.ReplaceAll(out, "::dds::", "::")
	return out, nil
}
