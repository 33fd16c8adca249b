package service

import "github.com/wkalt/typewatch/typecache"

// buildCacheOptions translates the CLI-facing --compatibility-mode and
// --request-reply-mapping strings into typecache.Options.
func buildCacheOptions(o Options) ([]typecache.Option, error) {
	opts := []typecache.Option{typecache.WithDemangleNames(!o.Mangle)}

	switch o.CompatibilityMode {
	case "":
	case "rmw_cyclonedds_cpp":
		opts = append(opts, typecache.WithCycloneCompat(true))
	case "rmw_connext_cpp":
		opts = append(opts, typecache.WithLegacyRMWCompat(true))
	default:
		return nil, &InvalidConfigError{Reason: "unsupported compatibility mode: " + o.CompatibilityMode}
	}

	switch o.RequestReplyMapping {
	case "", "basic":
	case "extended":
		opts = append(opts, typecache.WithRequestReplyMapping(typecache.MappingExtended))
	default:
		return nil, &InvalidConfigError{Reason: "unsupported request-reply mapping: " + o.RequestReplyMapping}
	}

	return opts, nil
}
