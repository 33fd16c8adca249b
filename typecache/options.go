package typecache

// RequestReplyMapping selects how request/reply correlation headers are
// synthesised for service types.
type RequestReplyMapping int

const (
	// MappingBasic injects RequestHeader/ReplyHeader as the `_header`
	// member of request/reply structs.
	MappingBasic RequestReplyMapping = iota
	// MappingExtended adds no header; correlation is external.
	MappingExtended
)

func (m RequestReplyMapping) String() string {
	if m == MappingExtended {
		return "extended"
	}
	return "basic"
}

// Options configures a Cache. The zero value is not valid; use NewOptions.
type Options struct {
	demangleNames    bool
	cycloneCompat    bool
	legacyRMWCompat  bool
	requestReplyMode RequestReplyMapping
}

// Option mutates an Options value under construction.
type Option func(*Options)

// WithDemangleNames stores types under demangled names, stripping mangling
// at ingress. Default: true.
func WithDemangleNames(v bool) Option {
	return func(o *Options) { o.demangleNames = v }
}

// WithCycloneCompat gives request/reply types a CycloneRequestHeader field
// as `_header`. Requires MappingBasic.
func WithCycloneCompat(v bool) Option {
	return func(o *Options) { o.cycloneCompat = v }
}

// WithLegacyRMWCompat stores member names with a trailing underscore.
// Requires MappingExtended.
func WithLegacyRMWCompat(v bool) Option {
	return func(o *Options) { o.legacyRMWCompat = v }
}

// WithRequestReplyMapping selects the request/reply header mapping mode.
// Default: MappingBasic.
func WithRequestReplyMapping(m RequestReplyMapping) Option {
	return func(o *Options) { o.requestReplyMode = m }
}

// NewOptions builds an Options record with the given overrides applied over
// the defaults (demangle_names=true, request_reply_mapping=basic), and
// validates the mutual-exclusion rules. It fails with InvalidConfigError
// when cyclone_compat and legacy_rmw_compat are both set, or when either is
// set under an incompatible mapping.
func NewOptions(opts ...Option) (Options, error) {
	o := Options{
		demangleNames:    true,
		requestReplyMode: MappingBasic,
	}
	for _, apply := range opts {
		apply(&o)
	}
	if o.cycloneCompat && o.legacyRMWCompat {
		return Options{}, &InvalidConfigError{Reason: "cyclone_compat and legacy_rmw_compat are mutually exclusive"}
	}
	if o.cycloneCompat && o.requestReplyMode != MappingBasic {
		return Options{}, &InvalidConfigError{Reason: "cyclone_compat requires basic request_reply_mapping"}
	}
	if o.legacyRMWCompat && o.requestReplyMode != MappingExtended {
		return Options{}, &InvalidConfigError{Reason: "legacy_rmw_compat requires extended request_reply_mapping"}
	}
	return o, nil
}
