package service

import (
	"github.com/nats-io/nats.go"

	"github.com/wkalt/typewatch/typecache"
)

// Options configures a Start call: which inputs to read, where to write
// output, and how the Type Cache should be configured.
type Options struct {
	// Domain is the DDS domain (and optional QoS profile) discovery reads
	// attach to, "-d/--domain DOMAIN[/QOS]".
	Domain string
	// NatsConn, when non-nil, enables a discovery-backed input source over
	// the given connection in addition to any InputPaths.
	NatsConn *nats.Conn

	// InputPaths lists file paths to read; "-" denotes standard input.
	InputPaths []string

	// OutputPath is the file to write records to; empty selects stdout
	// (or stderr, if SwapOutputs is set).
	OutputPath string
	Append     bool
	Overwrite  bool
	// SwapOutputs routes records to stderr and leaves stdout free for
	// log output, the inverse of the default, when OutputPath is empty.
	SwapOutputs bool

	// TypeFilter/RawTypeFilter/IncludeNonROS configure the Type Monitor's
	// name filtering.
	TypeFilter    string
	RawTypeFilter string
	IncludeNonROS bool

	// Mangle stores types under their mangled wire name instead of the
	// default demangled ROS form ("-m/--mangle").
	Mangle bool
	// CompatibilityMode is "rmw_connext_cpp" or "rmw_cyclonedds_cpp"; empty
	// disables both compatibility behaviours.
	CompatibilityMode string
	// RequestReplyMapping is "basic" or "extended"; empty selects basic.
	RequestReplyMapping string

	// Loader resolves introspection modules for AssertFromName. Defaults
	// to the real ament/plugin-backed loader.
	Loader typecache.Loader

	// DiagnosticsAddr, when non-empty, starts a diagnostics HTTP server
	// (/healthz, /debug/pprof/*, /stats) at this address.
	DiagnosticsAddr string
}

// Option configures a Start call.
type Option func(*Options)

func WithDomain(domain string) Option { return func(o *Options) { o.Domain = domain } }

func WithNatsConn(conn *nats.Conn) Option { return func(o *Options) { o.NatsConn = conn } }

func WithInputPaths(paths ...string) Option {
	return func(o *Options) { o.InputPaths = paths }
}

func WithOutputPath(path string) Option { return func(o *Options) { o.OutputPath = path } }

func WithAppend(v bool) Option { return func(o *Options) { o.Append = v } }

func WithOverwrite(v bool) Option { return func(o *Options) { o.Overwrite = v } }

func WithSwapOutputs(v bool) Option { return func(o *Options) { o.SwapOutputs = v } }

func WithTypeFilter(pattern string) Option { return func(o *Options) { o.TypeFilter = pattern } }

func WithRawTypeFilter(pattern string) Option {
	return func(o *Options) { o.RawTypeFilter = pattern }
}

func WithIncludeNonROS(v bool) Option { return func(o *Options) { o.IncludeNonROS = v } }

func WithMangle(v bool) Option { return func(o *Options) { o.Mangle = v } }

func WithCompatibilityMode(mode string) Option {
	return func(o *Options) { o.CompatibilityMode = mode }
}

func WithRequestReplyMapping(mode string) Option {
	return func(o *Options) { o.RequestReplyMapping = mode }
}

func WithLoader(loader typecache.Loader) Option { return func(o *Options) { o.Loader = loader } }

func WithDiagnosticsAddr(addr string) Option {
	return func(o *Options) { o.DiagnosticsAddr = addr }
}

func readOptions(opts ...Option) (Options, error) {
	o := Options{
		TypeFilter:    ".*",
		RawTypeFilter: ".*",
		IncludeNonROS: true,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if len(o.InputPaths) == 0 && o.NatsConn == nil {
		return Options{}, &InvalidConfigError{Reason: "no input source configured: need at least one input path or a discovery connection"}
	}
	if o.Append && o.Overwrite {
		return Options{}, &InvalidConfigError{Reason: "append and overwrite are mutually exclusive"}
	}
	return o, nil
}
