package monitor

import "regexp"

// Options configures a Monitor's name filtering.
type Options struct {
	// IncludeNonROS admits a wire name that fails ROS demangling once it
	// has already matched RawTypeFilter.
	IncludeNonROS bool
	// TypeFilter is matched against a name's demangled ROS form.
	TypeFilter string
	// RawTypeFilter is matched against a name's on-wire form first.
	RawTypeFilter string
}

// Option configures a Monitor at construction.
type Option func(*Options)

// WithIncludeNonROS controls whether a non-ROS wire name that matches
// RawTypeFilter is admitted despite failing demangling.
func WithIncludeNonROS(include bool) Option {
	return func(o *Options) { o.IncludeNonROS = include }
}

// WithTypeFilter sets the regular expression matched against a name's
// demangled ROS form.
func WithTypeFilter(pattern string) Option {
	return func(o *Options) { o.TypeFilter = pattern }
}

// WithRawTypeFilter sets the regular expression matched against a name's
// on-wire form.
func WithRawTypeFilter(pattern string) Option {
	return func(o *Options) { o.RawTypeFilter = pattern }
}

// NewOptions applies opts over the default "match everything" filters.
func NewOptions(opts ...Option) Options {
	o := Options{
		IncludeNonROS: true,
		TypeFilter:    ".*",
		RawTypeFilter: ".*",
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

type compiledFilters struct {
	typeFilter    *regexp.Regexp
	rawTypeFilter *regexp.Regexp
}

func compileFilters(o Options) (compiledFilters, error) {
	rawRe, err := regexp.Compile(o.RawTypeFilter)
	if err != nil {
		return compiledFilters{}, &InvalidConfigError{Reason: "raw_type_filter: " + err.Error()}
	}
	typeRe, err := regexp.Compile(o.TypeFilter)
	if err != nil {
		return compiledFilters{}, &InvalidConfigError{Reason: "type_filter: " + err.Error()}
	}
	return compiledFilters{typeFilter: typeRe, rawTypeFilter: rawRe}, nil
}
