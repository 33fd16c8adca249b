// Package monitor implements the Type Monitor: it pulls records from an
// Input Emitter, filters names through two regular expressions,
// dispatches surviving records to the Type Cache, and forwards newly
// asserted types and topics to an Output Emitter.
package monitor

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/wkalt/typewatch/emit"
	"github.com/wkalt/typewatch/ingest"
	"github.com/wkalt/typewatch/typecache"
	"github.com/wkalt/typewatch/typecode"
	"github.com/wkalt/typewatch/typename"
	"github.com/wkalt/typewatch/util/log"
)

const defaultPollInterval = 250 * time.Millisecond

// Monitor is the glue stage of the dataflow: Input Emitter → Type
// Monitor → Type Cache → Output Emitter.
type Monitor struct {
	input         ingest.Emitter
	output        emit.Emitter
	cache         *typecache.Cache
	filters       compiledFilters
	includeNonROS bool
	pollInterval  time.Duration
}

// New builds a Monitor over input/output/cache with the given filter
// options.
func New(input ingest.Emitter, output emit.Emitter, cache *typecache.Cache, opts ...Option) (*Monitor, error) {
	o := NewOptions(opts...)
	filters, err := compileFilters(o)
	if err != nil {
		return nil, err
	}
	return &Monitor{
		input:         input,
		output:        output,
		cache:         cache,
		filters:       filters,
		includeNonROS: o.IncludeNonROS,
		pollInterval:  defaultPollInterval,
	}, nil
}

// Run opens the input stream and consumes it until it is exhausted or ctx
// is cancelled. It never returns a non-nil error for a single bad or
// filtered record; those are logged and skipped so the stream keeps
// flowing. A failure to write to the Output Emitter (*emit.IoFailureError)
// stops the run and is returned.
func (m *Monitor) Run(ctx context.Context) error {
	if err := m.input.Open(); err != nil {
		return err
	}
	log.Infow(ctx, "consuming input")
	for m.input.IsActive() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		rec, err := m.input.Next(m.pollInterval, true)
		if err != nil {
			var timeout *ingest.TimeoutError
			if errors.As(err, &timeout) {
				continue
			}
			var noInput *ingest.NoInputError
			if errors.As(err, &noInput) {
				log.Debugw(ctx, "received EOF", "reason", noInput.Reason)
				break
			}
			var invalid *ingest.InvalidRecordError
			if errors.As(err, &invalid) {
				log.Warnw(ctx, "invalid input record", "line", invalid.Line, "reason", invalid.Reason)
			}
			continue
		}

		if err := m.onRecord(ctx, rec); err != nil {
			var ioErr *emit.IoFailureError
			if errors.As(err, &ioErr) {
				return err
			}
			logDispatchError(ctx, err)
		}
	}
	log.Debugw(ctx, "consumed all input")
	return nil
}

func logDispatchError(ctx context.Context, err error) {
	var invalidName *typename.InvalidNameError
	if errors.As(err, &invalidName) {
		log.Debugw(ctx, "invalid name, skipping", "name", invalidName.Name, "reason", invalidName.Reason)
		return
	}
	log.Errorw(ctx, "dispatch failed, skipping record", "error", err)
}

// onRecord implements on_type_detected's dispatch table: which of
// assert_dds_topic/assert_dds_type/assert_ros_topic/assert_ros_type fires
// depends on whether the record carries a topic name and/or a typecode.
func (m *Monitor) onRecord(ctx context.Context, rec ingest.Record) error {
	wireName := rec.TypeName
	if rec.Typecode != nil && rec.Typecode.Name != "" {
		wireName = rec.Typecode.Name
	}
	if wireName == "" {
		log.Debugw(ctx, "empty input received", "topic", rec.Topic)
		return nil
	}
	if !m.filterTypeName(ctx, wireName) {
		return nil
	}

	var (
		isNewTopic, isNewType      bool
		newlyAdded, alreadyPresent []*typecode.TypeCode
		err                        error
	)

	if rec.Typecode != nil {
		isROS, demangledHint := demangleHint(wireName)
		if rec.Topic != "" {
			isNewTopic, isNewType, newlyAdded, alreadyPresent, err =
				m.cache.AssertTopicFromTypecode(rec.Topic, rec.Typecode, isROS, demangledHint)
		} else {
			isNewType, newlyAdded, alreadyPresent, err = m.cache.AssertFromTypecode(rec.Typecode, isROS, demangledHint)
		}
	} else {
		if rec.Topic != "" {
			isNewTopic, isNewType, newlyAdded, alreadyPresent, err = m.cache.AssertTopic(rec.Topic, wireName)
		} else {
			isNewType, newlyAdded, alreadyPresent, err = m.cache.AssertFromName(wireName)
		}
	}
	if err != nil {
		return err
	}

	for _, t := range newlyAdded {
		log.Infow(ctx, "asserted type", "name", t.Name)
		if err := m.output.EmitType(t); err != nil {
			return err
		}
	}
	for _, t := range alreadyPresent {
		log.Debugw(ctx, "cached type", "name", t.Name)
	}

	if rec.Topic == "" || !isNewTopic {
		return nil
	}
	topicType := topicTypeOf(isNewType, newlyAdded, alreadyPresent)
	log.Infow(ctx, "asserted topic", "topic", rec.Topic, "type", topicType.Name)
	return m.output.EmitTopic(rec.Topic, topicType)
}

func topicTypeOf(isNew bool, newlyAdded, alreadyPresent []*typecode.TypeCode) *typecode.TypeCode {
	if isNew {
		return newlyAdded[len(newlyAdded)-1]
	}
	return alreadyPresent[len(alreadyPresent)-1]
}

// rosFormOf best-effort converts a name that may already be in ROS slash
// form, mangled "::" form, or neither, into its ROS slash form. A name with
// no "::" is assumed to already be ROS form (or raw junk that will simply
// fail to match either filter); a name with "::" must demangle cleanly or
// it is not ROS.
func rosFormOf(name string) (rosName string, isROS bool) {
	norm, err := typename.Normalise(name)
	if err != nil {
		return "", false
	}
	if !strings.Contains(norm, "::") {
		return norm, true
	}
	demangled, err := typename.Demangle(norm)
	if err != nil {
		return "", false
	}
	return demangled, true
}

// demangleHint mirrors rosFormOf for AssertFromTypecode's isROS/
// demangledHint parameters.
func demangleHint(wireName string) (isROS bool, demangledHint string) {
	ros, ok := rosFormOf(wireName)
	return ok, ros
}

// filterTypeName applies raw_type_filter to wireName first; if it matches,
// the name is demangled and type_filter is applied to the ROS form. A
// non-ROS name that fails demangling is admitted iff IncludeNonROS.
func (m *Monitor) filterTypeName(ctx context.Context, wireName string) bool {
	if !m.filters.rawTypeFilter.MatchString(wireName) {
		log.Debugw(ctx, "filtered by raw_type_filter", "name", wireName)
		return false
	}

	rosName, isROS := rosFormOf(wireName)
	if !isROS {
		log.Debugw(ctx, "not a ROS name", "name", wireName)
		return m.includeNonROS
	}

	if !m.filters.typeFilter.MatchString(rosName) {
		log.Debugw(ctx, "filtered by type_filter", "name", rosName)
		return false
	}
	log.Debugw(ctx, "detected", "name", rosName)
	return true
}
