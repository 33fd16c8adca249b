package typecache

import "github.com/wkalt/typewatch/typecode"

// buildGUID returns the RTPS GUID descriptor: a fixed 16-octet array.
func buildGUID() *typecode.TypeCode {
	return typecode.NewStruct("GUID", []typecode.Member{
		{Name: "value", Type: typecode.NewArray([]uint32{16}, typecode.Primitive(typecode.KindOctet))},
	})
}

// buildSequenceNumber returns the RTPS SequenceNumber_t descriptor.
func buildSequenceNumber() *typecode.TypeCode {
	return typecode.NewStruct("SequenceNumber_t", []typecode.Member{
		{Name: "high", Type: typecode.Primitive(typecode.KindLong)},
		{Name: "low", Type: typecode.Primitive(typecode.KindULong)},
	})
}

// buildSampleIdentity returns the SampleIdentity descriptor used to
// correlate a request with its reply.
func buildSampleIdentity(guid, seqNum *typecode.TypeCode) *typecode.TypeCode {
	return typecode.NewStruct("SampleIdentity", []typecode.Member{
		{Name: "writer_guid", Type: guid},
		{Name: "sequence_number", Type: seqNum},
	})
}

// buildRequestHeader returns the basic-mapping RequestHeader descriptor.
func buildRequestHeader(sampleIdentity *typecode.TypeCode) *typecode.TypeCode {
	return typecode.NewStruct("RequestHeader", []typecode.Member{
		{Name: "requestId", Type: sampleIdentity},
		{Name: "instanceName", Type: typecode.NewString(typecode.Unbounded)},
	})
}

// buildReplyHeader returns the basic-mapping ReplyHeader descriptor.
func buildReplyHeader(sampleIdentity *typecode.TypeCode) *typecode.TypeCode {
	return typecode.NewStruct("ReplyHeader", []typecode.Member{
		{Name: "relatedRequestId", Type: sampleIdentity},
		{Name: "remoteEx", Type: typecode.Primitive(typecode.KindLong)},
	})
}

// buildCycloneRequestHeader returns the cyclone_compat header descriptor.
func buildCycloneRequestHeader() *typecode.TypeCode {
	return typecode.NewStruct("CycloneRequestHeader", []typecode.Member{
		{Name: "guid", Type: typecode.NewArray([]uint32{16}, typecode.Primitive(typecode.KindOctet))},
		{Name: "seq", Type: typecode.Primitive(typecode.KindLongLong)},
	})
}

// headerKind identifies which synthetic header, if any, prepends a
// request/reply struct's member list at root scope.
type headerKind int

const (
	headerNone headerKind = iota
	headerRequest
	headerReply
	headerCyclone
)

// selectHeaderKind decides which synthetic header (if any) applies to a
// root-level assertion.
func (o Options) selectHeaderKind(isRequestReply, isRequest bool) headerKind {
	if !isRequestReply {
		return headerNone
	}
	if o.cycloneCompat {
		return headerCyclone
	}
	if o.requestReplyMode != MappingBasic {
		return headerNone
	}
	if isRequest {
		return headerRequest
	}
	return headerReply
}

// headerBuilder lazily constructs and interns the synthetic header
// descriptors the first time each is needed, so they are asserted into the
// cache once and referenced by pointer thereafter.
type headerBuilder struct {
	guid           *typecode.TypeCode
	seqNum         *typecode.TypeCode
	sampleIdentity *typecode.TypeCode
	requestHeader  *typecode.TypeCode
	replyHeader    *typecode.TypeCode
	cycloneHeader  *typecode.TypeCode
}

func (c *Cache) header(kind headerKind, acc *assertionAccum) *typecode.TypeCode {
	switch kind {
	case headerCyclone:
		if c.headers.cycloneHeader == nil {
			built := buildCycloneRequestHeader()
			c.headers.cycloneHeader = c.internHeader(built, acc)
		}
		return c.headers.cycloneHeader
	case headerRequest:
		if c.headers.requestHeader == nil {
			c.headers.requestHeader = c.internHeader(buildRequestHeader(c.sampleIdentity(acc)), acc)
		}
		return c.headers.requestHeader
	case headerReply:
		if c.headers.replyHeader == nil {
			c.headers.replyHeader = c.internHeader(buildReplyHeader(c.sampleIdentity(acc)), acc)
		}
		return c.headers.replyHeader
	default:
		return nil
	}
}

func (c *Cache) sampleIdentity(acc *assertionAccum) *typecode.TypeCode {
	if c.headers.sampleIdentity != nil {
		return c.headers.sampleIdentity
	}
	guid := c.internHeader(buildGUID(), acc)
	seqNum := c.internHeader(buildSequenceNumber(), acc)
	c.headers.guid = guid
	c.headers.seqNum = seqNum
	c.headers.sampleIdentity = c.internHeader(buildSampleIdentity(guid, seqNum), acc)
	return c.headers.sampleIdentity
}

// internHeader inserts a synthetic header descriptor under its own name if
// not already present, returning the canonical cached pointer either way.
// It folds the header's new/already result into the caller's own
// accumulator, the same one the enclosing request/reply assertion reports
// through, so a header appears in newlyAdded the first time it is needed
// rather than being silently absorbed before the caller ever sees it.
// Headers are asserted with their literal names — they are not subject to
// the mangling/demangling transforms that apply to ROS/DDS user types.
func (c *Cache) internHeader(tc *typecode.TypeCode, acc *assertionAccum) *typecode.TypeCode {
	if existing, ok := c.typesByName[tc.Name]; ok {
		return existing
	}
	staged := map[string]*typecode.TypeCode{}
	interned, err := c.internType(tc, staged, acc)
	if err != nil {
		// Synthetic headers are process-constant; a conflict here would mean
		// a header name collides with a distinct cached type, which cannot
		// happen since header names are reserved and asserted before any
		// user type could plausibly share them.
		panic(err)
	}
	return interned
}
