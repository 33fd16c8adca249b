package typecode

import "fmt"

// nolint:gochecknoglobals
var primitiveSingletons = buildPrimitiveSingletons()

func buildPrimitiveSingletons() map[Kind]*TypeCode {
	kinds := []Kind{
		KindBool, KindOctet, KindChar, KindShort, KindUShort, KindLong,
		KindULong, KindLongLong, KindULongLong, KindFloat, KindDouble,
	}
	m := make(map[Kind]*TypeCode, len(kinds))
	for _, k := range kinds {
		m[k] = &TypeCode{Kind: k}
	}
	return m
}

// Primitive returns the canonical singleton node for a primitive kind.
// There is exactly one instance per primitive kind for the lifetime of
// the process.
func Primitive(kind Kind) *TypeCode {
	tc, ok := primitiveSingletons[kind]
	if !ok {
		panic(fmt.Sprintf("typecode: %s is not a primitive kind", kind))
	}
	return tc
}

// NewString builds a bounded or unbounded string node.
func NewString(bound Bound) *TypeCode {
	return &TypeCode{Kind: KindString, Bound: bound}
}

// NewWString builds a bounded or unbounded wide-string node.
func NewWString(bound Bound) *TypeCode {
	return &TypeCode{Kind: KindWString, Bound: bound}
}

// NewSequence builds a sequence node bounded or unbounded, of element.
func NewSequence(bound Bound, element *TypeCode) *TypeCode {
	return &TypeCode{Kind: KindSequence, Bound: bound, Element: element}
}

// NewArray builds a fixed-dimension array node of element.
func NewArray(dimensions []uint32, element *TypeCode) *TypeCode {
	dims := make([]uint32, len(dimensions))
	copy(dims, dimensions)
	return &TypeCode{Kind: KindArray, Dimensions: dims, Element: element}
}

// NewStruct builds a named struct node from an ordered member list.
func NewStruct(name string, members []Member) *TypeCode {
	ms := make([]Member, len(members))
	copy(ms, members)
	return &TypeCode{Kind: KindStruct, Name: name, Members: ms}
}

// NewEnum builds a named enum node from an ordered label list.
func NewEnum(name string, labels []string) *TypeCode {
	ls := make([]string, len(labels))
	copy(ls, labels)
	return &TypeCode{Kind: KindEnum, Name: name, Labels: ls}
}

// NewUnion builds a named union node from an ordered member list (the
// discriminated arms).
func NewUnion(name string, members []Member) *TypeCode {
	ms := make([]Member, len(members))
	copy(ms, members)
	return &TypeCode{Kind: KindUnion, Name: name, Members: ms}
}

// NewValue builds a named value-type node from an ordered member list.
func NewValue(name string, members []Member) *TypeCode {
	ms := make([]Member, len(members))
	copy(ms, members)
	return &TypeCode{Kind: KindValue, Name: name, Members: ms}
}
