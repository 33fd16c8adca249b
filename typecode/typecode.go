package typecode

// Member is one named field of a struct, in declaration order. Member
// order is part of the type's identity.
type Member struct {
	Name string
	Type *TypeCode
}

// TypeCode is the central, tagged-variant node of the type model. Every
// node carries a Kind plus only the fields relevant to that kind; this
// mirrors a closed-set discriminated union rather than an interface
// hierarchy, so kind dispatch is always a switch on Kind, never a type
// assertion.
type TypeCode struct {
	Kind Kind

	// Named kinds: struct, enum, union, value.
	Name string

	// string, wstring, sequence.
	Bound Bound

	// sequence, array.
	Element *TypeCode

	// array: length of each dimension, outermost first.
	Dimensions []uint32

	// struct.
	Members []Member

	// enum.
	Labels []string
}

// IsNamed reports whether the node carries an identity-bearing Name.
func (tc *TypeCode) IsNamed() bool {
	switch tc.Kind {
	case KindStruct, KindEnum, KindUnion, KindValue:
		return true
	default:
		return false
	}
}
